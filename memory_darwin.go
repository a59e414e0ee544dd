//go:build darwin

package hypervisor

import (
	"fmt"
	"math"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

var (
	cachedPageSize int
	cachedPageMask uint64
	pageSizeOnce   sync.Once
)

// pageSize returns the system page size, cached for fast alignment
// checks.
func pageSize() int {
	pageSizeOnce.Do(func() {
		cachedPageSize = unix.Getpagesize()
		cachedPageMask = uint64(cachedPageSize - 1)
	})
	return cachedPageSize
}

func isPageAligned(addr uint64) bool {
	pageSize()
	return addr&cachedPageMask == 0
}

// Map maps a host memory slice into the guest physical address space.
// The host slice base address, length, and guestPhys must be
// page-aligned. The buffer stays owned by the caller, which must keep
// it alive and unmap it before releasing or repurposing it.
func (vm *VM) Map(host []byte, guestPhys uint64, perms MemPerm) error {
	if vm == nil {
		return fmt.Errorf("hv: VM is nil")
	}
	if vm.closed {
		return ErrVMClosed
	}
	if len(host) == 0 {
		return fmt.Errorf("hv: map requires non-empty host buffer")
	}
	if len(host) > math.MaxInt32 {
		return fmt.Errorf("hv: host buffer too large (max %d bytes)", math.MaxInt32)
	}
	if guestPhys > math.MaxUint64-uint64(len(host)) {
		return fmt.Errorf("hv: guest address range would overflow")
	}
	if perms&^MemRWX != 0 {
		return fmt.Errorf("hv: invalid permission bits 0x%x (valid: 0x%x)", perms, MemRWX)
	}

	if !isPageAligned(guestPhys) {
		return fmt.Errorf("hv: guestPhys not page-aligned: 0x%x (page size: %d): %w", guestPhys, pageSize(), ErrInvalidAlignment)
	}
	if !isPageAligned(uint64(len(host))) {
		return fmt.Errorf("hv: host length not page multiple: %d (page size: %d): %w", len(host), pageSize(), ErrInvalidAlignment)
	}

	ptr := unsafe.Pointer(&host[0])
	if !isPageAligned(uint64(uintptr(ptr))) {
		return fmt.Errorf("hv: host base not page-aligned: %p (page size: %d): %w", ptr, pageSize(), ErrInvalidAlignment)
	}

	ret := hvVmMap(ptr, guestPhys, uint64(len(host)), effectivePerm(perms))
	runtime.KeepAlive(host)
	if err := hvErr(ret); err != nil {
		recordResourceError()
		return fmt.Errorf("failed to map %d bytes at 0x%x with perms %v: %w", len(host), guestPhys, perms, err)
	}

	recordMapOperation()
	return nil
}

// Unmap removes a region from the guest physical address space. The
// range should exactly match a prior Map call; behavior for partial
// ranges is backend-defined and the native status is surfaced as-is.
func (vm *VM) Unmap(guestPhys, size uint64) error {
	if vm == nil {
		return fmt.Errorf("hv: VM is nil")
	}
	if vm.closed {
		return ErrVMClosed
	}
	if size == 0 {
		return fmt.Errorf("hv: unmap requires non-zero size")
	}
	if guestPhys > math.MaxUint64-size {
		return fmt.Errorf("hv: guest address range would overflow")
	}
	if !isPageAligned(guestPhys) {
		return fmt.Errorf("hv: guestPhys not page-aligned: 0x%x (page size: %d): %w", guestPhys, pageSize(), ErrInvalidAlignment)
	}
	if !isPageAligned(size) {
		return fmt.Errorf("hv: size not page multiple: %d (page size: %d): %w", size, pageSize(), ErrInvalidAlignment)
	}

	if err := hvErr(hvVmUnmap(guestPhys, size)); err != nil {
		recordResourceError()
		return fmt.Errorf("failed to unmap region 0x%x+%d: %w", guestPhys, size, err)
	}

	recordUnmapOperation()
	return nil
}

// Protect changes the permissions of a mapped region. The range
// should exactly match a prior Map call.
func (vm *VM) Protect(guestPhys, size uint64, perms MemPerm) error {
	if vm == nil {
		return fmt.Errorf("hv: VM is nil")
	}
	if vm.closed {
		return ErrVMClosed
	}
	if size == 0 {
		return fmt.Errorf("hv: protect requires non-zero size")
	}
	if perms&^MemRWX != 0 {
		return fmt.Errorf("hv: invalid permission bits 0x%x (valid: 0x%x)", perms, MemRWX)
	}
	if !isPageAligned(guestPhys) {
		return fmt.Errorf("hv: guestPhys not page-aligned: 0x%x (page size: %d): %w", guestPhys, pageSize(), ErrInvalidAlignment)
	}
	if !isPageAligned(size) {
		return fmt.Errorf("hv: size not page multiple: %d (page size: %d): %w", size, pageSize(), ErrInvalidAlignment)
	}

	if err := hvErr(hvVmProtect(guestPhys, size, effectivePerm(perms))); err != nil {
		recordResourceError()
		return fmt.Errorf("failed to protect region 0x%x+%d with perms %v: %w", guestPhys, size, perms, err)
	}

	recordProtectOperation()
	return nil
}
