//go:build darwin

package hypervisor

import (
	"errors"
	"testing"

	"golang.org/x/sys/unix"
)

func TestPageSize(t *testing.T) {
	ps := pageSize()
	expectedPS := unix.Getpagesize()

	if ps != expectedPS {
		t.Errorf("pageSize() = %d, want %d", ps, expectedPS)
	}

	if ps != 4096 && ps != 16384 {
		t.Logf("Unexpected page size: %d (expected 4K or 16K)", ps)
	}
}

func TestIsPageAligned(t *testing.T) {
	ps := uint64(pageSize())

	if !isPageAligned(0) {
		t.Error("0 should be page-aligned")
	}
	if !isPageAligned(ps) || !isPageAligned(4*ps) {
		t.Error("page multiples should be aligned")
	}
	if isPageAligned(ps+1) || isPageAligned(ps-1) {
		t.Error("off-by-one addresses should not be aligned")
	}
}

// The validation tests below exercise argument checking only; every
// case fails before the native layer is reached, so no hypervisor
// access is required.

func TestMapValidation(t *testing.T) {
	vm := &VM{}
	ps := pageSize()
	buf := make([]byte, ps)

	if err := (*VM)(nil).Map(buf, 0, MemRead); err == nil {
		t.Error("nil VM should fail")
	}

	closed := &VM{closed: true}
	if err := closed.Map(buf, 0, MemRead); !errors.Is(err, ErrVMClosed) {
		t.Errorf("closed VM: got %v, want ErrVMClosed", err)
	}

	if err := vm.Map(nil, 0, MemRead); err == nil {
		t.Error("empty buffer should fail")
	}

	if err := vm.Map(buf, 0x1, MemRead); !errors.Is(err, ErrInvalidAlignment) {
		t.Errorf("unaligned guestPhys: got %v, want ErrInvalidAlignment", err)
	}

	if err := vm.Map(buf[:ps-1], 0, MemRead); !errors.Is(err, ErrInvalidAlignment) {
		t.Errorf("non-page-multiple length: got %v, want ErrInvalidAlignment", err)
	}

	if err := vm.Map(buf, ^uint64(0)-uint64(ps/2), MemRead); err == nil {
		t.Error("overflowing guest range should fail")
	}

	if err := vm.Map(buf, 0x1, MemPerm(0xff)); err == nil {
		t.Error("invalid permission bits should fail")
	}
}

func TestUnmapValidation(t *testing.T) {
	vm := &VM{}
	ps := uint64(pageSize())

	if err := vm.Unmap(0, 0); err == nil {
		t.Error("zero size should fail")
	}
	if err := vm.Unmap(0x1, ps); !errors.Is(err, ErrInvalidAlignment) {
		t.Errorf("unaligned guestPhys: got %v, want ErrInvalidAlignment", err)
	}
	if err := vm.Unmap(0, ps-1); !errors.Is(err, ErrInvalidAlignment) {
		t.Errorf("non-page-multiple size: got %v, want ErrInvalidAlignment", err)
	}
	if err := vm.Unmap(^uint64(0)-ps, 4*ps); err == nil {
		t.Error("overflowing guest range should fail")
	}

	closed := &VM{closed: true}
	if err := closed.Unmap(0, ps); !errors.Is(err, ErrVMClosed) {
		t.Errorf("closed VM: got %v, want ErrVMClosed", err)
	}
}

func TestProtectValidation(t *testing.T) {
	vm := &VM{}
	ps := uint64(pageSize())

	if err := vm.Protect(0, 0, MemRead); err == nil {
		t.Error("zero size should fail")
	}
	if err := vm.Protect(0x1, ps, MemRead); !errors.Is(err, ErrInvalidAlignment) {
		t.Errorf("unaligned guestPhys: got %v, want ErrInvalidAlignment", err)
	}
	if err := vm.Protect(0, ps, MemPerm(0x10)); err == nil {
		t.Error("invalid permission bits should fail")
	}

	closed := &VM{closed: true}
	if err := closed.Protect(0, ps, MemRead); !errors.Is(err, ErrVMClosed) {
		t.Errorf("closed VM: got %v, want ErrVMClosed", err)
	}
}
