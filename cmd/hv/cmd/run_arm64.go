//go:build darwin && arm64

package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	hypervisor "github.com/RWTH-OS/xhypervisor"
	"golang.org/x/sys/unix"
)

// EL1h with DAIF masked, the usual entry state for bare-metal guests.
const initialCPSR = 0x3c4

func runGuest(code []byte) error {
	ok, err := hypervisor.Supported()
	if err != nil || !ok {
		return fmt.Errorf("hypervisor not supported: %v", err)
	}

	page := unix.Getpagesize()
	if memSize%page != 0 {
		return fmt.Errorf("mem-size must be a multiple of page size (%d bytes)", page)
	}
	if len(code) > memSize {
		return fmt.Errorf("code size (%d) exceeds memory size (%d)", len(code), memSize)
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	vm, err := hypervisor.NewVM()
	if err != nil {
		return fmt.Errorf("failed to create VM: %w", err)
	}
	defer vm.Close()

	hostMem, err := unix.Mmap(-1, 0, memSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return fmt.Errorf("failed to allocate memory: %w", err)
	}
	defer unix.Munmap(hostMem)
	copy(hostMem, code)

	if err := vm.Map(hostMem, baseAddr, hypervisor.MemRWX); err != nil {
		return fmt.Errorf("failed to map memory: %w", err)
	}
	defer vm.Unmap(baseAddr, uint64(memSize))

	vcpu, err := vm.NewVCPU()
	if err != nil {
		return fmt.Errorf("failed to create vCPU: %w", err)
	}
	defer vcpu.Close()

	if err := vcpu.SetReg(hypervisor.RegCPSR, initialCPSR); err != nil {
		return err
	}
	if err := vcpu.SetPC(baseAddr); err != nil {
		return err
	}

	for i := 0; i < maxExits; i++ {
		exit, err := vcpu.Run()
		if err != nil {
			return fmt.Errorf("run failed: %w", err)
		}

		switch exit.Reason {
		case hypervisor.ExitException:
			class := hypervisor.ExceptionClass(exit.Exception.Syndrome)
			if class == hypervisor.ExceptionClassHVC {
				slog.Debug("guest hypercall", "syndrome", exit.Exception.Syndrome)
				dumpRegisters(vcpu)
				return nil
			}
			dumpRegisters(vcpu)
			return fmt.Errorf("unhandled guest exception: class=0x%x syndrome=0x%x va=0x%x pa=0x%x",
				class, exit.Exception.Syndrome, exit.Exception.VirtualAddress, exit.Exception.PhysicalAddress)
		case hypervisor.ExitVTimerActivated:
			slog.Debug("vtimer activated")
		case hypervisor.ExitCancelled:
			return fmt.Errorf("guest execution cancelled")
		default:
			return fmt.Errorf("unexpected exit: %v (raw 0x%x)", exit.Reason, exit.Raw)
		}
	}

	return fmt.Errorf("guest did not halt within %d exits", maxExits)
}

func dumpRegisters(vcpu *hypervisor.VCPU) {
	for r := hypervisor.RegX0; r <= hypervisor.RegX3; r++ {
		v, err := vcpu.GetReg(r)
		if err != nil {
			continue
		}
		fmt.Fprintf(os.Stderr, "x%d = 0x%016x\n", r, v)
	}
	if pc, err := vcpu.GetPC(); err == nil {
		fmt.Fprintf(os.Stderr, "pc = 0x%016x\n", pc)
	}
}
