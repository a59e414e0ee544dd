//go:build darwin && amd64

package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	hypervisor "github.com/RWTH-OS/xhypervisor"
	"golang.org/x/sys/unix"
)

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

	if err := setupRealMode(vcpu); err != nil {
		return fmt.Errorf("failed to initialize vCPU state: %w", err)
	}
	if err := vcpu.SetReg(hypervisor.RegRIP, baseAddr); err != nil {
		return err
	}
	if err := vcpu.SetReg(hypervisor.RegRFLAGS, 0x2); err != nil {
		return err
	}
	if err := vcpu.SetReg(hypervisor.RegRSP, 0x0); err != nil {
		return err
	}

	for i := 0; i < maxExits; i++ {
		exit, err := vcpu.Run()
		if err != nil {
			return fmt.Errorf("run failed: %w", err)
		}

		switch exit.Reason {
		case hypervisor.ExitHalt:
			slog.Debug("guest halted")
			return nil
		case hypervisor.ExitIO:
			if !exit.IO.In {
				rax, err := vcpu.GetReg(hypervisor.RegRAX)
				if err != nil {
					return err
				}
				fmt.Printf("%c", rune(rax&0xff))
			}
			// Skip the emulated instruction before resuming.
			rip, err := vcpu.GetReg(hypervisor.RegRIP)
			if err != nil {
				return err
			}
			if err := vcpu.SetReg(hypervisor.RegRIP, rip+exit.InstructionLength); err != nil {
				return err
			}
		case hypervisor.ExitIRQ:
			slog.Debug("external interrupt")
		case hypervisor.ExitMemoryFault:
			return fmt.Errorf("guest memory fault: qualification=0x%x", exit.Qualification)
		default:
			fmt.Fprint(os.Stderr, vcpu.String())
			return fmt.Errorf("unexpected exit: %v (raw 0x%x)", exit.Reason, exit.Raw)
		}
	}

	return fmt.Errorf("guest did not halt within %d exits", maxExits)
}

// setupRealMode negotiates the VMCS control words against the
// hardware capabilities and builds a 16-bit real-mode segment state.
func setupRealMode(vcpu *hypervisor.VCPU) error {
	pinbased, err := hypervisor.ReadVMXCap(hypervisor.VMXCapPinbased)
	if err != nil {
		return err
	}
	procbased, err := hypervisor.ReadVMXCap(hypervisor.VMXCapProcbased)
	if err != nil {
		return err
	}
	procbased2, err := hypervisor.ReadVMXCap(hypervisor.VMXCapProcbased2)
	if err != nil {
		return err
	}
	entry, err := hypervisor.ReadVMXCap(hypervisor.VMXCapEntry)
	if err != nil {
		return err
	}

	ctrls := []struct {
		field hypervisor.VMCSField
		value uint64
	}{
		{hypervisor.VMCS_CTRL_PIN_BASED, hypervisor.Cap2Ctrl(pinbased, 0)},
		{hypervisor.VMCS_CTRL_CPU_BASED, hypervisor.Cap2Ctrl(procbased,
			hypervisor.CPU_BASED_HLT|hypervisor.CPU_BASED_CR8_LOAD|hypervisor.CPU_BASED_CR8_STORE)},
		{hypervisor.VMCS_CTRL_CPU_BASED2, hypervisor.Cap2Ctrl(procbased2, 0)},
		{hypervisor.VMCS_CTRL_VMENTRY_CONTROLS, hypervisor.Cap2Ctrl(entry, 0)},
		{hypervisor.VMCS_CTRL_EXC_BITMAP, 0xffffffff},
		{hypervisor.VMCS_CTRL_CR0_MASK, 0x60000000},
		{hypervisor.VMCS_CTRL_CR0_SHADOW, 0},
		{hypervisor.VMCS_CTRL_CR4_MASK, 0},
		{hypervisor.VMCS_CTRL_CR4_SHADOW, 0},
	}

	segs := []struct {
		field hypervisor.VMCSField
		value uint64
	}{
		{hypervisor.VMCS_GUEST_CS, 0},
		{hypervisor.VMCS_GUEST_CS_BASE, 0},
		{hypervisor.VMCS_GUEST_CS_LIMIT, 0xffff},
		{hypervisor.VMCS_GUEST_CS_AR, 0x9b},
		{hypervisor.VMCS_GUEST_DS, 0},
		{hypervisor.VMCS_GUEST_DS_BASE, 0},
		{hypervisor.VMCS_GUEST_DS_LIMIT, 0xffff},
		{hypervisor.VMCS_GUEST_DS_AR, 0x93},
		{hypervisor.VMCS_GUEST_ES, 0},
		{hypervisor.VMCS_GUEST_ES_BASE, 0},
		{hypervisor.VMCS_GUEST_ES_LIMIT, 0xffff},
		{hypervisor.VMCS_GUEST_ES_AR, 0x93},
		{hypervisor.VMCS_GUEST_FS, 0},
		{hypervisor.VMCS_GUEST_FS_BASE, 0},
		{hypervisor.VMCS_GUEST_FS_LIMIT, 0xffff},
		{hypervisor.VMCS_GUEST_FS_AR, 0x93},
		{hypervisor.VMCS_GUEST_GS, 0},
		{hypervisor.VMCS_GUEST_GS_BASE, 0},
		{hypervisor.VMCS_GUEST_GS_LIMIT, 0xffff},
		{hypervisor.VMCS_GUEST_GS_AR, 0x93},
		{hypervisor.VMCS_GUEST_SS, 0},
		{hypervisor.VMCS_GUEST_SS_BASE, 0},
		{hypervisor.VMCS_GUEST_SS_LIMIT, 0xffff},
		{hypervisor.VMCS_GUEST_SS_AR, 0x93},
		{hypervisor.VMCS_GUEST_TR, 0},
		{hypervisor.VMCS_GUEST_TR_BASE, 0},
		{hypervisor.VMCS_GUEST_TR_LIMIT, 0},
		{hypervisor.VMCS_GUEST_TR_AR, 0x83},
		{hypervisor.VMCS_GUEST_LDTR, 0},
		{hypervisor.VMCS_GUEST_LDTR_BASE, 0},
		{hypervisor.VMCS_GUEST_LDTR_LIMIT, 0},
		{hypervisor.VMCS_GUEST_LDTR_AR, 0x10000},
		{hypervisor.VMCS_GUEST_GDTR_BASE, 0},
		{hypervisor.VMCS_GUEST_GDTR_LIMIT, 0},
		{hypervisor.VMCS_GUEST_IDTR_BASE, 0},
		{hypervisor.VMCS_GUEST_IDTR_LIMIT, 0},
		{hypervisor.VMCS_GUEST_CR0, 0x20},
		{hypervisor.VMCS_GUEST_CR3, 0},
		{hypervisor.VMCS_GUEST_CR4, 0x2000},
	}

	for _, w := range append(ctrls, segs...) {
		if err := vcpu.WriteVMCS(w.field, w.value); err != nil {
			return err
		}
	}
	return nil
}
