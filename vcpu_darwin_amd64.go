//go:build darwin && amd64

package hypervisor

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unsafe"
)

type vcpuState int

const (
	stateRunnable vcpuState = iota
	stateRunning
	stateExited
	stateDestroyed
)

// VCPU is a virtual processor bound to the calling OS thread. All
// methods except Interrupt must be called from the thread that created
// the vCPU; callers should pin it with runtime.LockOSThread before
// NewVCPU.
type VCPU struct {
	id uint32

	state    vcpuState
	lastExit ExitInfo
	closeMu  sync.Mutex
}

// NewVCPU creates a vCPU on the VM, bound to the calling thread.
func (vm *VM) NewVCPU() (*VCPU, error) {
	start := time.Now()
	defer func() {
		recordVCPUCreate(time.Since(start))
	}()

	if vm == nil {
		return nil, fmt.Errorf("hv: VM is nil")
	}
	if vm.closed {
		return nil, ErrVMClosed
	}

	cpu := &VCPU{}
	if err := hvErr(hvVcpuCreate(&cpu.id, 0)); err != nil {
		recordResourceError()
		return nil, fmt.Errorf("failed to create vCPU: %w", err)
	}

	return cpu, nil
}

// ID returns the native vCPU identifier.
func (cpu *VCPU) ID() uint32 { return cpu.id }

// Close destroys the vCPU. It must be called from the owning thread
// and fails with ErrVCPURunning while a Run call is in flight.
func (cpu *VCPU) Close() error {
	if cpu == nil {
		return nil
	}

	cpu.closeMu.Lock()
	defer cpu.closeMu.Unlock()

	switch cpu.state {
	case stateDestroyed:
		return nil
	case stateRunning:
		return ErrVCPURunning
	}

	if err := hvErr(hvVcpuDestroy(cpu.id)); err != nil {
		return fmt.Errorf("failed to destroy vCPU %d: %w", cpu.id, err)
	}

	cpu.state = stateDestroyed
	recordVCPUDestroy()
	return nil
}

// Run enters the guest and blocks until the next exit. The exit
// record is derived from the VMCS exit-reason, exit-qualification and
// instruction-length fields; the instruction length lets callers
// advance RIP past an emulated instruction before resuming.
func (cpu *VCPU) Run() (ExitInfo, error) {
	start := time.Now()
	defer func() {
		recordVCPURun(time.Since(start))
	}()

	if cpu == nil {
		return ExitInfo{}, fmt.Errorf("hv: vCPU is nil")
	}

	cpu.closeMu.Lock()
	switch cpu.state {
	case stateDestroyed:
		cpu.closeMu.Unlock()
		return ExitInfo{}, ErrVCPUClosed
	case stateRunning:
		cpu.closeMu.Unlock()
		return ExitInfo{}, ErrVCPURunning
	}
	cpu.state = stateRunning
	cpu.closeMu.Unlock()

	ret := hvVcpuRun(cpu.id)

	cpu.closeMu.Lock()
	defer cpu.closeMu.Unlock()

	if err := hvErr(ret); err != nil {
		cpu.state = stateRunnable
		recordExecutionError()
		return ExitInfo{}, fmt.Errorf("vCPU %d run failed: %w", cpu.id, err)
	}

	reason, err := cpu.readVMCSLocked(VMCS_RO_EXIT_REASON)
	if err != nil {
		cpu.state = stateRunnable
		recordExecutionError()
		return ExitInfo{}, err
	}
	qualification, err := cpu.readVMCSLocked(VMCS_RO_EXIT_QUALIFIC)
	if err != nil {
		cpu.state = stateRunnable
		recordExecutionError()
		return ExitInfo{}, err
	}
	instrLen, err := cpu.readVMCSLocked(VMCS_RO_VMEXIT_INSTR_LEN)
	if err != nil {
		cpu.state = stateRunnable
		recordExecutionError()
		return ExitInfo{}, err
	}

	cpu.lastExit = deriveVMXExit(reason, qualification, instrLen)
	cpu.state = stateExited
	return cpu.lastExit, nil
}

// ExitInfo returns the exit record from the most recent Run. It fails
// with ErrNoExitInfo unless the vCPU is in the exited state.
func (cpu *VCPU) ExitInfo() (ExitInfo, error) {
	if cpu == nil {
		return ExitInfo{}, fmt.Errorf("hv: vCPU is nil")
	}
	cpu.closeMu.Lock()
	defer cpu.closeMu.Unlock()
	if cpu.state != stateExited {
		return ExitInfo{}, ErrNoExitInfo
	}
	return cpu.lastExit, nil
}

func (cpu *VCPU) checkAccess() error {
	if cpu == nil {
		return fmt.Errorf("hv: vCPU is nil")
	}
	switch cpu.state {
	case stateDestroyed:
		return ErrVCPUClosed
	case stateRunning:
		return ErrVCPURunning
	}
	return nil
}

// GetReg reads an architectural register.
func (cpu *VCPU) GetReg(reg Reg) (uint64, error) {
	if err := cpu.checkAccess(); err != nil {
		return 0, err
	}
	if !reg.valid() {
		return 0, fmt.Errorf("hv: register %d out of range: %w", reg, ErrInvalidRegister)
	}

	var value uint64
	if err := hvErr(hvVcpuReadRegister(cpu.id, uint32(reg), &value)); err != nil {
		return 0, fmt.Errorf("failed to read register %d: %w", reg, err)
	}
	recordRegisterRead()
	return value, nil
}

// SetReg writes an architectural register. The vCPU must not be
// running.
func (cpu *VCPU) SetReg(reg Reg, value uint64) error {
	if err := cpu.checkAccess(); err != nil {
		return err
	}
	if !reg.valid() {
		return fmt.Errorf("hv: register %d out of range: %w", reg, ErrInvalidRegister)
	}

	if err := hvErr(hvVcpuWriteRegister(cpu.id, uint32(reg), value)); err != nil {
		return fmt.Errorf("failed to write register %d: %w", reg, err)
	}
	recordRegisterWrite()
	return nil
}

// GetPC returns the instruction pointer.
func (cpu *VCPU) GetPC() (uint64, error) { return cpu.GetReg(RegRIP) }

// SetPC sets the instruction pointer.
func (cpu *VCPU) SetPC(value uint64) error { return cpu.SetReg(RegRIP, value) }

// ReadVMCS reads a field of the vCPU's virtual machine control
// structure.
func (cpu *VCPU) ReadVMCS(field VMCSField) (uint64, error) {
	if err := cpu.checkAccess(); err != nil {
		return 0, err
	}
	return cpu.readVMCSLocked(field)
}

func (cpu *VCPU) readVMCSLocked(field VMCSField) (uint64, error) {
	var value uint64
	if err := hvErr(hvVmxReadVmcs(cpu.id, uint32(field), &value)); err != nil {
		return 0, fmt.Errorf("failed to read VMCS field 0x%x: %w", uint32(field), err)
	}
	recordVMCSOp()
	return value, nil
}

// WriteVMCS writes a field of the vCPU's virtual machine control
// structure. Control-word fields must be negotiated against the
// hardware capabilities first, see Cap2Ctrl.
func (cpu *VCPU) WriteVMCS(field VMCSField, value uint64) error {
	if err := cpu.checkAccess(); err != nil {
		return err
	}
	if err := hvErr(hvVmxWriteVmcs(cpu.id, uint32(field), value)); err != nil {
		return fmt.Errorf("failed to write VMCS field 0x%x: %w", uint32(field), err)
	}
	recordVMCSOp()
	return nil
}

// ReadMSR reads a model-specific register.
func (cpu *VCPU) ReadMSR(msr uint32) (uint64, error) {
	if err := cpu.checkAccess(); err != nil {
		return 0, err
	}
	var value uint64
	if err := hvErr(hvVcpuReadMsr(cpu.id, msr, &value)); err != nil {
		return 0, fmt.Errorf("failed to read MSR 0x%x: %w", msr, err)
	}
	recordMSROp()
	return value, nil
}

// WriteMSR writes a model-specific register.
func (cpu *VCPU) WriteMSR(msr uint32, value uint64) error {
	if err := cpu.checkAccess(); err != nil {
		return err
	}
	if err := hvErr(hvVcpuWriteMsr(cpu.id, msr, value)); err != nil {
		return fmt.Errorf("failed to write MSR 0x%x: %w", msr, err)
	}
	recordMSROp()
	return nil
}

// EnableNativeMSR controls whether the guest accesses the MSR
// natively instead of exiting.
func (cpu *VCPU) EnableNativeMSR(msr uint32, enable bool) error {
	if err := cpu.checkAccess(); err != nil {
		return err
	}
	if err := hvErr(hvVcpuEnableMsr(cpu.id, msr, enable)); err != nil {
		return fmt.Errorf("failed to toggle native MSR 0x%x: %w", msr, err)
	}
	recordMSROp()
	return nil
}

// ReadFPState copies the vCPU's floating-point and SIMD state into
// buf, which must be large enough for the architectural XSAVE area.
func (cpu *VCPU) ReadFPState(buf []byte) error {
	if err := cpu.checkAccess(); err != nil {
		return err
	}
	if len(buf) == 0 {
		return fmt.Errorf("hv: fpstate buffer is empty")
	}
	if err := hvErr(hvVcpuReadFpstate(cpu.id, unsafe.Pointer(&buf[0]), uint64(len(buf)))); err != nil {
		return fmt.Errorf("failed to read fpstate: %w", err)
	}
	return nil
}

// WriteFPState replaces the vCPU's floating-point and SIMD state from
// buf.
func (cpu *VCPU) WriteFPState(buf []byte) error {
	if err := cpu.checkAccess(); err != nil {
		return err
	}
	if len(buf) == 0 {
		return fmt.Errorf("hv: fpstate buffer is empty")
	}
	if err := hvErr(hvVcpuWriteFpstate(cpu.id, unsafe.Pointer(&buf[0]), uint64(len(buf)))); err != nil {
		return fmt.Errorf("failed to write fpstate: %w", err)
	}
	return nil
}

// Interrupt forces the vCPU out of the guest. Safe to call from any
// thread; the affected Run call returns with the pending exit reason.
func (cpu *VCPU) Interrupt() error {
	if cpu == nil {
		return fmt.Errorf("hv: vCPU is nil")
	}
	id := cpu.id
	if err := hvErr(hvVcpuInterrupt(&id, 1)); err != nil {
		return fmt.Errorf("failed to interrupt vCPU %d: %w", id, err)
	}
	recordInterrupt()
	return nil
}

// InterruptVCPUs forces the given vCPUs out of the guest. Safe to
// call from any thread.
func InterruptVCPUs(cpus ...*VCPU) error {
	if len(cpus) == 0 {
		return nil
	}
	ids := make([]uint32, len(cpus))
	for i, cpu := range cpus {
		if cpu == nil {
			return fmt.Errorf("hv: vCPU %d is nil", i)
		}
		ids[i] = cpu.id
	}
	if err := hvErr(hvVcpuInterrupt(&ids[0], uint32(len(ids)))); err != nil {
		return fmt.Errorf("failed to interrupt %d vCPUs: %w", len(ids), err)
	}
	recordInterrupt()
	return nil
}

// ExecTime returns the cumulative time the vCPU has spent inside the
// guest.
func (cpu *VCPU) ExecTime() (time.Duration, error) {
	if err := cpu.checkAccess(); err != nil {
		return 0, err
	}
	var ns uint64
	if err := hvErr(hvVcpuGetExecTime(cpu.id, &ns)); err != nil {
		return 0, fmt.Errorf("failed to read exec time: %w", err)
	}
	return time.Duration(ns), nil
}

// Flush forces cached vCPU state out to the VMCS.
func (cpu *VCPU) Flush() error {
	if err := cpu.checkAccess(); err != nil {
		return err
	}
	if err := hvErr(hvVcpuFlush(cpu.id)); err != nil {
		return fmt.Errorf("failed to flush vCPU %d: %w", cpu.id, err)
	}
	return nil
}

// InvalidateTLB invalidates the vCPU's translation lookaside buffer.
func (cpu *VCPU) InvalidateTLB() error {
	if err := cpu.checkAccess(); err != nil {
		return err
	}
	if err := hvErr(hvVcpuInvalidateTlb(cpu.id)); err != nil {
		return fmt.Errorf("failed to invalidate TLB on vCPU %d: %w", cpu.id, err)
	}
	return nil
}

// SetAPICAddr sets the guest physical address of the virtual APIC
// page.
func (cpu *VCPU) SetAPICAddr(guestPhys uint64) error {
	if err := cpu.checkAccess(); err != nil {
		return err
	}
	if err := hvErr(hvVmxSetApicAddress(cpu.id, guestPhys)); err != nil {
		return fmt.Errorf("failed to set APIC address 0x%x: %w", guestPhys, err)
	}
	return nil
}

// ReadVMXCap reads a hardware VMX capability. The value encodes
// allowed-0 settings in the high half and allowed-1 settings in the
// low half; see Cap2Ctrl.
func ReadVMXCap(c VMXCap) (uint64, error) {
	if err := ensureFramework(); err != nil {
		return 0, err
	}
	var value uint64
	if err := hvErr(hvVmxReadCapability(uint32(c), &value)); err != nil {
		return 0, fmt.Errorf("failed to read VMX capability %v: %w", c, err)
	}
	return value, nil
}

// SyncTSC synchronizes the guest time-stamp counter across all vCPUs.
func (vm *VM) SyncTSC(tsc uint64) error {
	if vm == nil {
		return fmt.Errorf("hv: VM is nil")
	}
	if vm.closed {
		return ErrVMClosed
	}
	if err := hvErr(hvVmSyncTsc(tsc)); err != nil {
		return fmt.Errorf("failed to sync TSC: %w", err)
	}
	return nil
}

// String dumps the general-purpose registers and the interesting VMCS
// fields for debugging.
func (cpu *VCPU) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "vCPU %d\n", cpu.id)

	gprs := []struct {
		name string
		reg  Reg
	}{
		{"RIP", RegRIP}, {"RFLAGS", RegRFLAGS},
		{"RAX", RegRAX}, {"RBX", RegRBX}, {"RCX", RegRCX}, {"RDX", RegRDX},
		{"RSI", RegRSI}, {"RDI", RegRDI}, {"RSP", RegRSP}, {"RBP", RegRBP},
		{"CR0", RegCR0}, {"CR2", RegCR2}, {"CR3", RegCR3}, {"CR4", RegCR4},
	}
	for _, r := range gprs {
		value, err := cpu.GetReg(r.reg)
		if err != nil {
			fmt.Fprintf(&b, "  %-6s <%v>\n", r.name, err)
			continue
		}
		fmt.Fprintf(&b, "  %-6s 0x%016x\n", r.name, value)
	}

	fields := []struct {
		name  string
		field VMCSField
	}{
		{"EXIT_REASON", VMCS_RO_EXIT_REASON},
		{"EXIT_QUALIFIC", VMCS_RO_EXIT_QUALIFIC},
		{"GUEST_PHYS_ADDR", VMCS_RO_GUEST_PHYS_ADDR},
		{"GUEST_RIP", VMCS_GUEST_RIP},
		{"GUEST_CR0", VMCS_GUEST_CR0},
		{"GUEST_CR3", VMCS_GUEST_CR3},
		{"GUEST_CR4", VMCS_GUEST_CR4},
	}
	for _, f := range fields {
		value, err := cpu.ReadVMCS(f.field)
		if err != nil {
			fmt.Fprintf(&b, "  %-16s <%v>\n", f.name, err)
			continue
		}
		fmt.Fprintf(&b, "  %-16s 0x%016x\n", f.name, value)
	}

	return b.String()
}
