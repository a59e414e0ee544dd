//go:build darwin && arm64

package hypervisor

import (
	"fmt"
	"sync"
	"time"
)

type vcpuState int

const (
	stateRunnable vcpuState = iota
	stateRunning
	stateExited
	stateDestroyed
)

// VCPU is a virtual processor bound to the calling OS thread. All
// methods except asynchronous cancellation through (*VM).ExitVCPUs
// must be called from the thread that created the vCPU; callers should
// pin it with runtime.LockOSThread before NewVCPU.
type VCPU struct {
	id uint64

	// exit points at the hypervisor-owned exit record. Its contents
	// are only meaningful between a Run return and the next Run call,
	// so Run decodes it into lastExit immediately.
	exit *hvVcpuExit

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
	if err := hvErr(hvVcpuCreate(&cpu.id, &cpu.exit, 0)); err != nil {
		recordResourceError()
		return nil, fmt.Errorf("failed to create vCPU: %w", err)
	}

	return cpu, nil
}

// ID returns the native vCPU identifier.
func (cpu *VCPU) ID() uint64 { return cpu.id }

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
	cpu.exit = nil
	recordVCPUDestroy()
	return nil
}

// Run enters the guest and blocks until the next exit, then returns
// the decoded exit record. The same record remains available through
// ExitInfo until the next Run.
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

	// Decode the borrowed exit record now; the hypervisor reuses it
	// on the next entry.
	cpu.lastExit = decodeExit(cpu.exit)
	cpu.state = stateExited
	return cpu.lastExit, nil
}

func decodeExit(exit *hvVcpuExit) ExitInfo {
	info := ExitInfo{Raw: uint64(exit.reason)}
	switch exit.reason {
	case hvExitReasonCanceled:
		info.Reason = ExitCancelled
	case hvExitReasonException:
		info.Reason = ExitException
		info.Exception = ExceptionInfo{
			Syndrome:        exit.exception.syndrome,
			VirtualAddress:  exit.exception.virtualAddress,
			PhysicalAddress: exit.exception.physicalAddress,
		}
	case hvExitReasonVTimerActivated:
		info.Reason = ExitVTimerActivated
	default:
		info.Reason = ExitUnknown
	}
	return info
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

// GetReg reads an architectural register.
func (cpu *VCPU) GetReg(reg Reg) (uint64, error) {
	if cpu == nil {
		return 0, fmt.Errorf("hv: vCPU is nil")
	}
	if !reg.valid() {
		return 0, fmt.Errorf("hv: register %d out of range: %w", reg, ErrInvalidRegister)
	}
	if cpu.state == stateDestroyed {
		return 0, ErrVCPUClosed
	}

	var value uint64
	if err := hvErr(hvVcpuGetReg(cpu.id, uint32(reg), &value)); err != nil {
		return 0, fmt.Errorf("failed to read register %d: %w", reg, err)
	}
	recordRegisterRead()
	return value, nil
}

// SetReg writes an architectural register.
func (cpu *VCPU) SetReg(reg Reg, value uint64) error {
	if cpu == nil {
		return fmt.Errorf("hv: vCPU is nil")
	}
	if !reg.valid() {
		return fmt.Errorf("hv: register %d out of range: %w", reg, ErrInvalidRegister)
	}
	if cpu.state == stateDestroyed {
		return ErrVCPUClosed
	}

	if err := hvErr(hvVcpuSetReg(cpu.id, uint32(reg), value)); err != nil {
		return fmt.Errorf("failed to write register %d: %w", reg, err)
	}
	recordRegisterWrite()
	return nil
}

// GetSysReg reads a system register.
func (cpu *VCPU) GetSysReg(reg SysReg) (uint64, error) {
	if cpu == nil {
		return 0, fmt.Errorf("hv: vCPU is nil")
	}
	if !reg.valid() {
		return 0, fmt.Errorf("hv: system register %d out of range: %w", reg, ErrInvalidRegister)
	}
	if cpu.state == stateDestroyed {
		return 0, ErrVCPUClosed
	}

	var value uint64
	if err := hvErr(hvVcpuGetSysReg(cpu.id, reg.native(), &value)); err != nil {
		return 0, fmt.Errorf("failed to read system register %d: %w", reg, err)
	}
	recordRegisterRead()
	return value, nil
}

// SetSysReg writes a system register.
func (cpu *VCPU) SetSysReg(reg SysReg, value uint64) error {
	if cpu == nil {
		return fmt.Errorf("hv: vCPU is nil")
	}
	if !reg.valid() {
		return fmt.Errorf("hv: system register %d out of range: %w", reg, ErrInvalidRegister)
	}
	if cpu.state == stateDestroyed {
		return ErrVCPUClosed
	}

	if err := hvErr(hvVcpuSetSysReg(cpu.id, reg.native(), value)); err != nil {
		return fmt.Errorf("failed to write system register %d: %w", reg, err)
	}
	recordRegisterWrite()
	return nil
}

// GetPC returns the program counter.
func (cpu *VCPU) GetPC() (uint64, error) { return cpu.GetReg(RegPC) }

// SetPC sets the program counter.
func (cpu *VCPU) SetPC(value uint64) error { return cpu.SetReg(RegPC, value) }

// ExitVCPUs forces the given vCPUs out of the guest. Safe to call
// from any thread; the affected Run calls return with ExitCancelled.
func (vm *VM) ExitVCPUs(cpus ...*VCPU) error {
	if vm == nil {
		return fmt.Errorf("hv: VM is nil")
	}
	if vm.closed {
		return ErrVMClosed
	}
	if len(cpus) == 0 {
		return nil
	}

	ids := make([]uint64, len(cpus))
	for i, cpu := range cpus {
		if cpu == nil {
			return fmt.Errorf("hv: vCPU %d is nil", i)
		}
		ids[i] = cpu.id
	}

	if err := hvErr(hvVcpusExit(&ids[0], uint32(len(ids)))); err != nil {
		return fmt.Errorf("failed to cancel %d vCPUs: %w", len(ids), err)
	}
	recordInterrupt()
	return nil
}
