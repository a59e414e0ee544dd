//go:build !darwin

package hypervisor

import "fmt"

var errUnsupportedPlatform = fmt.Errorf("hypervisor: not supported on this platform")

// Supported returns false on non-Darwin platforms.
func Supported() (bool, error) {
	return false, errUnsupportedPlatform
}

// VM is a placeholder on non-Darwin platforms; every method fails.
type VM struct{}

// NewVM returns an error on non-Darwin platforms.
func NewVM() (*VM, error) {
	return nil, errUnsupportedPlatform
}

func (vm *VM) Close() error {
	return errUnsupportedPlatform
}

func (vm *VM) Map(host []byte, guestPhys uint64, perms MemPerm) error {
	return errUnsupportedPlatform
}

func (vm *VM) Unmap(guestPhys, size uint64) error {
	return errUnsupportedPlatform
}

func (vm *VM) Protect(guestPhys, size uint64, perms MemPerm) error {
	return errUnsupportedPlatform
}

func (vm *VM) NewVCPU() (*VCPU, error) {
	return nil, errUnsupportedPlatform
}

// VCPU is a placeholder on non-Darwin platforms; every method fails.
type VCPU struct{}

func (cpu *VCPU) Close() error {
	return errUnsupportedPlatform
}

func (cpu *VCPU) Run() (ExitInfo, error) {
	return ExitInfo{}, errUnsupportedPlatform
}

func (cpu *VCPU) ExitInfo() (ExitInfo, error) {
	return ExitInfo{}, errUnsupportedPlatform
}

func (cpu *VCPU) GetReg(reg Reg) (uint64, error) {
	return 0, errUnsupportedPlatform
}

func (cpu *VCPU) SetReg(reg Reg, value uint64) error {
	return errUnsupportedPlatform
}

func (cpu *VCPU) GetPC() (uint64, error) {
	return 0, errUnsupportedPlatform
}

func (cpu *VCPU) SetPC(value uint64) error {
	return errUnsupportedPlatform
}
