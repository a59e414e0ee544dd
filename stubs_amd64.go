//go:build !darwin && amd64

package hypervisor

import "time"

func (cpu *VCPU) ReadVMCS(field VMCSField) (uint64, error) {
	return 0, errUnsupportedPlatform
}

func (cpu *VCPU) WriteVMCS(field VMCSField, value uint64) error {
	return errUnsupportedPlatform
}

func (cpu *VCPU) ReadMSR(msr uint32) (uint64, error) {
	return 0, errUnsupportedPlatform
}

func (cpu *VCPU) WriteMSR(msr uint32, value uint64) error {
	return errUnsupportedPlatform
}

func (cpu *VCPU) EnableNativeMSR(msr uint32, enable bool) error {
	return errUnsupportedPlatform
}

func (cpu *VCPU) ReadFPState(buf []byte) error {
	return errUnsupportedPlatform
}

func (cpu *VCPU) WriteFPState(buf []byte) error {
	return errUnsupportedPlatform
}

func (cpu *VCPU) Interrupt() error {
	return errUnsupportedPlatform
}

func InterruptVCPUs(cpus ...*VCPU) error {
	return errUnsupportedPlatform
}

func (cpu *VCPU) ExecTime() (time.Duration, error) {
	return 0, errUnsupportedPlatform
}

func (cpu *VCPU) Flush() error {
	return errUnsupportedPlatform
}

func (cpu *VCPU) InvalidateTLB() error {
	return errUnsupportedPlatform
}

func (cpu *VCPU) SetAPICAddr(guestPhys uint64) error {
	return errUnsupportedPlatform
}

func ReadVMXCap(c VMXCap) (uint64, error) {
	return 0, errUnsupportedPlatform
}

func (vm *VM) SyncTSC(tsc uint64) error {
	return errUnsupportedPlatform
}
