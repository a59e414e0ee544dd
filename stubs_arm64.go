//go:build !darwin && arm64

package hypervisor

func (cpu *VCPU) GetSysReg(reg SysReg) (uint64, error) {
	return 0, errUnsupportedPlatform
}

func (cpu *VCPU) SetSysReg(reg SysReg, value uint64) error {
	return errUnsupportedPlatform
}

func (vm *VM) ExitVCPUs(cpus ...*VCPU) error {
	return errUnsupportedPlatform
}
