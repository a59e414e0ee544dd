//go:build darwin && arm64

package hypervisor

// Native exit reason tags reported through hv_vcpu_exit_t.
const (
	hvExitReasonCanceled        uint32 = 0
	hvExitReasonException       uint32 = 1
	hvExitReasonVTimerActivated uint32 = 2
	hvExitReasonUnknown         uint32 = 3
)

// hvVcpuExit mirrors hv_vcpu_exit_t. The hypervisor owns this record;
// it is borrowed through the pointer returned by hv_vcpu_create and
// stays valid only until the next hv_vcpu_run on the same vCPU.
type hvVcpuExit struct {
	reason    uint32
	_         uint32
	exception hvVcpuExitException
}

// hvVcpuExitException mirrors hv_vcpu_exit_exception_t.
type hvVcpuExitException struct {
	syndrome        uint64
	virtualAddress  uint64
	physicalAddress uint64
}

var (
	hvVcpuCreate    func(vcpu *uint64, exit **hvVcpuExit, config uintptr) uint32
	hvVcpuDestroy   func(vcpu uint64) uint32
	hvVcpuRun       func(vcpu uint64) uint32
	hvVcpusExit     func(vcpus *uint64, count uint32) uint32
	hvVcpuGetReg    func(vcpu uint64, reg uint32, value *uint64) uint32
	hvVcpuSetReg    func(vcpu uint64, reg uint32, value uint64) uint32
	hvVcpuGetSysReg func(vcpu uint64, reg uint16, value *uint64) uint32
	hvVcpuSetSysReg func(vcpu uint64, reg uint16, value uint64) uint32
)

func registerArchFuncs() {
	register(&hvVcpuCreate, "hv_vcpu_create")
	register(&hvVcpuDestroy, "hv_vcpu_destroy")
	register(&hvVcpuRun, "hv_vcpu_run")
	register(&hvVcpusExit, "hv_vcpus_exit")
	register(&hvVcpuGetReg, "hv_vcpu_get_reg")
	register(&hvVcpuSetReg, "hv_vcpu_set_reg")
	register(&hvVcpuGetSysReg, "hv_vcpu_get_sys_reg")
	register(&hvVcpuSetSysReg, "hv_vcpu_set_sys_reg")
}
