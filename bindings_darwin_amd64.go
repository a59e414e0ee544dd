//go:build darwin && amd64

package hypervisor

import "unsafe"

var (
	hvVcpuCreate        func(vcpu *uint32, flags uint64) uint32
	hvVcpuDestroy       func(vcpu uint32) uint32
	hvVcpuRun           func(vcpu uint32) uint32
	hvVcpuInterrupt     func(vcpus *uint32, count uint32) uint32
	hvVcpuReadRegister  func(vcpu uint32, reg uint32, value *uint64) uint32
	hvVcpuWriteRegister func(vcpu uint32, reg uint32, value uint64) uint32
	hvVcpuReadMsr       func(vcpu uint32, msr uint32, value *uint64) uint32
	hvVcpuWriteMsr      func(vcpu uint32, msr uint32, value uint64) uint32
	hvVcpuEnableMsr     func(vcpu uint32, msr uint32, enable bool) uint32
	hvVcpuReadFpstate   func(vcpu uint32, buffer unsafe.Pointer, size uint64) uint32
	hvVcpuWriteFpstate  func(vcpu uint32, buffer unsafe.Pointer, size uint64) uint32
	hvVcpuGetExecTime   func(vcpu uint32, time *uint64) uint32
	hvVcpuFlush         func(vcpu uint32) uint32
	hvVcpuInvalidateTlb func(vcpu uint32) uint32
	hvVmSyncTsc         func(tsc uint64) uint32
	hvVmxReadVmcs       func(vcpu uint32, field uint32, value *uint64) uint32
	hvVmxWriteVmcs      func(vcpu uint32, field uint32, value uint64) uint32
	hvVmxReadCapability func(field uint32, value *uint64) uint32
	hvVmxSetApicAddress func(vcpu uint32, gpa uint64) uint32
)

func registerArchFuncs() {
	register(&hvVcpuCreate, "hv_vcpu_create")
	register(&hvVcpuDestroy, "hv_vcpu_destroy")
	register(&hvVcpuRun, "hv_vcpu_run")
	register(&hvVcpuInterrupt, "hv_vcpu_interrupt")
	register(&hvVcpuReadRegister, "hv_vcpu_read_register")
	register(&hvVcpuWriteRegister, "hv_vcpu_write_register")
	register(&hvVcpuReadMsr, "hv_vcpu_read_msr")
	register(&hvVcpuWriteMsr, "hv_vcpu_write_msr")
	register(&hvVcpuEnableMsr, "hv_vcpu_enable_native_msr")
	register(&hvVcpuReadFpstate, "hv_vcpu_read_fpstate")
	register(&hvVcpuWriteFpstate, "hv_vcpu_write_fpstate")
	register(&hvVcpuGetExecTime, "hv_vcpu_get_exec_time")
	register(&hvVcpuFlush, "hv_vcpu_flush")
	register(&hvVcpuInvalidateTlb, "hv_vcpu_invalidate_tlb")
	register(&hvVmSyncTsc, "hv_vm_sync_tsc")
	register(&hvVmxReadVmcs, "hv_vmx_vcpu_read_vmcs")
	register(&hvVmxWriteVmcs, "hv_vmx_vcpu_write_vmcs")
	register(&hvVmxReadCapability, "hv_vmx_read_capability")
	register(&hvVmxSetApicAddress, "hv_vmx_vcpu_set_apic_address")
}
