package hypervisor

import (
	"sync/atomic"
	"time"
)

// Performance metrics for monitoring hypervisor operations
var (
	// Operation counters
	vmCreateCount     uint64
	vmDestroyCount    uint64
	vcpuCreateCount   uint64
	vcpuDestroyCount  uint64
	mapOperations     uint64
	unmapOperations   uint64
	protectOperations uint64
	registerReads     uint64
	registerWrites    uint64
	vmcsOperations    uint64
	msrOperations     uint64
	interruptCount    uint64
	runOperations     uint64

	// Timing metrics (nanoseconds)
	totalVMCreateTime   uint64
	totalVCPUCreateTime uint64
	totalRunTime        uint64

	// Error counters
	executionErrors uint64
	resourceErrors  uint64
)

// Metrics provides access to performance metrics
type Metrics struct {
	VMCreated           uint64 `json:"vm_created"`
	VMDestroyed         uint64 `json:"vm_destroyed"`
	VCPUCreated         uint64 `json:"vcpu_created"`
	VCPUDestroyed       uint64 `json:"vcpu_destroyed"`
	MapOperations       uint64 `json:"map_operations"`
	UnmapOperations     uint64 `json:"unmap_operations"`
	ProtectOperations   uint64 `json:"protect_operations"`
	RegisterReads       uint64 `json:"register_reads"`
	RegisterWrites      uint64 `json:"register_writes"`
	VMCSOperations      uint64 `json:"vmcs_operations"`
	MSROperations       uint64 `json:"msr_operations"`
	Interrupts          uint64 `json:"interrupts"`
	RunOperations       uint64 `json:"run_operations"`
	AvgVMCreateTimeNs   uint64 `json:"avg_vm_create_time_ns"`
	AvgVCPUCreateTimeNs uint64 `json:"avg_vcpu_create_time_ns"`
	AvgRunTimeNs        uint64 `json:"avg_run_time_ns"`
	ExecutionErrors     uint64 `json:"execution_errors"`
	ResourceErrors      uint64 `json:"resource_errors"`
}

// GetMetrics returns current performance metrics
func GetMetrics() Metrics {
	vmCreated := atomic.LoadUint64(&vmCreateCount)
	vcpuCreated := atomic.LoadUint64(&vcpuCreateCount)
	runOps := atomic.LoadUint64(&runOperations)

	var avgVMCreate, avgVCPUCreate, avgRun uint64
	if vmCreated > 0 {
		avgVMCreate = atomic.LoadUint64(&totalVMCreateTime) / vmCreated
	}
	if vcpuCreated > 0 {
		avgVCPUCreate = atomic.LoadUint64(&totalVCPUCreateTime) / vcpuCreated
	}
	if runOps > 0 {
		avgRun = atomic.LoadUint64(&totalRunTime) / runOps
	}

	return Metrics{
		VMCreated:           vmCreated,
		VMDestroyed:         atomic.LoadUint64(&vmDestroyCount),
		VCPUCreated:         vcpuCreated,
		VCPUDestroyed:       atomic.LoadUint64(&vcpuDestroyCount),
		MapOperations:       atomic.LoadUint64(&mapOperations),
		UnmapOperations:     atomic.LoadUint64(&unmapOperations),
		ProtectOperations:   atomic.LoadUint64(&protectOperations),
		RegisterReads:       atomic.LoadUint64(&registerReads),
		RegisterWrites:      atomic.LoadUint64(&registerWrites),
		VMCSOperations:      atomic.LoadUint64(&vmcsOperations),
		MSROperations:       atomic.LoadUint64(&msrOperations),
		Interrupts:          atomic.LoadUint64(&interruptCount),
		RunOperations:       runOps,
		AvgVMCreateTimeNs:   avgVMCreate,
		AvgVCPUCreateTimeNs: avgVCPUCreate,
		AvgRunTimeNs:        avgRun,
		ExecutionErrors:     atomic.LoadUint64(&executionErrors),
		ResourceErrors:      atomic.LoadUint64(&resourceErrors),
	}
}

// ResetMetrics clears all performance metrics
func ResetMetrics() {
	atomic.StoreUint64(&vmCreateCount, 0)
	atomic.StoreUint64(&vmDestroyCount, 0)
	atomic.StoreUint64(&vcpuCreateCount, 0)
	atomic.StoreUint64(&vcpuDestroyCount, 0)
	atomic.StoreUint64(&mapOperations, 0)
	atomic.StoreUint64(&unmapOperations, 0)
	atomic.StoreUint64(&protectOperations, 0)
	atomic.StoreUint64(&registerReads, 0)
	atomic.StoreUint64(&registerWrites, 0)
	atomic.StoreUint64(&vmcsOperations, 0)
	atomic.StoreUint64(&msrOperations, 0)
	atomic.StoreUint64(&interruptCount, 0)
	atomic.StoreUint64(&runOperations, 0)
	atomic.StoreUint64(&totalVMCreateTime, 0)
	atomic.StoreUint64(&totalVCPUCreateTime, 0)
	atomic.StoreUint64(&totalRunTime, 0)
	atomic.StoreUint64(&executionErrors, 0)
	atomic.StoreUint64(&resourceErrors, 0)
}

// Internal metric recording functions
func recordVMCreate(duration time.Duration) {
	atomic.AddUint64(&vmCreateCount, 1)
	atomic.AddUint64(&totalVMCreateTime, uint64(duration.Nanoseconds()))
}

func recordVMDestroy() {
	atomic.AddUint64(&vmDestroyCount, 1)
}

func recordVCPUCreate(duration time.Duration) {
	atomic.AddUint64(&vcpuCreateCount, 1)
	atomic.AddUint64(&totalVCPUCreateTime, uint64(duration.Nanoseconds()))
}

func recordVCPUDestroy() {
	atomic.AddUint64(&vcpuDestroyCount, 1)
}

func recordMapOperation() {
	atomic.AddUint64(&mapOperations, 1)
}

func recordUnmapOperation() {
	atomic.AddUint64(&unmapOperations, 1)
}

func recordProtectOperation() {
	atomic.AddUint64(&protectOperations, 1)
}

func recordRegisterRead() {
	atomic.AddUint64(&registerReads, 1)
}

func recordRegisterWrite() {
	atomic.AddUint64(&registerWrites, 1)
}

func recordVMCSOp() {
	atomic.AddUint64(&vmcsOperations, 1)
}

func recordMSROp() {
	atomic.AddUint64(&msrOperations, 1)
}

func recordInterrupt() {
	atomic.AddUint64(&interruptCount, 1)
}

func recordVCPURun(duration time.Duration) {
	atomic.AddUint64(&runOperations, 1)
	atomic.AddUint64(&totalRunTime, uint64(duration.Nanoseconds()))
}

func recordExecutionError() {
	atomic.AddUint64(&executionErrors, 1)
}

func recordResourceError() {
	atomic.AddUint64(&resourceErrors, 1)
}
