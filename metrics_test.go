package hypervisor

import (
	"testing"
	"time"
)

func TestMetricsRecording(t *testing.T) {
	ResetMetrics()

	recordVMCreate(100 * time.Millisecond)
	recordVMDestroy()
	recordVCPUCreate(10 * time.Millisecond)
	recordVCPUDestroy()
	recordMapOperation()
	recordMapOperation()
	recordUnmapOperation()
	recordProtectOperation()
	recordRegisterRead()
	recordRegisterRead()
	recordRegisterWrite()
	recordVMCSOp()
	recordMSROp()
	recordInterrupt()
	recordVCPURun(50 * time.Millisecond)
	recordVCPURun(150 * time.Millisecond)
	recordExecutionError()
	recordResourceError()

	m := GetMetrics()

	if m.VMCreated != 1 || m.VMDestroyed != 1 {
		t.Errorf("VM counters = %d/%d, want 1/1", m.VMCreated, m.VMDestroyed)
	}
	if m.VCPUCreated != 1 || m.VCPUDestroyed != 1 {
		t.Errorf("vCPU counters = %d/%d, want 1/1", m.VCPUCreated, m.VCPUDestroyed)
	}
	if m.MapOperations != 2 {
		t.Errorf("MapOperations = %d, want 2", m.MapOperations)
	}
	if m.UnmapOperations != 1 {
		t.Errorf("UnmapOperations = %d, want 1", m.UnmapOperations)
	}
	if m.ProtectOperations != 1 {
		t.Errorf("ProtectOperations = %d, want 1", m.ProtectOperations)
	}
	if m.RegisterReads != 2 || m.RegisterWrites != 1 {
		t.Errorf("register ops = %d/%d, want 2/1", m.RegisterReads, m.RegisterWrites)
	}
	if m.VMCSOperations != 1 || m.MSROperations != 1 || m.Interrupts != 1 {
		t.Errorf("vmcs/msr/interrupt = %d/%d/%d, want 1/1/1",
			m.VMCSOperations, m.MSROperations, m.Interrupts)
	}
	if m.RunOperations != 2 {
		t.Errorf("RunOperations = %d, want 2", m.RunOperations)
	}
	if m.AvgVMCreateTimeNs != uint64(100*time.Millisecond) {
		t.Errorf("AvgVMCreateTimeNs = %d, want %d", m.AvgVMCreateTimeNs, 100*time.Millisecond)
	}
	if m.AvgRunTimeNs != uint64(100*time.Millisecond) {
		t.Errorf("AvgRunTimeNs = %d, want %d", m.AvgRunTimeNs, 100*time.Millisecond)
	}
	if m.ExecutionErrors != 1 || m.ResourceErrors != 1 {
		t.Errorf("error counters = %d/%d, want 1/1", m.ExecutionErrors, m.ResourceErrors)
	}
}

func TestResetMetrics(t *testing.T) {
	recordMapOperation()
	recordVCPURun(time.Millisecond)

	ResetMetrics()

	m := GetMetrics()
	if m != (Metrics{}) {
		t.Errorf("metrics not zeroed after reset: %+v", m)
	}
}

func TestMetricsAveragesWithZeroOps(t *testing.T) {
	ResetMetrics()
	m := GetMetrics()
	if m.AvgVMCreateTimeNs != 0 || m.AvgVCPUCreateTimeNs != 0 || m.AvgRunTimeNs != 0 {
		t.Error("averages should be zero with no recorded operations")
	}
}
