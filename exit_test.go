package hypervisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveVMXExit(t *testing.T) {
	tests := []struct {
		name   string
		reason uint64
		qual   uint64
		want   ExitReason
	}{
		{"hlt", VMX_REASON_HLT, 0, ExitHalt},
		{"io", VMX_REASON_IO, 0, ExitIO},
		{"ept violation", VMX_REASON_EPT_VIOLATION, 0x184, ExitMemoryFault},
		{"irq", VMX_REASON_IRQ, 0, ExitIRQ},
		{"irq window", VMX_REASON_IRQ_WND, 0, ExitIRQ},
		{"cpuid unhandled", VMX_REASON_CPUID, 0, ExitUnknown},
		{"triple fault unhandled", VMX_REASON_TRIPLE_FAULT, 0, ExitUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := deriveVMXExit(tt.reason, tt.qual, 1)
			assert.Equal(t, tt.want, info.Reason)
			assert.Equal(t, tt.reason, info.Raw)
			assert.Equal(t, tt.qual, info.Qualification)
			assert.EqualValues(t, 1, info.InstructionLength)
		})
	}
}

func TestDeriveVMXExitMasksHighBits(t *testing.T) {
	// Only the low 16 bits of VMCS_RO_EXIT_REASON carry the basic
	// reason; entry-failure and other flag bits live above them.
	info := deriveVMXExit(0x80000000|VMX_REASON_HLT, 0, 1)
	assert.Equal(t, ExitHalt, info.Reason)
	assert.Equal(t, VMX_REASON_HLT, info.Raw)
}

func TestDecodeIOQualification(t *testing.T) {
	tests := []struct {
		name string
		qual uint64
		want IOExit
	}{
		{
			name: "one byte out to com1",
			qual: 0x3f8<<16 | 0x0,
			want: IOExit{Port: 0x3f8, Size: 1, In: false},
		},
		{
			name: "two byte in from 0x60",
			qual: 0x60<<16 | 0x8 | 0x1,
			want: IOExit{Port: 0x60, Size: 2, In: true},
		},
		{
			name: "four byte out",
			qual: 0xcf8<<16 | 0x3,
			want: IOExit{Port: 0xcf8, Size: 4, In: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeIOQualification(tt.qual))
		})
	}
}

func TestDeriveVMXExitDecodesIO(t *testing.T) {
	info := deriveVMXExit(VMX_REASON_IO, 0x3f8<<16, 1)
	assert.Equal(t, ExitIO, info.Reason)
	assert.EqualValues(t, 0x3f8, info.IO.Port)
	assert.EqualValues(t, 1, info.IO.Size)
	assert.False(t, info.IO.In)
}

func TestExceptionClass(t *testing.T) {
	// HVC #0 from EL1 produces EC 0x16 with the ISS in the low bits.
	assert.Equal(t, ExceptionClassHVC, ExceptionClass(0x16<<26|0x0))
	assert.Equal(t, ExceptionClassBRK, ExceptionClass(0x3c<<26))
	assert.Equal(t, ExceptionClassDataAbort, ExceptionClass(0x24<<26|0x45))
	// The class field ignores everything below bit 26.
	assert.Equal(t, ExceptionClassHVC, ExceptionClass(0x16<<26|0x1ffffff))
}

func TestExitReasonString(t *testing.T) {
	tests := []struct {
		reason ExitReason
		want   string
	}{
		{ExitCancelled, "cancelled"},
		{ExitException, "exception"},
		{ExitVTimerActivated, "vtimer-activated"},
		{ExitHalt, "halt"},
		{ExitIO, "io"},
		{ExitMemoryFault, "memory-fault"},
		{ExitIRQ, "irq"},
		{ExitUnknown, "unknown(0)"},
		{ExitReason(42), "unknown(42)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.reason.String())
	}
}
