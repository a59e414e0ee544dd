package hypervisor

import "fmt"

// ExitReason categorizes why a vCPU stopped running. The arm64
// backend reports it directly through the vCPU exit record; the
// x86_64 backend derives it from the VMCS exit-reason and
// exit-qualification fields after each run.
type ExitReason int

const (
	ExitUnknown ExitReason = iota

	// Asynchronous exit forced from another thread.
	ExitCancelled

	// Guest exception (arm64). Exception carries the syndrome and
	// fault addresses.
	ExitException

	// Virtual timer entered the pending state (arm64).
	ExitVTimerActivated

	// Guest executed HLT (x86_64).
	ExitHalt

	// Guest accessed an I/O port (x86_64). IO carries the decoded
	// qualification.
	ExitIO

	// EPT violation: guest touched unmapped or protected memory
	// (x86_64).
	ExitMemoryFault

	// External interrupt or interrupt window (x86_64).
	ExitIRQ
)

func (r ExitReason) String() string {
	switch r {
	case ExitCancelled:
		return "cancelled"
	case ExitException:
		return "exception"
	case ExitVTimerActivated:
		return "vtimer-activated"
	case ExitHalt:
		return "halt"
	case ExitIO:
		return "io"
	case ExitMemoryFault:
		return "memory-fault"
	case ExitIRQ:
		return "irq"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

// ExceptionInfo describes a guest exception on the arm64 backend.
type ExceptionInfo struct {
	// Syndrome is the ESR_EL2 value; bits 26-31 hold the exception
	// class (see ExceptionClass).
	Syndrome        uint64
	VirtualAddress  uint64
	PhysicalAddress uint64
}

// IOExit describes an I/O port access decoded from the x86_64 exit
// qualification.
type IOExit struct {
	Port uint16
	Size uint8 // access width in bytes
	In   bool  // true for IN, false for OUT
}

// ExitInfo is the unified exit record returned by Run on both
// backends. Raw preserves the native reason tag (arm64) or the basic
// exit reason (x86_64); the qualification and instruction-length
// fields are populated on x86_64 only.
type ExitInfo struct {
	Reason ExitReason
	Raw    uint64

	// Valid when Reason == ExitException.
	Exception ExceptionInfo

	// x86_64 only.
	Qualification     uint64
	InstructionLength uint64
	IO                IOExit
}

// ExceptionClass extracts the exception class from an ESR syndrome
// value (bits 26-31).
func ExceptionClass(syndrome uint64) uint64 {
	return (syndrome >> 26) & 0x3f
}

// Well-known aarch64 exception classes.
const (
	ExceptionClassHVC       uint64 = 0x16
	ExceptionClassSMC       uint64 = 0x17
	ExceptionClassMSRAccess uint64 = 0x18
	ExceptionClassDataAbort uint64 = 0x24
	ExceptionClassBRK       uint64 = 0x3c
)

// deriveVMXExit classifies a VMX basic exit reason plus its
// qualification into the unified exit record. The basic reason is the
// low 16 bits of VMCS_RO_EXIT_REASON; unrecognized reasons map to
// ExitUnknown with the raw value preserved.
func deriveVMXExit(reason, qualification, instructionLength uint64) ExitInfo {
	info := ExitInfo{
		Raw:               reason & 0xffff,
		Qualification:     qualification,
		InstructionLength: instructionLength,
	}
	switch info.Raw {
	case VMX_REASON_HLT:
		info.Reason = ExitHalt
	case VMX_REASON_IO:
		info.Reason = ExitIO
		info.IO = decodeIOQualification(qualification)
	case VMX_REASON_EPT_VIOLATION:
		info.Reason = ExitMemoryFault
	case VMX_REASON_IRQ, VMX_REASON_IRQ_WND:
		info.Reason = ExitIRQ
	default:
		info.Reason = ExitUnknown
	}
	return info
}

// decodeIOQualification unpacks an I/O-instruction exit
// qualification: bits 0-2 hold size-1, bit 3 the direction, bits
// 16-31 the port number.
func decodeIOQualification(qualification uint64) IOExit {
	return IOExit{
		Port: uint16((qualification >> 16) & 0xffff),
		Size: uint8(qualification&0x7) + 1,
		In:   qualification&0x8 != 0,
	}
}
