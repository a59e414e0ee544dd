package hypervisor

import "fmt"

// Hypervisor.framework hv_return_t constants. Identical on arm64 and
// x86_64 hosts.
const (
	HV_SUCCESS             uint32 = 0x00000000
	HV_ERROR               uint32 = 0xFAE94001
	HV_BUSY                uint32 = 0xFAE94002
	HV_BAD_ARGUMENT        uint32 = 0xFAE94003
	HV_ILLEGAL_GUEST_STATE uint32 = 0xFAE94004
	HV_NO_RESOURCES        uint32 = 0xFAE94005
	HV_NO_DEVICE           uint32 = 0xFAE94006
	HV_DENIED              uint32 = 0xFAE94007
	HV_EXISTS              uint32 = 0xFAE94008
	HV_UNSUPPORTED         uint32 = 0xFAE9400F
)

// HVError wraps an hv_return_t error code.
// Code stores the raw 32-bit hv_return_t value (often 0xFAE940xx).
type HVError struct {
	Code     uint32
	message  string // optional custom message for sentinel errors
	sentinel bool   // contract-violation sentinel, matched by identity only
}

func (e HVError) Error() string {
	if e.message != "" {
		return e.message
	}
	switch e.Code {
	case HV_SUCCESS:
		return "hv: success"
	case HV_ERROR:
		return "hv: general error (HV_ERROR)"
	case HV_BUSY:
		return "hv: resource busy (HV_BUSY)"
	case HV_BAD_ARGUMENT:
		return "hv: invalid argument (HV_BAD_ARGUMENT)"
	case HV_ILLEGAL_GUEST_STATE:
		return "hv: illegal guest state (HV_ILLEGAL_GUEST_STATE)"
	case HV_NO_RESOURCES:
		return "hv: insufficient resources (HV_NO_RESOURCES)"
	case HV_NO_DEVICE:
		return "hv: device not found (HV_NO_DEVICE)"
	case HV_DENIED:
		return "hv: access denied (HV_DENIED) - missing entitlement 'com.apple.security.hypervisor' or insufficient privileges"
	case HV_EXISTS:
		return "hv: resource exists (HV_EXISTS)"
	case HV_UNSUPPORTED:
		return "hv: operation unsupported (HV_UNSUPPORTED)"
	default:
		return fmt.Sprintf("hv: unknown error code 0x%08x", e.Code)
	}
}

// Is reports code equality between native-status errors so errors.Is
// matches an HVError surfaced from the native layer against another of
// the same code class. Contract-violation sentinels are excluded from
// code-class matching; they match by identity only (handled by
// errors.Is itself through the unwrap chain), so a generic native
// failure never satisfies a sentinel check.
func (e HVError) Is(target error) bool {
	if e.sentinel {
		return false
	}
	switch t := target.(type) {
	case HVError:
		return !t.sentinel && t.Code == e.Code
	case *HVError:
		return !t.sentinel && t.Code == e.Code
	}
	return false
}

// hvErr converts a raw native status code into an error. Zero is success.
func hvErr(code uint32) error {
	if code == HV_SUCCESS {
		return nil
	}
	return HVError{Code: code}
}

// Contract-violation errors. These report caller programming errors
// (reusing a destroyed handle, reading exit state at the wrong time),
// not recoverable native failures.
var (
	ErrVMClosed         = &HVError{Code: HV_ERROR, message: "hv: VM is closed", sentinel: true}
	ErrVCPUClosed       = &HVError{Code: HV_ERROR, message: "hv: VCPU is closed", sentinel: true}
	ErrVCPURunning      = &HVError{Code: HV_BUSY, message: "hv: VCPU is running", sentinel: true}
	ErrNoExitInfo       = &HVError{Code: HV_ERROR, message: "hv: no exit information (VCPU has not exited)", sentinel: true}
	ErrInvalidAlignment = &HVError{Code: HV_BAD_ARGUMENT, message: "hv: address not page-aligned", sentinel: true}
	ErrInvalidRegister  = &HVError{Code: HV_BAD_ARGUMENT, message: "hv: invalid register", sentinel: true}
	ErrVMAlreadyActive  = &HVError{Code: HV_BUSY, message: "hv: VM already active in this process", sentinel: true}
)
