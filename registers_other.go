//go:build !amd64 && !arm64

package hypervisor

// Reg identifies an architectural register. No catalog exists on
// unsupported architectures; every value is out of range.
type Reg uint32

func (r Reg) valid() bool { return false }
