//go:build arm64

package hypervisor

// Reg identifies an aarch64 architectural register. Values map 1:1 to
// the native hv_reg_t numbering.
type Reg uint32

const (
	RegX0 Reg = iota
	RegX1
	RegX2
	RegX3
	RegX4
	RegX5
	RegX6
	RegX7
	RegX8
	RegX9
	RegX10
	RegX11
	RegX12
	RegX13
	RegX14
	RegX15
	RegX16
	RegX17
	RegX18
	RegX19
	RegX20
	RegX21
	RegX22
	RegX23
	RegX24
	RegX25
	RegX26
	RegX27
	RegX28
	RegX29
	RegX30
	RegPC
	RegFPCR
	RegFPSR
	RegCPSR

	regMax
)

// Frame pointer and link register aliases.
const (
	RegFP = RegX29
	RegLR = RegX30
)

func (r Reg) valid() bool { return r < regMax }
