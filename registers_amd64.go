//go:build amd64

package hypervisor

// Reg identifies an x86_64 architectural register. Values map 1:1 to
// the native hv_x86_reg_t numbering.
type Reg uint32

const (
	RegRIP Reg = iota
	RegRFLAGS
	RegRAX
	RegRCX
	RegRDX
	RegRBX
	RegRSI
	RegRDI
	RegRSP
	RegRBP
	RegR8
	RegR9
	RegR10
	RegR11
	RegR12
	RegR13
	RegR14
	RegR15
	RegCS
	RegSS
	RegDS
	RegES
	RegFS
	RegGS
	RegIDTBase
	RegIDTLimit
	RegGDTBase
	RegGDTLimit
	RegLDTR
	RegLDTBase
	RegLDTLimit
	RegLDTAr
	RegTR
	RegTSSBase
	RegTSSLimit
	RegTSSAr
	RegCR0
	RegCR1
	RegCR2
	RegCR3
	RegCR4
	RegDR0
	RegDR1
	RegDR2
	RegDR3
	RegDR4
	RegDR5
	RegDR6
	RegDR7
	RegTPR
	RegXCR0

	regMax
)

func (r Reg) valid() bool { return r < regMax }
