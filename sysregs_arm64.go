//go:build arm64

package hypervisor

// SysReg identifies an aarch64 system register accessible through the
// vCPU system-register interface. The native hv_sys_reg_t values
// follow the architectural MSR encoding, so each entry is generated
// from its (op0, op1, CRn, CRm, op2) tuple rather than transcribed by
// hand.
type SysReg uint32

const (
	SysRegDBGBVR0_EL1 SysReg = iota
	SysRegDBGBCR0_EL1
	SysRegDBGWVR0_EL1
	SysRegDBGWCR0_EL1
	SysRegDBGBVR1_EL1
	SysRegDBGBCR1_EL1
	SysRegDBGWVR1_EL1
	SysRegDBGWCR1_EL1
	SysRegMDCCINT_EL1
	SysRegMDSCR_EL1
	SysRegDBGBVR2_EL1
	SysRegDBGBCR2_EL1
	SysRegDBGWVR2_EL1
	SysRegDBGWCR2_EL1
	SysRegDBGBVR3_EL1
	SysRegDBGBCR3_EL1
	SysRegDBGWVR3_EL1
	SysRegDBGWCR3_EL1
	SysRegDBGBVR4_EL1
	SysRegDBGBCR4_EL1
	SysRegDBGWVR4_EL1
	SysRegDBGWCR4_EL1
	SysRegDBGBVR5_EL1
	SysRegDBGBCR5_EL1
	SysRegDBGWVR5_EL1
	SysRegDBGWCR5_EL1
	SysRegDBGBVR6_EL1
	SysRegDBGBCR6_EL1
	SysRegDBGWVR6_EL1
	SysRegDBGWCR6_EL1
	SysRegDBGBVR7_EL1
	SysRegDBGBCR7_EL1
	SysRegDBGWVR7_EL1
	SysRegDBGWCR7_EL1
	SysRegDBGBVR8_EL1
	SysRegDBGBCR8_EL1
	SysRegDBGWVR8_EL1
	SysRegDBGWCR8_EL1
	SysRegDBGBVR9_EL1
	SysRegDBGBCR9_EL1
	SysRegDBGWVR9_EL1
	SysRegDBGWCR9_EL1
	SysRegDBGBVR10_EL1
	SysRegDBGBCR10_EL1
	SysRegDBGWVR10_EL1
	SysRegDBGWCR10_EL1
	SysRegDBGBVR11_EL1
	SysRegDBGBCR11_EL1
	SysRegDBGWVR11_EL1
	SysRegDBGWCR11_EL1
	SysRegDBGBVR12_EL1
	SysRegDBGBCR12_EL1
	SysRegDBGWVR12_EL1
	SysRegDBGWCR12_EL1
	SysRegDBGBVR13_EL1
	SysRegDBGBCR13_EL1
	SysRegDBGWVR13_EL1
	SysRegDBGWCR13_EL1
	SysRegDBGBVR14_EL1
	SysRegDBGBCR14_EL1
	SysRegDBGWVR14_EL1
	SysRegDBGWCR14_EL1
	SysRegDBGBVR15_EL1
	SysRegDBGBCR15_EL1
	SysRegDBGWVR15_EL1
	SysRegDBGWCR15_EL1
	SysRegMIDR_EL1
	SysRegMPIDR_EL1
	SysRegID_AA64PFR0_EL1
	SysRegID_AA64PFR1_EL1
	SysRegID_AA64DFR0_EL1
	SysRegID_AA64DFR1_EL1
	SysRegID_AA64ISAR0_EL1
	SysRegID_AA64ISAR1_EL1
	SysRegID_AA64MMFR0_EL1
	SysRegID_AA64MMFR1_EL1
	SysRegID_AA64MMFR2_EL1
	SysRegSCTLR_EL1
	SysRegCPACR_EL1
	SysRegTTBR0_EL1
	SysRegTTBR1_EL1
	SysRegTCR_EL1
	SysRegAPIAKEYLO_EL1
	SysRegAPIAKEYHI_EL1
	SysRegAPIBKEYLO_EL1
	SysRegAPIBKEYHI_EL1
	SysRegAPDAKEYLO_EL1
	SysRegAPDAKEYHI_EL1
	SysRegAPDBKEYLO_EL1
	SysRegAPDBKEYHI_EL1
	SysRegAPGAKEYLO_EL1
	SysRegAPGAKEYHI_EL1
	SysRegSPSR_EL1
	SysRegELR_EL1
	SysRegSP_EL0
	SysRegAFSR0_EL1
	SysRegAFSR1_EL1
	SysRegESR_EL1
	SysRegFAR_EL1
	SysRegPAR_EL1
	SysRegMAIR_EL1
	SysRegAMAIR_EL1
	SysRegVBAR_EL1
	SysRegCONTEXTIDR_EL1
	SysRegTPIDR_EL1
	SysRegCNTKCTL_EL1
	SysRegCSSELR_EL1
	SysRegTPIDR_EL0
	SysRegTPIDRRO_EL0
	SysRegCNTV_CTL_EL0
	SysRegCNTV_CVAL_EL0
	SysRegSP_EL1

	numSysRegs
)

type sysRegOps struct {
	op0, op1, crn, crm, op2 uint16
}

var sysRegTable = [numSysRegs]sysRegOps{
	SysRegDBGBVR0_EL1:      {2, 0, 0, 0, 4},
	SysRegDBGBCR0_EL1:      {2, 0, 0, 0, 5},
	SysRegDBGWVR0_EL1:      {2, 0, 0, 0, 6},
	SysRegDBGWCR0_EL1:      {2, 0, 0, 0, 7},
	SysRegDBGBVR1_EL1:      {2, 0, 0, 1, 4},
	SysRegDBGBCR1_EL1:      {2, 0, 0, 1, 5},
	SysRegDBGWVR1_EL1:      {2, 0, 0, 1, 6},
	SysRegDBGWCR1_EL1:      {2, 0, 0, 1, 7},
	SysRegMDCCINT_EL1:      {2, 0, 0, 2, 0},
	SysRegMDSCR_EL1:        {2, 0, 0, 2, 2},
	SysRegDBGBVR2_EL1:      {2, 0, 0, 2, 4},
	SysRegDBGBCR2_EL1:      {2, 0, 0, 2, 5},
	SysRegDBGWVR2_EL1:      {2, 0, 0, 2, 6},
	SysRegDBGWCR2_EL1:      {2, 0, 0, 2, 7},
	SysRegDBGBVR3_EL1:      {2, 0, 0, 3, 4},
	SysRegDBGBCR3_EL1:      {2, 0, 0, 3, 5},
	SysRegDBGWVR3_EL1:      {2, 0, 0, 3, 6},
	SysRegDBGWCR3_EL1:      {2, 0, 0, 3, 7},
	SysRegDBGBVR4_EL1:      {2, 0, 0, 4, 4},
	SysRegDBGBCR4_EL1:      {2, 0, 0, 4, 5},
	SysRegDBGWVR4_EL1:      {2, 0, 0, 4, 6},
	SysRegDBGWCR4_EL1:      {2, 0, 0, 4, 7},
	SysRegDBGBVR5_EL1:      {2, 0, 0, 5, 4},
	SysRegDBGBCR5_EL1:      {2, 0, 0, 5, 5},
	SysRegDBGWVR5_EL1:      {2, 0, 0, 5, 6},
	SysRegDBGWCR5_EL1:      {2, 0, 0, 5, 7},
	SysRegDBGBVR6_EL1:      {2, 0, 0, 6, 4},
	SysRegDBGBCR6_EL1:      {2, 0, 0, 6, 5},
	SysRegDBGWVR6_EL1:      {2, 0, 0, 6, 6},
	SysRegDBGWCR6_EL1:      {2, 0, 0, 6, 7},
	SysRegDBGBVR7_EL1:      {2, 0, 0, 7, 4},
	SysRegDBGBCR7_EL1:      {2, 0, 0, 7, 5},
	SysRegDBGWVR7_EL1:      {2, 0, 0, 7, 6},
	SysRegDBGWCR7_EL1:      {2, 0, 0, 7, 7},
	SysRegDBGBVR8_EL1:      {2, 0, 0, 8, 4},
	SysRegDBGBCR8_EL1:      {2, 0, 0, 8, 5},
	SysRegDBGWVR8_EL1:      {2, 0, 0, 8, 6},
	SysRegDBGWCR8_EL1:      {2, 0, 0, 8, 7},
	SysRegDBGBVR9_EL1:      {2, 0, 0, 9, 4},
	SysRegDBGBCR9_EL1:      {2, 0, 0, 9, 5},
	SysRegDBGWVR9_EL1:      {2, 0, 0, 9, 6},
	SysRegDBGWCR9_EL1:      {2, 0, 0, 9, 7},
	SysRegDBGBVR10_EL1:     {2, 0, 0, 10, 4},
	SysRegDBGBCR10_EL1:     {2, 0, 0, 10, 5},
	SysRegDBGWVR10_EL1:     {2, 0, 0, 10, 6},
	SysRegDBGWCR10_EL1:     {2, 0, 0, 10, 7},
	SysRegDBGBVR11_EL1:     {2, 0, 0, 11, 4},
	SysRegDBGBCR11_EL1:     {2, 0, 0, 11, 5},
	SysRegDBGWVR11_EL1:     {2, 0, 0, 11, 6},
	SysRegDBGWCR11_EL1:     {2, 0, 0, 11, 7},
	SysRegDBGBVR12_EL1:     {2, 0, 0, 12, 4},
	SysRegDBGBCR12_EL1:     {2, 0, 0, 12, 5},
	SysRegDBGWVR12_EL1:     {2, 0, 0, 12, 6},
	SysRegDBGWCR12_EL1:     {2, 0, 0, 12, 7},
	SysRegDBGBVR13_EL1:     {2, 0, 0, 13, 4},
	SysRegDBGBCR13_EL1:     {2, 0, 0, 13, 5},
	SysRegDBGWVR13_EL1:     {2, 0, 0, 13, 6},
	SysRegDBGWCR13_EL1:     {2, 0, 0, 13, 7},
	SysRegDBGBVR14_EL1:     {2, 0, 0, 14, 4},
	SysRegDBGBCR14_EL1:     {2, 0, 0, 14, 5},
	SysRegDBGWVR14_EL1:     {2, 0, 0, 14, 6},
	SysRegDBGWCR14_EL1:     {2, 0, 0, 14, 7},
	SysRegDBGBVR15_EL1:     {2, 0, 0, 15, 4},
	SysRegDBGBCR15_EL1:     {2, 0, 0, 15, 5},
	SysRegDBGWVR15_EL1:     {2, 0, 0, 15, 6},
	SysRegDBGWCR15_EL1:     {2, 0, 0, 15, 7},
	SysRegMIDR_EL1:         {3, 0, 0, 0, 0},
	SysRegMPIDR_EL1:        {3, 0, 0, 0, 5},
	SysRegID_AA64PFR0_EL1:  {3, 0, 0, 4, 0},
	SysRegID_AA64PFR1_EL1:  {3, 0, 0, 4, 1},
	SysRegID_AA64DFR0_EL1:  {3, 0, 0, 5, 0},
	SysRegID_AA64DFR1_EL1:  {3, 0, 0, 5, 1},
	SysRegID_AA64ISAR0_EL1: {3, 0, 0, 6, 0},
	SysRegID_AA64ISAR1_EL1: {3, 0, 0, 6, 1},
	SysRegID_AA64MMFR0_EL1: {3, 0, 0, 7, 0},
	SysRegID_AA64MMFR1_EL1: {3, 0, 0, 7, 1},
	SysRegID_AA64MMFR2_EL1: {3, 0, 0, 7, 2},
	SysRegSCTLR_EL1:        {3, 0, 1, 0, 0},
	SysRegCPACR_EL1:        {3, 0, 1, 0, 2},
	SysRegTTBR0_EL1:        {3, 0, 2, 0, 0},
	SysRegTTBR1_EL1:        {3, 0, 2, 0, 1},
	SysRegTCR_EL1:          {3, 0, 2, 0, 2},
	SysRegAPIAKEYLO_EL1:    {3, 0, 2, 1, 0},
	SysRegAPIAKEYHI_EL1:    {3, 0, 2, 1, 1},
	SysRegAPIBKEYLO_EL1:    {3, 0, 2, 1, 2},
	SysRegAPIBKEYHI_EL1:    {3, 0, 2, 1, 3},
	SysRegAPDAKEYLO_EL1:    {3, 0, 2, 2, 0},
	SysRegAPDAKEYHI_EL1:    {3, 0, 2, 2, 1},
	SysRegAPDBKEYLO_EL1:    {3, 0, 2, 2, 2},
	SysRegAPDBKEYHI_EL1:    {3, 0, 2, 2, 3},
	SysRegAPGAKEYLO_EL1:    {3, 0, 2, 3, 0},
	SysRegAPGAKEYHI_EL1:    {3, 0, 2, 3, 1},
	SysRegSPSR_EL1:         {3, 0, 4, 0, 0},
	SysRegELR_EL1:          {3, 0, 4, 0, 1},
	SysRegSP_EL0:           {3, 0, 4, 1, 0},
	SysRegAFSR0_EL1:        {3, 0, 5, 1, 0},
	SysRegAFSR1_EL1:        {3, 0, 5, 1, 1},
	SysRegESR_EL1:          {3, 0, 5, 2, 0},
	SysRegFAR_EL1:          {3, 0, 6, 0, 0},
	SysRegPAR_EL1:          {3, 0, 7, 4, 0},
	SysRegMAIR_EL1:         {3, 0, 10, 2, 0},
	SysRegAMAIR_EL1:        {3, 0, 10, 3, 0},
	SysRegVBAR_EL1:         {3, 0, 12, 0, 0},
	SysRegCONTEXTIDR_EL1:   {3, 0, 13, 0, 1},
	SysRegTPIDR_EL1:        {3, 0, 13, 0, 4},
	SysRegCNTKCTL_EL1:      {3, 0, 14, 1, 0},
	SysRegCSSELR_EL1:       {3, 2, 0, 0, 0},
	SysRegTPIDR_EL0:        {3, 3, 13, 0, 2},
	SysRegTPIDRRO_EL0:      {3, 3, 13, 0, 3},
	SysRegCNTV_CTL_EL0:     {3, 3, 14, 3, 1},
	SysRegCNTV_CVAL_EL0:    {3, 3, 14, 3, 2},
	SysRegSP_EL1:           {3, 4, 4, 1, 0},
}

// sysRegEncoding packs an (op0, op1, CRn, CRm, op2) tuple into the
// architectural system-register encoding used by hv_sys_reg_t.
func sysRegEncoding(op sysRegOps) uint16 {
	return ((op.op0 & 0x3) << 14) |
		((op.op1 & 0x7) << 11) |
		((op.crn & 0xF) << 7) |
		((op.crm & 0xF) << 3) |
		(op.op2 & 0x7)
}

func (r SysReg) valid() bool { return r < numSysRegs }

func (r SysReg) native() uint16 {
	return sysRegEncoding(sysRegTable[r])
}
