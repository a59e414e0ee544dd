//go:build arm64

package hypervisor

import "testing"

func TestSysRegEncodings(t *testing.T) {
	// Spot-check the generated table against hv_sys_reg_t header
	// values.
	tests := []struct {
		name string
		reg  SysReg
		want uint16
	}{
		{"SP_EL0", SysRegSP_EL0, 0xc208},
		{"SP_EL1", SysRegSP_EL1, 0xe208},
		{"VBAR_EL1", SysRegVBAR_EL1, 0xc600},
		{"ESR_EL1", SysRegESR_EL1, 0xc290},
		{"ELR_EL1", SysRegELR_EL1, 0xc201},
		{"SCTLR_EL1", SysRegSCTLR_EL1, 0xc080},
		{"MDSCR_EL1", SysRegMDSCR_EL1, 0x8012},
		{"DBGBVR0_EL1", SysRegDBGBVR0_EL1, 0x8004},
		{"CNTV_CVAL_EL0", SysRegCNTV_CVAL_EL0, 0xdf1a},
		{"TPIDR_EL0", SysRegTPIDR_EL0, 0xde82},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.reg.native(); got != tt.want {
				t.Errorf("native() = 0x%04x, want 0x%04x", got, tt.want)
			}
		})
	}
}

func TestSysRegTableComplete(t *testing.T) {
	// Every catalog entry must carry a real encoding tuple; a zero
	// op0 means the table row was never filled in.
	seen := make(map[uint16]SysReg, numSysRegs)
	for r := SysReg(0); r < numSysRegs; r++ {
		ops := sysRegTable[r]
		if ops.op0 == 0 {
			t.Errorf("sysRegTable[%d] has no encoding", r)
		}
		enc := r.native()
		if prev, dup := seen[enc]; dup {
			t.Errorf("registers %d and %d share encoding 0x%04x", prev, r, enc)
		}
		seen[enc] = r
	}
}

func TestSysRegValid(t *testing.T) {
	if !SysRegMIDR_EL1.valid() {
		t.Error("MIDR_EL1 should be valid")
	}
	if numSysRegs.valid() {
		t.Error("numSysRegs should be out of range")
	}
	if SysReg(0xffff).valid() {
		t.Error("0xffff should be out of range")
	}
}
