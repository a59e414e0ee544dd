//go:build arm64

package hypervisor

import "testing"

func TestRegNumbering(t *testing.T) {
	// hv_reg_t numbers X0-X30 consecutively from zero.
	if RegX0 != 0 {
		t.Errorf("RegX0 = %d, want 0", RegX0)
	}
	if RegX30 != 30 {
		t.Errorf("RegX30 = %d, want 30", RegX30)
	}
	if RegPC != 31 {
		t.Errorf("RegPC = %d, want 31", RegPC)
	}
	if RegFPCR != 32 || RegFPSR != 33 || RegCPSR != 34 {
		t.Errorf("special registers misnumbered: FPCR=%d FPSR=%d CPSR=%d", RegFPCR, RegFPSR, RegCPSR)
	}
}

func TestRegAliases(t *testing.T) {
	if RegFP != RegX29 {
		t.Errorf("RegFP = %d, want %d", RegFP, RegX29)
	}
	if RegLR != RegX30 {
		t.Errorf("RegLR = %d, want %d", RegLR, RegX30)
	}
}

func TestRegValid(t *testing.T) {
	if !RegX0.valid() || !RegCPSR.valid() {
		t.Error("catalog registers should be valid")
	}
	if regMax.valid() || Reg(100).valid() {
		t.Error("out-of-range registers should be invalid")
	}
}
