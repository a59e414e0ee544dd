//go:build amd64

package hypervisor

import "testing"

func TestRegNumbering(t *testing.T) {
	// Spot-check against the hv_x86_reg_t header values.
	tests := []struct {
		name string
		reg  Reg
		want Reg
	}{
		{"RIP", RegRIP, 0},
		{"RFLAGS", RegRFLAGS, 1},
		{"RAX", RegRAX, 2},
		{"RSP", RegRSP, 8},
		{"R8", RegR8, 10},
		{"R15", RegR15, 17},
		{"CS", RegCS, 18},
		{"GS", RegGS, 23},
		{"IDT_BASE", RegIDTBase, 24},
		{"TR", RegTR, 32},
		{"CR0", RegCR0, 36},
		{"CR4", RegCR4, 40},
		{"DR0", RegDR0, 41},
		{"DR7", RegDR7, 48},
		{"TPR", RegTPR, 49},
		{"XCR0", RegXCR0, 50},
	}
	for _, tt := range tests {
		if tt.reg != tt.want {
			t.Errorf("Reg%s = %d, want %d", tt.name, tt.reg, tt.want)
		}
	}
}

func TestRegValid(t *testing.T) {
	if !RegRIP.valid() || !RegXCR0.valid() {
		t.Error("catalog registers should be valid")
	}
	if regMax.valid() || Reg(100).valid() {
		t.Error("out-of-range registers should be invalid")
	}
}
