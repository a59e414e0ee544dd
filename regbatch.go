package hypervisor

import "fmt"

// RegBatch represents a batch of register operations for performance
type RegBatch map[Reg]uint64

// GetRegs retrieves multiple registers in a single call (performance optimization)
// Note: Currently implemented as individual calls, but foundation for batching
func (cpu *VCPU) GetRegs(regs []Reg) (RegBatch, error) {
	if cpu == nil {
		return nil, fmt.Errorf("hv: vCPU is nil")
	}

	batch := make(RegBatch, len(regs))
	for _, reg := range regs {
		val, err := cpu.GetReg(reg)
		if err != nil {
			return nil, err
		}
		batch[reg] = val
	}
	return batch, nil
}

// SetRegs sets multiple registers in a single call (performance optimization)
// Note: Currently implemented as individual calls, but foundation for batching
func (cpu *VCPU) SetRegs(batch RegBatch) error {
	if cpu == nil {
		return fmt.Errorf("hv: vCPU is nil")
	}

	for reg, val := range batch {
		if err := cpu.SetReg(reg, val); err != nil {
			return err
		}
	}
	return nil
}
