package hypervisor

// VMCSField identifies a field of the per-vCPU virtual machine
// control structure on the x86_64 backend. Field encodings follow the
// Intel SDM; no semantic validation is performed on access.
type VMCSField uint32

// VMCS control fields.
const (
	VMCS_CTRL_PIN_BASED        VMCSField = 0x00004000
	VMCS_CTRL_CPU_BASED        VMCSField = 0x00004002
	VMCS_CTRL_EXC_BITMAP       VMCSField = 0x00004004
	VMCS_CTRL_VMEXIT_CONTROLS  VMCSField = 0x0000400c
	VMCS_CTRL_VMENTRY_CONTROLS VMCSField = 0x00004012
	VMCS_CTRL_CPU_BASED2       VMCSField = 0x0000401e
	VMCS_CTRL_CR0_MASK         VMCSField = 0x00006000
	VMCS_CTRL_CR4_MASK         VMCSField = 0x00006002
	VMCS_CTRL_CR0_SHADOW       VMCSField = 0x00006004
	VMCS_CTRL_CR4_SHADOW       VMCSField = 0x00006006
	VMCS_CTRL_TSC_OFFSET       VMCSField = 0x00002010
)

// VMCS read-only exit information fields.
const (
	VMCS_RO_EXIT_REASON      VMCSField = 0x00004402
	VMCS_RO_VMEXIT_INSTR_LEN VMCSField = 0x0000440c
	VMCS_RO_EXIT_QUALIFIC    VMCSField = 0x00006400
	VMCS_RO_GUEST_LIN_ADDR   VMCSField = 0x0000640a
	VMCS_RO_GUEST_PHYS_ADDR  VMCSField = 0x00002400
)

// VMCS guest state fields.
const (
	VMCS_GUEST_ES            VMCSField = 0x00000800
	VMCS_GUEST_CS            VMCSField = 0x00000802
	VMCS_GUEST_SS            VMCSField = 0x00000804
	VMCS_GUEST_DS            VMCSField = 0x00000806
	VMCS_GUEST_FS            VMCSField = 0x00000808
	VMCS_GUEST_GS            VMCSField = 0x0000080a
	VMCS_GUEST_LDTR          VMCSField = 0x0000080c
	VMCS_GUEST_TR            VMCSField = 0x0000080e
	VMCS_GUEST_LINK_POINTER  VMCSField = 0x00002800
	VMCS_GUEST_IA32_DEBUGCTL VMCSField = 0x00002802
	VMCS_GUEST_IA32_EFER     VMCSField = 0x00002806
	VMCS_GUEST_ES_LIMIT      VMCSField = 0x00004800
	VMCS_GUEST_CS_LIMIT      VMCSField = 0x00004802
	VMCS_GUEST_SS_LIMIT      VMCSField = 0x00004804
	VMCS_GUEST_DS_LIMIT      VMCSField = 0x00004806
	VMCS_GUEST_FS_LIMIT      VMCSField = 0x00004808
	VMCS_GUEST_GS_LIMIT      VMCSField = 0x0000480a
	VMCS_GUEST_LDTR_LIMIT    VMCSField = 0x0000480c
	VMCS_GUEST_TR_LIMIT      VMCSField = 0x0000480e
	VMCS_GUEST_GDTR_LIMIT    VMCSField = 0x00004810
	VMCS_GUEST_IDTR_LIMIT    VMCSField = 0x00004812
	VMCS_GUEST_ES_AR         VMCSField = 0x00004814
	VMCS_GUEST_CS_AR         VMCSField = 0x00004816
	VMCS_GUEST_SS_AR         VMCSField = 0x00004818
	VMCS_GUEST_DS_AR         VMCSField = 0x0000481a
	VMCS_GUEST_FS_AR         VMCSField = 0x0000481c
	VMCS_GUEST_GS_AR         VMCSField = 0x0000481e
	VMCS_GUEST_LDTR_AR       VMCSField = 0x00004820
	VMCS_GUEST_TR_AR         VMCSField = 0x00004822
	VMCS_GUEST_CR0           VMCSField = 0x00006800
	VMCS_GUEST_CR3           VMCSField = 0x00006802
	VMCS_GUEST_CR4           VMCSField = 0x00006804
	VMCS_GUEST_ES_BASE       VMCSField = 0x00006806
	VMCS_GUEST_CS_BASE       VMCSField = 0x00006808
	VMCS_GUEST_SS_BASE       VMCSField = 0x0000680a
	VMCS_GUEST_DS_BASE       VMCSField = 0x0000680c
	VMCS_GUEST_FS_BASE       VMCSField = 0x0000680e
	VMCS_GUEST_GS_BASE       VMCSField = 0x00006810
	VMCS_GUEST_LDTR_BASE     VMCSField = 0x00006812
	VMCS_GUEST_TR_BASE       VMCSField = 0x00006814
	VMCS_GUEST_GDTR_BASE     VMCSField = 0x00006816
	VMCS_GUEST_IDTR_BASE     VMCSField = 0x00006818
	VMCS_GUEST_RSP           VMCSField = 0x0000681c
	VMCS_GUEST_RIP           VMCSField = 0x0000681e
	VMCS_GUEST_RFLAGS        VMCSField = 0x00006820
)

// VMX basic exit reasons (low 16 bits of VMCS_RO_EXIT_REASON).
const (
	VMX_REASON_EXC_NMI       uint64 = 0
	VMX_REASON_IRQ           uint64 = 1
	VMX_REASON_TRIPLE_FAULT  uint64 = 2
	VMX_REASON_IRQ_WND       uint64 = 7
	VMX_REASON_CPUID         uint64 = 10
	VMX_REASON_HLT           uint64 = 12
	VMX_REASON_MOV_CR        uint64 = 28
	VMX_REASON_IO            uint64 = 30
	VMX_REASON_RDMSR         uint64 = 31
	VMX_REASON_WRMSR         uint64 = 32
	VMX_REASON_VMENTRY_GUEST uint64 = 33
	VMX_REASON_EPT_VIOLATION uint64 = 48
)

// Primary processor-based control bits used with
// VMCS_CTRL_CPU_BASED.
const (
	CPU_BASED_IRQ_WND        uint64 = 1 << 2
	CPU_BASED_HLT            uint64 = 1 << 7
	CPU_BASED_CR8_LOAD       uint64 = 1 << 19
	CPU_BASED_CR8_STORE      uint64 = 1 << 20
	CPU_BASED_UNCOND_IO      uint64 = 1 << 24
	CPU_BASED_MSR_BITMAPS    uint64 = 1 << 28
	CPU_BASED_SECONDARY_CTLS uint64 = 1 << 31
)

// VMXCap selects a hardware capability class readable with
// ReadVMXCap.
type VMXCap uint32

const (
	// Pin-based VMX capabilities.
	VMXCapPinbased VMXCap = 0
	// Primary proc-based VMX capabilities.
	VMXCapProcbased VMXCap = 1
	// Secondary proc-based VMX capabilities.
	VMXCapProcbased2 VMXCap = 2
	// VM-entry VMX capabilities.
	VMXCapEntry VMXCap = 3
	// VM-exit VMX capabilities.
	VMXCapExit VMXCap = 4
	// VMX preemption timer frequency.
	VMXCapPreemptionTimer VMXCap = 32
)

func (c VMXCap) String() string {
	switch c {
	case VMXCapPinbased:
		return "pin-based"
	case VMXCapProcbased:
		return "proc-based"
	case VMXCapProcbased2:
		return "proc-based2"
	case VMXCapEntry:
		return "vm-entry"
	case VMXCapExit:
		return "vm-exit"
	case VMXCapPreemptionTimer:
		return "preemption-timer"
	default:
		return "unknown"
	}
}

// Cap2Ctrl computes the control word enforced by a capability value:
// bits fixed to 1 by the low half of cap are forced on, bits fixed to
// 0 by the high half are forced off, and only flexible bits keep the
// desired setting. Every control-word field must be initialized this
// way before the first run.
func Cap2Ctrl(cap, desired uint64) uint64 {
	return (desired | (cap & 0xffffffff)) & (cap >> 32)
}
