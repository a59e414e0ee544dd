package hypervisor

// MemPerm represents guest memory permissions.
type MemPerm uint

const (
	MemRead  MemPerm = 1 << 0
	MemWrite MemPerm = 1 << 1
	MemExec  MemPerm = 1 << 2

	MemNone MemPerm = 0
	MemRW   MemPerm = MemRead | MemWrite
	MemRX   MemPerm = MemRead | MemExec
	MemRWX  MemPerm = MemRead | MemWrite | MemExec
)

// effectivePerm returns the native HV_MEMORY_* flag word for p.
// Writable and executable mappings implicitly require read on the
// x86_64 backend, so the read bit is ORed in whenever write or exec
// is requested. This keeps the effective semantics identical on both
// backends; execute-without-read is not expressible through this
// encoder.
func effectivePerm(p MemPerm) uint64 {
	var flags uint64
	if p&MemRead != 0 {
		flags |= hvMemoryRead
	}
	if p&MemWrite != 0 {
		flags |= hvMemoryWrite | hvMemoryRead
	}
	if p&MemExec != 0 {
		flags |= hvMemoryExec | hvMemoryRead
	}
	return flags
}

// Native HV_MEMORY_* flag bits, identical on both backends.
const (
	hvMemoryRead  uint64 = 1 << 0
	hvMemoryWrite uint64 = 1 << 1
	hvMemoryExec  uint64 = 1 << 2
)

func (p MemPerm) String() string {
	if p == MemNone {
		return "---"
	}
	buf := []byte("---")
	if p&MemRead != 0 {
		buf[0] = 'r'
	}
	if p&MemWrite != 0 {
		buf[1] = 'w'
	}
	if p&MemExec != 0 {
		buf[2] = 'x'
	}
	return string(buf)
}
