//go:build darwin && arm64 && hypervisor

package hypervisor

import (
	"encoding/binary"
	"errors"
	"runtime"
	"testing"

	"golang.org/x/sys/unix"
)

// EL1h with DAIF masked.
const testCPSR = 0x3c4

func setupGuest(t *testing.T, code []uint32) (*VM, *VCPU, []byte, uint64) {
	t.Helper()

	if isCI() {
		t.Skip("Skipping hypervisor tests in CI environment")
	}
	supported, err := Supported()
	if err != nil {
		t.Fatalf("Failed to check hypervisor support: %v", err)
	}
	if !supported {
		t.Skip("Hypervisor not supported - skipping execution test")
	}

	runtime.LockOSThread()
	t.Cleanup(runtime.UnlockOSThread)

	vm, err := NewVM()
	if err != nil {
		t.Skipf("Cannot create VM (likely missing entitlements): %v", err)
	}
	t.Cleanup(func() {
		if err := vm.Close(); err != nil {
			t.Errorf("Failed to close VM: %v", err)
		}
	})

	ps := unix.Getpagesize()
	buf, err := unix.Mmap(-1, 0, ps, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		t.Fatalf("Failed to mmap: %v", err)
	}
	t.Cleanup(func() {
		if err := unix.Munmap(buf); err != nil {
			t.Errorf("Failed to munmap: %v", err)
		}
	})

	for i, insn := range code {
		binary.LittleEndian.PutUint32(buf[i*4:], insn)
	}

	const guestPhys = 0x4000
	if err := vm.Map(buf, guestPhys, MemRWX); err != nil {
		t.Fatalf("Failed to map guest memory: %v", err)
	}
	t.Cleanup(func() {
		if err := vm.Unmap(guestPhys, uint64(ps)); err != nil {
			t.Errorf("Failed to unmap: %v", err)
		}
	})

	vcpu, err := vm.NewVCPU()
	if err != nil {
		t.Fatalf("Failed to create vCPU: %v", err)
	}
	t.Cleanup(func() {
		if err := vcpu.Close(); err != nil {
			t.Errorf("Failed to close vCPU: %v", err)
		}
	})

	if err := vcpu.SetReg(RegCPSR, testCPSR); err != nil {
		t.Fatalf("Failed to set CPSR: %v", err)
	}
	if err := vcpu.SetPC(guestPhys); err != nil {
		t.Fatalf("Failed to set PC: %v", err)
	}

	return vm, vcpu, buf, guestPhys
}

func TestGuestHypercall(t *testing.T) {
	_, vcpu, _, _ := setupGuest(t, []uint32{
		0xD2800040, // MOVZ X0, #2
		0xD4000002, // HVC #0
	})

	// Exit state is not available before the first run.
	if _, err := vcpu.ExitInfo(); !errors.Is(err, ErrNoExitInfo) {
		t.Errorf("ExitInfo before run: got %v, want ErrNoExitInfo", err)
	}

	exit, err := vcpu.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if exit.Reason != ExitException {
		t.Fatalf("exit reason = %v, want %v", exit.Reason, ExitException)
	}
	if class := ExceptionClass(exit.Exception.Syndrome); class != ExceptionClassHVC {
		t.Fatalf("exception class = 0x%x, want 0x%x (HVC)", class, ExceptionClassHVC)
	}

	x0, err := vcpu.GetReg(RegX0)
	if err != nil {
		t.Fatalf("Failed to read X0: %v", err)
	}
	if x0 != 2 {
		t.Errorf("X0 = %d, want 2", x0)
	}

	// The stored exit record matches what Run returned.
	stored, err := vcpu.ExitInfo()
	if err != nil {
		t.Fatalf("ExitInfo after run: %v", err)
	}
	if stored != exit {
		t.Errorf("stored exit %+v differs from returned %+v", stored, exit)
	}
}

func TestGuestRegisterRoundTrip(t *testing.T) {
	_, vcpu, _, _ := setupGuest(t, []uint32{
		0xD4000002, // HVC #0
	})

	const sentinel = 0xDEADBEEFCAFEBABE
	if err := vcpu.SetReg(RegX5, sentinel); err != nil {
		t.Fatalf("Failed to write X5: %v", err)
	}

	if _, err := vcpu.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// HVC leaves unrelated registers untouched.
	x5, err := vcpu.GetReg(RegX5)
	if err != nil {
		t.Fatalf("Failed to read X5: %v", err)
	}
	if x5 != sentinel {
		t.Errorf("X5 = 0x%x, want 0x%x", x5, sentinel)
	}
}

func TestGuestRegisterCatalogRoundTrip(t *testing.T) {
	_, vcpu, _, _ := setupGuest(t, []uint32{
		0xD4000002, // HVC #0
	})

	// Every general-purpose register holds an arbitrary 64-bit value
	// while the vCPU is not running.
	for r := RegX0; r <= RegX28; r++ {
		want := 0xA5A5_0000_0000_0000 | uint64(r)
		if err := vcpu.SetReg(r, want); err != nil {
			t.Fatalf("Failed to write X%d: %v", r, err)
		}
		got, err := vcpu.GetReg(r)
		if err != nil {
			t.Fatalf("Failed to read X%d: %v", r, err)
		}
		if got != want {
			t.Errorf("X%d = 0x%x, want 0x%x", r, got, want)
		}
	}
}

func TestGuestRegisterBatch(t *testing.T) {
	_, vcpu, _, _ := setupGuest(t, []uint32{
		0xD4000002, // HVC #0
	})

	want := RegBatch{
		RegX1: 0x1111,
		RegX2: 0x2222,
		RegLR: 0x4000,
	}
	if err := vcpu.SetRegs(want); err != nil {
		t.Fatalf("SetRegs failed: %v", err)
	}

	got, err := vcpu.GetRegs([]Reg{RegX1, RegX2, RegLR})
	if err != nil {
		t.Fatalf("GetRegs failed: %v", err)
	}
	for reg, value := range want {
		if got[reg] != value {
			t.Errorf("reg %d = 0x%x, want 0x%x", reg, got[reg], value)
		}
	}

	if _, err := vcpu.GetRegs([]Reg{regMax}); err == nil {
		t.Error("GetRegs with an out-of-range register should fail")
	}
}

func TestRemapAfterUnmap(t *testing.T) {
	vm, vcpu, buf, guestPhys := setupGuest(t, []uint32{
		0xD2800040, // MOVZ X0, #2
		0xD4000002, // HVC #0
	})

	// Tear the region down and map it again; the remapped region
	// must behave as a fresh mapping.
	if err := vm.Unmap(guestPhys, uint64(len(buf))); err != nil {
		t.Fatalf("Failed to unmap: %v", err)
	}
	if err := vm.Map(buf, guestPhys, MemRWX); err != nil {
		t.Fatalf("Failed to remap: %v", err)
	}

	if err := vcpu.SetPC(guestPhys); err != nil {
		t.Fatalf("Failed to reset PC: %v", err)
	}
	exit, err := vcpu.Run()
	if err != nil {
		t.Fatalf("Run after remap failed: %v", err)
	}
	if exit.Reason != ExitException {
		t.Fatalf("exit reason = %v, want %v", exit.Reason, ExitException)
	}
	if class := ExceptionClass(exit.Exception.Syndrome); class != ExceptionClassHVC {
		t.Fatalf("exception class = 0x%x, want HVC", class)
	}
}

func TestExitVCPUsCancellation(t *testing.T) {
	vm, vcpu, _, _ := setupGuest(t, []uint32{
		0x14000000, // B . (spin forever)
	})

	// Run must happen on the owning thread (pinned in setupGuest);
	// cancellation is the one call that is safe from elsewhere. Keep
	// kicking the guest until the Run call observes the cancel, since
	// a single hv_vcpus_exit issued before the guest entered would be
	// consumed by the entry itself.
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				if err := vm.ExitVCPUs(vcpu); err != nil {
					return
				}
			}
		}
	}()
	defer close(stop)

	exit, err := vcpu.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if exit.Reason != ExitCancelled {
		t.Fatalf("exit reason = %v, want %v", exit.Reason, ExitCancelled)
	}
}

func TestGuestSysRegAccess(t *testing.T) {
	_, vcpu, _, _ := setupGuest(t, []uint32{
		0xD4000002, // HVC #0
	})

	const vbar = 0x10000
	if err := vcpu.SetSysReg(SysRegVBAR_EL1, vbar); err != nil {
		t.Fatalf("Failed to write VBAR_EL1: %v", err)
	}
	got, err := vcpu.GetSysReg(SysRegVBAR_EL1)
	if err != nil {
		t.Fatalf("Failed to read VBAR_EL1: %v", err)
	}
	if got != vbar {
		t.Errorf("VBAR_EL1 = 0x%x, want 0x%x", got, vbar)
	}

	if _, err := vcpu.GetSysReg(numSysRegs); !errors.Is(err, ErrInvalidRegister) {
		t.Errorf("out-of-range sysreg: got %v, want ErrInvalidRegister", err)
	}
}

func TestGuestInvalidRegister(t *testing.T) {
	_, vcpu, _, _ := setupGuest(t, []uint32{
		0xD4000002, // HVC #0
	})

	if _, err := vcpu.GetReg(regMax); !errors.Is(err, ErrInvalidRegister) {
		t.Errorf("GetReg(regMax): got %v, want ErrInvalidRegister", err)
	}
	if err := vcpu.SetReg(Reg(200), 1); !errors.Is(err, ErrInvalidRegister) {
		t.Errorf("SetReg(200): got %v, want ErrInvalidRegister", err)
	}
}

func TestSingleVMPerProcess(t *testing.T) {
	vm, _, _, _ := setupGuest(t, []uint32{0xD4000002})

	if _, err := NewVM(); !errors.Is(err, ErrVMAlreadyActive) {
		t.Errorf("second NewVM: got %v, want ErrVMAlreadyActive", err)
	}

	_ = vm
}
