// Package hypervisor provides Go bindings for Apple's Hypervisor.framework
// on Darwin ARM64 (Apple Silicon) and x86_64 (Intel) systems.
//
// Provides VM and vCPU management with memory mapping, register access,
// and execution control. The framework is loaded at runtime through
// purego, so no cgo toolchain is required.
//
// # Requirements
//
//   - macOS with Apple Silicon (ARM64) or a VMX-capable Intel CPU
//   - Hypervisor entitlement: com.apple.security.hypervisor
//   - Code signing with entitlements
//
// # Basic Usage
//
// Check if hypervisor is supported:
//
//	supported, err := hypervisor.Supported()
//	if err != nil || !supported {
//		log.Fatal("Hypervisor not supported on this system")
//	}
//
// Create and manage a virtual machine:
//
//	// Create a new VM (only one VM per process is allowed)
//	vm, err := hypervisor.NewVM()
//	if err != nil {
//		log.Fatal("Failed to create VM:", err)
//	}
//	defer vm.Close()
//
//	// Create a virtual CPU on the current OS thread
//	runtime.LockOSThread()
//	vcpu, err := vm.NewVCPU()
//	if err != nil {
//		log.Fatal("Failed to create vCPU:", err)
//	}
//	defer vcpu.Close()
//
// Memory management:
//
//	// Allocate and map guest memory (must be page-aligned)
//	hostMem := make([]byte, 65536)
//	guestPhys := uint64(0x40000)
//
//	err = vm.Map(hostMem, guestPhys, hypervisor.MemRWX)
//	if err != nil {
//		log.Fatal("Failed to map memory:", err)
//	}
//	defer vm.Unmap(guestPhys, uint64(len(hostMem)))
//
// Register access and execution:
//
//	err = vcpu.SetPC(guestPhys)
//	if err != nil {
//		log.Fatal("Failed to set PC:", err)
//	}
//
//	// Execute guest code until exit
//	exitInfo, err := vcpu.Run()
//	if err != nil {
//		log.Fatal("Failed to run vCPU:", err)
//	}
//
//	switch exitInfo.Reason {
//	case hypervisor.ExitException:
//		fmt.Printf("Guest exception: syndrome=0x%x\n", exitInfo.Exception.Syndrome)
//	case hypervisor.ExitHalt:
//		fmt.Println("Guest halted")
//	}
//
// On ARM64 the exit record carries the exception syndrome and fault
// addresses directly. On x86_64 the exit is derived from the VMCS
// exit-reason and exit-qualification fields, and control-word VMCS
// fields must be negotiated against the hardware capabilities with
// Cap2Ctrl before the first Run.
//
// # Threading
//
// A vCPU is bound to the OS thread that created it. Pin the goroutine
// with runtime.LockOSThread before NewVCPU and call Run, register
// access, and Close from that thread. Only (*VM).ExitVCPUs (ARM64) and
// Interrupt/InterruptVCPUs (x86_64) are safe from other threads.
//
// # Error Handling
//
// All errors implement the standard Go error interface. Hypervisor-specific
// errors are wrapped in HVError types with Apple Hypervisor.framework
// error codes.
//
// # Resource Management
//
// All resources (VMs and vCPUs) must be explicitly closed using Close().
// Finalizers provide safety net cleanup. Only one VM can exist per process.
//
// # Platform Support
//
// Darwin ARM64 and x86_64 only. Other platforms return "not supported"
// errors.
//
// # Code Signing and Entitlements
//
// Applications must be code signed with hypervisor entitlement:
//
//	<?xml version="1.0" encoding="UTF-8"?>
//	<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN"
//	    "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
//	<plist version="1.0">
//	<dict>
//	    <key>com.apple.security.hypervisor</key>
//	    <true/>
//	</dict>
//	</plist>
//
// Then sign your binary:
//
//	codesign --sign - --force --entitlements=hypervisor.entitlements ./your-app
package hypervisor
