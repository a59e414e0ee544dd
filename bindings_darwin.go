//go:build darwin

package hypervisor

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

const hypervisorFrameworkPath = "/System/Library/Frameworks/Hypervisor.framework/Hypervisor"

var (
	frameworkOnce sync.Once
	frameworkErr  error
	libHypervisor uintptr

	// VM-wide calls shared by both backends. hv_vm_create takes an
	// hv_vm_config_t on arm64 and a flags word on x86_64; both accept
	// zero for the defaults, so one signature covers the two.
	hvVmCreate  func(config uintptr) uint32
	hvVmDestroy func() uint32
	hvVmMap     func(addr unsafe.Pointer, gpa uint64, size uint64, flags uint64) uint32
	hvVmUnmap   func(gpa uint64, size uint64) uint32
	hvVmProtect func(gpa uint64, size uint64, flags uint64) uint32
)

// ensureFramework loads Hypervisor.framework and resolves the native
// call table once per process.
func ensureFramework() error {
	frameworkOnce.Do(func() {
		var err error
		libHypervisor, err = purego.Dlopen(hypervisorFrameworkPath, purego.RTLD_GLOBAL|purego.RTLD_NOW)
		if err != nil {
			frameworkErr = fmt.Errorf("hv: dlopen Hypervisor.framework: %w", err)
			return
		}

		register(&hvVmCreate, "hv_vm_create")
		register(&hvVmDestroy, "hv_vm_destroy")
		register(&hvVmMap, "hv_vm_map")
		register(&hvVmUnmap, "hv_vm_unmap")
		register(&hvVmProtect, "hv_vm_protect")

		registerArchFuncs()
	})
	return frameworkErr
}

func register(fptr any, name string) {
	if frameworkErr != nil {
		return
	}
	purego.RegisterLibFunc(fptr, libHypervisor, name)
}
