//go:build darwin

package hypervisor

import (
	"runtime"
	"sync"
	"time"
)

// VM represents the hypervisor VM instance for this process. At most
// one VM may be live per process; NewVM fails with ErrVMAlreadyActive
// until the previous instance is closed.
type VM struct {
	closed  bool
	closeMu sync.Mutex // protects against concurrent Close() and finalizer
}

var (
	vmMu     sync.Mutex
	vmActive bool
)

// NewVM creates the hypervisor VM for this process.
func NewVM() (*VM, error) {
	start := time.Now()
	defer func() {
		recordVMCreate(time.Since(start))
	}()

	if err := ensureFramework(); err != nil {
		return nil, err
	}

	vmMu.Lock()
	defer vmMu.Unlock()

	if vmActive {
		recordResourceError()
		return nil, ErrVMAlreadyActive
	}

	if err := hvErr(hvVmCreate(0)); err != nil {
		recordResourceError()
		return nil, err
	}

	vmActive = true
	vm := &VM{}

	// Safety net in case Close() is never called.
	runtime.SetFinalizer(vm, (*VM).finalize)

	return vm, nil
}

// Close destroys the hypervisor VM. Idempotent. Guest memory mappings
// and vCPUs are not cascade-freed; the caller must release them
// first.
func (vm *VM) Close() error {
	if vm == nil {
		return nil
	}

	vm.closeMu.Lock()
	defer vm.closeMu.Unlock()

	if vm.closed {
		return nil
	}

	vmMu.Lock()
	defer vmMu.Unlock()

	if !vmActive {
		return nil
	}

	if err := hvErr(hvVmDestroy()); err != nil {
		return err
	}

	vm.closed = true
	vmActive = false
	runtime.SetFinalizer(vm, nil)

	recordVMDestroy()
	return nil
}

func (vm *VM) finalize() {
	if vm == nil {
		return
	}
	// Non-blocking lock: never deadlock inside a finalizer.
	if vm.closeMu.TryLock() {
		defer vm.closeMu.Unlock()
		if !vm.closed {
			vm.closed = true
			vmMu.Lock()
			if vmActive {
				hvVmDestroy()
				vmActive = false
			}
			vmMu.Unlock()
		}
	}
}
