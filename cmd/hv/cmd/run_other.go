//go:build !darwin

package cmd

import "fmt"

func runGuest(code []byte) error {
	return fmt.Errorf("hypervisor: not supported on this platform")
}
