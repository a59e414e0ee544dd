package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	hypervisor "github.com/RWTH-OS/xhypervisor"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check Hypervisor.framework support and entitlement status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := hypervisor.Supported()
		if err != nil {
			fmt.Printf("hv support: error: %v\n", err)
		} else {
			fmt.Printf("hv support: %v\n", ok)
		}

		exe, _ := os.Executable()
		if exe != "" {
			out, _ := exec.Command("codesign", "-dv", "--entitlements", "-", exe).CombinedOutput()
			entStr := string(out)
			entOK := strings.Contains(entStr, "com.apple.security.hypervisor")
			fmt.Printf("entitlements: hypervisor=%v\n", entOK)
		} else {
			fmt.Println("entitlements: unknown (executable path not found)")
		}

		return nil
	},
}
