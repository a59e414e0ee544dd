package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	memSize  int
	baseAddr uint64
	maxExits int
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().IntVar(&memSize, "mem-size", 65536, "Memory size to allocate (bytes)")
	runCmd.Flags().Uint64VarP(&baseAddr, "base-addr", "a", 0x4000, "Base address for code execution")
	runCmd.Flags().IntVar(&maxExits, "max-exits", 256, "Abort after this many guest exits")
}

var runCmd = &cobra.Command{
	Use:   "run [code-file]",
	Short: "Run flat machine code in a guest until it halts",
	Long: `Run flat machine code inside a hypervisor guest.

Code can be provided as:
  - A binary file argument
  - Stdin (if no file argument provided)

The guest runs until it halts (HLT on x86_64, HVC on arm64), faults,
or exceeds --max-exits. I/O port writes are echoed to stdout and the
final register state is printed to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var code []byte
		var err error
		if len(args) > 0 {
			code, err = os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read code file: %w", err)
			}
		} else {
			code, err = io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read from stdin: %w", err)
			}
		}
		if len(code) == 0 {
			return fmt.Errorf("no code provided")
		}
		return runGuest(code)
	},
}
