package main

import "github.com/RWTH-OS/xhypervisor/cmd/hv/cmd"

func main() {
	cmd.Execute()
}
