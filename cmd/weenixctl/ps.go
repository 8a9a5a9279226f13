package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kernel"
	"proc"
	"sched"
)

var psCmd = &cobra.Command{
	Use:   "ps",
	Short: "Boot the kernel and print the process table (proc.ListInfo)",
	RunE: func(cmd *cobra.Command, args []string) error {
		maybeServeMetrics()
		k := kernel.Boot(func(t *sched.Thread, kk *kernel.Kernel) {})
		fmt.Print(proc.ListInfo(k.Root))
		return nil
	},
}
