package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/notargets/DGReduce/device"
	"github.com/notargets/DGReduce/library"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the library kernels",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDEVICE\tSIGNATURE")
		for _, k := range library.NewScript().Kernels() {
			dev := ""
			if device.Supports(k.Name) {
				dev = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", k.Name, dev, k.Signature)
		}
		return w.Flush()
	},
}
