// Command dgreduce runs the library reductions over generated inputs.
//
//	dgreduce list
//	dgreduce run sumxor --length 1000000 --parallelism 8
//	dgreduce run histogram --device '{"mode": "Serial"}'
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

var (
	configPath  string
	length      int
	seed        int64
	parallelism int
	deviceProps string
)

var rootCmd = &cobra.Command{
	Use:   "dgreduce",
	Short: "Partition-parallel reductions",
	Long: `dgreduce runs reduction kernels over generated inputs, splitting the
domain into contiguous partitions that are accumulated in parallel and
combined in order.`,
	SilenceUsage: true,
}

func init() {
	klogFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(klogFlags)
	rootCmd.PersistentFlags().AddGoFlagSet(klogFlags)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")

	runCmd.Flags().IntVarP(&length, "length", "n", 0, "number of input elements (default 1048576)")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "seed for generated inputs (default 1)")
	runCmd.Flags().IntVarP(&parallelism, "parallelism", "p", 0, "partition count, 0 for one per CPU")
	runCmd.Flags().StringVar(&deviceProps, "device", "", `OCCA device properties, e.g. '{"mode": "Serial"}'`)

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runCmd)
}

func main() {
	defer klog.Flush()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
