package main

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/notargets/DGReduce/convert"
	"github.com/notargets/DGReduce/device"
	"github.com/notargets/DGReduce/library"
	"github.com/notargets/DGReduce/runner"
	"github.com/notargets/DGReduce/runner/builder"
	"github.com/notargets/DGReduce/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

var runCmd = &cobra.Command{
	Use:   "run <kernel>",
	Short: "Run a library kernel over generated inputs",
	Args:  cobra.ExactArgs(1),
	RunE:  runKernel,
}

func runKernel(cmd *cobra.Command, args []string) error {
	cfg, err := loadCLIConfig(configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("length") {
		cfg.Length = length
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("parallelism") {
		cfg.Parallelism = parallelism
	}
	if flags.Changed("device") {
		cfg.Device = deviceProps
	}
	if cfg.Length < 0 {
		return errors.Errorf("negative length %d", cfg.Length)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	s := library.NewScript()
	k, ok := s.Kernel(args[0])
	if !ok {
		return errors.Errorf("unknown kernel %q, see dgreduce list", args[0])
	}
	inputs, err := generateInputs(cfg.Seed, k.Inputs, cfg.Length)
	if err != nil {
		return err
	}
	kr := runner.NewRunner(cfg.Config)

	start := time.Now()
	result, where, err := reduce(kr, s, k, cfg.Device, inputs)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s over %s elements on %s: %v\n", k.Name, humanize.Comma(int64(cfg.Length)), where, result)
	printInt64Check(out, result)
	rate := 0.0
	if elapsed > 0 {
		rate = float64(cfg.Length) / elapsed.Seconds()
	}
	fmt.Fprintf(out, "%v, %s\n", elapsed, humanize.SIWithDigits(rate, 2, "elements/s"))
	return nil
}

// reduce runs k on the device when one is configured and supports it, and on
// the host otherwise
func reduce(kr *runner.Runner, s *library.Script, k library.Kernel, props string, inputs []builder.Buffer) (any, string, error) {
	if props != "" {
		if !device.Supports(k.Name) {
			klog.Warningf("%s has no device version, running on host", k.Name)
		} else if dev, err := utils.CreateDevice(props); err != nil {
			klog.Warningf("device unavailable, running on host: %v", err)
		} else {
			defer dev.Free()
			o := device.NewOffloader(dev)
			defer o.Free()
			result, err := o.Run(kr, s, k.Name, inputs...)
			return result, dev.Mode(), err
		}
	}
	result, err := k.Run(kr, inputs...)
	return result, fmt.Sprintf("host (%d workers)", kr.Parallelism()), err
}

// printInt64Check reports whether unsigned 64-bit results fit an int64
func printInt64Check(w io.Writer, result any) {
	var err error
	switch r := result.(type) {
	case uint64:
		_, err = convert.ToInt64(r)
	case builder.ULong4:
		_, err = convert.Vec4ToInt64(r)
	case library.Arr9:
		_, err = convert.ArrayToInt64(r[:])
	case library.Arr9Vec4:
		_, err = convert.Arr9Vec4ToInt64(r)
	default:
		return
	}
	if err != nil {
		fmt.Fprintf(w, "int64: %v\n", err)
		return
	}
	fmt.Fprintln(w, "int64: ok")
}
