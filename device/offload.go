// Package device runs the accumulate phase of selected library reductions on
// an OCCA device. Each partition of the runner's layout becomes one @outer
// iteration producing one partial accumulator; the partials are then
// combined and converted on the host by runner.Finish with the same library
// kernel, so device and host results agree.
package device

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
	"unsafe"

	"github.com/notargets/DGReduce/library"
	"github.com/notargets/DGReduce/partitions"
	"github.com/notargets/DGReduce/runner"
	"github.com/notargets/DGReduce/runner/builder"
	"github.com/notargets/gocca"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ErrUnsupported is returned for kernels that have no device version
var ErrUnsupported = errors.New("kernel not supported on device")

// Offloader builds and runs the device kernels. Kernels are compiled once per
// name and partition count.
type Offloader struct {
	Device *gocca.OCCADevice

	mu      sync.Mutex
	kernels map[string]*gocca.OCCAKernel
}

// NewOffloader wraps an open device. The caller keeps ownership of the device.
func NewOffloader(device *gocca.OCCADevice) *Offloader {
	return &Offloader{
		Device:  device,
		kernels: make(map[string]*gocca.OCCAKernel),
	}
}

// Free releases the compiled kernels
func (o *Offloader) Free() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for key, k := range o.kernels {
		k.Free()
		delete(o.kernels, key)
	}
}

var sources = map[string]string{
	"addint":    addIntSource,
	"dp":        dpSource,
	"sumxor":    sumXorSource,
	"histogram": histogramSource,
	"mode":      histogramSource,
}

// Supports reports whether the named library kernel has a device version
func Supports(name string) bool {
	_, ok := sources[name]
	return ok
}

// GeneratePreamble returns the defines a kernel is compiled with for a layout
func GeneratePreamble(layout *partitions.PartitionLayout) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("#define NPART %d\n", layout.NumPartitions))
	sb.WriteString(fmt.Sprintf("#define NBUCKET %d\n", library.HistogramBuckets))
	sb.WriteString("\n")
	return sb.String()
}

func (o *Offloader) kernel(name string, layout *partitions.PartitionLayout) (*gocca.OCCAKernel, error) {
	src, ok := sources[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupported, "kernel %q", name)
	}
	// mode shares the histogram kernel
	if name == "mode" {
		name = "histogram"
	}
	key := fmt.Sprintf("%s_%d", name, layout.NumPartitions)

	o.mu.Lock()
	defer o.mu.Unlock()
	if k, ok := o.kernels[key]; ok {
		return k, nil
	}

	fullSource := GeneratePreamble(layout) + src
	var (
		k   *gocca.OCCAKernel
		err error
	)
	if o.Device.Mode() == "OpenMP" {
		// OpenMP does not get -O3 by default
		props := gocca.JsonParse(`{"compiler_flags": "-O3"}`)
		defer props.Free()
		k, err = o.Device.BuildKernelFromString(fullSource, name, props)
	} else {
		k, err = o.Device.BuildKernelFromString(fullSource, name, nil)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build kernel %s", key)
	}
	if k == nil {
		return nil, errors.Errorf("kernel build returned nil for %s", key)
	}
	klog.V(2).Infof("built device kernel %s on %s", key, o.Device.Mode())
	o.kernels[key] = k
	return k, nil
}

// partials runs the named kernel over inputs and returns width partial
// values per partition. An empty domain runs nothing and returns zeros, the
// identity of every device kernel.
func partials[E, P any](o *Offloader, name string, layout *partitions.PartitionLayout, width int, inputs ...[]E) ([]P, error) {
	out := make([]P, layout.NumPartitions*width)
	if layout.TotalElements == 0 {
		return out, nil
	}
	if layout.TotalElements > math.MaxInt32 {
		return nil, errors.Errorf("device kernel %s: %d elements exceed int32 offsets", name, layout.TotalElements)
	}
	kernel, err := o.kernel(name, layout)
	if err != nil {
		return nil, err
	}

	var elem E
	var part P
	args := make([]interface{}, 0, len(inputs)+2)
	for _, in := range inputs {
		mem := o.Device.Malloc(int64(len(in))*int64(unsafe.Sizeof(elem)), unsafe.Pointer(&in[0]), nil)
		defer mem.Free()
		args = append(args, mem)
	}

	offsets := layout.Offsets()
	offsets32 := make([]int32, len(offsets))
	for i, v := range offsets {
		offsets32[i] = int32(v)
	}
	offsetsMem := o.Device.Malloc(int64(len(offsets32)*4), unsafe.Pointer(&offsets32[0]), nil)
	defer offsetsMem.Free()

	partBytes := int64(len(out)) * int64(unsafe.Sizeof(part))
	partialsMem := o.Device.Malloc(partBytes, nil, nil)
	defer partialsMem.Free()
	args = append(args, offsetsMem, partialsMem)

	start := time.Now()
	if err := kernel.RunWithArgs(args...); err != nil {
		return nil, errors.Wrapf(err, "device kernel %s execution failed", name)
	}
	o.Device.Finish()
	partialsMem.CopyTo(unsafe.Pointer(&out[0]), partBytes)
	klog.V(1).Infof("device %s: %d elements in %d partitions, %v", name,
		layout.TotalElements, layout.NumPartitions, time.Since(start))
	return out, nil
}

func sameLength(name string, a, b int) error {
	if a != b {
		return errors.Wrapf(runner.ErrInputLengthMismatch, "%s: input lengths %d and %d", name, a, b)
	}
	return nil
}

// AddInt sums in on the device
func (o *Offloader) AddInt(kr *runner.Runner, s *library.Script, in []int32) (int32, error) {
	layout, err := kr.Partition(len(in))
	if err != nil {
		return 0, err
	}
	p, err := partials[int32, int32](o, "addint", layout, 1, in)
	if err != nil {
		return 0, err
	}
	return runner.Finish(kr, s.AddInt, p)
}

// Dp computes the dot product of a and b on the device
func (o *Offloader) Dp(kr *runner.Runner, s *library.Script, a, b []float32) (float32, error) {
	if err := sameLength("dp", len(a), len(b)); err != nil {
		return 0, err
	}
	layout, err := kr.Partition(len(a))
	if err != nil {
		return 0, err
	}
	p, err := partials[float32, float32](o, "dp", layout, 1, a, b)
	if err != nil {
		return 0, err
	}
	return runner.Finish(kr, s.Dp, p)
}

// SumXor sums a[i]^b[i] on the device
func (o *Offloader) SumXor(kr *runner.Runner, s *library.Script, a, b []int32) (int32, error) {
	if err := sameLength("sumxor", len(a), len(b)); err != nil {
		return 0, err
	}
	layout, err := kr.Partition(len(a))
	if err != nil {
		return 0, err
	}
	p, err := partials[int32, int32](o, "sumxor", layout, 1, a, b)
	if err != nil {
		return 0, err
	}
	return runner.Finish(kr, s.SumXor, p)
}

func (o *Offloader) histograms(kr *runner.Runner, name string, in []uint8) ([]library.Histogram, error) {
	layout, err := kr.Partition(len(in))
	if err != nil {
		return nil, err
	}
	flat, err := partials[uint8, uint32](o, name, layout, library.HistogramBuckets, in)
	if err != nil {
		return nil, err
	}
	out := make([]library.Histogram, layout.NumPartitions)
	for i := range out {
		copy(out[i][:], flat[i*library.HistogramBuckets:])
	}
	return out, nil
}

// Histogram counts the values of in on the device
func (o *Offloader) Histogram(kr *runner.Runner, s *library.Script, in []uint8) (library.Histogram, error) {
	h, err := o.histograms(kr, "histogram", in)
	if err != nil {
		return library.Histogram{}, err
	}
	return runner.Finish(kr, s.Histogram, h)
}

// Mode finds the most frequent value of in, counting on the device
func (o *Offloader) Mode(kr *runner.Runner, s *library.Script, in []uint8) (builder.Int2, error) {
	h, err := o.histograms(kr, "mode", in)
	if err != nil {
		return builder.Int2{}, err
	}
	return runner.Finish(kr, s.Mode, h)
}

func data[T any](name string, in builder.Buffer) ([]T, error) {
	a, ok := in.(*builder.Allocation[T])
	if !ok || a == nil {
		return nil, errors.Wrapf(runner.ErrInputType, "%s: device input is %T", name, in)
	}
	if a.Dims().Rank() != 1 {
		return nil, errors.Wrapf(ErrUnsupported, "%s: device inputs must be 1D, got %s", name, a.Dims())
	}
	return a.Data, nil
}

// Run dispatches a library kernel by name, returning ErrUnsupported for
// kernels without a device version
func (o *Offloader) Run(kr *runner.Runner, s *library.Script, name string, inputs ...builder.Buffer) (any, error) {
	k, ok := s.Kernel(name)
	if !ok || !Supports(name) {
		return nil, errors.Wrapf(ErrUnsupported, "kernel %q", name)
	}
	if len(inputs) != len(k.Inputs) {
		return nil, errors.Wrapf(builder.ErrSpecIncomplete, "%s: %d inputs bound, %d declared", name, len(inputs), len(k.Inputs))
	}
	switch name {
	case "addint":
		in, err := data[int32](name, inputs[0])
		if err != nil {
			return nil, err
		}
		return o.AddInt(kr, s, in)
	case "dp":
		a, err := data[float32](name, inputs[0])
		if err != nil {
			return nil, err
		}
		b, err := data[float32](name, inputs[1])
		if err != nil {
			return nil, err
		}
		return o.Dp(kr, s, a, b)
	case "sumxor":
		a, err := data[int32](name, inputs[0])
		if err != nil {
			return nil, err
		}
		b, err := data[int32](name, inputs[1])
		if err != nil {
			return nil, err
		}
		return o.SumXor(kr, s, a, b)
	case "histogram":
		in, err := data[uint8](name, inputs[0])
		if err != nil {
			return nil, err
		}
		return o.Histogram(kr, s, in)
	default: // mode
		in, err := data[uint8](name, inputs[0])
		if err != nil {
			return nil, err
		}
		return o.Mode(kr, s, in)
	}
}
