package builder

import (
	"fmt"
	"reflect"
	"strings"
)

// Signature describes the reduction in the form
//
//	reduce(name) (in0_t, in1_t, ...) accum(AccType) -> ResultType
//
// Element types use their C names, accumulator and result types their Go
// names.
func (r *Reduction[A, R]) Signature() string {
	var params []string
	for _, dt := range r.inputs {
		params = append(params, TypeName(dt))
	}

	var roles []string
	if r.initializer != nil {
		roles = append(roles, "initializer")
	}
	roles = append(roles, "accumulator")
	if !r.derivedCombiner {
		roles = append(roles, "combiner")
	}
	if r.outConverter != nil {
		roles = append(roles, "outconverter")
	}

	return fmt.Sprintf("reduce(%s) (%s) accum(%s) -> %s [%s]",
		r.name,
		strings.Join(params, ", "),
		goTypeName(reflect.TypeFor[A]()),
		goTypeName(reflect.TypeFor[R]()),
		strings.Join(roles, " "))
}

// goTypeName strips the package path from named types
func goTypeName(t reflect.Type) string {
	return strings.TrimPrefix(t.String(), "builder.")
}
