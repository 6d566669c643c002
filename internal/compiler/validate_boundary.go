package compiler

import (
	"fmt"
	"slices"

	"github.com/roach88/lowir/internal/ir"
)

// checkParameter requires every reader of a graph input to be a memory
// access port or a LoopEnd, and all memory access readers to agree on one
// layout. Shape-only relabels directly after the parameter are skipped.
func checkParameter(_ *ir.LinearIR, e *ir.Expression) []ValidationError {
	out := e
	if seq := ir.FirstChildShapeOnlySeq(e); len(seq) > 0 {
		out = seq[len(seq)-1]
	}
	c := out.OutputConnector(0)
	if c == nil {
		return []ValidationError{exprError(ErrMissingConnector, e, "parameter %s has no output 0", out.Name)}
	}

	var errs []ValidationError
	layouts := make(map[string]bool)
	var order []string
	for _, consumer := range c.Consumers() {
		if consumer.Expr == nil {
			continue
		}
		switch {
		case consumer.Expr.IsMemoryAccessInput(consumer.Index):
			if d := consumer.Descriptor(); d != nil {
				key := "[" + d.LayoutKey() + "]"
				if !layouts[key] {
					layouts[key] = true
					order = append(order, key)
				}
			}
		case consumer.Expr.Kind == ir.KindLoopEnd:
		default:
			errs = append(errs, exprError(ErrParameterConsumer, e,
				"consumer %s is neither a memory access input nor a LoopEnd", consumer))
		}
	}
	if len(layouts) != 1 {
		errs = append(errs, exprError(ErrParameterLayouts, e,
			"memory access consumers must share exactly one layout, saw %v", order).want(1, len(order)))
	}
	return errs
}

// checkResult requires the value written to a graph output to come from a
// memory access output port. Shape-only relabels directly before the result
// are skipped.
func checkResult(_ *ir.LinearIR, e *ir.Expression) []ValidationError {
	in := e
	if seq := ir.FirstParentShapeOnlySeq(e); len(seq) > 0 {
		in = seq[len(seq)-1]
	}
	c := in.InputConnector(0)
	if c == nil {
		return []ValidationError{exprError(ErrMissingConnector, e, "result %s has no input 0 connector", in.Name)}
	}
	src := c.Source()
	if src.Expr == nil || !src.Expr.IsMemoryAccessOutput(src.Index) {
		return []ValidationError{exprError(ErrResultSource, e,
			"source %s is not a memory access output", src)}
	}
	return nil
}

// checkBuffer requires a buffer to be filled by memory access outputs that
// feed nothing but this buffer and LoopEnds, and to be read only by memory
// access inputs or LoopEnds.
func checkBuffer(_ *ir.LinearIR, e *ir.Expression) []ValidationError {
	var errs []ValidationError
	for i, c := range e.InputConnectors() {
		if c == nil {
			errs = append(errs, exprError(ErrMissingConnector, e, "input %d is not connected", i))
			continue
		}
		src := c.Source()
		if src.Expr == nil || !src.Expr.IsMemoryAccessOutput(src.Index) {
			errs = append(errs, exprError(ErrBufferSource, e,
				"input %d source %s is not a memory access output", i, src))
		}
		for _, sibling := range c.Consumers() {
			if sibling.Expr == e || (sibling.Expr != nil && sibling.Expr.Kind == ir.KindLoopEnd) {
				continue
			}
			errs = append(errs, exprError(ErrBufferSibling, e,
				"input %d source %s also feeds %s", i, src, sibling))
		}
	}

	out := e
	if seq := ir.FirstChildShapeOnlySeq(e); len(seq) > 0 {
		out = seq[len(seq)-1]
	}
	c := out.OutputConnector(0)
	if c == nil {
		return append(errs, exprError(ErrMissingConnector, e, "buffer %s has no output 0", out.Name))
	}
	for _, consumer := range c.Consumers() {
		if consumer.Expr == nil {
			continue
		}
		if consumer.Expr.IsMemoryAccessInput(consumer.Index) || consumer.Expr.Kind == ir.KindLoopEnd {
			continue
		}
		errs = append(errs, exprError(ErrBufferConsumer, e,
			"consumer %s is neither a memory access input nor a LoopEnd", consumer))
	}
	return errs
}

func rangeString(n int) string {
	if n == 0 {
		return "no axes"
	}
	return fmt.Sprintf("0..%d", n-1)
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
