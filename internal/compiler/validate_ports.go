package compiler

import (
	"github.com/roach88/lowir/internal/ir"
)

// checkPorts verifies every input and output descriptor of e.
func checkPorts(e *ir.Expression) []ValidationError {
	var errs []ValidationError
	for i, d := range e.Inputs() {
		errs = append(errs, checkDescriptor(e, ir.PortInput, i, d)...)
	}
	for i, d := range e.Outputs() {
		errs = append(errs, checkDescriptor(e, ir.PortOutput, i, d)...)
	}
	return errs
}

func checkDescriptor(e *ir.Expression, typ ir.PortType, port int, d *ir.PortDescriptor) []ValidationError {
	if d == nil {
		return []ValidationError{exprError(ErrLayoutLength, e, "%s%d has no descriptor", typ, port)}
	}
	for i, extent := range d.Shape {
		if extent < 0 {
			return []ValidationError{
				exprError(ErrShapeExtent, e, "%s%d shape[%d] is negative", typ, port, i).want(">= 0", extent),
			}
		}
	}
	if len(d.Layout) != len(d.Shape) {
		return []ValidationError{
			exprError(ErrLayoutLength, e, "%s%d layout rank differs from shape rank", typ, port).
				want(len(d.Shape), len(d.Layout)),
		}
	}
	for i, axis := range d.Layout {
		if axis < 0 || axis >= len(d.Shape) {
			return []ValidationError{
				exprError(ErrLayoutIndex, e, "%s%d layout[%d] does not address a shape axis", typ, port, i).
					want(rangeString(len(d.Shape)), axis),
			}
		}
	}
	return nil
}
