package ir

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Port descriptor errors.
var (
	// ErrLayoutLength indicates len(layout) != len(shape).
	ErrLayoutLength = errors.New("ir: layout and shape lengths differ")

	// ErrLayoutIndex indicates a layout entry that does not address a shape axis.
	ErrLayoutIndex = errors.New("ir: layout index out of range")

	// ErrShapeExtent indicates a negative shape extent.
	ErrShapeExtent = errors.New("ir: negative shape extent")

	// ErrPortIndex indicates a reference to a port that does not exist.
	ErrPortIndex = errors.New("ir: port index out of range")
)

// PortDescriptor describes one input or output slot of an expression.
// Layout is the axis traversal order for memory access.
type PortDescriptor struct {
	Shape  []int64 `json:"shape"`
	Layout []int   `json:"layout"`
}

// NewPortDescriptor creates a descriptor and rejects malformed layouts.
// A nil layout selects the identity order.
func NewPortDescriptor(shape []int64, layout []int) (*PortDescriptor, error) {
	d := &PortDescriptor{Shape: slices.Clone(shape), Layout: slices.Clone(layout)}
	if layout == nil {
		d.Layout = IdentityLayout(len(shape))
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// MustPortDescriptor is like NewPortDescriptor but panics on error.
// Use only in tests or with constant inputs.
func MustPortDescriptor(shape []int64, layout []int) *PortDescriptor {
	d, err := NewPortDescriptor(shape, layout)
	if err != nil {
		panic(err)
	}
	return d
}

// IdentityLayout returns [0, 1, ..., rank-1].
func IdentityLayout(rank int) []int {
	l := make([]int, rank)
	for i := range l {
		l[i] = i
	}
	return l
}

// Validate checks that extents are non-negative and the layout addresses
// only real axes.
func (d *PortDescriptor) Validate() error {
	for i, extent := range d.Shape {
		if extent < 0 {
			return fmt.Errorf("%w: shape[%d] = %d", ErrShapeExtent, i, extent)
		}
	}
	if len(d.Layout) != len(d.Shape) {
		return fmt.Errorf("%w: shape rank %d, layout rank %d", ErrLayoutLength, len(d.Shape), len(d.Layout))
	}
	for i, axis := range d.Layout {
		if axis < 0 || axis >= len(d.Shape) {
			return fmt.Errorf("%w: layout[%d] = %d, shape rank %d", ErrLayoutIndex, i, axis, len(d.Shape))
		}
	}
	return nil
}

// LayoutKey returns a comparable string form of the layout.
func (d *PortDescriptor) LayoutKey() string {
	return formatInts(d.Layout)
}

// Clone returns a deep copy.
func (d *PortDescriptor) Clone() *PortDescriptor {
	if d == nil {
		return nil
	}
	return &PortDescriptor{Shape: slices.Clone(d.Shape), Layout: slices.Clone(d.Layout)}
}

// String renders the descriptor as "[shape]{layout}".
func (d *PortDescriptor) String() string {
	if d == nil {
		return "<nil>"
	}
	return "[" + formatInts(d.Shape) + "]{" + formatInts(d.Layout) + "}"
}

func formatInts[T int | int64](vals []T) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ",")
}
