package ir

import (
	"errors"
	"fmt"
)

// ErrDuplicateName is returned when two expressions of a unit share a name.
var ErrDuplicateName = errors.New("ir: duplicate expression name")

// LinearIR is one lowered unit: an ordered expression sequence, its buffer
// registry and its loop manager.
//
// A LinearIR must be exclusively owned by one goroutine while it is built or
// validated.
type LinearIR struct {
	Name    string
	Version string

	exprs   []*Expression
	byName  map[string]*Expression
	buffers []*Expression
	loops   *LoopManager
}

// NewLinearIR creates an empty unit at the current IR version.
func NewLinearIR(name string) *LinearIR {
	return &LinearIR{
		Name:    name,
		Version: IRVersion,
		byName:  make(map[string]*Expression),
		loops:   NewLoopManager(),
	}
}

// Append adds e at the end of the sequence and registers it as a buffer if
// it is one.
func (l *LinearIR) Append(e *Expression) error {
	if e == nil {
		return fmt.Errorf("ir: append nil expression")
	}
	if e.index >= 0 {
		return fmt.Errorf("ir: expression %q already belongs to a unit", e.Name)
	}
	if e.Name != "" {
		if _, ok := l.byName[e.Name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateName, e.Name)
		}
		l.byName[e.Name] = e
	}
	e.index = len(l.exprs)
	l.exprs = append(l.exprs, e)
	if e.Kind == KindBuffer {
		l.buffers = append(l.buffers, e)
	}
	return nil
}

// MustAppend is like Append but panics on error.
// Use only in tests or builders with known-good input.
func (l *LinearIR) MustAppend(exprs ...*Expression) {
	for _, e := range exprs {
		if err := l.Append(e); err != nil {
			panic(err)
		}
	}
}

// Connect feeds input port in of dst from output port out of src.
func (l *LinearIR) Connect(src *Expression, out int, dst *Expression, in int) error {
	if src == nil || dst == nil {
		return fmt.Errorf("ir: connect nil expression")
	}
	c := src.OutputConnector(out)
	if c == nil {
		return fmt.Errorf("%w: %s has no output %d", ErrPortIndex, src.Name, out)
	}
	if in < 0 || in >= len(dst.inConnectors) {
		return fmt.Errorf("%w: %s has no input %d", ErrPortIndex, dst.Name, in)
	}
	if prev := dst.inConnectors[in]; prev != nil {
		prev.RemoveConsumer(dst.InputPort(in))
	}
	dst.inConnectors[in] = c
	c.AddConsumer(dst.InputPort(in))
	return nil
}

// MustConnect is like Connect but panics on error.
func (l *LinearIR) MustConnect(src *Expression, out int, dst *Expression, in int) {
	if err := l.Connect(src, out, dst, in); err != nil {
		panic(err)
	}
}

// Expressions returns the sequence in program order. Callers must not
// modify the returned slice.
func (l *LinearIR) Expressions() []*Expression { return l.exprs }

// Len returns the number of expressions.
func (l *LinearIR) Len() int { return len(l.exprs) }

// At returns the expression at program position i.
func (l *LinearIR) At(i int) *Expression { return l.exprs[i] }

// Lookup finds an expression by name.
func (l *LinearIR) Lookup(name string) (*Expression, bool) {
	e, ok := l.byName[name]
	return e, ok
}

// Buffers returns the buffer registry in append order.
func (l *LinearIR) Buffers() []*Expression { return l.buffers }

// LoopManager returns the unit's loop manager.
func (l *LinearIR) LoopManager() *LoopManager { return l.loops }
