package ir

import (
	"fmt"
	"slices"
)

// Expression is one instruction of the lowered IR.
//
// Expressions are created by lowering, appended to a LinearIR, and never
// mutated by the validator.
type Expression struct {
	Name string
	Kind Kind

	// LoopEnd is set for KindLoopEnd expressions.
	LoopEnd *LoopEnd

	// Buffer is set for KindBuffer expressions.
	Buffer *Buffer

	index         int
	inputs        []*PortDescriptor
	outputs       []*PortDescriptor
	inConnectors  []*PortConnector
	outConnectors []*PortConnector
	memInputs     map[int]bool
	memOutputs    map[int]bool
}

// ExprOption customizes an expression at construction time.
type ExprOption func(*Expression)

// WithMemoryAccessInputs overrides the kind's memory-access input ports.
func WithMemoryAccessInputs(ports ...int) ExprOption {
	return func(e *Expression) { e.memInputs = portSet(ports) }
}

// WithMemoryAccessOutputs overrides the kind's memory-access output ports.
func WithMemoryAccessOutputs(ports ...int) ExprOption {
	return func(e *Expression) { e.memOutputs = portSet(ports) }
}

// WithLoopEnd attaches the inline loop metadata of a LoopEnd marker.
func WithLoopEnd(le *LoopEnd) ExprOption {
	return func(e *Expression) { e.LoopEnd = le }
}

// WithBuffer attaches buffer metadata.
func WithBuffer(b *Buffer) ExprOption {
	return func(e *Expression) { e.Buffer = b }
}

// NewExpression creates an unattached expression. Every output port gets its
// own connector with this expression as the source; input connectors are set
// by LinearIR.Connect.
func NewExpression(name string, kind Kind, inputs, outputs []*PortDescriptor, opts ...ExprOption) *Expression {
	e := &Expression{
		Name:          name,
		Kind:          kind,
		index:         -1,
		inputs:        slices.Clone(inputs),
		outputs:       slices.Clone(outputs),
		inConnectors:  make([]*PortConnector, len(inputs)),
		outConnectors: make([]*PortConnector, len(outputs)),
	}
	if traits, ok := TraitsOf(kind); ok {
		e.memInputs = portSet(traits.MemoryAccessInputs)
		e.memOutputs = portSet(traits.MemoryAccessOutputs)
	}
	for i := range e.outConnectors {
		e.outConnectors[i] = NewPortConnector(ExpressionPort{Expr: e, Type: PortOutput, Index: i})
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Index returns the program-order position, or -1 if not yet appended.
func (e *Expression) Index() int { return e.index }

// Inputs returns the input port descriptors.
func (e *Expression) Inputs() []*PortDescriptor { return e.inputs }

// Outputs returns the output port descriptors.
func (e *Expression) Outputs() []*PortDescriptor { return e.outputs }

// InputDescriptor returns the descriptor of input i, or nil.
func (e *Expression) InputDescriptor(i int) *PortDescriptor {
	if i < 0 || i >= len(e.inputs) {
		return nil
	}
	return e.inputs[i]
}

// OutputDescriptor returns the descriptor of output i, or nil.
func (e *Expression) OutputDescriptor(i int) *PortDescriptor {
	if i < 0 || i >= len(e.outputs) {
		return nil
	}
	return e.outputs[i]
}

// InputConnector returns the connector feeding input i, or nil.
func (e *Expression) InputConnector(i int) *PortConnector {
	if i < 0 || i >= len(e.inConnectors) {
		return nil
	}
	return e.inConnectors[i]
}

// OutputConnector returns the connector produced by output i, or nil.
func (e *Expression) OutputConnector(i int) *PortConnector {
	if i < 0 || i >= len(e.outConnectors) {
		return nil
	}
	return e.outConnectors[i]
}

// InputConnectors returns the input connectors in port order.
func (e *Expression) InputConnectors() []*PortConnector { return e.inConnectors }

// OutputConnectors returns the output connectors in port order.
func (e *Expression) OutputConnectors() []*PortConnector { return e.outConnectors }

// InputPort returns the address of input i.
func (e *Expression) InputPort(i int) ExpressionPort {
	return ExpressionPort{Expr: e, Type: PortInput, Index: i}
}

// OutputPort returns the address of output i.
func (e *Expression) OutputPort(i int) ExpressionPort {
	return ExpressionPort{Expr: e, Type: PortOutput, Index: i}
}

// IsMemoryAccessInput reports whether input port performs memory traffic.
func (e *Expression) IsMemoryAccessInput(port int) bool {
	return port >= 0 && port < len(e.inputs) && e.memInputs[port]
}

// IsMemoryAccessOutput reports whether output port performs memory traffic.
func (e *Expression) IsMemoryAccessOutput(port int) bool {
	return port >= 0 && port < len(e.outputs) && e.memOutputs[port]
}

// MemoryAccessInputs returns the memory-access input ports in ascending order.
func (e *Expression) MemoryAccessInputs() []int { return sortedPorts(e.memInputs) }

// MemoryAccessOutputs returns the memory-access output ports in ascending order.
func (e *Expression) MemoryAccessOutputs() []int { return sortedPorts(e.memOutputs) }

// Validate runs the kind-owned structural self-check.
func (e *Expression) Validate() error {
	traits, ok := TraitsOf(e.Kind)
	if !ok {
		return fmt.Errorf("unknown kind %q", e.Kind)
	}
	if traits.NumInputs != Variadic && len(e.inputs) != traits.NumInputs {
		return fmt.Errorf("%s expects %d input(s), has %d", e.Kind, traits.NumInputs, len(e.inputs))
	}
	if traits.NumOutputs != Variadic && len(e.outputs) != traits.NumOutputs {
		return fmt.Errorf("%s expects %d output(s), has %d", e.Kind, traits.NumOutputs, len(e.outputs))
	}
	switch e.Kind {
	case KindLoopEnd:
		if e.LoopEnd == nil {
			return fmt.Errorf("LoopEnd has no loop metadata")
		}
	case KindBuffer:
		if e.Buffer == nil {
			return fmt.Errorf("Buffer has no buffer metadata")
		}
	}
	for i, c := range e.inConnectors {
		if c == nil {
			return fmt.Errorf("input %d is not connected", i)
		}
		if !c.HasConsumer(e.InputPort(i)) {
			return fmt.Errorf("input %d is not registered as a consumer of %s", i, c.Source())
		}
	}
	for i, c := range e.outConnectors {
		if c == nil || c.Source() != e.OutputPort(i) {
			return fmt.Errorf("output %d connector has a foreign source", i)
		}
		for _, consumer := range c.consumers {
			if !consumer.Exists() {
				return fmt.Errorf("output %d consumer %s references a missing port", i, consumer)
			}
			if consumer.Connector() != c {
				return fmt.Errorf("output %d consumer %s is fed by another connector", i, consumer)
			}
		}
	}
	return nil
}

func (e *Expression) String() string {
	return fmt.Sprintf("%s(%s)#%d", e.Name, e.Kind, e.index)
}

func portSet(ports []int) map[int]bool {
	m := make(map[int]bool, len(ports))
	for _, p := range ports {
		m[p] = true
	}
	return m
}

func sortedPorts(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for p, ok := range m {
		if ok {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return out
}
