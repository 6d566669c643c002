package ir

import "fmt"

// PortType distinguishes input ports from output ports.
type PortType int

const (
	PortInput PortType = iota
	PortOutput
)

func (t PortType) String() string {
	if t == PortOutput {
		return "out"
	}
	return "in"
}

// ExpressionPort addresses one port of one expression.
type ExpressionPort struct {
	Expr  *Expression
	Type  PortType
	Index int
}

// Descriptor returns the port's descriptor, or nil if the port does not exist.
func (p ExpressionPort) Descriptor() *PortDescriptor {
	if p.Expr == nil {
		return nil
	}
	if p.Type == PortOutput {
		return p.Expr.OutputDescriptor(p.Index)
	}
	return p.Expr.InputDescriptor(p.Index)
}

// Connector returns the connector attached to the port, or nil.
func (p ExpressionPort) Connector() *PortConnector {
	if p.Expr == nil {
		return nil
	}
	if p.Type == PortOutput {
		return p.Expr.OutputConnector(p.Index)
	}
	return p.Expr.InputConnector(p.Index)
}

// Exists reports whether the port is structurally present on its expression.
func (p ExpressionPort) Exists() bool {
	if p.Expr == nil || p.Index < 0 {
		return false
	}
	if p.Type == PortOutput {
		return p.Index < len(p.Expr.outputs)
	}
	return p.Index < len(p.Expr.inputs)
}

func (p ExpressionPort) String() string {
	if p.Expr == nil {
		return fmt.Sprintf("<nil>.%s%d", p.Type, p.Index)
	}
	return fmt.Sprintf("%s.%s%d", p.Expr.Name, p.Type, p.Index)
}

// PortConnector is one produced value: exactly one source output port and an
// ordered set of consumer input ports.
type PortConnector struct {
	source    ExpressionPort
	consumers []ExpressionPort
}

// NewPortConnector creates a connector fed by source.
func NewPortConnector(source ExpressionPort) *PortConnector {
	return &PortConnector{source: source}
}

// Source returns the producing port.
func (c *PortConnector) Source() ExpressionPort {
	return c.source
}

// Consumers returns the consumer ports in insertion order.
// The returned slice is a copy.
func (c *PortConnector) Consumers() []ExpressionPort {
	out := make([]ExpressionPort, len(c.consumers))
	copy(out, c.consumers)
	return out
}

// HasConsumer reports whether p is already a consumer.
func (c *PortConnector) HasConsumer(p ExpressionPort) bool {
	for _, existing := range c.consumers {
		if existing == p {
			return true
		}
	}
	return false
}

// AddConsumer appends p unless it is already present.
func (c *PortConnector) AddConsumer(p ExpressionPort) {
	if !c.HasConsumer(p) {
		c.consumers = append(c.consumers, p)
	}
}

// RemoveConsumer drops p from the consumer set.
func (c *PortConnector) RemoveConsumer(p ExpressionPort) {
	for i, existing := range c.consumers {
		if existing == p {
			c.consumers = append(c.consumers[:i], c.consumers[i+1:]...)
			return
		}
	}
}
