package compiler

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/lowir/internal/ir"
)

// UnitDoc is the authored form of one lowered unit, decoded from CUE or YAML.
//
// Documents may describe malformed IR on purpose: descriptors are taken
// verbatim so the validator, not the loader, reports layout problems.
type UnitDoc struct {
	Name    string    `json:"name" yaml:"name"`
	Version string    `json:"version,omitempty" yaml:"version,omitempty"`
	Loops   []LoopDoc `json:"loops,omitempty" yaml:"loops,omitempty"`
	Exprs   []ExprDoc `json:"exprs" yaml:"exprs"`
}

// ExprDoc describes one expression.
type ExprDoc struct {
	Name         string           `json:"name" yaml:"name"`
	Kind         string           `json:"kind" yaml:"kind"`
	Inputs       []InputDoc       `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs      []PortDoc        `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	MemoryAccess *MemoryAccessDoc `json:"memory_access,omitempty" yaml:"memory_access,omitempty"`
	Loop         *LoopEndDoc      `json:"loop,omitempty" yaml:"loop,omitempty"`
	Buffer       *BufferDoc       `json:"buffer,omitempty" yaml:"buffer,omitempty"`
}

// InputDoc is an input port and the output feeding it, as "Expr.N".
// An empty From leaves the port unconnected.
type InputDoc struct {
	From   string  `json:"from,omitempty" yaml:"from,omitempty"`
	Shape  []int64 `json:"shape" yaml:"shape"`
	Layout []int   `json:"layout,omitempty" yaml:"layout,omitempty"`
}

// PortDoc is an output port. A missing layout means the identity order.
type PortDoc struct {
	Shape  []int64 `json:"shape" yaml:"shape"`
	Layout []int   `json:"layout,omitempty" yaml:"layout,omitempty"`
}

// MemoryAccessDoc overrides the kind's memory access ports.
type MemoryAccessDoc struct {
	Inputs  []int `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs []int `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

// LoopEndDoc is the inline metadata of a LoopEnd.
type LoopEndDoc struct {
	ID                  int     `json:"id" yaml:"id"`
	Begin               string  `json:"begin,omitempty" yaml:"begin,omitempty"`
	WorkAmount          int64   `json:"work_amount" yaml:"work_amount"`
	Increment           int64   `json:"increment" yaml:"increment"`
	InputNum            int     `json:"input_num" yaml:"input_num"`
	OutputNum           int     `json:"output_num" yaml:"output_num"`
	IsIncremented       []bool  `json:"is_incremented,omitempty" yaml:"is_incremented,omitempty"`
	PtrIncrements       []int64 `json:"ptr_increments,omitempty" yaml:"ptr_increments,omitempty"`
	FinalizationOffsets []int64 `json:"finalization_offsets,omitempty" yaml:"finalization_offsets,omitempty"`
}

// BufferDoc is the metadata of a Buffer.
type BufferDoc struct {
	ClusterID int   `json:"cluster_id" yaml:"cluster_id"`
	Defined   bool  `json:"defined" yaml:"defined"`
	Offset    int64 `json:"offset" yaml:"offset"`
	Size      int64 `json:"size,omitempty" yaml:"size,omitempty"`
}

// LoopDoc is an authoritative LoopInfo entry.
type LoopDoc struct {
	ID         int           `json:"id" yaml:"id"`
	WorkAmount int64         `json:"work_amount" yaml:"work_amount"`
	Increment  int64         `json:"increment" yaml:"increment"`
	Inputs     []LoopPortDoc `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs    []LoopPortDoc `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

// LoopPortDoc is one loop port: an input port ("Expr.N") for loop inputs, an
// output port for loop outputs.
type LoopPortDoc struct {
	Port               string `json:"port" yaml:"port"`
	Incremented        bool   `json:"incremented" yaml:"incremented"`
	PtrIncrement       int64  `json:"ptr_increment" yaml:"ptr_increment"`
	FinalizationOffset int64  `json:"finalization_offset" yaml:"finalization_offset"`
}

// ParseUnitYAML decodes a YAML unit document. Unknown fields are rejected.
func ParseUnitYAML(data []byte) (*UnitDoc, error) {
	var doc UnitDoc
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "parse unit YAML")
	}
	return &doc, nil
}

// BuildUnit lowers a document into a LinearIR. Expressions are created
// first and connected second, so inputs may reference later expressions.
func BuildUnit(doc *UnitDoc) (*ir.LinearIR, error) {
	if doc == nil {
		return nil, errors.New("nil unit document")
	}
	if doc.Name == "" {
		return nil, errors.New("unit name is required")
	}
	if err := CheckIRVersion(doc.Version); err != nil {
		return nil, errors.Wrapf(err, "unit %s", doc.Name)
	}

	l := ir.NewLinearIR(doc.Name)
	if doc.Version != "" {
		l.Version = doc.Version
	}

	exprs := make([]*ir.Expression, len(doc.Exprs))
	for i, ed := range doc.Exprs {
		e, err := newExpression(ed)
		if err != nil {
			return nil, errors.WithMessagef(err, "unit %s: exprs[%d]", doc.Name, i)
		}
		if err := l.Append(e); err != nil {
			return nil, errors.WithMessagef(err, "unit %s: exprs[%d]", doc.Name, i)
		}
		exprs[i] = e
	}

	for i, ed := range doc.Exprs {
		e := exprs[i]
		for j, in := range ed.Inputs {
			if in.From == "" {
				continue
			}
			src, port, err := resolvePort(l, in.From)
			if err != nil {
				return nil, errors.WithMessagef(err, "unit %s: %s input %d", doc.Name, e.Name, j)
			}
			if err := l.Connect(src, port, e, j); err != nil {
				return nil, errors.WithMessagef(err, "unit %s: %s input %d", doc.Name, e.Name, j)
			}
		}
		if ed.Loop != nil && ed.Loop.Begin != "" {
			begin, ok := l.Lookup(ed.Loop.Begin)
			if !ok {
				return nil, errors.Errorf("unit %s: %s: unknown loop begin %q", doc.Name, e.Name, ed.Loop.Begin)
			}
			e.LoopEnd.Begin = begin
		}
	}

	for i, ld := range doc.Loops {
		info, err := buildLoopInfo(l, ld)
		if err != nil {
			return nil, errors.WithMessagef(err, "unit %s: loops[%d]", doc.Name, i)
		}
		if err := l.LoopManager().AddLoop(ld.ID, info); err != nil {
			return nil, errors.WithMessagef(err, "unit %s: loops[%d]", doc.Name, i)
		}
	}
	return l, nil
}

func newExpression(ed ExprDoc) (*ir.Expression, error) {
	if ed.Name == "" {
		return nil, errors.New("name is required")
	}
	if ed.Kind == "" {
		return nil, errors.Errorf("%s: kind is required", ed.Name)
	}

	inputs := make([]*ir.PortDescriptor, len(ed.Inputs))
	for i, in := range ed.Inputs {
		inputs[i] = descriptor(in.Shape, in.Layout)
	}
	outputs := make([]*ir.PortDescriptor, len(ed.Outputs))
	for i, out := range ed.Outputs {
		outputs[i] = descriptor(out.Shape, out.Layout)
	}

	var opts []ir.ExprOption
	if ma := ed.MemoryAccess; ma != nil {
		if ma.Inputs != nil {
			opts = append(opts, ir.WithMemoryAccessInputs(ma.Inputs...))
		}
		if ma.Outputs != nil {
			opts = append(opts, ir.WithMemoryAccessOutputs(ma.Outputs...))
		}
	}
	if ld := ed.Loop; ld != nil {
		opts = append(opts, ir.WithLoopEnd(&ir.LoopEnd{
			ID:                  ld.ID,
			WorkAmount:          ld.WorkAmount,
			Increment:           ld.Increment,
			InputNum:            ld.InputNum,
			OutputNum:           ld.OutputNum,
			IsIncremented:       ld.IsIncremented,
			PtrIncrements:       ld.PtrIncrements,
			FinalizationOffsets: ld.FinalizationOffsets,
		}))
	}
	if bd := ed.Buffer; bd != nil {
		opts = append(opts, ir.WithBuffer(&ir.Buffer{
			ClusterID:      bd.ClusterID,
			Defined:        bd.Defined,
			Offset:         bd.Offset,
			AllocationSize: bd.Size,
		}))
	}
	return ir.NewExpression(ed.Name, ir.Kind(ed.Kind), inputs, outputs, opts...), nil
}

// descriptor keeps the layout verbatim; only a missing layout is filled in.
func descriptor(shape []int64, layout []int) *ir.PortDescriptor {
	if shape == nil {
		shape = []int64{}
	}
	if layout == nil {
		layout = ir.IdentityLayout(len(shape))
	}
	return &ir.PortDescriptor{Shape: shape, Layout: layout}
}

func buildLoopInfo(l *ir.LinearIR, ld LoopDoc) (*ir.LoopInfo, error) {
	info := &ir.LoopInfo{WorkAmount: ld.WorkAmount, Increment: ld.Increment}
	for _, p := range ld.Inputs {
		lp, err := loopPort(l, p, ir.PortInput)
		if err != nil {
			return nil, err
		}
		info.InputPorts = append(info.InputPorts, lp)
	}
	for _, p := range ld.Outputs {
		lp, err := loopPort(l, p, ir.PortOutput)
		if err != nil {
			return nil, err
		}
		info.OutputPorts = append(info.OutputPorts, lp)
	}
	return info, nil
}

func loopPort(l *ir.LinearIR, p LoopPortDoc, typ ir.PortType) (ir.LoopPortInfo, error) {
	e, idx, err := resolvePort(l, p.Port)
	if err != nil {
		return ir.LoopPortInfo{}, err
	}
	port := ir.ExpressionPort{Expr: e, Type: typ, Index: idx}
	if !port.Exists() {
		return ir.LoopPortInfo{}, errors.Wrapf(ir.ErrPortIndex, "loop port %s", port)
	}
	return ir.LoopPortInfo{
		Port: ir.LoopPort{Port: port, IsIncremented: p.Incremented},
		Desc: ir.LoopPortDesc{PtrIncrement: p.PtrIncrement, FinalizationOffset: p.FinalizationOffset},
	}, nil
}

// resolvePort parses "Expr.N".
func resolvePort(l *ir.LinearIR, ref string) (*ir.Expression, int, error) {
	dot := strings.LastIndex(ref, ".")
	if dot <= 0 || dot == len(ref)-1 {
		return nil, 0, errors.Errorf("port reference %q must look like Expr.N", ref)
	}
	idx, err := strconv.Atoi(ref[dot+1:])
	if err != nil {
		return nil, 0, errors.Wrapf(err, "port reference %q", ref)
	}
	e, ok := l.Lookup(ref[:dot])
	if !ok {
		return nil, 0, errors.Errorf("port reference %q: unknown expression %q", ref, ref[:dot])
	}
	return e, idx, nil
}
