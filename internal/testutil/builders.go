package testutil

import (
	"fmt"

	"github.com/roach88/lowir/internal/ir"
)

// Desc returns a descriptor with the identity layout.
func Desc(shape ...int64) *ir.PortDescriptor {
	return ir.MustPortDescriptor(shape, nil)
}

// Marker returns the shapeless descriptor used on loop marker ports.
func Marker() *ir.PortDescriptor {
	return ir.MustPortDescriptor(nil, nil)
}

// LoopUnit is a single-loop unit with handles to every expression:
//
//	Parameter P -> Load L -> LoopBegin B -> Store S -> LoopEnd E -> Result R
//
// L reads P through memory access input 0, S writes through memory access
// output 0 and R is fed by S. LoopInfo#0 matches the LoopEnd copy.
type LoopUnit struct {
	IR     *ir.LinearIR
	Param  *ir.Expression
	Load   *ir.Expression
	Begin  *ir.Expression
	Store  *ir.Expression
	End    *ir.Expression
	Result *ir.Expression
}

// LoopID is the loop id used by NewLoopUnit.
const LoopID = 0

// NewLoopUnit builds a valid single-loop unit with work_amount 64 and
// increment 8.
func NewLoopUnit() *LoopUnit {
	u := &LoopUnit{IR: ir.NewLinearIR("loop_unit")}
	u.Param = ir.NewExpression("P", ir.KindParameter, nil, []*ir.PortDescriptor{Desc(1, 64)})
	u.Load = ir.NewExpression("L", ir.KindLoad, []*ir.PortDescriptor{Desc(1, 64)}, []*ir.PortDescriptor{Desc(1, 64)})
	u.Begin = ir.NewExpression("B", ir.KindLoopBegin, nil, []*ir.PortDescriptor{Marker()})
	u.Store = ir.NewExpression("S", ir.KindStore, []*ir.PortDescriptor{Desc(1, 64)}, []*ir.PortDescriptor{Desc(1, 64)})
	u.End = ir.NewExpression("E", ir.KindLoopEnd,
		[]*ir.PortDescriptor{Marker(), Marker(), Marker()}, nil,
		ir.WithLoopEnd(&ir.LoopEnd{
			ID:                  LoopID,
			WorkAmount:          64,
			Increment:           8,
			InputNum:            1,
			OutputNum:           1,
			IsIncremented:       []bool{true, true},
			PtrIncrements:       []int64{1, 1},
			FinalizationOffsets: []int64{-64, -64},
		}))
	u.Result = ir.NewExpression("R", ir.KindResult, []*ir.PortDescriptor{Desc(1, 64)}, nil)
	u.End.LoopEnd.Begin = u.Begin

	u.IR.MustAppend(u.Param, u.Load, u.Begin, u.Store, u.End, u.Result)
	u.IR.MustConnect(u.Param, 0, u.Load, 0)
	u.IR.MustConnect(u.Load, 0, u.Store, 0)
	u.IR.MustConnect(u.Param, 0, u.End, 0)
	u.IR.MustConnect(u.Store, 0, u.End, 1)
	u.IR.MustConnect(u.Begin, 0, u.End, 2)
	u.IR.MustConnect(u.Store, 0, u.Result, 0)

	info := &ir.LoopInfo{
		WorkAmount: 64,
		Increment:  8,
		InputPorts: []ir.LoopPortInfo{{
			Port: ir.LoopPort{Port: u.Load.InputPort(0), IsIncremented: true},
			Desc: ir.LoopPortDesc{PtrIncrement: 1, FinalizationOffset: -64},
		}},
		OutputPorts: []ir.LoopPortInfo{{
			Port: ir.LoopPort{Port: u.Store.OutputPort(0), IsIncremented: true},
			Desc: ir.LoopPortDesc{PtrIncrement: 1, FinalizationOffset: -64},
		}},
	}
	if err := u.IR.LoopManager().AddLoop(LoopID, info); err != nil {
		panic(err)
	}
	return u
}

// MatchingLoop is the valid single-loop unit.
func MatchingLoop() *LoopUnit {
	return NewLoopUnit()
}

// MismatchedIncrement is MatchingLoop with the LoopEnd increment changed
// to 4 while LoopInfo#0 keeps 8.
func MismatchedIncrement() *LoopUnit {
	u := NewLoopUnit()
	u.End.LoopEnd.Increment = 4
	return u
}

// BufferSpec describes one standalone buffer for BufferUnit.
type BufferSpec struct {
	Cluster int
	Defined bool
	Offset  int64
}

// BufferUnit builds a unit holding only the given buffers, named B0, B1, ...
func BufferUnit(specs ...BufferSpec) *ir.LinearIR {
	l := ir.NewLinearIR("buffers")
	for i, s := range specs {
		l.MustAppend(ir.NewExpression(fmt.Sprintf("B%d", i), ir.KindBuffer,
			nil, []*ir.PortDescriptor{Desc(16)},
			ir.WithBuffer(&ir.Buffer{ClusterID: s.Cluster, Defined: s.Defined, Offset: s.Offset, AllocationSize: 64})))
	}
	return l
}

// MixedCluster holds a static and a dynamic buffer that share cluster 1.
func MixedCluster() *ir.LinearIR {
	return BufferUnit(
		BufferSpec{Cluster: 1, Defined: true, Offset: 0},
		BufferSpec{Cluster: 1, Defined: false},
	)
}

// ParameterFanOut builds a Parameter of shape [4, 8] read by one Load per
// layout, each Load recording that layout on its input port.
func ParameterFanOut(layouts ...[]int) *ir.LinearIR {
	l := ir.NewLinearIR("fan_out")
	p := ir.NewExpression("P", ir.KindParameter, nil, []*ir.PortDescriptor{Desc(4, 8)})
	l.MustAppend(p)
	for i, layout := range layouts {
		ld := ir.NewExpression(fmt.Sprintf("L%d", i), ir.KindLoad,
			[]*ir.PortDescriptor{ir.MustPortDescriptor([]int64{4, 8}, layout)},
			[]*ir.PortDescriptor{Desc(4, 8)})
		l.MustAppend(ld)
		l.MustConnect(p, 0, ld, 0)
	}
	return l
}
