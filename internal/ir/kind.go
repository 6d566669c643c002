package ir

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Kind identifies the operation an expression implements.
type Kind string

// Built-in expression kinds.
const (
	KindParameter         Kind = "Parameter"
	KindResult            Kind = "Result"
	KindBuffer            Kind = "Buffer"
	KindLoopBegin         Kind = "LoopBegin"
	KindLoopEnd           Kind = "LoopEnd"
	KindLoad              Kind = "Load"
	KindBroadcastLoad     Kind = "BroadcastLoad"
	KindStore             Kind = "Store"
	KindBrgemm            Kind = "Brgemm"
	KindReshape           Kind = "Reshape"
	KindRankNormalization Kind = "RankNormalization"
	KindAdd               Kind = "Add"
	KindMultiply          Kind = "Multiply"
	KindScalar            Kind = "Scalar"
	KindFill              Kind = "Fill"
)

// Variadic marks a port count that is not fixed by the kind.
const Variadic = -1

// ErrDuplicateKind is returned when a kind is registered twice.
var ErrDuplicateKind = errors.New("ir: kind already registered")

// KindTraits describes the static properties shared by all expressions of a kind.
type KindTraits struct {
	// NumInputs and NumOutputs are the expected port counts, or Variadic.
	NumInputs  int
	NumOutputs int

	// MemoryAccessInputs and MemoryAccessOutputs list the ports that perform
	// direct memory traffic by default. Expressions may override them.
	MemoryAccessInputs  []int
	MemoryAccessOutputs []int

	// ShapeOnly kinds reinterpret shape/layout without touching data.
	ShapeOnly bool

	// LoopBoundary kinds describe control structure and carry no shapes.
	LoopBoundary bool
}

var (
	kindsMu sync.RWMutex
	kinds   = map[Kind]KindTraits{
		KindParameter:         {NumInputs: 0, NumOutputs: 1},
		KindResult:            {NumInputs: 1, NumOutputs: 0},
		KindBuffer:            {NumInputs: Variadic, NumOutputs: 1},
		KindLoopBegin:         {NumInputs: 0, NumOutputs: 1, LoopBoundary: true},
		KindLoopEnd:           {NumInputs: Variadic, NumOutputs: 0, LoopBoundary: true},
		KindLoad:              {NumInputs: 1, NumOutputs: 1, MemoryAccessInputs: []int{0}},
		KindBroadcastLoad:     {NumInputs: 1, NumOutputs: 1, MemoryAccessInputs: []int{0}},
		KindStore:             {NumInputs: 1, NumOutputs: 1, MemoryAccessOutputs: []int{0}},
		KindBrgemm:            {NumInputs: 2, NumOutputs: 1, MemoryAccessInputs: []int{0, 1}, MemoryAccessOutputs: []int{0}},
		KindReshape:           {NumInputs: 1, NumOutputs: 1, ShapeOnly: true},
		KindRankNormalization: {NumInputs: 1, NumOutputs: 1, ShapeOnly: true},
		KindAdd:               {NumInputs: 2, NumOutputs: 1},
		KindMultiply:          {NumInputs: 2, NumOutputs: 1},
		KindScalar:            {NumInputs: 0, NumOutputs: 1},
		KindFill:              {NumInputs: 1, NumOutputs: 1},
	}
)

// RegisterKind adds a new expression kind. Registration is expected to happen
// during program initialization, before any unit is built.
func RegisterKind(k Kind, traits KindTraits) error {
	if k == "" {
		return fmt.Errorf("ir: kind name is empty")
	}
	kindsMu.Lock()
	defer kindsMu.Unlock()
	if _, ok := kinds[k]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateKind, k)
	}
	traits.MemoryAccessInputs = slices.Clone(traits.MemoryAccessInputs)
	traits.MemoryAccessOutputs = slices.Clone(traits.MemoryAccessOutputs)
	kinds[k] = traits
	return nil
}

// TraitsOf returns the traits registered for k.
func TraitsOf(k Kind) (KindTraits, bool) {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	t, ok := kinds[k]
	return t, ok
}

// Kinds returns all registered kinds in sorted order.
func Kinds() []Kind {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	out := make([]Kind, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// IsLoopBoundary reports whether k is a LoopBegin/LoopEnd style marker.
func (k Kind) IsLoopBoundary() bool {
	t, ok := TraitsOf(k)
	return ok && t.LoopBoundary
}

// IsShapeOnly reports whether k only relabels shape and layout.
func (k Kind) IsShapeOnly() bool {
	t, ok := TraitsOf(k)
	return ok && t.ShapeOnly
}
