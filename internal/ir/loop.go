package ir

import (
	"errors"
	"fmt"
	"slices"
)

// ErrDuplicateLoop is returned when a loop id is registered twice.
var ErrDuplicateLoop = errors.New("ir: loop id already registered")

// LoopEnd is the inline loop metadata carried by a LoopEnd marker for fast
// code generator access. Per-port arrays hold all input ports first, then all
// output ports.
type LoopEnd struct {
	ID         int         `json:"id"`
	Begin      *Expression `json:"-"`
	WorkAmount int64       `json:"work_amount"`
	Increment  int64       `json:"increment"`
	InputNum   int         `json:"input_num"`
	OutputNum  int         `json:"output_num"`

	IsIncremented       []bool  `json:"is_incremented"`
	PtrIncrements       []int64 `json:"ptr_increments"`
	FinalizationOffsets []int64 `json:"finalization_offsets"`
}

// LoopPort is a port entering or leaving a loop body.
type LoopPort struct {
	Port          ExpressionPort
	IsIncremented bool
}

// LoopPortDesc holds the pointer shifts applied to a loop port.
type LoopPortDesc struct {
	PtrIncrement       int64 `json:"ptr_increment"`
	FinalizationOffset int64 `json:"finalization_offset"`
}

// LoopPortInfo pairs a loop port with its pointer shifts.
type LoopPortInfo struct {
	Port LoopPort
	Desc LoopPortDesc
}

// LoopInfo is the authoritative record of a loop, held by the LoopManager.
type LoopInfo struct {
	WorkAmount  int64
	Increment   int64
	InputPorts  []LoopPortInfo
	OutputPorts []LoopPortInfo
}

// LoopManager maps loop identifiers to their LoopInfo.
type LoopManager struct {
	infos map[int]*LoopInfo
}

// NewLoopManager creates an empty loop manager.
func NewLoopManager() *LoopManager {
	return &LoopManager{infos: make(map[int]*LoopInfo)}
}

// AddLoop registers info under id.
func (m *LoopManager) AddLoop(id int, info *LoopInfo) error {
	if info == nil {
		return fmt.Errorf("ir: loop %d: nil loop info", id)
	}
	if _, ok := m.infos[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateLoop, id)
	}
	m.infos[id] = info
	return nil
}

// LoopInfo returns the record for id.
func (m *LoopManager) LoopInfo(id int) (*LoopInfo, bool) {
	info, ok := m.infos[id]
	return info, ok
}

// IDs returns all registered loop ids in ascending order.
func (m *LoopManager) IDs() []int {
	ids := make([]int, 0, len(m.infos))
	for id := range m.infos {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of registered loops.
func (m *LoopManager) Len() int { return len(m.infos) }
