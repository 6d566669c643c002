package ir

import "fmt"

// Snapshot returns the canonical map form of a unit. The result only holds
// types accepted by MarshalCanonical.
func Snapshot(l *LinearIR) map[string]any {
	exprs := make([]any, 0, l.Len())
	for _, e := range l.exprs {
		exprs = append(exprs, snapshotExpr(e))
	}

	loops := make([]any, 0, l.loops.Len())
	for _, id := range l.loops.IDs() {
		info, _ := l.loops.LoopInfo(id)
		loops = append(loops, map[string]any{
			"id":          id,
			"work_amount": info.WorkAmount,
			"increment":   info.Increment,
			"inputs":      snapshotLoopPorts(info.InputPorts),
			"outputs":     snapshotLoopPorts(info.OutputPorts),
		})
	}

	return map[string]any{
		"name":    l.Name,
		"version": l.Version,
		"exprs":   exprs,
		"loops":   loops,
	}
}

func snapshotExpr(e *Expression) map[string]any {
	inputs := make([]any, len(e.inputs))
	for i, d := range e.inputs {
		in := snapshotDescriptor(d)
		if c := e.InputConnector(i); c != nil {
			in["from"] = PortRef(c.Source())
		}
		inputs[i] = in
	}
	outputs := make([]any, len(e.outputs))
	for i, d := range e.outputs {
		outputs[i] = snapshotDescriptor(d)
	}

	m := map[string]any{
		"index":   e.index,
		"name":    e.Name,
		"kind":    string(e.Kind),
		"inputs":  inputs,
		"outputs": outputs,
		"memory_access": map[string]any{
			"inputs":  e.MemoryAccessInputs(),
			"outputs": e.MemoryAccessOutputs(),
		},
	}
	if le := e.LoopEnd; le != nil {
		loop := map[string]any{
			"id":                   le.ID,
			"work_amount":          le.WorkAmount,
			"increment":            le.Increment,
			"input_num":            le.InputNum,
			"output_num":           le.OutputNum,
			"is_incremented":       nonNil(le.IsIncremented),
			"ptr_increments":       nonNil(le.PtrIncrements),
			"finalization_offsets": nonNil(le.FinalizationOffsets),
		}
		if le.Begin != nil {
			loop["begin"] = le.Begin.Name
		}
		m["loop"] = loop
	}
	if b := e.Buffer; b != nil {
		m["buffer"] = map[string]any{
			"cluster_id": b.ClusterID,
			"defined":    b.Defined,
			"offset":     b.Offset,
			"size":       b.AllocationSize,
		}
	}
	return m
}

func snapshotDescriptor(d *PortDescriptor) map[string]any {
	if d == nil {
		return map[string]any{"shape": []int64{}, "layout": []int{}}
	}
	return map[string]any{
		"shape":  nonNil(d.Shape),
		"layout": nonNil(d.Layout),
	}
}

func snapshotLoopPorts(ports []LoopPortInfo) []any {
	out := make([]any, len(ports))
	for i, p := range ports {
		out[i] = map[string]any{
			"port":                PortRef(p.Port.Port),
			"incremented":         p.Port.IsIncremented,
			"ptr_increment":       p.Desc.PtrIncrement,
			"finalization_offset": p.Desc.FinalizationOffset,
		}
	}
	return out
}

// PortRef renders a port as "Expr.N", the form used by unit documents.
func PortRef(p ExpressionPort) string {
	if p.Expr == nil {
		return fmt.Sprintf("?.%d", p.Index)
	}
	return fmt.Sprintf("%s.%d", p.Expr.Name, p.Index)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
