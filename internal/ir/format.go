package ir

import (
	"fmt"
	"strings"
)

// Format renders a unit as a human-readable listing, one expression per
// line in program order:
//
//	idx: name = Kind(inputs) -> outputs [payload]
func Format(l *LinearIR) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "unit %s (ir %s)\n", l.Name, l.Version)
	for _, e := range l.exprs {
		sb.WriteString(formatExpr(e))
		sb.WriteByte('\n')
	}
	for _, id := range l.loops.IDs() {
		info, _ := l.loops.LoopInfo(id)
		fmt.Fprintf(&sb, "loop %d: work_amount=%d increment=%d inputs=%d outputs=%d\n",
			id, info.WorkAmount, info.Increment, len(info.InputPorts), len(info.OutputPorts))
	}
	return sb.String()
}

func formatExpr(e *Expression) string {
	ins := make([]string, len(e.inputs))
	for i, d := range e.inputs {
		src := "_"
		if c := e.InputConnector(i); c != nil {
			src = PortRef(c.Source())
		}
		ins[i] = src + d.String()
	}
	outs := make([]string, len(e.outputs))
	for i, d := range e.outputs {
		outs[i] = d.String()
	}

	line := fmt.Sprintf("%3d: %s = %s(%s)", e.index, e.Name, e.Kind, strings.Join(ins, ", "))
	if len(outs) > 0 {
		line += " -> " + strings.Join(outs, ", ")
	}
	if le := e.LoopEnd; le != nil {
		begin := "<none>"
		if le.Begin != nil {
			begin = le.Begin.Name
		}
		line += fmt.Sprintf(" [loop %d begin=%s work_amount=%d increment=%d]", le.ID, begin, le.WorkAmount, le.Increment)
	}
	if b := e.Buffer; b != nil {
		if b.Defined {
			line += fmt.Sprintf(" [cluster %d static offset=%d]", b.ClusterID, b.Offset)
		} else {
			line += fmt.Sprintf(" [cluster %d dynamic]", b.ClusterID)
		}
	}
	return line
}
