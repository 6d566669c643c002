package compiler

import (
	"fmt"
	"math"
	"strconv"

	"github.com/roach88/lowir/internal/ir"
)

// checkLoopEnd requires the metadata copied onto a LoopEnd to match the
// authoritative LoopInfo exactly. Per-port arrays on the LoopEnd hold all
// input ports first, so output port j lives at InputNum+j.
func checkLoopEnd(l *ir.LinearIR, e *ir.Expression) []ValidationError {
	le := e.LoopEnd
	if le == nil {
		// reported by the self-check
		return nil
	}

	var errs []ValidationError
	if le.Begin == nil {
		errs = append(errs, exprError(ErrNoLoopBegin, e, "loop %d has no LoopBegin", le.ID).withLoop(le.ID))
	}

	info, ok := l.LoopManager().LoopInfo(le.ID)
	if !ok {
		return append(errs, exprError(ErrLoopInfoMissing, e, "no LoopInfo registered for loop %d", le.ID).withLoop(le.ID))
	}

	if le.WorkAmount != info.WorkAmount {
		errs = append(errs, exprError(ErrLoopBounds, e, "work_amount differs from LoopInfo").
			withLoop(le.ID).want(info.WorkAmount, le.WorkAmount))
	}
	if le.Increment != info.Increment {
		errs = append(errs, exprError(ErrLoopBounds, e, "increment differs from LoopInfo").
			withLoop(le.ID).want(info.Increment, le.Increment))
	}

	if len(info.InputPorts) != le.InputNum {
		errs = append(errs, exprError(ErrLoopPortCount, e, "input port count differs from LoopInfo").
			withLoop(le.ID).want(len(info.InputPorts), le.InputNum))
	}
	if len(info.OutputPorts) != le.OutputNum {
		errs = append(errs, exprError(ErrLoopPortCount, e, "output port count differs from LoopInfo").
			withLoop(le.ID).want(len(info.OutputPorts), le.OutputNum))
	}

	if le.InputNum < 0 || le.OutputNum < 0 {
		return append(errs, exprError(ErrLoopPortCount, e, "negative port count on LoopEnd").
			withLoop(le.ID).want(">= 0", min(le.InputNum, le.OutputNum)))
	}
	// counts are compared one at a time; their sum may overflow
	shortest := min(len(le.IsIncremented), len(le.PtrIncrements), len(le.FinalizationOffsets))
	if le.InputNum > shortest || le.OutputNum > shortest-le.InputNum {
		return append(errs, exprError(ErrLoopArraysShort, e, "per-port arrays shorter than port count").
			withLoop(le.ID).want(portTotal(le.InputNum, le.OutputNum), shortest))
	}

	errs = append(errs, checkLoopPorts(e, le, "input", info.InputPorts, le.InputNum, 0)...)
	errs = append(errs, checkLoopPorts(e, le, "output", info.OutputPorts, le.OutputNum, le.InputNum)...)
	return errs
}

// checkLoopPorts compares infos with the LoopEnd arrays starting at shift.
func checkLoopPorts(e *ir.Expression, le *ir.LoopEnd, side string, infos []ir.LoopPortInfo, declared, shift int) []ValidationError {
	var errs []ValidationError
	for i := 0; i < min(len(infos), declared); i++ {
		info := infos[i]
		at := shift + i
		if le.IsIncremented[at] != info.Port.IsIncremented {
			errs = append(errs, exprError(ErrLoopPortShift, e, "%s port %d is_incremented differs from LoopInfo", side, i).
				withLoop(le.ID).want(info.Port.IsIncremented, le.IsIncremented[at]))
		}
		if le.PtrIncrements[at] != info.Desc.PtrIncrement {
			errs = append(errs, exprError(ErrLoopPortShift, e, "%s port %d ptr_increment differs from LoopInfo", side, i).
				withLoop(le.ID).want(info.Desc.PtrIncrement, le.PtrIncrements[at]))
		}
		if le.FinalizationOffsets[at] != info.Desc.FinalizationOffset {
			errs = append(errs, exprError(ErrLoopPortShift, e, "%s port %d finalization_offset differs from LoopInfo", side, i).
				withLoop(le.ID).want(info.Desc.FinalizationOffset, le.FinalizationOffsets[at]))
		}
	}
	return errs
}

// portTotal renders InputNum+OutputNum without wrapping on overflow.
func portTotal(in, out int) string {
	if out > math.MaxInt-in {
		return fmt.Sprintf("%d+%d", in, out)
	}
	return strconv.Itoa(in + out)
}
