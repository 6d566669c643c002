package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/lowir/internal/ir"
)

// Diagnostic codes (E200-E299)
const (
	// Structure (E200, E240)
	ErrInvalidRange = "E200" // [begin, end) outside the unit
	ErrSelfCheck    = "E240" // kind-owned expression self-check failed

	// Port descriptors (E201-E209)
	ErrLayoutLength = "E201" // len(shape) != len(layout)
	ErrLayoutIndex  = "E202" // layout entry does not address a shape axis
	ErrShapeExtent  = "E203" // negative shape extent

	// Boundary expressions (E210-E219)
	ErrParameterConsumer = "E210" // parameter consumer neither memory access nor LoopEnd
	ErrParameterLayouts  = "E211" // parameter consumers disagree on layout
	ErrResultSource      = "E212" // result producer port not memory access
	ErrBufferSource      = "E213" // buffer input source port not memory access
	ErrBufferSibling     = "E214" // buffer sibling neither this buffer nor LoopEnd
	ErrBufferConsumer    = "E215" // buffer consumer neither memory access nor LoopEnd
	ErrMissingConnector  = "E216" // boundary expression missing a required connector

	// Loops (E220-E229)
	ErrNoLoopBegin     = "E220" // LoopEnd without LoopBegin
	ErrLoopInfoMissing = "E221" // no LoopInfo for the loop id
	ErrLoopBounds      = "E222" // work_amount or increment differ
	ErrLoopPortCount   = "E223" // port counts differ
	ErrLoopPortShift   = "E224" // per-port increment flags or pointer shifts differ
	ErrLoopArraysShort = "E225" // LoopEnd flat arrays shorter than its port count

	// Buffer clusters (E230-E239)
	ErrClusterCount   = "E230" // distinct ids != static + dynamic clusters
	ErrClusterDensity = "E231" // ids not 0..N-1
	ErrClusterMixed   = "E232" // cluster both static and dynamic
	ErrClusterEmpty   = "E233" // empty static cluster
	ErrClusterOffset  = "E234" // static members disagree on offset
)

// Category groups diagnostics by the kind of invariant they protect.
type Category string

const (
	CategoryPort      Category = "port"
	CategoryBoundary  Category = "boundary"
	CategoryLoop      Category = "loop"
	CategoryBuffer    Category = "buffer"
	CategoryStructure Category = "structure"
)

// CategoryOf returns the category of a diagnostic code.
func CategoryOf(code string) Category {
	switch {
	case code == ErrInvalidRange || code == ErrSelfCheck:
		return CategoryStructure
	case code < "E210":
		return CategoryPort
	case code < "E220":
		return CategoryBoundary
	case code < "E230":
		return CategoryLoop
	default:
		return CategoryBuffer
	}
}

// ValidationError is one violated invariant.
//
// Expr and Index identify the offending expression; they are empty and -1 for
// diagnostics about the unit as a whole. LoopID and ClusterID are set when the
// diagnostic concerns a specific loop or buffer cluster.
type ValidationError struct {
	Code      string   `json:"code"`
	Category  Category `json:"category"`
	Message   string   `json:"message"`
	Expr      string   `json:"expr,omitempty"`
	Index     int      `json:"index"`
	LoopID    *int     `json:"loop_id,omitempty"`
	ClusterID *int     `json:"cluster_id,omitempty"`
	Expected  string   `json:"expected,omitempty"`
	Actual    string   `json:"actual,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] ", e.Code)
	if e.Expr != "" {
		fmt.Fprintf(&sb, "%s#%d: ", e.Expr, e.Index)
	}
	sb.WriteString(e.Message)
	if e.Expected != "" || e.Actual != "" {
		fmt.Fprintf(&sb, " (expected %s, got %s)", e.Expected, e.Actual)
	}
	return sb.String()
}

// exprError starts a diagnostic about one expression.
func exprError(code string, e *ir.Expression, format string, args ...any) ValidationError {
	return ValidationError{
		Code:     code,
		Category: CategoryOf(code),
		Message:  fmt.Sprintf(format, args...),
		Expr:     e.Name,
		Index:    e.Index(),
	}
}

// unitError starts a diagnostic about the whole unit.
func unitError(code string, format string, args ...any) ValidationError {
	return ValidationError{
		Code:     code,
		Category: CategoryOf(code),
		Message:  fmt.Sprintf(format, args...),
		Index:    -1,
	}
}

func (e ValidationError) withLoop(id int) ValidationError {
	e.LoopID = &id
	return e
}

func (e ValidationError) withCluster(id int) ValidationError {
	e.ClusterID = &id
	return e
}

func (e ValidationError) want(expected, actual any) ValidationError {
	e.Expected = fmt.Sprint(expected)
	e.Actual = fmt.Sprint(actual)
	return e
}

// ValidationFailure is the error form of an invalid Result.
type ValidationFailure struct {
	Unit   string
	Errors []ValidationError
}

func (f *ValidationFailure) Error() string {
	if len(f.Errors) == 1 {
		return fmt.Sprintf("unit %s: %s", f.Unit, f.Errors[0].Error())
	}
	return fmt.Sprintf("unit %s: %d validation errors, first: %s", f.Unit, len(f.Errors), f.Errors[0].Error())
}

// Unwrap exposes every diagnostic to errors.As.
func (f *ValidationFailure) Unwrap() []error {
	errs := make([]error, len(f.Errors))
	for i, e := range f.Errors {
		errs[i] = e
	}
	return errs
}

// Result is the outcome of one validation run. The unit is valid iff Errors
// is empty.
type Result struct {
	Unit   string            `json:"unit"`
	Errors []ValidationError `json:"errors"`
}

// Valid reports whether no invariant was violated.
func (r Result) Valid() bool { return len(r.Errors) == 0 }

// Err returns nil for a valid result, otherwise a *ValidationFailure.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	return &ValidationFailure{Unit: r.Unit, Errors: r.Errors}
}

// Codes returns the distinct diagnostic codes in first-reported order.
func (r Result) Codes() []string {
	seen := make(map[string]bool)
	var codes []string
	for _, e := range r.Errors {
		if !seen[e.Code] {
			seen[e.Code] = true
			codes = append(codes, e.Code)
		}
	}
	return codes
}

// HasCode reports whether any diagnostic carries code.
func (r Result) HasCode(code string) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

// Record converts the result into its stored form.
func (r Result) Record(id, fingerprint, irVersion string, seq int64) ir.RunRecord {
	rec := ir.RunRecord{
		ID:          id,
		Unit:        r.Unit,
		Fingerprint: fingerprint,
		IRVersion:   irVersion,
		Valid:       r.Valid(),
		Seq:         seq,
		Diagnostics: make([]ir.DiagnosticRecord, len(r.Errors)),
	}
	for i, e := range r.Errors {
		rec.Diagnostics[i] = ir.DiagnosticRecord{
			Code:      e.Code,
			Category:  string(e.Category),
			Message:   e.Message,
			Expr:      e.Expr,
			ExprIndex: e.Index,
			LoopID:    e.LoopID,
			ClusterID: e.ClusterID,
			Expected:  e.Expected,
			Actual:    e.Actual,
		}
	}
	return rec
}

// Snapshot returns the canonical map form of the diagnostics used by golden
// files. Messages are omitted so wording changes do not churn snapshots.
func (r Result) Snapshot() map[string]any {
	diags := make([]any, len(r.Errors))
	for i, e := range r.Errors {
		d := map[string]any{
			"code":  e.Code,
			"index": e.Index,
		}
		if e.Expr != "" {
			d["expr"] = e.Expr
		}
		if e.LoopID != nil {
			d["loop_id"] = *e.LoopID
		}
		if e.ClusterID != nil {
			d["cluster_id"] = *e.ClusterID
		}
		diags[i] = d
	}
	return map[string]any{
		"unit":        r.Unit,
		"valid":       r.Valid(),
		"diagnostics": diags,
	}
}
