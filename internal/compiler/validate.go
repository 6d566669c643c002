package compiler

import (
	"go.uber.org/zap"

	"github.com/roach88/lowir/internal/ir"
)

// BoundaryCheck validates one expression of a registered kind against its
// neighbors. It must not modify the unit.
type BoundaryCheck func(l *ir.LinearIR, e *ir.Expression) []ValidationError

// Validator checks that a lowered unit is internally consistent before code
// generation.
//
// A Validator is immutable after NewValidator returns and may be shared
// across goroutines, provided each unit is owned by one goroutine while it is
// validated.
type Validator struct {
	checks   map[ir.Kind]BoundaryCheck
	logger   *zap.Logger
	failFast bool
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger. The default discards all output.
func WithLogger(logger *zap.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithFailFast stops a run at the first diagnostic.
func WithFailFast() Option {
	return func(v *Validator) { v.failFast = true }
}

// WithBoundaryCheck registers check for kind, replacing any built-in check.
func WithBoundaryCheck(kind ir.Kind, check BoundaryCheck) Option {
	return func(v *Validator) { v.checks[kind] = check }
}

// NewValidator builds the kind dispatch table.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{
		checks: map[ir.Kind]BoundaryCheck{
			ir.KindParameter: checkParameter,
			ir.KindResult:    checkResult,
			ir.KindBuffer:    checkBuffer,
			ir.KindLoopEnd:   checkLoopEnd,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// FailFast reports whether the validator stops at the first diagnostic.
func (v *Validator) FailFast() bool { return v.failFast }

// RunAll validates every expression of l.
func (v *Validator) RunAll(l *ir.LinearIR) Result {
	return v.Run(l, 0, l.Len())
}

// Run validates the expressions in [begin, end) in program order, then
// checks buffer clustering over the whole unit. The unit is never modified.
//
// Each expression gets its kind's boundary check (if one is registered), its
// own self-check and, unless it is a loop marker, the port descriptor check.
func (v *Validator) Run(l *ir.LinearIR, begin, end int) Result {
	c := &collector{unit: l.Name, failFast: v.failFast}

	if begin < 0 || end > l.Len() || begin > end {
		c.add(unitError(ErrInvalidRange, "invalid range [%d, %d) for unit of %d expressions", begin, end, l.Len()))
		return c.result()
	}

	for i := begin; i < end && !c.done(); i++ {
		e := l.At(i)
		before := len(c.errs)

		if check, ok := v.checks[e.Kind]; ok {
			c.add(check(l, e)...)
		}
		if !c.done() {
			if err := e.Validate(); err != nil {
				c.add(exprError(ErrSelfCheck, e, "%v", err))
			}
		}
		if !c.done() && !e.Kind.IsLoopBoundary() {
			c.add(checkPorts(e)...)
		}

		v.logger.Debug("checked expression",
			zap.String("unit", l.Name),
			zap.Int("index", i),
			zap.String("expr", e.Name),
			zap.String("kind", string(e.Kind)),
			zap.Int("diagnostics", len(c.errs)-before))
	}

	if !c.done() {
		c.add(checkBufferClusters(l.Buffers(), begin, end)...)
	}

	res := c.result()
	v.logger.Info("validation finished",
		zap.String("unit", l.Name),
		zap.Int("begin", begin),
		zap.Int("end", end),
		zap.Bool("valid", res.Valid()),
		zap.Strings("codes", res.Codes()))
	return res
}

// collector accumulates diagnostics and enforces fail-fast.
type collector struct {
	unit     string
	failFast bool
	errs     []ValidationError
}

func (c *collector) add(errs ...ValidationError) {
	for _, e := range errs {
		if c.done() {
			return
		}
		c.errs = append(c.errs, e)
	}
}

func (c *collector) done() bool {
	return c.failFast && len(c.errs) > 0
}

func (c *collector) result() Result {
	return Result{Unit: c.unit, Errors: c.errs}
}
