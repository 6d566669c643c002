package engine

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/lowir/internal/compiler"
	"github.com/roach88/lowir/internal/ir"
)

// RunWriter persists validation runs. Implemented by *store.Store.
type RunWriter interface {
	WriteRun(ctx context.Context, rec ir.RunRecord) error
}

// Report is the outcome of validating one unit in a batch.
type Report struct {
	RunID       string          `json:"run_id"`
	Seq         int64           `json:"seq"`
	Unit        string          `json:"unit"`
	IRVersion   string          `json:"ir_version"`
	Fingerprint string          `json:"fingerprint"`
	Result      compiler.Result `json:"result"`
}

// Record converts the report into its stored form.
func (r Report) Record() ir.RunRecord {
	return r.Result.Record(r.RunID, r.Fingerprint, r.IRVersion, r.Seq)
}

// Engine validates units with one shared validator.
type Engine struct {
	validator *compiler.Validator
	store     RunWriter
	workers   int
	ids       RunIDGenerator
	clock     Sequencer
	logger    *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore persists every report.
func WithStore(s RunWriter) Option {
	return func(e *Engine) { e.store = s }
}

// WithWorkers bounds the number of units validated at once.
// Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithRunIDGenerator replaces the UUIDv7 run id generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(e *Engine) { e.ids = g }
}

// WithSequencer replaces the engine's logical clock.
func WithSequencer(s Sequencer) Option {
	return func(e *Engine) { e.clock = s }
}

// WithLogger sets the logger. The default discards all output.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Engine around v.
func New(v *compiler.Validator, opts ...Option) *Engine {
	e := &Engine{
		validator: v,
		workers:   runtime.NumCPU(),
		ids:       UUIDv7Generator{},
		clock:     NewClock(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// job is one unit with its pre-assigned identity.
type job struct {
	unit  *ir.LinearIR
	runID string
	seq   int64
	begin int
	end   int
}

// ValidateBatch validates every unit and returns one report per unit in
// input order.
//
// If ctx is cancelled, units not yet started are skipped and the reports of
// the units that did run are returned together with ctx's error. A store
// failure aborts the batch with a *PipelineError.
func (e *Engine) ValidateBatch(ctx context.Context, units []*ir.LinearIR) ([]Report, error) {
	jobs := make([]job, len(units))
	for i, u := range units {
		jobs[i] = job{unit: u, runID: e.ids.Generate(), seq: e.clock.Next(), begin: 0, end: u.Len()}
	}
	return e.run(ctx, jobs)
}

// ValidateRange validates the expressions [begin, end) of a single unit.
func (e *Engine) ValidateRange(ctx context.Context, unit *ir.LinearIR, begin, end int) (Report, error) {
	reports, err := e.run(ctx, []job{{unit: unit, runID: e.ids.Generate(), seq: e.clock.Next(), begin: begin, end: end}})
	if err != nil {
		return Report{}, err
	}
	return reports[0], nil
}

func (e *Engine) run(ctx context.Context, jobs []job) ([]Report, error) {
	reports := make([]Report, len(jobs))
	done := make([]bool, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := range jobs {
		if gctx.Err() != nil {
			break
		}
		i, j := i, jobs[i]
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			report, err := e.validate(gctx, j)
			if err != nil {
				return err
			}
			reports[i] = report
			done[i] = true
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	completed := make([]Report, 0, len(jobs))
	for i, ok := range done {
		if ok {
			completed = append(completed, reports[i])
		}
	}
	e.logger.Info("batch finished",
		zap.Int("units", len(jobs)),
		zap.Int("completed", len(completed)),
		zap.Error(err))
	return completed, err
}

func (e *Engine) validate(ctx context.Context, j job) (Report, error) {
	fp, err := ir.Fingerprint(j.unit)
	if err != nil {
		return Report{}, &PipelineError{Code: ErrCodeFingerprint, Unit: j.unit.Name, RunID: j.runID, Err: err}
	}

	report := Report{
		RunID:       j.runID,
		Seq:         j.seq,
		Unit:        j.unit.Name,
		IRVersion:   j.unit.Version,
		Fingerprint: fp,
		Result:      e.validator.Run(j.unit, j.begin, j.end),
	}

	if e.store != nil {
		if err := e.store.WriteRun(ctx, report.Record()); err != nil {
			return Report{}, &PipelineError{Code: ErrCodeStoreWrite, Unit: j.unit.Name, RunID: j.runID, Err: err}
		}
	}

	e.logger.Debug("unit validated",
		zap.String("unit", report.Unit),
		zap.String("run_id", report.RunID),
		zap.Int64("seq", report.Seq),
		zap.Bool("valid", report.Result.Valid()),
		zap.Int("diagnostics", len(report.Result.Errors)))
	return report, nil
}
