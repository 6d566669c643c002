package harness

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/lowir/internal/compiler"
	"github.com/roach88/lowir/internal/engine"
	"github.com/roach88/lowir/internal/ir"
	"github.com/roach88/lowir/internal/store"
	"github.com/roach88/lowir/internal/testutil"
)

// Harness runs scenarios against a fresh in-memory history store with
// deterministic run ids and sequence numbers.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	logger *zap.Logger
}

// Option configures Run.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger routes validator and engine logs to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Run validates the scenario's unit and checks its expectations.
//
// Each scenario runs in its own in-memory database. The run is persisted
// and read back, so Result.Record reflects what the history store holds.
// A non-nil error means the scenario could not be run at all (unit load or
// store failure); unmet expectations are reported in Result.Errors.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	unit, err := LoadUnit(scenario)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	vopts := []compiler.Option{compiler.WithLogger(o.logger)}
	if scenario.FailFast {
		vopts = append(vopts, compiler.WithFailFast())
	}

	h := &Harness{
		store: st,
		engine: engine.New(compiler.NewValidator(vopts...),
			engine.WithStore(st),
			engine.WithWorkers(1),
			engine.WithRunIDGenerator(testutil.NewSequentialRunIDs(scenario.Name)),
			engine.WithSequencer(testutil.NewStepSequencer()),
			engine.WithLogger(o.logger),
		),
		logger: o.logger,
	}
	return h.run(context.Background(), scenario, unit)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario, unit *ir.LinearIR) (*Result, error) {
	begin, end := 0, unit.Len()
	if r := scenario.Range; r != nil {
		begin, end = r.Begin, r.End
	}

	report, err := h.engine.ValidateRange(ctx, unit, begin, end)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	rec, err := h.store.ReadRun(ctx, report.RunID)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := NewResult(scenario.Name)
	result.Report = report.Result
	result.Record = rec
	for _, e := range CheckExpectations(report.Result, scenario.Expect) {
		result.AddError(e.Error())
	}

	h.logger.Info("scenario finished",
		zap.String("scenario", scenario.Name),
		zap.String("unit", unit.Name),
		zap.Bool("pass", result.Pass),
		zap.Strings("codes", report.Result.Codes()))
	return result, nil
}

// LoadUnit builds the scenario's unit from its file or inline document.
func LoadUnit(scenario *Scenario) (*ir.LinearIR, error) {
	if scenario.IR != nil {
		return compiler.BuildUnit(scenario.IR)
	}

	docs, err := compiler.LoadUnitFile(scenario.Unit)
	if err != nil {
		return nil, err
	}
	doc, err := selectUnit(docs, scenario.UnitName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", scenario.Unit, err)
	}
	return compiler.BuildUnit(doc)
}

func selectUnit(docs []*compiler.UnitDoc, name string) (*compiler.UnitDoc, error) {
	if name == "" {
		if len(docs) != 1 {
			return nil, fmt.Errorf("file declares %d units; set unit_name", len(docs))
		}
		return docs[0], nil
	}
	for _, d := range docs {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("no unit named %q", name)
}
