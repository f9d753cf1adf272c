package synthesis

import (
	"context"
	"maps"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/metalaw/internal/class"
	"github.com/danielpatrickdp/metalaw/internal/gate"
	"github.com/danielpatrickdp/metalaw/internal/laws"
	"github.com/danielpatrickdp/metalaw/internal/resource"
)

const defaultWorkers = 8

// #region synthesizer

// Synthesizer composes classification, threshold lookup, capacity, emergence
// and law activation. It holds no per-call state and is safe to share.
type Synthesizer struct {
	classifier *class.Classifier
	gate       *gate.Gate
	activator  *laws.Activator
	observers  []Observer
	workers    int
	logger     *zap.SugaredLogger
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithLawTable replaces the documented law predicates.
func WithLawTable(t laws.Table) Option {
	return func(s *Synthesizer) { s.activator = laws.NewActivator(t) }
}

// WithObserver adds an observer.
func WithObserver(o Observer) Option {
	return func(s *Synthesizer) { s.observers = append(s.observers, o) }
}

// WithWorkers bounds PredictBatch concurrency.
func WithWorkers(n int) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Synthesizer) { s.logger = l }
}

// New builds a synthesizer with the standard classifier, thresholds and the
// documented law table.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		classifier: class.NewClassifier(),
		gate:       gate.NewGate(gate.DefaultGateConfig()),
		activator:  laws.NewActivator(laws.DefaultTable()),
		workers:    defaultWorkers,
		logger:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// #endregion synthesizer

// #region predict

// Predict validates in and runs the full pipeline:
// validate → classify → threshold → capacity → emergence → laws.
func (s *Synthesizer) Predict(in Input) (Result, error) {
	v, err := resource.New(in.S, in.D, in.M)
	if err != nil {
		s.reject(in, err)
		return Result{}, err
	}
	r := s.predict(in, v)
	s.observe(r)
	return r, nil
}

// PredictBatch predicts every input concurrently and returns results in input
// order. Inputs are validated before any work starts, so an invalid input
// fails the whole batch and observers see no results from it. Observers are
// notified in input order once every prediction has finished.
func (s *Synthesizer) PredictBatch(ctx context.Context, inputs []Input) ([]Result, error) {
	vectors := make([]resource.Vector, len(inputs))
	for i, in := range inputs {
		v, err := resource.New(in.S, in.D, in.M)
		if err != nil {
			s.reject(in, err)
			return nil, errors.Wrapf(err, "input %d (%s)", i, in.Name)
		}
		vectors[i] = v
	}

	results := make([]Result, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = s.predict(in, vectors[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range results {
		s.observe(r)
	}
	return results, nil
}

func (s *Synthesizer) predict(in Input, v resource.Vector) Result {
	match := s.classifier.Explain(v)
	capacity := resource.Capacity(v)
	decision := s.gate.Evaluate(capacity, match.Class)

	r := Result{
		Name:              in.Name,
		Metadata:          maps.Clone(in.Metadata),
		S:                 v.S(),
		D:                 v.D(),
		M:                 v.M(),
		Capacity:          capacity,
		UniversalityClass: match.Class,
		Rule:              match.Rule,
		Threshold:         decision.Threshold,
		Emergent:          decision.Emergent,
		ActiveLaws:        s.activator.Activate(v),
	}

	s.logger.Debugw("prediction",
		"name", r.Name,
		"class", r.UniversalityClass,
		"rule", r.Rule,
		"capacity", r.Capacity,
		"threshold", r.Threshold,
		"emergent", r.Emergent,
	)
	return r
}

func (s *Synthesizer) observe(r Result) {
	for _, o := range s.observers {
		o.Observed(r)
	}
}

func (s *Synthesizer) reject(in Input, err error) {
	s.logger.Debugw("prediction rejected", "name", in.Name, "error", err)
	for _, o := range s.observers {
		o.Rejected(in, err)
	}
}

// #endregion predict

// #region accessors

// Thresholds returns the class threshold table in use.
func (s *Synthesizer) Thresholds() class.Thresholds {
	return s.gate.Config().Thresholds
}

// LawTable returns the law predicate table in use.
func (s *Synthesizer) LawTable() laws.Table {
	return s.activator.Table()
}

// Rules returns the classification rules in evaluation order.
func (s *Synthesizer) Rules() []class.Rule {
	return s.classifier.Rules()
}

// #endregion accessors
