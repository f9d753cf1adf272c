package ledger

import (
	"go.uber.org/zap"

	"github.com/danielpatrickdp/metalaw/internal/synthesis"
)

// Recorder is a synthesis.Observer that persists every prediction and every
// rejected input. Storage failures are logged, never returned to the caller
// of Predict.
type Recorder struct {
	store   *Store
	trigger string
	logger  *zap.SugaredLogger
}

var _ synthesis.Observer = (*Recorder)(nil)

// NewRecorder records into store, tagging rows with trigger.
func NewRecorder(store *Store, trigger string, logger *zap.SugaredLogger) *Recorder {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Recorder{store: store, trigger: trigger, logger: logger}
}

// Observed implements synthesis.Observer.
func (r *Recorder) Observed(res synthesis.Result) {
	rec, err := r.store.Save(res, r.trigger)
	if err != nil {
		r.logger.Warnw("ledger save failed", "name", res.Name, "error", err)
		return
	}
	r.logger.Debugw("prediction recorded", "id", rec.ID, "name", res.Name)
}

// Rejected implements synthesis.Observer.
func (r *Recorder) Rejected(in synthesis.Input, cause error) {
	if err := r.store.Reject(in, cause, r.trigger); err != nil {
		r.logger.Warnw("ledger reject failed", "name", in.Name, "error", err)
	}
}
