package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/metalaw/internal/class"
	"github.com/danielpatrickdp/metalaw/internal/eval"
	"github.com/danielpatrickdp/metalaw/internal/laws"
	"github.com/danielpatrickdp/metalaw/internal/ledger"
	"github.com/danielpatrickdp/metalaw/internal/resource"
	"github.com/danielpatrickdp/metalaw/internal/synthesis"
)

const maxBodyBytes = 1 << 20

// #region api-struct

// API serves predictions over HTTP.
type API struct {
	router  *chi.Mux
	synth   *synthesis.Synthesizer
	store   *ledger.Store
	metrics http.Handler
	logger  *zap.SugaredLogger
}

// Option configures an API.
type Option func(*API)

// WithLedger enables the summary and prediction lookup routes.
func WithLedger(s *ledger.Store) Option {
	return func(a *API) { a.store = s }
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(a *API) { a.metrics = h }
}

// WithLogger sets the request logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(a *API) { a.logger = l }
}

// New builds the router.
func New(synth *synthesis.Synthesizer, opts ...Option) *API {
	a := &API{
		router: chi.NewRouter(),
		synth:  synth,
		logger: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a
}

// ServeHTTP implements http.Handler.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// #endregion api-struct

// #region routes

func (a *API) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Recoverer)
	a.router.Use(a.logRequests)
}

func (a *API) setupRoutes() {
	a.router.Get("/healthz", a.handleHealth)
	a.router.Route("/v1", func(r chi.Router) {
		r.Post("/predict", a.handlePredict)
		r.Post("/predict/batch", a.handlePredictBatch)
		r.Get("/thresholds", a.handleThresholds)
		r.Get("/summary", a.handleSummary)
		r.Get("/predictions", a.handleListPredictions)
		r.Get("/predictions/{id}", a.handleGetPrediction)
	})
	if a.metrics != nil {
		a.router.Method(http.MethodGet, "/metrics", a.metrics)
	}
}

func (a *API) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.logger.Debugw("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Serve runs the API on addr until ctx is cancelled.
func (a *API) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: a, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrapf(err, "http serve %s", addr)
	}
}

// #endregion routes

// #region handlers

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in, err := req.input()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := a.synth.Predict(in)
	if err != nil {
		writePredictError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *API) handlePredictBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Inputs []inputRequest `json:"inputs"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	inputs := make([]synthesis.Input, len(req.Inputs))
	for i, ir := range req.Inputs {
		in, err := ir.input()
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.Wrapf(err, "inputs[%d]", i))
			return
		}
		inputs[i] = in
	}

	results, err := a.synth.PredictBatch(r.Context(), inputs)
	if err != nil {
		writePredictError(w, err)
		return
	}
	if results == nil {
		results = []synthesis.Result{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

type thresholdsResponse struct {
	Thresholds map[class.Class]float64 `json:"thresholds"`
	Rules      []string                `json:"rules"`
	Laws       map[laws.Law]string     `json:"laws"`
}

func (a *API) handleThresholds(w http.ResponseWriter, _ *http.Request) {
	resp := thresholdsResponse{
		Thresholds: a.synth.Thresholds().Map(),
		Laws:       make(map[laws.Law]string, len(laws.All)),
	}
	for _, rule := range a.synth.Rules() {
		resp.Rules = append(resp.Rules, rule.Name)
	}
	resp.Rules = append(resp.Rules, class.FallbackRule)
	table := a.synth.LawTable()
	for _, l := range laws.All {
		resp.Laws[l] = table.Predicate(l).String()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleSummary(w http.ResponseWriter, _ *http.Request) {
	if !a.requireLedger(w) {
		return
	}
	results, err := a.store.Results()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	summary, err := eval.Summarize(results)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type predictionResponse struct {
	ID          string           `json:"id"`
	TriggerType string           `json:"trigger_type"`
	CreatedAt   time.Time        `json:"created_at"`
	Result      synthesis.Result `json:"result"`
}

func toPredictionResponse(rec ledger.Record) predictionResponse {
	return predictionResponse{ID: rec.ID, TriggerType: rec.TriggerType, CreatedAt: rec.CreatedAt, Result: rec.Result}
}

func (a *API) handleListPredictions(w http.ResponseWriter, _ *http.Request) {
	if !a.requireLedger(w) {
		return
	}
	records, err := a.store.List(100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]predictionResponse, len(records))
	for i, rec := range records {
		out[i] = toPredictionResponse(rec)
	}
	writeJSON(w, http.StatusOK, map[string]any{"predictions": out})
}

func (a *API) handleGetPrediction(w http.ResponseWriter, r *http.Request) {
	if !a.requireLedger(w) {
		return
	}
	rec, err := a.store.Get(chi.URLParam(r, "id"))
	if errors.Is(err, ledger.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, toPredictionResponse(rec))
}

func (a *API) requireLedger(w http.ResponseWriter) bool {
	if a.store == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("no ledger configured"))
		return false
	}
	return true
}

// #endregion handlers

// #region encoding

// inputRequest uses pointers so a missing coordinate is distinguishable
// from zero.
type inputRequest struct {
	Name     string            `json:"name"`
	S        *float64          `json:"S"`
	D        *float64          `json:"D"`
	M        *float64          `json:"M"`
	Metadata map[string]string `json:"metadata"`
}

func (r inputRequest) input() (synthesis.Input, error) {
	for _, f := range []struct {
		name string
		v    *float64
	}{{"S", r.S}, {"D", r.D}, {"M", r.M}} {
		if f.v == nil {
			return synthesis.Input{}, errors.Newf("missing field %s", f.name)
		}
	}
	return synthesis.Input{Name: r.Name, S: *r.S, D: *r.D, M: *r.M, Metadata: r.Metadata}, nil
}

type errorResponse struct {
	Error string         `json:"error"`
	Field resource.Field `json:"field,omitempty"`
	Value *float64       `json:"value,omitempty"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "decode body"))
		return false
	}
	return true
}

func writePredictError(w http.ResponseWriter, err error) {
	var rangeErr *resource.InputRangeError
	if errors.As(err, &rangeErr) {
		v := rangeErr.Value
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Field: rangeErr.Field, Value: &v})
		return
	}
	if errors.Is(err, context.Canceled) {
		writeError(w, http.StatusRequestTimeout, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// #endregion encoding
