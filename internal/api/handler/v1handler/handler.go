// Package v1handler implements the v1 HTTP API: request decoding, calls into
// the verifier service and the scoring engine, and response encoding.
package v1handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"mailtrust/internal/verifier"
	"mailtrust/pkg/emailcheck"
	"mailtrust/pkg/logger"
	"mailtrust/pkg/metrics"
	"mailtrust/pkg/serrors"
)

// DefaultLimit is the page size used when a list request does not specify one.
const DefaultLimit = 20

// MaxLimit caps the page size of list requests.
const MaxLimit = 100

// Deps bundles the dependencies required by the v1 handlers.
type Deps struct {
	// Verifier manages stored validations and the background pipeline.
	Verifier verifier.Verifier
	// Checker runs synchronous scoring without persistence.
	Checker *emailcheck.Checker
	// BatchConcurrency limits parallel scoring in synchronous batch requests.
	BatchConcurrency int
}

// Handler serves the v1 routes.
type Handler struct {
	deps Deps

	// verdicts counts completed synchronous validations per verdict bucket.
	verdicts metric.Int64Counter
	// duration records per-request handling latency in seconds.
	duration metric.Float64Histogram
}

// New constructs a Handler and its metric instruments from the given meter
// provider.
func New(deps Deps, mp metric.MeterProvider) (*Handler, error) {
	meter := mp.Meter("mailtrust/api")
	verdicts, err := meter.Int64Counter("mailtrust_validation_verdicts_total",
		metric.WithDescription("Synchronous validation results by verdict"))
	if err != nil {
		return nil, fmt.Errorf("could not create verdict counter: %w", err)
	}
	duration, err := meter.Float64Histogram("mailtrust_request_duration_seconds",
		metric.WithDescription("HTTP request handling duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(metrics.DefaultBuckets...))
	if err != nil {
		return nil, fmt.Errorf("could not create duration histogram: %w", err)
	}

	return &Handler{
		deps:     deps,
		verdicts: verdicts,
		duration: duration,
	}, nil
}

// withDuration records handling latency per route pattern.
func (h *Handler) withDuration(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		h.duration.Record(r.Context(), time.Since(start).Seconds(),
			metric.WithAttributes(
				attribute.String("method", r.Method),
				attribute.String("route", pattern)))
	})
}

// Routes returns the chi router for the v1 API. All routes require bearer
// authentication through the provided security handler.
func (h *Handler) Routes(sec *SecHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(sec.Middleware)
	r.Use(h.withDuration)

	r.Post("/validate", h.ValidateAddress)
	r.Post("/extract", h.ExtractCandidates)

	r.Route("/validations", func(r chi.Router) {
		r.Post("/", h.CreateValidations)
		r.Get("/", h.ListValidations)
		r.Get("/{id}", h.GetValidation)
		r.Delete("/{id}", h.DeleteValidation)
	})

	return r
}

// countVerdict records the verdict bucket of a report on the metric counter.
func (h *Handler) countVerdict(r *http.Request, report *emailcheck.ValidationReport) {
	verdict := "concerning"
	switch {
	case !report.Format.Valid:
		verdict = "malformed"
	case report.IsValid:
		verdict = "valid"
	}

	h.verdicts.Add(r.Context(), 1, metric.WithAttributes(attribute.String("verdict", verdict)))
}

// decodeJSON parses the request body into dst, returning a bad request error
// on malformed payloads.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return serrors.Wrap(serrors.ErrBadRequest, err, "invalid request body")
	}

	return nil
}

// respondJSON writes v as a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// respondError maps semantic error kinds to HTTP status codes. Unclassified
// errors are logged and reported as a plain 500 without leaking internals.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, serrors.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, serrors.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, serrors.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, serrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, serrors.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, serrors.ErrTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, serrors.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		logger.Error(r.Context(), "internal error serving request", zap.Error(err))
		respondJSON(w, status, errorResponse{Error: "internal server error"})

		return
	}

	respondJSON(w, status, errorResponse{Error: err.Error()})
}
