package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apperrors "github.com/agbru/fibengine/internal/errors"
	"github.com/agbru/fibengine/internal/fibonacci"
	"github.com/agbru/fibengine/internal/logging"
)

// FibonacciResponse is the body of GET /fibonacci.
type FibonacciResponse struct {
	N          uint32 `json:"n"`
	Result     uint32 `json:"result"`
	Policy     string `json:"policy"`
	Overflowed bool   `json:"overflowed"`
}

// BatchResponse is the body of GET /batch.
type BatchResponse struct {
	Count   uint32   `json:"count"`
	N       uint32   `json:"n"`
	Policy  string   `json:"policy"`
	Results []uint32 `json:"results"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

// invalidParam reports a bad query parameter.
func invalidParam(field, format string, args ...any) error {
	return apperrors.ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (s *Server) handleFibonacci(w http.ResponseWriter, r *http.Request) {
	if !s.requireGET(w, r) {
		return
	}
	q := r.URL.Query()
	n, err := parseUint32(q, "n", true)
	if err == nil && n > s.cfg.Security.MaxNValue {
		err = invalidParam("n", "must be at most %d", s.cfg.Security.MaxNValue)
	}
	policy, perr := s.policy(q)
	if err = errors.Join(err, perr); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "Bad Request", err)
		return
	}

	overflowed := fibonacci.Overflows(n)
	if overflowed {
		s.metrics.ObserveOverflow(policy)
	}
	v, err := fibonacci.Compute(n, policy)
	if err != nil {
		s.writeComputeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, FibonacciResponse{N: n, Result: v, Policy: policy.String(), Overflowed: overflowed})
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if !s.requireGET(w, r) {
		return
	}
	q := r.URL.Query()
	count, cerr := parseUint32(q, "count", true)
	n, nerr := parseUint32(q, "n", true)
	policy, perr := s.policy(q)
	if err := errors.Join(cerr, nerr, perr); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "Bad Request", err)
		return
	}
	sec := s.cfg.Security
	switch {
	case n > sec.MaxNValue:
		s.writeError(w, r, http.StatusBadRequest, "Bad Request", invalidParam("n", "must be at most %d", sec.MaxNValue))
		return
	case count > sec.MaxBatchCount:
		s.writeError(w, r, http.StatusBadRequest, "Bad Request", invalidParam("count", "must be at most %d", sec.MaxBatchCount))
		return
	case sec.MaxBatchWork > 0 && uint64(count)*uint64(max(n, 1)) > sec.MaxBatchWork:
		s.writeError(w, r, http.StatusBadRequest, "Bad Request", invalidParam("count", "count*n must be at most %d", sec.MaxBatchWork))
		return
	}

	s.metrics.ObserveBatch(count)
	if count > 0 && fibonacci.Overflows(n) {
		s.metrics.ObserveOverflow(policy)
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	defer cancel()
	values, err := fibonacci.ComputeBatch(ctx, count, n, fibonacci.BatchOptions{Policy: policy, Workers: s.cfg.Workers})
	if err != nil {
		s.writeComputeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, BatchResponse{Count: count, N: n, Policy: policy.String(), Results: values})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.requireGET(w, r) {
		return
	}
	s.writeJSON(w, r, http.StatusOK, HealthResponse{Status: "healthy", Timestamp: time.Now().Unix()})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if !s.requireGET(w, r) {
		return
	}
	s.metrics.WritePrometheus(w, r)
}

func (s *Server) requireGET(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD, OPTIONS")
	s.writeError(w, r, http.StatusMethodNotAllowed, "Method Not Allowed", fmt.Errorf("method %s is not allowed", r.Method))
	return false
}

func (s *Server) policy(q url.Values) (fibonacci.Policy, error) {
	if !q.Has("policy") {
		return s.cfg.DefaultPolicy, nil
	}
	p, err := fibonacci.ParsePolicy(q.Get("policy"))
	if err != nil {
		return p, invalidParam("policy", "%v", err)
	}
	return p, nil
}

// parseUint32 reads a base-10 uint32 query parameter.
func parseUint32(q url.Values, name string, required bool) (uint32, error) {
	raw := q.Get(name)
	if raw == "" {
		if required {
			return 0, invalidParam(name, "missing")
		}
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, invalidParam(name, "must be an integer in [0, %d], got %q", uint32(1<<32-1), raw)
	}
	return uint32(v), nil
}

// writeComputeError maps computation errors: overflow under the checked
// policy is 422, a deadline is 504, a client cancellation 499, anything
// else 500.
func (s *Server) writeComputeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, fibonacci.ErrOverflow):
		s.writeError(w, r, http.StatusUnprocessableEntity, "Overflow", err)
	case !apperrors.IsContextError(err):
		s.writeError(w, r, http.StatusInternalServerError, "Internal Server Error", err)
	case errors.Is(err, context.DeadlineExceeded):
		s.writeError(w, r, http.StatusGatewayTimeout, "Timeout", err)
	default:
		// Client went away; nothing useful can be written.
		s.writeError(w, r, 499, "Canceled", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, title string, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", err, logging.String("request_id", RequestID(r.Context())))
	}
	s.writeJSON(w, r, status, ErrorResponse{Error: title, Message: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("encode response", err, logging.String("request_id", RequestID(r.Context())))
	}
}
