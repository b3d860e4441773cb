package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Checker is a function that checks the health of a dependency.
type Checker func(ctx context.Context) error

// Status represents the health status of a component.
type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

// Response is the JSON body returned by the health endpoints.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of a single dependency check.
type CheckResult struct {
	Status   Status `json:"status"`
	Critical bool   `json:"critical"`
	Error    string `json:"error,omitempty"`
}

type registration struct {
	checker  Checker
	critical bool
}

// Handler provides HTTP liveness and readiness endpoints.
type Handler struct {
	mu       sync.RWMutex
	checkers map[string]registration
	timeout  time.Duration
}

// NewHandler creates a health check handler. Each dependency check runs with
// a 2 second budget.
func NewHandler() *Handler {
	return &Handler{
		checkers: make(map[string]registration),
		timeout:  2 * time.Second,
	}
}

// RegisterCritical adds a dependency whose failure makes the service not ready.
func (h *Handler) RegisterCritical(name string, checker Checker) {
	h.register(name, checker, true)
}

// RegisterNonCritical adds a dependency whose failure only degrades the
// reported status; readiness still returns 200.
func (h *Handler) RegisterNonCritical(name string, checker Checker) {
	h.register(name, checker, false)
}

func (h *Handler) register(name string, checker Checker, critical bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = registration{checker: checker, critical: critical}
}

// LivenessHandler returns 200 whenever the process is running.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, http.StatusOK, Response{
			Status:    StatusUp,
			Timestamp: time.Now().UTC(),
		})
	}
}

// ReadinessHandler runs all registered checks. It returns 503 when any
// critical dependency is down, 200 otherwise (with status "degraded" when a
// non-critical dependency failed).
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.mu.RLock()
		checkers := make(map[string]registration, len(h.checkers))
		for name, reg := range h.checkers {
			checkers[name] = reg
		}
		h.mu.RUnlock()

		overall := StatusUp
		httpStatus := http.StatusOK
		results := make(map[string]CheckResult, len(checkers))

		for name, reg := range checkers {
			ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
			err := reg.checker(ctx)
			cancel()

			result := CheckResult{Status: StatusUp, Critical: reg.critical}
			if err != nil {
				result.Status = StatusDown
				result.Error = err.Error()
				if reg.critical {
					overall = StatusDown
					httpStatus = http.StatusServiceUnavailable
				} else if overall == StatusUp {
					overall = StatusDegraded
				}
			}
			results[name] = result
		}

		writeHealth(w, httpStatus, Response{
			Status:    overall,
			Timestamp: time.Now().UTC(),
			Checks:    results,
		})
	}
}

func writeHealth(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
