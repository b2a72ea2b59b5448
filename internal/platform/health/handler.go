package health

import (
	"context"
	"net/http"

	"grantflow/pkg/httputil"
)

// Checker reports whether a dependency is healthy.
type Checker interface {
	Health(ctx context.Context) error
}

// Handler serves liveness and readiness probes.
type Handler struct {
	checkers map[string]Checker
}

func New() *Handler {
	return &Handler{checkers: make(map[string]Checker)}
}

// Register adds a named dependency check. Nil checkers are ignored so
// optional dependencies (e.g. redis) can be passed straight through.
func (h *Handler) Register(name string, c Checker) {
	if c == nil {
		return
	}
	h.checkers[name] = c
}

// Live always returns 200 while the process is running.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready returns 200 only when every registered dependency responds.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := http.StatusOK
	checks := make(map[string]string, len(h.checkers))

	for name, c := range h.checkers {
		if err := c.Health(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	httputil.WriteJSON(w, status, checks)
}
