package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/httputil"
)

// Status represents the health of a single component.
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// Checker verifies a single dependency is reachable.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc struct {
	CheckName string
	Fn        func(ctx context.Context) error
}

func (c CheckerFunc) Name() string                    { return c.CheckName }
func (c CheckerFunc) Check(ctx context.Context) error { return c.Fn(ctx) }

// Handler serves liveness and readiness endpoints over registered checkers.
type Handler struct {
	mu       sync.RWMutex
	checkers []Checker
	version  string
}

// NewHandler creates a health handler reporting the given build version.
func NewHandler(version string) *Handler {
	return &Handler{version: version}
}

// Register adds a dependency checker consulted by the readiness endpoint.
func (h *Handler) Register(c Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers = append(h.checkers, c)
}

type report struct {
	Status  Status            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]Status `json:"checks,omitempty"`
}

// Live reports process liveness. It never consults dependencies.
func (h *Handler) Live(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, report{Status: StatusUp, Version: h.version})
}

// Ready runs every registered checker with a short deadline and reports 503
// if any dependency is down.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	h.mu.RLock()
	checkers := make([]Checker, len(h.checkers))
	copy(checkers, h.checkers)
	h.mu.RUnlock()

	checks := make(map[string]Status, len(checkers))
	overall := StatusUp

	for _, c := range checkers {
		if err := c.Check(ctx); err != nil {
			checks[c.Name()] = StatusDown
			overall = StatusDown
		} else {
			checks[c.Name()] = StatusUp
		}
	}

	status := http.StatusOK
	if overall == StatusDown {
		status = http.StatusServiceUnavailable
	}

	httputil.WriteJSON(w, status, report{Status: overall, Version: h.version, Checks: checks})
}
