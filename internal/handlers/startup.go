package handlers

import (
	"net/http"
	"slices"
	"sync"
)

// StartupStep is one named stage of server initialisation
type StartupStep struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// Startup tracks initialisation progress so requests arriving early get a
// 503 instead of half-wired handlers.
type Startup struct {
	mu       sync.RWMutex
	ready    bool
	current  string
	progress int
	steps    []StartupStep
}

// NewStartup creates a tracker for the named steps
func NewStartup(names ...string) *Startup {
	steps := make([]StartupStep, len(names))
	for i, n := range names {
		steps[i] = StartupStep{Name: n}
	}
	return &Startup{current: "Initializing...", steps: steps}
}

// Begin records the step in progress
func (s *Startup) Begin(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = step
}

// Complete marks a step as done
func (s *Startup) Complete(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.steps, func(st StartupStep) bool { return st.Name == step })
	if i < 0 {
		return
	}
	s.steps[i].Completed = true

	completed := 0
	for _, st := range s.steps {
		if st.Completed {
			completed++
		}
	}
	s.progress = completed * 100 / len(s.steps)
}

// MarkReady opens the gate
func (s *Startup) MarkReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
	s.current = "Server ready"
	s.progress = 100
}

func (s *Startup) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

type startupStatus struct {
	Ready    bool          `json:"ready"`
	Current  string        `json:"current"`
	Progress int           `json:"progress"`
	Steps    []StartupStep `json:"steps"`
}

// Health reports startup progress; 200 once ready, 503 before
func (s *Startup) Health(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	status := startupStatus{Ready: s.ready, Current: s.current, Progress: s.progress, Steps: slices.Clone(s.steps)}
	s.mu.RUnlock()

	code := http.StatusOK
	if !status.Ready {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// Gate answers 503 for everything except the health check until ready
func (s *Startup) Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.IsReady() && r.URL.Path != "/healthz" {
			w.Header().Set("Retry-After", "2")
			respondWithError(w, http.StatusServiceUnavailable, "Server is starting", "", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
