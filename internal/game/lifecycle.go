package game

import (
	"context"
	"errors"
	"fmt"
	"log"
)

var (
	ErrCouldNotStart  = errors.New("could not start session")
	ErrAlreadyStarted = errors.New("session already started")
)

// CompletionRequest is the final report for a session.
type CompletionRequest struct {
	SessionID       int64 `json:"sessionId"`
	Score           int   `json:"score"`
	DurationSeconds int   `json:"duration"`
}

// CompletionResult is the server's reply to a completion, including the
// recalculated profile when that part succeeded.
type CompletionResult struct {
	Success      bool `json:"success"`
	EarnedPoints int  `json:"earnedPoints"`
	NewPoints    int  `json:"newPoints,omitempty"`
	NewLevel     int  `json:"newLevel,omitempty"`
	LeveledUp    bool `json:"leveledUp,omitempty"`
}

// SessionServer is the remote side of the lifecycle.
type SessionServer interface {
	StartSession(ctx context.Context, gameID int64) (int64, error)
	CompleteSession(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
}

// Completer delivers a completion intent. Implementations decide how hard to try.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
}

// bestEffort makes exactly one attempt.
type bestEffort struct {
	server SessionServer
}

func (b bestEffort) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	return b.server.CompleteSession(ctx, req)
}

// Lifecycle brackets a play-through with the server's start and complete calls.
type Lifecycle struct {
	server    SessionServer
	completer Completer
	machine   *Machine
}

// NewLifecycle creates a lifecycle that completes sessions with a single attempt.
func NewLifecycle(server SessionServer, machine *Machine) *Lifecycle {
	return &Lifecycle{
		server:    server,
		completer: bestEffort{server: server},
		machine:   machine,
	}
}

// WithCompleter swaps the completion policy.
func (l *Lifecycle) WithCompleter(c Completer) *Lifecycle {
	l.completer = c
	return l
}

// Open asks the server for a session id and, on success, puts s in play.
// On failure s is returned unchanged and still not started.
func (l *Lifecycle) Open(ctx context.Context, s Session) (Session, error) {
	if s.Status != StatusNotStarted {
		return s, ErrAlreadyStarted
	}

	id, err := l.server.StartSession(ctx, s.GameID)
	if err != nil {
		return s, fmt.Errorf("%w: %w", ErrCouldNotStart, err)
	}

	started, _ := l.machine.Start(s, id)
	return started, nil
}

// Close marks s complete and reports the final score once. A failed report
// is logged and dropped; the returned session is complete either way.
func (l *Lifecycle) Close(ctx context.Context, s Session) (Session, *CompletionResult) {
	if s.Status == StatusInProgress {
		s = s.complete()
	}
	if s.Closed || s.ID == 0 {
		return s, nil
	}
	s.Closed = true

	req := CompletionRequest{SessionID: s.ID, Score: s.Score, DurationSeconds: s.Elapsed}
	result, err := l.completer.Complete(ctx, req)
	if err != nil {
		log.Printf("Failed to record completion of session %d: %v", s.ID, err)
		return s, nil
	}
	return s, result
}
