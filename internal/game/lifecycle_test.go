package game

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakeServer struct {
	mu        sync.Mutex
	startErr  error
	finishErr error
	nextID    int64
	starts    int
	completed []CompletionRequest
}

func (f *fakeServer) StartSession(ctx context.Context, gameID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	if f.startErr != nil {
		return 0, f.startErr
	}
	f.nextID++
	return f.nextID, nil
}

func (f *fakeServer) CompleteSession(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, req)
	if f.finishErr != nil {
		return nil, f.finishErr
	}
	return &CompletionResult{Success: true, EarnedPoints: req.Score}, nil
}

func (f *fakeServer) completions() []CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]CompletionRequest(nil), f.completed...)
}

func TestOpenFailureLeavesSessionNotStarted(t *testing.T) {
	server := &fakeServer{startErr: errors.New("connection refused")}
	lc := NewLifecycle(server, NewMachine(DefaultTimings()))

	s, _ := NewSession(3, standardQuestions(5, 10))
	got, err := lc.Open(context.Background(), s)
	if !errors.Is(err, ErrCouldNotStart) {
		t.Fatalf("Open() error = %v, want ErrCouldNotStart", err)
	}
	if got.Status != StatusNotStarted || got.ID != 0 {
		t.Errorf("status = %v id = %d, want not-started without id", got.Status, got.ID)
	}
	if _, ok := got.Current(); ok {
		t.Error("a question is active after a failed start")
	}
}

func TestOpenAssignsServerID(t *testing.T) {
	server := &fakeServer{nextID: 40}
	lc := NewLifecycle(server, NewMachine(DefaultTimings()))

	s, _ := NewSession(3, standardQuestions(5, 10))
	s, err := lc.Open(context.Background(), s)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if s.ID != 41 || s.Status != StatusInProgress {
		t.Errorf("id = %d status = %v, want 41 in progress", s.ID, s.Status)
	}

	if _, err := lc.Open(context.Background(), s); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Open() error = %v, want ErrAlreadyStarted", err)
	}
	if server.starts != 1 {
		t.Errorf("server starts = %d, want 1", server.starts)
	}
}

func TestCloseSubmitsOnce(t *testing.T) {
	server := &fakeServer{}
	m := NewMachine(DefaultTimings())
	lc := NewLifecycle(server, m)

	s, _ := NewSession(3, standardQuestions(1, 10))
	s, _ = lc.Open(context.Background(), s)
	s, _ = m.Apply(s, Tick{})
	s, _ = m.Apply(s, Choose{Index: 1})

	s, result := lc.Close(context.Background(), s)
	if result == nil || !result.Success || result.EarnedPoints != 10 {
		t.Fatalf("Close() result = %+v", result)
	}
	if s.Status != StatusComplete || !s.Closed {
		t.Errorf("status = %v closed = %v", s.Status, s.Closed)
	}

	_, again := lc.Close(context.Background(), s)
	if again != nil {
		t.Errorf("second Close() result = %+v, want nil", again)
	}

	got := server.completions()
	if len(got) != 1 {
		t.Fatalf("completions = %d, want 1", len(got))
	}
	want := CompletionRequest{SessionID: 1, Score: 10, DurationSeconds: 1}
	if got[0] != want {
		t.Errorf("completion = %+v, want %+v", got[0], want)
	}
}

func TestCloseToleratesServerFailure(t *testing.T) {
	server := &fakeServer{finishErr: errors.New("timeout")}
	lc := NewLifecycle(server, NewMachine(DefaultTimings()))

	s, _ := NewSession(3, standardQuestions(1, 10))
	s, _ = lc.Open(context.Background(), s)

	s, result := lc.Close(context.Background(), s)
	if result != nil {
		t.Errorf("Close() result = %+v, want nil", result)
	}
	if s.Status != StatusComplete || !s.Closed {
		t.Errorf("status = %v closed = %v, want complete and closed", s.Status, s.Closed)
	}
	if n := len(server.completions()); n != 1 {
		t.Errorf("completion attempts = %d, want 1", n)
	}
}

func TestCloseWithoutIDSkipsServer(t *testing.T) {
	server := &fakeServer{}
	lc := NewLifecycle(server, NewMachine(DefaultTimings()))

	s, _ := NewSession(3, standardQuestions(1, 10))
	s.Status = StatusInProgress

	s, result := lc.Close(context.Background(), s)
	if result != nil || s.Status != StatusComplete {
		t.Errorf("result = %+v status = %v", result, s.Status)
	}
	if n := len(server.completions()); n != 0 {
		t.Errorf("completion attempts = %d, want 0", n)
	}
}

type countingCompleter struct {
	calls int
}

func (c *countingCompleter) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	c.calls++
	return &CompletionResult{Success: true, EarnedPoints: req.Score, NewPoints: 500, NewLevel: 6, LeveledUp: true}, nil
}

func TestWithCompleter(t *testing.T) {
	server := &fakeServer{}
	c := &countingCompleter{}
	lc := NewLifecycle(server, NewMachine(DefaultTimings())).WithCompleter(c)

	s, _ := NewSession(3, standardQuestions(1, 10))
	s, _ = lc.Open(context.Background(), s)
	_, result := lc.Close(context.Background(), s)

	if c.calls != 1 || len(server.completions()) != 0 {
		t.Errorf("completer calls = %d server calls = %d", c.calls, len(server.completions()))
	}
	if result == nil || result.NewLevel != 6 || !result.LeveledUp {
		t.Errorf("result = %+v", result)
	}
}
