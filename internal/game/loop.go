package game

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrAbandoned = errors.New("session abandoned")

// Presenter shows a running session. Render is called after every
// transition that changed something; Results once, after close.
type Presenter interface {
	Render(s Session, o Outcome)
	Results(s Session, r *CompletionResult)
}

// Loop drives one session from open to close: it feeds player input, the
// elapsed-time clock and due timers into the machine one at a time.
type Loop struct {
	lifecycle *Lifecycle
	presenter Presenter
	tick      time.Duration
}

// NewLoop creates a loop that ticks once per second.
func NewLoop(lc *Lifecycle, p Presenter) *Loop {
	return &Loop{lifecycle: lc, presenter: p, tick: time.Second}
}

// WithTickInterval changes how often Tick is delivered.
func (l *Loop) WithTickInterval(d time.Duration) *Loop {
	l.tick = d
	return l
}

// Run opens s, plays it until it completes and closes it. Closing input or
// cancelling ctx abandons the session without reporting completion.
func (l *Loop) Run(ctx context.Context, s Session, input <-chan Event) (Session, error) {
	s, err := l.lifecycle.Open(ctx, s)
	if err != nil {
		return s, err
	}
	l.presenter.Render(s, Outcome{Kind: OutcomeStarted})

	machine := l.lifecycle.machine
	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()

	var (
		timer  *time.Timer
		timerC <-chan time.Time
		armed  Timer
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for s.Status == StatusInProgress {
		if s.Pending != armed {
			if timer != nil {
				timer.Stop()
				timerC = nil
			}
			armed = s.Pending
			if armed.Armed() {
				timer = time.NewTimer(armed.After)
				timerC = timer.C
			}
		}

		var ev Event
		select {
		case <-ctx.Done():
			return s, fmt.Errorf("%w: %w", ErrAbandoned, ctx.Err())
		case in, ok := <-input:
			if !ok {
				return s, ErrAbandoned
			}
			ev = in
		case <-ticker.C:
			ev = Tick{}
		case <-timerC:
			timerC = nil
			ev = TimerFired{Kind: armed.Kind, Seq: armed.Seq}
		}

		next, o := machine.Apply(s, ev)
		s = next
		if o.Kind != OutcomeIgnored {
			l.presenter.Render(s, o)
		}
	}

	s, result := l.lifecycle.Close(ctx, s)
	l.presenter.Results(s, result)
	return s, nil
}
