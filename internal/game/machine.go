package game

import "time"

// Timings are the durations of the timed transitions.
type Timings struct {
	Feedback     time.Duration
	MemoryDone   time.Duration
	FlipBack     time.Duration
	PreviewStep  time.Duration
	PreviewSteps int
	Announce     time.Duration
}

// DefaultTimings matches the pacing of the web client.
func DefaultTimings() Timings {
	return Timings{
		Feedback:     1500 * time.Millisecond,
		MemoryDone:   1000 * time.Millisecond,
		FlipBack:     1000 * time.Millisecond,
		PreviewStep:  time.Second,
		PreviewSteps: 10,
		Announce:     time.Second,
	}
}

// modeHandler runs one interaction protocol. Every method takes the current
// session and returns the next one; none of them touch shared state.
type modeHandler interface {
	enter(s Session, q Question) Session
	handle(s Session, q Question, ev Event) (Session, Outcome)
	timer(s Session, q Question, kind TimerKind) (Session, Outcome)
}

// Machine applies events to sessions. It holds no per-session state and is
// safe to share.
type Machine struct {
	timings  Timings
	handlers map[Mode]modeHandler
}

// NewMachine creates a machine with the given pacing.
func NewMachine(t Timings) *Machine {
	choice := choiceHandler{t: t}
	return &Machine{
		timings: t,
		handlers: map[Mode]modeHandler{
			ModeStandard:        choice,
			ModeLetterDetective: choice,
			ModeColorMatch:      choice,
			ModeAudioLetter:     audioHandler{t: t},
			ModeMemoryCards:     memoryHandler{t: t},
			ModeSequence:        sequenceHandler{t: t},
		},
	}
}

// Timings returns the machine's pacing.
func (m *Machine) Timings() Timings {
	return m.timings
}

// Start moves a not-started session into play under the server-assigned id
// and enters the first question.
func (m *Machine) Start(s Session, sessionID int64) (Session, Outcome) {
	if s.Status != StatusNotStarted || len(s.Questions) == 0 {
		return s, ignored
	}
	s.ID = sessionID
	s.Status = StatusInProgress
	s.Index = 0
	return m.enter(s), Outcome{Kind: OutcomeStarted}
}

// Apply runs one event against s. Events that are not valid in the current
// state leave s unchanged and report OutcomeIgnored.
func (m *Machine) Apply(s Session, ev Event) (Session, Outcome) {
	if s.Status != StatusInProgress {
		return s, ignored
	}

	q, ok := s.Current()
	if !ok {
		return s, ignored
	}

	switch ev := ev.(type) {
	case Tick:
		s.Elapsed++
		return s, Outcome{Kind: OutcomeTicked}

	case TimerFired:
		if !s.Pending.Armed() || ev.Kind != s.Pending.Kind || ev.Seq != s.Pending.Seq {
			return s, ignored
		}
		s = s.disarm()
		switch ev.Kind {
		case TimerAdvance:
			return m.advance(s)
		case TimerSkip:
			next, o := m.advance(s)
			if !o.Ended {
				o.Kind = OutcomeSkipped
			}
			return next, o
		default:
			return m.handlerFor(q).timer(s, q, ev.Kind)
		}
	}

	if s.Unavailable() {
		return s, ignored
	}
	return m.handlerFor(q).handle(s, q, ev)
}

func (m *Machine) handlerFor(q Question) modeHandler {
	if h, ok := m.handlers[q.Mode]; ok {
		return h
	}
	return m.handlers[ModeStandard]
}

// enter prepares the question at s.Index, falling back to an inert
// placeholder that skips itself when the payload is unusable.
func (m *Machine) enter(s Session) Session {
	q := s.Questions[s.Index]
	s.Answered = false
	s.Feedback = FeedbackNone
	s = s.disarm()

	if err := q.Validate(); err != nil {
		s.Local = UnavailableState{Reason: err.Error()}
		return s.arm(TimerSkip, m.timings.Feedback)
	}
	return m.handlerFor(q).enter(s, q)
}

// advance moves to the next question, or completes the session after the last one.
func (m *Machine) advance(s Session) (Session, Outcome) {
	if s.Index+1 < len(s.Questions) {
		s.Index++
		return m.enter(s), Outcome{Kind: OutcomeAdvanced}
	}
	s.Index = len(s.Questions)
	return s.complete(), Outcome{Kind: OutcomeEnded, Ended: true}
}

// answerOption settles a pick in any option-based mode.
func answerOption(s Session, q Question, index int, t Timings) (Session, Outcome) {
	s.Answered = true
	if index == q.CorrectIndex {
		s = s.rewardCorrect(q.Points)
		return s.arm(TimerAdvance, t.Feedback), Outcome{Kind: OutcomeCorrect, Points: q.Points}
	}

	s, ended := s.penalizeWrong()
	if ended {
		return s, Outcome{Kind: OutcomeWrong, Ended: true}
	}
	return s.arm(TimerAdvance, t.Feedback), Outcome{Kind: OutcomeWrong}
}
