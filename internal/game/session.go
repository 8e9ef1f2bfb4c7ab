// Package game implements a play-through of one game as a state machine:
// question modes, lives and streak bookkeeping, timed transitions, and the
// open/close lifecycle against the server.
package game

import (
	"errors"
	"math"
	"slices"
	"time"

	"github.com/samber/lo"
)

// StartingLives is the number of wrong answers a player may give before the session ends.
const StartingLives = 3

var ErrNoQuestions = errors.New("no questions to play")

// Status is the top-level state of a session.
type Status int

const (
	StatusNotStarted Status = iota
	StatusInProgress
	StatusComplete
)

func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not-started"
	case StatusInProgress:
		return "in-progress"
	case StatusComplete:
		return "complete"
	}
	return "unknown"
}

// FeedbackKind is the banner shown after the last answer.
type FeedbackKind int

const (
	FeedbackNone FeedbackKind = iota
	FeedbackCorrect
	FeedbackWrong
)

// TimerKind names a timed transition.
type TimerKind int

const (
	TimerNone TimerKind = iota
	// TimerAdvance moves on after the feedback pause of a final answer.
	TimerAdvance
	// TimerSkip moves past a question whose payload cannot be played.
	TimerSkip
	// TimerPreview counts down one step of the memory-cards preview.
	TimerPreview
	// TimerFlipBack turns a mismatched memory pair face down again.
	TimerFlipBack
	// TimerAnnounce presents the audio-letter cue and unlocks the options.
	TimerAnnounce
)

var timerNames = [...]string{"none", "advance", "skip", "preview", "flip-back", "announce"}

func (k TimerKind) String() string {
	if k >= 0 && int(k) < len(timerNames) {
		return timerNames[k]
	}
	return "unknown"
}

// Timer is a pending timed transition. Seq distinguishes re-arms of the same kind.
type Timer struct {
	Kind  TimerKind
	After time.Duration
	Seq   int
}

// Armed reports whether a transition is pending.
func (t Timer) Armed() bool {
	return t.Kind != TimerNone
}

// Session is one play-through of one game. It is a value: every transition
// returns a new Session and leaves the old one untouched.
type Session struct {
	ID        int64
	GameID    int64
	Questions []Question

	Index      int
	Score      int
	MaxScore   int
	Lives      int
	Streak     int
	BestStreak int
	Elapsed    int
	Status     Status

	// Answered is set once the current question's answer is final.
	Answered bool
	// AudioConfirmed records the once-per-session start confirmation for audio-letter questions.
	AudioConfirmed bool
	// Closed is set once completion has been submitted.
	Closed bool

	Local    Substate
	Pending  Timer
	Feedback FeedbackKind

	timerSeq int
}

// NewSession builds a not-started session for gameID. Mode tags are
// normalised and maxScore is fixed here.
func NewSession(gameID int64, questions []Question) (Session, error) {
	if len(questions) == 0 {
		return Session{}, ErrNoQuestions
	}

	qs := slices.Clone(questions)
	for i := range qs {
		qs[i].Mode = ParseMode(string(qs[i].Mode))
	}

	return Session{
		GameID:    gameID,
		Questions: qs,
		MaxScore:  MaxScore(qs),
		Lives:     StartingLives,
		Status:    StatusNotStarted,
		Local:     ChoiceState{Selected: -1},
	}, nil
}

// MaxScore sums the obtainable points of questions.
func MaxScore(questions []Question) int {
	return lo.SumBy(questions, func(q Question) int { return q.MaxPoints() })
}

// CompletionPercentage is the rounded share of maxScore earned.
func CompletionPercentage(score, maxScore int) int {
	if maxScore <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(maxScore) * 100))
}

// CompletionPercentage is the rounded share of MaxScore earned so far.
func (s Session) CompletionPercentage() int {
	return CompletionPercentage(s.Score, s.MaxScore)
}

// Current returns the active question.
func (s Session) Current() (Question, bool) {
	if s.Status != StatusInProgress || s.Index >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.Index], true
}

// Unavailable reports whether the current question is an inert placeholder.
func (s Session) Unavailable() bool {
	_, ok := s.Local.(UnavailableState)
	return ok
}

func (s Session) arm(kind TimerKind, after time.Duration) Session {
	s.timerSeq++
	s.Pending = Timer{Kind: kind, After: after, Seq: s.timerSeq}
	return s
}

func (s Session) disarm() Session {
	s.Pending = Timer{}
	return s
}

// rewardCorrect applies a right answer worth points.
func (s Session) rewardCorrect(points int) Session {
	s.Score += points
	s.Streak++
	s.BestStreak = max(s.BestStreak, s.Streak)
	s.Feedback = FeedbackCorrect
	return s
}

// penalizeWrong applies a wrong answer. When the last life is lost the
// session completes on the spot and ended is true.
func (s Session) penalizeWrong() (next Session, ended bool) {
	s.Streak = 0
	s.Feedback = FeedbackWrong
	if s.Lives > 0 {
		s.Lives--
	}
	if s.Lives == 0 {
		return s.complete(), true
	}
	return s, false
}

func (s Session) complete() Session {
	s.Status = StatusComplete
	return s.disarm()
}
