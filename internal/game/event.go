package game

// Event is an input to the state machine: a player action, a clock tick,
// or a timed transition coming due.
type Event interface {
	isEvent()
}

// Tick is one second of wall-clock time.
type Tick struct{}

// Choose picks an option by index.
type Choose struct {
	Index int
}

// Flip turns over a memory card.
type Flip struct {
	Card int
}

// Tap adds a token to a sequence replay.
type Tap struct {
	Token string
}

// ConfirmStart is the once-per-session go-ahead for audio-letter questions.
type ConfirmStart struct{}

// TimerFired delivers a pending timer. Kind and Seq must match Session.Pending.
type TimerFired struct {
	Kind TimerKind
	Seq  int
}

func (Tick) isEvent()         {}
func (Choose) isEvent()       {}
func (Flip) isEvent()         {}
func (Tap) isEvent()          {}
func (ConfirmStart) isEvent() {}
func (TimerFired) isEvent()   {}

// OutcomeKind describes what a transition did.
type OutcomeKind int

const (
	OutcomeIgnored OutcomeKind = iota
	OutcomeStarted
	OutcomeTicked
	OutcomeCorrect
	OutcomeWrong
	OutcomeCardFlipped
	OutcomePairMatched
	OutcomePairMismatched
	OutcomeCardsHidden
	OutcomePreviewTick
	OutcomePreviewEnded
	OutcomeSequenceProgress
	OutcomeSequenceReset
	OutcomeConfirmed
	OutcomeAnnounced
	OutcomeAdvanced
	OutcomeSkipped
	OutcomeEnded
)

var outcomeNames = [...]string{
	"ignored", "started", "ticked", "correct", "wrong", "card-flipped", "pair-matched",
	"pair-mismatched", "cards-hidden", "preview-tick", "preview-ended", "sequence-progress",
	"sequence-reset", "confirmed", "announced", "advanced", "skipped", "ended",
}

func (k OutcomeKind) String() string {
	if k >= 0 && int(k) < len(outcomeNames) {
		return outcomeNames[k]
	}
	return "unknown"
}

// Outcome reports the effect of one transition to the presenter.
type Outcome struct {
	Kind OutcomeKind
	// Points awarded by this transition.
	Points int
	// Ended is set when this transition completed the session.
	Ended bool
}

var ignored = Outcome{Kind: OutcomeIgnored}
