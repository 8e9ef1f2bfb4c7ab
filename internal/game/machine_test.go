package game

import (
	"fmt"
	"reflect"
	"testing"
	"time"
)

func standardQuestions(n, points int) []Question {
	qs := make([]Question, n)
	for i := range qs {
		qs[i] = Question{Prompt: "2 + 2?", Mode: ModeStandard, Options: []string{"3", "4", "5"}, CorrectIndex: 1, Points: points}
	}
	return qs
}

func startSession(t *testing.T, m *Machine, qs []Question) Session {
	t.Helper()
	s, err := NewSession(7, qs)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	s, o := m.Start(s, 42)
	if o.Kind != OutcomeStarted {
		t.Fatalf("Start() outcome = %v, want started", o.Kind)
	}
	return s
}

// fire delivers the pending timer, failing if none is armed or it is of another kind.
func fire(t *testing.T, m *Machine, s Session, kind TimerKind) (Session, Outcome) {
	t.Helper()
	if s.Pending.Kind != kind {
		t.Fatalf("pending timer = %v, want %v", s.Pending.Kind, kind)
	}
	return m.Apply(s, TimerFired{Kind: s.Pending.Kind, Seq: s.Pending.Seq})
}

// checkInvariants asserts the bookkeeping bounds that must hold after every transition.
func checkInvariants(t *testing.T, prev, s Session) {
	t.Helper()
	if s.Score < 0 || s.Score > s.MaxScore {
		t.Errorf("score %d outside [0, %d]", s.Score, s.MaxScore)
	}
	if s.Lives < 0 || s.Lives > StartingLives {
		t.Errorf("lives %d outside [0, %d]", s.Lives, StartingLives)
	}
	if s.Index < prev.Index {
		t.Errorf("index went back from %d to %d", prev.Index, s.Index)
	}
	if s.Score < prev.Score {
		t.Errorf("score went down from %d to %d", prev.Score, s.Score)
	}
	if s.BestStreak < s.Streak {
		t.Errorf("best streak %d below streak %d", s.BestStreak, s.Streak)
	}
	if prev.Status == StatusComplete && s.Status != StatusComplete {
		t.Errorf("session left complete state")
	}
}

func TestAllCorrectReachesFullScore(t *testing.T) {
	m := NewMachine(DefaultTimings())
	s := startSession(t, m, standardQuestions(10, 10))

	for i := 0; i < 10; i++ {
		prev := s
		var o Outcome
		s, o = m.Apply(s, Choose{Index: 1})
		checkInvariants(t, prev, s)
		if o.Kind != OutcomeCorrect || o.Points != 10 {
			t.Fatalf("question %d: outcome = %+v, want correct for 10", i, o)
		}
		prev = s
		s, o = fire(t, m, s, TimerAdvance)
		checkInvariants(t, prev, s)
		if i < 9 && o.Kind != OutcomeAdvanced {
			t.Fatalf("question %d: outcome = %v, want advanced", i, o.Kind)
		}
	}

	if s.Status != StatusComplete {
		t.Fatalf("status = %v, want complete", s.Status)
	}
	if s.Score != 100 || s.MaxScore != 100 {
		t.Errorf("score = %d/%d, want 100/100", s.Score, s.MaxScore)
	}
	if got := s.CompletionPercentage(); got != 100 {
		t.Errorf("CompletionPercentage() = %v, want 100", got)
	}
	if s.BestStreak != 10 || s.Lives != StartingLives {
		t.Errorf("best streak %d lives %d, want 10 and %d", s.BestStreak, s.Lives, StartingLives)
	}
}

func TestThirdLostLifeEndsSession(t *testing.T) {
	m := NewMachine(DefaultTimings())
	s := startSession(t, m, standardQuestions(10, 10))

	answers := []int{1, 1, 0, 0, 0}
	for i, a := range answers {
		var o Outcome
		s, o = m.Apply(s, Choose{Index: a})
		if i == len(answers)-1 {
			if !o.Ended || o.Kind != OutcomeWrong {
				t.Fatalf("last answer outcome = %+v, want ended wrong", o)
			}
			break
		}
		s, _ = fire(t, m, s, TimerAdvance)
	}

	if s.Status != StatusComplete {
		t.Fatalf("status = %v, want complete", s.Status)
	}
	if s.Index != 4 {
		t.Errorf("index = %d, want 4", s.Index)
	}
	if s.Score != 20 || s.Lives != 0 || s.Streak != 0 {
		t.Errorf("score %d lives %d streak %d, want 20, 0, 0", s.Score, s.Lives, s.Streak)
	}
	if s.Pending.Armed() {
		t.Errorf("timer %v still armed after completion", s.Pending.Kind)
	}

	after, o := m.Apply(s, Choose{Index: 1})
	if o.Kind != OutcomeIgnored || after.Score != s.Score {
		t.Errorf("input after completion changed the session: %+v", o)
	}
}

func TestPartialScorePercentage(t *testing.T) {
	m := NewMachine(DefaultTimings())
	s := startSession(t, m, standardQuestions(10, 10))

	answers := []int{1, 1, 1, 0, 1, 1, 0, 1, 1, 1}
	for _, a := range answers {
		s, _ = m.Apply(s, Choose{Index: a})
		s, _ = fire(t, m, s, TimerAdvance)
	}

	if s.Status != StatusComplete {
		t.Fatalf("status = %v, want complete", s.Status)
	}
	if s.Score != 80 {
		t.Fatalf("score = %d, want 80", s.Score)
	}
	if got := CompletionPercentage(70, s.MaxScore); got != 70 {
		t.Errorf("CompletionPercentage(70, %d) = %v, want 70", s.MaxScore, got)
	}
	if s.BestStreak != 3 {
		t.Errorf("best streak = %d, want 3", s.BestStreak)
	}
}

func TestSecondAnswerIsIgnored(t *testing.T) {
	tests := []struct {
		name  string
		q     Question
		audio bool
	}{
		{"standard", standardQuestions(1, 10)[0], false},
		{"color-match", Question{Prompt: "Which is red?", Mode: ModeColorMatch, Options: []string{"Red", "Blue"}, Colors: []string{"#ef4444", "#3b82f6"}, CorrectIndex: 1, Points: 10}, false},
		{"letter-detective", Question{Prompt: "Find the word", Mode: ModeLetterDetective, Scrambled: []string{"t", "a", "c"}, Answer: "cat", Options: []string{"act", "cat"}, CorrectIndex: 1, Points: 10}, false},
		{"audio-letter", Question{Prompt: "Which letter did you hear?", Mode: ModeAudioLetter, Answer: "d", Options: []string{"b", "d"}, CorrectIndex: 1, Points: 10}, true},
	}

	for _, tt := range tests {
		for _, first := range []int{0, 1} {
			t.Run(fmt.Sprintf("%s/first=%d", tt.name, first), func(t *testing.T) {
				m := NewMachine(DefaultTimings())
				s := startSession(t, m, []Question{tt.q, tt.q})
				if tt.audio {
					s, _ = m.Apply(s, ConfirmStart{})
					s, _ = fire(t, m, s, TimerAnnounce)
				}

				s, o := m.Apply(s, Choose{Index: first})
				if o.Kind == OutcomeIgnored || !s.Answered {
					t.Fatalf("first answer outcome = %v, answered = %v", o.Kind, s.Answered)
				}

				for _, second := range []int{0, 1} {
					again, o := m.Apply(s, Choose{Index: second})
					if o.Kind != OutcomeIgnored {
						t.Errorf("second answer %d outcome = %v, want ignored", second, o.Kind)
					}
					if again.Score != s.Score || again.Lives != s.Lives || again.Streak != s.Streak {
						t.Errorf("second answer %d changed score/lives/streak: %d/%d/%d -> %d/%d/%d",
							second, s.Score, s.Lives, s.Streak, again.Score, again.Lives, again.Streak)
					}
					if !reflect.DeepEqual(again.Local, s.Local) || again.Pending != s.Pending {
						t.Errorf("second answer %d changed local %#v -> %#v", second, s.Local, again.Local)
					}
				}
			})
		}
	}
}

func TestTickCountsElapsed(t *testing.T) {
	m := NewMachine(DefaultTimings())
	s := startSession(t, m, standardQuestions(1, 10))

	for i := 0; i < 5; i++ {
		s, _ = m.Apply(s, Tick{})
	}
	if s.Elapsed != 5 {
		t.Errorf("Elapsed = %d, want 5", s.Elapsed)
	}

	s, _ = m.Apply(s, Choose{Index: 1})
	s, _ = fire(t, m, s, TimerAdvance)
	s, _ = m.Apply(s, Tick{})
	if s.Elapsed != 5 {
		t.Errorf("Elapsed after completion = %d, want 5", s.Elapsed)
	}
}

func TestStaleTimerIsIgnored(t *testing.T) {
	m := NewMachine(DefaultTimings())
	s := startSession(t, m, standardQuestions(3, 10))

	s, _ = m.Apply(s, Choose{Index: 1})
	stale := TimerFired{Kind: s.Pending.Kind, Seq: s.Pending.Seq}
	s, _ = fire(t, m, s, TimerAdvance)

	next, o := m.Apply(s, stale)
	if o.Kind != OutcomeIgnored || next.Index != 1 {
		t.Errorf("stale timer outcome = %v index = %d, want ignored at 1", o.Kind, next.Index)
	}

	wrongKind := TimerFired{Kind: TimerSkip, Seq: s.Pending.Seq}
	if _, o := m.Apply(s, wrongKind); o.Kind != OutcomeIgnored {
		t.Errorf("timer of another kind outcome = %v, want ignored", o.Kind)
	}
}

func TestStartRequiresNotStarted(t *testing.T) {
	m := NewMachine(DefaultTimings())
	s := startSession(t, m, standardQuestions(1, 10))

	again, o := m.Start(s, 99)
	if o.Kind != OutcomeIgnored || again.ID != 42 {
		t.Errorf("restart outcome = %v id = %d, want ignored and 42", o.Kind, again.ID)
	}

	if _, err := NewSession(1, nil); err != ErrNoQuestions {
		t.Errorf("NewSession(nil) error = %v, want ErrNoQuestions", err)
	}
}

func TestInputBeforeStartIsIgnored(t *testing.T) {
	m := NewMachine(DefaultTimings())
	s, _ := NewSession(1, standardQuestions(1, 10))

	next, o := m.Apply(s, Choose{Index: 1})
	if o.Kind != OutcomeIgnored || next.Status != StatusNotStarted {
		t.Errorf("outcome = %v status = %v, want ignored and not-started", o.Kind, next.Status)
	}
	if _, ok := next.Current(); ok {
		t.Error("Current() reported a question before start")
	}
}

func TestMalformedQuestionIsSkipped(t *testing.T) {
	m := NewMachine(DefaultTimings())
	qs := []Question{
		{Prompt: "broken", Mode: ModeStandard, Points: 10},
		standardQuestions(1, 10)[0],
	}
	s := startSession(t, m, qs)

	if !s.Unavailable() {
		t.Fatalf("first question should be unavailable, local = %#v", s.Local)
	}
	if s.MaxScore != 20 {
		t.Errorf("MaxScore = %d, want 20", s.MaxScore)
	}

	if _, o := m.Apply(s, Choose{Index: 0}); o.Kind != OutcomeIgnored {
		t.Errorf("answer on unavailable question outcome = %v, want ignored", o.Kind)
	}
	if s.Pending.After != m.Timings().Feedback {
		t.Errorf("skip delay = %v, want %v", s.Pending.After, m.Timings().Feedback)
	}

	s, o := fire(t, m, s, TimerSkip)
	if o.Kind != OutcomeSkipped || s.Index != 1 {
		t.Fatalf("skip outcome = %v index = %d, want skipped at 1", o.Kind, s.Index)
	}
	if s.Score != 0 || s.Lives != StartingLives {
		t.Errorf("skip changed score %d or lives %d", s.Score, s.Lives)
	}

	s, _ = m.Apply(s, Choose{Index: 1})
	s, _ = fire(t, m, s, TimerAdvance)
	if s.Status != StatusComplete || s.Score != 10 {
		t.Errorf("status %v score %d, want complete with 10", s.Status, s.Score)
	}
}

func TestColorMatchAndLetterDetectivePlayAsChoices(t *testing.T) {
	m := NewMachine(DefaultTimings())
	qs := []Question{
		{Prompt: "Which is red?", Mode: ModeColorMatch, Options: []string{"Red", "Blue"}, Colors: []string{"#ef4444", "#3b82f6"}, CorrectIndex: 0, Points: 10},
		{Prompt: "Find the word", Mode: ModeLetterDetective, Scrambled: []string{"t", "a", "c"}, Answer: "cat", Options: []string{"act", "cat"}, CorrectIndex: 1, Points: 10},
	}
	s := startSession(t, m, qs)

	s, o := m.Apply(s, Choose{Index: 0})
	if o.Kind != OutcomeCorrect {
		t.Fatalf("color-match outcome = %v, want correct", o.Kind)
	}
	s, _ = fire(t, m, s, TimerAdvance)
	s, o = m.Apply(s, Choose{Index: 1})
	if o.Kind != OutcomeCorrect {
		t.Fatalf("letter-detective outcome = %v, want correct", o.Kind)
	}
	if cs, ok := s.Local.(ChoiceState); !ok || cs.Selected != 1 {
		t.Errorf("local = %#v, want selection 1", s.Local)
	}
}

func memoryQuestion() Question {
	return Question{Prompt: "Find the pairs", Mode: ModeMemoryCards, Items: []string{"A", "B", "C", "D", "A", "B", "C", "D"}}
}

func endPreview(t *testing.T, m *Machine, s Session) Session {
	t.Helper()
	for i := 0; i < m.Timings().PreviewSteps; i++ {
		var o Outcome
		s, o = fire(t, m, s, TimerPreview)
		want := OutcomePreviewTick
		if i == m.Timings().PreviewSteps-1 {
			want = OutcomePreviewEnded
		}
		if o.Kind != want {
			t.Fatalf("preview step %d outcome = %v, want %v", i, o.Kind, want)
		}
	}
	return s
}

func TestMemoryCardsPerfectRun(t *testing.T) {
	m := NewMachine(DefaultTimings())
	s := startSession(t, m, []Question{memoryQuestion()})

	if s.MaxScore != 40 {
		t.Fatalf("MaxScore = %d, want 40", s.MaxScore)
	}
	if _, o := m.Apply(s, Flip{Card: 0}); o.Kind != OutcomeIgnored {
		t.Errorf("flip during preview outcome = %v, want ignored", o.Kind)
	}

	s = endPreview(t, m, s)
	st := s.Local.(MemoryState)
	if st.Previewing || st.FaceUp(0) {
		t.Fatalf("cards still face up after preview")
	}

	pairs := [][2]int{{0, 4}, {1, 5}, {2, 6}, {3, 7}}
	for i, p := range pairs {
		prev := s
		var o Outcome
		s, o = m.Apply(s, Flip{Card: p[0]})
		if o.Kind != OutcomeCardFlipped {
			t.Fatalf("pair %d first flip outcome = %v", i, o.Kind)
		}
		s, o = m.Apply(s, Flip{Card: p[1]})
		checkInvariants(t, prev, s)
		if o.Kind != OutcomePairMatched || o.Points != MemoryPairPoints {
			t.Fatalf("pair %d outcome = %+v, want matched", i, o)
		}
		if got := s.Local.(MemoryState).MatchedPairs(); got != i+1 {
			t.Errorf("MatchedPairs() = %d, want %d", got, i+1)
		}
	}

	if s.Score != 40 {
		t.Errorf("score = %d, want 40", s.Score)
	}
	if s.Pending.Kind != TimerAdvance || s.Pending.After != m.Timings().MemoryDone {
		t.Fatalf("pending = %+v, want advance after %v", s.Pending, m.Timings().MemoryDone)
	}
	s, o := fire(t, m, s, TimerAdvance)
	if !o.Ended || s.Status != StatusComplete {
		t.Errorf("outcome = %+v status = %v, want ended", o, s.Status)
	}
}

func TestMemoryCardsMismatch(t *testing.T) {
	m := NewMachine(DefaultTimings())
	s := startSession(t, m, []Question{memoryQuestion()})
	s = endPreview(t, m, s)

	s, _ = m.Apply(s, Flip{Card: 0})
	if _, o := m.Apply(s, Flip{Card: 0}); o.Kind != OutcomeIgnored {
		t.Errorf("re-flip of open card outcome = %v, want ignored", o.Kind)
	}
	s, o := m.Apply(s, Flip{Card: 1})
	if o.Kind != OutcomePairMismatched {
		t.Fatalf("outcome = %v, want pair-mismatched", o.Kind)
	}
	if s.Lives != StartingLives-1 || s.Score != 0 {
		t.Errorf("lives %d score %d after mismatch", s.Lives, s.Score)
	}
	if _, o := m.Apply(s, Flip{Card: 2}); o.Kind != OutcomeIgnored {
		t.Errorf("third flip outcome = %v, want ignored", o.Kind)
	}

	s, o = fire(t, m, s, TimerFlipBack)
	if o.Kind != OutcomeCardsHidden {
		t.Fatalf("flip-back outcome = %v", o.Kind)
	}
	st := s.Local.(MemoryState)
	if st.FaceUp(0) || st.FaceUp(1) {
		t.Error("mismatched cards still face up")
	}

	s, _ = m.Apply(s, Flip{Card: 0})
	s, o = m.Apply(s, Flip{Card: 4})
	if o.Kind != OutcomePairMatched {
		t.Fatalf("outcome = %v, want matched", o.Kind)
	}
	if _, o := m.Apply(s, Flip{Card: 4}); o.Kind != OutcomeIgnored {
		t.Errorf("flip of matched card outcome = %v, want ignored", o.Kind)
	}
}

func sequenceQuestion() Question {
	return Question{Prompt: "Repeat the colors", Mode: ModeSequence, Items: []string{"red", "blue", "green"}, Sequence: []string{"red", "blue", "green"}, Points: 15}
}

func TestSequenceReplay(t *testing.T) {
	m := NewMachine(DefaultTimings())
	s := startSession(t, m, []Question{sequenceQuestion()})

	s, o := m.Apply(s, Tap{Token: "red"})
	if o.Kind != OutcomeSequenceProgress {
		t.Fatalf("outcome = %v, want progress", o.Kind)
	}
	s, o = m.Apply(s, Tap{Token: "green"})
	if o.Kind != OutcomeSequenceReset {
		t.Fatalf("outcome = %v, want reset", o.Kind)
	}
	if in := s.Local.(SequenceState).Input; len(in) != 0 {
		t.Errorf("input = %v after reset, want empty", in)
	}
	if s.Lives != StartingLives-1 || s.Index != 0 || s.Answered {
		t.Errorf("lives %d index %d answered %v after reset", s.Lives, s.Index, s.Answered)
	}

	if _, o := m.Apply(s, Tap{Token: "purple"}); o.Kind != OutcomeIgnored {
		t.Errorf("unknown token outcome = %v, want ignored", o.Kind)
	}

	for _, tok := range []string{"red", "blue", "green"} {
		s, o = m.Apply(s, Tap{Token: tok})
	}
	if o.Kind != OutcomeCorrect || o.Points != 15 || s.Score != 15 {
		t.Fatalf("outcome = %+v score = %d, want correct for 15", o, s.Score)
	}
	s, o = fire(t, m, s, TimerAdvance)
	if !o.Ended {
		t.Errorf("outcome = %+v, want ended", o)
	}
}

func TestSequenceThreeResetsEndSession(t *testing.T) {
	m := NewMachine(DefaultTimings())
	s := startSession(t, m, []Question{sequenceQuestion(), sequenceQuestion()})

	var o Outcome
	for i := 0; i < StartingLives; i++ {
		s, o = m.Apply(s, Tap{Token: "blue"})
	}
	if !o.Ended || s.Status != StatusComplete || s.Index != 0 {
		t.Errorf("outcome %+v status %v index %d, want ended at 0", o, s.Status, s.Index)
	}
}

func TestAudioLetterGating(t *testing.T) {
	m := NewMachine(DefaultTimings())
	q := Question{Prompt: "Which letter did you hear?", Mode: ModeAudioLetter, Answer: "b", Options: []string{"b", "d", "p"}, CorrectIndex: 0, Points: 10}
	s := startSession(t, m, []Question{q, q})

	if s.Pending.Armed() {
		t.Fatalf("timer armed before confirmation: %v", s.Pending.Kind)
	}
	if _, o := m.Apply(s, Choose{Index: 0}); o.Kind != OutcomeIgnored {
		t.Errorf("answer before confirmation outcome = %v, want ignored", o.Kind)
	}

	s, o := m.Apply(s, ConfirmStart{})
	if o.Kind != OutcomeConfirmed {
		t.Fatalf("confirm outcome = %v", o.Kind)
	}
	if _, o := m.Apply(s, ConfirmStart{}); o.Kind != OutcomeIgnored {
		t.Errorf("second confirm outcome = %v, want ignored", o.Kind)
	}
	if _, o := m.Apply(s, Choose{Index: 0}); o.Kind != OutcomeIgnored {
		t.Errorf("answer before announce outcome = %v, want ignored", o.Kind)
	}

	s, o = fire(t, m, s, TimerAnnounce)
	if o.Kind != OutcomeAnnounced {
		t.Fatalf("announce outcome = %v", o.Kind)
	}
	s, o = m.Apply(s, Choose{Index: 0})
	if o.Kind != OutcomeCorrect {
		t.Fatalf("answer outcome = %v, want correct", o.Kind)
	}

	s, _ = fire(t, m, s, TimerAdvance)
	if s.Pending.Kind != TimerAnnounce {
		t.Errorf("second audio question pending = %v, want announce without reconfirming", s.Pending.Kind)
	}
}

func TestTimingsAreCarriedOnTimers(t *testing.T) {
	timings := Timings{Feedback: time.Millisecond, MemoryDone: 2 * time.Millisecond, FlipBack: 3 * time.Millisecond, PreviewStep: 4 * time.Millisecond, PreviewSteps: 1, Announce: 5 * time.Millisecond}
	m := NewMachine(timings)
	s := startSession(t, m, []Question{memoryQuestion()})

	if s.Pending.Kind != TimerPreview || s.Pending.After != timings.PreviewStep {
		t.Fatalf("pending = %+v, want preview after %v", s.Pending, timings.PreviewStep)
	}
	s, _ = fire(t, m, s, TimerPreview)
	s, _ = m.Apply(s, Flip{Card: 0})
	s, _ = m.Apply(s, Flip{Card: 1})
	if s.Pending.After != timings.FlipBack {
		t.Errorf("flip-back delay = %v, want %v", s.Pending.After, timings.FlipBack)
	}
}

func TestKindNames(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"timer advance", TimerAdvance.String(), "advance"},
		{"timer announce", TimerAnnounce.String(), "announce"},
		{"timer out of range", TimerKind(99).String(), "unknown"},
		{"timer negative", TimerKind(-1).String(), "unknown"},
		{"outcome ended", OutcomeEnded.String(), "ended"},
		{"outcome out of range", OutcomeKind(99).String(), "unknown"},
		{"outcome negative", OutcomeKind(-1).String(), "unknown"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: String() = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}
