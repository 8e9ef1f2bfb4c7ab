package game

import "slices"

// choiceHandler plays standard, letter-detective and color-match questions.
// The scrambled letters of letter-detective are decoration only.
type choiceHandler struct {
	t Timings
}

func (h choiceHandler) enter(s Session, q Question) Session {
	s.Local = ChoiceState{Selected: -1}
	return s
}

func (h choiceHandler) handle(s Session, q Question, ev Event) (Session, Outcome) {
	c, ok := ev.(Choose)
	if !ok || s.Answered || c.Index < 0 || c.Index >= len(q.Options) {
		return s, ignored
	}
	s.Local = ChoiceState{Selected: c.Index}
	return answerOption(s, q, c.Index, h.t)
}

func (h choiceHandler) timer(s Session, q Question, kind TimerKind) (Session, Outcome) {
	return s, ignored
}

// audioHandler gates options behind the session's start confirmation and
// an announce step for every question.
type audioHandler struct {
	t Timings
}

func (h audioHandler) enter(s Session, q Question) Session {
	s.Local = AudioState{Selected: -1}
	if s.AudioConfirmed {
		return s.arm(TimerAnnounce, h.t.Announce)
	}
	return s
}

func (h audioHandler) handle(s Session, q Question, ev Event) (Session, Outcome) {
	st := s.Local.(AudioState)

	switch ev := ev.(type) {
	case ConfirmStart:
		if s.AudioConfirmed {
			return s, ignored
		}
		s.AudioConfirmed = true
		return s.arm(TimerAnnounce, h.t.Announce), Outcome{Kind: OutcomeConfirmed}

	case Choose:
		if !st.Announced || s.Answered || ev.Index < 0 || ev.Index >= len(q.Options) {
			return s, ignored
		}
		st.Selected = ev.Index
		s.Local = st
		return answerOption(s, q, ev.Index, h.t)
	}
	return s, ignored
}

func (h audioHandler) timer(s Session, q Question, kind TimerKind) (Session, Outcome) {
	if kind != TimerAnnounce {
		return s, ignored
	}
	st := s.Local.(AudioState)
	st.Announced = true
	s.Local = st
	return s, Outcome{Kind: OutcomeAnnounced}
}

// memoryHandler plays memory-cards: preview, then pick pairs until all match.
type memoryHandler struct {
	t Timings
}

func (h memoryHandler) enter(s Session, q Question) Session {
	s.Local = MemoryState{
		Previewing: true,
		Countdown:  h.t.PreviewSteps,
		Matched:    make([]bool, len(q.Items)),
	}
	if h.t.PreviewSteps <= 0 {
		s.Local = MemoryState{Matched: make([]bool, len(q.Items))}
		return s
	}
	return s.arm(TimerPreview, h.t.PreviewStep)
}

func (h memoryHandler) handle(s Session, q Question, ev Event) (Session, Outcome) {
	f, ok := ev.(Flip)
	st := s.Local.(MemoryState)
	if !ok || s.Answered || st.Previewing || len(st.Selected) >= 2 {
		return s, ignored
	}
	if f.Card < 0 || f.Card >= len(q.Items) || st.Matched[f.Card] || st.isOpen(f.Card) {
		return s, ignored
	}

	st.Selected = append(slices.Clone(st.Selected), f.Card)
	if len(st.Selected) == 1 {
		s.Local = st
		return s, Outcome{Kind: OutcomeCardFlipped}
	}

	first, second := st.Selected[0], st.Selected[1]
	if q.Items[first] != q.Items[second] {
		s.Local = st
		var ended bool
		if s, ended = s.penalizeWrong(); ended {
			return s, Outcome{Kind: OutcomePairMismatched, Ended: true}
		}
		return s.arm(TimerFlipBack, h.t.FlipBack), Outcome{Kind: OutcomePairMismatched}
	}

	st.Matched = slices.Clone(st.Matched)
	st.Matched[first], st.Matched[second] = true, true
	st.Selected = nil
	s.Local = st
	s = s.rewardCorrect(MemoryPairPoints)

	if st.allMatched() {
		s.Answered = true
		return s.arm(TimerAdvance, h.t.MemoryDone), Outcome{Kind: OutcomePairMatched, Points: MemoryPairPoints}
	}
	s.Feedback = FeedbackNone
	return s, Outcome{Kind: OutcomePairMatched, Points: MemoryPairPoints}
}

func (h memoryHandler) timer(s Session, q Question, kind TimerKind) (Session, Outcome) {
	st := s.Local.(MemoryState)

	switch kind {
	case TimerPreview:
		st.Countdown--
		if st.Countdown <= 0 {
			st.Countdown = 0
			st.Previewing = false
			s.Local = st
			return s, Outcome{Kind: OutcomePreviewEnded}
		}
		s.Local = st
		return s.arm(TimerPreview, h.t.PreviewStep), Outcome{Kind: OutcomePreviewTick}

	case TimerFlipBack:
		st.Selected = nil
		s.Local = st
		s.Feedback = FeedbackNone
		return s, Outcome{Kind: OutcomeCardsHidden}
	}
	return s, ignored
}

// sequenceHandler plays sequence replay. A wrong tap clears the attempt and
// costs a life, but the question stays until solved.
type sequenceHandler struct {
	t Timings
}

func (h sequenceHandler) enter(s Session, q Question) Session {
	s.Local = SequenceState{}
	return s
}

func (h sequenceHandler) handle(s Session, q Question, ev Event) (Session, Outcome) {
	tap, ok := ev.(Tap)
	if !ok || s.Answered || !slices.Contains(q.Tokens(), tap.Token) {
		return s, ignored
	}

	st := s.Local.(SequenceState)
	target := q.Target()

	if target[len(st.Input)] != tap.Token {
		s.Local = SequenceState{}
		var ended bool
		s, ended = s.penalizeWrong()
		return s, Outcome{Kind: OutcomeSequenceReset, Ended: ended}
	}

	st.Input = append(slices.Clone(st.Input), tap.Token)
	s.Local = st
	if len(st.Input) < len(target) {
		return s, Outcome{Kind: OutcomeSequenceProgress}
	}

	s.Answered = true
	s = s.rewardCorrect(q.Points)
	return s.arm(TimerAdvance, h.t.Feedback), Outcome{Kind: OutcomeCorrect, Points: q.Points}
}

func (h sequenceHandler) timer(s Session, q Question, kind TimerKind) (Session, Outcome) {
	return s, ignored
}
