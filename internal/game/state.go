package game

import "slices"

// Substate is the mode-local state of the active question. It is replaced
// wholesale when the session advances.
type Substate interface {
	isSubstate()
}

// ChoiceState backs the option-picking modes.
type ChoiceState struct {
	Selected int
}

// AudioState backs audio-letter questions; options unlock once Announced.
type AudioState struct {
	Announced bool
	Selected  int
}

// MemoryState tracks the preview countdown, the open cards and the matched ones.
type MemoryState struct {
	Previewing bool
	Countdown  int
	Selected   []int
	Matched    []bool
}

// SequenceState holds the player's in-progress replay.
type SequenceState struct {
	Input []string
}

// UnavailableState marks a question whose payload cannot be played.
type UnavailableState struct {
	Reason string
}

func (ChoiceState) isSubstate()      {}
func (AudioState) isSubstate()       {}
func (MemoryState) isSubstate()      {}
func (SequenceState) isSubstate()    {}
func (UnavailableState) isSubstate() {}

// MatchedPairs counts pairs already found.
func (m MemoryState) MatchedPairs() int {
	n := 0
	for _, ok := range m.Matched {
		if ok {
			n++
		}
	}
	return n / 2
}

func (m MemoryState) allMatched() bool {
	return !slices.Contains(m.Matched, false)
}

func (m MemoryState) isOpen(card int) bool {
	return slices.Contains(m.Selected, card)
}

// FaceUp reports whether a card is currently shown.
func (m MemoryState) FaceUp(card int) bool {
	return m.Previewing || m.Matched[card] || m.isOpen(card)
}
