package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Mode identifies the interaction protocol a question is played with.
type Mode string

const (
	ModeStandard        Mode = "standard"
	ModeLetterDetective Mode = "letter-detective"
	ModeMemoryCards     Mode = "memory-cards"
	ModeColorMatch      Mode = "color-match"
	ModeSequence        Mode = "sequence"
	ModeAudioLetter     Mode = "audio-letter"
)

// MemoryPairPoints is awarded for every matched pair in memory-cards mode.
const MemoryPairPoints = 10

var ErrMalformedQuestion = errors.New("malformed question")

// ParseMode maps an authored type tag onto a Mode. Unknown tags, including
// "multiple-choice" and "rhythm", are played as standard multiple choice.
func ParseMode(tag string) Mode {
	switch m := Mode(strings.ToLower(strings.TrimSpace(tag))); m {
	case ModeLetterDetective, ModeMemoryCards, ModeColorMatch, ModeSequence, ModeAudioLetter:
		return m
	default:
		return ModeStandard
	}
}

func (m *Mode) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}
	*m = ParseMode(tag)
	return nil
}

// usesOptions reports whether answers are given by picking one of Options.
func (m Mode) usesOptions() bool {
	switch m {
	case ModeStandard, ModeLetterDetective, ModeColorMatch, ModeAudioLetter:
		return true
	}
	return false
}

// Question is one unit of gameplay content. It is read-only once a session is built.
type Question struct {
	Prompt       string   `json:"prompt"`
	Mode         Mode     `json:"mode"`
	Options      []string `json:"options,omitempty"`
	CorrectIndex int      `json:"correctIndex"`
	Points       int      `json:"points"`
	Hint         string   `json:"hint,omitempty"`
	Items        []string `json:"items,omitempty"`
	Colors       []string `json:"colors,omitempty"`
	Sequence     []string `json:"sequence,omitempty"`
	Scrambled    []string `json:"scrambled,omitempty"`
	Answer       string   `json:"answer,omitempty"`
}

// MaxPoints is the most a player can earn on this question.
func (q Question) MaxPoints() int {
	if q.Mode == ModeMemoryCards {
		return len(q.Items) / 2 * MemoryPairPoints
	}
	return q.Points
}

// Target is the token order a sequence question must be replayed in.
func (q Question) Target() []string {
	if len(q.Sequence) > 0 {
		return q.Sequence
	}
	return q.Items
}

// Tokens are the buttons offered in sequence mode.
func (q Question) Tokens() []string {
	if len(q.Items) > 0 {
		return q.Items
	}
	return lo.Uniq(q.Target())
}

// Validate checks that the mode-specific payload is present and consistent.
func (q Question) Validate() error {
	if q.Points < 0 {
		return fmt.Errorf("%w: negative points", ErrMalformedQuestion)
	}

	switch {
	case q.Mode.usesOptions():
		if len(q.Options) == 0 {
			return fmt.Errorf("%w: %s question has no options", ErrMalformedQuestion, q.Mode)
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return fmt.Errorf("%w: correct index %d out of range", ErrMalformedQuestion, q.CorrectIndex)
		}
		if q.Mode == ModeColorMatch && len(q.Colors) == 0 {
			return fmt.Errorf("%w: color-match question has no colors", ErrMalformedQuestion)
		}
		if len(q.Colors) > 0 && len(q.Colors) != len(q.Options) {
			return fmt.Errorf("%w: %d colors for %d options", ErrMalformedQuestion, len(q.Colors), len(q.Options))
		}

	case q.Mode == ModeMemoryCards:
		if len(q.Items) == 0 || len(q.Items)%2 != 0 {
			return fmt.Errorf("%w: memory-cards needs an even, non-empty item list", ErrMalformedQuestion)
		}
		for value, n := range lo.CountValues(q.Items) {
			if n != 2 {
				return fmt.Errorf("%w: card %q appears %d times", ErrMalformedQuestion, value, n)
			}
		}

	case q.Mode == ModeSequence:
		if len(q.Target()) == 0 {
			return fmt.Errorf("%w: sequence question has no target", ErrMalformedQuestion)
		}
		tokens := q.Tokens()
		if missing := lo.Without(lo.Uniq(q.Target()), tokens...); len(missing) > 0 {
			return fmt.Errorf("%w: sequence tokens %v cannot be tapped", ErrMalformedQuestion, missing)
		}

	default:
		return fmt.Errorf("%w: unknown mode %q", ErrMalformedQuestion, q.Mode)
	}

	return nil
}
