package main

import (
	"bytes"
	"strings"
	"testing"

	"learnplay/internal/game"
)

func fireTimer(m *game.Machine, s game.Session) (game.Session, game.Outcome) {
	return m.Apply(s, game.TimerFired{Kind: s.Pending.Kind, Seq: s.Pending.Seq})
}

func TestAudioPromptOnlyBeforeConfirmation(t *testing.T) {
	q := game.Question{Prompt: "Which letter did you hear?", Mode: game.ModeAudioLetter, Answer: "b", Options: []string{"b", "d"}, CorrectIndex: 0, Points: 10}
	m := game.NewMachine(game.DefaultTimings())
	s, err := game.NewSession(11, []game.Question{q, q})
	if err != nil {
		t.Fatal(err)
	}
	s, o := m.Start(s, 1)

	var out bytes.Buffer
	term := &terminal{out: &out}
	term.Render(s, o)
	if !strings.Contains(out.String(), "Press enter") {
		t.Errorf("first audio question output = %q, want the enter prompt", out.String())
	}

	s, _ = m.Apply(s, game.ConfirmStart{})
	s, _ = fireTimer(m, s)
	s, _ = m.Apply(s, game.Choose{Index: 0})
	s, o = fireTimer(m, s)
	if o.Kind != game.OutcomeAdvanced || s.Index != 1 {
		t.Fatalf("advance outcome = %v at index %d", o.Kind, s.Index)
	}

	out.Reset()
	term.Render(s, o)
	if strings.Contains(out.String(), "Press enter") {
		t.Errorf("second audio question asked for enter again: %q", out.String())
	}
	if !strings.Contains(out.String(), "Listen...") {
		t.Errorf("second audio question output = %q, want Listen...", out.String())
	}
}

func TestParseInput(t *testing.T) {
	tests := []struct {
		name string
		mode game.Mode
		line string
		want game.Event
		ok   bool
	}{
		{"choice", game.ModeStandard, "2", game.Choose{Index: 1}, true},
		{"choice zero", game.ModeStandard, "0", nil, false},
		{"choice text", game.ModeColorMatch, "red", nil, false},
		{"flip", game.ModeMemoryCards, "3", game.Flip{Card: 2}, true},
		{"tap", game.ModeSequence, "C", game.Tap{Token: "C"}, true},
		{"audio enter", game.ModeAudioLetter, "", game.ConfirmStart{}, true},
		{"empty line", game.ModeStandard, "", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := &terminal{mode: tt.mode}
			got, ok := term.parse(tt.line)
			if ok != tt.ok || got != tt.want {
				t.Errorf("parse(%q) = %#v, %v, want %#v, %v", tt.line, got, ok, tt.want, tt.ok)
			}
		})
	}
}
