package questionbank

import (
	"errors"
	"math/rand/v2"
	"testing"

	"learnplay/internal/game"
)

type fakeCatalog map[int64]string

func (f fakeCatalog) GameCategory(gameID int64) (string, error) {
	c, ok := f[gameID]
	if !ok {
		return "", errors.New("game not found")
	}
	return c, nil
}

func TestAllContentIsPlayable(t *testing.T) {
	for id, qs := range gameBanks {
		for i, q := range qs {
			if err := q.Validate(); err != nil {
				t.Errorf("game %d question %d: %v", id, i, err)
			}
		}
	}
	for name, qs := range categoryBanks {
		for i, q := range qs {
			if err := q.Validate(); err != nil {
				t.Errorf("category %s question %d: %v", name, i, err)
			}
		}
	}
}

func TestGameBankModes(t *testing.T) {
	tests := []struct {
		gameID int64
		mode   game.Mode
	}{
		{1, game.ModeLetterDetective},
		{4, game.ModeStandard},
		{5, game.ModeMemoryCards},
		{11, game.ModeAudioLetter},
		{18, game.ModeColorMatch},
		{21, game.ModeSequence},
	}

	bank := NewWithRand(nil, rand.New(rand.NewPCG(1, 2)))
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			qs, err := bank.GetQuestions(tt.gameID, "easy", 1)
			if err != nil {
				t.Fatalf("GetQuestions() error = %v", err)
			}
			if len(qs) == 0 || len(qs) > PerSession {
				t.Fatalf("GetQuestions() returned %d questions", len(qs))
			}
			for _, q := range qs {
				if q.Mode != tt.mode {
					t.Errorf("mode = %v, want %v", q.Mode, tt.mode)
				}
			}
		})
	}
}

func TestGetQuestionsFallsBackToCategory(t *testing.T) {
	bank := NewWithRand(fakeCatalog{2: "math", 3: "writing", 99: "science"}, rand.New(rand.NewPCG(1, 2)))

	tests := []struct {
		name   string
		gameID int64
		want   []game.Question
	}{
		{"math game", 2, categoryBanks["math"]},
		{"writing game", 3, categoryBanks["writing"]},
		{"unknown category", 99, categoryBanks["reading"]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qs, err := bank.GetQuestions(tt.gameID, "", 0)
			if err != nil {
				t.Fatalf("GetQuestions() error = %v", err)
			}
			if want := min(PerSession, len(tt.want)); len(qs) != want {
				t.Fatalf("len = %d, want %d", len(qs), want)
			}
			for _, q := range qs {
				if !containsPrompt(tt.want, q.Prompt) {
					t.Errorf("question %q not from the expected bank", q.Prompt)
				}
			}
		})
	}

	if _, err := bank.GetQuestions(1234, "", 0); err == nil {
		t.Error("GetQuestions() for an unknown game should fail")
	}
}

func TestMaxSessionScore(t *testing.T) {
	bank := New(fakeCatalog{1: "reading", 2: "math", 3: "writing", 99: "science"})

	tests := []struct {
		name   string
		gameID int64
		want   int
	}{
		{"letter detective", 1, 195},
		{"memory pairs count per pair", 5, 360},
		{"sequence bank under a full session", 21, 135},
		{"math category", 2, 100},
		{"writing category", 3, 60},
		{"unknown category", 99, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bank.MaxSessionScore(tt.gameID)
			if err != nil {
				t.Fatalf("MaxSessionScore() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("MaxSessionScore(%d) = %v, want %v", tt.gameID, got, tt.want)
			}
		})
	}

	if _, err := bank.MaxSessionScore(1234); err == nil {
		t.Error("MaxSessionScore() for an unknown game should fail")
	}
}

func TestMaxSessionScoreCoversEverySession(t *testing.T) {
	bank := NewWithRand(nil, rand.New(rand.NewPCG(3, 9)))
	for gameID := range gameBanks {
		ceiling, err := bank.MaxSessionScore(gameID)
		if err != nil {
			t.Fatal(err)
		}
		for range 20 {
			qs, _ := bank.GetQuestions(gameID, "", 0)
			if got := game.MaxScore(qs); got > ceiling {
				t.Errorf("game %d session worth %d, above ceiling %d", gameID, got, ceiling)
			}
		}
	}
}

func TestGetQuestionsWithoutCatalog(t *testing.T) {
	bank := New(nil)
	qs, err := bank.GetQuestions(2, "", 0)
	if err != nil {
		t.Fatalf("GetQuestions() error = %v", err)
	}
	for _, q := range qs {
		if !containsPrompt(categoryBanks["reading"], q.Prompt) {
			t.Errorf("question %q is not a reading question", q.Prompt)
		}
	}
}

func TestSeededShuffleIsRepeatable(t *testing.T) {
	a := NewWithRand(nil, rand.New(rand.NewPCG(7, 7)))
	b := NewWithRand(nil, rand.New(rand.NewPCG(7, 7)))

	qa, _ := a.GetQuestions(1, "", 0)
	qb, _ := b.GetQuestions(1, "", 0)
	for i := range qa {
		if qa[i].Answer != qb[i].Answer {
			t.Fatalf("position %d: got %v, want %v", i, qa[i].Answer, qb[i].Answer)
		}
	}
}

func TestPickDoesNotShuffleSource(t *testing.T) {
	before := gameBanks[1][0].Answer
	bank := NewWithRand(nil, rand.New(rand.NewPCG(3, 4)))
	for i := 0; i < 5; i++ {
		bank.GetQuestions(1, "", 0)
	}
	if gameBanks[1][0].Answer != before {
		t.Errorf("source bank reordered: first answer %q, want %q", gameBanks[1][0].Answer, before)
	}
}

func TestByCategoryCount(t *testing.T) {
	bank := New(nil)
	tests := []struct {
		category string
		count    int
		want     int
	}{
		{"math", 3, 3},
		{"math", 50, len(categoryBanks["math"])},
		{"ATTENTION", 2, 2},
		{"nope", 1, 1},
	}

	for _, tt := range tests {
		if got := len(bank.ByCategory(tt.category, tt.count)); got != tt.want {
			t.Errorf("ByCategory(%q, %d) returned %d, want %d", tt.category, tt.count, got, tt.want)
		}
	}
}

func TestCategoriesAndHasGame(t *testing.T) {
	want := []string{"attention", "math", "memory", "reading", "writing"}
	got := Categories()
	if len(got) != len(want) {
		t.Fatalf("Categories() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Categories()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if !HasGame(21) || HasGame(2) {
		t.Error("HasGame() disagrees with the game banks")
	}
}

func containsPrompt(qs []game.Question, prompt string) bool {
	for _, q := range qs {
		if q.Prompt == prompt {
			return true
		}
	}
	return false
}
