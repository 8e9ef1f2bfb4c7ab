// Package questionbank serves the authored questions of each game.
package questionbank

import (
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"

	"learnplay/internal/game"
)

// PerSession is how many questions one play-through gets.
const PerSession = 10

const defaultCategory = "reading"

// GameCatalog resolves a game's category for games without their own content.
type GameCatalog interface {
	GameCategory(gameID int64) (string, error)
}

// Bank picks questions for a play-through. It is safe for concurrent use.
type Bank struct {
	catalog GameCatalog

	mu  sync.Mutex
	rnd *rand.Rand
}

// New creates a bank backed by catalog for category lookups. catalog may be nil.
func New(catalog GameCatalog) *Bank {
	return NewWithRand(catalog, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

// NewWithRand creates a bank with a fixed random source.
func NewWithRand(catalog GameCatalog, rnd *rand.Rand) *Bank {
	return &Bank{catalog: catalog, rnd: rnd}
}

// GetQuestions returns up to PerSession shuffled questions for gameID.
// Games with dedicated content use it; any other game falls back to the
// bank of its category. difficulty and level do not narrow the selection.
func (b *Bank) GetQuestions(gameID int64, difficulty string, level int) ([]game.Question, error) {
	qs, err := b.pool(gameID)
	if err != nil {
		return nil, err
	}
	return b.pick(qs, PerSession), nil
}

// MaxSessionScore is the most a play-through of gameID can earn: the
// PerSession highest-scoring questions its pool could serve.
func (b *Bank) MaxSessionScore(gameID int64) (int, error) {
	qs, err := b.pool(gameID)
	if err != nil {
		return 0, err
	}
	points := lo.Map(qs, func(q game.Question, _ int) int { return q.MaxPoints() })
	slices.SortFunc(points, func(a, b int) int { return b - a })
	if len(points) > PerSession {
		points = points[:PerSession]
	}
	return lo.Sum(points), nil
}

// pool is the content a game's questions are drawn from
func (b *Bank) pool(gameID int64) ([]game.Question, error) {
	if qs, ok := gameBanks[gameID]; ok {
		return qs, nil
	}

	category := defaultCategory
	if b.catalog != nil {
		c, err := b.catalog.GameCategory(gameID)
		if err != nil {
			return nil, err
		}
		category = c
	}
	return categoryPool(category), nil
}

func categoryPool(category string) []game.Question {
	if qs, ok := categoryBanks[strings.ToLower(category)]; ok {
		return qs
	}
	return categoryBanks[defaultCategory]
}

// ByCategory returns up to count shuffled questions of a category. Unknown
// categories get reading questions.
func (b *Bank) ByCategory(category string, count int) []game.Question {
	return b.pick(categoryPool(category), count)
}

// HasGame reports whether gameID has dedicated content.
func HasGame(gameID int64) bool {
	_, ok := gameBanks[gameID]
	return ok
}

// Categories lists the category banks.
func Categories() []string {
	keys := lo.Keys(categoryBanks)
	slices.Sort(keys)
	return keys
}

func (b *Bank) pick(qs []game.Question, count int) []game.Question {
	out := slices.Clone(qs)

	b.mu.Lock()
	b.rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	b.mu.Unlock()

	if count > 0 && count < len(out) {
		out = out[:count]
	}
	return out
}
