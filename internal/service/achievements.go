package service

import (
	"time"

	"github.com/samber/lo"

	"learnplay/internal/models"
)

// StreakLookback is how many distinct play days are considered for a streak
const StreakLookback = 30

// AchievementInputs are the counters the badge catalogue is evaluated against
type AchievementInputs struct {
	GamesCompleted int
	Points         int
	AverageScore   int
	PerfectGames   int
	QuickGames     int
	Streak         int
	PerCategory    map[string]int
}

type badge struct {
	group       string
	name        string
	description string
	icon        string
	tier        models.Tier
	points      int
	requirement int
	current     func(AchievementInputs) int
}

func gamesCompleted(in AchievementInputs) int { return in.GamesCompleted }
func totalPoints(in AchievementInputs) int    { return in.Points }
func averageScore(in AchievementInputs) int   { return in.AverageScore }
func perfectGames(in AchievementInputs) int   { return in.PerfectGames }
func quickGames(in AchievementInputs) int     { return in.QuickGames }
func dailyStreak(in AchievementInputs) int    { return in.Streak }

func inCategory(category string) func(AchievementInputs) int {
	return func(in AchievementInputs) int { return in.PerCategory[category] }
}

var badges = []badge{
	{"general", "First Step", "Complete your first game", "star", models.TierBronze, 10, 1, gamesCompleted},
	{"general", "Beginner", "Complete 5 games", "target", models.TierBronze, 20, 5, gamesCompleted},
	{"general", "Game Fan", "Complete 10 games", "zap", models.TierSilver, 50, 10, gamesCompleted},
	{"general", "Experienced Player", "Complete 25 games", "medal", models.TierSilver, 100, 25, gamesCompleted},
	{"general", "Super Player", "Complete 50 games", "crown", models.TierGold, 200, 50, gamesCompleted},
	{"general", "Legendary Player", "Complete 100 games", "sparkles", models.TierPlatinum, 500, 100, gamesCompleted},

	{"points", "First Points", "Earn 50 points", "trophy", models.TierBronze, 10, 50, totalPoints},
	{"points", "Point Hunter", "Earn 100 points", "trophy", models.TierBronze, 20, 100, totalPoints},
	{"points", "Point Master", "Earn 250 points", "award", models.TierSilver, 50, 250, totalPoints},
	{"points", "Point King", "Earn 500 points", "crown", models.TierGold, 100, 500, totalPoints},
	{"points", "Point Legend", "Earn 1000 points", "sparkles", models.TierPlatinum, 250, 1000, totalPoints},

	{"performance", "Good Start", "Reach an average score of 60", "target", models.TierBronze, 30, 60, averageScore},
	{"performance", "Good Performance", "Reach an average score of 70", "zap", models.TierSilver, 50, 70, averageScore},
	{"performance", "High Performance", "Reach an average score of 80", "award", models.TierGold, 100, 80, averageScore},
	{"performance", "Excellence", "Reach an average score of 90", "crown", models.TierPlatinum, 200, 90, averageScore},
	{"performance", "First Perfect Game", "Score 100 in a game", "star", models.TierSilver, 50, 1, perfectGames},
	{"performance", "Perfect Run", "Score 100 in 5 games", "sparkles", models.TierGold, 150, 5, perfectGames},

	{"category", "Math Starter", "Complete 5 math games", "calculator", models.TierBronze, 30, 5, inCategory(models.CategoryMath)},
	{"category", "Math Master", "Complete 20 math games", "calculator", models.TierGold, 100, 20, inCategory(models.CategoryMath)},
	{"category", "Reading Starter", "Complete 5 reading games", "book-open", models.TierBronze, 30, 5, inCategory(models.CategoryReading)},
	{"category", "Reading Master", "Complete 20 reading games", "book-open", models.TierGold, 100, 20, inCategory(models.CategoryReading)},
	{"category", "Writing Starter", "Complete 5 writing games", "pencil", models.TierBronze, 30, 5, inCategory(models.CategoryWriting)},
	{"category", "Memory Master", "Complete 10 memory games", "brain", models.TierSilver, 50, 10, inCategory(models.CategoryMemory)},
	{"category", "Attention Hero", "Complete 10 attention games", "target", models.TierSilver, 50, 10, inCategory(models.CategoryAttention)},

	{"special", "Quick Thinker", "Finish a game in under 2 minutes", "timer", models.TierSilver, 50, 1, quickGames},
	{"special", "Patient Learner", "Play 3 days in a row", "flame", models.TierSilver, 75, 3, dailyStreak},
	{"special", "Dedicated Learner", "Play 7 days in a row", "flame", models.TierGold, 150, 7, dailyStreak},
	{"special", "Unstoppable Hero", "Play 30 days in a row", "heart", models.TierPlatinum, 500, 30, dailyStreak},
}

// EvaluateAchievements scores the badge catalogue against in
func EvaluateAchievements(in AchievementInputs) models.AchievementSummary {
	achievements := lo.Map(badges, func(b badge, i int) models.Achievement {
		current := b.current(in)
		return models.Achievement{
			ID:          i + 1,
			Group:       b.group,
			Name:        b.name,
			Description: b.description,
			Icon:        b.icon,
			Tier:        b.tier,
			Points:      b.points,
			Requirement: b.requirement,
			Current:     current,
			Unlocked:    current >= b.requirement,
		}
	})
	unlocked := lo.Filter(achievements, func(a models.Achievement, _ int) bool { return a.Unlocked })

	return models.AchievementSummary{
		Achievements:  achievements,
		Unlocked:      len(unlocked),
		Total:         len(achievements),
		BonusPoints:   lo.SumBy(unlocked, func(a models.Achievement) int { return a.Points }),
		CurrentStreak: in.Streak,
	}
}

// CurrentStreak counts consecutive days ending today on which the student
// played. dates are distinct YYYY-MM-DD days, newest first. A streak needs
// a game today; yesterday alone does not keep it alive.
func CurrentStreak(dates []string, today time.Time) int {
	day := today.UTC()
	streak := 0
	for _, d := range dates {
		if d != day.Format(time.DateOnly) {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
