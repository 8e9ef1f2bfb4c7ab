package models

// Tier is the badge metal of an achievement
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// Achievement is one badge with the student's progress towards it
type Achievement struct {
	ID          int    `json:"id"`
	Group       string `json:"group"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Tier        Tier   `json:"tier"`
	Points      int    `json:"points"`
	Requirement int    `json:"requirement"`
	Current     int    `json:"current"`
	Unlocked    bool   `json:"unlocked"`
}

// AchievementSummary is the student's achievements page
type AchievementSummary struct {
	Achievements  []Achievement `json:"achievements"`
	Unlocked      int           `json:"unlocked"`
	Total         int           `json:"total"`
	BonusPoints   int           `json:"bonusPoints"`
	CurrentStreak int           `json:"currentStreak"`
}
