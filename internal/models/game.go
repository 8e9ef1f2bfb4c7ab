package models

import "time"

// Categories of the game catalogue
const (
	CategoryReading   = "reading"
	CategoryMath      = "math"
	CategoryWriting   = "writing"
	CategoryMemory    = "memory"
	CategoryAttention = "attention"
)

// Game is an entry in the catalogue
type Game struct {
	ID                 int64     `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Category           string    `json:"category"`
	DifficultyLevel    string    `json:"difficultyLevel"`
	DurationMinutes    int       `json:"durationMinutes"`
	TargetDisabilities []string  `json:"targetDisabilities"`
	IsActive           bool      `json:"isActive"`
	CreatedAt          time.Time `json:"createdAt"`
}

// GameSession is one recorded play-through. CompletedAt is nil while in progress.
type GameSession struct {
	ID               int64      `json:"id"`
	StudentID        int64      `json:"studentId"`
	GameID           int64      `json:"gameId"`
	StartedAt        time.Time  `json:"startedAt"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	Score            int        `json:"score"`
	TimeSpentSeconds int        `json:"timeSpentSeconds"`

	// Joined from games for listings
	GameTitle string `json:"gameTitle,omitempty"`
	Category  string `json:"category,omitempty"`
}

// IsCompleted reports whether the session has been completed
func (s *GameSession) IsCompleted() bool {
	return s.CompletedAt != nil
}

// CategoryStats aggregates completed sessions of one category
type CategoryStats struct {
	Category    string  `json:"category"`
	GamesPlayed int     `json:"gamesPlayed"`
	AvgScore    float64 `json:"avgScore"`
	MaxScore    int     `json:"maxScore"`
}

// StudentStats aggregates all sessions of one student
type StudentStats struct {
	TotalSessions     int `json:"totalSessions"`
	CompletedSessions int `json:"completedSessions"`
	AverageScore      int `json:"averageScore"`
	PerfectGames      int `json:"perfectGames"`
	QuickGames        int `json:"quickGames"`
	TotalSeconds      int `json:"totalSeconds"`
}
