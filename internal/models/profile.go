package models

import (
	"strings"
	"time"

	"github.com/samber/lo"
)

// PointsPerLevel is how many points separate two levels
const PointsPerLevel = 100

// LevelForPoints returns the level a student with points has reached
func LevelForPoints(points int) int {
	if points < 0 {
		points = 0
	}
	return points/PointsPerLevel + 1
}

// StudentProfile holds a student's grade and gamified progress
type StudentProfile struct {
	UserID               int64     `json:"userId"`
	GradeLevel           int       `json:"gradeLevel"`
	LearningDisabilities []string  `json:"learningDisabilities"`
	Points               int       `json:"points"`
	Level                int       `json:"level"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// TeacherProfile holds teacher-only fields
type TeacherProfile struct {
	UserID         int64  `json:"userId"`
	Specialization string `json:"specialization"`
}

// JoinTags flattens a tag list for a text column
func JoinTags(tags []string) string {
	return strings.Join(lo.Compact(lo.Map(tags, func(t string, _ int) string {
		return strings.ToLower(strings.TrimSpace(t))
	})), ",")
}

// SplitTags is the inverse of JoinTags
func SplitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	return lo.Compact(lo.Map(strings.Split(s, ","), func(t string, _ int) string {
		return strings.TrimSpace(t)
	}))
}
