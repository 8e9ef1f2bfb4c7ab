package service

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"

	"learnplay/internal/models"
	"learnplay/internal/repository"
)

const (
	dashboardRecentSessions = 5
	dashboardRecommended    = 4
)

var ErrProfileNotFound = errors.New("student profile not found")

// StudentService builds the student-facing views of progress
type StudentService struct {
	profiles    *repository.ProfileRepository
	games       *repository.GameRepository
	sessions    *repository.GameSessionRepository
	assignments *repository.AssignmentRepository
	now         func() time.Time
}

// NewStudentService creates a new student service
func NewStudentService(
	profiles *repository.ProfileRepository,
	games *repository.GameRepository,
	sessions *repository.GameSessionRepository,
	assignments *repository.AssignmentRepository,
) *StudentService {
	return &StudentService{
		profiles:    profiles,
		games:       games,
		sessions:    sessions,
		assignments: assignments,
		now:         time.Now,
	}
}

// Profile returns the student's points and level
func (s *StudentService) Profile(userID int64) (*models.StudentProfile, error) {
	p, err := s.profiles.GetStudentProfile(userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

// Games returns the playable catalogue
func (s *StudentService) Games() ([]models.Game, error) {
	games, err := s.games.ListActiveGames()
	if err != nil {
		return nil, err
	}
	if games == nil {
		games = []models.Game{}
	}
	return games, nil
}

// Dashboard assembles the student's landing page
func (s *StudentService) Dashboard(user *models.User) (*models.StudentDashboard, error) {
	profile, err := s.profiles.GetStudentProfile(user.ID)
	if err != nil {
		return nil, err
	}

	recent, err := s.sessions.RecentSessions(user.ID, dashboardRecentSessions)
	if err != nil {
		return nil, err
	}

	recommended, err := s.recommend(user.ID, profile)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	today, err := s.sessions.CountCompletedSince(user.ID, startOfDay)
	if err != nil {
		return nil, err
	}

	stats, err := s.sessions.CategoryStats(user.ID)
	if err != nil {
		return nil, err
	}

	assignments, err := s.assignments.ListForStudent(user.ID)
	if err != nil {
		return nil, err
	}

	return &models.StudentDashboard{
		User:             user,
		Profile:          profile,
		RecentSessions:   recent,
		RecommendedGames: recommended,
		CompletedToday:   today,
		CategoryStats:    stats,
		Assignments:      assignments,
	}, nil
}

// recommend prefers games the student has not finished yet, and among
// those the ones aimed at the student's learning needs.
func (s *StudentService) recommend(userID int64, profile *models.StudentProfile) ([]models.Game, error) {
	games, err := s.games.ListActiveGames()
	if err != nil {
		return nil, err
	}
	played, err := s.sessions.PlayedGameIDs(userID)
	if err != nil {
		return nil, err
	}

	var needs []string
	if profile != nil {
		needs = profile.LearningDisabilities
	}
	rank := func(g models.Game) int {
		r := 0
		if lo.Contains(played, g.ID) {
			r += 2
		}
		if len(needs) > 0 && !lo.Some(g.TargetDisabilities, needs) {
			r++
		}
		return r
	}

	slices.SortStableFunc(games, func(a, b models.Game) int { return rank(a) - rank(b) })
	if len(games) > dashboardRecommended {
		games = games[:dashboardRecommended]
	}
	if games == nil {
		games = []models.Game{}
	}
	return games, nil
}

// Achievements evaluates the badge catalogue for the student
func (s *StudentService) Achievements(userID int64) (*models.AchievementSummary, error) {
	stats, err := s.sessions.Stats(userID)
	if err != nil {
		return nil, err
	}
	categories, err := s.sessions.CategoryStats(userID)
	if err != nil {
		return nil, err
	}
	dates, err := s.sessions.PlayDates(userID, StreakLookback)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetStudentProfile(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	in := AchievementInputs{
		GamesCompleted: stats.CompletedSessions,
		AverageScore:   stats.AverageScore,
		PerfectGames:   stats.PerfectGames,
		QuickGames:     stats.QuickGames,
		Streak:         CurrentStreak(dates, s.now()),
		PerCategory: lo.SliceToMap(categories, func(c models.CategoryStats) (string, int) {
			return c.Category, c.GamesPlayed
		}),
	}
	if profile != nil {
		in.Points = profile.Points
	}

	summary := EvaluateAchievements(in)
	return &summary, nil
}

// Assignments lists the student's assignments
func (s *StudentService) Assignments(userID int64) ([]models.StudentAssignment, error) {
	return s.assignments.ListForStudent(userID)
}
