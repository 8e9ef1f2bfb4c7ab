package service

import (
	"errors"
	"fmt"
	"log"

	"learnplay/internal/game"
	"learnplay/internal/models"
	"learnplay/internal/repository"
	"learnplay/internal/validation"
)

var (
	ErrNotStudent          = errors.New("only students can play games")
	ErrGameUnavailable     = errors.New("game not found or inactive")
	ErrGameSessionNotFound = errors.New("game session not found or already completed")
)

// GameSessionService records play-throughs and credits points
type GameSessionService struct {
	games       *repository.GameRepository
	sessions    *repository.GameSessionRepository
	profiles    *repository.ProfileRepository
	assignments *repository.AssignmentRepository
	ceiling     ScoreCeiling
}

// ScoreCeiling reports the highest score a play-through of a game can reach
type ScoreCeiling interface {
	MaxSessionScore(gameID int64) (int, error)
}

// NewGameSessionService creates a new game session service
func NewGameSessionService(
	games *repository.GameRepository,
	sessions *repository.GameSessionRepository,
	profiles *repository.ProfileRepository,
	assignments *repository.AssignmentRepository,
) *GameSessionService {
	return &GameSessionService{
		games:       games,
		sessions:    sessions,
		profiles:    profiles,
		assignments: assignments,
	}
}

// WithScoreCeiling rejects completions scoring above what the game can award
func (s *GameSessionService) WithScoreCeiling(c ScoreCeiling) *GameSessionService {
	s.ceiling = c
	return s
}

// Start opens a session of an active game for a student
func (s *GameSessionService) Start(user *models.User, gameID int64) (int64, error) {
	if !user.HasRole(models.RoleStudent) {
		return 0, ErrNotStudent
	}

	g, err := s.games.GetGame(gameID)
	if err != nil {
		return 0, err
	}
	if g == nil || !g.IsActive {
		return 0, ErrGameUnavailable
	}

	return s.sessions.StartSession(user.ID, gameID)
}

// Complete stores the final score, credits it as points and recomputes the
// level. A failing profile update still reports the completion as a success.
func (s *GameSessionService) Complete(user *models.User, req game.CompletionRequest) (*game.CompletionResult, error) {
	if !user.HasRole(models.RoleStudent) {
		return nil, ErrNotStudent
	}
	if err := validation.ValidateScore(req.Score); err != nil {
		return nil, err
	}
	if req.DurationSeconds < 0 {
		return nil, validation.ValidationError{Field: "duration", Message: "duration cannot be negative"}
	}

	session, err := s.sessions.GetSession(req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil || session.StudentID != user.ID {
		return nil, ErrGameSessionNotFound
	}
	if s.ceiling != nil {
		limit, err := s.ceiling.MaxSessionScore(session.GameID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve score ceiling: %w", err)
		}
		if err := validation.ValidateScoreAtMost(req.Score, limit); err != nil {
			return nil, err
		}
	}

	ok, err := s.sessions.CompleteSession(req.SessionID, user.ID, req.Score, req.DurationSeconds)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrGameSessionNotFound
	}

	s.recordSubmissions(user.ID, session.GameID, req)

	earned := req.Score
	result := &game.CompletionResult{Success: true, EarnedPoints: earned}

	before, after, err := s.profiles.AddPoints(user.ID, earned)
	if err != nil {
		log.Printf("Student profile update failed for user %d: %v", user.ID, err)
		return result, nil
	}
	if after == nil {
		return result, nil
	}

	result.NewPoints = after.Points
	result.NewLevel = after.Level
	result.LeveledUp = after.Level > before.Level
	return result, nil
}

// recordSubmissions marks open assignments for the session's game as done
func (s *GameSessionService) recordSubmissions(studentID, gameID int64, req game.CompletionRequest) {
	open, err := s.assignments.OpenAssignmentIDs(studentID, gameID)
	if err != nil {
		log.Printf("Could not load open assignments for student %d: %v", studentID, err)
		return
	}
	for _, id := range open {
		if _, err := s.assignments.RecordSubmission(id, studentID, req.SessionID, req.Score); err != nil {
			log.Printf("Failed to record submission for assignment %d: %v", id, err)
		}
	}
}

// Session returns one of the student's sessions
func (s *GameSessionService) Session(user *models.User, sessionID int64) (*models.GameSession, error) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil || session.StudentID != user.ID {
		return nil, ErrGameSessionNotFound
	}
	return session, nil
}
