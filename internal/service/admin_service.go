package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/samber/lo"

	"learnplay/internal/models"
	"learnplay/internal/repository"
)

const adminRecentSessions = 10

var (
	ErrCannotDeleteSelf = errors.New("cannot delete your own account")
	ErrTeacherNotFound  = errors.New("teacher not found")
)

// WelcomeNotifier sends sign-in details to new accounts
type WelcomeNotifier interface {
	SendWelcomeEmail(ctx context.Context, toEmail, toName, temporaryPassword string) error
}

// CreatedUser is an account together with the password it was given
type CreatedUser struct {
	User              *models.User `json:"user"`
	TemporaryPassword string       `json:"temporaryPassword"`
}

// AdminService runs the platform-wide views and user management
type AdminService struct {
	users    *repository.UserRepository
	games    *repository.GameRepository
	sessions *repository.GameSessionRepository
	teachers *repository.TeacherRepository
	auth     *AuthService
	notifier WelcomeNotifier
	now      func() time.Time
}

// NewAdminService creates a new admin service
func NewAdminService(
	users *repository.UserRepository,
	games *repository.GameRepository,
	sessions *repository.GameSessionRepository,
	teachers *repository.TeacherRepository,
	auth *AuthService,
	notifier WelcomeNotifier,
) *AdminService {
	return &AdminService{
		users:    users,
		games:    games,
		sessions: sessions,
		teachers: teachers,
		auth:     auth,
		notifier: notifier,
		now:      time.Now,
	}
}

// Stats returns the platform counters
func (s *AdminService) Stats() (*models.AdminStats, error) {
	var stats models.AdminStats
	var err error

	if stats.TotalStudents, err = s.users.CountByRole(models.RoleStudent); err != nil {
		return nil, err
	}
	if stats.TotalTeachers, err = s.users.CountByRole(models.RoleTeacher); err != nil {
		return nil, err
	}
	if stats.TotalGames, err = s.games.CountGames(); err != nil {
		return nil, err
	}
	if stats.TotalSessions, err = s.sessions.CountSessions(time.Time{}); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if stats.SessionsToday, err = s.sessions.CountSessions(midnight); err != nil {
		return nil, err
	}
	if stats.RecentSessions, err = s.sessions.RecentAll(adminRecentSessions); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Users lists every account with its profile fields
func (s *AdminService) Users() ([]models.UserListItem, error) {
	users, err := s.users.ListUsers()
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.UserListItem{}
	}
	return users, nil
}

// CreateUser creates an account, optionally puts a new student on a
// teacher's roster, and emails the sign-in details.
func (s *AdminService) CreateUser(ctx context.Context, req NewUser, teacherID int64) (*CreatedUser, error) {
	user, password, err := s.auth.CreateUser(req)
	if err != nil {
		return nil, err
	}

	if teacherID != 0 && user.Role == models.RoleStudent {
		if err := s.AssignStudent(teacherID, user.ID); err != nil {
			log.Printf("Failed to put student %d on teacher %d's roster: %v", user.ID, teacherID, err)
		}
	}

	if s.notifier != nil {
		if err := s.notifier.SendWelcomeEmail(ctx, user.Email, user.FullName, password); err != nil {
			log.Printf("Failed to send welcome email to %s: %v", user.Email, err)
		}
	}
	return &CreatedUser{User: user, TemporaryPassword: password}, nil
}

// AssignStudent puts a student on a teacher's roster. Rosters gate what a
// teacher can see, so only admins change them.
func (s *AdminService) AssignStudent(teacherID, studentID int64) error {
	teacher, err := s.users.GetUserByID(teacherID)
	if err != nil {
		return err
	}
	if teacher == nil || teacher.Role != models.RoleTeacher {
		return ErrTeacherNotFound
	}
	student, err := s.teachers.GetStudent(studentID)
	if err != nil {
		return err
	}
	if student == nil {
		return ErrStudentNotFound
	}
	return s.teachers.AssignStudent(teacherID, studentID)
}

// UnassignStudent takes a student off a teacher's roster
func (s *AdminService) UnassignStudent(teacherID, studentID int64) error {
	return s.teachers.RemoveStudent(teacherID, studentID)
}

// DeleteUser removes an account other than the caller's
func (s *AdminService) DeleteUser(callerID, userID int64) error {
	if callerID == userID {
		return ErrCannotDeleteSelf
	}
	return s.users.DeleteUser(userID)
}

// GamesByCategory returns the whole catalogue grouped by category
func (s *AdminService) GamesByCategory() (map[string][]models.Game, error) {
	games, err := s.games.ListAllGames()
	if err != nil {
		return nil, err
	}
	return lo.GroupBy(games, func(g models.Game) string { return g.Category }), nil
}

// SetGameActive shows or hides a game
func (s *AdminService) SetGameActive(gameID int64, active bool) error {
	g, err := s.games.GetGame(gameID)
	if err != nil {
		return err
	}
	if g == nil {
		return repository.ErrGameNotFound
	}
	return s.games.SetActive(gameID, active)
}
