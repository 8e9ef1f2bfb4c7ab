package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/samber/lo"

	"learnplay/internal/models"
	"learnplay/internal/repository"
	"learnplay/internal/validation"
)

const (
	detailSessionLimit          = 20
	teacherRecentActivity       = 10
	teacherDashboardAssignments = 10
)

var (
	ErrStudentNotFound  = errors.New("student not found")
	ErrNotOnRoster      = errors.New("student is not on your roster")
	ErrNoTargetStudents = errors.New("assignment has no students")
)

// AssignmentNotifier tells students about new assignments
type AssignmentNotifier interface {
	SendAssignmentEmail(ctx context.Context, toEmail, toName, title, gameTitle string, due *time.Time) error
}

// NewAssignment is a teacher's request to set a game
type NewAssignment struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	GameID      int64      `json:"gameId"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	StudentIDs  []int64    `json:"students"`
}

// AssignmentData is what the new-assignment form is built from
type AssignmentData struct {
	Students []models.StudentSummary `json:"students"`
	Games    []models.Game           `json:"games"`
}

// TeacherService serves a teacher's view of their students
type TeacherService struct {
	teachers    *repository.TeacherRepository
	sessions    *repository.GameSessionRepository
	games       *repository.GameRepository
	assignments *repository.AssignmentRepository
	ai          *AIService
	notifier    AssignmentNotifier
	now         func() time.Time
}

// NewTeacherService creates a new teacher service
func NewTeacherService(
	teachers *repository.TeacherRepository,
	sessions *repository.GameSessionRepository,
	games *repository.GameRepository,
	assignments *repository.AssignmentRepository,
	ai *AIService,
	notifier AssignmentNotifier,
) *TeacherService {
	return &TeacherService{
		teachers:    teachers,
		sessions:    sessions,
		games:       games,
		assignments: assignments,
		ai:          ai,
		notifier:    notifier,
		now:         time.Now,
	}
}

// Students returns the teacher's roster
func (s *TeacherService) Students(teacherID int64) ([]models.StudentSummary, error) {
	return s.teachers.ListStudents(teacherID)
}

// RemoveStudent takes a student off the teacher's roster
func (s *TeacherService) RemoveStudent(teacherID, studentID int64) error {
	return s.teachers.RemoveStudent(teacherID, studentID)
}

func (s *TeacherService) rosterStudent(teacherID, studentID int64) (*models.StudentSummary, error) {
	ok, err := s.teachers.IsTeacherOf(teacherID, studentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrStudentNotFound
	}
	student, err := s.teachers.GetStudent(studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}
	return student, nil
}

// StudentDetail returns one roster student's recent play and aggregates
func (s *TeacherService) StudentDetail(teacherID, studentID int64) (*models.StudentDetail, error) {
	student, err := s.rosterStudent(teacherID, studentID)
	if err != nil {
		return nil, err
	}

	recent, err := s.sessions.RecentSessions(studentID, detailSessionLimit)
	if err != nil {
		return nil, err
	}
	stats, err := s.sessions.CategoryStats(studentID)
	if err != nil {
		return nil, err
	}

	completed := lo.Filter(recent, func(gs models.GameSession, _ int) bool { return gs.IsCompleted() })
	avg := 0
	if len(completed) > 0 {
		total := lo.SumBy(completed, func(gs models.GameSession) int { return gs.Score })
		avg = int(math.Round(float64(total) / float64(len(completed))))
	}
	seconds := lo.SumBy(recent, func(gs models.GameSession) int { return gs.TimeSpentSeconds })

	return &models.StudentDetail{
		Student:         *student,
		RecentSessions:  recent,
		CategoryStats:   stats,
		AverageScore:    avg,
		PlayTimeMinutes: int(math.Round(float64(seconds) / 60)),
	}, nil
}

// AnalysisData returns the inputs of an AI analysis for a roster student
func (s *TeacherService) AnalysisData(teacherID, studentID int64) (*AnalysisInput, error) {
	student, err := s.rosterStudent(teacherID, studentID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessions.RecentSessions(studentID, detailSessionLimit)
	if err != nil {
		return nil, err
	}
	return &AnalysisInput{Student: *student, Sessions: sessions}, nil
}

// Analyze produces an AI performance summary of a roster student
func (s *TeacherService) Analyze(ctx context.Context, teacherID, studentID int64) (*models.AIAnalysis, error) {
	in, err := s.AnalysisData(teacherID, studentID)
	if err != nil {
		return nil, err
	}
	return s.ai.Analyze(ctx, *in)
}

// AssignmentData returns the roster and the catalogue
func (s *TeacherService) AssignmentData(teacherID int64) (*AssignmentData, error) {
	students, err := s.teachers.ListStudents(teacherID)
	if err != nil {
		return nil, err
	}
	games, err := s.games.ListAllGames()
	if err != nil {
		return nil, err
	}
	if games == nil {
		games = []models.Game{}
	}
	return &AssignmentData{Students: students, Games: games}, nil
}

// CreateAssignment sets a game for some roster students, or the whole roster
// when none are named, and emails each of them.
func (s *TeacherService) CreateAssignment(ctx context.Context, teacherID int64, req NewAssignment) (*models.Assignment, error) {
	if err := validation.ValidateAssignmentTitle(req.Title); err != nil {
		return nil, err
	}
	if err := validation.ValidateDueDate(req.DueDate, s.now()); err != nil {
		return nil, err
	}

	g, err := s.games.GetGame(req.GameID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGameUnavailable
	}

	roster, err := s.teachers.ListStudents(teacherID)
	if err != nil {
		return nil, err
	}
	byID := lo.KeyBy(roster, func(st models.StudentSummary) int64 { return st.ID })

	targets := lo.Uniq(req.StudentIDs)
	if len(targets) == 0 {
		targets = lo.Map(roster, func(st models.StudentSummary, _ int) int64 { return st.ID })
	}
	if len(targets) == 0 {
		return nil, ErrNoTargetStudents
	}
	if missing := lo.Filter(targets, func(id int64, _ int) bool { _, ok := byID[id]; return !ok }); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrNotOnRoster, missing)
	}

	a := &models.Assignment{
		TeacherID:   teacherID,
		GameID:      g.ID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		GameTitle:   g.Title,
	}
	if _, err := s.assignments.CreateAssignment(a, targets); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		for _, id := range targets {
			st := byID[id]
			if err := s.notifier.SendAssignmentEmail(ctx, st.Email, st.FullName, a.Title, g.Title, a.DueDate); err != nil {
				log.Printf("Failed to email assignment %d to student %d: %v", a.ID, id, err)
			}
		}
	}
	return a, nil
}

// Assignments lists the teacher's assignments with progress counts
func (s *TeacherService) Assignments(teacherID int64) ([]models.Assignment, error) {
	return s.assignments.ListForTeacher(teacherID)
}

// Dashboard assembles the teacher's landing page
func (s *TeacherService) Dashboard(user *models.User) (*models.TeacherDashboard, error) {
	students, err := s.teachers.ListStudents(user.ID)
	if err != nil {
		return nil, err
	}
	activity, err := s.sessions.RecentForTeacher(user.ID, teacherRecentActivity)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignments.ListForTeacher(user.ID)
	if err != nil {
		return nil, err
	}

	return &models.TeacherDashboard{
		User:           user,
		Students:       students,
		RecentActivity: activity,
		Assignments:    lo.Slice(assignments, 0, teacherDashboardAssignments),
	}, nil
}
