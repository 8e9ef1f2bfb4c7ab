package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"learnplay/internal/database"
)

const backupVersion = "1.0"

// BackupData represents the complete database backup structure
type BackupData struct {
	Version         string             `json:"version"`
	ExportedAt      time.Time          `json:"exported_at"`
	Users           []UserBackup       `json:"users"`
	StudentProfiles []StudentBackup    `json:"student_profiles"`
	TeacherProfiles []TeacherBackup    `json:"teacher_profiles"`
	Rosters         []RosterBackup     `json:"rosters"`
	Games           []GameBackup       `json:"games"`
	Sessions        []SessionBackup    `json:"game_sessions"`
	Assignments     []AssignmentBackup `json:"assignments"`
	Submissions     []SubmissionBackup `json:"submissions"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	FullName      string    `json:"full_name"`
	Role          string    `json:"role"`
	OAuthProvider string    `json:"oauth_provider"`
	OAuthSubject  string    `json:"oauth_subject"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StudentBackup represents a student profile
type StudentBackup struct {
	UserID               int64  `json:"user_id"`
	GradeLevel           int    `json:"grade_level"`
	LearningDisabilities string `json:"learning_disabilities"`
	Points               int    `json:"points"`
	Level                int    `json:"level"`
}

// TeacherBackup represents a teacher profile
type TeacherBackup struct {
	UserID         int64  `json:"user_id"`
	Specialization string `json:"specialization"`
}

// RosterBackup links a teacher to a student
type RosterBackup struct {
	TeacherID int64 `json:"teacher_id"`
	StudentID int64 `json:"student_id"`
}

// GameBackup represents a catalogue entry
type GameBackup struct {
	ID                 int64  `json:"id"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	Category           string `json:"category"`
	DifficultyLevel    string `json:"difficulty_level"`
	DurationMinutes    int    `json:"duration_minutes"`
	TargetDisabilities string `json:"target_disabilities"`
	IsActive           bool   `json:"is_active"`
}

// SessionBackup represents a recorded play-through
type SessionBackup struct {
	ID               int64      `json:"id"`
	StudentID        int64      `json:"student_id"`
	GameID           int64      `json:"game_id"`
	StartedAt        time.Time  `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at"`
	Score            int        `json:"score"`
	TimeSpentSeconds int        `json:"time_spent_seconds"`
}

// AssignmentBackup represents an assignment and its targets
type AssignmentBackup struct {
	ID          int64      `json:"id"`
	TeacherID   int64      `json:"teacher_id"`
	GameID      int64      `json:"game_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	Students    []int64    `json:"students"`
}

// SubmissionBackup represents a completed assignment
type SubmissionBackup struct {
	AssignmentID  int64     `json:"assignment_id"`
	StudentID     int64     `json:"student_id"`
	GameSessionID int64     `json:"game_session_id"`
	Score         int       `json:"score"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	backup, err := s.ExportToWriter(file)
	if err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	log.Printf("Exported: %d users, %d games, %d sessions, %d assignments",
		len(backup.Users), len(backup.Games), len(backup.Sessions), len(backup.Assignments))
	return nil
}

// ExportToWriter writes a backup as indented JSON to w
func (s *BackupService) ExportToWriter(w io.Writer) (*BackupData, error) {
	backup := &BackupData{Version: backupVersion, ExportedAt: time.Now().UTC()}

	steps := []struct {
		name string
		fn   func(*BackupData) error
	}{
		{"users", s.exportUsers},
		{"profiles", s.exportProfiles},
		{"rosters", s.exportRosters},
		{"games", s.exportGames},
		{"sessions", s.exportSessions},
		{"assignments", s.exportAssignments},
		{"submissions", s.exportSubmissions},
	}
	for _, step := range steps {
		if err := step.fn(backup); err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", step.name, err)
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return backup, nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a backup read from r in a single transaction.
// The target database is expected to be freshly migrated.
func (s *BackupService) ImportFromReader(r io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	err := s.db.WithTx(func(tx *database.Tx) error {
		// Seeded games are replaced by the backed-up catalogue
		if _, err := tx.Exec("DELETE FROM games"); err != nil {
			return fmt.Errorf("failed to clear games: %w", err)
		}
		if err := importUsers(tx, &backup); err != nil {
			return err
		}
		if err := importGames(tx, &backup); err != nil {
			return err
		}
		if err := importSessions(tx, &backup); err != nil {
			return err
		}
		return importAssignments(tx, &backup)
	})
	if err != nil {
		return err
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	query := "SELECT id, email, password_hash, full_name, role, COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), created_at, updated_at FROM users ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role, &u.OAuthProvider, &u.OAuthSubject, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportProfiles(backup *BackupData) error {
	rows, err := s.db.Query("SELECT user_id, grade_level, learning_disabilities, points, level FROM student_profiles ORDER BY user_id")
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var p StudentBackup
		if err := rows.Scan(&p.UserID, &p.GradeLevel, &p.LearningDisabilities, &p.Points, &p.Level); err != nil {
			return err
		}
		backup.StudentProfiles = append(backup.StudentProfiles, p)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	teacherRows, err := s.db.Query("SELECT user_id, specialization FROM teacher_profiles ORDER BY user_id")
	if err != nil {
		return err
	}
	defer teacherRows.Close()
	for teacherRows.Next() {
		var p TeacherBackup
		if err := teacherRows.Scan(&p.UserID, &p.Specialization); err != nil {
			return err
		}
		backup.TeacherProfiles = append(backup.TeacherProfiles, p)
	}
	return teacherRows.Err()
}

func (s *BackupService) exportRosters(backup *BackupData) error {
	rows, err := s.db.Query("SELECT teacher_id, student_id FROM teacher_students ORDER BY teacher_id, student_id")
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var r RosterBackup
		if err := rows.Scan(&r.TeacherID, &r.StudentID); err != nil {
			return err
		}
		backup.Rosters = append(backup.Rosters, r)
	}
	return rows.Err()
}

func (s *BackupService) exportGames(backup *BackupData) error {
	query := "SELECT id, title, description, category, difficulty_level, duration_minutes, target_disabilities, is_active FROM games ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var g GameBackup
		if err := rows.Scan(&g.ID, &g.Title, &g.Description, &g.Category, &g.DifficultyLevel, &g.DurationMinutes, &g.TargetDisabilities, &g.IsActive); err != nil {
			return err
		}
		backup.Games = append(backup.Games, g)
	}
	return rows.Err()
}

func (s *BackupService) exportSessions(backup *BackupData) error {
	query := "SELECT id, student_id, game_id, started_at, completed_at, score, time_spent_seconds FROM game_sessions ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var gs SessionBackup
		var completedAt sql.NullTime
		if err := rows.Scan(&gs.ID, &gs.StudentID, &gs.GameID, &gs.StartedAt, &completedAt, &gs.Score, &gs.TimeSpentSeconds); err != nil {
			return err
		}
		if completedAt.Valid {
			gs.CompletedAt = &completedAt.Time
		}
		backup.Sessions = append(backup.Sessions, gs)
	}
	return rows.Err()
}

func (s *BackupService) exportAssignments(backup *BackupData) error {
	rows, err := s.db.Query("SELECT id, teacher_id, game_id, title, description, due_date, created_at FROM assignments ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var a AssignmentBackup
		var due sql.NullTime
		if err := rows.Scan(&a.ID, &a.TeacherID, &a.GameID, &a.Title, &a.Description, &due, &a.CreatedAt); err != nil {
			return err
		}
		if due.Valid {
			a.DueDate = &due.Time
		}
		backup.Assignments = append(backup.Assignments, a)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range backup.Assignments {
		targetRows, err := s.db.Query("SELECT student_id FROM assignment_targets WHERE assignment_id = ? ORDER BY student_id", backup.Assignments[i].ID)
		if err != nil {
			return err
		}
		for targetRows.Next() {
			var id int64
			if err := targetRows.Scan(&id); err != nil {
				targetRows.Close()
				return err
			}
			backup.Assignments[i].Students = append(backup.Assignments[i].Students, id)
		}
		targetRows.Close()
	}
	return nil
}

func (s *BackupService) exportSubmissions(backup *BackupData) error {
	rows, err := s.db.Query("SELECT assignment_id, student_id, game_session_id, score, submitted_at FROM assignment_submissions ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var sub SubmissionBackup
		if err := rows.Scan(&sub.AssignmentID, &sub.StudentID, &sub.GameSessionID, &sub.Score, &sub.SubmittedAt); err != nil {
			return err
		}
		backup.Submissions = append(backup.Submissions, sub)
	}
	return rows.Err()
}

func importUsers(tx *database.Tx, backup *BackupData) error {
	log.Printf("Importing %d users...", len(backup.Users))
	for _, u := range backup.Users {
		query := "INSERT INTO users (id, email, password_hash, full_name, role, oauth_provider, oauth_subject, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"
		if _, err := tx.Exec(query, u.ID, u.Email, u.PasswordHash, u.FullName, u.Role, nullIfEmpty(u.OAuthProvider), nullIfEmpty(u.OAuthSubject), u.CreatedAt, u.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import user %d: %w", u.ID, err)
		}
	}
	for _, p := range backup.StudentProfiles {
		query := "INSERT INTO student_profiles (user_id, grade_level, learning_disabilities, points, level) VALUES (?, ?, ?, ?, ?)"
		if _, err := tx.Exec(query, p.UserID, p.GradeLevel, p.LearningDisabilities, p.Points, p.Level); err != nil {
			return fmt.Errorf("failed to import student profile %d: %w", p.UserID, err)
		}
	}
	for _, p := range backup.TeacherProfiles {
		if _, err := tx.Exec("INSERT INTO teacher_profiles (user_id, specialization) VALUES (?, ?)", p.UserID, p.Specialization); err != nil {
			return fmt.Errorf("failed to import teacher profile %d: %w", p.UserID, err)
		}
	}
	for _, r := range backup.Rosters {
		if _, err := tx.Exec("INSERT INTO teacher_students (teacher_id, student_id) VALUES (?, ?)", r.TeacherID, r.StudentID); err != nil {
			return fmt.Errorf("failed to import roster entry %d/%d: %w", r.TeacherID, r.StudentID, err)
		}
	}
	return nil
}

func importGames(tx *database.Tx, backup *BackupData) error {
	log.Printf("Importing %d games...", len(backup.Games))
	for _, g := range backup.Games {
		query := "INSERT INTO games (id, title, description, category, difficulty_level, duration_minutes, target_disabilities, is_active) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
		if _, err := tx.Exec(query, g.ID, g.Title, g.Description, g.Category, g.DifficultyLevel, g.DurationMinutes, g.TargetDisabilities, g.IsActive); err != nil {
			return fmt.Errorf("failed to import game %d: %w", g.ID, err)
		}
	}
	return nil
}

func importSessions(tx *database.Tx, backup *BackupData) error {
	log.Printf("Importing %d game sessions...", len(backup.Sessions))
	for _, gs := range backup.Sessions {
		var completedAt interface{}
		if gs.CompletedAt != nil {
			completedAt = *gs.CompletedAt
		}
		query := "INSERT INTO game_sessions (id, student_id, game_id, started_at, completed_at, score, time_spent_seconds) VALUES (?, ?, ?, ?, ?, ?, ?)"
		if _, err := tx.Exec(query, gs.ID, gs.StudentID, gs.GameID, gs.StartedAt, completedAt, gs.Score, gs.TimeSpentSeconds); err != nil {
			return fmt.Errorf("failed to import game session %d: %w", gs.ID, err)
		}
	}
	return nil
}

func importAssignments(tx *database.Tx, backup *BackupData) error {
	log.Printf("Importing %d assignments...", len(backup.Assignments))
	for _, a := range backup.Assignments {
		var due interface{}
		if a.DueDate != nil {
			due = *a.DueDate
		}
		query := "INSERT INTO assignments (id, teacher_id, game_id, title, description, due_date, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
		if _, err := tx.Exec(query, a.ID, a.TeacherID, a.GameID, a.Title, a.Description, due, a.CreatedAt); err != nil {
			return fmt.Errorf("failed to import assignment %d: %w", a.ID, err)
		}
		for _, studentID := range a.Students {
			if _, err := tx.Exec("INSERT INTO assignment_targets (assignment_id, student_id) VALUES (?, ?)", a.ID, studentID); err != nil {
				return fmt.Errorf("failed to import target %d of assignment %d: %w", studentID, a.ID, err)
			}
		}
	}
	for _, sub := range backup.Submissions {
		query := "INSERT INTO assignment_submissions (assignment_id, student_id, game_session_id, score, submitted_at) VALUES (?, ?, ?, ?, ?)"
		if _, err := tx.Exec(query, sub.AssignmentID, sub.StudentID, sub.GameSessionID, sub.Score, sub.SubmittedAt); err != nil {
			return fmt.Errorf("failed to import submission for assignment %d: %w", sub.AssignmentID, err)
		}
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
