package repository

import (
	"fmt"
	"math"
	"time"

	"learnplay/internal/database"
	"learnplay/internal/models"
)

// TeacherRepository handles the teacher to student roster
type TeacherRepository struct {
	db *database.DB
}

// NewTeacherRepository creates a new teacher repository
func NewTeacherRepository(db *database.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// AssignStudent puts a student on a teacher's roster. Re-adding is a no-op.
func (r *TeacherRepository) AssignStudent(teacherID, studentID int64) error {
	linked, err := r.IsTeacherOf(teacherID, studentID)
	if err != nil {
		return err
	}
	if linked {
		return nil
	}
	query := `INSERT INTO teacher_students (teacher_id, student_id, created_at) VALUES (?, ?, ?)`
	if _, err := r.db.Exec(query, teacherID, studentID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to assign student: %w", err)
	}
	return nil
}

// RemoveStudent takes a student off a teacher's roster
func (r *TeacherRepository) RemoveStudent(teacherID, studentID int64) error {
	if _, err := r.db.Exec(`DELETE FROM teacher_students WHERE teacher_id = ? AND student_id = ?`, teacherID, studentID); err != nil {
		return fmt.Errorf("failed to remove student: %w", err)
	}
	return nil
}

// IsTeacherOf reports whether studentID is on teacherID's roster
func (r *TeacherRepository) IsTeacherOf(teacherID, studentID int64) (bool, error) {
	var n int
	query := `SELECT COUNT(*) FROM teacher_students WHERE teacher_id = ? AND student_id = ?`
	if err := r.db.QueryRow(query, teacherID, studentID).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check roster: %w", err)
	}
	return n > 0, nil
}

// TeacherIDsOf returns the teachers a student is assigned to
func (r *TeacherRepository) TeacherIDsOf(studentID int64) ([]int64, error) {
	rows, err := r.db.Query(`SELECT teacher_id FROM teacher_students WHERE student_id = ?`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get teachers: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan teacher id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const studentSummarySelect = `
	SELECT u.id, u.full_name, u.email,
	       COALESCE(sp.grade_level, 0), COALESCE(sp.learning_disabilities, ''),
	       COALESCE(sp.points, 0), COALESCE(sp.level, 1),
	       (SELECT COUNT(*) FROM game_sessions gs WHERE gs.student_id = u.id AND gs.completed_at IS NOT NULL),
	       (SELECT COALESCE(AVG(gs.score), 0) FROM game_sessions gs WHERE gs.student_id = u.id AND gs.completed_at IS NOT NULL)
	FROM users u
	LEFT JOIN student_profiles sp ON sp.user_id = u.id
`

func scanStudentSummary(row interface{ Scan(...any) error }) (*models.StudentSummary, error) {
	s := &models.StudentSummary{}
	var tags string
	var avg float64
	if err := row.Scan(&s.ID, &s.FullName, &s.Email, &s.GradeLevel, &tags, &s.Points, &s.Level,
		&s.GamesPlayed, &avg); err != nil {
		return nil, err
	}
	s.LearningDisabilities = models.SplitTags(tags)
	s.AverageScore = int(math.Round(avg))
	return s, nil
}

// ListStudents returns a teacher's roster ordered by name
func (r *TeacherRepository) ListStudents(teacherID int64) ([]models.StudentSummary, error) {
	query := studentSummarySelect + `
		JOIN teacher_students ts ON ts.student_id = u.id
		WHERE ts.teacher_id = ?
		ORDER BY u.full_name
	`
	rows, err := r.db.Query(query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	students := []models.StudentSummary{}
	for rows.Next() {
		s, err := scanStudentSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, *s)
	}
	return students, rows.Err()
}

// GetStudent returns one student's summary regardless of roster, or nil
func (r *TeacherRepository) GetStudent(studentID int64) (*models.StudentSummary, error) {
	query := studentSummarySelect + ` WHERE u.id = ? AND u.role = ?`
	rows, err := r.db.Query(query, studentID, string(models.RoleStudent))
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	s, err := scanStudentSummary(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan student: %w", err)
	}
	return s, nil
}
