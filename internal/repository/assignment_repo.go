package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"learnplay/internal/database"
	"learnplay/internal/models"
)

// AssignmentRepository handles teacher assignments and their submissions
type AssignmentRepository struct {
	db *database.DB
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *database.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// CreateAssignment stores an assignment and its target students in one transaction
func (r *AssignmentRepository) CreateAssignment(a *models.Assignment, studentIDs []int64) (int64, error) {
	var id int64
	err := r.db.WithTx(func(tx *database.Tx) error {
		a.CreatedAt = time.Now().UTC()
		var due any
		if a.DueDate != nil {
			due = a.DueDate.UTC()
		}

		query := `
			INSERT INTO assignments (teacher_id, game_id, title, description, due_date, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`
		newID, err := tx.ExecReturningID(query, a.TeacherID, a.GameID, a.Title, a.Description, due, a.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create assignment: %w", err)
		}
		id = newID

		for _, studentID := range studentIDs {
			if _, err := tx.Exec(`INSERT INTO assignment_targets (assignment_id, student_id) VALUES (?, ?)`, id, studentID); err != nil {
				return fmt.Errorf("failed to add assignment target: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	a.ID = id
	a.TargetCount = len(studentIDs)
	return id, nil
}

func scanAssignment(row interface{ Scan(...any) error }, extra ...any) (*models.Assignment, error) {
	a := &models.Assignment{}
	var due sql.NullTime
	dest := append([]any{&a.ID, &a.TeacherID, &a.GameID, &a.Title, &a.Description, &due, &a.CreatedAt, &a.GameTitle}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if due.Valid {
		t := due.Time
		a.DueDate = &t
	}
	return a, nil
}

// ListForTeacher returns a teacher's assignments with target and submission counts, newest first
func (r *AssignmentRepository) ListForTeacher(teacherID int64) ([]models.Assignment, error) {
	query := `
		SELECT a.id, a.teacher_id, a.game_id, a.title, a.description, a.due_date, a.created_at, g.title,
		       (SELECT COUNT(*) FROM assignment_targets t WHERE t.assignment_id = a.id),
		       (SELECT COUNT(*) FROM assignment_submissions s WHERE s.assignment_id = a.id)
		FROM assignments a
		JOIN games g ON g.id = a.game_id
		WHERE a.teacher_id = ?
		ORDER BY a.created_at DESC, a.id DESC
	`
	rows, err := r.db.Query(query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	assignments := []models.Assignment{}
	for rows.Next() {
		var targets, submissions int
		a, err := scanAssignment(rows, &targets, &submissions)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		a.TargetCount = targets
		a.SubmissionCount = submissions
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

// ListForStudent returns the assignments targeting a student, marking the completed ones
func (r *AssignmentRepository) ListForStudent(studentID int64) ([]models.StudentAssignment, error) {
	query := `
		SELECT a.id, a.teacher_id, a.game_id, a.title, a.description, a.due_date, a.created_at, g.title,
		       s.score
		FROM assignments a
		JOIN assignment_targets t ON t.assignment_id = a.id
		JOIN games g ON g.id = a.game_id
		LEFT JOIN assignment_submissions s ON s.assignment_id = a.id AND s.student_id = t.student_id
		WHERE t.student_id = ?
		ORDER BY a.created_at DESC, a.id DESC
	`
	rows, err := r.db.Query(query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list student assignments: %w", err)
	}
	defer rows.Close()

	assignments := []models.StudentAssignment{}
	for rows.Next() {
		var score sql.NullInt64
		a, err := scanAssignment(rows, &score)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		sa := models.StudentAssignment{Assignment: *a, Completed: score.Valid}
		if score.Valid {
			v := int(score.Int64)
			sa.Score = &v
		}
		assignments = append(assignments, sa)
	}
	return assignments, rows.Err()
}

// OpenAssignmentIDs returns the unsubmitted assignments of a student for a game
func (r *AssignmentRepository) OpenAssignmentIDs(studentID, gameID int64) ([]int64, error) {
	query := `
		SELECT a.id
		FROM assignments a
		JOIN assignment_targets t ON t.assignment_id = a.id
		LEFT JOIN assignment_submissions s ON s.assignment_id = a.id AND s.student_id = t.student_id
		WHERE t.student_id = ? AND a.game_id = ? AND s.id IS NULL
	`
	rows, err := r.db.Query(query, studentID, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get open assignments: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan assignment id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RecordSubmission links a completed session to an assignment. The first
// submission per student wins; later ones are ignored.
func (r *AssignmentRepository) RecordSubmission(assignmentID, studentID, sessionID int64, score int) (bool, error) {
	recorded := false
	err := r.db.WithTx(func(tx *database.Tx) error {
		var existing int64
		err := tx.QueryRow(`SELECT id FROM assignment_submissions WHERE assignment_id = ? AND student_id = ?`,
			assignmentID, studentID).Scan(&existing)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check submission: %w", err)
		}

		query := `
			INSERT INTO assignment_submissions (assignment_id, student_id, game_session_id, score, submitted_at)
			VALUES (?, ?, ?, ?, ?)
		`
		if _, err := tx.Exec(query, assignmentID, studentID, sessionID, score, time.Now().UTC()); err != nil {
			return fmt.Errorf("failed to record submission: %w", err)
		}
		recorded = true
		return nil
	})
	return recorded, err
}

// TargetStudentIDs returns the students an assignment was set for
func (r *AssignmentRepository) TargetStudentIDs(assignmentID int64) ([]int64, error) {
	rows, err := r.db.Query(`SELECT student_id FROM assignment_targets WHERE assignment_id = ?`, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment targets: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan student id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
