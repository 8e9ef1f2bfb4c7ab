package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"learnplay/internal/database"
	"learnplay/internal/models"
)

// ProfileRepository handles student and teacher profiles
type ProfileRepository struct {
	db *database.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *database.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// CreateStudentProfile inserts a fresh level 1 profile
func (r *ProfileRepository) CreateStudentProfile(userID int64, gradeLevel int, disabilities []string) error {
	return createStudentProfile(r.db, userID, gradeLevel, disabilities)
}

func createStudentProfile(q database.DBTX, userID int64, gradeLevel int, disabilities []string) error {
	query := `
		INSERT INTO student_profiles (user_id, grade_level, learning_disabilities, points, level, updated_at)
		VALUES (?, ?, ?, 0, 1, ?)
	`
	if _, err := q.Exec(query, userID, gradeLevel, models.JoinTags(disabilities), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to create student profile: %w", err)
	}
	return nil
}

// GetStudentProfile retrieves a student's profile, or nil if none exists
func (r *ProfileRepository) GetStudentProfile(userID int64) (*models.StudentProfile, error) {
	query := `
		SELECT user_id, grade_level, learning_disabilities, points, level, updated_at
		FROM student_profiles
		WHERE user_id = ?
	`
	p := &models.StudentProfile{}
	var tags string
	err := r.db.QueryRow(query, userID).Scan(&p.UserID, &p.GradeLevel, &tags, &p.Points, &p.Level, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student profile: %w", err)
	}
	p.LearningDisabilities = models.SplitTags(tags)
	return p, nil
}

// AddPoints credits earned points and recomputes the level. It returns the
// profile before and after the update, or nils when the student has no profile.
func (r *ProfileRepository) AddPoints(userID int64, earned int) (before, after *models.StudentProfile, err error) {
	err = r.db.WithTx(func(tx *database.Tx) error {
		var points, level int
		row := tx.QueryRow(`SELECT points, level FROM student_profiles WHERE user_id = ?`, userID)
		if err := row.Scan(&points, &level); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return fmt.Errorf("failed to read points: %w", err)
		}

		newPoints := points + earned
		newLevel := models.LevelForPoints(newPoints)
		query := `UPDATE student_profiles SET points = ?, level = ?, updated_at = ? WHERE user_id = ?`
		if _, err := tx.Exec(query, newPoints, newLevel, time.Now().UTC(), userID); err != nil {
			return fmt.Errorf("failed to update points: %w", err)
		}

		before = &models.StudentProfile{UserID: userID, Points: points, Level: level}
		after = &models.StudentProfile{UserID: userID, Points: newPoints, Level: newLevel}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

// CreateTeacherProfile inserts a teacher profile
func (r *ProfileRepository) CreateTeacherProfile(userID int64, specialization string) error {
	return createTeacherProfile(r.db, userID, specialization)
}

func createTeacherProfile(q database.DBTX, userID int64, specialization string) error {
	if _, err := q.Exec(`INSERT INTO teacher_profiles (user_id, specialization) VALUES (?, ?)`, userID, specialization); err != nil {
		return fmt.Errorf("failed to create teacher profile: %w", err)
	}
	return nil
}

// GetTeacherProfile retrieves a teacher's profile, or nil if none exists
func (r *ProfileRepository) GetTeacherProfile(userID int64) (*models.TeacherProfile, error) {
	p := &models.TeacherProfile{}
	err := r.db.QueryRow(`SELECT user_id, specialization FROM teacher_profiles WHERE user_id = ?`, userID).
		Scan(&p.UserID, &p.Specialization)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get teacher profile: %w", err)
	}
	return p, nil
}
