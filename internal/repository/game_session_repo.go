package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"learnplay/internal/database"
	"learnplay/internal/models"
)

// PerfectScore is the score that counts as a perfect game
const PerfectScore = 100

// QuickGameSeconds is the duration under which a completed game counts as quick
const QuickGameSeconds = 120

// GameSessionRepository handles recorded play-throughs
type GameSessionRepository struct {
	db *database.DB
}

// NewGameSessionRepository creates a new game session repository
func NewGameSessionRepository(db *database.DB) *GameSessionRepository {
	return &GameSessionRepository{db: db}
}

const sessionSelect = `
	SELECT gs.id, gs.student_id, gs.game_id, gs.started_at, gs.completed_at, gs.score, gs.time_spent_seconds,
	       g.title, g.category
	FROM game_sessions gs
	JOIN games g ON g.id = gs.game_id
`

func scanSession(row interface{ Scan(...any) error }) (*models.GameSession, error) {
	s := &models.GameSession{}
	var completed sql.NullTime
	if err := row.Scan(&s.ID, &s.StudentID, &s.GameID, &s.StartedAt, &completed, &s.Score,
		&s.TimeSpentSeconds, &s.GameTitle, &s.Category); err != nil {
		return nil, err
	}
	if completed.Valid {
		t := completed.Time
		s.CompletedAt = &t
	}
	return s, nil
}

func (r *GameSessionRepository) listSessions(tail string, args ...any) ([]models.GameSession, error) {
	rows, err := r.db.Query(sessionSelect+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list game sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.GameSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// StartSession records a new play-through stamped now and returns its id
func (r *GameSessionRepository) StartSession(studentID, gameID int64) (int64, error) {
	query := `INSERT INTO game_sessions (student_id, game_id, started_at) VALUES (?, ?, ?)`
	id, err := r.db.ExecReturningID(query, studentID, gameID, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to start game session: %w", err)
	}
	return id, nil
}

// CompleteSession stores the final score of an open session owned by
// studentID. It reports false when no such open session exists.
func (r *GameSessionRepository) CompleteSession(sessionID, studentID int64, score, durationSeconds int) (bool, error) {
	query := `
		UPDATE game_sessions
		SET completed_at = ?, score = ?, time_spent_seconds = ?
		WHERE id = ? AND student_id = ? AND completed_at IS NULL
	`
	result, err := r.db.Exec(query, time.Now().UTC(), score, durationSeconds, sessionID, studentID)
	if err != nil {
		return false, fmt.Errorf("failed to complete game session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to complete game session: %w", err)
	}
	return n > 0, nil
}

// GetSession retrieves a session by ID, or nil if it does not exist
func (r *GameSessionRepository) GetSession(id int64) (*models.GameSession, error) {
	s, err := scanSession(r.db.QueryRow(sessionSelect+` WHERE gs.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game session: %w", err)
	}
	return s, nil
}

// RecentSessions returns a student's latest sessions, newest first
func (r *GameSessionRepository) RecentSessions(studentID int64, limit int) ([]models.GameSession, error) {
	return r.listSessions(`WHERE gs.student_id = ? ORDER BY gs.started_at DESC, gs.id DESC LIMIT ?`, studentID, limit)
}

// RecentCompleted returns a student's latest completed sessions, newest first
func (r *GameSessionRepository) RecentCompleted(studentID int64, limit int) ([]models.GameSession, error) {
	return r.listSessions(`WHERE gs.student_id = ? AND gs.completed_at IS NOT NULL
		ORDER BY gs.completed_at DESC, gs.id DESC LIMIT ?`, studentID, limit)
}

// RecentForTeacher returns the latest sessions of a teacher's students
func (r *GameSessionRepository) RecentForTeacher(teacherID int64, limit int) ([]models.GameSession, error) {
	return r.listSessions(`JOIN teacher_students ts ON ts.student_id = gs.student_id
		WHERE ts.teacher_id = ? ORDER BY gs.started_at DESC, gs.id DESC LIMIT ?`, teacherID, limit)
}

// RecentAll returns the latest sessions on the platform
func (r *GameSessionRepository) RecentAll(limit int) ([]models.GameSession, error) {
	return r.listSessions(`ORDER BY gs.started_at DESC, gs.id DESC LIMIT ?`, limit)
}

// ListForStudent returns every session of a student, oldest first
func (r *GameSessionRepository) ListForStudent(studentID int64) ([]models.GameSession, error) {
	return r.listSessions(`WHERE gs.student_id = ? ORDER BY gs.started_at, gs.id`, studentID)
}

// CountCompletedSince counts a student's sessions completed at or after since
func (r *GameSessionRepository) CountCompletedSince(studentID int64, since time.Time) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM game_sessions WHERE student_id = ? AND completed_at >= ?`
	if err := r.db.QueryRow(query, studentID, since.UTC()).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count completed sessions: %w", err)
	}
	return n, nil
}

// CategoryStats aggregates a student's completed sessions per category
func (r *GameSessionRepository) CategoryStats(studentID int64) ([]models.CategoryStats, error) {
	query := `
		SELECT g.category, COUNT(gs.id), COALESCE(AVG(gs.score), 0), COALESCE(MAX(gs.score), 0)
		FROM game_sessions gs
		JOIN games g ON g.id = gs.game_id
		WHERE gs.student_id = ? AND gs.completed_at IS NOT NULL
		GROUP BY g.category
		ORDER BY g.category
	`
	rows, err := r.db.Query(query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get category stats: %w", err)
	}
	defer rows.Close()

	stats := []models.CategoryStats{}
	for rows.Next() {
		var s models.CategoryStats
		if err := rows.Scan(&s.Category, &s.GamesPlayed, &s.AvgScore, &s.MaxScore); err != nil {
			return nil, fmt.Errorf("failed to scan category stats: %w", err)
		}
		s.AvgScore = math.Round(s.AvgScore*10) / 10
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// Stats aggregates all sessions of a student
func (r *GameSessionRepository) Stats(studentID int64) (*models.StudentStats, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN completed_at IS NOT NULL THEN 1 ELSE 0 END), 0),
		       COALESCE(AVG(CASE WHEN completed_at IS NOT NULL THEN score END), 0),
		       COALESCE(SUM(CASE WHEN completed_at IS NOT NULL AND score = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN completed_at IS NOT NULL AND time_spent_seconds < ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN completed_at IS NOT NULL THEN time_spent_seconds ELSE 0 END), 0)
		FROM game_sessions
		WHERE student_id = ?
	`
	var st models.StudentStats
	var avg float64
	err := r.db.QueryRow(query, PerfectScore, QuickGameSeconds, studentID).Scan(
		&st.TotalSessions, &st.CompletedSessions, &avg, &st.PerfectGames, &st.QuickGames, &st.TotalSeconds)
	if err != nil {
		return nil, fmt.Errorf("failed to get student stats: %w", err)
	}
	st.AverageScore = int(math.Round(avg))
	return &st, nil
}

// PlayDates returns the distinct days (YYYY-MM-DD, UTC) on which a student
// completed a game, newest first
func (r *GameSessionRepository) PlayDates(studentID int64, limit int) ([]string, error) {
	day := r.db.Dialect.DateExpr("completed_at")
	query := `
		SELECT DISTINCT ` + day + ` AS play_date
		FROM game_sessions
		WHERE student_id = ? AND completed_at IS NOT NULL
		ORDER BY play_date DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get play dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan play date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// PlayedGameIDs returns the games a student has completed at least once
func (r *GameSessionRepository) PlayedGameIDs(studentID int64) ([]int64, error) {
	rows, err := r.db.Query(`SELECT DISTINCT game_id FROM game_sessions WHERE student_id = ? AND completed_at IS NOT NULL`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get played games: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan game id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountSessions counts sessions started at or after since. A zero since counts all.
func (r *GameSessionRepository) CountSessions(since time.Time) (int, error) {
	var n int
	var err error
	if since.IsZero() {
		err = r.db.QueryRow(`SELECT COUNT(*) FROM game_sessions`).Scan(&n)
	} else {
		err = r.db.QueryRow(`SELECT COUNT(*) FROM game_sessions WHERE started_at >= ?`, since.UTC()).Scan(&n)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}
