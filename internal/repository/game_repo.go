package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"learnplay/internal/database"
	"learnplay/internal/models"
)

var ErrGameNotFound = errors.New("game not found")

// GameRepository handles the game catalogue
type GameRepository struct {
	db *database.DB
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *database.DB) *GameRepository {
	return &GameRepository{db: db}
}

const gameColumns = `id, title, description, category, difficulty_level, duration_minutes, target_disabilities, is_active, created_at`

func scanGame(row interface{ Scan(...any) error }) (*models.Game, error) {
	g := &models.Game{}
	var tags string
	if err := row.Scan(&g.ID, &g.Title, &g.Description, &g.Category, &g.DifficultyLevel,
		&g.DurationMinutes, &tags, &g.IsActive, &g.CreatedAt); err != nil {
		return nil, err
	}
	g.TargetDisabilities = models.SplitTags(tags)
	return g, nil
}

func (r *GameRepository) list(where string, args ...any) ([]models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games ` + where
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []models.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, *g)
	}
	return games, rows.Err()
}

// ListActiveGames returns the games students can play, easiest first
func (r *GameRepository) ListActiveGames() ([]models.Game, error) {
	where := `WHERE is_active = ` + r.db.Dialect.BoolValue(true) + `
		ORDER BY CASE difficulty_level WHEN 'easy' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END, title`
	return r.list(where)
}

// ListAllGames returns the whole catalogue ordered by category and title
func (r *GameRepository) ListAllGames() ([]models.Game, error) {
	return r.list(`ORDER BY category, title`)
}

// ListByCategory returns active games of one category
func (r *GameRepository) ListByCategory(category string) ([]models.Game, error) {
	return r.list(`WHERE is_active = `+r.db.Dialect.BoolValue(true)+` AND category = ? ORDER BY title`, category)
}

// GetGame retrieves a game by ID, or nil if it does not exist
func (r *GameRepository) GetGame(id int64) (*models.Game, error) {
	g, err := scanGame(r.db.QueryRow(`SELECT `+gameColumns+` FROM games WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return g, nil
}

// GameCategory returns the category of a game
func (r *GameRepository) GameCategory(gameID int64) (string, error) {
	var category string
	err := r.db.QueryRow(`SELECT category FROM games WHERE id = ?`, gameID).Scan(&category)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrGameNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get game category: %w", err)
	}
	return category, nil
}

// CreateGame adds a game to the catalogue
func (r *GameRepository) CreateGame(g *models.Game) (int64, error) {
	query := `
		INSERT INTO games (title, description, category, difficulty_level, duration_minutes, target_disabilities, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, g.Title, g.Description, g.Category, g.DifficultyLevel,
		g.DurationMinutes, models.JoinTags(g.TargetDisabilities), g.IsActive)
	if err != nil {
		return 0, fmt.Errorf("failed to create game: %w", err)
	}
	return id, nil
}

// SetActive shows or hides a game from students
func (r *GameRepository) SetActive(id int64, active bool) error {
	if _, err := r.db.Exec(`UPDATE games SET is_active = ? WHERE id = ?`, active, id); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}
	return nil
}

// CountGames returns the size of the catalogue
func (r *GameRepository) CountGames() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM games`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}
	return n, nil
}
