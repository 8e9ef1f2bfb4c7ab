package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"learnplay/internal/game"
	"learnplay/internal/models"
	"learnplay/internal/questionbank"
	"learnplay/internal/repository"
	"learnplay/internal/service"
)

const maxCategoryQuestions = 50

// GameHandler serves the catalogue, question content and the session lifecycle
type GameHandler struct {
	games    *repository.GameRepository
	bank     *questionbank.Bank
	sessions *service.GameSessionService
}

// NewGameHandler creates a new game handler
func NewGameHandler(games *repository.GameRepository, bank *questionbank.Bank, sessions *service.GameSessionService) *GameHandler {
	return &GameHandler{games: games, bank: bank, sessions: sessions}
}

// visibleGame loads a game the caller may see; inactive games are admin-only
func (h *GameHandler) visibleGame(w http.ResponseWriter, r *http.Request) (*models.Game, bool) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return nil, false
	}

	g, err := h.games.GetGame(id)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load game", err)
		return nil, false
	}
	user := GetUserFromContext(r.Context())
	if g == nil || (!g.IsActive && !user.HasRole(models.RoleAdmin)) {
		respondWithError(w, http.StatusNotFound, "Game not found", "", nil)
		return nil, false
	}
	return g, true
}

// GetGame returns one catalogue entry
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	g, ok := h.visibleGame(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// GetQuestions returns a play-through's worth of questions for a game
func (h *GameHandler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	g, ok := h.visibleGame(w, r)
	if !ok {
		return
	}

	difficulty := r.URL.Query().Get("difficulty")
	level, _ := strconv.Atoi(r.URL.Query().Get("level"))

	questions, err := h.bank.GetQuestions(g.ID, difficulty, level)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load questions", err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

// CategoryQuestions returns questions from a category bank
func (h *GameHandler) CategoryQuestions(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	count, err := strconv.Atoi(r.URL.Query().Get("count"))
	if err != nil || count <= 0 {
		count = questionbank.PerSession
	}
	count = min(count, maxCategoryQuestions)

	writeJSON(w, http.StatusOK, h.bank.ByCategory(category, count))
}

type startSessionRequest struct {
	GameID int64 `json:"gameId"`
}

type startSessionResponse struct {
	SessionID int64 `json:"sessionId"`
}

// StartSession opens a session row for the calling student
func (h *GameHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.GameID <= 0 {
		respondWithError(w, http.StatusBadRequest, "gameId is required", "", nil)
		return
	}

	id, err := h.sessions.Start(GetUserFromContext(r.Context()), req.GameID)
	if err != nil {
		respondWithServiceError(w, "Failed to start session", err)
		return
	}
	writeJSON(w, http.StatusCreated, startSessionResponse{SessionID: id})
}

// CompleteSession records the final score and credits the student's profile
func (h *GameHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	var req game.CompletionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SessionID <= 0 {
		respondWithError(w, http.StatusBadRequest, "sessionId is required", "", nil)
		return
	}

	result, err := h.sessions.Complete(GetUserFromContext(r.Context()), req)
	if err != nil {
		if errors.Is(err, service.ErrGameSessionNotFound) {
			respondWithError(w, http.StatusNotFound, "Session not found or already completed", "", nil)
			return
		}
		respondWithServiceError(w, "Failed to complete session", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetSession returns one of the caller's sessions
func (h *GameHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	session, err := h.sessions.Session(GetUserFromContext(r.Context()), id)
	if err != nil {
		respondWithServiceError(w, "Failed to load session", err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}
