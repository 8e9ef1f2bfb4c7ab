package handlers

import (
	"net/http"

	"learnplay/internal/service"
)

// StudentHandler serves a student's own pages
type StudentHandler struct {
	students *service.StudentService
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

func (h *StudentHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.students.Profile(GetUserFromContext(r.Context()).ID)
	if err != nil {
		respondWithServiceError(w, "Failed to load profile", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *StudentHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.students.Dashboard(GetUserFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, "Failed to load student dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

// Games lists the active catalogue
func (h *StudentHandler) Games(w http.ResponseWriter, r *http.Request) {
	games, err := h.students.Games()
	if err != nil {
		respondWithServiceError(w, "Failed to list games", err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (h *StudentHandler) Achievements(w http.ResponseWriter, r *http.Request) {
	summary, err := h.students.Achievements(GetUserFromContext(r.Context()).ID)
	if err != nil {
		respondWithServiceError(w, "Failed to load achievements", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *StudentHandler) Assignments(w http.ResponseWriter, r *http.Request) {
	list, err := h.students.Assignments(GetUserFromContext(r.Context()).ID)
	if err != nil {
		respondWithServiceError(w, "Failed to load assignments", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
