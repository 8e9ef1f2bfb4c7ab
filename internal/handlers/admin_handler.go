package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"learnplay/internal/service"
)

const maxBackupUpload = 10 << 20

// AdminHandler handles admin-specific routes
type AdminHandler struct {
	admin  *service.AdminService
	backup *service.BackupService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admin *service.AdminService, backup *service.BackupService) *AdminHandler {
	return &AdminHandler{admin: admin, backup: backup}
}

// Stats returns the dashboard counters and latest sessions
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Stats()
	if err != nil {
		respondWithServiceError(w, "Failed to load admin stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.Users()
	if err != nil {
		respondWithServiceError(w, "Failed to list users", err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// AssignStudent puts a student on a teacher's roster
func (h *AdminHandler) AssignStudent(w http.ResponseWriter, r *http.Request) {
	teacherID, ok := pathID(w, r, "teacherId")
	if !ok {
		return
	}
	studentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.admin.AssignStudent(teacherID, studentID); err != nil {
		respondWithServiceError(w, "Failed to assign student", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) UnassignStudent(w http.ResponseWriter, r *http.Request) {
	teacherID, ok := pathID(w, r, "teacherId")
	if !ok {
		return
	}
	studentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.admin.UnassignStudent(teacherID, studentID); err != nil {
		respondWithServiceError(w, "Failed to unassign student", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createUserRequest struct {
	service.NewUser
	TeacherID int64 `json:"teacherId,omitempty"`
}

// CreateUser creates an account and returns its temporary password
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.admin.CreateUser(r.Context(), req.NewUser, req.TeacherID)
	if err != nil {
		respondWithServiceError(w, "Failed to create user", err)
		return
	}

	log.Printf("User %s (%s) created by admin %s", created.User.Email, created.User.Role, GetUserFromContext(r.Context()).Email)
	writeJSON(w, http.StatusCreated, created)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.admin.DeleteUser(GetUserFromContext(r.Context()).ID, id); err != nil {
		respondWithServiceError(w, "Failed to delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GamesByCategory returns the whole catalogue, inactive games included
func (h *AdminHandler) GamesByCategory(w http.ResponseWriter, r *http.Request) {
	games, err := h.admin.GamesByCategory()
	if err != nil {
		respondWithServiceError(w, "Failed to list games", err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (h *AdminHandler) SetGameActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.admin.SetGameActive(id, req.Active); err != nil {
		respondWithServiceError(w, "Failed to update game", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportDatabase exports the database to JSON for download
func (h *AdminHandler) ExportDatabase(w http.ResponseWriter, r *http.Request) {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("learnplay_backup_%s.json", timestamp)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	if _, err := h.backup.ExportToWriter(w); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to export database", "Error exporting database", err)
		return
	}

	log.Printf("Database exported by admin user %s", GetUserFromContext(r.Context()).Email)
}

// ImportDatabase restores an uploaded backup into an empty database
func (h *AdminHandler) ImportDatabase(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxBackupUpload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to parse form", "", nil)
		return
	}

	file, _, err := r.FormFile("backup_file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Please select a backup file", "", nil)
		return
	}
	defer file.Close()

	if err := h.backup.ImportFromReader(file); err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to import database", "Error importing database", err)
		return
	}

	log.Printf("Database imported by admin user %s", GetUserFromContext(r.Context()).Email)
	w.WriteHeader(http.StatusNoContent)
}
