package handlers

import (
	"net/http"

	"learnplay/internal/service"
)

// TeacherHandler serves a teacher's roster, analysis and assignments
type TeacherHandler struct {
	teachers *service.TeacherService
}

// NewTeacherHandler creates a new teacher handler
func NewTeacherHandler(teachers *service.TeacherService) *TeacherHandler {
	return &TeacherHandler{teachers: teachers}
}

func (h *TeacherHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.teachers.Dashboard(GetUserFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, "Failed to load teacher dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

// Students lists the roster
func (h *TeacherHandler) Students(w http.ResponseWriter, r *http.Request) {
	students, err := h.teachers.Students(GetUserFromContext(r.Context()).ID)
	if err != nil {
		respondWithServiceError(w, "Failed to list students", err)
		return
	}
	writeJSON(w, http.StatusOK, students)
}

func (h *TeacherHandler) RemoveStudent(w http.ResponseWriter, r *http.Request) {
	studentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.teachers.RemoveStudent(GetUserFromContext(r.Context()).ID, studentID); err != nil {
		respondWithServiceError(w, "Failed to remove student", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TeacherHandler) StudentDetail(w http.ResponseWriter, r *http.Request) {
	studentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	detail, err := h.teachers.StudentDetail(GetUserFromContext(r.Context()).ID, studentID)
	if err != nil {
		respondWithServiceError(w, "Failed to load student detail", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// AnalysisData returns what an AI analysis of the student would be built from
func (h *TeacherHandler) AnalysisData(w http.ResponseWriter, r *http.Request) {
	studentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	data, err := h.teachers.AnalysisData(GetUserFromContext(r.Context()).ID, studentID)
	if err != nil {
		respondWithServiceError(w, "Failed to load analysis data", err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// AIAnalyze generates a performance summary of a roster student
func (h *TeacherHandler) AIAnalyze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentID int64 `json:"studentId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	analysis, err := h.teachers.Analyze(r.Context(), GetUserFromContext(r.Context()).ID, req.StudentID)
	if err != nil {
		respondWithServiceError(w, "AI analysis failed", err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (h *TeacherHandler) AssignmentData(w http.ResponseWriter, r *http.Request) {
	data, err := h.teachers.AssignmentData(GetUserFromContext(r.Context()).ID)
	if err != nil {
		respondWithServiceError(w, "Failed to load assignment data", err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (h *TeacherHandler) Assignments(w http.ResponseWriter, r *http.Request) {
	list, err := h.teachers.Assignments(GetUserFromContext(r.Context()).ID)
	if err != nil {
		respondWithServiceError(w, "Failed to list assignments", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *TeacherHandler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req service.NewAssignment
	if !decodeJSON(w, r, &req) {
		return
	}

	a, err := h.teachers.CreateAssignment(r.Context(), GetUserFromContext(r.Context()).ID, req)
	if err != nil {
		respondWithServiceError(w, "Failed to create assignment", err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}
