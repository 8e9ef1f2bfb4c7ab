package handlers

import (
	"net/http"

	"learnplay/internal/models"
)

// Router groups the handlers mounted on the API mux
type Router struct {
	Middleware *Middleware
	Auth       *AuthHandler
	Games      *GameHandler
	Students   *StudentHandler
	Teachers   *TeacherHandler
	Admin      *AdminHandler
	Audio      *AudioHandler
}

// Register mounts every route on mux
func (rt *Router) Register(mux *http.ServeMux) {
	m := rt.Middleware
	student := func(h http.HandlerFunc) http.HandlerFunc { return m.RequireRole(h, models.RoleStudent) }
	teacher := func(h http.HandlerFunc) http.HandlerFunc { return m.RequireRole(h, models.RoleTeacher) }
	admin := func(h http.HandlerFunc) http.HandlerFunc { return m.RequireRole(h, models.RoleAdmin) }

	// Auth
	mux.HandleFunc("POST /api/auth/login", m.RateLimit(rt.Auth.Login))
	mux.HandleFunc("POST /api/auth/token", m.RateLimit(rt.Auth.Token))
	mux.HandleFunc("POST /api/auth/logout", rt.Auth.Logout)
	mux.HandleFunc("GET /api/auth/me", m.RequireAuth(rt.Auth.Me))
	mux.HandleFunc("POST /api/auth/password", m.RequireAuth(m.CSRFProtect(rt.Auth.ChangePassword)))
	mux.HandleFunc("GET /api/auth/providers", rt.Auth.Providers)
	mux.HandleFunc("GET /auth/{provider}/start", rt.Auth.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", rt.Auth.OAuthCallback)

	// Games and sessions
	mux.HandleFunc("GET /api/games/questions", m.RequireAuth(rt.Games.CategoryQuestions))
	mux.HandleFunc("GET /api/games/{id}", m.RequireAuth(rt.Games.GetGame))
	mux.HandleFunc("GET /api/games/{id}/questions", m.RequireAuth(rt.Games.GetQuestions))
	mux.HandleFunc("POST /api/game-session/start", student(m.CSRFProtect(rt.Games.StartSession)))
	mux.HandleFunc("POST /api/game-session/complete", student(m.CSRFProtect(rt.Games.CompleteSession)))
	mux.HandleFunc("GET /api/game-session/{id}", student(rt.Games.GetSession))
	mux.HandleFunc("GET /api/audio/letter/{letter}", m.RequireAuth(rt.Audio.Letter))

	// Student
	mux.HandleFunc("GET /api/student/profile", student(rt.Students.Profile))
	mux.HandleFunc("GET /api/student/dashboard", student(rt.Students.Dashboard))
	mux.HandleFunc("GET /api/student/games", student(rt.Students.Games))
	mux.HandleFunc("GET /api/student/achievements", student(rt.Students.Achievements))
	mux.HandleFunc("GET /api/student/assignments", student(rt.Students.Assignments))

	// Teacher
	mux.HandleFunc("GET /api/teacher/dashboard", teacher(rt.Teachers.Dashboard))
	mux.HandleFunc("GET /api/teacher/students", teacher(rt.Teachers.Students))
	mux.HandleFunc("DELETE /api/teacher/students/{id}", teacher(m.CSRFProtect(rt.Teachers.RemoveStudent)))
	mux.HandleFunc("GET /api/teacher/students/{id}", teacher(rt.Teachers.StudentDetail))
	mux.HandleFunc("GET /api/teacher/students/{id}/analysis-data", teacher(rt.Teachers.AnalysisData))
	mux.HandleFunc("POST /api/teacher/ai-analyze", teacher(m.CSRFProtect(rt.Teachers.AIAnalyze)))
	mux.HandleFunc("GET /api/teacher/assignment-data", teacher(rt.Teachers.AssignmentData))
	mux.HandleFunc("GET /api/teacher/assignments", teacher(rt.Teachers.Assignments))
	mux.HandleFunc("POST /api/teacher/assignments", teacher(m.CSRFProtect(rt.Teachers.CreateAssignment)))

	// Admin
	mux.HandleFunc("GET /api/admin/stats", admin(rt.Admin.Stats))
	mux.HandleFunc("GET /api/admin/users", admin(rt.Admin.Users))
	mux.HandleFunc("POST /api/admin/users", admin(m.CSRFProtect(rt.Admin.CreateUser)))
	mux.HandleFunc("DELETE /api/admin/users/{id}", admin(m.CSRFProtect(rt.Admin.DeleteUser)))
	mux.HandleFunc("POST /api/admin/teachers/{teacherId}/students/{id}", admin(m.CSRFProtect(rt.Admin.AssignStudent)))
	mux.HandleFunc("DELETE /api/admin/teachers/{teacherId}/students/{id}", admin(m.CSRFProtect(rt.Admin.UnassignStudent)))
	mux.HandleFunc("GET /api/admin/games", admin(rt.Admin.GamesByCategory))
	mux.HandleFunc("PUT /api/admin/games/{id}/active", admin(m.CSRFProtect(rt.Admin.SetGameActive)))
	mux.HandleFunc("GET /api/admin/backup", admin(rt.Admin.ExportDatabase))
	mux.HandleFunc("POST /api/admin/backup", admin(m.CSRFProtect(rt.Admin.ImportDatabase)))
}
