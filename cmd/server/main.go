package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"learnplay/internal/audio"
	"learnplay/internal/config"
	"learnplay/internal/database"
	"learnplay/internal/handlers"
	"learnplay/internal/questionbank"
	"learnplay/internal/repository"
	"learnplay/internal/security"
	"learnplay/internal/service"

	"golang.org/x/oauth2/google"
)

const (
	stepDatabase   = "database"
	stepMigrations = "migrations"
	stepServices   = "services"
	stepAdmin      = "admin account"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startup := handlers.NewStartup(stepDatabase, stepMigrations, stepServices, stepAdmin)

	// The listener comes up first so health checks see progress while the
	// database initialises.
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", startup.Health)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticFilesPath))))

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      startup.Gate(handlers.Logging(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	startup.Begin("Connecting to database...")
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)
	startup.Complete(stepDatabase)

	startup.Begin("Running migrations...")
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")
	startup.Complete(stepMigrations)

	startup.Begin("Wiring services...")
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	gameRepo := repository.NewGameRepository(db)
	sessionRepo := repository.NewGameSessionRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)

	emailService, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	authService := service.NewAuthService(userRepo, security.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL), cfg.SessionDuration)
	aiService := service.NewAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	bank := questionbank.New(gameRepo)
	gameSessionService := service.NewGameSessionService(gameRepo, sessionRepo, profileRepo, assignmentRepo).WithScoreCeiling(bank)
	studentService := service.NewStudentService(profileRepo, gameRepo, sessionRepo, assignmentRepo)
	teacherService := service.NewTeacherService(teacherRepo, sessionRepo, gameRepo, assignmentRepo, aiService, emailService)
	adminService := service.NewAdminService(userRepo, gameRepo, sessionRepo, teacherRepo, authService, emailService)
	backupService := service.NewBackupService(db)
	ttsService := audio.NewTTSService(filepath.Join(cfg.StaticFilesPath, "audio"))

	csrf := security.NewCSRFGenerator(cfg.CSRFSecret)
	limiter := security.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 10*time.Minute)
	go limiter.RunCleanup(ctx, 5*time.Minute)

	oauthProviders := map[string]handlers.OAuthProvider{
		"google": handlers.GoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, google.Endpoint),
	}

	router := &handlers.Router{
		Middleware: handlers.NewMiddleware(authService, csrf, limiter),
		Auth:       handlers.NewAuthHandler(authService, csrf, oauthProviders, cfg.OAuthRedirectBaseURL, cfg.AppBaseURL),
		Games:      handlers.NewGameHandler(gameRepo, bank, gameSessionService),
		Students:   handlers.NewStudentHandler(studentService),
		Teachers:   handlers.NewTeacherHandler(teacherService),
		Admin:      handlers.NewAdminHandler(adminService, backupService),
		Audio:      handlers.NewAudioHandler(ttsService),
	}
	router.Register(mux)
	startup.Complete(stepServices)

	startup.Begin("Checking admin account...")
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		created, err := authService.EnsureAdmin(cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			log.Printf("Warning: Failed to create admin account: %v", err)
		} else if created {
			log.Printf("Created admin account %s", cfg.AdminEmail)
		}
	}
	startup.Complete(stepAdmin)

	go cleanupExpiredSessions(ctx, authService)

	startup.MarkReady()
	log.Println("Server ready")

	<-ctx.Done()
	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
		os.Exit(1)
	}
}

// cleanupExpiredSessions periodically removes expired sessions
func cleanupExpiredSessions(ctx context.Context, authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := authService.CleanupExpiredSessions(); err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
			} else {
				log.Println("Expired sessions cleaned up")
			}
		}
	}
}
