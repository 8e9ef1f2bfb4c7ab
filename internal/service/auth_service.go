package service

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"learnplay/internal/credentials"
	"learnplay/internal/models"
	"learnplay/internal/repository"
	"learnplay/internal/security"
	"learnplay/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrAccountNotFound    = errors.New("no account for this sign-in")
	ErrOAuthConflict      = errors.New("account is linked to another provider")
)

// NewUser describes an account created by an administrator
type NewUser struct {
	Email                string      `json:"email"`
	FullName             string      `json:"fullName"`
	Role                 models.Role `json:"role"`
	Password             string      `json:"password,omitempty"`
	GradeLevel           int         `json:"gradeLevel,omitempty"`
	LearningDisabilities []string    `json:"learningDisabilities,omitempty"`
	Specialization       string      `json:"specialization,omitempty"`
}

// AuthService handles authentication business logic
type AuthService struct {
	userRepo        *repository.UserRepository
	tokens          *security.TokenIssuer
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, tokens *security.TokenIssuer, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		tokens:          tokens,
		sessionDuration: sessionDuration,
	}
}

// Login authenticates a user and creates a session
func (s *AuthService) Login(email, password string) (*models.Session, *models.User, error) {
	user, err := s.userRepo.GetUserByEmail(strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.startSession(user)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

func (s *AuthService) startSession(user *models.User) (*models.Session, error) {
	expiresAt := time.Now().Add(s.sessionDuration)
	session, err := s.userRepo.CreateSession(security.GenerateSessionID(), user.ID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// ValidateSession checks if a session is valid and returns the associated user
func (s *AuthService) ValidateSession(sessionID string) (*models.User, error) {
	session, err := s.userRepo.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		_ = s.userRepo.DeleteSession(sessionID)
		return nil, ErrSessionExpired
	}

	user, err := s.userRepo.GetUserByID(session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}
	return user, nil
}

// Logout invalidates a session
func (s *AuthService) Logout(sessionID string) error {
	if err := s.userRepo.DeleteSession(sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions from the database
func (s *AuthService) CleanupExpiredSessions() error {
	n, err := s.userRepo.DeleteExpiredSessions()
	if err != nil {
		return fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	if n > 0 {
		log.Printf("Removed %d expired sessions", n)
	}
	return nil
}

// IssueToken returns a bearer token for API clients
func (s *AuthService) IssueToken(user *models.User) (string, time.Time, error) {
	return s.tokens.Issue(user.ID, string(user.Role))
}

// ValidateToken resolves a bearer token to its user
func (s *AuthService) ValidateToken(raw string) (*models.User, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	userID, _ := claims.UserID()

	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, security.ErrInvalidToken
	}
	return user, nil
}

// OAuthLogin signs in an existing account through an external provider.
// Accounts are matched by linked identity first, then by email, which links
// the identity for next time. No account is created here.
func (s *AuthService) OAuthLogin(provider, subject, email string) (*models.Session, *models.User, error) {
	if provider == "" || subject == "" {
		return nil, nil, errors.New("missing oauth provider information")
	}

	user, err := s.userRepo.GetUserByOAuth(provider, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lookup oauth user: %w", err)
	}

	if user == nil {
		if err := validation.ValidateEmail(email); err != nil {
			return nil, nil, err
		}
		existing, err := s.userRepo.GetUserByEmail(strings.ToLower(email))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check existing user: %w", err)
		}
		if existing == nil {
			return nil, nil, ErrAccountNotFound
		}
		if existing.OAuthProvider != "" && existing.OAuthProvider != provider {
			return nil, nil, ErrOAuthConflict
		}
		if err := s.userRepo.LinkOAuth(existing.ID, provider, subject); err != nil {
			return nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
		}
		user = existing
	}

	session, err := s.startSession(user)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// ChangePassword replaces a user's password and signs them out everywhere
func (s *AuthService) ChangePassword(userID int64, current, next string) error {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !security.CheckPassword(current, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	if err := validation.ValidatePassword(next); err != nil {
		return err
	}

	hash, err := security.HashPassword(next)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(userID, hash); err != nil {
		return err
	}
	return s.userRepo.DeleteUserSessions(userID)
}

// CreateUser creates an account of any role. When no password is given a
// temporary one is generated and returned so it can be handed over.
func (s *AuthService) CreateUser(req NewUser) (*models.User, string, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)

	if err := validation.ValidateEmail(req.Email); err != nil {
		return nil, "", err
	}
	if err := validation.ValidateName(req.FullName); err != nil {
		return nil, "", err
	}
	if err := validation.ValidateRole(string(req.Role)); err != nil {
		return nil, "", err
	}
	if req.Role == models.RoleStudent {
		if req.GradeLevel == 0 {
			req.GradeLevel = 1
		}
		if err := validation.ValidateGradeLevel(req.GradeLevel); err != nil {
			return nil, "", err
		}
		if err := validation.ValidateDisabilities(req.LearningDisabilities); err != nil {
			return nil, "", err
		}
	}

	password := req.Password
	if password == "" {
		generated, err := credentials.GenerateTemporaryPassword()
		if err != nil {
			return nil, "", fmt.Errorf("failed to generate password: %w", err)
		}
		password = generated
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, "", err
	}

	existing, err := s.userRepo.GetUserByEmail(req.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	var user *models.User
	switch req.Role {
	case models.RoleStudent:
		user, err = s.userRepo.CreateStudent(req.Email, hash, req.FullName, req.GradeLevel, req.LearningDisabilities)
	case models.RoleTeacher:
		user, err = s.userRepo.CreateTeacher(req.Email, hash, req.FullName, req.Specialization)
	default:
		user, err = s.userRepo.CreateUser(req.Email, hash, req.FullName, req.Role)
	}
	if err != nil {
		return nil, "", err
	}
	return user, password, nil
}

// EnsureAdmin creates the bootstrap administrator when none exists yet
func (s *AuthService) EnsureAdmin(email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	n, err := s.userRepo.CountByRole(models.RoleAdmin)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	if _, _, err := s.CreateUser(NewUser{
		Email:    email,
		FullName: "Administrator",
		Role:     models.RoleAdmin,
		Password: password,
	}); err != nil {
		return false, fmt.Errorf("failed to create admin: %w", err)
	}
	log.Printf("Created bootstrap admin account %s", email)
	return true, nil
}
