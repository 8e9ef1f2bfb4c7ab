package models

import (
	"slices"
	"time"
)

// Role is what a user may do on the platform
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// User represents an account of any role
type User struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	FullName      string    `json:"fullName"`
	Role          Role      `json:"role"`
	OAuthProvider string    `json:"-"`
	OAuthSubject  string    `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// HasRole reports whether the user holds any of roles
func (u *User) HasRole(roles ...Role) bool {
	return slices.Contains(roles, u.Role)
}

// Session represents an authenticated browser session
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// UserListItem is a user row on the admin user list, with profile fields joined in
type UserListItem struct {
	User
	GradeLevel     int    `json:"gradeLevel,omitempty"`
	Points         int    `json:"points,omitempty"`
	Level          int    `json:"level,omitempty"`
	Specialization string `json:"specialization,omitempty"`
}
