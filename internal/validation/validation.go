package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"learnplay/internal/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var disabilities = map[string]bool{
	"dyslexia":    true,
	"dyscalculia": true,
	"dysgraphia":  true,
	"adhd":        true,
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ValidateRole checks that role is a known role
func ValidateRole(role string) error {
	if !models.Role(role).Valid() {
		return ValidationError{Field: "role", Message: "role must be student, teacher or admin"}
	}
	return nil
}

// ValidateGradeLevel accepts grades 1 through 12
func ValidateGradeLevel(grade int) error {
	if grade < 1 || grade > 12 {
		return ValidationError{Field: "gradeLevel", Message: "grade level must be between 1 and 12"}
	}
	return nil
}

// ValidateDisabilities checks every tag against the supported learning difficulties
func ValidateDisabilities(tags []string) error {
	for _, tag := range tags {
		if !disabilities[strings.ToLower(strings.TrimSpace(tag))] {
			return ValidationError{Field: "learningDisabilities", Message: fmt.Sprintf("unknown learning difficulty %q", tag)}
		}
	}
	return nil
}

// ValidateAssignmentTitle checks an assignment title
func ValidateAssignmentTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ValidationError{Field: "title", Message: "title is required"}
	}
	if len(title) > 200 {
		return ValidationError{Field: "title", Message: "title must be at most 200 characters"}
	}
	return nil
}

// ValidateDueDate rejects due dates in the past. A nil date is allowed.
func ValidateDueDate(due *time.Time, now time.Time) error {
	if due != nil && due.Before(now.Truncate(24*time.Hour)) {
		return ValidationError{Field: "dueDate", Message: "due date is in the past"}
	}
	return nil
}

// ValidateScore checks a reported completion score
func ValidateScore(score int) error {
	if score < 0 {
		return ValidationError{Field: "score", Message: "score cannot be negative"}
	}
	return nil
}

// ValidateScoreAtMost rejects a score above what the game can award
func ValidateScoreAtMost(score, limit int) error {
	if score > limit {
		return ValidationError{Field: "score", Message: fmt.Sprintf("score cannot exceed %d", limit)}
	}
	return nil
}
