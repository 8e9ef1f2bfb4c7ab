package credentials

import (
	"regexp"
	"slices"
	"strings"
	"testing"
)

var passwordPattern = regexp.MustCompile(`^[a-z]+-[a-z]+-[1-9][0-9]$`)

func TestGenerateTemporaryPassword(t *testing.T) {
	tests := []struct {
		name       string
		iterations int
	}{
		{name: "single", iterations: 1},
		{name: "many", iterations: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < tt.iterations; i++ {
				password, err := GenerateTemporaryPassword()
				if err != nil {
					t.Fatalf("GenerateTemporaryPassword() error = %v", err)
				}
				if !passwordPattern.MatchString(password) {
					t.Fatalf("password %q does not match %s", password, passwordPattern)
				}
				if len(password) < 8 {
					t.Errorf("password %q shorter than 8 characters", password)
				}
				parts := strings.Split(password, "-")
				if !slices.Contains(adjectives, parts[0]) || !slices.Contains(nouns, parts[1]) {
					t.Errorf("password %q uses words outside the lists", password)
				}
			}
		})
	}
}

func TestRandomElement(t *testing.T) {
	got, err := randomElement(nil)
	if err != nil || got != "" {
		t.Errorf("randomElement(nil) = %q, %v", got, err)
	}

	got, err = randomElement([]string{"only"})
	if err != nil || got != "only" {
		t.Errorf("randomElement([only]) = %q, %v", got, err)
	}
}
