package security

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHashPassword(t *testing.T) {
	password := "testPassword123"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "" || hash == password {
		t.Fatalf("HashPassword() returned %q", hash)
	}

	hash2, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == hash2 {
		t.Error("HashPassword() should produce different hashes due to salt")
	}
}

func TestCheckPassword(t *testing.T) {
	password := "mySecurePassword"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{"correct password", password, hash, true},
		{"incorrect password", "wrongPassword", hash, false},
		{"empty password", "", hash, false},
		{"empty hash", password, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckPassword(tt.password, tt.hash); got != tt.want {
				t.Errorf("CheckPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCSRFTokens(t *testing.T) {
	g := NewCSRFGenerator("secret")

	token, err := g.GenerateToken("session-1")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	again, _ := g.GenerateToken("session-1")
	if token != again {
		t.Error("GenerateToken() is not deterministic")
	}

	tests := []struct {
		name      string
		gen       *CSRFGenerator
		sessionID string
		token     string
		want      bool
	}{
		{"valid", g, "session-1", token, true},
		{"other session", g, "session-2", token, false},
		{"other secret", NewCSRFGenerator("other"), "session-1", token, false},
		{"empty token", g, "session-1", "", false},
		{"empty session", g, "", token, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.gen.ValidateToken(tt.sessionID, tt.token); got != tt.want {
				t.Errorf("ValidateToken() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := g.GenerateToken(""); !errors.Is(err, ErrNoSession) {
		t.Errorf("GenerateToken(\"\") error = %v, want ErrNoSession", err)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d within burst was refused", i)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("request beyond burst was allowed")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("another client was refused")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(1, 1, -time.Second)
	rl.Allow("a")
	rl.Allow("b")

	if n := rl.Cleanup(); n != 2 {
		t.Errorf("Cleanup() = %d, want 2", n)
	}
	if !rl.Allow("a") {
		t.Error("forgotten client should get a fresh bucket")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "10.0.0.1:5555", "10.0.0.1"},
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.2"}, "10.0.0.1:5555", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.3"}, "10.0.0.1:5555", "198.51.100.3"},
		{"no port", nil, "10.0.0.9", "10.0.0.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionCookies(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-Proto", "https")

	c := CreateSessionCookie(r, SessionCookieName, "abc", time.Now().Add(time.Hour))
	if !c.Secure || !c.HttpOnly || c.Value != "abc" {
		t.Errorf("cookie = %+v", c)
	}

	plain := httptest.NewRequest("GET", "/", nil)
	if d := CreateDeleteCookie(plain, SessionCookieName); d.Secure || d.MaxAge != -1 {
		t.Errorf("delete cookie = %+v", d)
	}

	if GenerateSessionID() == GenerateSessionID() {
		t.Error("GenerateSessionID() returned duplicates")
	}
}

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer("jwt-secret", time.Hour)

	raw, expires, err := issuer.Issue(42, "student")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if time.Until(expires) <= 0 {
		t.Errorf("expiry %v is not in the future", expires)
	}

	claims, err := issuer.Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	id, _ := claims.UserID()
	if id != 42 || claims.Role != "student" {
		t.Errorf("claims = %d/%s, want 42/student", id, claims.Role)
	}

	tests := []struct {
		name   string
		issuer *TokenIssuer
		raw    string
	}{
		{"garbage", issuer, "not-a-token"},
		{"wrong secret", NewTokenIssuer("other", time.Hour), raw},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.issuer.Parse(tt.raw); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestTokenExpiry(t *testing.T) {
	issuer := NewTokenIssuer("jwt-secret", time.Minute)
	issued := time.Now()
	issuer.now = func() time.Time { return issued }

	raw, _, err := issuer.Issue(7, "teacher")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	issuer.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if _, err := issuer.Parse(raw); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Parse() of expired token error = %v, want ErrInvalidToken", err)
	}
}
