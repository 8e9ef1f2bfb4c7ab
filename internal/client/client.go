// Package client talks to the learnplay HTTP API with a bearer token. It is
// the remote side of a game.Lifecycle for non-browser players.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"learnplay/internal/game"
	"learnplay/internal/models"
)

const defaultMaxRetries = 3

var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-2xx answer from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client wraps the learnplay API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
}

// New creates a client for the server at baseURL
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: defaultMaxRetries,
		backoff:    time.Second,
	}
}

// WithBackoff sets the first retry delay; later retries double it
func (c *Client) WithBackoff(d time.Duration) *Client {
	c.backoff = d
	return c
}

// WithToken uses an already issued bearer token
func (c *Client) WithToken(token string) *Client {
	c.token = token
	return c
}

// doRequest sends a JSON request and decodes a JSON answer into out.
// Rate-limited answers are retried with exponential backoff; transport
// failures are retried only for GETs, which are safe to repeat.
func (c *Client) doRequest(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(math.Pow(2, float64(attempt-1))) * c.backoff
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if method != http.MethodGet || ctx.Err() != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			log.Printf("[client] %s %s failed (attempt %d): %v", method, path, attempt+1, err)
			lastErr = err
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			log.Printf("[client] rate limited on %s %s, retry %d/%d", method, path, attempt+1, c.maxRetries)
			lastErr = &APIError{StatusCode: resp.StatusCode, Message: "rate limited"}
			continue
		}
		if resp.StatusCode >= 400 {
			return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
		}

		if out == nil || len(respBody) == 0 {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}

// Login exchanges credentials for a bearer token and keeps it
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	var resp struct {
		User  *models.User `json:"user"`
		Token string       `json:"token"`
	}
	creds := map[string]string{"email": email, "password": password}
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/token", creds, &resp); err != nil {
		return nil, err
	}
	c.token = resp.Token
	return resp.User, nil
}

func (c *Client) requireToken() error {
	if c.token == "" {
		return ErrNotLoggedIn
	}
	return nil
}

// Games lists the active catalogue
func (c *Client) Games(ctx context.Context) ([]models.Game, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var games []models.Game
	if err := c.doRequest(ctx, http.MethodGet, "/api/student/games", nil, &games); err != nil {
		return nil, err
	}
	return games, nil
}

// Questions fetches a play-through's questions for a game
func (c *Client) Questions(ctx context.Context, gameID int64, difficulty string, level int) ([]game.Question, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	q := url.Values{}
	if difficulty != "" {
		q.Set("difficulty", difficulty)
	}
	if level > 0 {
		q.Set("level", strconv.Itoa(level))
	}
	path := fmt.Sprintf("/api/games/%d/questions", gameID)
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var questions []game.Question
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// StartSession implements game.SessionServer
func (c *Client) StartSession(ctx context.Context, gameID int64) (int64, error) {
	if err := c.requireToken(); err != nil {
		return 0, err
	}
	var resp struct {
		SessionID int64 `json:"sessionId"`
	}
	if err := c.doRequest(ctx, http.MethodPost, "/api/game-session/start", map[string]int64{"gameId": gameID}, &resp); err != nil {
		return 0, err
	}
	return resp.SessionID, nil
}

// CompleteSession implements game.SessionServer
func (c *Client) CompleteSession(ctx context.Context, req game.CompletionRequest) (*game.CompletionResult, error) {
	if err := c.requireToken(); err != nil {
		return nil, err
	}
	var result game.CompletionResult
	if err := c.doRequest(ctx, http.MethodPost, "/api/game-session/complete", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

var _ game.SessionServer = (*Client)(nil)
