// Package audio produces the spoken letter clips used by audio-letter questions.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"
)

const (
	ttsRequestTimeout = 10 * time.Second
	googleTTSURL      = "https://translate.google.com/translate_tts"
)

var ErrInvalidLetter = errors.New("not a single letter")

// TTSService speaks letters through Google Translate's TTS endpoint and keeps
// each clip on disk so it is fetched only once.
type TTSService struct {
	audioDir string
	baseURL  string
	client   *http.Client

	mu sync.Mutex
}

// NewTTSService creates a service caching clips in audioDir
func NewTTSService(audioDir string) *TTSService {
	return &TTSService{
		audioDir: audioDir,
		baseURL:  googleTTSURL,
		client:   &http.Client{Timeout: ttsRequestTimeout},
	}
}

// WithEndpoint points the service at another TTS endpoint
func (s *TTSService) WithEndpoint(baseURL string) *TTSService {
	s.baseURL = baseURL
	return s
}

// NormalizeLetter returns the lower-case form of a one-letter string
func NormalizeLetter(letter string) (string, error) {
	r := []rune(strings.TrimSpace(letter))
	if len(r) != 1 || !unicode.IsLetter(r[0]) || r[0] > unicode.MaxASCII {
		return "", fmt.Errorf("%w: %q", ErrInvalidLetter, letter)
	}
	return string(unicode.ToLower(r[0])), nil
}

// LetterClip returns the path of the MP3 for letter, generating it on first use
func (s *TTSService) LetterClip(ctx context.Context, letter string) (string, error) {
	l, err := NormalizeLetter(letter)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.audioDir, fmt.Sprintf("letter_%s.mp3", l))

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}
	if err := s.generate(ctx, strings.ToUpper(l), path); err != nil {
		return "", fmt.Errorf("failed to generate audio: %w", err)
	}
	return path, nil
}

func (s *TTSService) generate(ctx context.Context, text, outputPath string) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", "en")
	params.Set("client", "tw-ob")
	params.Set("textlen", fmt.Sprintf("%d", len(text)))

	ctx, cancel := context.WithTimeout(ctx, ttsRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	// Google rejects requests without a browser user agent
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// Write to a temp file first so a failed download never leaves a partial clip
	tmp, err := os.CreateTemp(s.audioDir, "letter-*.part")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), outputPath)
}
