// Command play runs a game session in the terminal against a learnplay server.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"learnplay/internal/client"
	"learnplay/internal/game"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

func main() {
	_ = godotenv.Load()

	server := flag.String("server", envOr("LEARNPLAY_SERVER", "http://localhost:8080"), "Server base URL")
	email := flag.String("email", os.Getenv("LEARNPLAY_EMAIL"), "Student email")
	password := flag.String("password", os.Getenv("LEARNPLAY_PASSWORD"), "Student password")
	gameID := flag.Int64("game", 0, "Game ID to play (lists games when omitted)")
	difficulty := flag.String("difficulty", "", "Question difficulty")
	level := flag.Int("level", 0, "Question level")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "Error: -email and -password are required")
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := client.New(*server)
	user, err := c.Login(ctx, *email, *password)
	if err != nil {
		log.Fatalf("Login failed: %v", err)
	}
	fmt.Printf("Hello, %s!\n", user.FullName)

	if *gameID == 0 {
		games, err := c.Games(ctx)
		if err != nil {
			log.Fatalf("Failed to list games: %v", err)
		}
		for _, g := range games {
			fmt.Printf("  %3d  %-20s %s\n", g.ID, g.Title, g.Category)
		}
		fmt.Println("Pick one with -game <id>")
		return
	}

	questions, err := c.Questions(ctx, *gameID, *difficulty, *level)
	if err != nil {
		log.Fatalf("Failed to load questions: %v", err)
	}
	session, err := game.NewSession(*gameID, questions)
	if err != nil {
		log.Fatalf("Cannot play game %d: %v", *gameID, err)
	}

	term := &terminal{out: os.Stdout}
	loop := game.NewLoop(game.NewLifecycle(c, game.NewMachine(game.DefaultTimings())), term)

	input := make(chan game.Event)
	go term.readInput(ctx, os.Stdin, input)

	if _, err := loop.Run(ctx, session, input); err != nil {
		if errors.Is(err, game.ErrAbandoned) {
			fmt.Println("\nGame abandoned, progress not saved.")
			return
		}
		log.Fatalf("Game failed: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// terminal renders sessions as text and turns typed lines into events
type terminal struct {
	out io.Writer

	mu   sync.Mutex
	mode game.Mode
}

func (t *terminal) currentMode() game.Mode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mode
}

// readInput closes input at EOF, which abandons the session
func (t *terminal) readInput(ctx context.Context, r io.Reader, input chan<- game.Event) {
	defer close(input)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		ev, ok := t.parse(strings.TrimSpace(scanner.Text()))
		if !ok {
			fmt.Fprintln(t.out, "?")
			continue
		}
		select {
		case input <- ev:
		case <-ctx.Done():
			return
		}
	}
}

func (t *terminal) parse(line string) (game.Event, bool) {
	mode := t.currentMode()
	if line == "" {
		if mode == game.ModeAudioLetter {
			return game.ConfirmStart{}, true
		}
		return nil, false
	}
	if mode == game.ModeSequence {
		return game.Tap{Token: line}, true
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 {
		return nil, false
	}
	if mode == game.ModeMemoryCards {
		return game.Flip{Card: n - 1}, true
	}
	return game.Choose{Index: n - 1}, true
}

func (t *terminal) Render(s game.Session, o game.Outcome) {
	q, ok := s.Current()
	if ok {
		t.mu.Lock()
		t.mode = q.Mode
		t.mu.Unlock()
	}

	switch o.Kind {
	case game.OutcomeTicked, game.OutcomePreviewTick:
		return
	case game.OutcomeCorrect, game.OutcomePairMatched:
		fmt.Fprintf(t.out, "Correct! +%d\n", o.Points)
	case game.OutcomeWrong, game.OutcomePairMismatched:
		fmt.Fprintf(t.out, "Not quite. Lives left: %d\n", s.Lives)
	case game.OutcomeSequenceReset:
		fmt.Fprintf(t.out, "Wrong order, start again. Lives left: %d\n", s.Lives)
	case game.OutcomeSkipped:
		fmt.Fprintln(t.out, "This question is unavailable, skipping.")
	}

	if !ok || o.Ended {
		return
	}
	switch o.Kind {
	case game.OutcomeStarted, game.OutcomeAdvanced, game.OutcomeSkipped, game.OutcomeAnnounced,
		game.OutcomePreviewEnded, game.OutcomeCardsHidden, game.OutcomeCardFlipped,
		game.OutcomeSequenceProgress, game.OutcomeSequenceReset:
		t.show(s, q)
	}
}

func (t *terminal) show(s game.Session, q game.Question) {
	fmt.Fprintf(t.out, "\n[%d/%d] score %d  lives %d  streak %d\n", s.Index+1, len(s.Questions), s.Score, s.Lives, s.Streak)
	if q.Prompt != "" {
		fmt.Fprintln(t.out, q.Prompt)
	}

	switch st := s.Local.(type) {
	case game.MemoryState:
		cards := lo.Map(q.Items, func(item string, i int) string {
			if st.FaceUp(i) {
				return fmt.Sprintf("%d:%s", i+1, item)
			}
			return fmt.Sprintf("%d:?", i+1)
		})
		fmt.Fprintln(t.out, strings.Join(cards, "  "))
		if st.Previewing {
			fmt.Fprintln(t.out, "Memorise the cards...")
		} else {
			fmt.Fprintln(t.out, "Flip a card by number.")
		}
	case game.SequenceState:
		fmt.Fprintf(t.out, "Replay: %s\n", strings.Join(q.Tokens(), " "))
		fmt.Fprintf(t.out, "So far: %s\n", strings.Join(st.Input, " "))
	case game.AudioState:
		if !st.Announced {
			if s.AudioConfirmed {
				fmt.Fprintln(t.out, "Listen...")
			} else {
				fmt.Fprintln(t.out, "Press enter to hear the letter.")
			}
			return
		}
		t.options(q)
	case game.UnavailableState:
		fmt.Fprintf(t.out, "(%s)\n", st.Reason)
	default:
		t.options(q)
	}
	if q.Hint != "" {
		fmt.Fprintf(t.out, "Hint: %s\n", q.Hint)
	}
}

func (t *terminal) options(q game.Question) {
	for i, opt := range q.Options {
		if i < len(q.Colors) {
			fmt.Fprintf(t.out, "  %d) %s (%s)\n", i+1, opt, q.Colors[i])
			continue
		}
		fmt.Fprintf(t.out, "  %d) %s\n", i+1, opt)
	}
}

func (t *terminal) Results(s game.Session, r *game.CompletionResult) {
	fmt.Fprintf(t.out, "\nGame over! Score %d/%d (%d%%), best streak %d, %ds\n",
		s.Score, s.MaxScore, s.CompletionPercentage(), s.BestStreak, s.Elapsed)
	if r == nil {
		fmt.Fprintln(t.out, "Your score could not be saved.")
		return
	}
	fmt.Fprintf(t.out, "+%d points, %d total, level %d\n", r.EarnedPoints, r.NewPoints, r.NewLevel)
	if r.LeveledUp {
		fmt.Fprintln(t.out, "Level up!")
	}
}
