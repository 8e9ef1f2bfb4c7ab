package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"slices"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/samber/lo"

	"learnplay/internal/models"
)

var ErrBadAnalysis = errors.New("analysis response is not valid JSON")

const analysisSystemPrompt = "You are a special education specialist. Always answer with valid JSON."

// AnalysisInput is what a teacher's AI analysis is based on
type AnalysisInput struct {
	Student  models.StudentSummary `json:"student"`
	Sessions []models.GameSession  `json:"sessions"`
}

// AIService writes performance summaries of students
type AIService struct {
	client  *openai.Client
	model   string
	enabled bool
}

// NewAIService creates the service. Without an API key it produces a
// rule-based analysis instead of calling the model.
func NewAIService(apiKey, model string, opts ...option.RequestOption) *AIService {
	if apiKey == "" {
		log.Println("AI analysis disabled: OPENAI_API_KEY not configured")
		return &AIService{model: model}
	}

	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &AIService{client: &client, model: model, enabled: true}
}

// IsEnabled reports whether a model is called
func (s *AIService) IsEnabled() bool {
	return s.enabled
}

// Analyze summarises the student's recent play
func (s *AIService) Analyze(ctx context.Context, in AnalysisInput) (*models.AIAnalysis, error) {
	if !s.enabled {
		return cannedAnalysis(in), nil
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(analysisSystemPrompt),
			openai.UserMessage(analysisPrompt(in)),
		},
		MaxTokens:   openai.Int(2000),
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request analysis: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrBadAnalysis
	}
	return parseAnalysis(resp.Choices[0].Message.Content)
}

type categoryScore struct {
	category string
	avg      int
	played   int
}

func scoreByCategory(sessions []models.GameSession) []categoryScore {
	groups := lo.GroupBy(sessions, func(s models.GameSession) string {
		if s.Category == "" {
			return "other"
		}
		return s.Category
	})
	scores := lo.MapToSlice(groups, func(category string, ss []models.GameSession) categoryScore {
		total := lo.SumBy(ss, func(s models.GameSession) int { return s.Score })
		return categoryScore{
			category: category,
			avg:      int(math.Round(float64(total) / float64(len(ss)))),
			played:   len(ss),
		}
	})
	slices.SortFunc(scores, func(a, b categoryScore) int {
		if a.avg != b.avg {
			return b.avg - a.avg
		}
		return strings.Compare(a.category, b.category)
	})
	return scores
}

func analysisPrompt(in AnalysisInput) string {
	var b strings.Builder
	completed := lo.CountBy(in.Sessions, func(s models.GameSession) bool { return s.IsCompleted() })
	avg := 0
	if len(in.Sessions) > 0 {
		avg = int(math.Round(float64(lo.SumBy(in.Sessions, func(s models.GameSession) int { return s.Score })) / float64(len(in.Sessions))))
	}
	needs := "not specified"
	if len(in.Student.LearningDisabilities) > 0 {
		needs = strings.Join(in.Student.LearningDisabilities, ", ")
	}

	fmt.Fprintf(&b, "Analyse the following student data and write a detailed assessment.\n\n")
	fmt.Fprintf(&b, "## Student\n- Name: %s\n- Level: %d\n- Total points: %d\n- Learning difficulties: %s\n\n",
		in.Student.FullName, in.Student.Level, in.Student.Points, needs)
	fmt.Fprintf(&b, "## Performance\n- Total games: %d\n- Completed games: %d\n- Average score: %d\n\n",
		len(in.Sessions), completed, avg)

	b.WriteString("## By category\n")
	for _, c := range scoreByCategory(in.Sessions) {
		fmt.Fprintf(&b, "- %s: average %d points (%d games)\n", c.category, c.avg, c.played)
	}

	b.WriteString("\n## Latest games\n")
	for _, s := range lo.Slice(in.Sessions, 0, 10) {
		status := "in progress"
		if s.IsCompleted() {
			status = "completed"
		}
		fmt.Fprintf(&b, "- %s (%s): %d points, %s\n", s.GameTitle, s.Category, s.Score, status)
	}

	b.WriteString(`
Answer in this JSON format:
{
  "summary": "overall performance summary (2-3 sentences)",
  "strengths": ["strength 1", "strength 2", "strength 3"],
  "weaknesses": ["area to improve 1", "area to improve 2"],
  "recommendations": ["recommendation 1", "recommendation 2", "recommendation 3", "recommendation 4"],
  "encouragement": "a motivating message for the student"
}

Take the student's learning difficulties into account. Return only JSON.
`)
	return b.String()
}

// parseAnalysis pulls the outermost JSON object out of a model reply
func parseAnalysis(text string) (*models.AIAnalysis, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, ErrBadAnalysis
	}

	var analysis models.AIAnalysis
	if err := json.Unmarshal([]byte(text[start:end+1]), &analysis); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadAnalysis, err)
	}
	return &analysis, nil
}

func cannedAnalysis(in AnalysisInput) *models.AIAnalysis {
	name := in.Student.FullName
	if len(in.Sessions) == 0 {
		return &models.AIAnalysis{
			Summary:         fmt.Sprintf("%s has not played any games yet, so there is nothing to assess.", name),
			Strengths:       []string{},
			Weaknesses:      []string{},
			Recommendations: []string{"Assign a short, easy game to get started."},
			Encouragement:   "Every expert was once a beginner. Let's play the first game!",
		}
	}

	scores := scoreByCategory(in.Sessions)
	strong := lo.Filter(scores, func(c categoryScore, _ int) bool { return c.avg >= 70 })
	weak := lo.Filter(scores, func(c categoryScore, _ int) bool { return c.avg < 50 })
	avg := int(math.Round(float64(lo.SumBy(in.Sessions, func(s models.GameSession) int { return s.Score })) / float64(len(in.Sessions))))

	analysis := &models.AIAnalysis{
		Summary: fmt.Sprintf("%s played %d games with an average score of %d. The best results are in %s.",
			name, len(in.Sessions), avg, scores[0].category),
		Strengths: lo.Map(strong, func(c categoryScore, _ int) string {
			return fmt.Sprintf("Solid %s skills (average %d)", c.category, c.avg)
		}),
		Weaknesses: lo.Map(weak, func(c categoryScore, _ int) string {
			return fmt.Sprintf("%s needs more practice (average %d)", c.category, c.avg)
		}),
		Recommendations: lo.Map(weak, func(c categoryScore, _ int) string {
			return fmt.Sprintf("Assign short daily %s games at an easier level", c.category)
		}),
		Encouragement: fmt.Sprintf("Great effort, %s! Keep playing and you will keep improving.", name),
	}
	if len(analysis.Recommendations) == 0 {
		analysis.Recommendations = []string{"Keep a steady routine and try a harder game next"}
	}
	return analysis
}
