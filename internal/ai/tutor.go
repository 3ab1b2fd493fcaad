package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"sokrate-backend-go/internal/models"
)

// MaxContextChars bounds the file content forwarded to the model.
const MaxContextChars = 20000

// Tutor builds the prompts for the solver, quiz and synthesizer tools.
type Tutor struct {
	completer Completer
}

// NewTutor creates a Tutor over completer.
func NewTutor(completer Completer) *Tutor {
	return &Tutor{completer: completer}
}

// Solve answers a problem step by step, in markdown.
func (t *Tutor) Solve(ctx context.Context, req models.SolveRequest) (string, error) {
	var sb strings.Builder
	sb.WriteString("You are Sokrate AI, a helpful and precise tutor. Solve the following problem step-by-step. ")
	sb.WriteString("If a file content is provided, use it as context.\n\nProblem:\n")
	sb.WriteString(req.Problem)
	sb.WriteString("\n\n")
	if req.FileContent != "" {
		sb.WriteString("Context File Content:\n")
		sb.WriteString(Truncate(req.FileContent, MaxContextChars))
		sb.WriteString("\n\n")
	}
	sb.WriteString("Provide the solution in markdown format.")
	return t.completer.Complete(ctx, sb.String(), req.Image)
}

// GenerateQuiz asks for count multiple-choice questions and decodes the JSON reply.
func (t *Tutor) GenerateQuiz(ctx context.Context, req models.QuizRequest) ([]models.QuizQuestion, error) {
	text := req.FileContent
	if text == "" {
		text = "No text provided. Use image or general knowledge."
	}
	prompt := fmt.Sprintf(`Generate %d multiple-choice questions (difficulty: %s) based strictly on the provided text or image.
Return only a JSON array where each element has the shape
{"id": <number>, "question": "<text>", "options": ["<a>", "<b>", "<c>", "<d>"], "correct": <index of the right option>}.

Text Content:
%s
`, req.Count, req.Difficulty, Truncate(text, MaxContextChars))

	reply, err := t.completer.Complete(ctx, prompt, req.Image)
	if err != nil {
		return nil, err
	}
	return ParseQuiz(reply)
}

// Synthesize produces a structured summary of the supplied material.
func (t *Tutor) Synthesize(ctx context.Context, req models.SynthesizeRequest) (string, error) {
	text := req.FileContent
	if text == "" {
		text = "No text provided."
	}
	prompt := fmt.Sprintf(`Analyze and synthesize the provided content (text or image).
Provide a structured summary in markdown with key concepts, definitions and a short recap.

Text Content:
%s
`, Truncate(text, MaxContextChars))
	return t.completer.Complete(ctx, prompt, req.Image)
}

// ParseQuiz decodes a quiz reply, tolerating markdown code fences around the JSON.
func ParseQuiz(reply string) ([]models.QuizQuestion, error) {
	cleaned := strings.ReplaceAll(reply, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var questions []models.QuizQuestion
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		return nil, fmt.Errorf("decode quiz JSON: %w", err)
	}
	for i, q := range questions {
		if q.Correct < 0 || q.Correct >= len(q.Options) {
			return nil, fmt.Errorf("question %d: correct index %d out of range", i, q.Correct)
		}
	}
	return questions, nil
}

// Truncate cuts s to at most n characters without splitting a rune.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
