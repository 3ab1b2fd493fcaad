package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sokrate-backend-go/internal/models"
)

type recordingCompleter struct {
	prompt string
	image  *models.ImagePayload
	reply  string
	err    error
}

func (c *recordingCompleter) Complete(_ context.Context, prompt string, image *models.ImagePayload) (string, error) {
	c.prompt = prompt
	c.image = image
	return c.reply, c.err
}

func TestSolve_BuildsPromptAndForwardsImage(t *testing.T) {
	c := &recordingCompleter{reply: "## Answer"}
	img := &models.ImagePayload{MediaType: "image/png", Data: "aGVsbG8="}

	out, err := NewTutor(c).Solve(context.Background(), models.SolveRequest{
		Problem:     "2x = 4",
		FileContent: strings.Repeat("a", MaxContextChars+50),
		Image:       img,
	})

	require.NoError(t, err)
	assert.Equal(t, "## Answer", out)
	assert.Contains(t, c.prompt, "Problem:\n2x = 4")
	assert.Contains(t, c.prompt, "Context File Content:")
	assert.NotContains(t, c.prompt, strings.Repeat("a", MaxContextChars+1))
	assert.Same(t, img, c.image)
}

func TestSolve_OmitsEmptyContext(t *testing.T) {
	c := &recordingCompleter{reply: "ok"}

	_, err := NewTutor(c).Solve(context.Background(), models.SolveRequest{Problem: "p"})

	require.NoError(t, err)
	assert.NotContains(t, c.prompt, "Context File Content")
	assert.Nil(t, c.image)
}

func TestGenerateQuiz_StripsFences(t *testing.T) {
	c := &recordingCompleter{reply: "```json\n[{\"id\":1,\"question\":\"Q?\",\"options\":[\"a\",\"b\"],\"correct\":1}]\n```"}

	qs, err := NewTutor(c).GenerateQuiz(context.Background(), models.QuizRequest{Difficulty: "easy", Count: 1})

	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, models.QuizQuestion{ID: 1, Question: "Q?", Options: []string{"a", "b"}, Correct: 1}, qs[0])
	assert.Contains(t, c.prompt, "Generate 1 multiple-choice questions (difficulty: easy)")
	assert.Contains(t, c.prompt, "No text provided. Use image or general knowledge.")
}

func TestParseQuiz_Errors(t *testing.T) {
	_, err := ParseQuiz("not json")
	assert.Error(t, err)

	_, err = ParseQuiz(`[{"id":1,"question":"Q","options":["a"],"correct":3}]`)
	assert.Error(t, err)
}

func TestSynthesize_PropagatesError(t *testing.T) {
	c := &recordingCompleter{err: errors.New("overloaded")}

	_, err := NewTutor(c).Synthesize(context.Background(), models.SynthesizeRequest{FileContent: "notes"})

	assert.EqualError(t, err, "overloaded")
	assert.Contains(t, c.prompt, "notes")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "éé", Truncate("ééé", 2))
}
