package core

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"sokrate-backend-go/internal/models"
)

const (
	maxProblemLen  = 20000
	maxSubjectLen  = 200
	maxMessageLen  = 5000
	maxTitleLen    = 200
	maxSummaryLen  = 2000
	maxImageBytes  = 5 << 20
	maxQuizCount   = 20
	maxHistoryPage = 100
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var allowedDifficulties = map[string]bool{"easy": true, "medium": true, "hard": true}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// requireText checks that s is non-blank and at most max characters.
func requireText(field, s string, max int) error {
	if strings.TrimSpace(s) == "" {
		return invalid("%s is required", field)
	}
	if utf8.RuneCountInString(s) > max {
		return invalid("%s must be at most %d characters", field, max)
	}
	return nil
}

func validateImage(img *models.ImagePayload) error {
	if img == nil {
		return nil
	}
	if !allowedImageTypes[img.MediaType] {
		return invalid("unsupported image media type %q", img.MediaType)
	}
	if base64.StdEncoding.DecodedLen(len(img.Data)) > maxImageBytes+3 {
		return invalid("image must be at most %d bytes", maxImageBytes)
	}
	raw, err := base64.StdEncoding.DecodeString(img.Data)
	if err != nil {
		return invalid("image data is not valid base64")
	}
	if len(raw) == 0 {
		return invalid("image data is empty")
	}
	if len(raw) > maxImageBytes {
		return invalid("image must be at most %d bytes", maxImageBytes)
	}
	return nil
}

func validateSolve(req models.SolveRequest) error {
	if err := requireText("problem", req.Problem, maxProblemLen); err != nil {
		return err
	}
	return validateImage(req.Image)
}

func validateQuiz(req models.QuizRequest) error {
	if strings.TrimSpace(req.FileContent) == "" && req.Image == nil {
		return invalid("fileContent or image is required")
	}
	if !allowedDifficulties[req.Difficulty] {
		return invalid("difficulty must be easy, medium or hard")
	}
	if req.Count < 1 || req.Count > maxQuizCount {
		return invalid("count must be between 1 and %d", maxQuizCount)
	}
	return validateImage(req.Image)
}

func validateSynthesize(req models.SynthesizeRequest) error {
	if strings.TrimSpace(req.FileContent) == "" && req.Image == nil {
		return invalid("fileContent or image is required")
	}
	return validateImage(req.Image)
}

// headline returns the first line of s, cut to max characters.
func headline(s string, max int) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	if utf8.RuneCountInString(s) > max {
		s = string([]rune(s)[:max-1]) + "…"
	}
	return s
}
