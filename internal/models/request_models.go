package models

// ImagePayload is an inline image sent alongside a tutor request.
type ImagePayload struct {
	MediaType string `json:"media_type" binding:"required"`
	Data      string `json:"data" binding:"required"` // base64, no data: prefix
}

// SolveRequest is the body of POST /api/solve.
type SolveRequest struct {
	Problem     string        `json:"problem"`
	FileContent string        `json:"fileContent,omitempty"`
	Image       *ImagePayload `json:"image,omitempty"`
}

// QuizRequest is the body of POST /api/quiz/generate.
type QuizRequest struct {
	FileContent string        `json:"fileContent,omitempty"`
	Image       *ImagePayload `json:"image,omitempty"`
	Difficulty  string        `json:"difficulty"`
	Count       int           `json:"count"`
}

// SynthesizeRequest is the body of POST /api/synthesize.
type SynthesizeRequest struct {
	FileContent string        `json:"fileContent,omitempty"`
	Image       *ImagePayload `json:"image,omitempty"`
}

// QuizQuestion is one generated multiple-choice question.
type QuizQuestion struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Correct  int      `json:"correct"`
}

// CreateHistoryRequest is the body of POST /api/history.
type CreateHistoryRequest struct {
	Type    HistoryItemType `json:"type" binding:"required"`
	Title   string          `json:"title" binding:"required"`
	Summary string          `json:"summary,omitempty"`
}

// CreateFeedbackRequest is the body of POST /api/feedback.
type CreateFeedbackRequest struct {
	Type    FeedbackType `json:"type" binding:"required"`
	Subject string       `json:"subject" binding:"required"`
	Message string       `json:"message" binding:"required"`
}

// UpdateProfileRequest is the body of PATCH /api/account/profile.
// Pointers distinguish "not provided" from an empty value.
type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName,omitempty"`
	Theme       *Theme  `json:"theme,omitempty"`
}
