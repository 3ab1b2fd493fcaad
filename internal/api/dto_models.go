package api

import (
	"sokrate-backend-go/internal/models"
)

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse = models.ErrorResponse

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ReportSessionRequest is the body of POST /api/session. A null idToken means
// the identity provider reports nobody signed in.
type ReportSessionRequest struct {
	IDToken *string `json:"idToken"`
}

// SolveResponse is returned by POST /api/solve.
type SolveResponse struct {
	Solution string `json:"solution"`
}

// QuizResponse is returned by POST /api/quiz/generate.
type QuizResponse struct {
	Questions []models.QuizQuestion `json:"questions"`
}

// SynthesizeResponse is returned by POST /api/synthesize.
type SynthesizeResponse struct {
	Synthesis string `json:"synthesis"`
}

// CreateCheckoutSessionRequest accepts the pricing form post or a JSON body.
type CreateCheckoutSessionRequest struct {
	LookupKey string `json:"lookup_key" form:"lookup_key"`
}
