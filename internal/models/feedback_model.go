package models

import "time"

// FeedbackType classifies a feedback submission.
type FeedbackType string

const (
	FeedbackGeneral FeedbackType = "feedback"
	FeedbackBug     FeedbackType = "bug"
	FeedbackFeature FeedbackType = "feature"
)

// FeedbackItem is a user submission stored in the top-level feedback collection.
type FeedbackItem struct {
	ID        string       `json:"id" firestore:"-"`
	UserID    string       `json:"userId" firestore:"userId"`
	Type      FeedbackType `json:"type" firestore:"type"`
	Subject   string       `json:"subject" firestore:"subject"`
	Message   string       `json:"message" firestore:"message"`
	CreatedAt time.Time    `json:"createdAt" firestore:"createdAt"`
}
