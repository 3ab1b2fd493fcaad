package models

import "time"

// HistoryItemType identifies which tool produced a history entry.
type HistoryItemType string

const (
	HistorySolver      HistoryItemType = "solver"
	HistorySynthesizer HistoryItemType = "synthesizer"
	HistoryQuiz        HistoryItemType = "quiz"
)

// HistoryItem is one entry of a user's study history (users/{uid}/history).
type HistoryItem struct {
	ID        string          `json:"id" firestore:"-"`
	Type      HistoryItemType `json:"type" firestore:"type"`
	Title     string          `json:"title" firestore:"title"`
	Summary   string          `json:"summary,omitempty" firestore:"summary,omitempty"`
	CreatedAt time.Time       `json:"createdAt" firestore:"createdAt"`
}
