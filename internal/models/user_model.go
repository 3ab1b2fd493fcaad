package models

import "time"

// Plan is the subscription tier stored on a user's profile.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// Rank orders plans so that a higher tier satisfies a lower requirement.
// Unknown plans rank as free.
func (p Plan) Rank() int {
	if p == PlanPro {
		return 1
	}
	return 0
}

// Theme is the UI theme preference saved on a profile.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// Valid reports whether t is one of the known themes.
func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

// Identity is the authenticated principal as reported by the identity provider.
// It is read-only to this service.
type Identity struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photoURL,omitempty"`
}

// Profile is the per-user subscription and preference record, keyed by Identity.ID.
type Profile struct {
	ID               string    `json:"id" firestore:"-"` // Firebase Auth UID, the document ID
	DisplayName      string    `json:"displayName,omitempty" firestore:"displayName,omitempty"`
	Email            string    `json:"email,omitempty" firestore:"email,omitempty"`
	PhotoURL         string    `json:"photoURL,omitempty" firestore:"photoURL,omitempty"`
	Theme            Theme     `json:"theme,omitempty" firestore:"theme,omitempty"`
	Plan             Plan      `json:"plan" firestore:"plan,omitempty"`
	StripeCustomerID string    `json:"stripeCustomerId,omitempty" firestore:"stripeCustomerId,omitempty"`
	CreatedAt        time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// EffectivePlan returns the plan to enforce. A missing profile, an empty plan or
// an unknown value all count as free.
func (p *Profile) EffectivePlan() Plan {
	if p == nil || p.Plan != PlanPro {
		return PlanFree
	}
	return PlanPro
}

// ProfileUpdate is a partial profile write. Nil fields are left untouched.
type ProfileUpdate struct {
	DisplayName      *string
	Email            *string
	PhotoURL         *string
	Theme            *Theme
	Plan             *Plan
	StripeCustomerID *string
}
