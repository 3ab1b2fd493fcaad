// Package session holds the authoritative "who is signed in" state for one
// client instance and the registry that keeps one such store per client.
//
// The state machine is deliberately small:
//
//	Unresolved ──first callback──▶ Authenticated(identity) | Anonymous
//	Authenticated ──sign-out / expiry──▶ Anonymous
//	Anonymous ──sign-in──▶ Authenticated(identity)
//
// Nothing ever returns to Unresolved.
package session

import (
	"encoding/json"

	"sokrate-backend-go/internal/models"
)

// State is the resolution state of a Session.
type State int

const (
	Unresolved State = iota
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	}
	return "unknown"
}

// Session is an immutable snapshot of the authentication state.
type Session struct {
	State    State
	Identity *models.Identity
}

// Pending reports whether the initial resolution window is still open.
func (s Session) Pending() bool {
	return s.State == Unresolved
}

// UserID returns the identity ID, or "" when nobody is signed in.
func (s Session) UserID() string {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.ID
}

// MarshalJSON renders the session the way the SPA consumes it.
func (s Session) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Pending  bool             `json:"pending"`
		State    string           `json:"state"`
		Identity *models.Identity `json:"identity"`
	}{
		Pending:  s.Pending(),
		State:    s.State.String(),
		Identity: s.Identity,
	})
}

// Event is the single message type the identity-provider boundary feeds into a
// Store. A nil Identity means "nobody is signed in".
type Event struct {
	Identity *models.Identity
	// TimedOut marks the synthetic event raised when the provider never answered
	// within the resolve timeout.
	TimedOut bool
}

// SignedIn builds an auth-state event for identity.
func SignedIn(identity models.Identity) Event {
	return Event{Identity: &identity}
}

// SignedOut builds an auth-state event with no identity.
func SignedOut() Event {
	return Event{}
}

// Next is the pure transition function. It returns the new session and whether
// anything changed.
func Next(cur Session, ev Event) (Session, bool) {
	if ev.TimedOut {
		if cur.State != Unresolved {
			return cur, false
		}
		return Session{State: Anonymous}, true
	}

	if ev.Identity == nil {
		if cur.State == Anonymous {
			return cur, false
		}
		return Session{State: Anonymous}, true
	}

	if cur.State == Authenticated && cur.Identity != nil && *cur.Identity == *ev.Identity {
		return cur, false
	}
	identity := *ev.Identity
	return Session{State: Authenticated, Identity: &identity}, true
}
