// Package access decides whether a route may be shown for a given session and
// profile. Everything here is a pure function of its arguments.
package access

import (
	"encoding/json"
	"net/url"
	"strings"

	"sokrate-backend-go/internal/models"
	"sokrate-backend-go/internal/session"
)

const (
	LoginPath   = "/login"
	PricingPath = "/pricing-selection"
	HomePath    = "/dashboard"
)

// Kind is the outcome class of a Decision.
type Kind int

const (
	Allow Kind = iota
	Redirect
	Pending
)

func (k Kind) String() string {
	switch k {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	case Pending:
		return "pending"
	}
	return "unknown"
}

// Decision is the derived, never persisted result of an access check. Values
// are comparable with ==.
type Decision struct {
	Kind   Kind
	Target string
	From   string
}

// MarshalJSON renders the decision for the SPA router.
func (d Decision) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Decision string `json:"decision"`
		Target   string `json:"target,omitempty"`
		From     string `json:"from,omitempty"`
		Location string `json:"location,omitempty"`
	}{
		Decision: d.Kind.String(),
		Target:   d.Target,
		From:     d.From,
		Location: d.Location(),
	})
}

// Location returns the redirect target with the originally requested route
// attached as ?from=, or "" when the decision is not a redirect.
func (d Decision) Location() string {
	if d.Kind != Redirect {
		return ""
	}
	if d.From == "" {
		return d.Target
	}
	return d.Target + "?from=" + url.QueryEscape(d.From)
}

func allow() Decision   { return Decision{Kind: Allow} }
func pending() Decision { return Decision{Kind: Pending} }

func redirectTo(target, from string) Decision {
	return Decision{Kind: Redirect, Target: target, From: from}
}

// RequireSession is the authentication half of the policy.
func RequireSession(route string, s session.Session) Decision {
	if s.Pending() {
		return pending()
	}
	if _, gated := Requirement(route); gated && s.Identity == nil {
		return redirectTo(LoginPath, route)
	}
	return allow()
}

// CanAccess decides whether route is visible for s and p. A nil profile counts
// as the free plan.
func CanAccess(route string, s session.Session, p *models.Profile) Decision {
	if d := RequireSession(route, s); d.Kind != Allow {
		return d
	}
	required, gated := Requirement(route)
	if gated && p.EffectivePlan().Rank() < required.Rank() {
		return redirectTo(PricingPath, route)
	}
	return allow()
}

// ForGuest guards guest-only pages such as the login screen: signed-in users are
// sent back to where they came from, or to the dashboard.
func ForGuest(s session.Session, from string) Decision {
	if s.Pending() {
		return pending()
	}
	if s.Identity != nil {
		target := HomePath
		if isLocalPath(from) {
			target = from
		}
		return Decision{Kind: Redirect, Target: target}
	}
	return allow()
}

// isLocalPath rejects anything that could leave the site, e.g. //evil.com or
// absolute URLs.
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, "://")
}
