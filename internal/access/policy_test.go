package access

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sokrate-backend-go/internal/models"
	"sokrate-backend-go/internal/session"
)

var (
	identity = models.Identity{ID: "uid-1", Email: "student@example.com"}

	pendingSession   = session.Session{State: session.Unresolved}
	anonymousSession = session.Session{State: session.Anonymous}
	signedInSession  = session.Session{State: session.Authenticated, Identity: &identity}

	freeProfile = &models.Profile{ID: "uid-1", Plan: models.PlanFree}
	proProfile  = &models.Profile{ID: "uid-1", Plan: models.PlanPro}
)

var proOnly = []string{"/dashboard", "/solver", "/synthesizer", "/history", "/feedback"}

func allRoutes() []string {
	return append(GatedRoutes(), "/", "/faq", "/login", "/pricing-selection", "/solver/step-2")
}

func TestCanAccess_PendingAlwaysPending(t *testing.T) {
	for _, route := range allRoutes() {
		for _, p := range []*models.Profile{nil, freeProfile, proProfile} {
			d := CanAccess(route, pendingSession, p)
			assert.Equal(t, Pending, d.Kind, "route %s", route)
			assert.Empty(t, d.Location())
		}
	}
}

func TestCanAccess_AnonymousRedirectsToLogin(t *testing.T) {
	for _, route := range GatedRoutes() {
		d := CanAccess(route, anonymousSession, nil)
		assert.Equal(t, Decision{Kind: Redirect, Target: LoginPath, From: route}, d)
	}
}

func TestCanAccess_AnonymousOnPublicRoutes(t *testing.T) {
	for _, route := range []string{"/", "/faq", "/pricing-selection", "/checkout-pro"} {
		assert.Equal(t, Allow, CanAccess(route, anonymousSession, nil).Kind, route)
	}
}

func TestCanAccess_PlanGating(t *testing.T) {
	for _, route := range proOnly {
		t.Run(route, func(t *testing.T) {
			assert.Equal(t,
				Decision{Kind: Redirect, Target: PricingPath, From: route},
				CanAccess(route, signedInSession, freeProfile))
			assert.Equal(t, Allow, CanAccess(route, signedInSession, proProfile).Kind)
		})
	}
}

func TestCanAccess_FreeRoutes(t *testing.T) {
	for _, route := range []string{"/quizzes", "/account"} {
		assert.Equal(t, Allow, CanAccess(route, signedInSession, freeProfile).Kind)
		assert.Equal(t, Allow, CanAccess(route, signedInSession, nil).Kind)
	}
}

func TestCanAccess_MissingOrUnknownPlanIsFree(t *testing.T) {
	assert.Equal(t, Redirect, CanAccess("/solver", signedInSession, nil).Kind)
	odd := &models.Profile{Plan: models.Plan("enterprise")}
	assert.Equal(t, Redirect, CanAccess("/solver", signedInSession, odd).Kind)
}

func TestCanAccess_SubPathsInheritRequirement(t *testing.T) {
	d := CanAccess("/history/abc", signedInSession, freeProfile)
	assert.Equal(t, Decision{Kind: Redirect, Target: PricingPath, From: "/history/abc"}, d)
	assert.Equal(t, Allow, CanAccess("/historyx", signedInSession, freeProfile).Kind)
}

func TestCanAccess_Idempotent(t *testing.T) {
	for _, route := range allRoutes() {
		for _, s := range []session.Session{pendingSession, anonymousSession, signedInSession} {
			for _, p := range []*models.Profile{nil, freeProfile, proProfile} {
				assert.Equal(t, CanAccess(route, s, p), CanAccess(route, s, p))
			}
		}
	}
}

func TestScenarioA_FreshLoadAnonymous(t *testing.T) {
	store := session.NewStore("sid", nil)
	assert.Equal(t, Pending, CanAccess("/dashboard", store.Current(), nil).Kind)

	store.Apply(session.SignedOut())

	assert.Equal(t,
		Decision{Kind: Redirect, Target: LoginPath, From: "/dashboard"},
		CanAccess("/dashboard", store.Current(), nil))
}

func TestScenarioB_FreePlan(t *testing.T) {
	assert.Equal(t, Decision{Kind: Redirect, Target: PricingPath, From: "/solver"},
		CanAccess("/solver", signedInSession, freeProfile))
	assert.Equal(t, Allow, CanAccess("/quizzes", signedInSession, freeProfile).Kind)
}

func TestScenarioC_ProPlan(t *testing.T) {
	assert.Equal(t, Allow, CanAccess("/history", signedInSession, proProfile).Kind)
}

func TestRequireSession(t *testing.T) {
	assert.Equal(t, Pending, RequireSession("/solver", pendingSession).Kind)
	assert.Equal(t, Redirect, RequireSession("/solver", anonymousSession).Kind)
	assert.Equal(t, Allow, RequireSession("/solver", signedInSession).Kind)
	assert.Equal(t, Allow, RequireSession("/faq", anonymousSession).Kind)
}

func TestForGuest(t *testing.T) {
	assert.Equal(t, Pending, ForGuest(pendingSession, "").Kind)
	assert.Equal(t, Allow, ForGuest(anonymousSession, "/solver").Kind)
	assert.Equal(t, Decision{Kind: Redirect, Target: "/solver"}, ForGuest(signedInSession, "/solver"))
	assert.Equal(t, Decision{Kind: Redirect, Target: HomePath}, ForGuest(signedInSession, ""))
	assert.Equal(t, Decision{Kind: Redirect, Target: HomePath}, ForGuest(signedInSession, "//evil.example"))
	assert.Equal(t, Decision{Kind: Redirect, Target: HomePath}, ForGuest(signedInSession, "https://evil.example"))
}

func TestDecisionLocationAndJSON(t *testing.T) {
	d := Decision{Kind: Redirect, Target: LoginPath, From: "/solver?x=1"}
	assert.Equal(t, "/login?from=%2Fsolver%3Fx%3D1", d.Location())

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"decision":"redirect","target":"/login","from":"/solver?x=1","location":"/login?from=%2Fsolver%3Fx%3D1"}`, string(raw))

	raw, err = json.Marshal(Decision{Kind: Allow})
	require.NoError(t, err)
	assert.JSONEq(t, `{"decision":"allow"}`, string(raw))
}

func TestRequirement(t *testing.T) {
	plan, ok := Requirement("/solver/")
	assert.True(t, ok)
	assert.Equal(t, models.PlanPro, plan)

	plan, ok = Requirement("/quizzes?difficulty=hard")
	assert.True(t, ok)
	assert.Equal(t, models.PlanFree, plan)

	_, ok = Requirement("/")
	assert.False(t, ok)
}

func TestMetricRoute(t *testing.T) {
	assert.Equal(t, "/solver", MetricRoute("/solver/step-2?x=1"))
	assert.Equal(t, "/account", MetricRoute("/account/"))
	assert.Equal(t, "/login", MetricRoute("/login"))
	assert.Equal(t, "other", MetricRoute("/random/123"))
}
