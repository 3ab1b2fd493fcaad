// Package gate turns access decisions into gin middleware for SPA pages and
// API routes.
package gate

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sokrate-backend-go/internal/access"
	"sokrate-backend-go/internal/middleware"
	"sokrate-backend-go/internal/models"
	"sokrate-backend-go/internal/session"
)

// Mode selects how a non-Allow decision is rendered.
type Mode int

const (
	// Page renders a loading page or a 303 redirect for browser navigations.
	Page Mode = iota
	// API renders a JSON status code the SPA can act on.
	API
)

const resolutionKey = "gate.resolution"

// DecisionHeader tells the SPA that a page was served before the session resolved.
const DecisionHeader = "X-Access-Decision"

// ProfileSource returns a user's profile, (nil, nil) when it does not exist.
// Satisfied by *profile.Cache.
type ProfileSource interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
}

// Recorder counts gate outcomes; satisfied by *metrics.Collector.
type Recorder interface {
	RecordGateDecision(route, decision, target string)
}

// resolution is memoized per request so nested gates share one session
// snapshot and at most one profile fetch.
type resolution struct {
	session       session.Session
	profile       *models.Profile
	profileLoaded bool
}

// Gate builds route guards over a profile source.
type Gate struct {
	profiles ProfileSource
	recorder Recorder
	logger   *zap.Logger
	mode     Mode
	pending  gin.HandlerFunc
}

// New creates a Gate in Page mode. recorder and logger may be nil.
func New(profiles ProfileSource, recorder Recorder, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{profiles: profiles, recorder: recorder, logger: logger, mode: Page}
}

// API returns a copy of g that answers in API mode.
func (g *Gate) API() *Gate {
	cp := *g
	cp.mode = API
	return &cp
}

// OnPending returns a copy of g that renders a Page-mode Pending with fn instead
// of the built-in loading page. fn must not reveal gated content; the SPA shell
// qualifies, since it boots the identity provider and asks /api/access before
// rendering a route.
func (g *Gate) OnPending(fn gin.HandlerFunc) *Gate {
	cp := *g
	cp.pending = fn
	return &cp
}

// Authenticated requires a signed-in session for route. An empty route means
// the request path.
func (g *Gate) Authenticated(route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := routeOf(c, route)
		res := g.resolve(c)
		g.apply(c, r, access.RequireSession(r, res.session))
	}
}

// Plan requires a signed-in session whose plan satisfies route's requirement.
func (g *Gate) Plan(route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := routeOf(c, route)
		res := g.resolve(c)
		if d := access.RequireSession(r, res.session); d.Kind != access.Allow {
			g.apply(c, r, d)
			return
		}
		p, ok := g.loadProfile(c, res)
		if !ok {
			return
		}
		g.apply(c, r, access.CanAccess(r, res.session, p))
	}
}

// Guest guards guest-only pages: signed-in users go back to ?from= or home.
func (g *Gate) Guest() gin.HandlerFunc {
	return func(c *gin.Context) {
		res := g.resolve(c)
		g.apply(c, c.Request.URL.Path, access.ForGuest(res.session, c.Query("from")))
	}
}

// Decide evaluates the full policy for route without writing a response. It is
// used by the access endpoint so the SPA router and the server agree.
func (g *Gate) Decide(c *gin.Context, route string) (access.Decision, bool) {
	res := g.resolve(c)
	if d := access.RequireSession(route, res.session); d.Kind != access.Allow {
		return d, true
	}
	p, ok := g.loadProfile(c, res)
	if !ok {
		return access.Decision{}, false
	}
	return access.CanAccess(route, res.session, p), true
}

func (g *Gate) resolve(c *gin.Context) *resolution {
	if v, ok := c.Get(resolutionKey); ok {
		if res, ok := v.(*resolution); ok {
			return res
		}
	}
	res := &resolution{session: middleware.CurrentSession(c)}
	c.Set(resolutionKey, res)
	return res
}

// loadProfile fetches the profile once per request. A fetch error counts as
// the lowest tier. It returns false, with the request aborted and nothing
// written, when the client went away during the fetch.
func (g *Gate) loadProfile(c *gin.Context, res *resolution) (*models.Profile, bool) {
	if res.profileLoaded {
		return res.profile, true
	}
	ctx := c.Request.Context()
	p, err := g.profiles.Get(ctx, res.session.UserID())
	if ctx.Err() != nil {
		c.Abort()
		return nil, false
	}
	if err != nil {
		g.logger.Warn("Profile fetch failed; gating as free plan",
			zap.String("user_id", res.session.UserID()), zap.Error(err))
		p = nil
	}
	res.profile, res.profileLoaded = p, true
	return p, true
}

func (g *Gate) apply(c *gin.Context, route string, d access.Decision) {
	if g.recorder != nil {
		g.recorder.RecordGateDecision(access.MetricRoute(route), d.Kind.String(), d.Target)
	}
	switch d.Kind {
	case access.Allow:
		c.Next()
	case access.Pending:
		if g.mode == API {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Session is still resolving", "decision": d})
			return
		}
		c.Header("Cache-Control", "no-store")
		c.Header(DecisionHeader, d.Kind.String())
		if g.pending != nil {
			g.pending(c)
		} else {
			c.Data(http.StatusOK, "text/html; charset=utf-8", loadingPage)
		}
		c.Abort()
	case access.Redirect:
		if g.mode == API {
			c.AbortWithStatusJSON(apiStatus(d), gin.H{"error": apiMessage(d), "redirect": d.Location(), "decision": d})
			return
		}
		c.Redirect(http.StatusSeeOther, d.Location())
		c.Abort()
	}
}

func apiStatus(d access.Decision) int {
	switch d.Target {
	case access.LoginPath:
		return http.StatusUnauthorized
	case access.PricingPath:
		return http.StatusPaymentRequired
	}
	return http.StatusForbidden
}

func apiMessage(d access.Decision) string {
	switch d.Target {
	case access.LoginPath:
		return "Authentication required"
	case access.PricingPath:
		return "A Pro subscription is required"
	}
	return "Not available for this session"
}

func routeOf(c *gin.Context, route string) string {
	if route != "" {
		return route
	}
	return c.Request.URL.Path
}
