package access

import (
	"sort"
	"strings"

	"sokrate-backend-go/internal/models"
)

// routeTable maps each gated route to the minimum plan it needs. Every route in
// the table requires a signed-in user; anything absent is public.
var routeTable = map[string]models.Plan{
	"/dashboard":   models.PlanPro,
	"/solver":      models.PlanPro,
	"/synthesizer": models.PlanPro,
	"/history":     models.PlanPro,
	"/feedback":    models.PlanPro,
	"/quizzes":     models.PlanFree,
	"/account":     models.PlanFree,
}

// Requirement returns the plan required for route and whether the route is
// gated at all. Sub-paths inherit their parent's requirement.
func Requirement(route string) (models.Plan, bool) {
	route = normalize(route)
	if plan, ok := routeTable[route]; ok {
		return plan, true
	}
	for prefix, plan := range routeTable {
		if strings.HasPrefix(route, prefix+"/") {
			return plan, true
		}
	}
	return "", false
}

// GatedRoutes lists the configured routes in a stable order.
func GatedRoutes() []string {
	routes := make([]string, 0, len(routeTable))
	for r := range routeTable {
		routes = append(routes, r)
	}
	sort.Strings(routes)
	return routes
}

func normalize(route string) string {
	if i := strings.IndexAny(route, "?#"); i >= 0 {
		route = route[:i]
	}
	if len(route) > 1 {
		route = strings.TrimRight(route, "/")
	}
	return route
}

// MetricRoute maps route to a bounded label: the table entry it falls under,
// the login page, or "other".
func MetricRoute(route string) string {
	route = normalize(route)
	if _, ok := routeTable[route]; ok {
		return route
	}
	for prefix := range routeTable {
		if strings.HasPrefix(route, prefix+"/") {
			return prefix
		}
	}
	if route == LoginPath {
		return LoginPath
	}
	return "other"
}
