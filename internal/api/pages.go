package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"sokrate-backend-go/internal/access"
	"sokrate-backend-go/internal/gate"
)

// PageHandler serves the built SPA. Every navigation passes through the route
// gates before index.html is sent, so a gated page never renders for a client
// that may not see it.
type PageHandler struct {
	staticDir string
	gate      *gate.Gate
}

// NewPageHandler creates a PageHandler over the SPA build in staticDir.
func NewPageHandler(staticDir string, g *gate.Gate) *PageHandler {
	h := &PageHandler{staticDir: staticDir}
	// A pending navigation gets the bare shell: it starts the identity
	// provider, reports to /api/session and then asks /api/access.
	h.gate = g.OnPending(h.shell)
	return h
}

// NoRoute is installed as the engine's NoRoute handler.
func (h *PageHandler) NoRoute(c *gin.Context) {
	p := c.Request.URL.Path
	if strings.HasPrefix(p, "/api/") || p == "/api" ||
		(c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
		return
	}
	if file, ok := h.asset(p); ok {
		c.File(file)
		return
	}

	var guard gin.HandlerFunc
	switch {
	case p == access.LoginPath:
		guard = h.gate.Guest()
	default:
		guard = h.gate.Plan("")
	}
	// Run the guard inline; it calls c.Next on Allow, which is a no-op here
	// since NoRoute is the last handler.
	guard(c)
	if c.IsAborted() || c.Writer.Written() {
		return
	}
	c.Header("Cache-Control", "no-cache")
	h.shell(c)
}

func (h *PageHandler) shell(c *gin.Context) {
	c.File(filepath.Join(h.staticDir, "index.html"))
}

// asset returns the on-disk file for p when it is a regular file inside staticDir.
func (h *PageHandler) asset(p string) (string, bool) {
	clean := path.Clean("/" + p)
	if clean == "/" || clean == "/index.html" {
		return "", false
	}
	file := filepath.Join(h.staticDir, filepath.FromSlash(clean))
	info, err := os.Stat(file)
	if err != nil || info.IsDir() {
		return "", false
	}
	return file, true
}
