package sim

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/flosch/pongo2/v6"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// embedLoader resolves pongo2 templates and includes from the embedded tree.
type embedLoader struct{}

func (embedLoader) Abs(base, name string) string {
	return path.Join("templates", path.Base(name))
}

func (embedLoader) Get(name string) (io.Reader, error) {
	b, err := templateFS.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

// renderer renders the simulator's HTML pages with pongo2.
type renderer struct {
	set *pongo2.TemplateSet
}

func newRenderer() *renderer {
	return &renderer{set: pongo2.NewSet("benefits-sim", embedLoader{})}
}

// HTML renders a template with the given context.
func (r *renderer) HTML(c *gin.Context, code int, name string, ctx pongo2.Context) {
	tmpl, err := r.set.FromCache(name)
	if err != nil {
		c.String(http.StatusInternalServerError, "template %s: %v", name, err)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(ctx, &buf); err != nil {
		c.String(http.StatusInternalServerError, "render %s: %v", name, err)
		return
	}
	c.Data(code, "text/html; charset=utf-8", buf.Bytes())
}

// check parses every page once so a broken template fails at startup.
func (r *renderer) check(names ...string) error {
	for _, name := range names {
		if _, err := r.set.FromCache(name); err != nil {
			return fmt.Errorf("parse template %s: %w", name, err)
		}
	}
	return nil
}
