package report

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates
var templateFS embed.FS

// HTMLRenderer renders printable reports from the embedded template.
type HTMLRenderer struct {
	engine *html.Engine
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFuncMap(map[string]interface{}{
		"metric":        FormatMetric,
		"trendClass":    TrendClass,
		"trendIcon":     TrendIcon,
		"generatedDate": func(t time.Time) string { return t.Format("1/2/2006") },
		"generatedTime": func(t time.Time) string { return t.Format("3:04:05 PM") },
	})
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("load report templates: %w", err)
	}
	return &HTMLRenderer{engine: engine}, nil
}

func (h *HTMLRenderer) Render(w io.Writer, r Report) error {
	return h.engine.Render(w, "report", map[string]interface{}{
		"Report":      r,
		"Placeholder": placeholderText,
		"Year":        r.GeneratedAt.Year(),
	})
}

func (h *HTMLRenderer) RenderBytes(r Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := h.Render(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
