package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/metrics"
)

const (
	FormatHTML = "html"
	FormatPDF  = "pdf"
)

var (
	ErrNoSource      = errors.New("report source not configured")
	ErrUnknownFormat = errors.New("unknown report format")
)

// Output is a rendered report.
type Output struct {
	Report      Report
	Format      string
	ContentType string
	Filename    string
	Body        []byte
}

type Generator struct {
	source  Source
	html    *HTMLRenderer
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewGenerator(source Source, m *metrics.Metrics) (*Generator, error) {
	renderer, err := NewHTMLRenderer()
	if err != nil {
		return nil, err
	}
	return &Generator{source: source, html: renderer, metrics: m, now: time.Now}, nil
}

// Generate gathers fresh data and renders the report. Unknown report types
// fall back to the executive summary.
func (g *Generator) Generate(ctx context.Context, reportType, format string, opts Options) (*Output, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatHTML
	}
	if format != FormatHTML && format != FormatPDF {
		return nil, ErrUnknownFormat
	}
	if g.source == nil {
		return nil, ErrNoSource
	}

	now := g.now()
	data, err := Gather(ctx, g.source, now)
	if err != nil {
		return nil, err
	}
	r := Build(reportType, data, opts, now)

	out := &Output{Report: r, Format: format}
	stamp := now.UTC().Format("2006-01-02")
	switch format {
	case FormatPDF:
		out.Body, err = RenderPDFBytes(r)
		out.ContentType = "application/pdf"
		out.Filename = fmt.Sprintf("%s_report_%s.pdf", r.Type, stamp)
	default:
		out.Body, err = g.html.RenderBytes(r)
		out.ContentType = "text/html; charset=utf-8"
		out.Filename = fmt.Sprintf("%s_report_%s.html", r.Type, stamp)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s report: %w", r.Type, err)
	}

	g.metrics.Report(r.Type, format)
	log.Infof("[Report] generated %s report as %s (%d bytes)", r.Type, format, len(out.Body))
	return out, nil
}
