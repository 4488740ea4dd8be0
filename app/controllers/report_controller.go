package controllers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/hiddentreasuresnetwork/platform/internal/pkg/report"
)

type ReportController struct {
	generator *report.Generator
}

func NewReportController(generator *report.Generator) *ReportController {
	return &ReportController{generator: generator}
}

// HandleGenerateReport renders a printable report.
// GET /api/reports/generate?type=&format=&includeCharts=&includeTables=&sections=
func (rc *ReportController) HandleGenerateReport(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := rc.generator.Generate(ctx, c.Query("type", report.TypeExecutive), c.Query("format"), reportOptions(c))
	switch {
	case errors.Is(err, report.ErrUnknownFormat):
		return errorJSON(c, fiber.StatusBadRequest, "Invalid format. Supported: html, pdf")
	case errors.Is(err, report.ErrNoSource):
		return errorJSON(c, fiber.StatusServiceUnavailable, "Database not configured")
	case err != nil:
		return upstreamError(c, "Report", err, "Report generation failed")
	}

	c.Set(fiber.HeaderContentType, out.ContentType)
	if out.Format == report.FormatPDF {
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=\"%s\"", out.Filename))
	}
	return c.Send(out.Body)
}

func reportOptions(c *fiber.Ctx) report.Options {
	var opts report.Options
	opts.IncludeCharts = optionalBool(c.Query("includeCharts"))
	opts.IncludeTables = optionalBool(c.Query("includeTables"))
	for _, s := range strings.Split(c.Query("sections"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			opts.CustomSections = append(opts.CustomSections, s)
		}
	}
	return opts
}

func optionalBool(raw string) *bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &v
}
