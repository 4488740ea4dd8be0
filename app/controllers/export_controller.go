package controllers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/hiddentreasuresnetwork/platform/internal/pkg/archive"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/export"
)

// ExportController streams dataset exports and optionally archives them.
type ExportController struct {
	exporter *export.Exporter
	archive  archive.Store
}

// NewExportController takes a nil store when archiving is disabled.
func NewExportController(exporter *export.Exporter, store archive.Store) *ExportController {
	return &ExportController{exporter: exporter, archive: store}
}

// HandleExport dumps a dataset as an attachment.
// GET /api/export?type=&format=&limit=&archive=
func (ec *ExportController) HandleExport(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	file, err := ec.exporter.Export(ctx, export.Request{
		Type:   c.Query("type"),
		Format: c.Query("format"),
		Limit:  c.Query("limit"),
	})
	switch {
	case errors.Is(err, export.ErrUnknownDataset):
		return errorJSON(c, fiber.StatusBadRequest, "Invalid data type. Supported: "+export.SupportedDatasets())
	case errors.Is(err, export.ErrUnknownFormat):
		return errorJSON(c, fiber.StatusBadRequest, "Invalid format. Supported: csv, excel, json")
	case errors.Is(err, export.ErrNoSource):
		return errorJSON(c, fiber.StatusServiceUnavailable, "Database not configured")
	case err != nil:
		return upstreamError(c, "Export", err, "Export failed")
	}

	if queryBool(c, "archive") && ec.archive != nil {
		obj, err := ec.archive.Save(ctx, archive.KindExport, file.Filename, file.ContentType, file.Body)
		if err != nil {
			log.Warnf("[Export] archiving %s failed: %v", file.Filename, err)
		} else {
			c.Set("X-Archive-Url", obj.URL)
		}
	}

	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=\"%s\"", file.Filename))
	return c.Send(file.Body)
}
