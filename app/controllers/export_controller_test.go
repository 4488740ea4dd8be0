package controllers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hiddentreasuresnetwork/platform/internal/pkg/archive"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/export"
)

type rowsSource struct {
	rows      []export.Row
	err       error
	lastLimit int
}

func (s *rowsSource) ExportRows(_ context.Context, _ string, limit int) ([]export.Row, error) {
	s.lastLimit = limit
	return s.rows, s.err
}

type memoryArchive struct {
	saved []string
	err   error
}

func (a *memoryArchive) Save(_ context.Context, kind, filename, _ string, body []byte) (*archive.Object, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.saved = append(a.saved, kind+"/"+filename)
	return &archive.Object{Bucket: "htn", Key: kind + "/" + filename, Size: int64(len(body)), URL: "s3://htn/" + kind + "/" + filename}, nil
}

func newExportApp(source export.Source, store archive.Store) *fiber.App {
	ec := NewExportController(export.NewExporter(source, nil), store)
	app := newTestApp("")
	app.Get("/export", ec.HandleExport)
	return app
}

func TestExportCSV(t *testing.T) {
	source := &rowsSource{rows: []export.Row{{
		"displayName": "Ada Lovelace",
		"email":       "ada@example.com",
		"status":      "active",
	}}}
	app := newExportApp(source, nil)

	resp, body := doRequest(t, app, http.MethodGet, "/export?type=students&limit=25", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "text/csv", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), `attachment; filename="students_export_`)
	assert.Contains(t, string(body), "Name,Email")
	assert.Contains(t, string(body), "Ada Lovelace")
	assert.Equal(t, 25, source.lastLimit)
}

func TestExportFormats(t *testing.T) {
	app := newExportApp(&rowsSource{}, nil)

	resp, _ := doRequest(t, app, http.MethodGet, "/export?type=donations&format=excel", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.ms-excel", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), ".xls")

	resp, body := doRequest(t, app, http.MethodGet, "/export?type=waitlist&format=json", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, string(body), `"totalRows"`)
}

func TestExportErrors(t *testing.T) {
	tests := []struct {
		name   string
		source export.Source
		target string
		status int
		msg    string
	}{
		{"unknown dataset", &rowsSource{}, "/export?type=pilots", fiber.StatusBadRequest, "Invalid data type. Supported: " + export.SupportedDatasets()},
		{"unknown format", &rowsSource{}, "/export?type=students&format=pdf", fiber.StatusBadRequest, "Invalid format. Supported: csv, excel, json"},
		{"no database", nil, "/export?type=students", fiber.StatusServiceUnavailable, "Database not configured"},
		{"source failure", &rowsSource{err: errors.New("connection refused")}, "/export?type=mentors", fiber.StatusInternalServerError, "load mentors: connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newExportApp(tt.source, nil)
			resp, body := doRequest(t, app, http.MethodGet, tt.target, nil)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.msg, decodeMap(t, body)["error"])
		})
	}
}

func TestExportArchive(t *testing.T) {
	store := &memoryArchive{}
	app := newExportApp(&rowsSource{}, store)

	resp, _ := doRequest(t, app, http.MethodGet, "/export?type=organizations&archive=true", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, store.saved, 1)
	assert.Contains(t, resp.Header.Get("X-Archive-Url"), "s3://htn/exports/organizations_export_")

	resp, _ = doRequest(t, app, http.MethodGet, "/export?type=organizations", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, store.saved, 1)
	assert.Empty(t, resp.Header.Get("X-Archive-Url"))

	failing := newExportApp(&rowsSource{}, &memoryArchive{err: errors.New("bucket missing")})
	resp, _ = doRequest(t, failing, http.MethodGet, "/export?type=organizations&archive=1", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("X-Archive-Url"))
}
