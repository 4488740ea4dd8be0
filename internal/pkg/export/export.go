package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/metrics"
)

const (
	DefaultLimit = 1000
	MaxLimit     = 10000
)

var (
	ErrUnknownDataset = errors.New("unknown export dataset")
	ErrUnknownFormat  = errors.New("unknown export format")
	ErrNoSource       = errors.New("export source not configured")
)

// Source loads dataset rows, newest first.
type Source interface {
	ExportRows(ctx context.Context, dataset string, limit int) ([]Row, error)
}

type Request struct {
	Type   string
	Format string
	Limit  string
}

// File is an encoded export ready to be served or archived.
type File struct {
	Dataset     string
	Format      Format
	Filename    string
	ContentType string
	Body        []byte
	Rows        int
}

type Exporter struct {
	source  Source
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewExporter(source Source, m *metrics.Metrics) *Exporter {
	return &Exporter{source: source, metrics: m, now: time.Now}
}

// ParseLimit returns DefaultLimit for empty or invalid input and caps the
// value at MaxLimit.
func ParseLimit(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return DefaultLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

// Export validates the request, loads the rows and encodes them.
func (e *Exporter) Export(ctx context.Context, req Request) (*File, error) {
	dataset := strings.ToLower(strings.TrimSpace(req.Type))
	columns, ok := Columns(dataset)
	if !ok {
		return nil, ErrUnknownDataset
	}
	format, err := ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}
	if e.source == nil {
		return nil, ErrNoSource
	}

	rows, err := e.source.ExportRows(ctx, dataset, ParseLimit(req.Limit))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", dataset, err)
	}

	now := e.now()
	var buf bytes.Buffer
	if err := Encode(&buf, format, Document{
		Title:       Title(dataset),
		GeneratedAt: now,
		Columns:     columns,
		Rows:        rows,
	}); err != nil {
		return nil, fmt.Errorf("encode %s: %w", dataset, err)
	}

	e.metrics.Export(dataset, string(format))
	log.Infof("[Export] %s as %s (%d rows)", dataset, format, len(rows))
	return &File{
		Dataset:     dataset,
		Format:      format,
		Filename:    fmt.Sprintf("%s_export_%s.%s", dataset, now.UTC().Format("2006-01-02"), format.Extension()),
		ContentType: format.ContentType(),
		Body:        buf.Bytes(),
		Rows:        len(rows),
	}, nil
}
