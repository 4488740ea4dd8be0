package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
)

var (
	navy = [3]int{26, 26, 46}
	gold = [3]int{212, 175, 55}
	grey = [3]int{102, 102, 102}
	mist = [3]int{248, 249, 250}
)

// RenderPDF lays the report out on A4 pages with the core Helvetica font.
func RenderPDF(w io.Writer, r Report) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle(r.Title, true)
	pdf.SetAuthor("Hidden Treasures Network", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	footer := r.Footer
	if footer == "" {
		footer = fmt.Sprintf("Hidden Treasures Network - Empowering Youth Through Aviation & STEM | (c) %d Infinity Aero Club Tampa Bay, Inc.", r.GeneratedAt.Year())
	}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 8)
		setText(pdf, grey)
		pdf.CellFormat(0, 5, tr(footer), "", 1, "C", false, 0, "")
		pdf.CellFormat(0, 4, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	width, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	content := width - left - right

	pdf.SetFont("Helvetica", "B", 14)
	setText(pdf, navy)
	pdf.CellFormat(0, 8, "Hidden Treasures Network", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, tr(r.Title), "", 1, "C", false, 0, "")
	if r.Subtitle != "" {
		pdf.SetFont("Helvetica", "", 12)
		setText(pdf, grey)
		pdf.CellFormat(0, 7, tr(r.Subtitle), "", 1, "C", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 9)
	setText(pdf, grey)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s at %s",
		r.GeneratedAt.Format("1/2/2006"), r.GeneratedAt.Format("3:04:05 PM")), "", 1, "C", false, 0, "")

	pdf.SetDrawColor(gold[0], gold[1], gold[2])
	pdf.SetLineWidth(0.8)
	y := pdf.GetY() + 2
	pdf.Line(left, y, left+content, y)
	pdf.SetLineWidth(0.2)
	pdf.Ln(8)

	for _, s := range r.Sections {
		pdf.SetFont("Helvetica", "B", 13)
		setText(pdf, navy)
		pdf.CellFormat(0, 8, tr(s.Title), "B", 1, "L", false, 0, "")
		pdf.Ln(3)

		switch s.Kind {
		case KindText:
			pdf.SetFont("Helvetica", "", 10)
			setText(pdf, grey)
			pdf.MultiCell(0, 5, tr(s.Text), "", "L", false)
		case KindMetric:
			writeMetrics(pdf, tr, s.Metrics, content)
		case KindTable:
			if s.Table != nil {
				writeTable(pdf, tr, s.Table, content)
			}
		default:
			pdf.SetFont("Helvetica", "I", 10)
			setText(pdf, grey)
			pdf.SetFillColor(mist[0], mist[1], mist[2])
			text := s.Text
			if text == "" {
				text = placeholderText
			}
			pdf.CellFormat(0, 20, tr(text), "1", 1, "C", true, 0, "")
		}
		pdf.Ln(6)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

// RenderPDFBytes is RenderPDF into memory.
func RenderPDFBytes(r Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := RenderPDF(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeMetrics lays metrics out as cards, at most three per row.
func writeMetrics(pdf *fpdf.Fpdf, tr func(string) string, metrics []Metric, content float64) {
	perRow := 3
	if len(metrics) < perRow {
		perRow = len(metrics)
	}
	if perRow == 0 {
		return
	}
	gap := 4.0
	cardW := (content - gap*float64(perRow-1)) / float64(perRow)
	left, _, _, _ := pdf.GetMargins()

	for i := 0; i < len(metrics); i += perRow {
		end := i + perRow
		if end > len(metrics) {
			end = len(metrics)
		}
		y := pdf.GetY()
		for j, m := range metrics[i:end] {
			x := left + float64(j)*(cardW+gap)
			pdf.SetFillColor(mist[0], mist[1], mist[2])
			pdf.Rect(x, y, cardW, 24, "F")
			pdf.SetFillColor(gold[0], gold[1], gold[2])
			pdf.Rect(x, y, 1.2, 24, "F")

			pdf.SetXY(x, y+3)
			pdf.SetFont("Helvetica", "B", 16)
			setText(pdf, navy)
			pdf.CellFormat(cardW, 9, tr(FormatMetric(m.Value, m.Format)), "", 2, "C", false, 0, "")
			pdf.SetFont("Helvetica", "", 9)
			setText(pdf, grey)
			label := m.Label
			if m.Trend != "" {
				label += " (" + strings.TrimSpace(m.Trend+" "+m.TrendValue) + ")"
			}
			pdf.CellFormat(cardW, 6, tr(label), "", 0, "C", false, 0, "")
		}
		pdf.SetXY(left, y+28)
	}
}

func writeTable(pdf *fpdf.Fpdf, tr func(string) string, t *Table, content float64) {
	if len(t.Headers) == 0 {
		return
	}
	colW := content / float64(len(t.Headers))

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(navy[0], navy[1], navy[2])
	pdf.SetTextColor(255, 255, 255)
	for _, h := range t.Headers {
		pdf.CellFormat(colW, 8, tr(h), "", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	setText(pdf, navy)
	for i, row := range t.Rows {
		fill := i%2 == 1
		pdf.SetFillColor(mist[0], mist[1], mist[2])
		for c := range t.Headers {
			cell := ""
			if c < len(row) {
				cell = pdfSafe(row[c])
			}
			pdf.CellFormat(colW, 7, tr(cell), "B", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}
}

// pdfSafe replaces glyphs the core fonts cannot draw.
func pdfSafe(s string) string {
	return strings.NewReplacer("✓", "Done", "↑", "+", "↓", "-", "→", "=").Replace(s)
}

func setText(pdf *fpdf.Fpdf, c [3]int) {
	pdf.SetTextColor(c[0], c[1], c[2])
}
