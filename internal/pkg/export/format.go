package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
	FormatJSON  Format = "json"
)

// ParseFormat accepts csv, excel and json. Empty means csv.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatExcel, FormatJSON:
		return f, nil
	}
	return "", ErrUnknownFormat
}

func (f Format) Extension() string {
	switch f {
	case FormatExcel:
		return "xls"
	case FormatJSON:
		return "json"
	}
	return "csv"
}

func (f Format) ContentType() string {
	switch f {
	case FormatExcel:
		return "application/vnd.ms-excel"
	case FormatJSON:
		return "application/json"
	}
	return "text/csv"
}

// Column is one exported field. Key may address nested maps with dots.
type Column struct {
	Key    string
	Header string
	Format func(v interface{}) string
}

type Row map[string]interface{}

// Document is a dataset ready to be encoded.
type Document struct {
	Title       string
	GeneratedAt time.Time
	Columns     []Column
	Rows        []Row
}

func (c Column) raw(row Row) interface{} {
	return lookup(row, c.Key)
}

func (c Column) value(row Row) interface{} {
	v := c.raw(row)
	if c.Format != nil {
		return c.Format(v)
	}
	return v
}

func lookup(row Row, key string) interface{} {
	var cur interface{} = map[string]interface{}(row)
	for _, part := range strings.Split(key, ".") {
		switch m := cur.(type) {
		case map[string]interface{}:
			cur = m[part]
		case Row:
			cur = m[part]
		default:
			return nil
		}
	}
	return cur
}

// Encode writes doc in the requested format.
func Encode(w io.Writer, f Format, doc Document) error {
	switch f {
	case FormatCSV:
		return encodeCSV(w, doc)
	case FormatExcel:
		return encodeExcel(w, doc)
	case FormatJSON:
		return encodeJSON(w, doc)
	}
	return ErrUnknownFormat
}

func encodeCSV(w io.Writer, doc Document) error {
	cw := csv.NewWriter(w)
	if doc.Title != "" {
		if err := cw.Write([]string{doc.Title}); err != nil {
			return err
		}
		if err := cw.Write([]string{""}); err != nil {
			return err
		}
	}
	if !doc.GeneratedAt.IsZero() {
		cw.Flush()
		if _, err := fmt.Fprintf(w, "Generated: %s\n\n", localeString(doc.GeneratedAt)); err != nil {
			return err
		}
	}

	headers := make([]string, len(doc.Columns))
	for i, col := range doc.Columns {
		headers[i] = col.Header
	}
	if err := cw.Write(headers); err != nil {
		return err
	}

	record := make([]string, len(doc.Columns))
	for _, row := range doc.Rows {
		for i, col := range doc.Columns {
			record[i] = stringify(col.value(row))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

const excelHeader = `<?xml version="1.0" encoding="UTF-8"?>
<?mso-application progid="Excel.Sheet"?>
<Workbook xmlns="urn:schemas-microsoft-com:office:spreadsheet"
  xmlns:ss="urn:schemas-microsoft-com:office:spreadsheet">
  <Styles>
    <Style ss:ID="Header">
      <Font ss:Bold="1" ss:Size="12"/>
      <Interior ss:Color="#4472C4" ss:Pattern="Solid"/>
      <Font ss:Color="#FFFFFF"/>
    </Style>
    <Style ss:ID="Title">
      <Font ss:Bold="1" ss:Size="16"/>
    </Style>
    <Style ss:ID="Date">
      <NumberFormat ss:Format="yyyy-mm-dd hh:mm:ss"/>
    </Style>
    <Style ss:ID="Currency">
      <NumberFormat ss:Format="$#,##0.00"/>
    </Style>
    <Style ss:ID="Percent">
      <NumberFormat ss:Format="0.00%"/>
    </Style>
  </Styles>
  <Worksheet ss:Name="Report">
    <Table>`

// encodeExcel writes SpreadsheetML that Excel opens as .xls. Cells are
// typed Number only when the raw value is numeric and the rendered text
// still parses as a number.
func encodeExcel(w io.Writer, doc Document) error {
	var b bytes.Buffer
	b.WriteString(excelHeader)
	for range doc.Columns {
		b.WriteString("\n      <Column ss:Width=\"120\"/>")
	}

	if doc.Title != "" {
		b.WriteString("\n      <Row>\n        <Cell ss:StyleID=\"Title\"><Data ss:Type=\"String\">")
		escape(&b, doc.Title)
		b.WriteString("</Data></Cell>\n      </Row>\n      <Row></Row>")
	}
	if !doc.GeneratedAt.IsZero() {
		b.WriteString("\n      <Row>\n        <Cell><Data ss:Type=\"String\">Generated: ")
		escape(&b, localeString(doc.GeneratedAt))
		b.WriteString("</Data></Cell>\n      </Row>\n      <Row></Row>")
	}

	b.WriteString("\n      <Row>")
	for _, col := range doc.Columns {
		b.WriteString("\n        <Cell ss:StyleID=\"Header\"><Data ss:Type=\"String\">")
		escape(&b, col.Header)
		b.WriteString("</Data></Cell>")
	}
	b.WriteString("\n      </Row>")

	for _, row := range doc.Rows {
		b.WriteString("\n      <Row>")
		for _, col := range doc.Columns {
			text := stringify(col.value(row))
			typ := "String"
			if isNumber(col.raw(row)) {
				if _, err := strconv.ParseFloat(text, 64); err == nil {
					typ = "Number"
				}
			}
			fmt.Fprintf(&b, "\n        <Cell><Data ss:Type=\"%s\">", typ)
			escape(&b, text)
			b.WriteString("</Data></Cell>")
		}
		b.WriteString("\n      </Row>")
	}

	b.WriteString("\n    </Table>\n  </Worksheet>\n</Workbook>")
	_, err := w.Write(b.Bytes())
	return err
}

type jsonColumn struct {
	Key    string `json:"key"`
	Header string `json:"header"`
}

type jsonDocument struct {
	Title       string                   `json:"title,omitempty"`
	GeneratedAt string                   `json:"generatedAt,omitempty"`
	Columns     []jsonColumn             `json:"columns"`
	Data        []map[string]interface{} `json:"data"`
	TotalRows   int                      `json:"totalRows"`
}

func encodeJSON(w io.Writer, doc Document) error {
	out := jsonDocument{
		Title:     doc.Title,
		Columns:   make([]jsonColumn, 0, len(doc.Columns)),
		Data:      make([]map[string]interface{}, 0, len(doc.Rows)),
		TotalRows: len(doc.Rows),
	}
	if !doc.GeneratedAt.IsZero() {
		out.GeneratedAt = doc.GeneratedAt.UTC().Format("2006-01-02T15:04:05.000Z")
	}
	for _, col := range doc.Columns {
		out.Columns = append(out.Columns, jsonColumn{Key: col.Key, Header: col.Header})
	}
	for _, row := range doc.Rows {
		formatted := make(map[string]interface{}, len(doc.Columns))
		for _, col := range doc.Columns {
			formatted[col.Key] = col.value(row)
		}
		out.Data = append(out.Data, formatted)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func escape(b *bytes.Buffer, s string) {
	_ = xml.EscapeText(b, []byte(s))
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	case []string:
		return strings.Join(t, ", ")
	}
	return fmt.Sprint(v)
}

func isNumber(v interface{}) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

// localeString mirrors the en-US date-time rendering used in export headers.
func localeString(t time.Time) string {
	return t.Format("1/2/2006, 3:04:05 PM")
}
