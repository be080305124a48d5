package export

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// Request carries everything one workbook needs. The caller assembles it from
// the session state, which keeps this package free of analyzer imports.
type Request struct {
	FileName     string
	DocumentType string
	Pages        int
	FileSize     int64

	// FieldOrder and StructuredOrder fix the row order; maps alone would
	// shuffle rows between exports of the same document.
	FieldOrder      []string
	Fields          map[string][]string
	StructuredOrder []string
	Structured      map[string]string
}

// Service renders extraction results as XLSX workbooks.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

const sheetName = "Extraction"

// ExportFieldsXLSX returns a workbook with one row per extracted value:
// document metadata first, then pattern-matched snippets, then model-extracted
// fields.
func (s *Service) ExportFieldsXLSX(req Request) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	if index, _ := f.GetSheetIndex(sheetName); index == -1 {
		if _, err := f.NewSheet(sheetName); err != nil {
			return nil, fmt.Errorf("create sheet: %w", err)
		}
	}
	index, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(index)

	headers := []string{"Field", "Source", "Value"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	row := 2
	write := func(field, source, value string) {
		set := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
		set(1, field)
		set(2, source)
		set(3, truncate(value, 300))
		row++
	}

	write("file_name", "document", req.FileName)
	write("document_type", "document", req.DocumentType)
	write("pages", "document", strconv.Itoa(req.Pages))
	write("file_size", "document", strconv.FormatInt(req.FileSize, 10))

	for _, name := range req.FieldOrder {
		for _, snippet := range req.Fields[name] {
			write(name, "pattern", snippet)
		}
	}
	for _, name := range req.StructuredOrder {
		if v, ok := req.Structured[name]; ok && v != "" {
			write(name, "model", v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 24)
	_ = f.SetColWidth(sheetName, "B", "B", 12)
	_ = f.SetColWidth(sheetName, "C", "C", 80)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"file_name", req.FileName,
		"rows", row-2,
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
