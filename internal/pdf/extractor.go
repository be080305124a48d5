package pdf

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"docanalyzer/internal/common"
)

// Config for the text extractor.
type Config struct {
	MaxPages int // cap on pages read per document; defaults to 10
}

// Extractor reads the embedded text layer of PDF files. It performs no OCR:
// scanned documents without a text layer come back as unreadable.
type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 10
	}
	return &Extractor{cfg: cfg, logger: logger}
}

// Extract reads the text layer of the PDF at path. Pages past the configured
// cap are ignored and pages without text are skipped. A document that yields
// zero characters overall is reported as unreadable, never as an empty
// success.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		e.logger.Error("pdf.extract.not_found", "path", path, "error", err)
		return ExtractionResult{}, common.NewAppError("PDF_NOT_FOUND",
			fmt.Sprintf("no readable file at %s", path), common.ErrNotFound)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			e.logger.Error("pdf.extract.not_found", "path", path, "error", err)
			return ExtractionResult{}, common.NewAppError("PDF_NOT_FOUND",
				fmt.Sprintf("no readable file at %s", path), common.ErrNotFound)
		}
		e.logger.Error("pdf.extract.open_failed", "path", path, "error", err)
		return ExtractionResult{}, common.NewAppError("PDF_UNREADABLE",
			fmt.Sprintf("cannot parse %s", filepath.Base(path)), common.ErrUnreadableDocument)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			e.logger.Warn("pdf file close error", "path", path, "error", cerr)
		}
	}()

	totalPages := r.NumPage()
	pages := totalPages
	if pages > e.cfg.MaxPages {
		pages = e.cfg.MaxPages
	}

	var parts []string
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return ExtractionResult{}, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Warn("pdf.page.extract_failed", "path", path, "page", i, "error", err)
			continue
		}
		if t := strings.TrimSpace(pageText); t != "" {
			parts = append(parts, t)
		}
	}

	text := strings.Join(parts, "\n\n")
	if text == "" {
		e.logger.Error("pdf.extract.no_text", "path", path, "pages", pages)
		return ExtractionResult{}, common.NewAppError("PDF_UNREADABLE",
			fmt.Sprintf("no extractable text in %s (scanned or image-only PDF?)", filepath.Base(path)),
			common.ErrUnreadableDocument)
	}

	result := ExtractionResult{
		Text:     text,
		Pages:    pages,
		FileName: filepath.Base(path),
		FileSize: info.Size(),
		Duration: time.Since(start),
	}
	e.logger.Info("pdf.extract.ok",
		"path", path,
		"pages", pages,
		"total_pages", totalPages,
		"bytes", len(text),
		"elapsed_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}
