package pdf

import (
	"context"
	"time"
)

// ExtractionResult carries the text layer pulled from one document.
type ExtractionResult struct {
	Text     string
	Pages    int
	FileName string
	FileSize int64
	Duration time.Duration
}

// TextExtractor is the interface the analyzer depends on.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (ExtractionResult, error)
}
