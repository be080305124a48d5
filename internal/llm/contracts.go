package llm

import (
	"context"
	"time"
)

// ChatRequest is one prompt exchange with the local model.
type ChatRequest struct {
	System     string
	Prompt     string
	JSONFormat bool // ask the endpoint to constrain output to JSON
}

// ChatResult carries the reply of a single chat call.
type ChatResult struct {
	Content  string
	Model    string
	Duration time.Duration
}

// ChatClient is the model interface the analyzer depends on. Chat blocks for
// the full reply; there is no streaming and no retry.
type ChatClient interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResult, error)
	ListModels(ctx context.Context) ([]string, error)
	Model() string
}

// ExtractRequest asks the model for structured document fields.
type ExtractRequest struct {
	System string
	Prompt string
	Fields []string // field names the schema permits
}

// StructuredExtractor turns free document text into schema-validated fields.
type StructuredExtractor interface {
	ExtractDocumentFields(ctx context.Context, req ExtractRequest) (map[string]string, []byte /*rawJSON*/, error)
}
