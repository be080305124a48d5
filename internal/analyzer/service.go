package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"docanalyzer/internal/common"
	"docanalyzer/internal/export"
	"docanalyzer/internal/fields"
	"docanalyzer/internal/llm"
	"docanalyzer/internal/pdf"
	"docanalyzer/internal/profile"
	"docanalyzer/internal/prompt"
)

// Document is the currently loaded PDF. Its text is immutable once loaded.
type Document struct {
	Path     string
	Text     string
	Pages    int
	FileName string
	FileSize int64
}

// Service orchestrates one analysis session: a single document, the active
// profile, and the model calls made against them. It is not safe for
// concurrent use; the CLI drives it from one goroutine.
type Service struct {
	extractor  pdf.TextExtractor
	chat       llm.ChatClient
	structured llm.StructuredExtractor
	fields     *fields.Extractor
	logger     *slog.Logger

	sessionID string

	doc            *Document
	prof           *profile.Profile
	matched        map[string][]string
	structuredData map[string]string
}

func NewService(extractor pdf.TextExtractor, chat llm.ChatClient, structured llm.StructuredExtractor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		extractor:  extractor,
		chat:       chat,
		structured: structured,
		fields:     fields.NewExtractor(logger),
		logger:     logger,
		sessionID:  uuid.New().String(),
		prof:       profile.Default(),
	}
	s.logger.Info("analyzer.session.start", "session_id", s.sessionID)
	return s
}

// Load reads the document at path and recomputes pattern fields under the
// active profile. On failure the session drops back to its unloaded state; a
// previously loaded document is not kept around.
func (s *Service) Load(ctx context.Context, path string) error {
	start := time.Now()
	res, err := s.extractor.Extract(ctx, path)
	if err != nil {
		s.doc = nil
		s.matched = nil
		s.structuredData = nil
		s.logger.Error("analyzer.load.failed",
			"session_id", s.sessionID,
			"path", path,
			"error", err,
		)
		return err
	}

	s.doc = &Document{
		Path:     path,
		Text:     res.Text,
		Pages:    res.Pages,
		FileName: res.FileName,
		FileSize: res.FileSize,
	}
	s.matched = s.fields.Extract(s.doc.Text, s.prof)
	s.structuredData = nil

	s.logger.Info("analyzer.load.ok",
		"session_id", s.sessionID,
		"file", res.FileName,
		"pages", res.Pages,
		"bytes", len(res.Text),
		"matched_fields", len(s.matched),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// SelectProfile switches the active document type. Pattern fields and any
// structured data are invalidated: both derive from the document and profile
// pair, never from a stale one.
func (s *Service) SelectProfile(token string) error {
	p, err := profile.Select(token)
	if err != nil {
		s.logger.Error("analyzer.profile.unknown",
			"session_id", s.sessionID,
			"document_type", token,
			"error", err,
		)
		return err
	}

	s.prof = p
	s.structuredData = nil
	if s.doc != nil {
		s.matched = s.fields.Extract(s.doc.Text, s.prof)
	} else {
		s.matched = nil
	}

	s.logger.Info("analyzer.profile.selected",
		"session_id", s.sessionID,
		"document_type", string(p.Type),
		"matched_fields", len(s.matched),
	)
	return nil
}

// Ask sends one question about the loaded document and blocks for the answer.
// A model failure is returned to the caller; session state stays intact
// either way. When structured data has been extracted it becomes the prompt
// context instead of raw document text.
func (s *Service) Ask(ctx context.Context, question string) (llm.ChatResult, error) {
	if s.doc == nil {
		return llm.ChatResult{}, common.NewAppError("NO_DOCUMENT",
			"no document loaded", common.ErrInvalidInput)
	}

	rid := uuid.New().String()
	ctx = common.WithSessionID(common.WithRequestID(ctx, rid), s.sessionID)
	start := time.Now()

	docContext := s.doc.Text
	contextSource := "raw_text"
	if len(s.structuredData) > 0 {
		docContext = s.formatStructuredData()
		contextSource = "structured_data"
	}

	s.logger.Info("analyzer.ask.start",
		"session_id", s.sessionID,
		"req_id", rid,
		"question_len", len(question),
		"context_source", contextSource,
	)

	res, err := s.chat.Chat(ctx, llm.ChatRequest{
		System: s.prof.SystemPrompt,
		Prompt: prompt.BuildQuestionPrompt(s.prof, docContext, s.matched, question),
	})
	if err != nil {
		s.logger.Error("analyzer.ask.failed",
			"session_id", s.sessionID,
			"req_id", rid,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ChatResult{}, err
	}

	s.logger.Info("analyzer.ask.ok",
		"session_id", s.sessionID,
		"req_id", rid,
		"answer_bytes", len(res.Content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// Summary asks the profile's canned summarization question.
func (s *Service) Summary(ctx context.Context) (llm.ChatResult, error) {
	return s.Ask(ctx, s.prof.SummaryPrompt)
}

// ExtractStructured asks the model for the profile's structured field set and
// keeps the result as the preferred context for later questions. The raw
// model reply is returned alongside any error so callers can still show it.
func (s *Service) ExtractStructured(ctx context.Context) (map[string]string, []byte, error) {
	if s.doc == nil {
		return nil, nil, common.NewAppError("NO_DOCUMENT",
			"no document loaded", common.ErrInvalidInput)
	}

	rid := uuid.New().String()
	ctx = common.WithSessionID(common.WithRequestID(ctx, rid), s.sessionID)
	start := time.Now()

	data, raw, err := s.structured.ExtractDocumentFields(ctx, llm.ExtractRequest{
		System: s.prof.ExtractSystemPrompt,
		Prompt: prompt.BuildExtractionPrompt(s.prof, s.doc.Text),
		Fields: s.prof.StructuredFieldNames(),
	})
	if err != nil {
		s.logger.Warn("analyzer.extract.failed",
			"session_id", s.sessionID,
			"req_id", rid,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, raw, err
	}

	s.structuredData = data
	s.logger.Info("analyzer.extract.ok",
		"session_id", s.sessionID,
		"req_id", rid,
		"fields", len(data),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return data, raw, nil
}

// CheckModel verifies the configured model is actually installed before the
// first real call.
func (s *Service) CheckModel(ctx context.Context) error {
	names, err := s.chat.ListModels(ctx)
	if err != nil {
		return err
	}
	model := s.chat.Model()
	if !modelListed(names, model) {
		return common.NewAppError("MODEL_NOT_INSTALLED",
			fmt.Sprintf("model %q is not installed; run: ollama pull %s", model, model),
			common.ErrModelUnavailable)
	}
	return nil
}

// ExportRequest assembles the workbook request for the current session.
func (s *Service) ExportRequest() (export.Request, error) {
	if s.doc == nil {
		return export.Request{}, common.NewAppError("NO_DOCUMENT",
			"no document loaded", common.ErrInvalidInput)
	}
	return export.Request{
		FileName:        s.doc.FileName,
		DocumentType:    string(s.prof.Type),
		Pages:           s.doc.Pages,
		FileSize:        s.doc.FileSize,
		FieldOrder:      s.prof.FieldNames(),
		Fields:          s.Fields(),
		StructuredOrder: s.prof.StructuredFieldNames(),
		Structured:      s.StructuredData(),
	}, nil
}

// Loaded reports whether a document is in place.
func (s *Service) Loaded() bool {
	return s.doc != nil
}

// Document returns the loaded document, or nil.
func (s *Service) Document() *Document {
	return s.doc
}

// Profile returns the active profile. There is always one; the generic
// profile is in effect before any explicit selection.
func (s *Service) Profile() *profile.Profile {
	return s.prof
}

// Help returns the active profile's interactive help text.
func (s *Service) Help() string {
	return s.prof.Help
}

// Fields returns a copy of the pattern-matched snippets.
func (s *Service) Fields() map[string][]string {
	out := make(map[string][]string, len(s.matched))
	for k, v := range s.matched {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// StructuredData returns a copy of the model-extracted fields, or nil if
// extraction has not run.
func (s *Service) StructuredData() map[string]string {
	if s.structuredData == nil {
		return nil
	}
	out := make(map[string]string, len(s.structuredData))
	for k, v := range s.structuredData {
		out[k] = v
	}
	return out
}

// formatStructuredData renders extracted fields in profile order for use as
// prompt context.
func (s *Service) formatStructuredData() string {
	var b strings.Builder
	for _, f := range s.prof.StructuredFields {
		if v, ok := s.structuredData[f.Name]; ok && v != "" {
			fmt.Fprintf(&b, "%s: %s\n", f.Name, v)
		}
	}
	return b.String()
}

func modelListed(names []string, model string) bool {
	for _, n := range names {
		if n == model || strings.TrimSuffix(n, ":latest") == model {
			return true
		}
	}
	return false
}
