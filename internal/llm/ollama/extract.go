package ollama

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"docanalyzer/internal/common"
	"docanalyzer/internal/llm"
)

// ExtractDocumentFields implements llm.StructuredExtractor. It asks for JSON
// output constrained by the per-profile schema, validates the reply strictly,
// and falls back to a lenient sanitize pass before giving up. The raw reply is
// returned alongside any error so callers can still show it.
func (c *Client) ExtractDocumentFields(ctx context.Context, req llm.ExtractRequest) (map[string]string, []byte, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
		ctx = common.WithRequestID(ctx, rid)
	}
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"prompt_len", len(req.Prompt),
		"fields", len(req.Fields),
	)

	schema := llm.BuildDocumentJSONSchema(req.Fields)
	res, err := c.Chat(ctx, llm.ChatRequest{
		System:     req.System,
		Prompt:     req.Prompt + "\n\nReturn ONLY JSON that matches this schema:\n" + mustJSON(schema),
		JSONFormat: true,
	})
	if err != nil {
		return nil, nil, err
	}

	raw := llm.StripJSONFences([]byte(res.Content))
	cleaned := raw
	if err := llm.ValidateJSONAgainstSchema(schema, raw); err != nil {
		if c.cfg.StrictJSON {
			c.log.Error("llm.extract.schema_validation_failed",
				"req_id", rid,
				"error", err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return nil, raw, common.NewAppError("MODEL_RESPONSE",
				"schema validation failed", common.ErrModelResponse)
		}

		sanitized, adjusted, sErr := llm.SanitizeDocumentJSON(raw, req.Fields, c.log)
		if sErr != nil {
			c.log.Error("llm.extract.sanitize_failed",
				"req_id", rid,
				"error", sErr,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return nil, raw, common.NewAppError("MODEL_RESPONSE",
				"model did not return JSON", common.ErrModelResponse)
		}
		if vErr := llm.ValidateJSONAgainstSchema(schema, sanitized); vErr != nil {
			c.log.Error("llm.extract.schema_validation_failed",
				"req_id", rid,
				"error", vErr,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return nil, raw, common.NewAppError("MODEL_RESPONSE",
				"schema validation failed", common.ErrModelResponse)
		}
		c.log.Warn("llm.extract.lenient_sanitize_applied",
			"req_id", rid,
			"adjusted", adjusted,
		)
		cleaned = sanitized
	}

	var out map[string]string
	if err := json.Unmarshal(cleaned, &out); err != nil {
		c.log.Error("llm.extract.unmarshal_failed",
			"req_id", rid,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, raw, common.NewAppError("MODEL_RESPONSE",
			"unmarshal extracted fields", common.ErrModelResponse)
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"fields", len(out),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, cleaned, nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
