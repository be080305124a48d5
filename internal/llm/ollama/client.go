package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"docanalyzer/internal/common"
	"docanalyzer/internal/llm"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Format   string        `json:"format,omitempty"`
}

type chatResponse struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

type tagsResponse struct {
	Models []struct {
		Name  string `json:"name"`
		Model string `json:"model"`
	} `json:"models"`
}

// Chat issues one blocking, non-streaming call to the chat endpoint.
func (c *Client) Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatResult, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
	}
	start := time.Now()

	c.log.Info("llm.chat.request",
		"req_id", rid,
		"session_id", common.SessionIDFromContext(ctx),
		"model", c.cfg.Model,
		"prompt_len", len(req.Prompt),
		"json_format", req.JSONFormat,
	)

	body := chatRequest{
		Model:  c.cfg.Model,
		Stream: false,
	}
	if req.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.Prompt})
	if req.JSONFormat {
		body.Format = "json"
	}

	raw, status, err := c.post(ctx, c.endpoint("/api/chat"), body)
	if err != nil {
		mapped := c.mapTransportError(err, status)
		c.log.Error("llm.chat.failed",
			"req_id", rid,
			"status", status,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ChatResult{}, mapped
	}

	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		c.log.Error("llm.chat.decode_failed",
			"req_id", rid,
			"error", err,
			"raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ChatResult{}, common.NewAppError("MODEL_RESPONSE",
			"decode chat response", common.ErrModelResponse)
	}
	content := strings.TrimSpace(cr.Message.Content)
	if content == "" {
		c.log.Error("llm.chat.empty_reply",
			"req_id", rid,
			"raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ChatResult{}, common.NewAppError("MODEL_RESPONSE",
			"empty reply from model", common.ErrModelResponse)
	}

	elapsed := time.Since(start)
	c.log.Info("llm.chat.ok",
		"req_id", rid,
		"reply_bytes", len(content),
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return llm.ChatResult{Content: content, Model: c.cfg.Model, Duration: elapsed}, nil
}

// ListModels queries the local tag list, the same data `ollama list` shows.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	start := time.Now()
	raw, status, err := c.get(ctx, c.endpoint("/api/tags"))
	if err != nil {
		mapped := c.mapTransportError(err, status)
		c.log.Error("llm.tags.failed",
			"status", status,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, mapped
	}

	var tr tagsResponse
	if err := json.Unmarshal(raw, &tr); err != nil {
		return nil, common.NewAppError("MODEL_RESPONSE",
			"decode tags response", common.ErrModelResponse)
	}
	names := make([]string, 0, len(tr.Models))
	for _, m := range tr.Models {
		switch {
		case m.Name != "":
			names = append(names, m.Name)
		case m.Model != "":
			names = append(names, m.Model)
		}
	}
	c.log.Info("llm.tags.ok", "models", len(names), "elapsed_ms", time.Since(start).Milliseconds())
	return names, nil
}

// mapTransportError folds HTTP and network failures into the error taxonomy:
// a reply with a bad status is MODEL_RESPONSE, a timeout is MODEL_TIMEOUT,
// anything else that never produced a status is MODEL_UNAVAILABLE.
func (c *Client) mapTransportError(err error, status int) error {
	if status > 0 {
		return common.NewAppError("MODEL_RESPONSE",
			fmt.Sprintf("model endpoint returned status %d", status), common.ErrModelResponse)
	}
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return common.NewAppError("MODEL_TIMEOUT",
			fmt.Sprintf("no reply within %s", c.cfg.Timeout), common.ErrModelTimeout)
	}
	return common.NewAppError("MODEL_UNAVAILABLE",
		fmt.Sprintf("cannot reach %s (is ollama running?)", c.cfg.Host), common.ErrModelUnavailable)
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.cfg.Host, "/") + path
}

func (c *Client) post(ctx context.Context, url string, body any) ([]byte, int, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.log.Warn("response body close error", "error", cerr)
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		// the connection broke mid-body: classify by error, not status
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return raw, resp.StatusCode, fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}
	return raw, resp.StatusCode, nil
}
