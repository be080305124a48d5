package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docanalyzer/internal/common"
	"docanalyzer/internal/llm"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(url string) *Client {
	return NewClient(Config{Host: url, Model: "test-model", Timeout: 2 * time.Second}, testLogger())
}

func chatHandler(t *testing.T, content string, gotBody *chatRequest) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if gotBody != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(gotBody))
		}
		fmt.Fprintf(w, `{"message": {"role": "assistant", "content": %q}, "done": true}`, content)
	}
}

func TestChatSendsWellFormedRequest(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(chatHandler(t, "Acme Corp and Jane Doe.", &got))
	defer srv.Close()

	c := newTestClient(srv.URL)
	res, err := c.Chat(context.Background(), llm.ChatRequest{
		System: "You are a contract analyst.",
		Prompt: "Who are the parties involved?",
	})

	require.NoError(t, err)
	assert.Equal(t, "Acme Corp and Jane Doe.", res.Content)
	assert.Equal(t, "test-model", res.Model)

	assert.Equal(t, "test-model", got.Model)
	assert.False(t, got.Stream)
	assert.Empty(t, got.Format)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "Who are the parties involved?", got.Messages[1].Content)
}

func TestChatWithoutSystemMessage(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(chatHandler(t, "hi", &got))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Chat(context.Background(), llm.ChatRequest{Prompt: "hello"})

	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
}

func TestChatPropagatesRequestID(t *testing.T) {
	srv := httptest.NewServer(chatHandler(t, "ok", nil))
	defer srv.Close()

	ctx := common.WithRequestID(context.Background(), "req-42")
	_, err := newTestClient(srv.URL).Chat(ctx, llm.ChatRequest{Prompt: "q"})
	require.NoError(t, err)
}

func TestChatServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Chat(context.Background(), llm.ChatRequest{Prompt: "q"})

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrModelResponse)
}

func TestChatMalformedReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "{not json at all")
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Chat(context.Background(), llm.ChatRequest{Prompt: "q"})

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrModelResponse)
}

func TestChatEmptyReply(t *testing.T) {
	srv := httptest.NewServer(chatHandler(t, "   ", nil))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Chat(context.Background(), llm.ChatRequest{Prompt: "q"})

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrModelResponse)
}

func TestChatUnreachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).Chat(context.Background(), llm.ChatRequest{Prompt: "q"})

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrModelUnavailable)
}

func TestChatTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := NewClient(Config{Host: srv.URL, Model: "test-model", Timeout: 50 * time.Millisecond}, testLogger())
	_, err := c.Chat(context.Background(), llm.ChatRequest{Prompt: "q"})

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrModelTimeout)
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/tags", r.URL.Path)
		fmt.Fprint(w, `{"models": [{"name": "llama3.2:latest"}, {"name": "qwen2.5:7b"}]}`)
	}))
	defer srv.Close()

	names, err := newTestClient(srv.URL).ListModels(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"llama3.2:latest", "qwen2.5:7b"}, names)
}

func TestListModelsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).ListModels(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrModelUnavailable)
}

func TestExtractDocumentFields(t *testing.T) {
	reply := "```json\n{\"summary\": \"A services agreement.\", \"parties\": [\"Acme Corp\", \"Jane Doe\"], \"confidence\": 0.9}\n```"
	var got chatRequest
	srv := httptest.NewServer(chatHandler(t, reply, &got))
	defer srv.Close()

	fieldsMap, raw, err := newTestClient(srv.URL).ExtractDocumentFields(context.Background(), llm.ExtractRequest{
		System: "You are an expert contract analyst.",
		Prompt: "Analyze the following contract document",
		Fields: []string{"parties", "summary"},
	})

	require.NoError(t, err)
	assert.Equal(t, "json", got.Format)
	assert.Contains(t, got.Messages[1].Content, "Return ONLY JSON")

	assert.Equal(t, "A services agreement.", fieldsMap["summary"])
	assert.Equal(t, "Acme Corp; Jane Doe", fieldsMap["parties"])
	assert.NotContains(t, fieldsMap, "confidence")
	assert.NotEmpty(t, raw)
}

func TestExtractDocumentFieldsStrictValidReply(t *testing.T) {
	reply := `{"summary": "Short.", "parties": "Acme Corp"}`
	srv := httptest.NewServer(chatHandler(t, reply, nil))
	defer srv.Close()

	c := NewClient(Config{Host: srv.URL, Model: "test-model", StrictJSON: true}, testLogger())
	fieldsMap, _, err := c.ExtractDocumentFields(context.Background(), llm.ExtractRequest{
		Prompt: "p",
		Fields: []string{"parties", "summary"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", fieldsMap["parties"])
}

func TestExtractDocumentFieldsStrictRejectsDirtyReply(t *testing.T) {
	reply := `{"summary": "Short.", "bogus": 1}`
	srv := httptest.NewServer(chatHandler(t, reply, nil))
	defer srv.Close()

	c := NewClient(Config{Host: srv.URL, Model: "test-model", StrictJSON: true}, testLogger())
	_, raw, err := c.ExtractDocumentFields(context.Background(), llm.ExtractRequest{
		Prompt: "p",
		Fields: []string{"summary"},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrModelResponse)
	assert.NotEmpty(t, raw)
}

func TestExtractDocumentFieldsProseReply(t *testing.T) {
	srv := httptest.NewServer(chatHandler(t, "Sure! The parties are Acme Corp and Jane Doe.", nil))
	defer srv.Close()

	_, raw, err := newTestClient(srv.URL).ExtractDocumentFields(context.Background(), llm.ExtractRequest{
		Prompt: "p",
		Fields: []string{"parties", "summary"},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrModelResponse)
	assert.Contains(t, string(raw), "Sure!")
}

func TestExtractDocumentFieldsModelFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, _, err := newTestClient(url).ExtractDocumentFields(context.Background(), llm.ExtractRequest{
		Prompt: "p",
		Fields: []string{"summary"},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrModelUnavailable)
}
