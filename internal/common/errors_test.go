package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorFormat(t *testing.T) {
	err := NewAppError("PDF_NOT_FOUND", "no readable file at /tmp/x.pdf", ErrNotFound)
	assert.Equal(t, "PDF_NOT_FOUND: no readable file at /tmp/x.pdf: document not found", err.Error())

	bare := NewAppError("CONFIG_ERROR", "OLLAMA_HOST is required", nil)
	assert.Equal(t, "CONFIG_ERROR: OLLAMA_HOST is required", bare.Error())
}

func TestAppErrorUnwrap(t *testing.T) {
	err := NewAppError("MODEL_TIMEOUT", "no reply within 2m0s", ErrModelTimeout)
	assert.ErrorIs(t, err, ErrModelTimeout)
	assert.NotErrorIs(t, err, ErrModelUnavailable)

	var appErr *AppError
	assert.ErrorAs(t, error(err), &appErr)
	assert.Equal(t, "MODEL_TIMEOUT", appErr.Code)
}

func TestWrapError(t *testing.T) {
	assert.NoError(t, WrapError(nil, "load document"))

	wrapped := WrapError(ErrUnreadableDocument, "load document")
	assert.ErrorIs(t, wrapped, ErrUnreadableDocument)
	assert.Equal(t, "load document: document has no extractable text", wrapped.Error())
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrUnreadableDocument,
		ErrUnknownProfile,
		ErrModelUnavailable,
		ErrModelTimeout,
		ErrModelResponse,
		ErrInvalidInput,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}
