package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docSchema() map[string]any {
	return BuildDocumentJSONSchema([]string{"parties", "contract_type", "summary"})
}

func TestValidateAcceptsConformingReply(t *testing.T) {
	data := []byte(`{"parties": "Acme Corp and Jane Doe", "summary": "A services agreement."}`)
	assert.NoError(t, ValidateJSONAgainstSchema(docSchema(), data))
}

func TestValidateRejectsUnknownKeys(t *testing.T) {
	data := []byte(`{"summary": "ok", "confidence": "high"}`)
	err := ValidateJSONAgainstSchema(docSchema(), data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "additionalProperties")
}

func TestValidateRejectsMissingSummary(t *testing.T) {
	data := []byte(`{"parties": "Acme Corp"}`)
	assert.Error(t, ValidateJSONAgainstSchema(docSchema(), data))
}

func TestValidateRejectsNonStringValues(t *testing.T) {
	data := []byte(`{"summary": 42}`)
	assert.Error(t, ValidateJSONAgainstSchema(docSchema(), data))
}

func TestValidateRejectsNonJSON(t *testing.T) {
	assert.Error(t, ValidateJSONAgainstSchema(docSchema(), []byte("Sure! Here is the summary.")))
}

func TestSchemaWithoutSummaryHasNoRequired(t *testing.T) {
	schema := BuildDocumentJSONSchema([]string{"title", "author"})
	_, hasRequired := schema["required"]
	assert.False(t, hasRequired)
	assert.NoError(t, ValidateJSONAgainstSchema(schema, []byte(`{}`)))
}
