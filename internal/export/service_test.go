package export

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testService() *Service {
	return NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sampleRequest() Request {
	return Request{
		FileName:     "contract.pdf",
		DocumentType: "contract",
		Pages:        3,
		FileSize:     20480,
		FieldOrder:   []string{"parties", "governing_law"},
		Fields: map[string][]string{
			"parties":       {"Acme Corp", "Jane Doe"},
			"governing_law": {"Delaware"},
		},
		StructuredOrder: []string{"contract_type", "summary"},
		Structured: map[string]string{
			"contract_type": "services",
			"summary":       "A services agreement between Acme Corp and Jane Doe.",
		},
	}
}

func TestExportFieldsXLSX(t *testing.T) {
	b, err := testService().ExportFieldsXLSX(sampleRequest())
	require.NoError(t, err)
	require.NotEmpty(t, b)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Extraction")
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	assert.Equal(t, []string{"Field", "Source", "Value"}, rows[0][:3])
	assert.Equal(t, []string{"file_name", "document", "contract.pdf"}, rows[1][:3])

	// metadata first, then the two parties snippets in order, then model rows
	assert.Equal(t, []string{"parties", "pattern", "Acme Corp"}, rows[5][:3])
	assert.Equal(t, []string{"parties", "pattern", "Jane Doe"}, rows[6][:3])
	assert.Equal(t, []string{"governing_law", "pattern", "Delaware"}, rows[7][:3])
	assert.Equal(t, []string{"contract_type", "model", "services"}, rows[8][:3])
	assert.Equal(t, "summary", rows[9][0])

	assert.Len(t, rows, 10)
}

func TestExportDeterministicRowOrder(t *testing.T) {
	svc := testService()
	first, err := svc.ExportFieldsXLSX(sampleRequest())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := svc.ExportFieldsXLSX(sampleRequest())
		require.NoError(t, err)

		fa, err := excelize.OpenReader(bytes.NewReader(first))
		require.NoError(t, err)
		fb, err := excelize.OpenReader(bytes.NewReader(again))
		require.NoError(t, err)

		rowsA, err := fa.GetRows("Extraction")
		require.NoError(t, err)
		rowsB, err := fb.GetRows("Extraction")
		require.NoError(t, err)
		assert.Equal(t, rowsA, rowsB)

		_ = fa.Close()
		_ = fb.Close()
	}
}

func TestExportSkipsEmptyStructuredValues(t *testing.T) {
	req := sampleRequest()
	req.Structured["contract_type"] = ""

	b, err := testService().ExportFieldsXLSX(req)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Extraction")
	require.NoError(t, err)
	for _, row := range rows {
		if len(row) > 0 {
			assert.NotEqual(t, "contract_type", row[0])
		}
	}
}

func TestExportTruncatesLongValues(t *testing.T) {
	req := sampleRequest()
	req.Structured["summary"] = strings.Repeat("a", 1000)

	b, err := testService().ExportFieldsXLSX(req)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Extraction")
	require.NoError(t, err)
	last := rows[len(rows)-1]
	assert.Equal(t, "summary", last[0])
	assert.LessOrEqual(t, len(last[2]), 300+len("…"))
	assert.True(t, strings.HasSuffix(last[2], "…"))
}

func TestExportEmptyFieldsStillHasMetadata(t *testing.T) {
	req := Request{FileName: "empty.pdf", DocumentType: "generic", Pages: 1, FileSize: 100}

	b, err := testService().ExportFieldsXLSX(req)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Extraction")
	require.NoError(t, err)
	assert.Len(t, rows, 5) // header + four metadata rows
}
