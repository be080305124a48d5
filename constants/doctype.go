package constants

import "strings"

// DocumentType identifies which analysis profile applies to a document.
type DocumentType string

const (
	Contract DocumentType = "contract"
	Resume   DocumentType = "resume"
	Report   DocumentType = "report"
	Generic  DocumentType = "generic"
)

var allDocumentTypes = []DocumentType{
	Contract,
	Resume,
	Report,
	Generic,
}

// AsStringSlice returns all document types as strings.
func AsStringSlice() []string {
	result := make([]string, len(allDocumentTypes))
	for i, dt := range allDocumentTypes {
		result[i] = string(dt)
	}
	return result
}

// Canonicalize folds case and surrounding whitespace. Only the four known
// tokens resolve; the empty string reports Generic with ok=false so callers
// can apply their own default.
func Canonicalize(input string) (DocumentType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return Generic, false
	}

	// check if it matches any document type string
	for _, dt := range allDocumentTypes {
		if normalized == string(dt) {
			return dt, true
		}
	}
	return Generic, false
}
