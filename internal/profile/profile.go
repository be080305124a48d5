package profile

import (
	"fmt"
	"regexp"
	"strings"

	"docanalyzer/constants"
	"docanalyzer/internal/common"
)

// Field is one named attribute a profile tries to pull out of document text.
// Patterns run in order; the first one with a non-empty match supplies the
// snippets for the field.
type Field struct {
	Name     string
	Patterns []*regexp.Regexp
}

// StructuredField is one entry of the model-extraction field list.
type StructuredField struct {
	Name        string
	Description string
}

// Profile bundles everything document-type specific: regex field patterns,
// prompt budgets and wording, the canned summary question, and interactive
// help. Profiles are static records compiled at startup.
type Profile struct {
	Type constants.DocumentType

	// Noun is how prompts refer to the document ("contract", "resume", ...);
	// ExtractLabel is the longer form used by the extraction prompt.
	Noun         string
	ExtractLabel string

	Fields []Field

	// ContextBudget caps the document context embedded in question prompts;
	// ExtractBudget caps it for the structured-extraction prompt. Both are in
	// bytes.
	ContextBudget int
	ExtractBudget int

	SystemPrompt        string
	ExtractSystemPrompt string
	StructuredFields    []StructuredField
	SummaryPrompt       string
	Help                string
}

// FieldNames returns the pattern field names in declaration order.
func (p *Profile) FieldNames() []string {
	names := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		names[i] = f.Name
	}
	return names
}

// StructuredFieldNames returns the extraction field names in declaration order.
func (p *Profile) StructuredFieldNames() []string {
	names := make([]string, len(p.StructuredFields))
	for i, f := range p.StructuredFields {
		names[i] = f.Name
	}
	return names
}

// Select resolves a document type token to its profile. The empty token maps
// to the generic profile; any other unknown token is an error.
func Select(token string) (*Profile, error) {
	dt, ok := constants.Canonicalize(token)
	if !ok && strings.TrimSpace(token) != "" {
		return nil, common.NewAppError("UNKNOWN_PROFILE",
			fmt.Sprintf("unknown document type %q (expected one of: %s)",
				token, strings.Join(constants.AsStringSlice(), ", ")),
			common.ErrUnknownProfile)
	}
	return byType[dt], nil
}

// Default returns the generic profile.
func Default() *Profile {
	return byType[constants.Generic]
}
