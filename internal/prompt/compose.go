package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"docanalyzer/internal/profile"
)

// DefaultChunkSize is the fallback word-boundary chunk size in bytes.
const DefaultChunkSize = 2000

// TruncationNotice is appended whenever document context had to be cut to fit
// a profile budget, so the model knows it is not seeing the full document.
const TruncationNotice = "…(truncated)"

// BuildQuestionPrompt composes the question prompt: bounded document context,
// matched field snippets in profile field order, then closing instructions.
// Composition is pure string work; identical inputs give identical output.
func BuildQuestionPrompt(p *profile.Profile, docContext string, matched map[string][]string, question string) string {
	context, truncated := Truncate(strings.TrimSpace(docContext), p.ContextBudget)

	var b strings.Builder
	fmt.Fprintf(&b, "Based on the following %s information, answer this question: %q\n\n", p.Noun, question)
	fmt.Fprintf(&b, "%s information:\n", titleCase(p.Noun))
	b.WriteString(context)
	if truncated {
		b.WriteString("\n")
		b.WriteString(TruncationNotice)
	}
	b.WriteString("\n")

	var lines []string
	for _, f := range p.Fields {
		if snippets, ok := matched[f.Name]; ok && len(snippets) > 0 {
			lines = append(lines, fmt.Sprintf("- %s: %s", f.Name, strings.Join(snippets, "; ")))
		}
	}
	if len(lines) > 0 {
		b.WriteString("\nText snippets matched by pattern:\n")
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nProvide a clear, concise answer based on the information available in the %s.\n", p.Noun)
	fmt.Fprintf(&b, "If the information is not available, say \"Information not found in the %s.\"\n", p.Noun)
	return b.String()
}

// BuildExtractionPrompt composes the structured-extraction prompt from the
// profile's field list and a bounded slice of document text.
func BuildExtractionPrompt(p *profile.Profile, docContext string) string {
	context, truncated := Truncate(strings.TrimSpace(docContext), p.ExtractBudget)

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the following %s and extract key information. ", p.ExtractLabel)
	b.WriteString("Return a structured response with the following fields:\n\n")
	for _, f := range p.StructuredFields {
		fmt.Fprintf(&b, "- %s: %s\n", f.Name, f.Description)
	}
	b.WriteString("\nDocument text:\n")
	b.WriteString(context)
	if truncated {
		b.WriteString("\n")
		b.WriteString(TruncationNotice)
	}
	b.WriteString("\n\nPlease provide a structured response focusing on the most important information.\n")
	return b.String()
}

// Truncate cuts s at limit bytes, backing up to a rune boundary, and reports
// whether anything was cut. limit <= 0 means no limit.
func Truncate(s string, limit int) (string, bool) {
	if limit <= 0 || len(s) <= limit {
		return s, false
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut], true
}

// ChunkText splits text into chunks of at most size bytes without breaking
// words. A single word longer than size becomes its own oversized chunk.
func ChunkText(text string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if len(text) <= size {
		return []string{text}
	}

	var chunks []string
	var current []string
	currentLen := 0
	for _, word := range strings.Fields(text) {
		wordLen := len(word) + 1
		if currentLen+wordLen > size && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = current[:0]
			currentLen = 0
		}
		current = append(current, word)
		currentLen += wordLen
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
