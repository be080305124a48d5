package fields

import (
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"docanalyzer/internal/profile"
)

const (
	maxSnippetsPerField = 8
	maxSnippetLen       = 200
)

// Extractor applies a profile's ordered pattern lists to raw document text.
type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract returns field name -> matched snippets. For every field the
// patterns run in order and the first one that matches supplies the snippets;
// a field with no match is simply absent. Extraction never fails: text that
// matches nothing yields an empty map.
func (e *Extractor) Extract(text string, p *profile.Profile) map[string][]string {
	start := time.Now()
	out := make(map[string][]string)

	for _, field := range p.Fields {
		for _, pattern := range field.Patterns {
			snippets := collect(pattern.FindAllStringSubmatch(text, maxSnippetsPerField))
			if len(snippets) > 0 {
				out[field.Name] = snippets
				break
			}
		}
	}

	e.logger.Debug("fields.extract.ok",
		"document_type", string(p.Type),
		"matched", len(out),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out
}

// collect flattens regex matches into trimmed, deduplicated snippets. A
// pattern with capture groups contributes each non-empty group; one without
// contributes the whole match.
func collect(matches [][]string) []string {
	var snippets []string
	seen := make(map[string]struct{})

	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if len(s) > maxSnippetLen {
			cut := maxSnippetLen
			for cut > 0 && !utf8.RuneStart(s[cut]) {
				cut--
			}
			s = s[:cut]
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		snippets = append(snippets, s)
	}

	for _, m := range matches {
		if len(m) > 1 {
			for _, group := range m[1:] {
				add(group)
			}
		} else {
			add(m[0])
		}
	}
	return snippets
}
