package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"sort"
	"strconv"
	"strings"
)

// StripJSONFences removes a markdown code fence wrapped around a JSON
// payload. Local models often emit ```json blocks even when told not to.
func StripJSONFences(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, "```") {
		return []byte(s)
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// drop the language tag line (```json)
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return []byte(strings.TrimSpace(s))
}

// SanitizeDocumentJSON nudges a model reply toward the document schema:
// - drops null and empty-string fields
// - coerces numbers, booleans, and string arrays to plain strings
// - removes keys outside the allowed field set
// - trims surrounding whitespace on every value
// It returns the cleaned JSON plus the list of adjusted keys.
func SanitizeDocumentJSON(raw []byte, allowed []string, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	allowedSet := make(map[string]struct{}, len(allowed))
	for _, k := range allowed {
		allowedSet[k] = struct{}{}
	}

	adjusted := make([]string, 0, 8)
	for k, v := range maps.Clone(m) {
		if _, ok := allowedSet[k]; !ok {
			delete(m, k)
			adjusted = append(adjusted, k+"(unknown)")
			continue
		}
		switch t := v.(type) {
		case nil:
			delete(m, k)
			adjusted = append(adjusted, k+"(null)")
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				delete(m, k)
				adjusted = append(adjusted, k+"(empty)")
			} else {
				m[k] = s
			}
		case float64:
			m[k] = strconv.FormatFloat(t, 'f', -1, 64)
			adjusted = append(adjusted, k+"(number)")
		case bool:
			m[k] = strconv.FormatBool(t)
			adjusted = append(adjusted, k+"(bool)")
		case []any:
			parts := make([]string, 0, len(t))
			for _, item := range t {
				switch s := item.(type) {
				case string:
					if trimmed := strings.TrimSpace(s); trimmed != "" {
						parts = append(parts, trimmed)
					}
				default:
					parts = append(parts, fmt.Sprintf("%v", item))
				}
			}
			if len(parts) == 0 {
				delete(m, k)
				adjusted = append(adjusted, k+"(empty)")
			} else {
				m[k] = strings.Join(parts, "; ")
				adjusted = append(adjusted, k+"(array)")
			}
		default:
			// nested objects have no place in a flat field map
			delete(m, k)
			adjusted = append(adjusted, k+"(type)")
		}
	}
	sort.Strings(adjusted)

	out, err := json.Marshal(m)
	if err != nil {
		return nil, adjusted, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(adjusted) > 0 {
		logger.Warn("llm.extract.sanitized", "adjusted", adjusted)
	}
	return out, adjusted, nil
}
