package artifacts

import (
	"encoding/json"
	"fmt"
	"strings"

	pkgerrors "github.com/yungbote/learnsphere-backend/internal/pkg/errors"
)

// StripCodeFences removes a leading ```lang line and a trailing ``` line.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return strings.Trim(s, "`")
	}
	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "```" {
		return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
	}
	return strings.TrimSpace(strings.Join(lines[1:], "\n"))
}

// OutermostObject returns the first balanced {...} in s, skipping braces inside
// JSON strings.
func OutermostObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// decodeObject locates the JSON object in a model response and unmarshals it.
func decodeObject(raw string, out any) error {
	body, ok := OutermostObject(StripCodeFences(raw))
	if !ok {
		return fmt.Errorf("%w: no JSON object in model response", pkgerrors.ErrGenerationFailed)
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return fmt.Errorf("%w: invalid JSON from model: %v", pkgerrors.ErrGenerationFailed, err)
	}
	return nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
