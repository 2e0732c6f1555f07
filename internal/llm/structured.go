package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SchemaValidator validates a decoded value after extraction.
type SchemaValidator[T any] func(T) error

// ExtractJSON decodes the first JSON object found in a model reply into T.
// Markdown fences, surrounding prose, comments, trailing commas and
// leading-dot decimals are tolerated.
func ExtractJSON[T any](raw string, validator SchemaValidator[T]) (T, error) {
	var zero T

	body, err := CleanJSON(raw)
	if err != nil {
		return zero, err
	}

	var result T
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if validator != nil {
		if err := validator(result); err != nil {
			return zero, fmt.Errorf("%w: validation failed: %v", ErrInvalidOutput, err)
		}
	}
	return result, nil
}

// CleanJSON returns the first balanced JSON object in raw, rewritten into
// strict JSON.
func CleanJSON(raw string) (string, error) {
	block := firstObject(dropFenceLines(raw))
	if block == "" {
		return "", fmt.Errorf("%w: no JSON object found in response", ErrInvalidOutput)
	}
	return normalizeJSON(block), nil
}

func dropFenceLines(s string) string {
	if !strings.Contains(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// jsonScanner tracks whether the cursor is inside a string literal.
type jsonScanner struct {
	inString bool
	escaped  bool
}

// step consumes c and reports whether it belongs to a string literal
// (including its quotes).
func (sc *jsonScanner) step(c byte) bool {
	switch {
	case sc.escaped:
		sc.escaped = false
		return true
	case sc.inString && c == '\\':
		sc.escaped = true
		return true
	case c == '"':
		sc.inString = !sc.inString
		return true
	default:
		return sc.inString
	}
}

func firstObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	var sc jsonScanner
	depth := 0
	for i := start; i < len(s); i++ {
		if sc.step(s[i]) {
			continue
		}
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// normalizeJSON strips // and /* */ comments, drops trailing commas before
// a closing bracket and rewrites ".5" / "-.5" as "0.5" / "-0.5". String
// literals pass through untouched.
func normalizeJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	var sc jsonScanner
	for i := 0; i < len(s); i++ {
		c := s[i]
		if sc.step(c) {
			b.WriteByte(c)
			continue
		}

		switch {
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			for i+1 < len(s) && s[i+1] != '\n' {
				i++
			}
			continue
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				i = len(s)
			} else {
				i += end + 3
			}
			continue
		case c == ',' && closesAfter(s, i+1):
			continue
		case c == '.' && i+1 < len(s) && isDigit(s[i+1]) && startsNumber(lastSignificant(b.String())):
			b.WriteByte('0')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// closesAfter reports whether the next significant byte from i is ] or }.
func closesAfter(s string, i int) bool {
	for ; i < len(s); i++ {
		switch s[i] {
		case ' ', '\n', '\r', '\t':
			continue
		case ']', '}':
			return true
		default:
			return false
		}
	}
	return false
}

func lastSignificant(s string) byte {
	t := strings.TrimRight(s, " \n\r\t")
	if t == "" {
		return 0
	}
	return t[len(t)-1]
}

func startsNumber(prev byte) bool {
	switch prev {
	case 0, ':', ',', '[', '{', '-':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
