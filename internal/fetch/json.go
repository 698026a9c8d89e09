package fetch

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseJSON decodes text into v and reports whether it succeeded. It never
// panics and never returns an error: catalogs in the wild carry BOMs and raw
// control characters inside strings (usually Shift-JIS text read as UTF-8),
// so a syntax error triggers one retry with those characters escaped before
// the failure is logged and swallowed.
func ParseJSON(text []byte, v any) bool {
	text = bytes.TrimPrefix(text, utf8BOM)

	err := json.Unmarshal(text, v)
	if err == nil {
		return true
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		if retryErr := json.Unmarshal(escapeControlChars(text), v); retryErr == nil {
			return true
		}
	}

	slog.Warn("discarding unparseable json", "error", err, "bytes", len(text))
	return false
}

// escapeControlChars rewrites raw control bytes inside JSON string literals
// as \u escapes. Bytes outside strings are left alone.
func escapeControlChars(text []byte) []byte {
	const hex = "0123456789abcdef"

	out := make([]byte, 0, len(text))
	inString, escaped := false, false
	for _, b := range text {
		switch {
		case escaped:
			escaped = false
		case inString && b == '\\':
			escaped = true
		case b == '"':
			inString = !inString
		case inString && b < 0x20:
			out = append(out, '\\', 'u', '0', '0', hex[b>>4], hex[b&0xF])
			continue
		}
		out = append(out, b)
	}
	return out
}
