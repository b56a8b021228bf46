package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"
)

// EncodeSnapshot renders v as a single line of JSON in the layout existing
// clients parse: ", " between members, ": " after keys, no HTML escaping and
// non-ASCII characters written as \u escapes. Output is deterministic for
// equal values, so byte comparison doubles as change detection.
func EncodeSnapshot(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return spaced(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// spaced rewrites compact JSON, adding a space after separators outside of
// strings and escaping non-ASCII runes inside them.
func spaced(compact []byte) []byte {
	out := make([]byte, 0, len(compact)+len(compact)/8)
	inString := false
	escaped := false
	for i := 0; i < len(compact); {
		c := compact[i]
		if c >= utf8.RuneSelf {
			r, size := utf8.DecodeRune(compact[i:])
			out = appendEscapedRune(out, r)
			i += size
			continue
		}
		out = append(out, c)
		i++
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && (c == ',' || c == ':'):
			out = append(out, ' ')
		}
	}
	return out
}

func appendEscapedRune(out []byte, r rune) []byte {
	const hex = "0123456789abcdef"
	write := func(u rune) {
		out = append(out, '\\', 'u', hex[u>>12&0xf], hex[u>>8&0xf], hex[u>>4&0xf], hex[u&0xf])
	}
	if r > 0xffff {
		hi, lo := utf16.EncodeRune(r)
		write(hi)
		write(lo)
		return out
	}
	write(r)
	return out
}
