package payloads

import (
	"fmt"
	"strings"
)

// uriUnreserved are the characters JavaScript's encodeURIComponent leaves as-is
const uriUnreserved = "-_.!~*'()"

// EncodeURIComponent percent-encodes s the way the browser's
// encodeURIComponent does: UTF-8 bytes, space as %20, upper-case hex.
// url.QueryEscape differs on space ('+') and on !'()*.
func EncodeURIComponent(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			sb.WriteByte(c)
			continue
		}
		fmt.Fprintf(&sb, "%%%02X", c)
	}
	return sb.String()
}

func isUnreserved(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c < 0x80 && strings.IndexByte(uriUnreserved, c) >= 0:
		return true
	}
	return false
}

// Encoder produces encoded variants of a payload
type Encoder struct{}

// NewEncoder creates a new payload encoder
func NewEncoder() *Encoder {
	return &Encoder{}
}

// URLEncode performs encodeURIComponent-style encoding
func (e *Encoder) URLEncode(payload string) string {
	return EncodeURIComponent(payload)
}

// DoubleURLEncode encodes twice, so %3C becomes %253C
func (e *Encoder) DoubleURLEncode(payload string) string {
	return EncodeURIComponent(EncodeURIComponent(payload))
}

// HTMLEntityEncode encodes characters to HTML entities (decimal)
// e.g. < -> &#60;
func (e *Encoder) HTMLEntityEncode(payload string) string {
	var sb strings.Builder
	for _, r := range payload {
		if strings.ContainsRune("<>\"'()", r) {
			sb.WriteString(fmt.Sprintf("&#%d;", r))
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// UnicodeEncode encodes characters to unicode escapes
// e.g. < -> \u003c (JavaScript context)
func (e *Encoder) UnicodeEncode(payload string) string {
	var sb strings.Builder
	for _, r := range payload {
		if r > 127 || strings.ContainsRune("<>\"'()", r) {
			sb.WriteString(fmt.Sprintf("\\u%04x", r))
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
