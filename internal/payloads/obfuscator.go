package payloads

import (
	"math/rand"
	"strings"
)

// Obfuscator handles structural obfuscation of payloads
type Obfuscator struct {
	rnd *rand.Rand
}

// NewObfuscator creates an obfuscator. The seed makes RandomCase reproducible,
// so the same list is printed on every run.
func NewObfuscator(seed int64) *Obfuscator {
	return &Obfuscator{
		rnd: rand.New(rand.NewSource(seed)),
	}
}

// InjectWhitespace adds whitespace inside the opening script tag
// e.g. <script> -> <script >
func (o *Obfuscator) InjectWhitespace(payload string) string {
	if strings.HasPrefix(payload, "<script") {
		return strings.Replace(payload, "<script", "<script ", 1)
	}
	return payload
}

// InjectComments inserts comments to break keyword detection
// e.g. <script> -> <scr<!--x-->ipt>
func (o *Obfuscator) InjectComments(payload string) string {
	keywords := []string{"script", "alert", "onerror", "onload"}

	obfuscated := payload
	for _, kw := range keywords {
		if strings.Contains(obfuscated, kw) {
			splitIdx := len(kw) / 2
			newKw := kw[:splitIdx] + "<!--x-->" + kw[splitIdx:]
			obfuscated = strings.Replace(obfuscated, kw, newKw, 1)
		}
	}
	return obfuscated
}

// RandomCase varies the casing of tags
// e.g. <script> -> <ScRiPt>
func (o *Obfuscator) RandomCase(payload string) string {
	var sb strings.Builder
	inTag := false

	for _, r := range payload {
		switch {
		case r == '<':
			inTag = true
			sb.WriteRune(r)
		case r == '>':
			inTag = false
			sb.WriteRune(r)
		case inTag && o.rnd.Intn(2) == 0:
			sb.WriteString(strings.ToUpper(string(r)))
		case inTag:
			sb.WriteString(strings.ToLower(string(r)))
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// GenerateVariants returns obfuscated versions of a payload
func (o *Obfuscator) GenerateVariants(payload string) []string {
	return []string{
		o.InjectWhitespace(payload),
		o.InjectComments(payload),
		o.RandomCase(payload),
	}
}
