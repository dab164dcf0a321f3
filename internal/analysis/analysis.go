// Package analysis inspects sanitizer output on the Go side: which executable
// constructs survived, what was removed, and how a reference policy would clean
// the same input.
package analysis

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// urlAttributes can carry a javascript: URL
var urlAttributes = []string{"href", "src", "action", "formaction", "data"}

// Residual lists executable constructs left in an HTML fragment: script
// elements, on* handler attributes, javascript: URLs and iframe srcdoc.
// Entries look like "script", "img[onerror]" or "a[href=javascript:]".
func Residual(fragment string) []string {
	if strings.TrimSpace(fragment) == "" {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		log.Debug().Err(err).Msg("Failed to parse fragment for residual analysis")
		return nil
	}

	var found []string
	seen := make(map[string]bool)
	add := func(entry string) {
		if !seen[entry] {
			seen[entry] = true
			found = append(found, entry)
		}
	}

	doc.Find("body *, head script").Each(func(i int, s *goquery.Selection) {
		tag := goquery.NodeName(s)
		if tag == "script" {
			add("script")
		}

		for _, node := range s.Nodes {
			for _, attr := range node.Attr {
				name := strings.ToLower(attr.Key)
				if attr.Namespace != "" {
					name = strings.ToLower(attr.Namespace) + ":" + name
				}
				if strings.HasPrefix(name, "on") && len(name) > 2 {
					add(fmt.Sprintf("%s[%s]", tag, name))
				}
			}
		}

		for _, name := range urlAttributes {
			if v, ok := s.Attr(name); ok && isJavascriptURL(v) {
				add(fmt.Sprintf("%s[%s=javascript:]", tag, name))
			}
		}

		if tag == "iframe" {
			if _, ok := s.Attr("srcdoc"); ok {
				add("iframe[srcdoc]")
			}
		}
	})

	return found
}

func isJavascriptURL(v string) bool {
	// browsers ignore embedded whitespace and control characters in the scheme
	cleaned := strings.Map(func(r rune) rune {
		if r <= ' ' {
			return -1
		}
		return r
	}, v)
	return strings.HasPrefix(strings.ToLower(cleaned), "javascript:")
}

// Stripped returns the text segments present in before but removed in after
func Stripped(before, after string) []string {
	if before == after {
		return nil
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var removed []string
	for _, d := range diffs {
		if d.Type != diffmatchpatch.DiffDelete {
			continue
		}
		if text := strings.TrimSpace(d.Text); text != "" {
			removed = append(removed, text)
		}
	}
	return removed
}

var referencePolicy = bluemonday.UGCPolicy()

// ReferenceSanitize cleans payload with bluemonday's UGC policy, for comparison
// with the in-page sanitizer
func ReferenceSanitize(payload string) string {
	return referencePolicy.Sanitize(payload)
}

// Prefix returns at most n characters of s
func Prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
