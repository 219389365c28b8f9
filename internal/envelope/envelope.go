// Package envelope reduces an XML bank export to bare tag names so that
// extractors can match <Amt> regardless of how the producer namespaced it.
package envelope

import (
	"regexp"
	"strings"
)

const bom = "\uFEFF"

var (
	cdataRe = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
	// processing instructions, including the <?xml ...?> prolog
	piRe     = regexp.MustCompile(`(?s)<\?.*?\?>`)
	prefixRe = regexp.MustCompile(`<(/?)[A-Za-z_][\w.\-]*:([A-Za-z_])`)
)

// Normalize strips a leading BOM, the XML prolog and other processing
// instructions, unwraps CDATA sections and collapses namespace prefixes on
// element names. Namespace declarations are left in place so format
// detection can still see the namespace URN.
//
// Normalize is idempotent and never fails. Text without angle-bracket markup
// (MT940) comes back unchanged apart from a BOM.
func Normalize(raw string) string {
	s := raw
	for {
		next := step(s)
		if next == s {
			return s
		}
		s = next
	}
}

// step applies one round of every rewrite. Each rewrite only ever shortens
// the text, so repeating until nothing changes terminates.
func step(s string) string {
	s = strings.TrimPrefix(s, bom)
	if !strings.Contains(s, "<") {
		return s
	}
	s = cdataRe.ReplaceAllString(s, "$1")
	s = piRe.ReplaceAllString(s, "")
	s = prefixRe.ReplaceAllString(s, "<$1$2")
	return strings.TrimLeft(s, " \t\r\n")
}
