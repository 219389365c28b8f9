// Package tagscan is a tolerant element lookup over semi-structured markup.
//
// It is not a validating XML parser. Bank exports are frequently malformed
// relative to their schemas, so lookups scan the text directly: the first
// match wins, bodies are trimmed, and nothing ever fails louder than "not found".
package tagscan

import "strings"

// Element is a direct child element returned by Children.
type Element struct {
	Name    string
	Content string
}

type span struct {
	start     int // index of '<' of the opening tag
	bodyStart int
	bodyEnd   int
	end       int // index just past the closing tag
}

// TagContent returns the trimmed body of the first <name ...>...</name> element.
// A self-closing <name/> yields an empty body.
func TagContent(doc, name string) (string, bool) {
	sp, ok := locate(doc, name, 0)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(doc[sp.bodyStart:sp.bodyEnd]), true
}

// AllTagContents returns the trimmed bodies of every non-overlapping name
// element in document order.
func AllTagContents(doc, name string) []string {
	var out []string
	from := 0
	for from < len(doc) {
		sp, ok := locate(doc, name, from)
		if !ok {
			break
		}
		out = append(out, strings.TrimSpace(doc[sp.bodyStart:sp.bodyEnd]))
		from = sp.end
	}
	return out
}

// Attribute returns the first name="value" (or name='value') occurrence.
func Attribute(doc, name string) (string, bool) {
	from := 0
	for {
		i := strings.Index(doc[from:], name)
		if i < 0 {
			return "", false
		}
		pos := from + i
		from = pos + len(name)
		if pos == 0 || !isSpace(doc[pos-1]) {
			continue
		}
		j := skipSpace(doc, from)
		if j >= len(doc) || doc[j] != '=' {
			continue
		}
		j = skipSpace(doc, j+1)
		if j >= len(doc) || (doc[j] != '"' && doc[j] != '\'') {
			continue
		}
		quote := doc[j]
		k := strings.IndexByte(doc[j+1:], quote)
		if k < 0 {
			return "", false
		}
		return strings.TrimSpace(doc[j+1 : j+1+k]), true
	}
}

// HasTag reports whether an opening name tag occurs anywhere in doc.
func HasTag(doc, name string) bool {
	return openAt(doc, name, 0) >= 0
}

// FirstOf tries each name in order and returns the first non-empty body.
func FirstOf(doc string, names ...string) (string, bool) {
	for _, n := range names {
		if v, ok := TagContent(doc, n); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// Strip removes every name element, tags included.
func Strip(doc, name string) string {
	var b strings.Builder
	from := 0
	for from < len(doc) {
		sp, ok := locate(doc, name, from)
		if !ok {
			break
		}
		b.WriteString(doc[from:sp.start])
		from = sp.end
	}
	if from == 0 {
		return doc
	}
	b.WriteString(doc[from:])
	return b.String()
}

// Children returns the direct child elements of doc in order. Text between
// elements, comments and declarations are skipped.
func Children(doc string) []Element {
	var out []Element
	from := 0
	for {
		i := strings.IndexByte(doc[from:], '<')
		if i < 0 || from+i+1 >= len(doc) {
			return out
		}
		pos := from + i
		c := doc[pos+1]
		if c == '/' || c == '!' || c == '?' {
			from = pos + 1
			continue
		}
		n := pos + 1
		for n < len(doc) && !isBoundary(doc[n]) {
			n++
		}
		name := doc[pos+1 : n]
		if name == "" {
			from = pos + 1
			continue
		}
		sp, ok := locate(doc, name, pos)
		if !ok {
			return out
		}
		out = append(out, Element{Name: name, Content: strings.TrimSpace(doc[sp.bodyStart:sp.bodyEnd])})
		from = sp.end
	}
}

// locate finds the first name element opening at or after from. Nested
// elements of the same name are depth-counted; if the nesting never balances
// the first closing tag is used.
func locate(doc, name string, from int) (span, bool) {
	start := openAt(doc, name, from)
	if start < 0 {
		return span{}, false
	}
	gt := tagEnd(doc, start)
	if gt < 0 {
		return span{}, false
	}
	if doc[gt-1] == '/' {
		return span{start: start, bodyStart: gt + 1, bodyEnd: gt + 1, end: gt + 1}, true
	}

	firstClose, firstCloseEnd := closeAt(doc, name, gt+1)
	if firstClose < 0 {
		return span{}, false
	}

	depth := 1
	cursor := gt + 1
	for {
		cl, clEnd := closeAt(doc, name, cursor)
		if cl < 0 {
			return span{start: start, bodyStart: gt + 1, bodyEnd: firstClose, end: firstCloseEnd}, true
		}
		op := openAt(doc, name, cursor)
		if op >= 0 && op < cl {
			opGt := tagEnd(doc, op)
			if opGt < 0 || opGt > cl {
				cursor = op + 1
				continue
			}
			if doc[opGt-1] != '/' {
				depth++
			}
			cursor = opGt + 1
			continue
		}
		depth--
		if depth == 0 {
			return span{start: start, bodyStart: gt + 1, bodyEnd: cl, end: clEnd}, true
		}
		cursor = clEnd
	}
}

// openAt returns the index of the next "<name" followed by a tag boundary.
func openAt(doc, name string, from int) int {
	needle := "<" + name
	for from < len(doc) {
		i := strings.Index(doc[from:], needle)
		if i < 0 {
			return -1
		}
		pos := from + i
		after := pos + len(needle)
		if after < len(doc) && isBoundary(doc[after]) {
			return pos
		}
		from = pos + 1
	}
	return -1
}

// closeAt returns the bounds of the next "</name>" (whitespace allowed before '>').
func closeAt(doc, name string, from int) (int, int) {
	needle := "</" + name
	for from < len(doc) {
		i := strings.Index(doc[from:], needle)
		if i < 0 {
			return -1, -1
		}
		pos := from + i
		j := skipSpace(doc, pos+len(needle))
		if j < len(doc) && doc[j] == '>' {
			return pos, j + 1
		}
		from = pos + 1
	}
	return -1, -1
}

// tagEnd returns the index of the '>' closing the tag that opens at start,
// ignoring '>' inside quoted attribute values.
func tagEnd(doc string, start int) int {
	var quote byte
	for i := start + 1; i < len(doc); i++ {
		c := doc[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return i
		case c == '<':
			return -1
		}
	}
	return -1
}

func isBoundary(c byte) bool {
	return c == '>' || c == '/' || isSpace(c)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func skipSpace(doc string, i int) int {
	for i < len(doc) && isSpace(doc[i]) {
		i++
	}
	return i
}
