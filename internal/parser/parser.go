// Package parser splits a plain-text journal into dated entries.
package parser

import (
	"iter"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/starford/mindbox/internal/models"
)

// Whitespace and digits follow Unicode, not just ASCII: a no-break space
// separates header fields and ends a topic like any other space.
const (
	ws    = `[\t\n\v\f\r\x1c-\x1f\x85\p{Z}]`
	digit = `\p{Nd}`
)

var (
	// # [Mo ]YYYY-MM-DD HHMM[:SS][ title]
	headerRe = regexp.MustCompile(`^#` + ws + `+(?:[A-Za-z]{2}` + ws + `+)?` +
		`(` + digit + `{4}-` + digit + `{2}-` + digit + `{2})` + ws + `+` +
		`(` + digit + `{4}(?::` + digit + `{2})?)(?:` + ws + `+(.*))?$`)
	topicRe = regexp.MustCompile(`mindbox:([^\t\n\v\f\r\x1c-\x1f\x85\p{Z}#]+)`)
)

// isSpace reports whitespace the way the title is trimmed: unicode.IsSpace
// plus the ASCII information separators.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// isLineBreak reports runes that end a line.
func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}

// Lines yields the lines of data with their terminators stripped.
// Besides "\n", "\r\n" and a lone "\r", the vertical tab, form feed,
// file/group/record separators, NEL and the Unicode line and paragraph
// separators each end a line. A terminator at the very end of data does not
// start another line.
func Lines(data []byte) iter.Seq[string] {
	return func(yield func(string) bool) {
		s := string(data)
		for s != "" {
			i := strings.IndexFunc(s, isLineBreak)
			if i < 0 {
				yield(s)
				return
			}
			line := s[:i]
			r, size := utf8.DecodeRuneInString(s[i:])
			next := i + size
			if r == '\r' && next < len(s) && s[next] == '\n' {
				next++
			}
			s = s[next:]
			if !yield(line) {
				return
			}
		}
	}
}

// builder accumulates the entry whose span the scanner is currently inside.
type builder struct {
	entry models.Entry
	open  bool
}

func (b builder) start(lineNo int, m []string) builder {
	title := strings.TrimFunc(m[3], isSpace)
	e := models.Entry{
		Date:       m[1],
		Time:       m[2],
		Title:      title,
		LineNumber: lineNo,
	}
	if tm := topicRe.FindStringSubmatch(title); tm != nil {
		e.Topic = tm[1]
		e.HasTopic = true
	}
	return builder{entry: e, open: true}
}

func (b builder) append(line string) builder {
	if !b.open {
		return b
	}
	b.entry.Body = append(b.entry.Body, line)
	return b
}

// Parse scans lines once and yields an Entry for every header line together
// with the non-header lines that follow it. Lines before the first header
// are dropped. The returned sequence consumes lines and is not restartable
// unless lines is.
func Parse(lines iter.Seq[string]) iter.Seq[models.Entry] {
	return func(yield func(models.Entry) bool) {
		var cur builder
		lineNo := 0
		for line := range lines {
			lineNo++
			m := headerRe.FindStringSubmatch(line)
			if m == nil {
				cur = cur.append(line)
				continue
			}
			if cur.open && !yield(cur.entry) {
				return
			}
			cur = cur.start(lineNo, m)
		}
		if cur.open {
			yield(cur.entry)
		}
	}
}

// ParseBytes parses a whole journal held in memory.
func ParseBytes(data []byte) []models.Entry {
	return slices.Collect(Parse(Lines(data)))
}
