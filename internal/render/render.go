// Package render formats a mindbox as a Vim help-style text document.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/starford/mindbox/internal/models"
)

// Extension is the file extension of generated mindbox files.
const Extension = ".mb"

// Footer is the modeline written as the last line of every mindbox file.
const Footer = "# vim: ft=plog:"

var separator = strings.Repeat("=", 79)

// FileName returns the output file name for slug.
func FileName(slug string) string {
	return slug + Extension
}

// Render returns the document for mb. Entries are written newest first,
// i.e. in reverse of the order they were parsed. source is the journal
// name used in each entry's provenance line.
func Render(mb *models.Mindbox, source string) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "*mindbox-%s* Mindbox topic: %s\n", mb.Slug, mb.Topic)
	buf.WriteString(separator)
	buf.WriteByte('\n')

	for i := len(mb.Entries) - 1; i >= 0; i-- {
		e := mb.Entries[i]
		fmt.Fprintf(&buf, "%s %s (%s:%d)\n", e.Date, e.Time, source, e.LineNumber)
		if e.Title != "" {
			fmt.Fprintf(&buf, "Title: %s\n", e.Title)
		}
		for _, line := range e.Body {
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
		buf.WriteByte('\n')
	}

	buf.WriteString(Footer)
	buf.WriteByte('\n')
	return buf.Bytes()
}
