// Package export defines the document-generation collaborator contract: it
// takes generated plan text and produces a downloadable artifact.
package export

import (
	"fmt"
	"strings"
	"time"
)

// Exporter turns plan text into a named artifact.
type Exporter interface {
	Export(title, text string) (filename string, data []byte, err error)
}

// TextExporter produces a plain-text artifact with a small header. Richer
// renderers (PDF and the like) satisfy the same interface.
type TextExporter struct{}

func (TextExporter) Export(title, text string) (string, []byte, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil, fmt.Errorf("nothing to export")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", title)
	fmt.Fprintf(&b, "Exported: %s\n\n", time.Now().UTC().Format(time.RFC1123))
	b.WriteString(text)
	b.WriteString("\n")
	return sanitizeFilename(title) + ".txt", []byte(b.String()), nil
}

func sanitizeFilename(title string) string {
	name := strings.ToLower(strings.TrimSpace(title))
	if name == "" {
		name = "workout-plan"
	}
	replacer := strings.NewReplacer(" ", "-", "/", "-", "\\", "-", ":", "-", "(", "", ")", "")
	return replacer.Replace(name)
}
