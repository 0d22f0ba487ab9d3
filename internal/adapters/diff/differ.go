// Package diff computes line diffs between deployed and synthesized templates.
package diff

import (
	"encoding/json"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// contextLines is the number of unchanged lines kept around each change.
const contextLines = 2

// Differ implements ports.TemplateDiffer.
type Differ struct{}

// NewDiffer creates a new Differ.
func NewDiffer() *Differ {
	return &Differ{}
}

// Diff returns a listing of the changed lines with a little surrounding context.
// JSON bodies are re-indented with sorted keys first so formatting differences between
// the deployed and the synthesized template do not show up as changes.
func (*Differ) Diff(deployed, synthesized string) (string, int, int) {
	old, cur := normalize(deployed), normalize(synthesized)
	if old == cur {
		return "", 0, 0
	}

	differ := diffmatchpatch.New()
	differ.DiffTimeout = 0

	hashed1, hashed2, lineArray := differ.DiffLinesToChars(old, cur)
	diffs := differ.DiffCharsToLines(differ.DiffMain(hashed1, hashed2, false), lineArray)

	var b strings.Builder
	added, removed := 0, 0
	for index, d := range diffs {
		lines := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += len(lines)
			writeLines(&b, "+ ", lines)
		case diffmatchpatch.DiffDelete:
			removed += len(lines)
			writeLines(&b, "- ", lines)
		case diffmatchpatch.DiffEqual:
			writeContext(&b, lines, index == 0, index == len(diffs)-1)
		}
	}
	return b.String(), added, removed
}

func writeContext(b *strings.Builder, lines []string, first, last bool) {
	switch {
	case first && last:
		writeLines(b, "  ", lines)
	case first && len(lines) > contextLines+1:
		b.WriteString("  ...\n")
		writeLines(b, "  ", lines[len(lines)-contextLines:])
	case last && len(lines) > contextLines+1:
		writeLines(b, "  ", lines[:contextLines])
		b.WriteString("  ...\n")
	case !first && !last && len(lines) > 2*contextLines+1:
		writeLines(b, "  ", lines[:contextLines])
		b.WriteString("  ...\n")
		writeLines(b, "  ", lines[len(lines)-contextLines:])
	default:
		writeLines(b, "  ", lines)
	}
}

func writeLines(b *strings.Builder, prefix string, lines []string) {
	for _, line := range lines {
		b.WriteString(prefix)
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func normalize(body string) string {
	if body == "" {
		return ""
	}
	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return strings.TrimRight(body, "\n") + "\n"
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return body
	}
	return string(out) + "\n"
}
