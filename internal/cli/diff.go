package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
)

// renderDiff returns an inline diff of before and after. Form XML is often
// a single line, so the diff works on characters rather than lines.
// Without color, deletions are shown as [-text-] and insertions as {+text+}.
func renderDiff(before, after string, color bool) string {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			b.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			if color {
				b.WriteString(colorRed + d.Text + colorReset)
			} else {
				b.WriteString("[-" + d.Text + "-]")
			}
		case diffmatchpatch.DiffInsert:
			if color {
				b.WriteString(colorGreen + d.Text + colorReset)
			} else {
				b.WriteString("{+" + d.Text + "+}")
			}
		}
	}
	return b.String()
}

// writeDiff prints a header and the diff of one changed document, in color
// when w is a terminal.
func writeDiff(w io.Writer, header, before, after string) {
	w, color := colorWriter(w)
	if color {
		fmt.Fprintf(w, "%s--- %s%s\n", colorCyan, header, colorReset)
	} else {
		fmt.Fprintf(w, "--- %s\n", header)
	}
	fmt.Fprintln(w, renderDiff(before, after, color))
}
