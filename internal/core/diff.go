package core

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffContext is the number of unchanged lines shown around each change
const DiffContext = 3

type diffLine struct {
	op   diffmatchpatch.Operation
	text string
}

// GenerateUnifiedDiff renders the line changes from oldData to newData in
// unified format. It returns an empty string when both are identical.
func GenerateUnifiedDiff(oldName, newName string, oldData, newData []byte) string {
	if bytes.Equal(oldData, newData) {
		return ""
	}

	dmp := diffmatchpatch.New()

	// Line-mode diff for readable hunks
	a, b, lineArray := dmp.DiffLinesToChars(string(oldData), string(newData))
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	lines := splitDiffLines(diffs)

	var result strings.Builder
	result.WriteString(fmt.Sprintf("--- %s\n", oldName))
	result.WriteString(fmt.Sprintf("+++ %s\n", newName))

	hunks := 0
	for start := 0; start < len(lines); {
		// Find the next change
		first := start
		for first < len(lines) && lines[first].op == diffmatchpatch.DiffEqual {
			first++
		}
		if first == len(lines) {
			break
		}

		// Extend the hunk while changes are closer than twice the context
		last := first
		for i := first; i < len(lines); i++ {
			if lines[i].op != diffmatchpatch.DiffEqual {
				last = i
				continue
			}
			if i-last > 2*DiffContext {
				break
			}
		}

		from := max(first-DiffContext, 0)
		to := min(last+DiffContext+1, len(lines))
		writeHunk(&result, lines, from, to)
		hunks++
		start = to
	}

	if hunks == 0 {
		return ""
	}
	return result.String()
}

// splitDiffLines turns line-mode diffs into one entry per line
func splitDiffLines(diffs []diffmatchpatch.Diff) []diffLine {
	var lines []diffLine
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		text := strings.TrimSuffix(d.Text, "\n")
		for _, line := range strings.Split(text, "\n") {
			lines = append(lines, diffLine{op: d.Type, text: line})
		}
	}
	return lines
}

func writeHunk(w *strings.Builder, lines []diffLine, from, to int) {
	// Line numbers of the hunk start on each side
	oldStart, newStart := 1, 1
	for _, l := range lines[:from] {
		if l.op != diffmatchpatch.DiffInsert {
			oldStart++
		}
		if l.op != diffmatchpatch.DiffDelete {
			newStart++
		}
	}

	var oldCount, newCount int
	var body strings.Builder
	for _, l := range lines[from:to] {
		switch l.op {
		case diffmatchpatch.DiffEqual:
			body.WriteString(" " + l.text + "\n")
			oldCount++
			newCount++
		case diffmatchpatch.DiffDelete:
			body.WriteString("-" + l.text + "\n")
			oldCount++
		case diffmatchpatch.DiffInsert:
			body.WriteString("+" + l.text + "\n")
			newCount++
		}
	}

	fmt.Fprintf(w, "@@ -%d,%d +%d,%d @@\n", oldStart, oldCount, newStart, newCount)
	w.WriteString(body.String())
}
