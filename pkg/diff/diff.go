// Package diff renders unified diffs for previewing proposed edits without
// mutating files.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

type lineOp int

const (
	opEqual lineOp = iota
	opDelete
	opInsert
)

type lineDiff struct {
	op   lineOp
	text string
}

// contextLines is the number of unchanged lines shown around each hunk.
const contextLines = 3

// Unified computes a unified diff between two texts using line-level
// comparison, labeled with the given from/to names.
func Unified(oldText, newText, fromLabel, toLabel string) string {
	lines := lineDiffs(oldText, newText)

	changed := false
	for _, l := range lines {
		if l.op != opEqual {
			changed = true
			break
		}
	}
	if !changed {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n", fromLabel)
	fmt.Fprintf(&b, "+++ %s\n", toLabel)

	for _, h := range hunks(lines) {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", h.oldStart, h.oldCount, h.newStart, h.newCount)
		for _, l := range h.lines {
			switch l.op {
			case opEqual:
				b.WriteString(" " + l.text + "\n")
			case opDelete:
				b.WriteString("-" + l.text + "\n")
			case opInsert:
				b.WriteString("+" + l.text + "\n")
			}
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// lineDiffs produces per-line diff operations between two texts.
func lineDiffs(oldText, newText string) []lineDiff {
	dmp := diffmatchpatch.New()
	oldChars, newChars, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(oldChars, newChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var out []lineDiff
	for _, d := range diffs {
		chunk := strings.Split(d.Text, "\n")
		if len(chunk) > 0 && chunk[len(chunk)-1] == "" {
			chunk = chunk[:len(chunk)-1]
		}
		for _, text := range chunk {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				out = append(out, lineDiff{op: opEqual, text: text})
			case diffmatchpatch.DiffDelete:
				out = append(out, lineDiff{op: opDelete, text: text})
			case diffmatchpatch.DiffInsert:
				out = append(out, lineDiff{op: opInsert, text: text})
			}
		}
	}
	return out
}

type hunk struct {
	oldStart, oldCount int
	newStart, newCount int
	lines              []lineDiff
}

// hunks groups line diffs into unified-diff hunks with surrounding context.
func hunks(lines []lineDiff) []hunk {
	var result []hunk

	// Mark which lines belong in a hunk: changes plus context around them.
	include := make([]bool, len(lines))
	for i, l := range lines {
		if l.op == opEqual {
			continue
		}
		lo := i - contextLines
		if lo < 0 {
			lo = 0
		}
		hi := i + contextLines
		if hi >= len(lines) {
			hi = len(lines) - 1
		}
		for j := lo; j <= hi; j++ {
			include[j] = true
		}
	}

	oldLine, newLine := 1, 1
	i := 0
	for i < len(lines) {
		if !include[i] {
			if lines[i].op != opInsert {
				oldLine++
			}
			if lines[i].op != opDelete {
				newLine++
			}
			i++
			continue
		}

		h := hunk{oldStart: oldLine, newStart: newLine}
		for i < len(lines) && include[i] {
			l := lines[i]
			h.lines = append(h.lines, l)
			if l.op != opInsert {
				h.oldCount++
				oldLine++
			}
			if l.op != opDelete {
				h.newCount++
				newLine++
			}
			i++
		}
		if h.oldCount == 0 {
			h.oldStart--
		}
		if h.newCount == 0 {
			h.newStart--
		}
		result = append(result, h)
	}
	return result
}
