// Package diff renders attribute drift between an observed and a
// desired resource state in unified diff style.
package diff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	maxDiffLines    = 400
	truncateMessage = "... (diff truncated) ..."
)

// Attributes compares two attribute maps rendered as sorted
// "name: value" lines and returns a unified style diff: observed lines
// carry "-", desired lines "+". Returns the empty string when both maps
// hold the same pairs. Callers decide which names belong in the maps;
// an attribute absent on one side reads as a pure addition or removal.
func Attributes(observed, desired map[string]string, observedLabel, desiredLabel string) string {
	before := renderLines(observed)
	after := renderLines(desired)
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(beforeChars, afterChars, false), lineArray)

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n", observedLabel)
	fmt.Fprintf(&b, "+++ %s\n", desiredLabel)

	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range splitLines(d.Text) {
			b.WriteString(prefix)
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}

	return truncate(b.String())
}

func renderLines(attrs map[string]string) string {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "%s: %s\n", name, attrs[name])
	}
	return b.String()
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func truncate(out string) string {
	lines := strings.Split(out, "\n")
	if len(lines) <= maxDiffLines {
		return out
	}
	return strings.Join(lines[:maxDiffLines], "\n") + "\n" + truncateMessage + "\n"
}
