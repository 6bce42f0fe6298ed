// Package diffstate renders a unified-diff view of two persisted revision
// states, adapted from the teacher's pkg/diff (which diffed expected-vs-actual
// plugin state during verify) into this orchestrator's revision-vs-revision
// comparison shown by `deploystrat plan --force`.
package diffstate

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	maxDiffLines    = 10000
	truncateMessage = "... (diff truncated, exceeds 10,000 lines) ..."
)

// Unified compares the persisted and recomputed JSON revision documents,
// returning an empty string when they are identical.
func Unified(persisted, recomputed []byte, persistedLabel, recomputedLabel string) string {
	if bytes.Equal(persisted, recomputed) {
		return ""
	}

	dmp := diffmatchpatch.New()
	persistedStr := string(persisted)
	recomputedStr := string(recomputed)

	diffs := dmp.DiffMain(persistedStr, recomputedStr, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "--- %s\n", persistedLabel)
	fmt.Fprintf(&buf, "+++ %s\n", recomputedLabel)

	for _, d := range diffs {
		lines := strings.Split(d.Text, "\n")
		if len(lines) > 0 && lines[len(lines)-1] == "" && strings.HasSuffix(d.Text, "\n") {
			lines = lines[:len(lines)-1]
		}

		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range lines {
			buf.WriteString(prefix)
			buf.WriteString(line)
			buf.WriteString("\n")
		}
	}

	result := buf.String()
	lines := strings.Split(result, "\n")
	if len(lines) > maxDiffLines {
		return strings.Join(lines[:maxDiffLines], "\n") + "\n" + truncateMessage + "\n"
	}
	return result
}
