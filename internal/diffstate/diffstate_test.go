package diffstate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnified_IdenticalContent_ReturnsEmpty(t *testing.T) {
	persisted := []byte(`{"plan":{"actions":[]}}`)
	recomputed := []byte(`{"plan":{"actions":[]}}`)

	assert.Equal(t, "", Unified(persisted, recomputed, "persisted", "recomputed"))
}

func TestUnified_ChangedContent_ShowsAddRemove(t *testing.T) {
	persisted := []byte("line1\nline2\nline3\n")
	recomputed := []byte("line1\nmodified\nline3\n")

	result := Unified(persisted, recomputed, "persisted", "recomputed")

	assert.Contains(t, result, "--- persisted")
	assert.Contains(t, result, "+++ recomputed")
	assert.Contains(t, result, "-line2")
	assert.Contains(t, result, "+modified")
}

func TestUnified_Truncation_CapsOutput(t *testing.T) {
	var persistedLines, recomputedLines []string
	for i := 0; i < 11000; i++ {
		persistedLines = append(persistedLines, "old")
		recomputedLines = append(recomputedLines, "new")
	}

	result := Unified([]byte(strings.Join(persistedLines, "\n")), []byte(strings.Join(recomputedLines, "\n")), "a", "b")

	assert.Contains(t, result, "truncated")
}
