package promptstyle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplySystem(t *testing.T) {
	assert.Equal(t, "", ApplySystem("   ", "json"))

	out := ApplySystem("Summarize the text.", "json")
	assert.True(t, strings.HasPrefix(out, marker))
	assert.Contains(t, out, "single JSON object")
	assert.True(t, strings.HasSuffix(out, "Summarize the text."))

	assert.Equal(t, out, ApplySystem(out, "json"))

	text := ApplySystem("Condense.", "text")
	assert.NotContains(t, text, "JSON")
}
