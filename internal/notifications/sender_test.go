package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupe(t *testing.T) {
	in := []string{"a", "b", "a", "c", "b", "a"}
	out := dedupe(in)

	assert.Equal(t, []string{"a", "b", "c"}, out)
}

func TestDedupe_Empty(t *testing.T) {
	assert.Empty(t, dedupe(nil))
	assert.Empty(t, dedupe([]string{}))
}
