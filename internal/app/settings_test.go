package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitKey(t *testing.T) {
	cat, name, ok := splitKey("smtp.host")
	assert.True(t, ok)
	assert.Equal(t, "smtp", cat)
	assert.Equal(t, "host", name)

	cat, name, ok = splitKey("scheduler.max_workers")
	assert.True(t, ok)
	assert.Equal(t, "scheduler", cat)
	assert.Equal(t, "max_workers", name)

	// names may contain further dots
	_, name, ok = splitKey("a.b.c")
	assert.True(t, ok)
	assert.Equal(t, "b.c", name)

	for _, bad := range []string{"", "nodot", ".leading", "trailing."} {
		_, _, ok := splitKey(bad)
		assert.False(t, ok, "key %q", bad)
	}
}
