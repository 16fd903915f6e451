package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDint64Unique(t *testing.T) {
	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		id := UUIDint64()
		assert.Positive(t, id)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestSha256HashWithSalt(t *testing.T) {
	h1 := Sha256HashWithSalt("metastack", "salt-a")
	h2 := Sha256HashWithSalt("metastack", "salt-a")
	h3 := Sha256HashWithSalt("metastack", "salt-b")
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
}

func TestGetSecretSalt(t *testing.T) {
	assert.Equal(t, "metastack-0517", GetSecretSalt())
	t.Setenv("METASTACK_SECRET_SALT", "override")
	assert.Equal(t, "override", GetSecretSalt())
}

func TestGenPassword(t *testing.T) {
	assert.Len(t, GenPassword(24), 24)
	// zero falls back to the default length
	assert.Len(t, GenPassword(0), 16)
	assert.NotEqual(t, GenPassword(16), GenPassword(16))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, FileExists(filepath.Join(dir, "missing")))
	assert.False(t, FileExists(dir))

	f := filepath.Join(dir, "present")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))
	assert.True(t, FileExists(f))
}

func TestFmtDate(t *testing.T) {
	ts := time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC)
	assert.Equal(t, "20240315_103045", FmtDate(ts))
}
