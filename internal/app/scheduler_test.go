package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampWorkers(t *testing.T) {
	// in-range values pass through
	assert.Equal(t, 1, clampWorkers(1))
	assert.Equal(t, 40, clampWorkers(40))
	assert.Equal(t, 100, clampWorkers(100))

	// unset or nonsense values fall back to the default
	assert.Equal(t, defaultMaxWorkers, clampWorkers(0))
	assert.Equal(t, defaultMaxWorkers, clampWorkers(-5))
	assert.Equal(t, defaultMaxWorkers, clampWorkers(101))
	assert.Equal(t, defaultMaxWorkers, clampWorkers(100000))
}
