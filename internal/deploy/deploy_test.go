package deploy

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bwops/metastack/config"
)

func TestCrontabEntries(t *testing.T) {
	entries := CrontabEntries("/opt/metastack")
	require.Len(t, entries, 2)

	for _, e := range entries {
		assert.Contains(t, e, "/opt/metastack")
		// tagged so re-deploys can replace their own lines
		assert.True(t, strings.HasSuffix(e, "# metastack"))
	}
	assert.Contains(t, entries[0], "0 2 * * *")
	assert.Contains(t, entries[0], "pg_dumpall")
	assert.Contains(t, entries[1], "0 3 * * *")
}

func TestAddr(t *testing.T) {
	cfg := new(config.AppConfig)
	*cfg = *config.DefaultAppConfig
	cfg.Deploy.Host = "10.0.0.5"
	cfg.Deploy.Port = 2222
	assert.Equal(t, "10.0.0.5:2222", New(cfg).addr())

	cfg.Deploy.Port = 0
	assert.Equal(t, "10.0.0.5:22", New(cfg).addr())
}

func TestDeployRequiresHost(t *testing.T) {
	cfg := new(config.AppConfig)
	*cfg = *config.DefaultAppConfig
	cfg.Deploy.Host = ""
	err := New(cfg).Deploy(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deploy.host")
}
