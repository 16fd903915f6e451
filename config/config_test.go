package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig("")
	assert.Equal(t, "metastack", cfg.System.Appid)
	assert.Equal(t, 1890, cfg.Web.Port)
	assert.Equal(t, "bw_sample_data", cfg.Database.Name)
	assert.Equal(t, "Documents", cfg.Etl.DriveName)
	assert.Len(t, cfg.Etl.Files, 2)
	assert.Equal(t, 14, cfg.Backup.Keep)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("METASTACK_DB_HOST", "db.internal")
	t.Setenv("METASTACK_WEB_PORT", "2890")
	t.Setenv("METASTACK_STACK_DOMAIN", "bi.example.com")
	t.Setenv("POSTGRES_PASSWORD", "s3cret")

	cfg := LoadConfig("")
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 2890, cfg.Web.Port)
	assert.Equal(t, "bi.example.com", cfg.Stack.Domain)
	assert.Equal(t, "s3cret", cfg.Database.Passwd)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	cfile := filepath.Join(dir, "metastack.yml")
	data := []byte("web:\n  port: 9999\nstack:\n  domain: test.local\n")
	require.NoError(t, os.WriteFile(cfile, data, 0o644))

	cfg := LoadConfig(cfile)
	assert.Equal(t, 9999, cfg.Web.Port)
	assert.Equal(t, "test.local", cfg.Stack.Domain)
	// untouched sections keep defaults
	assert.Equal(t, "bw_sample_data", cfg.Database.Name)
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfile := filepath.Join(dir, "sub", "metastack.yml")
	require.NoError(t, WriteDefault(cfile))

	cfg := LoadConfig(cfile)
	assert.Equal(t, DefaultAppConfig.Web.Port, cfg.Web.Port)
	assert.Equal(t, DefaultAppConfig.Database.Name, cfg.Database.Name)
}

func TestValidate(t *testing.T) {
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	assert.NoError(t, cfg.Validate())

	cfg.Web.Secret = ""
	assert.Error(t, cfg.Validate())

	*cfg = *DefaultAppConfig
	cfg.Stack.PollInterval = 0
	assert.Error(t, cfg.Validate())

	*cfg = *DefaultAppConfig
	cfg.Etl.Files = []EtlFile{{Filename: "x.xlsx", Path: "", Table: "x"}}
	assert.Error(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	dsn := DefaultAppConfig.Database.DSN()
	assert.Contains(t, dsn, "dbname=bw_sample_data")
	assert.Contains(t, dsn, "host=127.0.0.1")
	assert.Contains(t, dsn, "sslmode=disable")
}
