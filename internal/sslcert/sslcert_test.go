package sslcert

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bwops/metastack/config"
)

func testManager(t *testing.T, domain string) *Manager {
	cfg := new(config.AppConfig)
	*cfg = *config.DefaultAppConfig
	cfg.Stack.Domain = domain
	cfg.Ssl.CertDir = t.TempDir()
	return NewManager(cfg, nil)
}

func TestSelfSigned(t *testing.T) {
	m := testManager(t, "bi.example.com")
	require.NoError(t, m.SelfSigned())

	info, err := m.CertInfo()
	require.NoError(t, err)
	assert.Equal(t, "bi.example.com", info.Subject.CommonName)
	assert.Contains(t, info.DNSNames, "bi.example.com")
	assert.True(t, info.NotAfter.After(time.Now().AddDate(0, 11, 0)))

	// key is written mode 0600
	fi, err := os.Stat(m.KeyPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}

func TestSelfSignedIPAddress(t *testing.T) {
	m := testManager(t, "192.168.1.10")
	require.NoError(t, m.SelfSigned())

	info, err := m.CertInfo()
	require.NoError(t, err)
	assert.Empty(t, info.DNSNames)
	require.Len(t, info.IPAddresses, 1)
	assert.Equal(t, "192.168.1.10", info.IPAddresses[0].String())
}

func TestSelfSignedDefaultsToLocalhost(t *testing.T) {
	m := testManager(t, "")
	require.NoError(t, m.SelfSigned())

	// empty domain falls back to localhost but still writes under "" dir
	info, err := m.CertInfo()
	require.NoError(t, err)
	assert.Equal(t, "localhost", info.Subject.CommonName)
}

func TestNeedsRenewal(t *testing.T) {
	m := testManager(t, "bi.example.com")

	// missing certificate counts as due
	assert.True(t, m.NeedsRenewal())

	require.NoError(t, m.SelfSigned())
	assert.False(t, m.NeedsRenewal())

	// short-lived certificate is due immediately
	m.cfg.Ssl.SelfSignedDays = 5
	require.NoError(t, m.SelfSigned())
	assert.True(t, m.NeedsRenewal())
}

func TestCertPaths(t *testing.T) {
	m := testManager(t, "bi.example.com")
	assert.Contains(t, m.CertPath(), "bi.example.com/fullchain.pem")
	assert.Contains(t, m.KeyPath(), "bi.example.com/privkey.pem")
}
