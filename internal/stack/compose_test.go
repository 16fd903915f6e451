package stack

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bwops/metastack/config"
)

func testConfig() *config.AppConfig {
	cfg := new(config.AppConfig)
	*cfg = *config.DefaultAppConfig
	return cfg
}

func TestComposeArgs(t *testing.T) {
	cfg := testConfig()
	cfg.Stack.ComposeFile = "/opt/metastack/docker-compose.yml"
	cfg.Stack.ProjectName = "metastack"
	cfg.Stack.EnvFile = "/opt/metastack/.env"

	m := NewManager(cfg)
	args := m.ComposeArgs("up", "-d")
	assert.Equal(t, []string{
		"compose",
		"-f", "/opt/metastack/docker-compose.yml",
		"-p", "metastack",
		"--env-file", "/opt/metastack/.env",
		"up", "-d",
	}, args)
}

func TestComposeArgsNoEnvFile(t *testing.T) {
	cfg := testConfig()
	cfg.Stack.EnvFile = ""
	args := NewManager(cfg).ComposeArgs("down")
	assert.NotContains(t, args, "--env-file")
	assert.Equal(t, "down", args[len(args)-1])
}

func TestHealthReport(t *testing.T) {
	report := HealthReport{
		Services: []ServiceHealth{
			{Service: "metabase", Ok: true, LatencyMs: 12},
			{Service: "postgres", Ok: true, LatencyMs: 1},
		},
	}
	assert.True(t, report.Healthy())
	assert.Equal(t, "all services healthy", report.Summary())

	report.Services = append(report.Services, ServiceHealth{
		Service: "redis", Ok: false, Message: "connection refused",
	})
	assert.False(t, report.Healthy())
	assert.Contains(t, report.Summary(), "redis")
}

func TestHealthReportEmpty(t *testing.T) {
	assert.False(t, HealthReport{}.Healthy())
}

func TestProbePostgresUnreachable(t *testing.T) {
	cfg := testConfig()
	cfg.Database.Host = "127.0.0.1"
	cfg.Database.Port = 1 // nothing listens here

	h := NewManager(cfg).probePostgres(context.Background())
	assert.Equal(t, "postgres", h.Service)
	assert.False(t, h.Ok)
	assert.NotEmpty(t, h.Message)
}

func TestProbeTCPUnreachable(t *testing.T) {
	h := probeTCP("nginx", "127.0.0.1:1")
	assert.False(t, h.Ok)
	assert.NotEmpty(t, h.Message)
}
