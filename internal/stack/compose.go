// Package stack drives the packaged docker compose stack (BI dashboard,
// database, cache, reverse proxy). It shells out to the compose CLI and never
// reimplements container runtime behavior.
package stack

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bwops/metastack/config"
)

type Manager struct {
	cfg *config.AppConfig
	// Stdout/Stderr of spawned compose processes; defaults to the controller's own.
	Out io.Writer
}

func NewManager(cfg *config.AppConfig) *Manager {
	return &Manager{cfg: cfg, Out: os.Stdout}
}

// CheckPrereq verifies the orchestration CLI is present before any action.
func (m *Manager) CheckPrereq() error {
	if _, err := exec.LookPath("docker"); err != nil {
		return errors.New("docker not found in PATH, install docker first")
	}
	if !strings.HasPrefix(m.cfg.Stack.ComposeFile, "/") {
		if _, err := os.Stat(m.cfg.Stack.ComposeFile); err != nil {
			return errors.Wrapf(err, "compose file %s", m.cfg.Stack.ComposeFile)
		}
	}
	return nil
}

// ComposeArgs returns the fixed prefix for every compose invocation.
func (m *Manager) ComposeArgs(action ...string) []string {
	args := []string{"compose", "-f", m.cfg.Stack.ComposeFile, "-p", m.cfg.Stack.ProjectName}
	if m.cfg.Stack.EnvFile != "" {
		args = append(args, "--env-file", m.cfg.Stack.EnvFile)
	}
	return append(args, action...)
}

func (m *Manager) run(ctx context.Context, action ...string) error {
	args := m.ComposeArgs(action...)
	zap.L().Info("running compose command", zap.Strings("args", args))
	cmd := exec.CommandContext(ctx, "docker", args...)
	cmd.Stdout = m.Out
	cmd.Stderr = m.Out
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "docker %s", strings.Join(args, " "))
	}
	return nil
}

// Up starts the whole stack in detached mode.
func (m *Manager) Up(ctx context.Context) error {
	if err := m.CheckPrereq(); err != nil {
		return err
	}
	return m.run(ctx, "up", "-d")
}

// Down stops and removes stack containers, keeping volumes.
func (m *Manager) Down(ctx context.Context) error {
	return m.run(ctx, "down")
}

// Pull fetches the current images for all services.
func (m *Manager) Pull(ctx context.Context) error {
	return m.run(ctx, "pull")
}

// Restart restarts one named service, or the whole stack when empty.
func (m *Manager) Restart(ctx context.Context, service string) error {
	if service == "" {
		return m.run(ctx, "restart")
	}
	return m.run(ctx, "restart", service)
}

// Logs tails service logs to m.Out.
func (m *Manager) Logs(ctx context.Context, service string, follow bool) error {
	action := []string{"logs", "--tail", "200"}
	if follow {
		action = append(action, "-f")
	}
	if service != "" {
		action = append(action, service)
	}
	return m.run(ctx, action...)
}

// ExecService runs a command inside a running service container.
func (m *Manager) ExecService(ctx context.Context, service string, command ...string) error {
	action := append([]string{"exec", "-T", service}, command...)
	return m.run(ctx, action...)
}

// WaitReady polls the stack health at a fixed interval until every service
// answers or the deadline expires. Deliberately a sleep loop, matching the
// operational contract of the provisioning flow.
func (m *Manager) WaitReady(ctx context.Context) error {
	timeout := time.Duration(m.cfg.Stack.ReadyTimeout) * time.Second
	interval := time.Duration(m.cfg.Stack.PollInterval) * time.Second
	deadline := time.Now().Add(timeout)

	for {
		report := m.Health(ctx)
		if report.Healthy() {
			zap.L().Info("stack is ready")
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("stack not ready after %s: %s", timeout, report.Summary())
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
