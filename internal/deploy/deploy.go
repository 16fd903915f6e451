// Package deploy pushes the stack bundle to a remote host over ssh and
// replays the orchestration commands there, replacing the per-host
// deployment scripts of the original runbook. The flow fails on the first
// failing remote command; there is no rollback.
package deploy

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"

	"github.com/bwops/metastack/config"
)

type Deployer struct {
	cfg *config.AppConfig
}

func New(cfg *config.AppConfig) *Deployer {
	return &Deployer{cfg: cfg}
}

func (d *Deployer) addr() string {
	port := d.cfg.Deploy.Port
	if port == 0 {
		port = 22
	}
	return fmt.Sprintf("%s:%d", d.cfg.Deploy.Host, port)
}

func (d *Deployer) connect() (*ssh.Client, error) {
	keyData, err := os.ReadFile(d.cfg.Deploy.PrivateKey)
	if err != nil {
		return nil, errors.Wrap(err, "read private key")
	}
	signer, err := ssh.ParsePrivateKey(keyData)
	if err != nil {
		return nil, errors.Wrap(err, "parse private key")
	}
	conf := &ssh.ClientConfig{
		User:            d.cfg.Deploy.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // target hosts are operator-provisioned
		Timeout:         15 * time.Second,
	}
	client, err := ssh.Dial("tcp", d.addr(), conf)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", d.addr())
	}
	return client, nil
}

func runCommand(client *ssh.Client, command string) (string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", errors.Wrap(err, "open session")
	}
	defer session.Close()
	out, err := session.CombinedOutput(command)
	if err != nil {
		return string(out), errors.Wrapf(err, "remote command %q: %s", command, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// Deploy uploads the bundle, restarts the stack remotely, installs the
// nightly crontab and runs a single health test with a hard timeout.
func (d *Deployer) Deploy(ctx context.Context) error {
	if d.cfg.Deploy.Host == "" {
		return errors.New("deploy.host is not configured")
	}

	client, err := d.connect()
	if err != nil {
		return err
	}
	defer client.Close()
	zap.L().Info("connected to remote host", zap.String("addr", d.addr()))

	if err := d.upload(client); err != nil {
		return err
	}

	remoteDir := d.cfg.Deploy.RemoteDir
	commands := []string{
		fmt.Sprintf("cd %s && docker compose pull", remoteDir),
		fmt.Sprintf("cd %s && docker compose up -d", remoteDir),
		fmt.Sprintf("cd %s && docker compose restart %s", remoteDir, d.cfg.Deploy.Service),
	}
	for _, cmd := range commands {
		zap.L().Info("remote", zap.String("cmd", cmd))
		if _, err := runCommand(client, cmd); err != nil {
			return err
		}
	}

	if err := d.installCrontab(client); err != nil {
		return err
	}

	return d.remoteHealthTest(ctx, client)
}

func (d *Deployer) upload(client *ssh.Client) error {
	sftpc, err := sftp.NewClient(client)
	if err != nil {
		return errors.Wrap(err, "open sftp")
	}
	defer sftpc.Close()

	if err := sftpc.MkdirAll(d.cfg.Deploy.RemoteDir); err != nil {
		return errors.Wrapf(err, "mkdir %s", d.cfg.Deploy.RemoteDir)
	}

	for _, local := range d.cfg.Deploy.Bundle {
		if err := d.uploadPath(sftpc, local); err != nil {
			return err
		}
	}
	return nil
}

func (d *Deployer) uploadPath(sftpc *sftp.Client, local string) error {
	st, err := os.Stat(local)
	if err != nil {
		return errors.Wrapf(err, "stat %s", local)
	}
	if !st.IsDir() {
		return d.uploadFile(sftpc, local, path.Join(d.cfg.Deploy.RemoteDir, filepath.Base(local)))
	}
	base := filepath.Dir(local)
	return filepath.Walk(local, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		remote := path.Join(d.cfg.Deploy.RemoteDir, filepath.ToSlash(rel))
		if info.IsDir() {
			return sftpc.MkdirAll(remote)
		}
		return d.uploadFile(sftpc, p, remote)
	})
}

func (d *Deployer) uploadFile(sftpc *sftp.Client, local, remote string) error {
	src, err := os.Open(local)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := sftpc.Create(remote)
	if err != nil {
		return errors.Wrapf(err, "create %s", remote)
	}
	defer dst.Close()

	n, err := dst.ReadFrom(src)
	if err != nil {
		return errors.Wrapf(err, "upload %s", remote)
	}
	zap.L().Info("uploaded", zap.String("remote", remote), zap.Int64("bytes", n))
	return nil
}

// CrontabEntries renders the fixed nightly schedule installed on the remote
// host: ETL import at 03:00, database backup at 02:00.
func CrontabEntries(remoteDir string) []string {
	return []string{
		fmt.Sprintf("0 2 * * * cd %s && docker compose exec -T postgres pg_dumpall -U postgres > backup/nightly.sql # metastack", remoteDir),
		fmt.Sprintf("0 3 * * * cd %s && docker compose run --rm etl # metastack", remoteDir),
	}
}

func (d *Deployer) installCrontab(client *ssh.Client) error {
	entries := CrontabEntries(d.cfg.Deploy.RemoteDir)
	// replace previous metastack-tagged lines, keep everything else
	script := fmt.Sprintf("(crontab -l 2>/dev/null | grep -v '# metastack'; printf '%%s\\n' %q %q) | crontab -",
		entries[0], entries[1])
	if _, err := runCommand(client, script); err != nil {
		return err
	}
	zap.L().Info("installed remote crontab", zap.Int("entries", len(entries)))
	return nil
}

// remoteHealthTest runs the post-deploy smoke check, bounded by a single
// timeout around the whole invocation.
func (d *Deployer) remoteHealthTest(ctx context.Context, client *ssh.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := runCommand(client, "curl -fsS http://127.0.0.1:3000/api/health")
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return errors.Wrap(err, "remote health test")
		}
		zap.L().Info("remote health test passed")
		return nil
	case <-ctx.Done():
		return errors.New("remote health test timed out")
	}
}
