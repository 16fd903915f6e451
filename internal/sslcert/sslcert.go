// Package sslcert bootstraps TLS for the reverse proxy: managed issuance
// through the certbot CLI first, self-signed fallback when issuance fails,
// then a proxy reload. Certificate issuance protocol details stay inside
// certbot; this package only sequences the commands and tracks inventory.
package sslcert

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bwops/metastack/config"
	"github.com/bwops/metastack/internal/domain"
	"github.com/bwops/metastack/internal/stack"
)

type Manager struct {
	cfg *config.AppConfig
	db  *gorm.DB // optional; inventory rows are skipped when nil
}

func NewManager(cfg *config.AppConfig, db *gorm.DB) *Manager {
	return &Manager{cfg: cfg, db: db}
}

func (m *Manager) domain() string {
	return m.cfg.Stack.Domain
}

func (m *Manager) liveDir() string {
	return filepath.Join(m.cfg.Ssl.CertDir, m.domain())
}

// CertPath returns the full chain path served by the proxy.
func (m *Manager) CertPath() string {
	return filepath.Join(m.liveDir(), "fullchain.pem")
}

// KeyPath returns the private key path served by the proxy.
func (m *Manager) KeyPath() string {
	return filepath.Join(m.liveDir(), "privkey.pem")
}

// Issue requests a managed certificate through the certbot CLI in webroot
// mode. The staging flag switches to the test CA, as the provisioning
// configuration does for non-production domains.
func (m *Manager) Issue(ctx context.Context) error {
	if m.domain() == "" {
		return errors.New("stack.domain is not configured")
	}
	args := []string{
		"certonly", "--webroot",
		"-w", m.cfg.Ssl.WebRoot,
		"-d", m.domain(),
		"--email", m.cfg.Ssl.Email,
		"--agree-tos", "--non-interactive",
	}
	if m.cfg.Ssl.Staging {
		args = append(args, "--staging")
	}
	zap.L().Info("requesting certificate", zap.String("domain", m.domain()), zap.Bool("staging", m.cfg.Ssl.Staging))
	out, err := exec.CommandContext(ctx, "certbot", args...).CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "certbot: %s", string(out))
	}
	m.recordCert(false)
	return nil
}

// Renew runs certbot renew; certbot itself decides which lineages are due.
func (m *Manager) Renew(ctx context.Context) error {
	out, err := exec.CommandContext(ctx, "certbot", "renew", "--non-interactive").CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "certbot renew: %s", string(out))
	}
	m.recordCert(false)
	return nil
}

// Bootstrap is the certificate bootstrap sequence: try managed issuance,
// fall back to a self-signed certificate, then reload the proxy. No retry
// policy and no state machine beyond this sequence.
func (m *Manager) Bootstrap(ctx context.Context, sm *stack.Manager) error {
	if err := m.Issue(ctx); err != nil {
		zap.L().Warn("managed issuance failed, generating self-signed certificate", zap.Error(err))
		if err := m.SelfSigned(); err != nil {
			return err
		}
	}
	return m.ReloadProxy(ctx, sm)
}

// ReloadProxy signals the nginx container to reload its configuration.
func (m *Manager) ReloadProxy(ctx context.Context, sm *stack.Manager) error {
	return sm.ExecService(ctx, "nginx", "nginx", "-s", "reload")
}

// CertInfo parses the installed certificate.
func (m *Manager) CertInfo() (*x509.Certificate, error) {
	data, err := os.ReadFile(m.CertPath())
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM data in %s", m.CertPath())
	}
	return x509.ParseCertificate(block.Bytes)
}

// NeedsRenewal reports whether the installed certificate expires within the
// configured threshold. A missing certificate counts as needing renewal.
func (m *Manager) NeedsRenewal() bool {
	cert, err := m.CertInfo()
	if err != nil {
		return true
	}
	threshold := time.Duration(m.cfg.Ssl.RenewBefore) * 24 * time.Hour
	return time.Until(cert.NotAfter) < threshold
}

func (m *Manager) recordCert(selfSigned bool) {
	if m.db == nil {
		return
	}
	cert, err := m.CertInfo()
	if err != nil {
		zap.L().Warn("unable to read installed certificate", zap.Error(err))
		return
	}
	row := domain.SslCertificate{
		Domain:     m.domain(),
		Issuer:     cert.Issuer.CommonName,
		SelfSigned: selfSigned,
		NotBefore:  cert.NotBefore,
		NotAfter:   cert.NotAfter,
		UpdatedAt:  time.Now(),
	}
	var existing domain.SslCertificate
	err = m.db.Where("domain = ?", m.domain()).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row.CreatedAt = time.Now()
		if err := m.db.Create(&row).Error; err != nil {
			zap.L().Error("failed to record certificate", zap.Error(err))
		}
		return
	}
	if err != nil {
		zap.L().Error("failed to query certificate inventory", zap.Error(err))
		return
	}
	if err := m.db.Model(&domain.SslCertificate{}).Where("id = ?", existing.ID).Updates(map[string]interface{}{
		"issuer":      row.Issuer,
		"self_signed": row.SelfSigned,
		"not_before":  row.NotBefore,
		"not_after":   row.NotAfter,
		"updated_at":  time.Now(),
	}).Error; err != nil {
		zap.L().Error("failed to update certificate inventory", zap.Error(err))
	}
}
