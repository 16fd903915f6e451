// Package backup creates and restores database backups for the stack. The
// heavy lifting is delegated to the bundled client tools (pg_dump/psql); a
// logical SQL dump of the seed schema is also available for environments
// without the client tools installed.
package backup

import (
	"compress/gzip"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bwops/metastack/config"
	"github.com/bwops/metastack/internal/domain"
	"github.com/bwops/metastack/pkg/common"
)

type Service struct {
	cfg *config.AppConfig
	db  *gorm.DB
}

func NewService(cfg *config.AppConfig, db *gorm.DB) *Service {
	return &Service{cfg: cfg, db: db}
}

func (s *Service) pgEnv() []string {
	return append(os.Environ(), "PGPASSWORD="+s.cfg.Database.Passwd)
}

// Create runs pg_dump and stores a gzip-compressed dump under the backup
// directory, recording the outcome.
func (s *Service) Create(ctx context.Context) (*domain.OpsBackup, error) {
	if err := os.MkdirAll(s.cfg.Backup.Dir, 0o755); err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("%s_%s.sql.gz", s.cfg.Database.Name, common.FmtDate(time.Now()))
	target := filepath.Join(s.cfg.Backup.Dir, filename)

	rec := &domain.OpsBackup{
		ID:        common.UUIDint64(),
		Filename:  filename,
		Path:      target,
		Kind:      "pg_dump",
		CreatedAt: time.Now(),
	}

	err := s.runPgDump(ctx, target)
	if err != nil {
		rec.Result = "failed"
		rec.Message = err.Error()
		s.record(rec)
		return rec, err
	}

	if st, err := os.Stat(target); err == nil {
		rec.SizeBytes = st.Size()
	}
	rec.Result = "success"
	s.record(rec)
	zap.L().Info("backup created", zap.String("path", target), zap.Int64("bytes", rec.SizeBytes))
	return rec, nil
}

func (s *Service) runPgDump(ctx context.Context, target string) error {
	if _, err := exec.LookPath("pg_dump"); err != nil {
		return errors.New("pg_dump not found in PATH")
	}

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()
	gz := gzip.NewWriter(out)
	defer gz.Close()

	cmd := exec.CommandContext(ctx, "pg_dump",
		"-h", s.cfg.Database.Host,
		"-p", fmt.Sprint(s.cfg.Database.Port),
		"-U", s.cfg.Database.User,
		"-d", s.cfg.Database.Name,
		"--no-owner")
	cmd.Env = s.pgEnv()
	cmd.Stdout = gz
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(target)
		return errors.Wrapf(err, "pg_dump: %s", strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Restore feeds a gzip-compressed dump back through psql.
func (s *Service) Restore(ctx context.Context, path string) error {
	if _, err := exec.LookPath("psql"); err != nil {
		return errors.New("psql not found in PATH")
	}
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()
	gz, err := gzip.NewReader(in)
	if err != nil {
		return errors.Wrap(err, "open dump")
	}
	defer gz.Close()

	cmd := exec.CommandContext(ctx, "psql",
		"-h", s.cfg.Database.Host,
		"-p", fmt.Sprint(s.cfg.Database.Port),
		"-U", s.cfg.Database.User,
		"-d", s.cfg.Database.Name,
		"-v", "ON_ERROR_STOP=1")
	cmd.Env = s.pgEnv()
	cmd.Stdin = gz
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "psql restore: %s", strings.TrimSpace(stderr.String()))
	}
	zap.L().Info("backup restored", zap.String("path", path))
	return nil
}

// List returns recorded backups, newest first.
func (s *Service) List() ([]domain.OpsBackup, error) {
	var rows []domain.OpsBackup
	err := s.db.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// Sweep removes backup files beyond the retention count and their records.
func (s *Service) Sweep() error {
	keep := s.cfg.Backup.Keep
	if keep <= 0 {
		keep = 14
	}
	var rows []domain.OpsBackup
	if err := s.db.Where("result = ?", "success").Order("created_at DESC").Find(&rows).Error; err != nil {
		return err
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	if len(rows) <= keep {
		return nil
	}
	for _, old := range rows[keep:] {
		if err := os.Remove(old.Path); err != nil && !os.IsNotExist(err) {
			zap.L().Warn("failed to remove old backup", zap.String("path", old.Path), zap.Error(err))
			continue
		}
		if err := s.db.Delete(&domain.OpsBackup{}, old.ID).Error; err != nil {
			zap.L().Warn("failed to delete backup record", zap.Int64("id", old.ID), zap.Error(err))
		}
	}
	zap.L().Info("backup retention sweep done", zap.Int("removed", len(rows)-keep))
	return nil
}

func (s *Service) record(rec *domain.OpsBackup) {
	if s.db == nil {
		return
	}
	if err := s.db.Create(rec).Error; err != nil {
		zap.L().Error("failed to record backup", zap.Error(err))
	}
}
