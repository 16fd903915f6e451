package etl

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bwops/metastack/config"
	"github.com/bwops/metastack/internal/domain"
	"github.com/bwops/metastack/pkg/common"
)

// Runner executes one full import pass over the configured workbooks and
// records the outcome as an EtlRun row.
type Runner struct {
	cfg *config.AppConfig
	db  *gorm.DB
}

func NewRunner(cfg *config.AppConfig, db *gorm.DB) *Runner {
	return &Runner{cfg: cfg, db: db}
}

// Run processes every configured file. Per-file failures are tallied, not
// fatal; the run fails only when no file imports cleanly.
func (r *Runner) Run(ctx context.Context) (*domain.EtlRun, error) {
	run := &domain.EtlRun{
		ID:         common.UUIDint64(),
		StartedAt:  time.Now(),
		FilesTotal: len(r.cfg.Etl.Files),
		CreatedAt:  time.Now(),
	}

	client := NewGraphClient(r.cfg.Etl)
	importer := NewImporter(r.db)

	err := func() error {
		if err := client.Authenticate(ctx); err != nil {
			return err
		}
		return client.ResolveDrive(ctx)
	}()
	if err != nil {
		run.FinishedAt = time.Now()
		run.Result = "failed"
		run.Message = err.Error()
		r.save(run)
		return run, err
	}

	var firstErr error
	for _, f := range r.cfg.Etl.Files {
		localPath, err := client.Download(ctx, f.Path)
		if err != nil {
			zap.L().Error("etl download failed", zap.String("file", f.Filename), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		n, err := importer.ImportFile(localPath, f.Table)
		os.Remove(localPath)
		if err != nil {
			zap.L().Error("etl import failed", zap.String("file", f.Filename), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		run.FilesOk++
		run.RowsLoaded += n
		zap.L().Info("etl file imported",
			zap.String("file", f.Filename),
			zap.String("table", f.Table),
			zap.Int("rows", n))
	}

	run.FinishedAt = time.Now()
	switch {
	case run.FilesOk == run.FilesTotal:
		run.Result = "success"
		run.Message = fmt.Sprintf("%d/%d files imported", run.FilesOk, run.FilesTotal)
	case run.FilesOk > 0:
		run.Result = "partial"
		run.Message = fmt.Sprintf("%d/%d files imported: %v", run.FilesOk, run.FilesTotal, firstErr)
	default:
		run.Result = "failed"
		run.Message = fmt.Sprintf("no files imported: %v", firstErr)
	}
	r.save(run)

	if run.FilesOk == 0 && firstErr != nil {
		return run, firstErr
	}
	return run, nil
}

func (r *Runner) save(run *domain.EtlRun) {
	if r.db == nil {
		return
	}
	if err := r.db.Create(run).Error; err != nil {
		zap.L().Error("failed to record etl run", zap.Error(err))
	}
}
