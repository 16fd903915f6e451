package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bwops/metastack/internal/backup"
	"github.com/bwops/metastack/internal/domain"
	"github.com/bwops/metastack/internal/etl"
	"github.com/bwops/metastack/internal/sslcert"
	"github.com/bwops/metastack/internal/stack"
	"github.com/bwops/metastack/pkg/metrics"
)

// Scheduler task types.
const (
	TaskHealthCheck    = "health_check"
	TaskCertRenew      = "cert_renew"
	TaskDailyImport    = "daily_import"
	TaskDbBackup       = "db_backup"
	TaskRetentionSweep = "retention_sweep"
)

// StartSchedulerService runs enabled schedulers periodically
func (a *Application) StartSchedulerService(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.runSchedulers(ctx)
			}
		}
	}()
}

const defaultMaxWorkers = 25

// clampWorkers bounds the scheduler fan-out. The cap comes from the
// scheduler.max_workers setting; out-of-range values fall back.
func clampWorkers(v int64) int {
	if v <= 0 || v > 100 {
		return defaultMaxWorkers
	}
	return int(v)
}

// runSchedulers executes enabled schedulers that are due, fanning out over
// a worker semaphore capped by scheduler.max_workers.
func (a *Application) runSchedulers(ctx context.Context) {
	var schedulers []domain.OpsScheduler
	a.gormDB.Where("status = ?", "enabled").Find(&schedulers)

	sem := make(chan struct{}, clampWorkers(a.settings.GetInt64("scheduler", "max_workers")))
	var wg sync.WaitGroup
	now := time.Now()
	for _, sched := range schedulers {
		if sched.NextRunAt.IsZero() || now.After(sched.NextRunAt) || now.Equal(sched.NextRunAt) {
			sched := sched
			// advance next_run_at before dispatch so a slow task is not
			// picked up again by the next tick
			a.gormDB.Model(&domain.OpsScheduler{}).Where("id = ?", sched.ID).
				Update("next_run_at", now.Add(time.Duration(sched.Interval)*time.Second))
			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				a.dispatchScheduler(ctx, &sched)
			}()
		}
	}
	wg.Wait()
}

func (a *Application) dispatchScheduler(ctx context.Context, sched *domain.OpsScheduler) {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error("scheduler panic:", err)
		}
	}()

	zap.L().Info("scheduler run",
		zap.Int64("scheduler_id", sched.ID),
		zap.String("task_type", sched.TaskType))

	var err error
	message := ""
	switch sched.TaskType {
	case TaskHealthCheck:
		message, err = a.runHealthCheck(ctx)
	case TaskCertRenew:
		message, err = a.runCertRenew(ctx)
	case TaskDailyImport:
		message, err = a.runDailyImport(ctx)
	case TaskDbBackup:
		message, err = a.runDbBackup(ctx)
	case TaskRetentionSweep:
		message, err = a.runRetentionSweep()
	default:
		zap.L().Warn("unsupported scheduler task type", zap.String("task_type", sched.TaskType))
		return
	}

	result := "success"
	if err != nil {
		result = "failed"
		message = err.Error()
		zap.L().Error("scheduler task failed",
			zap.String("task_type", sched.TaskType),
			zap.Error(err))
	}

	a.gormDB.Model(&domain.OpsScheduler{}).Where("id = ?", sched.ID).Updates(map[string]interface{}{
		"last_run_at":  time.Now(),
		"last_result":  result,
		"last_message": message,
	})
}

// RunSchedulerNow triggers a scheduler execution immediately by ID
func (a *Application) RunSchedulerNow(ctx context.Context, id int64) error {
	var sched domain.OpsScheduler
	if err := a.gormDB.First(&sched, id).Error; err != nil {
		return err
	}
	a.dispatchScheduler(ctx, &sched)
	a.gormDB.Model(&domain.OpsScheduler{}).Where("id = ?", sched.ID).
		Update("next_run_at", time.Now().Add(time.Duration(sched.Interval)*time.Second))
	return nil
}

func (a *Application) runHealthCheck(ctx context.Context) (string, error) {
	sm := stack.NewManager(a.appConfig)
	report := sm.Health(ctx)
	up := 0
	for _, s := range report.Services {
		v := int64(0)
		if s.Ok {
			v = 1
			up++
		}
		metrics.SetGauge("stack_up_"+s.Service, v)
		metrics.SetGauge("stack_latency_"+s.Service, s.LatencyMs)
	}
	if !report.Healthy() {
		a.bus.Publish(EvtStackDown, report.Summary())
	}
	return report.Summary(), nil
}

func (a *Application) runCertRenew(ctx context.Context) (string, error) {
	cm := sslcert.NewManager(a.appConfig, a.gormDB)
	if !cm.NeedsRenewal() {
		return "certificate not due for renewal", nil
	}
	a.bus.Publish(EvtCertExpiring, a.appConfig.Stack.Domain)
	if err := cm.Renew(ctx); err != nil {
		return "", err
	}
	if err := cm.ReloadProxy(ctx, stack.NewManager(a.appConfig)); err != nil {
		return "", err
	}
	return "certificate renewed", nil
}

func (a *Application) runDailyImport(ctx context.Context) (string, error) {
	run, err := etl.NewRunner(a.appConfig, a.gormDB).Run(ctx)
	if err != nil {
		if a.settings.GetBool("etl", "notify_on_failure") {
			a.bus.Publish(EvtEtlFailed, err.Error())
		}
		return "", err
	}
	metrics.SetGauge("etl_rows_loaded", int64(run.RowsLoaded))
	return run.Message, nil
}

func (a *Application) runDbBackup(ctx context.Context) (string, error) {
	rec, err := backup.NewService(a.appConfig, a.gormDB).Create(ctx)
	if err != nil {
		if a.settings.GetBool("backup", "notify_on_failure") {
			a.bus.Publish(EvtBackupFailed, err.Error())
		}
		return "", err
	}
	metrics.SetGauge("backup_size_bytes", rec.SizeBytes)
	return "backup " + rec.Filename, nil
}

func (a *Application) runRetentionSweep() (string, error) {
	if err := backup.NewService(a.appConfig, a.gormDB).Sweep(); err != nil {
		return "", err
	}
	return "retention sweep completed", nil
}
