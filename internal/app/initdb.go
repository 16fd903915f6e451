package app

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bwops/metastack/internal/domain"
	"github.com/bwops/metastack/pkg/common"
)

func (a *Application) checkSuper() {
	const superUsername = "admin"
	const defaultPassword = "metastack"

	hashedPassword := common.Sha256HashWithSalt(defaultPassword, common.GetSecretSalt())

	var operator domain.SysOpr
	err := a.gormDB.Where("username = ?", superUsername).First(&operator).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.SysOpr{
			ID:        common.UUIDint64(),
			Realname:  "administrator",
			Mobile:    "0000",
			Email:     "N/A",
			Username:  superUsername,
			Password:  hashedPassword,
			Level:     "super",
			Status:    common.ENABLED,
			Remark:    "super",
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default super admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default super admin account", zap.String("username", superUsername))
		}
		return
	case err != nil:
		zap.L().Error("failed to query super admin", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(operator.Password) == ""
	resetLevel := !strings.EqualFold(operator.Level, "super")
	resetStatus := !strings.EqualFold(operator.Status, common.ENABLED)

	if !resetPassword && !resetLevel && !resetStatus {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetPassword {
		updates["password"] = hashedPassword
	}
	if resetLevel {
		updates["level"] = "super"
	}
	if resetStatus {
		updates["status"] = common.ENABLED
	}

	if err := a.gormDB.Model(&domain.SysOpr{}).Where("id = ?", operator.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair super admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default super admin account",
		zap.String("username", superUsername),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("levelReset", resetLevel),
		zap.Bool("statusEnabled", resetStatus))
}

// settingsSchema declares the sys_config defaults.
var settingsSchema = []struct {
	Key         string
	Default     string
	Description string
}{
	{"system.admin_email", "", "Address that receives operational alerts"},
	{"scheduler.max_workers", "25", "Concurrency cap for fan-out tasks"},
	{"smtp.host", "", "SMTP relay host"},
	{"smtp.port", "587", "SMTP relay port"},
	{"smtp.user", "", "SMTP relay username"},
	{"smtp.passwd", "", "SMTP relay password"},
	{"smtp.from", "metastack@localhost", "Alert sender address"},
	{"smtp.to", "", "Alert recipient address"},
	{"etl.notify_on_failure", "true", "Send mail when the daily import fails"},
	{"backup.notify_on_failure", "true", "Send mail when a backup fails"},
}

func (a *Application) checkSettings() {
	for sortid, schema := range settingsSchema {
		parts := strings.SplitN(schema.Key, ".", 2)
		if len(parts) != 2 {
			zap.L().Warn("invalid config key format", zap.String("key", schema.Key))
			continue
		}
		category := parts[0]
		name := parts[1]

		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", category, name).
			Count(&count)

		if count == 0 {
			a.gormDB.Create(&domain.SysConfig{
				Sort:   sortid,
				Type:   category,
				Name:   name,
				Value:  schema.Default,
				Remark: schema.Description,
			})
			zap.L().Info("initialized config",
				zap.String("key", schema.Key),
				zap.String("default", schema.Default))
		}
	}
}

// checkSchedulers initializes default scheduled tasks
func (a *Application) checkSchedulers() {
	defaultSchedulers := []domain.OpsScheduler{
		{
			Name:     "Stack Health Check",
			TaskType: TaskHealthCheck,
			Interval: 300, // 5 minutes
			Status:   common.ENABLED,
			Remark:   "Periodically probes every stack service",
		},
		{
			Name:     "Certificate Renewal",
			TaskType: TaskCertRenew,
			Interval: 43200, // 12 hours
			Status:   common.ENABLED,
			Remark:   "Renews the proxy certificate when it nears expiry",
		},
		{
			Name:     "Daily BI Import",
			TaskType: TaskDailyImport,
			Interval: 86400, // daily
			Status:   common.ENABLED,
			Remark:   "Imports the configured workbooks into the warehouse",
		},
		{
			Name:     "Database Backup",
			TaskType: TaskDbBackup,
			Interval: 86400, // daily
			Status:   common.ENABLED,
			Remark:   "Dumps the warehouse database to the backup directory",
		},
		{
			Name:     "Backup Retention Sweep",
			TaskType: TaskRetentionSweep,
			Interval: 86400, // daily
			Status:   common.ENABLED,
			Remark:   "Removes backups beyond the retention count",
		},
	}

	for _, sched := range defaultSchedulers {
		var count int64
		a.gormDB.Model(&domain.OpsScheduler{}).
			Where("task_type = ?", sched.TaskType).
			Count(&count)

		if count == 0 {
			sched.ID = common.UUIDint64()
			sched.NextRunAt = time.Now().Add(time.Duration(sched.Interval) * time.Second)
			if err := a.gormDB.Create(&sched).Error; err != nil {
				zap.L().Error("failed to create default scheduler",
					zap.String("name", sched.Name),
					zap.Error(err))
			} else {
				zap.L().Info("initialized default scheduler",
					zap.String("name", sched.Name),
					zap.String("task_type", sched.TaskType))
			}
		}
	}
}
