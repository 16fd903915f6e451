package app

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// initNotify wires mail alerts onto the event bus. Delivery settings come
// from sys_config so operators can change the relay without a restart.
func (a *Application) initNotify() {
	subscribe := func(topic, subject string) {
		err := a.bus.Subscribe(topic, func(detail string) {
			a.sendAlert(subject, detail)
		})
		if err != nil {
			zap.L().Error("failed to subscribe alert topic", zap.String("topic", topic), zap.Error(err))
		}
	}
	subscribe(EvtBackupFailed, "Database backup failed")
	subscribe(EvtEtlFailed, "Daily BI import failed")
	subscribe(EvtCertExpiring, "TLS certificate nearing expiry")
	subscribe(EvtStackDown, "Stack health check failed")
}

func (a *Application) sendAlert(subject, detail string) {
	smtp, err := a.settings.Smtp()
	if err != nil {
		zap.L().Error("invalid smtp settings", zap.Error(err))
		return
	}
	if smtp.Host == "" || smtp.To == "" {
		zap.L().Debug("smtp relay not configured, alert dropped", zap.String("subject", subject))
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", smtp.From)
	m.SetHeader("To", smtp.To)
	m.SetHeader("Subject", fmt.Sprintf("[metastack] %s", subject))
	m.SetBody("text/plain", detail)

	d := gomail.NewDialer(smtp.Host, smtp.Port, smtp.User, smtp.Passwd)
	if err := d.DialAndSend(m); err != nil {
		zap.L().Error("failed to send alert mail", zap.String("subject", subject), zap.Error(err))
		return
	}
	zap.L().Info("alert mail sent", zap.String("subject", subject), zap.String("to", smtp.To))
}
