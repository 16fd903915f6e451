package domain

import "time"

// Operational state of the controller itself.

// OpsScheduler is a DB-backed scheduled task for managing recurring jobs.
type OpsScheduler struct {
	ID          int64     `json:"id,string" form:"id"`
	Name        string    `json:"name" form:"name"`
	TaskType    string    `gorm:"index" json:"task_type" form:"task_type"` // health_check, cert_renew, daily_import, db_backup, retention_sweep
	Interval    int       `json:"interval" form:"interval"`                // seconds
	Status      string    `json:"status" form:"status"`
	LastRunAt   time.Time `json:"last_run_at"`
	NextRunAt   time.Time `json:"next_run_at"`
	LastResult  string    `json:"last_result" form:"last_result"`
	LastMessage string    `json:"last_message" form:"last_message"`
	Config      string    `json:"config" form:"config"` // JSON config for task-specific settings
	Remark      string    `json:"remark" form:"remark"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName Specify table name
func (OpsScheduler) TableName() string {
	return "ops_scheduler"
}

// OpsBackup records one database backup archive.
type OpsBackup struct {
	ID        int64     `json:"id,string" form:"id"`
	Filename  string    `json:"filename" form:"filename"`
	Path      string    `json:"path" form:"path"`
	SizeBytes int64     `json:"size_bytes" form:"size_bytes"`
	Kind      string    `json:"kind" form:"kind"` // pg_dump / logical
	Result    string    `json:"result" form:"result"`
	Message   string    `json:"message" form:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName Specify table name
func (OpsBackup) TableName() string {
	return "ops_backup"
}

// EtlRun records one execution of the SharePoint import pipeline.
type EtlRun struct {
	ID         int64     `json:"id,string" form:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	FilesTotal int       `json:"files_total" form:"files_total"`
	FilesOk    int       `json:"files_ok" form:"files_ok"`
	RowsLoaded int       `json:"rows_loaded" form:"rows_loaded"`
	Result     string    `json:"result" form:"result"`
	Message    string    `json:"message" form:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName Specify table name
func (EtlRun) TableName() string {
	return "ops_etl_run"
}

// SslCertificate is the certificate inventory for the proxy domain.
type SslCertificate struct {
	ID         int64     `json:"id,string" form:"id"`
	Domain     string    `gorm:"index" json:"domain" form:"domain"`
	Issuer     string    `json:"issuer" form:"issuer"`
	SelfSigned bool      `json:"self_signed" form:"self_signed"`
	NotBefore  time.Time `json:"not_before"`
	NotAfter   time.Time `json:"not_after"`
	Remark     string    `json:"remark" form:"remark"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName Specify table name
func (SslCertificate) TableName() string {
	return "ops_ssl_certificate"
}
