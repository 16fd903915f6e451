package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// AppConfig is the root configuration for the metastack controller.
type AppConfig struct {
	System   SysConfig    `yaml:"system" json:"system"`
	Web      WebConfig    `yaml:"web" json:"web"`
	Database DBConfig     `yaml:"database" json:"database"`
	Redis    RedisConfig  `yaml:"redis" json:"redis"`
	Stack    StackConfig  `yaml:"stack" json:"stack"`
	Ssl      SslConfig    `yaml:"ssl" json:"ssl"`
	Etl      EtlConfig    `yaml:"etl" json:"etl"`
	Deploy   DeployConfig `yaml:"deploy" json:"deploy"`
	Backup   BackupConfig `yaml:"backup" json:"backup"`
	Logger   LogConfig    `yaml:"logger" json:"logger"`
}

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host   string `yaml:"host" json:"host"`
	Port   int    `yaml:"port" json:"port"`
	Secret string `yaml:"secret" json:"secret"`
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type RedisConfig struct {
	Addr   string `yaml:"addr" json:"addr"`
	Passwd string `yaml:"passwd" json:"passwd"`
	DB     int    `yaml:"db" json:"db"`
}

// StackConfig describes the managed docker compose stack.
type StackConfig struct {
	ComposeFile  string `yaml:"compose_file" json:"compose_file"`
	ProjectName  string `yaml:"project_name" json:"project_name"`
	EnvFile      string `yaml:"env_file" json:"env_file"`
	Domain       string `yaml:"domain" json:"domain"`
	MetabaseURL  string `yaml:"metabase_url" json:"metabase_url"`
	ProxyAddr    string `yaml:"proxy_addr" json:"proxy_addr"`
	ReadyTimeout int    `yaml:"ready_timeout" json:"ready_timeout"`
	PollInterval int    `yaml:"poll_interval" json:"poll_interval"`
}

type SslConfig struct {
	Email          string `yaml:"email" json:"email"`
	Staging        bool   `yaml:"staging" json:"staging"`
	WebRoot        string `yaml:"webroot" json:"webroot"`
	CertDir        string `yaml:"cert_dir" json:"cert_dir"`
	SelfSignedDays int    `yaml:"self_signed_days" json:"self_signed_days"`
	RenewBefore    int    `yaml:"renew_before" json:"renew_before"`
}

// EtlFile maps a SharePoint document to a destination table.
type EtlFile struct {
	Filename string `yaml:"filename" json:"filename"`
	Path     string `yaml:"path" json:"path"`
	Table    string `yaml:"table" json:"table"`
}

type EtlConfig struct {
	TenantID     string    `yaml:"tenant_id" json:"tenant_id"`
	ClientID     string    `yaml:"client_id" json:"client_id"`
	ClientSecret string    `yaml:"client_secret" json:"client_secret"`
	SiteID       string    `yaml:"site_id" json:"site_id"`
	DriveName    string    `yaml:"drive_name" json:"drive_name"`
	Files        []EtlFile `yaml:"files" json:"files"`
}

type DeployConfig struct {
	Host       string   `yaml:"host" json:"host"`
	Port       int      `yaml:"port" json:"port"`
	User       string   `yaml:"user" json:"user"`
	PrivateKey string   `yaml:"private_key" json:"private_key"`
	RemoteDir  string   `yaml:"remote_dir" json:"remote_dir"`
	Bundle     []string `yaml:"bundle" json:"bundle"`
	Service    string   `yaml:"service" json:"service"`
}

type BackupConfig struct {
	Dir  string `yaml:"dir" json:"dir"`
	Keep int    `yaml:"keep" json:"keep"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		c.Host, c.Port, c.User, c.Passwd, c.Name)
}

// DefaultAppConfig mirrors the shipped docker compose stack defaults.
var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "metastack",
		Location: "Asia/Shanghai",
		Workdir:  "/var/metastack",
	},
	Web: WebConfig{
		Host:   "0.0.0.0",
		Port:   1890,
		Secret: "9b6de5cc-metastack-1890-secret",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "bw_sample_data",
		User:     "postgres",
		Passwd:   "postgres",
		MaxConn:  100,
		IdleConn: 10,
	},
	Redis: RedisConfig{
		Addr: "127.0.0.1:6379",
	},
	Stack: StackConfig{
		ComposeFile:  "docker-compose.yml",
		ProjectName:  "metastack",
		EnvFile:      ".env",
		MetabaseURL:  "http://127.0.0.1:3000",
		ProxyAddr:    "127.0.0.1:443",
		ReadyTimeout: 300,
		PollInterval: 5,
	},
	Ssl: SslConfig{
		WebRoot:        "/var/www/certbot",
		CertDir:        "/etc/letsencrypt/live",
		SelfSignedDays: 365,
		RenewBefore:    30,
	},
	Etl: EtlConfig{
		DriveName: "Documents",
		Files: []EtlFile{
			{Filename: "BI Dimensions.xlsx", Path: "General/BI Import/BI Dimensions.xlsx", Table: "bi_dimensions"},
			{Filename: "BI At Scale Import.xlsx", Path: "General/BI Import/BI At Scale Import.xlsx", Table: "bi_at_scale_import"},
		},
	},
	Deploy: DeployConfig{
		Port:      22,
		User:      "root",
		RemoteDir: "/opt/metastack",
		Service:   "metabase",
	},
	Backup: BackupConfig{
		Dir:  "/var/metastack/backup",
		Keep: 14,
	},
	Logger: LogConfig{
		Mode:     "development",
		Filename: "/var/metastack/metastack.log",
	},
}

func setEnvStr(name string, val *string) {
	if v := os.Getenv(name); v != "" {
		*val = v
	}
}

func setEnvInt(name string, val *int) {
	if v := os.Getenv(name); v != "" {
		*val = cast.ToInt(v)
	}
}

func setEnvBool(name string, val *bool) {
	if v := os.Getenv(name); v != "" {
		*val = cast.ToBool(v)
	}
}

// LoadConfig reads the YAML config file and applies METASTACK_* environment
// overrides. A missing path falls back to defaults so the CLI keeps working
// against a stock local stack.
func LoadConfig(cfile string) *AppConfig {
	// compose interop: pick up the stack .env when present
	_ = godotenv.Load()

	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "parse config %s: %v\n", cfile, err)
			}
		}
	}

	setEnvStr("METASTACK_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvBool("METASTACK_SYSTEM_DEBUG", &cfg.System.Debug)
	setEnvStr("METASTACK_WEB_HOST", &cfg.Web.Host)
	setEnvInt("METASTACK_WEB_PORT", &cfg.Web.Port)
	setEnvStr("METASTACK_WEB_SECRET", &cfg.Web.Secret)
	setEnvStr("METASTACK_DB_HOST", &cfg.Database.Host)
	setEnvInt("METASTACK_DB_PORT", &cfg.Database.Port)
	setEnvStr("METASTACK_DB_NAME", &cfg.Database.Name)
	setEnvStr("METASTACK_DB_USER", &cfg.Database.User)
	setEnvStr("METASTACK_DB_PWD", &cfg.Database.Passwd)
	setEnvStr("METASTACK_REDIS_ADDR", &cfg.Redis.Addr)
	setEnvStr("METASTACK_REDIS_PWD", &cfg.Redis.Passwd)
	setEnvStr("METASTACK_STACK_DOMAIN", &cfg.Stack.Domain)
	setEnvBool("METASTACK_SSL_STAGING", &cfg.Ssl.Staging)
	setEnvStr("METASTACK_SSL_EMAIL", &cfg.Ssl.Email)

	// compose-era variable names still honored for the ETL credentials
	setEnvStr("AZURE_TENANT_ID", &cfg.Etl.TenantID)
	setEnvStr("AZURE_CLIENT_ID", &cfg.Etl.ClientID)
	setEnvStr("AZURE_CLIENT_SECRET", &cfg.Etl.ClientSecret)
	setEnvStr("POSTGRES_PASSWORD", &cfg.Database.Passwd)

	return cfg
}

// WriteDefault writes a starter config file, creating parent directories.
func WriteDefault(cfile string) error {
	if err := os.MkdirAll(filepath.Dir(cfile), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(DefaultAppConfig)
	if err != nil {
		return err
	}
	return os.WriteFile(cfile, data, 0o644)
}

// Validate reports the first fatal misconfiguration.
func (c *AppConfig) Validate() error {
	if c.Web.Secret == "" {
		return fmt.Errorf("web.secret is required")
	}
	if c.Database.Name == "" || c.Database.Host == "" {
		return fmt.Errorf("database.host and database.name are required")
	}
	if c.Stack.PollInterval <= 0 {
		return fmt.Errorf("stack.poll_interval must be positive")
	}
	for _, f := range c.Etl.Files {
		if f.Table == "" || strings.TrimSpace(f.Path) == "" {
			return fmt.Errorf("etl file %q needs both path and table", f.Filename)
		}
	}
	return nil
}
