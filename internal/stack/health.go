package stack

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/guonaihong/gout"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ServiceHealth is the probe result for one stack service.
type ServiceHealth struct {
	Service   string `json:"service"`
	Ok        bool   `json:"ok"`
	LatencyMs int64  `json:"latency_ms"`
	Message   string `json:"message"`
}

type HealthReport struct {
	CheckedAt time.Time       `json:"checked_at"`
	Services  []ServiceHealth `json:"services"`
}

func (r HealthReport) Healthy() bool {
	if len(r.Services) == 0 {
		return false
	}
	for _, s := range r.Services {
		if !s.Ok {
			return false
		}
	}
	return true
}

func (r HealthReport) Summary() string {
	var bad []string
	for _, s := range r.Services {
		if !s.Ok {
			bad = append(bad, fmt.Sprintf("%s(%s)", s.Service, s.Message))
		}
	}
	if len(bad) == 0 {
		return "all services healthy"
	}
	return "unhealthy: " + strings.Join(bad, ", ")
}

// Health probes every stack service concurrently. Probes are smoke checks
// against the third-party services' own interfaces: the dashboard health
// endpoint, a database TCP accept, a cache PING and a proxy TCP accept.
func (m *Manager) Health(ctx context.Context) HealthReport {
	report := HealthReport{CheckedAt: time.Now()}
	results := make([]ServiceHealth, 4)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		results[0] = m.probeMetabase(gctx)
		return nil
	})
	g.Go(func() error {
		results[1] = m.probePostgres(gctx)
		return nil
	})
	g.Go(func() error {
		results[2] = m.probeRedis(gctx)
		return nil
	})
	g.Go(func() error {
		results[3] = probeTCP("nginx", m.cfg.Stack.ProxyAddr)
		return nil
	})
	_ = g.Wait()

	report.Services = results
	return report
}

func (m *Manager) probeMetabase(ctx context.Context) ServiceHealth {
	h := ServiceHealth{Service: "metabase"}
	start := time.Now()

	var body struct {
		Status string `json:"status"`
	}
	var code int
	err := gout.GET(m.cfg.Stack.MetabaseURL+"/api/health").
		WithContext(ctx).
		SetTimeout(5 * time.Second).
		BindJSON(&body).
		Code(&code).
		Do()
	h.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		h.Message = err.Error()
		return h
	}
	if code != 200 || body.Status != "ok" {
		h.Message = fmt.Sprintf("status=%d body=%s", code, body.Status)
		return h
	}
	h.Ok = true
	return h
}

// probePostgres opens an authenticated connection and pings it, a stronger
// readiness signal than a TCP accept.
func (m *Manager) probePostgres(ctx context.Context) ServiceHealth {
	h := ServiceHealth{Service: "postgres"}
	start := time.Now()

	db, err := gorm.Open(postgres.Open(m.cfg.Database.DSN()), &gorm.Config{
		Logger: logger.Discard,
	})
	if err == nil {
		var sqlDB *sql.DB
		sqlDB, err = db.DB()
		if err == nil {
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err = sqlDB.PingContext(pctx)
			cancel()
			_ = sqlDB.Close()
		}
	}

	h.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		h.Message = err.Error()
		return h
	}
	h.Ok = true
	return h
}

func (m *Manager) probeRedis(ctx context.Context) ServiceHealth {
	h := ServiceHealth{Service: "redis"}
	start := time.Now()

	rdb := redis.NewClient(&redis.Options{
		Addr:        m.cfg.Redis.Addr,
		Password:    m.cfg.Redis.Passwd,
		DB:          m.cfg.Redis.DB,
		DialTimeout: 3 * time.Second,
	})
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		h.LatencyMs = time.Since(start).Milliseconds()
		h.Message = err.Error()
		return h
	}
	h.LatencyMs = time.Since(start).Milliseconds()
	h.Ok = true
	return h
}

func probeTCP(name, addr string) ServiceHealth {
	h := ServiceHealth{Service: name}
	start := time.Now()
	conn, err := net.DialTimeout("tcp", addr, 3*time.Second)
	h.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		h.Message = err.Error()
		return h
	}
	_ = conn.Close()
	h.Ok = true
	return h
}
