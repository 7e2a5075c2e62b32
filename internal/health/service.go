package health

import (
	"context"
	"runtime"
	"time"

	"github.com/redis/go-redis/v9"
)

// DBPinger is optional for the health check. If nil, the database is
// reported as disconnected.
type DBPinger interface {
	Ping() error
}

// Result is the /health/json shape.
type Result struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64  `json:"uptimeSeconds"`
	Goroutines    int    `json:"goroutines"`
	GoVersion     string `json:"goVersion"`
}

type DepStatus struct {
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}

// Service collects dependency and runtime health.
type Service struct {
	DB        DBPinger
	Rdb       *redis.Client
	StartedAt time.Time
}

func (s *Service) Collect(ctx context.Context) Result {
	deps := map[string]DepStatus{}

	dbStatus := DepStatus{}
	if s.DB != nil {
		if err := s.DB.Ping(); err != nil {
			dbStatus.Error = err.Error()
		} else {
			dbStatus.Connected = true
		}
	}
	deps["database"] = dbStatus

	redisStatus := DepStatus{}
	if s.Rdb != nil {
		if err := s.Rdb.Ping(ctx).Err(); err != nil {
			redisStatus.Error = err.Error()
		} else {
			redisStatus.Connected = true
		}
	}
	deps["redis"] = redisStatus

	status := "ok"
	for _, d := range deps {
		if !d.Connected {
			status = "degraded"
		}
	}

	return Result{
		Status: status,
		Runtime: RuntimeInfo{
			UptimeSeconds: int64(time.Since(s.StartedAt).Seconds()),
			Goroutines:    runtime.NumGoroutine(),
			GoVersion:     runtime.Version(),
		},
		Dependencies: deps,
	}
}
