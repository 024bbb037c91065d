package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats represents database connection pool statistics.
type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireCount    int64  `json:"acquire_count"`
	AcquireDuration string `json:"acquire_duration"`
}

func GetPoolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
	}
}

// Check is one named dependency check used by the readiness endpoint.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// PoolCheck pings Postgres.
func PoolCheck(pool *pgxpool.Pool) Check {
	return Check{Name: "postgres", Ping: pool.Ping}
}

type checkResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ReadinessHandler runs every check with a shared 5s budget and answers 503
// when any of them fails.
func ReadinessHandler(checks ...Check) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		healthy := true
		results := make(map[string]checkResult, len(checks))
		for _, chk := range checks {
			if err := chk.Ping(ctx); err != nil {
				healthy = false
				results[chk.Name] = checkResult{Status: "unhealthy", Error: err.Error()}
				continue
			}
			results[chk.Name] = checkResult{Status: "healthy"}
		}

		status, code := "healthy", http.StatusOK
		if !healthy {
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
		return c.JSON(code, map[string]interface{}{
			"status": status,
			"checks": results,
		})
	}
}

// PoolStatsHandler reports pool statistics.
func PoolStatsHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, GetPoolStats(pool))
	}
}
