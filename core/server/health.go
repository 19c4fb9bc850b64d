package server

import (
	"net/http"
	"time"

	"github.com/gridkit-dev/pb-gridkit/core/monitoring"
	"github.com/pocketbase/pocketbase/core"
)

// HealthResponse represents health check response data
type HealthResponse struct {
	Status        string                  `json:"status"`
	ServerStats   map[string]any          `json:"server_stats"`
	SystemStats   *monitoring.SystemStats `json:"system_stats"`
	LastCheckTime time.Time               `json:"last_check_time"`
}

// RegisterHealthRoute mounts the JSON health endpoint. System stats degrade
// to partial data on probe failures, so the route answers even on hosts
// where some gopsutil probes are unavailable.
func (s *Server) RegisterHealthRoute(e *core.ServeEvent) {
	e.Router.GET(s.options.healthPath, func(c *core.RequestEvent) error {
		sysStats, err := monitoring.CollectSystemStats(c.Request.Context(), s.stats.StartTime)
		if err != nil {
			s.app.Logger().Warn("partial system stats collection",
				"path", s.options.healthPath,
				"error", err,
			)
		}

		status := "healthy"
		if sysStats == nil {
			status = "degraded"
		}

		return c.JSON(http.StatusOK, HealthResponse{
			Status:        status,
			ServerStats:   s.statsSnapshot(),
			SystemStats:   sysStats,
			LastCheckTime: time.Now().UTC(),
		})
	})
}

// statsSnapshot copies the atomic counters into a serializable map.
func (s *Server) statsSnapshot() map[string]any {
	return map[string]any{
		"start_time":             s.stats.StartTime,
		"uptime_secs":            int64(time.Since(s.stats.StartTime).Seconds()),
		"total_requests":         s.stats.TotalRequests.Load(),
		"active_connections":     s.stats.ActiveConnections.Load(),
		"total_errors":           s.stats.TotalErrors.Load(),
		"avg_request_time_nanos": s.stats.AverageRequestTime.Load(),
		"last_request_time":      s.stats.LastRequestTime.Load(),
		"request_rate":           s.requests.GetRequestRate(),
		"dialect_counts":         s.requests.GetDialectCounts(),
	}
}
