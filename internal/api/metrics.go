package api

import (
	"net/http"
	"runtime"
	"time"
)

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string             `json:"timestamp"`
	Version       string             `json:"version"`
	UptimeSeconds int64              `json:"uptime_seconds"`
	Runtime       RuntimeMetrics     `json:"runtime"`
	Sparks        SparkMetrics       `json:"sparks"`
	Diagnostics   DiagnosticsMetrics `json:"diagnostics"`
	MQTT          ConnectionMetrics  `json:"mqtt"`
	InfluxDB      ConnectionMetrics  `json:"influxdb"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// SparkMetrics describes the configured sparks and client state.
type SparkMetrics struct {
	Configured      int  `json:"configured"`
	TokenConfigured bool `json:"token_configured"`
}

// DiagnosticsMetrics counts client failures since start (or the last reset).
type DiagnosticsMetrics struct {
	Retained int    `json:"retained"`
	Total    uint64 `json:"total"`
}

// ConnectionMetrics reports an optional integration's connection state.
type ConnectionMetrics struct {
	Enabled   bool `json:"enabled"`
	Connected bool `json:"connected"`
}

// handleMetrics returns system metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		Sparks: SparkMetrics{
			Configured:      s.sparks.Registry().Count(),
			TokenConfigured: s.client.Configured(),
		},
		MQTT:     connectionMetrics(s.mqtt),
		InfluxDB: connectionMetrics(s.influx),
	}

	if s.collector != nil {
		metrics.Diagnostics = DiagnosticsMetrics{
			Retained: len(s.collector.Reports()),
			Total:    s.collector.Total(),
		}
	}

	writeJSON(w, http.StatusOK, metrics)
}

func connectionMetrics(c ConnectionReporter) ConnectionMetrics {
	if c == nil {
		return ConnectionMetrics{}
	}
	return ConnectionMetrics{Enabled: true, Connected: c.IsConnected()}
}
