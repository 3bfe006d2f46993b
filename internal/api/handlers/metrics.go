package handlers

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

type MetricsHandler struct {
	startTime time.Time
	version   string
	mcpURL    string
	runs      *RunCounter
}

func NewMetricsHandler(version, mcpURL string, runs *RunCounter) *MetricsHandler {
	return &MetricsHandler{
		startTime: time.Now(),
		version:   version,
		mcpURL:    mcpURL,
		runs:      runs,
	}
}

// RunCounter counts pipeline runs served by this process
type RunCounter struct {
	active atomic.Int64
	total  atomic.Int64
}

func (r *RunCounter) start() func() {
	if r == nil {
		return func() {}
	}
	r.total.Add(1)
	r.active.Add(1)
	return func() { r.active.Add(-1) }
}

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
)

// formatUptime formats the uptime duration with seconds rounded to 2 decimal places
func formatUptime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % secondsPerMinute
	seconds := d.Seconds() - float64(hours*secondsPerHour) - float64(minutes*secondsPerMinute)

	if hours > 0 {
		return fmt.Sprintf("%dh%dm%.2fs", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm%.2fs", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", seconds)
}

type MetricsResponse struct {
	Status    string                 `json:"status"`
	Uptime    string                 `json:"uptime"`
	Timestamp string                 `json:"timestamp"`
	Version   string                 `json:"version"`
	StartTime string                 `json:"start_time"`
	System    SystemMetrics          `json:"system"`
	Host      HostMetrics            `json:"host"`
	API       map[string]interface{} `json:"api"`
}

type SystemMetrics struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAllocMB   uint64 `json:"mem_alloc_mb"`
	MemTotalMB   uint64 `json:"mem_total_mb"`
	NumGC        uint32 `json:"num_gc"`
}

// HostMetrics is best effort: fields stay zero where the platform has no data
type HostMetrics struct {
	NumCPU        int     `json:"num_cpu"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsedMB  uint64  `json:"memory_used_mb"`
	MemoryTotalMB uint64  `json:"memory_total_mb"`
	Load1         float64 `json:"load_1"`
	Load5         float64 `json:"load_5"`
}

const (
	bytesToMB = 1024 * 1024
)

func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(h.startTime)

	api := map[string]interface{}{
		"mcp": map[string]interface{}{
			"enabled": h.mcpURL != "",
			"url":     h.mcpURL,
		},
	}
	if h.runs != nil {
		api["runs"] = map[string]interface{}{
			"active": h.runs.active.Load(),
			"total":  h.runs.total.Load(),
		}
	}

	metrics := MetricsResponse{
		Status:    "healthy",
		Uptime:    formatUptime(uptime),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		StartTime: h.startTime.UTC().Format(time.RFC3339),
		System: SystemMetrics{
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			MemAllocMB:   m.Alloc / bytesToMB,
			MemTotalMB:   m.TotalAlloc / bytesToMB,
			NumGC:        m.NumGC,
		},
		Host: h.hostMetrics(c),
		API:  api,
	}

	c.JSON(http.StatusOK, metrics)
}

func (h *MetricsHandler) hostMetrics(c *gin.Context) HostMetrics {
	ctx := c.Request.Context()
	host := HostMetrics{NumCPU: runtime.NumCPU()}

	// A zero interval compares against the previous call instead of sleeping
	if percents, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percents) > 0 {
		host.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		host.MemoryPercent = vm.UsedPercent
		host.MemoryUsedMB = vm.Used / bytesToMB
		host.MemoryTotalMB = vm.Total / bytesToMB
	}
	if avg, err := load.AvgWithContext(ctx); err == nil {
		host.Load1 = avg.Load1
		host.Load5 = avg.Load5
	}
	return host
}
