package monitoring

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Collector samples process and host statistics for the admin dashboard.
type Collector struct {
	db      *pgxpool.Pool
	started time.Time
}

func NewCollector(db *pgxpool.Pool) *Collector {
	return &Collector{db: db, started: time.Now()}
}

type SystemStats struct {
	DatabaseStatus    string  `json:"database_status"`
	DatabaseSize      string  `json:"database_size"`
	ActiveConnections int     `json:"active_connections"`
	DBResponseTimeMs  int64   `json:"db_response_time_ms"`
	CPUPercent        float64 `json:"cpu_percent"`
	MemoryPercent     float64 `json:"memory_percent"`
	MemoryUsed        string  `json:"memory_used"`
	MemoryTotal       string  `json:"memory_total"`
	DiskPercent       float64 `json:"disk_percent"`
	DiskUsed          string  `json:"disk_used"`
	DiskTotal         string  `json:"disk_total"`
	Goroutines        int     `json:"goroutines"`
	UptimeSeconds     int64   `json:"uptime_seconds"`
}

// Collect gathers one snapshot. Host probes that fail leave zeroes rather
// than failing the whole endpoint.
func (c *Collector) Collect(ctx context.Context) SystemStats {
	stats := SystemStats{
		Goroutines:    runtime.NumGoroutine(),
		UptimeSeconds: int64(time.Since(c.started).Seconds()),
	}

	start := time.Now()
	if err := c.db.Ping(ctx); err != nil {
		stats.DatabaseStatus = "unhealthy"
	} else {
		stats.DatabaseStatus = "healthy"
	}
	stats.DBResponseTimeMs = time.Since(start).Milliseconds()

	c.db.QueryRow(ctx, "SELECT count(*) FROM pg_stat_activity").Scan(&stats.ActiveConnections)

	var dbSizeBytes int64
	c.db.QueryRow(ctx, "SELECT pg_database_size(current_database())").Scan(&dbSizeBytes)
	stats.DatabaseSize = formatBytes(uint64(dbSizeBytes))

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemoryPercent = vm.UsedPercent
		stats.MemoryUsed = formatBytes(vm.Used)
		stats.MemoryTotal = formatBytes(vm.Total)
	}
	if du, err := disk.Usage("/"); err == nil {
		stats.DiskPercent = du.UsedPercent
		stats.DiskUsed = formatBytes(du.Used)
		stats.DiskTotal = formatBytes(du.Total)
	}

	return stats
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
