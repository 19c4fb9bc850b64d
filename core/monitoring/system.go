package monitoring

import (
	"context"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// StatsRefreshInterval is the minimum time between stats refreshes
const StatsRefreshInterval = 2 * time.Second

// CPUInfo holds per-socket CPU information
type CPUInfo struct {
	ModelName string  `json:"model_name"`
	Cores     int32   `json:"cores"`
	Frequency float64 `json:"frequency_mhz"`
	Usage     float64 `json:"usage"`
}

// MemoryInfo holds memory information
type MemoryInfo struct {
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"used_percent"`
}

// DiskInfo holds root filesystem usage
type DiskInfo struct {
	Total uint64  `json:"total"`
	Used  uint64  `json:"used"`
	Free  uint64  `json:"free"`
	Usage float64 `json:"usage_percent"`
	Path  string  `json:"path"`
}

// ProcessInfo holds process-specific information
type ProcessInfo struct {
	PID           int32   `json:"pid"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	RSS           uint64  `json:"rss"`
	NumThreads    int32   `json:"num_threads"`
}

// RuntimeStats holds Go runtime metrics
type RuntimeStats struct {
	NumGoroutines int    `json:"num_goroutines"`
	HeapAlloc     uint64 `json:"heap_alloc"`
	HeapSys       uint64 `json:"heap_sys"`
	NumGC         uint32 `json:"num_gc"`
}

// SystemStats is the full system snapshot served by the health endpoint.
type SystemStats struct {
	Hostname      string       `json:"hostname"`
	Platform      string       `json:"platform"`
	OS            string       `json:"os"`
	KernelVersion string       `json:"kernel_version"`
	CPUInfo       []CPUInfo    `json:"cpu_info"`
	MemoryInfo    MemoryInfo   `json:"memory_info"`
	DiskInfo      DiskInfo     `json:"disk_info"`
	ProcessStats  ProcessInfo  `json:"process_stats"`
	RuntimeStats  RuntimeStats `json:"runtime_stats"`
	StartTime     time.Time    `json:"start_time"`
	UptimeSecs    int64        `json:"uptime_secs"`
}

type statsCollector struct {
	mu            sync.RWMutex
	lastCollected time.Time
	cachedStats   *SystemStats
}

var collector = &statsCollector{}

// CollectSystemStats gathers a system snapshot. Results are cached for
// StatsRefreshInterval so a polled health endpoint stays cheap. Collection
// degrades field by field: a failing probe leaves its section zeroed and
// the last probe error is returned alongside the partial snapshot.
func CollectSystemStats(ctx context.Context, startTime time.Time) (*SystemStats, error) {
	select {
	case <-ctx.Done():
		return nil, NewTimeoutError("collect_system_stats", "context done before collection")
	default:
	}

	collector.mu.RLock()
	if time.Since(collector.lastCollected) < StatsRefreshInterval && collector.cachedStats != nil {
		cached := collector.cachedStats
		collector.mu.RUnlock()
		return cached, nil
	}
	collector.mu.RUnlock()

	stats := &SystemStats{
		StartTime:  startTime,
		UptimeSecs: int64(time.Since(startTime).Seconds()),
	}
	var probeErr error

	if info, err := host.InfoWithContext(ctx); err == nil {
		stats.Hostname = info.Hostname
		stats.Platform = info.Platform
		stats.OS = info.OS
		stats.KernelVersion = info.KernelVersion
	} else {
		probeErr = NewSystemError("collect_host_info", "failed to get host info", err)
	}

	if cpus, err := collectCPUInfo(ctx); err == nil {
		stats.CPUInfo = cpus
	} else {
		probeErr = err
	}

	if memInfo, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		stats.MemoryInfo = MemoryInfo{
			Total:       memInfo.Total,
			Used:        memInfo.Used,
			Free:        memInfo.Free,
			UsedPercent: memInfo.UsedPercent,
		}
	} else {
		probeErr = NewSystemError("collect_memory_info", "failed to get memory info", err)
	}

	if diskInfo, err := disk.UsageWithContext(ctx, "/"); err == nil {
		stats.DiskInfo = DiskInfo{
			Total: diskInfo.Total,
			Used:  diskInfo.Used,
			Free:  diskInfo.Free,
			Usage: diskInfo.UsedPercent,
			Path:  "/",
		}
	} else {
		probeErr = NewSystemError("collect_disk_info", "failed to get disk usage", err)
	}

	if proc, err := collectProcessInfo(ctx); err == nil {
		stats.ProcessStats = proc
	} else {
		probeErr = err
	}

	stats.RuntimeStats = collectRuntimeStats()

	collector.mu.Lock()
	collector.cachedStats = stats
	collector.lastCollected = time.Now()
	collector.mu.Unlock()

	return stats, probeErr
}

func collectCPUInfo(ctx context.Context) ([]CPUInfo, error) {
	cpuInfos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return nil, NewSystemError("collect_cpu_info", "failed to get CPU info", err)
	}

	result := make([]CPUInfo, len(cpuInfos))
	for i, info := range cpuInfos {
		result[i] = CPUInfo{
			ModelName: info.ModelName,
			Cores:     info.Cores,
			Frequency: info.Mhz,
		}
	}

	if percents, err := cpu.PercentWithContext(ctx, 0, false); err == nil {
		for i := range result {
			if i < len(percents) {
				result[i].Usage = percents[i]
			}
		}
	}
	return result, nil
}

func collectProcessInfo(ctx context.Context) (ProcessInfo, error) {
	proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return ProcessInfo{}, NewSystemError("collect_process_info", "failed to open own process", err)
	}

	result := ProcessInfo{PID: proc.Pid}
	if cpuPercent, err := proc.CPUPercentWithContext(ctx); err == nil {
		result.CPUPercent = cpuPercent
	}
	if memPercent, err := proc.MemoryPercentWithContext(ctx); err == nil {
		result.MemoryPercent = float64(memPercent)
	}
	if memInfo, err := proc.MemoryInfoWithContext(ctx); err == nil {
		result.RSS = memInfo.RSS
	}
	if numThreads, err := proc.NumThreadsWithContext(ctx); err == nil {
		result.NumThreads = numThreads
	}
	return result, nil
}

func collectRuntimeStats() RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return RuntimeStats{
		NumGoroutines: runtime.NumGoroutine(),
		HeapAlloc:     m.HeapAlloc,
		HeapSys:       m.HeapSys,
		NumGC:         m.NumGC,
	}
}
