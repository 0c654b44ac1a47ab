package metrics

import (
	"fmt"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// StartSystemMetrics starts a background collector that samples CPU,
// memory and goroutine counts at the given interval.
func StartSystemMetrics(interval time.Duration) {
	m := GetInstance()
	m.Initialize()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			m.collectSystemMetrics()
		}
	}()
}

func (m *Manager) collectSystemMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return
	}

	if cpuPercentages, err := cpu.Percent(0, true); err == nil {
		for i, percentage := range cpuPercentages {
			m.systemCPUUsage.WithLabelValues(fmt.Sprintf("cpu%d", i)).Set(percentage)
		}
	}

	if vmstat, err := mem.VirtualMemory(); err == nil {
		m.systemMemoryUsage.WithLabelValues("total").Set(float64(vmstat.Total))
		m.systemMemoryUsage.WithLabelValues("available").Set(float64(vmstat.Available))
		m.systemMemoryUsage.WithLabelValues("used").Set(float64(vmstat.Used))
		m.systemMemoryUsage.WithLabelValues("free").Set(float64(vmstat.Free))
	}

	m.goGoroutines.Set(float64(runtime.NumGoroutine()))
}
