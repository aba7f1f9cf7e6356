package workers

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"chat-server/contract"

	"github.com/shirou/gopsutil/process"
)

var _ contract.Worker = (*StatsWorker)(nil)

// StatsWorker periodically logs process health (RSS, CPU, goroutines)
// together with the registry gauges (active sessions, live channels).
// Purely observational: it reads the registry through the same lock as
// everyone else and touches nothing.
type StatsWorker struct {
	log      *slog.Logger
	interval time.Duration
	registry contract.IRegistry
}

func NewStatsWorker(log *slog.Logger, interval time.Duration, registry contract.IRegistry) *StatsWorker {
	return &StatsWorker{log: log, interval: interval, registry: registry}
}

func (w *StatsWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			sessions, channels := w.registry.Counts()
			w.log.Info("Server stats",
				"sessions", sessions,
				"channels", channels,
				"goroutines", runtime.NumGoroutine(),
				"ram_bytes", rss,
				"cpu_percent", cpu)
		}
	}
}

func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
