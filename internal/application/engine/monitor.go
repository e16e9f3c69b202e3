package engine

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// OccupancyMonitor periodically reports engine slot usage. It warns
// when the engine is saturated, since every Run call will then fail
// fast until a slot frees up.
type OccupancyMonitor struct {
	engine   *Engine
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewOccupancyMonitor creates a monitor for the given engine.
func NewOccupancyMonitor(engine *Engine, interval time.Duration, logger *zap.Logger) *OccupancyMonitor {
	return &OccupancyMonitor{
		engine:   engine,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start begins periodic reporting. Calling Start twice is a no-op.
func (m *OccupancyMonitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.mu.Unlock()

	go m.run()
}

// Stop halts reporting.
func (m *OccupancyMonitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.mu.Unlock()

	close(m.stopCh)
}

func (m *OccupancyMonitor) run() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.check()
		}
	}
}

func (m *OccupancyMonitor) check() {
	running := m.engine.Running()
	capacity := m.engine.Capacity()

	m.logger.Debug("engine occupancy",
		zap.Int("running", running),
		zap.Int("capacity", capacity))

	if running == capacity {
		m.logger.Warn("engine saturated - new tasks will be rejected",
			zap.Int("capacity", capacity))
	}
}
