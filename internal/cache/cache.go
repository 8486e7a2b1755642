// Package cache provides the in-memory LRU caches backing the server's
// derived reads (monthly balance, health score), with TTL expiry and a
// manager that sweeps expired entries in the background.
package cache

import "time"

// Cleaner is implemented by caches that can drop their expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager owns the background sweep for a set of registered caches.
type Manager struct {
	caches    []Cleaner
	stopSweep chan struct{}
	sweepDone chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		stopSweep: make(chan struct{}),
		sweepDone: make(chan struct{}),
	}
}

// Register adds a cache to the periodic sweep.
func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

// StartCleanup launches the sweep loop. Call Stop to terminate it.
func (m *Manager) StartCleanup(interval time.Duration) {
	go m.sweep(interval)
}

func (m *Manager) sweep(interval time.Duration) {
	defer close(m.sweepDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, c := range m.caches {
				c.CleanExpired()
			}
		case <-m.stopSweep:
			return
		}
	}
}

// Stop ends the sweep loop and waits for it to exit.
func (m *Manager) Stop() {
	close(m.stopSweep)
	<-m.sweepDone
}
