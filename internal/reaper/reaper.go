// Package reaper runs the periodic sweep that reclaims reservations whose
// payment deadline elapsed. Each sweep item is a single conditional update,
// so concurrent reapers and late payment callbacks cannot double-process a
// reservation.
package reaper

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/playzone/reservation-service/internal/service"
)

const recentErrorLimit = 20

// Stats is a snapshot of the reaper's cumulative counters.
type Stats struct {
	Cycles       int64     `json:"cycles"`
	Reclaimed    int64     `json:"reclaimed"`
	RecentErrors []string  `json:"recent_errors,omitempty"`
	LastCycleAt  time.Time `json:"last_cycle_at"`
}

// Handle owns one running reaper loop. There is no package-level state;
// every Start returns a fresh handle and tests never share one.
type Handle struct {
	svc      service.ReservationService
	interval time.Duration

	stop chan struct{}
	done chan struct{}
	once sync.Once

	mu    sync.Mutex
	stats Stats
}

// Start launches the sweep loop and returns its handle.
func Start(svc service.ReservationService, interval time.Duration) *Handle {
	h := &Handle{
		svc:      svc,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Handle) run() {
	defer close(h.done)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	log.Printf("[reaper] started, sweeping every %s", h.interval)
	for {
		select {
		case <-ticker.C:
			h.sweep()
		case <-h.stop:
			log.Println("[reaper] stopping")
			return
		}
	}
}

func (h *Handle) sweep() {
	result, err := h.svc.RunExpirySweep(context.Background())

	h.mu.Lock()
	defer h.mu.Unlock()
	h.stats.Cycles++
	h.stats.Reclaimed += int64(result.Reclaimed)
	h.stats.LastCycleAt = time.Now()
	if err != nil {
		h.recordError(err.Error())
		log.Printf("[reaper] sweep failed: %v", err)
		return
	}
	for _, e := range result.Errors {
		h.recordError(e)
	}
	if result.Reclaimed > 0 || len(result.Errors) > 0 {
		log.Printf("[reaper] sweep reclaimed %d, %d errors", result.Reclaimed, len(result.Errors))
	}
}

func (h *Handle) recordError(msg string) {
	h.stats.RecentErrors = append(h.stats.RecentErrors, msg)
	if n := len(h.stats.RecentErrors); n > recentErrorLimit {
		h.stats.RecentErrors = h.stats.RecentErrors[n-recentErrorLimit:]
	}
}

// Stop shuts the loop down and waits for it to exit. A sweep in flight
// finishes first; individual reclaims are single conditional writes, so
// nothing is left half-transitioned.
func (h *Handle) Stop() {
	h.once.Do(func() { close(h.stop) })
	<-h.done
}

// Stats returns a copy of the cumulative counters.
func (h *Handle) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.stats
	out.RecentErrors = append([]string(nil), h.stats.RecentErrors...)
	return out
}
