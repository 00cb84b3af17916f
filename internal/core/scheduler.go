package core

// scheduler.go runs the uploader janitor.
//
// Uploaders are created per page view and nothing tells the server when a
// browser goes away. The janitor periodically removes uploaders that are not
// Active and have not changed state for longer than the idle TTL. Active
// uploaders are never evicted; their simulation is bounded anyway.

import (
	"context"
	"time"

	"github.com/JonMunkholm/leavetrack/internal/upload"
)

// JanitorConfig holds configuration for the uploader janitor.
type JanitorConfig struct {
	IdleTTL       time.Duration // Evict uploaders untouched this long (default: 30m)
	CheckInterval time.Duration // How often to sweep (default: 1m)
}

func (c JanitorConfig) withDefaults() JanitorConfig {
	if c.IdleTTL <= 0 {
		c.IdleTTL = 30 * time.Minute
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = time.Minute
	}
	return c
}

// StartJanitor sweeps idle uploaders every CheckInterval until ctx is
// cancelled. It blocks; run it in its own goroutine.
func (s *Service) StartJanitor(ctx context.Context, cfg JanitorConfig) {
	cfg = cfg.withDefaults()

	s.logger.Info("uploader janitor started",
		"idle_ttl", cfg.IdleTTL,
		"check_interval", cfg.CheckInterval,
	)

	ticker := s.clock.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("uploader janitor stopped")
			return
		case <-ticker.Chan():
			s.SweepIdleUploaders(cfg.IdleTTL)
		}
	}
}

// SweepIdleUploaders removes every non-Active uploader idle longer than ttl
// and returns how many were removed.
func (s *Service) SweepIdleUploaders(ttl time.Duration) int {
	now := s.clock.Now()

	s.mu.Lock()
	var stale []*uploaderEntry
	for id, e := range s.uploaders {
		if e.u.State() == upload.StateActive {
			continue
		}
		if now.Sub(e.u.LastActivity()) > ttl {
			stale = append(stale, e)
			delete(s.uploaders, id)
		}
	}
	remaining := len(s.uploaders)
	s.mu.Unlock()

	for _, e := range stale {
		e.u.Close()
	}

	if len(stale) > 0 {
		s.logger.Info("evicted idle uploaders", "evicted", len(stale), "remaining", remaining)
	}
	return len(stale)
}
