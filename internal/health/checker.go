// Package health provides periodic health checks for the Twin daemon:
// local cache connectivity, cache freshness, and remote reachability.
package health

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/twinlab/twin/internal/infra/sqlite"
)

// Check defines a single health check.
type Check struct {
	Name    string
	CheckFn func(ctx context.Context) error
}

// Status represents the result of a health check.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Report is the aggregate view served on /health. Remote
// unreachability degrades the report but does not mark it unhealthy;
// the app works offline by design.
type Report struct {
	Healthy  bool     `json:"healthy"`
	Degraded bool     `json:"degraded,omitempty"`
	Checks   []Status `json:"checks"`
}

// Checker runs periodic health checks.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
}

// NewChecker creates a health checker over the local cache and the
// remote store endpoint. remoteURL may be empty (offline mode).
func NewChecker(db *sqlite.DB, remoteURL string) *Checker {
	checks := []Check{
		{
			Name: "sqlite",
			CheckFn: func(ctx context.Context) error {
				return db.Ping()
			},
		},
		{
			Name: "cache_freshness",
			CheckFn: func(ctx context.Context) error {
				savedAt, err := db.LastSavedAt()
				if err != nil {
					return fmt.Errorf("read cache age: %w", err)
				}
				if savedAt.IsZero() {
					return nil // nothing cached yet
				}
				if age := time.Since(savedAt); age > 24*time.Hour {
					return fmt.Errorf("cache is %s old", age.Round(time.Minute))
				}
				return nil
			},
		},
	}
	if remoteURL != "" {
		checks = append(checks, Check{
			Name: "remote_store",
			CheckFn: func(ctx context.Context) error {
				return checkRemote(ctx, remoteURL)
			},
		})
	}

	return &Checker{
		interval: 60 * time.Second,
		checks:   checks,
	}
}

// Run starts the health check loop. Call in a goroutine.
func (c *Checker) Run(ctx context.Context) {
	// Run immediately on start
	c.runAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.runAll(ctx)
		}
	}
}

func (c *Checker) runAll(ctx context.Context) {
	statuses := make([]Status, len(c.checks))
	for i, check := range c.checks {
		s := Status{
			Name:      check.Name,
			CheckedAt: time.Now(),
		}
		if err := check.CheckFn(ctx); err != nil {
			s.Healthy = false
			s.Error = err.Error()
		} else {
			s.Healthy = true
		}
		statuses[i] = s
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Report returns the latest aggregate health view.
func (c *Checker) Report() Report {
	c.mu.RLock()
	defer c.mu.RUnlock()

	report := Report{Healthy: true, Checks: make([]Status, len(c.statuses))}
	copy(report.Checks, c.statuses)

	for _, s := range c.statuses {
		if s.Healthy {
			continue
		}
		if s.Name == "remote_store" {
			report.Degraded = true
			continue
		}
		report.Healthy = false
	}
	return report
}

// ─── Check Implementations ──────────────────────────────────────────────────

func checkRemote(ctx context.Context, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("remote unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("remote returned %d", resp.StatusCode)
	}
	return nil
}
