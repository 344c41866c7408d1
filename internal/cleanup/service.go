// Package cleanup periodically purges expired tokens from the stores that
// hold them.
package cleanup

import (
	"context"
	"sync"
	"time"

	"github.com/birbparty/dandb-go/internal/telemetry"
	"github.com/sirupsen/logrus"
)

// Purger removes expired entries and reports how many were dropped
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// PurgerFunc adapts a function to Purger
type PurgerFunc func(ctx context.Context) (int64, error)

// PurgeExpired calls f
func (f PurgerFunc) PurgeExpired(ctx context.Context) (int64, error) {
	return f(ctx)
}

// Result is the outcome of one sweep of one target
type Result struct {
	Target  string
	Purged  int64
	Err     error
	Elapsed time.Duration
}

// Service sweeps registered targets on a fixed interval
type Service struct {
	mu      sync.Mutex
	targets map[string]Purger
	names   []string
	config  Config
	log     *logrus.Entry
}

// NewService creates a cleanup service
func NewService(config Config) *Service {
	if config.Interval <= 0 {
		config.Interval = DefaultConfig().Interval
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	return &Service{
		targets: make(map[string]Purger),
		config:  config,
		log:     telemetry.WithFields(logrus.Fields{"component": "cleanup"}),
	}
}

// Register adds a named target. Registering a name twice replaces the target.
func (s *Service) Register(name string, p Purger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.targets[name]; !ok {
		s.names = append(s.names, name)
	}
	s.targets[name] = p
}

// Start sweeps immediately and then on every tick until ctx is done
func (s *Service) Start(ctx context.Context) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.log.WithFields(logrus.Fields{
		"interval": s.config.Interval.String(),
		"dry_run":  s.config.DryRun,
	}).Info("🧹 Token cleanup started")

	s.Sweep(ctx)
	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-ctx.Done():
			s.log.Info("Token cleanup stopped")
			return
		}
	}
}

// Sweep runs one purge over every target in registration order
func (s *Service) Sweep(ctx context.Context) []Result {
	s.mu.Lock()
	names := append([]string(nil), s.names...)
	targets := make([]Purger, len(names))
	for i, name := range names {
		targets[i] = s.targets[name]
	}
	s.mu.Unlock()

	results := make([]Result, 0, len(names))
	for i, name := range names {
		if s.config.DryRun {
			s.log.WithField("target", name).Debug("DRY RUN: would purge expired tokens")
			results = append(results, Result{Target: name})
			continue
		}

		start := time.Now()
		sweepCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
		purged, err := targets[i].PurgeExpired(sweepCtx)
		cancel()

		res := Result{Target: name, Purged: purged, Err: err, Elapsed: time.Since(start)}
		results = append(results, res)

		fields := logrus.Fields{"target": name, "purged": purged, "elapsed": res.Elapsed.String()}
		if err != nil {
			s.log.WithFields(fields).WithError(err).Warn("Failed to purge expired tokens")
		} else if purged > 0 {
			s.log.WithFields(fields).Info("Purged expired tokens")
		}
	}
	return results
}
