// Package housekeeping runs periodic maintenance of the local cache.
package housekeeping

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/brickbot/bricklink-telegram-bot/internal/metrics"
)

const (
	// PruneInterval is the time between prune cycles.
	PruneInterval = time.Hour

	// StartDelay lets the bot finish starting before the first prune.
	StartDelay = 5 * time.Second
)

// Pruner removes expired entries and reports how many were removed.
type Pruner interface {
	PruneExpired(ctx context.Context) (int64, error)
}

// Service is the background cache pruner.
type Service struct {
	store    Pruner
	metrics  *metrics.Metrics
	interval time.Duration
	delay    time.Duration
}

func NewService(store Pruner, m *metrics.Metrics) *Service {
	return &Service{
		store:    store,
		metrics:  m,
		interval: PruneInterval,
		delay:    StartDelay,
	}
}

// Run starts the prune loop. It blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) {
	log.Info().Dur("interval", s.interval).Msg("starting housekeeping service")

	select {
	case <-ctx.Done():
		return
	case <-time.After(s.delay):
	}
	s.prune(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("housekeeping service stopped")
			return
		case <-ticker.C:
			s.prune(ctx)
		}
	}
}

func (s *Service) prune(ctx context.Context) {
	n, err := s.store.PruneExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to prune cache")
		return
	}
	s.metrics.RecordPruned(n)
	if n > 0 {
		log.Info().Int64("count", n).Msg("pruned expired cache entries")
	}
}
