// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic housekeeping jobs: visitor-log
// retention and cache stats reporting.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/uzmanrehber/rehber-go/internal/cache"
	"github.com/uzmanrehber/rehber-go/internal/visitor"
)

// Scheduler owns the cron instance and the jobs registered on it.
type Scheduler struct {
	cron      *cron.Cron
	tracker   *visitor.Tracker
	cacheMgr  *cache.Manager
	retention time.Duration
	logger    *slog.Logger
}

// New creates a scheduler. Jobs are registered by Start.
func New(tracker *visitor.Tracker, cacheMgr *cache.Manager, retention time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		tracker:   tracker,
		cacheMgr:  cacheMgr,
		retention: retention,
		logger:    logger,
	}
}

// Start registers the jobs and begins the cron loop.
func (s *Scheduler) Start() error {
	// Prune visitor logs nightly.
	if _, err := s.cron.AddFunc("30 3 * * *", s.pruneVisitorLogs); err != nil {
		return err
	}
	// Report cache stats hourly.
	if _, err := s.cron.AddFunc("0 * * * *", s.logCacheStats); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) pruneVisitorLogs() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pruned, err := s.tracker.Prune(ctx, s.retention)
	if err != nil {
		s.logger.Error("visitor log pruning failed", "error", err)
		return
	}
	if pruned > 0 {
		remaining, err := s.tracker.Count(ctx)
		if err != nil {
			s.logger.Error("visitor log count failed", "error", err)
			return
		}
		s.logger.Info("visitor logs pruned",
			"count", pruned, "remaining", remaining, "retention", s.retention)
	}
}

func (s *Scheduler) logCacheStats() {
	stats := s.cacheMgr.Stats()
	s.logger.Info("cache stats",
		"hits", stats.Hits,
		"misses", stats.Misses,
		"sets", stats.Sets,
		"items", stats.Items,
		"hit_rate", stats.HitRate,
	)
}
