// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/uzmanrehber/rehber-go/internal/cache"
	"github.com/uzmanrehber/rehber-go/internal/model"
	"github.com/uzmanrehber/rehber-go/internal/visitor"
)

type stubVisitorStore struct {
	mu      sync.Mutex
	pruned  bool
	counted bool
}

func (s *stubVisitorStore) InsertVisitorLog(context.Context, *model.VisitorLog) error {
	return nil
}

func (s *stubVisitorStore) CountVisitorLogs(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counted = true
	return 5, nil
}

func (s *stubVisitorStore) PruneVisitorLogs(context.Context, time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruned = true
	return 3, nil
}

func newTestScheduler(st *stubVisitorStore) *Scheduler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracker := visitor.NewTracker(st, "salt", logger)
	mgr := cache.NewManager(cache.NewMemoryCache(time.Minute), logger)
	return New(tracker, mgr, 90*24*time.Hour, logger)
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler(&stubVisitorStore{})
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got := len(s.cron.Entries()); got != 2 {
		t.Errorf("registered %d jobs, want 2", got)
	}
	s.Stop()
}

func TestPruneJob(t *testing.T) {
	st := &stubVisitorStore{}
	s := newTestScheduler(st)

	s.pruneVisitorLogs()

	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.pruned {
		t.Error("prune job never reached the store")
	}
	if !st.counted {
		t.Error("prune job never counted the remaining logs")
	}
}

func TestCacheStatsJob(t *testing.T) {
	s := newTestScheduler(&stubVisitorStore{})
	// Must not panic with an empty cache.
	s.logCacheStats()
}
