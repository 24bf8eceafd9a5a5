// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"log/slog"
)

// Entity-kind key prefixes. Every cached shape of an entity kind lives
// under its prefix so one DeleteByPrefix call invalidates all of them.
const (
	PrefixCategory = "category_"
	PrefixGuide    = "guide_"
	PrefixTag      = "tag_"
	PrefixSeoTag   = "seotag_"
	PrefixPage     = "page_"
	PrefixSetting  = "setting_"
)

// Manager owns the process-wide cache instance. It is constructed once
// in main and injected into every content service, and it backs the
// administrative clear/remove operations without the cache needing to
// know the caller.
type Manager struct {
	backend Cacher
	logger  *slog.Logger
}

// NewManager creates a cache manager around the given backend.
func NewManager(backend Cacher, logger *slog.Logger) *Manager {
	return &Manager{backend: backend, logger: logger}
}

// Backend returns the underlying Cacher for services to wrap with Typed views.
func (m *Manager) Backend() Cacher {
	return m.backend
}

// RemoveByPrefix removes all entries under the given prefix.
func (m *Manager) RemoveByPrefix(ctx context.Context, prefix string) error {
	return m.backend.DeleteByPrefix(ctx, prefix)
}

// ClearAll clears all caches and resets statistics.
func (m *Manager) ClearAll(ctx context.Context) error {
	if err := m.backend.Clear(ctx); err != nil {
		return err
	}
	if sp, ok := m.backend.(StatsProvider); ok {
		sp.ResetStats()
	}
	m.logger.Info("cache cleared")
	return nil
}

// Stats returns statistics for the backend, or zero stats when the
// backend does not track them.
func (m *Manager) Stats() Stats {
	if sp, ok := m.backend.(StatsProvider); ok {
		return sp.Stats()
	}
	return Stats{}
}

// Close releases the backend.
func (m *Manager) Close() error {
	return m.backend.Close()
}
