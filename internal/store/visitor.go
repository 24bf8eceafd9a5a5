// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/uzmanrehber/rehber-go/internal/model"
)

// InsertVisitorLog appends one captured page view.
func (s *Store) InsertVisitorLog(ctx context.Context, v *model.VisitorLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO visitor_logs (session_id, path, locale, browser, os, device, ip_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.SessionID, v.Path, v.Locale, v.Browser, v.OS, v.Device, v.IPHash, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting visitor log: %w", err)
	}
	return nil
}

// CountVisitorLogs returns the number of stored page views.
func (s *Store) CountVisitorLogs(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM visitor_logs`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting visitor logs: %w", err)
	}
	return n, nil
}

// PruneVisitorLogs deletes page views older than the cutoff and returns
// the number of rows removed.
func (s *Store) PruneVisitorLogs(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM visitor_logs WHERE created_at < ?`, before)
	if err != nil {
		return 0, fmt.Errorf("pruning visitor logs: %w", err)
	}
	return res.RowsAffected()
}
