// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package visitor

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/uzmanrehber/rehber-go/internal/model"
)

type memStore struct {
	mu   sync.Mutex
	logs []model.VisitorLog
}

func (m *memStore) InsertVisitorLog(_ context.Context, v *model.VisitorLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, *v)
	return nil
}

func (m *memStore) CountVisitorLogs(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.logs)), nil
}

func (m *memStore) PruneVisitorLogs(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []model.VisitorLog
	var pruned int64
	for _, l := range m.logs {
		if l.CreatedAt.Before(before) {
			pruned++
			continue
		}
		kept = append(kept, l)
	}
	m.logs = kept
	return pruned, nil
}

func (m *memStore) snapshot() []model.VisitorLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.VisitorLog(nil), m.logs...)
}

func newTestTracker() (*Tracker, *memStore) {
	st := &memStore{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTracker(st, "salt", logger), st
}

func waitForLogs(t *testing.T, st *memStore, want int) []model.VisitorLog {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if logs := st.snapshot(); len(logs) == want {
			return logs
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("never saw %d visitor logs", want)
	return nil
}

func TestMiddlewareCapturesPageView(t *testing.T) {
	tracker, st := newTestTracker()
	handler := tracker.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/rehber/bagli-listeler?lang=en", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1")
	req.RemoteAddr = "203.0.113.7:51234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	logs := waitForLogs(t, st, 1)
	entry := logs[0]
	if entry.Path != "/rehber/bagli-listeler" {
		t.Errorf("Path = %q", entry.Path)
	}
	if entry.Locale != model.LocaleEN {
		t.Errorf("Locale = %q, want en", entry.Locale)
	}
	if entry.Device != "mobile" {
		t.Errorf("Device = %q, want mobile", entry.Device)
	}
	if entry.SessionID == "" {
		t.Error("SessionID empty")
	}
	if entry.IPHash == "" || entry.IPHash == "203.0.113.7" {
		t.Errorf("IPHash = %q, want salted digest", entry.IPHash)
	}

	// A session cookie is set for the next visit.
	cookies := rec.Result().Cookies()
	var found bool
	for _, c := range cookies {
		if c.Name == sessionCookie && c.Value == entry.SessionID {
			found = true
		}
	}
	if !found {
		t.Error("session cookie not set")
	}
}

func TestMiddlewareReusesSessionCookie(t *testing.T) {
	tracker, st := newTestTracker()
	handler := tracker.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "existing-session"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	logs := waitForLogs(t, st, 1)
	if logs[0].SessionID != "existing-session" {
		t.Errorf("SessionID = %q, want existing-session", logs[0].SessionID)
	}
}

func TestMiddlewareSkipsNonTrackable(t *testing.T) {
	tracker, st := newTestTracker()
	handler := tracker.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	for _, target := range []string{"/static/app.css", "/admin/cache", "/healthz"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/rehber", nil))

	time.Sleep(50 * time.Millisecond)
	if logs := st.snapshot(); len(logs) != 0 {
		t.Errorf("captured %d logs for non-trackable requests, want 0", len(logs))
	}
}

func TestPrune(t *testing.T) {
	tracker, st := newTestTracker()
	st.logs = []model.VisitorLog{
		{Path: "/", CreatedAt: time.Now().Add(-100 * 24 * time.Hour)},
		{Path: "/", CreatedAt: time.Now()},
	}

	pruned, err := tracker.Prune(context.Background(), 90*24*time.Hour)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if pruned != 1 || len(st.snapshot()) != 1 {
		t.Errorf("Prune() = %d, logs left %d, want 1 and 1", pruned, len(st.snapshot()))
	}

	remaining, err := tracker.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if remaining != 1 {
		t.Errorf("Count() = %d, want 1", remaining)
	}
}
