// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package visitor captures page views into the visitor log. Capture is
// strictly fire-and-forget: the request path never waits on the insert
// and never sees its failure. Aggregation over the log lives elsewhere.
package visitor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mileusna/useragent"

	"github.com/uzmanrehber/rehber-go/internal/model"
)

const sessionCookie = "rehber_session"

// Store is the persistence surface the tracker needs.
type Store interface {
	InsertVisitorLog(ctx context.Context, v *model.VisitorLog) error
	CountVisitorLogs(ctx context.Context) (int64, error)
	PruneVisitorLogs(ctx context.Context, before time.Time) (int64, error)
}

// Tracker records page views and prunes old ones.
type Tracker struct {
	store  Store
	ipSalt string
	logger *slog.Logger
}

func NewTracker(store Store, ipSalt string, logger *slog.Logger) *Tracker {
	return &Tracker{store: store, ipSalt: ipSalt, logger: logger}
}

// Middleware captures successful GET page views. The session id lives
// in a cookie and is minted on first sight.
func (t *Tracker) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || !shouldTrack(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		sessionID := t.sessionID(w, r)
		next.ServeHTTP(w, r)

		entry := t.buildLog(r, sessionID)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := t.store.InsertVisitorLog(ctx, entry); err != nil {
				t.logger.Error("visitor log insert failed", "path", entry.Path, "err", err)
			}
		}()
	})
}

// Prune deletes visitor logs older than the retention window.
func (t *Tracker) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	return t.store.PruneVisitorLogs(ctx, time.Now().Add(-retention))
}

// Count returns the number of stored page views.
func (t *Tracker) Count(ctx context.Context) (int64, error) {
	return t.store.CountVisitorLogs(ctx)
}

func (t *Tracker) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (t *Tracker) buildLog(r *http.Request, sessionID string) *model.VisitorLog {
	ua := useragent.Parse(r.UserAgent())

	browser := ua.Name
	if browser == "" {
		browser = "Unknown"
	}
	os := ua.OS
	if os == "" {
		os = "Unknown"
	}
	device := "desktop"
	switch {
	case ua.Mobile:
		device = "mobile"
	case ua.Tablet:
		device = "tablet"
	case ua.Bot:
		device = "bot"
	}

	locale := model.LocaleTR
	if model.IsSecondaryLocale(r.URL.Query().Get("lang")) {
		locale = model.LocaleEN
	}

	return &model.VisitorLog{
		SessionID: sessionID,
		Path:      r.URL.Path,
		Locale:    locale,
		Browser:   browser,
		OS:        os,
		Device:    device,
		IPHash:    t.hashIP(clientIP(r)),
		CreatedAt: time.Now(),
	}
}

// hashIP stores only a salted digest so raw addresses never hit disk.
func (t *Tracker) hashIP(ip string) string {
	if ip == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(t.ipSalt + ip))
	return hex.EncodeToString(sum[:])
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i > 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func shouldTrack(path string) bool {
	for _, prefix := range []string{"/static/", "/assets/", "/favicon", "/robots.txt", "/healthz", "/admin"} {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}
