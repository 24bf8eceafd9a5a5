// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/uzmanrehber/rehber-go/internal/cache"
	"github.com/uzmanrehber/rehber-go/internal/model"
	"github.com/uzmanrehber/rehber-go/internal/store"
	"github.com/uzmanrehber/rehber-go/internal/util"
)

// StaticsStore is the system-of-record surface for static pages and
// site settings.
type StaticsStore interface {
	ListStaticPages(ctx context.Context, activeOnly bool) ([]model.StaticPage, error)
	GetStaticPageByID(ctx context.Context, id int64) (*model.StaticPage, error)
	GetStaticPageBySlug(ctx context.Context, slug, locale string) (*model.StaticPage, error)
	InsertStaticPage(ctx context.Context, p *model.StaticPage) (int64, error)
	UpdateStaticPage(ctx context.Context, p *model.StaticPage) error
	DeleteStaticPage(ctx context.Context, id int64) (bool, error)
	ListSettings(ctx context.Context) ([]model.SiteSetting, error)
	GetSetting(ctx context.Context, key string) (*model.SiteSetting, error)
	UpsertSetting(ctx context.Context, key, value string) error
}

// StaticsService resolves static pages and site settings cache-aside.
type StaticsService struct {
	store      StaticsStore
	pages      *cache.Typed[model.StaticPage]
	settings   *cache.Typed[[]model.SiteSetting]
	cacheMgr   *cache.Manager
	translator Translator
	logger     *slog.Logger
}

func NewStaticsService(st StaticsStore, mgr *cache.Manager, tr Translator, logger *slog.Logger) *StaticsService {
	return &StaticsService{
		store:      st,
		pages:      cache.NewTyped[model.StaticPage](mgr.Backend(), staticsTTL),
		settings:   cache.NewTyped[[]model.SiteSetting](mgr.Backend(), staticsTTL),
		cacheMgr:   mgr,
		translator: tr,
		logger:     logger,
	}
}

// GetPages returns static pages, optionally only active ones.
func (s *StaticsService) GetPages(ctx context.Context, activeOnly bool) ([]model.StaticPage, error) {
	return s.store.ListStaticPages(ctx, activeOnly)
}

// GetPageBySlug returns an active page by its locale-specific slug, or nil.
func (s *StaticsService) GetPageBySlug(ctx context.Context, slug, locale string) (*model.StaticPage, error) {
	key := fmt.Sprintf("%sslug_%s_%s", cache.PrefixPage, slug, locale)
	if hit, ok := s.pages.Get(ctx, key); ok {
		return hit, nil
	}
	p, err := s.store.GetStaticPageBySlug(ctx, slug, locale)
	if err != nil || p == nil {
		return p, err
	}
	if err := s.pages.Set(ctx, key, p); err != nil {
		s.logger.Warn("caching static page failed", "err", err)
	}
	return p, nil
}

// CreatePage slugs, translates and persists a new static page.
func (s *StaticsService) CreatePage(ctx context.Context, p *model.StaticPage) (*model.StaticPage, error) {
	if strings.TrimSpace(p.TitleTR) == "" || strings.TrimSpace(p.ContentTR) == "" {
		return nil, fmt.Errorf("page title and content: %w", ErrRequiredField)
	}
	p.SlugTR = util.GenerateSlug(p.TitleTR)
	if p.SlugTR == "" {
		return nil, fmt.Errorf("page title yields no slug: %w", ErrRequiredField)
	}
	p.ContentTR = sanitizeHTML(p.ContentTR)
	s.translatePage(ctx, p)

	p.CreatedAt = time.Now()
	id, err := s.store.InsertStaticPage(ctx, p)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return nil, fmt.Errorf("page slug %q: %w", p.SlugTR, ErrDuplicateSlug)
		}
		return nil, err
	}
	p.ID = id

	s.invalidatePages(ctx)
	return p, nil
}

// UpdatePage overwrites a static page, re-translating only when the
// Turkish title or content changed.
func (s *StaticsService) UpdatePage(ctx context.Context, p *model.StaticPage) (*model.StaticPage, error) {
	if strings.TrimSpace(p.TitleTR) == "" || strings.TrimSpace(p.ContentTR) == "" {
		return nil, fmt.Errorf("page title and content: %w", ErrRequiredField)
	}
	stored, err := s.store.GetStaticPageByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("static page %d not found", p.ID)
	}

	p.SlugTR = util.GenerateSlug(p.TitleTR)
	p.ContentTR = sanitizeHTML(p.ContentTR)
	if p.TitleTR != stored.TitleTR || p.ContentTR != stored.ContentTR {
		s.translatePage(ctx, p)
	} else {
		p.TitleEN = stored.TitleEN
		p.SlugEN = stored.SlugEN
		p.ContentEN = stored.ContentEN
	}

	p.CreatedAt = stored.CreatedAt
	p.UpdatedAt = util.NullTimeNow()
	if err := s.store.UpdateStaticPage(ctx, p); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, fmt.Errorf("page slug %q: %w", p.SlugTR, ErrDuplicateSlug)
		}
		return nil, err
	}

	s.invalidatePages(ctx)
	return p, nil
}

// DeletePage removes a static page.
func (s *StaticsService) DeletePage(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.store.DeleteStaticPage(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.invalidatePages(ctx)
	}
	return deleted, nil
}

// GetSettings returns all site settings.
func (s *StaticsService) GetSettings(ctx context.Context) ([]model.SiteSetting, error) {
	key := cache.PrefixSetting + "all"
	if hit, ok := s.settings.Get(ctx, key); ok {
		return *hit, nil
	}
	settings, err := s.store.ListSettings(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.settings.Set(ctx, key, &settings); err != nil {
		s.logger.Warn("caching settings failed", "err", err)
	}
	return settings, nil
}

// GetSetting returns one setting value with a default for absent keys.
func (s *StaticsService) GetSetting(ctx context.Context, key, fallback string) (string, error) {
	setting, err := s.store.GetSetting(ctx, key)
	if err != nil {
		return "", err
	}
	if setting == nil {
		return fallback, nil
	}
	return setting.Value, nil
}

// SetSetting stores a setting value and drops the cached settings list.
func (s *StaticsService) SetSetting(ctx context.Context, key, value string) error {
	if err := s.store.UpsertSetting(ctx, key, value); err != nil {
		return err
	}
	if err := s.cacheMgr.RemoveByPrefix(ctx, cache.PrefixSetting); err != nil {
		s.logger.Warn("settings cache invalidation failed", "err", err)
	}
	return nil
}

func (s *StaticsService) translatePage(ctx context.Context, p *model.StaticPage) {
	results := s.translator.TranslateBundle(ctx, map[string]string{
		"title":   p.TitleTR,
		"content": p.ContentTR,
	})

	p.TitleEN = sql.NullString{}
	p.SlugEN = sql.NullString{}
	p.ContentEN = sql.NullString{}
	if r := results["title"]; r.OK && r.TargetText != "" {
		p.TitleEN = util.NullStringFromValue(r.TargetText)
		p.SlugEN = util.NullStringFromValue(util.GenerateSlug(r.TargetText))
	}
	if r := results["content"]; r.OK {
		p.ContentEN = util.NullStringFromValue(r.TargetText)
	}
}

func (s *StaticsService) invalidatePages(ctx context.Context) {
	if err := s.cacheMgr.RemoveByPrefix(ctx, cache.PrefixPage); err != nil {
		s.logger.Warn("static page cache invalidation failed", "err", err)
	}
}
