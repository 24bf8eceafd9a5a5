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
	"github.com/uzmanrehber/rehber-go/internal/util"
)

// SeoTagStore is the system-of-record surface for SEO tags.
type SeoTagStore interface {
	ListSeoTags(ctx context.Context) ([]model.SeoTag, error)
	GetSeoTagByID(ctx context.Context, id int64) (*model.SeoTag, error)
	InsertSeoTag(ctx context.Context, t *model.SeoTag) (int64, error)
	UpdateSeoTag(ctx context.Context, t *model.SeoTag) error
	DeleteSeoTag(ctx context.Context, id int64) (bool, error)
}

// SeoTagService resolves SEO tags cache-aside. SEO tags carry no slug,
// so there is no slug derivation on write, only name translation.
type SeoTagService struct {
	store      SeoTagStore
	lists      *cache.Typed[[]model.SeoTag]
	cacheMgr   *cache.Manager
	translator Translator
	logger     *slog.Logger
}

func NewSeoTagService(st SeoTagStore, mgr *cache.Manager, tr Translator, logger *slog.Logger) *SeoTagService {
	return &SeoTagService{
		store:      st,
		lists:      cache.NewTyped[[]model.SeoTag](mgr.Backend(), tagTTL),
		cacheMgr:   mgr,
		translator: tr,
		logger:     logger,
	}
}

// GetAll returns all SEO tags.
func (s *SeoTagService) GetAll(ctx context.Context) ([]model.SeoTag, error) {
	key := cache.PrefixSeoTag + "all"
	if hit, ok := s.lists.Get(ctx, key); ok {
		return *hit, nil
	}
	tags, err := s.store.ListSeoTags(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.lists.Set(ctx, key, &tags); err != nil {
		s.logger.Warn("caching seo tag list failed", "err", err)
	}
	return tags, nil
}

// GetByID returns an SEO tag or nil when it does not exist.
func (s *SeoTagService) GetByID(ctx context.Context, id int64) (*model.SeoTag, error) {
	return s.store.GetSeoTagByID(ctx, id)
}

// Create translates and persists a new SEO tag.
func (s *SeoTagService) Create(ctx context.Context, t *model.SeoTag) (*model.SeoTag, error) {
	if strings.TrimSpace(t.NameTR) == "" {
		return nil, fmt.Errorf("seo tag name: %w", ErrRequiredField)
	}
	s.translateSeoTag(ctx, t)

	t.CreatedAt = time.Now()
	id, err := s.store.InsertSeoTag(ctx, t)
	if err != nil {
		return nil, err
	}
	t.ID = id

	s.invalidate(ctx)
	return t, nil
}

// Update overwrites an SEO tag, re-translating only when the name changed.
func (s *SeoTagService) Update(ctx context.Context, t *model.SeoTag) (*model.SeoTag, error) {
	if strings.TrimSpace(t.NameTR) == "" {
		return nil, fmt.Errorf("seo tag name: %w", ErrRequiredField)
	}
	stored, err := s.store.GetSeoTagByID(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("seo tag %d not found", t.ID)
	}

	if t.NameTR != stored.NameTR {
		s.translateSeoTag(ctx, t)
	} else {
		t.NameEN = stored.NameEN
	}

	if err := s.store.UpdateSeoTag(ctx, t); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return t, nil
}

// Delete removes an SEO tag. Guide links cascade.
func (s *SeoTagService) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.store.DeleteSeoTag(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.invalidate(ctx)
	}
	return deleted, nil
}

func (s *SeoTagService) translateSeoTag(ctx context.Context, t *model.SeoTag) {
	t.NameEN = sql.NullString{}
	if r := s.translator.TranslateText(ctx, t.NameTR); r.OK && r.TargetText != "" {
		t.NameEN = util.NullStringFromValue(r.TargetText)
	}
}

func (s *SeoTagService) invalidate(ctx context.Context) {
	for _, prefix := range []string{cache.PrefixSeoTag, cache.PrefixGuide} {
		if err := s.cacheMgr.RemoveByPrefix(ctx, prefix); err != nil {
			s.logger.Warn("seo tag cache invalidation failed", "prefix", prefix, "err", err)
		}
	}
}
