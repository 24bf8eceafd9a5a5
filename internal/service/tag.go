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

// TagStore is the system-of-record surface for tags.
type TagStore interface {
	ListTags(ctx context.Context) ([]model.Tag, error)
	GetTagByID(ctx context.Context, id int64) (*model.Tag, error)
	GetTagBySlug(ctx context.Context, slug, locale string) (*model.Tag, error)
	ListGuidesByTag(ctx context.Context, tagID int64) ([]model.Guide, error)
	InsertTag(ctx context.Context, t *model.Tag) (int64, error)
	UpdateTag(ctx context.Context, t *model.Tag) error
	DeleteTag(ctx context.Context, id int64) (bool, error)
}

// TagService resolves tags cache-aside and translates names on write.
type TagService struct {
	store      TagStore
	cache      *cache.Typed[model.Tag]
	lists      *cache.Typed[[]model.Tag]
	guides     *cache.Typed[[]model.Guide]
	cacheMgr   *cache.Manager
	translator Translator
	logger     *slog.Logger
}

func NewTagService(st TagStore, mgr *cache.Manager, tr Translator, logger *slog.Logger) *TagService {
	return &TagService{
		store:      st,
		cache:      cache.NewTyped[model.Tag](mgr.Backend(), tagTTL),
		lists:      cache.NewTyped[[]model.Tag](mgr.Backend(), tagTTL),
		guides:     cache.NewTyped[[]model.Guide](mgr.Backend(), tagTTL),
		cacheMgr:   mgr,
		translator: tr,
		logger:     logger,
	}
}

// GetAll returns all tags.
func (s *TagService) GetAll(ctx context.Context) ([]model.Tag, error) {
	key := cache.PrefixTag + "all"
	if hit, ok := s.lists.Get(ctx, key); ok {
		return *hit, nil
	}
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.lists.Set(ctx, key, &tags); err != nil {
		s.logger.Warn("caching tag list failed", "err", err)
	}
	return tags, nil
}

// GetByID returns a tag or nil when it does not exist.
func (s *TagService) GetByID(ctx context.Context, id int64) (*model.Tag, error) {
	key := fmt.Sprintf("%s%d", cache.PrefixTag, id)
	if hit, ok := s.cache.Get(ctx, key); ok {
		return hit, nil
	}
	t, err := s.store.GetTagByID(ctx, id)
	if err != nil || t == nil {
		return t, err
	}
	if err := s.cache.Set(ctx, key, t); err != nil {
		s.logger.Warn("caching tag failed", "err", err)
	}
	return t, nil
}

// GetBySlug returns a tag by its locale-specific slug, or nil.
func (s *TagService) GetBySlug(ctx context.Context, slug, locale string) (*model.Tag, error) {
	key := fmt.Sprintf("%sslug_%s_%s", cache.PrefixTag, slug, locale)
	if hit, ok := s.cache.Get(ctx, key); ok {
		return hit, nil
	}
	t, err := s.store.GetTagBySlug(ctx, slug, locale)
	if err != nil || t == nil {
		return t, err
	}
	if err := s.cache.Set(ctx, key, t); err != nil {
		s.logger.Warn("caching tag failed", "err", err)
	}
	return t, nil
}

// GetGuides returns the tag's active guides.
func (s *TagService) GetGuides(ctx context.Context, tagID int64) ([]model.Guide, error) {
	key := fmt.Sprintf("%sguides_%d", cache.PrefixTag, tagID)
	if hit, ok := s.guides.Get(ctx, key); ok {
		return *hit, nil
	}
	guides, err := s.store.ListGuidesByTag(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if err := s.guides.Set(ctx, key, &guides); err != nil {
		s.logger.Warn("caching tag guides failed", "err", err)
	}
	return guides, nil
}

// Create slugs, translates and persists a new tag.
func (s *TagService) Create(ctx context.Context, t *model.Tag) (*model.Tag, error) {
	if strings.TrimSpace(t.NameTR) == "" {
		return nil, fmt.Errorf("tag name: %w", ErrRequiredField)
	}
	t.SlugTR = util.GenerateSlug(t.NameTR)
	if t.SlugTR == "" {
		return nil, fmt.Errorf("tag name yields no slug: %w", ErrRequiredField)
	}
	s.translateTag(ctx, t)

	t.CreatedAt = time.Now()
	id, err := s.store.InsertTag(ctx, t)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return nil, fmt.Errorf("tag slug %q: %w", t.SlugTR, ErrDuplicateSlug)
		}
		return nil, err
	}
	t.ID = id

	s.invalidate(ctx)
	return t, nil
}

// Update overwrites a tag, re-translating only when the name changed.
func (s *TagService) Update(ctx context.Context, t *model.Tag) (*model.Tag, error) {
	if strings.TrimSpace(t.NameTR) == "" {
		return nil, fmt.Errorf("tag name: %w", ErrRequiredField)
	}
	stored, err := s.store.GetTagByID(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("tag %d not found", t.ID)
	}

	t.SlugTR = util.GenerateSlug(t.NameTR)
	if t.NameTR != stored.NameTR {
		s.translateTag(ctx, t)
	} else {
		t.NameEN = stored.NameEN
		t.SlugEN = stored.SlugEN
	}

	if err := s.store.UpdateTag(ctx, t); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, fmt.Errorf("tag slug %q: %w", t.SlugTR, ErrDuplicateSlug)
		}
		return nil, err
	}

	s.invalidate(ctx)
	return t, nil
}

// Delete removes a tag. Guide links cascade.
func (s *TagService) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.store.DeleteTag(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.invalidate(ctx)
	}
	return deleted, nil
}

func (s *TagService) translateTag(ctx context.Context, t *model.Tag) {
	t.NameEN = sql.NullString{}
	t.SlugEN = sql.NullString{}
	if r := s.translator.TranslateText(ctx, t.NameTR); r.OK && r.TargetText != "" {
		t.NameEN = util.NullStringFromValue(r.TargetText)
		t.SlugEN = util.NullStringFromValue(util.GenerateSlug(r.TargetText))
	}
}

func (s *TagService) invalidate(ctx context.Context) {
	// Tag edits change listings embedded in cached guides too.
	for _, prefix := range []string{cache.PrefixTag, cache.PrefixGuide} {
		if err := s.cacheMgr.RemoveByPrefix(ctx, prefix); err != nil {
			s.logger.Warn("tag cache invalidation failed", "prefix", prefix, "err", err)
		}
	}
}
