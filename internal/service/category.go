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

// CategoryStore is the system-of-record surface for categories.
type CategoryStore interface {
	ListCategories(ctx context.Context, activeOnly bool) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	GetCategoryBySlug(ctx context.Context, slug, locale string) (*model.Category, error)
	InsertCategory(ctx context.Context, c *model.Category) (int64, error)
	UpdateCategory(ctx context.Context, c *model.Category) error
	DeleteCategory(ctx context.Context, id int64) (bool, error)
	CategoryExists(ctx context.Context, id int64) (bool, error)
	CategoryHasGuides(ctx context.Context, id int64) (bool, error)
}

// CategoryService resolves categories cache-aside and translates on write.
type CategoryService struct {
	store      CategoryStore
	cache      *cache.Typed[model.Category]
	lists      *cache.Typed[[]model.Category]
	cacheMgr   *cache.Manager
	translator Translator
	logger     *slog.Logger
}

func NewCategoryService(st CategoryStore, mgr *cache.Manager, tr Translator, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		store:      st,
		cache:      cache.NewTyped[model.Category](mgr.Backend(), categoryTTL),
		lists:      cache.NewTyped[[]model.Category](mgr.Backend(), categoryTTL),
		cacheMgr:   mgr,
		translator: tr,
		logger:     logger,
	}
}

// GetAll returns all categories, optionally only active ones.
func (s *CategoryService) GetAll(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	key := fmt.Sprintf("%sall_%t", cache.PrefixCategory, activeOnly)
	if hit, ok := s.lists.Get(ctx, key); ok {
		return *hit, nil
	}
	categories, err := s.store.ListCategories(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	if err := s.lists.Set(ctx, key, &categories); err != nil {
		s.logger.Warn("caching category list failed", "err", err)
	}
	return categories, nil
}

// GetByID returns a category or nil when it does not exist.
func (s *CategoryService) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	key := fmt.Sprintf("%s%d", cache.PrefixCategory, id)
	if hit, ok := s.cache.Get(ctx, key); ok {
		return hit, nil
	}
	c, err := s.store.GetCategoryByID(ctx, id)
	if err != nil || c == nil {
		return c, err
	}
	if err := s.cache.Set(ctx, key, c); err != nil {
		s.logger.Warn("caching category failed", "err", err)
	}
	return c, nil
}

// GetBySlug returns a category by its locale-specific slug, or nil.
func (s *CategoryService) GetBySlug(ctx context.Context, slug, locale string) (*model.Category, error) {
	key := fmt.Sprintf("%sslug_%s_%s", cache.PrefixCategory, slug, locale)
	if hit, ok := s.cache.Get(ctx, key); ok {
		return hit, nil
	}
	c, err := s.store.GetCategoryBySlug(ctx, slug, locale)
	if err != nil || c == nil {
		return c, err
	}
	if err := s.cache.Set(ctx, key, c); err != nil {
		s.logger.Warn("caching category failed", "err", err)
	}
	return c, nil
}

// Exists reports whether a category row exists.
func (s *CategoryService) Exists(ctx context.Context, id int64) (bool, error) {
	return s.store.CategoryExists(ctx, id)
}

// Create slugs, translates and persists a new category.
func (s *CategoryService) Create(ctx context.Context, c *model.Category) (*model.Category, error) {
	if strings.TrimSpace(c.NameTR) == "" {
		return nil, fmt.Errorf("category name: %w", ErrRequiredField)
	}
	c.SlugTR = util.GenerateSlug(c.NameTR)
	if c.SlugTR == "" {
		return nil, fmt.Errorf("category name yields no slug: %w", ErrRequiredField)
	}
	if c.DescriptionTR.Valid {
		c.DescriptionTR.String = sanitizeHTML(c.DescriptionTR.String)
	}

	s.translateCategory(ctx, c)

	c.CreatedAt = time.Now()
	id, err := s.store.InsertCategory(ctx, c)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return nil, fmt.Errorf("category slug %q: %w", c.SlugTR, ErrDuplicateSlug)
		}
		return nil, err
	}
	c.ID = id

	s.invalidate(ctx)
	return c, nil
}

// Update overwrites a category. Translation is re-run only when the
// Turkish name or description changed, so unrelated edits cost no
// provider calls and cause no English drift.
func (s *CategoryService) Update(ctx context.Context, c *model.Category) (*model.Category, error) {
	if strings.TrimSpace(c.NameTR) == "" {
		return nil, fmt.Errorf("category name: %w", ErrRequiredField)
	}
	stored, err := s.store.GetCategoryByID(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("category %d not found", c.ID)
	}

	c.SlugTR = util.GenerateSlug(c.NameTR)
	if c.DescriptionTR.Valid {
		c.DescriptionTR.String = sanitizeHTML(c.DescriptionTR.String)
	}

	if c.NameTR != stored.NameTR || c.DescriptionTR != stored.DescriptionTR {
		s.translateCategory(ctx, c)
	} else {
		c.NameEN = stored.NameEN
		c.SlugEN = stored.SlugEN
		c.DescriptionEN = stored.DescriptionEN
	}

	c.CreatedAt = stored.CreatedAt
	c.UpdatedAt = util.NullTimeNow()
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, fmt.Errorf("category slug %q: %w", c.SlugTR, ErrDuplicateSlug)
		}
		return nil, err
	}

	s.invalidate(ctx)
	return c, nil
}

// Delete removes a category unless guides still reference it.
func (s *CategoryService) Delete(ctx context.Context, id int64) (bool, error) {
	hasGuides, err := s.store.CategoryHasGuides(ctx, id)
	if err != nil {
		return false, err
	}
	if hasGuides {
		return false, ErrCategoryHasGuides
	}
	deleted, err := s.store.DeleteCategory(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.invalidate(ctx)
	}
	return deleted, nil
}

// translateCategory fills the English side best-effort. The English
// slug exists only when the name translation succeeded.
func (s *CategoryService) translateCategory(ctx context.Context, c *model.Category) {
	fields := map[string]string{"name": c.NameTR}
	if c.DescriptionTR.Valid {
		fields["description"] = c.DescriptionTR.String
	}
	results := s.translator.TranslateBundle(ctx, fields)

	c.NameEN = sql.NullString{}
	c.SlugEN = sql.NullString{}
	c.DescriptionEN = sql.NullString{}
	if r := results["name"]; r.OK && r.TargetText != "" {
		c.NameEN = util.NullStringFromValue(r.TargetText)
		c.SlugEN = util.NullStringFromValue(util.GenerateSlug(r.TargetText))
	}
	if r, ok := results["description"]; ok && r.OK {
		c.DescriptionEN = util.NullStringFromValue(r.TargetText)
	}
}

func (s *CategoryService) invalidate(ctx context.Context) {
	if err := s.cacheMgr.RemoveByPrefix(ctx, cache.PrefixCategory); err != nil {
		s.logger.Warn("category cache invalidation failed", "err", err)
	}
}
