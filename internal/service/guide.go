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
	"github.com/uzmanrehber/rehber-go/internal/translate"
	"github.com/uzmanrehber/rehber-go/internal/util"
)

const searchMinQueryLen = 2

// GuideStore is the system-of-record surface for guides.
type GuideStore interface {
	ListGuides(ctx context.Context, activeOnly bool) ([]model.Guide, error)
	ListGuidesByCategory(ctx context.Context, categoryID int64, activeOnly bool) ([]model.Guide, error)
	ListFeaturedGuides(ctx context.Context, count int) ([]model.Guide, error)
	ListRecentGuides(ctx context.Context, count int) ([]model.Guide, error)
	GetGuideByID(ctx context.Context, id int64) (*model.Guide, error)
	GetGuideBySlug(ctx context.Context, slug, locale string) (*model.Guide, error)
	ListRelatedGuides(ctx context.Context, guideID int64) ([]model.Guide, error)
	InsertGuide(ctx context.Context, g *model.Guide) (int64, error)
	UpdateGuide(ctx context.Context, g *model.Guide) error
	DeleteGuide(ctx context.Context, id int64) (bool, error)
	GuideExists(ctx context.Context, id int64) (bool, error)
	IncrementGuideViewCount(ctx context.Context, id int64) error
	SetGuideTags(ctx context.Context, guideID int64, tagIDs []int64) error
	SetGuideSeoTags(ctx context.Context, guideID int64, seoTagIDs []int64) error
	SetRelatedGuides(ctx context.Context, guideID int64, relatedIDs []int64) error
	SearchGuides(ctx context.Context, query, locale string, limit int) ([]model.Guide, error)
	ReplaceCodeBlocks(ctx context.Context, guideID int64, blocks []model.CodeBlock) error
	UpdateCodeBlockTranslations(ctx context.Context, guideID int64, blockID string, translations map[string]string) error
	ListCodeBlocks(ctx context.Context, guideID int64) ([]model.CodeBlock, error)
}

// GuideService resolves guides cache-aside, translates on write and
// owns the guide-side cache invalidation. Guide writes also invalidate
// the category prefix: cached category listings embed guide counts.
type GuideService struct {
	store      GuideStore
	cache      *cache.Typed[model.Guide]
	lists      *cache.Typed[[]model.Guide]
	cacheMgr   *cache.Manager
	translator Translator
	logger     *slog.Logger
}

func NewGuideService(st GuideStore, mgr *cache.Manager, tr Translator, logger *slog.Logger) *GuideService {
	return &GuideService{
		store:      st,
		cache:      cache.NewTyped[model.Guide](mgr.Backend(), guideTTL),
		lists:      cache.NewTyped[[]model.Guide](mgr.Backend(), guideTTL),
		cacheMgr:   mgr,
		translator: tr,
		logger:     logger,
	}
}

func (s *GuideService) cachedList(ctx context.Context, key string, load func() ([]model.Guide, error)) ([]model.Guide, error) {
	if hit, ok := s.lists.Get(ctx, key); ok {
		return *hit, nil
	}
	guides, err := load()
	if err != nil {
		return nil, err
	}
	if err := s.lists.Set(ctx, key, &guides); err != nil {
		s.logger.Warn("caching guide list failed", "key", key, "err", err)
	}
	return guides, nil
}

// GetAll returns all guides, optionally only active ones.
func (s *GuideService) GetAll(ctx context.Context, activeOnly bool) ([]model.Guide, error) {
	key := fmt.Sprintf("%sall_%t", cache.PrefixGuide, activeOnly)
	return s.cachedList(ctx, key, func() ([]model.Guide, error) {
		return s.store.ListGuides(ctx, activeOnly)
	})
}

// GetByCategory returns a category's guides in display order.
func (s *GuideService) GetByCategory(ctx context.Context, categoryID int64, activeOnly bool) ([]model.Guide, error) {
	key := fmt.Sprintf("%scategory_%d_%t", cache.PrefixGuide, categoryID, activeOnly)
	return s.cachedList(ctx, key, func() ([]model.Guide, error) {
		return s.store.ListGuidesByCategory(ctx, categoryID, activeOnly)
	})
}

// GetFeatured returns up to count featured guides.
func (s *GuideService) GetFeatured(ctx context.Context, count int) ([]model.Guide, error) {
	key := fmt.Sprintf("%sfeatured_%d", cache.PrefixGuide, count)
	return s.cachedList(ctx, key, func() ([]model.Guide, error) {
		return s.store.ListFeaturedGuides(ctx, count)
	})
}

// GetRecent returns up to count newest guides.
func (s *GuideService) GetRecent(ctx context.Context, count int) ([]model.Guide, error) {
	key := fmt.Sprintf("%srecent_%d", cache.PrefixGuide, count)
	return s.cachedList(ctx, key, func() ([]model.Guide, error) {
		return s.store.ListRecentGuides(ctx, count)
	})
}

// GetRelatedGuides returns a guide's related guides in display order.
func (s *GuideService) GetRelatedGuides(ctx context.Context, guideID int64) ([]model.Guide, error) {
	key := fmt.Sprintf("%srelated_%d", cache.PrefixGuide, guideID)
	return s.cachedList(ctx, key, func() ([]model.Guide, error) {
		return s.store.ListRelatedGuides(ctx, guideID)
	})
}

// GetByID returns a guide with relations, or nil when it does not exist.
func (s *GuideService) GetByID(ctx context.Context, id int64) (*model.Guide, error) {
	key := fmt.Sprintf("%s%d", cache.PrefixGuide, id)
	if hit, ok := s.cache.Get(ctx, key); ok {
		return hit, nil
	}
	g, err := s.store.GetGuideByID(ctx, id)
	if err != nil || g == nil {
		return g, err
	}
	if err := s.cache.Set(ctx, key, g); err != nil {
		s.logger.Warn("caching guide failed", "err", err)
	}
	return g, nil
}

// GetBySlug returns an active guide by its locale-specific slug, or nil.
func (s *GuideService) GetBySlug(ctx context.Context, slug, locale string) (*model.Guide, error) {
	key := fmt.Sprintf("%sslug_%s_%s", cache.PrefixGuide, slug, locale)
	if hit, ok := s.cache.Get(ctx, key); ok {
		return hit, nil
	}
	g, err := s.store.GetGuideBySlug(ctx, slug, locale)
	if err != nil || g == nil {
		return g, err
	}
	if err := s.cache.Set(ctx, key, g); err != nil {
		s.logger.Warn("caching guide failed", "err", err)
	}
	return g, nil
}

// Exists reports whether a guide row exists.
func (s *GuideService) Exists(ctx context.Context, id int64) (bool, error) {
	return s.store.GuideExists(ctx, id)
}

// Search matches title and summary in the requested locale. Queries
// shorter than two characters return an empty result without querying.
func (s *GuideService) Search(ctx context.Context, query, locale string, limit int) ([]model.Guide, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < searchMinQueryLen {
		return nil, nil
	}
	return s.store.SearchGuides(ctx, query, locale, limit)
}

// IncrementViewCount bumps the counter off the request path. Failures
// are logged and never reach the reader.
func (s *GuideService) IncrementViewCount(id int64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.store.IncrementGuideViewCount(ctx, id); err != nil {
			s.logger.Error("view count increment failed", "guide_id", id, "err", err)
		}
	}()
}

// Create slugs, translates and persists a new guide.
func (s *GuideService) Create(ctx context.Context, g *model.Guide) (*model.Guide, error) {
	if strings.TrimSpace(g.TitleTR) == "" || strings.TrimSpace(g.ContentTR) == "" {
		return nil, fmt.Errorf("guide title and content: %w", ErrRequiredField)
	}
	g.SlugTR = util.GenerateSlug(g.TitleTR)
	if g.SlugTR == "" {
		return nil, fmt.Errorf("guide title yields no slug: %w", ErrRequiredField)
	}
	s.sanitizeGuide(g)
	s.translateGuide(ctx, g)
	s.truncateMeta(g)

	g.CreatedAt = time.Now()
	if g.IsActive && !g.PublishedAt.Valid {
		g.PublishedAt = util.NullTimeNow()
	}
	id, err := s.store.InsertGuide(ctx, g)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return nil, fmt.Errorf("guide slug %q: %w", g.SlugTR, ErrDuplicateSlug)
		}
		return nil, err
	}
	g.ID = id

	s.invalidate(ctx)
	return g, nil
}

// Update overwrites a guide. The translation bundle is re-run only when
// the Turkish title, summary or content changed; unrelated edits keep
// the stored English side untouched.
func (s *GuideService) Update(ctx context.Context, g *model.Guide) (*model.Guide, error) {
	if strings.TrimSpace(g.TitleTR) == "" || strings.TrimSpace(g.ContentTR) == "" {
		return nil, fmt.Errorf("guide title and content: %w", ErrRequiredField)
	}
	stored, err := s.store.GetGuideByID(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("guide %d not found", g.ID)
	}

	g.SlugTR = util.GenerateSlug(g.TitleTR)
	s.sanitizeGuide(g)

	changed := g.TitleTR != stored.TitleTR ||
		g.SummaryTR != stored.SummaryTR ||
		g.ContentTR != stored.ContentTR
	if changed {
		s.translateGuide(ctx, g)
	} else {
		g.TitleEN = stored.TitleEN
		g.SlugEN = stored.SlugEN
		g.SummaryEN = stored.SummaryEN
		g.ContentEN = stored.ContentEN
		g.MetaDescriptionEN = stored.MetaDescriptionEN
		g.SeoKeywordsEN = stored.SeoKeywordsEN
		g.Translated = stored.Translated
	}
	s.truncateMeta(g)

	g.CreatedAt = stored.CreatedAt
	g.ViewCount = stored.ViewCount
	g.UpdatedAt = util.NullTimeNow()
	if g.IsActive && !stored.PublishedAt.Valid && !g.PublishedAt.Valid {
		g.PublishedAt = util.NullTimeNow()
	} else if !g.PublishedAt.Valid {
		g.PublishedAt = stored.PublishedAt
	}

	if err := s.store.UpdateGuide(ctx, g); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, fmt.Errorf("guide slug %q: %w", g.SlugTR, ErrDuplicateSlug)
		}
		return nil, err
	}

	s.invalidate(ctx)
	return g, nil
}

// Delete removes a guide and its relation rows.
func (s *GuideService) Delete(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.store.DeleteGuide(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.invalidate(ctx)
	}
	return deleted, nil
}

// Translate re-runs the full translation bundle for an existing guide.
// Admin-triggered retry for guides saved with Translated=false.
func (s *GuideService) Translate(ctx context.Context, id int64) (*model.Guide, error) {
	g, err := s.store.GetGuideByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, fmt.Errorf("guide %d not found", id)
	}

	s.translateGuide(ctx, g)
	s.truncateMeta(g)
	g.UpdatedAt = util.NullTimeNow()
	if err := s.store.UpdateGuide(ctx, g); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return g, nil
}

// SetTags replaces the guide's tag set.
func (s *GuideService) SetTags(ctx context.Context, guideID int64, tagIDs []int64) error {
	if err := s.store.SetGuideTags(ctx, guideID, dedup(tagIDs)); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// SetSeoTags replaces the guide's SEO tag set.
func (s *GuideService) SetSeoTags(ctx context.Context, guideID int64, seoTagIDs []int64) error {
	if err := s.store.SetGuideSeoTags(ctx, guideID, dedup(seoTagIDs)); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// SetRelatedGuides replaces the guide's related set. A self-reference
// in the input is dropped silently; the remaining order becomes the
// display rank.
func (s *GuideService) SetRelatedGuides(ctx context.Context, guideID int64, relatedIDs []int64) error {
	filtered := make([]int64, 0, len(relatedIDs))
	for _, id := range dedup(relatedIDs) {
		if id == guideID {
			continue
		}
		filtered = append(filtered, id)
	}
	if err := s.store.SetRelatedGuides(ctx, guideID, filtered); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// SetCodeBlocks replaces the guide's code samples.
func (s *GuideService) SetCodeBlocks(ctx context.Context, guideID int64, blocks []model.CodeBlock) error {
	for i := range blocks {
		if blocks[i].Translations == nil {
			blocks[i].Translations = map[string]string{}
		}
		if blocks[i].CreatedAt.IsZero() {
			blocks[i].CreatedAt = time.Now()
		}
	}
	if err := s.store.ReplaceCodeBlocks(ctx, guideID, blocks); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// TranslateCodeBlock converts one code sample into each target
// programming language, sequentially. A failed target stores the
// original source commented out so the reader still sees working code.
func (s *GuideService) TranslateCodeBlock(ctx context.Context, guideID int64, blockID string, targets []string) (map[string]string, error) {
	blocks, err := s.store.ListCodeBlocks(ctx, guideID)
	if err != nil {
		return nil, err
	}
	var block *model.CodeBlock
	for i := range blocks {
		if blocks[i].BlockID == blockID {
			block = &blocks[i]
			break
		}
	}
	if block == nil {
		return nil, fmt.Errorf("code block %q not found in guide %d", blockID, guideID)
	}

	translations := block.Translations
	if translations == nil {
		translations = map[string]string{}
	}
	for _, target := range targets {
		if target == block.SourceLanguage {
			continue
		}
		r := s.translator.TranslateCode(ctx, block.SourceLanguage, target, block.SourceCode)
		if r.OK {
			translations[target] = r.TargetText
		} else {
			translations[target] = commentedFallback(block.SourceLanguage, block.SourceCode)
		}
	}

	if err := s.store.UpdateCodeBlockTranslations(ctx, guideID, blockID, translations); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return translations, nil
}

// SuggestMetadata asks the provider for SEO metadata for a guide draft.
func (s *GuideService) SuggestMetadata(ctx context.Context, title, content string) (*translate.MetaSuggestion, error) {
	return s.translator.SuggestMetadata(ctx, title, content)
}

func (s *GuideService) sanitizeGuide(g *model.Guide) {
	g.ContentTR = sanitizeHTML(g.ContentTR)
	if g.SummaryTR.Valid {
		g.SummaryTR.String = sanitizeHTML(g.SummaryTR.String)
	}
}

// translateGuide fills the English side best-effort. Only the title
// result gates Translated; other fields fail silently into NULL.
func (s *GuideService) translateGuide(ctx context.Context, g *model.Guide) {
	fields := map[string]string{
		"title":   g.TitleTR,
		"content": g.ContentTR,
	}
	if g.SummaryTR.Valid {
		fields["summary"] = g.SummaryTR.String
	}
	if g.MetaDescriptionTR.Valid {
		fields["meta_description"] = g.MetaDescriptionTR.String
	}
	if g.SeoKeywordsTR.Valid {
		fields["seo_keywords"] = g.SeoKeywordsTR.String
	}
	results := s.translator.TranslateBundle(ctx, fields)

	g.TitleEN = sql.NullString{}
	g.SlugEN = sql.NullString{}
	g.SummaryEN = sql.NullString{}
	g.ContentEN = sql.NullString{}
	g.MetaDescriptionEN = sql.NullString{}
	g.SeoKeywordsEN = sql.NullString{}
	g.Translated = false

	if r := results["title"]; r.OK && r.TargetText != "" {
		g.TitleEN = util.NullStringFromValue(r.TargetText)
		g.SlugEN = util.NullStringFromValue(util.GenerateSlug(r.TargetText))
		g.Translated = true
	}
	if r, ok := results["summary"]; ok && r.OK {
		g.SummaryEN = util.NullStringFromValue(r.TargetText)
	}
	if r := results["content"]; r.OK {
		g.ContentEN = util.NullStringFromValue(r.TargetText)
	}
	if r, ok := results["meta_description"]; ok && r.OK {
		g.MetaDescriptionEN = util.NullStringFromValue(r.TargetText)
	}
	if r, ok := results["seo_keywords"]; ok && r.OK {
		g.SeoKeywordsEN = util.NullStringFromValue(r.TargetText)
	}
}

func (s *GuideService) truncateMeta(g *model.Guide) {
	if g.MetaDescriptionTR.Valid {
		g.MetaDescriptionTR.String = util.TruncateMeta(g.MetaDescriptionTR.String, util.MetaDescriptionMax)
	}
	if g.MetaDescriptionEN.Valid {
		g.MetaDescriptionEN.String = util.TruncateMeta(g.MetaDescriptionEN.String, util.MetaDescriptionMax)
	}
}

func (s *GuideService) invalidate(ctx context.Context) {
	for _, prefix := range []string{cache.PrefixGuide, cache.PrefixCategory} {
		if err := s.cacheMgr.RemoveByPrefix(ctx, prefix); err != nil {
			s.logger.Warn("guide cache invalidation failed", "prefix", prefix, "err", err)
		}
	}
}

func commentedFallback(sourceLang, source string) string {
	var b strings.Builder
	b.WriteString("// automatic translation unavailable, original " + sourceLang + " source:\n")
	for _, line := range strings.Split(source, "\n") {
		b.WriteString("// " + line + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func dedup(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
