// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler exposes the content catalog over JSON. Handlers only
// bind parameters and serialize; all behavior lives in the services.
package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/uzmanrehber/rehber-go/internal/model"
	"github.com/uzmanrehber/rehber-go/internal/service"
)

const (
	defaultListCount   = 10
	defaultSearchLimit = 20
	maxSearchLimit     = 50
)

// ContentHandler serves the public read-only endpoints.
type ContentHandler struct {
	categories *service.CategoryService
	guides     *service.GuideService
	tags       *service.TagService
	statics    *service.StaticsService
	logger     *slog.Logger
}

func NewContentHandler(categories *service.CategoryService, guides *service.GuideService,
	tags *service.TagService, statics *service.StaticsService, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{
		categories: categories,
		guides:     guides,
		tags:       tags,
		statics:    statics,
		logger:     logger,
	}
}

// requestLocale reads the lang query parameter, defaulting to Turkish.
func requestLocale(r *http.Request) string {
	if model.IsSecondaryLocale(r.URL.Query().Get("lang")) {
		return model.LocaleEN
	}
	return model.LocaleTR
}

func countParam(r *http.Request, name string, fallback, max int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n < 1 {
		return fallback
	}
	if n > max {
		return max
	}
	return n
}

// ListCategories handles GET /api/categories.
func (h *ContentHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.GetAll(r.Context(), true)
	if err != nil {
		h.logger.Error("listing categories failed", "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSONSuccess(w, map[string]any{"categories": categories})
}

// GetCategory handles GET /api/categories/{slug} - the category plus
// its guides.
func (h *ContentHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	locale := requestLocale(r)

	category, err := h.categories.GetBySlug(r.Context(), slug, locale)
	if err != nil {
		h.logger.Error("category lookup failed", "slug", slug, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if category == nil {
		writeJSONError(w, http.StatusNotFound, "Category not found")
		return
	}

	guides, err := h.guides.GetByCategory(r.Context(), category.ID, true)
	if err != nil {
		h.logger.Error("category guides lookup failed", "category_id", category.ID, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSONSuccess(w, map[string]any{"category": category, "guides": guides})
}

// ListFeaturedGuides handles GET /api/guides/featured.
func (h *ContentHandler) ListFeaturedGuides(w http.ResponseWriter, r *http.Request) {
	guides, err := h.guides.GetFeatured(r.Context(), countParam(r, "count", defaultListCount, maxSearchLimit))
	if err != nil {
		h.logger.Error("featured guides lookup failed", "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSONSuccess(w, map[string]any{"guides": guides})
}

// ListRecentGuides handles GET /api/guides/recent.
func (h *ContentHandler) ListRecentGuides(w http.ResponseWriter, r *http.Request) {
	guides, err := h.guides.GetRecent(r.Context(), countParam(r, "count", defaultListCount, maxSearchLimit))
	if err != nil {
		h.logger.Error("recent guides lookup failed", "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSONSuccess(w, map[string]any{"guides": guides})
}

// GetGuide handles GET /api/guides/{slug} - the guide with relations
// and its related guides. A successful read bumps the view counter off
// the request path.
func (h *ContentHandler) GetGuide(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	locale := requestLocale(r)

	guide, err := h.guides.GetBySlug(r.Context(), slug, locale)
	if err != nil {
		h.logger.Error("guide lookup failed", "slug", slug, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if guide == nil {
		writeJSONError(w, http.StatusNotFound, "Guide not found")
		return
	}

	related, err := h.guides.GetRelatedGuides(r.Context(), guide.ID)
	if err != nil {
		h.logger.Error("related guides lookup failed", "guide_id", guide.ID, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.guides.IncrementViewCount(guide.ID)
	writeJSONSuccess(w, map[string]any{"guide": guide, "related": related})
}

// Search handles GET /api/search.
func (h *ContentHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := countParam(r, "limit", defaultSearchLimit, maxSearchLimit)

	guides, err := h.guides.Search(r.Context(), query, requestLocale(r), limit)
	if err != nil {
		h.logger.Error("search failed", "q", query, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if guides == nil {
		guides = []model.Guide{}
	}
	writeJSONSuccess(w, map[string]any{"guides": guides})
}

// ListTags handles GET /api/tags.
func (h *ContentHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.GetAll(r.Context())
	if err != nil {
		h.logger.Error("listing tags failed", "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSONSuccess(w, map[string]any{"tags": tags})
}

// GetTag handles GET /api/tags/{slug} - the tag plus its guides.
func (h *ContentHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	locale := requestLocale(r)

	tag, err := h.tags.GetBySlug(r.Context(), slug, locale)
	if err != nil {
		h.logger.Error("tag lookup failed", "slug", slug, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if tag == nil {
		writeJSONError(w, http.StatusNotFound, "Tag not found")
		return
	}

	guides, err := h.tags.GetGuides(r.Context(), tag.ID)
	if err != nil {
		h.logger.Error("tag guides lookup failed", "tag_id", tag.ID, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSONSuccess(w, map[string]any{"tag": tag, "guides": guides})
}

// GetPage handles GET /api/pages/{slug}.
func (h *ContentHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	page, err := h.statics.GetPageBySlug(r.Context(), slug, requestLocale(r))
	if err != nil {
		h.logger.Error("static page lookup failed", "slug", slug, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if page == nil {
		writeJSONError(w, http.StatusNotFound, "Page not found")
		return
	}
	writeJSONSuccess(w, map[string]any{"page": page})
}

// Health handles GET /healthz.
func (h *ContentHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSONSuccess(w, map[string]any{"status": "ok"})
}
