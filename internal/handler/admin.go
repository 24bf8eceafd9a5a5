// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/uzmanrehber/rehber-go/internal/cache"
	"github.com/uzmanrehber/rehber-go/internal/model"
	"github.com/uzmanrehber/rehber-go/internal/service"
)

// AdminHandler serves the token-guarded administrative endpoints:
// content writes, cache management, guide re-translation and relation
// setters.
type AdminHandler struct {
	categories *service.CategoryService
	guides     *service.GuideService
	tags       *service.TagService
	seoTags    *service.SeoTagService
	statics    *service.StaticsService
	cacheMgr   *cache.Manager
	token      string
	logger     *slog.Logger
}

func NewAdminHandler(categories *service.CategoryService, guides *service.GuideService,
	tags *service.TagService, seoTags *service.SeoTagService, statics *service.StaticsService,
	cacheMgr *cache.Manager, token string, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		categories: categories,
		guides:     guides,
		tags:       tags,
		seoTags:    seoTags,
		statics:    statics,
		cacheMgr:   cacheMgr,
		token:      token,
		logger:     logger,
	}
}

// RequireToken rejects requests without the configured bearer token.
// With no token configured the whole admin surface is disabled.
func (h *AdminHandler) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.token == "" {
			writeJSONError(w, http.StatusForbidden, "Admin API disabled")
			return
		}
		got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) != 1 {
			writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CacheStats handles GET /admin/cache/stats.
func (h *AdminHandler) CacheStats(w http.ResponseWriter, _ *http.Request) {
	stats := h.cacheMgr.Stats()
	writeJSONSuccess(w, map[string]any{"stats": stats})
}

// CacheClear handles POST /admin/cache/clear.
func (h *AdminHandler) CacheClear(w http.ResponseWriter, r *http.Request) {
	if err := h.cacheMgr.ClearAll(r.Context()); err != nil {
		h.logger.Error("cache clear failed", "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSONSuccess(w, nil)
}

// CacheRemove handles POST /admin/cache/remove?prefix=.
func (h *AdminHandler) CacheRemove(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		writeJSONError(w, http.StatusBadRequest, "prefix parameter required")
		return
	}
	if err := h.cacheMgr.RemoveByPrefix(r.Context(), prefix); err != nil {
		h.logger.Error("cache prefix removal failed", "prefix", prefix, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	h.logger.Info("cache prefix removed", "prefix", prefix)
	writeJSONSuccess(w, nil)
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// TranslateGuide handles POST /admin/guides/{id}/translate.
func (h *AdminHandler) TranslateGuide(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid guide id")
		return
	}
	guide, err := h.guides.Translate(r.Context(), id)
	if err != nil {
		h.logger.Error("guide translation failed", "guide_id", id, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSONSuccess(w, map[string]any{"guide": guide, "translated": guide.Translated})
}

type idListRequest struct {
	IDs []int64 `json:"ids"`
}

// SetGuideTags handles PUT /admin/guides/{id}/tags.
func (h *AdminHandler) SetGuideTags(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid guide id")
		return
	}
	var req idListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.guides.SetTags(r.Context(), id, req.IDs); err != nil {
		h.logger.Error("setting guide tags failed", "guide_id", id, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSONSuccess(w, nil)
}

// SetGuideSeoTags handles PUT /admin/guides/{id}/seo-tags.
func (h *AdminHandler) SetGuideSeoTags(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid guide id")
		return
	}
	var req idListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.guides.SetSeoTags(r.Context(), id, req.IDs); err != nil {
		h.logger.Error("setting guide seo tags failed", "guide_id", id, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSONSuccess(w, nil)
}

// SetRelatedGuides handles PUT /admin/guides/{id}/related.
func (h *AdminHandler) SetRelatedGuides(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid guide id")
		return
	}
	var req idListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.guides.SetRelatedGuides(r.Context(), id, req.IDs); err != nil {
		h.logger.Error("setting related guides failed", "guide_id", id, "err", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSONSuccess(w, nil)
}

// CreateCategory handles POST /admin/categories.
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var category model.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	created, err := h.categories.Create(r.Context(), &category)
	if err != nil {
		h.logger.Error("category create failed", "err", err)
		writeJSONError(w, statusForServiceError(err), err.Error())
		return
	}
	writeJSONSuccess(w, map[string]any{"category": created})
}

// UpdateCategory handles PUT /admin/categories/{id}.
func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid category id")
		return
	}
	var category model.Category
	if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	category.ID = id
	updated, err := h.categories.Update(r.Context(), &category)
	if err != nil {
		h.logger.Error("category update failed", "category_id", id, "err", err)
		writeJSONError(w, statusForServiceError(err), err.Error())
		return
	}
	writeJSONSuccess(w, map[string]any{"category": updated})
}

// DeleteCategory handles DELETE /admin/categories/{id}.
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid category id")
		return
	}
	deleted, err := h.categories.Delete(r.Context(), id)
	if err != nil {
		h.logger.Warn("category delete rejected", "category_id", id, "err", err)
		writeJSONError(w, statusForServiceError(err), err.Error())
		return
	}
	if !deleted {
		writeJSONError(w, http.StatusNotFound, "Category not found")
		return
	}
	writeJSONSuccess(w, nil)
}

// CreateGuide handles POST /admin/guides.
func (h *AdminHandler) CreateGuide(w http.ResponseWriter, r *http.Request) {
	var guide model.Guide
	if err := json.NewDecoder(r.Body).Decode(&guide); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	created, err := h.guides.Create(r.Context(), &guide)
	if err != nil {
		h.logger.Error("guide create failed", "err", err)
		writeJSONError(w, statusForServiceError(err), err.Error())
		return
	}
	writeJSONSuccess(w, map[string]any{"guide": created})
}

// UpdateGuide handles PUT /admin/guides/{id}.
func (h *AdminHandler) UpdateGuide(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid guide id")
		return
	}
	var guide model.Guide
	if err := json.NewDecoder(r.Body).Decode(&guide); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	guide.ID = id
	updated, err := h.guides.Update(r.Context(), &guide)
	if err != nil {
		h.logger.Error("guide update failed", "guide_id", id, "err", err)
		writeJSONError(w, statusForServiceError(err), err.Error())
		return
	}
	writeJSONSuccess(w, map[string]any{"guide": updated})
}

// DeleteGuide handles DELETE /admin/guides/{id}.
func (h *AdminHandler) DeleteGuide(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid guide id")
		return
	}
	deleted, err := h.guides.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("guide delete failed", "guide_id", id, "err", err)
		writeJSONError(w, statusForServiceError(err), err.Error())
		return
	}
	if !deleted {
		writeJSONError(w, http.StatusNotFound, "Guide not found")
		return
	}
	writeJSONSuccess(w, nil)
}

// statusForServiceError maps service validation errors to HTTP codes.
func statusForServiceError(err error) int {
	switch {
	case errors.Is(err, service.ErrCategoryHasGuides),
		errors.Is(err, service.ErrDuplicateSlug),
		errors.Is(err, service.ErrRequiredField):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
