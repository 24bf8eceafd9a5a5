// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/uzmanrehber/rehber-go/internal/model"
)

// Tag management.

func (h *AdminHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var tag model.Tag
	if err := json.NewDecoder(r.Body).Decode(&tag); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	created, err := h.tags.Create(r.Context(), &tag)
	if err != nil {
		h.logger.Error("creating tag", "error", err)
		writeJSONError(w, statusForServiceError(err), err.Error())
		return
	}
	writeJSONSuccess(w, map[string]any{"tag": created})
}

func (h *AdminHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid tag id")
		return
	}
	var tag model.Tag
	if err := json.NewDecoder(r.Body).Decode(&tag); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	tag.ID = id
	updated, err := h.tags.Update(r.Context(), &tag)
	if err != nil {
		h.logger.Error("updating tag", "id", id, "error", err)
		writeJSONError(w, statusForServiceError(err), err.Error())
		return
	}
	writeJSONSuccess(w, map[string]any{"tag": updated})
}

func (h *AdminHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid tag id")
		return
	}
	deleted, err := h.tags.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("deleting tag", "id", id, "error", err)
		writeJSONError(w, statusForServiceError(err), err.Error())
		return
	}
	if !deleted {
		writeJSONError(w, http.StatusNotFound, "Tag not found")
		return
	}
	writeJSONSuccess(w, nil)
}

// SEO tag management.

func (h *AdminHandler) ListSeoTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.seoTags.GetAll(r.Context())
	if err != nil {
		h.logger.Error("listing seo tags", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSONSuccess(w, map[string]any{"seo_tags": tags})
}

func (h *AdminHandler) CreateSeoTag(w http.ResponseWriter, r *http.Request) {
	var tag model.SeoTag
	if err := json.NewDecoder(r.Body).Decode(&tag); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	created, err := h.seoTags.Create(r.Context(), &tag)
	if err != nil {
		h.logger.Error("creating seo tag", "error", err)
		writeJSONError(w, statusForServiceError(err), err.Error())
		return
	}
	writeJSONSuccess(w, map[string]any{"seo_tag": created})
}

func (h *AdminHandler) UpdateSeoTag(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid seo tag id")
		return
	}
	var tag model.SeoTag
	if err := json.NewDecoder(r.Body).Decode(&tag); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	tag.ID = id
	updated, err := h.seoTags.Update(r.Context(), &tag)
	if err != nil {
		h.logger.Error("updating seo tag", "id", id, "error", err)
		writeJSONError(w, statusForServiceError(err), err.Error())
		return
	}
	writeJSONSuccess(w, map[string]any{"seo_tag": updated})
}

func (h *AdminHandler) DeleteSeoTag(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid seo tag id")
		return
	}
	deleted, err := h.seoTags.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("deleting seo tag", "id", id, "error", err)
		writeJSONError(w, statusForServiceError(err), err.Error())
		return
	}
	if !deleted {
		writeJSONError(w, http.StatusNotFound, "SEO tag not found")
		return
	}
	writeJSONSuccess(w, nil)
}

// Static page management.

func (h *AdminHandler) ListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := h.statics.GetPages(r.Context(), false)
	if err != nil {
		h.logger.Error("listing pages", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSONSuccess(w, map[string]any{"pages": pages})
}

func (h *AdminHandler) CreatePage(w http.ResponseWriter, r *http.Request) {
	var page model.StaticPage
	if err := json.NewDecoder(r.Body).Decode(&page); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	created, err := h.statics.CreatePage(r.Context(), &page)
	if err != nil {
		h.logger.Error("creating page", "error", err)
		writeJSONError(w, statusForServiceError(err), err.Error())
		return
	}
	writeJSONSuccess(w, map[string]any{"page": created})
}

func (h *AdminHandler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid page id")
		return
	}
	var page model.StaticPage
	if err := json.NewDecoder(r.Body).Decode(&page); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	page.ID = id
	updated, err := h.statics.UpdatePage(r.Context(), &page)
	if err != nil {
		h.logger.Error("updating page", "id", id, "error", err)
		writeJSONError(w, statusForServiceError(err), err.Error())
		return
	}
	writeJSONSuccess(w, map[string]any{"page": updated})
}

func (h *AdminHandler) DeletePage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid page id")
		return
	}
	deleted, err := h.statics.DeletePage(r.Context(), id)
	if err != nil {
		h.logger.Error("deleting page", "id", id, "error", err)
		writeJSONError(w, statusForServiceError(err), err.Error())
		return
	}
	if !deleted {
		writeJSONError(w, http.StatusNotFound, "Page not found")
		return
	}
	writeJSONSuccess(w, nil)
}

// Site settings.

func (h *AdminHandler) ListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.statics.GetSettings(r.Context())
	if err != nil {
		h.logger.Error("listing settings", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSONSuccess(w, map[string]any{"settings": settings})
}

func (h *AdminHandler) SetSetting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.statics.SetSetting(r.Context(), req.Key, req.Value); err != nil {
		h.logger.Error("saving setting", "key", req.Key, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSONSuccess(w, nil)
}

// Code blocks and metadata suggestions.

func (h *AdminHandler) SetCodeBlocks(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid guide id")
		return
	}
	var req struct {
		Blocks []model.CodeBlock `json:"blocks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.guides.SetCodeBlocks(r.Context(), id, req.Blocks); err != nil {
		h.logger.Error("saving code blocks", "guide_id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSONSuccess(w, nil)
}

func (h *AdminHandler) TranslateCodeBlock(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid guide id")
		return
	}
	var req struct {
		BlockID string   `json:"block_id"`
		Targets []string `json:"targets"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BlockID == "" {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	translations, err := h.guides.TranslateCodeBlock(r.Context(), id, req.BlockID, req.Targets)
	if err != nil {
		h.logger.Error("translating code block", "guide_id", id, "block_id", req.BlockID, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSONSuccess(w, map[string]any{"translations": translations})
}

func (h *AdminHandler) SuggestMetadata(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	suggestion, err := h.guides.SuggestMetadata(r.Context(), req.Title, req.Content)
	if err != nil {
		h.logger.Error("suggesting metadata", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSONSuccess(w, map[string]any{"suggestion": suggestion})
}
