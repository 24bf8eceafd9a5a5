// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRouter assembles the public API and the token-guarded admin API.
// The visitor middleware is optional; nil disables capture.
func NewRouter(content *ContentHandler, admin *AdminHandler, track func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	if track != nil {
		r.Use(track)
	}

	r.Get("/healthz", content.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", content.ListCategories)
		r.Get("/categories/{slug}", content.GetCategory)
		r.Get("/guides/featured", content.ListFeaturedGuides)
		r.Get("/guides/recent", content.ListRecentGuides)
		r.Get("/guides/{slug}", content.GetGuide)
		r.Get("/tags", content.ListTags)
		r.Get("/tags/{slug}", content.GetTag)
		r.Get("/pages/{slug}", content.GetPage)
		r.Get("/search", content.Search)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(admin.RequireToken)

		r.Get("/cache/stats", admin.CacheStats)
		r.Post("/cache/clear", admin.CacheClear)
		r.Post("/cache/remove", admin.CacheRemove)

		r.Post("/categories", admin.CreateCategory)
		r.Put("/categories/{id}", admin.UpdateCategory)
		r.Delete("/categories/{id}", admin.DeleteCategory)

		r.Post("/guides", admin.CreateGuide)
		r.Put("/guides/{id}", admin.UpdateGuide)
		r.Delete("/guides/{id}", admin.DeleteGuide)
		r.Post("/guides/{id}/translate", admin.TranslateGuide)
		r.Put("/guides/{id}/tags", admin.SetGuideTags)
		r.Put("/guides/{id}/seo-tags", admin.SetGuideSeoTags)
		r.Put("/guides/{id}/related", admin.SetRelatedGuides)
		r.Put("/guides/{id}/code-blocks", admin.SetCodeBlocks)
		r.Post("/guides/{id}/code-blocks/translate", admin.TranslateCodeBlock)
		r.Post("/guides/metadata", admin.SuggestMetadata)

		r.Post("/tags", admin.CreateTag)
		r.Put("/tags/{id}", admin.UpdateTag)
		r.Delete("/tags/{id}", admin.DeleteTag)

		r.Get("/seo-tags", admin.ListSeoTags)
		r.Post("/seo-tags", admin.CreateSeoTag)
		r.Put("/seo-tags/{id}", admin.UpdateSeoTag)
		r.Delete("/seo-tags/{id}", admin.DeleteSeoTag)

		r.Get("/pages", admin.ListPages)
		r.Post("/pages", admin.CreatePage)
		r.Put("/pages/{id}", admin.UpdatePage)
		r.Delete("/pages/{id}", admin.DeletePage)

		r.Get("/settings", admin.ListSettings)
		r.Put("/settings", admin.SetSetting)
	})

	return r
}
