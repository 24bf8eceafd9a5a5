// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/uzmanrehber/rehber-go/internal/model"
)

// newTestStore opens an in-memory database with the full schema.
// A single connection keeps every query on the same in-memory instance.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	cfg := DefaultDBConfig()
	cfg.MaxOpenConns = 1
	db, err := NewDBWithConfig(":memory:", cfg)
	if err != nil {
		t.Fatalf("NewDBWithConfig() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return New(db)
}

func mustInsertCategory(t *testing.T, s *Store, nameTR, slugTR string) int64 {
	t.Helper()
	id, err := s.InsertCategory(context.Background(), &model.Category{
		NameTR:    nameTR,
		SlugTR:    slugTR,
		IsActive:  true,
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("InsertCategory() error = %v", err)
	}
	return id
}

func mustInsertGuide(t *testing.T, s *Store, g *model.Guide) int64 {
	t.Helper()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	id, err := s.InsertGuide(context.Background(), g)
	if err != nil {
		t.Fatalf("InsertGuide() error = %v", err)
	}
	return id
}

func TestCategoryCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id := mustInsertCategory(t, s, "Veri Yapıları", "veri-yapilari")

	got, err := s.GetCategoryByID(ctx, id)
	if err != nil {
		t.Fatalf("GetCategoryByID() error = %v", err)
	}
	if got == nil || got.NameTR != "Veri Yapıları" {
		t.Fatalf("GetCategoryByID() = %+v, want Veri Yapıları", got)
	}

	bySlug, err := s.GetCategoryBySlug(ctx, "veri-yapilari", model.LocaleTR)
	if err != nil {
		t.Fatalf("GetCategoryBySlug() error = %v", err)
	}
	if bySlug == nil || bySlug.ID != id {
		t.Fatalf("GetCategoryBySlug() = %+v, want id %d", bySlug, id)
	}

	got.NameEN = sql.NullString{String: "Data Structures", Valid: true}
	got.SlugEN = sql.NullString{String: "data-structures", Valid: true}
	if err := s.UpdateCategory(ctx, got); err != nil {
		t.Fatalf("UpdateCategory() error = %v", err)
	}

	byEN, err := s.GetCategoryBySlug(ctx, "data-structures", model.LocaleEN)
	if err != nil {
		t.Fatalf("GetCategoryBySlug(en) error = %v", err)
	}
	if byEN == nil || byEN.ID != id {
		t.Fatalf("GetCategoryBySlug(en) = %+v, want id %d", byEN, id)
	}

	deleted, err := s.DeleteCategory(ctx, id)
	if err != nil || !deleted {
		t.Fatalf("DeleteCategory() = %v, %v, want true, nil", deleted, err)
	}
	gone, err := s.GetCategoryByID(ctx, id)
	if err != nil || gone != nil {
		t.Fatalf("GetCategoryByID() after delete = %+v, %v, want nil, nil", gone, err)
	}
}

func TestCategorySlugUnique(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustInsertCategory(t, s, "Algoritmalar", "algoritmalar")
	_, err := s.InsertCategory(ctx, &model.Category{
		NameTR: "Algoritmalar 2", SlugTR: "algoritmalar", IsActive: true, CreatedAt: time.Now(),
	})
	if err == nil {
		t.Fatal("InsertCategory() with duplicate slug succeeded, want error")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}
}

func TestGuideCRUDAndSlugLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	catID := mustInsertCategory(t, s, "Go", "go")

	id := mustInsertGuide(t, s, &model.Guide{
		CategoryID: catID,
		TitleTR:    "Bağlı Listeler",
		SlugTR:     "bagli-listeler",
		ContentTR:  "<p>İçerik</p>",
		IsActive:   true,
	})

	g, err := s.GetGuideByID(ctx, id)
	if err != nil {
		t.Fatalf("GetGuideByID() error = %v", err)
	}
	if g == nil || g.TitleTR != "Bağlı Listeler" {
		t.Fatalf("GetGuideByID() = %+v", g)
	}
	if g.Category == nil || g.Category.ID != catID {
		t.Errorf("GetGuideByID() category not loaded: %+v", g.Category)
	}

	bySlug, err := s.GetGuideBySlug(ctx, "bagli-listeler", model.LocaleTR)
	if err != nil {
		t.Fatalf("GetGuideBySlug() error = %v", err)
	}
	if bySlug == nil || bySlug.ID != id {
		t.Fatalf("GetGuideBySlug() = %+v, want id %d", bySlug, id)
	}

	// Inactive guides must not resolve by slug.
	g.IsActive = false
	if err := s.UpdateGuide(ctx, g); err != nil {
		t.Fatalf("UpdateGuide() error = %v", err)
	}
	hidden, err := s.GetGuideBySlug(ctx, "bagli-listeler", model.LocaleTR)
	if err != nil || hidden != nil {
		t.Fatalf("GetGuideBySlug() inactive = %+v, %v, want nil, nil", hidden, err)
	}
}

func TestGuideViewCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	catID := mustInsertCategory(t, s, "Go", "go")
	id := mustInsertGuide(t, s, &model.Guide{
		CategoryID: catID, TitleTR: "A", SlugTR: "a", ContentTR: "x", IsActive: true,
	})

	for i := 0; i < 3; i++ {
		if err := s.IncrementGuideViewCount(ctx, id); err != nil {
			t.Fatalf("IncrementGuideViewCount() error = %v", err)
		}
	}
	g, err := s.GetGuideByID(ctx, id)
	if err != nil {
		t.Fatalf("GetGuideByID() error = %v", err)
	}
	if g.ViewCount != 3 {
		t.Errorf("ViewCount = %d, want 3", g.ViewCount)
	}
}

func TestGuideTagsAndSeoTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	catID := mustInsertCategory(t, s, "Go", "go")
	guideID := mustInsertGuide(t, s, &model.Guide{
		CategoryID: catID, TitleTR: "A", SlugTR: "a", ContentTR: "x", IsActive: true,
	})

	tag1, err := s.InsertTag(ctx, &model.Tag{NameTR: "dizi", SlugTR: "dizi", CreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("InsertTag() error = %v", err)
	}
	tag2, err := s.InsertTag(ctx, &model.Tag{NameTR: "ağaç", SlugTR: "agac", CreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("InsertTag() error = %v", err)
	}
	seo, err := s.InsertSeoTag(ctx, &model.SeoTag{NameTR: "veri yapısı", CreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("InsertSeoTag() error = %v", err)
	}

	if err := s.SetGuideTags(ctx, guideID, []int64{tag1, tag2}); err != nil {
		t.Fatalf("SetGuideTags() error = %v", err)
	}
	if err := s.SetGuideSeoTags(ctx, guideID, []int64{seo}); err != nil {
		t.Fatalf("SetGuideSeoTags() error = %v", err)
	}

	g, err := s.GetGuideByID(ctx, guideID)
	if err != nil {
		t.Fatalf("GetGuideByID() error = %v", err)
	}
	if len(g.Tags) != 2 {
		t.Errorf("len(Tags) = %d, want 2", len(g.Tags))
	}
	if len(g.SeoTags) != 1 {
		t.Errorf("len(SeoTags) = %d, want 1", len(g.SeoTags))
	}

	// Replacing shrinks the set.
	if err := s.SetGuideTags(ctx, guideID, []int64{tag2}); err != nil {
		t.Fatalf("SetGuideTags() replace error = %v", err)
	}
	g, err = s.GetGuideByID(ctx, guideID)
	if err != nil {
		t.Fatalf("GetGuideByID() error = %v", err)
	}
	if len(g.Tags) != 1 || g.Tags[0].NameTR != "ağaç" {
		t.Errorf("Tags after replace = %+v, want only ağaç", g.Tags)
	}

	guides, err := s.ListGuidesByTag(ctx, tag2)
	if err != nil {
		t.Fatalf("ListGuidesByTag() error = %v", err)
	}
	if len(guides) != 1 || guides[0].ID != guideID {
		t.Errorf("ListGuidesByTag() = %+v, want guide %d", guides, guideID)
	}
}

func TestRelatedGuidesOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	catID := mustInsertCategory(t, s, "Go", "go")

	main := mustInsertGuide(t, s, &model.Guide{CategoryID: catID, TitleTR: "Ana", SlugTR: "ana", ContentTR: "x", IsActive: true})
	r1 := mustInsertGuide(t, s, &model.Guide{CategoryID: catID, TitleTR: "Bir", SlugTR: "bir", ContentTR: "x", IsActive: true})
	r2 := mustInsertGuide(t, s, &model.Guide{CategoryID: catID, TitleTR: "İki", SlugTR: "iki", ContentTR: "x", IsActive: true})
	r3 := mustInsertGuide(t, s, &model.Guide{CategoryID: catID, TitleTR: "Üç", SlugTR: "uc", ContentTR: "x", IsActive: false})

	if err := s.SetRelatedGuides(ctx, main, []int64{r2, r1, r3}); err != nil {
		t.Fatalf("SetRelatedGuides() error = %v", err)
	}

	related, err := s.ListRelatedGuides(ctx, main)
	if err != nil {
		t.Fatalf("ListRelatedGuides() error = %v", err)
	}
	// r3 is inactive and filtered; r2 before r1 per input order.
	if len(related) != 2 || related[0].ID != r2 || related[1].ID != r1 {
		t.Fatalf("ListRelatedGuides() = %+v, want [%d %d]", related, r2, r1)
	}

	links, err := s.ListRelatedGuideLinks(ctx, main)
	if err != nil {
		t.Fatalf("ListRelatedGuideLinks() error = %v", err)
	}
	if len(links) != 3 || links[0].DisplayOrder != 0 || links[2].DisplayOrder != 2 {
		t.Errorf("ListRelatedGuideLinks() = %+v, want display order 0..2", links)
	}
}

func TestSearchGuides(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	catID := mustInsertCategory(t, s, "Go", "go")

	mustInsertGuide(t, s, &model.Guide{
		CategoryID: catID, TitleTR: "Graf Teorisi", SlugTR: "graf-teorisi",
		ContentTR: "x", IsActive: true, ViewCount: 5,
	})
	mustInsertGuide(t, s, &model.Guide{
		CategoryID: catID, TitleTR: "Temel Graflar", SlugTR: "temel-graflar",
		ContentTR: "x", IsActive: true, ViewCount: 100,
	})
	mustInsertGuide(t, s, &model.Guide{
		CategoryID: catID, TitleTR: "Gizli", SlugTR: "gizli",
		SummaryTR: sql.NullString{String: "graf örnekleri", Valid: true},
		ContentTR: "x", IsActive: false,
	})

	results, err := s.SearchGuides(ctx, "graf", model.LocaleTR, 10)
	if err != nil {
		t.Fatalf("SearchGuides() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("SearchGuides() returned %d results, want 2 (inactive excluded)", len(results))
	}
	// Title-prefix match outranks higher view count.
	if results[0].TitleTR != "Graf Teorisi" {
		t.Errorf("SearchGuides() first = %q, want prefix match first", results[0].TitleTR)
	}

	// English search falls back to the Turkish title for untranslated guides.
	enResults, err := s.SearchGuides(ctx, "graf", model.LocaleEN, 10)
	if err != nil {
		t.Fatalf("SearchGuides(en) error = %v", err)
	}
	if len(enResults) != 2 {
		t.Errorf("SearchGuides(en) returned %d results, want 2", len(enResults))
	}
}

func TestCodeBlocks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	catID := mustInsertCategory(t, s, "Go", "go")
	guideID := mustInsertGuide(t, s, &model.Guide{
		CategoryID: catID, TitleTR: "A", SlugTR: "a", ContentTR: "x", IsActive: true,
	})

	blocks := []model.CodeBlock{
		{BlockID: "b1", SourceLanguage: "go", SourceCode: "package main", Translations: map[string]string{}, CreatedAt: time.Now()},
		{BlockID: "b2", SourceLanguage: "python", SourceCode: "print(1)", Translations: map[string]string{}, CreatedAt: time.Now()},
	}
	if err := s.ReplaceCodeBlocks(ctx, guideID, blocks); err != nil {
		t.Fatalf("ReplaceCodeBlocks() error = %v", err)
	}

	if err := s.UpdateCodeBlockTranslations(ctx, guideID, "b2",
		map[string]string{"go": "fmt.Println(1)"}); err != nil {
		t.Fatalf("UpdateCodeBlockTranslations() error = %v", err)
	}

	got, err := s.ListCodeBlocks(ctx, guideID)
	if err != nil {
		t.Fatalf("ListCodeBlocks() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListCodeBlocks() returned %d blocks, want 2", len(got))
	}
	if got[0].BlockID != "b1" || got[1].BlockID != "b2" {
		t.Errorf("ListCodeBlocks() order = [%s %s], want [b1 b2]", got[0].BlockID, got[1].BlockID)
	}
	if got[1].Translations["go"] != "fmt.Println(1)" {
		t.Errorf("Translations = %v, want go entry", got[1].Translations)
	}
}

func TestStaticPagesAndSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.InsertStaticPage(ctx, &model.StaticPage{
		TitleTR: "Hakkında", SlugTR: "hakkinda", ContentTR: "<p>x</p>",
		IsActive: true, CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("InsertStaticPage() error = %v", err)
	}

	p, err := s.GetStaticPageBySlug(ctx, "hakkinda", model.LocaleTR)
	if err != nil {
		t.Fatalf("GetStaticPageBySlug() error = %v", err)
	}
	if p == nil || p.ID != id {
		t.Fatalf("GetStaticPageBySlug() = %+v, want id %d", p, id)
	}

	if err := s.UpsertSetting(ctx, "site_title", "Uzman Rehber"); err != nil {
		t.Fatalf("UpsertSetting() error = %v", err)
	}
	if err := s.UpsertSetting(ctx, "site_title", "Uzman Rehber 2"); err != nil {
		t.Fatalf("UpsertSetting() update error = %v", err)
	}
	st, err := s.GetSetting(ctx, "site_title")
	if err != nil {
		t.Fatalf("GetSetting() error = %v", err)
	}
	if st == nil || st.Value != "Uzman Rehber 2" {
		t.Fatalf("GetSetting() = %+v, want updated value", st)
	}

	settings, err := s.ListSettings(ctx)
	if err != nil || len(settings) != 1 {
		t.Fatalf("ListSettings() = %+v, %v, want one row", settings, err)
	}
}

func TestVisitorLogPrune(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := &model.VisitorLog{SessionID: "s1", Path: "/", Locale: "tr", CreatedAt: time.Now().Add(-48 * time.Hour)}
	fresh := &model.VisitorLog{SessionID: "s2", Path: "/", Locale: "tr", CreatedAt: time.Now()}
	if err := s.InsertVisitorLog(ctx, old); err != nil {
		t.Fatalf("InsertVisitorLog() error = %v", err)
	}
	if err := s.InsertVisitorLog(ctx, fresh); err != nil {
		t.Fatalf("InsertVisitorLog() error = %v", err)
	}

	pruned, err := s.PruneVisitorLogs(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("PruneVisitorLogs() error = %v", err)
	}
	if pruned != 1 {
		t.Errorf("PruneVisitorLogs() = %d, want 1", pruned)
	}
	n, err := s.CountVisitorLogs(ctx)
	if err != nil || n != 1 {
		t.Errorf("CountVisitorLogs() = %d, %v, want 1", n, err)
	}
}
