// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/uzmanrehber/rehber-go/internal/cache"
	"github.com/uzmanrehber/rehber-go/internal/model"
	"github.com/uzmanrehber/rehber-go/internal/store"
	"github.com/uzmanrehber/rehber-go/internal/translate"
)

// fakeTranslator answers from a map, with per-text or global failure.
type fakeTranslator struct {
	answers  map[string]string
	failAll  bool
	failText map[string]bool
	calls    atomic.Int64
}

func (f *fakeTranslator) TranslateText(_ context.Context, text string) translate.Result {
	f.calls.Add(1)
	if f.failAll || f.failText[text] {
		return translate.Result{SourceText: text}
	}
	if answer, ok := f.answers[text]; ok {
		return translate.Result{SourceText: text, TargetText: answer, OK: true}
	}
	return translate.Result{SourceText: text, TargetText: "EN " + text, OK: true}
}

func (f *fakeTranslator) TranslateBundle(ctx context.Context, fields map[string]string) map[string]translate.Result {
	results := make(map[string]translate.Result, len(fields))
	for name, text := range fields {
		results[name] = f.TranslateText(ctx, text)
	}
	return results
}

func (f *fakeTranslator) TranslateCode(_ context.Context, _, targetLang, code string) translate.Result {
	f.calls.Add(1)
	if f.failAll || f.failText[code] {
		return translate.Result{SourceText: code}
	}
	return translate.Result{SourceText: code, TargetText: targetLang + ": " + code, OK: true}
}

func (f *fakeTranslator) SuggestMetadata(context.Context, string, string) (*translate.MetaSuggestion, error) {
	return &translate.MetaSuggestion{Description: "desc", Keywords: "a, b"}, nil
}

func newTestEnv(t *testing.T) (*store.Store, *cache.Manager) {
	t.Helper()

	cfg := store.DefaultDBConfig()
	cfg.MaxOpenConns = 1
	db, err := store.NewDBWithConfig(":memory:", cfg)
	if err != nil {
		t.Fatalf("NewDBWithConfig() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	mgr := cache.NewManager(cache.NewMemoryCache(time.Minute), testLogger())
	t.Cleanup(func() { _ = mgr.Close() })
	return store.New(db), mgr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// spyCategoryStore counts slug lookups that reach the system-of-record.
type spyCategoryStore struct {
	CategoryStore
	slugCalls atomic.Int64
}

func (s *spyCategoryStore) GetCategoryBySlug(ctx context.Context, slug, locale string) (*model.Category, error) {
	s.slugCalls.Add(1)
	return s.CategoryStore.GetCategoryBySlug(ctx, slug, locale)
}

func TestCategoryCreateEndToEnd(t *testing.T) {
	st, mgr := newTestEnv(t)
	spy := &spyCategoryStore{CategoryStore: st}
	tr := &fakeTranslator{answers: map[string]string{"Veri Yapıları": "Data Structures"}}
	svc := NewCategoryService(spy, mgr, tr, testLogger())
	ctx := context.Background()

	created, err := svc.Create(ctx, &model.Category{NameTR: "Veri Yapıları", IsActive: true})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.SlugTR != "veri-yapilari" {
		t.Errorf("SlugTR = %q, want veri-yapilari", created.SlugTR)
	}
	if !created.SlugEN.Valid || created.SlugEN.String != "data-structures" {
		t.Errorf("SlugEN = %+v, want data-structures", created.SlugEN)
	}

	first, err := svc.GetBySlug(ctx, "veri-yapilari", model.LocaleTR)
	if err != nil || first == nil {
		t.Fatalf("GetBySlug() first = %+v, %v", first, err)
	}
	second, err := svc.GetBySlug(ctx, "veri-yapilari", model.LocaleTR)
	if err != nil || second == nil {
		t.Fatalf("GetBySlug() second = %+v, %v", second, err)
	}
	if got := spy.slugCalls.Load(); got != 1 {
		t.Errorf("store slug lookups = %d, want 1 (second read served from cache)", got)
	}
	if second.NameTR != "Veri Yapıları" {
		t.Errorf("cached NameTR = %q", second.NameTR)
	}
}

func TestCategoryTranslationFailureStillPersists(t *testing.T) {
	st, mgr := newTestEnv(t)
	tr := &fakeTranslator{failAll: true}
	svc := NewCategoryService(st, mgr, tr, testLogger())

	created, err := svc.Create(context.Background(), &model.Category{NameTR: "Algoritmalar", IsActive: true})
	if err != nil {
		t.Fatalf("Create() error = %v, want success despite translation failure", err)
	}
	if created.NameEN.Valid || created.SlugEN.Valid {
		t.Errorf("English side = %+v/%+v, want absent", created.NameEN, created.SlugEN)
	}
}

func TestCategoryDeleteWithGuides(t *testing.T) {
	st, mgr := newTestEnv(t)
	tr := &fakeTranslator{}
	svc := NewCategoryService(st, mgr, tr, testLogger())
	ctx := context.Background()

	created, err := svc.Create(ctx, &model.Category{NameTR: "Go", IsActive: true})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := st.InsertGuide(ctx, &model.Guide{
		CategoryID: created.ID, TitleTR: "A", SlugTR: "a", ContentTR: "x",
		IsActive: true, CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("InsertGuide() error = %v", err)
	}

	if _, err := svc.Delete(ctx, created.ID); err != ErrCategoryHasGuides {
		t.Errorf("Delete() error = %v, want ErrCategoryHasGuides", err)
	}
	still, err := svc.GetByID(ctx, created.ID)
	if err != nil || still == nil {
		t.Errorf("category gone after rejected delete: %+v, %v", still, err)
	}
}

func TestCategoryDuplicateSlug(t *testing.T) {
	st, mgr := newTestEnv(t)
	svc := NewCategoryService(st, mgr, &fakeTranslator{failAll: true}, testLogger())
	ctx := context.Background()

	if _, err := svc.Create(ctx, &model.Category{NameTR: "Go", IsActive: true}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_, err := svc.Create(ctx, &model.Category{NameTR: "Go", IsActive: true})
	if !errors.Is(err, ErrDuplicateSlug) {
		t.Errorf("Create() duplicate error = %v, want ErrDuplicateSlug", err)
	}
}

func newGuideEnv(t *testing.T) (*store.Store, *GuideService, *fakeTranslator, int64) {
	t.Helper()
	st, mgr := newTestEnv(t)
	tr := &fakeTranslator{answers: map[string]string{}}
	svc := NewGuideService(st, mgr, tr, testLogger())

	catID, err := st.InsertCategory(context.Background(), &model.Category{
		NameTR: "Go", SlugTR: "go", IsActive: true, CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("InsertCategory() error = %v", err)
	}
	return st, svc, tr, catID
}

func TestGuideCreateTranslatesAndSlugs(t *testing.T) {
	_, svc, tr, catID := newGuideEnv(t)
	tr.answers["Bağlı Listeler"] = "Linked Lists"

	created, err := svc.Create(context.Background(), &model.Guide{
		CategoryID: catID,
		TitleTR:    "Bağlı Listeler",
		ContentTR:  "<p>İçerik</p>",
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.SlugTR != "bagli-listeler" {
		t.Errorf("SlugTR = %q", created.SlugTR)
	}
	if !created.SlugEN.Valid || created.SlugEN.String != "linked-lists" {
		t.Errorf("SlugEN = %+v, want linked-lists", created.SlugEN)
	}
	if !created.Translated {
		t.Error("Translated = false, want true (title translation succeeded)")
	}
	if !created.PublishedAt.Valid {
		t.Error("PublishedAt absent for active guide")
	}
}

func TestGuidePartialTranslationFailure(t *testing.T) {
	_, svc, tr, catID := newGuideEnv(t)
	tr.failText = map[string]bool{"<p>İçerik</p>": true}

	created, err := svc.Create(context.Background(), &model.Guide{
		CategoryID: catID,
		TitleTR:    "Başlık",
		ContentTR:  "<p>İçerik</p>",
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v, want success despite content failure", err)
	}
	if !created.Translated || !created.TitleEN.Valid {
		t.Errorf("title side = translated=%v titleEN=%+v, want success", created.Translated, created.TitleEN)
	}
	if created.ContentEN.Valid {
		t.Errorf("ContentEN = %+v, want absent after its translation failed", created.ContentEN)
	}
}

func TestGuideTitleFailureClearsTranslatedFlag(t *testing.T) {
	_, svc, tr, catID := newGuideEnv(t)
	tr.failText = map[string]bool{"Başlık": true}

	created, err := svc.Create(context.Background(), &model.Guide{
		CategoryID: catID, TitleTR: "Başlık", ContentTR: "<p>x</p>", IsActive: true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Translated {
		t.Error("Translated = true, want false when title translation failed")
	}
	if created.SlugEN.Valid {
		t.Errorf("SlugEN = %+v, want absent without an English title", created.SlugEN)
	}
}

func TestGuideUpdateSkipsRetranslationWhenUnchanged(t *testing.T) {
	_, svc, tr, catID := newGuideEnv(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &model.Guide{
		CategoryID: catID, TitleTR: "Başlık", ContentTR: "<p>x</p>", IsActive: true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tr.calls.Store(0)
	updated, err := svc.Update(ctx, &model.Guide{
		ID: created.ID, CategoryID: catID,
		TitleTR: "Başlık", ContentTR: "<p>x</p>",
		IsActive: true, IsFeatured: true,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got := tr.calls.Load(); got != 0 {
		t.Errorf("translator calls = %d on unrelated edit, want 0", got)
	}
	if !updated.Translated || updated.TitleEN != created.TitleEN {
		t.Errorf("English side drifted: %+v vs %+v", updated.TitleEN, created.TitleEN)
	}

	if _, err := svc.Update(ctx, &model.Guide{
		ID: created.ID, CategoryID: catID,
		TitleTR: "Yeni Başlık", ContentTR: "<p>x</p>", IsActive: true,
	}); err != nil {
		t.Fatalf("Update() with new title error = %v", err)
	}
	if tr.calls.Load() == 0 {
		t.Error("translator calls = 0 after title change, want re-translation")
	}
}

func TestGuideCacheConsistencyAfterUpdate(t *testing.T) {
	_, svc, _, catID := newGuideEnv(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &model.Guide{
		CategoryID: catID, TitleTR: "Eski Başlık", ContentTR: "<p>x</p>", IsActive: true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	// Warm the cache.
	if _, err := svc.GetByID(ctx, created.ID); err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if _, err := svc.Update(ctx, &model.Guide{
		ID: created.ID, CategoryID: catID,
		TitleTR: "Yeni Başlık", ContentTR: "<p>x</p>", IsActive: true,
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	after, err := svc.GetByID(ctx, created.ID)
	if err != nil || after == nil {
		t.Fatalf("GetByID() after update = %+v, %v", after, err)
	}
	if after.TitleTR != "Yeni Başlık" {
		t.Errorf("TitleTR = %q after update, want new value (stale cache)", after.TitleTR)
	}
}

func TestGuideSetRelatedGuidesInvalidatesGuideCaches(t *testing.T) {
	st, mgr := newTestEnv(t)
	svc := NewGuideService(st, mgr, &fakeTranslator{answers: map[string]string{}}, testLogger())
	ctx := context.Background()

	catID, err := st.InsertCategory(ctx, &model.Category{
		NameTR: "Go", SlugTR: "go", IsActive: true, CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("InsertCategory() error = %v", err)
	}
	var ids []int64
	for _, slug := range []string{"bir", "iki"} {
		id, err := st.InsertGuide(ctx, &model.Guide{
			CategoryID: catID, TitleTR: slug, SlugTR: slug, ContentTR: "x",
			IsActive: true, CreatedAt: time.Now(),
		})
		if err != nil {
			t.Fatalf("InsertGuide() error = %v", err)
		}
		ids = append(ids, id)
	}

	// Warm list caches for guides other than the one being linked.
	if _, err := svc.GetAll(ctx, true); err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if _, err := svc.GetRelatedGuides(ctx, ids[1]); err != nil {
		t.Fatalf("GetRelatedGuides() error = %v", err)
	}

	if err := svc.SetRelatedGuides(ctx, ids[0], []int64{ids[1]}); err != nil {
		t.Fatalf("SetRelatedGuides() error = %v", err)
	}

	for _, key := range []string{
		fmt.Sprintf("%sall_%t", cache.PrefixGuide, true),
		fmt.Sprintf("%srelated_%d", cache.PrefixGuide, ids[1]),
	} {
		if _, err := mgr.Backend().Get(ctx, key); !errors.Is(err, cache.ErrCacheMiss) {
			t.Errorf("Get(%q) error = %v, want cache miss after relation write", key, err)
		}
	}
}

func TestGuideSetRelatedGuidesDropsSelf(t *testing.T) {
	st, svc, _, catID := newGuideEnv(t)
	ctx := context.Background()

	var ids []int64
	for _, slug := range []string{"ana", "yedi", "dokuz"} {
		id, err := st.InsertGuide(ctx, &model.Guide{
			CategoryID: catID, TitleTR: slug, SlugTR: slug, ContentTR: "x",
			IsActive: true, CreatedAt: time.Now(),
		})
		if err != nil {
			t.Fatalf("InsertGuide() error = %v", err)
		}
		ids = append(ids, id)
	}

	if err := svc.SetRelatedGuides(ctx, ids[0], []int64{ids[0], ids[1], ids[2]}); err != nil {
		t.Fatalf("SetRelatedGuides() error = %v", err)
	}

	links, err := st.ListRelatedGuideLinks(ctx, ids[0])
	if err != nil {
		t.Fatalf("ListRelatedGuideLinks() error = %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("stored %d links, want 2 (self dropped)", len(links))
	}
	if links[0].RelatedGuideID != ids[1] || links[0].DisplayOrder != 0 {
		t.Errorf("first link = %+v, want id %d at rank 0", links[0], ids[1])
	}
	if links[1].RelatedGuideID != ids[2] || links[1].DisplayOrder != 1 {
		t.Errorf("second link = %+v, want id %d at rank 1", links[1], ids[2])
	}
}

func TestGuideSearchMinLength(t *testing.T) {
	_, svc, _, _ := newGuideEnv(t)
	ctx := context.Background()

	got, err := svc.Search(ctx, "a", model.LocaleTR, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Search(short) returned %d results, want 0", len(got))
	}
	if _, err := svc.Search(ctx, "ab", model.LocaleTR, 10); err != nil {
		t.Errorf("Search(two chars) error = %v", err)
	}
}

func TestGuideIncrementViewCount(t *testing.T) {
	st, svc, _, catID := newGuideEnv(t)
	ctx := context.Background()

	id, err := st.InsertGuide(ctx, &model.Guide{
		CategoryID: catID, TitleTR: "A", SlugTR: "a", ContentTR: "x",
		IsActive: true, CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("InsertGuide() error = %v", err)
	}

	svc.IncrementViewCount(id)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		g, err := st.GetGuideByID(ctx, id)
		if err != nil {
			t.Fatalf("GetGuideByID() error = %v", err)
		}
		if g.ViewCount == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("view count never reached 1")
}

func TestGuideTranslateRetry(t *testing.T) {
	_, svc, tr, catID := newGuideEnv(t)
	ctx := context.Background()

	tr.failAll = true
	created, err := svc.Create(ctx, &model.Guide{
		CategoryID: catID, TitleTR: "Başlık", ContentTR: "<p>x</p>", IsActive: true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.Translated {
		t.Fatal("Translated = true with provider down")
	}

	tr.failAll = false
	tr.answers["Başlık"] = "Title"
	retried, err := svc.Translate(ctx, created.ID)
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if !retried.Translated || !retried.TitleEN.Valid || retried.TitleEN.String != "Title" {
		t.Errorf("after retry = translated=%v titleEN=%+v", retried.Translated, retried.TitleEN)
	}
	if !retried.SlugEN.Valid || retried.SlugEN.String != "title" {
		t.Errorf("SlugEN after retry = %+v", retried.SlugEN)
	}
}

func TestGuideCodeBlockTranslation(t *testing.T) {
	_, svc, tr, catID := newGuideEnv(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, &model.Guide{
		CategoryID: catID, TitleTR: "A", ContentTR: "<p>x</p>", IsActive: true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := svc.SetCodeBlocks(ctx, created.ID, []model.CodeBlock{
		{BlockID: "b1", SourceLanguage: "python", SourceCode: "print(1)"},
	}); err != nil {
		t.Fatalf("SetCodeBlocks() error = %v", err)
	}

	tr.failText = map[string]bool{}
	got, err := svc.TranslateCodeBlock(ctx, created.ID, "b1", []string{"go", "python"})
	if err != nil {
		t.Fatalf("TranslateCodeBlock() error = %v", err)
	}
	if got["go"] != "go: print(1)" {
		t.Errorf("go translation = %q", got["go"])
	}
	if _, ok := got["python"]; ok {
		t.Error("source language must not be translated to itself")
	}

	// A failing target keeps the commented-out source.
	tr.failText["print(1)"] = true
	got, err = svc.TranslateCodeBlock(ctx, created.ID, "b1", []string{"rust"})
	if err != nil {
		t.Fatalf("TranslateCodeBlock() error = %v", err)
	}
	if want := "// automatic translation unavailable, original python source:\n// print(1)"; got["rust"] != want {
		t.Errorf("rust fallback = %q, want %q", got["rust"], want)
	}
}

func TestTagCreateAndBySlug(t *testing.T) {
	st, mgr := newTestEnv(t)
	tr := &fakeTranslator{answers: map[string]string{"Bağlı Liste": "Linked List"}}
	svc := NewTagService(st, mgr, tr, testLogger())
	ctx := context.Background()

	created, err := svc.Create(ctx, &model.Tag{NameTR: "Bağlı Liste"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.SlugTR != "bagli-liste" {
		t.Errorf("SlugTR = %q", created.SlugTR)
	}
	if !created.SlugEN.Valid || created.SlugEN.String != "linked-list" {
		t.Errorf("SlugEN = %+v", created.SlugEN)
	}

	got, err := svc.GetBySlug(ctx, "linked-list", model.LocaleEN)
	if err != nil || got == nil || got.ID != created.ID {
		t.Errorf("GetBySlug(en) = %+v, %v", got, err)
	}
}

func TestStaticPageLifecycle(t *testing.T) {
	st, mgr := newTestEnv(t)
	tr := &fakeTranslator{answers: map[string]string{"Hakkında": "About"}}
	svc := NewStaticsService(st, mgr, tr, testLogger())
	ctx := context.Background()

	created, err := svc.CreatePage(ctx, &model.StaticPage{
		TitleTR: "Hakkında", ContentTR: "<p>Biz</p>", IsActive: true,
	})
	if err != nil {
		t.Fatalf("CreatePage() error = %v", err)
	}
	if created.SlugTR != "hakkinda" || !created.SlugEN.Valid || created.SlugEN.String != "about" {
		t.Errorf("slugs = %q / %+v", created.SlugTR, created.SlugEN)
	}

	got, err := svc.GetPageBySlug(ctx, "hakkinda", model.LocaleTR)
	if err != nil || got == nil {
		t.Fatalf("GetPageBySlug() = %+v, %v", got, err)
	}

	if err := svc.SetSetting(ctx, "site_title", "Uzman Rehber"); err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}
	value, err := svc.GetSetting(ctx, "site_title", "fallback")
	if err != nil || value != "Uzman Rehber" {
		t.Errorf("GetSetting() = %q, %v", value, err)
	}
	missing, err := svc.GetSetting(ctx, "missing", "fallback")
	if err != nil || missing != "fallback" {
		t.Errorf("GetSetting(missing) = %q, %v, want fallback", missing, err)
	}
}
