package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/seoscan/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) (*AuditDB, func()) {
	t.Helper()

	tmpDir := t.TempDir()

	db, err := Open(tmpDir, DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	cleanup := func() {
		_ = db.Close()
	}

	return db, cleanup
}

func testCrawl() *model.Crawl {
	dest := int64(2)
	return &model.Crawl{
		ProjectID: "acme",
		Pages: []model.Page{
			{
				ID: 1, URL: "https://acme.example/", Title: "Home", HTTPStatus: 200,
				WordCount: 420, IsIndexable: true, LoadTimeMs: 120, SizeBytes: 2048,
				MetaDescription: "Acme home",
				Images: []model.Image{
					{Src: "https://acme.example/logo.png", Alt: strPtr("Acme")},
					{Src: "https://acme.example/hero.png"},
				},
				Keywords: []model.Keyword{{Word: "rockets", Count: 4}},
			},
			{
				ID: 2, URL: "https://acme.example/about", HTTPStatus: 200, Depth: 1,
				HasRobotsNoindex: true, CanonicalURL: "https://acme.example/about-us",
			},
		},
		Links: []model.Link{
			{SourcePageID: 1, DestinationPageID: &dest, DestinationURL: "https://acme.example/about", AnchorText: "About"},
			{SourcePageID: 2, DestinationURL: "https://other.example/", HTTPStatus: 404},
		},
		Issues: []model.Issue{
			{PageID: 1, Severity: model.IssueCritical, Type: "missing_alt"},
			{PageID: 2, Severity: model.IssueMedium, Type: "noindex"},
			{PageID: 2, Severity: model.IssueMedium, Type: "canonical"},
		},
	}
}

func strPtr(s string) *string { return &s }

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("Path() = %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false fails for missing database", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		if _, err := db.ImportCrawl(context.Background(), testCrawl(), "Acme", time.Now()); err != nil {
			t.Fatalf("ImportCrawl() error = %v", err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()

		scans, err := db.ListScans(context.Background(), "acme")
		if err != nil {
			t.Fatalf("ListScans() error = %v", err)
		}
		if len(scans) != 1 {
			t.Errorf("expected 1 scan after reopen, got %d", len(scans))
		}
	})
}

func TestImportAndLoadCrawl(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	createdAt := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	scan, err := db.ImportCrawl(ctx, testCrawl(), "Acme Corp", createdAt)
	if err != nil {
		t.Fatalf("ImportCrawl() error = %v", err)
	}
	if scan.ID <= 0 {
		t.Fatalf("expected positive scan id, got %d", scan.ID)
	}
	if scan.PagesCount != 2 || scan.IssuesCount != 3 {
		t.Errorf("counters = %d pages, %d issues", scan.PagesCount, scan.IssuesCount)
	}

	crawl, err := db.LoadCrawl(ctx, "acme", scan.ID)
	if err != nil {
		t.Fatalf("LoadCrawl() error = %v", err)
	}
	if crawl.ScanID != scan.ID || crawl.ProjectID != "acme" {
		t.Errorf("crawl identity = %s/%d", crawl.ProjectID, crawl.ScanID)
	}
	if len(crawl.Pages) != 2 || len(crawl.Links) != 2 || len(crawl.Issues) != 3 {
		t.Fatalf("loaded %d pages, %d links, %d issues", len(crawl.Pages), len(crawl.Links), len(crawl.Issues))
	}

	home := crawl.Pages[0]
	if home.Title != "Home" || home.WordCount != 420 || !home.IsIndexable || home.LoadTimeMs != 120 {
		t.Errorf("home page not round-tripped: %+v", home)
	}
	if len(home.Images) != 2 || home.Images[0].Alt == nil || *home.Images[0].Alt != "Acme" || home.Images[1].Alt != nil {
		t.Errorf("images not round-tripped: %+v", home.Images)
	}
	if len(home.Keywords) != 1 || home.Keywords[0].Count != 4 {
		t.Errorf("keywords not round-tripped: %+v", home.Keywords)
	}

	about := crawl.Pages[1]
	if about.IsIndexable || !about.HasRobotsNoindex || about.CanonicalURL != "https://acme.example/about-us" {
		t.Errorf("about page not round-tripped: %+v", about)
	}

	if crawl.Links[0].DestinationPageID == nil || *crawl.Links[0].DestinationPageID != 2 {
		t.Errorf("internal link lost its destination: %+v", crawl.Links[0])
	}
	if crawl.Links[1].DestinationPageID != nil || crawl.Links[1].HTTPStatus != 404 {
		t.Errorf("external link changed: %+v", crawl.Links[1])
	}

	stored, err := db.GetScan(ctx, "acme", scan.ID)
	if err != nil {
		t.Fatalf("GetScan() error = %v", err)
	}
	if !stored.CreatedAt.Equal(createdAt) {
		t.Errorf("CreatedAt = %v, want %v", stored.CreatedAt, createdAt)
	}
	if stored.Status != model.ScanStatusCompleted {
		t.Errorf("Status = %q", stored.Status)
	}
}

func TestLoadCrawl_NotFound(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	scan, err := db.ImportCrawl(ctx, testCrawl(), "", time.Now())
	if err != nil {
		t.Fatalf("ImportCrawl() error = %v", err)
	}

	tests := []struct {
		name    string
		project string
		id      int64
	}{
		{"unknown scan", "acme", scan.ID + 100},
		{"scan of another project", "globex", scan.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.LoadCrawl(ctx, tt.project, tt.id)
			if !errors.Is(err, model.ErrNotFound) {
				t.Errorf("LoadCrawl() error = %v, want not found", err)
			}
		})
	}
}

func TestProjectsAndScans(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	first, err := db.ImportCrawl(ctx, testCrawl(), "Acme", base)
	if err != nil {
		t.Fatalf("ImportCrawl() error = %v", err)
	}
	second, err := db.ImportCrawl(ctx, testCrawl(), "", base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("ImportCrawl() error = %v", err)
	}
	other := testCrawl()
	other.ProjectID = "globex"
	if _, err := db.ImportCrawl(ctx, other, "Globex", base); err != nil {
		t.Fatalf("ImportCrawl() error = %v", err)
	}

	projects, err := db.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if len(projects) != 2 || projects[0].ID != "acme" || projects[1].ID != "globex" {
		t.Fatalf("projects = %+v", projects)
	}
	if projects[0].Name != "Acme" {
		t.Errorf("empty name should keep the existing one, got %q", projects[0].Name)
	}

	scans, err := db.ListScans(ctx, "acme")
	if err != nil {
		t.Fatalf("ListScans() error = %v", err)
	}
	if len(scans) != 2 || scans[0].ID != second.ID || scans[1].ID != first.ID {
		t.Errorf("expected newest scan first, got %+v", scans)
	}

	found, err := db.FindScans(ctx, "acme", first.ID)
	if err != nil {
		t.Fatalf("FindScans() error = %v", err)
	}
	if len(found) != 1 || found[0].ID != first.ID {
		t.Errorf("FindScans() = %+v", found)
	}

	found, err = db.FindScans(ctx, "globex", first.ID)
	if err != nil {
		t.Fatalf("FindScans() error = %v", err)
	}
	if len(found) != 0 {
		t.Errorf("scan must not be visible from another project, got %+v", found)
	}

	missing, err := db.GetScan(ctx, "acme", 9999)
	if err != nil {
		t.Fatalf("GetScan() error = %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing scan, got %+v", missing)
	}
}

func TestIssueCounts(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	scan, err := db.ImportCrawl(ctx, testCrawl(), "", time.Now())
	if err != nil {
		t.Fatalf("ImportCrawl() error = %v", err)
	}

	counts, err := db.IssueCounts(ctx, scan.ID)
	if err != nil {
		t.Fatalf("IssueCounts() error = %v", err)
	}
	want := model.IssueCounts{Total: 3, Critical: 1, Medium: 2}
	if counts != want {
		t.Errorf("IssueCounts() = %+v, want %+v", counts, want)
	}

	empty, err := db.IssueCounts(ctx, scan.ID+1)
	if err != nil {
		t.Fatalf("IssueCounts() error = %v", err)
	}
	if empty != (model.IssueCounts{}) {
		t.Errorf("expected zero counts for unknown scan, got %+v", empty)
	}
}

func TestSnapshots(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	scan, err := db.ImportCrawl(ctx, testCrawl(), "", time.Now())
	if err != nil {
		t.Fatalf("ImportCrawl() error = %v", err)
	}

	snap, err := db.GetSnapshot(ctx, scan.ID)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if snap != nil {
		t.Fatalf("expected no snapshot before analysis, got %+v", snap)
	}

	createdAt := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)
	first := model.ScanSnapshot{
		ScanID:    scan.ID,
		Metrics:   model.SnapshotMetrics{TotalPages: 2, BrokenLinks: 1, AvgSeoScore: 79.5},
		Issues:    model.IssueCounts{Total: 3, Critical: 1, Medium: 2},
		CreatedAt: createdAt,
	}
	if err := db.SaveSnapshot(ctx, first); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	got, err := db.GetSnapshot(ctx, scan.ID)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if got == nil || got.Metrics != first.Metrics || got.Issues != first.Issues || !got.CreatedAt.Equal(createdAt) {
		t.Errorf("GetSnapshot() = %+v, want %+v", got, first)
	}

	stored, err := db.GetScan(ctx, "acme", scan.ID)
	if err != nil {
		t.Fatalf("GetScan() error = %v", err)
	}
	if stored.Status != model.ScanStatusAnalyzed {
		t.Errorf("Status = %q, want analyzed", stored.Status)
	}

	second := first
	second.Metrics.AvgSeoScore = 88
	if err := db.SaveSnapshot(ctx, second); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	got, err = db.GetSnapshot(ctx, scan.ID)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if got.Metrics.AvgSeoScore != 88 {
		t.Errorf("snapshot was not replaced: %+v", got.Metrics)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-03-01T10:30:00.5Z", time.Date(2026, 3, 1, 10, 30, 0, 500000000, time.UTC)},
		{"2026-03-01 10:30:00", time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"2026-03-01T10:30:00", time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"garbage", time.Time{}},
	}
	for _, tt := range tests {
		if got := parseTimestamp(tt.in); !got.Equal(tt.want) {
			t.Errorf("parseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
