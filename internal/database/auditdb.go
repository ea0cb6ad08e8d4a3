package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/seoscan/internal/model"
)

// FileName is the name of the database file inside the data directory.
const FileName = "seoscan.db"

// AuditDB provides SQLite-based storage for crawls, scans and snapshots.
type AuditDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures AuditDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an AuditDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*AuditDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run 'seoscan import' first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw&_pragma=foreign_keys(1)"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc&_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &AuditDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Close closes the database connection.
func (adb *AuditDB) Close() error {
	return adb.db.Close()
}

// Path returns the database file path.
func (adb *AuditDB) Path() string {
	return adb.dbPath
}

// Ping checks that the database is reachable.
func (adb *AuditDB) Ping(ctx context.Context) error {
	return adb.db.PingContext(ctx)
}

// createTables creates the database schema if it doesn't exist.
func (adb *AuditDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Scans are immutable once imported; only status changes.
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id TEXT NOT NULL REFERENCES projects(id),
		created_at DATETIME NOT NULL,
		status TEXT NOT NULL,
		pages_count INTEGER NOT NULL DEFAULT 0,
		issues_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_scans_project ON scans(project_id);

	CREATE TABLE IF NOT EXISTS pages (
		scan_id INTEGER NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
		page_id INTEGER NOT NULL,
		url TEXT NOT NULL,
		title TEXT,
		http_status INTEGER,
		word_count INTEGER,
		depth INTEGER,
		is_indexable INTEGER,
		has_robots_noindex INTEGER,
		has_robots_nofollow INTEGER,
		canonical_url TEXT,
		redirect_url TEXT,
		load_time_ms INTEGER,
		first_byte_time_ms INTEGER,
		size_bytes INTEGER,
		meta_description TEXT,
		images TEXT,
		keywords TEXT,
		PRIMARY KEY (scan_id, page_id)
	);

	CREATE TABLE IF NOT EXISTS links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id INTEGER NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
		source_page_id INTEGER NOT NULL,
		destination_page_id INTEGER,
		destination_url TEXT,
		anchor_text TEXT,
		http_status INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_links_scan ON links(scan_id);

	CREATE TABLE IF NOT EXISTS issues (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id INTEGER NOT NULL REFERENCES scans(id) ON DELETE CASCADE,
		page_id INTEGER NOT NULL,
		severity TEXT NOT NULL,
		type TEXT,
		message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_issues_scan ON issues(scan_id);

	-- Snapshots keep the metrics needed to compare scans without reanalysis.
	CREATE TABLE IF NOT EXISTS scan_snapshots (
		scan_id INTEGER PRIMARY KEY REFERENCES scans(id) ON DELETE CASCADE,
		metrics TEXT NOT NULL,
		issues TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	`

	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// ImportCrawl stores a validated crawl as a new scan of its project and
// returns the scan. The project is created when it does not exist; a
// non-empty projectName updates its display name. Everything is written
// in one transaction.
func (adb *AuditDB) ImportCrawl(ctx context.Context, crawl *model.Crawl, projectName string, createdAt time.Time) (*model.Scan, error) {
	tx, err := adb.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO projects (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = CASE WHEN excluded.name = '' THEN projects.name ELSE excluded.name END`,
		crawl.ProjectID, strings.TrimSpace(projectName),
	); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}

	scan := &model.Scan{
		ProjectID:   crawl.ProjectID,
		CreatedAt:   createdAt.UTC(),
		Status:      model.ScanStatusCompleted,
		PagesCount:  len(crawl.Pages),
		IssuesCount: len(crawl.Issues),
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO scans (project_id, created_at, status, pages_count, issues_count) VALUES (?, ?, ?, ?, ?)`,
		scan.ProjectID, formatTimestamp(scan.CreatedAt), string(scan.Status), scan.PagesCount, scan.IssuesCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save scan: %w", err)
	}
	if scan.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to read scan id: %w", err)
	}

	if err := insertPages(ctx, tx, scan.ID, crawl.Pages); err != nil {
		return nil, err
	}
	if err := insertLinks(ctx, tx, scan.ID, crawl.Links); err != nil {
		return nil, err
	}
	if err := insertIssues(ctx, tx, scan.ID, crawl.Issues); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}
	return scan, nil
}

func insertPages(ctx context.Context, tx *sql.Tx, scanID int64, pages []model.Page) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO pages (scan_id, page_id, url, title, http_status, word_count, depth,
		is_indexable, has_robots_noindex, has_robots_nofollow, canonical_url, redirect_url,
		load_time_ms, first_byte_time_ms, size_bytes, meta_description, images, keywords)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range pages {
		images, err := json.Marshal(p.Images)
		if err != nil {
			return fmt.Errorf("failed to serialize images of page %d: %w", p.ID, err)
		}
		keywords, err := json.Marshal(p.Keywords)
		if err != nil {
			return fmt.Errorf("failed to serialize keywords of page %d: %w", p.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			scanID, p.ID, p.URL, p.Title, p.HTTPStatus, p.WordCount, p.Depth,
			p.IsIndexable, p.HasRobotsNoindex, p.HasRobotsNofollow, p.CanonicalURL, p.RedirectURL,
			p.LoadTimeMs, p.FirstByteTimeMs, p.SizeBytes, p.MetaDescription, string(images), string(keywords),
		); err != nil {
			return fmt.Errorf("failed to save page %d: %w", p.ID, err)
		}
	}
	return nil
}

func insertLinks(ctx context.Context, tx *sql.Tx, scanID int64, links []model.Link) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO links (scan_id, source_page_id, destination_page_id, destination_url, anchor_text, http_status)
	VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare link insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range links {
		var dest sql.NullInt64
		if l.IsInternal() {
			dest = sql.NullInt64{Int64: *l.DestinationPageID, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			scanID, l.SourcePageID, dest, l.DestinationURL, l.AnchorText, l.HTTPStatus,
		); err != nil {
			return fmt.Errorf("failed to save link: %w", err)
		}
	}
	return nil
}

func insertIssues(ctx context.Context, tx *sql.Tx, scanID int64, issues []model.Issue) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO issues (scan_id, page_id, severity, type, message) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare issue insert: %w", err)
	}
	defer stmt.Close()

	for _, is := range issues {
		if _, err := stmt.ExecContext(ctx, scanID, is.PageID, string(is.Severity), is.Type, is.Message); err != nil {
			return fmt.Errorf("failed to save issue: %w", err)
		}
	}
	return nil
}

// LoadCrawl reads back the crawl of a scan. It returns a NotFound error
// when the scan does not exist in the project.
func (adb *AuditDB) LoadCrawl(ctx context.Context, projectID string, scanID int64) (*model.Crawl, error) {
	scan, err := adb.GetScan(ctx, projectID, scanID)
	if err != nil {
		return nil, err
	}
	if scan == nil {
		return nil, model.NotFound("database.load", "scan %d in project %s", scanID, projectID)
	}

	crawl := &model.Crawl{ProjectID: projectID, ScanID: scanID}
	if crawl.Pages, err = adb.loadPages(ctx, scanID); err != nil {
		return nil, err
	}
	if crawl.Links, err = adb.loadLinks(ctx, scanID); err != nil {
		return nil, err
	}
	if crawl.Issues, err = adb.loadIssues(ctx, scanID); err != nil {
		return nil, err
	}
	return crawl, nil
}

func (adb *AuditDB) loadPages(ctx context.Context, scanID int64) ([]model.Page, error) {
	rows, err := adb.db.QueryContext(ctx, `
	SELECT page_id, url, title, http_status, word_count, depth,
		is_indexable, has_robots_noindex, has_robots_nofollow, canonical_url, redirect_url,
		load_time_ms, first_byte_time_ms, size_bytes, meta_description, images, keywords
	FROM pages WHERE scan_id = ? ORDER BY page_id`, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pages: %w", err)
	}
	defer rows.Close()

	pages := make([]model.Page, 0)
	for rows.Next() {
		var (
			p                model.Page
			images, keywords string
		)
		if err := rows.Scan(
			&p.ID, &p.URL, &p.Title, &p.HTTPStatus, &p.WordCount, &p.Depth,
			&p.IsIndexable, &p.HasRobotsNoindex, &p.HasRobotsNofollow, &p.CanonicalURL, &p.RedirectURL,
			&p.LoadTimeMs, &p.FirstByteTimeMs, &p.SizeBytes, &p.MetaDescription, &images, &keywords,
		); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		if err := json.Unmarshal([]byte(images), &p.Images); err != nil {
			return nil, model.Internal("database.load", fmt.Errorf("images of page %d: %w", p.ID, err))
		}
		if err := json.Unmarshal([]byte(keywords), &p.Keywords); err != nil {
			return nil, model.Internal("database.load", fmt.Errorf("keywords of page %d: %w", p.ID, err))
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (adb *AuditDB) loadLinks(ctx context.Context, scanID int64) ([]model.Link, error) {
	rows, err := adb.db.QueryContext(ctx, `
	SELECT source_page_id, destination_page_id, destination_url, anchor_text, http_status
	FROM links WHERE scan_id = ? ORDER BY id`, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to load links: %w", err)
	}
	defer rows.Close()

	links := make([]model.Link, 0)
	for rows.Next() {
		var (
			l    model.Link
			dest sql.NullInt64
		)
		if err := rows.Scan(&l.SourcePageID, &dest, &l.DestinationURL, &l.AnchorText, &l.HTTPStatus); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		if dest.Valid {
			id := dest.Int64
			l.DestinationPageID = &id
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (adb *AuditDB) loadIssues(ctx context.Context, scanID int64) ([]model.Issue, error) {
	rows, err := adb.db.QueryContext(ctx, `
	SELECT page_id, severity, type, message FROM issues WHERE scan_id = ? ORDER BY id`, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to load issues: %w", err)
	}
	defer rows.Close()

	issues := make([]model.Issue, 0)
	for rows.Next() {
		var (
			is       model.Issue
			severity string
		)
		if err := rows.Scan(&is.PageID, &severity, &is.Type, &is.Message); err != nil {
			return nil, fmt.Errorf("failed to scan issue: %w", err)
		}
		is.Severity = model.IssueSeverity(severity)
		issues = append(issues, is)
	}
	return issues, rows.Err()
}

// ListProjects returns every project ordered by id.
func (adb *AuditDB) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := adb.db.QueryContext(ctx, `SELECT id, name, created_at FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]model.Project, 0)
	for rows.Next() {
		var (
			p         model.Project
			createdAt string
		)
		if err := rows.Scan(&p.ID, &p.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		p.CreatedAt = parseTimestamp(createdAt)
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

const scanColumns = `id, project_id, created_at, status, pages_count, issues_count`

func scanScan(row interface{ Scan(...any) error }) (model.Scan, error) {
	var (
		s         model.Scan
		createdAt string
		status    string
	)
	if err := row.Scan(&s.ID, &s.ProjectID, &createdAt, &status, &s.PagesCount, &s.IssuesCount); err != nil {
		return model.Scan{}, err
	}
	s.CreatedAt = parseTimestamp(createdAt)
	s.Status = model.ScanStatus(status)
	return s, nil
}

// ListScans returns the scans of a project, newest first.
func (adb *AuditDB) ListScans(ctx context.Context, projectID string) ([]model.Scan, error) {
	return adb.queryScans(ctx,
		`SELECT `+scanColumns+` FROM scans WHERE project_id = ? ORDER BY created_at DESC, id DESC`,
		projectID)
}

// FindScans returns the scans matching both the project and the id.
// A well-formed database yields zero or one row.
func (adb *AuditDB) FindScans(ctx context.Context, projectID string, scanID int64) ([]model.Scan, error) {
	return adb.queryScans(ctx,
		`SELECT `+scanColumns+` FROM scans WHERE project_id = ? AND id = ?`,
		projectID, scanID)
}

func (adb *AuditDB) queryScans(ctx context.Context, query string, args ...any) ([]model.Scan, error) {
	rows, err := adb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()

	scans := make([]model.Scan, 0)
	for rows.Next() {
		s, err := scanScan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scan row: %w", err)
		}
		scans = append(scans, s)
	}
	return scans, rows.Err()
}

// GetScan returns one scan of a project, or nil when it does not exist.
func (adb *AuditDB) GetScan(ctx context.Context, projectID string, scanID int64) (*model.Scan, error) {
	row := adb.db.QueryRowContext(ctx,
		`SELECT `+scanColumns+` FROM scans WHERE project_id = ? AND id = ?`,
		projectID, scanID)
	s, err := scanScan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}
	return &s, nil
}

// IssueCounts returns the live issue counts of a scan by severity.
func (adb *AuditDB) IssueCounts(ctx context.Context, scanID int64) (model.IssueCounts, error) {
	rows, err := adb.db.QueryContext(ctx,
		`SELECT severity, COUNT(*) FROM issues WHERE scan_id = ? GROUP BY severity`, scanID)
	if err != nil {
		return model.IssueCounts{}, fmt.Errorf("failed to count issues: %w", err)
	}
	defer rows.Close()

	var counts model.IssueCounts
	for rows.Next() {
		var (
			severity string
			n        int
		)
		if err := rows.Scan(&severity, &n); err != nil {
			return model.IssueCounts{}, fmt.Errorf("failed to scan issue count: %w", err)
		}
		counts.Total += n
		switch model.IssueSeverity(severity) {
		case model.IssueCritical:
			counts.Critical += n
		case model.IssueHigh:
			counts.High += n
		case model.IssueMedium:
			counts.Medium += n
		case model.IssueLow:
			counts.Low += n
		}
	}
	return counts, rows.Err()
}

// SaveSnapshot stores or replaces the snapshot of a scan and marks the
// scan as analyzed.
func (adb *AuditDB) SaveSnapshot(ctx context.Context, snap model.ScanSnapshot) error {
	metrics, err := json.Marshal(snap.Metrics)
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot metrics: %w", err)
	}
	issues, err := json.Marshal(snap.Issues)
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot issues: %w", err)
	}
	createdAt := snap.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := adb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `
	INSERT INTO scan_snapshots (scan_id, metrics, issues, created_at) VALUES (?, ?, ?, ?)
	ON CONFLICT(scan_id) DO UPDATE SET metrics = excluded.metrics, issues = excluded.issues, created_at = excluded.created_at`,
		snap.ScanID, string(metrics), string(issues), formatTimestamp(createdAt),
	); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE scans SET status = ? WHERE id = ?`, string(model.ScanStatusAnalyzed), snap.ScanID,
	); err != nil {
		return fmt.Errorf("failed to update scan status: %w", err)
	}
	return tx.Commit()
}

// GetSnapshot returns the snapshot of a scan, or nil when there is none.
func (adb *AuditDB) GetSnapshot(ctx context.Context, scanID int64) (*model.ScanSnapshot, error) {
	var metrics, issues, createdAt string
	err := adb.db.QueryRowContext(ctx,
		`SELECT metrics, issues, created_at FROM scan_snapshots WHERE scan_id = ?`, scanID,
	).Scan(&metrics, &issues, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	snap := &model.ScanSnapshot{ScanID: scanID, CreatedAt: parseTimestamp(createdAt)}
	if err := json.Unmarshal([]byte(metrics), &snap.Metrics); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot metrics: %w", err)
	}
	if err := json.Unmarshal([]byte(issues), &snap.Issues); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot issues: %w", err)
	}
	return snap, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // written by formatTimestamp
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// formatTimestamp formats t for storage.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
