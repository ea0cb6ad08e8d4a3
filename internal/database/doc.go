// Package database provides SQLite-based storage for seoscan.
//
// AuditDB stores:
//   - Projects and the scans imported for them
//   - The pages, links and issues of every scan, as produced by the crawler
//   - Scan snapshots, the point-in-time metrics used for comparison
//
// SQLite (via modernc.org/sqlite) keeps the whole history in a single
// CGO-free file. WAL mode lets the HTTP API read while an import writes.
package database
