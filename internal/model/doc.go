// Package model defines the core data structures used throughout seoscan.
//
// This package contains the following main groups of types:
//   - Crawl input: Page, Link, Issue, Image, Keyword and the Crawl bundle
//   - Persistence records: Project, Scan, ScanSnapshot
//   - Analysis output: SiteArchitectureData, TechnicalHealthData,
//     ContentIntelligenceData, MediaAnalysisData and AuditReport
//   - Scan comparison output: Comparison
//
// Crawl input is immutable once validated by the ingest package. The
// analysis package never mutates these values; it only reads them and
// builds new report values.
//
// The models are designed to be serializable to JSON for the HTTP API,
// report output and database storage.
package model
