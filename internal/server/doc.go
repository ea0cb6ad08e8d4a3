// Package server exposes audit reports, scan comparisons and CSV exports
// over a gin HTTP API.
//
// Reports are produced on demand: the first request for a scan loads its
// crawl, analyzes it on the bounded worker pool and stores a snapshot.
// The serialized report is then served from an in-memory cache until it
// expires.
//
// Error kinds map to status codes as follows:
//
//	validation            400
//	not found             404
//	rate limited          429
//	queue full            503
//	analysis timeout      504
//	anything else         500 (generic message, details only in the log)
package server
