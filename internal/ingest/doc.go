// Package ingest is the boundary between crawler output and the analysis
// engine.
//
// A crawl export is a JSON or YAML document holding the pages, links and
// issues of one scan. Decode reads it into loosely typed records and
// Validate turns those records into the explicit model, rejecting what
// the analyses cannot work with. Page records may point at a saved HTML
// file instead of carrying title, metadata, images and keywords; the
// missing fields are then extracted from the HTML.
package ingest
