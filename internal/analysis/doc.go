// Package analysis turns the raw output of a crawl into diagnostic reports.
//
// The package has four independent components:
//   - Graph metrics: depth distribution, orphan pages, link degree statistics
//   - Technical health: status classes, redirects, broken links, performance
//     outliers and indexability
//   - Content intelligence: thin content, missing metadata, exact duplicates
//     and keyword similarity groups
//   - Media accessibility: alt text coverage and image heavy pages
//
// Every function is a pure function of its inputs. Nothing here holds
// state between calls or writes anywhere, so Analyze can run the four
// components concurrently over the same read-only crawl without locks.
//
// All functions are total over well-formed input: empty collections,
// missing optional fields and zero denominators produce documented
// defaults (100% alt coverage with no images, 0 average depth with no
// pages) instead of errors or NaN.
package analysis
