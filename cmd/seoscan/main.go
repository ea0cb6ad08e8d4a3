// Package main provides the entry point for the seoscan CLI.
//
// seoscan turns stored website crawls into SEO audit reports: site
// architecture, technical health, content quality and media
// accessibility, plus scan-to-scan comparison.
//
// Usage:
//
//	seoscan import -p acme crawl.json
//	seoscan analyze -p acme -s 1
//	seoscan compare -p acme --scan1 1 --scan2 2
//	seoscan serve
//
// See --help for all available options.
package main

// main is the entry point for seoscan.
func main() {
	Execute()
}
