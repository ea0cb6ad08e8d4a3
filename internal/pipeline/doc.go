// Package pipeline runs scan analyses.
//
// A Job carries one scan through a sequence of steps: loading the crawl
// from storage, analyzing it and saving the resulting snapshot. Each step
// implements Step and the Pipeline executes them in order, checking the
// context before every step.
//
// Pool bounds how many analyses run at once and how many may wait for a
// slot; excess submissions are rejected with ErrQueueFull instead of
// blocking. BatchProcessor analyzes many scans concurrently with an
// errgroup limit, as used by "seoscan analyze --all".
package pipeline
