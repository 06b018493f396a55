// Package main hosts the callsheet CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into store
// operations: schedule uploads, extraction runs, amendment comparison and
// merging, cross-referencing, and cast resolution. It centralizes
// configuration resolution, the single-editor lock, and structured logging
// setup so subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
