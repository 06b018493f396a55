// Package config loads and validates callsheet configuration from TOML.
//
// Configuration sections by subsystem:
//   - Paths: project data and log directories
//   - Logging: log format and level
//   - Matching: fuzzy scene-matching threshold and score weights
//   - Cast: avatar colour palette for synthesized characters
//   - Extraction: connection settings for the per-day AI extraction service
//
// Values omitted from the file fall back to repository defaults; paths are
// tilde-expanded and validated before use.
package config
