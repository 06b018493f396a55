// Package logging constructs the slog loggers used across callsheet and
// provides thin attribute helpers so call sites stay terse. Two output
// formats are supported: a console handler for interactive use and the
// standard JSON handler for machine consumption.
package logging
