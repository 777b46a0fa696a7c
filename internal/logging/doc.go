// Package logging assembles the structured slog loggers used across dubloom.
//
// It centralizes level and format plumbing, exposes context-aware helpers so
// workflow code automatically tags log lines with item IDs, stages, and
// correlation IDs, and provides a no-op logger for tests and wiring code that
// cannot fail.
package logging
