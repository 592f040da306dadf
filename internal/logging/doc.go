// Package logging builds the process logger.
//
// Logs are JSON on stderr by default, or human-readable in debug mode.
// When a log file is configured they go to that file instead, rotated by
// size and age.
package logging
