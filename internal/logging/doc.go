// Package logging builds slog loggers with the console and JSON handlers
// used across Winnow. The console handler lifts the "component" attribute
// into a line prefix so engine output reads as "scan: message k=v".
package logging
