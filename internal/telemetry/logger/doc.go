// Package logger provides structured logging for minikv.
//
// It wraps log/slog behind a small Logger interface:
//
//   - logger.go: construction, output format, runtime level changes
//   - context.go: carrying a logger and a connection ID in a context
//   - redact.go: keeping stored values out of log lines
//
// The level is held in a process-wide slog.LevelVar so SetLevel takes
// effect on every logger already handed out, which is how the config
// watcher applies a new log.level without a restart.
package logger
