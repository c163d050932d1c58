package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

// SetupLogger builds the process logger for the given environment. Local
// runs log human-readable text at debug level to stderr; dev and prod log
// JSON to a file under logDir, falling back to stderr when the file can't
// be opened.
func SetupLogger(env, logDir string) *slog.Logger {
	switch env {
	case envDev:
		return slog.New(slog.NewJSONHandler(
			logSink(logDir), &slog.HandlerOptions{Level: slog.LevelDebug},
		))
	case envProd:
		return slog.New(slog.NewJSONHandler(
			logSink(logDir), &slog.HandlerOptions{Level: slog.LevelInfo},
		))
	default:
		return slog.New(slog.NewTextHandler(
			os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug},
		))
	}
}

func logSink(logDir string) io.Writer {
	if logDir == "" {
		return os.Stderr
	}
	path := filepath.Join(logDir, "zapdesk.log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return os.Stderr
	}
	return io.MultiWriter(os.Stderr, file)
}
