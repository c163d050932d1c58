package sl

import "log/slog"

// Err wraps an error as a slog attribute.
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Module tags log records with the emitting component.
func Module(name string) slog.Attr {
	return slog.Attr{
		Key:   "module",
		Value: slog.StringValue(name),
	}
}

// Secret logs whether a sensitive value is set without exposing it.
func Secret(key, value string) slog.Attr {
	masked := "not set"
	if value != "" {
		masked = "set"
	}
	return slog.Attr{
		Key:   key,
		Value: slog.StringValue(masked),
	}
}
