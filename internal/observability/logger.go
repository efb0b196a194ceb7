package observability

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide JSON logger. Development gets debug
// level, production stays at info. Trace/span ids are attached whenever a
// span is active on the request context.
func NewLogger(env string) *slog.Logger {
	level := slog.LevelInfo

	if env == "development" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(NewTraceHandler(handler))
}
