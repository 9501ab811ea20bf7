package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// New returns a colored tint logger for dev and a JSON logger otherwise.
func New(w io.Writer, env string, level slog.Level, attrs ...any) *slog.Logger {
	var h slog.Handler
	if env == "dev" {
		h = tint.NewHandler(w, &tint.Options{
			Level:      level,
			AddSource:  true,
			TimeFormat: time.Kitchen,
		})
	} else {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(h).With(attrs...)
}
