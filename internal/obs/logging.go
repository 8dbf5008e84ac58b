// Package obs contains observability utilities such as logging.
package obs

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Logger is the global structured logger used by the service.
//
// It starts as slog.Default so packages can log before InitLogger runs.
var Logger = slog.Default()

// InitLogger initializes the global Logger.
//
// format "text" selects a colored console handler, anything else JSON on stdout.
func InitLogger(level, format string) {
	Logger = slog.New(NewHandler(os.Stdout, level, format))
}

// NewHandler builds the slog handler used by InitLogger.
func NewHandler(w io.Writer, level, format string) slog.Handler {
	lvl := ParseLevel(level)
	if strings.EqualFold(format, "text") {
		return tint.NewHandler(w, &tint.Options{Level: lvl, TimeFormat: time.Kitchen})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
}

// ParseLevel maps a textual level to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
