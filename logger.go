package g3d

import (
	"log/slog"

	"github.com/gogpu/g3d/internal/logging"
)

// SetLogger configures the logger for g3d and all its sub-packages.
// By default g3d produces no log output. Pass nil to restore silence.
//
// SetLogger is safe for concurrent use.
//
// Log levels used by g3d:
//   - [slog.LevelDebug]: pipeline builds, buffer reallocations, skipped draws
//   - [slog.LevelInfo]: device selection
//   - [slog.LevelWarn]: dropped buffer writes, lights over cap, failed pipelines
//
// Example:
//
//	g3d.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger used by g3d.
func Logger() *slog.Logger {
	return logging.Logger()
}
