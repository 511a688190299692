// Package cli implements the activitylens command-line interface.
//
// The commands read JSON or YAML scene files, derive clusters and render
// them. The CLI is built on cobra; status output is styled with lipgloss and
// diagnostics go through charmbracelet/log on stderr.
//
// # Commands
//
//   - derive: print clusters and the strong/weak edge split, or write them as JSON
//   - render: rasterize a timeline frame to PNG through the raster cache
//   - dot: export the derived graph as DOT, SVG or PNG
//   - timeline: scrub through a scene in time
//   - cache: manage the artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// attached to the command context and retrieved with loggerFromContext.
//
// # Configuration
//
// Defaults come from the TOML file read by internal/config; --config selects
// another file and flags override both.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// logTimeFormat prints wall-clock time with centiseconds, e.g. 14:32:01.45.
const logTimeFormat = "15:04:05.00"

// newLogger returns a timestamped logger writing to w at level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      logTimeFormat,
		Level:           level,
	})
}

// progress times one step of a command, such as loading or deriving a scene.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// startProgress begins timing a step logged through the context's logger.
func startProgress(ctx context.Context) *progress {
	return &progress{logger: loggerFromContext(ctx), start: time.Now()}
}

// done logs msg at info level with keyvals and the elapsed time rounded to
// the millisecond.
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", p.elapsed())
	p.logger.Info(msg, keyvals...)
}

func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}

type ctxKey struct{}

// withLogger attaches l to ctx.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
