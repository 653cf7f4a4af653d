package imrender

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// discard drops every record and reports every level disabled, so the
// attribute arguments of a disabled call are never formatted.
type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (discard) WithAttrs([]slog.Attr) slog.Handler        { return discard{} }
func (discard) WithGroup(string) slog.Handler             { return discard{} }

var silent = slog.New(discard{})

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(silent)
}

// SetLogger routes the package's diagnostics to l. The package is silent
// until a logger is set; nil makes it silent again. SetLogger may be called
// from any goroutine, including while another one renders.
//
// Every message starts with "imrender: ". Info records mark the renderer's
// lifetime: "renderer created" (with format, mode and shader attributes)
// and "renderer destroyed". Everything else is Debug and can be frequent:
//
//   - buffer growth: "vertex buffer grown" and "index buffer grown" with the
//     new capacity in bytes
//   - "draw command skipped, texture not registered" with the handle, once
//     per skipped command per frame
//   - pipeline cache activity: "pipeline built", "pipeline cache hit" and
//     "pipeline evicted", keyed by output format
//   - "font atlas uploaded" with the handle and atlas size
//
// Errors are returned to the caller, never logged.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	current.Store(l)
}

// Logger returns the logger set with SetLogger.
func Logger() *slog.Logger {
	return current.Load()
}
