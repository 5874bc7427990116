package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
)

const NamespaceKey = "namespace"

// DefaultHandler creates a new slog handler writing to stderr with the specified parameters.
func DefaultHandler(params Parameters) slog.Handler {
	return NewHandler(params.Type, params.Level, os.Stderr)
}

// NewHandler creates a new slog handler based on the specified logger type and level.
func NewHandler(loggerType LoggerType, level slog.Level, w io.Writer) slog.Handler {
	return newTraceHandler(newHandler(loggerType, level, w), level <= slog.LevelDebug)
}

func newHandler(loggerType LoggerType, level slog.Level, w io.Writer) slog.Handler {
	switch loggerType {
	case LoggerText:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	case LoggerJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case LoggerPretty:
		type fd interface{ Fd() uintptr }
		colorize := false
		if f, ok := w.(fd); ok {
			colorize = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
		return buildPrettyHandler(w, level, colorize)
	case LoggerPrettyNoColor:
		return buildPrettyHandler(w, level, false)
	default:
		panic(fmt.Sprintf("unsupported logger type %d", loggerType))
	}
}

func buildPrettyHandler(w io.Writer, level slog.Level, colorize bool) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !colorize,
	})
}

// Named returns a logger with the namespace attribute set.
func Named(l *slog.Logger, namespace string) *slog.Logger {
	return l.With(slog.String(NamespaceKey, namespace))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type attrVisitorHandler struct {
	slog.Handler
	attrVisitor func(a slog.Attr) bool
}

func (h *attrVisitorHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.Handler.Enabled(ctx, r.Level) {
		return nil
	}
	if h.attrVisitor != nil {
		r.Attrs(h.attrVisitor)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *attrVisitorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &attrVisitorHandler{Handler: h.Handler.WithAttrs(attrs), attrVisitor: h.attrVisitor}
}

func (h *attrVisitorHandler) WithGroup(name string) slog.Handler {
	return &attrVisitorHandler{Handler: h.Handler.WithGroup(name), attrVisitor: h.attrVisitor}
}

// newTraceHandler enables stack traces of pkg/errors errors passed with Error.
func newTraceHandler(h slog.Handler, trace bool) slog.Handler {
	return &attrVisitorHandler{
		Handler: h,
		attrVisitor: func(a slog.Attr) bool {
			if a.Key != errorKey || a.Value.Kind() != slog.KindLogValuer {
				return true
			}
			if elv, ok := a.Value.Any().(errorLogValuer); ok && elv.opts != nil {
				elv.opts.trace = trace
			}
			return true
		},
	}
}

type typenamePrinter struct{ v any }

func (t typenamePrinter) MarshalText() ([]byte, error) {
	return fmt.Appendf(nil, "%T", t.v), nil
}

// Type returns a slog.Attr that contains the type name of the value.
func Type(value any) slog.Attr {
	const key = "type"
	return slog.Any(key, typenamePrinter{v: value})
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

type errTextMarshaler struct {
	err error
}

func (e errTextMarshaler) MarshalText() ([]byte, error) {
	return []byte(e.err.Error()), nil
}

type errorLogValuerOpts struct {
	trace bool
}

type errorLogValuer struct {
	err  error
	opts *errorLogValuerOpts
}

func (e errorLogValuer) LogValue() slog.Value {
	if e.err == nil {
		return slog.Value{}
	}
	const (
		msgKey   = "message"
		traceKey = "trace"
	)
	attrs := []slog.Attr{
		slog.Any(msgKey, errTextMarshaler{e.err}),
	}
	if e.opts != nil && e.opts.trace {
		if st, ok := e.err.(stackTracer); ok {
			attrs = append(attrs, slog.String(traceKey, fmt.Sprintf("%+v", st.StackTrace())))
		}
	}
	return slog.GroupValue(attrs...)
}

const errorKey = "error"

// Error returns an attribute carrying err. The stack trace of a pkg/errors error is added at debug level.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	var lvErr slog.LogValuer = errorLogValuer{
		err:  err,
		opts: new(errorLogValuerOpts),
	}
	return slog.Any(errorKey, lvErr)
}
