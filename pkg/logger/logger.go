package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// Config is the file configuration of a logger.
type Config struct {
	Level  string       `yaml:"level"`
	Format string       `yaml:"format"`
	Sentry SentryConfig `yaml:"sentry"`
}

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
	// MinLevel is the lowest level stored as Sentry logs; errors always
	// create issues.
	MinLevel slog.Level `yaml:"-"`
}

// Option configures New.
type Option func(*options)

type options struct {
	out        io.Writer
	level      slog.Leveler
	text       bool
	extractors []ContextExtractor
	sentry     *SentryConfig
}

// WithOutput sets where records are written. Default: stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.out = w
		}
	}
}

// WithLevel sets the minimum level. Default: info.
func WithLevel(l slog.Leveler) Option {
	return func(o *options) {
		if l != nil {
			o.level = l
		}
	}
}

// WithFormat selects "text" or "json" output. Default: json.
func WithFormat(format string) Option {
	return func(o *options) {
		o.text = strings.EqualFold(format, "text")
	}
}

// WithExtractors adds attributes extracted from the context of each record.
func WithExtractors(extractors ...ContextExtractor) Option {
	return func(o *options) {
		o.extractors = append(o.extractors, extractors...)
	}
}

// WithSentry also sends warnings and errors to Sentry. An empty DSN keeps
// logging local.
func WithSentry(cfg SentryConfig) Option {
	return func(o *options) {
		if cfg.DSN != "" {
			o.sentry = &cfg
		}
	}
}

// New creates a logger. Records are JSON on stdout at info level unless
// configured otherwise.
func New(opts ...Option) *slog.Logger {
	o := &options{out: os.Stdout, level: slog.LevelInfo}
	for _, opt := range opts {
		opt(o)
	}

	hopts := &slog.HandlerOptions{Level: o.level}
	var h slog.Handler = slog.NewJSONHandler(o.out, hopts)
	if o.text {
		h = slog.NewTextHandler(o.out, hopts)
	}

	if o.sentry != nil {
		if sh, err := newSentryHandler(*o.sentry); err != nil {
			slog.New(h).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		} else {
			h = newMultiHandler(h, sh)
		}
	}

	return slog.New(NewLogHandlerDecorator(h, o.extractors...))
}

// FromConfig creates a logger from file configuration.
func FromConfig(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	return New(
		WithLevel(ParseLevel(cfg.Level)),
		WithFormat(cfg.Format),
		WithSentry(cfg.Sentry),
		WithExtractors(extractors...),
	)
}

// ParseLevel parses "debug", "info", "warn" or "error". Anything else is
// info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func newSentryHandler(cfg SentryConfig) (slog.Handler, error) {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	}); err != nil {
		return nil, err
	}

	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if cfg.MinLevel == slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}
	return sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background()), nil
}
