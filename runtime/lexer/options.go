package lexer

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/nattlua/nattlua-go/core/syntax"
)

// LexerOpt represents a lexer configuration option
type LexerOpt func(*LexerConfig)

// TelemetryMode controls telemetry collection (production-safe)
type TelemetryMode int

const (
	TelemetryOff    TelemetryMode = iota // Zero overhead (default)
	TelemetryBasic                       // Token counts only
	TelemetryTiming                      // Token counts + timing per kind
)

// Default debug-code sigils. A line starting with one of them is kept as a
// single AnalyzerDebugCode or ParserDebugCode token.
const (
	DefaultAnalyzerSigil = "§"
	DefaultParserSigil   = "£"
)

// LexerConfig holds lexer configuration
type LexerConfig struct {
	profiles      []*syntax.Profile
	telemetry     TelemetryMode
	debug         bool
	logger        *slog.Logger
	analyzerSigil string
	parserSigil   string
}

// WithProfiles sets the syntax profiles tried, in order, for symbols and
// number annotations. The default is runtime then typesystem.
func WithProfiles(profiles ...*syntax.Profile) LexerOpt {
	return func(c *LexerConfig) {
		c.profiles = profiles
	}
}

// WithTelemetryBasic enables basic telemetry (token counts only)
func WithTelemetryBasic() LexerOpt {
	return func(c *LexerConfig) {
		c.telemetry = TelemetryBasic
	}
}

// WithTelemetryTiming enables timing telemetry (counts + timing per kind)
func WithTelemetryTiming() LexerOpt {
	return func(c *LexerConfig) {
		c.telemetry = TelemetryTiming
	}
}

// WithDebugEvents records a DebugEvent trail (development only)
func WithDebugEvents() LexerOpt {
	return func(c *LexerConfig) {
		c.debug = true
	}
}

// WithLogger replaces the default stderr logger
func WithLogger(logger *slog.Logger) LexerOpt {
	return func(c *LexerConfig) {
		c.logger = logger
	}
}

// WithDebugSigils overrides the analyzer and parser debug-code markers.
// An empty marker disables that token kind.
func WithDebugSigils(analyzer, parser string) LexerOpt {
	return func(c *LexerConfig) {
		c.analyzerSigil = analyzer
		c.parserSigil = parser
	}
}

// KindTelemetry holds per-kind telemetry (production-safe)
type KindTelemetry struct {
	Kind      Kind
	Count     int
	TotalTime time.Duration
	AvgTime   time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// DebugEvent holds debug tracing information (development only)
type DebugEvent struct {
	Timestamp time.Time
	Event     string // "comment_escape_open", "lex_error", ...
	Position  int    // byte offset
	Context   string
}

// DefaultLogger returns the stderr logger used when no WithLogger option is
// given. Debug records are enabled by setting envVar.
func DefaultLogger(envVar string) *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv(envVar) != "" {
		level = slog.LevelDebug
	}
	return NewLogger(os.Stderr, level)
}

// NewLogger returns a text logger on w without time and level attributes.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Remove timestamp for cleaner output
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			if a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}
