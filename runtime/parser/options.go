package parser

import (
	"log/slog"
	"time"

	"github.com/nattlua/nattlua-go/core/code"
	"github.com/nattlua/nattlua-go/core/syntax"
)

// ParserOpt represents a parser configuration option
type ParserOpt func(*ParserConfig)

// TelemetryMode controls telemetry collection (production-safe)
type TelemetryMode int

const (
	TelemetryOff    TelemetryMode = iota // Zero overhead (default)
	TelemetryBasic                       // Node and token counts only
	TelemetryTiming                      // Counts + lex/parse timing
)

// ParserConfig holds parser configuration
type ParserConfig struct {
	profile   *syntax.Profile
	source    *code.Code
	telemetry TelemetryMode
	debug     bool
	logger    *slog.Logger
	maxDepth  int
}

// WithProfile selects the operator table. Defaults to syntax.Runtime().
func WithProfile(profile *syntax.Profile) ParserOpt {
	return func(c *ParserConfig) {
		c.profile = profile
	}
}

// WithSource attaches the buffer the tokens came from, so parse errors can
// render a source snippet. Parse sets it automatically.
func WithSource(src *code.Code) ParserOpt {
	return func(c *ParserConfig) {
		c.source = src
	}
}

// WithTelemetryBasic enables basic telemetry (counts only)
func WithTelemetryBasic() ParserOpt {
	return func(c *ParserConfig) {
		c.telemetry = TelemetryBasic
	}
}

// WithTelemetryTiming enables timing telemetry (counts + timing)
func WithTelemetryTiming() ParserOpt {
	return func(c *ParserConfig) {
		c.telemetry = TelemetryTiming
	}
}

// WithDebugEvents records enter/exit events for every expression parse.
func WithDebugEvents() ParserOpt {
	return func(c *ParserConfig) {
		c.debug = true
	}
}

// WithLogger replaces the default stderr logger.
func WithLogger(logger *slog.Logger) ParserOpt {
	return func(c *ParserConfig) {
		c.logger = logger
	}
}

// WithMaxDepth bounds expression nesting. Zero disables the limit.
func WithMaxDepth(n int) ParserOpt {
	return func(c *ParserConfig) {
		c.maxDepth = n
	}
}

// ParseTelemetry holds parser performance metrics (production-safe)
type ParseTelemetry struct {
	LexTime    time.Duration // Time spent lexing (Parse only)
	ParseTime  time.Duration // Time spent parsing
	TotalTime  time.Duration // Total time
	TokenCount int           // Number of tokens, EndOfFile included
	NodeCount  int           // Number of expression nodes built
	MaxDepth   int           // Deepest expression nesting reached
	ErrorCount int           // Lex errors + parse errors
}

// DebugEvent holds debug tracing information (development only)
type DebugEvent struct {
	Timestamp time.Time
	Event     string // "enter_expression", "exit_expression", "parse_error"
	TokenPos  int    // Current token index
	Context   string // Additional context
}
