// Package lexer turns a code.Code buffer into NattLua tokens.
//
// Every whitespace or comment token is attached to the next real token as
// leading trivia, so the token list is lossless: Reassemble(tokens) returns
// the source exactly, even when the source has lex errors.
package lexer

import (
	"log/slog"
	"time"

	"github.com/nattlua/nattlua-go/core/code"
	"github.com/nattlua/nattlua-go/core/invariant"
	"github.com/nattlua/nattlua-go/core/syntax"
)

// Lexer scans one buffer. It is not safe for concurrent use; profiles are
// shared read-only.
type Lexer struct {
	src      *code.Code
	position int

	// true between --[[# and its closing ]]
	inCommentEscape bool

	profiles      []*syntax.Profile
	analyzerSigil string
	parserSigil   string
	logger        *slog.Logger

	errors []LexError

	// Telemetry (nil when disabled)
	telemetryMode TelemetryMode
	kindTelemetry map[Kind]*KindTelemetry

	// Debug (nil when disabled)
	debug       bool
	debugEvents []DebugEvent
}

// Readers are tried in order; the first one that recognizes the input wins.
var (
	whitespaceReaders = []func(*Lexer) (Kind, bool){
		(*Lexer).readRemainingCommentEscape,
		(*Lexer).readSpace,
		(*Lexer).readCommentEscape,
		(*Lexer).readMultilineCComment,
		(*Lexer).readLineCComment,
		(*Lexer).readMultilineComment,
		(*Lexer).readLineComment,
	}

	nonWhitespaceReaders = []func(*Lexer) (Kind, bool){
		(*Lexer).readAnalyzerDebugCode,
		(*Lexer).readParserDebugCode,
		(*Lexer).readHexNumber,
		(*Lexer).readBinaryNumber,
		(*Lexer).readDecimalNumber,
		(*Lexer).readMultilineString,
		(*Lexer).readSingleQuotedString,
		(*Lexer).readDoubleQuotedString,
		(*Lexer).readLetter,
		(*Lexer).readSymbol,
	}
)

// New creates a lexer over src.
func New(src *code.Code, opts ...LexerOpt) *Lexer {
	invariant.NotNil(src, "code")

	config := &LexerConfig{
		analyzerSigil: DefaultAnalyzerSigil,
		parserSigil:   DefaultParserSigil,
	}
	for _, opt := range opts {
		opt(config)
	}
	if len(config.profiles) == 0 {
		config.profiles = syntax.Profiles()
	}
	if config.logger == nil {
		config.logger = DefaultLogger("NATTLUA_DEBUG_LEXER")
	}

	l := &Lexer{
		src:           src,
		profiles:      config.profiles,
		analyzerSigil: config.analyzerSigil,
		parserSigil:   config.parserSigil,
		logger:        config.logger,
		telemetryMode: config.telemetry,
		debug:         config.debug,
	}

	if config.telemetry > TelemetryOff {
		l.kindTelemetry = make(map[Kind]*KindTelemetry)
	}
	if config.debug {
		l.debugEvents = make([]DebugEvent, 0, 64)
	}
	return l
}

// TokenizeString is a shorthand for lexing an in-memory snippet.
func TokenizeString(src string, opts ...LexerOpt) ([]Token, []LexError) {
	return New(code.FromString(src, "string"), opts...).Tokenize()
}

// Reset rewinds the lexer to the start of its buffer.
func (l *Lexer) Reset() {
	l.position = 0
	l.inCommentEscape = false
	l.errors = l.errors[:0]

	for k := range l.kindTelemetry {
		delete(l.kindTelemetry, k)
	}
	if l.debugEvents != nil {
		l.debugEvents = l.debugEvents[:0]
	}
}

// Tokenize lexes the whole buffer. The result always ends with exactly one
// EndOfFile token; errors are returned alongside, never instead of, tokens.
func (l *Lexer) Tokenize() ([]Token, []LexError) {
	l.Reset()

	tokens := make([]Token, 0, l.src.Len()/4+1)
	for {
		tok := l.ReadToken()
		tokens = append(tokens, tok)
		if tok.Kind == EndOfFile {
			break
		}
	}

	invariant.Postcondition(l.position == l.src.Len(), "lexer stopped at %d of %d", l.position, l.src.Len())
	if l.inCommentEscape {
		l.logger.Debug("comment escape still open at end of code", "source", l.src.Name())
	}

	return tokens, l.Errors()
}

// ReadToken returns the next non-trivia token with the trivia before it.
// After EndOfFile it keeps returning EndOfFile.
func (l *Lexer) ReadToken() Token {
	var leading []Token
	for {
		tok := l.readSingleToken()
		if tok.Kind.IsTrivia() {
			leading = append(leading, tok)
			continue
		}
		tok.Leading = leading
		return tok
	}
}

// Errors returns the errors recorded since the last Reset.
func (l *Lexer) Errors() []LexError {
	if len(l.errors) == 0 {
		return nil
	}
	out := make([]LexError, len(l.errors))
	copy(out, l.errors)
	return out
}

// CommentEscapeOpen reports whether a --[[# region is still open.
func (l *Lexer) CommentEscapeOpen() bool { return l.inCommentEscape }

// Position returns the current byte offset.
func (l *Lexer) Position() int { return l.position }

func (l *Lexer) readSingleToken() Token {
	var started time.Time
	if l.telemetryMode >= TelemetryTiming {
		started = time.Now()
	}

	start := l.position
	kind, ok := l.readShebang()
	if !ok && l.theEnd() {
		kind, ok = EndOfFile, true
	}
	if !ok {
		kind, ok = l.readFirst(whitespaceReaders)
	}
	if !ok {
		kind, ok = l.readFirst(nonWhitespaceReaders)
	}
	if !ok {
		kind = l.readUnknown()
	}

	if kind != EndOfFile {
		invariant.Advanced(start, l.position, "readSingleToken")
	}
	invariant.Span(start, l.position, l.src.Len(), kind.String())

	if l.telemetryMode > TelemetryOff {
		var elapsed time.Duration
		if l.telemetryMode >= TelemetryTiming {
			elapsed = time.Since(started)
		}
		l.recordKindTelemetry(kind, elapsed)
	}

	return Token{
		Kind:  kind,
		Start: start,
		Stop:  l.position,
		Text:  l.src.Slice(start, l.position),
	}
}

func (l *Lexer) readFirst(readers []func(*Lexer) (Kind, bool)) (Kind, bool) {
	for _, read := range readers {
		if kind, ok := read(l); ok {
			return kind, true
		}
	}
	return 0, false
}

func (l *Lexer) readLetter() (Kind, bool) {
	if !syntax.IsLetter(l.byteAt(0)) {
		return 0, false
	}
	l.position++
	for !l.theEnd() && syntax.IsDuringLetter(l.byteAt(0)) {
		l.position++
	}
	return Letter, true
}

// readSymbol takes the longest symbol of the first profile that has a match.
func (l *Lexer) readSymbol() (Kind, bool) {
	rest := l.rest()
	for _, p := range l.profiles {
		if sym, ok := p.MatchSymbol(rest); ok {
			l.position += len(sym)
			return Symbol, true
		}
	}
	return 0, false
}

func (l *Lexer) readUnknown() Kind {
	l.position++
	return Unknown
}

// Cursor helpers. Offsets are relative to the current position.

func (l *Lexer) theEnd() bool { return l.position >= l.src.Len() }

func (l *Lexer) byteAt(offset int) byte { return l.src.Byte(l.position + offset) }

func (l *Lexer) readByte() byte {
	b := l.src.Byte(l.position)
	l.position++
	return b
}

func (l *Lexer) isString(value string) bool { return l.src.HasPrefixAt(l.position, value) }

func (l *Lexer) isStringAt(value string, offset int) bool {
	return l.src.HasPrefixAt(l.position+offset, value)
}

func (l *Lexer) rest() string { return l.src.Slice(l.position, l.src.Len()) }

// peekText returns the byte under the cursor as text, or "" at the end.
func (l *Lexer) peekText() string { return l.src.Slice(l.position, l.position+1) }

// GetKindTelemetry returns per-kind telemetry (production safe)
func (l *Lexer) GetKindTelemetry() map[Kind]*KindTelemetry {
	if l.telemetryMode == TelemetryOff || l.kindTelemetry == nil {
		return nil
	}

	result := make(map[Kind]*KindTelemetry, len(l.kindTelemetry))
	for k, v := range l.kindTelemetry {
		telemetryCopy := *v
		result[k] = &telemetryCopy
	}
	return result
}

// GetDebugEvents returns debug events (development only)
func (l *Lexer) GetDebugEvents() []DebugEvent {
	if !l.debug || l.debugEvents == nil {
		return nil
	}

	result := make([]DebugEvent, len(l.debugEvents))
	copy(result, l.debugEvents)
	return result
}

func (l *Lexer) recordKindTelemetry(kind Kind, elapsed time.Duration) {
	telemetry, exists := l.kindTelemetry[kind]
	if !exists {
		telemetry = &KindTelemetry{Kind: kind, MinTime: elapsed, MaxTime: elapsed}
		l.kindTelemetry[kind] = telemetry
	}

	telemetry.Count++

	if l.telemetryMode >= TelemetryTiming {
		telemetry.TotalTime += elapsed
		telemetry.AvgTime = telemetry.TotalTime / time.Duration(telemetry.Count)
		if elapsed < telemetry.MinTime {
			telemetry.MinTime = elapsed
		}
		if elapsed > telemetry.MaxTime {
			telemetry.MaxTime = elapsed
		}
	}
}

func (l *Lexer) recordDebugEvent(event, context string) {
	if !l.debug || l.debugEvents == nil {
		return
	}

	l.debugEvents = append(l.debugEvents, DebugEvent{
		Timestamp: time.Now(),
		Event:     event,
		Position:  l.position,
		Context:   context,
	})
}
