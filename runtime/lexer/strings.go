package lexer

import (
	"strings"

	"github.com/nattlua/nattlua-go/core/syntax"
)

// readMultilineString reads [[...]] and [=*[...]=*]. The closer must repeat
// the opener's level (the number of '=').
func (l *Lexer) readMultilineString() (Kind, bool) {
	if !l.isString("[") || (!l.isStringAt("[", 1) && !l.isStringAt("=", 1)) {
		return 0, false
	}

	start := l.position
	l.position++

	for l.isString("=") {
		l.position++
	}

	if !l.isString("[") {
		l.errorf(start, l.position, "malformed multiline string: expected '=', got %s", l.peekText())
		return String, true
	}
	l.position++

	level := l.position - start - 2
	closing := "]" + strings.Repeat("=", level) + "]"
	if pos, ok := l.src.FindNearest(closing, l.position); ok {
		l.position = pos + len(closing)
		return String, true
	}

	l.errorf(start, l.src.Len(), "expected multiline string to end, reached end of code")
	l.position = l.src.Len()
	return String, true
}

func (l *Lexer) readSingleQuotedString() (Kind, bool) { return l.readQuotedString('\'') }
func (l *Lexer) readDoubleQuotedString() (Kind, bool) { return l.readQuotedString('"') }

// readQuotedString reads a '...' or "..." string. A backslash escapes the
// next byte; \z also swallows the whitespace run that follows it.
func (l *Lexer) readQuotedString(quote byte) (Kind, bool) {
	if l.byteAt(0) != quote {
		return 0, false
	}

	start := l.position
	l.position++

	for !l.theEnd() {
		ch := l.readByte()

		switch {
		case ch == '\\' && l.isString("z"):
			l.position++
			l.skipSpace()
		case ch == '\\':
			if !l.theEnd() {
				l.position++
			}
		case ch == '\n':
			// the newline is left for the next token
			l.position--
			l.errorf(start, l.position, "expected ending %c quote, got newline", quote)
			return String, true
		case ch == quote:
			return String, true
		}
	}

	l.errorf(start, l.position, "expected ending %c quote, reached end of code", quote)
	return String, true
}

func (l *Lexer) skipSpace() {
	for !l.theEnd() && syntax.IsSpace(l.byteAt(0)) {
		l.position++
	}
}
