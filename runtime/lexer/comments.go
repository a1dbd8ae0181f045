package lexer

import (
	"strings"

	"github.com/nattlua/nattlua-go/core/syntax"
)

const (
	commentEscapeOpen  = "--[[#"
	commentEscapeClose = "]]"
)

// readRemainingCommentEscape closes a --[[# region. It only fires while one
// is open, so ]] in ordinary code stays two symbols.
func (l *Lexer) readRemainingCommentEscape() (Kind, bool) {
	if !l.inCommentEscape || !l.isString(commentEscapeClose) {
		return 0, false
	}

	l.position += len(commentEscapeClose)
	l.inCommentEscape = false
	l.logger.Debug("comment escape closed", "offset", l.position)
	if l.debug {
		l.recordDebugEvent("comment_escape_close", commentEscapeClose)
	}
	return CommentEscape, true
}

func (l *Lexer) readSpace() (Kind, bool) {
	if !syntax.IsSpace(l.byteAt(0)) {
		return 0, false
	}
	l.skipSpace()
	return Space, true
}

// readCommentEscape opens a --[[# region. Its contents are lexed as code.
func (l *Lexer) readCommentEscape() (Kind, bool) {
	if !l.isString(commentEscapeOpen) {
		return 0, false
	}

	l.position += len(commentEscapeOpen)
	l.inCommentEscape = true
	l.logger.Debug("comment escape opened", "offset", l.position)
	if l.debug {
		l.recordDebugEvent("comment_escape_open", commentEscapeOpen)
	}
	return CommentEscape, true
}

func (l *Lexer) readMultilineCComment() (Kind, bool) {
	if !l.isString("/*") {
		return 0, false
	}

	start := l.position
	if pos, ok := l.src.FindNearest("*/", l.position+2); ok {
		l.position = pos + 2
		return MultilineComment, true
	}

	l.errorf(start, l.src.Len(), "expected multiline C comment to end, reached end of code")
	l.position = l.src.Len()
	return MultilineComment, true
}

func (l *Lexer) readLineCComment() (Kind, bool) {
	if !l.isString("//") {
		return 0, false
	}
	l.position += 2
	l.skipLine()
	return LineComment, true
}

// readMultilineComment reads --[[...]] and --[=*[...]=*]. An opener that is
// not followed by '[' after its '=' run is an ordinary line comment.
func (l *Lexer) readMultilineComment() (Kind, bool) {
	if !l.isString("--[") || (!l.isStringAt("[", 3) && !l.isStringAt("=", 3)) {
		return 0, false
	}

	start := l.position

	// skip the --[
	l.position += 3
	for l.isString("=") {
		l.position++
	}

	if !l.isString("[") {
		l.position = start
		return l.readLineComment()
	}
	l.position++

	level := l.position - start - 4
	closing := "]" + strings.Repeat("=", level) + "]"
	if pos, ok := l.src.FindNearest(closing, l.position); ok {
		l.position = pos + len(closing)
		return MultilineComment, true
	}

	l.errorf(start, start+1, "expected multiline comment to end, reached end of code")
	l.position = l.src.Len()
	return MultilineComment, true
}

func (l *Lexer) readLineComment() (Kind, bool) {
	if !l.isString("--") {
		return 0, false
	}
	l.position += 2
	l.skipLine()
	return LineComment, true
}

// readDebugCode reads a sigil-prefixed line (analyzer or parser debug code).
func (l *Lexer) readDebugCode(sigil string, kind Kind) (Kind, bool) {
	if sigil == "" || !l.isString(sigil) {
		return 0, false
	}
	l.position += len(sigil)
	l.skipLine()
	return kind, true
}

func (l *Lexer) readAnalyzerDebugCode() (Kind, bool) {
	return l.readDebugCode(l.analyzerSigil, AnalyzerDebugCode)
}

func (l *Lexer) readParserDebugCode() (Kind, bool) {
	return l.readDebugCode(l.parserSigil, ParserDebugCode)
}

// readShebang reads a #! line at the very start of the buffer.
func (l *Lexer) readShebang() (Kind, bool) {
	if l.position != 0 || !l.isString("#!") {
		return 0, false
	}
	l.skipLine()
	return Shebang, true
}

// skipLine advances to the next newline (not consumed) or the end.
func (l *Lexer) skipLine() {
	if pos, ok := l.src.FindNearest("\n", l.position); ok {
		l.position = pos
		return
	}
	l.position = l.src.Len()
}
