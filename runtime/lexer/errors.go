package lexer

import "fmt"

// LexError is a recoverable scanning problem. The lexer records it and keeps
// going, so one pass reports every malformed construct.
type LexError struct {
	Message string
	Start   int // byte offset
	Stop    int // byte offset
}

func (e LexError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Start, e.Stop, e.Message)
}

// errorf records a LexError spanning [start, stop).
func (l *Lexer) errorf(start, stop int, format string, args ...interface{}) {
	if stop > l.src.Len() {
		stop = l.src.Len()
	}
	if start > stop {
		start = stop
	}
	err := LexError{Message: fmt.Sprintf(format, args...), Start: start, Stop: stop}
	l.errors = append(l.errors, err)

	l.logger.Debug("lex error", "source", l.src.Name(), "start", start, "stop", stop, "message", err.Message)
	if l.debug {
		l.recordDebugEvent("lex_error", err.Message)
	}
}
