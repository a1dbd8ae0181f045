// Package invariant provides contract assertions for the NattLua front end.
//
// The lexer and parser are hand-written scanners; most of their bugs show up
// as a cursor that stops moving or a span that runs past the buffer. These
// helpers turn such states into an immediate panic with the caller's
// location instead of an infinite loop or a corrupt token.
//
// All functions panic on violation. They guard programming errors, never
// malformed user input: malformed source is reported through LexError and
// ParseError values.
package invariant

import (
	"fmt"
	"reflect"
	"runtime"
)

// Precondition checks an input contract at function entry.
//
//	func (c *Code) Slice(start, stop int) []byte {
//	    invariant.Precondition(start <= stop, "slice start %d after stop %d", start, stop)
//	    ...
//	}
func Precondition(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("PRECONDITION", format, args...)
	}
}

// Postcondition checks an output contract before function return.
func Postcondition(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("POSTCONDITION", format, args...)
	}
}

// Invariant checks internal consistency while a function runs.
func Invariant(condition bool, format string, args ...interface{}) {
	if !condition {
		fail("INVARIANT", format, args...)
	}
}

// Advanced panics unless a scanning cursor moved forward.
//
//	prev := l.position
//	tok := l.readSingleToken()
//	invariant.Advanced(prev, l.position, "readSingleToken")
func Advanced(prev, cur int, where string) {
	if cur <= prev {
		fail("INVARIANT", "%s: cursor must advance, stayed at %d (was %d)", where, cur, prev)
	}
}

// Span panics unless 0 <= start <= stop <= size.
func Span(start, stop, size int, name string) {
	if start < 0 || start > stop || stop > size {
		fail("PRECONDITION", "%s span [%d, %d) out of bounds for size %d", name, start, stop, size)
	}
}

// InRange panics if value is outside [minVal, maxVal].
func InRange(value, minVal, maxVal int, name string) {
	if value < minVal || value > maxVal {
		fail("PRECONDITION", "%s must be in range [%d, %d], got %d", name, minVal, maxVal, value)
	}
}

// ExpectNoError panics if err is not nil. Use it for operations on built-in
// tables that cannot fail unless the table itself is wrong.
func ExpectNoError(err error, msg string) {
	if err != nil {
		fail("POSTCONDITION", "%s must not fail: %v", msg, err)
	}
}

// NotNil panics if value is nil or a typed nil pointer.
func NotNil(value interface{}, name string) {
	if value == nil || isNilValue(value) {
		fail("PRECONDITION", "%s must not be nil", name)
	}
}

func isNilValue(value interface{}) bool {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return v.IsNil()
	default:
		return false
	}
}

// fail panics with a formatted message and the violating call site.
func fail(kind, format string, args ...interface{}) {
	pc := make([]uintptr, 10)
	n := runtime.Callers(3, pc)
	frames := runtime.CallersFrames(pc[:n])

	msg := fmt.Sprintf("%s VIOLATION: "+format, append([]interface{}{kind}, args...)...)
	if frame, ok := frames.Next(); ok {
		msg += fmt.Sprintf("\n  at %s:%d", frame.File, frame.Line)
	}

	panic(msg)
}
