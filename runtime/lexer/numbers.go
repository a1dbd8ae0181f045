package lexer

import "github.com/nattlua/nattlua-go/core/syntax"

// Number readers are greedy. A number ends cleanly on whitespace, a
// symbol-class byte or a registered annotation (50ull, 1i). Anything else is
// reported and the Number token stops before the offending byte.

func (l *Lexer) readHexNumber() (Kind, bool) {
	if !l.isString("0") || (!l.isStringAt("x", 1) && !l.isStringAt("X", 1)) {
		return 0, false
	}

	// skip past 0x
	l.position += 2

	hasDot := false
	for !l.theEnd() {
		if l.isString("_") {
			l.position++
		}
		if !hasDot && l.isString(".") && !l.isStringAt(".", 1) {
			hasDot = true
			l.position++
		}
		if l.theEnd() {
			break
		}

		ch := l.byteAt(0)
		if syntax.IsHexDigit(ch) {
			l.position++
			continue
		}
		if syntax.IsSpace(ch) || syntax.IsSymbol(ch) {
			break
		}
		if ch == 'p' || ch == 'P' {
			if !l.readNumberExponent("pow") {
				return Number, true
			}
			break
		}
		if l.readNumberAnnotation() {
			return Number, true
		}

		l.errorf(l.position, l.position+1, "malformed hex number, got %s", l.peekText())
		return Number, true
	}

	l.readNumberAnnotation()
	return Number, true
}

func (l *Lexer) readBinaryNumber() (Kind, bool) {
	if !l.isString("0") || (!l.isStringAt("b", 1) && !l.isStringAt("B", 1)) {
		return 0, false
	}

	// skip past 0b
	l.position += 2

	for !l.theEnd() {
		if l.isString("_") {
			l.position++
		}
		if l.theEnd() {
			break
		}

		ch := l.byteAt(0)
		if ch == '0' || ch == '1' {
			l.position++
			continue
		}
		if syntax.IsSpace(ch) || syntax.IsSymbol(ch) {
			break
		}
		if ch == 'e' || ch == 'E' {
			if !l.readNumberExponent("exponent") {
				return Number, true
			}
			break
		}
		if l.readNumberAnnotation() {
			return Number, true
		}

		l.errorf(l.position, l.position+1, "malformed binary number, got %s", l.peekText())
		return Number, true
	}

	l.readNumberAnnotation()
	return Number, true
}

func (l *Lexer) readDecimalNumber() (Kind, bool) {
	if !syntax.IsDigit(l.byteAt(0)) && (!l.isString(".") || !syntax.IsDigit(l.byteAt(1))) {
		return 0, false
	}

	// .5
	hasDot := false
	if l.isString(".") {
		hasDot = true
		l.position++
	}

	for !l.theEnd() {
		if l.isString("_") {
			l.position++
		}
		if !hasDot && l.isString(".") {
			// 1..20 is a range, the number is just 1
			if l.isStringAt(".", 1) {
				break
			}
			hasDot = true
			l.position++
		}
		if l.theEnd() {
			break
		}

		ch := l.byteAt(0)
		if syntax.IsDigit(ch) {
			l.position++
			continue
		}
		if syntax.IsSpace(ch) || syntax.IsSymbol(ch) {
			break
		}
		if ch == 'e' || ch == 'E' {
			if !l.readNumberExponent("exponent") {
				return Number, true
			}
			break
		}
		if l.readNumberAnnotation() {
			return Number, true
		}

		l.errorf(l.position, l.position+1, "malformed decimal number, got %s", l.peekText())
		return Number, true
	}

	l.readNumberAnnotation()
	return Number, true
}

// readNumberExponent consumes e/E/p/P, a mandatory sign and at least one
// digit. On failure the error is recorded and false is returned with the
// cursor left on the offending byte.
func (l *Lexer) readNumberExponent(what string) bool {
	l.position++

	if !l.isString("+") && !l.isString("-") {
		l.errorf(l.position-1, l.position, "expected + or - after %s, got %s", what, l.peekText())
		return false
	}
	l.position++

	if !syntax.IsDigit(l.byteAt(0)) {
		l.errorf(l.position-2, l.position-1, "malformed '%s' expected number, got %s", what, l.peekText())
		return false
	}

	for !l.theEnd() && syntax.IsDigit(l.byteAt(0)) {
		l.position++
	}
	return true
}

// readNumberAnnotation consumes the first matching number suffix of the
// active profiles.
func (l *Lexer) readNumberAnnotation() bool {
	rest := l.rest()
	for _, p := range l.profiles {
		if a, ok := p.MatchNumberAnnotation(rest); ok {
			l.position += len(a)
			return true
		}
	}
	return false
}
