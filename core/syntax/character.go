package syntax

// Byte classification tables shared by the lexer and profile construction.
//
// Classification is byte-level: every byte >= 127 counts as a letter so UTF-8
// identifiers pass through untouched. Use the exported predicates from other
// packages; they compile down to a single table load.
var (
	isSpace = classify(func(ch byte) bool { return ch > 0 && ch <= 32 })

	isLetter = classify(func(ch byte) bool {
		return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_' || ch == '@' || ch >= 127
	})

	isDigit = classify(func(ch byte) bool { return '0' <= ch && ch <= '9' })

	isDuringLetter = classify(func(ch byte) bool { return isLetter[ch] || isDigit[ch] })

	isHexDigit = classify(func(ch byte) bool {
		return isDigit[ch] || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
	})

	// ASCII punctuation except _ and @
	isSymbol = classify(func(ch byte) bool {
		return ch != '_' && ((ch >= '!' && ch <= '/') || (ch >= ':' && ch <= '?') ||
			(ch >= '[' && ch <= '`') || (ch >= '{' && ch <= '~'))
	})
)

// classify precomputes a predicate for every byte value. Tables are built in
// variable initializers so profiles built at package init can rely on them.
func classify(fn func(ch byte) bool) (table [256]bool) {
	for i := range table {
		table[i] = fn(byte(i))
	}
	return table
}

// IsSpace reports whether ch is whitespace or a control byte (1..32).
func IsSpace(ch byte) bool { return isSpace[ch] }

// IsLetter reports whether ch can start an identifier.
func IsLetter(ch byte) bool { return isLetter[ch] }

// IsDuringLetter reports whether ch can continue an identifier.
func IsDuringLetter(ch byte) bool { return isDuringLetter[ch] }

// IsDigit reports whether ch is a decimal digit.
func IsDigit(ch byte) bool { return isDigit[ch] }

// IsHexDigit reports whether ch is a hexadecimal digit.
func IsHexDigit(ch byte) bool { return isHexDigit[ch] }

// IsSymbol reports whether ch is symbol-class punctuation.
func IsSymbol(ch byte) bool { return isSymbol[ch] }

// containsSymbol reports whether any byte of s is symbol-class.
func containsSymbol(s string) bool {
	for i := 0; i < len(s); i++ {
		if isSymbol[s[i]] {
			return true
		}
	}
	return false
}
