package lexer

import "strings"

// Kind classifies a token
type Kind int

const (
	EndOfFile Kind = iota
	AnalyzerDebugCode
	ParserDebugCode
	Letter
	String
	Number
	Symbol
	Shebang
	Unknown
	LineComment
	MultilineComment
	CommentEscape
	Space
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case EndOfFile:
		return "EndOfFile"
	case AnalyzerDebugCode:
		return "AnalyzerDebugCode"
	case ParserDebugCode:
		return "ParserDebugCode"
	case Letter:
		return "Letter"
	case String:
		return "String"
	case Number:
		return "Number"
	case Symbol:
		return "Symbol"
	case Shebang:
		return "Shebang"
	case Unknown:
		return "Unknown"
	case LineComment:
		return "LineComment"
	case MultilineComment:
		return "MultilineComment"
	case CommentEscape:
		return "CommentEscape"
	case Space:
		return "Space"
	default:
		return "Kind(?)"
	}
}

// IsTrivia reports whether tokens of this kind are folded into the leading
// list of the next token.
func (k Kind) IsTrivia() bool {
	switch k {
	case Space, LineComment, MultilineComment, CommentEscape:
		return true
	}
	return false
}

// Token is one lexeme. Text is a substring of the source, so tokens never
// copy the buffer.
type Token struct {
	Kind    Kind
	Start   int // byte offset, inclusive
	Stop    int // byte offset, exclusive
	Text    string
	Leading []Token // trivia scanned immediately before this token
}

// String returns the token text (for testing and debugging)
func (t Token) String() string {
	return t.Text
}

// Is reports whether the token is a non-string token with the given text.
// Quoted strings never match so that `"("` is not mistaken for a paren.
func (t Token) Is(text string) bool {
	return t.Kind != String && t.Text == text
}

// FullText returns the leading trivia followed by the token's own text.
func (t Token) FullText() string {
	if len(t.Leading) == 0 {
		return t.Text
	}
	var b strings.Builder
	for _, w := range t.Leading {
		b.WriteString(w.Text)
	}
	b.WriteString(t.Text)
	return b.String()
}

// Reassemble concatenates the full text of every token. For the output of
// Tokenize this reproduces the source exactly.
func Reassemble(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		for _, w := range t.Leading {
			b.WriteString(w.Text)
		}
		b.WriteString(t.Text)
	}
	return b.String()
}
