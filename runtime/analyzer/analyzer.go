// Package analyzer turns literal expressions into values.
//
// Only atoms are understood: nil, true and false become Symbols, number
// literals become float64 Numbers and string literals become Strings with
// their delimiters removed. Every other node has no value.
package analyzer

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/nattlua/nattlua-go/core/syntax"
	"github.com/nattlua/nattlua-go/runtime/lexer"
	"github.com/nattlua/nattlua-go/runtime/parser"
)

// Environment says whether an expression is runtime code or a type.
type Environment int

const (
	Runtime Environment = iota
	Typesystem
)

func (e Environment) String() string {
	if e == Typesystem {
		return "typesystem"
	}
	return "runtime"
}

// Profile returns the syntax profile of the environment.
func (e Environment) Profile() *syntax.Profile {
	if e == Typesystem {
		return syntax.Typesystem()
	}
	return syntax.Runtime()
}

// Value is one of Symbol, Number or String.
type Value interface {
	fmt.Stringer
	value()
}

// SymbolKind enumerates the keyword values.
type SymbolKind int

const (
	Nil SymbolKind = iota
	True
	False
)

// Symbol is nil, true or false.
type Symbol struct {
	Kind SymbolKind
}

// Number is a numeric literal.
type Number struct {
	Value float64
}

// String is a string literal without its delimiters. Escapes are kept as
// written.
type String struct {
	Value string
}

func (Symbol) value() {}
func (Number) value() {}
func (String) value() {}

func (s Symbol) String() string {
	switch s.Kind {
	case True:
		return "true"
	case False:
		return "false"
	}
	return "nil"
}

func (n Number) String() string { return strconv.FormatFloat(n.Value, 'g', -1, 64) }
func (s String) String() string { return strconv.Quote(s.Value) }

// ErrMalformedLiteral wraps every literal conversion failure.
var ErrMalformedLiteral = errors.New("malformed literal")

// Analyze returns the value of a literal atom. Non-literal expressions
// (identifiers, operators, calls, tables, ...) return nil, nil.
func Analyze(e parser.Expression, env Environment) (Value, error) {
	atomic, ok := e.(*parser.Atomic)
	if !ok {
		return nil, nil
	}
	tok := atomic.Value

	switch tok.Kind {
	case lexer.Number:
		n, err := ParseNumber(tok.Text, env.Profile())
		if err != nil {
			return nil, err
		}
		return Number{n}, nil
	case lexer.String:
		s, err := ParseString(tok.Text)
		if err != nil {
			return nil, err
		}
		return String{s}, nil
	case lexer.Letter:
		if !env.Profile().IsKeywordValue(tok.Text) {
			return nil, nil
		}
		switch tok.Text {
		case "nil":
			return Symbol{Nil}, nil
		case "true":
			return Symbol{True}, nil
		case "false":
			return Symbol{False}, nil
		}
	}
	return nil, nil
}

// ParseNumber converts number literal text: decimal, hex (with optional
// fraction and p exponent), binary (with optional decimal e exponent), "_"
// separators, the profile's number annotations, and nan/inf.
func ParseNumber(text string, profile *syntax.Profile) (float64, error) {
	switch strings.ToLower(text) {
	case "nan":
		return math.NaN(), nil
	case "inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	}

	s := strings.ToLower(strings.ReplaceAll(text, "_", ""))
	s = trimAnnotation(s, profile)

	var (
		n   float64
		err error
	)
	switch {
	case strings.HasPrefix(s, "0x"):
		if !strings.Contains(s, "p") {
			s += "p0"
		}
		n, err = strconv.ParseFloat(s, 64)
	case strings.HasPrefix(s, "0b"):
		n, err = parseBinary(s[2:])
	default:
		n, err = strconv.ParseFloat(s, 64)
	}
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return n, nil
		}
		return 0, fmt.Errorf("%w: number %q", ErrMalformedLiteral, text)
	}
	return n, nil
}

// trimAnnotation removes the longest matching number annotation. Annotations
// are compared lowercase.
func trimAnnotation(s string, profile *syntax.Profile) string {
	if profile == nil {
		return s
	}
	annotations := profile.NumberAnnotations()
	sort.SliceStable(annotations, func(i, j int) bool { return len(annotations[i]) > len(annotations[j]) })
	for _, a := range annotations {
		a = strings.ToLower(a)
		if len(s) > len(a) && strings.HasSuffix(s, a) {
			return s[:len(s)-len(a)]
		}
	}
	return s
}

// parseBinary reads 0/1 digits with an optional e+N / e-N exponent, which
// scales by a power of ten.
func parseBinary(s string) (float64, error) {
	exponent := 0
	if i := strings.IndexByte(s, 'e'); i >= 0 {
		exp, err := strconv.Atoi(s[i+1:])
		if err != nil {
			return 0, err
		}
		exponent = exp
		s = s[:i]
	}

	mantissa, ok := new(big.Int).SetString(s, 2)
	if !ok {
		return 0, strconv.ErrSyntax
	}
	f, _ := new(big.Float).SetInt(mantissa).Float64()
	return f * math.Pow10(exponent), nil
}

// ParseString strips the delimiters of a quoted or long-bracket string.
func ParseString(text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("%w: empty string token", ErrMalformedLiteral)
	}

	switch text[0] {
	case '"', '\'':
		if len(text) < 2 || text[len(text)-1] != text[0] {
			return "", fmt.Errorf("%w: unterminated string %q", ErrMalformedLiteral, text)
		}
		return text[1 : len(text)-1], nil
	case '[':
		level := 0
		for 1+level < len(text) && text[1+level] == '=' {
			level++
		}
		open := 2 + level
		closer := "]" + strings.Repeat("=", level) + "]"
		if len(text) < open+len(closer) || text[1+level] != '[' || !strings.HasSuffix(text, closer) {
			return "", fmt.Errorf("%w: unterminated long string %q", ErrMalformedLiteral, text)
		}
		return text[open : len(text)-len(closer)], nil
	}
	return "", fmt.Errorf("%w: not a string literal %q", ErrMalformedLiteral, text)
}
