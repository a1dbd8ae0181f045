package parser

import (
	"github.com/nattlua/nattlua-go/runtime/lexer"
)

// Expression is a node of the expression tree. The set of node types is
// closed: switch on the concrete type to inspect one.
type Expression interface {
	parenthesized() *Parens
}

// Parens holds the parentheses wrapped around a node. Both lists are ordered
// innermost first, so ((x)) has Left = ["(" at 1, "(" at 0].
type Parens struct {
	Left  []lexer.Token
	Right []lexer.Token
}

func (p *Parens) parenthesized() *Parens { return p }

// Depth returns how many paren pairs wrap the node.
func (p *Parens) Depth() int { return len(p.Left) }

// Atomic is a literal, identifier or keyword value (nil, true, false, ...).
type Atomic struct {
	Parens
	Value lexer.Token
}

// Table is a table constructor. Separators[i] is the "," or ";" that follows
// Entries[i]; a trailing separator is allowed.
type Table struct {
	Parens
	Open       lexer.Token
	Entries    []TableEntry
	Separators []lexer.Token
	Close      lexer.Token
}

// TableEntry is one of IndexValue, IdentifierKeyValue or ExpressionKeyValue.
type TableEntry interface {
	tableEntry()
}

// IndexValue is a positional entry. Key counts positional entries from 0.
type IndexValue struct {
	Key   int
	Value Expression
}

// IdentifierKeyValue is a `name = value` entry.
type IdentifierKeyValue struct {
	Key    lexer.Token
	Equals lexer.Token
	Value  Expression
}

// ExpressionKeyValue is a `[key] = value` entry.
type ExpressionKeyValue struct {
	OpenBracket  lexer.Token
	Key          Expression
	CloseBracket lexer.Token
	Equals       lexer.Token
	Value        Expression
}

func (*IndexValue) tableEntry()         {}
func (*IdentifierKeyValue) tableEntry() {}
func (*ExpressionKeyValue) tableEntry() {}

// PrefixOperator is a unary operator applied to Right (-x, not x, #t).
type PrefixOperator struct {
	Parens
	Operator lexer.Token
	Right    Expression
}

// BinaryOperator is Left Operator Right.
type BinaryOperator struct {
	Parens
	Left     Expression
	Operator lexer.Token
	Right    Expression
}

// Index is field access: Left.Name
type Index struct {
	Parens
	Left Expression
	Dot  lexer.Token
	Name lexer.Token
}

// SelfCall is the method lookup half of Left:Name(...). The arguments live on
// the Call that wraps it.
type SelfCall struct {
	Parens
	Left  Expression
	Colon lexer.Token
	Name  lexer.Token
}

// CallKind distinguishes the argument shapes of a call.
type CallKind int

const (
	CallParens  CallKind = iota // f(a, b)
	CallString                  // f "a"
	CallTable                   // f {a}
	CallType                    // f!(a)
	CallGeneric                 // f<|a, b|>
)

func (k CallKind) String() string {
	switch k {
	case CallParens:
		return "parens"
	case CallString:
		return "string"
	case CallTable:
		return "table"
	case CallType:
		return "type"
	case CallGeneric:
		return "generic"
	}
	return "unknown"
}

// Call applies Left to Arguments. Open and Close are the delimiters of the
// paren, type and generic forms; Bang is the "!" of a type call. Commas[i]
// follows Arguments[i].
type Call struct {
	Parens
	Left      Expression
	Kind      CallKind
	Bang      lexer.Token
	Open      lexer.Token
	Arguments []Expression
	Commas    []lexer.Token
	Close     lexer.Token
}

// PostfixOperator is Left followed by a postfix operator (x++).
type PostfixOperator struct {
	Parens
	Left     Expression
	Operator lexer.Token
}

// IndexExpression is Left[Index].
type IndexExpression struct {
	Parens
	Left  Expression
	Open  lexer.Token
	Index Expression
	Close lexer.Token
}

// TypeCast is `Left as Target` or `Left: Target`.
type TypeCast struct {
	Parens
	Left     Expression
	Operator lexer.Token
	Target   Expression
}

// Children returns the direct sub-expressions of e in source order. Table
// keys and values are included.
func Children(e Expression) []Expression {
	switch n := e.(type) {
	case *Atomic:
		return nil
	case *Table:
		var out []Expression
		for _, entry := range n.Entries {
			switch en := entry.(type) {
			case *IndexValue:
				out = append(out, en.Value)
			case *IdentifierKeyValue:
				out = append(out, en.Value)
			case *ExpressionKeyValue:
				out = append(out, en.Key, en.Value)
			}
		}
		return out
	case *PrefixOperator:
		return []Expression{n.Right}
	case *BinaryOperator:
		return []Expression{n.Left, n.Right}
	case *Index:
		return []Expression{n.Left}
	case *SelfCall:
		return []Expression{n.Left}
	case *Call:
		return append([]Expression{n.Left}, n.Arguments...)
	case *PostfixOperator:
		return []Expression{n.Left}
	case *IndexExpression:
		return []Expression{n.Left, n.Index}
	case *TypeCast:
		return []Expression{n.Left, n.Target}
	}
	return nil
}

// Walk visits e and its descendants depth first. Returning false from fn
// skips the children of that node.
func Walk(e Expression, fn func(Expression) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, c := range Children(e) {
		Walk(c, fn)
	}
}

// Parents maps every node under root to its enclosing node. The tree itself
// holds no upward links; diagnostics that need them rebuild this map.
func Parents(root Expression) map[Expression]Expression {
	parents := make(map[Expression]Expression)
	Walk(root, func(e Expression) bool {
		for _, c := range Children(e) {
			parents[c] = e
		}
		return true
	})
	return parents
}

// Tokens returns every token of e in source order, parens included.
// Reassembling them reproduces the expression's source text.
func Tokens(e Expression) []lexer.Token {
	return appendTokens(nil, e)
}

func appendTokens(dst []lexer.Token, e Expression) []lexer.Token {
	if e == nil {
		return dst
	}
	parens := e.parenthesized()
	for i := len(parens.Left) - 1; i >= 0; i-- {
		dst = append(dst, parens.Left[i])
	}

	switch n := e.(type) {
	case *Atomic:
		dst = append(dst, n.Value)
	case *Table:
		dst = append(dst, n.Open)
		for i, entry := range n.Entries {
			switch en := entry.(type) {
			case *IndexValue:
				dst = appendTokens(dst, en.Value)
			case *IdentifierKeyValue:
				dst = append(dst, en.Key, en.Equals)
				dst = appendTokens(dst, en.Value)
			case *ExpressionKeyValue:
				dst = append(dst, en.OpenBracket)
				dst = appendTokens(dst, en.Key)
				dst = append(dst, en.CloseBracket, en.Equals)
				dst = appendTokens(dst, en.Value)
			}
			if i < len(n.Separators) {
				dst = append(dst, n.Separators[i])
			}
		}
		dst = append(dst, n.Close)
	case *PrefixOperator:
		dst = append(dst, n.Operator)
		dst = appendTokens(dst, n.Right)
	case *BinaryOperator:
		dst = appendTokens(dst, n.Left)
		dst = append(dst, n.Operator)
		dst = appendTokens(dst, n.Right)
	case *Index:
		dst = appendTokens(dst, n.Left)
		dst = append(dst, n.Dot, n.Name)
	case *SelfCall:
		dst = appendTokens(dst, n.Left)
		dst = append(dst, n.Colon, n.Name)
	case *Call:
		dst = appendTokens(dst, n.Left)
		switch n.Kind {
		case CallString, CallTable:
			for _, arg := range n.Arguments {
				dst = appendTokens(dst, arg)
			}
		default:
			if n.Kind == CallType {
				dst = append(dst, n.Bang)
			}
			dst = append(dst, n.Open)
			for i, arg := range n.Arguments {
				dst = appendTokens(dst, arg)
				if i < len(n.Commas) {
					dst = append(dst, n.Commas[i])
				}
			}
			dst = append(dst, n.Close)
		}
	case *PostfixOperator:
		dst = appendTokens(dst, n.Left)
		dst = append(dst, n.Operator)
	case *IndexExpression:
		dst = appendTokens(dst, n.Left)
		dst = append(dst, n.Open)
		dst = appendTokens(dst, n.Index)
		dst = append(dst, n.Close)
	case *TypeCast:
		dst = appendTokens(dst, n.Left)
		dst = append(dst, n.Operator)
		dst = appendTokens(dst, n.Target)
	}

	return append(dst, parens.Right...)
}

// Span returns the first and last token of e.
func Span(e Expression) (first, last lexer.Token) {
	tokens := Tokens(e)
	if len(tokens) == 0 {
		return lexer.Token{}, lexer.Token{}
	}
	return tokens[0], tokens[len(tokens)-1]
}

// KindName names the node type of e ("Atomic", "BinaryOperator", ...).
func KindName(e Expression) string {
	switch e.(type) {
	case *Atomic:
		return "Atomic"
	case *Table:
		return "Table"
	case *PrefixOperator:
		return "PrefixOperator"
	case *BinaryOperator:
		return "BinaryOperator"
	case *Index:
		return "Index"
	case *SelfCall:
		return "SelfCall"
	case *Call:
		return "Call"
	case *PostfixOperator:
		return "PostfixOperator"
	case *IndexExpression:
		return "IndexExpression"
	case *TypeCast:
		return "TypeCast"
	}
	return "Unknown"
}
