package parser

import (
	"strconv"
	"strings"
)

// Format renders e as a compact s-expression, used by tests and the CLI's
// text output:
//
//	1 + 2 * 3       (+ 1 (* 2 3))
//	self:print(1)   (call (: self print) 1)
//	{1, a = 2}      {1 a=2}
//	(x)             (paren x)
func Format(e Expression) string {
	var b strings.Builder
	format(&b, e)
	return b.String()
}

func format(b *strings.Builder, e Expression) {
	if e == nil {
		b.WriteString("<nil>")
		return
	}
	depth := e.parenthesized().Depth()
	for i := 0; i < depth; i++ {
		b.WriteString("(paren ")
	}

	switch n := e.(type) {
	case *Atomic:
		b.WriteString(n.Value.Text)
	case *Table:
		b.WriteByte('{')
		for i, entry := range n.Entries {
			if i > 0 {
				b.WriteByte(' ')
			}
			switch en := entry.(type) {
			case *IndexValue:
				format(b, en.Value)
			case *IdentifierKeyValue:
				b.WriteString(en.Key.Text)
				b.WriteByte('=')
				format(b, en.Value)
			case *ExpressionKeyValue:
				b.WriteByte('[')
				format(b, en.Key)
				b.WriteString("]=")
				format(b, en.Value)
			}
		}
		b.WriteByte('}')
	case *PrefixOperator:
		list(b, n.Operator.Text, n.Right)
	case *BinaryOperator:
		list(b, n.Operator.Text, n.Left, n.Right)
	case *Index:
		b.WriteString("(. ")
		format(b, n.Left)
		b.WriteString(" " + n.Name.Text + ")")
	case *SelfCall:
		b.WriteString("(: ")
		format(b, n.Left)
		b.WriteString(" " + n.Name.Text + ")")
	case *Call:
		head := "call"
		switch n.Kind {
		case CallType:
			head = "call!"
		case CallGeneric:
			head = "call<||>"
		}
		list(b, head, append([]Expression{n.Left}, n.Arguments...)...)
	case *PostfixOperator:
		b.WriteString("(postfix " + n.Operator.Text + " ")
		format(b, n.Left)
		b.WriteByte(')')
	case *IndexExpression:
		list(b, "[]", n.Left, n.Index)
	case *TypeCast:
		list(b, "cast", n.Left, n.Target)
	}

	for i := 0; i < depth; i++ {
		b.WriteByte(')')
	}
}

func list(b *strings.Builder, head string, items ...Expression) {
	b.WriteString("(" + head)
	for _, item := range items {
		b.WriteByte(' ')
		format(b, item)
	}
	b.WriteByte(')')
}

// Node is the serializable form of an expression used by the json and cbor
// dumps. Start and Stop are byte offsets covering the node and its parens.
type Node struct {
	Kind     string `json:"kind" cbor:"kind"`
	Text     string `json:"text,omitempty" cbor:"text,omitempty"`
	Start    int    `json:"start" cbor:"start"`
	Stop     int    `json:"stop" cbor:"stop"`
	Parens   int    `json:"parens,omitempty" cbor:"parens,omitempty"`
	Call     string `json:"call,omitempty" cbor:"call,omitempty"`
	Key      string `json:"key,omitempty" cbor:"key,omitempty"`
	Children []Node `json:"children,omitempty" cbor:"children,omitempty"`
}

// Dump converts e into a Node tree. Table entries become child nodes of kind
// IndexValue, IdentifierKeyValue or ExpressionKeyValue.
func Dump(e Expression) Node {
	first, last := Span(e)
	node := Node{
		Kind:   KindName(e),
		Start:  first.Start,
		Stop:   last.Stop,
		Parens: e.parenthesized().Depth(),
	}

	switch n := e.(type) {
	case *Atomic:
		node.Text = n.Value.Text
	case *Table:
		for _, entry := range n.Entries {
			node.Children = append(node.Children, dumpEntry(entry))
		}
		return node
	case *PrefixOperator:
		node.Text = n.Operator.Text
	case *BinaryOperator:
		node.Text = n.Operator.Text
	case *Index:
		node.Text = n.Name.Text
	case *SelfCall:
		node.Text = n.Name.Text
	case *Call:
		node.Call = n.Kind.String()
	case *PostfixOperator:
		node.Text = n.Operator.Text
	case *TypeCast:
		node.Text = n.Operator.Text
	}

	for _, c := range Children(e) {
		node.Children = append(node.Children, Dump(c))
	}
	return node
}

func dumpEntry(entry TableEntry) Node {
	switch en := entry.(type) {
	case *IndexValue:
		value := Dump(en.Value)
		return Node{
			Kind:     "IndexValue",
			Key:      strconv.Itoa(en.Key),
			Start:    value.Start,
			Stop:     value.Stop,
			Children: []Node{value},
		}
	case *IdentifierKeyValue:
		value := Dump(en.Value)
		return Node{
			Kind:     "IdentifierKeyValue",
			Key:      en.Key.Text,
			Start:    en.Key.Start,
			Stop:     value.Stop,
			Children: []Node{value},
		}
	case *ExpressionKeyValue:
		value := Dump(en.Value)
		return Node{
			Kind:     "ExpressionKeyValue",
			Start:    en.OpenBracket.Start,
			Stop:     value.Stop,
			Children: []Node{Dump(en.Key), value},
		}
	}
	return Node{Kind: "Unknown"}
}
