package parser

import (
	"encoding/json"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nattlua/nattlua-go/runtime/lexer"
)

func TestTokensReproduceSource(t *testing.T) {
	inputs := []string{
		"1 + 2 * 3",
		"  ( ( print ( 1 ) ) )  ",
		"self:print(1, 2, 3)",
		"{ [1337] = 1, [\"foo\"] = 2; a = 3, 4, }",
		"a.b [ c ] : d \"e\" { f } ! ( g ) <| h , i |>",
		"-x ^ --[[ comment ]] y .. z",
		"\"foo\" as foo",
		"x++ + #t -- trailing",
		"not not a or b and c",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			tree := ParseString(input, WithLogger(quietLogger))
			require.Nil(t, tree.Error)

			tokens := append(Tokens(tree.Root), tree.Tokens[len(tree.Tokens)-1])
			assert.Equal(t, input, lexer.Reassemble(tokens))

			// every non-EOF token is used exactly once
			assert.Equal(t, len(tree.Tokens), len(tokens))
		})
	}
}

func TestSpan(t *testing.T) {
	root := parse(t, "(a + b)(c)")
	first, last := Span(root)
	assert.Equal(t, "(", first.Text)
	assert.Equal(t, 0, first.Start)
	assert.Equal(t, ")", last.Text)
	assert.Equal(t, 10, last.Stop)
}

func TestChildrenAndWalk(t *testing.T) {
	root := parse(t, "f(a, {b, [c] = d})")

	var visited []string
	Walk(root, func(e Expression) bool {
		visited = append(visited, KindName(e))
		return true
	})
	assert.Equal(t, []string{"Call", "Atomic", "Atomic", "Table", "Atomic", "Atomic", "Atomic"}, visited)

	// returning false prunes the subtree
	var top []string
	Walk(root, func(e Expression) bool {
		top = append(top, KindName(e))
		_, isTable := e.(*Table)
		return !isTable
	})
	assert.Equal(t, []string{"Call", "Atomic", "Atomic", "Table"}, top)
}

func TestParents(t *testing.T) {
	root := parse(t, "a + b.c")
	parents := Parents(root)

	plus := root.(*BinaryOperator)
	index := plus.Right.(*Index)

	assert.Equal(t, Expression(plus), parents[plus.Left])
	assert.Equal(t, Expression(plus), parents[index])
	assert.Equal(t, Expression(index), parents[index.Left])
	_, hasParent := parents[root]
	assert.False(t, hasParent)
}

func TestDump(t *testing.T) {
	root := parse(t, "f{1, a = (2)}")

	expected := Node{
		Kind: "Call", Start: 0, Stop: 13, Call: "table",
		Children: []Node{
			{Kind: "Atomic", Text: "f", Start: 0, Stop: 1},
			{Kind: "Table", Start: 1, Stop: 13, Children: []Node{
				{Kind: "IndexValue", Key: "0", Start: 2, Stop: 3, Children: []Node{
					{Kind: "Atomic", Text: "1", Start: 2, Stop: 3},
				}},
				{Kind: "IdentifierKeyValue", Key: "a", Start: 5, Stop: 12, Children: []Node{
					{Kind: "Atomic", Text: "2", Start: 9, Stop: 12, Parens: 1},
				}},
			}},
		},
	}

	if diff := cmp.Diff(expected, Dump(root)); diff != "" {
		t.Errorf("dump mismatch (-expected +actual):\n%s", diff)
	}
}

func TestDumpEncodings(t *testing.T) {
	node := Dump(parse(t, "a.b(1)"))

	data, err := json.Marshal(node)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"kind": "Call", "start": 0, "stop": 6, "call": "parens",
		"children": [
			{"kind": "Index", "text": "b", "start": 0, "stop": 3,
			 "children": [{"kind": "Atomic", "text": "a", "start": 0, "stop": 1}]},
			{"kind": "Atomic", "text": "1", "start": 4, "stop": 5}
		]
	}`, string(data))

	enc, err := cbor.CanonicalEncOptions().EncMode()
	require.NoError(t, err)
	raw, err := enc.Marshal(node)
	require.NoError(t, err)

	var decoded Node
	require.NoError(t, cbor.Unmarshal(raw, &decoded))
	if diff := cmp.Diff(node, decoded); diff != "" {
		t.Errorf("cbor mismatch (-expected +actual):\n%s", diff)
	}
}

func TestFormatNil(t *testing.T) {
	assert.Equal(t, "<nil>", Format(nil))
}
