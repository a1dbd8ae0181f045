package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nattlua/nattlua-go/core/syntax"
	"github.com/nattlua/nattlua-go/runtime/lexer"
)

func TestParseErrorMessages(t *testing.T) {
	tests := []struct {
		input   string
		message string
		context string
	}{
		{"()", "empty parentheses group", "parentheses"},
		{"(1", `expected ")", got end of file`, "parentheses"},
		{"1 +", "expected right side to be an expression, got end of file", "binary operator"},
		{"1 + )", `expected right side to be an expression, got ")"`, "binary operator"},
		{"-", `expected expression after prefix operator "-", got end of file`, "prefix operator"},
		{"not )", `expected expression after prefix operator "not", got ")"`, "prefix operator"},
		{"{1 2}", "Expected something", "table"},
		{"{1,,}", "Expected something", "table"},
		{"{1", "Expected something", "table"},
		{"{[1] 2}", `expected "=", got "2"`, "table"},
		{"{[] = 1}", `expected expression after "[", got "]"`, "table"},
		{"{a = }", `expected value after "=", got "}"`, "table"},
		{"f(1,)", `expected argument after ",", got ")"`, "call arguments"},
		{"f(1, 2,)", `expected argument after ",", got ")"`, "call arguments"},
		{"f<|a,|>", `expected argument after ",", got "|>"`, "call arguments"},
		{"f(1 2)", `expected ")", got "2"`, "call arguments"},
		{"f(and)", `expected ")", got "and"`, "call arguments"},
		{"f<|a", `expected "|>", got end of file`, "call arguments"},
		{"a[]", `expected expression after "[", got "]"`, "index expression"},
		{"a[1", `expected "]", got end of file`, "index expression"},
		{"a as", `expected type expression after "as", got end of file`, "type cast"},
		{"a b", `unexpected "b" after expression`, ""},
		{")", `unexpected ")", expected an expression`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := parseError(t, tt.input)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.context, err.Context)
			assert.LessOrEqual(t, err.Start.Start, err.Stop.Stop)
		})
	}
}

func TestTypesystemRejectsBangEquals(t *testing.T) {
	err := parseError(t, "a != b", WithProfile(syntax.Typesystem()))
	assert.Equal(t, `unexpected "!=" after expression`, err.Message)
	assert.Empty(t, err.Suggestions, "suggestions are only offered for words")
}

func TestParseErrorSnippet(t *testing.T) {
	err := parseError(t, "foo(1,)")

	expected := strings.Join([]string{
		`expected argument after ",", got ")"`,
		"  --> string:1:6",
		"   |",
		" 1 | foo(1,)",
		"   |      ^^",
		"   = note: while parsing call arguments",
	}, "\n")
	assert.Equal(t, expected, err.Error())

	line, column := err.Position()
	assert.Equal(t, 1, line)
	assert.Equal(t, 6, column)
}

func TestParseErrorSnippetOnLaterLine(t *testing.T) {
	err := parseError(t, "x +\n  (1 +\n  )")

	// the span runs from the operator to the ")" on the next line, so the
	// caret stops at the end of the operator's line
	assert.Equal(t, ")", err.Stop.Text)
	assert.Contains(t, err.Error(), "  --> string:2:6\n")
	assert.Contains(t, err.Error(), " 2 |   (1 +\n")
	assert.Contains(t, err.Error(), "   |      ^\n")
}

func TestParseErrorWithoutSource(t *testing.T) {
	tokens, _ := lexer.TokenizeString("()", lexer.WithLogger(quietLogger))
	tree := ParseTokens(tokens, WithLogger(quietLogger))

	require.NotNil(t, tree.Error)
	assert.Equal(t, "empty parentheses group", tree.Error.Error())
	assert.Equal(t, "", tree.Error.Snippet())

	line, column := tree.Error.Position()
	assert.Zero(t, line)
	assert.Zero(t, column)
}

func TestParseErrorSuggestions(t *testing.T) {
	err := parseError(t, "1 an 2")
	assert.Equal(t, `unexpected "an" after expression`, err.Message)
	require.NotEmpty(t, err.Suggestions)
	assert.Equal(t, "and", err.Suggestions[0])
	assert.Contains(t, err.Suggestions, "in")
	assert.LessOrEqual(t, len(err.Suggestions), 3)
	assert.Contains(t, err.Error(), `= help: did you mean "and"`)
}

func TestParseErrorSuggestionsTypesystem(t *testing.T) {
	err := parseError(t, "a extend b", WithProfile(syntax.Typesystem()))
	require.NotEmpty(t, err.Suggestions)
	assert.Equal(t, "extends", err.Suggestions[0])
}

func TestParseErrorIsError(t *testing.T) {
	tree := ParseString("f(", WithLogger(quietLogger))

	var perr *ParseError
	require.True(t, errors.As(tree.Err(), &perr))
	assert.Equal(t, "call arguments", perr.Context)
}

func TestLexErrorsComeFirst(t *testing.T) {
	tree := ParseString("12LOL", WithLogger(quietLogger))

	require.Len(t, tree.LexErrors, 1)
	require.Error(t, tree.Err())
	assert.Equal(t, "malformed decimal number, got L", tree.LexErrors[0].Message)
	assert.Equal(t, tree.LexErrors[0], tree.Err())

	// the recovered tokens 12 and LOL still reach the parser
	require.NotNil(t, tree.Error)
	assert.Equal(t, `unexpected "LOL" after expression`, tree.Error.Message)
}

func TestMaxDepth(t *testing.T) {
	tree := ParseString("((((1))))", WithLogger(quietLogger), WithMaxDepth(3))
	require.NotNil(t, tree.Error)
	assert.Equal(t, "expression nested deeper than 3 levels", tree.Error.Message)

	tree = ParseString("((1))", WithLogger(quietLogger), WithMaxDepth(3))
	assert.Nil(t, tree.Error)
	assert.Equal(t, "(paren (paren 1))", Format(tree.Root))
}

func TestDeepNestingWithoutLimit(t *testing.T) {
	input := strings.Repeat("(", 500) + "1" + strings.Repeat(")", 500)
	root := parse(t, input)
	assert.Equal(t, 500, root.(*Atomic).Parens.Depth())
}

func TestTooManyArguments(t *testing.T) {
	input := "f(" + strings.Repeat("1, ", maxArguments) + "1)"
	err := parseError(t, input)
	assert.Equal(t, "too many arguments (limit 1000)", err.Message)

	input = "f(" + strings.Repeat("1, ", maxArguments-1) + "1)"
	call := parse(t, input).(*Call)
	assert.Len(t, call.Arguments, maxArguments)
	assert.Len(t, call.Commas, maxArguments-1)
}
