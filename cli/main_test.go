package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTokensText(t *testing.T) {
	stdout, stderr, err := execute(t, "a + 1", "tokens", "-")
	require.NoError(t, err)
	assert.Empty(t, stderr)

	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "Letter"))
	assert.Contains(t, lines[0], `"a"`)
	assert.Contains(t, lines[1], `"+"`)
	assert.Contains(t, lines[1], "+1 trivia")
	assert.True(t, strings.HasPrefix(lines[2], "Number"))
	assert.True(t, strings.HasPrefix(lines[3], "EndOfFile"))
	assert.NotContains(t, stdout, "\033[", "buffers never get color")
}

func TestTokensJSON(t *testing.T) {
	stdout, _, err := execute(t, "f(x)", "--format", "json", "tokens", "-")
	require.NoError(t, err)

	var dump tokenDump
	require.NoError(t, json.Unmarshal([]byte(stdout), &dump))

	assert.Equal(t, "<stdin>", dump.Source)
	assert.Len(t, dump.Fingerprint, 64)
	var kinds []string
	for _, tok := range dump.Tokens {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []string{"Letter", "Symbol", "Letter", "Symbol", "EndOfFile"}, kinds)
	assert.Empty(t, dump.Errors)
}

func TestTokensReportsLexErrors(t *testing.T) {
	stdout, stderr, err := execute(t, "12LOL", "tokens", "-")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, stdout, "Number")
	assert.Contains(t, stderr, "error: malformed decimal number")
	assert.Contains(t, stderr, "--> <stdin>:1:3")
}

func TestParseExpr(t *testing.T) {
	tests := []struct {
		args     []string
		expected string
	}{
		{[]string{"parse", "--expr", "1 + 2 * 3"}, "(+ 1 (* 2 3))\n"},
		{[]string{"parse", "--expr", "0x123"}, "0x123\n= 291\n"},
		{[]string{"parse", "--expr", `"hi"`}, "\"hi\"\n= \"hi\"\n"},
		{[]string{"parse", "--expr", "a.b:c(1)"}, "(call (: (. a b) c) 1)\n"},
		{[]string{"--profile", "typesystem", "parse", "--expr", "a extends b"}, "(extends a b)\n"},
		{[]string{"parse", "--expr", "-x ^ 2"}, "(- (^ x 2))\n"},
		{[]string{"parse", "--expr=-1"}, "(- 1)\n"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			stdout, stderr, err := execute(t, "", tt.args...)
			require.NoError(t, err, stderr)
			assert.Equal(t, tt.expected, stdout)
		})
	}
}

func TestParseNeedsOneSource(t *testing.T) {
	path := writeFile(t, t.TempDir(), "expr.nlua", "x")

	for _, args := range [][]string{{"parse"}, {"parse", "--expr", "x", path}} {
		_, _, err := execute(t, "", args...)
		var cliErr *CLIError
		require.True(t, errors.As(err, &cliErr), "%v", args)
		assert.Contains(t, cliErr.Message, "exactly one of")
	}
}

func TestParseFileAndStdin(t *testing.T) {
	path := writeFile(t, t.TempDir(), "expr.nlua", "not a or b\n")

	stdout, _, err := execute(t, "", "parse", path)
	require.NoError(t, err)
	assert.Equal(t, "(or (not a) b)\n", stdout)

	stdout, _, err = execute(t, "x ^ y", "parse", "-")
	require.NoError(t, err)
	assert.Equal(t, "(^ x y)\n", stdout)
}

func TestParseErrorSnippet(t *testing.T) {
	stdout, stderr, err := execute(t, "", "parse", "--expr", "foo(1,)")
	assert.ErrorIs(t, err, errReported)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, `error: expected argument after ",", got ")"`)
	assert.Contains(t, stderr, "--> <expr>:1:")
	assert.Contains(t, stderr, " 1 | foo(1,)")
	assert.Contains(t, stderr, "= note: while parsing call arguments")
}

func TestParseSuggestions(t *testing.T) {
	_, stderr, err := execute(t, "", "parse", "--expr", "a an b")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, stderr, `= help: did you mean "and"`)
}

func TestParseJSON(t *testing.T) {
	stdout, _, err := execute(t, "", "--format", "json", "parse", "--expr", "-1 .. x")
	require.NoError(t, err)

	var dump treeDump
	require.NoError(t, json.Unmarshal([]byte(stdout), &dump))
	assert.Equal(t, "<expr>", dump.Source)
	assert.Equal(t, "runtime", dump.Profile)
	require.NotNil(t, dump.Root)
	assert.Equal(t, "BinaryOperator", dump.Root.Kind)
	require.Len(t, dump.Root.Children, 2)
	assert.Equal(t, "PrefixOperator", dump.Root.Children[0].Kind)
	assert.Empty(t, dump.Value)
}

func TestParseJSONCarriesErrors(t *testing.T) {
	stdout, _, err := execute(t, "", "--format", "json", "parse", "--expr", "(1 +")
	assert.ErrorIs(t, err, errReported)

	var dump treeDump
	require.NoError(t, json.Unmarshal([]byte(stdout), &dump))
	assert.Nil(t, dump.Root)
	require.Len(t, dump.Errors, 1)
	assert.Equal(t, 1, dump.Errors[0].Line)
	assert.Equal(t, "binary operator", dump.Errors[0].Context)
}

func TestParseCBOR(t *testing.T) {
	stdout, _, err := execute(t, "", "--format", "cbor", "parse", "--expr", "42")
	require.NoError(t, err)

	var dump treeDump
	require.NoError(t, cbor.Unmarshal([]byte(stdout), &dump))
	require.NotNil(t, dump.Root)
	assert.Equal(t, "Atomic", dump.Root.Kind)
	assert.Equal(t, "42", dump.Root.Text)
	assert.Equal(t, "42", dump.Value)

	// canonical encoding is deterministic
	again, _, err := execute(t, "", "--format", "cbor", "parse", "--expr", "42")
	require.NoError(t, err)
	assert.Equal(t, stdout, again)
}

func TestExtendProfile(t *testing.T) {
	ext := writeFile(t, t.TempDir(), "ext.json", `{"name": "runtime+game", "prefixOperators": ["$$"]}`)

	stdout, stderr, err := execute(t, "", "--extend", ext, "parse", "--expr", "$$x")
	require.NoError(t, err, stderr)
	assert.Equal(t, "($$ x)\n", stdout)

	bad := writeFile(t, t.TempDir(), "bad.json", `{"keywords": "goto"}`)
	_, _, err = execute(t, "", "--extend", bad, "parse", "--expr", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error loading extension")

	_, _, err = execute(t, "", "--extend", filepath.Join(t.TempDir(), "missing.json"), "parse", "--expr", "x")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFlagValidation(t *testing.T) {
	_, _, err := execute(t, "", "--format", "yaml", "parse", "--expr", "x")
	var cliErr *CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, `unknown output format "yaml"`, cliErr.Message)

	_, _, err = execute(t, "", "--profile", "python", "parse", "--expr", "x")
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, `unknown profile "python"`, cliErr.Message)
	assert.Contains(t, cliErr.Hint, "typesystem")
}

func TestMissingFile(t *testing.T) {
	_, _, err := execute(t, "", "parse", filepath.Join(t.TempDir(), "nope.nlua"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "error opening file")
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.nlua", "a + b")
	bad := writeFile(t, dir, "bad.nlua", "a +\n")

	stdout, stderr, err := execute(t, "", "check", good, bad)
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, stdout, "ok   "+good)
	assert.Contains(t, stdout, "fail "+bad)
	assert.Contains(t, stdout, "1 of 2 files ok")
	assert.Contains(t, stderr, "expected right side to be an expression, got end of file")

	stdout, _, err = execute(t, "", "check", good)
	require.NoError(t, err)
	assert.Equal(t, "ok   "+good+"\n", stdout)
}

func TestCheckJSON(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.nlua", "{1, 2}")
	bad := writeFile(t, dir, "bad.nlua", "'open")

	stdout, _, err := execute(t, "", "--format", "json", "check", good, bad)
	assert.ErrorIs(t, err, errReported)

	var results []checkResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &results))
	require.Len(t, results, 2)
	assert.True(t, results[0].OK)
	assert.False(t, results[1].OK)
	assert.NotEmpty(t, results[1].Errors)
	assert.NotEqual(t, results[0].Fingerprint, results[1].Fingerprint)
}

func TestFormatError(t *testing.T) {
	var buf bytes.Buffer
	FormatError(&buf, &CLIError{Message: "bad flag", Details: "details", Hint: "try again"}, false)
	assert.Equal(t, "Error: bad flag\n\ndetails\nHint: try again\n", buf.String())

	buf.Reset()
	FormatError(&buf, errors.New("boom"), true)
	assert.Equal(t, ColorRed+"Error: "+ColorReset+"boom\n", buf.String())

	buf.Reset()
	FormatError(&buf, nil, false)
	assert.Empty(t, buf.String())
}

func TestShouldUseColor(t *testing.T) {
	assert.False(t, ShouldUseColor(true, os.Stdout))
	assert.False(t, ShouldUseColor(false, &bytes.Buffer{}))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, ShouldUseColor(false, os.Stdout))
}
