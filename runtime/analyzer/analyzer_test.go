package analyzer

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/nattlua/nattlua-go/core/syntax"
	"github.com/nattlua/nattlua-go/runtime/parser"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func analyze(t *testing.T, input string, env Environment) (Value, error) {
	t.Helper()
	opts := []parser.ParserOpt{parser.WithLogger(quietLogger)}
	if env == Typesystem {
		opts = append(opts, parser.WithProfile(syntax.Typesystem()))
	}
	tree := parser.ParseString(input, opts...)
	require.NoError(t, tree.Err())
	return Analyze(tree.Root, env)
}

func TestAnalyzeLiterals(t *testing.T) {
	tests := []struct {
		input    string
		expected Value
	}{
		{"nil", Symbol{Nil}},
		{"true", Symbol{True}},
		{"false", Symbol{False}},
		{"0x123", Number{291}},
		{"0XFF", Number{255}},
		{"0x1.8p+1", Number{3}},
		{"0b1011", Number{11}},
		{"0b1e+2", Number{100}},
		{"1_000_000", Number{1000000}},
		{"42ull", Number{42}},
		{"42LL", Number{42}},
		{"7ul", Number{7}},
		{"3i", Number{3}},
		{"1.5e+3", Number{1500}},
		{".5", Number{0.5}},
		{"(12)", Number{12}},
		{`"hello"`, String{"hello"}},
		{`'it\'s'`, String{`it\'s`}},
		{`"\n"`, String{`\n`}},
		{"[[long]]", String{"long"}},
		{"[==[a]]b]==]", String{"a]]b"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := analyze(t, tt.input, Runtime)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestAnalyzeNonLiterals(t *testing.T) {
	for _, input := range []string{"x", "...", "a + 1", "-1", "{}", "f()", "a.b", "typeof"} {
		t.Run(input, func(t *testing.T) {
			v, err := analyze(t, input, Runtime)
			require.NoError(t, err)
			assert.Nil(t, v)
		})
	}
	v, err := Analyze(nil, Runtime)
	assert.NoError(t, err)
	assert.Nil(t, v)
}

func TestAnalyzeTypesystem(t *testing.T) {
	v, err := analyze(t, "true", Typesystem)
	require.NoError(t, err)
	assert.Equal(t, Symbol{True}, v)

	v, err = analyze(t, "0x10", Typesystem)
	require.NoError(t, err)
	assert.Equal(t, Number{16}, v)
}

func TestParseNumberSpecials(t *testing.T) {
	n, err := ParseNumber("nan", nil)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(n))

	n, err = ParseNumber("inf", nil)
	require.NoError(t, err)
	assert.True(t, math.IsInf(n, 1))

	n, err = ParseNumber("-INF", nil)
	require.NoError(t, err)
	assert.True(t, math.IsInf(n, -1))

	n, err = ParseNumber("1e+999", nil)
	require.NoError(t, err)
	assert.True(t, math.IsInf(n, 1), "out of range saturates")

	n, err = ParseNumber("0b1111111111111111111111111111111111111111111111111111111111111111111", nil)
	require.NoError(t, err)
	assert.Greater(t, n, float64(math.MaxUint64))
}

func TestMalformedLiterals(t *testing.T) {
	_, err := ParseNumber("0x", syntax.Runtime())
	assert.ErrorIs(t, err, ErrMalformedLiteral)

	_, err = ParseNumber("0b12", syntax.Runtime())
	assert.ErrorIs(t, err, ErrMalformedLiteral)

	for _, s := range []string{"", `"abc`, "'", "[==[abc]]", "[x", "abc"} {
		_, err := ParseString(s)
		assert.ErrorIs(t, err, ErrMalformedLiteral, s)
	}
}

func TestValueStrings(t *testing.T) {
	assert.Equal(t, "nil", Symbol{Nil}.String())
	assert.Equal(t, "false", Symbol{False}.String())
	assert.Equal(t, "291", Number{291}.String())
	assert.Equal(t, "0.5", Number{0.5}.String())
	assert.Equal(t, `"a\"b"`, String{`a"b`}.String())
	assert.Equal(t, "typesystem", Typesystem.String())
}

// Number literals that plain Lua also accepts must evaluate to the same
// value under gopher-lua.
func TestNumbersMatchGopherLua(t *testing.T) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	inputs := []string{"0", "42", "0x123", "0xff", "0XA", "3.25", ".5", "1e+10", "2.5e-3", "123456789012"}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			require.NoError(t, L.DoString("result = "+input))
			want, ok := L.GetGlobal("result").(lua.LNumber)
			require.True(t, ok)

			v, err := analyze(t, input, Runtime)
			require.NoError(t, err)
			assert.Equal(t, Number{float64(want)}, v)
		})
	}
}

func TestStringsMatchGopherLua(t *testing.T) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	// without escapes the raw content equals the evaluated string
	for _, input := range []string{`"abc"`, `'x y'`, "[[long string]]", "[=[with ]] inside]=]"} {
		t.Run(input, func(t *testing.T) {
			require.NoError(t, L.DoString("result = "+input))
			want := L.GetGlobal("result").String()

			v, err := analyze(t, input, Runtime)
			require.NoError(t, err)
			assert.Equal(t, String{want}, v)
		})
	}
}
