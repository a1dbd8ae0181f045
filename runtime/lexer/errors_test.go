package lexer

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMalformedInputMessages(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"12LOL", "malformed decimal number, got L"},
		{"0xbLOL", "malformed hex number, got L"},
		{"0b101LOL01", "malformed binary number, got L"},
		{"0b102", "malformed binary number, got 2"},
		{"1.5eD", "expected + or - after exponent, got D"},
		{"1.5e+D", "malformed 'exponent' expected number, got D"},
		{"0x1pD", "expected + or - after pow, got D"},
		{"0x1p-", "malformed 'pow' expected number, got "},
		{"/* x", "expected multiline C comment to end, reached end of code"},
		{"--[[ x", "expected multiline comment to end, reached end of code"},
		{"\"abc\nx", "expected ending \" quote, got newline"},
		{"'abc", "expected ending ' quote, reached end of code"},
		{"a = [=a", "malformed multiline string: expected '=', got a"},
		{"[[abc", "expected multiline string to end, reached end of code"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, errs := tokenize(tt.input)
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
			}
			if errs[0].Message != tt.message {
				t.Errorf("message mismatch: got %q, want %q", errs[0].Message, tt.message)
			}
			if errs[0].Start > errs[0].Stop || errs[0].Stop > len(tt.input) {
				t.Errorf("bad error span [%d, %d)", errs[0].Start, errs[0].Stop)
			}

			// every recovery keeps the token list lossless
			if got := Reassemble(tokens); got != tt.input {
				t.Errorf("round trip mismatch: got %q, want %q", got, tt.input)
			}
			if last := tokens[len(tokens)-1]; last.Kind != EndOfFile {
				t.Errorf("last token is %v, want EndOfFile", last.Kind)
			}
		})
	}
}

func TestRecoveryPoints(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []tokenExpectation
	}{
		{
			name:  "malformed number stops before the offending byte",
			input: "12LOL",
			expected: []tokenExpectation{
				{Number, "12", nil},
				{Letter, "LOL", nil},
				{EndOfFile, "", nil},
			},
		},
		{
			name:  "bad exponent keeps the exponent marker",
			input: "1.5eD",
			expected: []tokenExpectation{
				{Number, "1.5e", nil},
				{Letter, "D", nil},
				{EndOfFile, "", nil},
			},
		},
		{
			name:  "unterminated string stops before the newline",
			input: "\"abc\nx",
			expected: []tokenExpectation{
				{String, "\"abc", nil},
				{Letter, "x", []Kind{Space}},
				{EndOfFile, "", nil},
			},
		},
		{
			name:  "unterminated long string runs to the end",
			input: "x = [[abc",
			expected: []tokenExpectation{
				{Letter, "x", nil},
				{Symbol, "=", []Kind{Space}},
				{String, "[[abc", []Kind{Space}},
				{EndOfFile, "", nil},
			},
		},
		{
			name:  "malformed long string opener",
			input: "a = [=a",
			expected: []tokenExpectation{
				{Letter, "a", nil},
				{Symbol, "=", []Kind{Space}},
				{String, "[=", []Kind{Space}},
				{Letter, "a", nil},
				{EndOfFile, "", nil},
			},
		},
		{
			name:  "unterminated long comment runs to the end",
			input: "x --[[ abc",
			expected: []tokenExpectation{
				{Letter, "x", nil},
				{EndOfFile, "", []Kind{Space, MultilineComment}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, errs := tokenize(tt.input)
			if len(errs) == 0 {
				t.Fatal("expected a lex error")
			}

			var actual []tokenExpectation
			for _, tok := range tokens {
				exp := tokenExpectation{Kind: tok.Kind, Text: tok.Text}
				for _, w := range tok.Leading {
					exp.Leading = append(exp.Leading, w.Kind)
				}
				actual = append(actual, exp)
			}
			if diff := cmp.Diff(tt.expected, actual); diff != "" {
				t.Errorf("token mismatch (-expected +actual):\n%s", diff)
			}
		})
	}
}

func TestMultipleErrorsInOnePass(t *testing.T) {
	input := "12LOL + 0xZ + 'open"
	tokens, errs := tokenize(input)

	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(errs), errs)
	}
	want := []string{"malformed decimal number", "malformed hex number", "expected ending ' quote"}
	for i, w := range want {
		if !strings.Contains(errs[i].Message, w) {
			t.Errorf("error %d: got %q, want it to contain %q", i, errs[i].Message, w)
		}
	}
	if got := Reassemble(tokens); got != input {
		t.Errorf("round trip mismatch: got %q", got)
	}
}

func TestLexErrorString(t *testing.T) {
	_, errs := tokenize("12LOL")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if got := errs[0].Error(); got != "2:3: malformed decimal number, got L" {
		t.Errorf("unexpected error string %q", got)
	}
}
