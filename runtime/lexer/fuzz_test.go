package lexer

import (
	"testing"
)

// FuzzTokenizeRoundTrip checks that any input, valid or not, lexes into a
// lossless token list ending in exactly one EndOfFile.
func FuzzTokenizeRoundTrip(f *testing.F) {
	seeds := []string{
		"",
		"local foo =   5 + 2..2",
		"#!/usr/bin/env lua\nprint(1)",
		"0xdead_beef 0b0101 1_000 50ull 1.5e+20 .0",
		"12LOL 0xbLOL 1.5eD 1.5e+D",
		"a = [==[a]==] [=a [[x",
		"--[[# 1337 ]] --[= a\n/* c */ // d\n--[==[ x ]==]",
		"\"a\\z  \n b\" 'c\\'d' \"open\n'open",
		"§debug\n£parse\n```",
		"f<|a, b|>!(x) :: ~= != <= >= ...",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		tokens, _ := tokenize(input)

		if len(tokens) == 0 {
			t.Fatal("no tokens")
		}
		for i, tok := range tokens {
			if (tok.Kind == EndOfFile) != (i == len(tokens)-1) {
				t.Fatalf("EndOfFile at %d of %d", i, len(tokens))
			}
			if tok.Kind.IsTrivia() {
				t.Fatalf("trivia %v emitted as a token", tok.Kind)
			}
			for _, w := range tok.Leading {
				if !w.Kind.IsTrivia() {
					t.Fatalf("non-trivia %v in leading list", w.Kind)
				}
			}
		}
		if got := Reassemble(tokens); got != input {
			t.Fatalf("round trip mismatch:\n got %q\nwant %q", got, input)
		}
	})
}
