package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/nattlua/nattlua-go/core/code"
	"github.com/nattlua/nattlua-go/runtime/lexer"
)

// ParseError aborts a parse. Start and Stop are the offending tokens; Source
// is set when the parser knows the buffer and enables the snippet.
type ParseError struct {
	Message     string
	Context     string // construct being parsed: "call arguments", "table", ...
	Start       lexer.Token
	Stop        lexer.Token
	Source      *code.Code
	Suggestions []string
}

// Error returns the message followed by a Rust-style snippet when the source
// is known.
func (e *ParseError) Error() string {
	snippet := e.Snippet()
	if snippet == "" {
		return e.Message
	}
	return fmt.Sprintf("%s\n%s", e.Message, snippet)
}

// Position returns the 1-based line and column of Start, or 0, 0 without a
// source.
func (e *ParseError) Position() (line, column int) {
	if e.Source == nil {
		return 0, 0
	}
	return e.Source.LineColumn(clamp(e.Start.Start, e.Source.Len()))
}

// Snippet renders the offending line with a caret under the token span.
func (e *ParseError) Snippet() string {
	if e.Source == nil {
		return ""
	}
	line, column := e.Position()
	lineContent := e.Source.Line(line)

	width := 1
	if stop := clamp(e.Stop.Stop, e.Source.Len()); stop > e.Start.Start {
		stopLine, stopColumn := e.Source.LineColumn(stop)
		if stopLine == line {
			width = stopColumn - column
		} else {
			width = len(lineContent) - column + 1
		}
	}
	if width < 1 {
		width = 1
	}

	var snippet strings.Builder
	snippet.WriteString(fmt.Sprintf("  --> %s:%d:%d\n", e.Source.Name(), line, column))
	snippet.WriteString("   |\n")
	snippet.WriteString(fmt.Sprintf("%2d | %s\n", line, lineContent))
	snippet.WriteString("   | ")
	snippet.WriteString(strings.Repeat(" ", column-1) + strings.Repeat("^", width))
	if e.Context != "" {
		snippet.WriteString("\n   = note: while parsing " + e.Context)
	}
	if len(e.Suggestions) > 0 {
		snippet.WriteString("\n   = help: did you mean " + quoteList(e.Suggestions) + "?")
	}
	return snippet.String()
}

func clamp(offset, size int) int {
	if offset < 0 {
		return 0
	}
	if offset > size {
		return size
	}
	return offset
}

func quoteList(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = fmt.Sprintf("%q", w)
	}
	if len(quoted) == 1 {
		return quoted[0]
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + " or " + quoted[len(quoted)-1]
}

// describe names a token in error messages.
func describe(tok lexer.Token) string {
	if tok.Kind == lexer.EndOfFile {
		return "end of file"
	}
	return fmt.Sprintf("%q", tok.Text)
}

const maxSuggestions = 3

// suggest finds words close to a misspelled operator or keyword. Fuzzy
// (subsequence) matches come first, then anything within two edits.
func suggest(word string, candidates []string) []string {
	ranks := fuzzy.RankFindFold(word, candidates)
	sort.Sort(ranks)

	var out []string
	seen := make(map[string]bool)
	for _, r := range ranks {
		if r.Target == word || seen[r.Target] {
			continue
		}
		seen[r.Target] = true
		out = append(out, r.Target)
	}

	type near struct {
		word     string
		distance int
	}
	var nearby []near
	for _, c := range candidates {
		if seen[c] || c == word {
			continue
		}
		if d := fuzzy.LevenshteinDistance(strings.ToLower(word), c); d <= 2 {
			nearby = append(nearby, near{c, d})
		}
	}
	sort.SliceStable(nearby, func(i, j int) bool {
		if nearby[i].distance != nearby[j].distance {
			return nearby[i].distance < nearby[j].distance
		}
		return nearby[i].word < nearby[j].word
	})
	for _, n := range nearby {
		out = append(out, n.word)
	}

	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
