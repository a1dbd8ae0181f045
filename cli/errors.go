package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nattlua/nattlua-go/core/code"
	"github.com/nattlua/nattlua-go/runtime/lexer"
	"github.com/nattlua/nattlua-go/runtime/parser"
)

// errReported is returned once diagnostics have been written, so main only
// sets the exit code.
var errReported = errors.New("errors reported")

// CLIError represents a formatted CLI error with context
type CLIError struct {
	Type    string // "flags", "input"
	Message string
	Details string // Additional context
	Hint    string // How to fix it
}

// Error implements the error interface
func (e *CLIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Details != "" {
		b.WriteString("\n")
		b.WriteString(e.Details)
	}
	if e.Hint != "" {
		b.WriteString("\n")
		b.WriteString(e.Hint)
	}
	return b.String()
}

// FormatError formats an error for CLI output with colors
func FormatError(w io.Writer, err error, useColor bool) {
	if err == nil {
		return
	}

	var (
		parseErr *parser.ParseError
		cliErr   *CLIError
	)
	switch {
	case errors.As(err, &parseErr):
		formatParseError(w, parseErr, useColor)
	case errors.As(err, &cliErr):
		formatCLIError(w, cliErr, useColor)
	default:
		_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err.Error())
	}
}

// formatParseError prints the message and the source snippet
func formatParseError(w io.Writer, err *parser.ParseError, useColor bool) {
	_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("error: ", ColorRed, useColor), err.Message)
	if snippet := err.Snippet(); snippet != "" {
		_, _ = fmt.Fprintf(w, "%s\n", Colorize(snippet, ColorGray, useColor))
	}
}

// formatCLIError formats CLI errors
func formatCLIError(w io.Writer, err *CLIError, useColor bool) {
	_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err.Message)

	if err.Details != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", err.Details)
	}

	if err.Hint != "" {
		_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Hint: ", ColorYellow, useColor), err.Hint)
	}
}

// lexDiagnostic gives a lex error the same snippet rendering as a parse
// error.
func lexDiagnostic(src *code.Code, err lexer.LexError) *parser.ParseError {
	return &parser.ParseError{
		Message: err.Message,
		Start:   lexer.Token{Start: err.Start, Stop: err.Stop},
		Stop:    lexer.Token{Start: err.Start, Stop: err.Stop},
		Source:  src,
	}
}

// reportTree writes every lex error and the parse error of tree. It returns
// the number of problems written.
func reportTree(w io.Writer, tree *parser.ParseTree, useColor bool) int {
	for _, le := range tree.LexErrors {
		formatParseError(w, lexDiagnostic(tree.Source, le), useColor)
	}
	if tree.Error == nil {
		return len(tree.LexErrors)
	}
	formatParseError(w, tree.Error, useColor)
	return len(tree.LexErrors) + 1
}

// diagnostic is the structured form of a lex or parse error.
type diagnostic struct {
	Message     string   `json:"message" cbor:"message"`
	Context     string   `json:"context,omitempty" cbor:"context,omitempty"`
	Line        int      `json:"line" cbor:"line"`
	Column      int      `json:"column" cbor:"column"`
	Start       int      `json:"start" cbor:"start"`
	Stop        int      `json:"stop" cbor:"stop"`
	Suggestions []string `json:"suggestions,omitempty" cbor:"suggestions,omitempty"`
}

func newDiagnostic(err *parser.ParseError) diagnostic {
	line, column := err.Position()
	return diagnostic{
		Message:     err.Message,
		Context:     err.Context,
		Line:        line,
		Column:      column,
		Start:       err.Start.Start,
		Stop:        err.Stop.Stop,
		Suggestions: err.Suggestions,
	}
}

func treeDiagnostics(tree *parser.ParseTree) []diagnostic {
	var out []diagnostic
	for _, le := range tree.LexErrors {
		out = append(out, newDiagnostic(lexDiagnostic(tree.Source, le)))
	}
	if tree.Error != nil {
		out = append(out, newDiagnostic(tree.Error))
	}
	return out
}
