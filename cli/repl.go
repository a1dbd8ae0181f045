package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/nattlua/nattlua-go/core/code"
	"github.com/nattlua/nattlua-go/runtime/lexer"
	"github.com/nattlua/nattlua-go/runtime/parser"
)

const (
	historyFile = ".nattlua_history"
	promptMain  = "> "
	promptCont  = ". "
)

func newReplCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Parse expressions interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}
}

// session evaluates repl input. Commands start with ":".
type session struct {
	opts   *globalOptions
	stdout io.Writer
	stderr io.Writer
	count  int
}

// incomplete reports whether more input could still complete the
// expression: the parse stopped at end of file.
func incomplete(tree *parser.ParseTree) bool {
	return tree.Error != nil && tree.Error.Stop.Kind == lexer.EndOfFile && len(tree.LexErrors) == 0
}

func (s *session) parse(input string) *parser.ParseTree {
	s.count++
	src := code.FromString(input, fmt.Sprintf("<repl:%d>", s.count))
	return parser.Parse(src, parseOptions(s.opts, s.opts.profile)...)
}

// handle runs one complete input. It returns false when the session should
// end.
func (s *session) handle(input string) bool {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return true
	}

	if strings.HasPrefix(trimmed, ":") {
		return s.command(strings.Fields(trimmed))
	}

	tree := s.parse(input)
	logTelemetry(s.opts, tree)
	if reportTree(s.stderr, tree, s.opts.useColor) > 0 {
		return true
	}
	_, _ = fmt.Fprintln(s.stdout, parser.Format(tree.Root))
	if value := literalValue(tree, s.opts); value != nil {
		_, _ = fmt.Fprintf(s.stdout, "%s %s\n", Colorize("=", ColorGray, s.opts.useColor), value)
	}
	return true
}

func (s *session) command(fields []string) bool {
	switch fields[0] {
	case ":quit", ":q":
		return false
	case ":profile":
		if len(fields) != 2 {
			_, _ = fmt.Fprintf(s.stdout, "profile: %s\n", s.opts.profile.Name())
			return true
		}
		profile, err := lookupProfile(fields[1])
		if err != nil {
			FormatError(s.stderr, err, s.opts.useColor)
			return true
		}
		s.opts.profile = profile
		s.opts.profileName = profile.Name()
		_, _ = fmt.Fprintf(s.stdout, "profile: %s\n", profile.Name())
	case ":tokens":
		src := code.FromString(strings.Join(fields[1:], " "), "<repl>")
		_ = runTokens(s.stdout, s.stderr, src, s.opts)
	default:
		_, _ = fmt.Fprintln(s.stdout, "unknown command. Commands: :profile [name], :tokens <code>, :quit")
	}
	return true
}

// readInput prompts until the buffered lines parse or fail for a reason
// other than running out of input.
func (s *session) readInput(ln *liner.State) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C drops the pending input
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		input := b.String()
		if strings.HasPrefix(strings.TrimSpace(input), ":") {
			return input, true
		}
		if strings.TrimSpace(input) == "" || !incomplete(parser.ParseString(input, parser.WithProfile(s.opts.profile), parser.WithLogger(s.opts.logger))) {
			return input, true
		}
	}
}

func runRepl(stdout, stderr io.Writer, opts *globalOptions) error {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	s := &session{opts: opts, stdout: stdout, stderr: stderr}
	for {
		input, ok := s.readInput(ln)
		if !ok {
			_, _ = fmt.Fprintln(stdout)
			return nil
		}
		if strings.TrimSpace(input) != "" {
			ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))
		}
		if !s.handle(input) {
			return nil
		}
	}
}
