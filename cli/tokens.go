package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/nattlua/nattlua-go/core/code"
	"github.com/nattlua/nattlua-go/core/syntax"
	"github.com/nattlua/nattlua-go/runtime/lexer"
)

type tokenDump struct {
	Source      string              `json:"source" cbor:"source"`
	Fingerprint string              `json:"fingerprint" cbor:"fingerprint"`
	Tokens      []lexer.TokenRecord `json:"tokens" cbor:"tokens"`
	Errors      []diagnostic        `json:"errors,omitempty" cbor:"errors,omitempty"`
}

func newTokensCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file|->",
		Short: "Print the token stream of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return runTokens(cmd.OutOrStdout(), cmd.ErrOrStderr(), src, opts)
		},
	}
}

func runTokens(stdout, stderr io.Writer, src *code.Code, opts *globalOptions) error {
	lexOpts := []lexer.LexerOpt{
		lexer.WithProfiles(opts.profile, syntax.Runtime(), syntax.Typesystem()),
		lexer.WithLogger(opts.logger),
	}
	if opts.debug {
		lexOpts = append(lexOpts, lexer.WithTelemetryTiming())
	}
	lex := lexer.New(src, lexOpts...)
	tokens, lexErrors := lex.Tokenize()

	if opts.debug {
		logKindTelemetry(opts, lex.GetKindTelemetry())
	}

	if opts.structured() {
		dump := tokenDump{
			Source:      src.Name(),
			Fingerprint: src.FingerprintHex(),
			Tokens:      lexer.Records(tokens),
		}
		for _, le := range lexErrors {
			dump.Errors = append(dump.Errors, newDiagnostic(lexDiagnostic(src, le)))
		}
		if err := opts.encode(stdout, dump); err != nil {
			return err
		}
	} else {
		for _, tok := range tokens {
			writeToken(stdout, tok, opts.useColor)
		}
		for _, le := range lexErrors {
			formatParseError(stderr, lexDiagnostic(src, le), opts.useColor)
		}
	}

	if len(lexErrors) > 0 {
		return errReported
	}
	return nil
}

// writeToken prints one line: kind, byte span, quoted text and the number
// of leading trivia tokens.
func writeToken(w io.Writer, tok lexer.Token, useColor bool) {
	kind := fmt.Sprintf("%-17s", tok.Kind)
	line := fmt.Sprintf("%s %4d..%-4d %q", Colorize(kind, kindColor(tok.Kind), useColor), tok.Start, tok.Stop, tok.Text)
	if n := len(tok.Leading); n > 0 {
		line += Colorize(fmt.Sprintf(" +%d trivia", n), ColorGray, useColor)
	}
	_, _ = fmt.Fprintln(w, line)
}

func logKindTelemetry(opts *globalOptions, stats map[lexer.Kind]*lexer.KindTelemetry) {
	kinds := make([]lexer.Kind, 0, len(stats))
	for kind := range stats {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	for _, kind := range kinds {
		s := stats[kind]
		opts.logger.Debug("tokens", "kind", kind.String(), "count", s.Count, "total", s.TotalTime, "avg", s.AvgTime)
	}
}
