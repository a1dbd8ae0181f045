package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nattlua/nattlua-go/core/code"
	"github.com/nattlua/nattlua-go/runtime/parser"
)

type checkResult struct {
	Source      string       `json:"source" cbor:"source"`
	Fingerprint string       `json:"fingerprint" cbor:"fingerprint"`
	OK          bool         `json:"ok" cbor:"ok"`
	Errors      []diagnostic `json:"errors,omitempty" cbor:"errors,omitempty"`
}

func newCheckCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <files...>",
		Short: "Report lex and parse errors for each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args, opts)
		},
	}
}

func runCheck(stdin io.Reader, stdout, stderr io.Writer, files []string, opts *globalOptions) error {
	var (
		results []checkResult
		failed  int
	)
	for _, file := range files {
		src, err := readSource(stdin, file)
		if err != nil {
			FormatError(stderr, err, opts.useColor)
			failed++
			continue
		}

		tree, result := checkSource(src, opts)
		if !result.OK {
			failed++
		}
		if opts.structured() {
			results = append(results, result)
			continue
		}
		writeCheckText(stdout, stderr, tree, opts)
	}

	if opts.structured() {
		if err := opts.encode(stdout, results); err != nil {
			return err
		}
	} else if len(files) > 1 {
		_, _ = fmt.Fprintf(stdout, "%d of %d files ok\n", len(files)-failed, len(files))
	}

	if failed > 0 {
		return errReported
	}
	return nil
}

func checkSource(src *code.Code, opts *globalOptions) (*parser.ParseTree, checkResult) {
	tree := parser.Parse(src, parseOptions(opts, opts.profile)...)
	logTelemetry(opts, tree)

	diagnostics := treeDiagnostics(tree)
	return tree, checkResult{
		Source:      src.Name(),
		Fingerprint: src.FingerprintHex(),
		OK:          len(diagnostics) == 0,
		Errors:      diagnostics,
	}
}

func writeCheckText(stdout, stderr io.Writer, tree *parser.ParseTree, opts *globalOptions) {
	name := tree.Source.Name()
	if reportTree(stderr, tree, opts.useColor) > 0 {
		_, _ = fmt.Fprintf(stdout, "%s %s\n", Colorize("fail", ColorRed, opts.useColor), name)
		return
	}
	_, _ = fmt.Fprintf(stdout, "%s %s\n", Colorize("ok  ", ColorGreen, opts.useColor), name)
}
