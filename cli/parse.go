package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nattlua/nattlua-go/core/code"
	"github.com/nattlua/nattlua-go/core/syntax"
	"github.com/nattlua/nattlua-go/runtime/analyzer"
	"github.com/nattlua/nattlua-go/runtime/parser"
)

type treeDump struct {
	Source      string       `json:"source" cbor:"source"`
	Fingerprint string       `json:"fingerprint" cbor:"fingerprint"`
	Profile     string       `json:"profile" cbor:"profile"`
	Root        *parser.Node `json:"root,omitempty" cbor:"root,omitempty"`
	Value       string       `json:"value,omitempty" cbor:"value,omitempty"`
	Errors      []diagnostic `json:"errors,omitempty" cbor:"errors,omitempty"`
}

func newParseCmd(opts *globalOptions) *cobra.Command {
	var expr string

	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Parse one expression and print its tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exprSet := cmd.Flags().Changed("expr")
			if exprSet == (len(args) == 1) {
				return &CLIError{
					Type:    "usage",
					Message: "parse needs exactly one of a file argument or --expr",
					Hint:    `use "nattlua parse file.nlua" or "nattlua parse --expr '1 + 2'"`,
				}
			}

			src := code.FromString(expr, "<expr>")
			if !exprSet {
				var err error
				if src, err = readSource(cmd.InOrStdin(), args[0]); err != nil {
					return err
				}
			}
			return runParse(cmd.OutOrStdout(), cmd.ErrOrStderr(), src, opts)
		},
	}

	cmd.Flags().StringVar(&expr, "expr", "", "Expression text to parse instead of a file")
	return cmd
}

func parseOptions(opts *globalOptions, profile *syntax.Profile) []parser.ParserOpt {
	parseOpts := []parser.ParserOpt{
		parser.WithProfile(profile),
		parser.WithLogger(opts.logger),
	}
	if opts.debug {
		parseOpts = append(parseOpts, parser.WithTelemetryTiming())
	}
	return parseOpts
}

func runParse(stdout, stderr io.Writer, src *code.Code, opts *globalOptions) error {
	tree := parser.Parse(src, parseOptions(opts, opts.profile)...)
	logTelemetry(opts, tree)

	value := literalValue(tree, opts)

	if opts.structured() {
		dump := treeDump{
			Source:      src.Name(),
			Fingerprint: src.FingerprintHex(),
			Profile:     opts.profile.Name(),
			Errors:      treeDiagnostics(tree),
		}
		if tree.Root != nil {
			node := parser.Dump(tree.Root)
			dump.Root = &node
		}
		if value != nil {
			dump.Value = value.String()
		}
		if err := opts.encode(stdout, dump); err != nil {
			return err
		}
		if len(dump.Errors) > 0 {
			return errReported
		}
		return nil
	}

	if reportTree(stderr, tree, opts.useColor) > 0 {
		return errReported
	}
	_, _ = fmt.Fprintln(stdout, parser.Format(tree.Root))
	if value != nil {
		_, _ = fmt.Fprintf(stdout, "%s %s\n", Colorize("=", ColorGray, opts.useColor), value)
	}
	return nil
}

// literalValue analyzes the root of a clean tree. Malformed literals are
// logged and yield no value.
func literalValue(tree *parser.ParseTree, opts *globalOptions) analyzer.Value {
	if tree.Err() != nil || tree.Root == nil {
		return nil
	}
	env := analyzer.Runtime
	if opts.profileName == syntax.Typesystem().Name() {
		env = analyzer.Typesystem
	}
	v, err := analyzer.Analyze(tree.Root, env)
	if err != nil {
		opts.logger.Debug("no literal value", "source", tree.Source.Name(), "error", err)
		return nil
	}
	return v
}

func logTelemetry(opts *globalOptions, tree *parser.ParseTree) {
	if tree.Telemetry == nil {
		return
	}
	tel := tree.Telemetry
	opts.logger.Debug("parse telemetry",
		"source", tree.Source.Name(),
		"tokens", tel.TokenCount,
		"nodes", tel.NodeCount,
		"depth", tel.MaxDepth,
		"errors", tel.ErrorCount,
		"lex", tel.LexTime,
		"parse", tel.ParseTime,
		"total", tel.TotalTime,
	)
}
