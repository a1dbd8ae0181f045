package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nattlua/nattlua-go/core/syntax"
	"github.com/nattlua/nattlua-go/runtime/lexer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			FormatError(os.Stderr, err, ShouldUseColor(false, os.Stderr))
		}
		stop()
		os.Exit(1)
	}
}

// globalOptions holds the persistent flags and what is derived from them
// before any subcommand runs.
type globalOptions struct {
	profileName string
	extend      string
	format      string
	debug       bool
	noColor     bool

	profile  *syntax.Profile
	logger   *slog.Logger
	useColor bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "nattlua",
		Short:         "Lex and parse NattLua expressions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.profileName, "profile", "runtime", "Syntax profile (runtime|typesystem)")
	flags.StringVar(&opts.extend, "extend", "", "JSON file extending the selected profile")
	flags.StringVar(&opts.format, "format", "text", "Output format (text|json|cbor)")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug output")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		newTokensCmd(opts),
		newParseCmd(opts),
		newCheckCmd(opts),
		newWatchCmd(opts),
		newReplCmd(opts),
	)
	return rootCmd
}

// resolve validates the flags, loads the profile extension and builds the
// logger.
func (o *globalOptions) resolve(cmd *cobra.Command) error {
	switch o.format {
	case "text", "json", "cbor":
	default:
		return &CLIError{
			Type:    "flags",
			Message: fmt.Sprintf("unknown output format %q", o.format),
			Hint:    "use --format text, json or cbor",
		}
	}

	profile, err := lookupProfile(o.profileName)
	if err != nil {
		return err
	}
	if o.extend != "" {
		f, err := os.Open(o.extend)
		if err != nil {
			return fmt.Errorf("error opening extension %s: %w", o.extend, err)
		}
		defer func() { _ = f.Close() }()

		profile, err = syntax.LoadExtension(f, profile)
		if err != nil {
			return fmt.Errorf("error loading extension %s: %w", o.extend, err)
		}
	}
	o.profile = profile

	level := slog.LevelInfo
	if o.debug {
		level = slog.LevelDebug
	}
	o.logger = lexer.NewLogger(cmd.ErrOrStderr(), level)
	o.useColor = ShouldUseColor(o.noColor, cmd.OutOrStdout())
	return nil
}

func lookupProfile(name string) (*syntax.Profile, error) {
	var names []string
	for _, p := range syntax.Profiles() {
		if p.Name() == name {
			return p, nil
		}
		names = append(names, p.Name())
	}
	return nil, &CLIError{
		Type:    "flags",
		Message: fmt.Sprintf("unknown profile %q", name),
		Hint:    fmt.Sprintf("available profiles: %v", names),
	}
}
