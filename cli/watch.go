package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func newWatchCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <files...>",
		Short: "Check files and re-check them whenever they change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args, opts)
		},
	}
}

// fileWatcher re-checks files and remembers the fingerprint of the last
// contents it checked.
type fileWatcher struct {
	opts         *globalOptions
	stdout       io.Writer
	stderr       io.Writer
	files        map[string]bool
	order        []string
	fingerprints map[string][32]byte
}

func newFileWatcher(stdout, stderr io.Writer, files []string, opts *globalOptions) (*fileWatcher, error) {
	w := &fileWatcher{
		opts:         opts,
		stdout:       stdout,
		stderr:       stderr,
		files:        make(map[string]bool),
		fingerprints: make(map[string][32]byte),
	}
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return nil, fmt.Errorf("error resolving %s: %w", file, err)
		}
		if !w.files[abs] {
			w.files[abs] = true
			w.order = append(w.order, abs)
		}
	}
	return w, nil
}

// dirs returns the directories holding the watched files, so the watch
// survives editors that replace files on save.
func (w *fileWatcher) dirs() []string {
	seen := make(map[string]bool)
	var out []string
	for _, file := range w.order {
		dir := filepath.Dir(file)
		if !seen[dir] {
			seen[dir] = true
			out = append(out, dir)
		}
	}
	return out
}

// recheck checks path unless its contents are unchanged since the last
// check. It reports whether a check ran.
func (w *fileWatcher) recheck(path string) bool {
	src, err := readSource(nil, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			delete(w.fingerprints, path)
			w.opts.logger.Debug("watched file removed", "file", path)
			return false
		}
		FormatError(w.stderr, err, w.opts.useColor)
		return false
	}

	sum := src.Fingerprint()
	if prev, ok := w.fingerprints[path]; ok && prev == sum {
		w.opts.logger.Debug("unchanged", "file", path)
		return false
	}
	w.fingerprints[path] = sum

	tree, result := checkSource(src, w.opts)
	if w.opts.structured() {
		if err := w.opts.encode(w.stdout, result); err != nil {
			FormatError(w.stderr, err, w.opts.useColor)
		}
		return true
	}
	writeCheckText(w.stdout, w.stderr, tree, w.opts)
	return true
}

// loop re-checks watched files on write and create events until ctx is done
// or a channel closes.
func (w *fileWatcher) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			path := filepath.Clean(event.Name)
			if !w.files[path] {
				continue
			}
			w.opts.logger.Debug("file event", "file", path, "op", event.Op.String())
			w.recheck(path)
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			FormatError(w.stderr, fmt.Errorf("watch error: %w", err), w.opts.useColor)
		}
	}
}

func runWatch(ctx context.Context, stdout, stderr io.Writer, files []string, opts *globalOptions) error {
	w, err := newFileWatcher(stdout, stderr, files, opts)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, dir := range w.dirs() {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("error watching %s: %w", dir, err)
		}
	}

	for _, file := range w.order {
		w.recheck(file)
	}
	_, _ = fmt.Fprintln(stderr, Colorize("watching for changes, press Ctrl+C to stop", ColorGray, opts.useColor))

	return w.loop(ctx, watcher.Events, watcher.Errors)
}
