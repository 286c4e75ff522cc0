package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/artemijrodionov/sim8086/disasm"
)

func (c *Cli) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <file>",
		Short: "Disassemble a file again every time it changes",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.watch(cmd.Context(), args[0], nil)
		},
	}
}

// watch decodes path, then again on every write until ctx is done. The
// directory is watched rather than the file so editors that replace the
// file on save are still seen. ready, if set, is closed once the watcher is
// in place.
func (c *Cli) watch(ctx context.Context, path string, ready chan<- struct{}) error {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	logger := c.logger.Named("watch")
	// The file is rewritten under us, a mapping could shrink mid-decode.
	c.open = disasm.Read
	c.rerun(ctx, path)
	if ready != nil {
		close(ready)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create {
				logger.Info("input changed", "path", path, "op", event.Op.String())
				c.rerun(ctx, path)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)
		}
	}
}

// rerun reports failures instead of returning them, a broken intermediate
// file should not end the watch.
func (c *Cli) rerun(ctx context.Context, path string) {
	fmt.Fprintf(c.stdout, "; %s\n", path)
	if _, err := c.disassemble(ctx, path); err != nil {
		c.logger.Error("disassemble failed", "path", path, "error", err)
		fmt.Fprintln(c.stderr, "sim8086:", err)
	}
}
