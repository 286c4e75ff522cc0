package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/artemijrodionov/sim8086/config"
	"github.com/artemijrodionov/sim8086/disasm"
	"github.com/artemijrodionov/sim8086/logging"
	"github.com/artemijrodionov/sim8086/output"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errUsage = errors.New("usage")

type Cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	cfg        config.Config
	logger     hclog.Logger
	closers    []io.Closer

	// open loads an input file, disasm.Open unless the file may change
	// while it is decoded.
	open func(path string) (*disasm.Source, error)
}

func NewCli(stdin io.Reader, stdout, stderr io.Writer) *Cli {
	return &Cli{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: hclog.NewNullLogger(),
		open:   disasm.Open,
	}
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("%w: expected %d argument(s), got %d", errUsage, n, len(args))
		}
		return nil
	}
}

func (c *Cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sim8086 [flags] <file>",
		Short: "Disassemble 8086 register-to-register mov instructions",
		Long: `sim8086 reads a flat binary of 2-byte 8086 mov encodings, as produced by
nasm from listings like "mov cx, bx", and prints them back as assembly.
Use "-" as the file to read standard input.`,
		Args: exactArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.disassemble(cmd.Context(), args[0])
			return err
		},
	}
	root.SilenceErrors = true
	root.SilenceUsage = true
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %s", errUsage, err)
	})

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default is ./sim8086.yaml or $HOME/.sim8086/sim8086.yaml)")
	config.AddFlags(root.PersistentFlags())

	root.AddCommand(c.watchCmd())
	root.AddCommand(c.shellCmd())
	return root
}

func (c *Cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(viper.New(), c.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	c.cfg = cfg

	logger, closer := logging.New(cfg.Log, c.stderr)
	c.logger = logger
	c.closers = append(c.closers, closer)
	return nil
}

// disassemble decodes one file, or stdin for "-", to stdout.
func (c *Cli) disassemble(ctx context.Context, path string) (disasm.Summary, error) {
	var src *disasm.Source
	if path != "-" {
		var err error
		if src, err = c.open(path); err != nil {
			return disasm.Summary{}, err
		}
		defer src.Close()
	}

	w, err := output.New(output.Format(c.cfg.Output.Format), c.stdout, c.cfg.OutputOptions(path))
	if err != nil {
		return disasm.Summary{}, err
	}

	d := disasm.New(w, c.cfg.DisasmOptions(), c.logger.Named("disasm"))
	var summary disasm.Summary
	if src == nil {
		summary, err = d.Run(ctx, c.stdin)
	} else {
		c.logger.Debug("opened input", "path", path, "size", len(src.Bytes()), "mapped", src.Mapped())
		summary, err = d.RunBytes(ctx, src.Bytes())
	}

	c.logger.Info("done", "path", path,
		"instructions", summary.Instructions,
		"skipped", summary.Skipped,
		"trailing_bytes", summary.TrailingBytes)
	c.warn(path, summary)
	return summary, errors.Join(err, w.Finish(summary))
}

// warn reports dropped input on stderr whatever the log level or log file,
// so a listing that is shorter than its input never goes unnoticed.
func (c *Cli) warn(path string, summary disasm.Summary) {
	if summary.Skipped > 0 {
		fmt.Fprintf(c.stderr, "sim8086: warning: %s: skipped %d undecodable instruction(s)\n", path, summary.Skipped)
	}
	if summary.TrailingBytes > 0 && c.cfg.Decode.Trailing != string(disasm.RejectTrailing) {
		fmt.Fprintf(c.stderr, "sim8086: warning: %s: dropped %d trailing byte(s)\n", path, summary.TrailingBytes)
	}
}

// Execute runs the command line and returns the exit status.
func (c *Cli) Execute(ctx context.Context, args []string) int {
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetIn(c.stdin)
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return exitOK
	}

	if errors.Is(err, errUsage) {
		if cmd == nil {
			cmd = root
		}
		fmt.Fprintln(c.stderr, "sim8086:", err)
		cmd.Usage()
		return exitUsage
	}
	fmt.Fprintln(c.stderr, "sim8086:", err)
	return exitError
}

// Close releases log files. It is safe to call more than once.
func (c *Cli) Close() {
	for _, closer := range c.closers {
		closer.Close()
	}
	c.closers = nil
}
