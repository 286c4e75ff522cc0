package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	prompt "github.com/c-bata/go-prompt"
	"github.com/spf13/cobra"

	"github.com/artemijrodionov/sim8086/disasm"
)

func (c *Cli) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Decode hex words typed at a prompt",
		Long: `Each line is a sequence of hex bytes, e.g. "89 d9" or "0x89,0xd9,88e5",
decoded with the same options as a file. Type "exit" to leave.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.shell(cmd.Context())
			return nil
		},
	}
}

func isExit(line string) bool {
	switch strings.TrimSpace(line) {
	case "exit", "quit":
		return true
	}
	return false
}

func (c *Cli) shell(ctx context.Context) {
	p := prompt.New(
		func(line string) { c.execLine(ctx, line) },
		func(d prompt.Document) []prompt.Suggest {
			return prompt.FilterHasPrefix([]prompt.Suggest{
				{Text: "exit", Description: "leave the shell"},
				{Text: "89 d9", Description: "mov cx, bx"},
				{Text: "88 e5", Description: "mov ch, ah"},
			}, d.GetWordBeforeCursor(), true)
		},
		prompt.OptionPrefix("sim8086> "),
		prompt.OptionTitle("sim8086"),
		prompt.OptionSetExitCheckerOnInput(func(in string, breakline bool) bool {
			return breakline && isExit(in)
		}),
	)
	p.Run()
}

// parseHex accepts bytes separated by spaces or commas, with or without a
// 0x prefix, or run together.
func parseHex(line string) ([]byte, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})

	var sb strings.Builder
	for _, f := range fields {
		f = strings.TrimPrefix(strings.TrimPrefix(f, "0x"), "0X")
		if len(f)%2 != 0 {
			f = "0" + f
		}
		sb.WriteString(f)
	}

	data, err := hex.DecodeString(sb.String())
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %w", line, err)
	}
	return data, nil
}

// execLine decodes one line of shell input. Unknown opcodes never end the
// session, they are skipped with a logged warning.
func (c *Cli) execLine(ctx context.Context, line string) {
	line = strings.TrimSpace(line)
	if line == "" || isExit(line) {
		return
	}

	data, err := parseHex(line)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return
	}

	opts := c.cfg.DisasmOptions()
	opts.OnUnknown = disasm.SkipUnknown
	opts.Workers = 1
	sink := disasm.SinkFunc(func(l disasm.Line) error {
		_, err := fmt.Fprintln(c.stdout, l.Text)
		return err
	})

	if _, err := disasm.New(sink, opts, c.logger.Named("shell")).RunBytes(ctx, data); err != nil {
		fmt.Fprintln(c.stderr, err)
	}
}
