package main

import (
	"bufio"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artemijrodionov/sim8086/inst"
)

func randInst(r *rand.Rand) inst.Inst {
	return inst.Inst{
		Opcode:    inst.OpMov,
		Direction: inst.Direction(r.Intn(2)),
		Size:      inst.Size(r.Intn(2)),
		Mode:      inst.ModeReg,
		Reg:       inst.Register(r.Intn(8)),
		RM:        inst.Register(r.Intn(8)),
	}
}

func randWord(r *rand.Rand) inst.Word {
	return inst.Encode(randInst(r))
}

type genType string
type genTypes []genType

var sequential genType = "sequential"
var concurrent genType = "concurrent"
var parallel genType = "parallel"
var generators genTypes = genTypes{
	sequential, concurrent, parallel,
}

func (gs genTypes) String() string {
	generators := []genType(gs)
	result := make([]string, len(generators))
	for i, g := range generators {
		result[i] = string(g)
	}
	return strings.Join(result, ", ")
}

func (g genType) String() string {
	return string(g)
}

func (g *genType) Set(s string) error {
	for _, t := range generators {
		if t.String() == s {
			*g = genType(s)
			return nil
		}
	}
	return fmt.Errorf("unknown generator %q, want one of %s", s, generators)
}

func (g *genType) Type() string {
	return "generator"
}

type options struct {
	count     int
	threads   int
	seed      int64
	out       string
	listing   string
	generator genType
}

func generate(opts options) ([]inst.Word, error) {
	switch opts.generator {
	case sequential:
		return SequentialGen(opts.count, opts.seed), nil
	case concurrent:
		return ConcurrentGen(opts.count, opts.threads, opts.seed), nil
	case parallel:
		return ParallelGen(opts.count, opts.threads, opts.seed)
	default:
		return nil, fmt.Errorf("unknown generator %q", opts.generator)
	}
}

func writeFile(path string, write func(w *bufio.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := write(writer); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	return file.Close()
}

// writeOutput stores the words as a flat binary and, when asked, the
// listing a correct disassembler prints for it.
func writeOutput(words []inst.Word, out, listing string) error {
	err := writeFile(out, func(w *bufio.Writer) error {
		for _, word := range words {
			b := word.Bytes()
			if _, err := w.Write(b[:]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil || listing == "" {
		return err
	}

	return writeFile(listing, func(w *bufio.Writer) error {
		for _, word := range words {
			text, err := inst.Render(inst.Decode(word))
			if err != nil {
				return err
			}
			w.WriteString(text)
			w.WriteByte('\n')
		}
		return nil
	})
}

func newRootCmd() *cobra.Command {
	opts := options{generator: sequential}

	cmd := &cobra.Command{
		Use:           "gen8086 --out <file>",
		Short:         "Write a random stream of 8086 register-to-register movs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.count < 0 || opts.threads < 1 {
				return errors.New("count must be >= 0 and threads >= 1")
			}
			words, err := generate(opts)
			if err != nil {
				return err
			}
			return writeOutput(words, opts.out, opts.listing)
		},
	}

	cmd.Flags().IntVar(&opts.count, "count", 1000, "how many instructions to generate?")
	cmd.Flags().IntVar(&opts.threads, "threads", 3, "how many threads to use?")
	cmd.Flags().Int64Var(&opts.seed, "seed", 1, "random seed")
	cmd.Flags().StringVar(&opts.out, "out", "", "binary output file")
	cmd.Flags().StringVar(&opts.listing, "listing", "", "also write the expected disassembly here")
	cmd.Flags().Var(&opts.generator, "generator", "how to generate data? "+generators.String())
	cmd.MarkFlagRequired("out")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gen8086:", err)
		os.Exit(1)
	}
}
