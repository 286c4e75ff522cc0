package output

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/artemijrodionov/sim8086/disasm"
)

type Format string
type ColorMode string

const (
	FormatText    Format = "text"
	FormatListing Format = "listing"
	FormatYAML    Format = "yaml"

	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

var Formats = []Format{FormatText, FormatListing, FormatYAML}

// Writer is a sink that needs to know when the run is over.
type Writer interface {
	disasm.Sink
	Finish(summary disasm.Summary) error
}

type Options struct {
	// Bits16 prefixes text output with the directive nasm needs to
	// reassemble it.
	Bits16 bool
	Color  ColorMode
	// Source names the input in reports.
	Source string
}

func New(format Format, w io.Writer, opts Options) (Writer, error) {
	switch format {
	case FormatText, "":
		return newText(w, opts.Bits16), nil
	case FormatListing:
		return newListing(w, useColor(opts.Color, w)), nil
	case FormatYAML:
		return newYAML(w, opts.Source), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

type fd interface {
	Fd() uintptr
}

func useColor(mode ColorMode, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(fd)
	return ok && term.IsTerminal(int(f.Fd()))
}
