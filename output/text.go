package output

import (
	"bufio"
	"io"

	"github.com/fatih/color"

	"github.com/artemijrodionov/sim8086/disasm"
)

type textWriter struct {
	w *bufio.Writer
}

func newText(w io.Writer, bits16 bool) *textWriter {
	t := &textWriter{w: bufio.NewWriter(w)}
	if bits16 {
		t.w.WriteString("bits 16\n\n")
	}
	return t
}

func (t *textWriter) Emit(line disasm.Line) error {
	t.w.WriteString(line.Text)
	return t.w.WriteByte('\n')
}

func (t *textWriter) Finish(disasm.Summary) error {
	return t.w.Flush()
}

type listingWriter struct {
	w      *bufio.Writer
	offset func(a ...interface{}) string
	hex    func(a ...interface{}) string
	text   func(a ...interface{}) string
}

func newListing(w io.Writer, colored bool) *listingWriter {
	offset := color.New(color.FgHiBlack)
	hex := color.New(color.FgCyan)
	text := color.New(color.FgYellow)
	for _, c := range []*color.Color{offset, hex, text} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return &listingWriter{
		w:      bufio.NewWriter(w),
		offset: offset.SprintFunc(),
		hex:    hex.SprintFunc(),
		text:   text.SprintFunc(),
	}
}

// Emit writes "0004  89 d9  mov cx, bx".
func (l *listingWriter) Emit(line disasm.Line) error {
	b := line.Bytes()
	l.w.WriteString(l.offset(hex4(line.Offset)))
	l.w.WriteString("  ")
	l.w.WriteString(l.hex(hexBytes(b[:])))
	l.w.WriteString("  ")
	l.w.WriteString(l.text(line.Text))
	return l.w.WriteByte('\n')
}

func (l *listingWriter) Finish(disasm.Summary) error {
	return l.w.Flush()
}
