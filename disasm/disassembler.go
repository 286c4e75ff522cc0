package disasm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"

	"github.com/artemijrodionov/sim8086/inst"
)

type UnknownPolicy string
type TrailingPolicy string

const (
	// SkipUnknown logs the bad instruction and carries on.
	SkipUnknown UnknownPolicy = "skip"
	// AbortUnknown stops at the first bad instruction.
	AbortUnknown UnknownPolicy = "abort"

	WarnTrailing   TrailingPolicy = "warn"
	RejectTrailing TrailingPolicy = "reject"
)

type Options struct {
	OnUnknown UnknownPolicy
	Trailing  TrailingPolicy
	// StrictMode treats any addressing mode but register-to-register as a
	// bad instruction.
	StrictMode bool
	// Workers > 1 decodes in-memory input in parallel. Output order is
	// unchanged.
	Workers int
}

func DefaultOptions() Options {
	return Options{
		OnUnknown: SkipUnknown,
		Trailing:  WarnTrailing,
		Workers:   1,
	}
}

// Line is one decoded instruction. Text is empty when Err is set.
type Line struct {
	Offset int
	Word   inst.Word
	Inst   inst.Inst
	Text   string
	Err    error
}

func (l Line) Bytes() [2]byte {
	return l.Word.Bytes()
}

// Sink receives decoded lines in input order.
type Sink interface {
	Emit(line Line) error
}

type SinkFunc func(line Line) error

func (f SinkFunc) Emit(line Line) error {
	return f(line)
}

type Summary struct {
	Bytes         int
	Instructions  int
	Skipped       int
	TrailingBytes int
}

type Disassembler struct {
	opts   Options
	sink   Sink
	logger hclog.Logger
}

func New(sink Sink, opts Options, logger hclog.Logger) *Disassembler {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if opts.OnUnknown == "" {
		opts.OnUnknown = SkipUnknown
	}
	if opts.Trailing == "" {
		opts.Trailing = WarnTrailing
	}
	return &Disassembler{opts: opts, sink: sink, logger: logger}
}

func decodeAt(offset int, w inst.Word, strict bool) Line {
	line := Line{Offset: offset, Word: w, Inst: inst.Decode(w)}
	if strict {
		if err := inst.CheckMode(line.Inst); err != nil {
			line.Err = err
			return line
		}
	}
	line.Text, line.Err = inst.Render(line.Inst)
	return line
}

func (d *Disassembler) handle(line Line, summary *Summary) error {
	if line.Err != nil {
		if d.opts.OnUnknown == AbortUnknown {
			return &OffsetError{Offset: line.Offset, Word: uint16(line.Word), Err: line.Err}
		}
		d.logger.Warn("skipping instruction", "offset", line.Offset, "word", hclog.Fmt("%#04x", uint16(line.Word)), "error", line.Err)
		summary.Skipped++
		return nil
	}

	if d.logger.IsTrace() {
		d.logger.Trace("decoded", "offset", line.Offset, "text", line.Text)
	}
	if err := d.sink.Emit(line); err != nil {
		return fmt.Errorf("failed to write instruction at offset %#x: %w", line.Offset, err)
	}
	summary.Instructions++
	return nil
}

func (d *Disassembler) trailing(offset, count int, summary *Summary) error {
	summary.TrailingBytes = count
	if d.opts.Trailing == RejectTrailing {
		return &TrailingBytesError{Offset: offset, Count: count}
	}
	d.logger.Warn("dropping trailing bytes", "offset", offset, "count", count)
	return nil
}

// Run decodes r word by word without buffering it whole. Reads happen on
// their own goroutine so a cancelled ctx is honoured even while r blocks.
func (d *Disassembler) Run(ctx context.Context, r io.Reader) (Summary, error) {
	var summary Summary

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	words := make(chan inst.Word, 64)
	var scanErr error
	go func() {
		defer close(words)
		scanner := bufio.NewScanner(r)
		scanner.Split(ScanWords)
		for scanner.Scan() {
			b := scanner.Bytes()
			select {
			case words <- inst.WordFromBytes(b[0], b[1]):
			case <-ctx.Done():
				return
			}
		}
		scanErr = scanner.Err()
	}()

	for {
		var (
			w  inst.Word
			ok bool
		)
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		case w, ok = <-words:
		}
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		line := decodeAt(summary.Bytes, w, d.opts.StrictMode)
		summary.Bytes += InstSize
		if err := d.handle(line, &summary); err != nil {
			return summary, err
		}
	}

	if scanErr != nil {
		var trailing *TrailingBytesError
		if !errors.As(scanErr, &trailing) {
			return summary, scanErr
		}
		offset := summary.Bytes
		summary.Bytes += trailing.Count
		return summary, d.trailing(offset, trailing.Count, &summary)
	}

	return summary, nil
}

// RunBytes decodes a buffer that is already in memory. data may be a file
// mapping; if the file is truncated meanwhile the fault is reported as
// ErrSourceChanged.
func (d *Disassembler) RunBytes(ctx context.Context, data []byte) (summary Summary, err error) {
	defer recoverFault(&err)
	defer guardFaults()()

	summary = Summary{Bytes: len(data)}
	count := len(data) / InstSize

	if d.opts.Workers > 1 && count > 1 {
		lines, err := decodeParallel(ctx, data[:count*InstSize], d.opts.Workers, d.opts.StrictMode)
		if err != nil {
			return summary, err
		}
		for _, line := range lines {
			if err := d.handle(line, &summary); err != nil {
				return summary, err
			}
		}
	} else {
		for offset := 0; offset+InstSize <= len(data); offset += InstSize {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			line := decodeAt(offset, inst.WordFromBytes(data[offset], data[offset+1]), d.opts.StrictMode)
			if err := d.handle(line, &summary); err != nil {
				return summary, err
			}
		}
	}

	if rem := len(data) % InstSize; rem != 0 {
		return summary, d.trailing(count*InstSize, rem, &summary)
	}
	return summary, nil
}
