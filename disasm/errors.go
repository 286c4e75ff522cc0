package disasm

import (
	"errors"
	"fmt"
)

var ErrTrailingBytes = errors.New("trailing bytes")

// ErrSourceChanged is returned when a mapped input shrinks underneath the
// decoder and a read past its new end faults.
var ErrSourceChanged = errors.New("input changed while it was being decoded")

// TrailingBytesError reports input that ends in the middle of an
// instruction.
type TrailingBytesError struct {
	Offset int
	Count  int
}

func (e *TrailingBytesError) Error() string {
	return fmt.Sprintf("%d trailing byte(s) at offset %#x do not form an instruction", e.Count, e.Offset)
}

func (e *TrailingBytesError) Unwrap() error {
	return ErrTrailingBytes
}

// OffsetError ties a per-instruction error to its position in the input.
type OffsetError struct {
	Offset int
	Word   uint16
	Err    error
}

func (e *OffsetError) Error() string {
	return fmt.Sprintf("offset %#x (word %#04x): %s", e.Offset, e.Word, e.Err)
}

func (e *OffsetError) Unwrap() error {
	return e.Err
}
