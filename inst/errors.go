package inst

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownOpcode   = errors.New("unknown opcode")
	ErrUnsupportedMode = errors.New("unsupported addressing mode")
)

type ErrorKind int

const (
	UnknownOpcode ErrorKind = iota
	UnsupportedMode
)

// DecodeError is returned for a word that decodes fine but names something
// the renderer does not handle.
type DecodeError struct {
	Kind  ErrorKind
	Value byte
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case UnknownOpcode:
		return fmt.Sprintf("unknown opcode %d (0b%06b)", e.Value, e.Value)
	case UnsupportedMode:
		return fmt.Sprintf("unsupported addressing mode %s", Mode(e.Value))
	default:
		return fmt.Sprintf("decode error %d: %d", e.Kind, e.Value)
	}
}

func (e *DecodeError) Unwrap() error {
	switch e.Kind {
	case UnknownOpcode:
		return ErrUnknownOpcode
	case UnsupportedMode:
		return ErrUnsupportedMode
	default:
		return nil
	}
}
