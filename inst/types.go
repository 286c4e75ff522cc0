package inst

import (
	"errors"
	"fmt"
)

// Word is one 2-byte instruction as read from the stream, low byte first.
type Word uint16

type Opcode byte
type Direction byte
type Size byte
type Mode byte
type Register byte

const (
	// DirSrc: the reg field is the source, r/m the destination.
	DirSrc Direction = 0x0
	// DirDst: the reg field is the destination, r/m the source.
	DirDst Direction = 0x1

	SizeByte Size = 0x0
	SizeWord Size = 0x1

	ModeMem0  Mode = 0x0
	ModeMem8  Mode = 0x1
	ModeMem16 Mode = 0x2
	ModeReg   Mode = 0x3

	alax Register = 0x0
	clcx Register = 0x1
	dldx Register = 0x2
	blbx Register = 0x3
	ahsp Register = 0x4
	chbp Register = 0x5
	dhsi Register = 0x6
	bhdi Register = 0x7
)

// OpMov is the register/memory to/from register move.
const OpMov Opcode = 34

// Inst is the decoded view of a Word. All fields are already extracted, so
// the value can be compared and copied freely.
type Inst struct {
	Opcode    Opcode
	Direction Direction
	Size      Size
	Mode      Mode
	Reg       Register
	RM        Register
}

func (d Direction) validate() error {
	switch d {
	case DirSrc, DirDst:
		return nil
	default:
		return fmt.Errorf("can't parse op direction %x", byte(d))
	}
}

func (s Size) validate() error {
	switch s {
	case SizeByte, SizeWord:
		return nil
	default:
		return fmt.Errorf("can't parse op size %x", byte(s))
	}
}

func (m Mode) validate() error {
	switch m {
	case ModeMem0, ModeMem8, ModeMem16, ModeReg:
		return nil
	default:
		return fmt.Errorf("can't parse mode %x", byte(m))
	}
}

func (r Register) validate() error {
	switch r {
	case alax, clcx, dldx, blbx, ahsp, chbp, dhsi, bhdi:
		return nil
	default:
		return fmt.Errorf("can't parse register %x", byte(r))
	}
}

func (o Opcode) validate() error {
	if o > 0x3f {
		return fmt.Errorf("can't parse opcode %x", byte(o))
	}
	return nil
}

// Validate reports every field that does not fit its bit width. Records
// produced by Decode are always valid; hand-built ones may not be.
func (i Inst) Validate() error {
	return errors.Join(
		i.Opcode.validate(),
		i.Direction.validate(),
		i.Size.validate(),
		i.Mode.validate(),
		i.Reg.validate(),
		i.RM.validate(),
	)
}

func (m Mode) String() string {
	switch m {
	case ModeMem0:
		return "mem"
	case ModeMem8:
		return "mem+d8"
	case ModeMem16:
		return "mem+d16"
	case ModeReg:
		return "reg"
	default:
		return fmt.Sprintf("mode(%d)", byte(m))
	}
}
