package inst

import "fmt"

var mnemonics = map[Opcode]string{
	OpMov: "mov",
}

// Mnemonic resolves op or returns a *DecodeError for anything unknown.
func Mnemonic(op Opcode) (string, error) {
	name, ok := mnemonics[op]
	if !ok {
		return "", &DecodeError{Kind: UnknownOpcode, Value: byte(op)}
	}
	return name, nil
}

// Operands is an instruction with its roles resolved.
type Operands struct {
	Mnemonic string
	Dst      RegIndex
	Src      RegIndex
}

func (o Operands) String() string {
	return fmt.Sprintf("%s %s, %s", o.Mnemonic, o.Dst, o.Src)
}

// Resolve picks destination and source from the direction flag and names
// the operation.
func Resolve(i Inst) (Operands, error) {
	name, err := Mnemonic(i.Opcode)
	if err != nil {
		return Operands{}, err
	}

	rm := regIndex(i.RM, i.Size)
	reg := regIndex(i.Reg, i.Size)
	if i.Direction == DirSrc {
		return Operands{Mnemonic: name, Dst: rm, Src: reg}, nil
	}
	return Operands{Mnemonic: name, Dst: reg, Src: rm}, nil
}

// Render returns the assembly text of i without a line terminator.
func Render(i Inst) (string, error) {
	ops, err := Resolve(i)
	if err != nil {
		return "", err
	}
	return ops.String(), nil
}

// CheckMode rejects anything but register-to-register addressing. Render
// does not call it, the mode bits are ignored there.
func CheckMode(i Inst) error {
	if i.Mode != ModeReg {
		return &DecodeError{Kind: UnsupportedMode, Value: byte(i.Mode)}
	}
	return nil
}

func (i Inst) String() string {
	text, err := Render(i)
	if err != nil {
		return "(bad) " + err.Error()
	}
	return text
}
