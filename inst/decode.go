package inst

/*
Layout of a word, bit 0 first:

	byte 1            byte 2
	|W|D|opcode     | |r/m  |reg  |mod|

Every field is extracted by mask and shift so the result does not depend on
how the host lays out memory.
*/

const (
	widthShift     = 0
	directionShift = 1
	opcodeShift    = 2
	rmShift        = 8
	regShift       = 11
	modeShift      = 14

	bit1Mask = 0x1
	bit2Mask = 0x3
	bit3Mask = 0x7
	bit6Mask = 0x3f
)

// WordFromBytes joins two bytes in stream order into a Word.
func WordFromBytes(lo, hi byte) Word {
	return Word(lo) | Word(hi)<<8
}

// Bytes splits w back into stream order.
func (w Word) Bytes() [2]byte {
	return [2]byte{byte(w), byte(w >> 8)}
}

// Decode extracts every field of w. It is total: any 16-bit value decodes,
// rejecting unknown opcodes or modes is left to the caller.
func Decode(w Word) Inst {
	return Inst{
		Size:      Size((w >> widthShift) & bit1Mask),
		Direction: Direction((w >> directionShift) & bit1Mask),
		Opcode:    Opcode((w >> opcodeShift) & bit6Mask),
		RM:        Register((w >> rmShift) & bit3Mask),
		Reg:       Register((w >> regShift) & bit3Mask),
		Mode:      Mode((w >> modeShift) & bit2Mask),
	}
}

// Encode packs i back into a Word. Fields wider than their slot are
// truncated; use Validate first when i was built by hand.
func Encode(i Inst) Word {
	return Word(i.Size&bit1Mask)<<widthShift |
		Word(i.Direction&bit1Mask)<<directionShift |
		Word(i.Opcode&bit6Mask)<<opcodeShift |
		Word(i.RM&bit3Mask)<<rmShift |
		Word(i.Reg&bit3Mask)<<regShift |
		Word(i.Mode&bit2Mask)<<modeShift
}
