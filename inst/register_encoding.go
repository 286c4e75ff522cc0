package inst

// RegIndex is a register selector combined with the width flag:
// (selector << 1) | width. It is always in 0..15.
type RegIndex byte

var regNames = [16]string{
	"al", "ax",
	"cl", "cx",
	"dl", "dx",
	"bl", "bx",
	"ah", "sp",
	"ch", "bp",
	"dh", "si",
	"bh", "di",
}

func regIndex(r Register, s Size) RegIndex {
	return RegIndex((r&bit3Mask)<<1 | Register(s&bit1Mask))
}

// Selector returns the 3-bit register field the index was built from.
func (r RegIndex) Selector() Register {
	return Register(r>>1) & bit3Mask
}

func (r RegIndex) Size() Size {
	return Size(r & bit1Mask)
}

func (r RegIndex) String() string {
	return regNames[r&0xf]
}

// RegisterName names reg under the given width, e.g. (0, SizeByte) is "al"
// and (0, SizeWord) is "ax".
func RegisterName(reg Register, size Size) string {
	return regIndex(reg, size).String()
}
