package arch

import "fmt"

// AddressMode defines instruction operand address modes.
type AddressMode byte

// Known address modes.
const (
	Immediate        AddressMode = 0 // x = 123
	Absolute         AddressMode = 1 // x = mem[123]
	RegisterB        AddressMode = 2 // x = b
	XIndexed         AddressMode = 3 // x = mem[123 + x]
	YIndexed         AddressMode = 4 // x = mem[123 + y]
	IndirectIndexedX AddressMode = 5 // x = mem[mem[123] + x]
	IndirectIndexedY AddressMode = 6 // x = mem[mem[123] + y]
	IndexedIndirectX AddressMode = 7 // x = mem[mem[123 + x]]
	IndexedIndirectY AddressMode = 8 // x = mem[mem[123 + y]]
)

// ShortBase is added to an address mode to select its single byte variant.
const ShortBase = 0x10

// DecodeMode splits an address mode byte into its mode and short flag.
// Returns false if the byte does not name a known mode.
func DecodeMode(b byte) (mode AddressMode, short bool, ok bool) {
	if b >= ShortBase {
		short = true
		b -= ShortBase
	}
	mode = AddressMode(b)
	return mode, short, mode <= IndexedIndirectY
}

// EncodeMode returns the address mode byte for the given mode.
func EncodeMode(mode AddressMode, short bool) byte {
	if short {
		return byte(mode) + ShortBase
	}
	return byte(mode)
}

// HasOperand returns true if the mode is followed by a word operand.
func (m AddressMode) HasOperand() bool {
	return m != RegisterB
}

func (m AddressMode) String() string {
	switch m {
	case Immediate:
		return "immediate"
	case Absolute:
		return "absolute"
	case RegisterB:
		return "register-b"
	case XIndexed:
		return "x-indexed"
	case YIndexed:
		return "y-indexed"
	case IndirectIndexedX:
		return "indirect-indexed-x"
	case IndirectIndexedY:
		return "indirect-indexed-y"
	case IndexedIndirectX:
		return "indexed-indirect-x"
	case IndexedIndirectY:
		return "indexed-indirect-y"
	}
	return fmt.Sprintf("mode(%02x)", byte(m))
}
