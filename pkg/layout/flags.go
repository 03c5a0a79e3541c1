package layout

import (
	"github.com/QuarksBlueFoot/jiminy/pkg/programerr"
)

// Bit indexes one of the eight header flag bits, LSB-first. Values are
// reduced modulo 8, so every Bit addresses a valid position.
type Bit uint8

const (
	Bit0 Bit = iota
	Bit1
	Bit2
	Bit3
	Bit4
	Bit5
	Bit6
	Bit7
)

func (b Bit) mask() uint8 {
	return 1 << (b & 7)
}

// Flags is the application-defined header flags byte.
type Flags uint8

func (f Flags) Has(b Bit) bool {
	return uint8(f)&b.mask() != 0
}

func (f Flags) Set(b Bit) Flags {
	return f | Flags(b.mask())
}

func (f Flags) Clear(b Bit) Flags {
	return f &^ Flags(b.mask())
}

func (f Flags) Toggle(b Bit) Flags {
	return f ^ Flags(b.mask())
}

// HasAll reports whether every bit of mask is set.
func (f Flags) HasAll(mask Flags) bool {
	return f&mask == mask
}

// HasAny reports whether at least one bit of mask is set.
func (f Flags) HasAny(mask Flags) bool {
	return f&mask != 0
}

func ReadBit(flags uint8, n Bit) bool {
	return Flags(flags).Has(n)
}

func SetBit(flags uint8, n Bit) uint8 {
	return uint8(Flags(flags).Set(n))
}

func ClearBit(flags uint8, n Bit) uint8 {
	return uint8(Flags(flags).Clear(n))
}

func ToggleBit(flags uint8, n Bit) uint8 {
	return uint8(Flags(flags).Toggle(n))
}

// ReadFlagsAt reads a flags byte stored at an arbitrary payload offset.
func ReadFlagsAt(data []byte, offset int) (Flags, error) {
	if offset < 0 || offset >= len(data) {
		return 0, programerr.ErrAccountDataTooSmall
	}
	return Flags(data[offset]), nil
}

func WriteFlagsAt(data []byte, offset int, flags Flags) error {
	if offset < 0 || offset >= len(data) {
		return programerr.ErrAccountDataTooSmall
	}
	data[offset] = uint8(flags)
	return nil
}
