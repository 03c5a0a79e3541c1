// Package layout implements the versioned, fixed-offset account record
// convention: the little-endian field codec, forward-only cursors, and the
// 8-byte account header.
//
// Nothing in this package allocates on the success path or retains a
// reference to a buffer beyond the call (cursors borrow for their own
// lifetime only).
package layout

import (
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/QuarksBlueFoot/jiminy/pkg/programerr"
)

// Field widths in bytes. Multi-byte integers are always little-endian.
const (
	SizeU8      = 1
	SizeU16     = 2
	SizeU32     = 4
	SizeU64     = 8
	SizeI64     = 8
	SizeBool    = 1
	SizeAddress = solana.PublicKeyLength
)

// Address is the 32-byte account address. It is opaque and compared only
// for exact equality.
type Address = solana.PublicKey

// The Put*/Get* functions operate on a slice whose length is at least the
// field width; bounds are the cursors' responsibility.

func PutU16(b []byte, v uint16) { bin.LE.PutUint16(b, v) }
func PutU32(b []byte, v uint32) { bin.LE.PutUint32(b, v) }
func PutU64(b []byte, v uint64) { bin.LE.PutUint64(b, v) }
func PutI64(b []byte, v int64)  { bin.LE.PutUint64(b, uint64(v)) }

func PutBool(b []byte, v bool) {
	if v {
		b[0] = 1
	} else {
		b[0] = 0
	}
}

func PutAddress(b []byte, a Address) { copy(b[:SizeAddress], a[:]) }

func GetU16(b []byte) uint16 { return bin.LE.Uint16(b) }
func GetU32(b []byte) uint32 { return bin.LE.Uint32(b) }
func GetU64(b []byte) uint64 { return bin.LE.Uint64(b) }
func GetI64(b []byte) int64  { return int64(bin.LE.Uint64(b)) }

// GetBool decodes a strict boolean: 0 is false, 1 is true, anything else
// is ErrMalformedBool.
func GetBool(b []byte) (bool, error) {
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, programerr.ErrMalformedBool
	}
}

func GetAddress(b []byte) (a Address) {
	copy(a[:], b[:SizeAddress])
	return
}
