package layout

import (
	"github.com/QuarksBlueFoot/jiminy/pkg/programerr"
)

// Reader is a forward-only, bounds-checked read cursor over a byte slice.
//
// A read that would end past the slice fails with ErrAccountDataTooSmall
// and leaves the position unchanged. The position never moves backwards.
type Reader struct {
	data []byte
	pos  int
}

func NewReader(data []byte) Reader {
	return Reader{data: data}
}

// Position is the current byte offset into the slice.
func (r *Reader) Position() int {
	return r.pos
}

// Remaining is the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Rest returns the unread tail of the slice without advancing.
func (r *Reader) Rest() []byte {
	return r.data[r.pos:]
}

// take returns the next n bytes and advances, or fails without advancing.
func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || n > len(r.data)-r.pos {
		return nil, programerr.ErrAccountDataTooSmall
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.take(SizeU8)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadU16() (uint16, error) {
	b, err := r.take(SizeU16)
	if err != nil {
		return 0, err
	}
	return GetU16(b), nil
}

func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.take(SizeU32)
	if err != nil {
		return 0, err
	}
	return GetU32(b), nil
}

func (r *Reader) ReadU64() (uint64, error) {
	b, err := r.take(SizeU64)
	if err != nil {
		return 0, err
	}
	return GetU64(b), nil
}

func (r *Reader) ReadI64() (int64, error) {
	b, err := r.take(SizeI64)
	if err != nil {
		return 0, err
	}
	return GetI64(b), nil
}

// ReadBool reads a strict boolean. A byte other than 0 or 1 fails with
// ErrMalformedBool and does not advance.
func (r *Reader) ReadBool() (bool, error) {
	if r.Remaining() < SizeBool {
		return false, programerr.ErrAccountDataTooSmall
	}
	v, err := GetBool(r.data[r.pos:])
	if err != nil {
		return false, err
	}
	r.pos += SizeBool
	return v, nil
}

func (r *Reader) ReadAddress() (Address, error) {
	b, err := r.take(SizeAddress)
	if err != nil {
		return Address{}, err
	}
	return GetAddress(b), nil
}

// ReadBytes returns the next n bytes as a sub-slice of the underlying
// buffer (no copy).
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	return r.take(n)
}

// Skip advances n bytes without decoding them.
func (r *Reader) Skip(n int) error {
	_, err := r.take(n)
	return err
}
