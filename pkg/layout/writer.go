package layout

import (
	"github.com/QuarksBlueFoot/jiminy/pkg/programerr"
)

// Writer is the write-side counterpart of Reader: forward-only,
// bounds-checked, no partial writes.
type Writer struct {
	data []byte
	pos  int
}

func NewWriter(data []byte) Writer {
	return Writer{data: data}
}

// Written is the number of bytes written so far.
func (w *Writer) Written() int {
	return w.pos
}

func (w *Writer) Remaining() int {
	return len(w.data) - w.pos
}

func (w *Writer) reserve(n int) ([]byte, error) {
	if n < 0 || n > len(w.data)-w.pos {
		return nil, programerr.ErrAccountDataTooSmall
	}
	b := w.data[w.pos : w.pos+n]
	w.pos += n
	return b, nil
}

func (w *Writer) WriteU8(v uint8) error {
	b, err := w.reserve(SizeU8)
	if err != nil {
		return err
	}
	b[0] = v
	return nil
}

func (w *Writer) WriteU16(v uint16) error {
	b, err := w.reserve(SizeU16)
	if err != nil {
		return err
	}
	PutU16(b, v)
	return nil
}

func (w *Writer) WriteU32(v uint32) error {
	b, err := w.reserve(SizeU32)
	if err != nil {
		return err
	}
	PutU32(b, v)
	return nil
}

func (w *Writer) WriteU64(v uint64) error {
	b, err := w.reserve(SizeU64)
	if err != nil {
		return err
	}
	PutU64(b, v)
	return nil
}

func (w *Writer) WriteI64(v int64) error {
	b, err := w.reserve(SizeI64)
	if err != nil {
		return err
	}
	PutI64(b, v)
	return nil
}

// WriteBool writes 1 for true and 0 for false.
func (w *Writer) WriteBool(v bool) error {
	b, err := w.reserve(SizeBool)
	if err != nil {
		return err
	}
	PutBool(b, v)
	return nil
}

func (w *Writer) WriteAddress(a Address) error {
	b, err := w.reserve(SizeAddress)
	if err != nil {
		return err
	}
	PutAddress(b, a)
	return nil
}

func (w *Writer) WriteBytes(p []byte) error {
	b, err := w.reserve(len(p))
	if err != nil {
		return err
	}
	copy(b, p)
	return nil
}

// Skip advances over n bytes, leaving them untouched (padding).
func (w *Writer) Skip(n int) error {
	_, err := w.reserve(n)
	return err
}

// ZeroInit clears data. Call it on freshly allocated account space before
// writing the header, since reused storage may hold a previous occupant's
// bytes.
func ZeroInit(data []byte) {
	clear(data)
}

// WriteDiscriminator sets data[0].
func WriteDiscriminator(data []byte, discriminator uint8) error {
	if len(data) == 0 {
		return programerr.ErrAccountDataTooSmall
	}
	data[0] = discriminator
	return nil
}
