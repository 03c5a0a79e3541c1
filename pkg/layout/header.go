package layout

import (
	"github.com/QuarksBlueFoot/jiminy/pkg/programerr"
)

// HeaderLen is the size of the account header. The payload starts at this
// offset in every buffer that uses the convention.
//
//	offset 0     discriminator  u8
//	offset 1     version        u8
//	offset 2     flags          u8   (bits 0..7, LSB-first, app-defined)
//	offset 3     reserved       u8   (must be 0)
//	offset 4..7  data_len       u32 LE (0 = fixed-size, implied by version)
const HeaderLen = 8

const (
	offsetDiscriminator = 0
	offsetVersion       = 1
	offsetFlags         = 2
	offsetReserved      = 3
	offsetDataLen       = 4
)

// Header is the decoded account header.
type Header struct {
	Discriminator uint8
	Version       uint8
	Flags         Flags
	Reserved      uint8
	DataLen       uint32
}

// DecodeHeader decodes the first HeaderLen bytes without validating them.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderLen {
		return Header{}, programerr.ErrAccountDataTooSmall
	}
	return Header{
		Discriminator: data[offsetDiscriminator],
		Version:       data[offsetVersion],
		Flags:         Flags(data[offsetFlags]),
		Reserved:      data[offsetReserved],
		DataLen:       GetU32(data[offsetDataLen:]),
	}, nil
}

// WriteHeader clears the header region, then writes discriminator, version
// and dataLen with flags and reserved set to zero. Bytes past the header
// are not touched.
func WriteHeader(data []byte, discriminator, version uint8, dataLen uint32) error {
	if len(data) < HeaderLen {
		return programerr.ErrAccountDataTooSmall
	}
	clear(data[:HeaderLen])
	data[offsetDiscriminator] = discriminator
	data[offsetVersion] = version
	PutU32(data[offsetDataLen:], dataLen)
	return nil
}

// CheckHeader validates the header and returns it decoded. Checks run in a
// fixed order: size, discriminator, version, reserved byte.
func CheckHeader(data []byte, discriminator, minVersion uint8) (Header, error) {
	if len(data) < HeaderLen {
		return Header{}, programerr.ErrAccountDataTooSmall
	}
	if data[offsetDiscriminator] != discriminator {
		return Header{}, programerr.ErrDiscriminatorMismatch
	}
	if data[offsetVersion] < minVersion {
		return Header{}, programerr.ErrVersionTooOld
	}
	if data[offsetReserved] != 0 {
		return Header{}, programerr.ErrMalformedReserved
	}
	return DecodeHeader(data)
}

func ReadVersion(data []byte) (uint8, error) {
	if len(data) <= offsetVersion {
		return 0, programerr.ErrAccountDataTooSmall
	}
	return data[offsetVersion], nil
}

func ReadHeaderFlags(data []byte) (Flags, error) {
	if len(data) <= offsetFlags {
		return 0, programerr.ErrAccountDataTooSmall
	}
	return Flags(data[offsetFlags]), nil
}

func WriteHeaderFlags(data []byte, flags Flags) error {
	if len(data) <= offsetFlags {
		return programerr.ErrAccountDataTooSmall
	}
	data[offsetFlags] = uint8(flags)
	return nil
}

func ReadDataLen(data []byte) (uint32, error) {
	if len(data) < HeaderLen {
		return 0, programerr.ErrAccountDataTooSmall
	}
	return GetU32(data[offsetDataLen:]), nil
}

// HeaderPayload returns data[HeaderLen:], aliasing the buffer.
func HeaderPayload(data []byte) ([]byte, error) {
	if len(data) < HeaderLen {
		return nil, programerr.ErrAccountDataTooSmall
	}
	return data[HeaderLen:], nil
}

// HeaderPayloadMut is HeaderPayload for call sites that go on to write the
// payload; the returned slice aliases data either way.
func HeaderPayloadMut(data []byte) ([]byte, error) {
	return HeaderPayload(data)
}

// DeclaredPayload returns the payload bounded by the header's data_len.
// With data_len == 0 the whole tail is returned; otherwise data_len must
// fit inside the buffer or ErrDataLenMismatch is returned.
func DeclaredPayload(data []byte) ([]byte, error) {
	n, err := ReadDataLen(data)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return data[HeaderLen:], nil
	}
	if uint64(n) > uint64(len(data)-HeaderLen) {
		return nil, programerr.ErrDataLenMismatch
	}
	return data[HeaderLen : HeaderLen+int(n)], nil
}
