// Package pda derives program-derived addresses: sha256 over the seeds, the
// program id and a fixed marker, rejected when the digest is a valid
// ed25519 point.
package pda

import (
	"errors"
	"math"

	"filippo.io/edwards25519"
	"github.com/gagliardetto/solana-go"
	"github.com/minio/sha256-simd"

	"github.com/QuarksBlueFoot/jiminy/pkg/cu"
)

const MaxSeeds = 16
const MaxSeedLen = 32
const PdaMarker = "ProgramDerivedAddress"

var (
	ErrSeedLength          = errors.New("Max seeds (16) exceeded")
	ErrSeedTooLong         = errors.New("Seed exceeds 32 bytes")
	ErrOnCurveInvalidSeeds = errors.New("Invalid seeds - generated address must be off-curve")
	ErrNoViableBump        = errors.New("Unable to find a viable program address bump seed")
)

// CreateProgramAddress derives the address for seeds under programID.
func CreateProgramAddress(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, error) {
	return derive(seeds, nil, programID)
}

// DeriveWithBump derives the address for seeds followed by the one-byte
// bump seed.
func DeriveWithBump(seeds [][]byte, bump uint8, programID solana.PublicKey) (solana.PublicKey, error) {
	return derive(seeds, []byte{bump}, programID)
}

func derive(seeds [][]byte, bump []byte, programID solana.PublicKey) (solana.PublicKey, error) {
	n := len(seeds)
	if bump != nil {
		n++
	}
	if n > MaxSeeds {
		return solana.PublicKey{}, ErrSeedLength
	}

	hasher := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return solana.PublicKey{}, ErrSeedTooLong
		}
		hasher.Write(seed)
	}
	hasher.Write(bump)
	hasher.Write(programID[:])
	hasher.Write([]byte(PdaMarker))

	var addr solana.PublicKey
	hasher.Sum(addr[:0])

	if IsOnCurve(addr[:]) {
		return solana.PublicKey{}, ErrOnCurveInvalidSeeds
	}
	return addr, nil
}

// FindProgramAddress searches bump seeds from 255 down to 0 and returns the
// first off-curve address with its bump.
func FindProgramAddress(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return FindProgramAddressMetered(seeds, programID, nil)
}

// FindProgramAddressMetered is FindProgramAddress charging
// CUCreateProgramAddressUnits up front and again for every rejected bump.
// A nil meter is not charged.
func FindProgramAddressMetered(seeds [][]byte, programID solana.PublicKey, meter *cu.ComputeMeter) (solana.PublicKey, uint8, error) {
	if err := meter.Consume(cu.CUCreateProgramAddressUnits); err != nil {
		return solana.PublicKey{}, 0, err
	}

	var bump [1]byte
	for b := math.MaxUint8; b >= 0; b-- {
		bump[0] = uint8(b)
		addr, err := derive(seeds, bump[:], programID)
		if err == nil {
			return addr, uint8(b), nil
		}
		if !errors.Is(err, ErrOnCurveInvalidSeeds) {
			return solana.PublicKey{}, 0, err
		}
		if err = meter.Consume(cu.CUCreateProgramAddressUnits); err != nil {
			return solana.PublicKey{}, 0, err
		}
	}
	return solana.PublicKey{}, 0, ErrNoViableBump
}

// IsOnCurve checks if 'b' is on the ed25519 curve
func IsOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	onCurve := err == nil
	return onCurve
}
