package pda

import (
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuarksBlueFoot/jiminy/pkg/cu"
)

var vaultProgram = solana.MustPublicKeyFromBase58("11111111111111111111111111111112")

func TestCreateProgramAddress_MatchesSolanaGo(t *testing.T) {
	for i := 0; i < 32; i++ {
		seeds := [][]byte{[]byte("vault"), {byte(i)}}
		want, wantErr := solana.CreateProgramAddress(seeds, vaultProgram)
		got, err := CreateProgramAddress(seeds, vaultProgram)
		if wantErr != nil {
			assert.ErrorIs(t, err, ErrOnCurveInvalidSeeds)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestFindProgramAddress_MatchesSolanaGo(t *testing.T) {
	for i := 0; i < 16; i++ {
		seeds := [][]byte{[]byte(fmt.Sprintf("escrow-%d", i))}
		want, wantBump, err := solana.FindProgramAddress(seeds, solana.TokenProgramID)
		require.NoError(t, err)

		got, bump, err := FindProgramAddress(seeds, solana.TokenProgramID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, wantBump, bump)

		again, bump2, err := FindProgramAddress(seeds, solana.TokenProgramID)
		require.NoError(t, err)
		assert.Equal(t, got, again, "derivation must be deterministic")
		assert.Equal(t, bump, bump2)

		viaBump, err := DeriveWithBump(seeds, bump, solana.TokenProgramID)
		require.NoError(t, err)
		assert.Equal(t, got, viaBump)
		assert.False(t, IsOnCurve(got[:]))
	}
}

func TestFindProgramAddressMetered_ChargesPerAttempt(t *testing.T) {
	seeds := [][]byte{[]byte("vault"), vaultProgram[:]}
	_, bump, err := FindProgramAddress(seeds, vaultProgram)
	require.NoError(t, err)

	meter := cu.NewComputeMeter(1_000_000)
	_, mbump, err := FindProgramAddressMetered(seeds, vaultProgram, &meter)
	require.NoError(t, err)
	assert.Equal(t, bump, mbump)
	attempts := uint64(1 + 255 - int(bump))
	assert.Equal(t, attempts*cu.CUCreateProgramAddressUnits, meter.Used())

	starved := cu.NewComputeMeter(cu.CUCreateProgramAddressUnits - 1)
	_, _, err = FindProgramAddressMetered(seeds, vaultProgram, &starved)
	assert.ErrorIs(t, err, cu.ErrComputeExceeded)
}

func TestCreateProgramAddress_SeedLimits(t *testing.T) {
	_, err := CreateProgramAddress([][]byte{make([]byte, MaxSeedLen+1)}, vaultProgram)
	assert.ErrorIs(t, err, ErrSeedTooLong)

	seeds := make([][]byte, MaxSeeds)
	for i := range seeds {
		seeds[i] = []byte{byte(i)}
	}
	_, err = CreateProgramAddress(append(seeds, []byte{0}), vaultProgram)
	assert.ErrorIs(t, err, ErrSeedLength)

	// the bump occupies one of the sixteen seed slots
	_, err = DeriveWithBump(seeds, 1, vaultProgram)
	assert.ErrorIs(t, err, ErrSeedLength)
	_, _, err = FindProgramAddress(seeds, vaultProgram)
	assert.ErrorIs(t, err, ErrSeedLength)
}

func TestIsOnCurve(t *testing.T) {
	key := solana.NewWallet().PublicKey()
	assert.True(t, IsOnCurve(key[:]))
}

func TestFindAssociatedTokenAddress(t *testing.T) {
	wallet := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()

	want, wantBump, err := solana.FindAssociatedTokenAddress(wallet, mint)
	require.NoError(t, err)

	got, bump, err := FindAssociatedTokenAddress(wallet, mint, solana.TokenProgramID)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, wantBump, bump)

	again, err := DeriveAssociatedTokenAddress(wallet, mint, solana.TokenProgramID, bump)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}
