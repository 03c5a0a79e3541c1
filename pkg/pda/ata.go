package pda

import "github.com/gagliardetto/solana-go"

// FindAssociatedTokenAddress derives the associated token account of wallet
// for mint under tokenProgram (token or token-2022).
func FindAssociatedTokenAddress(wallet, mint, tokenProgram solana.PublicKey) (solana.PublicKey, uint8, error) {
	return FindProgramAddress([][]byte{wallet[:], tokenProgram[:], mint[:]}, solana.SPLAssociatedTokenAccountProgramID)
}

// DeriveAssociatedTokenAddress is FindAssociatedTokenAddress with a known
// bump.
func DeriveAssociatedTokenAddress(wallet, mint, tokenProgram solana.PublicKey, bump uint8) (solana.PublicKey, error) {
	return DeriveWithBump([][]byte{wallet[:], tokenProgram[:], mint[:]}, bump, solana.SPLAssociatedTokenAccountProgramID)
}
