package checks

import "github.com/gagliardetto/solana-go"

// Well-known program and sysvar addresses.
var (
	SystemProgram          = solana.SystemProgramID
	TokenProgram           = solana.TokenProgramID
	Token2022Program       = solana.Token2022ProgramID
	AssociatedTokenProgram = solana.SPLAssociatedTokenAccountProgramID
	MetadataProgram        = solana.TokenMetadataProgramID
	BPFLoaderUpgradeable   = solana.BPFLoaderUpgradeableProgramID
	ComputeBudgetProgram   = solana.ComputeBudget
	SysvarClock            = solana.SysVarClockPubkey
	SysvarRent             = solana.SysVarRentPubkey
	SysvarInstructions     = solana.SysVarInstructionsPubkey
)
