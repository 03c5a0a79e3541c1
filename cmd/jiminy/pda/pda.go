package pda

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/QuarksBlueFoot/jiminy/pkg/cu"
	"github.com/QuarksBlueFoot/jiminy/pkg/pda"
	"github.com/QuarksBlueFoot/jiminy/pkg/programs/escrow"
	"github.com/QuarksBlueFoot/jiminy/pkg/programs/vault"
	"github.com/QuarksBlueFoot/jiminy/pkg/scenario"
)

var Cmd = cobra.Command{
	Use:   "pda <seed>...",
	Short: "Derive a program address from seeds",
	Long: `Derive a program address from seeds given as hex:, b58: or str: byte strings.

Without --bump the canonical bump is searched from 255 down.`,
	Args: cobra.RangeArgs(0, pda.MaxSeeds-1),
	Run:  run,
}

var (
	program string
	bump    int
	expect  string
)

var programs = map[string]solana.PublicKey{
	"system": solana.SystemProgramID,
	"vault":  vault.ProgramID,
	"escrow": escrow.ProgramID,
}

func init() {
	Cmd.Flags().StringVarP(&program, "program", "p", "", "Program ID, base58 or one of system, vault, escrow")
	Cmd.Flags().IntVarP(&bump, "bump", "b", -1, "Known bump seed")
	Cmd.Flags().StringVarP(&expect, "expect", "e", "", "Address the derivation must produce")
	_ = Cmd.MarkFlagRequired("program")
}

func run(c *cobra.Command, args []string) {
	programID, ok := programs[program]
	if !ok {
		var err error
		if programID, err = solana.PublicKeyFromBase58(program); err != nil {
			klog.Exitf("invalid program %q: %s", program, err)
		}
	}

	seeds := make([][]byte, 0, len(args))
	for _, arg := range args {
		seed, err := scenario.ParseBytes(arg)
		if err != nil {
			klog.Exit(err)
		}
		seeds = append(seeds, seed)
	}

	var (
		addr solana.PublicKey
		err  error
	)
	meter := cu.NewComputeMeterDefault()
	if bump < 0 {
		var found uint8
		addr, found, err = pda.FindProgramAddressMetered(seeds, programID, &meter)
		bump = int(found)
	} else if bump > 0xff {
		klog.Exitf("bump %d out of range", bump)
	} else {
		if err = meter.Consume(cu.CUCreateProgramAddressUnits); err == nil {
			addr, err = pda.DeriveWithBump(seeds, uint8(bump), programID)
		}
	}
	if err != nil {
		klog.Exitf("derivation failed: %s", err)
	}

	out := c.OutOrStdout()
	fmt.Fprintf(out, "address  %s\n", addr)
	fmt.Fprintf(out, "bump     %d\n", bump)
	fmt.Fprintf(out, "cu       %d\n", meter.Used())

	if expect != "" {
		want, err := solana.PublicKeyFromBase58(expect)
		if err != nil {
			klog.Exitf("invalid --expect: %s", err)
		}
		if want != addr {
			klog.Exitf("address mismatch: derived %s, expected %s", addr, want)
		}
	}
}
