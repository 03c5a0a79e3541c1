package inspect

import (
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/QuarksBlueFoot/jiminy/pkg/layout"
	"github.com/QuarksBlueFoot/jiminy/pkg/programs/escrow"
	"github.com/QuarksBlueFoot/jiminy/pkg/programs/vault"
	"github.com/QuarksBlueFoot/jiminy/pkg/rpcclient"
	"github.com/QuarksBlueFoot/jiminy/pkg/scenario"
)

var Cmd = cobra.Command{
	Use:   "inspect [hex:...|b58:...]",
	Short: "Decode the header of an account buffer",
	Long: `Decode the header of an account buffer given on the command line, or
of a live account fetched with --account from the --rpc endpoint.`,
	Args: cobra.MaximumNArgs(1),
	Run:  run,
}

var (
	disc       int
	minVersion uint8
	rpcURL     string
	account    string
)

func init() {
	Cmd.Flags().IntVarP(&disc, "disc", "d", -1, "Expected discriminator; enables the header check")
	Cmd.Flags().Uint8VarP(&minVersion, "min-version", "m", 1, "Minimum accepted version for the header check")
	Cmd.Flags().StringVar(&rpcURL, "rpc", rpc.MainNetBeta_RPC, "JSON-RPC endpoint for --account")
	Cmd.Flags().StringVarP(&account, "account", "a", "", "Fetch and decode this account instead of an argument")
}

func load(c *cobra.Command, args []string) []byte {
	if account == "" {
		if len(args) != 1 {
			klog.Exit("need an account buffer argument or --account")
		}
		data, err := scenario.ParseBytes(args[0])
		if err != nil {
			klog.Exit(err)
		}
		return data
	}

	key, err := solana.PublicKeyFromBase58(account)
	if err != nil {
		klog.Exitf("invalid account %q: %s", account, err)
	}
	acct, err := rpcclient.NewRpcClient(rpcURL).GetAccount(c.Context(), key)
	if err != nil {
		klog.Exit(err)
	}
	if acct == nil {
		klog.Exitf("account %s not found", key)
	}
	klog.V(1).Infof("fetched %s: %d lamports, owner %s", key, acct.Lamports, acct.Owner)
	return acct.Data
}

func run(c *cobra.Command, args []string) {
	data := load(c, args)
	hdr, err := layout.DecodeHeader(data)
	if err != nil {
		klog.Exitf("%d bytes: %s", len(data), err)
	}

	out := c.OutOrStdout()
	fmt.Fprintf(out, "length         %d\n", len(data))
	fmt.Fprintf(out, "discriminator  %d\n", hdr.Discriminator)
	fmt.Fprintf(out, "version        %d\n", hdr.Version)
	fmt.Fprintf(out, "flags          %08b\n", uint8(hdr.Flags))
	fmt.Fprintf(out, "reserved       %d\n", hdr.Reserved)
	fmt.Fprintf(out, "data_len       %d\n", hdr.DataLen)
	if payload, err := layout.DeclaredPayload(data); err != nil {
		fmt.Fprintf(out, "payload        %s\n", err)
	} else {
		fmt.Fprintf(out, "payload        %d bytes\n", len(payload))
	}

	switch hdr.Discriminator {
	case vault.Discriminator:
		if s, err := vault.Decode(data); err == nil {
			fmt.Fprintf(out, "vault          balance=%d authority=%s\n", s.Balance, s.Authority)
		}
	case escrow.Discriminator:
		if e, err := escrow.Decode(data); err == nil {
			fmt.Fprintf(out, "escrow         state=%s amount=%d creator=%s recipient=%s timeout=%d\n",
				e.State, e.Amount, e.Creator, e.Recipient, e.TimeoutTs)
		}
	}

	if disc < 0 {
		return
	}
	if disc > 0xff {
		klog.Exitf("discriminator %d out of range", disc)
	}
	if _, err := layout.CheckHeader(data, uint8(disc), minVersion); err != nil {
		fmt.Fprintf(out, "check          %s\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(out, "check          ok\n")
}
