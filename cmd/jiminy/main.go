package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/QuarksBlueFoot/jiminy/cmd/jiminy/inspect"
	"github.com/QuarksBlueFoot/jiminy/cmd/jiminy/lint"
	"github.com/QuarksBlueFoot/jiminy/cmd/jiminy/pda"
	"github.com/QuarksBlueFoot/jiminy/cmd/jiminy/run"
)

var cmd = cobra.Command{
	Use:   "jiminy",
	Short: "Account layout and check toolkit",
}

func init() {
	klogFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(klogFlags)
	cmd.PersistentFlags().AddGoFlagSet(klogFlags)

	cmd.AddCommand(
		&inspect.Cmd,
		&lint.Cmd,
		&pda.Cmd,
		&run.Cmd,
	)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	cobra.CheckErr(cmd.ExecuteContext(ctx))
}
