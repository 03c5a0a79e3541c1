package lint

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/QuarksBlueFoot/jiminy/pkg/layout"
	"github.com/QuarksBlueFoot/jiminy/pkg/programs/escrow"
	"github.com/QuarksBlueFoot/jiminy/pkg/programs/vault"
)

var Cmd = cobra.Command{
	Use:   "lint [schemas.yaml]...",
	Short: "Check record layouts for offset stability across versions",
	Long: `Check record layouts for offset stability across versions.

The built-in vault and escrow layouts are always included, so a file
describing their next versions is checked against the deployed ones.`,
	Run: run,
}

var noBuiltins bool

func init() {
	Cmd.Flags().BoolVar(&noBuiltins, "no-builtins", false, "Do not include the built-in layouts")
}

func run(c *cobra.Command, args []string) {
	var schemas []layout.Schema
	if !noBuiltins {
		schemas = append(schemas, vault.Schemas...)
		schemas = append(schemas, escrow.Schemas...)
	}

	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			klog.Exit(err)
		}
		loaded, err := layout.LoadSchemas(f)
		f.Close()
		if err != nil {
			klog.Exitf("%s: %s", path, err)
		}
		klog.V(1).Infof("loaded %d schemas from %s", len(loaded), path)
		schemas = append(schemas, loaded...)
	}

	errs := layout.LintSchemas(schemas)
	for _, e := range errs {
		fmt.Fprintln(c.OutOrStdout(), e)
	}
	if len(errs) > 0 {
		klog.Exitf("%d violations in %d schemas", len(errs), len(schemas))
	}
	klog.Infof("%d schemas ok", len(schemas))
}
