package run

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/segmentio/textio"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/QuarksBlueFoot/jiminy/pkg/features"
	jruntime "github.com/QuarksBlueFoot/jiminy/pkg/runtime"
	"github.com/QuarksBlueFoot/jiminy/pkg/scenario"
)

var Cmd = cobra.Command{
	Use:   "run <scenario.yaml>...",
	Short: "Execute scenario files against the vault and escrow programs",
	Args:  cobra.MinimumNArgs(1),
	Run:   run,
}

var (
	computeBudget uint64
	noCULimit     bool
	parallel      int
	showLogs      bool
	showMetrics   bool
	disabled      []string
)

func init() {
	Cmd.Flags().Uint64VarP(&computeBudget, "compute-budget", "c", 0, "Compute units per transaction (0 for the default)")
	Cmd.Flags().BoolVar(&noCULimit, "no-cu-limit", false, "Disable compute unit metering")
	Cmd.Flags().IntVarP(&parallel, "parallel", "j", runtime.NumCPU(), "Scenarios to run concurrently")
	Cmd.Flags().BoolVarP(&showLogs, "logs", "l", false, "Print program logs of every transaction")
	Cmd.Flags().BoolVarP(&showMetrics, "metrics", "m", false, "Print an execution metrics summary")
	Cmd.Flags().StringSliceVar(&disabled, "disable-feature", nil, "Feature gates to deactivate in every scenario")
}

type result struct {
	path   string
	report *scenario.Report
	err    error
}

func run(c *cobra.Command, args []string) {
	out := c.OutOrStdout()
	if f, ok := out.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		color.NoColor = true
	}

	reg := prometheus.NewRegistry()
	opts := []jruntime.Option{jruntime.WithMetrics(jruntime.NewMetrics(reg))}
	if computeBudget > 0 {
		opts = append(opts, jruntime.WithComputeBudget(computeBudget))
	}
	if noCULimit {
		opts = append(opts, jruntime.WithoutComputeLimit())
	}
	for _, name := range disabled {
		f, ok := features.Lookup(name)
		if !ok {
			klog.Exitf("unknown feature %q", name)
		}
		opts = append(opts, jruntime.WithoutFeature(f))
	}

	results := make([]result, len(args))
	group, ctx := errgroup.WithContext(c.Context())
	group.SetLimit(max(parallel, 1))
	for i, path := range args {
		i, path := i, path
		group.Go(func() error {
			results[i] = runFile(ctx, path, opts)
			return ctx.Err()
		})
	}
	if err := group.Wait(); err != nil {
		klog.Exitf("interrupted: %s", err)
	}

	failed := 0
	for _, r := range results {
		if !printResult(out, r) {
			failed++
		}
	}
	if showMetrics {
		if err := printMetrics(out, reg); err != nil {
			klog.Errorf("failed to gather metrics: %s", err)
		}
	}
	if failed > 0 {
		klog.Exitf("%d of %d scenarios failed", failed, len(results))
	}
}

func runFile(ctx context.Context, path string, opts []jruntime.Option) result {
	if err := ctx.Err(); err != nil {
		return result{path: path, err: err}
	}
	s, err := scenario.LoadFile(path)
	if err != nil {
		return result{path: path, err: err}
	}
	klog.V(1).Infof("running %s (%d transactions)", path, len(s.Transactions))
	report, err := scenario.Run(s, opts...)
	return result{path: path, report: report, err: err}
}

func printResult(w io.Writer, r result) bool {
	pass := color.New(color.FgGreen, color.Bold).SprintFunc()
	fail := color.New(color.FgRed, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if r.err != nil {
		fmt.Fprintf(w, "%s %s: %s\n", fail("ERROR"), r.path, r.err)
		return false
	}

	status := pass("PASS ")
	if !r.report.Passed() {
		status = fail("FAIL ")
	}
	fmt.Fprintf(w, "%s %s %s\n", status, r.report.Scenario, dim(fmt.Sprintf("(%s, avg %.0f CU, state %x)", r.path, r.report.AverageComputeUnits, r.report.StateHash[:8])))

	pw := textio.NewPrefixWriter(w, "      ")
	defer pw.Flush()
	for _, tx := range r.report.Txs {
		mark := pass("ok")
		if !tx.Passed() {
			mark = fail("!!")
		}
		outcome := "success"
		if tx.Err != nil {
			outcome = tx.Err.Error()
		}
		fmt.Fprintf(pw, "%s %s: %s %s\n", mark, tx.Name, outcome, dim(fmt.Sprintf("[%d CU]", tx.ComputeUnits)))
		for _, f := range tx.Failures {
			fmt.Fprintf(pw, "   %s\n", fail(f))
		}
		if showLogs {
			for _, line := range tx.Logs {
				fmt.Fprintf(pw, "   %s\n", dim(line))
			}
		}
	}
	return r.report.Passed()
}

func printMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "metrics:")
	pw := textio.NewPrefixWriter(w, "  ")
	defer pw.Flush()
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			name := mf.GetName() + labelString(m.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				fmt.Fprintf(pw, "%s %.0f\n", name, m.GetCounter().GetValue())
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				mean := 0.0
				if h.GetSampleCount() > 0 {
					mean = h.GetSampleSum() / float64(h.GetSampleCount())
				}
				fmt.Fprintf(pw, "%s count=%d mean=%.1f\n", name, h.GetSampleCount(), mean)
			}
		}
	}
	return nil
}

func labelString(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}
