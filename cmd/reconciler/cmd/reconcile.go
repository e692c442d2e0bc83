package cmd

import (
	"fmt"

	"soa-reconciliation-engine/cmd/reconciler/config"
	"soa-reconciliation-engine/internal/models"
	"soa-reconciliation-engine/internal/parsers"
	"soa-reconciliation-engine/internal/reconciler"
	"soa-reconciliation-engine/internal/reporter"
	"soa-reconciliation-engine/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	runConfigFile string
	outputDir     string
	noExport      bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run a reconciliation against the configured references",
	Long: `Reconcile loads the base ledger and every configured reference, joins them
on the match key (exactly or fuzzily), and writes a detailed workbook plus a
per-key discrepancy report.

Per-reference failures are logged and skipped; only configuration errors
abort the run. An export failure still prints the in-memory summary.`,
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().StringVarP(&runConfigFile, "run-config", "c", "", "run configuration file (required)")
	reconcileCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "output directory for the Excel artifact")
	reconcileCmd.Flags().BoolVar(&noExport, "no-export", false, "skip writing the Excel artifact")
	reconcileCmd.MarkFlagRequired("run-config")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("cli")

	cfg, err := config.Load(runConfigFile)
	if err != nil {
		return err
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if noExport {
		cfg.NoExport = true
	}

	input, err := buildRunInput(cfg)
	if err != nil {
		return err
	}

	result, err := reconciler.NewRunner().Run(*input)
	if err != nil {
		return err
	}

	annotations := reporter.BuildAnnotations(result)

	artifactPath := ""
	if !cfg.NoExport {
		exporter := reporter.NewExporter(&reporter.ExportConfig{OutputDir: cfg.OutputDir})
		artifactPath, err = exporter.Export(result, annotations)
		if err != nil {
			// Export failures are non-fatal: the in-memory results stand.
			log.WithError(err).Error("export failed; results are shown without an artifact")
			result.Log = append(result.Log, fmt.Sprintf("Export error: %v", err))
			artifactPath = ""
		}
	}

	printSummary(cmd, result, artifactPath)
	return nil
}

// buildRunInput loads the base and reference tables and assembles the
// engine input.
func buildRunInput(cfg *config.RunConfig) (*reconciler.RunInput, error) {
	parser := parsers.NewTableParser(nil)

	base, err := parser.ParseFile(cfg.BaseFile)
	if err != nil {
		return nil, err
	}

	refs := make([]models.ReferenceSpec, 0, len(cfg.References))
	for _, rc := range cfg.References {
		table, err := parser.ParseFile(rc.File)
		if err != nil {
			return nil, err
		}
		refs = append(refs, models.ReferenceSpec{
			Table:         table,
			MatchColumn:   rc.MatchColumn,
			ReturnColumns: rc.ReturnColumns,
			MatchType:     rc.ParsedMatchType(),
			Name:          rc.Name,
		})
	}

	return &reconciler.RunInput{
		Base:         base,
		MatchColumn:  cfg.MatchColumn,
		DateColumn:   cfg.DateColumn,
		AmountColumn: cfg.AmountColumn,
		References:   refs,
	}, nil
}

// printSummary writes the run outcome for the operator.
func printSummary(cmd *cobra.Command, result *reconciler.RunResult, artifactPath string) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Detailed rows:    %d\n", result.Detailed.Len())
	fmt.Fprintf(out, "Discrepancy keys: %d\n", len(result.Rows))

	counts := make(map[reconciler.Status]int)
	for _, row := range result.Rows {
		counts[row.Status]++
	}
	for _, status := range []reconciler.Status{
		reconciler.StatusMatch,
		reconciler.StatusMissingInSOA,
		reconciler.StatusMissingInRef,
		reconciler.StatusUnderpaid,
		reconciler.StatusOverpaid,
	} {
		if counts[status] > 0 {
			fmt.Fprintf(out, "  %-20s %d\n", status, counts[status])
		}
	}

	if artifactPath != "" {
		fmt.Fprintf(out, "Artifact:         %s\n", artifactPath)
	}

	if len(result.Log) > 0 {
		fmt.Fprintln(out, "\nWarnings:")
		for _, msg := range result.Log {
			fmt.Fprintf(out, "  - %s\n", msg)
		}
	}
}
