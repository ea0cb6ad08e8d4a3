package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/seoscan/internal/analysis"
	"github.com/nao1215/seoscan/internal/pipeline"
	"github.com/nao1215/seoscan/internal/report"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export analysis results of a scan as CSV",
		Long: `Export writes one dataset of a scan's analysis as CSV.

The file starts with a UTF-8 byte order mark so spreadsheet applications
detect the encoding. Available datasets:
  ` + datasetList() + `

Examples:
  # Export all pages of scan 3
  seoscan export -p acme -s 3 -d pages -o pages.csv

  # Export broken links to stdout
  seoscan export -p acme -s 3 -d broken-links`,
		Args: cobra.NoArgs,
		RunE: runExportCmd,
	}

	cmd.Flags().StringP("project", "p", "", "Project id")
	cmd.Flags().Int64P("scan", "s", 0, "Scan id")
	cmd.Flags().StringP("dataset", "d", string(report.DatasetPages), "Dataset to export")
	cmd.Flags().StringP("output", "o", "", "Write CSV to specified file path")

	return cmd
}

func datasetList() string {
	names := make([]string, 0, len(report.Datasets()))
	for _, d := range report.Datasets() {
		names = append(names, string(d))
	}
	return strings.Join(names, ", ")
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, _ []string) error {
	projectID, err := cmd.Flags().GetString("project")
	if err != nil {
		return err
	}
	scanID, err := cmd.Flags().GetInt64("scan")
	if err != nil {
		return err
	}
	name, err := cmd.Flags().GetString("dataset")
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" || scanID <= 0 {
		return errors.New("--project and --scan are required")
	}
	dataset, err := report.ParseDataset(name)
	if err != nil {
		return err
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd, slog.LevelWarn)

	ctx, cancel := signalContext()
	defer cancel()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	analyzer := analysis.New(cfg.ThresholdsFor(projectID), analysis.WithLogger(logger))
	p := pipeline.NewAnalysisPipeline(db, analyzer,
		pipeline.WithLogger(logger),
		pipeline.WithTimeout(cfg.AnalysisTimeout),
	)
	job := &pipeline.Job{ProjectID: projectID, ScanID: scanID}
	if err := p.Execute(ctx, job); err != nil {
		return fmt.Errorf("failed to analyze scan %d: %w", scanID, err)
	}

	w, closeFn, err := openOutput(cmd, output)
	if err != nil {
		return err
	}
	defer closeFn() //nolint:errcheck

	if _, err := report.ExportCSV(w, dataset, job.Crawl, job.Report); err != nil {
		return fmt.Errorf("failed to export %s: %w", dataset, err)
	}
	if output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s of scan %d to %s\n", dataset, scanID, output)
	}
	return nil
}
