package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/seoscan/internal/analysis"
	"github.com/nao1215/seoscan/internal/config"
	"github.com/nao1215/seoscan/internal/ingest"
	"github.com/nao1215/seoscan/internal/model"
	"github.com/nao1215/seoscan/internal/pipeline"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a scan and print its SEO audit report",
		Long: `Analyze runs the four analyses over a scan and prints the audit report:

- Site architecture: depth distribution, orphan pages, internal link ranks
- Technical health: slow and large pages, broken links, redirects, indexability
- Content: thin content, missing titles and descriptions, duplicate titles,
  similar pages
- Media: images without alt text, image heavy pages

Scans analyzed from the database get a snapshot stored so later
comparisons are cheap. A crawl export can also be analyzed directly
without importing it.

Examples:
  # Analyze a stored scan
  seoscan analyze -p acme -s 3

  # Analyze every scan of a project concurrently
  seoscan analyze -p acme --all

  # Analyze an export file without storing it
  seoscan analyze -f crawl.json --markdown -o report.md`,
		Args: cobra.NoArgs,
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().StringP("project", "p", "", "Project id")
	cmd.Flags().Int64P("scan", "s", 0, "Scan id (use 'seoscan compare --list' to see ids)")
	cmd.Flags().StringP("file", "f", "", "Analyze a crawl export file instead of a stored scan")
	cmd.Flags().BoolP("all", "a", false, "Analyze every scan of the project")
	cmd.Flags().IntP("batch", "b", 0, "Number of concurrent analyses with --all (default: number of CPUs)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultAnalysisTimeout, "Timeout of one analysis")
	addReportFlags(cmd)

	return cmd
}

// analyzeOptions are the parsed analyze flags.
type analyzeOptions struct {
	projectID string
	scanID    int64
	file      string
	all       bool
	batch     int
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, _ []string) error {
	opts, err := readAnalyzeOptions(cmd)
	if err != nil {
		return err
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := readReportFlags(cmd, cfg); err != nil {
		return err
	}
	cfg.AnalysisTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}
	if opts.batch > 0 {
		cfg.Workers = opts.batch
	}
	cfg.Verbose = persistentBool(cmd, "verbose")
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	logger := setupLogger(cmd, slog.LevelWarn)

	switch {
	case opts.file != "":
		return analyzeFile(cmd, cfg, logger, opts.file)
	case opts.all:
		return analyzeAll(cmd, cfg, logger, opts.projectID)
	default:
		return analyzeScan(cmd, cfg, logger, opts.projectID, opts.scanID)
	}
}

func readAnalyzeOptions(cmd *cobra.Command) (analyzeOptions, error) {
	var (
		o   analyzeOptions
		err error
	)
	if o.projectID, err = cmd.Flags().GetString("project"); err != nil {
		return o, err
	}
	if o.scanID, err = cmd.Flags().GetInt64("scan"); err != nil {
		return o, err
	}
	if o.file, err = cmd.Flags().GetString("file"); err != nil {
		return o, err
	}
	if o.all, err = cmd.Flags().GetBool("all"); err != nil {
		return o, err
	}
	if o.batch, err = cmd.Flags().GetInt("batch"); err != nil {
		return o, err
	}
	o.projectID = strings.TrimSpace(o.projectID)

	switch {
	case o.file != "":
		if o.all || o.scanID != 0 {
			return o, errors.New("--file cannot be combined with --scan or --all")
		}
	case o.all:
		if o.projectID == "" {
			return o, errors.New("--project is required with --all")
		}
		if o.scanID != 0 {
			return o, errors.New("--scan cannot be combined with --all")
		}
	default:
		if o.projectID == "" || o.scanID <= 0 {
			return o, errors.New("--project and --scan are required (or use --file or --all)")
		}
	}
	return o, nil
}

func newAnalyzer(cfg *config.Config, logger *slog.Logger, projectID string) *analysis.Analyzer {
	return analysis.New(cfg.ThresholdsFor(projectID), analysis.WithLogger(logger))
}

// analyzeScan analyzes one stored scan and saves its snapshot.
func analyzeScan(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, projectID string, scanID int64) error {
	ctx, cancel := signalContext()
	defer cancel()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	p := pipeline.NewAnalysisPipeline(db, newAnalyzer(cfg, logger, projectID),
		pipeline.WithLogger(logger),
		pipeline.WithTimeout(cfg.AnalysisTimeout),
	)
	job := &pipeline.Job{ProjectID: projectID, ScanID: scanID}
	if err := p.Execute(ctx, job); err != nil {
		return fmt.Errorf("failed to analyze scan %d: %w", scanID, err)
	}
	return outputReports(cmd, cfg, job.Report)
}

// analyzeFile analyzes a crawl export without touching the database.
func analyzeFile(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, path string) error {
	ctx, cancel := signalContext()
	defer cancel()

	exp, err := ingest.LoadFile(path)
	if err != nil {
		return err
	}
	crawl, err := ingest.Validate(exp, ingest.HTMLRootFor(path))
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	p := pipeline.NewAnalysisPipeline(nil, newAnalyzer(cfg, logger, crawl.ProjectID),
		pipeline.WithLogger(logger),
		pipeline.WithTimeout(cfg.AnalysisTimeout),
	)
	job := &pipeline.Job{ProjectID: crawl.ProjectID, Crawl: crawl}
	if err := p.Execute(ctx, job); err != nil {
		return fmt.Errorf("failed to analyze %s: %w", path, err)
	}
	return outputReports(cmd, cfg, job.Report)
}

// analyzeAll analyzes every scan of a project with a bounded batch.
func analyzeAll(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, projectID string) error {
	ctx, cancel := signalContext()
	defer cancel()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	scans, err := db.ListScans(ctx, projectID)
	if err != nil {
		return err
	}
	if len(scans) == 0 {
		return model.NotFound("analyze", "no scans for project %s", projectID)
	}

	analyzer := newAnalyzer(cfg, logger, projectID)
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.NewAnalysisPipeline(db, analyzer,
				pipeline.WithLogger(logger),
				pipeline.WithTimeout(cfg.AnalysisTimeout),
			)
		},
		pipeline.WithConcurrency(cfg.Workers),
		pipeline.WithBatchLogger(logger),
	)

	jobs := make([]*pipeline.Job, len(scans))
	for i, s := range scans {
		jobs[i] = &pipeline.Job{ProjectID: projectID, ScanID: s.ID}
	}
	jobs, err = bp.ProcessBatch(ctx, jobs)
	if err != nil {
		return err
	}

	reports := make([]*model.AuditReport, 0, len(jobs))
	var failed []string
	for _, job := range jobs {
		if job.Err != nil {
			failed = append(failed, fmt.Sprintf("scan %d: %v", job.ScanID, job.Err))
			continue
		}
		reports = append(reports, job.Report)
	}

	if err := outputReports(cmd, cfg, reports...); err != nil {
		return err
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d analyses failed:\n  %s", len(failed), len(jobs), strings.Join(failed, "\n  "))
	}
	return nil
}
