package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/seoscan/internal/compare"
	"github.com/nao1215/seoscan/internal/database"
)

// dateFormat is the scan date layout of history listings.
const dateFormat = "2006-01-02 15:04"

// NewCompareCmd creates the compare command.
// This command compares two scans of a project stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare two scans of a project",
		Long: `Compare shows how a project changed between two scans.

For each scan the stored snapshot is used when one exists; otherwise the
metrics are derived from the scan's own counters. The comparison shows
page and issue totals side by side with new and fixed issues and new and
removed pages. Scan 1 is the baseline.

Examples:
  # Compare scan 1 (baseline) with scan 4
  seoscan compare -p acme --scan1 1 --scan2 4

  # List the scan history of a project
  seoscan compare -p acme --list

  # List all projects in the database
  seoscan compare --list-projects

  # Output comparison in JSON format
  seoscan compare -p acme --scan1 1 --scan2 4 --json`,
		Args: cobra.NoArgs,
		RunE: runCompareCmd,
	}

	cmd.Flags().StringP("project", "p", "", "Project id")
	cmd.Flags().String("scan1", "", "Baseline scan id")
	cmd.Flags().String("scan2", "", "Scan id to compare against the baseline")

	// History listing flags
	cmd.Flags().BoolP("list", "l", false, "List scan history for the project")
	cmd.Flags().BoolP("list-projects", "L", false, "List all projects in the database")

	addReportFlags(cmd)

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, _ []string) error {
	listProjects, err := cmd.Flags().GetBool("list-projects")
	if err != nil {
		return err
	}
	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	projectID, err := cmd.Flags().GetString("project")
	if err != nil {
		return err
	}
	projectID = strings.TrimSpace(projectID)

	// Validate arguments before opening the database.
	if !listProjects && projectID == "" {
		return errors.New("--project is required (use --list-projects to see available projects)")
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := readReportFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	logger := setupLogger(cmd, slog.LevelWarn)

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()

	switch {
	case listProjects:
		return listAllProjects(ctx, cmd, db)
	case listHistory:
		return listScanHistory(ctx, cmd, db, projectID)
	}

	scan1, err := cmd.Flags().GetString("scan1")
	if err != nil {
		return err
	}
	scan2, err := cmd.Flags().GetString("scan2")
	if err != nil {
		return err
	}

	cmp, err := compare.New(db, compare.WithLogger(logger)).CompareParams(ctx, projectID, scan1, scan2)
	if err != nil {
		return err
	}

	w, closeFn, err := openOutput(cmd, cfg.ReportFile)
	if err != nil {
		return err
	}
	defer closeFn() //nolint:errcheck

	if _, err := newWriter(cfg, w).WriteComparison(cmp); err != nil {
		return fmt.Errorf("failed to write comparison: %w", err)
	}
	return nil
}

// listAllProjects lists all projects that have scans in the database.
func listAllProjects(ctx context.Context, cmd *cobra.Command, db *database.AuditDB) error {
	projects, err := db.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(projects) == 0 {
		fmt.Fprintln(out, "No projects found in the database.")
		fmt.Fprintln(out, "\nUse 'seoscan import <crawl-export>' to import a crawl.")
		return nil
	}

	fmt.Fprintf(out, "Projects (%d):\n\n", len(projects))
	for _, p := range projects {
		if p.Name != "" && p.Name != p.ID {
			fmt.Fprintf(out, "  • %s (%s)\n", p.ID, p.Name)
			continue
		}
		fmt.Fprintf(out, "  • %s\n", p.ID)
	}
	fmt.Fprintln(out, "\nUse 'seoscan compare -p <project> --list' to see its scan history.")
	return nil
}

// listScanHistory lists all scans of a project, newest first.
func listScanHistory(ctx context.Context, cmd *cobra.Command, db *database.AuditDB, projectID string) error {
	scans, err := db.ListScans(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(scans) == 0 {
		fmt.Fprintf(out, "No scan history found for %s\n", projectID)
		return nil
	}

	fmt.Fprintf(out, "Scan history for %s (%d scans):\n\n", projectID, len(scans))
	fmt.Fprintf(out, "  %-6s  %-16s  %-9s  %6s  %6s\n", "ID", "Date", "Status", "Pages", "Issues")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 53))
	for _, s := range scans {
		fmt.Fprintf(out, "  %-6d  %-16s  %-9s  %6d  %6d\n",
			s.ID, s.CreatedAt.Format(dateFormat), s.Status, s.PagesCount, s.IssuesCount)
	}
	return nil
}
