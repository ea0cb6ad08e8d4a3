package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/seoscan/internal/database"
	"github.com/nao1215/seoscan/internal/ingest"
)

// NewImportCmd creates the import command.
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [crawl-export]",
		Short: "Import a crawl export into the database",
		Long: `Import validates a crawl export and stores it as a new scan.

The export is a JSON or YAML document (picked by file extension) with the
project, the crawled pages, their links and the issues found. Pages may
reference a saved HTML body with "html_file" instead of carrying title,
meta description, canonical, robots directives, images and keywords; those
fields are then extracted from the HTML, resolved relative to the export.

Invalid exports are rejected as a whole with every problem listed.

Examples:
  # Import a crawl for the project in the export
  seoscan import crawl.json

  # Import into a specific project with a display name
  seoscan import -p acme -n "ACME Corp" crawl.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: runImportCmd,
	}

	cmd.Flags().StringP("project", "p", "",
		"Project id (overrides the id in the export)")
	cmd.Flags().StringP("name", "n", "",
		"Project display name (overrides the name in the export)")

	return cmd
}

// runImportCmd executes the import command.
func runImportCmd(cmd *cobra.Command, args []string) error {
	projectID, err := cmd.Flags().GetString("project")
	if err != nil {
		return err
	}
	name, err := cmd.Flags().GetString("name")
	if err != nil {
		return err
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd, slog.LevelWarn)

	path := args[0]
	exp, err := ingest.LoadFile(path)
	if err != nil {
		return err
	}
	if p := strings.TrimSpace(projectID); p != "" {
		exp.Project.ID = p
	}
	if n := strings.TrimSpace(name); n != "" {
		exp.Project.Name = n
	}
	if exp.Project.Name == "" && cfg.ProjectConfigs != nil {
		exp.Project.Name = cfg.ProjectConfigs.GetProjectConfig(exp.Project.ID).Name
	}

	crawl, err := ingest.Validate(exp, ingest.HTMLRootFor(path))
	if err != nil {
		var verr *ingest.ValidationError
		if errors.As(err, &verr) {
			for _, p := range verr.Problems {
				fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", p)
			}
		}
		return fmt.Errorf("failed to import %s: %w", path, err)
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	scan, err := db.ImportCrawl(ctx, crawl, exp.Project.Name, ingest.ScanTime(exp))
	if err != nil {
		return err
	}
	logger.Info("crawl imported",
		"project", scan.ProjectID,
		"scan", scan.ID,
		"pages", scan.PagesCount,
		"issues", scan.IssuesCount,
	)

	if exp.Snapshot != nil {
		if err := saveImportedSnapshot(ctx, db, exp, scan.ID); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported scan %d for project %s (%d pages, %d issues)\n",
		scan.ID, scan.ProjectID, scan.PagesCount, scan.IssuesCount)
	return nil
}

// saveImportedSnapshot stores the snapshot carried by an export under the
// id of the scan it was imported as.
func saveImportedSnapshot(ctx context.Context, db *database.AuditDB, exp *ingest.Export, scanID int64) error {
	snap := *exp.Snapshot
	snap.ScanID = scanID
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = ingest.ScanTime(exp)
	}
	if err := db.SaveSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}
