package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/protix/am"
	"github.com/teranos/protix/db"
	"github.com/teranos/protix/display"
	"github.com/teranos/protix/errors"
	"github.com/teranos/protix/logger"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect saved integration runs",
	Long: `db - Inspect integration runs saved with 'protix ix --save'

The database path comes from database.path in am.toml (default protix.db).

Examples:
  protix db runs                  # List the 20 most recent runs
  protix db runs --limit 5        # List the 5 most recent runs
  protix db show <run-id>         # Print the records of a run as JSON
  protix db show <run-id> --format jsonl`,
}

var dbRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List saved integration runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runDbRuns,
}

var dbShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the records of a saved run",
	Args:  cobra.ExactArgs(1),
	RunE:  runDbShow,
}

func init() {
	dbRunsCmd.Flags().Int("limit", 20, "Maximum number of runs to list")
	dbShowCmd.Flags().String("format", display.FormatJSON, "Output format: json, jsonl, yaml, toml")

	DbCmd.AddCommand(dbRunsCmd)
	DbCmd.AddCommand(dbShowCmd)
}

// openRecordStore opens the configured database; close the returned closer
func openRecordStore() (*db.RecordStore, io.Closer, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load config")
	}
	database, err := db.OpenWithMigrations(cfg.GetDatabasePath(), logger.Logger)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open database")
	}
	return db.NewRecordStore(database, logger.Logger), database, nil
}

func runDbRuns(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	store, closer, err := openRecordStore()
	if err != nil {
		return err
	}
	defer closer.Close()

	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	return writeRuns(cmd.OutOrStdout(), runs, display.ShouldOutputJSON(cmd))
}

func writeRuns(w io.Writer, runs []db.Run, useJSON bool) error {
	if useJSON {
		if runs == nil {
			runs = []db.Run{}
		}
		return display.WriteJSON(w, runs)
	}

	if len(runs) == 0 {
		pterm.Fprint(w, pterm.Info.Sprintln("No saved runs"))
		return nil
	}

	data := pterm.TableData{{"RUN ID", "CREATED", "PROTEINS", "TAXONOMY", "GO TERMS", "SKIPPED", "FASTA"}}
	for _, run := range runs {
		data = append(data, []string{
			run.ID,
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			strconv.Itoa(run.Proteins),
			strconv.Itoa(run.TaxonomyMatched),
			strconv.Itoa(run.TermsMatched),
			strconv.Itoa(run.TermsSkipped),
			run.Sources.FASTA,
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, "render runs")
	}
	_, err = fmt.Fprintf(w, "%s\n\nTotal: %d run(s)\n", table, len(runs))
	return err
}

func runDbShow(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if !display.IsSupportedFormat(format) {
		return errors.NewInvalidRequestError("unsupported format: %s", format)
	}

	store, closer, err := openRecordStore()
	if err != nil {
		return err
	}
	defer closer.Close()

	records, err := store.LoadRun(cmd.Context(), args[0])
	if err != nil {
		if errors.IsNotFoundError(err) {
			return errors.WithHint(err, "list saved runs with 'protix db runs'")
		}
		return err
	}
	return display.WriteRecords(cmd.OutOrStdout(), format, records)
}
