package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/protix/am"
	"github.com/teranos/protix/cmd/protix/commands"
	"github.com/teranos/protix/errors"
	"github.com/teranos/protix/logger"
)

var rootCmd = &cobra.Command{
	Use:   "protix",
	Short: "protix - protein sequence and annotation integration",
	Long: `protix - protein sequence and annotation integration.

Joins a FASTA file of protein sequences with a taxonomy table and a GO term
table into one record per protein.

Available commands:
  ix      - Integrate FASTA, taxonomy and GO terms into protein records
  am      - Manage protix configuration ("I am")
  db      - Inspect saved integration runs
  version - Show build information

Examples:
  protix ix --fasta uniprot.fasta.gz --taxonomy taxonomy.tsv --terms terms.tsv
  protix ix --format jsonl --output records.jsonl --save
  protix db runs
  protix am show`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")

		// Config errors surface in the command itself; logging still comes up
		jsonLogs := false
		if cfg, err := am.Load(); err == nil {
			jsonLogs = cfg.Log.JSON
		}

		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("json", false, "Print command summaries as JSON")

	rootCmd.AddCommand(commands.IxCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	err := rootCmd.Execute()
	logger.Cleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
