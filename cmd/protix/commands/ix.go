package commands

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/protix/am"
	"github.com/teranos/protix/db"
	"github.com/teranos/protix/display"
	"github.com/teranos/protix/errors"
	"github.com/teranos/protix/ixgest/protein"
	"github.com/teranos/protix/ixgest/watch"
	"github.com/teranos/protix/logger"
)

// IxCmd integrates the three inputs into protein records
var IxCmd = &cobra.Command{
	Use:   "ix",
	Short: "Integrate FASTA sequences with taxonomy and GO term annotations",
	Long: `Integrate (ix) a FASTA file with a taxonomy table and a GO term table.

Every FASTA header defines one protein; the identifier is the second
'|'-separated field of the header (">sp|P12345|NAME_HUMAN ..." -> P12345).
Annotation rows for identifiers absent from the FASTA file are skipped.

Inputs (tab-separated, no header row):
  --taxonomy   identifier, taxon id
  --terms      identifier, GO term, subontology (BPO, CCO or MFO)

Paths ending in .gz are decompressed; "-" reads standard input.
Paths not given as flags come from input.* in am.toml.

Examples:
  protix ix --fasta uniprot.fasta.gz --taxonomy taxonomy.tsv --terms terms.tsv
  protix ix --format yaml --output records.yaml
  protix ix --unknown-category skip --save
  protix ix --watch --output records.json`,
	Args: cobra.NoArgs,
	RunE: runIx,
}

func init() {
	addIxFlags(IxCmd)
}

func addIxFlags(cmd *cobra.Command) {
	cmd.Flags().String("fasta", "", "FASTA file of protein sequences")
	cmd.Flags().String("taxonomy", "", "Taxonomy TSV (identifier, taxon id)")
	cmd.Flags().String("terms", "", "GO terms TSV (identifier, GO term, subontology)")
	cmd.Flags().String("format", "", "Output format: json, jsonl, yaml, toml")
	cmd.Flags().StringP("output", "o", "", `Output path ("-" for stdout)`)
	cmd.Flags().String("unknown-category", "", "Subontology codes other than BPO/CCO/MFO: reject or skip")
	cmd.Flags().Bool("save", false, "Save the run to the database")
	cmd.Flags().Bool("watch", false, "Re-run whenever an input file changes")
}

// stdoutPath selects standard output for --output
const stdoutPath = "-"

// ixOptions is the resolved configuration of one ix invocation
type ixOptions struct {
	Sources protein.Sources
	Policy  protein.CategoryPolicy
	Format  string
	Output  string
}

// ixSummary is what ix reports after each run
type ixSummary struct {
	RunID    string          `json:"run_id,omitempty"`
	Sources  protein.Sources `json:"sources"`
	Format   string          `json:"format"`
	Output   string          `json:"output"`
	Stats    protein.Stats   `json:"stats"`
	Warnings []protein.Issue `json:"warnings,omitempty"`
}

// resolveIxOptions overlays explicitly set flags on the loaded config
func resolveIxOptions(cmd *cobra.Command, cfg *am.Config) (ixOptions, error) {
	pick := func(flag, fallback string) string {
		if cmd.Flags().Changed(flag) {
			v, _ := cmd.Flags().GetString(flag)
			return v
		}
		return fallback
	}

	opts := ixOptions{
		Sources: protein.Sources{
			FASTA:    pick("fasta", cfg.Input.FASTA),
			Taxonomy: pick("taxonomy", cfg.Input.Taxonomy),
			Terms:    pick("terms", cfg.Input.Terms),
		},
		Format: pick("format", cfg.Output.Format),
		Output: pick("output", cfg.Output.Path),
	}
	if opts.Output == "" {
		opts.Output = stdoutPath
	}

	if err := opts.Sources.Validate(); err != nil {
		return opts, err
	}
	policy, err := protein.ParseCategoryPolicy(pick("unknown-category", cfg.Integrate.UnknownCategory))
	if err != nil {
		return opts, err
	}
	opts.Policy = policy
	if !display.IsSupportedFormat(opts.Format) {
		return opts, errors.WithHintf(
			errors.NewInvalidRequestError("unsupported format: %s", opts.Format),
			"supported formats: %v", display.Formats)
	}
	return opts, nil
}

func runIx(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	opts, err := resolveIxOptions(cmd, cfg)
	if err != nil {
		return err
	}
	saveRun, _ := cmd.Flags().GetBool("save")
	watchInputs, _ := cmd.Flags().GetBool("watch")
	useJSON := display.ShouldOutputJSON(cmd)

	var store *db.RecordStore
	if saveRun {
		database, err := db.OpenWithMigrations(cfg.GetDatabasePath(), logger.Logger)
		if err != nil {
			return errors.Wrap(err, "failed to open database")
		}
		defer database.Close()
		store = db.NewRecordStore(database, logger.Logger)
	}

	runner := &ixRunner{
		opts:       opts,
		integrator: protein.NewIntegrator(protein.Options{UnknownCategory: opts.Policy}, logger.Logger),
		store:      store,
		stdout:     cmd.OutOrStdout(),
		stderr:     cmd.ErrOrStderr(),
		useJSON:    useJSON,
	}

	if !watchInputs {
		return runner.run(cmd.Context())
	}
	return runner.runWatching(cmd.Context(), cfg)
}

// ixRunner performs integrate-write-report cycles with fixed options
type ixRunner struct {
	opts       ixOptions
	integrator *protein.Integrator
	store      *db.RecordStore
	stdout     io.Writer
	stderr     io.Writer
	useJSON    bool
}

func (r *ixRunner) run(ctx context.Context) error {
	result, err := r.integrator.RunFiles(r.opts.Sources)
	if err != nil {
		return err
	}

	if err := writeRecordsTo(r.opts.Output, r.stdout, r.opts.Format, result); err != nil {
		return err
	}

	summary := ixSummary{
		Sources:  r.opts.Sources,
		Format:   r.opts.Format,
		Output:   r.opts.Output,
		Stats:    result.Stats,
		Warnings: result.Warnings,
	}
	if r.store != nil {
		runID, err := r.store.SaveRun(ctx, r.opts.Sources, r.opts.Policy, result)
		if err != nil {
			return errors.Wrap(err, "failed to save run")
		}
		summary.RunID = runID
	}

	return r.report(summary)
}

// report prints the summary. It goes to stderr whenever records occupy stdout.
func (r *ixRunner) report(summary ixSummary) error {
	w := r.stdout
	if r.opts.Output == stdoutPath {
		w = r.stderr
	}
	if r.useJSON {
		return display.WriteJSON(w, summary)
	}

	out := pterm.Success.Sprintfln("Integrated %d proteins", summary.Stats.Proteins)
	out += pterm.Sprintf("  Taxonomy rows: %d (%d matched, %d unmatched)\n",
		summary.Stats.TaxonomyRows, summary.Stats.TaxonomyMatched, summary.Stats.TaxonomyUnmatched)
	out += pterm.Sprintf("  GO term rows: %d (%d matched, %d unmatched, %d skipped)\n",
		summary.Stats.TermRows, summary.Stats.TermsMatched, summary.Stats.TermsUnmatched, summary.Stats.TermsSkipped)
	out += pterm.Sprintf("  Duration: %dms\n", summary.Stats.DurationMs)
	if summary.Output != stdoutPath {
		out += pterm.Sprintf("  Wrote %s (%s)\n", summary.Output, summary.Format)
	}
	if len(summary.Warnings) > 0 {
		out += pterm.Warning.Sprintfln("%d warning(s) reported", len(summary.Warnings))
	}
	if summary.RunID != "" {
		out += pterm.Info.Sprintfln("Saved run %s (protix db show %s)", summary.RunID, summary.RunID)
	}
	_, err := io.WriteString(w, out)
	return err
}

func (r *ixRunner) runWatching(ctx context.Context, cfg *am.Config) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	paths := []string{r.opts.Sources.FASTA, r.opts.Sources.Taxonomy, r.opts.Sources.Terms}
	rerun := func() error { return r.run(ctx) }

	w, err := watch.New(paths, cfg.GetWatchDebounce(), rerun, logger.Logger)
	if err != nil {
		return err
	}
	defer w.Close()

	// A bad first run is reported and watching continues so the input can be fixed
	if err := rerun(); err != nil {
		logger.Errorw("Integration failed", logger.FieldError, err)
	}
	if !r.useJSON {
		pterm.Fprint(r.stderr, pterm.Info.Sprintfln("Watching inputs for changes (Ctrl+C to stop)"))
	}
	return w.Run(ctx)
}

// writeRecordsTo writes to stdout for "-" and otherwise replaces the file
// at path with a single rename.
func writeRecordsTo(path string, stdout io.Writer, format string, result *protein.Result) error {
	if path == stdoutPath {
		return display.WriteRecords(stdout, format, result.Records)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrapf(err, "create output in %s", dir)
	}
	defer os.Remove(tmp.Name())

	if err := display.WriteRecords(tmp, format, result.Records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	if err := os.Chmod(tmp.Name(), am.DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "chmod %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "replace %s", path)
	}
	return nil
}
