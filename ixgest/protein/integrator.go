// Package protein joins FASTA sequences with taxonomy and GO term tables
// into one ProteinRecord per identifier.
//
// The FASTA source defines the set of identifiers. Annotation rows for
// identifiers outside that set are skipped without error. Malformed rows
// abort the whole integration.
package protein

import (
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/protix/errors"
	"github.com/teranos/protix/ixgest/fasta"
	"github.com/teranos/protix/ixgest/types"
	"github.com/teranos/protix/logger"
)

// CategoryPolicy decides what happens to a terms row whose subontology code
// is not BPO, CCO or MFO.
type CategoryPolicy string

const (
	// PolicyReject fails the integration with errors.ErrUnknownCategory.
	PolicyReject CategoryPolicy = "reject"
	// PolicySkip drops the row, logs a warning and records an Issue.
	PolicySkip CategoryPolicy = "skip"
)

// ParseCategoryPolicy parses "reject" or "skip". Empty means reject.
func ParseCategoryPolicy(s string) (CategoryPolicy, error) {
	switch CategoryPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyReject:
		return PolicyReject, nil
	case PolicySkip:
		return PolicySkip, nil
	}
	return "", errors.NewInvalidRequestError("unknown category policy %q (use reject or skip)", s)
}

// Options configures an Integrator.
type Options struct {
	UnknownCategory CategoryPolicy
}

// Sources names the three input files. "-" reads standard input.
type Sources struct {
	FASTA    string `json:"fasta"`
	Taxonomy string `json:"taxonomy"`
	Terms    string `json:"terms"`
}

// Validate checks that all three paths are set.
func (s Sources) Validate() error {
	var missing []string
	if s.FASTA == "" {
		missing = append(missing, SourceFASTA)
	}
	if s.Taxonomy == "" {
		missing = append(missing, SourceTaxonomy)
	}
	if s.Terms == "" {
		missing = append(missing, SourceTerms)
	}
	if len(missing) > 0 {
		return errors.WithHint(
			errors.NewInvalidRequestError("missing input path(s): %s", strings.Join(missing, ", ")),
			"pass --fasta, --taxonomy and --terms or set input.* in am.toml")
	}
	return nil
}

// Issue is a non-fatal problem found while integrating.
type Issue struct {
	Source  string `json:"source"`
	Line    int    `json:"line"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Issue codes.
const (
	IssueUnknownCategory = "unknown_category"
	IssueDuplicateHeader = "duplicate_header"
)

// Stats counts what each step read and joined.
type Stats struct {
	Proteins          int   `json:"proteins"`
	DuplicateHeaders  int   `json:"duplicate_headers"`
	TaxonomyRows      int   `json:"taxonomy_rows"`
	TaxonomyMatched   int   `json:"taxonomy_matched"`
	TaxonomyUnmatched int   `json:"taxonomy_unmatched"`
	TermRows          int   `json:"term_rows"`
	TermsMatched      int   `json:"terms_matched"`
	TermsUnmatched    int   `json:"terms_unmatched"`
	TermsSkipped      int   `json:"terms_skipped"`
	DurationMs        int64 `json:"duration_ms"`
}

// Result is the outcome of an integration run.
type Result struct {
	Records  map[string]*types.ProteinRecord `json:"records"`
	Stats    Stats                           `json:"stats"`
	Warnings []Issue                         `json:"warnings,omitempty"`
}

// Integrator runs the FASTA parse followed by the taxonomy and terms joins.
// It holds no per-run state and may be reused.
type Integrator struct {
	opts   Options
	logger *zap.SugaredLogger
}

// NewIntegrator creates an Integrator. A nil logger discards output.
func NewIntegrator(opts Options, log *zap.SugaredLogger) *Integrator {
	if opts.UnknownCategory == "" {
		opts.UnknownCategory = PolicyReject
	}
	return &Integrator{opts: opts, logger: logger.OrNop(log)}
}

// Integrate builds the unified record set from the three sources using the
// reject policy for unknown subontology codes.
func Integrate(fastaSrc, taxonomySrc, termsSrc io.Reader) (map[string]*types.ProteinRecord, error) {
	result, err := NewIntegrator(Options{}, nil).Run(fastaSrc, taxonomySrc, termsSrc)
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}

// Run integrates already-open sources. Each source is read to exhaustion
// before the next step starts.
func (in *Integrator) Run(fastaSrc, taxonomySrc, termsSrc io.Reader) (*Result, error) {
	start := time.Now()
	result := &Result{}

	if err := in.loadSequences(result, fastaSrc); err != nil {
		return nil, err
	}
	if err := in.joinTaxonomy(result, taxonomySrc); err != nil {
		return nil, err
	}
	if err := in.joinTerms(result, termsSrc); err != nil {
		return nil, err
	}

	in.finish(result, start)
	return result, nil
}

// RunFiles integrates the files named by src. Each file is opened, fully
// read and closed before the next one is opened; a failure closes the file
// being read and aborts.
func (in *Integrator) RunFiles(src Sources) (*Result, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	result := &Result{}

	steps := []struct {
		path string
		run  func(*Result, io.Reader) error
	}{
		{src.FASTA, in.loadSequences},
		{src.Taxonomy, in.joinTaxonomy},
		{src.Terms, in.joinTerms},
	}
	for _, step := range steps {
		if err := withSource(step.path, func(r io.Reader) error {
			return step.run(result, r)
		}); err != nil {
			return nil, errors.Wrapf(err, "integrate %s", step.path)
		}
	}

	in.finish(result, start)
	return result, nil
}

func withSource(path string, fn func(io.Reader) error) error {
	rc, err := fasta.Open(path)
	if err != nil {
		return err
	}
	defer rc.Close()
	return fn(rc)
}

func (in *Integrator) finish(result *Result, start time.Time) {
	result.Stats.DurationMs = time.Since(start).Milliseconds()
	in.logger.Infow("Integration complete",
		"proteins", result.Stats.Proteins,
		"taxonomy_matched", result.Stats.TaxonomyMatched,
		"terms_matched", result.Stats.TermsMatched,
		"warnings", len(result.Warnings),
		logger.FieldDurationMS, result.Stats.DurationMs,
	)
}

// loadSequences creates one record per FASTA identifier.
func (in *Integrator) loadSequences(result *Result, r io.Reader) error {
	sequences, report, err := fasta.ParseWithReport(r)
	if err != nil {
		return errors.NewReadError(err, SourceFASTA)
	}

	records := make(map[string]*types.ProteinRecord, len(sequences))
	for id, seq := range sequences {
		records[id] = &types.ProteinRecord{Sequence: seq}
	}
	result.Records = records
	result.Stats.Proteins = len(records)
	result.Stats.DuplicateHeaders = len(report.Duplicates)

	for _, id := range report.Duplicates {
		in.logger.Warnw("Duplicate FASTA identifier, keeping the later record",
			logger.FieldProteinID, id)
		result.Warnings = append(result.Warnings, Issue{
			Source:  SourceFASTA,
			Code:    IssueDuplicateHeader,
			Message: "identifier " + id + " appears in more than one header; the later record wins",
		})
	}
	in.logger.Debugw("Parsed FASTA", "headers", report.Headers, "proteins", len(records))
	return nil
}

// joinTaxonomy applies (identifier, taxon_id) rows. The last matching row
// for an identifier wins.
func (in *Integrator) joinTaxonomy(result *Result, r io.Reader) error {
	rows := newRowReader(SourceTaxonomy, r, 2)
	for {
		row, _, err := rows.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		result.Stats.TaxonomyRows++

		record, ok := result.Records[row[0]]
		if !ok {
			result.Stats.TaxonomyUnmatched++
			continue
		}
		record.SetTaxonID(row[1])
		result.Stats.TaxonomyMatched++
	}
	in.logger.Debugw("Joined taxonomy",
		"rows", result.Stats.TaxonomyRows,
		"matched", result.Stats.TaxonomyMatched,
		"unmatched", result.Stats.TaxonomyUnmatched)
	return nil
}

// joinTerms applies (identifier, go_term, subontology) rows in row order.
func (in *Integrator) joinTerms(result *Result, r io.Reader) error {
	rows := newRowReader(SourceTerms, r, 3)
	for {
		row, line, err := rows.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		result.Stats.TermRows++

		id, term, code := row[0], row[1], row[2]
		record, ok := result.Records[id]
		if !ok {
			result.Stats.TermsUnmatched++
			continue
		}

		category, ok := types.ParseSubontology(code)
		if !ok {
			if in.opts.UnknownCategory != PolicySkip {
				return errors.WithHint(
					errors.Wrapf(errors.ErrUnknownCategory, "%s line %d: code %q", SourceTerms, line, code),
					"subontology must be BPO, CCO or MFO; use --unknown-category skip to drop such rows")
			}
			result.Stats.TermsSkipped++
			in.logger.Warnw("Skipping GO term with unknown subontology",
				logger.FieldSource, SourceTerms,
				logger.FieldLine, line,
				logger.FieldProteinID, id,
				"subontology", code)
			result.Warnings = append(result.Warnings, Issue{
				Source:  SourceTerms,
				Line:    line,
				Code:    IssueUnknownCategory,
				Message: "unknown subontology " + code + " for " + id + " (" + term + ")",
			})
			continue
		}

		record.EnsureGOTerms().Append(category, term)
		result.Stats.TermsMatched++
	}
	in.logger.Debugw("Joined GO terms",
		"rows", result.Stats.TermRows,
		"matched", result.Stats.TermsMatched,
		"unmatched", result.Stats.TermsUnmatched,
		"skipped", result.Stats.TermsSkipped)
	return nil
}
