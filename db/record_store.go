package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/protix/errors"
	"github.com/teranos/protix/ixgest/protein"
	"github.com/teranos/protix/ixgest/types"
	"github.com/teranos/protix/logger"
)

// createdAtLayout is fixed-width so created_at sorts lexicographically
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run describes one persisted integration run
type Run struct {
	ID              string          `json:"id"`
	Sources         protein.Sources `json:"sources"`
	UnknownCategory string          `json:"unknown_category"`
	Proteins        int             `json:"proteins"`
	TaxonomyMatched int             `json:"taxonomy_matched"`
	TermsMatched    int             `json:"terms_matched"`
	TermsSkipped    int             `json:"terms_skipped"`
	Warnings        int             `json:"warnings"`
	DurationMs      int64           `json:"duration_ms"`
	CreatedAt       time.Time       `json:"created_at"`
}

// RecordStore persists integration results in SQLite
type RecordStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
	newID  func() string
	now    func() time.Time
}

// NewRecordStore creates a store over an already-migrated database
func NewRecordStore(db *sql.DB, log *zap.SugaredLogger) *RecordStore {
	return &RecordStore{
		db:     db,
		logger: logger.OrNop(log),
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

// SaveRun stores result and returns the new run ID. Everything is written
// in one transaction; on error nothing is kept.
func (s *RecordStore) SaveRun(ctx context.Context, src protein.Sources, policy protein.CategoryPolicy, result *protein.Result) (string, error) {
	if result == nil {
		return "", errors.NewInvalidRequestError("nil integration result")
	}
	runID := s.newID()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", errors.Wrap(err, "begin run transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO integration_runs (
			id, fasta_path, taxonomy_path, terms_path, unknown_category,
			proteins, taxonomy_matched, terms_matched, terms_skipped, warnings,
			duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, src.FASTA, src.Taxonomy, src.Terms, string(policy),
		result.Stats.Proteins, result.Stats.TaxonomyMatched, result.Stats.TermsMatched,
		result.Stats.TermsSkipped, len(result.Warnings), result.Stats.DurationMs,
		s.now().UTC().Format(createdAtLayout),
	)
	if err != nil {
		return "", errors.Wrap(err, "insert integration run")
	}

	proteinStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO proteins (run_id, protein_id, sequence, taxon_id, has_go_terms)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", errors.Wrap(err, "prepare protein insert")
	}
	defer proteinStmt.Close()

	termStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO protein_go_terms (run_id, protein_id, subontology, position, go_term)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", errors.Wrap(err, "prepare GO term insert")
	}
	defer termStmt.Close()

	for id, record := range result.Records {
		var taxonID sql.NullString
		if record.TaxonID != nil {
			taxonID = sql.NullString{String: *record.TaxonID, Valid: true}
		}
		if _, err := proteinStmt.ExecContext(ctx, runID, id, record.Sequence, taxonID, record.GOTerms != nil); err != nil {
			return "", errors.Wrapf(err, "insert protein %s", id)
		}

		if record.GOTerms == nil {
			continue
		}
		for _, category := range types.Subontologies {
			for position, term := range record.GOTerms.Terms(category) {
				if _, err := termStmt.ExecContext(ctx, runID, id, string(category), position, term); err != nil {
					return "", errors.Wrapf(err, "insert GO term %s for %s", term, id)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", errors.Wrap(err, "commit integration run")
	}

	s.logger.Infow("Saved integration run",
		logger.FieldRunID, runID,
		"proteins", len(result.Records))
	return runID, nil
}

const runColumns = `
	id, fasta_path, taxonomy_path, terms_path, unknown_category,
	proteins, taxonomy_matched, terms_matched, terms_skipped, warnings,
	duration_ms, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run       Run
		createdAt string
	)
	if err := row.Scan(
		&run.ID, &run.Sources.FASTA, &run.Sources.Taxonomy, &run.Sources.Terms, &run.UnknownCategory,
		&run.Proteins, &run.TaxonomyMatched, &run.TermsMatched, &run.TermsSkipped, &run.Warnings,
		&run.DurationMs, &createdAt,
	); err != nil {
		return nil, err
	}
	t, err := time.Parse(createdAtLayout, createdAt)
	if err != nil {
		return nil, errors.Wrapf(err, "parse created_at of run %s", run.ID)
	}
	run.CreatedAt = t
	return &run, nil
}

// GetRun returns the metadata of one run, or errors.ErrNotFound
func (s *RecordStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM integration_runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(errors.ErrNotFound, "run %s", runID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get run %s", runID)
	}
	return run, nil
}

// ListRuns returns up to limit runs, newest first
func (s *RecordStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM integration_runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate runs")
	}
	return runs, nil
}

// LoadRun rebuilds the records of a run exactly as they were saved
func (s *RecordStore) LoadRun(ctx context.Context, runID string) (map[string]*types.ProteinRecord, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	records := make(map[string]*types.ProteinRecord)

	rows, err := s.db.QueryContext(ctx,
		`SELECT protein_id, sequence, taxon_id, has_go_terms FROM proteins WHERE run_id = ?`, runID)
	if err != nil {
		return nil, errors.Wrapf(err, "load proteins of run %s", runID)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, sequence string
			taxonID      sql.NullString
			hasGOTerms   bool
		)
		if err := rows.Scan(&id, &sequence, &taxonID, &hasGOTerms); err != nil {
			return nil, errors.Wrap(err, "scan protein")
		}
		record := &types.ProteinRecord{Sequence: sequence}
		if taxonID.Valid {
			record.SetTaxonID(taxonID.String)
		}
		if hasGOTerms {
			record.EnsureGOTerms()
		}
		records[id] = record
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate proteins")
	}

	termRows, err := s.db.QueryContext(ctx, `
		SELECT protein_id, subontology, go_term FROM protein_go_terms
		WHERE run_id = ?
		ORDER BY protein_id, subontology, position`, runID)
	if err != nil {
		return nil, errors.Wrapf(err, "load GO terms of run %s", runID)
	}
	defer termRows.Close()

	for termRows.Next() {
		var id, code, term string
		if err := termRows.Scan(&id, &code, &term); err != nil {
			return nil, errors.Wrap(err, "scan GO term")
		}
		record, ok := records[id]
		if !ok {
			return nil, errors.AssertionFailedf("GO term %s references missing protein %s", term, id)
		}
		category, ok := types.ParseSubontology(code)
		if !ok {
			return nil, errors.Wrapf(errors.ErrUnknownCategory, "stored code %q", code)
		}
		record.EnsureGOTerms().Append(category, term)
	}
	if err := termRows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate GO terms")
	}

	return records, nil
}
