package db

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/protix/errors"
	"github.com/teranos/protix/ixgest/protein"
	"github.com/teranos/protix/ixgest/types"
)

func setupStore(t *testing.T) (*RecordStore, *sql.DB) {
	t.Helper()
	db, err := OpenWithMigrations(filepath.Join(t.TempDir(), "protix.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRecordStore(db, nil), db
}

func sampleResult() *protein.Result {
	taxon := "9606"
	return &protein.Result{
		Records: map[string]*types.ProteinRecord{
			"P1": {
				Sequence: "ABCDE",
				TaxonID:  &taxon,
				GOTerms: &types.GOTerms{
					BPO: []string{"GO:0002", "GO:0001", "GO:0002"},
					CCO: []string{},
					MFO: []string{"GO:0003"},
				},
			},
			"P2": {Sequence: "XYZ"},
			"":   {Sequence: ""},
		},
		Stats: protein.Stats{
			Proteins:        3,
			TaxonomyMatched: 1,
			TermsMatched:    4,
			TermsSkipped:    1,
			DurationMs:      12,
		},
		Warnings: []protein.Issue{{Source: "terms", Line: 5, Code: protein.IssueUnknownCategory}},
	}
}

var sampleSources = protein.Sources{FASTA: "p.fasta", Taxonomy: "t.tsv", Terms: "g.tsv"}

func TestRecordStore_SaveAndLoadRun(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()
	result := sampleResult()

	runID, err := store.SaveRun(ctx, sampleSources, protein.PolicySkip, result)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	records, err := store.LoadRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, result.Records, records)

	run, err := store.GetRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, runID, run.ID)
	assert.Equal(t, sampleSources, run.Sources)
	assert.Equal(t, "skip", run.UnknownCategory)
	assert.Equal(t, 3, run.Proteins)
	assert.Equal(t, 1, run.TaxonomyMatched)
	assert.Equal(t, 4, run.TermsMatched)
	assert.Equal(t, 1, run.TermsSkipped)
	assert.Equal(t, 1, run.Warnings)
	assert.Equal(t, int64(12), run.DurationMs)
	assert.WithinDuration(t, time.Now(), run.CreatedAt, time.Minute)
}

func TestRecordStore_RunsAreIsolated(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	first, err := store.SaveRun(ctx, sampleSources, protein.PolicyReject, sampleResult())
	require.NoError(t, err)

	second := &protein.Result{Records: map[string]*types.ProteinRecord{"Q1": {Sequence: "MM"}}}
	secondID, err := store.SaveRun(ctx, sampleSources, protein.PolicyReject, second)
	require.NoError(t, err)

	records, err := store.LoadRun(ctx, secondID)
	require.NoError(t, err)
	assert.Equal(t, second.Records, records)

	records, err = store.LoadRun(ctx, first)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestRecordStore_LoadRunNotFound(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.LoadRun(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))

	_, err = store.GetRun(context.Background(), "missing")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestRecordStore_ListRunsNewestFirst(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Second)
		store.now = func() time.Time { return at }
		store.newID = func() string { return fmt.Sprintf("run-%d", len(ids)) }
		id, err := store.SaveRun(ctx, sampleSources, protein.PolicyReject, &protein.Result{})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	runs, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, "run-1", runs[1].ID)
	assert.True(t, runs[0].CreatedAt.Equal(base.Add(2*time.Second)))

	all, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRecordStore_SaveRunNilResult(t *testing.T) {
	store, _ := setupStore(t)
	_, err := store.SaveRun(context.Background(), sampleSources, protein.PolicyReject, nil)
	assert.True(t, errors.IsInvalidRequestError(err))
}

// Minimal sqlmock tests to verify transaction handling

func TestRecordStore_SaveRunRollsBackOnInsertFailure_Sqlmock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewRecordStore(db, nil)
	store.newID = func() string { return "run-x" }

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO integration_runs`).
		WithArgs("run-x", "p.fasta", "t.tsv", "g.tsv", "reject",
			0, 0, 0, 0, 0, int64(0), sqlmock.AnyArg()).
		WillReturnError(fmt.Errorf("disk full"))
	mock.ExpectRollback()

	_, err = store.SaveRun(context.Background(), sampleSources, protein.PolicyReject, &protein.Result{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert integration run")
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordStore_ListRuns_Sqlmock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	columns := []string{"id", "fasta_path", "taxonomy_path", "terms_path", "unknown_category",
		"proteins", "taxonomy_matched", "terms_matched", "terms_skipped", "warnings",
		"duration_ms", "created_at"}
	mock.ExpectQuery(`FROM integration_runs ORDER BY created_at DESC`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("r1", "p.fasta", "t.tsv", "g.tsv", "skip", 10, 4, 7, 1, 1, 3, "2026-03-01T12:00:00.000000000Z"))

	runs, err := NewRecordStore(db, nil).ListRuns(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "r1", runs[0].ID)
	assert.Equal(t, 10, runs[0].Proteins)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), runs[0].CreatedAt.UTC())
	assert.NoError(t, mock.ExpectationsWereMet())
}
