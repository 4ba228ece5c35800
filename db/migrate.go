package db

import (
	"database/sql"
	"embed"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/protix/errors"
	"github.com/teranos/protix/logger"
)

//go:embed sqlite/migrations/*.sql
var schemaFS embed.FS

const (
	migrationsDir = "sqlite/migrations"

	// bootstrapVersion creates schema_migrations and must come first
	bootstrapVersion = "000"
)

// migration is one schema step, loaded from NNN_description.sql
type migration struct {
	Version string
	Name    string
	SQL     string
}

// Migrate applies every embedded migration not yet recorded in
// schema_migrations, each in its own transaction. A nil logger is silent.
func Migrate(db *sql.DB, log *zap.SugaredLogger) error {
	return migrate(db, schemaFS, migrationsDir, logger.OrNop(log))
}

func migrate(db *sql.DB, fsys fs.FS, dir string, log *zap.SugaredLogger) error {
	start := time.Now()

	migrations, err := loadMigrations(fsys, dir)
	if err != nil {
		return err
	}
	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}

	var count int
	for _, m := range migrations {
		if applied[m.Version] {
			log.Debugw("Skipping applied migration",
				logger.FieldMigration, m.Name,
				logger.FieldVersion, m.Version)
			continue
		}

		log.Infow("Applying migration",
			logger.FieldMigration, m.Name,
			logger.FieldVersion, m.Version)
		if err := applyMigration(db, m); err != nil {
			return err
		}
		count++
	}

	log.Infow("Migrations complete",
		logger.FieldCount, count,
		"total_migrations", len(migrations),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return nil
}

// loadMigrations reads dir and returns its migrations in version order.
// Names must be NNN_description.sql with unique numeric versions, and the
// bootstrap version must be present.
func loadMigrations(fsys fs.FS, dir string) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, errors.Wrap(err, "read migrations")
	}

	var migrations []migration
	byVersion := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		version, _, ok := strings.Cut(name, "_")
		if _, err := strconv.Atoi(version); !ok || err != nil {
			return nil, errors.Newf("migration %s: name must look like NNN_description.sql", name)
		}
		if other, dup := byVersion[version]; dup {
			return nil, errors.Newf("migrations %s and %s share version %s", other, name, version)
		}
		byVersion[version] = name

		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", name)
		}
		migrations = append(migrations, migration{Version: version, Name: name, SQL: string(data)})
	}

	sort.Slice(migrations, func(i, j int) bool {
		a, _ := strconv.Atoi(migrations[i].Version)
		b, _ := strconv.Atoi(migrations[j].Version)
		return a < b
	})
	if len(migrations) == 0 || migrations[0].Version != bootstrapVersion {
		return nil, errors.Newf("migration %s (schema_migrations) is missing", bootstrapVersion)
	}
	return migrations, nil
}

// appliedVersions returns the recorded versions; empty before bootstrap
func appliedVersions(db *sql.DB) (map[string]bool, error) {
	var tables int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_migrations'`,
	).Scan(&tables)
	if err != nil {
		return nil, errors.Wrap(err, "check schema_migrations")
	}

	applied := make(map[string]bool)
	if tables == 0 {
		return applied, nil
	}

	rows, err := db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, errors.Wrap(err, "list applied migrations")
	}
	defer rows.Close()
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, errors.Wrap(err, "scan migration version")
		}
		applied[version] = true
	}
	return applied, errors.Wrap(rows.Err(), "iterate applied migrations")
}

// applyMigration runs m and records its version in one transaction
func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.Wrapf(err, "begin %s", m.Name)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.SQL); err != nil {
		return errors.Wrapf(err, "execute %s", m.Name)
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (version) VALUES (?)`, m.Version); err != nil {
		return errors.Wrapf(err, "record %s", m.Name)
	}
	return errors.Wrapf(tx.Commit(), "commit %s", m.Name)
}
