package catalog

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/AnClark/cygpm-prototype/pkg/errors"
)

// MemoryDSN opens a private in-memory catalog.
const MemoryDSN = ":memory:"

// schema contains the DDL executed on open. IF NOT EXISTS makes it safe to
// run against an existing catalog.
const schema = `
CREATE TABLE IF NOT EXISTS packages (
    seq            INTEGER PRIMARY KEY AUTOINCREMENT,
    name           TEXT NOT NULL UNIQUE,
    sdesc          TEXT NOT NULL DEFAULT '',
    ldesc          TEXT NOT NULL DEFAULT '',
    category       TEXT NOT NULL DEFAULT '',
    requires       TEXT NOT NULL DEFAULT '',
    version        TEXT NOT NULL DEFAULT '',
    install_path   TEXT NOT NULL DEFAULT '',
    install_size   TEXT NOT NULL DEFAULT '',
    install_sha512 TEXT NOT NULL DEFAULT '',
    source_path    TEXT NOT NULL DEFAULT '',
    source_size    TEXT NOT NULL DEFAULT '',
    source_sha512  TEXT NOT NULL DEFAULT '',
    depends2       TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS prev_versions (
    seq            INTEGER PRIMARY KEY AUTOINCREMENT,
    name           TEXT NOT NULL,
    version        TEXT NOT NULL DEFAULT '',
    install_path   TEXT NOT NULL DEFAULT '',
    install_size   TEXT NOT NULL DEFAULT '',
    install_sha512 TEXT NOT NULL DEFAULT '',
    source_path    TEXT NOT NULL DEFAULT '',
    source_size    TEXT NOT NULL DEFAULT '',
    source_sha512  TEXT NOT NULL DEFAULT '',
    depends2       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS prev_versions_name ON prev_versions (name, version);

CREATE TABLE IF NOT EXISTS dependency_map (
    seq        INTEGER PRIMARY KEY AUTOINCREMENT,
    pkg_name   TEXT NOT NULL,
    version    TEXT NOT NULL,
    depends_on TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS dependency_map_pkg ON dependency_map (pkg_name, version);

CREATE TABLE IF NOT EXISTS manifest_info (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS ingest_runs (
    seq           INTEGER PRIMARY KEY AUTOINCREMENT,
    id            TEXT NOT NULL UNIQUE,
    source        TEXT NOT NULL DEFAULT '',
    loaded_at     TEXT NOT NULL,
    packages      INTEGER NOT NULL,
    prev_versions INTEGER NOT NULL,
    anomalies     INTEGER NOT NULL
);
`

const (
	packageColumns = `name, sdesc, ldesc, category, requires, version,
		install_path, install_size, install_sha512,
		source_path, source_size, source_sha512, depends2`
	prevColumns = `name, version,
		install_path, install_size, install_sha512,
		source_path, source_size, source_sha512, depends2`
)

// SQLiteStore implements Store on a local SQLite database.
//
// The store holds a single connection, so an open Tx blocks every reader
// until it commits or rolls back.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (or creates) the catalog at dsn and creates the schema if
// needed. Pass [MemoryDSN] for a throwaway catalog.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, storageErr(err, "open database")
	}

	// SQLite has a single writer, and an in-memory database exists only on
	// the connection that created it.
	db.SetMaxOpenConns(1)

	if dsn != MemoryDSN {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, storageErr(err, "enable WAL mode")
		}
		if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
			db.Close()
			return nil, storageErr(err, "set busy timeout")
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, storageErr(err, "create schema")
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Begin opens a write transaction.
func (s *SQLiteStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr(err, "begin transaction")
	}
	return &sqliteTx{tx: tx}, nil
}

func (s *SQLiteStore) NewestVersion(ctx context.Context, name string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, "SELECT version FROM packages WHERE name = ?", name).Scan(&v)
	if stderrors.Is(err, sql.ErrNoRows) {
		return "", packageNotFound(name)
	}
	if err != nil {
		return "", storageErr(err, "newest version of %q", name)
	}
	return v, nil
}

func (s *SQLiteStore) DependenciesOf(ctx context.Context, name, version string) ([]string, error) {
	const q = `
		SELECT depends_on FROM dependency_map
		WHERE pkg_name = ? AND version = ?
		GROUP BY depends_on
		ORDER BY MIN(seq)`
	deps, err := queryStrings(ctx, s.db, q, name, version)
	if err != nil {
		return nil, storageErr(err, "dependencies of %q %q", name, version)
	}
	return deps, nil
}

func (s *SQLiteStore) Field(ctx context.Context, name, version string, f Field) (string, error) {
	if f < 0 || int(f) >= len(fieldNames) {
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown field %d", int(f))
	}
	current, err := s.NewestVersion(ctx, name)
	if err != nil {
		return "", err
	}

	var v string
	if version == "" || version == current {
		q := "SELECT " + f.column() + " FROM packages WHERE name = ?"
		if err := s.db.QueryRowContext(ctx, q, name).Scan(&v); err != nil {
			return "", storageErr(err, "read %s of %q", f, name)
		}
		return v, nil
	}

	if !f.Historical() {
		return "", errors.New(errors.ErrCodeFieldNotApplicable,
			"%s is not recorded for previous versions (%s %s)", f, name, version)
	}
	q := "SELECT " + f.column() + " FROM prev_versions WHERE name = ? AND version = ? ORDER BY seq LIMIT 1"
	err = s.db.QueryRowContext(ctx, q, name, version).Scan(&v)
	if stderrors.Is(err, sql.ErrNoRows) {
		return "", versionNotFound(name, version)
	}
	if err != nil {
		return "", storageErr(err, "read %s of %q %q", f, name, version)
	}
	return v, nil
}

func (s *SQLiteStore) PreviousVersions(ctx context.Context, name string) ([]string, error) {
	if _, err := s.NewestVersion(ctx, name); err != nil {
		return nil, err
	}
	vs, err := queryStrings(ctx, s.db, "SELECT version FROM prev_versions WHERE name = ? ORDER BY seq", name)
	if err != nil {
		return nil, storageErr(err, "previous versions of %q", name)
	}
	return vs, nil
}

func (s *SQLiteStore) PackageCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM packages").Scan(&n); err != nil {
		return 0, storageErr(err, "count packages")
	}
	return n, nil
}

func (s *SQLiteStore) Package(ctx context.Context, name string) (Package, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+packageColumns+" FROM packages WHERE name = ?", name)
	var p Package
	err := row.Scan(&p.Name, &p.ShortDesc, &p.LongDesc, &p.Category, &p.Requires, &p.Version,
		&p.Install.Path, &p.Install.Size, &p.Install.SHA512,
		&p.Source.Path, &p.Source.Size, &p.Source.SHA512, &p.Depends2)
	if stderrors.Is(err, sql.ErrNoRows) {
		return Package{}, packageNotFound(name)
	}
	if err != nil {
		return Package{}, storageErr(err, "read package %q", name)
	}
	return p, nil
}

func (s *SQLiteStore) PrevVersion(ctx context.Context, name, version string) (PrevVersion, error) {
	if _, err := s.NewestVersion(ctx, name); err != nil {
		return PrevVersion{}, err
	}
	row := s.db.QueryRowContext(ctx,
		"SELECT "+prevColumns+" FROM prev_versions WHERE name = ? AND version = ? ORDER BY seq LIMIT 1",
		name, version)
	var pv PrevVersion
	err := row.Scan(&pv.Name, &pv.Version,
		&pv.Install.Path, &pv.Install.Size, &pv.Install.SHA512,
		&pv.Source.Path, &pv.Source.Size, &pv.Source.SHA512, &pv.Depends2)
	if stderrors.Is(err, sql.ErrNoRows) {
		return PrevVersion{}, versionNotFound(name, version)
	}
	if err != nil {
		return PrevVersion{}, storageErr(err, "read %q %q", name, version)
	}
	return pv, nil
}

func (s *SQLiteStore) Names(ctx context.Context) ([]string, error) {
	names, err := queryStrings(ctx, s.db, "SELECT name FROM packages ORDER BY seq")
	if err != nil {
		return nil, storageErr(err, "list packages")
	}
	return names, nil
}

func (s *SQLiteStore) Category(ctx context.Context, category string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, category FROM packages ORDER BY seq")
	if err != nil {
		return nil, storageErr(err, "list category %q", category)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name, cats string
		if err := rows.Scan(&name, &cats); err != nil {
			return nil, storageErr(err, "scan category row")
		}
		for _, c := range strings.Fields(cats) {
			if strings.EqualFold(c, category) {
				names = append(names, name)
				break
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err, "iterate category %q", category)
	}
	return names, nil
}

func (s *SQLiteStore) ManifestInfo(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM manifest_info ORDER BY key")
	if err != nil {
		return nil, storageErr(err, "read manifest info")
	}
	defer rows.Close()

	info := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, storageErr(err, "scan manifest info")
		}
		info[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err, "iterate manifest info")
	}
	return info, nil
}

func (s *SQLiteStore) LastRun(ctx context.Context) (Run, error) {
	const q = `
		SELECT id, source, loaded_at, packages, prev_versions, anomalies
		FROM ingest_runs ORDER BY seq DESC LIMIT 1`
	var r Run
	var loadedAt string
	err := s.db.QueryRowContext(ctx, q).Scan(&r.ID, &r.Source, &loadedAt, &r.Packages, &r.PrevVersions, &r.Anomalies)
	if stderrors.Is(err, sql.ErrNoRows) {
		return Run{}, nil
	}
	if err != nil {
		return Run{}, storageErr(err, "read last ingest run")
	}
	if r.LoadedAt, err = time.Parse(time.RFC3339Nano, loadedAt); err != nil {
		return Run{}, storageErr(err, "parse run timestamp %q", loadedAt)
	}
	return r, nil
}

// sqliteTx implements Tx.
type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) Reset(ctx context.Context) error {
	for _, table := range []string{"packages", "prev_versions", "dependency_map", "manifest_info"} {
		if _, err := t.tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return storageErr(err, "clear %s", table)
		}
	}
	return nil
}

func (t *sqliteTx) InsertPackage(ctx context.Context, p Package) error {
	const q = `INSERT INTO packages (` + packageColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := t.tx.ExecContext(ctx, q, p.Name, p.ShortDesc, p.LongDesc, p.Category, p.Requires, p.Version,
		p.Install.Path, p.Install.Size, p.Install.SHA512,
		p.Source.Path, p.Source.Size, p.Source.SHA512, p.Depends2)
	if err != nil {
		return storageErr(err, "insert package %q", p.Name)
	}
	return nil
}

func (t *sqliteTx) InsertPrevVersion(ctx context.Context, pv PrevVersion) error {
	const q = `INSERT INTO prev_versions (` + prevColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := t.tx.ExecContext(ctx, q, pv.Name, pv.Version,
		pv.Install.Path, pv.Install.Size, pv.Install.SHA512,
		pv.Source.Path, pv.Source.Size, pv.Source.SHA512, pv.Depends2)
	if err != nil {
		return storageErr(err, "insert previous version %q %q", pv.Name, pv.Version)
	}
	return nil
}

func (t *sqliteTx) InsertEdge(ctx context.Context, e Edge) error {
	const q = "INSERT INTO dependency_map (pkg_name, version, depends_on) VALUES (?, ?, ?)"
	if _, err := t.tx.ExecContext(ctx, q, e.Package, e.Version, e.DependsOn); err != nil {
		return storageErr(err, "insert edge %s %s -> %s", e.Package, e.Version, e.DependsOn)
	}
	return nil
}

func (t *sqliteTx) ClearEdges(ctx context.Context) error {
	if _, err := t.tx.ExecContext(ctx, "DELETE FROM dependency_map"); err != nil {
		return storageErr(err, "clear dependency map")
	}
	return nil
}

func (t *sqliteTx) DependencySources(ctx context.Context) ([]Source, error) {
	var out []Source

	rows, err := t.tx.QueryContext(ctx, "SELECT name, version, requires, depends2 FROM packages ORDER BY seq")
	if err != nil {
		return nil, storageErr(err, "read package dependencies")
	}
	for rows.Next() {
		src := Source{Current: true}
		if err := rows.Scan(&src.Package, &src.Version, &src.Requires, &src.Depends2); err != nil {
			rows.Close()
			return nil, storageErr(err, "scan package dependencies")
		}
		out = append(out, src)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, storageErr(err, "iterate package dependencies")
	}

	rows, err = t.tx.QueryContext(ctx, "SELECT name, version, depends2 FROM prev_versions ORDER BY seq")
	if err != nil {
		return nil, storageErr(err, "read previous version dependencies")
	}
	defer rows.Close()
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.Package, &src.Version, &src.Depends2); err != nil {
			return nil, storageErr(err, "scan previous version dependencies")
		}
		out = append(out, src)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err, "iterate previous version dependencies")
	}
	return out, nil
}

func (t *sqliteTx) SetManifestInfo(ctx context.Context, info map[string]string) error {
	const q = `
		INSERT INTO manifest_info (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	for k, v := range info {
		if _, err := t.tx.ExecContext(ctx, q, k, v); err != nil {
			return storageErr(err, "set manifest info %q", k)
		}
	}
	return nil
}

func (t *sqliteTx) RecordRun(ctx context.Context, r Run) error {
	const q = `
		INSERT INTO ingest_runs (id, source, loaded_at, packages, prev_versions, anomalies)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := t.tx.ExecContext(ctx, q, r.ID, r.Source, r.LoadedAt.UTC().Format(time.RFC3339Nano),
		r.Packages, r.PrevVersions, r.Anomalies)
	if err != nil {
		return storageErr(err, "record ingest run %s", r.ID)
	}
	return nil
}

func (t *sqliteTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		_ = t.tx.Rollback()
		return storageErr(err, "commit")
	}
	return nil
}

func (t *sqliteTx) Rollback() error {
	err := t.tx.Rollback()
	if err == nil || stderrors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return storageErr(err, "rollback")
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryStrings(ctx context.Context, q querier, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func storageErr(err error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeStorage, err, "catalog: %s", fmt.Sprintf(format, args...))
}

func packageNotFound(name string) error {
	return errors.New(errors.ErrCodePackageNotFound, "package %q not found", name)
}

func versionNotFound(name, version string) error {
	return errors.New(errors.ErrCodeVersionNotFound, "package %q has no version %q", name, version)
}
