package catalog

import "context"

// Reader is the read-only query side of the catalog. Lookups of a package or
// version that does not exist return a PACKAGE_NOT_FOUND or VERSION_NOT_FOUND
// error; failures of the store itself are STORAGE_ERROR.
//
// Readers may be used concurrently with each other but not with an open
// ingestion transaction.
type Reader interface {
	// NewestVersion returns the version of the package's current record.
	NewestVersion(ctx context.Context, name string) (string, error)
	// DependenciesOf lists the distinct dependency names recorded for one
	// version of a package, in ingestion order. Unknown pairs yield an empty
	// list, not an error.
	DependenciesOf(ctx context.Context, name, version string) ([]string, error)
	// Field reads one attribute of a package version. An empty version means
	// the current one.
	Field(ctx context.Context, name, version string, f Field) (string, error)
	// PreviousVersions lists historical versions in manifest order.
	PreviousVersions(ctx context.Context, name string) ([]string, error)
	PackageCount(ctx context.Context) (int, error)

	Package(ctx context.Context, name string) (Package, error)
	PrevVersion(ctx context.Context, name, version string) (PrevVersion, error)
	// Names lists every package name in ingestion order.
	Names(ctx context.Context) ([]string, error)
	// Category lists the packages whose category field contains category as
	// one of its space-separated words.
	Category(ctx context.Context, category string) ([]string, error)
	ManifestInfo(ctx context.Context) (map[string]string, error)
	// LastRun returns the most recent ingestion, or a zero Run if the catalog
	// was never loaded.
	LastRun(ctx context.Context) (Run, error)
}

// Tx is an open write transaction. Nothing written through a Tx is visible
// to readers until Commit succeeds.
type Tx interface {
	// Reset removes every package, previous version, edge, and manifest
	// header field. Ingestion history is kept.
	Reset(ctx context.Context) error
	InsertPackage(ctx context.Context, p Package) error
	InsertPrevVersion(ctx context.Context, pv PrevVersion) error
	InsertEdge(ctx context.Context, e Edge) error
	// ClearEdges removes the whole dependency map.
	ClearEdges(ctx context.Context) error
	// DependencySources returns the raw dependency fields of every current
	// and previous version, current records first, each group in ingestion
	// order.
	DependencySources(ctx context.Context) ([]Source, error)
	SetManifestInfo(ctx context.Context, info map[string]string) error
	RecordRun(ctx context.Context, r Run) error

	// Commit makes the writes visible. If the commit fails, the transaction
	// is rolled back.
	Commit() error
	// Rollback discards the writes. It is a no-op after Commit.
	Rollback() error
}

// Store is a catalog that can be both queried and rebuilt.
type Store interface {
	Reader
	Begin(ctx context.Context) (Tx, error)
	Close() error
}

// Source is the raw dependency data of one package version.
type Source struct {
	Package  string
	Version  string
	Requires string // empty for previous versions
	Depends2 string
	Current  bool
}
