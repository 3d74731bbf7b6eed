package catalog

import (
	"context"
	stderrors "errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/AnClark/cygpm-prototype/pkg/errors"
	"github.com/AnClark/cygpm-prototype/pkg/setupini"
)

const testManifest = `release: cygwin
arch: x86_64
mirror-note: "Bob's mirror"
setup-timestamp: 1507130505

@ bash
sdesc: "The GNU Bourne Again SHell"
category: Base Shells
requires: coreutils libiconv2
version: 4.4.12-3
install: x86_64/release/bash/bash-4.4.12-3.tar.xz 1395032 1f1b0c
source: x86_64/release/bash/bash-4.4.12-3-src.tar.xz 9183064 e3a2b1
depends2: coreutils, libiconv2, cygwin
[prev]
version: 4.4.11-2
install: x86_64/release/bash/bash-4.4.11-2.tar.xz 1381276 9ad0aa
depends2: coreutils, cygwin
[prev]
version: 4.3.46-7
install: x86_64/release/bash/bash-4.3.46-7.tar.xz 1298380 77cc01

@ coreutils
sdesc: "GNU core utilities, Bob's edition"
category: Base Utils
requires: bash libiconv2
version: 8.26-2
install: x86_64/release/coreutils/coreutils-8.26-2.tar.xz 2830556 c0ffee

@ libiconv2
sdesc: "GNU character set conversion library"
category: Libs
version: 1.14-3
install: x86_64/release/libiconv/libiconv2-1.14-3.tar.xz 551234
`

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), MemoryDSN)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func loadTestCatalog(t *testing.T, manifest string) (*SQLiteStore, *LoadResult) {
	t.Helper()
	ctx := context.Background()
	s := openTestStore(t)
	l := NewLoader(s, nil)
	res, err := l.Load(ctx, strings.NewReader(manifest), "test")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := l.BuildDependencyMap(ctx); err != nil {
		t.Fatalf("BuildDependencyMap: %v", err)
	}
	return s, res
}

func TestLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, res := loadTestCatalog(t, testManifest)

	if res.Packages != 3 {
		t.Errorf("Packages = %d, want 3", res.Packages)
	}
	if res.PrevVersions != 2 {
		t.Errorf("PrevVersions = %d, want 2", res.PrevVersions)
	}
	n, err := s.PackageCount(ctx)
	if err != nil || n != 3 {
		t.Errorf("PackageCount = %d, %v", n, err)
	}
	names, err := s.Names(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"bash", "coreutils", "libiconv2"}; !slices.Equal(names, want) {
		t.Errorf("Names = %v, want %v", names, want)
	}
	if res.RunID == "" {
		t.Error("RunID is empty")
	}
}

func TestLoadHeaderAndRun(t *testing.T) {
	ctx := context.Background()
	s, res := loadTestCatalog(t, testManifest)

	info, err := s.ManifestInfo(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if info["release"] != "cygwin" || info["arch"] != "x86_64" || info["setup-timestamp"] != "1507130505" {
		t.Errorf("ManifestInfo = %v", info)
	}
	if got := info["mirror-note"]; got != "Bob's mirror" {
		t.Errorf("mirror-note = %q, want %q", got, "Bob's mirror")
	}
	if got := res.Header["mirror-note"]; got != "Bob's mirror" {
		t.Errorf("LoadResult.Header mirror-note = %q", got)
	}

	run, err := s.LastRun(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if run.ID != res.RunID || run.Source != "test" || run.Packages != 3 || run.PrevVersions != 2 {
		t.Errorf("LastRun = %+v", run)
	}
	if run.LoadedAt.IsZero() {
		t.Error("LoadedAt is zero")
	}
}

func TestLoadQuoteEscaping(t *testing.T) {
	ctx := context.Background()
	s, _ := loadTestCatalog(t, testManifest)

	got, err := s.Field(ctx, "coreutils", "", FieldShortDesc)
	if err != nil {
		t.Fatal(err)
	}
	if want := "GNU core utilities, Bob's edition"; got != want {
		t.Errorf("sdesc = %q, want %q", got, want)
	}
}

func TestLoadMultiVersion(t *testing.T) {
	ctx := context.Background()
	s, _ := loadTestCatalog(t, testManifest)

	prevs, err := s.PreviousVersions(ctx, "bash")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"4.4.11-2", "4.3.46-7"}; !slices.Equal(prevs, want) {
		t.Errorf("PreviousVersions = %v, want %v", prevs, want)
	}

	for _, v := range prevs {
		pv, err := s.PrevVersion(ctx, "bash", v)
		if err != nil {
			t.Fatalf("PrevVersion(%s): %v", v, err)
		}
		if pv.Version != v || !strings.Contains(pv.Install.Path, v) {
			t.Errorf("PrevVersion(%s) = %+v", v, pv)
		}
	}

	none, err := s.PreviousVersions(ctx, "coreutils")
	if err != nil || len(none) != 0 {
		t.Errorf("coreutils PreviousVersions = %v, %v", none, err)
	}
}

func TestLoadArtifactSplit(t *testing.T) {
	ctx := context.Background()
	s, res := loadTestCatalog(t, testManifest)

	p, err := s.Package(ctx, "bash")
	if err != nil {
		t.Fatal(err)
	}
	want := Artifact{Path: "x86_64/release/bash/bash-4.4.12-3.tar.xz", Size: "1395032", SHA512: "1f1b0c"}
	if p.Install != want {
		t.Errorf("Install = %+v, want %+v", p.Install, want)
	}
	if got := p.Install.Raw(); got != "x86_64/release/bash/bash-4.4.12-3.tar.xz 1395032 1f1b0c" {
		t.Errorf("Install.Raw = %q", got)
	}

	// libiconv2 has no checksum: the hash column stays empty.
	sha, err := s.Field(ctx, "libiconv2", "", FieldInstallSHA512)
	if err != nil || sha != "" {
		t.Errorf("libiconv2 sha = %q, %v", sha, err)
	}
	size, err := s.Field(ctx, "libiconv2", "", FieldInstallSize)
	if err != nil || size != "551234" {
		t.Errorf("libiconv2 size = %q, %v", size, err)
	}

	var malformed int
	for _, a := range res.Anomalies {
		if a.Kind == setupini.AnomalyMalformedArtifact && a.Package == "libiconv2" {
			malformed++
		}
	}
	if malformed != 1 {
		t.Errorf("malformed artifact anomalies = %d, want 1 (%v)", malformed, res.Anomalies)
	}
}

func TestLoadOrphanPrev(t *testing.T) {
	ctx := context.Background()
	manifest := "[prev]\nversion: 0.1\ninstall: x/a-0.1.tar.xz 1 aa\n\n" + testManifest
	s, res := loadTestCatalog(t, manifest)

	var orphans []setupini.Anomaly
	for _, a := range res.Anomalies {
		if a.Kind == setupini.AnomalyOrphanPrev {
			orphans = append(orphans, a)
		}
	}
	if len(orphans) != 1 || orphans[0].String() != "Parse error: Orphan [prev] at line 1" {
		t.Errorf("orphans = %v", orphans)
	}
	if res.PrevVersions != 2 {
		t.Errorf("PrevVersions = %d, want 2", res.PrevVersions)
	}
	if n, _ := s.PackageCount(ctx); n != 3 {
		t.Errorf("PackageCount = %d, want 3", n)
	}
}

func TestLoadDuplicateFirstWins(t *testing.T) {
	ctx := context.Background()
	manifest := testManifest + `
@ bash
version: 5.0.0-1
install: x86_64/release/bash/bash-5.0.0-1.tar.xz 1 aa
[prev]
version: 4.0
install: x86_64/release/bash/bash-4.0.tar.xz 1 bb
`
	s, res := loadTestCatalog(t, manifest)

	if res.Packages != 3 {
		t.Errorf("Packages = %d, want 3", res.Packages)
	}
	v, err := s.NewestVersion(ctx, "bash")
	if err != nil || v != "4.4.12-3" {
		t.Errorf("NewestVersion = %q, %v; want first definition", v, err)
	}
	if _, err := s.PrevVersion(ctx, "bash", "4.0"); !errors.Is(err, errors.ErrCodeVersionNotFound) {
		t.Errorf("prev of duplicate block was stored: %v", err)
	}

	var dups int
	for _, a := range res.Anomalies {
		if a.Kind == setupini.AnomalyDuplicatePackage {
			dups++
			if a.Package != "bash" || !strings.Contains(a.Detail, "line 6") {
				t.Errorf("duplicate anomaly = %+v", a)
			}
		}
	}
	if dups != 1 {
		t.Errorf("duplicate anomalies = %d, want 1", dups)
	}
}

func TestLoadReplacesCatalog(t *testing.T) {
	ctx := context.Background()
	s, _ := loadTestCatalog(t, testManifest)

	l := NewLoader(s, nil)
	if _, err := l.Load(ctx, strings.NewReader("@ only\nversion: 1\ninstall: p 1 c\n"), "second"); err != nil {
		t.Fatal(err)
	}
	names, _ := s.Names(ctx)
	if !slices.Equal(names, []string{"only"}) {
		t.Errorf("Names after reload = %v", names)
	}
	if _, err := s.Package(ctx, "bash"); !errors.Is(err, errors.ErrCodePackageNotFound) {
		t.Errorf("bash survived reload: %v", err)
	}
	run, _ := s.LastRun(ctx)
	if run.Source != "second" {
		t.Errorf("LastRun.Source = %q", run.Source)
	}
}

// failingStore hands out transactions that fail on the nth package insert
// or, with failEdgeAt, on the nth edge insert.
type failingStore struct {
	*SQLiteStore
	failAt     int
	failEdgeAt int
}

func (f *failingStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := f.SQLiteStore.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &failingTx{Tx: tx, failAt: f.failAt, failEdgeAt: f.failEdgeAt}, nil
}

type failingTx struct {
	Tx
	failAt     int
	failEdgeAt int
	count      int
	edges      int
}

var errDiskFull = stderrors.New("disk full")

func (f *failingTx) InsertPackage(ctx context.Context, p Package) error {
	f.count++
	if f.count == f.failAt {
		return errors.Wrap(errors.ErrCodeStorage, errDiskFull, "insert package %q", p.Name)
	}
	return f.Tx.InsertPackage(ctx, p)
}

func (f *failingTx) InsertEdge(ctx context.Context, e Edge) error {
	f.edges++
	if f.edges == f.failEdgeAt {
		return errors.Wrap(errors.ErrCodeStorage, errDiskFull, "insert edge %s -> %s", e.Package, e.DependsOn)
	}
	return f.Tx.InsertEdge(ctx, e)
}

func TestLoadRollsBackOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	s, _ := loadTestCatalog(t, testManifest)

	l := NewLoader(&failingStore{SQLiteStore: s, failAt: 2}, nil)
	_, err := l.Load(ctx, strings.NewReader("@ x\nversion: 1\ninstall: p 1 c\n@ y\nversion: 1\ninstall: p 1 c\n"), "broken")
	if !stderrors.Is(err, errDiskFull) || !errors.Is(err, errors.ErrCodeStorage) {
		t.Fatalf("err = %v, want storage failure", err)
	}

	names, err := s.Names(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"bash", "coreutils", "libiconv2"}; !slices.Equal(names, want) {
		t.Errorf("catalog after failed load = %v, want previous contents %v", names, want)
	}
	run, _ := s.LastRun(ctx)
	if run.Source != "test" {
		t.Errorf("failed load recorded a run: %+v", run)
	}
	deps, _ := s.DependenciesOf(ctx, "bash", "4.4.12-3")
	if len(deps) == 0 {
		t.Error("dependency map lost after failed load")
	}
}

func TestBuildDependencyMapRollsBackOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	s, _ := loadTestCatalog(t, testManifest)

	before, err := s.DependenciesOf(ctx, "bash", "4.4.12-3")
	if err != nil {
		t.Fatal(err)
	}

	// The failure lands after ClearEdges and a few successful inserts.
	l := NewLoader(&failingStore{SQLiteStore: s, failEdgeAt: 3}, nil)
	n, err := l.BuildDependencyMap(ctx)
	if !stderrors.Is(err, errDiskFull) || !errors.Is(err, errors.ErrCodeStorage) {
		t.Fatalf("err = %v, want storage failure", err)
	}
	if n != 0 {
		t.Errorf("edges = %d, want 0 on failure", n)
	}

	tests := []struct {
		pkg, version string
		want         []string
	}{
		{"bash", "4.4.12-3", before},
		{"bash", "4.4.11-2", []string{"coreutils", "cygwin"}},
		{"coreutils", "8.26-2", []string{"bash", "libiconv2"}},
	}
	for _, tt := range tests {
		got, err := s.DependenciesOf(ctx, tt.pkg, tt.version)
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("DependenciesOf(%s, %s) after failed rebuild = %v, want %v", tt.pkg, tt.version, got, tt.want)
		}
	}
}

func TestBuildDependencyMap(t *testing.T) {
	ctx := context.Background()
	s, _ := loadTestCatalog(t, testManifest)

	tests := []struct {
		pkg, version string
		want         []string
	}{
		{"bash", "4.4.12-3", []string{"coreutils", "libiconv2", "cygwin"}},
		{"bash", "4.4.11-2", []string{"coreutils", "cygwin"}},
		{"bash", "4.3.46-7", []string{}},
		{"coreutils", "8.26-2", []string{"bash", "libiconv2"}},
		{"missing", "1", []string{}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s@%s", tt.pkg, tt.version), func(t *testing.T) {
			got, err := s.DependenciesOf(ctx, tt.pkg, tt.version)
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("DependenciesOf = %v, want %v", got, tt.want)
			}
		})
	}

	// Rebuilding is idempotent.
	l := NewLoader(s, nil)
	n1, err := l.BuildDependencyMap(ctx)
	if err != nil {
		t.Fatal(err)
	}
	n2, err := l.BuildDependencyMap(ctx)
	if err != nil || n1 != n2 {
		t.Errorf("rebuild edges = %d then %d (%v)", n1, n2, err)
	}
}

func TestFieldLookups(t *testing.T) {
	ctx := context.Background()
	s, _ := loadTestCatalog(t, testManifest)

	tests := []struct {
		name     string
		pkg      string
		version  string
		field    Field
		want     string
		wantCode errors.Code
	}{
		{"current by empty version", "bash", "", FieldVersion, "4.4.12-3", ""},
		{"current by version", "bash", "4.4.12-3", FieldCategory, "Base Shells", ""},
		{"previous install", "bash", "4.4.11-2", FieldInstallSize, "1381276", ""},
		{"previous depends2", "bash", "4.4.11-2", FieldDepends2, "coreutils, cygwin", ""},
		{"previous sdesc", "bash", "4.4.11-2", FieldShortDesc, "", errors.ErrCodeFieldNotApplicable},
		{"unknown version", "bash", "1.0", FieldVersion, "", errors.ErrCodeVersionNotFound},
		{"unknown package", "fish", "", FieldVersion, "", errors.ErrCodePackageNotFound},
		{"bad field", "bash", "", Field(99), "", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Field(ctx, tt.pkg, tt.version, tt.field)
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Fatalf("err = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Field = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLookupMisses(t *testing.T) {
	ctx := context.Background()
	s, _ := loadTestCatalog(t, testManifest)

	if _, err := s.NewestVersion(ctx, "fish"); !errors.Is(err, errors.ErrCodePackageNotFound) {
		t.Errorf("NewestVersion err = %v", err)
	}
	if _, err := s.Package(ctx, "fish"); !errors.IsNotFound(err) {
		t.Errorf("Package err = %v", err)
	}
	if _, err := s.PreviousVersions(ctx, "fish"); !errors.IsNotFound(err) {
		t.Errorf("PreviousVersions err = %v", err)
	}
	if _, err := s.PrevVersion(ctx, "bash", "0.0"); !errors.Is(err, errors.ErrCodeVersionNotFound) {
		t.Errorf("PrevVersion err = %v", err)
	}
}

func TestCategory(t *testing.T) {
	ctx := context.Background()
	s, _ := loadTestCatalog(t, testManifest)

	got, err := s.Category(ctx, "base")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"bash", "coreutils"}; !slices.Equal(got, want) {
		t.Errorf("Category(base) = %v, want %v", got, want)
	}
	if got, _ := s.Category(ctx, "Games"); len(got) != 0 {
		t.Errorf("Category(Games) = %v", got)
	}
}

func TestLastRunEmpty(t *testing.T) {
	s := openTestStore(t)
	run, err := s.LastRun(context.Background())
	if err != nil || run.ID != "" {
		t.Errorf("LastRun on empty catalog = %+v, %v", run, err)
	}
}

func TestSearchStore(t *testing.T) {
	s, _ := loadTestCatalog(t, testManifest)
	got, err := SearchStore(context.Background(), s, "core", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 || got[0].Name != "coreutils" {
		t.Errorf("SearchStore = %+v", got)
	}
}
