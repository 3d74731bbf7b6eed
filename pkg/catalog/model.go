package catalog

import (
	"strconv"
	"strings"
	"time"

	"github.com/AnClark/cygpm-prototype/pkg/errors"
	"github.com/AnClark/cygpm-prototype/pkg/setupini"
)

// Artifact is a downloadable archive: its mirror-relative path, its size in
// bytes, and its SHA-512 checksum. All three are kept as the manifest spells
// them.
type Artifact struct {
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
	Size   string `json:"size,omitempty" yaml:"size,omitempty"`
	SHA512 string `json:"sha512,omitempty" yaml:"sha512,omitempty"`
}

// SplitArtifact decomposes a raw "path size checksum" string. Missing
// trailing fields are left empty and fields past the third are ignored; use
// [WellFormedArtifact] to detect either case.
func SplitArtifact(raw string) Artifact {
	var a Artifact
	f := strings.Fields(raw)
	if len(f) > 0 {
		a.Path = f[0]
	}
	if len(f) > 1 {
		a.Size = f[1]
	}
	if len(f) > 2 {
		a.SHA512 = f[2]
	}
	return a
}

// WellFormedArtifact reports whether raw has exactly three fields.
func WellFormedArtifact(raw string) bool {
	return len(strings.Fields(raw)) == 3
}

// Raw rebuilds the manifest form of the artifact.
func (a Artifact) Raw() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{a.Path, a.Size, a.SHA512} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// IsZero reports whether the artifact is absent.
func (a Artifact) IsZero() bool {
	return a == Artifact{}
}

// Bytes parses Size. It returns false when the size is missing or not a
// non-negative integer.
func (a Artifact) Bytes() (int64, bool) {
	n, err := strconv.ParseInt(a.Size, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Package is the current version of a package.
type Package struct {
	Name      string   `json:"name" yaml:"name"`
	ShortDesc string   `json:"sdesc,omitempty" yaml:"sdesc,omitempty"`
	LongDesc  string   `json:"ldesc,omitempty" yaml:"ldesc,omitempty"`
	Category  string   `json:"category,omitempty" yaml:"category,omitempty"`
	Requires  string   `json:"requires,omitempty" yaml:"requires,omitempty"`
	Version   string   `json:"version" yaml:"version"`
	Install   Artifact `json:"install" yaml:"install"`
	Source    Artifact `json:"source,omitzero" yaml:"source,omitempty"`
	Depends2  string   `json:"depends2,omitempty" yaml:"depends2,omitempty"`
}

// PrevVersion is a historical version of a package.
type PrevVersion struct {
	Name     string   `json:"name" yaml:"name"`
	Version  string   `json:"version" yaml:"version"`
	Install  Artifact `json:"install" yaml:"install"`
	Source   Artifact `json:"source,omitzero" yaml:"source,omitempty"`
	Depends2 string   `json:"depends2,omitempty" yaml:"depends2,omitempty"`
}

// PackageFromRecord converts a parsed record, undoing the parser's quote
// escaping. Names come from headers, which the parser does not escape.
func PackageFromRecord(r setupini.PackageRecord) Package {
	u := setupini.UnescapeQuotes
	return Package{
		Name:      r.Name,
		ShortDesc: u(r.ShortDesc),
		LongDesc:  u(r.LongDesc),
		Category:  u(r.Category),
		Requires:  u(r.RequiresRaw),
		Version:   u(r.Version),
		Install:   SplitArtifact(u(r.InstallRaw)),
		Source:    SplitArtifact(u(r.SourceRaw)),
		Depends2:  u(r.Depends2Raw),
	}
}

// PrevVersionFromRecord is the previous-version counterpart of PackageFromRecord.
func PrevVersionFromRecord(r setupini.PrevVersionRecord) PrevVersion {
	u := setupini.UnescapeQuotes
	return PrevVersion{
		Name:     r.Name,
		Version:  u(r.Version),
		Install:  SplitArtifact(u(r.InstallRaw)),
		Source:   SplitArtifact(u(r.SourceRaw)),
		Depends2: u(r.Depends2Raw),
	}
}

// Edge is one row of the dependency map: version Version of Package depends
// on DependsOn. DependsOn need not name a package in the catalog.
type Edge struct {
	Package   string `json:"package" yaml:"package"`
	Version   string `json:"version" yaml:"version"`
	DependsOn string `json:"depends_on" yaml:"depends_on"`
}

// Run describes one successful ingestion.
type Run struct {
	ID           string    `json:"id" yaml:"id"`
	Source       string    `json:"source" yaml:"source"`
	LoadedAt     time.Time `json:"loaded_at" yaml:"loaded_at"`
	Packages     int       `json:"packages" yaml:"packages"`
	PrevVersions int       `json:"prev_versions" yaml:"prev_versions"`
	Anomalies    int       `json:"anomalies" yaml:"anomalies"`
}

// Field names a single queryable attribute of a package version.
type Field int

const (
	FieldShortDesc Field = iota
	FieldLongDesc
	FieldCategory
	FieldRequires
	FieldVersion
	FieldInstallPath
	FieldInstallSize
	FieldInstallSHA512
	FieldSourcePath
	FieldSourceSize
	FieldSourceSHA512
	FieldDepends2
)

var fieldNames = [...]string{
	FieldShortDesc:     "sdesc",
	FieldLongDesc:      "ldesc",
	FieldCategory:      "category",
	FieldRequires:      "requires",
	FieldVersion:       "version",
	FieldInstallPath:   "install_path",
	FieldInstallSize:   "install_size",
	FieldInstallSHA512: "install_sha512",
	FieldSourcePath:    "source_path",
	FieldSourceSize:    "source_size",
	FieldSourceSHA512:  "source_sha512",
	FieldDepends2:      "depends2",
}

func (f Field) String() string {
	if f >= 0 && int(f) < len(fieldNames) {
		return fieldNames[f]
	}
	return "Field(" + strconv.Itoa(int(f)) + ")"
}

// ParseField looks a field up by its String form.
func ParseField(s string) (Field, error) {
	for i, name := range fieldNames {
		if name == s {
			return Field(i), nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown field %q", s)
}

// FieldNames lists the String form of every field.
func FieldNames() []string {
	return append([]string(nil), fieldNames[:]...)
}

// Historical reports whether previous versions carry the field.
func (f Field) Historical() bool {
	switch f {
	case FieldShortDesc, FieldLongDesc, FieldCategory, FieldRequires:
		return false
	}
	return true
}

// column is the SQL column backing the field; it is the same in the
// packages and prev_versions tables.
func (f Field) column() string { return f.String() }

// Get reads the field from a package.
func (p Package) Get(f Field) string {
	switch f {
	case FieldShortDesc:
		return p.ShortDesc
	case FieldLongDesc:
		return p.LongDesc
	case FieldCategory:
		return p.Category
	case FieldRequires:
		return p.Requires
	case FieldVersion:
		return p.Version
	case FieldDepends2:
		return p.Depends2
	}
	return artifactField(p.Install, p.Source, f)
}

// Get reads the field from a previous version. Fields that are not
// [Field.Historical] read as empty.
func (pv PrevVersion) Get(f Field) string {
	switch f {
	case FieldVersion:
		return pv.Version
	case FieldDepends2:
		return pv.Depends2
	}
	return artifactField(pv.Install, pv.Source, f)
}

func artifactField(install, source Artifact, f Field) string {
	switch f {
	case FieldInstallPath:
		return install.Path
	case FieldInstallSize:
		return install.Size
	case FieldInstallSHA512:
		return install.SHA512
	case FieldSourcePath:
		return source.Path
	case FieldSourceSize:
		return source.Size
	case FieldSourceSHA512:
		return source.SHA512
	}
	return ""
}
