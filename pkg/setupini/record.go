package setupini

import "strings"

// Section keys recognized in a package block. Matching is case-sensitive and
// includes the trailing colon.
const (
	KeyShortDesc = "sdesc:"
	KeyLongDesc  = "ldesc:"
	KeyCategory  = "category:"
	KeyRequires  = "requires:"
	KeyVersion   = "version:"
	KeyInstall   = "install:"
	KeySource    = "source:"
	KeyDepends2  = "depends2:"
)

// PackageRecord is the current version of a package as written in the
// manifest. Text fields hold section text with single quotes doubled (see
// [EscapeQuotes]); InstallRaw and SourceRaw hold the unsplit
// "path size checksum" triples.
type PackageRecord struct {
	Name        string
	ShortDesc   string
	LongDesc    string
	Category    string
	RequiresRaw string // space-separated package names (legacy field)
	Version     string
	InstallRaw  string
	SourceRaw   string
	Depends2Raw string // comma-separated package names
	Line        int    // line of the "@ name" header
}

// Valid reports whether the record carries the fields every package needs:
// a name and an install artifact.
func (p PackageRecord) Valid() bool {
	return p.Name != "" && p.InstallRaw != ""
}

// PrevVersionRecord is one "[prev]" block of a package.
type PrevVersionRecord struct {
	Name        string // owning package
	Version     string
	InstallRaw  string
	SourceRaw   string
	Depends2Raw string
	Line        int // line of the "[prev]" marker
}

// Group is a completed package together with its previous versions, in
// manifest order.
type Group struct {
	Package      PackageRecord
	PrevVersions []PrevVersionRecord
}

// withField assigns section text to the field named by key. Unknown keys
// leave the record untouched and report false.
func (p PackageRecord) withField(key, value string) (PackageRecord, bool) {
	switch key {
	case KeyShortDesc:
		p.ShortDesc = value
	case KeyLongDesc:
		p.LongDesc = value
	case KeyCategory:
		p.Category = value
	case KeyRequires:
		p.RequiresRaw = value
	case KeyVersion:
		p.Version = value
	case KeyInstall:
		p.InstallRaw = value
	case KeySource:
		p.SourceRaw = value
	case KeyDepends2:
		p.Depends2Raw = value
	default:
		return p, false
	}
	return p, true
}

// withField is the previous-version counterpart of PackageRecord.withField.
// Descriptive keys (sdesc, ldesc, category, requires) are meaningless for
// historical versions and are dropped.
func (p PrevVersionRecord) withField(key, value string) (PrevVersionRecord, bool) {
	switch key {
	case KeyVersion:
		p.Version = value
	case KeyInstall:
		p.InstallRaw = value
	case KeySource:
		p.SourceRaw = value
	case KeyDepends2:
		p.Depends2Raw = value
	default:
		return p, false
	}
	return p, true
}

// EscapeQuotes doubles every single quote in s, the literal form a store that
// delimits strings with single quotes expects.
func EscapeQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// UnescapeQuotes undoes one layer of [EscapeQuotes].
func UnescapeQuotes(s string) string {
	return strings.ReplaceAll(s, "''", "'")
}
