package setupini

import "fmt"

// AnomalyKind classifies a non-fatal irregularity found while ingesting a
// manifest.
type AnomalyKind int

const (
	// AnomalyOrphanPrev is a "[prev]" marker with no package before it.
	AnomalyOrphanPrev AnomalyKind = iota
	// AnomalyUnknownKey is a section key the catalog has no field for.
	AnomalyUnknownKey
	// AnomalyDuplicatePackage is a second header for an already-seen name.
	AnomalyDuplicatePackage
	// AnomalyMissingInstall is a package or previous version with no install artifact.
	AnomalyMissingInstall
	// AnomalyMalformedArtifact is an install/source value that is not a
	// "path size checksum" triple.
	AnomalyMalformedArtifact
)

var anomalyNames = map[AnomalyKind]string{
	AnomalyOrphanPrev:        "orphan-prev",
	AnomalyUnknownKey:        "unknown-key",
	AnomalyDuplicatePackage:  "duplicate-package",
	AnomalyMissingInstall:    "missing-install",
	AnomalyMalformedArtifact: "malformed-artifact",
}

func (k AnomalyKind) String() string {
	if s, ok := anomalyNames[k]; ok {
		return s
	}
	return fmt.Sprintf("AnomalyKind(%d)", int(k))
}

// Anomaly is a reported, non-fatal manifest irregularity. Ingestion continues
// past every anomaly; the affected fields are left empty.
type Anomaly struct {
	Kind    AnomalyKind
	Line    int
	Package string // owning package, when known
	Detail  string // key name, artifact text, and so on
}

// String formats the anomaly for logs.
func (a Anomaly) String() string {
	switch a.Kind {
	case AnomalyOrphanPrev:
		return fmt.Sprintf("Parse error: Orphan [prev] at line %d", a.Line)
	case AnomalyUnknownKey:
		return fmt.Sprintf("Parse warning: unrecognized key %q in package %q at line %d", a.Detail, a.Package, a.Line)
	case AnomalyDuplicatePackage:
		return fmt.Sprintf("Parse error: duplicate package %q at line %d", a.Package, a.Line)
	case AnomalyMissingInstall:
		return fmt.Sprintf("Parse warning: package %q has no install artifact (line %d)", a.Package, a.Line)
	case AnomalyMalformedArtifact:
		return fmt.Sprintf("Parse warning: malformed artifact %q in package %q (line %d)", a.Detail, a.Package, a.Line)
	}
	return fmt.Sprintf("Parse warning: %s at line %d", a.Kind, a.Line)
}

// Severe reports whether the anomaly indicates lost or inconsistent data,
// as opposed to forward-compatible metadata the catalog simply ignores.
func (a Anomaly) Severe() bool {
	return a.Kind != AnomalyUnknownKey
}
