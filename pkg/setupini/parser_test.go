package setupini

import (
	"errors"
	"strings"
	"testing"

	cerrors "github.com/AnClark/cygpm-prototype/pkg/errors"
)

const sampleManifest = `# This file was automatically generated at 2017-10-04 15:21:45 UTC.
release: cygwin
arch: x86_64
setup-timestamp: 1507130505
setup-version: 2.884

@ bash
sdesc: "The GNU Bourne Again SHell"
ldesc: "Bash is an sh-compatible shell that incorporates
useful features from the Korn shell and C shell."
category: Base Shells
requires: coreutils libgcc1 libiconv2
version: 4.4.12-3
install: x86_64/release/bash/bash-4.4.12-3.tar.xz 1395032 1f1b0c
source: x86_64/release/bash/bash-4.4.12-3-src.tar.xz 9183064 e3a2b1
depends2: coreutils, libgcc1, libiconv2
[prev]
version: 4.4.11-2
install: x86_64/release/bash/bash-4.4.11-2.tar.xz 1381276 9ad0aa
depends2: coreutils,libiconv2
[prev]
version: 4.3.46-7
install: x86_64/release/bash/bash-4.3.46-7.tar.xz 1298380 77cc01

@ coreutils
sdesc: "GNU core utilities (includes fileutils, sh-utils and textutils)"
category: Base Utils
requires: bash libiconv2
version: 8.26-2
install: x86_64/release/coreutils/coreutils-8.26-2.tar.xz 2830556 c0ffee
message: coreutils "Please restart your shell"
`

func TestParseSample(t *testing.T) {
	groups, res, err := ParseAll(strings.NewReader(sampleManifest))
	if err != nil {
		t.Fatalf("ParseAll: %v", err)
	}

	if res.Packages != 2 || len(groups) != 2 {
		t.Fatalf("packages = %d (groups %d), want 2", res.Packages, len(groups))
	}
	if res.PrevVersions != 2 {
		t.Errorf("prev versions = %d, want 2", res.PrevVersions)
	}

	wantHeader := map[string]string{
		"release":         "cygwin",
		"arch":            "x86_64",
		"setup-timestamp": "1507130505",
		"setup-version":   "2.884",
	}
	for k, want := range wantHeader {
		if got := res.Header[k]; got != want {
			t.Errorf("header[%s] = %q, want %q", k, got, want)
		}
	}

	bash := groups[0].Package
	checks := []struct{ name, got, want string }{
		{"name", bash.Name, "bash"},
		{"sdesc", bash.ShortDesc, "The GNU Bourne Again SHell"},
		{"ldesc", bash.LongDesc, "Bash is an sh-compatible shell that incorporates\nuseful features from the Korn shell and C shell."},
		{"category", bash.Category, "Base Shells"},
		{"requires", bash.RequiresRaw, "coreutils libgcc1 libiconv2"},
		{"version", bash.Version, "4.4.12-3"},
		{"install", bash.InstallRaw, "x86_64/release/bash/bash-4.4.12-3.tar.xz 1395032 1f1b0c"},
		{"source", bash.SourceRaw, "x86_64/release/bash/bash-4.4.12-3-src.tar.xz 9183064 e3a2b1"},
		{"depends2", bash.Depends2Raw, "coreutils, libgcc1, libiconv2"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("bash %s = %q, want %q", c.name, c.got, c.want)
		}
	}

	prevs := groups[0].PrevVersions
	if len(prevs) != 2 {
		t.Fatalf("bash prev versions = %d, want 2", len(prevs))
	}
	if prevs[0].Version != "4.4.11-2" || prevs[0].Depends2Raw != "coreutils,libiconv2" {
		t.Errorf("prev[0] = %+v", prevs[0])
	}
	if prevs[1].Version != "4.3.46-7" || prevs[1].Name != "bash" || prevs[1].Line != 21 {
		t.Errorf("prev[1] = %+v", prevs[1])
	}

	if len(groups[1].PrevVersions) != 0 {
		t.Errorf("coreutils prev versions = %v", groups[1].PrevVersions)
	}

	if len(res.Anomalies) != 1 || res.Anomalies[0].Kind != AnomalyUnknownKey || res.Anomalies[0].Detail != "message:" {
		t.Errorf("anomalies = %v, want one unknown key", res.Anomalies)
	}
}

func TestParseOrphanPrevFirst(t *testing.T) {
	input := "[prev]\nversion: 0.1\ninstall: x/a-0.1.tar.xz 1 aa\n\n@ a\nversion: 1.0\ninstall: x/a-1.0.tar.xz 2 bb\n"

	var reported []Anomaly
	p := NewParser(strings.NewReader(input))
	p.OnAnomaly = func(a Anomaly) { reported = append(reported, a) }

	var groups []Group
	res, err := p.Parse(func(g Group) error {
		groups = append(groups, g)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(reported) != 1 || reported[0].String() != "Parse error: Orphan [prev] at line 1" {
		t.Errorf("reported = %v", reported)
	}
	if len(res.Header) != 0 {
		t.Errorf("orphan block leaked into header: %v", res.Header)
	}
	if res.PrevVersions != 0 {
		t.Errorf("prev versions = %d, want 0", res.PrevVersions)
	}
	if len(groups) != 1 || groups[0].Package.Version != "1.0" {
		t.Errorf("groups = %+v", groups)
	}
}

func TestParseEmitErrorStops(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	_, err := NewParser(strings.NewReader(sampleManifest)).Parse(func(Group) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("err = %v, want stop", err)
	}
	if calls != 1 {
		t.Errorf("emit called %d times, want 1", calls)
	}
}

func TestParseReadError(t *testing.T) {
	_, _, err := ParseAll(&failingReader{data: "@ a\nversion: 1\n"})
	if !cerrors.Is(err, cerrors.ErrCodeInvalidManifest) {
		t.Errorf("err = %v, want INVALID_MANIFEST", err)
	}
}

func TestParserReset(t *testing.T) {
	p := NewParser(strings.NewReader("@ a\nversion: 1\n"))
	p.OnAnomaly = func(Anomaly) {}
	// Leave the parser mid-package.
	_ = p.lex.Next()
	p.m, _ = p.m.step(Token{Kind: KindPackageName, Text: "a", Line: 1})

	p.Reset(strings.NewReader("@ b\n"))
	if p.Context() != ContextIdle {
		t.Fatalf("context after Reset = %v", p.Context())
	}
	var names []string
	if _, err := p.Parse(func(g Group) error {
		names = append(names, g.Package.Name)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "b" {
		t.Errorf("names = %v, want [b]", names)
	}
}

func TestPackageRecordValid(t *testing.T) {
	if (PackageRecord{Name: "a"}).Valid() {
		t.Error("record without install reported valid")
	}
	if !(PackageRecord{Name: "a", InstallRaw: "p 1 c"}).Valid() {
		t.Error("complete record reported invalid")
	}
}

func TestQuoteRoundTrip(t *testing.T) {
	for _, s := range []string{"", "plain", "it's", "''", "a'b'c"} {
		if got := UnescapeQuotes(EscapeQuotes(s)); got != s {
			t.Errorf("round trip %q = %q", s, got)
		}
	}
}
