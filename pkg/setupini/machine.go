package setupini

import (
	"slices"
	"strings"
)

// Context names the parser state: which record kind is being built and
// whether a section is open and accumulating text.
type Context int

const (
	ContextIdle Context = iota
	ContextPackage
	ContextPackageSection
	ContextPrevVersion
	ContextPrevVersionSection
)

var contextNames = [...]string{"Idle", "Package", "PackageSection", "PrevVersion", "PrevVersionSection"}

func (c Context) String() string {
	if int(c) < len(contextNames) {
		return contextNames[c]
	}
	return "Context(?)"
}

type mode int

const (
	modeIdle mode = iota
	modePackage
	modePrevVersion
)

// section is the last-seen key and the text gathered for it so far.
type section struct {
	open bool
	key  string
	text string
	line int
}

// HeaderField is a key/value pair from the manifest preamble, before the
// first package header.
type HeaderField struct {
	Key   string // without the trailing colon
	Value string
}

// effect is what a single transition asks the caller to do.
type effect struct {
	group     *Group
	header    *HeaderField
	anomalies []Anomaly
}

// machine is the parser state. It is a value type: step never mutates its
// receiver, so every transition can be exercised in isolation.
type machine struct {
	mode    mode
	sec     section
	pkg     PackageRecord
	prevs   []PrevVersionRecord // completed [prev] blocks of pkg
	prev    PrevVersionRecord   // open [prev] block, valid in modePrevVersion
	discard bool                // idle after an orphan marker; preamble capture is off
}

// Context reports the current parser state.
func (m machine) Context() Context {
	switch m.mode {
	case modePackage:
		if m.sec.open {
			return ContextPackageSection
		}
		return ContextPackage
	case modePrevVersion:
		if m.sec.open {
			return ContextPrevVersionSection
		}
		return ContextPrevVersion
	}
	return ContextIdle
}

// step applies one token and returns the next state with its side effects.
func (m machine) step(tok Token) (machine, effect) {
	var eff effect

	switch tok.Kind {
	case KindPackageName:
		m, eff = m.flush(eff)
		if m.mode != modeIdle {
			g := m.complete()
			eff.group = &g
		}
		return machine{
			mode: modePackage,
			pkg:  PackageRecord{Name: tok.Text, Line: tok.Line},
		}, eff

	case KindYAMLKey:
		m, eff = m.flush(eff)
		if m.mode == modeIdle && m.discard {
			return m, eff
		}
		m.sec = section{open: true, key: tok.Text, line: tok.Line}
		return m, eff

	case KindPrevVersionMark:
		m, eff = m.flush(eff)
		if m.mode == modeIdle {
			eff.anomalies = append(eff.anomalies, Anomaly{Kind: AnomalyOrphanPrev, Line: tok.Line})
			m.discard = true
			return m, eff
		}
		if m.mode == modePrevVersion {
			m.prevs = append(slices.Clip(m.prevs), m.prev)
		}
		m.mode = modePrevVersion
		m.prev = PrevVersionRecord{Name: m.pkg.Name, Line: tok.Line}
		return m, eff

	case KindWord:
		if m.sec.open {
			m.sec.text = appendWord(m.sec.text, EscapeQuotes(tok.Text))
		}
		return m, eff

	case KindMultilineString:
		if m.sec.open {
			m.sec.text = EscapeQuotes(tok.Text)
		}
		return m, eff

	case KindEnd:
		m, eff = m.flush(eff)
		if m.mode != modeIdle {
			g := m.complete()
			eff.group = &g
		}
		return machine{}, eff
	}

	// Quotation marks bracket inline text but carry no meaning of their own.
	return m, eff
}

// flush closes the open section and assigns its text to whichever record
// kind is active. In the preamble the text becomes a header field.
func (m machine) flush(eff effect) (machine, effect) {
	if !m.sec.open {
		return m, eff
	}
	sec := m.sec
	m.sec = section{}

	var ok bool
	switch m.mode {
	case modeIdle:
		eff.header = &HeaderField{Key: strings.TrimSuffix(sec.key, ":"), Value: sec.text}
		return m, eff
	case modePackage:
		m.pkg, ok = m.pkg.withField(sec.key, sec.text)
	case modePrevVersion:
		m.prev, ok = m.prev.withField(sec.key, sec.text)
	}
	if !ok {
		eff.anomalies = append(eff.anomalies, Anomaly{
			Kind:    AnomalyUnknownKey,
			Line:    sec.line,
			Package: m.pkg.Name,
			Detail:  sec.key,
		})
	}
	return m, eff
}

// complete returns the finished package with all of its [prev] blocks.
func (m machine) complete() Group {
	prevs := slices.Clip(m.prevs)
	if m.mode == modePrevVersion {
		prevs = append(prevs, m.prev)
	}
	return Group{Package: m.pkg, PrevVersions: prevs}
}

func appendWord(text, word string) string {
	if text == "" {
		return word
	}
	return text + " " + word
}
