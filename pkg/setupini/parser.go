package setupini

import (
	"io"

	"github.com/AnClark/cygpm-prototype/pkg/errors"
)

// Result summarizes one pass over a manifest.
type Result struct {
	// Header holds the preamble fields (release, arch, setup-timestamp, ...)
	// keyed without the trailing colon.
	Header       map[string]string
	Packages     int
	PrevVersions int
	Anomalies    []Anomaly
}

// Parser drives the state machine over a [Lexer] and hands out completed
// package groups in manifest order.
type Parser struct {
	lex *Lexer
	m   machine

	// OnAnomaly, if set, is called for each anomaly as soon as it is found.
	OnAnomaly func(Anomaly)
}

// NewParser returns a Parser reading the manifest from r.
func NewParser(r io.Reader) *Parser {
	return &Parser{lex: NewLexer(r)}
}

// Reset re-points the parser at a new manifest and clears its state.
func (p *Parser) Reset(r io.Reader) {
	p.lex.Reset(r)
	p.m = machine{}
}

// Context reports the state the parser is in between tokens.
func (p *Parser) Context() Context { return p.m.Context() }

// Parse consumes the whole manifest, calling emit once per completed group.
// An error from emit stops parsing and is returned unchanged. A read error
// from the underlying reader is reported as INVALID_MANIFEST.
func (p *Parser) Parse(emit func(Group) error) (*Result, error) {
	res := &Result{Header: make(map[string]string)}
	for {
		tok := p.lex.Next()

		var eff effect
		p.m, eff = p.m.step(tok)

		for _, a := range eff.anomalies {
			res.Anomalies = append(res.Anomalies, a)
			if p.OnAnomaly != nil {
				p.OnAnomaly(a)
			}
		}
		if eff.header != nil {
			res.Header[eff.header.Key] = eff.header.Value
		}
		if eff.group != nil {
			res.Packages++
			res.PrevVersions += len(eff.group.PrevVersions)
			if err := emit(*eff.group); err != nil {
				return res, err
			}
		}

		if tok.Kind == KindEnd {
			break
		}
	}
	if err := p.lex.Err(); err != nil {
		return res, errors.Wrap(errors.ErrCodeInvalidManifest, err, "reading manifest at line %d", p.lex.Line())
	}
	return res, nil
}

// ParseAll parses r and returns every group in manifest order.
func ParseAll(r io.Reader) ([]Group, *Result, error) {
	var groups []Group
	res, err := NewParser(r).Parse(func(g Group) error {
		groups = append(groups, g)
		return nil
	})
	return groups, res, err
}
