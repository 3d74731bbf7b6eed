package setupini

import "fmt"

// Kind identifies the lexical class of a [Token].
type Kind int

const (
	// KindEnd marks the end of the token stream. It is returned repeatedly
	// once the input is exhausted.
	KindEnd Kind = iota
	// KindPackageName is a "@ name" package header at the start of a line.
	// Token.Text holds the bare name.
	KindPackageName
	// KindYAMLKey is a "key:" at statement position. Token.Text keeps the
	// trailing colon.
	KindYAMLKey
	// KindQuotationMark opens or closes a quoted value that fits on one line.
	KindQuotationMark
	// KindPrevVersionMark is the literal "[prev]" section marker.
	KindPrevVersionMark
	// KindMultilineString is a quoted value spanning several lines. Token.Text
	// holds the content between the quotes verbatim.
	KindMultilineString
	// KindWord is any other run of non-blank, non-quote characters.
	KindWord
)

var kindNames = map[Kind]string{
	KindEnd:             "End",
	KindPackageName:     "PackageName",
	KindYAMLKey:         "YamlKey",
	KindQuotationMark:   "QuotationMark",
	KindPrevVersionMark: "PrevVersionMark",
	KindMultilineString: "MultilineString",
	KindWord:            "Word",
}

// String returns the kind's name.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a single lexical unit of a setup.ini manifest. Tokens are produced
// and consumed in order and never stored.
type Token struct {
	Kind Kind
	Text string
	Line int // 1-based line the token starts on
}

// String renders the token for debugging, e.g. `Word("bash")@12`.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", t.Kind, t.Text, t.Line)
}
