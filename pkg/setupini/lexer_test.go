package setupini

import (
	"errors"
	"io"
	"slices"
	"strings"
	"testing"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func texts(toks []Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantKinds []Kind
		wantTexts []string
	}{
		{
			name:      "package header",
			input:     "@ bash\n",
			wantKinds: []Kind{KindPackageName},
			wantTexts: []string{"bash"},
		},
		{
			name:      "key with words",
			input:     "requires: coreutils libiconv2\n",
			wantKinds: []Kind{KindYAMLKey, KindWord, KindWord},
			wantTexts: []string{"requires:", "coreutils", "libiconv2"},
		},
		{
			name:      "inline quote",
			input:     `sdesc: "GNU shell"` + "\n",
			wantKinds: []Kind{KindYAMLKey, KindQuotationMark, KindWord, KindWord, KindQuotationMark},
			wantTexts: []string{"sdesc:", `"`, "GNU", "shell", `"`},
		},
		{
			name:      "multiline quote",
			input:     "ldesc: \"first line\nsecond line\"\nversion: 1.0\n",
			wantKinds: []Kind{KindYAMLKey, KindMultilineString, KindYAMLKey, KindWord},
			wantTexts: []string{"ldesc:", "first line\nsecond line", "version:", "1.0"},
		},
		{
			name:      "prev marker",
			input:     "[prev]\nversion: 0.9\n",
			wantKinds: []Kind{KindPrevVersionMark, KindYAMLKey, KindWord},
			wantTexts: []string{"[prev]", "version:", "0.9"},
		},
		{
			name:      "other markers dropped",
			input:     "[test]\nversion: 2.0\n",
			wantKinds: []Kind{KindYAMLKey, KindWord},
			wantTexts: []string{"version:", "2.0"},
		},
		{
			name:      "comment skipped",
			input:     "# This file is automatically generated\nrelease: cygwin\n",
			wantKinds: []Kind{KindYAMLKey, KindWord},
			wantTexts: []string{"release:", "cygwin"},
		},
		{
			name:      "url is not a key",
			input:     "homepage: https://example.org/x\n",
			wantKinds: []Kind{KindYAMLKey, KindWord},
			wantTexts: []string{"homepage:", "https://example.org/x"},
		},
		{
			name:      "crlf line endings",
			input:     "@ zlib\r\nversion: 1.2\r\n",
			wantKinds: []Kind{KindPackageName, KindYAMLKey, KindWord},
			wantTexts: []string{"zlib", "version:", "1.2"},
		},
		{
			name:      "blank lines",
			input:     "\n\n   \n",
			wantKinds: nil,
			wantTexts: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Tokenize(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Tokenize: %v", err)
			}
			if got := kinds(toks); !slices.Equal(got, tt.wantKinds) {
				t.Errorf("kinds = %v, want %v", got, tt.wantKinds)
			}
			if got := texts(toks); !slices.Equal(got, tt.wantTexts) {
				t.Errorf("texts = %q, want %q", got, tt.wantTexts)
			}
		})
	}
}

func TestLexerLineNumbers(t *testing.T) {
	input := "@ a\nldesc: \"one\ntwo\" trailing\nversion: 3\n"
	toks, err := Tokenize(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	want := []int{1, 2, 2, 3, 4, 4}
	var got []int
	for _, tok := range toks {
		got = append(got, tok.Line)
	}
	if !slices.Equal(got, want) {
		t.Errorf("lines = %v, want %v (tokens %v)", got, want, toks)
	}
}

func TestLexerEndRepeats(t *testing.T) {
	l := NewLexer(strings.NewReader("@ a\n"))
	if tok := l.Next(); tok.Kind != KindPackageName {
		t.Fatalf("first token = %v", tok)
	}
	for range 3 {
		if tok := l.Next(); tok.Kind != KindEnd {
			t.Fatalf("token after input = %v, want End", tok)
		}
	}
}

func TestLexerReset(t *testing.T) {
	l := NewLexer(strings.NewReader("@ first\n"))
	_ = l.Next()
	l.Reset(strings.NewReader("\n@ second\n"))

	tok := l.Next()
	if tok.Kind != KindPackageName || tok.Text != "second" || tok.Line != 2 {
		t.Errorf("after Reset got %v, want PackageName(\"second\")@2", tok)
	}
}

func TestLexerUnterminatedQuote(t *testing.T) {
	toks, err := Tokenize(strings.NewReader("ldesc: \"never\nclosed\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(toks) != 2 || toks[1].Kind != KindMultilineString {
		t.Fatalf("tokens = %v", toks)
	}
	if toks[1].Text != "never\nclosed" {
		t.Errorf("text = %q", toks[1].Text)
	}
}

type failingReader struct{ data string }

func (r *failingReader) Read(p []byte) (int, error) {
	if r.data == "" {
		return 0, errors.New("disk on fire")
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestLexerReadError(t *testing.T) {
	toks, err := Tokenize(&failingReader{data: "@ a\nversion: 1\n"})
	if err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("err = %v, want read error", err)
	}
	if len(toks) != 3 {
		t.Errorf("got %d tokens before error, want 3", len(toks))
	}
}

func TestKindString(t *testing.T) {
	if got := KindYAMLKey.String(); got != "YamlKey" {
		t.Errorf("KindYAMLKey = %q", got)
	}
	if got := Kind(99).String(); got != "Kind(99)" {
		t.Errorf("Kind(99) = %q", got)
	}
}
