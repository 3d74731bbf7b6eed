package setupini

import (
	"bufio"
	"io"
	"iter"
	"strings"
)

const (
	headerPrefix   = '@'
	commentPrefix  = '#'
	quote          = '"'
	prevMarkerText = "[prev]"
)

// Lexer scans setup.ini text into [Token]s on demand.
//
// The grammar is permissive: the format has no formal definition
// and real mirrors carry irregularities, so nothing the Lexer reads is ever
// rejected. Characters it cannot classify end up inside the nearest Word.
// Comment lines and section markers other than "[prev]" (such as "[test]")
// are dropped.
//
// A Lexer is not safe for concurrent use.
type Lexer struct {
	r       *bufio.Reader
	line    int
	pending []Token
	done    bool
	err     error
}

// NewLexer returns a Lexer reading from r.
func NewLexer(r io.Reader) *Lexer {
	l := &Lexer{}
	l.Reset(r)
	return l
}

// Reset re-points the Lexer at a new input and rewinds the line counter.
func (l *Lexer) Reset(r io.Reader) {
	l.r = bufio.NewReader(r)
	l.line = 0
	l.pending = l.pending[:0]
	l.done = false
	l.err = nil
}

// Err returns the first non-EOF read error, if any. A read error ends the
// token stream early; the tokens produced up to that point are still valid.
func (l *Lexer) Err() error { return l.err }

// Line returns the number of the last line read.
func (l *Lexer) Line() int { return l.line }

// Next returns the next token. Once the input is exhausted it keeps returning
// a KindEnd token.
func (l *Lexer) Next() Token {
	for len(l.pending) == 0 {
		if l.done {
			return Token{Kind: KindEnd, Line: l.line}
		}
		text, ok := l.readLine()
		if !ok {
			l.done = true
			continue
		}
		l.pending = l.pending[:0]
		l.scanLine(text)
	}
	t := l.pending[0]
	l.pending = l.pending[1:]
	return t
}

// All returns the remaining tokens as a lazy sequence, stopping before KindEnd.
func (l *Lexer) All() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for {
			t := l.Next()
			if t.Kind == KindEnd || !yield(t) {
				return
			}
		}
	}
}

// Tokenize scans all of r and returns the tokens, excluding the final KindEnd.
func Tokenize(r io.Reader) ([]Token, error) {
	l := NewLexer(r)
	var out []Token
	for t := range l.All() {
		out = append(out, t)
	}
	return out, l.Err()
}

func (l *Lexer) readLine() (string, bool) {
	s, err := l.r.ReadString('\n')
	if err != nil {
		if err != io.EOF {
			l.err = err
			return "", false
		}
		if s == "" {
			return "", false
		}
	}
	l.line++
	return strings.TrimRight(s, "\r\n"), true
}

func (l *Lexer) emit(kind Kind, text string, line int) {
	l.pending = append(l.pending, Token{Kind: kind, Text: text, Line: line})
}

// scanLine handles the statement-position forms (header, comment, marker,
// key) and hands the remainder of the line to scanValues.
func (l *Lexer) scanLine(text string) {
	line := l.line
	i := skipBlank(text, 0)
	if i == len(text) {
		return
	}

	switch text[i] {
	case commentPrefix:
		return
	case headerPrefix:
		if fields := strings.Fields(text[i+1:]); len(fields) > 0 {
			l.emit(KindPackageName, fields[0], line)
			return
		}
	case '[':
		if end, ok := sectionMarkerEnd(text, i); ok {
			if text[i:end] == prevMarkerText {
				l.emit(KindPrevVersionMark, prevMarkerText, line)
			}
			i = end
		}
	default:
		if end, ok := yamlKeyEnd(text, i); ok {
			l.emit(KindYAMLKey, text[i:end], line)
			i = end
		}
	}

	l.scanValues(text, i, line)
}

// scanValues splits value text into words and quoted runs. A quote with no
// closing partner on the same line starts a multi-line string, which may pull
// further lines from the reader.
func (l *Lexer) scanValues(text string, i, line int) {
	for {
		i = skipBlank(text, i)
		if i >= len(text) {
			return
		}

		if text[i] == quote {
			body := text[i+1:]
			if end := strings.IndexByte(body, quote); end >= 0 {
				l.emit(KindQuotationMark, `"`, line)
				l.emitWords(body[:end], line)
				l.emit(KindQuotationMark, `"`, line)
				i += end + 2
				continue
			}
			value, rest := l.readQuoted(body)
			l.emit(KindMultilineString, value, line)
			text, i, line = rest, 0, l.line
			continue
		}

		j := i
		for j < len(text) && !isBlank(text[j]) && text[j] != quote {
			j++
		}
		l.emit(KindWord, text[i:j], line)
		i = j
	}
}

func (l *Lexer) emitWords(s string, line int) {
	for _, w := range strings.Fields(s) {
		l.emit(KindWord, w, line)
	}
}

// readQuoted collects lines until one contains the closing quote. It returns
// the quoted content and whatever follows the closing quote on its line. An
// unterminated quote swallows the rest of the input.
func (l *Lexer) readQuoted(first string) (value, rest string) {
	var b strings.Builder
	b.WriteString(first)
	for {
		next, ok := l.readLine()
		if !ok {
			return b.String(), ""
		}
		b.WriteByte('\n')
		if end := strings.IndexByte(next, quote); end >= 0 {
			b.WriteString(next[:end])
			return b.String(), next[end+1:]
		}
		b.WriteString(next)
	}
}

// yamlKeyEnd reports whether a "key:" starts at i and returns the index just
// past the colon. The colon must be followed by a blank, a quote, or the end
// of the line so that values such as "http://..." are not taken for keys.
func yamlKeyEnd(text string, i int) (int, bool) {
	j := i
	for j < len(text) && isKeyChar(text[j]) {
		j++
	}
	if j == i || j >= len(text) || text[j] != ':' {
		return 0, false
	}
	if k := j + 1; k < len(text) && !isBlank(text[k]) && text[k] != quote {
		return 0, false
	}
	return j + 1, true
}

// sectionMarkerEnd reports whether a "[word]" marker starts at i.
func sectionMarkerEnd(text string, i int) (int, bool) {
	j := i + 1
	for j < len(text) && isLetter(text[j]) {
		j++
	}
	if j == i+1 || j >= len(text) || text[j] != ']' {
		return 0, false
	}
	return j + 1, true
}

func skipBlank(s string, i int) int {
	for i < len(s) && isBlank(s[i]) {
		i++
	}
	return i
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\v' || c == '\f'
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isKeyChar(c byte) bool {
	return isLetter(c) || ('0' <= c && c <= '9') || c == '-' || c == '_' || c == '.'
}
