// Package csstoken walks stylesheet text as a lossless token stream: joining
// every token's Raw bytes reproduces the input exactly. Only the shapes the
// build pipeline cares about are classified; everything else is Text.
package csstoken

import (
	"bytes"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

type Kind int

const (
	Text Kind = iota
	Comment
	URL
	String
	AtKeyword
	Delim
)

type Token struct {
	Kind Kind
	Raw  []byte
	// Ref is the unquoted reference of a URL token or the unquoted value of a
	// String token.
	Ref   string
	quote byte
}

// WithRef renders a URL token pointing at ref, keeping its quoting style.
func (t Token) WithRef(ref string) []byte {
	var b bytes.Buffer
	b.Grow(len(ref) + 8)
	b.WriteString("url(")
	if t.quote != 0 {
		b.WriteByte(t.quote)
		b.WriteString(ref)
		b.WriteByte(t.quote)
	} else {
		b.WriteString(ref)
	}
	b.WriteByte(')')
	return b.Bytes()
}

type lexed struct {
	tt   css.TokenType
	data []byte
}

// Walk lexes src and calls fn once per token, in source order.
func Walk(src []byte, fn func(Token) error) error {
	buf := make([]byte, len(src), len(src)+1)
	copy(buf, src)
	l := css.NewLexer(parse.NewInputBytes(buf))

	consumed := 0
	var pending []lexed

	emit := func(tok Token) error {
		consumed += len(tok.Raw)
		return fn(tok)
	}
	flush := func() error {
		for _, p := range pending {
			if err := emit(classify(p.tt, p.data)); err != nil {
				return err
			}
		}
		pending = pending[:0]
		return nil
	}

	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			if err := flush(); err != nil {
				return err
			}
			// A lexer failure before EOF leaves the tail unlexed; pass it through.
			if consumed < len(src) {
				return fn(Token{Kind: Text, Raw: src[consumed:]})
			}
			return nil
		}

		if len(pending) > 0 {
			done, ok := extendURLFunction(&pending, tt, data)
			if done {
				if ok {
					tok := urlFromFunction(pending)
					pending = pending[:0]
					if err := emit(tok); err != nil {
						return err
					}
					continue
				}
				if err := flush(); err != nil {
					return err
				}
			} else {
				continue
			}
		}

		if tt == css.FunctionToken && strings.EqualFold(string(data), "url(") {
			pending = append(pending, lexed{tt, data})
			continue
		}

		if err := emit(classify(tt, data)); err != nil {
			return err
		}
	}
}

// extendURLFunction feeds one token into a pending `url(` function. It
// reports done once the function is closed or turns out not to be a plain
// url(string); ok is true when a URL token was recognised. When done && !ok
// the current token is left for the caller to handle.
func extendURLFunction(pending *[]lexed, tt css.TokenType, data []byte) (done bool, ok bool) {
	hasString := false
	for _, p := range (*pending)[1:] {
		if p.tt == css.StringToken {
			hasString = true
		}
	}
	switch tt {
	case css.WhitespaceToken:
		*pending = append(*pending, lexed{tt, data})
		return false, false
	case css.StringToken:
		if hasString {
			return true, false
		}
		*pending = append(*pending, lexed{tt, data})
		return false, false
	case css.RightParenthesisToken:
		if !hasString {
			return true, false
		}
		*pending = append(*pending, lexed{tt, data})
		return true, true
	}
	return true, false
}

func urlFromFunction(parts []lexed) Token {
	var raw []byte
	var ref string
	var quote byte
	for _, p := range parts {
		raw = append(raw, p.data...)
		if p.tt == css.StringToken {
			ref, quote = unquote(p.data)
		}
	}
	return Token{Kind: URL, Raw: raw, Ref: ref, quote: quote}
}

func classify(tt css.TokenType, data []byte) Token {
	switch tt {
	case css.CommentToken:
		return Token{Kind: Comment, Raw: data}
	case css.URLToken:
		ref, quote := urlInner(data)
		return Token{Kind: URL, Raw: data, Ref: ref, quote: quote}
	case css.StringToken:
		ref, quote := unquote(data)
		return Token{Kind: String, Raw: data, Ref: ref, quote: quote}
	case css.AtKeywordToken:
		return Token{Kind: AtKeyword, Raw: data, Ref: strings.ToLower(string(data))}
	case css.SemicolonToken, css.CommaToken, css.LeftBraceToken, css.RightBraceToken:
		return Token{Kind: Delim, Raw: data, Ref: string(data)}
	}
	return Token{Kind: Text, Raw: data}
}

func urlInner(data []byte) (string, byte) {
	inner := data
	if len(inner) >= 4 && strings.EqualFold(string(inner[:4]), "url(") {
		inner = inner[4:]
	}
	inner = bytes.TrimSuffix(inner, []byte(")"))
	inner = bytes.TrimSpace(inner)
	if len(inner) > 0 && (inner[0] == '"' || inner[0] == '\'') {
		return unquote(inner)
	}
	return string(inner), 0
}

func unquote(data []byte) (string, byte) {
	if len(data) == 0 {
		return "", 0
	}
	q := data[0]
	if q != '"' && q != '\'' {
		return string(data), 0
	}
	body := data[1:]
	if len(body) > 0 && body[len(body)-1] == q {
		body = body[:len(body)-1]
	}
	return string(body), q
}
