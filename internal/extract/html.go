package extract

import (
	"bytes"
	"errors"
	"io"

	"golang.org/x/net/html"
)

// HTMLSource tokenizes the page, so anchors match regardless of attribute
// order, quoting or whitespace. Entity-escaped hrefs are unescaped by the
// tokenizer before unwrapping.
type HTMLSource struct {
	selfDomain string
}

// NewHTMLSource returns a tokenizer-based page parser.
func NewHTMLSource(selfDomain string) *HTMLSource {
	return &HTMLSource{selfDomain: selfDomain}
}

// Name returns "html".
func (s *HTMLSource) Name() string { return "html" }

// Extract emits every redirect-wrapped destination in document order.
func (s *HTMLSource) Extract(body []byte, emit Emitter) error {
	z := html.NewTokenizer(bytes.NewReader(body))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			return nil
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "a" || !hasAttr {
				continue
			}
			href, ok := hrefAttr(z)
			if !ok {
				continue
			}
			link, ok := Destination(href, s.selfDomain)
			if !ok {
				continue
			}
			if err := emit(link); err != nil {
				return err
			}
		}
	}
}

func hrefAttr(z *html.Tokenizer) (string, bool) {
	for {
		key, val, more := z.TagAttr()
		if string(key) == "href" {
			return string(val), true
		}
		if !more {
			return "", false
		}
	}
}
