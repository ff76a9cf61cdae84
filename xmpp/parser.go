/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package xmpp

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ErrTooLargeToken is returned by Feed when a single pending lexical
// token outgrows the parser buffer limit.
var ErrTooLargeToken = errors.New("xmpp: too large token")

// ErrMalformedXML is the cause of every error returned by Feed
// because of ill-formed input.
var ErrMalformedXML = errors.New("xmpp: malformed xml")

// Handler receives parsing events in document order.
type Handler interface {
	// StartElement is invoked for every opening tag (self-closing ones included).
	StartElement(name string, attrs []Attribute)

	// EndElement is invoked for every closing tag.
	EndElement(name string)

	// CharData is invoked for text and CDATA runs.
	CharData(data string)
}

// Parser is a push-based incremental XML transducer.
// Bytes are fed in arbitrarily sized chunks and element events are raised
// only once a complete lexical token is known. Text is delivered as soon as
// it is decoded, so a single text node may arrive as several adjacent
// CharData runs; their concatenation does not depend on how the input
// was chunked.
type Parser struct {
	h        Handler
	maxToken int
	buf      []byte
	names    []string
	halted   bool
	err      error
}

// NewParser creates a Parser delivering events to h.
// maxTokenSize bounds the bytes buffered for a single incomplete token;
// zero means no limit.
func NewParser(h Handler, maxTokenSize int) *Parser {
	return &Parser{h: h, maxToken: maxTokenSize}
}

// Depth returns the number of currently open elements.
func (p *Parser) Depth() int {
	return len(p.names)
}

// Halt stops event delivery. Any buffered or further input is discarded.
// It may be called from within a Handler callback.
func (p *Parser) Halt() {
	p.halted = true
	p.buf = nil
}

// Feed pushes a chunk of input into the parser.
// Once an error has been returned every subsequent call returns it again.
func (p *Parser) Feed(b []byte) error {
	if p.err != nil {
		return p.err
	}
	if p.halted {
		return nil
	}
	p.buf = append(p.buf, b...)

	// a rune split across chunks is decoded once complete
	window := p.buf[:len(p.buf)-partialRuneLen(p.buf)]

	dec := xml.NewDecoder(bytes.NewReader(window))
	dec.Strict = true

	var consumed int64
	for !p.halted {
		start := dec.InputOffset()
		tok, err := dec.RawToken()
		if err != nil {
			if isIncomplete(err) {
				break
			}
			p.err = errors.Wrap(ErrMalformedXML, err.Error())
			return p.err
		}
		end := dec.InputOffset()
		if _, ok := tok.(xml.CharData); ok && end == int64(len(window)) {
			// text may continue in the next chunk: deliver what is known
			// and keep a trailing line break or bracket run undecoded
			cut := end - int64(heldTextLen(window[start:end]))
			if cut == start {
				break
			}
			if cut < end {
				if tok, err = xml.NewDecoder(bytes.NewReader(window[start:cut])).RawToken(); err != nil {
					p.err = errors.Wrap(ErrMalformedXML, err.Error())
					return p.err
				}
				end = cut
			}
		}
		if err := p.dispatch(tok); err != nil {
			p.err = err
			return err
		}
		consumed = end
	}
	if p.halted {
		return nil
	}
	p.buf = append(p.buf[:0], p.buf[consumed:]...)

	if p.maxToken > 0 && len(p.buf) > p.maxToken {
		p.err = ErrTooLargeToken
		return p.err
	}
	return nil
}

func (p *Parser) dispatch(tok xml.Token) error {
	switch t := tok.(type) {
	case xml.StartElement:
		name := xmlName(t.Name.Space, t.Name.Local)
		var attrs []Attribute
		for _, a := range t.Attr {
			attrs = append(attrs, Attribute{xmlName(a.Name.Space, a.Name.Local), a.Value})
		}
		p.names = append(p.names, name)
		p.h.StartElement(name, attrs)

	case xml.EndElement:
		name := xmlName(t.Name.Space, t.Name.Local)
		last := len(p.names) - 1
		if last < 0 || p.names[last] != name {
			return errors.Wrapf(ErrMalformedXML, "unexpected end element </%s>", name)
		}
		p.names = p.names[:last]
		p.h.EndElement(name)

	case xml.CharData:
		if len(p.names) == 0 {
			// whitespace between top level elements
			return nil
		}
		p.h.CharData(string(t))
	}
	return nil
}

// partialRuneLen returns the length of an incomplete UTF-8 sequence
// ending b, or zero if b ends on a rune boundary.
func partialRuneLen(b []byte) int {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		if !utf8.RuneStart(b[len(b)-i]) {
			continue
		}
		if utf8.FullRune(b[len(b)-i:]) {
			return 0
		}
		return i
	}
	return 0
}

// heldTextLen returns the number of trailing text bytes whose meaning
// depends on the bytes that follow them.
func heldTextLen(b []byte) int {
	n := 0
	for n < len(b) {
		c := b[len(b)-1-n]
		if c != '\r' && c != ']' {
			break
		}
		n++
	}
	return n
}

// isIncomplete reports whether a decoding error was caused by input ending
// in the middle of a token.
func isIncomplete(err error) bool {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return true
	}
	if se, ok := err.(*xml.SyntaxError); ok {
		return strings.HasPrefix(se.Msg, "unexpected EOF")
	}
	return false
}

func xmlName(space, local string) string {
	if len(space) > 0 {
		return space + ":" + local
	}
	return local
}
