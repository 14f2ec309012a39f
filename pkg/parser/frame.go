package parser

import (
	"bytes"
	"errors"
)

// StatusUnknown is reported in place of a status code that couldn't be read from the status line.
const StatusUnknown = -1

// statusTokenMax bounds the status token; longer tokens are cut rather than rejected.
const statusTokenMax = 3

var (
	headerDelimiter = []byte("\r\n\r\n")
	chunkedMarker   = []byte("Transfer-Encoding: chunked")

	ErrMalformedResponse = errors.New("malformed response: no blank line between header and body")
	ErrStatusUnknown     = errors.New("status line has no status token")
)

// Framed is a raw response split at the blank-line delimiter.
// Both fields are views into the slice given to Frame. Header has no spare capacity, so appending
// to it never writes over Body.
type Framed struct {
	Header []byte
	Body   []byte
}

// Frame splits raw at the first "\r\n\r\n". Any later occurrence belongs to the body.
func Frame(raw []byte) (Framed, error) {
	i := bytes.Index(raw, headerDelimiter)
	if i < 0 {
		return Framed{}, ErrMalformedResponse
	}
	return Framed{
		Header: raw[:i:i],
		Body:   raw[i+len(headerDelimiter):],
	}, nil
}

// Chunked reports whether the header block declares chunked transfer-encoding.
// The match is exact and case-sensitive.
func (f Framed) Chunked() bool {
	return IsChunked(f.Header)
}

func IsChunked(header []byte) bool {
	return bytes.Contains(header, chunkedMarker)
}

// Payload is the entity body, with chunked framing removed if the header block declares it.
func (f Framed) Payload() []byte {
	if f.Chunked() {
		return DecodeChunked(f.Body)
	}
	return f.Body
}

// StatusLine returns the first line of the header block, without its terminator.
func StatusLine(header []byte) []byte {
	if i := bytes.Index(header, []byte("\r\n")); i >= 0 {
		return header[:i]
	}
	return header
}

// StatusCode extracts the code from a status line of the form "HTTP/<version> <status> <reason>".
// The token between the first and second spaces is truncated to three characters and converted with
// atoi semantics (leading digits only, zero if there are none).
// A line lacking either space yields StatusUnknown and ErrStatusUnknown.
func StatusCode(header []byte) (int, error) {
	line := StatusLine(header)

	sp1 := bytes.IndexByte(line, ' ')
	if sp1 < 0 {
		return StatusUnknown, ErrStatusUnknown
	}
	rest := line[sp1+1:]
	sp2 := bytes.IndexByte(rest, ' ')
	if sp2 < 0 {
		return StatusUnknown, ErrStatusUnknown
	}

	token := rest[:sp2]
	if len(token) > statusTokenMax {
		token = token[:statusTokenMax]
	}
	return atoi(token), nil
}

// atoi mirrors C's atoi: optional leading whitespace and sign, then as many decimal digits as there are.
func atoi(p []byte) int {
	i := 0
	for i < len(p) && isSpace(p[i]) {
		i++
	}
	neg := false
	if i < len(p) && (p[i] == '+' || p[i] == '-') {
		neg = p[i] == '-'
		i++
	}
	n := 0
	for ; i < len(p) && p[i] >= '0' && p[i] <= '9'; i++ {
		n = n*10 + int(p[i]-'0')
	}
	if neg {
		return -n
	}
	return n
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
