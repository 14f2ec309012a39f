package parser

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferGrowthKeepsContents(t *testing.T) {
	b := NewBuffer(0)
	var want bytes.Buffer

	// Varying small reads, enough to cross several growth boundaries
	for i := 0; i < 2000; i++ {
		piece := bytes.Repeat([]byte{byte(i)}, 1+i%97)
		require.NoError(t, b.Append(piece))
		want.Write(piece)
		require.GreaterOrEqual(t, b.Cap(), b.Len())
	}

	require.GreaterOrEqual(t, b.Grows(), 3)
	require.Equal(t, want.Bytes(), b.Bytes())
}

func TestBufferGrowthIsGeometric(t *testing.T) {
	b := NewBuffer(0)

	require.NoError(t, b.Append([]byte("x")))
	require.Equal(t, MinGrowth, b.Cap())

	require.NoError(t, b.Append(make([]byte, MinGrowth)))
	require.Equal(t, 2*MinGrowth, b.Cap())

	// An append bigger than double goes straight to what it needs
	require.NoError(t, b.Append(make([]byte, 10*MinGrowth)))
	require.Equal(t, 1+11*MinGrowth, b.Cap())
	require.Equal(t, 3, b.Grows())
}

func TestBufferLimit(t *testing.T) {
	b := NewBuffer(10)

	require.NoError(t, b.Append([]byte("0123456789")))
	require.LessOrEqual(t, b.Cap(), 10)

	err := b.Append([]byte("a"))
	require.ErrorIs(t, err, ErrBufferLimit)
	require.Equal(t, []byte("0123456789"), b.Bytes())
}

func TestBufferDetach(t *testing.T) {
	b := NewBuffer(0)
	_, err := b.Write([]byte("hello"))
	require.NoError(t, err)

	p := b.Detach()
	require.Equal(t, []byte("hello"), p)
	require.Zero(t, b.Len())

	require.NoError(t, b.Append([]byte("world")))
	require.Equal(t, []byte("hello"), p)
}

func TestBuildGet(t *testing.T) {
	req := BuildGet("api.myquran.com", "/v2/sholat/kota/semua")

	require.Equal(t, "GET /v2/sholat/kota/semua HTTP/1.1\r\nHost: api.myquran.com\r\nConnection: close\r\n\r\n", string(req))
	require.Len(t, req, RequestLen("api.myquran.com", "/v2/sholat/kota/semua"))
	require.Equal(t, len(req), cap(req))
}

func TestFrame(t *testing.T) {
	f, err := Frame([]byte("HTTP/1.1 200 OK\r\nContent-Type: application/json\r\n\r\n{\"a\":1}"))
	require.NoError(t, err)
	require.Equal(t, "HTTP/1.1 200 OK\r\nContent-Type: application/json", string(f.Header))
	require.Equal(t, `{"a":1}`, string(f.Payload()))
	require.False(t, f.Chunked())
}

func TestFrameFirstDelimiterWins(t *testing.T) {
	f, err := Frame([]byte("HTTP/1.1 200 OK\r\nA: b\r\n\r\nline one\r\n\r\nline two"))
	require.NoError(t, err)
	require.Equal(t, "HTTP/1.1 200 OK\r\nA: b", string(f.Header))
	require.Equal(t, "line one\r\n\r\nline two", string(f.Body))
}

func TestFrameNoDelimiter(t *testing.T) {
	for _, raw := range []string{
		"",
		"HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\n",
		"HTTP/1.1 200 OK\n\nbody",
	} {
		_, err := Frame([]byte(raw))
		require.ErrorIs(t, err, ErrMalformedResponse, "input %q", raw)
	}
}

func TestFrameEmptyBody(t *testing.T) {
	f, err := Frame([]byte("HTTP/1.1 204 No Content\r\n\r\n"))
	require.NoError(t, err)
	require.Empty(t, f.Body)
}

func TestFrameHeaderAppendLeavesBody(t *testing.T) {
	f, err := Frame([]byte("HTTP/1.1 200 OK\r\n\r\n{\"a\":1}"))
	require.NoError(t, err)
	require.Equal(t, len(f.Header), cap(f.Header))

	h := append(f.Header, "\r\nX-Y: z"...)
	require.Equal(t, "HTTP/1.1 200 OK\r\nX-Y: z", string(h))
	require.Equal(t, `{"a":1}`, string(f.Body))
}

func TestStatusCode(t *testing.T) {
	cases := []struct {
		header string
		status int
		err    error
	}{
		{"HTTP/1.1 200 OK", 200, nil},
		{"HTTP/1.1 404 Not Found", 404, nil},
		{"HTTP/1.1 503 Service Unavailable\r\nRetry-After: 1", 503, nil},
		{"HTTP/1.1 2000 Weird", 200, nil}, // over-long token is truncated, not rejected
		{"HTTP/1.1 abc Weird", 0, nil},     // atoi of no digits
		{"HTTP/1.1 200", StatusUnknown, ErrStatusUnknown},
		{"HTTP/1.1", StatusUnknown, ErrStatusUnknown},
		{"", StatusUnknown, ErrStatusUnknown},
		// Only the first line counts
		{"HTTP/1.1\r\nX-Note: a b c", StatusUnknown, ErrStatusUnknown},
	}

	for _, c := range cases {
		status, err := StatusCode([]byte(c.header))
		require.Equal(t, c.status, status, "header %q", c.header)
		if c.err != nil {
			require.ErrorIs(t, err, c.err)
		} else {
			require.NoError(t, err)
		}
	}
}

func TestIsChunkedIsCaseSensitive(t *testing.T) {
	require.True(t, IsChunked([]byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked")))
	require.False(t, IsChunked([]byte("HTTP/1.1 200 OK\r\ntransfer-encoding: chunked")))
	require.False(t, IsChunked([]byte("HTTP/1.1 200 OK\r\nContent-Length: 3")))
}

func TestDecodeChunked(t *testing.T) {
	f, err := Frame([]byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n"))
	require.NoError(t, err)
	require.True(t, f.Chunked())
	require.Equal(t, "Wikipedia", string(f.Payload()))
}

func TestDecodeChunkedEmpty(t *testing.T) {
	f, err := Frame([]byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n0\r\n\r\n"))
	require.NoError(t, err)
	require.NotNil(t, f.Payload())
	require.Empty(t, f.Payload())
}

func TestDecodeChunkedRoundTrip(t *testing.T) {
	cases := [][][]byte{
		{[]byte("a")},
		{[]byte("hello, "), []byte("world")},
		{[]byte("\r\n"), []byte("\r\n\r\n"), []byte("x\ry\nz")},
		{[]byte("\n\nleading newlines"), []byte("trailing\r")},
		{bytes.Repeat([]byte("0123456789abcdef"), 1024), []byte{0, 1, 2, 0xff}},
	}

	for _, pieces := range cases {
		encoded := EncodeChunked(pieces...)
		require.Equal(t, bytes.Join(pieces, nil), DecodeChunked(encoded), "encoded %q", encoded)
	}
}

func TestDecodeChunkedExtensionsAndUpperHex(t *testing.T) {
	body := "A;name=value\r\n0123456789\r\n1\r\n!\r\n0\r\nTrailer: x\r\n\r\n"
	require.Equal(t, "0123456789!", string(DecodeChunked([]byte(body))))
}

// The decoder stops at a bad size line instead of failing. This is deliberate leniency, not a bug.
func TestDecodeChunkedLenientStopsAtMalformedSize(t *testing.T) {
	require.Equal(t, "Wiki", string(DecodeChunked([]byte("4\r\nWiki\r\nzz\r\npedia\r\n0\r\n\r\n"))))
	require.Equal(t, "Wiki", string(DecodeChunked([]byte("4\r\nWiki\r\n-5\r\npedia\r\n0\r\n\r\n"))))
	require.Empty(t, DecodeChunked([]byte("not chunked at all")))
}

func TestDecodeChunkedLenientTruncation(t *testing.T) {
	// Declared size runs past the end of the input
	require.Equal(t, "Wiki", string(DecodeChunked([]byte("10\r\nWiki"))))
	// No terminal chunk
	require.Equal(t, "Wikipedia", string(DecodeChunked([]byte("4\r\nWiki\r\n5\r\npedia\r\n"))))
	// Size line without a line feed
	require.Equal(t, "Wiki", string(DecodeChunked([]byte("4\r\nWiki\r\n5"))))
	// Missing CRLF after chunk data is tolerated
	require.Equal(t, "Wikipedia", string(DecodeChunked([]byte("4\r\nWiki5\r\npedia\r\n0\r\n\r\n"))))
}
