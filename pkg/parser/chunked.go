package parser

import (
	"bytes"
	"math"
	"strconv"
)

/* Chunked transfer-coding, RFC 9112 §7.1
 * chunk      = chunk-size [ chunk-ext ] CRLF chunk-data CRLF
 * last-chunk = 1*("0") [ chunk-ext ] CRLF
 *
 * The decoder is lenient by intent: a size line that doesn't parse, or parses to <= 0, ends decoding
 * exactly like the terminal chunk does, and whatever was decoded so far is returned. It never errors.
 * Truncated chunk data is copied as far as it goes. A missing CRLF after chunk data is tolerated.
 * Whether malformed chunking should instead be a hard MalformedResponse error is an open product question.
 */

// DecodeChunked removes chunked framing from body. Chunk extensions and trailers are discarded.
func DecodeChunked(body []byte) []byte {
	out := make([]byte, 0, len(body)) // decoded output is never longer than its encoding

	pos := 0
	for pos < len(body) {
		// Stray line terminators, eg left over from the previous chunk
		for pos < len(body) && (body[pos] == '\r' || body[pos] == '\n') {
			pos++
		}

		size, ok := parseChunkSize(body[pos:])
		if !ok || size <= 0 {
			break
		}

		nl := bytes.IndexByte(body[pos:], '\n')
		if nl < 0 {
			break
		}
		pos += nl + 1

		n := size
		if remain := len(body) - pos; n > remain {
			n = remain
		}
		out = append(out, body[pos:pos+n]...)
		pos += n

		if pos+1 < len(body) && body[pos] == '\r' && body[pos+1] == '\n' {
			pos += 2
		}
	}

	return out
}

// EncodeChunked frames each piece as one chunk and appends the terminal chunk.
// Empty pieces are skipped, as a zero-size chunk would end the body.
func EncodeChunked(pieces ...[]byte) []byte {
	var b bytes.Buffer
	for _, p := range pieces {
		if len(p) == 0 {
			continue
		}
		b.WriteString(strconv.FormatInt(int64(len(p)), 16))
		b.WriteString("\r\n")
		b.Write(p)
		b.WriteString("\r\n")
	}
	b.WriteString("0\r\n\r\n")
	return b.Bytes()
}

// parseChunkSize reads a base-16 integer the way strtol(p, _, 16) does: leading whitespace, an optional
// sign and an optional 0x prefix, then hex digits up to the first non-digit. ok is false if there are no digits.
// Values too large for an int saturate.
func parseChunkSize(p []byte) (n int, ok bool) {
	i := 0
	for i < len(p) && isSpace(p[i]) {
		i++
	}
	neg := false
	if i < len(p) && (p[i] == '+' || p[i] == '-') {
		neg = p[i] == '-'
		i++
	}
	if i+2 < len(p) && p[i] == '0' && (p[i+1] == 'x' || p[i+1] == 'X') && hexVal(p[i+2]) >= 0 {
		i += 2
	}

	start := i
	for ; i < len(p); i++ {
		d := hexVal(p[i])
		if d < 0 {
			break
		}
		if n > (math.MaxInt-d)/16 {
			n = math.MaxInt
			continue
		}
		n = n*16 + d
	}
	if i == start {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
