package parser

import (
	"bytes"
	"net/http"
	"strings"
)

// ParseHeaders indexes a raw header block for inspection. The status line is skipped, as is any line
// without a colon; nothing here is fatal, because the raw block is what callers are given either way.
func ParseHeaders(header []byte) http.Header {
	hs := http.Header{}

	lines := bytes.Split(header, []byte("\r\n"))
	for _, line := range lines[1:] {
		name, value, found := bytes.Cut(line, []byte(":"))
		if !found {
			continue
		}
		key := strings.TrimSpace(string(name))
		if key == "" {
			continue
		}
		hs.Add(key, strings.TrimSpace(string(value)))
	}

	return hs
}
