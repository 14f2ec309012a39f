package fetch

import (
	"context"
	"errors"
	"io"

	httperrors "github.com/mt-inside/muslimkit/pkg/errors"
	"github.com/mt-inside/muslimkit/pkg/parser"
)

// ReadSize is how much is asked of the TLS session per read.
const ReadSize = 4096

type contextReader interface {
	Read(ctx context.Context, p []byte) (int, error)
}

// readAll appends everything r yields until the peer closes. A read of zero bytes is taken as the
// peer closing, too.
func readAll(ctx context.Context, r contextReader, buf *parser.Buffer) error {
	chunk := make([]byte, ReadSize)
	for {
		n, err := r.Read(ctx, chunk)
		if n > 0 {
			if aerr := buf.Append(chunk[:n]); aerr != nil {
				return httperrors.New(httperrors.AllocationError, "buffer response", aerr)
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return httperrors.Ensure(httperrors.ReadError, "read response", err)
		}
		if n == 0 {
			return nil
		}
	}
}
