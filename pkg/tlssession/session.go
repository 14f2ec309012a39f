package tlssession

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"go.uber.org/multierr"

	httperrors "github.com/mt-inside/muslimkit/pkg/errors"
	"github.com/mt-inside/muslimkit/pkg/utils"
)

type Options struct {
	// RootCAs replaces the system trust store when set
	RootCAs *x509.CertPool
	// Zero timeouts mean no deadline beyond the context's
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration

	Log logr.Logger
}

// Session is one client TLS session over a connection it owns from Handshake onwards.
type Session struct {
	conn *tls.Conn
	raw  net.Conn
	opts Options

	shutdown sync.Once
	err      error
}

/* Handshake runs a TLS client handshake over raw, verifying the server against hostname.
* Default protocol versions and suites; SNI is sent unless hostname is an IP literal (Go omits it then, per RFC 6066).
* On failure raw is left open for the caller to close.
 */
func Handshake(ctx context.Context, raw net.Conn, hostname string, opts Options) (*Session, error) {
	log := opts.Log
	op := "handshake with " + hostname

	if opts.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.HandshakeTimeout)
		defer cancel()
	}

	cfg := &tls.Config{
		ServerName: hostname,
		RootCAs:    opts.RootCAs,
		VerifyConnection: func(cs tls.ConnectionState) error {
			log.V(1).Info("TLS: all cert verification finished", "certs", len(cs.PeerCertificates))
			return nil
		},
	}

	log.V(1).Info("TLS: handshaking", "addr", raw.RemoteAddr(), "sni", hostname, "sniSent", utils.ServerNameConformant(hostname))

	conn := tls.Client(raw, cfg)
	if err := conn.HandshakeContext(ctx); err != nil {
		return nil, httperrors.New(httperrors.TlsHandshakeError, op, err)
	}

	cs := conn.ConnectionState()
	log.V(1).Info("TLS: handshake complete", "version", tls.VersionName(cs.Version), "cipher", tls.CipherSuiteName(cs.CipherSuite), "resumed", cs.DidResume)

	return &Session{conn: conn, raw: raw, opts: opts}, nil
}

func (s *Session) ConnectionState() tls.ConnectionState {
	return s.conn.ConnectionState()
}

// cancelOnDone makes blocked I/O return as soon as ctx is done.
func (s *Session) cancelOnDone(ctx context.Context) (stop func() bool) {
	return context.AfterFunc(ctx, func() {
		_ = s.raw.SetDeadline(time.Unix(1, 0))
	})
}

func ctxOr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// Write sends all of p. Anything less is a WriteError; there is no retry.
func (s *Session) Write(ctx context.Context, p []byte) error {
	if err := ctx.Err(); err != nil {
		return httperrors.New(httperrors.WriteError, "write request", err)
	}
	defer s.cancelOnDone(ctx)()

	if s.opts.WriteTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
	}

	n, err := s.conn.Write(p)
	if err != nil {
		return httperrors.New(httperrors.WriteError, "write request", ctxOr(ctx, err))
	}
	if n != len(p) {
		return httperrors.New(httperrors.WriteError, "write request", io.ErrShortWrite)
	}
	s.opts.Log.V(1).Info("TLS: wrote", "bytes", n)

	return nil
}

// Read blocks until some plaintext is available. io.EOF means the peer has finished, and is
// returned as-is. Any other failure is a ReadError.
func (s *Session) Read(ctx context.Context, p []byte) (int, error) {
	defer s.cancelOnDone(ctx)()

	if s.opts.ReadTimeout > 0 {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
	}

	n, err := s.conn.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, httperrors.New(httperrors.ReadError, "read response", ctxOr(ctx, err))
	}
	return n, err
}

// Shutdown sends close_notify and releases the connection. It's safe on a nil Session and only
// acts once; later calls return the first call's result.
func (s *Session) Shutdown() error {
	if s == nil {
		return nil
	}

	s.shutdown.Do(func() {
		// Bound the close_notify write, in case the peer has stopped reading
		_ = s.raw.SetWriteDeadline(time.Now().Add(time.Second))

		s.err = multierr.Combine(
			s.conn.CloseWrite(),
			s.raw.Close(),
		)
		s.opts.Log.V(1).Info("TLS: shut down", "error", s.err)
	})

	return s.err
}
