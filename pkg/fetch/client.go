package fetch

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"net/http"
	"net/netip"
	"strconv"
	"time"

	"github.com/go-logr/logr"

	httperrors "github.com/mt-inside/muslimkit/pkg/errors"
	"github.com/mt-inside/muslimkit/pkg/parser"
	"github.com/mt-inside/muslimkit/pkg/resolver"
	"github.com/mt-inside/muslimkit/pkg/tlssession"
	"github.com/mt-inside/muslimkit/pkg/transport"
	"github.com/mt-inside/muslimkit/pkg/utils"
)

const DefaultPort = "443"

// Config is everything a Client needs. The zero value is usable: port 443, the platform resolver,
// plain TCP, the system trust store, no timeouts, no response size limit.
type Config struct {
	Port string

	// ConnectTimeout bounds the TCP connect and, separately, the TLS handshake.
	ConnectTimeout time.Duration
	// ReadTimeout bounds each read of the response; a server that goes quiet for longer fails the fetch.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MaxResponseBytes caps the raw response; going over is an AllocationError. 0 is unlimited.
	MaxResponseBytes int

	// RootCAs replaces the system trust store when set.
	RootCAs *x509.CertPool

	Resolver  resolver.Resolver
	Transport transport.Transport

	Log logr.Logger
}

// Client performs one-shot HTTPS GETs. It holds only configuration, so one Client can serve any
// number of concurrent Fetches.
type Client struct {
	cfg Config
}

func New(cfg Config) *Client {
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.Resolver == nil {
		cfg.Resolver = resolver.NewSystem(cfg.Log)
	}
	if cfg.Transport == nil {
		cfg.Transport = &transport.TCP{ConnectTimeout: cfg.ConnectTimeout, Log: cfg.Log}
	}
	return &Client{cfg: cfg}
}

type ConnInfo struct {
	Addr           netip.AddrPort
	ServerName     string
	SNISent        bool
	TlsVersion     uint16
	TlsCipherSuite uint16
}

type Response struct {
	// Status is parser.StatusUnknown if the status line couldn't be read
	Status int
	// Header is the raw header block, status line included, without the terminating blank line.
	// It shares no memory with Body.
	Header []byte
	// Body is the entity body, de-chunked if need be
	Body    []byte
	Chunked bool
	// RawLen is the number of bytes received, framing included
	RawLen int

	Conn ConnInfo
}

func (r *Response) Headers() http.Header {
	return parser.ParseHeaders(r.Header)
}

func (r *Response) StatusLine() string {
	return string(parser.StatusLine(r.Header))
}

/* Fetch GETs path from host over a fresh TLS connection, reads until the server closes, and frames the result.
* Every stage runs once; nothing is retried. Failures are *httperrors.Error, classified by the stage that failed.
* A status line that can't be parsed isn't a failure: Status is StatusUnknown.
 */
func (c *Client) Fetch(ctx context.Context, host, path string) (*Response, error) {
	log := c.cfg.Log.WithValues("host", host, "path", path)

	asciiHost, err := NormalizeHost(host)
	if err != nil {
		return nil, httperrors.New(httperrors.ResolutionError, "normalize "+host, err)
	}
	host = asciiHost

	addr, err := c.cfg.Resolver.Resolve(ctx, host)
	if err != nil {
		return nil, httperrors.Ensure(httperrors.ResolutionError, "resolve "+host, err)
	}
	log.V(1).Info("Resolved", "addr", addr)

	conn, err := c.cfg.Transport.Connect(ctx, addr, c.cfg.Port)
	if err != nil {
		return nil, httperrors.Ensure(httperrors.ConnectError, "connect", err)
	}
	conn = transport.CloseOnce(conn)
	defer conn.Close()

	sess, err := tlssession.Handshake(ctx, conn, host, tlssession.Options{
		RootCAs:          c.cfg.RootCAs,
		HandshakeTimeout: c.cfg.ConnectTimeout,
		ReadTimeout:      c.cfg.ReadTimeout,
		WriteTimeout:     c.cfg.WriteTimeout,
		Log:              log,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := sess.Shutdown(); err != nil {
			log.V(1).Info("TLS shutdown wasn't clean", "error", err)
		}
	}()
	cs := sess.ConnectionState()

	req := parser.BuildGet(host, path)
	if err := sess.Write(ctx, req); err != nil {
		return nil, err
	}
	log.V(1).Info("Request sent", "bytes", len(req))

	buf := parser.NewBuffer(c.cfg.MaxResponseBytes)
	defer buf.Reset()

	if err := readAll(ctx, sess, buf); err != nil {
		return nil, err
	}
	log.V(1).Info("Response read", "bytes", buf.Len(), "reallocations", buf.Grows())
	raw := buf.Detach()

	framed, err := parser.Frame(raw)
	if err != nil {
		return nil, httperrors.New(httperrors.MalformedResponseError, "frame response", err)
	}

	status, err := parser.StatusCode(framed.Header)
	if err != nil {
		log.Info("Status code unknown", "statusLine", string(parser.StatusLine(framed.Header)))
	}

	resp := &Response{
		Status:  status,
		Header:  bytes.Clone(framed.Header),
		Body:    framed.Payload(),
		Chunked: framed.Chunked(),
		RawLen:  len(raw),
		Conn: ConnInfo{
			Addr:           netip.AddrPortFrom(addr, portNumber(c.cfg.Port)),
			ServerName:     host,
			SNISent:        utils.ServerNameConformant(host),
			TlsVersion:     cs.Version,
			TlsCipherSuite: cs.CipherSuite,
		},
	}
	log.V(1).Info("Response framed", "status", resp.Status, "headerBytes", len(resp.Header), "chunked", resp.Chunked, "encodedBytes", len(framed.Body), "bodyBytes", len(resp.Body))

	return resp, nil
}

func (ci ConnInfo) TlsVersionName() string {
	return tls.VersionName(ci.TlsVersion)
}

func (ci ConnInfo) TlsCipherSuiteName() string {
	return tls.CipherSuiteName(ci.TlsCipherSuite)
}

func portNumber(port string) uint16 {
	p, _ := strconv.ParseUint(port, 10, 16)
	return uint16(p)
}
