// Package testserver is a TLS listener for tests that replies with canned bytes.
package testserver

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"io"
	"math/big"
	"net"
	"net/netip"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// SelfSignedCert makes a CA-flagged certificate for localhost and 127.0.0.1, so it can be trusted
// directly by adding it to a pool.
func SelfSignedCert(t testing.TB) (tls.Certificate, *x509.CertPool) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		Subject:               pkix.Name{CommonName: "localhost", Organization: []string{"muslimkit test"}},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1)},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	leaf, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	pool := x509.NewCertPool()
	pool.AddCert(leaf)

	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key, Leaf: leaf}, pool
}

// Handler writes the raw response bytes for one request. The connection is closed, with a
// close_notify, once it returns.
type Handler func(w io.Writer, req []byte)

// Server is a TLS listener on 127.0.0.1 that hands each request to a Handler.
// It doesn't speak HTTP: whatever the handler writes is what the client reads.
type Server struct {
	Addr netip.AddrPort
	// Pool trusts the server's certificate
	Pool *x509.CertPool

	listener net.Listener
	wg       sync.WaitGroup

	mu       sync.Mutex
	requests [][]byte
	snis     []string
}

func New(t testing.TB, handler Handler) *Server {
	t.Helper()

	cert, pool := SelfSignedCert(t)
	s := &Server{Pool: pool}

	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		GetConfigForClient: func(hello *tls.ClientHelloInfo) (*tls.Config, error) {
			s.mu.Lock()
			s.snis = append(s.snis, hello.ServerName)
			s.mu.Unlock()
			return nil, nil
		},
	}
	l, err := tls.Listen("tcp4", "127.0.0.1:0", cfg)
	require.NoError(t, err)
	s.listener = l
	s.Addr = netip.MustParseAddrPort(l.Addr().String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.serve(conn, handler)
			}()
		}
	}()

	t.Cleanup(s.Close)

	return s
}

func (s *Server) serve(conn net.Conn, handler Handler) {
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(10 * time.Second))

	var req []byte
	buf := make([]byte, 1024)
	for !bytes.Contains(req, []byte("\r\n\r\n")) {
		n, err := conn.Read(buf)
		req = append(req, buf[:n]...)
		if err != nil {
			// Includes failed handshakes
			return
		}
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	handler(conn, req)
}

func (s *Server) Port() string {
	return strconv.Itoa(int(s.Addr.Port()))
}

// Requests returns the raw requests received so far.
func (s *Server) Requests() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.requests...)
}

// ServerNames returns the SNI from each ClientHello received, "" where none was sent.
func (s *Server) ServerNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.snis...)
}

func (s *Server) Close() {
	s.listener.Close()
	s.wg.Wait()
}

// RawResponse is a Handler that writes resp in one go.
func RawResponse(resp string) Handler {
	return func(w io.Writer, _ []byte) {
		_, _ = io.WriteString(w, resp)
	}
}

// TrickleResponse is a Handler that writes resp n bytes at a time.
func TrickleResponse(resp []byte, n int) Handler {
	return func(w io.Writer, _ []byte) {
		for len(resp) > 0 {
			m := min(n, len(resp))
			if _, err := w.Write(resp[:m]); err != nil {
				return
			}
			resp = resp[m:]
		}
	}
}
