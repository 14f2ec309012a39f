package transport

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-logr/logr"

	httperrors "github.com/mt-inside/muslimkit/pkg/errors"
)

var (
	ErrBadAddress = errors.New("not a usable IPv4 address")
	ErrBadPort    = errors.New("port must be 1-65535")
)

// Transport opens the byte stream a fetch runs TLS over.
type Transport interface {
	Connect(ctx context.Context, addr netip.Addr, port string) (net.Conn, error)
}

// TCP connects over IPv4 TCP. One attempt, no retries.
type TCP struct {
	// ConnectTimeout bounds the TCP handshake. Zero means only ctx bounds it.
	ConnectTimeout time.Duration
	Log            logr.Logger
}

func (t *TCP) Connect(ctx context.Context, addr netip.Addr, port string) (net.Conn, error) {
	addrPort := net.JoinHostPort(addr.String(), port)
	op := "connect " + addrPort

	if !addr.IsValid() || !addr.Unmap().Is4() {
		return nil, httperrors.New(httperrors.ConnectError, op, ErrBadAddress)
	}
	if p, err := strconv.ParseUint(port, 10, 16); err != nil || p == 0 {
		return nil, httperrors.New(httperrors.ConnectError, op, ErrBadPort)
	}
	addrPort = net.JoinHostPort(addr.Unmap().String(), port)

	d := &net.Dialer{
		Timeout: t.ConnectTimeout,
		Control: func(network, address string, c syscall.RawConn) error {
			t.Log.V(1).Info("TCP: dialing", "network", network, "addr", address)
			return nil
		},
	}

	conn, err := d.DialContext(ctx, "tcp4", addrPort)
	if err != nil {
		return nil, httperrors.New(httperrors.ConnectError, op, err)
	}
	t.Log.V(1).Info("TCP: established connection", "local", conn.LocalAddr(), "remote", conn.RemoteAddr())

	return conn, nil
}

type closeOnce struct {
	net.Conn
	once sync.Once
	err  error
}

func (c *closeOnce) Close() error {
	c.once.Do(func() { c.err = c.Conn.Close() })
	return c.err
}

// CloseOnce makes every Close after the first a no-op returning the first's result, so the
// socket is released exactly once whichever of the TLS layer or the caller gets there first.
func CloseOnce(conn net.Conn) net.Conn {
	if conn == nil {
		return nil
	}
	return &closeOnce{Conn: conn}
}
