package resolver

import (
	"context"
	"errors"
	"net/netip"
)

// Resolver turns a hostname into the single IPv4 address a fetch connects to.
// Resolution is single-shot: the first usable address is returned and nothing else is tried later.
type Resolver interface {
	Resolve(ctx context.Context, hostname string) (netip.Addr, error)
}

var (
	ErrNoAddress   = errors.New("no IPv4 address for host")
	ErrNotIPv4     = errors.New("address literal is not IPv4")
	ErrEmptyName   = errors.New("empty hostname")
	ErrNameUnknown = errors.New("NXDOMAIN")
)

// Literal reports whether hostname is already an IPv4 address, in which case no lookup is needed.
func Literal(hostname string) (netip.Addr, bool) {
	addr, err := netip.ParseAddr(hostname)
	if err != nil {
		return netip.Addr{}, false
	}
	addr = addr.Unmap()
	return addr, addr.Is4()
}

func isLiteral(hostname string) bool {
	_, err := netip.ParseAddr(hostname)
	return err == nil
}

func firstIPv4(addrs []netip.Addr) (netip.Addr, bool) {
	for _, a := range addrs {
		if a = a.Unmap(); a.Is4() {
			return a, true
		}
	}
	return netip.Addr{}, false
}
