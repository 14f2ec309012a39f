package resolver

import (
	"context"
	"net"
	"net/netip"

	"github.com/go-logr/logr"

	httperrors "github.com/mt-inside/muslimkit/pkg/errors"
)

// System resolves through the Go standard library, ie whatever the platform is configured to do
// (see SystemResolverName for which implementation that is).
type System struct {
	// Resolver defaults to net.DefaultResolver
	Resolver *net.Resolver
	Log      logr.Logger
}

func NewSystem(log logr.Logger) *System {
	return &System{Log: log}
}

func (s *System) Resolve(ctx context.Context, hostname string) (netip.Addr, error) {
	op := "lookup " + hostname

	if hostname == "" {
		return netip.Addr{}, httperrors.New(httperrors.ResolutionError, op, ErrEmptyName)
	}
	if addr, ok := Literal(hostname); ok {
		return addr, nil
	} else if isLiteral(hostname) {
		return netip.Addr{}, httperrors.New(httperrors.ResolutionError, op, ErrNotIPv4)
	}

	r := s.Resolver
	if r == nil {
		r = net.DefaultResolver
	}

	s.Log.V(1).Info("Resolving", "name", hostname, "resolver", SystemResolverName)
	addrs, err := r.LookupNetIP(ctx, "ip4", hostname)
	if err != nil {
		return netip.Addr{}, httperrors.New(httperrors.ResolutionError, op, err)
	}
	if len(addrs) > 1 {
		s.Log.V(1).Info("Host resolves to >1 IP, using first", "name", hostname, "count", len(addrs))
	}

	addr, ok := firstIPv4(addrs)
	if !ok {
		return netip.Addr{}, httperrors.New(httperrors.ResolutionError, op, ErrNoAddress)
	}
	return addr, nil
}
