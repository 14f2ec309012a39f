package resolver

import (
	"context"
	"fmt"
	"net/netip"
	"strings"

	httperrors "github.com/mt-inside/muslimkit/pkg/errors"
)

// Static answers from a fixed table, like curl's --resolve. Names not in the table go to Fallback, if set.
type Static struct {
	Hosts    map[string]netip.Addr
	Fallback Resolver
}

func (s *Static) Resolve(ctx context.Context, hostname string) (netip.Addr, error) {
	if addr, ok := Literal(hostname); ok {
		return addr, nil
	}
	if addr, ok := s.Hosts[strings.ToLower(hostname)]; ok {
		return addr, nil
	}
	if s.Fallback != nil {
		return s.Fallback.Resolve(ctx, hostname)
	}
	return netip.Addr{}, httperrors.New(httperrors.ResolutionError, "static lookup "+hostname, ErrNameUnknown)
}

// ParseStatic reads "host=ip" pairs.
func ParseStatic(pairs []string) (map[string]netip.Addr, error) {
	hosts := make(map[string]netip.Addr, len(pairs))
	for _, p := range pairs {
		host, ip, ok := strings.Cut(p, "=")
		if !ok || host == "" {
			return nil, fmt.Errorf("static host entry %q: want host=ip", p)
		}
		addr, ok := Literal(ip)
		if !ok {
			return nil, fmt.Errorf("static host entry %q: %w", p, ErrNotIPv4)
		}
		hosts[strings.ToLower(host)] = addr
	}
	return hosts, nil
}
