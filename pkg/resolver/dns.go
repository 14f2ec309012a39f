package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/go-logr/logr"
	"github.com/miekg/dns"
	"github.com/peterzen/goresolver"

	httperrors "github.com/mt-inside/muslimkit/pkg/errors"
)

const (
	DefaultResolvConf = "/etc/resolv.conf"
	defaultDNSTimeout = 5 * time.Second
)

var ErrDNSSEC = errors.New("DNSSEC validation failed")

// DNS resolves by asking DNS servers directly, rather than going through the platform.
// This only ever looks in DNS: /etc/hosts, mDNS, and the rest of nsswitch are ignored.
type DNS struct {
	// Servers are host:port. If empty, the nameservers and search list come from ResolvConf.
	Servers []string
	// ResolvConf defaults to DefaultResolvConf
	ResolvConf string
	// Timeout bounds each exchange with a server. Defaults to 5s.
	Timeout time.Duration
	// DNSSEC requires the answer to validate all the way from the root. The chain is walked with the
	// nameservers in ResolvConf, even when Servers is set, so it may be checked against different
	// servers than the ones that answered.
	DNSSEC bool

	Log logr.Logger
}

func (d *DNS) resolvConf() string {
	if d.ResolvConf == "" {
		return DefaultResolvConf
	}
	return d.ResolvConf
}

// serversAndNames gives the servers to try in order, and the FQDNs to try on each.
func (d *DNS) serversAndNames(name string) ([]string, []string, error) {
	if len(d.Servers) > 0 {
		return d.Servers, []string{dns.Fqdn(name)}, nil
	}

	dnsConfig, err := dns.ClientConfigFromFile(d.resolvConf())
	if err != nil {
		return nil, nil, fmt.Errorf("reading resolver config: %w", err)
	}

	var servers []string
	for _, s := range dnsConfig.Servers {
		servers = append(servers, net.JoinHostPort(s, dnsConfig.Port))
	}
	return servers, dnsConfig.NameList(name), nil
}

func (d *DNS) Resolve(ctx context.Context, hostname string) (netip.Addr, error) {
	op := "dns query " + hostname

	if hostname == "" {
		return netip.Addr{}, httperrors.New(httperrors.ResolutionError, op, ErrEmptyName)
	}
	if addr, ok := Literal(hostname); ok {
		return addr, nil
	} else if isLiteral(hostname) {
		return netip.Addr{}, httperrors.New(httperrors.ResolutionError, op, ErrNotIPv4)
	}

	servers, names, err := d.serversAndNames(hostname)
	if err != nil {
		return netip.Addr{}, httperrors.New(httperrors.ResolutionError, op, err)
	}

	timeout := d.Timeout
	if timeout == 0 {
		timeout = defaultDNSTimeout
	}
	c := dns.Client{
		Dialer: &net.Dialer{Timeout: timeout},
	}

	var lastErr error = ErrNameUnknown
serversLoop:
	for _, server := range servers {
		d.Log.V(1).Info("Trying DNS server", "addr", server)

		for _, name := range names {
			d.Log.V(1).Info("Trying search path item", "fqdn", name)

			m := new(dns.Msg)
			// Asks the server to recurse for us. Doing the recursion ourselves would gain nothing but latency
			m.SetQuestion(name, dns.TypeA)

			in, _, err := c.ExchangeContext(ctx, m, server)
			if err != nil {
				lastErr = err
				continue serversLoop
			}
			if in.Rcode != dns.RcodeSuccess {
				d.Log.V(1).Info("No such name", "fqdn", name, "rcode", dns.RcodeToString[in.Rcode])
				continue
			}

			addr, ok := firstA(in.Answer)
			if !ok {
				continue
			}
			d.Log.V(1).Info("Answered", "fqdn", name, "server", server, "addr", addr, "authoritative", in.Authoritative)

			if d.DNSSEC {
				if err := d.validate(name); err != nil {
					return netip.Addr{}, httperrors.New(httperrors.ResolutionError, op, err)
				}
			}
			return addr, nil
		}

		// This server answered for every name, just not with anything; asking the next one won't change that
		return netip.Addr{}, httperrors.New(httperrors.ResolutionError, op, ErrNameUnknown)
	}

	return netip.Addr{}, httperrors.New(httperrors.ResolutionError, op, fmt.Errorf("all DNS servers failed: %w", lastErr))
}

/* CNAMEs can only point to one thing, and servers return the whole chain in one Answer section, so the
* first A record in the section is the end of the chain.
 */
func firstA(answers []dns.RR) (netip.Addr, bool) {
	for _, rr := range answers {
		if a, ok := rr.(*dns.A); ok {
			if addr, ok := netip.AddrFromSlice(a.A.To4()); ok {
				return addr, true
			}
		}
	}
	return netip.Addr{}, false
}

/* Recursive resolvers are known to strip DNSSEC records, let alone validate them, so asking the configured
* server for the AD bit proves nothing. goresolver walks the chain of trust itself. It only takes its
* servers from a resolv.conf file, which can't carry a port, so Servers can't be handed to it.
 */
func (d *DNS) validate(fqdn string) error {
	d.Log.V(1).Info("Validating DNSSEC", "fqdn", fqdn, "resolvConf", d.resolvConf())
	resolver, err := goresolver.NewResolver(d.resolvConf())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDNSSEC, err)
	}

	if _, err := resolver.StrictNSQuery(fqdn, dns.TypeA); err != nil {
		return fmt.Errorf("%w: %v", ErrDNSSEC, err)
	}
	d.Log.V(1).Info("DNSSEC ok", "fqdn", fqdn)

	return nil
}
