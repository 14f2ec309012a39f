package fetch

import (
	"net/netip"
	"strings"

	"golang.org/x/net/idna"
)

// NormalizeHost gives the ASCII (punycode) form of host, which is what's resolved, sent as SNI, and
// put in the Host header. Address literals are returned unchanged.
func NormalizeHost(host string) (string, error) {
	if _, err := netip.ParseAddr(host); err == nil {
		return host, nil
	}
	return idna.Lookup.ToASCII(strings.TrimSuffix(host, "."))
}
