package utils

import (
	"net"
	"net/netip"
	"strings"
)

// ServerNameConformant reports whether name may be sent as a TLS SNI ServerName.
// RFC 6066 §3 allows only DNS hostnames: no address literals (either family), no port.
func ServerNameConformant(name string) bool {
	if name == "" {
		return false
	}
	if _, err := netip.ParseAddr(strings.Trim(name, "[]")); err == nil {
		return false
	}
	if _, _, err := net.SplitHostPort(name); err == nil {
		return false
	}
	return true
}
