//go:build !cgo || netgo

package resolver

// See system_libc.go for the truth table.
const SystemResolverName = "Go native (reads /etc/hosts and resolv.conf itself; ignores nsswitch beyond files/dns)"
