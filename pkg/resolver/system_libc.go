//go:build cgo && !netgo

package resolver

/* Which lookup code System ends up calling is decided at link time, and can't be asked at runtime.
* This mirrors the linker's choice: libc's getaddrinfo() iff cgo is on and netgo isn't forced.
* CGO_ENABLED=0 doesn't set the netgo tag, hence the cgo constraint as well.
*
*         netgo  !netgo
* cgo     go     libc
* !cgo    go     go
 */

const SystemResolverName = "cgo (libc getaddrinfo(), honours nsswitch.conf)"
