/* Draft docs:
*
* CONNECTION
* Every fetch is one fresh connection, used for one request, and closed. There's no pooling, keep-alive, or retry.
* * `--host` is resolved to a single IPv4 address; the first one returned is used, and if connecting to it fails that's the end of it
*   * An IPv4 literal is used as-is
*   * `--resolve host=ip` short-circuits resolution for that host, like curl's option of the same name
* * TCP to that address on `--port`
* * TLS client handshake, verifying the server's chain against the system roots (plus any `--ca`s) and its name against `--host`
*   * `--host` is sent as the SNI ServerName, unless it's an IP literal, in which case none is sent (they aren't valid ServerNames)
* * `GET <path> HTTP/1.1`, `Host: <host>`, `Connection: close`. Nothing else: no Accept, no User-Agent, no compression
* * The response is read until the server closes the connection. That's the only framing used; Content-Length is ignored
* * Headers and body are split at the first blank line. A chunked body (exactly `Transfer-Encoding: chunked`) is de-chunked
*
* DNS
* * `--resolver=system` uses the Go standard library, which may be Go-native or libc's `getaddrinfo()` depending on the build (`get --tls-full` says which)
* * `--resolver=dns` sends A queries straight to the servers in `/etc/resolv.conf` (or `--dns-server`), walking the search path. It ignores `/etc/hosts`
*   * `--dnssec` then validates the answer's chain of trust from the root, and fails the fetch if it doesn't validate
*
* TIMEOUTS
* None by default, matching the behaviour this replaces. `--connect-timeout` bounds the TCP connect and, separately, the TLS handshake.
* `--read-timeout` bounds each read, so a slow-but-steady server is fine but one that goes quiet isn't.
* ^C cancels whatever is in flight.
*
* CONFIG
* Every flag can also be set as MUSLIMKIT_<FLAG> (upper case, - as _), in a `.env` file in the working directory, or in `--config`.
 */

package main
