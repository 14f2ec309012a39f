package parser

// The request is fixed-form. "Connection: close" is what delimits the response: the peer closes the
// stream after the last byte, so reading to EOF reads exactly one response.
const (
	requestLinePrefix = "GET "
	requestLineSuffix = " HTTP/1.1\r\nHost: "
	requestTrailer    = "\r\nConnection: close\r\n\r\n"
)

// RequestLen is the exact number of bytes BuildGet renders for host and path.
func RequestLen(host, path string) int {
	return len(requestLinePrefix) + len(path) + len(requestLineSuffix) + len(host) + len(requestTrailer)
}

// BuildGet renders "GET {path} HTTP/1.1\r\nHost: {host}\r\nConnection: close\r\n\r\n".
// path is opaque; it is sent as given.
func BuildGet(host, path string) []byte {
	req := make([]byte, 0, RequestLen(host, path))
	req = append(req, requestLinePrefix...)
	req = append(req, path...)
	req = append(req, requestLineSuffix...)
	req = append(req, host...)
	req = append(req, requestTrailer...)
	return req
}
