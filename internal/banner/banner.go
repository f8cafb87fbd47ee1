// Package banner grabs short text banners from open TCP connections.
// Services that announce themselves (SSH, SMTP, FTP) are read directly;
// HTTP-like ports get a minimal HEAD probe to solicit a response.
package banner

import (
	"net"
	"strings"
	"time"

	"github.com/HueCodes/Scuttle/internal/ports"
)

const (
	// maxBannerSize is the maximum number of bytes read from a service.
	maxBannerSize = 1024
	// maxDisplayLength bounds the sanitized banner length.
	maxDisplayLength = 256
	// readTimeout is how long to wait for banner data.
	readTimeout = 3 * time.Second
)

// httpProbe solicits a response from services that only speak when
// spoken to.
var httpProbe = []byte("HEAD / HTTP/1.0\r\n\r\n")

// httpPorts are ports commonly serving HTTP, where the HEAD probe is
// worth sending.
var httpPorts = map[int]bool{
	80:   true,
	443:  true,
	8000: true,
	8008: true,
	8080: true,
	8081: true,
	8082: true,
	8083: true,
	8443: true,
	8888: true,
	9000: true,
	9090: true,
}

// Grab attempts to read a banner from an already-open connection.
// It first reads whatever the service volunteers; if the service stays
// silent and the port looks like HTTP, it sends a HEAD probe and reads
// again. Returns "" when no banner could be retrieved. The connection
// is left to the caller to close.
func Grab(conn net.Conn, port ports.Port) string {
	buf := make([]byte, maxBannerSize)

	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	if n, err := conn.Read(buf); err == nil && n > 0 {
		return sanitize(buf[:n])
	}

	if !IsHTTPPort(port) {
		return ""
	}

	if _, err := conn.Write(httpProbe); err != nil {
		return ""
	}
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	if n, err := conn.Read(buf); err == nil && n > 0 {
		return sanitize(buf[:n])
	}
	return ""
}

// IsHTTPPort reports whether a port is commonly used for HTTP services.
func IsHTTPPort(port ports.Port) bool {
	return httpPorts[port.Int()]
}

// sanitize reduces raw banner bytes to a bounded, printable string.
// Control bytes become '.', CR/LF/TAB become spaces, and runs of
// whitespace are collapsed.
func sanitize(data []byte) string {
	if len(data) > maxDisplayLength {
		data = data[:maxDisplayLength]
	}

	var b strings.Builder
	b.Grow(len(data))
	prevSpace := false
	for _, c := range data {
		var out byte
		switch {
		case c == '\r' || c == '\n' || c == '\t' || c == ' ':
			out = ' '
		case c > 0x20 && c < 0x7f:
			out = c
		default:
			out = '.'
		}

		if out == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteByte(out)
	}
	return strings.TrimSpace(b.String())
}
