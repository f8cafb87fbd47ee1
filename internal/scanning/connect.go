package scanning

import (
	"context"
	stderrors "errors"
	"net"
	"syscall"
	"time"

	"github.com/HueCodes/Scuttle/internal/banner"
	"github.com/HueCodes/Scuttle/internal/ports"
	"github.com/HueCodes/Scuttle/internal/services"
)

// ConnectScanner performs full-handshake TCP connect scans using the
// operating system's socket API. It is the most reliable technique and
// the only one needing no privileges, but it completes the handshake
// and is therefore easily logged by the target.
type ConnectScanner struct {
	target      net.IP
	timeout     time.Duration
	grabBanners bool
}

// NewConnectScanner creates a TCP connect scanner.
func NewConnectScanner(target net.IP, timeout time.Duration, grabBanners bool) *ConnectScanner {
	return &ConnectScanner{
		target:      target,
		timeout:     timeout,
		grabBanners: grabBanners,
	}
}

// Type implements Scanner.
func (s *ConnectScanner) Type() Type { return TypeConnect }

// RequiresPrivileges implements Scanner.
func (s *ConnectScanner) RequiresPrivileges() bool { return false }

// Target implements Scanner.
func (s *ConnectScanner) Target() net.IP { return s.target }

// Timeout implements Scanner.
func (s *ConnectScanner) Timeout() time.Duration { return s.timeout }

// Close implements Scanner. Connect scans hold no resources.
func (s *ConnectScanner) Close() error { return nil }

// ScanPort implements Scanner. Refused connections are closed, timeouts
// and unreachable errors are filtered, and any other I/O failure is
// conservatively reported closed. A connect scan always resolves
// definitively; it never reports open|filtered.
func (s *ConnectScanner) ScanPort(ctx context.Context, port ports.Port) Result {
	addr := net.JoinHostPort(s.target.String(), port.String())
	service := services.Name(port.Int())

	dialer := net.Dialer{Timeout: s.timeout}
	start := time.Now()
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	elapsed := time.Since(start)

	if err != nil {
		return NewResult(port, classifyConnectError(err), service)
	}
	defer conn.Close()

	result := NewResult(port, StatusOpen, service).WithResponseTime(elapsed)
	if s.grabBanners {
		result = result.WithBanner(banner.Grab(conn, port))
	}
	return result
}

// classifyConnectError maps a dial error to a port status.
func classifyConnectError(err error) Status {
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return StatusFiltered
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return StatusFiltered
	}

	switch {
	case stderrors.Is(err, syscall.ECONNREFUSED):
		return StatusClosed
	case stderrors.Is(err, syscall.EHOSTUNREACH), stderrors.Is(err, syscall.ENETUNREACH):
		return StatusFiltered
	default:
		// Anything else (reset mid-handshake, address errors) is
		// treated as closed rather than aborting the job.
		return StatusClosed
	}
}
