package scanning

import (
	"context"
	stderrors "errors"
	"net"
	"syscall"
	"time"

	"github.com/HueCodes/Scuttle/internal/ports"
	"github.com/HueCodes/Scuttle/internal/services"
)

const (
	// udpRetries is how many probes are sent before giving up on a
	// silent port. UDP services drop unrecognized payloads freely, so a
	// single probe proves nothing.
	udpRetries = 2
	// udpRetryDelay separates retries to avoid flooding.
	udpRetryDelay = 100 * time.Millisecond
	// udpReadBufferSize is the receive buffer for probe replies.
	udpReadBufferSize = 1024
)

// udpProbes maps destination ports to protocol-specific payloads that
// known services will actually answer. Ports without an entry get the
// minimal default probe.
var udpProbes = map[int][]byte{
	// DNS query for version.bind
	53: []byte("\x00\x00\x10\x00\x00\x00\x00\x00\x00\x00\x00\x00"),
	// SNMP get-request with "public" community
	161: []byte("\x30\x26\x02\x01\x01\x04\x06public\xa0\x19\x02\x04"),
	// NTP version request
	123: []byte("\xe3\x00\x04\xfa\x00\x01\x00\x00\x00\x01\x00\x00"),
	// TFTP read request
	69: []byte("\x00\x01test\x00netascii\x00"),
	// NetBIOS name query
	137: []byte("\x80\xf0\x00\x10\x00\x01\x00\x00\x00\x00\x00\x00\x20CKAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA\x00\x00\x21\x00\x01"),
}

// defaultUDPProbe is sent to ports with no protocol-specific payload.
var defaultUDPProbe = []byte{0x00}

// probeForPort selects the payload for a destination port.
func probeForPort(port ports.Port) []byte {
	if payload, ok := udpProbes[port.Int()]; ok {
		return payload
	}
	return defaultUDPProbe
}

// UdpScanner probes UDP ports with protocol-specific payloads. Reliable
// closed-port detection depends on seeing ICMP port-unreachable errors,
// which the kernel only delivers on a connected socket and which
// requires privilege to observe in some environments; without it the
// scanner still works but with degraded accuracy.
type UdpScanner struct {
	target  net.IP
	timeout time.Duration
	retries int
}

// NewUdpScanner creates a UDP scanner.
func NewUdpScanner(target net.IP, timeout time.Duration) *UdpScanner {
	return &UdpScanner{
		target:  target,
		timeout: timeout,
		retries: udpRetries,
	}
}

// Type implements Scanner.
func (s *UdpScanner) Type() Type { return TypeUdp }

// RequiresPrivileges implements Scanner.
func (s *UdpScanner) RequiresPrivileges() bool { return true }

// Target implements Scanner.
func (s *UdpScanner) Target() net.IP { return s.target }

// Timeout implements Scanner.
func (s *UdpScanner) Timeout() time.Duration { return s.timeout }

// Close implements Scanner. Sockets are per-probe, nothing is held.
func (s *UdpScanner) Close() error { return nil }

// ScanPort implements Scanner. Any reply payload means open; an ICMP
// port-unreachable surfaced as a refused-connection error means closed;
// silence through all retries is reported as open|filtered, because a
// non-answering port is inherently ambiguous between a silently
// dropping open service and a filtered port.
func (s *UdpScanner) ScanPort(ctx context.Context, port ports.Port) Result {
	service := services.Name(port.Int())
	status := s.probePort(ctx, port)
	return NewResult(port, status, service)
}

func (s *UdpScanner) probePort(ctx context.Context, port ports.Port) Status {
	raddr := &net.UDPAddr{IP: s.target, Port: port.Int()}

	// A connected socket makes the kernel surface ICMP errors for this
	// destination as socket errors on read/write.
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		if isRefusedOrUnreachable(err) {
			return StatusClosed
		}
		return StatusFiltered
	}
	defer conn.Close()

	payload := probeForPort(port)
	buf := make([]byte, udpReadBufferSize)

	for attempt := 0; attempt < s.retries; attempt++ {
		if ctx.Err() != nil {
			return StatusFiltered
		}

		if _, err := conn.Write(payload); err != nil {
			if isRefusedOrUnreachable(err) {
				return StatusClosed
			}
			return StatusFiltered
		}

		_ = conn.SetReadDeadline(time.Now().Add(s.timeout))
		n, err := conn.Read(buf)
		switch {
		case err == nil && n > 0:
			return StatusOpen
		case err != nil && isRefusedOrUnreachable(err):
			return StatusClosed
		}
		// Timeout or an unclassifiable read error: try again.

		if attempt < s.retries-1 {
			time.Sleep(udpRetryDelay)
		}
	}

	return StatusOpenFiltered
}

// isRefusedOrUnreachable detects the socket errors an ICMP
// port-unreachable is surfaced as.
func isRefusedOrUnreachable(err error) bool {
	return stderrors.Is(err, syscall.ECONNREFUSED) ||
		stderrors.Is(err, syscall.EHOSTUNREACH) ||
		stderrors.Is(err, syscall.ENETUNREACH)
}
