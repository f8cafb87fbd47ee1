package scanning

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/HueCodes/Scuttle/internal/errors"
	"github.com/HueCodes/Scuttle/internal/logging"
	"github.com/HueCodes/Scuttle/internal/ports"
	"github.com/HueCodes/Scuttle/internal/services"
	"github.com/google/gopacket/pcap"
)

const (
	// pcapSnapLen is the capture snapshot length; responses of interest
	// are bare TCP headers, but a generous value costs nothing.
	pcapSnapLen = 65535
	// pcapPollInterval bounds how long a capture read blocks, so the
	// receive loop notices handle closure promptly.
	pcapPollInterval = 100 * time.Millisecond
)

// SynScanner performs half-open TCP scanning: it sends hand-crafted
// SYN frames on a link-layer channel and classifies the responses
// without ever completing the handshake. Requires elevated privileges
// for packet capture and injection.
//
// No closing RST is sent after a SYN+ACK. The probing host's kernel has
// no record of the half-open connection and will typically reset it on
// its own when the SYN+ACK arrives; the remote stack otherwise times
// the embryonic connection out.
type SynScanner struct {
	target    net.IP
	srcIP     net.IP
	srcMAC    net.HardwareAddr
	ifaceName string
	timeout   time.Duration

	handle *pcap.Handle
	sendMu sync.Mutex

	// pending maps a probed target port to the channel its probe task
	// is waiting on. The receive loop is the only sender.
	pendingMu sync.Mutex
	pending   map[uint16]chan Status

	closeOnce sync.Once
}

// NewSynScanner creates a SYN scanner for an IPv4 target. The network
// interface is resolved by name, or auto-selected as the first active
// non-loopback interface with an IPv4 address when ifaceName is empty.
// Construction fails fast on IPv6 targets, unresolvable interfaces,
// and missing capture privileges, so the caller can report an
// actionable error before any port is probed.
func NewSynScanner(target net.IP, ifaceName string, timeout time.Duration) (*SynScanner, error) {
	if target.To4() == nil {
		return nil, errors.NewWithTarget(errors.CodeUnsupportedTarget,
			"SYN scanning only supports IPv4 targets", target.String())
	}

	iface, srcIP, err := resolveInterface(ifaceName)
	if err != nil {
		return nil, err
	}

	handle, err := pcap.OpenLive(iface.Name, pcapSnapLen, false, pcapPollInterval)
	if err != nil {
		if isPermissionError(err) {
			return nil, errors.Wrap(errors.CodePermission,
				"raw packet access requires elevated privileges", err)
		}
		return nil, errors.Wrap(errors.CodeRawSocket,
			fmt.Sprintf("failed to open capture on %s", iface.Name), err)
	}

	// Only responses from the target matter; filter everything else in
	// the kernel.
	if err := handle.SetBPFFilter(fmt.Sprintf("tcp and src host %s", target)); err != nil {
		handle.Close()
		return nil, errors.Wrap(errors.CodeRawSocket, "failed to set capture filter", err)
	}

	s := &SynScanner{
		target:    target.To4(),
		srcIP:     srcIP,
		srcMAC:    iface.HardwareAddr,
		ifaceName: iface.Name,
		timeout:   timeout,
		handle:    handle,
		pending:   make(map[uint16]chan Status),
	}
	go s.receiveLoop()
	return s, nil
}

// Type implements Scanner.
func (s *SynScanner) Type() Type { return TypeSyn }

// RequiresPrivileges implements Scanner.
func (s *SynScanner) RequiresPrivileges() bool { return true }

// Target implements Scanner.
func (s *SynScanner) Target() net.IP { return s.target }

// Timeout implements Scanner.
func (s *SynScanner) Timeout() time.Duration { return s.timeout }

// Interface returns the resolved capture interface name.
func (s *SynScanner) Interface() string { return s.ifaceName }

// Close releases the capture handle and stops the receive loop.
func (s *SynScanner) Close() error {
	s.closeOnce.Do(func() {
		s.handle.Close()
	})
	return nil
}

// ScanPort implements Scanner. A SYN+ACK response means open, an RST
// means closed, and silence until the timeout means filtered. Send
// failures and malformed captures degrade to filtered rather than
// aborting the job.
func (s *SynScanner) ScanPort(ctx context.Context, port ports.Port) Result {
	service := services.Name(port.Int())

	frame, srcPort, err := buildSynFrame(s.srcMAC, s.srcIP, s.target, port)
	if err != nil {
		logging.Debug("SYN frame construction failed", "port", port, "error", err)
		return NewResult(port, StatusFiltered, service)
	}

	respCh := s.register(uint16(port.Int()))
	defer s.deregister(uint16(port.Int()))

	start := time.Now()
	s.sendMu.Lock()
	err = s.handle.WritePacketData(frame)
	s.sendMu.Unlock()
	if err != nil {
		if isPermissionError(err) {
			logging.Warn("SYN probe denied, raw packet injection requires elevated privileges",
				"interface", s.ifaceName, "error", err)
		} else {
			logging.Debug("SYN probe send failed", "port", port, "src_port", srcPort, "error", err)
		}
		return NewResult(port, StatusFiltered, service)
	}

	select {
	case status := <-respCh:
		result := NewResult(port, status, service)
		if status == StatusOpen || status == StatusClosed {
			result = result.WithResponseTime(time.Since(start))
		}
		return result
	case <-time.After(s.timeout):
		return NewResult(port, StatusFiltered, service)
	case <-ctx.Done():
		return NewResult(port, StatusFiltered, service)
	}
}

// receiveLoop reads captured frames and dispatches classifications to
// the probe tasks waiting on them. It exits when the handle is closed.
func (s *SynScanner) receiveLoop() {
	for {
		data, _, err := s.handle.ReadPacketData()
		if err != nil {
			if err == pcap.NextErrorTimeoutExpired {
				continue
			}
			// Handle closed or unrecoverable capture error.
			return
		}

		port, status, ok := classifySynResponse(data, s.target)
		if !ok {
			continue
		}

		s.pendingMu.Lock()
		ch := s.pending[port]
		s.pendingMu.Unlock()
		if ch != nil {
			select {
			case ch <- status:
			default:
				// Probe already resolved; drop the duplicate.
			}
		}
	}
}

func (s *SynScanner) register(port uint16) chan Status {
	ch := make(chan Status, 1)
	s.pendingMu.Lock()
	s.pending[port] = ch
	s.pendingMu.Unlock()
	return ch
}

func (s *SynScanner) deregister(port uint16) {
	s.pendingMu.Lock()
	delete(s.pending, port)
	s.pendingMu.Unlock()
}

// resolveInterface finds the capture interface and its IPv4 source
// address. An explicit name must exist; otherwise the first up,
// non-loopback interface with an IPv4 address is selected.
func resolveInterface(name string) (*net.Interface, net.IP, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, nil, errors.Wrap(errors.CodeRawSocket, "failed to enumerate network interfaces", err)
	}

	if name != "" {
		for i := range ifaces {
			if ifaces[i].Name == name {
				ip, err := interfaceIPv4(&ifaces[i])
				if err != nil {
					return nil, nil, err
				}
				return &ifaces[i], ip, nil
			}
		}
		return nil, nil, errors.Newf(errors.CodeInterfaceNotFound, "interface not found: %s", name)
	}

	for i := range ifaces {
		iface := &ifaces[i]
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if ip, err := interfaceIPv4(iface); err == nil {
			return iface, ip, nil
		}
	}
	return nil, nil, errors.New(errors.CodeInterfaceNotFound, "no suitable network interface found")
}

// interfaceIPv4 returns the interface's first non-loopback IPv4
// address.
func interfaceIPv4(iface *net.Interface) (net.IP, error) {
	addrs, err := iface.Addrs()
	if err != nil {
		return nil, errors.Wrap(errors.CodeConfiguration,
			fmt.Sprintf("failed to read addresses of interface %s", iface.Name), err)
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		if v4 := ipNet.IP.To4(); v4 != nil && !v4.IsLoopback() {
			return v4, nil
		}
	}
	return nil, errors.Newf(errors.CodeConfiguration, "interface %s has no usable IPv4 address", iface.Name)
}

// isPermissionError detects privilege failures from the textual markers
// libpcap surfaces them with, so they can be reported distinctly from
// generic I/O failures.
func isPermissionError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "permission") || strings.Contains(msg, "operation not permitted")
}
