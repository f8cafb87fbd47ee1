package scanning

import (
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/HueCodes/Scuttle/internal/ports"
)

// Status is the determined reachability state of a scanned port.
type Status int

const (
	// StatusOpen means a service is listening.
	StatusOpen Status = iota
	// StatusClosed means no service is listening (RST or refusal received).
	StatusClosed
	// StatusFiltered means no response, possibly dropped by a firewall.
	StatusFiltered
	// StatusOpenFiltered means the technique cannot distinguish open
	// from filtered. Only UDP probes produce it.
	StatusOpenFiltered
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	case StatusFiltered:
		return "filtered"
	case StatusOpenFiltered:
		return "open|filtered"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ParseStatus parses the wire representation of a status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "open":
		return StatusOpen, nil
	case "closed":
		return StatusClosed, nil
	case "filtered":
		return StatusFiltered, nil
	case "open|filtered":
		return StatusOpenFiltered, nil
	default:
		return 0, fmt.Errorf("unknown port status: %q", s)
	}
}

// MarshalJSON encodes the status as its string form.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes the string form of a status.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Type identifies a probing technique.
type Type int

const (
	// TypeConnect is a full-handshake TCP connect scan.
	TypeConnect Type = iota
	// TypeSyn is a half-open SYN stealth scan.
	TypeSyn
	// TypeUdp is a UDP probe scan.
	TypeUdp
)

func (t Type) String() string {
	switch t {
	case TypeConnect:
		return "TCP Connect"
	case TypeSyn:
		return "SYN Stealth"
	case TypeUdp:
		return "UDP"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Key returns the short machine-readable name used in flags, config
// files, and metric labels.
func (t Type) Key() string {
	switch t {
	case TypeConnect:
		return "connect"
	case TypeSyn:
		return "syn"
	case TypeUdp:
		return "udp"
	default:
		return "unknown"
	}
}

// ParseType parses a scan type name, accepting the aliases users
// actually reach for.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "connect", "tcp":
		return TypeConnect, nil
	case "syn", "stealth":
		return TypeSyn, nil
	case "udp":
		return TypeUdp, nil
	default:
		return 0, fmt.Errorf("unknown scan type: %q", s)
	}
}

// Result is the outcome of probing a single port. It is produced
// exactly once per scanned port and is immutable afterwards.
type Result struct {
	Port    ports.Port `json:"port"`
	Status  Status     `json:"status"`
	Service string     `json:"service"`
	// Banner is the captured service banner, empty when none was read.
	Banner string `json:"banner,omitempty"`
	// ResponseTimeMs is the probe round-trip time, nil when the probe
	// resolved without a measurable response.
	ResponseTimeMs *int64 `json:"response_time_ms,omitempty"`
}

// NewResult creates a result for a port.
func NewResult(port ports.Port, status Status, service string) Result {
	return Result{Port: port, Status: status, Service: service}
}

// WithBanner attaches a banner to the result.
func (r Result) WithBanner(banner string) Result {
	r.Banner = banner
	return r
}

// WithResponseTime attaches the measured round-trip time.
func (r Result) WithResponseTime(d time.Duration) Result {
	ms := d.Milliseconds()
	r.ResponseTimeMs = &ms
	return r
}

// IsOpen reports whether the port may have a listening service.
func (r Result) IsOpen() bool {
	return r.Status == StatusOpen || r.Status == StatusOpenFiltered
}

// DefaultTimeout is the per-probe timeout applied when none is
// configured.
const DefaultTimeout = 3 * time.Second

// Config holds the per-scan parameters shared by all strategies.
// It is constructed once before a scan and read-only afterwards.
type Config struct {
	// Target is the resolved address to probe.
	Target net.IP
	// TargetName is the display name (hostname when resolved from one).
	TargetName string
	// Timeout bounds each individual probe.
	Timeout time.Duration
	// GrabBanners enables banner capture on open TCP connections.
	GrabBanners bool
	// Interface optionally names the network interface for raw-packet
	// scans; empty means auto-select.
	Interface string
}

// NewConfig creates a scan configuration with defaults applied.
func NewConfig(target net.IP) Config {
	return Config{
		Target:     target,
		TargetName: target.String(),
		Timeout:    DefaultTimeout,
	}
}
