package scanning

import (
	"context"
	"net"
	"time"

	"github.com/HueCodes/Scuttle/internal/errors"
	"github.com/HueCodes/Scuttle/internal/ports"
)

// Scanner is the capability contract implemented by each probing
// technique. A scanner is selected once per job and used polymorphically
// by the orchestrator; implementations mutate no shared state.
type Scanner interface {
	// Type identifies the probing technique.
	Type() Type

	// RequiresPrivileges reports whether the technique needs raw socket
	// access or ICMP visibility.
	RequiresPrivileges() bool

	// ScanPort probes a single port. It never fails outward: all
	// internal errors are mapped to a Status (typically filtered) so
	// one unreachable port cannot abort the job.
	ScanPort(ctx context.Context, port ports.Port) Result

	// Target returns the address being probed.
	Target() net.IP

	// Timeout returns the configured per-probe timeout.
	Timeout() time.Duration

	// Close releases any resources held by the scanner. Safe to call
	// more than once.
	Close() error
}

// NewScanner constructs the scanner for a technique. Construction is
// the only place a strategy may fail; configuration and privilege
// errors surface here, before any port is probed.
func NewScanner(t Type, cfg Config) (Scanner, error) {
	if cfg.Target == nil {
		return nil, errors.New(errors.CodeConfiguration, "scan target is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	switch t {
	case TypeConnect:
		return NewConnectScanner(cfg.Target, cfg.Timeout, cfg.GrabBanners), nil
	case TypeSyn:
		return NewSynScanner(cfg.Target, cfg.Interface, cfg.Timeout)
	case TypeUdp:
		return NewUdpScanner(cfg.Target, cfg.Timeout), nil
	default:
		return nil, errors.Newf(errors.CodeConfiguration, "unknown scan type: %v", t)
	}
}
