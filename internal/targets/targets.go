// Package targets parses and resolves scan target specifications.
// A specification can be a single IP address, a CIDR network, or a
// hostname; hostnames are resolved with a direct DNS query against the
// system's configured nameservers, falling back to the default
// resolver.
package targets

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/HueCodes/Scuttle/internal/errors"
	"github.com/miekg/dns"
)

// MaxCIDRHosts caps how many hosts a CIDR specification may expand to.
const MaxCIDRHosts = 65536

// Target is a single scan target resolved to an IP address.
type Target struct {
	// Original is the input as the user wrote it (hostname or IP).
	Original string `json:"original"`
	// IP is the resolved address.
	IP net.IP `json:"ip"`
}

// NewTarget creates a resolved target.
func NewTarget(original string, ip net.IP) Target {
	return Target{Original: original, IP: ip}
}

// IsIPv4 reports whether the target resolved to an IPv4 address.
func (t Target) IsIPv4() bool { return t.IP.To4() != nil }

// IsIPv6 reports whether the target resolved to an IPv6 address.
func (t Target) IsIPv6() bool { return !t.IsIPv4() }

func (t Target) String() string {
	if t.Original == t.IP.String() {
		return t.IP.String()
	}
	return fmt.Sprintf("%s (%s)", t.Original, t.IP)
}

// specKind discriminates the parsed forms of a specification.
type specKind int

const (
	kindSingle specKind = iota
	kindCIDR
	kindHostname
)

// Spec is a parsed target specification.
type Spec struct {
	kind     specKind
	ip       net.IP
	network  *net.IPNet
	hostname string
	raw      string
}

// ParseSpec parses a target specification string. CIDR ranges larger
// than MaxCIDRHosts are rejected up front so a typo cannot trigger a
// multi-million host scan.
func ParseSpec(s string) (Spec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Spec{}, errors.New(errors.CodeTargetInvalid, "empty target specification")
	}

	if ip := net.ParseIP(s); ip != nil {
		return Spec{kind: kindSingle, ip: ip, raw: s}, nil
	}

	if strings.Contains(s, "/") {
		_, network, err := net.ParseCIDR(s)
		if err != nil {
			return Spec{}, errors.Wrap(errors.CodeTargetInvalid, fmt.Sprintf("invalid CIDR notation: %s", s), err)
		}
		if count := cidrHostCount(network); count > MaxCIDRHosts {
			return Spec{}, errors.Newf(errors.CodeTargetInvalid,
				"CIDR range too large: %d addresses (max %d)", count, MaxCIDRHosts)
		}
		return Spec{kind: kindCIDR, network: network, raw: s}, nil
	}

	if !validHostname(s) {
		return Spec{}, errors.Newf(errors.CodeTargetInvalid, "invalid target format: %s", s)
	}
	return Spec{kind: kindHostname, hostname: s, raw: s}, nil
}

// IsHostname reports whether the spec requires DNS resolution.
func (s Spec) IsHostname() bool { return s.kind == kindHostname }

func (s Spec) String() string { return s.raw }

// Resolve expands the specification into concrete targets.
func (s Spec) Resolve(ctx context.Context) ([]Target, error) {
	switch s.kind {
	case kindSingle:
		return []Target{NewTarget(s.raw, s.ip)}, nil
	case kindCIDR:
		return expandCIDR(s.raw, s.network), nil
	case kindHostname:
		ip, err := resolveHostname(ctx, s.hostname)
		if err != nil {
			return nil, err
		}
		return []Target{NewTarget(s.hostname, ip)}, nil
	default:
		return nil, errors.Newf(errors.CodeTargetInvalid, "unresolvable target specification: %s", s.raw)
	}
}

func cidrHostCount(network *net.IPNet) uint64 {
	ones, bits := network.Mask.Size()
	if bits-ones >= 63 {
		return 1 << 62 // saturate, already far beyond the cap
	}
	return 1 << uint(bits-ones)
}

func expandCIDR(raw string, network *net.IPNet) []Target {
	var out []Target
	for ip := network.IP.Mask(network.Mask); network.Contains(ip); ip = nextIP(ip) {
		dup := make(net.IP, len(ip))
		copy(dup, ip)
		out = append(out, NewTarget(dup.String(), dup))
	}
	return out
}

func nextIP(ip net.IP) net.IP {
	next := make(net.IP, len(ip))
	copy(next, ip)
	for i := len(next) - 1; i >= 0; i-- {
		next[i]++
		if next[i] != 0 {
			break
		}
	}
	return next
}

func validHostname(s string) bool {
	if len(s) > 253 {
		return false
	}
	for _, label := range strings.Split(s, ".") {
		if label == "" || len(label) > 63 {
			return false
		}
		for _, c := range label {
			if !(c == '-' || c == '_' ||
				(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
				return false
			}
		}
	}
	return true
}

// resolveHostname queries the system's nameservers directly for an A
// record, preferring IPv4. When no nameserver answers (or none is
// configured) it falls back to the default Go resolver.
func resolveHostname(ctx context.Context, hostname string) (net.IP, error) {
	if ip := queryNameservers(ctx, hostname); ip != nil {
		return ip, nil
	}

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, hostname)
	if err != nil {
		return nil, errors.WrapWithTarget(errors.CodeResolutionFailed,
			fmt.Sprintf("failed to resolve hostname %q", hostname), hostname, err)
	}
	// Prefer an IPv4 address when the host has both families.
	for _, addr := range addrs {
		if addr.IP.To4() != nil {
			return addr.IP, nil
		}
	}
	for _, addr := range addrs {
		return addr.IP, nil
	}
	return nil, errors.NewWithTarget(errors.CodeResolutionFailed,
		fmt.Sprintf("no IP addresses found for hostname %q", hostname), hostname)
}

func queryNameservers(ctx context.Context, hostname string) net.IP {
	conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(conf.Servers) == 0 {
		return nil
	}

	fqdn := dns.Fqdn(hostname)
	client := &dns.Client{}
	msg := &dns.Msg{}
	msg.SetQuestion(fqdn, dns.TypeA)
	msg.RecursionDesired = true

	for _, server := range conf.Servers {
		resp, _, err := client.ExchangeContext(ctx, msg, net.JoinHostPort(server, conf.Port))
		if err != nil || resp == nil || resp.Rcode != dns.RcodeSuccess {
			continue
		}
		for _, rr := range resp.Answer {
			if a, ok := rr.(*dns.A); ok {
				return a.A
			}
		}
	}
	return nil
}
