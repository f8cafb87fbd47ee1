// Package ports provides validated port number types and port
// specification parsing for scuttle. A Port is guaranteed to be in the
// valid range (1-65535); invalid values are rejected at construction so
// the rest of the scanner never has to re-check them.
package ports

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	// Min is the lowest valid port number.
	Min = 1
	// Max is the highest valid port number.
	Max = 65535

	// privilegedBoundary is the first non-privileged port.
	privilegedBoundary = 1024
	// ephemeralStart is the first port in the ephemeral range.
	ephemeralStart = 49152
)

// Port is a validated network port number (1-65535).
type Port uint16

// New creates a Port, rejecting values outside the valid range.
func New(n int) (Port, error) {
	if n < Min || n > Max {
		return 0, fmt.Errorf("port %d is out of valid range (%d-%d)", n, Min, Max)
	}
	return Port(n), nil
}

// MustNew creates a Port and panics on invalid input. For use with
// values known valid at compile time, such as built-in port lists.
func MustNew(n int) Port {
	p, err := New(n)
	if err != nil {
		panic(err)
	}
	return p
}

// Int returns the port number as an int.
func (p Port) Int() int { return int(p) }

// IsPrivileged reports whether the port is in the privileged range (<1024).
func (p Port) IsPrivileged() bool { return p < privilegedBoundary }

// IsEphemeral reports whether the port is in the ephemeral range (49152-65535).
func (p Port) IsEphemeral() bool { return p >= ephemeralStart }

func (p Port) String() string { return strconv.Itoa(int(p)) }

// Range is an inclusive range of ports.
type Range struct {
	Start Port
	End   Port
}

// NewRange creates a validated port range.
func NewRange(start, end Port) (Range, error) {
	if start > end {
		return Range{}, fmt.Errorf("invalid port range: start (%d) > end (%d)", start, end)
	}
	return Range{Start: start, End: end}, nil
}

// Len returns the number of ports in the range.
func (r Range) Len() int { return int(r.End) - int(r.Start) + 1 }

// Ports expands the range to individual ports.
func (r Range) Ports() []Port {
	out := make([]Port, 0, r.Len())
	for p := int(r.Start); p <= int(r.End); p++ {
		out = append(out, Port(p))
	}
	return out
}

func (r Range) String() string {
	if r.Start == r.End {
		return r.Start.String()
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Spec is a port specification composed of one or more ranges, as
// written on the command line: "80", "80,443", "1-1000", or a mix like
// "22,80,443,8000-9000".
type Spec struct {
	ranges []Range
}

// ParseSpec parses a port specification string.
func ParseSpec(s string) (Spec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Spec{}, fmt.Errorf("empty port specification")
	}

	var spec Spec
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		r, err := parsePart(part)
		if err != nil {
			return Spec{}, err
		}
		spec.ranges = append(spec.ranges, r)
	}
	return spec, nil
}

func parsePart(part string) (Range, error) {
	if strings.Contains(part, "-") {
		bounds := strings.SplitN(part, "-", 2)
		start, err := parsePort(bounds[0])
		if err != nil {
			return Range{}, err
		}
		end, err := parsePort(bounds[1])
		if err != nil {
			return Range{}, err
		}
		return NewRange(start, end)
	}

	p, err := parsePort(part)
	if err != nil {
		return Range{}, err
	}
	return Range{Start: p, End: p}, nil
}

func parsePort(s string) (Port, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid port number: %q", s)
	}
	return New(n)
}

// Ports returns all ports in the spec, sorted ascending and deduplicated.
func (s Spec) Ports() []Port {
	var out []Port
	for _, r := range s.ranges {
		out = append(out, r.Ports()...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	dedup := out[:0]
	var prev Port
	for i, p := range out {
		if i == 0 || p != prev {
			dedup = append(dedup, p)
		}
		prev = p
	}
	return dedup
}

// Count returns the number of distinct ports in the spec.
func (s Spec) Count() int { return len(s.Ports()) }

// IsEmpty reports whether the spec contains no ranges.
func (s Spec) IsEmpty() bool { return len(s.ranges) == 0 }

func (s Spec) String() string {
	parts := make([]string, 0, len(s.ranges))
	for _, r := range s.ranges {
		parts = append(parts, r.String())
	}
	return strings.Join(parts, ",")
}

// top100 lists the most commonly open ports, used by the "quick" profile.
var top100 = []int{
	7, 9, 13, 21, 22, 23, 25, 26, 37, 53, 79, 80, 81, 88, 106, 110, 111,
	113, 119, 135, 139, 143, 144, 179, 199, 389, 427, 443, 444, 445, 465,
	513, 514, 515, 543, 544, 548, 554, 587, 631, 646, 873, 990, 993, 995,
	1025, 1026, 1027, 1028, 1029, 1110, 1433, 1720, 1723, 1755, 1900,
	2000, 2001, 2049, 2121, 2717, 3000, 3128, 3306, 3389, 3986, 4899,
	5000, 5009, 5051, 5060, 5101, 5190, 5357, 5432, 5631, 5666, 5800,
	5900, 6000, 6001, 6646, 7070, 8000, 8008, 8009, 8080, 8081, 8443,
	8888, 9100, 9999, 10000, 32768, 49152, 49153, 49154, 49155, 49156,
	49157,
}

// Top100 returns a spec covering the hundred most common ports.
func Top100() Spec {
	var spec Spec
	for _, n := range top100 {
		p := MustNew(n)
		spec.ranges = append(spec.ranges, Range{Start: p, End: p})
	}
	return spec
}

// Full returns a spec covering the entire valid port range.
func Full() Spec {
	return Spec{ranges: []Range{{Start: Min, End: Max}}}
}
