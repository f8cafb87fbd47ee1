package scanning

import (
	"math/rand/v2"
	"net"

	"github.com/HueCodes/Scuttle/internal/errors"
	"github.com/HueCodes/Scuttle/internal/ports"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const (
	// ephemeralPortStart and ephemeralPortEnd bound the randomized
	// source port for outbound SYN probes.
	ephemeralPortStart = 49152
	ephemeralPortEnd   = 65535

	// synTTL is the IP time-to-live on outbound probes.
	synTTL = 64
	// synWindow is the advertised TCP window on outbound probes.
	synWindow = 65535
)

// randEphemeralPort returns a random source port in 49152-65535.
func randEphemeralPort() uint16 {
	return uint16(ephemeralPortStart + rand.N(ephemeralPortEnd-ephemeralPortStart+1))
}

// buildSynFrame constructs a complete link-layer frame carrying a
// minimal IPv4 header and a TCP SYN segment for the given destination
// port. The IPv4 header checksum and the TCP checksum (over the IPv4
// pseudo-header) are computed during serialization. The randomized
// source port is returned alongside the frame.
//
// The destination MAC is broadcast; proper neighbor resolution would
// need ARP, which the probe deliberately skips.
func buildSynFrame(srcMAC net.HardwareAddr, srcIP, dstIP net.IP, dstPort ports.Port) ([]byte, uint16, error) {
	srcPort := randEphemeralPort()

	eth := layers.Ethernet{
		SrcMAC:       srcMAC,
		DstMAC:       net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip4 := layers.IPv4{
		Version:  4,
		IHL:      5,
		Id:       uint16(rand.N(1 << 16)),
		Flags:    layers.IPv4DontFragment,
		TTL:      synTTL,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    srcIP.To4(),
		DstIP:    dstIP.To4(),
	}
	tcp := layers.TCP{
		SrcPort: layers.TCPPort(srcPort),
		DstPort: layers.TCPPort(dstPort.Int()),
		Seq:     rand.Uint32(),
		SYN:     true,
		Window:  synWindow,
	}
	if err := tcp.SetNetworkLayerForChecksum(&ip4); err != nil {
		return nil, 0, errors.Wrap(errors.CodeInvalidPacket, "failed to bind TCP checksum layer", err)
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, &eth, &ip4, &tcp); err != nil {
		return nil, 0, errors.Wrap(errors.CodeInvalidPacket, "failed to serialize SYN frame", err)
	}
	return buf.Bytes(), srcPort, nil
}

// classifySynResponse inspects a captured frame and, when it is a TCP
// response from the target, returns the target-side port it answers for
// and the status it implies. Frames from other hosts, non-TCP frames,
// and TCP segments without SYN+ACK or RST are reported as non-matching.
func classifySynResponse(frame []byte, target net.IP) (dstPort uint16, status Status, ok bool) {
	packet := gopacket.NewPacket(frame, layers.LayerTypeEthernet, gopacket.NoCopy)

	ipLayer := packet.Layer(layers.LayerTypeIPv4)
	if ipLayer == nil {
		return 0, 0, false
	}
	ip4, _ := ipLayer.(*layers.IPv4)
	if ip4 == nil || !ip4.SrcIP.Equal(target.To4()) {
		return 0, 0, false
	}

	tcpLayer := packet.Layer(layers.LayerTypeTCP)
	if tcpLayer == nil {
		return 0, 0, false
	}
	tcp, _ := tcpLayer.(*layers.TCP)
	if tcp == nil {
		return 0, 0, false
	}

	// The responder's source port is the port that was probed.
	port := uint16(tcp.SrcPort)
	switch {
	case tcp.SYN && tcp.ACK:
		return port, StatusOpen, true
	case tcp.RST:
		return port, StatusClosed, true
	default:
		return 0, 0, false
	}
}
