package transport

import (
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"github.com/open-control-systems/mdnssd/components/core"
	"github.com/open-control-systems/mdnssd/components/mdnssd"
)

var (
	groupIPv4 = net.IPv4(224, 0, 0, 251)
	groupIPv6 = net.ParseIP("ff02::fb")

	mdnsPort = 5353
)

// MulticastTransport implements mdnssd.Transport over the standard mDNS
// multicast groups, 224.0.0.251:5353 and [ff02::fb]:5353.
type MulticastTransport struct {
	codec Codec

	conn4 *ipv4.PacketConn
	conn6 *ipv6.PacketConn

	dst4 *net.UDPAddr
	dst6 *net.UDPAddr

	mu            sync.Mutex
	queryHandlers []func(mdnssd.Packet)
	respHandlers  []func(mdnssd.Packet, mdnssd.Addr)

	closeOnce sync.Once
	closed    chan struct{}
}

// NewMulticastTransport opens IPv4 and IPv6 UDP sockets bound to the mDNS
// port and joins the mDNS multicast group on every up, multicast-capable
// interface. At least one of the two address families must succeed to bind.
func NewMulticastTransport(codec Codec) (*MulticastTransport, error) {
	t := &MulticastTransport{
		codec:  codec,
		dst4:   &net.UDPAddr{IP: groupIPv4, Port: mdnsPort},
		dst6:   &net.UDPAddr{IP: groupIPv6, Port: mdnsPort},
		closed: make(chan struct{}),
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("transport: failed to enumerate interfaces: %w", err)
	}

	conn4, err4 := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: mdnsPort})
	if err4 == nil {
		p := ipv4.NewPacketConn(conn4)

		joined := 0

		for i := range ifaces {
			iface := ifaces[i]
			if !usableInterface(iface) {
				continue
			}

			if err := p.JoinGroup(&iface, &net.UDPAddr{IP: groupIPv4}); err == nil {
				joined++
			}
		}

		if joined > 0 {
			t.conn4 = p
		} else {
			conn4.Close()
		}
	} else {
		core.LogWrn.Printf("mdns-transport: failed to bind udp4: err=%v\n", err4)
	}

	conn6, err6 := net.ListenUDP("udp6", &net.UDPAddr{IP: net.IPv6unspecified, Port: mdnsPort})
	if err6 == nil {
		p := ipv6.NewPacketConn(conn6)

		joined := 0

		for i := range ifaces {
			iface := ifaces[i]
			if !usableInterface(iface) {
				continue
			}

			if err := p.JoinGroup(&iface, &net.UDPAddr{IP: groupIPv6}); err == nil {
				joined++
			}
		}

		if joined > 0 {
			t.conn6 = p
		} else {
			conn6.Close()
		}
	} else {
		core.LogWrn.Printf("mdns-transport: failed to bind udp6: err=%v\n", err6)
	}

	if t.conn4 == nil && t.conn6 == nil {
		return nil, fmt.Errorf("transport: failed to bind to either address family: udp4=%v udp6=%v", err4, err6)
	}

	if t.conn4 != nil {
		go t.recvLoop(t.conn4, nil)
	}

	if t.conn6 != nil {
		go t.recvLoop(nil, t.conn6)
	}

	return t, nil
}

func usableInterface(iface net.Interface) bool {
	if iface.Flags&net.FlagUp == 0 {
		return false
	}
	if iface.Flags&net.FlagMulticast == 0 {
		return false
	}

	return true
}

// OnQuery implements mdnssd.Transport.
func (t *MulticastTransport) OnQuery(handler func(mdnssd.Packet)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.queryHandlers = append(t.queryHandlers, handler)
}

// OnResponse implements mdnssd.Transport.
func (t *MulticastTransport) OnResponse(handler func(mdnssd.Packet, mdnssd.Addr)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.respHandlers = append(t.respHandlers, handler)
}

// Query implements mdnssd.Transport.
func (t *MulticastTransport) Query(name string, recordType mdnssd.RRType) error {
	raw, err := t.codec.EncodeQuery(name, recordType)
	if err != nil {
		return fmt.Errorf("transport: failed to encode query: %w", err)
	}

	return t.writeAll(raw)
}

// Respond implements mdnssd.Transport.
func (t *MulticastTransport) Respond(answers, additionals []mdnssd.Record) error {
	raw, err := t.codec.EncodeResponse(answers, additionals)
	if err != nil {
		return fmt.Errorf("transport: failed to encode response: %w", err)
	}

	return t.writeAll(raw)
}

func (t *MulticastTransport) writeAll(raw []byte) error {
	var firstErr error

	if t.conn4 != nil {
		if _, err := t.conn4.WriteTo(raw, nil, t.dst4); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if t.conn6 != nil {
		if _, err := t.conn6.WriteTo(raw, nil, t.dst6); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// Close implements mdnssd.Transport.
func (t *MulticastTransport) Close() error {
	var firstErr error

	t.closeOnce.Do(func() {
		close(t.closed)

		if t.conn4 != nil {
			if err := t.conn4.Close(); err != nil {
				firstErr = err
			}
		}

		if t.conn6 != nil {
			if err := t.conn6.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	})

	return firstErr
}

func (t *MulticastTransport) recvLoop(c4 *ipv4.PacketConn, c6 *ipv6.PacketConn) {
	buf := make([]byte, 65536)

	for {
		select {
		case <-t.closed:
			return
		default:
		}

		var (
			n    int
			from net.Addr
			err  error
		)

		if c4 != nil {
			n, _, from, err = c4.ReadFrom(buf)
		} else {
			n, _, from, err = c6.ReadFrom(buf)
		}

		if err != nil {
			select {
			case <-t.closed:
				return
			default:
				continue
			}
		}

		t.dispatch(buf[:n], from)
	}
}

func (t *MulticastTransport) dispatch(raw []byte, from net.Addr) {
	// recvID tags this packet's decode-failure log line, so lines from the
	// two address-family receive goroutines, which interleave, can be told apart.
	recvID := uuid.New()

	pkt, isResponse, err := t.codec.Decode(raw)
	if err != nil {
		core.LogWrn.Printf("mdns-transport: failed to decode packet: recv=%s from=%v err=%v\n", recvID, from, err)
		return
	}

	addr := mdnssd.Addr{Port: mdnsPort}

	if udpAddr, ok := from.(*net.UDPAddr); ok {
		addr.IP = udpAddr.IP
		addr.Port = udpAddr.Port
	}

	t.mu.Lock()
	queryHandlers := append([]func(mdnssd.Packet){}, t.queryHandlers...)
	respHandlers := append([]func(mdnssd.Packet, mdnssd.Addr){}, t.respHandlers...)
	t.mu.Unlock()

	if isResponse {
		for _, h := range respHandlers {
			h(pkt, addr)
		}

		return
	}

	for _, h := range queryHandlers {
		h(pkt)
	}
}
