package internal

import (
	"errors"
	"net"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

const (
	// ProtocolICMP is the number of the Internet Control Message Protocol
	// (see golang.org/x/net/internal/iana.ProtocolICMP)
	ProtocolICMP = 1

	// ProtocolICMPv6 is the IPv6 Next Header value for ICMPv6
	// see golang.org/x/net/internal/iana.ProtocolIPv6ICMP
	ProtocolICMPv6 = 58
)

var (
	errNotBound      = errors.New("need at least one bind address")
	ErrSocketMissing = errors.New("socket missing")
)

// Reply is a decoded ICMP Echo Reply.
type Reply struct {
	ID       int        // echo identifier
	Seq      int        // echo sequence number
	TTL      int        // hop count from the network-layer header, -1 if unknown
	Addr     net.IPAddr // source address
	Received time.Time
}

// Receiver consumes decoded Echo Replies from the shared socket.
type Receiver func(reply Reply)

// Conn is a shared ICMP endpoint. A single Conn carries the echo
// requests for any number of targets; inbound replies are decoded and
// handed to the Receiver.
type Conn struct {
	Receiver   Receiver
	Privileged bool

	conn4 *icmp.PacketConn
	conn6 *icmp.PacketConn
}

// Open binds the raw (or datagram, if unprivileged) ICMP sockets and
// starts the receiving logic. You'll need to call Close() to cleanup.
func (c *Conn) Open(bind4, bind6 string) error {
	var err error
	var network4, network6 string

	if c.Privileged {
		network4 = "ip4:icmp"
		network6 = "ip6:ipv6-icmp"
	} else {
		network4 = "udp4"
		network6 = "udp6"
	}

	// open sockets
	c.conn4, err = connectICMP(network4, bind4)
	if err != nil {
		return err
	}

	c.conn6, err = connectICMP(network6, bind6)
	if err != nil {
		if c.conn4 != nil {
			c.conn4.Close()
		}
		return err
	}

	if c.conn4 == nil && c.conn6 == nil {
		return errNotBound
	}

	if c.conn4 != nil {
		// request the TTL of inbound packets via control messages
		if p := c.conn4.IPv4PacketConn(); p != nil {
			if err := p.SetControlMessage(ipv4.FlagTTL, true); err != nil {
				Logger.Infof("cannot enable TTL control messages: %v", err)
			}
		}
		go c.receiver4(c.conn4)
	}
	if c.conn6 != nil {
		if p := c.conn6.IPv6PacketConn(); p != nil {
			if err := p.SetControlMessage(ipv6.FlagHopLimit, true); err != nil {
				Logger.Infof("cannot enable hop limit control messages: %v", err)
			}
		}
		go c.receiver6(c.conn6)
	}

	return nil
}

// Close closes the underlying sockets, which also stops the receiver
// goroutines.
func (c *Conn) Close() {
	if c.conn4 != nil {
		c.conn4.Close()
	}
	if c.conn6 != nil {
		c.conn6.Close()
	}
}

// PacketConns returns the open sockets, for callers that need to set
// socket options.
func (c *Conn) PacketConns() []*icmp.PacketConn {
	var conns []*icmp.PacketConn
	if c.conn4 != nil {
		conns = append(conns, c.conn4)
	}
	if c.conn6 != nil {
		conns = append(conns, c.conn6)
	}
	return conns
}

// receiver4 listens on the IPv4 socket and forwards decoded Echo
// Replies, together with the TTL from the IP header, to the Receiver.
func (c *Conn) receiver4(conn *icmp.PacketConn) {
	p := conn.IPv4PacketConn()
	rb := make([]byte, 1500)

	for {
		n, cm, source, err := p.ReadFrom(rb)
		if err != nil {
			if netErr, ok := err.(net.Error); !ok || !netErr.Temporary() {
				return // socket gone
			}
			continue
		}

		ttl := -1
		if cm != nil {
			ttl = cm.TTL
		}
		c.receive(ProtocolICMP, rb[:n], sourceAddr(source), ttl, time.Now())
	}
}

// receiver6 is the IPv6 counterpart of receiver4. The hop limit takes
// the place of the TTL.
func (c *Conn) receiver6(conn *icmp.PacketConn) {
	p := conn.IPv6PacketConn()
	rb := make([]byte, 1500)

	for {
		n, cm, source, err := p.ReadFrom(rb)
		if err != nil {
			if netErr, ok := err.(net.Error); !ok || !netErr.Temporary() {
				return // socket gone
			}
			continue
		}

		ttl := -1
		if cm != nil {
			ttl = cm.HopLimit
		}
		c.receive(ProtocolICMPv6, rb[:n], sourceAddr(source), ttl, time.Now())
	}
}

// receive decodes a raw inbound datagram. Anything that is not a
// well-formed Echo Reply is dropped without further notice; a shared
// raw socket sees plenty of unrelated traffic.
func (c *Conn) receive(proto int, bytes []byte, addr net.IPAddr, ttl int, t time.Time) {
	echo, ok := decodeEcho(proto, bytes)
	if !ok {
		return
	}

	c.Receiver(Reply{
		ID:       echo.ID,
		Seq:      echo.Seq,
		TTL:      ttl,
		Addr:     addr,
		Received: t,
	})
}

// decodeEcho parses an inbound datagram and returns its Echo body, iff
// the datagram is an Echo Reply with an intact checksum.
func decodeEcho(proto int, b []byte) (*icmp.Echo, bool) {
	// The ICMPv6 checksum covers a pseudo-header we don't have access
	// to here; the kernel has verified it already.
	if proto == ProtocolICMP && checksum(b) != 0 {
		return nil, false
	}

	m, err := icmp.ParseMessage(proto, b)
	if err != nil {
		return nil, false
	}

	switch m.Type {
	case ipv4.ICMPTypeEchoReply, ipv6.ICMPTypeEchoReply:
		echo, ok := m.Body.(*icmp.Echo)
		return echo, ok && echo != nil
	}
	return nil, false
}

// checksum computes the RFC 1071 internet checksum. Summing a message
// including its checksum field yields zero for an intact message.
func checksum(b []byte) uint16 {
	var sum uint32
	for i := 0; i+1 < len(b); i += 2 {
		sum += uint32(b[i])<<8 | uint32(b[i+1])
	}
	if len(b)%2 == 1 {
		sum += uint32(b[len(b)-1]) << 8
	}
	for sum>>16 != 0 {
		sum = sum&0xffff + sum>>16
	}
	return uint16(^sum)
}

// WriteTo builds an Echo Request with the given identifier and
// sequence number and sends it to addr. The checksum is computed
// during marshalling.
func (c *Conn) WriteTo(addr *net.IPAddr, id, seq int, data []byte) error {
	echo := icmp.Echo{
		Seq:  seq,
		Data: data,
	}
	msg := icmp.Message{
		Code: 0,
		Body: &echo,
	}

	var conn *icmp.PacketConn
	if addr.IP.To4() != nil {
		msg.Type = ipv4.ICMPTypeEcho
		conn = c.conn4
	} else {
		msg.Type = ipv6.ICMPTypeEchoRequest
		conn = c.conn6
	}

	if c.Privileged {
		// the kernel overwrites the identifier on datagram sockets
		echo.ID = id
	}

	if conn == nil {
		return ErrSocketMissing
	}

	// serialize packet
	wb, err := msg.Marshal(nil)
	if err != nil {
		return err
	}

	// send request
	if c.Privileged {
		_, err = conn.WriteTo(wb, addr)
	} else {
		_, err = conn.WriteTo(wb, &net.UDPAddr{
			IP:   addr.IP,
			Zone: addr.Zone,
		})
	}

	return err
}

// sourceAddr normalizes the sender address. Datagram sockets report
// *net.UDPAddr, raw sockets *net.IPAddr.
func sourceAddr(source net.Addr) net.IPAddr {
	var ipAddr net.IPAddr

	switch addr := source.(type) {
	case *net.UDPAddr:
		ipAddr.IP = addr.IP
		ipAddr.Zone = addr.Zone
	case *net.IPAddr:
		ipAddr = *addr
	}

	return ipAddr
}

// connectICMP opens a new ICMP connection, if network and address are not empty.
func connectICMP(network, address string) (*icmp.PacketConn, error) {
	if network == "" || address == "" {
		return nil, nil
	}

	return icmp.ListenPacket(network, address)
}
