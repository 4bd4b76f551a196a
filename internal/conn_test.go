package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

func marshal(t *testing.T, msg icmp.Message) []byte {
	b, err := msg.Marshal(nil)
	require.NoError(t, err)
	return b
}

func TestDecodeEchoReply(t *testing.T) {
	assert := assert.New(t)

	b := marshal(t, icmp.Message{
		Type: ipv4.ICMPTypeEchoReply,
		Body: &icmp.Echo{ID: 42, Seq: 7, Data: []byte("payload")},
	})

	echo, ok := decodeEcho(ProtocolICMP, b)
	require.True(t, ok)
	assert.Equal(42, echo.ID)
	assert.Equal(7, echo.Seq)
}

func TestDecodeEchoReplyV6(t *testing.T) {
	assert := assert.New(t)

	// the ICMPv6 checksum needs a pseudo-header and is left to the
	// kernel; decode must still accept the message
	b := marshal(t, icmp.Message{
		Type: ipv6.ICMPTypeEchoReply,
		Body: &icmp.Echo{ID: 17, Seq: 3, Data: []byte("payload")},
	})

	echo, ok := decodeEcho(ProtocolICMPv6, b)
	require.True(t, ok)
	assert.Equal(17, echo.ID)
	assert.Equal(3, echo.Seq)
}

func TestDecodeRejectsCorrupted(t *testing.T) {
	assert := assert.New(t)

	b := marshal(t, icmp.Message{
		Type: ipv4.ICMPTypeEchoReply,
		Body: &icmp.Echo{ID: 42, Seq: 7, Data: []byte("payload")},
	})
	b[len(b)-1] ^= 0xff

	_, ok := decodeEcho(ProtocolICMP, b)
	assert.False(ok, "checksum mismatch must be dropped")
}

func TestDecodeRejectsNonReply(t *testing.T) {
	assert := assert.New(t)

	// an Echo Request is not a reply
	b := marshal(t, icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Body: &icmp.Echo{ID: 42, Seq: 7, Data: []byte("payload")},
	})
	_, ok := decodeEcho(ProtocolICMP, b)
	assert.False(ok)

	// neither is a Destination Unreachable
	b = marshal(t, icmp.Message{
		Type: ipv4.ICMPTypeDestinationUnreachable,
		Body: &icmp.DstUnreach{Data: make([]byte, 28)},
	})
	_, ok = decodeEcho(ProtocolICMP, b)
	assert.False(ok)

	// nor random junk
	_, ok = decodeEcho(ProtocolICMP, []byte{0x00, 0x01})
	assert.False(ok)
}

func TestChecksum(t *testing.T) {
	assert := assert.New(t)

	b := marshal(t, icmp.Message{
		Type: ipv4.ICMPTypeEchoReply,
		Body: &icmp.Echo{ID: 12345, Seq: 999, Data: []byte("odd")},
	})

	// a message summed over its own checksum field yields zero
	assert.EqualValues(0, checksum(b))

	b[4] ^= 0x01
	assert.NotEqualValues(0, checksum(b))
}
