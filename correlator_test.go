package sweep

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/digineo/go-sweep/internal"
)

func TestCorrelatorKeyedLookup(t *testing.T) {
	assert := assert.New(t)

	corr := newCorrelator()
	writer := &fakeWriter{}

	var records []Record
	sess := newSession(testTarget("192.0.2.1", 2, time.Millisecond), 77, writer, corr, nil, time.Second,
		func(r Record) { records = append(records, r) })
	corr.addSession(sess)
	sess.send()

	// identifier and sequence match
	corr.dispatch(internal.Reply{
		ID: 77, Seq: 0, TTL: 54,
		Addr:     sess.target.Addr,
		Received: time.Now(),
	})
	assert.Len(records, 1)
}

func TestCorrelatorAddressFallback(t *testing.T) {
	assert := assert.New(t)

	corr := newCorrelator()
	writer := &fakeWriter{}

	var records []Record
	sess := newSession(testTarget("192.0.2.1", 1, time.Millisecond), 77, writer, corr, nil, time.Second,
		func(r Record) { records = append(records, r) })
	corr.addSession(sess)
	sess.send()

	// datagram sockets rewrite the identifier; the reply still finds
	// its session through the address index
	corr.dispatch(internal.Reply{
		ID: 31337, Seq: 0, TTL: 54,
		Addr:     sess.target.Addr,
		Received: time.Now(),
	})
	assert.Len(records, 1)
}

func TestCorrelatorDiscardsForeignTraffic(t *testing.T) {
	assert := assert.New(t)

	corr := newCorrelator()
	writer := &fakeWriter{}

	var records []Record
	sess := newSession(testTarget("192.0.2.1", 1, time.Millisecond), 77, writer, corr, nil, time.Second,
		func(r Record) { records = append(records, r) })
	corr.addSession(sess)
	sess.send()

	// neither key nor address match
	corr.dispatch(internal.Reply{
		ID: 31337, Seq: 9,
		Addr:     net.IPAddr{IP: net.ParseIP("198.51.100.99")},
		Received: time.Now(),
	})
	// matching address, unknown sequence
	corr.dispatch(internal.Reply{
		ID: 31337, Seq: 9,
		Addr:     sess.target.Addr,
		Received: time.Now(),
	})
	assert.Empty(records)

	// the pending request is untouched
	assert.True(sess.resolve(0, 54, time.Now()))
	assert.Len(records, 1)
}

func TestCorrelatorDropSession(t *testing.T) {
	assert := assert.New(t)

	corr := newCorrelator()
	writer := &fakeWriter{}

	sess := newSession(testTarget("192.0.2.1", 1, time.Millisecond), 77, writer, corr, nil, time.Second,
		func(Record) {})
	corr.addSession(sess)
	corr.dropSession(sess)

	assert.Empty(corr.sessions)
}
