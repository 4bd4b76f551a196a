package sweep

import (
	"fmt"
	"net"
	"time"
)

// TimeoutTTL is the TTL sentinel of a record whose request never got a
// reply. The elapsed time of such a record is the nominal timeout.
const TimeoutTTL = -1

// Record is the immutable outcome of a single Echo Request.
type Record struct {
	Addr    net.IPAddr
	Seq     int
	TTL     int           // TimeoutTTL if the request timed out
	Elapsed time.Duration // round trip time, or the nominal timeout
}

// TimedOut reports whether the request expired without a reply.
func (r *Record) TimedOut() bool {
	return r.TTL == TimeoutTTL
}

// String renders the record as "address,sequence,ttl,elapsed_microseconds".
func (r *Record) String() string {
	return fmt.Sprintf("%s,%d,%d,%d", r.Addr.IP, r.Seq, r.TTL, r.Elapsed.Microseconds())
}
