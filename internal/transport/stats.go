package transport

import "sync/atomic"

// Stats is a point-in-time snapshot of message counts, for
// observability (spec §4.3).
type Stats struct {
	Sent     uint64
	Received uint64
}

// Stats returns a snapshot of messages sent and received so far.
func (t *Transport) Stats() Stats {
	return Stats{
		Sent:     atomic.LoadUint64(&t.sentCount),
		Received: atomic.LoadUint64(&t.recvCount),
	}
}
