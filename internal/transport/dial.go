package transport

import (
	"encoding/binary"
	"net"
	"time"

	"github.com/pkg/errors"
)

// dialWithRetry keeps trying to dial addr until it succeeds or timeout
// elapses. Peers in this mesh start together (fixed membership, see
// spec.md non-goals), but the acceptor side may not have its listener up
// yet by the time a lower-ranked peer starts dialing, so a short retry
// loop is needed at bootstrap.
func dialWithRetry(network, addr string, timeout time.Duration) (net.Conn, error) {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		conn, err := net.Dial(network, addr)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		time.Sleep(100 * time.Millisecond)
	}
	// Network I/O call site: wrapped with pkg/errors, matching the
	// teacher's own reservation of it for disk/network errors
	// (storage.DiskStore.Delete), rather than the %w stdlib wrapping
	// this package uses everywhere else.
	return nil, errors.Wrapf(lastErr, "dialing %s %s", network, addr)
}

// writeRank / readRank implement the one-shot handshake a freshly dialed
// connection performs: the dialer announces which rank it is, since the
// acceptor otherwise has no way to tell which peer just connected.
func writeRank(conn net.Conn, rank int) error {
	return binary.Write(conn, binary.BigEndian, int32(rank))
}

func readRank(conn net.Conn) (int, error) {
	var rank int32
	if err := binary.Read(conn, binary.BigEndian, &rank); err != nil {
		return 0, err
	}
	return int(rank), nil
}
