package transport

import (
	"encoding/gob"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nicolagi/rpctree/internal/action"
	"github.com/nicolagi/rpctree/internal/rthread"
)

// Resolver is what the call layer (component C4) registers against a
// pending promise: it decodes a finish envelope's payload/failure and
// settles whatever local future is waiting on it.
type Resolver func(payload []byte, failure string)

// Transport is the process-wide event loop and peer mesh: component C3.
// Exactly one instance exists per process.
type Transport struct {
	rank int
	size int

	listenNet string
	peers     []string

	pool     *rthread.Pool
	registry *action.Registry

	mu    sync.Mutex
	conns []*peerConn // indexed by rank; conns[rank] is nil

	promises sync.Map // action.PromiseID -> Resolver
	nextID   uint64

	sentCount uint64
	recvCount uint64

	draining int32 // set once the termination protocol stops user sends
}

type peerConn struct {
	rank   int
	conn   net.Conn
	sendCh chan action.Envelope
}

// Config is the minimal information Transport needs to stand up the
// mesh; package config.C satisfies it via its exported fields directly,
// this indirection just keeps the transport package independent of
// config's env-var parsing concerns.
type Config struct {
	Rank      int
	Peers     []string
	ListenNet string
}

// New starts listening on Peers[Rank], connects to every peer with a
// larger rank, and accepts connections from every peer with a smaller
// rank, returning once the full mesh is established.
func New(cfg Config, pool *rthread.Pool, registry *action.Registry) (*Transport, error) {
	if registry == nil {
		registry = action.Default
	}
	if cfg.Rank < 0 || cfg.Rank >= len(cfg.Peers) {
		return nil, errorf("New", "rank %d out of range for %d peers", cfg.Rank, len(cfg.Peers))
	}
	t := &Transport{
		rank:      cfg.Rank,
		size:      len(cfg.Peers),
		listenNet: cfg.ListenNet,
		peers:     cfg.Peers,
		pool:      pool,
		registry:  registry,
		conns:     make([]*peerConn, len(cfg.Peers)),
	}

	ln, err := net.Listen(t.listenNet, t.peers[t.rank])
	if err != nil {
		return nil, errorf("New", "listening on %q: %w", t.peers[t.rank], err)
	}
	go t.acceptLoop(ln)

	var wg sync.WaitGroup
	errs := make(chan error, t.size)
	for p := 0; p < t.size; p++ {
		if p == t.rank {
			continue
		}
		if t.rank < p {
			wg.Add(1)
			go func(p int) {
				defer wg.Done()
				conn, err := dialWithRetry(t.listenNet, t.peers[p], 30*time.Second)
				if err != nil {
					errs <- err
					return
				}
				if err := writeRank(conn, t.rank); err != nil {
					errs <- err
					return
				}
				t.attach(p, conn)
			}(p)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			return nil, err
		}
	}
	t.awaitMesh()
	return t, nil
}

// awaitMesh blocks until every peer connection (dialed or accepted) is
// attached.
func (t *Transport) awaitMesh() {
	for {
		complete := true
		t.mu.Lock()
		for p := 0; p < t.size; p++ {
			if p != t.rank && t.conns[p] == nil {
				complete = false
				break
			}
		}
		t.mu.Unlock()
		if complete {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (t *Transport) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go func() {
			rank, err := readRank(conn)
			if err != nil {
				log.WithError(err).Warn("transport: dropping connection with bad handshake")
				_ = conn.Close()
				return
			}
			t.attach(rank, conn)
		}()
	}
}

func (t *Transport) attach(rank int, conn net.Conn) {
	pc := &peerConn{rank: rank, conn: conn, sendCh: make(chan action.Envelope, 256)}
	t.mu.Lock()
	t.conns[rank] = pc
	t.mu.Unlock()
	go t.writeLoop(pc)
	go t.readLoop(pc)
}

func (t *Transport) writeLoop(pc *peerConn) {
	enc := gob.NewEncoder(pc.conn)
	for env := range pc.sendCh {
		if err := enc.Encode(&env); err != nil {
			log.WithFields(log.Fields{"peer": pc.rank, "cause": err}).Error("transport: send failed")
			return
		}
		atomic.AddUint64(&t.sentCount, 1)
	}
}

func (t *Transport) readLoop(pc *peerConn) {
	dec := gob.NewDecoder(pc.conn)
	for {
		var env action.Envelope
		if err := dec.Decode(&env); err != nil {
			return
		}
		atomic.AddUint64(&t.recvCount, 1)
		t.dispatch(pc.rank, env)
	}
}

func (t *Transport) dispatch(from int, env action.Envelope) {
	switch env.Kind {
	case action.KindEvaluate:
		t.pool.Submit(func() {
			fn, ok := t.registry.Lookup(env.ActionID)
			if !ok {
				// Spec §7: a registry miss means the peers disagree on
				// what actions exist, a fatal logic error, not a
				// recoverable one.
				log.WithFields(log.Fields{"actionID": env.ActionID, "from": from}).
					Fatal("transport: received unknown action id, peers are out of sync")
				return
			}
			resultPayload, failure := fn(env.Payload)
			if env.PromiseID == 0 {
				// A zero promise id marks a detached/forwarding call: the
				// caller isn't waiting on a result, so no finish envelope
				// is sent back (spec §4.4, detached).
				return
			}
			_ = t.sendRaw(from, action.Envelope{
				ActionID:  env.ActionID,
				Kind:      action.KindFinish,
				PromiseID: env.PromiseID,
				Payload:   resultPayload,
				Failure:   failure,
			})
		})
	case action.KindFinish:
		v, ok := t.promises.LoadAndDelete(env.PromiseID)
		if !ok {
			return
		}
		v.(Resolver)(env.Payload, env.Failure)
	}
}

// NewPromiseID allocates a fresh promise identifier for an outgoing
// evaluate call.
func (t *Transport) NewPromiseID() action.PromiseID {
	return action.PromiseID(atomic.AddUint64(&t.nextID, 1))
}

// AwaitFinish registers resolve to run when the finish envelope for id
// arrives.
func (t *Transport) AwaitFinish(id action.PromiseID, resolve Resolver) {
	t.promises.Store(id, resolve)
}

// AbandonPromise removes a pending promise without resolving it. The
// call layer uses it when the evaluate envelope for id could not be
// sent, so no entry is left waiting for a finish envelope that will
// never arrive.
func (t *Transport) AbandonPromise(id action.PromiseID) {
	t.promises.Delete(id)
}

// Send enqueues env for delivery to dest, subject to the termination
// protocol's draining gate: once SetDraining(true) has been called, new
// user-initiated sends are refused (spec §4.8, stage 2→3).
func (t *Transport) Send(dest int, env action.Envelope) error {
	if atomic.LoadInt32(&t.draining) != 0 {
		return errorf("Send", "transport is draining, refusing new send to rank %d", dest)
	}
	return t.sendRaw(dest, env)
}

// SendControl bypasses the draining gate: only the termination protocol
// (package term) uses this, since its stage 3/4 traffic must keep
// flowing even after SetDraining(true) has stopped ordinary user sends
// (spec §4.8).
func (t *Transport) SendControl(dest int, env action.Envelope) error {
	return t.sendRaw(dest, env)
}

// sendRaw bypasses the draining gate; only SendControl and finish
// replies use this, since those must keep flowing while the system
// drains.
func (t *Transport) sendRaw(dest int, env action.Envelope) error {
	if dest < 0 || dest >= t.size || dest == t.rank {
		return errorf("sendRaw", "invalid destination rank %d", dest)
	}
	t.mu.Lock()
	pc := t.conns[dest]
	t.mu.Unlock()
	if pc == nil {
		return errorf("sendRaw", "no connection to rank %d", dest)
	}
	pc.sendCh <- env
	return nil
}

// SetDraining toggles whether Send refuses new user-initiated traffic.
func (t *Transport) SetDraining(draining bool) {
	if draining {
		atomic.StoreInt32(&t.draining, 1)
	} else {
		atomic.StoreInt32(&t.draining, 0)
	}
}

// PendingCount returns the number of promises still awaiting a finish
// envelope, used by the termination protocol to confirm drain-complete.
func (t *Transport) PendingCount() int {
	n := 0
	t.promises.Range(func(_, _ interface{}) bool { n++; return true })
	return n
}

// Rank returns this process's rank.
func (t *Transport) Rank() int { return t.rank }

// Size returns the number of processes in the mesh.
func (t *Transport) Size() int { return t.size }

// Close shuts down every peer connection. Messages queued but not yet
// sent are dropped; callers should only Close after the termination
// protocol confirms drain-complete.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	var firstErr error
	for _, pc := range t.conns {
		if pc == nil {
			continue
		}
		close(pc.sendCh)
		if err := pc.conn.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("transport: closing connection to rank %d: %w", pc.rank, err)
		}
	}
	return firstErr
}
