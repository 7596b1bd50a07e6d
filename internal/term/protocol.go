package term

import (
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nicolagi/rpctree/internal/transport"
)

// shutdownTimeout bounds how long a round of the barrier may take before
// the stuck process treats it as the fatal logic error spec §4.8 says it
// is, rather than hanging forever.
const shutdownTimeout = 30 * time.Second

// drainPollInterval is how often checkStage4 re-checks the transport's
// pending-promise count while waiting for in-flight RPCs to finish
// before acking stage 4 upward (spec §4.3: "the loop exits once ... no
// receives are outstanding").
const drainPollInterval = 5 * time.Millisecond

// Protocol runs the 4-stage termination barrier for one process. Exactly
// one instance exists per process, installed as the package's active
// instance via SetActive so the stage actions (which run with no
// closure over a live Protocol, see actions.go) can reach it.
type Protocol struct {
	t        *transport.Transport
	rank     int
	size     int
	parent   int
	children []int

	mu           sync.Mutex
	stage2Acks   int
	stage3Begun  bool
	stage4Acks   int
	stage4Poller bool

	exitCode int32
	done     chan struct{}
	doneOnce sync.Once
}

var active atomic.Pointer[Protocol]

// SetActive installs p as the process-wide termination protocol the
// stage actions dispatch through.
func SetActive(p *Protocol) {
	active.Store(p)
}

// New builds the termination protocol state for this process.
func New(t *transport.Transport) *Protocol {
	rank := t.Rank()
	size := t.Size()
	return &Protocol{
		t:        t,
		rank:     rank,
		size:     size,
		parent:   parentOf(rank),
		children: childrenOf(rank, size),
		done:     make(chan struct{}),
	}
}

// Shutdown runs only on rank 0: it begins stage 1 with the user
// program's exit code, then blocks until all four stages complete and
// the exit code has circulated back to every process, returning once
// this process has seen it.
func (p *Protocol) Shutdown(exitCode int32) (int32, error) {
	if p.rank != 0 {
		return 0, errorf("Shutdown", "only rank 0 may initiate termination, this is rank %d", p.rank)
	}
	p.mu.Lock()
	p.exitCode = exitCode
	p.mu.Unlock()
	beginStage1(p, exitCode)
	return p.Wait()
}

// Wait blocks until the termination protocol completes on this process
// (having been initiated by rank 0) and returns the broadcast exit code.
func (p *Protocol) Wait() (int32, error) {
	select {
	case <-p.done:
		return atomic.LoadInt32(&p.exitCode), nil
	case <-time.After(shutdownTimeout):
		log.WithField("rank", p.rank).Fatal("term: termination protocol did not complete in time")
		return 0, errorf("Wait", "timed out waiting for termination to complete")
	}
}

func (p *Protocol) markDone(exitCode int32) {
	atomic.StoreInt32(&p.exitCode, exitCode)
	p.doneOnce.Do(func() { close(p.done) })
}
