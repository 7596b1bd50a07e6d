package bootstrap

import (
	"os"

	"github.com/google/gops/agent"
	log "github.com/sirupsen/logrus"

	"github.com/nicolagi/rpctree/config"
	"github.com/nicolagi/rpctree/internal/callp"
	"github.com/nicolagi/rpctree/internal/gptr"
	"github.com/nicolagi/rpctree/internal/gshared"
	"github.com/nicolagi/rpctree/internal/rthread"
	"github.com/nicolagi/rpctree/internal/term"
	"github.com/nicolagi/rpctree/internal/transport"
	"github.com/nicolagi/rpctree/tree"
)

// UserMain is the entry point of the "external collaborator" program
// this process hosts: it is called only on rank 0, with the call layer
// already wired up, and its return value becomes the exit code the
// termination protocol broadcasts to every peer.
type UserMain func(caller *callp.Caller) int

// Run stands up one process of the mesh: load configuration, pin worker
// threads, bring up the thread pool / transport / call layer /
// termination protocol in the fixed order spec §9 requires, run main on
// rank 0 only, and wait for termination everywhere else. It returns the
// exit code agreed on by the termination protocol.
func Run(main UserMain) (exitCode int, err error) {
	log.SetLevel(log.WarnLevel)

	cfg, err := config.Load()
	if err != nil {
		return 1, errorf("Run", "loading configuration: %w", err)
	}
	log.SetLevel(cfg.LogLevel)

	if err := agent.Listen(agent.Options{}); err != nil {
		log.WithError(err).Warn("bootstrap: could not start gops agent, continuing without it")
	}

	placement := derivePlacement(cfg)
	threads := cfg.ExpectedThreads
	cpus, cpusErr := availableCPUs()
	if cpusErr != nil {
		log.WithError(cpusErr).Warn("bootstrap: could not query available CPUs, affinity pinning disabled")
	}
	pool := newPinnedPool(threads, placement, cpus)

	cfg.CheckPlacement(len(cfg.Peers), threads, cpus)

	log.WithFields(log.Fields{
		"rank":      cfg.Rank,
		"size":      len(cfg.Peers),
		"node":      placement.Node,
		"localRank": placement.LocalRank,
		"localSize": placement.LocalSize,
	}).Info("bootstrap: placement")

	t, err := transport.New(transport.Config{
		Rank:      cfg.Rank,
		Peers:     cfg.Peers,
		ListenNet: cfg.ListenNet,
	}, pool, nil)
	if err != nil {
		pool.Close()
		return 1, errorf("Run", "constructing transport: %w", err)
	}

	caller := callp.NewCaller(t, pool, nil)

	// Fixed construction order (spec §9): the call layer is installed as
	// every package's process-wide active instance only after the
	// transport and call layer themselves are fully up, so no action
	// handler can observe a nil active caller once traffic starts
	// arriving.
	gptr.SetLocalRank(cfg.Rank)
	callp.SetActive(caller)
	gshared.SetCaller(caller)
	tree.SetActive(caller)

	protocol := term.New(t)
	term.SetActive(protocol)

	if cfg.Rank == 0 {
		code := main(caller)
		broadcast, err := protocol.Shutdown(int32(code))
		if err != nil {
			pool.Close()
			return 1, errorf("Run", "shutdown: %w", err)
		}
		exitCode = int(broadcast)
	} else {
		broadcast, err := protocol.Wait()
		if err != nil {
			pool.Close()
			return 1, errorf("Run", "waiting for termination: %w", err)
		}
		exitCode = int(broadcast)
	}

	if err := t.Close(); err != nil {
		log.WithError(err).Warn("bootstrap: closing transport")
	}
	pool.Close()
	return exitCode, nil
}

// Main is the usual os.Exit-driven entry point for a cmd/ binary: it
// calls Run and, on a fatal bootstrap error, logs and exits 1 rather
// than propagating the error to a caller that has nowhere to report it.
func Main(main UserMain) {
	code, err := Run(main)
	if err != nil {
		log.WithError(err).Fatal("bootstrap: fatal error")
	}
	os.Exit(code)
}

// newPinnedPool builds the thread pool with one worker per expected
// local thread count (falling back to runtime.NumCPU via
// rthread.NewPoolPinned's own size<=0 handling), pinning each worker's
// carrier OS thread to one PU of this rank's share, dividing the node's
// available PUs across the node's local ranks first; workers beyond the
// share's size wrap around and share PUs (spec §4.10: "local ranks ×
// worker count fills the node in a balanced way"). cpus is the count
// availableCPUs already produced in Run; 0 means affinity pinning is
// disabled because that query failed.
func newPinnedPool(threads int, placement Placement, cpus int) *rthread.Pool {
	if cpus <= 0 {
		return rthread.NewPool(threads)
	}
	localSize := placement.LocalSize
	if localSize <= 0 {
		localSize = 1
	}
	share := cpus / localSize
	if share <= 0 {
		share = 1
	}
	base := placement.LocalRank * share
	return rthread.NewPoolPinned(threads, func(workerIndex int) {
		cpu := base + workerIndex%share
		if err := pinWorker(cpu); err != nil {
			log.WithFields(log.Fields{"cpu": cpu, "cause": err}).Warn("bootstrap: could not pin worker to CPU")
		}
	})
}
