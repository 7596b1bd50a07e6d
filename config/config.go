package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

// DefaultBaseDirectoryPath is where the peer table and other bootstrap
// files are looked up by default. It defaults to $RPC_BASE if set,
// otherwise to $HOME/lib/rpctree, following the same convention the rest
// of this stack uses for locating its on-disk configuration.
var DefaultBaseDirectoryPath string

func init() {
	if base := os.Getenv("RPC_BASE"); base != "" {
		DefaultBaseDirectoryPath = base
	} else {
		DefaultBaseDirectoryPath = os.ExpandEnv("$HOME/lib/rpctree")
	}
}

// C holds everything bootstrap (package bootstrap) needs to stand up the
// transport and thread layer for this process.
type C struct {
	// Rank is this process's position in the peer mesh. There is no
	// elastic membership (see spec non-goals): the rank is fixed for
	// the lifetime of the process and assigned externally, via
	// RPC_RANK.
	Rank int

	// Peers is the address of every process in the mesh, indexed by
	// rank. Peers[Rank] is this process's own listen address.
	Peers []string

	ListenNet string

	LogLevel log.Level

	// Expected placement, purely advisory. CheckPlacement logs a warning,
	// never fatal, when processes, threads or cores differ from what
	// bootstrap observes. ExpectedNodes only feeds placement derivation;
	// it is not compared against anything.
	ExpectedNodes     int
	ExpectedProcesses int
	ExpectedThreads   int
	ExpectedCores     int
}

// Load reads process configuration from the environment, optionally
// overlaying a static peer table from $RPC_BASE/peers.ini. An unreadable
// peer table or an unrecognized RPC_LOG_LEVEL is logged as a warning and
// a malformed RPC_NODES/RPC_PROCESSES/RPC_THREADS/RPC_CORES falls back to
// 0; none of these fail the load. A missing or negative RPC_RANK, or a
// rank with no entry in the peer table, is returned as an error.
func Load() (*C, error) {
	c := &C{
		ListenNet: firstNonEmpty(os.Getenv("RPC_LISTEN_NET"), "tcp"),
		LogLevel:  log.WarnLevel,
	}

	if lvl := os.Getenv("RPC_LOG_LEVEL"); lvl != "" {
		if parsed, err := log.ParseLevel(lvl); err == nil {
			c.LogLevel = parsed
		} else {
			log.WithField("value", lvl).Warn("config: unrecognized RPC_LOG_LEVEL, defaulting to warning")
		}
	}

	rank, err := intEnv("RPC_RANK", -1)
	if err != nil || rank < 0 {
		return nil, errorf("Load", "RPC_RANK must be set to a non-negative integer: %v", err)
	}
	c.Rank = rank

	if peers := os.Getenv("RPC_PEERS"); peers != "" {
		c.Peers = strings.Split(peers, ",")
	}

	if base := firstNonEmpty(os.Getenv("RPC_BASE"), DefaultBaseDirectoryPath); base != "" {
		if err := c.loadPeerFile(base + "/peers.ini"); err != nil && !os.IsNotExist(err) {
			log.WithField("cause", err).Warn("config: could not read optional peer table, continuing with RPC_PEERS only")
		}
	}

	if c.Rank >= len(c.Peers) {
		return nil, errorf("Load", "rank %d has no corresponding entry in a %d-peer table", c.Rank, len(c.Peers))
	}

	c.ExpectedNodes, _ = intEnv("RPC_NODES", 0)
	c.ExpectedProcesses, _ = intEnv("RPC_PROCESSES", 0)
	c.ExpectedThreads, _ = intEnv("RPC_THREADS", 0)
	c.ExpectedCores, _ = intEnv("RPC_CORES", 0)

	return c, nil
}

// loadPeerFile merges a [peers] section of the form "0 = host:port" into
// c.Peers, overriding whatever RPC_PEERS provided for that rank. This lets
// an operator pin a static table once instead of repeating a long env var
// on every process's command line.
func (c *C) loadPeerFile(path string) error {
	f, err := ini.Load(path)
	if err != nil {
		return err
	}
	section, err := f.GetSection("peers")
	if err != nil {
		return nil
	}
	for _, key := range section.Keys() {
		rank, err := strconv.Atoi(key.Name())
		if err != nil {
			continue
		}
		for rank >= len(c.Peers) {
			c.Peers = append(c.Peers, "")
		}
		c.Peers[rank] = key.Value()
	}
	return nil
}

// CheckPlacement compares the expected process, thread and core counts
// against what bootstrap actually observed, logging a warning on any
// mismatch; the expected node count is not checked. Per the
// error handling policy (spec §7) this is never fatal. observedCores is
// 0 when bootstrap's CPU-affinity query itself failed, in which case the
// comparison is skipped rather than reported as a mismatch against 0.
func (c *C) CheckPlacement(observedProcesses, observedThreads, observedCores int) {
	if c.ExpectedProcesses != 0 && c.ExpectedProcesses != observedProcesses {
		log.WithFields(log.Fields{
			"expected": c.ExpectedProcesses,
			"observed": observedProcesses,
		}).Warn("config: RPC_PROCESSES mismatch")
	}
	if c.ExpectedThreads != 0 && c.ExpectedThreads != observedThreads {
		log.WithFields(log.Fields{
			"expected": c.ExpectedThreads,
			"observed": observedThreads,
		}).Warn("config: RPC_THREADS mismatch")
	}
	if c.ExpectedCores != 0 && observedCores != 0 && c.ExpectedCores != observedCores {
		log.WithFields(log.Fields{
			"expected": c.ExpectedCores,
			"observed": observedCores,
		}).Warn("config: RPC_CORES mismatch")
	}
}

func intEnv(name string, fallback int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("%s=%q: %w", name, v, err)
	}
	return n, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
