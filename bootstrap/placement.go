package bootstrap

import (
	"os"
	"strconv"

	"github.com/nicolagi/rpctree/config"
)

// Placement is what spec §4.10 calls "(node, local-rank, local-size)":
// which physical node this process runs on, its position among the
// ranks sharing that node, and how many ranks share it. There is no MPI
// runtime to query this from (see SPEC_FULL.md's domain-stack note), so
// it is read from an environment hint the job launcher is expected to
// set, the same role OMPI_COMM_WORLD_LOCAL_RANK/SLURM_LOCALID play for
// real MPI jobs; absent that hint, it is derived from rank/size/expected
// node count by assuming ranks are laid out contiguously, node by node.
type Placement struct {
	Node      int
	LocalRank int
	LocalSize int
}

func derivePlacement(cfg *config.C) Placement {
	if node, lr, ls, ok := placementFromEnv(); ok {
		return Placement{Node: node, LocalRank: lr, LocalSize: ls}
	}
	nodes := cfg.ExpectedNodes
	if nodes <= 0 {
		nodes = 1
	}
	size := len(cfg.Peers)
	if size == 0 {
		size = 1
	}
	ranksPerNode := (size + nodes - 1) / nodes
	if ranksPerNode <= 0 {
		ranksPerNode = 1
	}
	node := cfg.Rank / ranksPerNode
	localRank := cfg.Rank % ranksPerNode
	localSize := ranksPerNode
	if node == nodes-1 {
		// The last node may hold fewer ranks than ranksPerNode when size
		// doesn't divide evenly.
		localSize = size - node*ranksPerNode
	}
	return Placement{Node: node, LocalRank: localRank, LocalSize: localSize}
}

func placementFromEnv() (node, localRank, localSize int, ok bool) {
	n, errN := strconv.Atoi(os.Getenv("RPC_NODE"))
	lr, errLR := strconv.Atoi(os.Getenv("RPC_LOCAL_RANK"))
	ls, errLS := strconv.Atoi(os.Getenv("RPC_LOCAL_SIZE"))
	if errN != nil || errLR != nil || errLS != nil {
		return 0, 0, 0, false
	}
	return n, lr, ls, true
}
