package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nicolagi/rpctree/config"
)

func TestDerivePlacementEvenSplit(t *testing.T) {
	cfg := &config.C{Rank: 5, Peers: make([]string, 8), ExpectedNodes: 2}
	p := derivePlacement(cfg)
	assert.Equal(t, 1, p.Node)
	assert.Equal(t, 1, p.LocalRank)
	assert.Equal(t, 4, p.LocalSize)
}

func TestDerivePlacementSingleNodeDefault(t *testing.T) {
	cfg := &config.C{Rank: 2, Peers: make([]string, 4)}
	p := derivePlacement(cfg)
	assert.Equal(t, 0, p.Node)
	assert.Equal(t, 2, p.LocalRank)
	assert.Equal(t, 4, p.LocalSize)
}

func TestDerivePlacementUnevenSplit(t *testing.T) {
	cfg := &config.C{Rank: 6, Peers: make([]string, 7), ExpectedNodes: 2}
	p := derivePlacement(cfg)
	// ranksPerNode = ceil(7/2) = 4, so node 0 holds ranks 0-3, node 1
	// holds ranks 4-6: 3 ranks, not 4.
	assert.Equal(t, 1, p.Node)
	assert.Equal(t, 2, p.LocalRank)
	assert.Equal(t, 3, p.LocalSize)
}

func TestPlacementFromEnvOverridesDerivation(t *testing.T) {
	t.Setenv("RPC_NODE", "3")
	t.Setenv("RPC_LOCAL_RANK", "1")
	t.Setenv("RPC_LOCAL_SIZE", "2")
	cfg := &config.C{Rank: 7, Peers: make([]string, 8)}
	p := derivePlacement(cfg)
	assert.Equal(t, 3, p.Node)
	assert.Equal(t, 1, p.LocalRank)
	assert.Equal(t, 2, p.LocalSize)
}
