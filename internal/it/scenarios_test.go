package it

import (
	"testing"

	"github.com/stretchr/testify/require"

	"kvstore/internal/address"
	"kvstore/internal/gossip"
	"kvstore/internal/ring"
)

func addr(id uint32) address.Address { return address.New(id, 0) }

// Scenario 1 (§8): a lone node A, then B bootstraps against it. After one
// round of ticks both sides' views contain each other and a join was
// logged on each side.
func TestScenario_Join(t *testing.T) {
	c := NewCluster()
	a := addr(1)
	b := addr(2)
	c.AddNode(a, address.Introducer)
	c.AddNode(b, a)

	c.Tick()

	require.Equal(t, []address.Address{b}, c.Node(a).View())
	require.Equal(t, []address.Address{a}, c.Node(b).View())
	require.True(t, c.Node(b).InGroup(), "B should have completed bootstrap")
}

// Scenario 2 (§8): {A,B,C}, C goes silent. Once TRemove logical units have
// elapsed since C's last heartbeat, A and B evict it, their rings shrink to
// two nodes, and stabilization runs again without it.
func TestScenario_FailureDetection(t *testing.T) {
	c := NewCluster()
	a, b, cc := addr(1), addr(2), addr(3)
	c.AddNode(a, address.Introducer)
	c.AddNode(b, a)
	c.AddNode(cc, a)
	c.Settle(5)

	c.Kill(cc)
	c.Settle(gossip.TRemove + 2)

	for _, n := range []address.Address{a, b} {
		view := c.Node(n).View()
		require.NotContains(t, view, cc, "%v still carries the dead node in its view", n)
		require.Len(t, view, 1, "%v should see exactly the one surviving peer", n)
	}
}

// Scenario 3 (§8): a quorum CREATE where one of the three replicas already
// holds the key (so its create-if-absent fails) still succeeds on a 2-of-3
// majority.
func TestScenario_QuorumCreateSurvivesOneReplicaFailure(t *testing.T) {
	c := NewCluster()
	nodes := []address.Address{addr(1), addr(2), addr(3), addr(4)}
	c.AddNode(nodes[0], address.Introducer)
	for _, a := range nodes[1:] {
		c.AddNode(a, nodes[0])
	}
	c.Settle(5)

	coordinator := c.Node(nodes[0])
	replicas := ring.Build(nodes[0], coordinator.View()).FindReplicas("k")
	require.Len(t, replicas, 3)
	failing := replicas[2].Addr
	c.Node(failing).Store().Create("k", "stale")

	require.NoError(t, c.ClientCreate(nodes[0], "k", "v"))
	c.Settle(2)

	require.Zero(t, coordinator.PendingTransactions(), "expected the transaction to resolve within two ticks")
	for _, r := range replicas[:2] {
		require.Equal(t, "v", c.Node(r.Addr).Store().Read("k"), "non-failing replica %v", r.Addr)
	}
	require.Equal(t, "stale", c.Node(failing).Store().Read("k"), "failing replica's preexisting value should be untouched")
}

// Scenario 4 (§8): a quorum READ where the key is present at two replicas
// and absent at the third still succeeds with the known value.
func TestScenario_QuorumReadUnderOneReplicaMiss(t *testing.T) {
	c := NewCluster()
	nodes := []address.Address{addr(1), addr(2), addr(3), addr(4)}
	c.AddNode(nodes[0], address.Introducer)
	for _, a := range nodes[1:] {
		c.AddNode(a, nodes[0])
	}
	c.Settle(5)

	coordinator := c.Node(nodes[0])
	replicas := ring.Build(nodes[0], coordinator.View()).FindReplicas("k")
	for _, r := range replicas[:2] {
		c.Node(r.Addr).Store().Create("k", "v")
	}

	require.NoError(t, c.ClientRead(nodes[0], "k"))
	c.Settle(2)

	require.Zero(t, coordinator.PendingTransactions(), "expected the read transaction to resolve within two ticks")
}

// Scenario 5 (§8): an UPDATE that only ever gets one reply times out after
// TTX ticks and is reported as a failure rather than left pending forever.
func TestScenario_UpdateTimesOutWithoutQuorum(t *testing.T) {
	c := NewCluster()
	nodes := []address.Address{addr(1), addr(2), addr(3), addr(4)}
	c.AddNode(nodes[0], address.Introducer)
	for _, a := range nodes[1:] {
		c.AddNode(a, nodes[0])
	}
	c.Settle(5)

	coordinator := c.Node(nodes[0])
	replicas := ring.Build(nodes[0], coordinator.View()).FindReplicas("k")
	// Kill two of the three replicas, never the coordinator itself, so only
	// one reply ever arrives.
	killed := 0
	for _, r := range replicas {
		if r.Addr != nodes[0] && killed < 2 {
			c.Kill(r.Addr)
			killed++
		}
	}

	require.NoError(t, c.ClientUpdate(nodes[0], "k", "v"))
	c.Settle(12)

	require.Zero(t, coordinator.PendingTransactions(), "expected the stalled update to time out and resolve")
}

// Scenario 6 (§8): a node joining mid-cluster causes a re-push of existing
// keys to their new replica set on the very next topology change.
func TestScenario_StabilizationAfterJoin(t *testing.T) {
	c := NewCluster()
	a, b, cc := addr(1), addr(2), addr(3)
	c.AddNode(a, address.Introducer)
	c.AddNode(b, a)
	c.AddNode(cc, a)
	c.Settle(5)

	c.Node(a).Store().Create("k", "v")

	d := addr(4)
	c.AddNode(d, a)
	c.Settle(5)

	newReplicas := ring.Build(a, c.Node(a).View()).FindReplicas("k")
	for _, r := range newReplicas {
		require.Equal(t, "v", c.Node(r.Addr).Store().Read("k"), "current replica %v after stabilization", r.Addr)
	}
	// A's own copy stays whether or not A is still one of the key's
	// replicas: stabilization never evicts keys (no reconciliation, §13).
	require.Equal(t, "v", c.Node(a).Store().Read("k"), "original holder's copy should still be readable")
}
