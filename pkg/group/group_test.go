package group

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootHasEmptyPath(t *testing.T) {
	r := Root()
	require.Empty(t, r.Path)
	require.Zero(t, r.GroupID)
}

func TestEnterAllocatesUniqueGroupIDs(t *testing.T) {
	r := Root()
	a := r.Enter("and", -1, []GoalRef{{Kind: "eq"}}, []GoalRef{{Kind: "eq"}})
	b := r.Enter("and", -1, []GoalRef{{Kind: "membero"}}, []GoalRef{{Kind: "membero"}})
	require.NotEqual(t, a.GroupID, b.GroupID)
	require.Len(t, a.Path, 1)
}

func TestPeersExcludesSelf(t *testing.T) {
	self := GoalRef{Kind: "eq"}
	other := GoalRef{Kind: "membero"}
	c := Root().Enter("and", -1, []GoalRef{self, other}, []GoalRef{self, other})
	peers := c.Peers(self)
	require.Equal(t, []GoalRef{other}, peers)
}
