package resource

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rcarmo/xds/internal/protocol/xproto"
)

func TestAtomTable_Predefined(t *testing.T) {
	table := NewAtomTable(xproto.PredefinedAtoms)

	require.Equal(t, 68, table.Len())
	require.Equal(t, xproto.AtomPrimary, table.Intern("PRIMARY", true))
	require.Equal(t, xproto.AtomWMName, table.Intern("WM_NAME", true))
	require.Equal(t, xproto.AtomWMTransientFor, table.Intern("WM_TRANSIENT_FOR", true))
	require.Equal(t, uint32(39), xproto.AtomWMName)

	name, ok := table.Name(xproto.AtomWMName)
	require.True(t, ok)
	require.Equal(t, "WM_NAME", name)
}

func TestAtomTable_Intern(t *testing.T) {
	table := NewAtomTable(xproto.PredefinedAtoms)

	atom := table.Intern("_NET_WM_STATE", false)
	require.Equal(t, uint32(69), atom, "first dynamic atom follows the predefined block")

	t.Run("Idempotent", func(t *testing.T) {
		require.Equal(t, atom, table.Intern("_NET_WM_STATE", false))
		require.Equal(t, atom, table.Intern("_NET_WM_STATE", true))
		require.Equal(t, 69, table.Len())
	})

	t.Run("OnlyIfExistsAbsent", func(t *testing.T) {
		require.Zero(t, table.Intern("NO_SUCH_ATOM", true))
		require.Equal(t, 69, table.Len())

		_, ok := table.Name(70)
		require.False(t, ok)
	})

	t.Run("NamesAreCaseSensitive", func(t *testing.T) {
		lower := table.Intern("_net_wm_state", false)
		require.NotEqual(t, atom, lower)
	})
}

func TestAtomTable_Name_Unknown(t *testing.T) {
	table := NewAtomTable(xproto.PredefinedAtoms)

	_, ok := table.Name(0)
	require.False(t, ok)

	_, ok = table.Name(1000)
	require.False(t, ok)
}

func TestAtomTable_Snapshot(t *testing.T) {
	table := NewAtomTable([]string{"A", "B"})
	table.Intern("C", false)

	snap := table.Snapshot()
	require.Equal(t, []string{"A", "B", "C"}, snap)

	// The snapshot is a copy, not a window into the table.
	snap[0] = "clobbered"
	name, ok := table.Name(1)
	require.True(t, ok)
	require.Equal(t, "A", name)
}
