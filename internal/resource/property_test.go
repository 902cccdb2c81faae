package resource

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	atomWMName uint32 = 39
	atomString uint32 = 31
	atomWindow uint32 = 33
)

func newWindowWithRegistry(t *testing.T) (*Registry, ID) {
	t.Helper()

	r, rng := newTestRegistry(t)
	w := ID(rng.Base | 1)
	require.NoError(t, r.CreateWindow(testConn, w, r.Root(), Window{Width: 10, Height: 10}))

	return r, w
}

func TestChangeGetProperty(t *testing.T) {
	r, w := newWindowWithRegistry(t)

	require.NoError(t, r.ChangeProperty(w, atomWMName, atomString, 8, PropReplace, []byte("xterm")))

	res, err := r.GetProperty(w, atomWMName, atomString, 0, 16, false)
	require.NoError(t, err)
	require.True(t, res.Exists)
	require.True(t, res.TypeMatch)
	require.Equal(t, atomString, res.Type)
	require.Equal(t, uint8(8), res.Format)
	require.Equal(t, []byte("xterm"), res.Value)
	require.Zero(t, res.BytesAfter)
	require.False(t, res.Deleted)
}

func TestGetProperty_Absent(t *testing.T) {
	r, w := newWindowWithRegistry(t)

	res, err := r.GetProperty(w, atomWMName, 0, 0, 16, false)
	require.NoError(t, err)
	require.False(t, res.Exists)

	_, err = r.GetProperty(ID(0xBAD), atomWMName, 0, 0, 16, false)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestChangeProperty_Modes(t *testing.T) {
	r, w := newWindowWithRegistry(t)

	require.NoError(t, r.ChangeProperty(w, atomWMName, atomString, 8, PropReplace, []byte("term")))
	require.NoError(t, r.ChangeProperty(w, atomWMName, atomString, 8, PropAppend, []byte("inal")))
	require.NoError(t, r.ChangeProperty(w, atomWMName, atomString, 8, PropPrepend, []byte("x")))

	res, err := r.GetProperty(w, atomWMName, atomString, 0, 16, false)
	require.NoError(t, err)
	require.Equal(t, []byte("xterminal"), res.Value)

	t.Run("MismatchedType", func(t *testing.T) {
		err := r.ChangeProperty(w, atomWMName, atomWindow, 8, PropAppend, []byte{1})
		require.ErrorIs(t, err, ErrBadMatch)
	})

	t.Run("MismatchedFormat", func(t *testing.T) {
		err := r.ChangeProperty(w, atomWMName, atomString, 16, PropAppend, []byte{1, 2})
		require.ErrorIs(t, err, ErrBadMatch)
	})

	t.Run("UnknownMode", func(t *testing.T) {
		err := r.ChangeProperty(w, atomWMName, atomString, 8, 3, nil)
		require.ErrorIs(t, err, ErrBadMatch)
	})

	t.Run("AppendToAbsentActsAsReplace", func(t *testing.T) {
		require.NoError(t, r.ChangeProperty(w, 99, atomString, 8, PropAppend, []byte("new")))

		res, err := r.GetProperty(w, 99, atomString, 0, 16, false)
		require.NoError(t, err)
		require.Equal(t, []byte("new"), res.Value)
	})
}

func TestGetProperty_Windowed(t *testing.T) {
	r, w := newWindowWithRegistry(t)

	// 12 bytes: three 32-bit units.
	require.NoError(t, r.ChangeProperty(w, atomWMName, atomString, 8, PropReplace, []byte("abcdefghijkl")))

	t.Run("MiddleUnit", func(t *testing.T) {
		res, err := r.GetProperty(w, atomWMName, atomString, 1, 1, false)
		require.NoError(t, err)
		require.Equal(t, []byte("efgh"), res.Value)
		require.Equal(t, uint32(4), res.BytesAfter)
	})

	t.Run("OffsetPastEnd", func(t *testing.T) {
		res, err := r.GetProperty(w, atomWMName, atomString, 10, 4, false)
		require.NoError(t, err)
		require.Empty(t, res.Value)
		require.Zero(t, res.BytesAfter)
	})

	t.Run("DeleteOnlyOnFullRead", func(t *testing.T) {
		res, err := r.GetProperty(w, atomWMName, atomString, 0, 1, true)
		require.NoError(t, err)
		require.False(t, res.Deleted, "partial read must not delete")

		res, err = r.GetProperty(w, atomWMName, atomString, 0, 16, true)
		require.NoError(t, err)
		require.True(t, res.Deleted)

		res, err = r.GetProperty(w, atomWMName, atomString, 0, 16, false)
		require.NoError(t, err)
		require.False(t, res.Exists)
	})
}

func TestGetProperty_TypeFilter(t *testing.T) {
	r, w := newWindowWithRegistry(t)

	require.NoError(t, r.ChangeProperty(w, atomWMName, atomString, 8, PropReplace, []byte("xterm")))

	res, err := r.GetProperty(w, atomWMName, atomWindow, 0, 16, true)
	require.NoError(t, err)
	require.True(t, res.Exists)
	require.False(t, res.TypeMatch)
	require.Equal(t, atomString, res.Type, "actual type is reported on a filter miss")
	require.Equal(t, uint32(5), res.BytesAfter)
	require.Empty(t, res.Value)
	require.False(t, res.Deleted, "filter miss must not delete")
}

func TestDeleteProperty(t *testing.T) {
	r, w := newWindowWithRegistry(t)

	require.NoError(t, r.ChangeProperty(w, atomWMName, atomString, 8, PropReplace, []byte("xterm")))

	existed, err := r.DeleteProperty(w, atomWMName)
	require.NoError(t, err)
	require.True(t, existed)

	existed, err = r.DeleteProperty(w, atomWMName)
	require.NoError(t, err)
	require.False(t, existed)
}

func TestListProperties(t *testing.T) {
	r, w := newWindowWithRegistry(t)

	atoms, err := r.ListProperties(w)
	require.NoError(t, err)
	require.Empty(t, atoms)

	require.NoError(t, r.ChangeProperty(w, 70, atomString, 8, PropReplace, nil))
	require.NoError(t, r.ChangeProperty(w, atomWMName, atomString, 8, PropReplace, []byte("xterm")))
	require.NoError(t, r.ChangeProperty(w, 69, atomString, 8, PropReplace, nil))

	atoms, err = r.ListProperties(w)
	require.NoError(t, err)
	require.Equal(t, []uint32{39, 69, 70}, atoms)
}

func TestProperties_DieWithWindow(t *testing.T) {
	r, w := newWindowWithRegistry(t)

	require.NoError(t, r.ChangeProperty(w, atomWMName, atomString, 8, PropReplace, []byte("xterm")))

	_, err := r.DestroyWindow(w)
	require.NoError(t, err)

	_, err = r.GetProperty(w, atomWMName, 0, 0, 16, false)
	require.ErrorIs(t, err, ErrNotFound)
}
