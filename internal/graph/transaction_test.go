package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scenewire/scenewire/internal/meta"
)

func newTxRegistry(t *testing.T) *meta.Registry {
	t.Helper()
	reg := meta.NewRegistry()
	require.NoError(t, RegisterStandardClasses(reg))
	return reg
}

func TestTransaction_UndoRestoresSnapshot(t *testing.T) {
	reg := newTxRegistry(t)
	mgr := NewTransactionManager(reg)
	light := &LightComponent{Intensity: 8}

	tx := mgr.Begin("Set Intensity")
	tx.Snapshot(light, "Intensity")
	require.NoError(t, reg.Set(light, "Intensity", 20.0))
	tx.Close()

	require.Equal(t, 1, mgr.Depth())
	require.True(t, mgr.Undo())
	require.Equal(t, 8.0, light.Intensity)
	require.Equal(t, 0, mgr.Depth())
	require.False(t, mgr.Undo())
}

func TestTransaction_EmptyIsNotUndoable(t *testing.T) {
	mgr := NewTransactionManager(newTxRegistry(t))
	tx := mgr.Begin("noop")
	tx.Close()
	tx.Close() // idempotent
	require.Equal(t, 0, mgr.Depth())
}

func TestTransaction_SliceSnapshotIsDetached(t *testing.T) {
	reg := newTxRegistry(t)
	mgr := NewTransactionManager(reg)
	light := &LightComponent{Brightness: []float64{1, 2, 3}}

	tx := mgr.Begin("Set Brightness[0]")
	tx.Snapshot(light, "Brightness")
	// In-place element write on the live backing array must not reach the
	// recorded previous value.
	light.Brightness[0] = 99
	tx.Close()

	require.True(t, mgr.Undo())
	require.Equal(t, []float64{1, 2, 3}, light.Brightness)
}

func TestTransaction_UndoOrderIsLIFO(t *testing.T) {
	reg := newTxRegistry(t)
	mgr := NewTransactionManager(reg)
	light := &LightComponent{Intensity: 1}

	for _, v := range []float64{2, 3} {
		tx := mgr.Begin("Set Intensity")
		tx.Snapshot(light, "Intensity")
		require.NoError(t, reg.Set(light, "Intensity", v))
		tx.Close()
	}

	require.True(t, mgr.Undo())
	require.Equal(t, 2.0, light.Intensity)
	require.True(t, mgr.Undo())
	require.Equal(t, 1.0, light.Intensity)
}

func TestDocumentSet(t *testing.T) {
	d := NewDocumentSet()
	require.False(t, d.NeedsSave("/World"))
	d.MarkNeedsSave("/World")
	d.MarkNeedsSave("") // no owning document, no dirty state
	require.True(t, d.NeedsSave("/World"))
	require.False(t, d.NeedsSave(""))
	d.MarkSaved("/World")
	require.False(t, d.NeedsSave("/World"))
}
