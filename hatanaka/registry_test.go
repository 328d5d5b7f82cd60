package hatanaka

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crxkit/crinex/rinex"
)

func TestFieldKey_String(t *testing.T) {
	sv := rinex.SV{System: 'G', PRN: 7}

	require.Equal(t, "epoch", EpochKey().String())
	require.Equal(t, "clock", ClockOffsetKey().String())
	require.Equal(t, "obs/G07/L1", ObservationKey(sv, "L1").String())
	require.Equal(t, "lli/G07/L1", FlagKey(sv, "L1", FieldLLI).String())
	require.Equal(t, "snr/G07/L1", FlagKey(sv, "L1", FieldSNR).String())
}

func TestFieldKey_ID_DistinguishesKinds(t *testing.T) {
	sv := rinex.SV{System: 'G', PRN: 7}

	keys := []FieldKey{
		EpochKey(),
		ClockOffsetKey(),
		ObservationKey(sv, "L1"),
		ObservationKey(sv, "L2"),
		FlagKey(sv, "L1", FieldLLI),
		FlagKey(sv, "L1", FieldSNR),
	}

	ids := make(map[uint64]bool, len(keys))
	for _, k := range keys {
		ids[k.ID()] = true
	}
	require.Len(t, ids, len(keys))
}

func TestFieldRegistry_Numeric_LazyCreate(t *testing.T) {
	r := NewFieldRegistry()
	key := ObservationKey(rinex.SV{System: 'G', PRN: 1}, "C1")

	krn, seen, err := r.Numeric(key, 1)
	require.NoError(t, err)
	require.NotNil(t, krn)
	require.Zero(t, seen)
	require.False(t, krn.Initialized())
	require.Equal(t, 1, r.Len())

	// Same key returns the same kernel and the last-seen epoch.
	require.NoError(t, krn.Reset(3, 42))
	again, seen, err := r.Numeric(key, 2)
	require.NoError(t, err)
	require.Same(t, krn, again)
	require.Equal(t, uint64(1), seen)
}

func TestFieldRegistry_Text_LazyCreate(t *testing.T) {
	r := NewFieldRegistry()

	krn, seen, err := r.Text(EpochKey(), 1)
	require.NoError(t, err)
	require.NotNil(t, krn)
	require.Zero(t, seen)

	krn.Reset("prev")
	again, seen, err := r.Text(EpochKey(), 5)
	require.NoError(t, err)
	require.Same(t, krn, again)
	require.Equal(t, uint64(1), seen)
	require.Equal(t, "prev", again.Previous())
}

func TestFieldRegistry_Prune_DropsStaleSatellites(t *testing.T) {
	r := NewFieldRegistry()
	g1 := ObservationKey(rinex.SV{System: 'G', PRN: 1}, "L1")
	g2 := ObservationKey(rinex.SV{System: 'G', PRN: 2}, "L1")

	_, _, err := r.Numeric(g1, 1)
	require.NoError(t, err)
	_, _, err = r.Numeric(g2, 1)
	require.NoError(t, err)
	_, _, err = r.Text(EpochKey(), 1)
	require.NoError(t, err)
	_, _, err = r.Numeric(ClockOffsetKey(), 1)
	require.NoError(t, err)

	// G02 keeps reporting; G01 goes quiet after epoch 1.
	_, _, err = r.Numeric(g2, 5)
	require.NoError(t, err)

	pruned := r.Prune(5, 3)
	require.Equal(t, 1, pruned)
	require.Equal(t, 3, r.Len())

	// The structural entries survive any absence.
	pruned = r.Prune(100, 1)
	require.Equal(t, 1, pruned) // g2, last seen at 5
	require.Equal(t, 2, r.Len())
}

func TestFieldRegistry_Prune_KeepsRecentlySeen(t *testing.T) {
	r := NewFieldRegistry()
	key := ObservationKey(rinex.SV{System: 'R', PRN: 11}, "P2")

	_, _, err := r.Numeric(key, 9)
	require.NoError(t, err)

	// Absent exactly maxAbsence epochs: kept.
	require.Zero(t, r.Prune(10, 1))
	// One more epoch of absence: dropped.
	require.Equal(t, 1, r.Prune(11, 1))
}
