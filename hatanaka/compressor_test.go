package hatanaka

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crxkit/crinex/errs"
	"github.com/crxkit/crinex/rinex"
)

func testContract() *rinex.ObservationContract {
	return &rinex.ObservationContract{
		Observables: map[byte][]string{
			'G': {"C1", "L1"},
			'R': {"C1", "L1"},
		},
	}
}

// Two-epoch fixture: G14 rises at the second epoch, which also carries a
// receiver clock offset.
var (
	epoch1Line = " 10  3 21  0 30  0.0000000  0  2G01G07"
	g01Obs1    = "  25065408.994   131712445.654 8"
	g07Obs1    = "  20123456.789   105742891.32118"

	epoch2Line = " 10  3 21  0 30 30.0000000  0  3G01G07G14" +
		strings.Repeat(" ", 27) + "-0.123456789"
	g01Obs2 = "  25065410.123   131712500.000 8"
	g07Obs2 = "  20123460.000   105742900.00018"
	g14Obs2 = "  21987654.321   115543210.987"
)

func compressAll(t *testing.T, c *Compressor, lines []string) []string {
	t.Helper()

	var out []string
	for _, line := range lines {
		emitted, err := c.CompressLine(line)
		require.NoError(t, err)
		out = append(out, emitted...)
	}

	return out
}

func decompressAll(t *testing.T, d *Decompressor, lines []string) []string {
	t.Helper()

	var out []string
	for _, line := range lines {
		emitted, err := d.DecompressLine(line)
		require.NoError(t, err)
		out = append(out, emitted...)
	}

	return out
}

func TestCompressor_FirstEpochIsAllReinit(t *testing.T) {
	c, err := NewCompressor(testContract())
	require.NoError(t, err)

	got := compressAll(t, c, []string{epoch1Line, g01Obs1, g07Obs1})

	require.Equal(t, []string{
		epoch1Line, // empty previous text: the descriptor passes literally
		"",         // no clock offset this epoch
		"3&25065408994 3&131712445654    8",
		"3&20123456789 3&105742891321   18",
	}, got)
}

func TestCompressor_SecondEpochDiffs(t *testing.T) {
	c, err := NewCompressor(testContract())
	require.NoError(t, err)

	compressAll(t, c, []string{epoch1Line, g01Obs1, g07Obs1})
	got := compressAll(t, c, []string{epoch2Line, g01Obs2, g07Obs2, g14Obs2})

	wantDescDiff := strings.Repeat(" ", 16) + "3" + strings.Repeat(" ", 14) +
		"3" + strings.Repeat(" ", 6) + "G14"

	require.Equal(t, []string{
		wantDescDiff,
		"3&-123456789", // clock offset starts its own arc
		"1129 54346",   // continuing arcs: first-order steps, flags unchanged
		"3211 8679",
		"3&21987654321 3&115543210987", // rising satellite re-initializes
	}, got)
}

func TestCompressor_ArcBreakAfterAbsence(t *testing.T) {
	c, err := NewCompressor(testContract())
	require.NoError(t, err)

	epochG01Only := " 10  3 21  0 31  0.0000000  0  1G01"
	epoch3 := " 10  3 21  0 31 30.0000000  0  2G01G07"

	compressAll(t, c, []string{epoch1Line, g01Obs1, g07Obs1})
	compressAll(t, c, []string{epochG01Only, g01Obs2})
	got := compressAll(t, c, []string{epoch3, g01Obs1, g07Obs2})

	// G07 skipped an epoch: its fields must restart their arcs.
	g07Compressed := got[len(got)-1]
	require.True(t, strings.HasPrefix(g07Compressed, "3&20123460000 3&105742900000"),
		"got %q", g07Compressed)
}

func TestCompressor_FieldGapReinitializes(t *testing.T) {
	c, err := NewCompressor(testContract())
	require.NoError(t, err)

	epoch2NoClock := " 10  3 21  0 30 30.0000000  0  2G01G07"
	epoch3 := " 10  3 21  0 31  0.0000000  0  2G01G07"
	// L1 missing at the second epoch while C1 continues.
	g01NoL1 := "  25065410.123"

	compressAll(t, c, []string{epoch1Line, g01Obs1, g07Obs1})
	compressAll(t, c, []string{epoch2NoClock, g01NoL1, g07Obs2})
	got := compressAll(t, c, []string{epoch3, g01Obs2, g07Obs1})

	// C1 is a continuing arc; L1 restarts after its one-epoch gap.
	tokens, _ := splitDataLine(got[len(got)-2], 2)
	require.NotContains(t, tokens[0], "&")
	require.Equal(t, "3&131712500000", tokens[1])
}

func TestCompressor_EventEpochPassthrough(t *testing.T) {
	c, err := NewCompressor(testContract())
	require.NoError(t, err)

	eventLine := strings.Repeat(" ", 28) + "4  2"
	aux1 := "ANTENNA MOVED TO NEW MONUMENT"
	aux2 := "KINEMATIC DATA FOLLOWS"

	got := compressAll(t, c, []string{eventLine, aux1, aux2, epoch1Line, g01Obs1, g07Obs1})

	require.Equal(t, eventLine, got[0])
	require.Equal(t, aux1, got[1])
	require.Equal(t, aux2, got[2])
	require.Equal(t, epoch1Line, got[3])
}

func TestCompressor_CommentPassthrough(t *testing.T) {
	c, err := NewCompressor(testContract())
	require.NoError(t, err)

	comment := "intermittent tracking" + strings.Repeat(" ", headerLabelIndex-21) + "COMMENT"

	got := compressAll(t, c, []string{epoch1Line, comment, g01Obs1, g07Obs1})
	require.Equal(t, comment, got[len(got)-3])
}

func TestCompressor_UnknownConstellation(t *testing.T) {
	c, err := NewCompressor(testContract())
	require.NoError(t, err)

	epoch := " 10  3 21  0 30  0.0000000  0  1X05"
	_, err = c.CompressLine(epoch)
	require.NoError(t, err)

	_, err = c.CompressLine(g01Obs1)
	require.ErrorIs(t, err, errs.ErrUnknownObservables)
}

func TestNewCompressor_NilContract(t *testing.T) {
	_, err := NewCompressor(nil)
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}
