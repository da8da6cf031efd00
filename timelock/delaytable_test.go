package timelock_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bridgelabs-io/riskguard/testutil"
	"github.com/bridgelabs-io/riskguard/timelock"
	"github.com/bridgelabs-io/riskguard/types"
)

func TestDelayTableLookups(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(30))

	capSel := testutil.GenRandomSelector(r)
	ctrlSel := testutil.GenRandomSelector(r)
	table, err := timelock.NewDelayTable([]timelock.DelayEntry{
		{Param: types.ParamGlobalMintCap, Selector: capSel, Delay: 24 * time.Hour},
		{Param: types.ParamController, Selector: ctrlSel, Delay: 0},
	})
	require.NoError(t, err)

	d, ok := table.Delay(types.ParamGlobalMintCap)
	require.True(t, ok)
	require.Equal(t, 24*time.Hour, d)

	// Zero delays are distinguishable from missing entries.
	d, ok = table.Delay(types.ParamController)
	require.True(t, ok)
	require.Zero(t, d)

	_, ok = table.Delay(types.ParamGovernanceTransfer)
	require.False(t, ok)

	p, ok := table.ParameterFor(ctrlSel)
	require.True(t, ok)
	require.Equal(t, types.ParamController, p)

	d, ok = table.DelayForSelector(capSel)
	require.True(t, ok)
	require.Equal(t, 24*time.Hour, d)

	_, ok = table.DelayForSelector(testutil.GenRandomSelector(r))
	require.False(t, ok)
}

func TestDelayTableRejectsDuplicates(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(31))
	sel := testutil.GenRandomSelector(r)

	_, err := timelock.NewDelayTable([]timelock.DelayEntry{
		{Param: types.ParamGlobalMintCap, Selector: sel, Delay: time.Hour},
		{Param: types.ParamGlobalMintCap, Selector: testutil.GenRandomSelector(r), Delay: time.Hour},
	})
	require.ErrorIs(t, err, timelock.ErrDuplicateEntry)

	_, err = timelock.NewDelayTable([]timelock.DelayEntry{
		{Param: types.ParamGlobalMintCap, Selector: sel, Delay: time.Hour},
		{Param: types.ParamController, Selector: sel, Delay: time.Hour},
	})
	require.ErrorIs(t, err, timelock.ErrDuplicateEntry)
}
