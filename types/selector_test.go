package types_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bridgelabs-io/riskguard/testutil"
	"github.com/bridgelabs-io/riskguard/types"
)

func TestSelectorFromSignature(t *testing.T) {
	t.Parallel()

	// ERC-20 transfer is the canonical known-answer check.
	sel := types.SelectorFromSignature("transfer(address,uint256)")
	require.Equal(t, "0xa9059cbb", sel.Hex())

	require.NotEqual(t,
		types.SelectorFromSignature("setGlobalMintCap(uint256)"),
		types.SelectorFromSignature("setMintRateLimit(uint256,uint32)"))
}

func TestParseSelector(t *testing.T) {
	t.Parallel()

	sel, err := types.ParseSelector("0xa9059cbb")
	require.NoError(t, err)
	require.Equal(t, types.Selector{0xa9, 0x05, 0x9c, 0xbb}, sel)

	// The 0x prefix is optional.
	bare, err := types.ParseSelector("a9059cbb")
	require.NoError(t, err)
	require.Equal(t, sel, bare)

	_, err = types.ParseSelector("0xa9059c")
	require.Error(t, err)
	_, err = types.ParseSelector("0xzzzzzzzz")
	require.Error(t, err)
}

func FuzzSelectorTextRoundTrip(f *testing.F) {
	testutil.AddRandomSeedsToFuzzer(f, 10)
	f.Fuzz(func(t *testing.T, seed int64) {
		r := rand.New(rand.NewSource(seed))
		sel := testutil.GenRandomSelector(r)

		text, err := sel.MarshalText()
		require.NoError(t, err)

		var decoded types.Selector
		require.NoError(t, decoded.UnmarshalText(text))
		require.Equal(t, sel, decoded)
	})
}
