package testutil

import (
	"encoding/hex"
	"math/rand"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/bridgelabs-io/riskguard/types"
)

// AddRandomSeedsToFuzzer adds a series of random seeds to the fuzzer.
func AddRandomSeedsToFuzzer(f *testing.F, num uint) {
	// Set a unique seed for the deterministic randomness source
	r := rand.New(rand.NewSource(rand.Int63()))

	for i := uint(0); i < num; i++ {
		f.Add(r.Int63())
	}
}

func GenRandomByteArray(r *rand.Rand, length uint64) []byte {
	arr := make([]byte, length)
	if _, err := r.Read(arr); err != nil {
		panic(err)
	}

	return arr
}

func GenRandomHexStr(r *rand.Rand, length uint64) string {
	return hex.EncodeToString(GenRandomByteArray(r, length))
}

// GenRandomAddress returns a random non-zero EVM address.
func GenRandomAddress(r *rand.Rand) common.Address {
	return common.BytesToAddress(GenRandomByteArray(r, common.AddressLength))
}

// GenRandomSelector returns a random 4-byte function selector.
func GenRandomSelector(r *rand.Rand) types.Selector {
	var sel types.Selector
	copy(sel[:], GenRandomByteArray(r, types.SelectorLen))

	return sel
}

// GenRandomAmount returns a random positive amount below 1e12.
func GenRandomAmount(r *rand.Rand) sdkmath.Int {
	return sdkmath.NewInt(r.Int63n(1_000_000_000_000) + 1)
}

// GenRandomGovernanceUpdateCalls returns n parallel call sequences with
// zero native values and short random payloads.
func GenRandomGovernanceUpdateCalls(r *rand.Rand, n int) ([]types.Selector, []common.Address, []sdkmath.Int, [][]byte) {
	selectors := make([]types.Selector, n)
	targets := make([]common.Address, n)
	values := make([]sdkmath.Int, n)
	payloads := make([][]byte, n)
	for i := 0; i < n; i++ {
		selectors[i] = GenRandomSelector(r)
		targets[i] = GenRandomAddress(r)
		values[i] = sdkmath.ZeroInt()
		payloads[i] = GenRandomByteArray(r, uint64(r.Intn(64)))
	}

	return selectors, targets, values, payloads
}
