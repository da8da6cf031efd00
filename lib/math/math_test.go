package math_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	libmath "github.com/bridgelabs-io/riskguard/lib/math"
)

func TestMaxDuration(t *testing.T) {
	t.Parallel()

	require.Zero(t, libmath.MaxDuration())
	require.Equal(t, time.Hour, libmath.MaxDuration(time.Hour))
	require.Equal(t, 48*time.Hour, libmath.MaxDuration(time.Minute, 48*time.Hour, time.Second))
	require.Equal(t, time.Duration(0), libmath.MaxDuration(-time.Hour, 0))
}
