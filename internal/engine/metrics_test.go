package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeMetricsEmptyPayload(t *testing.T) {
	m := ComputeMetrics("")
	require.Equal(t, 0, m.SizeBytes)
	require.Equal(t, 0, m.UniqueSymbols)
	require.Equal(t, 0.0, m.Entropy)
}

func TestComputeMetricsUniqueSymbolsAndSize(t *testing.T) {
	m := ComputeMetrics("aabbcc")
	require.Equal(t, 6, m.SizeBytes)
	require.Equal(t, 3, m.UniqueSymbols)
	require.Equal(t, 1, m.LineCount)
}

func TestComputeMetricsLineCount(t *testing.T) {
	m := ComputeMetrics("one\ntwo\nthree")
	require.Equal(t, 3, m.LineCount)
}

func TestComputeMetricsAlnumRatio(t *testing.T) {
	m := ComputeMetrics("ab!!")
	require.InDelta(t, 0.5, m.AlnumRatio, 0.0001)
}

func TestComputeMetricsEntropyUniformIsMaximal(t *testing.T) {
	// four distinct symbols, uniform frequency: entropy should be exactly 2 bits.
	m := ComputeMetrics("abcd")
	require.InDelta(t, 2.0, m.Entropy, 0.0001)

	single := ComputeMetrics("aaaa")
	require.True(t, math.Abs(single.Entropy) < 0.0001)
}

func TestComputeMetricsWithInputCompressionRatio(t *testing.T) {
	m := ComputeMetricsWithInput("short", 10)
	require.Equal(t, 10, m.InputSizeBytes)
	require.InDelta(t, 0.5, m.CompressionRatio, 0.0001)
}

func TestComputeMetricsWithInputZeroInputSkipsRatio(t *testing.T) {
	m := ComputeMetricsWithInput("short", 0)
	require.Equal(t, 0.0, m.CompressionRatio)
}
