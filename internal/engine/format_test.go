package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatCompositeBasic(t *testing.T) {
	v := FormatComposite(Span{}, StringVal("{0} of {1}"), ArrayVal([]Val{IntVal(3), IntVal(10)}))
	require.Equal(t, "3 of 10", v.S)
}

func TestFormatCompositeSingleArg(t *testing.T) {
	v := FormatComposite(Span{}, StringVal("value={0}"), IntVal(5))
	require.Equal(t, "value=5", v.S)
}

func TestFormatCompositeHexAndPadding(t *testing.T) {
	v := FormatComposite(Span{}, StringVal("{0:X4}"), ArrayVal([]Val{IntVal(255)}))
	require.Equal(t, "00FF", v.S)
}

func TestFormatCompositeAlignment(t *testing.T) {
	v := FormatComposite(Span{}, StringVal("[{0,5}]"), ArrayVal([]Val{StringVal("x")}))
	require.Equal(t, "[    x]", v.S)
}

func TestFormatCompositeEscapedBraces(t *testing.T) {
	v := FormatComposite(Span{}, StringVal("{{literal}}"), ArrayVal(nil))
	require.Equal(t, "{literal}", v.S)
}

func TestFormatCompositeIndexOutOfRange(t *testing.T) {
	v := FormatComposite(Span{}, StringVal("{5}"), ArrayVal([]Val{IntVal(1)}))
	require.True(t, v.IsError())
}

func TestFormatCompositeFixedPointAndPercent(t *testing.T) {
	v := FormatComposite(Span{}, StringVal("{0:F1}"), ArrayVal([]Val{DoubleVal(3.14159)}))
	require.Equal(t, "3.1", v.S)

	v2 := FormatComposite(Span{}, StringVal("{0:P0}"), ArrayVal([]Val{DoubleVal(0.5)}))
	require.Equal(t, "50%", v2.S)
}

func TestFormatCompositeThousandsGrouping(t *testing.T) {
	v := FormatComposite(Span{}, StringVal("{0:N0}"), ArrayVal([]Val{DoubleVal(1234567)}))
	require.Equal(t, "1,234,567", v.S)
}
