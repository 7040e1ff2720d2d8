package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBooleanize(t *testing.T) {
	require.False(t, Booleanize(NullVal()))
	require.False(t, Booleanize(IntVal(0)))
	require.True(t, Booleanize(IntVal(1)))
	require.False(t, Booleanize(StringVal("")))
	require.True(t, Booleanize(StringVal("x")))
	require.False(t, Booleanize(ArrayVal(nil)))
	require.True(t, Booleanize(ArrayVal([]Val{IntVal(1), IntVal(2)})))
	require.False(t, Booleanize(ArrayVal([]Val{IntVal(0)})))
}

func TestToNumberFromString(t *testing.T) {
	v, err := ToNumber(Span{}, StringVal("42"))
	require.Nil(t, err)
	require.Equal(t, int64(42), v.I)

	v2, err2 := ToNumber(Span{}, StringVal("3.5"))
	require.Nil(t, err2)
	require.Equal(t, 3.5, v2.F)

	_, err3 := ToNumber(Span{}, StringVal("not a number"))
	require.NotNil(t, err3)
	require.Equal(t, ErrInvalidCast, err3.Kind)
}

func TestCastToIntFromDouble(t *testing.T) {
	v := CastTo(Span{}, "int", DoubleVal(3.9))
	require.Equal(t, valInt, v.Kind)
	require.Equal(t, int64(3), v.I)
}

func TestCastToStringFromArray(t *testing.T) {
	v := CastTo(Span{}, "string", ArrayVal([]Val{IntVal(1), IntVal(2)}))
	require.Equal(t, "1 2", v.S)
}

func TestCastToUnsupportedTarget(t *testing.T) {
	v := CastTo(Span{}, "frobnicate", IntVal(1))
	require.True(t, v.IsError())
	require.Equal(t, ErrUnsupportedOperation, v.Err.Kind)
}

func TestCastToArrayWrapsScalar(t *testing.T) {
	v := CastTo(Span{}, "array", IntVal(7))
	require.Equal(t, valArray, v.Kind)
	require.Len(t, v.Arr, 1)
}

func TestFormatDoubleRoundTrip(t *testing.T) {
	require.Equal(t, "3.14", formatDoubleRoundTrip(3.14))
	require.Equal(t, "2", formatDoubleRoundTrip(2.0))
}
