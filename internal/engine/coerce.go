package engine

import (
	"strconv"
	"strings"
)

// Booleanize converts a Val to bool per spec.md §4.V: $null/0/""/empty
// array -> false; non-empty string, non-zero number, non-empty array,
// $true -> true.
func Booleanize(v Val) bool {
	switch v.Kind {
	case valNull:
		return false
	case valBool:
		return v.B
	case valInt:
		return v.I != 0
	case valDouble:
		return v.F != 0
	case valString:
		return v.S != ""
	case valArray:
		if len(v.Arr) == 0 {
			return false
		}
		if len(v.Arr) == 1 {
			return Booleanize(v.Arr[0])
		}
		return true
	case valHashTable:
		return v.HT != nil && v.HT.Len() > 0
	case valRange:
		return len(v.RG.Realize()) > 0
	case valUnknown:
		return false
	default:
		return false
	}
}

// ToNumber coerces v to a numeric Val (Int or Double), used by arithmetic
// operand preparation. Null coerces to 0, Bool to 0/1.
func ToNumber(span Span, v Val) (Val, *ValError) {
	switch v.Kind {
	case valInt, valDouble:
		return v, nil
	case valNull:
		return IntVal(0), nil
	case valBool:
		if v.B {
			return IntVal(1), nil
		}
		return IntVal(0), nil
	case valString:
		return stringToNumber(span, v.S)
	case valUnknown:
		return v, nil
	default:
		return NullVal(), newValError(ErrInvalidCast, span, "cannot convert %s to a number", v.TypeName())
	}
}

func stringToNumber(span Span, s string) (Val, *ValError) {
	t := strings.TrimSpace(s)
	if t == "" {
		return IntVal(0), nil
	}
	if i, err := strconv.ParseInt(t, 0, 64); err == nil {
		return IntVal(i), nil
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil {
		return DoubleVal(f), nil
	}
	return NullVal(), newCastError(span, "String", "Int")
}

// CastTo implements [T]x. Supported targets: int, double, string, bool,
// char, byte, array, hashtable.
func CastTo(span Span, target string, v Val) Val {
	switch strings.ToLower(target) {
	case "int", "int32", "int64", "long":
		return castToInt(span, v)
	case "double", "float", "single", "decimal":
		return castToDouble(span, v)
	case "string":
		return StringVal(v.String())
	case "bool", "boolean":
		return BoolVal(Booleanize(v))
	case "char":
		return castToChar(span, v)
	case "byte":
		return castToByte(span, v)
	case "array", "object[]":
		return castToArray(v)
	case "hashtable":
		return castToHashtable(span, v)
	default:
		e := newValError(ErrUnsupportedOperation, span, "unsupported cast target %q", target)
		return ErrorVal(e)
	}
}

func castToInt(span Span, v Val) Val {
	switch v.Kind {
	case valInt:
		return v
	case valDouble:
		return IntVal(int64(v.F))
	case valBool:
		if v.B {
			return IntVal(1)
		}
		return IntVal(0)
	case valNull:
		return IntVal(0)
	case valString:
		t := strings.TrimSpace(v.S)
		if i, err := strconv.ParseInt(t, 0, 64); err == nil {
			return IntVal(i)
		}
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return IntVal(int64(f))
		}
		return ErrorVal(newCastError(span, "String", "Int"))
	case valUnknown:
		return v
	default:
		return ErrorVal(newCastError(span, v.TypeName(), "Int"))
	}
}

func castToDouble(span Span, v Val) Val {
	switch v.Kind {
	case valDouble:
		return v
	case valInt:
		return DoubleVal(float64(v.I))
	case valBool:
		if v.B {
			return DoubleVal(1)
		}
		return DoubleVal(0)
	case valNull:
		return DoubleVal(0)
	case valString:
		t := strings.TrimSpace(v.S)
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return DoubleVal(f)
		}
		return ErrorVal(newCastError(span, "String", "Double"))
	case valUnknown:
		return v
	default:
		return ErrorVal(newCastError(span, v.TypeName(), "Double"))
	}
}

func castToChar(span Span, v Val) Val {
	switch v.Kind {
	case valString:
		r := []rune(v.S)
		if len(r) == 0 {
			return ErrorVal(newCastError(span, "String", "Char"))
		}
		return IntVal(int64(r[0]))
	case valInt:
		return v
	case valUnknown:
		return v
	default:
		return ErrorVal(newCastError(span, v.TypeName(), "Char"))
	}
}

func castToByte(span Span, v Val) Val {
	n := castToInt(span, v)
	if n.IsError() {
		return n
	}
	if n.Kind == valUnknown {
		return n
	}
	b := n.I & 0xFF
	return IntVal(b)
}

func castToArray(v Val) Val {
	switch v.Kind {
	case valArray:
		return v
	case valRange:
		return ArrayVal(v.RG.Realize())
	case valNull:
		return ArrayVal(nil)
	case valUnknown:
		return v
	default:
		return ArrayVal([]Val{v})
	}
}

func castToHashtable(span Span, v Val) Val {
	if v.Kind == valHashTable {
		return v
	}
	if v.Kind == valUnknown {
		return v
	}
	return ErrorVal(newCastError(span, v.TypeName(), "Hashtable"))
}

// formatDoubleRoundTrip renders f using the shortest decimal
// representation that round-trips, the way .NET's default ToString("G")
// does for doubles used in script rendering (spec.md §4.R rule 3).
func formatDoubleRoundTrip(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
