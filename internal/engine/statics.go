package engine

import (
	"encoding/base64"
	"encoding/hex"
	"math"
	"strings"
)

// evalStaticMember resolves a no-call static property/field reference
// like [Math]::PI. Anything not in the whitelist yields Unknown rather
// than a guess.
func evalStaticMember(span Span, typeName, member string) Val {
	switch strings.ToLower(typeName) {
	case "math":
		switch strings.ToLower(member) {
		case "pi":
			return DoubleVal(3.14159265358979)
		case "e":
			return DoubleVal(2.71828182845905)
		}
	case "string":
		if strings.EqualFold(member, "Empty") {
			return StringVal("")
		}
	case "int32", "int":
		switch strings.ToLower(member) {
		case "maxvalue":
			return IntVal(2147483647)
		case "minvalue":
			return IntVal(-2147483648)
		}
	}
	return UnknownVal()
}

// callStaticMethod implements the whitelisted static-method table (spec.md
// §6): Convert/Encoding Base64 and hex round trips, Math functions, and a
// handful of [string]::Format-adjacent helpers. handled=false means the
// call is outside the safe whitelist and must render opaque.
func callStaticMethod(span Span, typeName, method string, args []Val) (Val, bool) {
	tn := strings.ToLower(typeName)
	m := strings.ToLower(method)
	switch tn {
	case "convert":
		return callConvertMethod(span, m, args)
	case "math":
		return callMathMethod(span, m, args)
	case "string":
		return callStringStaticMethod(span, m, args)
	case "text.encoding", "system.text.encoding", "encoding":
		return callEncodingMethod(span, m, args)
	}
	return Val{}, false
}

func callConvertMethod(span Span, method string, args []Val) (Val, bool) {
	switch method {
	case "tobase64string":
		if len(args) == 1 && args[0].Kind == valString {
			return StringVal(base64.StdEncoding.EncodeToString([]byte(args[0].S))), true
		}
	case "frombase64string":
		if len(args) == 1 && args[0].Kind == valString {
			b, err := base64.StdEncoding.DecodeString(args[0].S)
			if err != nil {
				return ErrorVal(newCastError(span, "String", "Byte[]")), true
			}
			out := make([]Val, len(b))
			for i, by := range b {
				out[i] = IntVal(int64(by))
			}
			return ArrayVal(out), true
		}
	case "toint32":
		if len(args) == 1 {
			return castToInt(span, args[0]), true
		}
	case "todouble":
		if len(args) == 1 {
			return castToDouble(span, args[0]), true
		}
	case "tostring":
		if len(args) >= 1 {
			return StringVal(args[0].String()), true
		}
	case "tohexstring":
		if len(args) == 1 && args[0].Kind == valArray {
			b := make([]byte, len(args[0].Arr))
			for i, v := range args[0].Arr {
				b[i] = byte(intOf(v))
			}
			return StringVal(strings.ToUpper(hex.EncodeToString(b))), true
		}
	case "fromhexstring":
		if len(args) == 1 && args[0].Kind == valString {
			b, err := hex.DecodeString(args[0].S)
			if err != nil {
				return ErrorVal(newCastError(span, "String", "Byte[]")), true
			}
			out := make([]Val, len(b))
			for i, by := range b {
				out[i] = IntVal(int64(by))
			}
			return ArrayVal(out), true
		}
	}
	return Val{}, false
}

func callMathMethod(span Span, method string, args []Val) (Val, bool) {
	if len(args) == 0 {
		return Val{}, false
	}
	a, err := ToNumber(span, args[0])
	if err != nil {
		return ErrorVal(err), true
	}
	x := asFloat(a)
	switch method {
	case "abs":
		if x < 0 {
			x = -x
		}
		if a.Kind == valInt {
			return IntVal(int64(x)), true
		}
		return DoubleVal(x), true
	case "floor":
		return DoubleVal(math.Floor(x)), true
	case "ceiling":
		return DoubleVal(math.Ceil(x)), true
	case "round":
		return DoubleVal(math.Round(x)), true
	case "sqrt":
		return DoubleVal(math.Sqrt(x)), true
	case "max":
		if len(args) >= 2 {
			b, _ := ToNumber(span, args[1])
			if asFloat(b) > x {
				return b, true
			}
			return a, true
		}
	case "min":
		if len(args) >= 2 {
			b, _ := ToNumber(span, args[1])
			if asFloat(b) < x {
				return b, true
			}
			return a, true
		}
	case "pow":
		if len(args) >= 2 {
			b, _ := ToNumber(span, args[1])
			return DoubleVal(math.Pow(x, asFloat(b))), true
		}
	}
	return Val{}, false
}

func callStringStaticMethod(span Span, method string, args []Val) (Val, bool) {
	switch method {
	case "isnullorempty":
		if len(args) == 1 {
			return BoolVal(args[0].Kind == valNull || (args[0].Kind == valString && args[0].S == "")), true
		}
	case "isnullorwhitespace":
		if len(args) == 1 {
			return BoolVal(args[0].Kind == valNull || strings.TrimSpace(args[0].String()) == ""), true
		}
	case "join":
		if len(args) >= 2 {
			sep := args[0].String()
			var parts []string
			items := args[1:]
			if len(items) == 1 && items[0].Kind == valArray {
				items = items[0].Arr
			}
			for _, it := range items {
				parts = append(parts, it.String())
			}
			return StringVal(strings.Join(parts, sep)), true
		}
	case "format":
		if len(args) >= 1 {
			rest := args[1:]
			return FormatComposite(span, args[0], ArrayVal(rest)), true
		}
	}
	return Val{}, false
}

func callEncodingMethod(span Span, method string, args []Val) (Val, bool) {
	switch method {
	case "getbytes":
		if len(args) == 1 && args[0].Kind == valString {
			b := []byte(args[0].S)
			out := make([]Val, len(b))
			for i, by := range b {
				out[i] = IntVal(int64(by))
			}
			return ArrayVal(out), true
		}
	case "getstring":
		if len(args) == 1 && args[0].Kind == valArray {
			b := make([]byte, len(args[0].Arr))
			for i, v := range args[0].Arr {
				b[i] = byte(intOf(v))
			}
			return StringVal(string(b)), true
		}
	}
	return Val{}, false
}

// callInstanceMethod handles a whitelisted set of instance methods on
// String/Array values: .ToUpper(), .ToLower(), .Trim(), .Split(), .Replace(),
// .Substring(), .Contains(), .StartsWith(), .EndsWith(), .PadLeft/Right(),
// .IndexOf(), and the array .Contains()/.IndexOf().
func callInstanceMethod(span Span, recv Val, method string, args []Val) (Val, bool) {
	m := strings.ToLower(method)
	switch recv.Kind {
	case valString:
		return callStringInstanceMethod(span, recv.S, m, args)
	case valArray:
		return callArrayInstanceMethod(span, recv.Arr, m, args)
	}
	return Val{}, false
}

func callStringInstanceMethod(span Span, s, method string, args []Val) (Val, bool) {
	switch method {
	case "toupper":
		return StringVal(strings.ToUpper(s)), true
	case "tolower":
		return StringVal(strings.ToLower(s)), true
	case "trim":
		return StringVal(strings.TrimSpace(s)), true
	case "trimstart":
		return StringVal(strings.TrimLeft(s, " \t\r\n")), true
	case "trimend":
		return StringVal(strings.TrimRight(s, " \t\r\n")), true
	case "contains":
		if len(args) == 1 {
			return BoolVal(strings.Contains(s, args[0].String())), true
		}
	case "startswith":
		if len(args) == 1 {
			return BoolVal(strings.HasPrefix(s, args[0].String())), true
		}
	case "endswith":
		if len(args) == 1 {
			return BoolVal(strings.HasSuffix(s, args[0].String())), true
		}
	case "replace":
		if len(args) == 2 {
			return StringVal(strings.ReplaceAll(s, args[0].String(), args[1].String())), true
		}
	case "split":
		if len(args) >= 1 {
			parts := strings.Split(s, args[0].String())
			out := make([]Val, len(parts))
			for i, p := range parts {
				out[i] = StringVal(p)
			}
			return ArrayVal(out), true
		}
	case "substring":
		r := []rune(s)
		if len(args) == 1 {
			start := int(intOf(args[0]))
			if start < 0 || start > len(r) {
				return ErrorVal(newValError(ErrIndexOutOfBounds, span, "substring start out of range")), true
			}
			return StringVal(string(r[start:])), true
		}
		if len(args) == 2 {
			start, length := int(intOf(args[0])), int(intOf(args[1]))
			if start < 0 || length < 0 || start+length > len(r) {
				return ErrorVal(newValError(ErrIndexOutOfBounds, span, "substring range out of range")), true
			}
			return StringVal(string(r[start : start+length])), true
		}
	case "padleft":
		if len(args) >= 1 {
			width := int(intOf(args[0]))
			pad := " "
			if len(args) == 2 {
				if args[1].Kind == valString {
					pad = args[1].S
				} else {
					pad = string(rune(intOf(args[1])))
				}
			}
			return StringVal(padString(s, width, pad, true)), true
		}
	case "padright":
		if len(args) >= 1 {
			width := int(intOf(args[0]))
			pad := " "
			if len(args) == 2 {
				if args[1].Kind == valString {
					pad = args[1].S
				} else {
					pad = string(rune(intOf(args[1])))
				}
			}
			return StringVal(padString(s, width, pad, false)), true
		}
	case "indexof":
		if len(args) == 1 {
			return IntVal(int64(strings.Index(s, args[0].String()))), true
		}
	}
	return Val{}, false
}

func callArrayInstanceMethod(span Span, arr []Val, method string, args []Val) (Val, bool) {
	switch method {
	case "contains":
		if len(args) == 1 {
			return BoolVal(containsOp("-contains", ArrayVal(arr), args[0])), true
		}
	case "indexof":
		if len(args) == 1 {
			for i, v := range arr {
				if compareEq("-eq", v, args[0]) {
					return IntVal(int64(i)), true
				}
			}
			return IntVal(-1), true
		}
	}
	return Val{}, false
}

func padString(s string, width int, pad string, left bool) string {
	if pad == "" {
		pad = " "
	}
	r := []rune(s)
	if len(r) >= width {
		return s
	}
	need := width - len(r)
	var b strings.Builder
	for b.Len() < need {
		b.WriteString(pad)
	}
	padding := string([]rune(b.String())[:need])
	if left {
		return padding + s
	}
	return s + padding
}
