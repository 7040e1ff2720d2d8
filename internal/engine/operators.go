package engine

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

var foldComparer = cases.Fold()

func foldEq(a, b string) bool { return foldComparer.String(a) == foldComparer.String(b) }

// BinaryOp evaluates a binary operator per spec.md §4.V. op is the
// canonical lowercase operator spelling ("+", "-eq", "-like", ...).
func BinaryOp(span Span, op string, l, r Val) Val {
	if l.IsError() {
		return l
	}
	if r.IsError() {
		return r
	}
	if l.IsUnknown() || r.IsUnknown() {
		return UnknownVal()
	}
	switch op {
	case "+":
		return addVal(span, l, r)
	case "-":
		return subVal(span, l, r)
	case "*":
		return mulVal(span, l, r)
	case "/":
		return divVal(span, l, r)
	case "%":
		return modVal(span, l, r)
	case "..":
		return rangeVal(span, l, r)
	case "-f":
		return FormatComposite(span, l, r)
	case "-band":
		return bitwise(span, l, r, func(a, b int64) int64 { return a & b })
	case "-bor":
		return bitwise(span, l, r, func(a, b int64) int64 { return a | b })
	case "-bxor":
		return bitwise(span, l, r, func(a, b int64) int64 { return a ^ b })
	case "-shl":
		return bitwise(span, l, r, func(a, b int64) int64 { return a << uint(b) })
	case "-shr":
		return bitwise(span, l, r, func(a, b int64) int64 { return a >> uint(b) })
	case "-and":
		return BoolVal(Booleanize(l) && Booleanize(r))
	case "-or":
		return BoolVal(Booleanize(l) || Booleanize(r))
	case "-xor":
		return BoolVal(Booleanize(l) != Booleanize(r))
	case "-eq", "-ieq", "-ceq":
		return BoolVal(compareEq(op, l, r))
	case "-ne", "-ine", "-cne":
		return BoolVal(!compareEq(strings.Replace(op, "ne", "eq", 1), l, r))
	case "-lt", "-ilt", "-clt":
		return BoolVal(compareOrder(op, l, r) < 0)
	case "-le", "-ile", "-cle":
		return BoolVal(compareOrder(op, l, r) <= 0)
	case "-gt", "-igt", "-cgt":
		return BoolVal(compareOrder(op, l, r) > 0)
	case "-ge", "-ige", "-cge":
		return BoolVal(compareOrder(op, l, r) >= 0)
	case "-like", "-ilike", "-clike":
		return BoolVal(wildcardMatch(op, l.String(), r.String()))
	case "-notlike", "-inotlike", "-cnotlike":
		return BoolVal(!wildcardMatch(strings.Replace(op, "notlike", "like", 1), l.String(), r.String()))
	case "-match", "-imatch", "-cmatch":
		return matchOp(span, op, l, r, false)
	case "-notmatch", "-inotmatch", "-cnotmatch":
		return matchOp(span, strings.Replace(op, "notmatch", "match", 1), l, r, true)
	case "-replace", "-ireplace", "-creplace":
		return replaceOp(span, op, l, r)
	case "-split":
		return splitOp(span, l, r)
	case "-join":
		return joinOp(l, r)
	case "-contains", "-icontains", "-ccontains":
		return BoolVal(containsOp(op, l, r))
	case "-notcontains", "-inotcontains", "-cnotcontains":
		return BoolVal(!containsOp(strings.Replace(op, "notcontains", "contains", 1), l, r))
	case "-in":
		return BoolVal(containsOp("-contains", r, l))
	case "-notin":
		return BoolVal(!containsOp("-contains", r, l))
	default:
		e := newValError(ErrUnsupportedOperation, span, "unsupported operator %q", op)
		return ErrorVal(e)
	}
}

func isCaseSensitive(op string) bool { return strings.HasPrefix(op, "-c") }

func addVal(span Span, l, r Val) Val {
	if l.Kind == valString {
		return StringVal(l.S + r.String())
	}
	if l.Kind == valArray {
		if r.Kind == valArray {
			out := append([]Val{}, l.Arr...)
			return ArrayVal(append(out, r.Arr...))
		}
		out := append([]Val{}, l.Arr...)
		return ArrayVal(append(out, r))
	}
	if l.Kind == valHashTable && r.Kind == valHashTable {
		merged := l.HT.Clone()
		for _, k := range r.HT.Keys() {
			if _, exists := merged.Get(k); exists {
				return ErrorVal(newValError(ErrTypeMismatch, span, "key %q already exists in left hashtable", k))
			}
			v, _ := r.HT.Get(k)
			merged.Set(k, v)
		}
		return HashTableVal(merged)
	}
	if l.Kind == valNull {
		return addVal(span, numericZeroLike(r), r)
	}
	ln, e1 := ToNumber(span, l)
	if e1 != nil {
		return ErrorVal(e1)
	}
	rn, e2 := ToNumber(span, r)
	if e2 != nil {
		return ErrorVal(e2)
	}
	return numericAdd(ln, rn)
}

func numericZeroLike(r Val) Val {
	if r.Kind == valDouble {
		return DoubleVal(0)
	}
	return IntVal(0)
}

func numericAdd(l, r Val) Val {
	if l.Kind == valDouble || r.Kind == valDouble {
		return DoubleVal(asFloat(l) + asFloat(r))
	}
	return IntVal(l.I + r.I)
}

func asFloat(v Val) float64 {
	if v.Kind == valDouble {
		return v.F
	}
	return float64(v.I)
}

func subVal(span Span, l, r Val) Val {
	ln, e1 := ToNumber(span, l)
	if e1 != nil {
		return ErrorVal(e1)
	}
	rn, e2 := ToNumber(span, r)
	if e2 != nil {
		return ErrorVal(e2)
	}
	if ln.Kind == valDouble || rn.Kind == valDouble {
		return DoubleVal(asFloat(ln) - asFloat(rn))
	}
	return IntVal(ln.I - rn.I)
}

func mulVal(span Span, l, r Val) Val {
	if l.Kind == valString {
		n, e := ToNumber(span, r)
		if e != nil {
			return ErrorVal(e)
		}
		count := n.I
		if n.Kind == valDouble {
			count = int64(n.F)
		}
		if count <= 0 {
			return StringVal("")
		}
		return StringVal(strings.Repeat(l.S, int(count)))
	}
	if l.Kind == valArray {
		n, e := ToNumber(span, r)
		if e != nil {
			return ErrorVal(e)
		}
		count := n.I
		if count <= 0 {
			return ArrayVal(nil)
		}
		var out []Val
		for i := int64(0); i < count; i++ {
			out = append(out, l.Arr...)
		}
		return ArrayVal(out)
	}
	ln, e1 := ToNumber(span, l)
	if e1 != nil {
		return ErrorVal(e1)
	}
	rn, e2 := ToNumber(span, r)
	if e2 != nil {
		return ErrorVal(e2)
	}
	if ln.Kind == valDouble || rn.Kind == valDouble {
		return DoubleVal(asFloat(ln) * asFloat(rn))
	}
	return IntVal(ln.I * rn.I)
}

func divVal(span Span, l, r Val) Val {
	ln, e1 := ToNumber(span, l)
	if e1 != nil {
		return ErrorVal(e1)
	}
	rn, e2 := ToNumber(span, r)
	if e2 != nil {
		return ErrorVal(e2)
	}
	if rn.Kind == valInt && rn.I == 0 {
		return ErrorVal(newValError(ErrDivideByZero, span, "division by zero"))
	}
	if rn.Kind == valDouble && rn.F == 0 {
		return ErrorVal(newValError(ErrDivideByZero, span, "division by zero"))
	}
	if ln.Kind == valDouble || rn.Kind == valDouble {
		return DoubleVal(asFloat(ln) / asFloat(rn))
	}
	if ln.I%rn.I == 0 {
		return IntVal(ln.I / rn.I)
	}
	return DoubleVal(float64(ln.I) / float64(rn.I))
}

func modVal(span Span, l, r Val) Val {
	ln, e1 := ToNumber(span, l)
	if e1 != nil {
		return ErrorVal(e1)
	}
	rn, e2 := ToNumber(span, r)
	if e2 != nil {
		return ErrorVal(e2)
	}
	if (rn.Kind == valInt && rn.I == 0) || (rn.Kind == valDouble && rn.F == 0) {
		return ErrorVal(newValError(ErrDivideByZero, span, "division by zero"))
	}
	if ln.Kind == valDouble || rn.Kind == valDouble {
		a, b := asFloat(ln), asFloat(rn)
		return DoubleVal(a - b*float64(int64(a/b)))
	}
	return IntVal(ln.I % rn.I)
}

func rangeVal(span Span, l, r Val) Val {
	ln, e1 := ToNumber(span, l)
	if e1 != nil {
		return ErrorVal(e1)
	}
	rn, e2 := ToNumber(span, r)
	if e2 != nil {
		return ErrorVal(e2)
	}
	return RangeVal(Range{Start: castInt64(ln), End: castInt64(rn), Inclusive: true})
}

func castInt64(v Val) int64 {
	if v.Kind == valDouble {
		return int64(v.F)
	}
	return v.I
}

func bitwise(span Span, l, r Val, f func(a, b int64) int64) Val {
	ln, e1 := ToNumber(span, l)
	if e1 != nil {
		return ErrorVal(e1)
	}
	rn, e2 := ToNumber(span, r)
	if e2 != nil {
		return ErrorVal(e2)
	}
	return IntVal(f(castInt64(ln), castInt64(rn)))
}

func compareEq(op string, l, r Val) bool {
	if l.Kind == valString || r.Kind == valString {
		ls, rs := l.String(), r.String()
		if isCaseSensitive(op) {
			return ls == rs
		}
		return foldEq(ls, rs)
	}
	if l.Kind == valArray {
		if len(l.Arr) != 1 {
			return false
		}
		return compareEq(op, l.Arr[0], r)
	}
	if l.Kind == valBool || r.Kind == valBool {
		return Booleanize(l) == Booleanize(r)
	}
	ln, e1 := ToNumber(Span{}, l)
	rn, e2 := ToNumber(Span{}, r)
	if e1 != nil || e2 != nil {
		return false
	}
	return asFloat(ln) == asFloat(rn)
}

func compareOrder(op string, l, r Val) int {
	if l.Kind == valString || r.Kind == valString {
		ls, rs := l.String(), r.String()
		if !isCaseSensitive(op) {
			ls, rs = foldComparer.String(ls), foldComparer.String(rs)
		}
		return strings.Compare(ls, rs)
	}
	ln, e1 := ToNumber(Span{}, l)
	rn, e2 := ToNumber(Span{}, r)
	if e1 != nil || e2 != nil {
		return strings.Compare(l.String(), r.String())
	}
	a, b := asFloat(ln), asFloat(rn)
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func wildcardMatch(op, s, pattern string) bool {
	re := wildcardToRegexp(pattern, isCaseSensitive(op))
	return re.MatchString(s)
}

func wildcardToRegexp(pattern string, caseSensitive bool) *regexp.Regexp {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	flags := "(?s)"
	if !caseSensitive {
		flags = "(?is)"
	}
	re, err := regexp.Compile(flags + b.String())
	if err != nil {
		return regexp.MustCompile("$^") // matches nothing
	}
	return re
}

func compileMatchRegex(pattern string, caseSensitive bool) (*regexp.Regexp, error) {
	if caseSensitive {
		return regexp.Compile(pattern)
	}
	return regexp.Compile("(?i)" + pattern)
}

func matchOp(span Span, op string, l, r Val, negated bool) Val {
	v, _ := matchOpCaptures(span, op, l, r, negated)
	return v
}

// matchOpCaptures runs -match/-notmatch and also returns the capture-group
// table whenever the pattern matches, also for -notmatch (nil when it does
// not match), so
// a caller with scope access can populate $matches the way a real -match
// or switch -regex clause does.
func matchOpCaptures(span Span, op string, l, r Val, negated bool) (Val, *HashTable) {
	re, err := compileMatchRegex(r.String(), isCaseSensitive(op))
	if err != nil {
		return ErrorVal(newValError(ErrUnsupportedOperation, span, "invalid regex %q: %v", r.String(), err)), nil
	}
	m := re.FindStringSubmatch(l.String())
	matched := m != nil
	result := BoolVal(matched != negated)
	if !matched {
		return result, nil
	}
	ht := NewHashTable()
	names := re.SubexpNames()
	for i, g := range m {
		ht.Set(strconv.Itoa(i), StringVal(g))
		if i > 0 && names[i] != "" {
			ht.Set(names[i], StringVal(g))
		}
	}
	return result, ht
}

func replaceOp(span Span, op string, l, r Val) Val {
	// -replace is typically used with two args via a chained call; binary
	// form here takes r as either a pattern string or a 2-element array
	// [pattern, replacement].
	pattern := r.String()
	replacement := ""
	if r.Kind == valArray && len(r.Arr) >= 1 {
		pattern = r.Arr[0].String()
		if len(r.Arr) >= 2 {
			replacement = r.Arr[1].String()
		}
	}
	re, err := compileMatchRegex(pattern, isCaseSensitive(op))
	if err != nil {
		return ErrorVal(newValError(ErrUnsupportedOperation, span, "invalid regex %q: %v", pattern, err))
	}
	return StringVal(re.ReplaceAllString(l.String(), replacement))
}

func splitOp(span Span, l, r Val) Val {
	pattern := r.String()
	re, err := compileMatchRegex(pattern, false)
	if err != nil {
		return ErrorVal(newValError(ErrUnsupportedOperation, span, "invalid regex %q: %v", pattern, err))
	}
	parts := re.Split(l.String(), -1)
	out := make([]Val, len(parts))
	for i, p := range parts {
		out[i] = StringVal(p)
	}
	return ArrayVal(out)
}

func joinOp(l, r Val) Val {
	sep := r.String()
	var items []Val
	if l.Kind == valArray {
		items = l.Arr
	} else if l.Kind == valRange {
		items = l.RG.Realize()
	} else {
		items = []Val{l}
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return StringVal(strings.Join(parts, sep))
}

func containsOp(op string, container, item Val) bool {
	var items []Val
	switch container.Kind {
	case valArray:
		items = container.Arr
	case valRange:
		items = container.RG.Realize()
	case valHashTable:
		for _, k := range container.HT.Keys() {
			items = append(items, StringVal(k))
		}
	default:
		items = []Val{container}
	}
	for _, it := range items {
		if compareEq(strings.Replace(op, "contains", "eq", 1), it, item) {
			return true
		}
	}
	return false
}

// UnaryOp evaluates a unary operator.
func UnaryOp(span Span, op string, x Val) Val {
	if x.IsError() {
		return x
	}
	if x.IsUnknown() {
		return UnknownVal()
	}
	switch op {
	case "-":
		n, e := ToNumber(span, x)
		if e != nil {
			return ErrorVal(e)
		}
		if n.Kind == valDouble {
			return DoubleVal(-n.F)
		}
		return IntVal(-n.I)
	case "+":
		n, e := ToNumber(span, x)
		if e != nil {
			return ErrorVal(e)
		}
		return n
	case "!", "-not":
		return BoolVal(!Booleanize(x))
	case "-bnot":
		n, e := ToNumber(span, x)
		if e != nil {
			return ErrorVal(e)
		}
		return IntVal(^castInt64(n))
	default:
		return ErrorVal(newValError(ErrUnsupportedOperation, span, "unsupported unary operator %q", op))
	}
}

// normalizeOperatorName canonicalizes a DashWord token's text ("-Eq",
// "-NotLike") into the lowercase spelling the switch statements above
// expect.
func normalizeOperatorName(s string) string {
	return strings.ToLower(s)
}

var knownOperators = map[string]int{
	// precedence table per spec.md §4.G, highest number binds tightest.
	"..":  11,
	"-f":  10,
	"*":   9, "/": 9, "%": 9,
	"+": 8, "-": 8,
	"-shl": 7, "-shr": 7,
	"-eq": 6, "-ieq": 6, "-ceq": 6,
	"-ne": 6, "-ine": 6, "-cne": 6,
	"-lt": 6, "-ilt": 6, "-clt": 6,
	"-le": 6, "-ile": 6, "-cle": 6,
	"-gt": 6, "-igt": 6, "-cgt": 6,
	"-ge": 6, "-ige": 6, "-cge": 6,
	"-like": 6, "-ilike": 6, "-clike": 6,
	"-notlike": 6, "-inotlike": 6, "-cnotlike": 6,
	"-match": 6, "-imatch": 6, "-cmatch": 6,
	"-notmatch": 6, "-inotmatch": 6, "-cnotmatch": 6,
	"-contains": 6, "-icontains": 6, "-ccontains": 6,
	"-notcontains": 6, "-inotcontains": 6, "-cnotcontains": 6,
	"-in": 6, "-notin": 6,
	"-replace": 6, "-ireplace": 6, "-creplace": 6,
	"-split": 6, "-join": 6,
	"-band": 5, "-bor": 5, "-bxor": 5,
	"-and": 3, "-or": 3, "-xor": 3,
}

func isBinaryOperatorWord(s string) bool {
	_, ok := knownOperators[normalizeOperatorName(s)]
	return ok
}

func precedenceOf(op string) int {
	if p, ok := knownOperators[normalizeOperatorName(op)]; ok {
		return p
	}
	return -1
}
