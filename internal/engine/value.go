package engine

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// valKind tags the Val sum type. Val is a struct, not an interface: the
// evaluator's operator dispatch switches on Kind in a hot loop, and a flat
// struct with a tag field avoids per-operation interface dispatch and
// boxing, matching how the teacher keeps Options/Ctx as plain structs.
type valKind int

const (
	valNull valKind = iota
	valBool
	valInt
	valDouble
	valString
	valArray
	valHashTable
	valScriptBlock
	valRange
	valType
	valError
	valUnknown // opaque/unknown carrier — every operator returns Unknown if any operand is Unknown
)

// Val is the PowerShell value universe described in spec.md §3.
type Val struct {
	Kind valKind
	B    bool
	I    int64
	F    float64
	S    string
	Arr  []Val
	HT   *HashTable
	SB   *ScriptBlock
	RG   Range
	Typ  string
	Err  *ValError
}

// Range is an inclusive or exclusive integer range produced by "a..b".
type Range struct {
	Start     int64
	End       int64
	Inclusive bool
}

// ScriptBlock captures a parameter list and body AST plus the id of its
// defining scope (not an owning pointer into the scope stack) so closures
// never create reference cycles between values and scopes — see
// spec.md §9.
type ScriptBlock struct {
	Params  []Param
	Body    *Block
	ScopeID int
}

// HashTable is an insertion-ordered, case-insensitive string-keyed map.
type HashTable struct {
	keys   []string          // original-case insertion order
	folded map[string]string // folded key -> original key
	vals   map[string]Val     // folded key -> value
}

var foldCaser = cases.Fold()

func foldKey(k string) string { return foldCaser.String(k) }

func NewHashTable() *HashTable {
	return &HashTable{folded: map[string]string{}, vals: map[string]Val{}}
}

func (h *HashTable) Set(key string, v Val) {
	fk := foldKey(key)
	if orig, ok := h.folded[fk]; ok {
		h.vals[foldKey(orig)] = v
		return
	}
	h.folded[fk] = key
	h.keys = append(h.keys, key)
	h.vals[fk] = v
}

func (h *HashTable) Get(key string) (Val, bool) {
	v, ok := h.vals[foldKey(key)]
	return v, ok
}

// Keys returns keys in insertion order.
func (h *HashTable) Keys() []string { return h.keys }

func (h *HashTable) Len() int { return len(h.keys) }

func (h *HashTable) Clone() *HashTable {
	n := NewHashTable()
	for _, k := range h.keys {
		v, _ := h.Get(k)
		n.Set(k, v)
	}
	return n
}

// --- constructors --------------------------------------------------------

func NullVal() Val                 { return Val{Kind: valNull} }
func BoolVal(b bool) Val           { return Val{Kind: valBool, B: b} }
func IntVal(i int64) Val           { return Val{Kind: valInt, I: i} }
func DoubleVal(f float64) Val      { return Val{Kind: valDouble, F: f} }
func StringVal(s string) Val       { return Val{Kind: valString, S: s} }
func ArrayVal(vs []Val) Val        { return Val{Kind: valArray, Arr: vs} }
func HashTableVal(h *HashTable) Val { return Val{Kind: valHashTable, HT: h} }
func ScriptBlockVal(sb *ScriptBlock) Val { return Val{Kind: valScriptBlock, SB: sb} }
func RangeVal(r Range) Val         { return Val{Kind: valRange, RG: r} }
func TypeVal(name string) Val      { return Val{Kind: valType, Typ: name} }
func UnknownVal() Val              { return Val{Kind: valUnknown} }
func ErrorVal(e *ValError) Val     { return Val{Kind: valError, Err: e} }

func (v Val) IsNull() bool    { return v.Kind == valNull }
func (v Val) IsUnknown() bool { return v.Kind == valUnknown }
func (v Val) IsError() bool   { return v.Kind == valError }

// TypeName returns the PowerShell-ish type name used by error messages and
// [T] rendering.
func (v Val) TypeName() string {
	switch v.Kind {
	case valNull:
		return "Null"
	case valBool:
		return "Bool"
	case valInt:
		return "Int"
	case valDouble:
		return "Double"
	case valString:
		return "String"
	case valArray:
		return "Array"
	case valHashTable:
		return "HashTable"
	case valScriptBlock:
		return "ScriptBlock"
	case valRange:
		return "Range"
	case valType:
		return "Type"
	case valUnknown:
		return "Unknown"
	default:
		return "Error"
	}
}

// Realize expands a Range into an Array of Int values. Used both by
// -split/array flattening contexts and by the renderer (rule 3).
func (r Range) Realize() []Val {
	var out []Val
	if r.Start <= r.End {
		end := r.End
		if !r.Inclusive {
			end--
		}
		for i := r.Start; i <= end; i++ {
			out = append(out, IntVal(i))
		}
	} else {
		end := r.End
		if !r.Inclusive {
			end++
		}
		for i := r.Start; i >= end; i-- {
			out = append(out, IntVal(i))
		}
	}
	return out
}

// Flatten implements one level of array flattening: when v is used as a
// sub-expression argument, a single-level Array is spliced in place.
func Flatten(vs []Val) []Val {
	var out []Val
	for _, v := range vs {
		if v.Kind == valArray {
			out = append(out, v.Arr...)
		} else {
			out = append(out, v)
		}
	}
	return out
}

func (v Val) String() string {
	switch v.Kind {
	case valNull:
		return ""
	case valBool:
		if v.B {
			return "True"
		}
		return "False"
	case valInt:
		return fmt.Sprintf("%d", v.I)
	case valDouble:
		return formatDoubleRoundTrip(v.F)
	case valString:
		return v.S
	case valArray:
		parts := make([]string, len(v.Arr))
		for i, e := range v.Arr {
			parts[i] = e.String()
		}
		return joinStrings(parts, " ")
	case valHashTable:
		return "System.Collections.Hashtable"
	case valScriptBlock:
		return ""
	case valRange:
		parts := make([]string, 0)
		for _, e := range v.RG.Realize() {
			parts = append(parts, e.String())
		}
		return joinStrings(parts, " ")
	case valType:
		return "[" + v.Typ + "]"
	case valUnknown:
		return ""
	default:
		return ""
	}
}

func joinStrings(parts []string, sep string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}

var defaultLanguage = language.AmericanEnglish
