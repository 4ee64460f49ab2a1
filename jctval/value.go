// Package jctval provides the in-memory JSON value tree used by every
// other jct package.
//
// A Value is a tagged union over the six JSON kinds. Object members and
// array elements are ordered sequences: insertion order is iteration
// order. Object member keys are unique; setting an existing key replaces
// the member's value in place without moving the member.
//
// The tree is single-owner: a child belongs to exactly one parent slot.
// Accessors return borrowed references into the tree; Clone produces a
// disjoint copy.
package jctval

// Kind identifies the type of a JSON value.
type Kind int

const (
	// KindNull identifies a JSON null value.
	KindNull Kind = iota
	// KindBool identifies a JSON boolean value.
	KindBool
	// KindNumber identifies a JSON number value.
	KindNumber
	// KindString identifies a JSON string value.
	KindString
	// KindArray identifies a JSON array value.
	KindArray
	// KindObject identifies a JSON object value.
	KindObject
)

// String returns the lowercase JSON name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Value is a parsed or constructed JSON value.
type Value struct {
	Kind    Kind
	Bool    bool     // for KindBool
	Num     float64  // for KindNumber: the IEEE 754 double
	Str     string   // for KindString: the raw byte payload
	Elems   []*Value // for KindArray: ordered elements
	Members []Member // for KindObject: ordered members
}

// Member is a key-value pair in a JSON object.
type Member struct {
	Key   string
	Value *Value
}

// New allocates a zeroed value of the given kind.
func New(kind Kind) *Value {
	return &Value{Kind: kind}
}

// Null returns a new null value.
func Null() *Value { return &Value{Kind: KindNull} }

// Boolean returns a new boolean value.
func Boolean(b bool) *Value { return &Value{Kind: KindBool, Bool: b} }

// Number returns a new number value.
func Number(d float64) *Value { return &Value{Kind: KindNumber, Num: d} }

// Text returns a new string value.
func Text(s string) *Value { return &Value{Kind: KindString, Str: s} }

// Object returns a new empty object.
func Object() *Value { return &Value{Kind: KindObject} }

// Array returns a new empty array.
func Array() *Value { return &Value{Kind: KindArray} }

// SetMember adds the member (key, child) to an object. If a member with
// the same key exists its value is replaced and the member keeps its
// insertion position; otherwise the member is appended. The call is a
// no-op returning false when v is not an object or child is nil.
func (v *Value) SetMember(key string, child *Value) bool {
	if v == nil || v.Kind != KindObject || child == nil {
		return false
	}
	for i := range v.Members {
		if v.Members[i].Key == key {
			v.Members[i].Value = child
			return true
		}
	}
	v.Members = append(v.Members, Member{Key: key, Value: child})
	return true
}

// Append adds child at the end of an array. Returns false when v is not
// an array or child is nil, in which case the caller keeps ownership.
func (v *Value) Append(child *Value) bool {
	if v == nil || v.Kind != KindArray || child == nil {
		return false
	}
	v.Elems = append(v.Elems, child)
	return true
}

// Member returns the value for key, or nil when v is not an object or
// has no such member. The returned value is borrowed from the tree.
func (v *Value) Member(key string) *Value {
	if v == nil || v.Kind != KindObject {
		return nil
	}
	for i := range v.Members {
		if v.Members[i].Key == key {
			return v.Members[i].Value
		}
	}
	return nil
}

// Elem returns the array element at index i, or nil when v is not an
// array or i is out of range.
func (v *Value) Elem(i int) *Value {
	if v == nil || v.Kind != KindArray || i < 0 || i >= len(v.Elems) {
		return nil
	}
	return v.Elems[i]
}

// Len returns the element count of an array, 0 otherwise.
func (v *Value) Len() int {
	if v == nil || v.Kind != KindArray {
		return 0
	}
	return len(v.Elems)
}
