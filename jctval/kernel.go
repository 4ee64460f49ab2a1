package jctval

// Clone returns a deep copy of v: structure, strings, and keys are all
// copied. Mutating the clone never changes the original.
func Clone(v *Value) *Value {
	if v == nil {
		return nil
	}
	out := &Value{Kind: v.Kind, Bool: v.Bool, Num: v.Num, Str: v.Str}
	switch v.Kind {
	case KindArray:
		if len(v.Elems) > 0 {
			out.Elems = make([]*Value, len(v.Elems))
			for i, e := range v.Elems {
				out.Elems[i] = Clone(e)
			}
		}
	case KindObject:
		if len(v.Members) > 0 {
			out.Members = make([]Member, len(v.Members))
			for i, m := range v.Members {
				out.Members[i] = Member{Key: m.Key, Value: Clone(m.Value)}
			}
		}
	}
	return out
}

// Equal reports structural equality of a and b.
//
// Numbers compare by raw float equality (a NaN would never equal itself;
// the parser cannot produce one). Strings compare by bytes. Arrays
// compare element-wise in order. Objects are equal iff they hold the same
// key set with pairwise-equal values; member insertion order is ignored.
func Equal(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindNumber:
		return a.Num == b.Num
	case KindString:
		return a.Str == b.Str
	case KindArray:
		if len(a.Elems) != len(b.Elems) {
			return false
		}
		for i := range a.Elems {
			if !Equal(a.Elems[i], b.Elems[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.Members) != len(b.Members) {
			return false
		}
		for i := range a.Members {
			// Stored member values are never nil, so a nil lookup
			// means the key is missing.
			bv := b.Member(a.Members[i].Key)
			if bv == nil || !Equal(a.Members[i].Value, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// MergeInto merges src into dest recursively and returns the resulting
// value (dest itself, or a clone of src when dest is replaced wholesale).
//
// When either operand is not an object the result is a clone of src.
// When both are objects, each member of src is merged in: object-into-
// object recurses, anything else replaces dest's member with a clone.
// Members present only in dest are retained. src is never mutated.
func MergeInto(dest, src *Value) *Value {
	if dest == nil || src == nil || dest.Kind != KindObject || src.Kind != KindObject {
		return Clone(src)
	}
	for i := range src.Members {
		key := src.Members[i].Key
		sv := src.Members[i].Value
		dv := dest.Member(key)
		if dv != nil && dv.Kind == KindObject && sv != nil && sv.Kind == KindObject {
			MergeInto(dv, sv)
			continue
		}
		dest.SetMember(key, Clone(sv))
	}
	return dest
}

// Diff returns the members that modified adds or changes relative to
// original. Keys present in original but removed in modified, at any
// depth, are not represented, so merging the result into original
// yields modified only when modified removes no keys.
//
// When original is nil the result is a clone of modified. When both are
// objects the result holds every key of modified that is absent from
// original, differs structurally, or (for object children) has a
// non-empty recursive diff. For non-objects the result is an empty
// object when the operands are equal and a clone of modified otherwise.
func Diff(modified, original *Value) *Value {
	if modified == nil {
		return Object()
	}
	if original == nil {
		return Clone(modified)
	}
	if modified.Kind != KindObject || original.Kind != KindObject {
		if Equal(modified, original) {
			return Object()
		}
		return Clone(modified)
	}
	out := Object()
	for i := range modified.Members {
		key := modified.Members[i].Key
		mv := modified.Members[i].Value
		ov := original.Member(key)
		if ov == nil {
			out.SetMember(key, Clone(mv))
			continue
		}
		if mv.Kind == KindObject && ov.Kind == KindObject {
			sub := Diff(mv, ov)
			if len(sub.Members) > 0 {
				out.SetMember(key, sub)
			}
			continue
		}
		if !Equal(mv, ov) {
			out.SetMember(key, Clone(mv))
		}
	}
	return out
}
