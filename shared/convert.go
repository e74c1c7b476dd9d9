package shared

// Convert returns new owner of the object owned by s, seen through the pointer returned by conv. Both
// pointers share the control block, so the object is destroyed by the deleter of s when the last of them is
// released. conv typically returns an embedded field or the object as an interface implementation.
func Convert[U, T any](s Shared[T], conv func(*T) *U) Shared[U] {
	if s.block == nil {
		return Shared[U]{}
	}
	s.block.strong++
	return Shared[U]{object: conv(s.object), block: s.block}
}

// ConvertWeak is Convert for weak references. conv is not called if the object has been destroyed already.
func ConvertWeak[U, T any](w Weak[T], conv func(*T) *U) Weak[U] {
	if w.block == nil {
		return Weak[U]{}
	}
	w.block.weak++
	var obj *U
	if w.block.strong > 0 {
		obj = conv(w.object)
	}
	return Weak[U]{object: obj, block: w.block}
}
