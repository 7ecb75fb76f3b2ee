package strata

// Properties is a heterogeneous bag keyed by typed property keys. A value
// stored under a PropertyKey[T] can only be read back as a T.
//
// The zero value is ready to use. Properties is not safe for concurrent use.
type Properties struct {
	m map[string]any
}

// PropertyKey identifies a property holding a value of type T. The type
// parameter is a phantom: it never appears in the key's data, only in the
// get/set signatures.
type PropertyKey[T any] struct {
	name string
}

// NewPropertyKey creates a typed key with the given name. Two keys with the
// same name address the same slot; the last write wins regardless of type.
func NewPropertyKey[T any](name string) PropertyKey[T] {
	return PropertyKey[T]{name: name}
}

// Name returns the key's name.
func (k PropertyKey[T]) Name() string {
	return k.name
}

// SetProperty stores value under key.
func SetProperty[T any](p *Properties, key PropertyKey[T], value T) {
	if p.m == nil {
		p.m = make(map[string]any)
	}
	p.m[key.name] = value
}

// GetProperty retrieves the value stored under key. The second return is
// false when the bag is nil, the key is absent, or the slot holds a value
// of a different type.
func GetProperty[T any](p *Properties, key PropertyKey[T]) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	v, ok := p.m[key.name]
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Len returns the number of stored properties.
func (p *Properties) Len() int {
	return len(p.m)
}

func (p *Properties) clear() {
	clear(p.m)
}
