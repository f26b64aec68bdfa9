package tree

import "sync"

// Kind identifies the variant of a Node.
type Kind int

const (
	KindObject Kind = iota
	KindArray
	KindString
	KindNumber
	KindBool
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	default:
		return "unknown"
	}
}

// Node is a single JSON value. The set of implementations is closed.
type Node interface {
	Kind() Kind
	node()
}

// IsContainer reports whether n has children.
func IsContainer(n Node) bool {
	switch n.(type) {
	case *Object, *Array:
		return true
	default:
		return false
	}
}

// Object is a JSON object with members in document order.
type Object struct {
	keys   []string
	values []Node
	index  map[string]int

	sizeOnce sync.Once
	size     int64
}

// NewObject returns an empty object ready for Set.
func NewObject() *Object {
	return &Object{index: make(map[string]int)}
}

func (*Object) Kind() Kind { return KindObject }
func (*Object) node()      {}

// Set adds a member. Setting an existing key replaces its value but keeps
// the position of the first occurrence. Set must not be called once the
// object is reachable from a published document.
func (o *Object) Set(key string, value Node) {
	if i, ok := o.index[key]; ok {
		o.values[i] = value
		return
	}
	o.index[key] = len(o.keys)
	o.keys = append(o.keys, key)
	o.values = append(o.values, value)
}

// Get returns the member stored under key.
func (o *Object) Get(key string) (Node, bool) {
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.values[i], true
}

// Len returns the number of members.
func (o *Object) Len() int { return len(o.keys) }

// Keys returns the member names in document order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Each calls yield for every member in document order.
func (o *Object) Each(yield func(key string, value Node) bool) {
	for i, k := range o.keys {
		if !yield(k, o.values[i]) {
			return
		}
	}
}

// Array is a JSON array.
type Array struct {
	items []Node

	sizeOnce sync.Once
	size     int64
}

// NewArray returns an array holding items.
func NewArray(items ...Node) *Array {
	return &Array{items: items}
}

func (*Array) Kind() Kind { return KindArray }
func (*Array) node()      {}

// Append adds an element. Like Object.Set it is only valid while building.
func (a *Array) Append(n Node) { a.items = append(a.items, n) }

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.items) }

// At returns the element at i.
func (a *Array) At(i int) (Node, bool) {
	if i < 0 || i >= len(a.items) {
		return nil, false
	}
	return a.items[i], true
}

// Each calls yield for every element in order.
func (a *Array) Each(yield func(i int, value Node) bool) {
	for i, n := range a.items {
		if !yield(i, n) {
			return
		}
	}
}

// String is a JSON string holding its decoded value.
type String string

func (String) Kind() Kind { return KindString }
func (String) node()      {}

// Number is a JSON number holding its source literal.
type Number string

func (Number) Kind() Kind { return KindNumber }
func (Number) node()      {}

// Bool is a JSON boolean.
type Bool bool

func (Bool) Kind() Kind { return KindBool }
func (Bool) node()      {}

// Null is the JSON null literal.
type Null struct{}

func (Null) Kind() Kind { return KindNull }
func (Null) node()      {}
