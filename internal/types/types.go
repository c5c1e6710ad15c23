// Package types holds the wabbit type registry: interned type identities and
// the operator capability tables the checker consults.
package types

// Names of the built-in types.
const (
	IntName   = "int"
	FloatName = "float"
	BoolName  = "bool"
	CharName  = "char"

	// ErrorName marks an expression whose check failed. Parents of such an
	// expression stay quiet so one defect yields one diagnostic.
	ErrorName = "error"
	// InferName marks a memory load whose type is fixed by the context that
	// consumes it.
	InferName = "infer"
)

// Type is an interned type identity. A Registry hands out exactly one *Type
// per name, so two types are equal iff they are the same pointer.
type Type struct {
	name string
	id   int
}

// Name returns the type name
func (t *Type) Name() string { return t.name }

// ID returns the registry-local index of the type.
func (t *Type) ID() int { return t.id }

// IsSentinel reports whether t is the error or infer placeholder.
func (t *Type) IsSentinel() bool {
	return t != nil && (t.name == ErrorName || t.name == InferName)
}

// IsConcrete reports whether t is a real value type.
func (t *Type) IsConcrete() bool {
	return t != nil && !t.IsSentinel()
}

// String returns the string representation of the type
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.name
}

// Registry is the session-owned interning table. It is created once per
// compilation session and passed to everything that needs type identity.
type Registry struct {
	byName map[string]*Type
	order  []*Type

	intT, floatT, boolT, charT, errorT, inferT *Type
}

// NewRegistry creates a registry with the built-in and sentinel types interned.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]*Type)}
	r.intT = r.Resolve(IntName)
	r.floatT = r.Resolve(FloatName)
	r.boolT = r.Resolve(BoolName)
	r.charT = r.Resolve(CharName)
	r.errorT = r.Resolve(ErrorName)
	r.inferT = r.Resolve(InferName)
	return r
}

// Resolve returns the type named name, interning it on first use.
// Resolving the same name twice yields the same *Type.
func (r *Registry) Resolve(name string) *Type {
	if t, ok := r.byName[name]; ok {
		return t
	}
	t := &Type{name: name, id: len(r.order)}
	r.byName[name] = t
	r.order = append(r.order, t)
	return t
}

// Lookup returns the type named name without interning it.
func (r *Registry) Lookup(name string) (*Type, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// All returns the interned types in interning order.
func (r *Registry) All() []*Type {
	return append([]*Type(nil), r.order...)
}

func (r *Registry) Int() *Type   { return r.intT }
func (r *Registry) Float() *Type { return r.floatT }
func (r *Registry) Bool() *Type  { return r.boolT }
func (r *Registry) Char() *Type  { return r.charT }
func (r *Registry) Error() *Type { return r.errorT }
func (r *Registry) Infer() *Type { return r.inferT }

// BinaryOp returns the result type of left op right, or nil when the
// combination is unsupported.
func (r *Registry) BinaryOp(op string, left, right *Type) *Type {
	if left == nil || right == nil {
		return nil
	}
	return r.result(binaryOps[binaryKey{left.name, op, right.name}])
}

// UnaryOp returns the result type of op operand, or nil when unsupported.
func (r *Registry) UnaryOp(op string, operand *Type) *Type {
	if operand == nil {
		return nil
	}
	return r.result(unaryOps[unaryKey{op, operand.name}])
}

// Cast returns the result type of converting from to to, or nil when the
// conversion is not listed.
func (r *Registry) Cast(from, to *Type) *Type {
	if from == nil || to == nil {
		return nil
	}
	return r.result(casts[castKey{from.name, to.name}])
}

func (r *Registry) result(name string) *Type {
	if name == "" {
		return nil
	}
	return r.Resolve(name)
}
