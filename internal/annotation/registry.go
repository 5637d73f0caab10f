package annotation

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/OCAP2/annotations/internal/xmlnode"
)

// Element is the tag name of a persisted annotation.
const Element = "annotation"

var (
	ErrMissingType   = errors.New("missing annotation type")
	ErrUnknownType   = errors.New("unknown annotation type")
	ErrDuplicateType = errors.New("annotation type already registered")
)

// Factory creates an annotation with default properties.
type Factory func() Annotation

// Registry maps discriminators to factories. It is safe for concurrent use.
// The zero value is an empty registry.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns a registry holding every built-in annotation kind.
func NewRegistry() *Registry {
	r := &Registry{}
	if err := RegisterText(r); err != nil {
		panic(err)
	}
	return r
}

// Register adds a factory for typ.
func (r *Registry) Register(typ string, f Factory) error {
	if typ == "" {
		return ErrMissingType
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[typ]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateType, typ)
	}
	if r.factories == nil {
		r.factories = make(map[string]Factory)
	}
	r.factories[typ] = f
	return nil
}

// Create returns a new default annotation of kind typ.
func (r *Registry) Create(typ string) (Annotation, error) {
	r.mu.RLock()
	f, ok := r.factories[typ]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	return f(), nil
}

// Types returns the registered discriminators in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}

// Decode creates the annotation described by node and restores its state.
//
// A nil annotation is returned, with ErrMissingType or ErrUnknownType, when
// node cannot be turned into an annotation at all. Otherwise the annotation
// is returned together with whatever ReadState reported; it is usable even
// if that error is not nil.
func Decode(r *Registry, node *xmlnode.Element) (Annotation, error) {
	typ, _ := node.Attr(attrType)
	if typ == "" {
		return nil, ErrMissingType
	}
	a, err := r.Create(typ)
	if err != nil {
		return nil, err
	}
	return a, a.ReadState(node)
}

// Encode returns a new <annotation> element holding the state of a.
func Encode(a Annotation) (*xmlnode.Element, error) {
	node := xmlnode.New(Element)
	if err := a.WriteState(node); err != nil {
		return nil, err
	}
	return node, nil
}
