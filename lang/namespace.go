package lang

import (
	"iter"
	"log/slog"
	"maps"
	"slices"
	"sync"
)

// Namespace is a registry of macro and condition parameter declarations.
//
// Lookups fall through to the parent namespace. A namespace is safe for
// concurrent use; each namespace guards its own registries.
type Namespace struct {
	parent     *Namespace
	name       string
	mu         sync.RWMutex
	macros     map[string]*Macro
	parameters map[string]*Parameter
}

// NewNamespace returns an empty namespace chained to parent, which may be nil.
// The name is used only for debugging.
func NewNamespace(parent *Namespace, name string) *Namespace {
	return &Namespace{
		parent:     parent,
		name:       name,
		macros:     make(map[string]*Macro),
		parameters: make(map[string]*Parameter),
	}
}

// Parent returns the parent namespace or nil.
func (ns *Namespace) Parent() *Namespace { return ns.parent }

// Name returns the debug name.
func (ns *Namespace) Name() string { return ns.name }

func (ns *Namespace) String() string {
	if ns.parent == nil {
		return ns.name
	}

	return ns.parent.String() + "/" + ns.name
}

// Lookup returns the macro named name in this namespace or its ancestors.
func (ns *Namespace) Lookup(name string) *Macro {
	if name == "" {
		return nil
	}

	for n := ns; n != nil; n = n.parent {
		n.mu.RLock()
		m := n.macros[name]
		n.mu.RUnlock()

		if m != nil {
			return m
		}
	}

	return nil
}

// lookupLocked is Lookup with the receiver's lock already held.
func (ns *Namespace) lookupLocked(name string) *Macro {
	if m := ns.macros[name]; m != nil {
		return m
	}

	if ns.parent == nil {
		return nil
	}

	return ns.parent.Lookup(name)
}

// Declare declares a macro of the given kind and returns it. Declaring an
// existing name with the same kind returns the existing declaration; a
// different kind fails with ErrConflictingDeclaration.
func (ns *Namespace) Declare(kind Kind, name string) (*Macro, error) {
	return ns.declare(kind, name, nil)
}

func (ns *Namespace) declare(
	kind Kind,
	name string,
	enumValues []string,
) (*Macro, error) {
	if kind >= kindCount {
		return nil, ErrUnknownKind.With(slog.Int("kind", int(kind)))
	}

	if name == "" {
		return nil, ErrInvalidName.With(slog.String("kind", kind.String()))
	}

	ns.mu.Lock()
	defer ns.mu.Unlock()

	if m := ns.lookupLocked(name); m != nil {
		if m.kind != kind {
			return nil, ErrConflictingDeclaration.With(
				slog.String("name", name),
				slog.String("kind", kind.String()),
				slog.String("previous_kind", m.kind.String()),
			)
		}

		return m, nil
	}

	m := &Macro{name: name, kind: kind, enumValues: enumValues}
	ns.macros[name] = m

	return m, nil
}

// DeclareBoolean declares a boolean macro.
func (ns *Namespace) DeclareBoolean(name string) (*Macro, error) {
	return ns.Declare(KindBoolean, name)
}

// DeclareString declares a string macro.
func (ns *Namespace) DeclareString(name string) (*Macro, error) {
	return ns.Declare(KindString, name)
}

// DeclareStringList declares a string list macro.
func (ns *Namespace) DeclareStringList(name string) (*Macro, error) {
	return ns.Declare(KindStringList, name)
}

// DeclarePath declares a path macro.
func (ns *Namespace) DeclarePath(name string) (*Macro, error) {
	return ns.Declare(KindPath, name)
}

// DeclarePathList declares a path list macro.
func (ns *Namespace) DeclarePathList(name string) (*Macro, error) {
	return ns.Declare(KindPathList, name)
}

// DeclareUserDefined declares a user-defined macro.
func (ns *Namespace) DeclareUserDefined(name string) (*Macro, error) {
	return ns.Declare(KindUserDefined, name)
}

// DeclareEnum declares an enum macro with the given allowed values. The
// first value is the default. Redeclaring keeps the original values.
func (ns *Namespace) DeclareEnum(name string, values ...string) (*Macro, error) {
	return ns.declare(KindEnum, name, slices.Clone(values))
}

// LookupOrDeclare returns any existing declaration named name, whatever its
// kind, or declares a new macro of the given kind. An empty name fails with
// ErrInvalidName.
func (ns *Namespace) LookupOrDeclare(kind Kind, name string) (*Macro, error) {
	if name == "" {
		return nil, ErrInvalidName.With(slog.String("kind", kind.String()))
	}

	if m := ns.Lookup(name); m != nil {
		return m, nil
	}

	ns.mu.Lock()
	defer ns.mu.Unlock()

	if m := ns.lookupLocked(name); m != nil {
		return m, nil
	}

	m := &Macro{name: name, kind: kind}
	ns.macros[name] = m

	return m, nil
}

// LookupParameter returns the condition parameter named name in this
// namespace or its ancestors.
func (ns *Namespace) LookupParameter(name string) *Parameter {
	for n := ns; n != nil; n = n.parent {
		n.mu.RLock()
		p := n.parameters[name]
		n.mu.RUnlock()

		if p != nil {
			return p
		}
	}

	return nil
}

// DeclareParameter returns the condition parameter named name, declaring it
// in this namespace if no ancestor has it.
func (ns *Namespace) DeclareParameter(name string) *Parameter {
	if p := ns.LookupParameter(name); p != nil {
		return p
	}

	ns.mu.Lock()
	defer ns.mu.Unlock()

	if p := ns.parameters[name]; p != nil {
		return p
	}

	if ns.parent != nil {
		if p := ns.parent.LookupParameter(name); p != nil {
			return p
		}
	}

	p := &Parameter{name: name}
	ns.parameters[name] = p

	return p
}

// Macros returns the macros visible from this namespace sorted by name.
// A declaration in a child shadows none of its ancestors' since names are
// unique along the chain.
func (ns *Namespace) Macros() iter.Seq[*Macro] {
	seen := make(map[string]*Macro)

	for n := ns; n != nil; n = n.parent {
		n.mu.RLock()
		for name, m := range n.macros {
			if _, ok := seen[name]; !ok {
				seen[name] = m
			}
		}
		n.mu.RUnlock()
	}

	names := slices.Sorted(maps.Keys(seen))

	return func(yield func(*Macro) bool) {
		for _, name := range names {
			if !yield(seen[name]) {
				return
			}
		}
	}
}
