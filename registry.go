package toolhub

import (
	"fmt"
	"iter"
	"slices"
	"sync"
)

// Registry is the central mapping of tool name to tool. It owns registration
// and lookup; invocation goes through the Dispatcher. Registration is
// serialized with a mutex while lookups read a consistent snapshot, so
// concurrent registration and invocation are safe.
type Registry struct {
	mu          sync.RWMutex
	tools       map[string]Tool // wrapped with middlewares, used by Get/List
	rawTools    map[string]Tool // unwrapped, used by Use() to re-apply middlewares from scratch
	order       []string
	middlewares []Middleware
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:    make(map[string]Tool),
		rawTools: make(map[string]Tool),
	}
}

// Register adds a tool under its name. Registration is strict: a second tool
// with the same name fails with ErrDuplicateName. Dynamic importers that
// need re-import idempotence use RegisterOrReplace instead.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := t.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	r.store(name, t)
	return nil
}

// RegisterOrReplace adds a tool, replacing any existing tool with the same
// name. Insertion order is preserved on replacement.
func (r *Registry) RegisterOrReplace(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store(t.Name(), t)
}

// store must be called with the lock held.
func (r *Registry) store(name string, t Tool) {
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.rawTools[name] = t
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		t = r.middlewares[i](t)
	}
	r.tools[name] = t
}

// Get returns the tool registered under name (after middlewares are
// applied), or ErrToolNotFound.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrToolNotFound, name)
	}
	return t, nil
}

// Unregister removes the tool registered under name. Removing an absent name
// fails with ErrToolNotFound, symmetric with Get.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[name]; !ok {
		return fmt.Errorf("%w: %q", ErrToolNotFound, name)
	}
	delete(r.tools, name)
	delete(r.rawTools, name)
	r.order = slices.DeleteFunc(r.order, func(n string) bool { return n == name })
	return nil
}

// List returns a restartable sequence of registered tools in stable
// insertion order. A non-empty tag yields only tools carrying it. The
// sequence iterates a snapshot, so registration during iteration is safe.
func (r *Registry) List(tag string) iter.Seq[Tool] {
	return func(yield func(Tool) bool) {
		for _, t := range r.snapshot() {
			if tag != "" && !HasTag(t, tag) {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

func (r *Registry) snapshot() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}
