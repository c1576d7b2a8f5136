package components

import (
	"bytes"
	"slices"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/render"
)

var (
	ErrNameRequired  = goerr.New("component name is required")
	ErrRendererNil   = goerr.New("component renderer is nil")
	ErrNotRegistered = goerr.New("component not registered")
)

const ComponentKey = "component"

// Renderer writes the markup of one control into buf. Labels, errors and the
// column wrapper are drawn by the caller unless the descriptor owns its
// chrome.
type Renderer func(buf *bytes.Buffer, ctrl render.Control) error

// Descriptor bundles the renderer implementation with any asset dependencies.
type Descriptor struct {
	Name        string
	Renderer    Renderer
	Stylesheets []string
	// OwnsChrome marks components that draw their own label, such as section
	// dividers and option groups.
	OwnsChrome bool
}

// Registry tracks component descriptors keyed by name. Callers can register new
// components or override defaults.
type Registry struct {
	mu         sync.RWMutex
	components map[string]Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		components: make(map[string]Descriptor),
	}
}

// Clone returns a deep copy of the registry to allow isolated mutations.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cloned := New()
	for name, descriptor := range r.components {
		cloned.components[name] = cloneDescriptor(descriptor)
	}
	return cloned
}

// Register associates a descriptor with the provided name. Existing entries are
// replaced.
func (r *Registry) Register(name string, descriptor Descriptor) error {
	if name = normalize(name); name == "" {
		return ErrNameRequired
	}
	if descriptor.Renderer == nil {
		return goerr.Wrap(ErrRendererNil, "cannot register component", goerr.V(ComponentKey, name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	descriptor.Name = name
	r.components[name] = cloneDescriptor(descriptor)
	return nil
}

// MustRegister mirrors Register but panics on error, simplifying default registry
// setup.
func (r *Registry) MustRegister(name string, descriptor Descriptor) {
	if err := r.Register(name, descriptor); err != nil {
		panic(err)
	}
}

// Descriptor fetches a descriptor by name.
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	descriptor, ok := r.components[normalize(name)]
	if !ok {
		return Descriptor{}, false
	}
	return cloneDescriptor(descriptor), true
}

// Render draws ctrl with the component registered for its kind.
func (r *Registry) Render(buf *bytes.Buffer, ctrl render.Control) (Descriptor, error) {
	descriptor, ok := r.Descriptor(string(ctrl.Kind))
	if !ok {
		return Descriptor{}, goerr.Wrap(ErrNotRegistered, "cannot render control",
			goerr.V(ComponentKey, string(ctrl.Kind)), goerr.V("field", ctrl.Name))
	}
	if err := descriptor.Renderer(buf, ctrl); err != nil {
		return Descriptor{}, goerr.Wrap(err, "component render failed",
			goerr.V(ComponentKey, descriptor.Name), goerr.V("field", ctrl.Name))
	}
	return descriptor, nil
}

// Names returns a sorted slice of registered component names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Stylesheets resolves the de-duplicated stylesheets of the named components
// in the order given.
func (r *Registry) Stylesheets(names []string) []string {
	if len(names) == 0 {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	seen := make(map[string]struct{})
	for _, name := range names {
		descriptor, ok := r.components[normalize(name)]
		if !ok {
			continue
		}
		for _, href := range descriptor.Stylesheets {
			if href == "" {
				continue
			}
			if _, exists := seen[href]; exists {
				continue
			}
			seen[href] = struct{}{}
			out = append(out, href)
		}
	}
	return out
}

func cloneDescriptor(src Descriptor) Descriptor {
	return Descriptor{
		Name:        src.Name,
		Renderer:    src.Renderer,
		Stylesheets: slices.Clone(src.Stylesheets),
		OwnsChrome:  src.OwnsChrome,
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
