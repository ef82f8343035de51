package manifest

import (
	"fmt"
	"sort"
	"sync"

	"github.com/skeinflow/skein/engine"
	"github.com/skeinflow/skein/ir"
)

// BodyFactory produces a compiled tick entry point for one proc of a built
// network. The factory runs after the network is frozen, so it can resolve
// the channels it talks to by name and capture their dense indices.
type BodyFactory func(n *ir.Network, proc *ir.Proc) (engine.TickFn, error)

// BodyRegistry is a catalog of body factories, keyed by name. The embedder
// registers its compiled bodies once; BuildNetwork resolves manifest proc
// declarations against it. Safe for concurrent use.
type BodyRegistry struct {
	mu     sync.RWMutex
	bodies map[string]BodyFactory
}

// NewBodyRegistry returns an empty registry.
func NewBodyRegistry() *BodyRegistry {
	return &BodyRegistry{bodies: make(map[string]BodyFactory)}
}

// Register adds a named body factory. Re-registering a name is an error.
func (r *BodyRegistry) Register(name string, factory BodyFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.bodies[name]; dup {
		return fmt.Errorf("manifest: body %q already registered", name)
	}
	r.bodies[name] = factory
	return nil
}

// Lookup returns the named body factory, or nil.
func (r *BodyRegistry) Lookup(name string) BodyFactory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bodies[name]
}

// Names returns the registered body names, sorted.
func (r *BodyRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.bodies))
	for name := range r.bodies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks a manifest's declarations (type grammar, seed shapes,
// duplicate names) without resolving proc bodies. Tooling that inspects a
// manifest before any bodies are registered uses this.
func (m *Manifest) Validate() error {
	b := ir.NewNetworkBuilder(m.Network.Name)

	for _, decl := range m.Channels {
		typ, err := ParseType(decl.Type)
		if err != nil {
			return fmt.Errorf("channel %q: %w", decl.Name, err)
		}
		kind, err := channelKind(decl)
		if err != nil {
			return err
		}
		seed, err := seedValues(decl, typ)
		if err != nil {
			return err
		}
		b.AddChannel(decl.Name, typ, kind, seed...)
	}
	for _, decl := range m.Procs {
		if decl.State < 0 {
			return fmt.Errorf("manifest: proc %q: negative state size %d", decl.Name, decl.State)
		}
		b.AddProc(decl.Name, decl.State)
	}

	_, err := b.Build()
	return err
}

func channelKind(decl ChannelDecl) (ir.ChannelKind, error) {
	switch decl.Kind {
	case "fifo":
		return ir.FIFO, nil
	case "single":
		return ir.SingleValue, nil
	default:
		return 0, fmt.Errorf("manifest: channel %q: unknown kind %q", decl.Name, decl.Kind)
	}
}

func seedValues(decl ChannelDecl, typ ir.Type) ([]ir.Value, error) {
	seed := make([]ir.Value, len(decl.Seed))
	for i, raw := range decl.Seed {
		v, err := valueFromTOML(raw, typ)
		if err != nil {
			return nil, fmt.Errorf("manifest: channel %q seed %d: %w", decl.Name, i, err)
		}
		seed[i] = v
	}
	return seed, nil
}

// BuildNetwork validates a manifest against a body registry and produces
// the frozen network plus the proc-name-to-body binding engine.New expects.
// Unknown body names, unparseable types, and malformed seed values all fail
// the build.
func BuildNetwork(m *Manifest, reg *BodyRegistry) (*ir.Network, map[string]engine.TickFn, error) {
	b := ir.NewNetworkBuilder(m.Network.Name)

	for _, decl := range m.Channels {
		typ, err := ParseType(decl.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("channel %q: %w", decl.Name, err)
		}
		kind, err := channelKind(decl)
		if err != nil {
			return nil, nil, err
		}
		seed, err := seedValues(decl, typ)
		if err != nil {
			return nil, nil, err
		}
		b.AddChannel(decl.Name, typ, kind, seed...)
	}

	factories := make(map[string]BodyFactory, len(m.Procs))
	for _, decl := range m.Procs {
		factory := reg.Lookup(decl.Body)
		if factory == nil {
			return nil, nil, fmt.Errorf("manifest: proc %q: no registered body %q", decl.Name, decl.Body)
		}
		if decl.State < 0 {
			return nil, nil, fmt.Errorf("manifest: proc %q: negative state size %d", decl.Name, decl.State)
		}
		b.AddProc(decl.Name, decl.State)
		factories[decl.Name] = factory
	}

	network, err := b.Build()
	if err != nil {
		return nil, nil, err
	}

	bodies := make(map[string]engine.TickFn, len(factories))
	for _, proc := range network.Procs() {
		body, err := factories[proc.Name](network, proc)
		if err != nil {
			return nil, nil, fmt.Errorf("manifest: proc %q: %w", proc.Name, err)
		}
		bodies[proc.Name] = body
	}
	return network, bodies, nil
}

// fitsWidth reports whether n is representable in the declared width.
// Widths of 64 bits and up hold any manifest integer; value construction
// would otherwise truncate out-of-range seeds silently.
func fitsWidth(n int64, t *ir.BitsType) bool {
	if t.Signed {
		if t.Width >= 64 {
			return true
		}
		lo := -(int64(1) << (t.Width - 1))
		hi := int64(1)<<(t.Width-1) - 1
		return n >= lo && n <= hi
	}
	if t.Width >= 63 {
		return n >= 0
	}
	return n >= 0 && n < int64(1)<<t.Width
}

// valueFromTOML converts a decoded TOML seed entry into a value of the
// declared channel type. Integers populate bits; arrays populate tuples and
// arrays element-wise.
func valueFromTOML(raw any, t ir.Type) (ir.Value, error) {
	switch tt := t.(type) {
	case *ir.BitsType:
		n, ok := raw.(int64)
		if !ok {
			return ir.Value{}, fmt.Errorf("expected an integer for %s, got %T", tt, raw)
		}
		if n < 0 && !tt.Signed {
			return ir.Value{}, fmt.Errorf("negative seed %d for unsigned %s", n, tt)
		}
		if !fitsWidth(n, tt) {
			return ir.Value{}, fmt.Errorf("seed %d does not fit %s", n, tt)
		}
		return ir.BitsValueSigned(tt.Width, n), nil

	case *ir.TupleType:
		elems, ok := raw.([]any)
		if !ok {
			return ir.Value{}, fmt.Errorf("expected an array for %s, got %T", tt, raw)
		}
		if len(elems) != len(tt.Fields) {
			return ir.Value{}, fmt.Errorf("tuple %s wants %d fields, got %d", tt, len(tt.Fields), len(elems))
		}
		vs := make([]ir.Value, len(elems))
		for i, e := range elems {
			v, err := valueFromTOML(e, tt.Fields[i])
			if err != nil {
				return ir.Value{}, err
			}
			vs[i] = v
		}
		return ir.TupleValue(vs...), nil

	case *ir.ArrayType:
		elems, ok := raw.([]any)
		if !ok {
			return ir.Value{}, fmt.Errorf("expected an array for %s, got %T", tt, raw)
		}
		if len(elems) != tt.Count {
			return ir.Value{}, fmt.Errorf("array %s wants %d elements, got %d", tt, tt.Count, len(elems))
		}
		vs := make([]ir.Value, len(elems))
		for i, e := range elems {
			v, err := valueFromTOML(e, tt.Elem)
			if err != nil {
				return ir.Value{}, err
			}
			vs[i] = v
		}
		return ir.ArrayValue(vs...), nil
	}
	return ir.Value{}, fmt.Errorf("unsupported type descriptor %T", t)
}
