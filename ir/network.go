package ir

import (
	"fmt"
)

// ChannelKind selects a channel's discipline.
type ChannelKind int

const (
	// FIFO channels deliver values in write order; reads consume.
	FIFO ChannelKind = iota
	// SingleValue channels are registers: the latest write stays visible
	// and reads do not consume.
	SingleValue
)

func (k ChannelKind) String() string {
	if k == SingleValue {
		return "single"
	}
	return "fifo"
}

// ChannelID is a channel's dense index, assigned in declaration order.
type ChannelID int

// ProcID is a proc's dense index, assigned in declaration order.
type ProcID int

// Channel is a typed communication path between procs. Immutable once the
// network is built.
type Channel struct {
	ID   ChannelID
	Name string
	Type Type
	Kind ChannelKind

	// Seed holds the channel's initial values, enqueued in order when the
	// engine (re)initializes its queues.
	Seed []Value
}

// Proc describes a persistent stateful process: a name, the size of its
// opaque state buffer, and optionally that buffer's initial contents. The
// compiled tick entry point is bound separately by the engine; the IR layer
// never sees executable code.
type Proc struct {
	ID   ProcID
	Name string

	// StateSize is the byte size of the proc's persistent state buffer.
	StateSize int

	// InitialState, when non-nil, is copied into the state buffer at
	// construction and on reset. Must be exactly StateSize bytes.
	InitialState []byte
}

// Network is a validated, frozen process network: the fixed sets of channels
// and procs the engine executes. Build one with a NetworkBuilder.
type Network struct {
	Name string

	channels []*Channel
	procs    []*Proc

	channelsByName map[string]*Channel
	procsByName    map[string]*Proc
}

// Channels returns all channels in declaration order.
func (n *Network) Channels() []*Channel { return n.channels }

// Procs returns all procs in declaration order.
func (n *Network) Procs() []*Proc { return n.procs }

// Channel returns the channel with the given dense index.
// It panics if the index is out of range: the network is frozen before
// execution begins, so an unknown identity is a programming error.
func (n *Network) Channel(id ChannelID) *Channel {
	if int(id) < 0 || int(id) >= len(n.channels) {
		panic(fmt.Sprintf("ir: unknown channel id %d", id))
	}
	return n.channels[id]
}

// Proc returns the proc with the given dense index, panicking as Channel does.
func (n *Network) Proc(id ProcID) *Proc {
	if int(id) < 0 || int(id) >= len(n.procs) {
		panic(fmt.Sprintf("ir: unknown proc id %d", id))
	}
	return n.procs[id]
}

// ChannelByName returns the named channel, or nil.
func (n *Network) ChannelByName(name string) *Channel {
	return n.channelsByName[name]
}

// ProcByName returns the named proc, or nil.
func (n *Network) ProcByName(name string) *Proc {
	return n.procsByName[name]
}

// ---------------------------------------------------------------------------
// NetworkBuilder
// ---------------------------------------------------------------------------

// NetworkBuilder accumulates channel and proc declarations and validates
// them into a frozen Network. Declaration order fixes the dense indices and
// the scheduler's round-robin order.
type NetworkBuilder struct {
	name     string
	channels []*Channel
	procs    []*Proc
	errs     []error
}

// NewNetworkBuilder returns a builder for a network with the given name.
func NewNetworkBuilder(name string) *NetworkBuilder {
	return &NetworkBuilder{name: name}
}

// AddChannel declares a channel and returns its dense index.
// Seed values are validated against the channel type at Build time.
func (b *NetworkBuilder) AddChannel(name string, typ Type, kind ChannelKind, seed ...Value) ChannelID {
	id := ChannelID(len(b.channels))
	b.channels = append(b.channels, &Channel{
		ID:   id,
		Name: name,
		Type: typ,
		Kind: kind,
		Seed: append([]Value(nil), seed...),
	})
	return id
}

// AddProc declares a proc with a state buffer of stateSize bytes and
// returns its dense index.
func (b *NetworkBuilder) AddProc(name string, stateSize int) ProcID {
	id := ProcID(len(b.procs))
	b.procs = append(b.procs, &Proc{ID: id, Name: name, StateSize: stateSize})
	return id
}

// SetInitialState records the initial contents of a proc's state buffer.
func (b *NetworkBuilder) SetInitialState(id ProcID, state []byte) {
	if int(id) < 0 || int(id) >= len(b.procs) {
		b.errs = append(b.errs, fmt.Errorf("ir: initial state for unknown proc id %d", id))
		return
	}
	b.procs[id].InitialState = append([]byte(nil), state...)
}

// Build validates the declarations and returns the frozen network.
// Any construction-time error fails the whole build.
func (b *NetworkBuilder) Build() (*Network, error) {
	n := &Network{
		Name:           b.name,
		channels:       b.channels,
		procs:          b.procs,
		channelsByName: make(map[string]*Channel, len(b.channels)),
		procsByName:    make(map[string]*Proc, len(b.procs)),
	}

	errs := b.errs
	for _, ch := range b.channels {
		if ch.Name == "" {
			errs = append(errs, fmt.Errorf("ir: channel %d has no name", ch.ID))
		}
		if ch.Type == nil {
			errs = append(errs, fmt.Errorf("ir: channel %q has no type", ch.Name))
			continue
		}
		if _, dup := n.channelsByName[ch.Name]; dup {
			errs = append(errs, fmt.Errorf("ir: duplicate channel name %q", ch.Name))
		}
		n.channelsByName[ch.Name] = ch

		for i, v := range ch.Seed {
			if !v.ConformsTo(ch.Type) {
				errs = append(errs, fmt.Errorf("ir: channel %q seed %d: value %s does not conform to %s",
					ch.Name, i, v, ch.Type))
			}
		}
		if ch.Kind == SingleValue && len(ch.Seed) > 1 {
			errs = append(errs, fmt.Errorf("ir: single-value channel %q declares %d seeds",
				ch.Name, len(ch.Seed)))
		}
	}

	for _, p := range b.procs {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("ir: proc %d has no name", p.ID))
		}
		if _, dup := n.procsByName[p.Name]; dup {
			errs = append(errs, fmt.Errorf("ir: duplicate proc name %q", p.Name))
		}
		n.procsByName[p.Name] = p

		if p.StateSize < 0 {
			errs = append(errs, fmt.Errorf("ir: proc %q has negative state size", p.Name))
		}
		if p.InitialState != nil && len(p.InitialState) != p.StateSize {
			errs = append(errs, fmt.Errorf("ir: proc %q initial state is %d bytes, want %d",
				p.Name, len(p.InitialState), p.StateSize))
		}
	}

	if len(errs) > 0 {
		return nil, errs[0]
	}
	return n, nil
}
