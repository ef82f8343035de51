package main

import (
	"encoding/binary"
	"fmt"

	"github.com/skeinflow/skein/engine"
	"github.com/skeinflow/skein/ir"
	"github.com/skeinflow/skein/manifest"
)

// The built-in body catalog. Each body works a conventional "in" -> "out"
// channel pair; real embedders register their own compiled bodies instead.

func builtinRegistry() *manifest.BodyRegistry {
	reg := manifest.NewBodyRegistry()
	for name, factory := range map[string]manifest.BodyFactory{
		"forward":    forwardBody,
		"triple":     tripleBody,
		"accumulate": accumulateBody,
	} {
		if err := reg.Register(name, factory); err != nil {
			panic(err)
		}
	}
	return reg
}

// inOut resolves the conventional channel pair a built-in body talks to.
func inOut(n *ir.Network, proc *ir.Proc) (in, out ir.ChannelID, err error) {
	cin := n.ChannelByName("in")
	cout := n.ChannelByName("out")
	if cin == nil || cout == nil {
		return 0, 0, fmt.Errorf("body %q needs channels named \"in\" and \"out\"", proc.Name)
	}
	return cin.ID, cout.ID, nil
}

// forwardBody copies one element per tick, unchanged.
func forwardBody(n *ir.Network, proc *ir.Proc) (engine.TickFn, error) {
	in, out, err := inOut(n, proc)
	if err != nil {
		return nil, err
	}
	return func(t *engine.Tick) engine.Status {
		buf, ok := t.Recv(in)
		if !ok {
			return engine.Blocked
		}
		t.Send(out, buf)
		return engine.Complete
	}, nil
}

// tripleBody computes out = 3 * in on one value per tick.
func tripleBody(n *ir.Network, proc *ir.Proc) (engine.TickFn, error) {
	in, out, err := inOut(n, proc)
	if err != nil {
		return nil, err
	}
	width := widthOf(n.Channel(out).Type)
	return func(t *engine.Tick) engine.Status {
		v, ok := t.RecvValue(in)
		if !ok {
			return engine.Blocked
		}
		if err := t.SendValue(out, ir.BitsValueSigned(width, 3*v.Int64())); err != nil {
			panic(err)
		}
		return engine.Complete
	}, nil
}

// accumulateBody keeps a running sum in its 8-byte state buffer and emits
// the sum after each input.
func accumulateBody(n *ir.Network, proc *ir.Proc) (engine.TickFn, error) {
	in, out, err := inOut(n, proc)
	if err != nil {
		return nil, err
	}
	if proc.StateSize < 8 {
		return nil, fmt.Errorf("body %q needs at least 8 state bytes, proc declares %d", proc.Name, proc.StateSize)
	}
	width := widthOf(n.Channel(out).Type)
	return func(t *engine.Tick) engine.Status {
		v, ok := t.RecvValue(in)
		if !ok {
			return engine.Blocked
		}
		sum := int64(binary.LittleEndian.Uint64(t.State())) + v.Int64()
		binary.LittleEndian.PutUint64(t.State(), uint64(sum))
		if err := t.SendValue(out, ir.BitsValueSigned(width, sum)); err != nil {
			panic(err)
		}
		return engine.Complete
	}, nil
}

func widthOf(t ir.Type) int {
	if bt, ok := t.(*ir.BitsType); ok {
		return bt.Width
	}
	return 64
}
