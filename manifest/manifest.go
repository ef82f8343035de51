// Package manifest handles skein.toml network declarations: the channels
// and procs of a process network, with proc bodies resolved against a
// registered catalog of compiled tick entry points.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest represents a skein.toml network declaration.
type Manifest struct {
	Network  NetworkDecl   `toml:"network"`
	Channels []ChannelDecl `toml:"channel"`
	Procs    []ProcDecl    `toml:"proc"`

	// Dir is the directory containing the skein.toml file (set at load time).
	Dir string `toml:"-"`
}

// NetworkDecl contains network metadata.
type NetworkDecl struct {
	Name string `toml:"name"`
}

// ChannelDecl declares one channel.
type ChannelDecl struct {
	Name string `toml:"name"`
	Type string `toml:"type"`

	// Kind is "fifo" (default) or "single".
	Kind string `toml:"kind"`

	// Seed lists initial values in enqueue order. Integers for bits
	// channels; nested arrays for tuples and arrays.
	Seed []any `toml:"seed"`
}

// ProcDecl declares one proc.
type ProcDecl struct {
	Name string `toml:"name"`

	// Body names the registered tick entry point; defaults to Name.
	Body string `toml:"body"`

	// State is the proc's persistent state buffer size in bytes.
	State int `toml:"state"`
}

// Load parses a skein.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "skein.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return m, nil
}

// Parse decodes a skein.toml document and applies defaults.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	// Defaults
	for i := range m.Channels {
		if m.Channels[i].Kind == "" {
			m.Channels[i].Kind = "fifo"
		}
	}
	for i := range m.Procs {
		if m.Procs[i].Body == "" {
			m.Procs[i].Body = m.Procs[i].Name
		}
	}
	return &m, nil
}
