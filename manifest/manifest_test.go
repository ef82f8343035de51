package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const triplerTOML = `
[network]
name = "tripler"

[[channel]]
name = "in"
type = "s32"
seed = [5]

[[channel]]
name = "out"
type = "s32"

[[proc]]
name = "triple"
`

func TestParseDefaults(t *testing.T) {
	m, err := Parse([]byte(triplerTOML))
	if err != nil {
		t.Fatal(err)
	}
	if m.Network.Name != "tripler" {
		t.Errorf("network name = %q, want tripler", m.Network.Name)
	}
	if len(m.Channels) != 2 || len(m.Procs) != 1 {
		t.Fatalf("parsed %d channels, %d procs", len(m.Channels), len(m.Procs))
	}
	if m.Channels[0].Kind != "fifo" {
		t.Errorf("default kind = %q, want fifo", m.Channels[0].Kind)
	}
	if m.Procs[0].Body != "triple" {
		t.Errorf("default body = %q, want proc name", m.Procs[0].Body)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "skein.toml"), []byte(triplerTOML), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if m.Dir == "" || !filepath.IsAbs(m.Dir) {
		t.Errorf("Dir = %q, want absolute path", m.Dir)
	}

	if _, err := Load(filepath.Join(dir, "missing")); err == nil {
		t.Error("Load from a directory without skein.toml succeeded")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		toml    string
		wantErr string // empty means valid
	}{
		{"valid", triplerTOML, ""},
		{
			"bad type",
			"[[channel]]\nname = \"x\"\ntype = \"q8\"\n",
			"type",
		},
		{
			"bad kind",
			"[[channel]]\nname = \"x\"\ntype = \"u8\"\nkind = \"ring\"\n",
			"unknown kind",
		},
		{
			"seed shape",
			"[[channel]]\nname = \"x\"\ntype = \"(u8, u8)\"\nseed = [3]\n",
			"seed",
		},
		{
			"negative unsigned seed",
			"[[channel]]\nname = \"x\"\ntype = \"u8\"\nseed = [-1]\n",
			"negative seed",
		},
		{
			"seed overflow",
			"[[channel]]\nname = \"x\"\ntype = \"u8\"\nseed = [300]\n",
			"does not fit",
		},
		{
			"duplicate channels",
			"[[channel]]\nname = \"x\"\ntype = \"u8\"\n[[channel]]\nname = \"x\"\ntype = \"u8\"\n",
			"duplicate",
		},
		{
			"negative state",
			"[[proc]]\nname = \"p\"\nstate = -4\n",
			"negative state",
		},
	}
	for _, tt := range tests {
		m, err := Parse([]byte(tt.toml))
		if err != nil {
			t.Fatalf("%s: parse: %v", tt.name, err)
		}
		err = m.Validate()
		if tt.wantErr == "" {
			if err != nil {
				t.Errorf("%s: Validate() = %v, want nil", tt.name, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("%s: Validate() = %v, want mention of %q", tt.name, err, tt.wantErr)
		}
	}
}
