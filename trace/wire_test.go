package trace

import (
	"bytes"
	"testing"
)

func sampleLog() *Log {
	return &Log{
		Network: "fwd",
		Events: []Event{
			{Kind: EventChannelOp, Tick: 1, Proc: 0, Channel: 0},
			{Kind: EventChannelOp, Tick: 1, Proc: 0, Channel: 1, Send: true},
			{Kind: EventInvocation, Tick: 1, Pass: 1, Proc: 0, Status: "complete", Ops: 2},
		},
	}
}

func TestLogRoundTrip(t *testing.T) {
	l := sampleLog()
	data, err := Marshal(l)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Network != l.Network {
		t.Errorf("network = %q, want %q", got.Network, l.Network)
	}
	if len(got.Events) != len(l.Events) {
		t.Fatalf("decoded %d events, want %d", len(got.Events), len(l.Events))
	}
	for i, e := range got.Events {
		if e != l.Events[i] {
			t.Errorf("event %d = %+v, want %+v", i, e, l.Events[i])
		}
	}
}

func TestMarshalIsDeterministic(t *testing.T) {
	a, err := Marshal(sampleLog())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Marshal(sampleLog())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("encoding the same log twice produced different bytes")
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	if _, err := Unmarshal([]byte{0xFF, 0x00, 0x13}); err == nil {
		t.Error("Unmarshal of garbage bytes succeeded")
	}
}
