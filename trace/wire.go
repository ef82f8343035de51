package trace

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode uses canonical mode so the same log always encodes to the
// same bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("trace: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal serializes a Log to canonical CBOR bytes.
func Marshal(l *Log) ([]byte, error) {
	return cborEncMode.Marshal(l)
}

// Unmarshal deserializes a Log from CBOR bytes.
func Unmarshal(data []byte) (*Log, error) {
	var l Log
	if err := cbor.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("trace: unmarshal log: %w", err)
	}
	return &l, nil
}
