package engine

import (
	"errors"
	"fmt"

	"github.com/skeinflow/skein/ir"
)

// ErrTypeMismatch reports a typed enqueue of a value whose shape does not
// match the channel's declared type. The queue is untouched when this is
// returned.
var ErrTypeMismatch = errors.New("value does not conform to channel type")

func typeMismatch(v ir.Value, t ir.Type) error {
	return fmt.Errorf("engine: %w: value %s, type %s", ErrTypeMismatch, v, t)
}
