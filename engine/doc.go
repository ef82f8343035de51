// Package engine executes a process network: it drives a static set of
// communicating, stateful procs to quiescence one global tick at a time.
//
// This package contains:
//   - Power-of-two circular byte storage with alignment-correct strides
//   - The packed-value codec between ir.Value and flat byte buffers
//   - Channel queues (locked and unlocked) and their manager
//   - Journal-replay continuations for suspend-and-resume tick bodies
//   - The serial round-robin scheduler
package engine
