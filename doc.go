// Package skein is a dataflow execution engine: it drives a static network
// of communicating, stateful procs to completion one logical tick at a
// time, with typed channels as the only communication path between procs.
//
// The engine consumes the output of an external translator/compiler (an
// opaque compiled tick entry point plus a state layout per proc) and
// provides the reference execution semantics for the network: cooperative
// round-robin scheduling to global quiescence, byte-exact alignment-correct
// channel storage that compiled bodies can operate on in place, and
// exactly-once in-order channel side effects across ticks that suspend on a
// blocked receive.
//
// Packages:
//   - ir: type descriptors, tagged values, channel/proc declarations, and
//     the frozen Network
//   - engine: circular byte stores, the packed-value codec, channel queues,
//     continuations, and the serial scheduler
//   - manifest: skein.toml network declarations and the body registry
//   - trace: execution trace recording, CBOR wire format, SQLite store
package skein
