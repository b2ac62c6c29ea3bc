// Package stdio bridges a process's standard input/output streams to a tool
// catalog using a newline-delimited JSON message protocol.
//
// One JSON-RPC 2.0 message per line: requests arrive on stdin, responses and
// notifications leave on stdout. A dedicated reader goroutine pulls lines
// into a channel and a dedicated writer goroutine drains an outgoing channel,
// appending a trailing newline when a message lacks one. Closing a channel is
// the shutdown sentinel: the reader closes its channel at end of stream, and
// the writer keeps draining until its channel closes, so all queued output is
// flushed before shutdown.
//
// Channels are buffered but effectively unbounded in practice: request volume
// over stdio is a single client process. A production-grade deployment that
// multiplexes many clients should bound the queue and block the reader when
// full.
package stdio
