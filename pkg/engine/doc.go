// Package engine implements the client side of the analytics engine's
// JSON-RPC-over-websocket protocol.
//
// The protocol is strictly sequential: one stateful bidirectional connection
// carries at most one request at a time, and every request blocks until its
// single reply frame arrives. Immediately after connecting, the server pushes
// one greeting frame (the session notice) which must be drained before the
// first call; Dial handles that.
//
// Two call shapes exist. Global calls address the root context with the
// sentinel handle -1 (listing documents, opening a document). Contextual
// calls address a session handle returned by a previous call (saving an
// opened document). Client wraps both shapes with typed methods.
package engine
