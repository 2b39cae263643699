// Package client implements a headless client for the wall protocol.
//
// The client performs the following steps:
//	1. Connects to the server's websocket endpoint.
//	2. Receives assignIdentity and replies with handshakeReply carrying its
//	   chosen color, completing registration.
//	3. Receives the full paint history as a single paint replay and applies
//	   it to a local grid, then applies every subsequent paint broadcast.
//	4. Answers each livenessProbe with its identity and color; an unanswered
//	   probe causes the server to drop it from the user list.
//	5. Accumulates local Paint calls over a short flush window and sends
//	   them as one batch.
//
// The client holds its view of the wall (grid and user list) in memory,
// for scripting and for tests to assert against. Rendering is out of scope.
package client
