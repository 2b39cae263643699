// Package server implements the wall synchronization server.
//
// The server performs the following steps:
//	1. Upgrades each HTTP request on /ws to a persistent websocket connection.
//	2. Allocates the smallest free integer identity, sends it to the new
//	   connection as assignIdentity, and awaits the handshakeReply carrying
//	   the client's chosen color.
//	3. On a valid handshake, replays the full paint history to that
//	   connection alone and broadcasts the refreshed user list to everyone.
//	4. Ongoing paint batches are appended to the log and fanned out verbatim;
//	   color changes update the registry and republish the user list.
//	5. Malformed messages and references to unknown identities are reported
//	   back to the offending sender only; the connection stays open.
//	6. When a transport closes, the whole registry is re-verified by an
//	   immediate liveness sweep.
//
// All canvas and registry state lives in process memory for the server's
// lifetime; a restart starts from a blank wall.
package server
