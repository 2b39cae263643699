// Package protocol implements the wire format spoken between the wall
// server and its clients.
//
// Every message is a JSON envelope {"messageType": tag, "data": payload}.
// The payload is a flat delimited string: fields within an entry are joined
// by "," and entries are joined by ";". A user-list payload therefore looks
// like "1,#ff0000;2,#00ff00" and a paint batch like "3,4,#00ff00;5,6,#fff".
package protocol

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sb810/pixel-paint-challenge/internal/pkg/canvas"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/registry"

	"github.com/pkg/errors"
)

// Message tags.
const (
	TagAssignIdentity = "assignIdentity"
	TagHandshakeReply = "handshakeReply"
	TagUserListUpdate = "userListUpdate"
	TagPaint          = "paint"
	TagLivenessProbe  = "livenessProbe"
	TagLivenessReply  = "livenessReply"
	TagColorChange    = "colorChange"
	TagMalformedInput = "malformedInput"
)

// UnassignedIdentity is the sentinel a client sends in a liveness reply when
// it has no identity yet. Allocation probes upward from 1, so 0 never
// collides with a real identity.
const UnassignedIdentity = 0

const (
	fieldSep = ","
	entrySep = ";"
)

// Message is the wire envelope for every exchange.
type Message struct {
	Type string `json:"messageType"`
	Data string `json:"data"`
}

// Encode serializes the envelope for the transport.
func (m Message) Encode() ([]byte, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, "marshal message failed")
	}
	return raw, nil
}

// AssignIdentityMessage informs a connection of its newly allocated identity.
func AssignIdentityMessage(identity int) Message {
	return Message{Type: TagAssignIdentity, Data: strconv.Itoa(identity)}
}

// HandshakeReplyMessage is the client's response to an identity assignment.
func HandshakeReplyMessage(identity int, color string) Message {
	return Message{Type: TagHandshakeReply, Data: pair(identity, color)}
}

// LivenessReplyMessage is the client's response to a liveness probe.
func LivenessReplyMessage(identity int, color string) Message {
	return Message{Type: TagLivenessReply, Data: pair(identity, color)}
}

// ColorChangeMessage announces a client's new display color.
func ColorChangeMessage(identity int, color string) Message {
	return Message{Type: TagColorChange, Data: pair(identity, color)}
}

// UserListMessage carries the connected-user set, in the order given.
func UserListMessage(users []registry.User) Message {
	entries := make([]string, len(users))
	for i, u := range users {
		entries[i] = pair(u.Identity, u.Color)
	}
	return Message{Type: TagUserListUpdate, Data: strings.Join(entries, entrySep)}
}

// PaintMessage carries a batch of paint operations. An empty batch encodes
// to an empty payload, which is how an empty history replays.
func PaintMessage(ops []canvas.Op) Message {
	entries := make([]string, len(ops))
	for i, op := range ops {
		entries[i] = strings.Join([]string{
			strconv.Itoa(op.X),
			strconv.Itoa(op.Y),
			op.Color,
		}, fieldSep)
	}
	return Message{Type: TagPaint, Data: strings.Join(entries, entrySep)}
}

// LivenessProbeMessage asks every connection to reconfirm itself.
func LivenessProbeMessage() Message {
	return Message{Type: TagLivenessProbe, Data: ""}
}

// MalformedInputMessage reports a rejected message back to its sender,
// echoing the offending input.
func MalformedInputMessage(description string, echo []byte) Message {
	return Message{
		Type: TagMalformedInput,
		Data: fmt.Sprintf("%s: %s", description, string(echo)),
	}
}

func pair(identity int, color string) string {
	return strconv.Itoa(identity) + fieldSep + color
}
