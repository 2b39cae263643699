package protocol

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/sb810/pixel-paint-challenge/internal/pkg/canvas"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/registry"
)

// ServerInbound is a parsed server-to-client message.
type ServerInbound interface {
	serverInbound()
}

// AssignIdentity delivers a freshly allocated identity.
type AssignIdentity struct {
	Identity int
}

// UserListUpdate delivers the refreshed connected-user set.
type UserListUpdate struct {
	Users []registry.User
}

// PaintBroadcast delivers an accepted paint batch or a history replay.
// A replay of an empty history carries zero operations.
type PaintBroadcast struct {
	Ops []canvas.Op
}

// LivenessProbe asks the client to reconfirm itself.
type LivenessProbe struct{}

// MalformedInput reports that a message this client sent was rejected.
type MalformedInput struct {
	Description string
}

func (AssignIdentity) serverInbound() {}
func (UserListUpdate) serverInbound() {}
func (PaintBroadcast) serverInbound() {}
func (LivenessProbe) serverInbound()  {}
func (MalformedInput) serverInbound() {}

// ParseServer decodes a raw server-to-client message.
func ParseServer(raw []byte) (ServerInbound, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, &MalformedError{Description: "unparseable message envelope", Echo: string(raw)}
	}
	switch msg.Type {
	case TagAssignIdentity:
		id, err := strconv.Atoi(msg.Data)
		if err != nil || id < 1 {
			return nil, &MalformedError{Description: "unparseable identity", Echo: string(raw)}
		}
		return AssignIdentity{Identity: id}, nil
	case TagUserListUpdate:
		users, err := parseUsers(msg.Data, raw)
		if err != nil {
			return nil, err
		}
		return UserListUpdate{Users: users}, nil
	case TagPaint:
		ops, err := parseOps(msg.Data, raw)
		if err != nil {
			return nil, err
		}
		return PaintBroadcast{Ops: ops}, nil
	case TagLivenessProbe:
		return LivenessProbe{}, nil
	case TagMalformedInput:
		return MalformedInput{Description: msg.Data}, nil
	default:
		return nil, &MalformedError{Description: "unrecognized message type", Echo: string(raw)}
	}
}

func parseUsers(data string, raw []byte) ([]registry.User, error) {
	if data == "" {
		return nil, nil
	}
	entries := strings.Split(data, entrySep)
	users := make([]registry.User, 0, len(entries))
	for _, entry := range entries {
		fields := strings.Split(entry, fieldSep)
		if len(fields) != 2 {
			return nil, &MalformedError{
				Description: "expected exactly two fields per user entry",
				Echo:        string(raw),
			}
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil || id < 1 {
			return nil, &MalformedError{
				Description: "unparseable identity in user entry",
				Echo:        string(raw),
			}
		}
		users = append(users, registry.User{Identity: id, Color: fields[1]})
	}
	return users, nil
}
