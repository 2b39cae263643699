package protocol

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/sb810/pixel-paint-challenge/internal/pkg/canvas"
)

// Inbound is a parsed client-to-server message.
type Inbound interface {
	inbound()
}

// HandshakeReply confirms an identity assignment with the client's color.
type HandshakeReply struct {
	Identity int
	Color    string
}

// LivenessReply reconfirms a connection during a sweep.
type LivenessReply struct {
	Identity int
	Color    string
}

// PaintBatch carries one or more accepted paint operations.
type PaintBatch struct {
	Ops []canvas.Op
}

// ColorChange updates a client's display color.
type ColorChange struct {
	Identity int
	Color    string
}

func (HandshakeReply) inbound() {}
func (LivenessReply) inbound()  {}
func (PaintBatch) inbound()     {}
func (ColorChange) inbound()    {}

// Parse decodes a raw client-to-server message. A message with any
// malformed entry is rejected whole; the returned error is always a
// *MalformedError suitable for reporting back to the sender.
func Parse(raw []byte) (Inbound, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, &MalformedError{Description: "unparseable message envelope", Echo: string(raw)}
	}
	switch msg.Type {
	case TagHandshakeReply:
		id, color, err := parsePair(msg.Type, msg.Data, raw)
		if err != nil {
			return nil, err
		}
		return HandshakeReply{Identity: id, Color: color}, nil
	case TagLivenessReply:
		id, color, err := parsePair(msg.Type, msg.Data, raw)
		if err != nil {
			return nil, err
		}
		return LivenessReply{Identity: id, Color: color}, nil
	case TagColorChange:
		id, color, err := parsePair(msg.Type, msg.Data, raw)
		if err != nil {
			return nil, err
		}
		return ColorChange{Identity: id, Color: color}, nil
	case TagPaint:
		ops, err := parseOps(msg.Data, raw)
		if err != nil {
			return nil, err
		}
		if len(ops) == 0 {
			return nil, &MalformedError{Description: "empty paint batch", Echo: string(raw)}
		}
		return PaintBatch{Ops: ops}, nil
	default:
		return nil, &MalformedError{Description: "unrecognized message type", Echo: string(raw)}
	}
}

// parsePair decodes an (identity, color) payload with exactly two fields.
func parsePair(tag, data string, raw []byte) (int, string, error) {
	fields := strings.Split(data, fieldSep)
	if len(fields) != 2 {
		return 0, "", &MalformedError{
			Description: "expected exactly two fields in " + tag,
			Echo:        string(raw),
		}
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil || id < 0 {
		return 0, "", &MalformedError{
			Description: "unparseable identity in " + tag,
			Echo:        string(raw),
		}
	}
	if !validColor(fields[1]) {
		return 0, "", &MalformedError{
			Description: "unparseable color in " + tag,
			Echo:        string(raw),
		}
	}
	return id, fields[1], nil
}

// parseOps decodes a list of (x, y, color) triples. An empty payload yields
// an empty list; any malformed triple fails the whole list.
func parseOps(data string, raw []byte) ([]canvas.Op, error) {
	if data == "" {
		return nil, nil
	}
	entries := strings.Split(data, entrySep)
	ops := make([]canvas.Op, 0, len(entries))
	for _, entry := range entries {
		fields := strings.Split(entry, fieldSep)
		if len(fields) != 3 {
			return nil, &MalformedError{
				Description: "expected exactly three fields per paint entry",
				Echo:        string(raw),
			}
		}
		x, err := strconv.Atoi(fields[0])
		if err != nil || x < 0 {
			return nil, &MalformedError{
				Description: "unparseable x coordinate in paint entry",
				Echo:        string(raw),
			}
		}
		y, err := strconv.Atoi(fields[1])
		if err != nil || y < 0 {
			return nil, &MalformedError{
				Description: "unparseable y coordinate in paint entry",
				Echo:        string(raw),
			}
		}
		if !validColor(fields[2]) {
			return nil, &MalformedError{
				Description: "unparseable color in paint entry",
				Echo:        string(raw),
			}
		}
		ops = append(ops, canvas.Op{X: x, Y: y, Color: fields[2]})
	}
	return ops, nil
}

// validColor accepts any non-empty color that cannot break the payload
// framing. The server does not interpret colors beyond relaying them.
func validColor(color string) bool {
	return color != "" && !strings.ContainsAny(color, fieldSep+entrySep)
}
