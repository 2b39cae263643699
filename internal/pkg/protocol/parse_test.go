package protocol

import (
	"testing"

	"github.com/sb810/pixel-paint-challenge/internal/pkg/canvas"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/registry"

	"github.com/stretchr/testify/require"
)

func mustEncode(t *testing.T, msg Message) []byte {
	t.Helper()
	raw, err := msg.Encode()
	require.NoError(t, err)
	return raw
}

func TestParseHandshakeReply(t *testing.T) {
	in, err := Parse(mustEncode(t, HandshakeReplyMessage(1, "#ff0000")))
	require.NoError(t, err)
	require.Equal(t, HandshakeReply{Identity: 1, Color: "#ff0000"}, in)
}

func TestParseLivenessReplyWithSentinel(t *testing.T) {
	in, err := Parse(mustEncode(t, LivenessReplyMessage(UnassignedIdentity, "#ff0000")))
	require.NoError(t, err)
	require.Equal(t, LivenessReply{Identity: 0, Color: "#ff0000"}, in)
}

func TestParsePaintBatch(t *testing.T) {
	ops := []canvas.Op{
		{X: 3, Y: 4, Color: "#00ff00"},
		{X: 5, Y: 6, Color: "#fff"},
	}
	in, err := Parse(mustEncode(t, PaintMessage(ops)))
	require.NoError(t, err)
	require.Equal(t, PaintBatch{Ops: ops}, in)
}

func TestParsePaintBatchRejectsMalformedEntryWhole(t *testing.T) {
	// Second entry has only two fields; the whole batch must be rejected.
	raw := mustEncode(t, Message{Type: TagPaint, Data: "3,4,#00ff00;5,6"})
	in, err := Parse(raw)
	require.Nil(t, in)
	var malformed *MalformedError
	require.ErrorAs(t, err, &malformed)
	require.Contains(t, malformed.Description, "three fields")
}

func TestParsePaintBatchRejectsNegativeCoordinate(t *testing.T) {
	raw := mustEncode(t, Message{Type: TagPaint, Data: "-1,4,#00ff00"})
	_, err := Parse(raw)
	var malformed *MalformedError
	require.ErrorAs(t, err, &malformed)
}

func TestParseRejectsEmptyPaintBatch(t *testing.T) {
	raw := mustEncode(t, Message{Type: TagPaint, Data: ""})
	_, err := Parse(raw)
	var malformed *MalformedError
	require.ErrorAs(t, err, &malformed)
	require.Contains(t, malformed.Description, "empty")
}

func TestParseColorChangeFieldCount(t *testing.T) {
	_, err := Parse(mustEncode(t, Message{Type: TagColorChange, Data: "1,#fff,extra"}))
	var malformed *MalformedError
	require.ErrorAs(t, err, &malformed)
	require.Contains(t, malformed.Description, "two fields")

	in, err := Parse(mustEncode(t, Message{Type: TagColorChange, Data: "1,#fff"}))
	require.NoError(t, err)
	require.Equal(t, ColorChange{Identity: 1, Color: "#fff"}, in)
}

func TestParseRejectsUnknownTag(t *testing.T) {
	_, err := Parse(mustEncode(t, Message{Type: "teleport", Data: "1"}))
	var malformed *MalformedError
	require.ErrorAs(t, err, &malformed)
	require.Contains(t, malformed.Description, "unrecognized")
}

func TestParseRejectsBadEnvelope(t *testing.T) {
	_, err := Parse([]byte("not json at all"))
	var malformed *MalformedError
	require.ErrorAs(t, err, &malformed)
	require.Contains(t, malformed.Echo, "not json at all")
}

func TestUserListRoundTrip(t *testing.T) {
	users := []registry.User{
		{Identity: 1, Color: "#ff0000"},
		{Identity: 2, Color: "#00ff00"},
	}
	msg := UserListMessage(users)
	require.Equal(t, "1,#ff0000;2,#00ff00", msg.Data)

	in, err := ParseServer(mustEncode(t, msg))
	require.NoError(t, err)
	require.Equal(t, UserListUpdate{Users: users}, in)
}

func TestParseServerEmptyPaintReplay(t *testing.T) {
	in, err := ParseServer(mustEncode(t, PaintMessage(nil)))
	require.NoError(t, err)
	require.Equal(t, PaintBroadcast{}, in)
}

func TestParseServerAssignIdentity(t *testing.T) {
	in, err := ParseServer(mustEncode(t, AssignIdentityMessage(7)))
	require.NoError(t, err)
	require.Equal(t, AssignIdentity{Identity: 7}, in)
}

func TestParseServerLivenessProbe(t *testing.T) {
	in, err := ParseServer(mustEncode(t, LivenessProbeMessage()))
	require.NoError(t, err)
	require.Equal(t, LivenessProbe{}, in)
}

func TestMalformedInputEchoesOffendingMessage(t *testing.T) {
	msg := MalformedInputMessage("unrecognized message type", []byte(`{"messageType":"x"}`))
	require.Equal(t, TagMalformedInput, msg.Type)
	require.Contains(t, msg.Data, `{"messageType":"x"}`)

	in, err := ParseServer(mustEncode(t, msg))
	require.NoError(t, err)
	require.Contains(t, in.(MalformedInput).Description, "unrecognized message type")
}

func TestColorWithDelimiterIsRejected(t *testing.T) {
	_, err := Parse(mustEncode(t, Message{Type: TagColorChange, Data: "1,#ff;00"}))
	var malformed *MalformedError
	require.ErrorAs(t, err, &malformed)
}
