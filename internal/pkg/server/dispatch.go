package server

import (
	"github.com/sb810/pixel-paint-challenge/internal/pkg/log"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/protocol"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/session"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// dispatch routes one parsed inbound message. Every failure here is
// isolated to the offending connection: it is reported back to that sender
// and never torn down or propagated to the broadcaster.
func (s *Server) dispatch(sess *session.Session, raw []byte) {
	in, err := protocol.Parse(raw)
	if err != nil {
		var malformed *protocol.MalformedError
		if errors.As(err, &malformed) {
			s.reject(sess, malformed.Description, raw)
			return
		}
		logger.WithError(err).Error("parse inbound message failed")
		return
	}

	switch msg := in.(type) {
	case protocol.HandshakeReply:
		s.handleHandshake(sess, msg, raw)
	case protocol.LivenessReply:
		s.handleLivenessReply(sess, msg)
	case protocol.PaintBatch:
		s.handlePaint(msg)
	case protocol.ColorChange:
		s.handleColorChange(sess, msg, raw)
	}
}

// handleHandshake completes the session handshake: confirm the identity's
// color, replay the full paint history to this connection alone, and
// publish the refreshed user list.
func (s *Server) handleHandshake(sess *session.Session, msg protocol.HandshakeReply, raw []byte) {
	if err := s.registry.Apply(msg.Identity, msg.Color); err != nil {
		s.reject(sess, "handshake for unknown identity", raw)
		return
	}
	sess.SetState(session.Active)
	replay := protocol.PaintMessage(s.canvas.Replay())
	if err := sess.Send(replay); err != nil {
		logger.WithField("session", sess.UUID().String()).Warn("send history replay failed")
	}
	logger.WithFields(log.MessageToFields(replay)).Debug("replayed history")
	s.publishUserList()
}

// handleLivenessReply records a probe response in the provisional set. The
// unassigned sentinel means the connection never completed registration, so
// it gets a fresh identity; any other reply arriving outside a sweep is a
// late straggler and is ignored.
func (s *Server) handleLivenessReply(sess *session.Session, msg protocol.LivenessReply) {
	if msg.Identity == protocol.UnassignedIdentity {
		identity := s.registry.Allocate()
		sess.SetIdentity(identity)
		if err := sess.Send(protocol.AssignIdentityMessage(identity)); err != nil {
			logger.WithField("session", sess.UUID().String()).Warn("send identity assignment failed")
		}
		if err := s.registry.Apply(identity, msg.Color); err != nil {
			logger.WithError(err).Warn("record color for fresh identity failed")
		}
		return
	}
	if s.registry.Sweeping() {
		s.registry.RecordProvisional(msg.Identity, msg.Color)
	}
}

// handlePaint appends the accepted batch and fans it out verbatim.
func (s *Server) handlePaint(msg protocol.PaintBatch) {
	s.canvas.Append(msg.Ops...)
	s.hub.Broadcast(protocol.PaintMessage(msg.Ops))
}

func (s *Server) handleColorChange(sess *session.Session, msg protocol.ColorChange, raw []byte) {
	if err := s.registry.Apply(msg.Identity, msg.Color); err != nil {
		s.reject(sess, "color change for unknown identity", raw)
		return
	}
	s.publishUserList()
}

// publishUserList broadcasts the authoritative set, unless a sweep is in
// progress; the commit at the end of the sweep broadcasts the superseding
// list anyway.
func (s *Server) publishUserList() {
	if s.registry.Sweeping() {
		return
	}
	s.hub.Broadcast(protocol.UserListMessage(s.registry.Snapshot()))
}

// reject reports a rejected message back to its sender only.
func (s *Server) reject(sess *session.Session, description string, raw []byte) {
	logger.WithFields(logrus.Fields{
		"session": sess.UUID().String(),
		"reason":  description,
	}).Warn("rejected inbound message")
	if err := sess.Send(protocol.MalformedInputMessage(description, raw)); err != nil {
		logger.WithField("session", sess.UUID().String()).Debug("send rejection failed")
	}
}
