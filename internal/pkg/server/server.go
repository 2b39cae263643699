package server

import (
	"encoding/json"
	"net/http"

	"github.com/sb810/pixel-paint-challenge/internal/pkg/canvas"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/export"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/hub"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/protocol"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/registry"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/session"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/sweeper"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// Default canvas dimensions, shared with clients by convention. The server
// does not enforce coordinate bounds; the dimensions matter only where a
// bounded surface must be produced, such as the PDF snapshot.
const (
	DefaultCanvasWidth  = 64
	DefaultCanvasHeight = 64
)

// Server accepts wall connections and keeps every client's view consistent.
type Server struct {
	registry     *registry.Registry
	canvas       *canvas.Log
	hub          *hub.Hub
	sweeper      *sweeper.Sweeper
	canvasWidth  int
	canvasHeight int
	upgrader     websocket.Upgrader
}

// Cfg configures a Server.
type Cfg func(*Server) error

// WithRegistry sets the identity registry.
func WithRegistry(r *registry.Registry) Cfg {
	return func(s *Server) error {
		s.registry = r
		return nil
	}
}

// WithCanvas sets the paint log.
func WithCanvas(l *canvas.Log) Cfg {
	return func(s *Server) error {
		s.canvas = l
		return nil
	}
}

// WithHub sets the connection set.
func WithHub(h *hub.Hub) Cfg {
	return func(s *Server) error {
		s.hub = h
		return nil
	}
}

// WithSweeper sets the liveness sweeper triggered on connection close.
func WithSweeper(sw *sweeper.Sweeper) Cfg {
	return func(s *Server) error {
		s.sweeper = sw
		return nil
	}
}

// WithCanvasSize sets the advisory canvas dimensions.
func WithCanvasSize(width, height int) Cfg {
	return func(s *Server) error {
		if width <= 0 || height <= 0 {
			return errors.New("canvas dimensions must be positive")
		}
		s.canvasWidth = width
		s.canvasHeight = height
		return nil
	}
}

// NewServer creates a new Server with the given configuration.
func NewServer(cfgs ...Cfg) (*Server, error) {
	server := &Server{
		canvasWidth:  DefaultCanvasWidth,
		canvasHeight: DefaultCanvasHeight,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	for _, cfg := range cfgs {
		if err := cfg(server); err != nil {
			return nil, errors.Wrap(err, "apply Server cfg failed")
		}
	}
	if server.registry == nil {
		return nil, errors.New("server requires a registry")
	}
	if server.canvas == nil {
		return nil, errors.New("server requires a canvas log")
	}
	if server.hub == nil {
		return nil, errors.New("server requires a hub")
	}
	if server.sweeper == nil {
		return nil, errors.New("server requires a sweeper")
	}
	return server, nil
}

// Router returns the HTTP routes: the websocket endpoint, a health check
// and the PDF snapshot.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.handleWS)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/canvas.pdf", s.handleSnapshot).Methods(http.MethodGet)
	return r
}

// handleWS upgrades the connection and starts the session lifecycle:
// allocate an identity, tell the client, then await its handshake.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		logger.WithError(err).Warn("upgrade connection failed")
		return
	}
	sess := session.New(conn)
	s.hub.Add(sess)
	go sess.WritePump()

	identity := s.registry.Allocate()
	sess.SetIdentity(identity)
	if err := sess.Send(protocol.AssignIdentityMessage(identity)); err != nil {
		logger.WithField("session", sess.UUID().String()).Warn("send identity assignment failed")
	}
	sess.SetState(session.AwaitingHandshake)
	logger.WithFields(logrus.Fields{
		"session":  sess.UUID().String(),
		"identity": identity,
	}).Info("new connection established")

	go sess.ReadPump(s.dispatch, s.closed)
}

// closed handles the terminal transition of a session. The server cannot
// know who else might also be stale, so the whole registry is re-verified
// by an immediate sweep rather than just removing the one entry.
func (s *Server) closed(sess *session.Session) {
	s.hub.Remove(sess.UUID())
	logger.WithFields(logrus.Fields{
		"session":  sess.UUID().String(),
		"identity": sess.Identity(),
	}).Info("connection closed")
	s.sweeper.Trigger()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":      "ok",
		"connections": s.hub.Len(),
		"users":       s.registry.Len(),
		"operations":  s.canvas.Len(),
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/pdf")
	if err := export.PDF(w, s.canvas.Grid(), s.canvasWidth, s.canvasHeight); err != nil {
		logger.WithError(err).Error("render snapshot failed")
		http.Error(w, "render snapshot failed", http.StatusInternalServerError)
	}
}
