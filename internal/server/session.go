package server

import (
	"context"
	"encoding/base64"

	"go.uber.org/zap"

	"github.com/IDGS10A-ECONORTE/lsm-server/internal/game"
	"github.com/IDGS10A-ECONORTE/lsm-server/internal/utils/log"
)

// wsConn is the slice of *websocket.Conn the session needs, split out so
// tests can drive a session with a scripted connection.
type wsConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v any) error
	Close() error
}

// DominanceDefault is the handedness preference assigned on connect.
const DominanceDefault = "RIGHT"

// Session is the per-connection protocol state. It is owned by the registry
// and mutated only by its own read loop: the state machine is Idle while no
// target is set and Armed(target) otherwise.
type Session struct {
	playerID string
	alias    string // optional client-chosen id echoed in replies
	conn     wsConn
	srv      *Server

	target    string // "" while Idle
	dominance string

	ctx    context.Context
	cancel context.CancelFunc
}

func newSession(srv *Server, playerID string, conn wsConn) *Session {
	ctx, cancel := context.WithCancel(srv.baseCtx)
	return &Session{
		playerID:  playerID,
		conn:      conn,
		srv:       srv,
		dominance: DominanceDefault,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// PlayerID returns the server-assigned id the registry keys this session by.
func (s *Session) PlayerID() string { return s.playerID }

func (s *Session) replyID() string {
	if s.alias != "" {
		return s.alias
	}
	return s.playerID
}

// statusReply is the outbound shape for control-message acknowledgements.
type statusReply struct {
	Status    string `json:"status"`
	PlayerID  string `json:"player_id,omitempty"`
	Target    string `json:"target,omitempty"`
	Dominance string `json:"dominance,omitempty"`
	Message   string `json:"message,omitempty"`
}

// verdictReply is the outbound shape for one evaluated frame.
type verdictReply struct {
	PlayerID string  `json:"player_id"`
	Result   bool    `json:"result"`
	Feedback string  `json:"feedback"`
	Target   string  `json:"target"`
	Score    float64 `json:"score"`
	HandUsed string  `json:"hand_used,omitempty"`
}

// run services the connection until it closes, processing messages strictly
// in arrival order. It must be called from exactly one goroutine.
func (s *Session) run() {
	defer s.teardown()

	s.send(statusReply{
		Status:   "CONNECTED",
		PlayerID: s.playerID,
		Message:  "Connection established. Dominance: " + s.dominance,
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			log.Debug("connection closed", zap.String("player", s.playerID), zap.Error(err))
			return
		}
		s.handle(data)
	}
}

func (s *Session) teardown() {
	s.cancel()
	s.srv.registry.Remove(s.playerID)
	s.conn.Close()
	log.Info("player disconnected",
		zap.String("player", s.playerID),
		zap.Int("players_remaining", s.srv.registry.Len()))
}

// handle runs one message through the state machine.
func (s *Session) handle(data []byte) {
	msg, err := ParseMessage(data)
	if err != nil {
		s.send(statusReply{
			Status:   "ERROR",
			PlayerID: s.replyID(),
			Message:  "invalid message: " + err.Error(),
		})
		return
	}

	if msg.PlayerID != "" {
		s.alias = msg.PlayerID
	}

	switch msg.Kind {
	case KindSetTarget:
		s.setTarget(msg.Sign)
	case KindAssignTarget:
		s.assignTarget(msg.Difficulty)
	case KindSetDominance:
		s.setDominance(msg.Dominance)
	case KindStopTarget:
		s.stopTarget()
	case KindImage:
		// Idle sessions ignore frames entirely; no pose work happens.
		if s.target == "" {
			return
		}
		s.processImage(msg.ImageData)
	default:
		s.send(statusReply{
			Status:   "UNKNOWN_COMMAND",
			PlayerID: s.replyID(),
			Message:  "unrecognized command",
		})
	}
}

func (s *Session) setTarget(sign string) {
	sign = normalizeLabel(sign)
	if sign == "" {
		s.send(statusReply{
			Status:   "ERROR",
			PlayerID: s.replyID(),
			Message:  "SET_TARGET requires a sign",
		})
		return
	}

	s.target = sign
	log.Info("target set", zap.String("player", s.playerID), zap.String("target", sign))

	s.send(statusReply{
		Status:   "TARGET_SET",
		PlayerID: s.replyID(),
		Target:   sign,
	})
}

// assignTarget picks a target for the difficulty tier. The catalog scan is
// a store round-trip, so it runs on the worker pool; the session suspends
// here, which keeps this connection's messages ordered.
func (s *Session) assignTarget(difficulty string) {
	type selection struct {
		label string
		err   error
	}

	ch := make(chan selection, 1)
	err := s.srv.pool.Submit(func() {
		label, err := s.srv.selector.Select(s.ctx, difficulty)
		ch <- selection{label: label, err: err}
	})
	if err != nil {
		s.send(statusReply{Status: "ERROR", PlayerID: s.replyID(), Message: "server is shutting down"})
		return
	}

	select {
	case sel := <-ch:
		if sel.err != nil {
			log.Warn("target assignment failed",
				zap.String("player", s.playerID),
				zap.String("difficulty", difficulty),
				zap.Error(sel.err))
			s.send(statusReply{
				Status:   "ERROR",
				PlayerID: s.replyID(),
				Message:  "could not assign a target: " + sel.err.Error(),
			})
			return
		}
		s.target = sel.label
		log.Info("target assigned", zap.String("player", s.playerID), zap.String("target", sel.label))
		s.send(statusReply{
			Status:   "TARGET_ASSIGNED",
			PlayerID: s.replyID(),
			Target:   sel.label,
		})
	case <-s.ctx.Done():
		// Connection tore down while the scan was in flight; discard.
	}
}

func (s *Session) setDominance(side string) {
	side = normalizeLabel(side)
	if side != "LEFT" && side != "RIGHT" {
		s.send(statusReply{
			Status:   "ERROR",
			PlayerID: s.replyID(),
			Message:  "invalid dominance, use LEFT or RIGHT",
		})
		return
	}

	s.dominance = side
	s.send(statusReply{
		Status:    "DOMINANCE_SET",
		PlayerID:  s.replyID(),
		Dominance: side,
	})
}

func (s *Session) stopTarget() {
	s.target = ""
	s.send(statusReply{
		Status:   "TARGET_STOPPED",
		PlayerID: s.replyID(),
		Target:   "NONE",
	})
}

// processImage decodes the frame and dispatches the expensive pipeline
// (detection, normalization, store query) to the worker pool, suspending
// this session until the verdict is ready.
func (s *Session) processImage(encoded string) {
	target := s.target

	if encoded == "" {
		s.sendVerdict(frameResult{verdict: game.Verdict{Feedback: "image message without data"}}, target)
		return
	}

	frame, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		s.sendVerdict(frameResult{verdict: game.Verdict{Feedback: "invalid image encoding: " + err.Error()}}, target)
		return
	}

	ch := make(chan frameResult, 1)
	submitErr := s.srv.pool.Submit(func() {
		ch <- s.srv.evaluateFrame(s.ctx, frame, target)
	})
	if submitErr != nil {
		s.send(statusReply{Status: "ERROR", PlayerID: s.replyID(), Message: "server is shutting down"})
		return
	}

	select {
	case res := <-ch:
		s.sendVerdict(res, target)
	case <-s.ctx.Done():
		// Connection closed mid-flight: the result is discarded when the
		// worker finishes, and no reply is sent.
	}
}

func (s *Session) sendVerdict(res frameResult, target string) {
	s.send(verdictReply{
		PlayerID: s.replyID(),
		Result:   res.verdict.Correct,
		Feedback: res.verdict.Feedback,
		Target:   target,
		Score:    res.verdict.Score,
		HandUsed: res.handUsed,
	})
}

func (s *Session) send(v any) {
	if err := s.conn.WriteJSON(v); err != nil {
		log.Debug("write failed", zap.String("player", s.playerID), zap.Error(err))
	}
}
