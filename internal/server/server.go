package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/IDGS10A-ECONORTE/lsm-server/internal/config"
	"github.com/IDGS10A-ECONORTE/lsm-server/internal/detector"
	"github.com/IDGS10A-ECONORTE/lsm-server/internal/game"
	"github.com/IDGS10A-ECONORTE/lsm-server/internal/gesture"
	"github.com/IDGS10A-ECONORTE/lsm-server/internal/server/api"
	"github.com/IDGS10A-ECONORTE/lsm-server/internal/signstore"
	"github.com/IDGS10A-ECONORTE/lsm-server/internal/utils/log"
	"github.com/IDGS10A-ECONORTE/lsm-server/internal/worker"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Game clients connect from arbitrary origins.
	},
}

// Config holds the server configuration.
type Config struct {
	Store    signstore.Store
	Detector detector.Detector
	Mode     config.Mode
	// Threshold is the acceptance similarity in [0,1].
	Threshold float64
	// Workers bounds the detection/store worker pool.
	Workers int
}

// Server multiplexes game sessions over WebSocket connections and exposes
// a small HTTP debug surface.
type Server struct {
	config    Config
	mux       *http.ServeMux
	registry  *Registry
	evaluator *game.Evaluator
	selector  *game.Selector
	pool      *worker.Pool
	start     time.Time

	baseCtx context.Context
	cancel  context.CancelFunc
}

// New creates a new Server with the given configuration.
func New(cfg Config) *Server {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Mode == "" {
		cfg.Mode = config.ModeDual
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		config:    cfg,
		mux:       http.NewServeMux(),
		registry:  NewRegistry(),
		evaluator: game.NewEvaluator(cfg.Store, cfg.Threshold),
		selector:  game.NewSelector(cfg.Store),
		pool:      worker.NewPool(cfg.Workers),
		start:     time.Now(),
		baseCtx:   ctx,
		cancel:    cancel,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/ws", s.handleWS)
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		s.mux.Handle("/api/signs", api.NewSignsHandler(s.config.Store))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

// Close cancels in-flight sessions and drains the worker pool.
func (s *Server) Close() {
	s.cancel()
	s.pool.Close()
}

// handleWS upgrades the connection and runs the session until disconnect.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	sess := newSession(s, uuid.NewString(), conn)
	s.registry.Add(sess)
	log.Info("player connected",
		zap.String("player", sess.PlayerID()),
		zap.Int("players", s.registry.Len()))

	sess.run()
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status":  "ok",
		"uptime":  time.Since(s.start).String(),
		"players": s.registry.Len(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// frameResult is one frame's trip through the pipeline.
type frameResult struct {
	verdict  game.Verdict
	handUsed string
}

// evaluateFrame runs the full pipeline for one frame: detection,
// per-hand normalization, assembly, then evaluation against the target.
// Geometry and collaborator failures fold into negative verdicts.
func (s *Server) evaluateFrame(ctx context.Context, frame []byte, target string) frameResult {
	hands, err := s.config.Detector.Detect(frame)
	if err != nil {
		if errors.Is(err, detector.ErrUndecodableImage) {
			return frameResult{verdict: game.Verdict{Feedback: "could not decode image frame"}}
		}
		log.Error("hand detection failed", zap.Error(err))
		return frameResult{verdict: game.Verdict{Feedback: "hand detection failed (similarity 0.0%)"}}
	}

	var (
		normalized []gesture.Hand
		used       []string
	)
	for _, hand := range hands {
		fp, err := gesture.Normalize(hand)
		if err != nil {
			// Degenerate pose: this hand is unusable, the frame may
			// still carry another.
			continue
		}
		normalized = append(normalized, gesture.Hand{
			Handedness:  hand.Handedness,
			Fingerprint: fp,
		})
		used = append(used, hand.Handedness)
	}

	assembled, err := gesture.Assemble(normalized, s.config.Mode == config.ModeDual)
	if err != nil {
		return frameResult{verdict: game.Verdict{Feedback: "hand not detected (similarity 0.0%)"}}
	}

	return frameResult{
		verdict:  s.evaluator.Evaluate(ctx, assembled, target),
		handUsed: strings.Join(used, ","),
	}
}

func normalizeLabel(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
