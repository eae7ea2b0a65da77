// Package stream plays the game over a websocket: every connection runs its
// own simulation at the target frame rate, reads intents from the client and
// pushes a snapshot per frame.
package stream

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/tomz197/balanceball/internal/loop"
	"github.com/tomz197/balanceball/internal/middleware"
	"github.com/tomz197/balanceball/internal/sim"
)

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 512
)

// Options configures a Server.
type Options struct {
	Game    sim.Options
	Origins []string // Allowed browser origins; empty allows any

	// OnGameOver is called with the final score of each finished run.
	OnGameOver func(score int)
}

// Server upgrades HTTP requests to play sessions.
type Server struct {
	opts     Options
	upgrader websocket.Upgrader
	limiter  *middleware.IPRateLimiter
	hub      *loop.Hub
	logger   *log.Logger
}

// NewServer creates a websocket play server. limiter may be nil.
func NewServer(opts Options, limiter *middleware.IPRateLimiter, hub *loop.Hub, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if hub == nil {
		hub = loop.NewHub()
	}
	s := &Server{opts: opts, limiter: limiter, hub: hub, logger: logger}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 16 << 10,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || len(s.opts.Origins) == 0 || slices.Contains(s.opts.Origins, origin)
}

// ServeHTTP handles GET /ws. Add ?format=msgpack for binary frames.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ip := middleware.RealIP(r)
	if s.limiter != nil {
		if !s.limiter.ConnectAllowed(ip) {
			http.Error(w, "too many connections", http.StatusTooManyRequests)
			return
		}
		defer s.limiter.Disconnect(ip)
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "ip", ip, "err", err)
		return
	}
	defer conn.Close()

	id, shutdown := s.hub.Register()
	defer s.hub.Unregister(id)

	binary := r.URL.Query().Get("format") == "msgpack"
	logger := s.logger.With("session", id, "ip", ip)
	logger.Info("play session started", "msgpack", binary)

	p := &player{
		conn:     conn,
		binary:   binary,
		driver:   loop.NewDriver(sim.New(s.opts.Game), logger),
		logger:   logger,
		shutdown: shutdown,
		onOver:   s.opts.OnGameOver,
		allow:    func() bool { return s.limiter == nil || s.limiter.Allow(ip) },
	}
	err = p.run()
	logger.Info("play session ended", "err", err, "faults", p.driver.Faults())
}

// player is one connection with its game.
type player struct {
	conn     *websocket.Conn
	binary   bool
	driver   *loop.Driver
	logger   *log.Logger
	shutdown <-chan struct{}
	onOver   func(score int)
	allow    func() bool

	mu     sync.Mutex
	intent sim.Intent
}

var errClientQuit = errors.New("client quit")

func (p *player) run() error {
	readErr := make(chan error, 1)
	go func() { readErr <- p.readLoop() }()

	frame := time.NewTicker(p.driver.Game().Config().Frame.TargetFrameTime())
	defer frame.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case err := <-readErr:
			if errors.Is(err, errClientQuit) || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				p.close(websocket.CloseNormalClosure, "bye")
				return nil
			}
			return err
		case <-p.shutdown:
			p.close(websocket.CloseGoingAway, "server shutting down")
			return nil
		case <-ping.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		case now := <-frame.C:
			if err := p.frame(now); err != nil {
				return err
			}
		}
	}
}

// Frame is the message pushed to the client every tick. Fault is set while
// the simulation keeps faulting; a restart intent clears it.
type Frame struct {
	sim.Snapshot `msgpack:",inline"`
	Fault        bool `json:"fault" msgpack:"fault"`
}

func (p *player) frame(now time.Time) error {
	g := p.driver.Game()
	wasRunning := g.Running
	err := p.driver.Tick(now, p.takeIntent())
	if err == nil && wasRunning && !g.Running && p.onOver != nil {
		p.onOver(g.FinalScore)
	}

	msg := Frame{Snapshot: g.Snapshot(g.Now()), Fault: err != nil}
	kind := websocket.TextMessage
	var data []byte
	if p.binary {
		kind = websocket.BinaryMessage
		data, err = msgpack.Marshal(&msg)
	} else {
		data, err = json.Marshal(&msg)
	}
	if err != nil {
		return err
	}
	p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return p.conn.WriteMessage(kind, data)
}

func (p *player) readLoop() error {
	p.conn.SetReadLimit(maxMessageSize)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := p.conn.ReadMessage()
		if err != nil {
			return err
		}
		if !p.allow() {
			continue
		}

		var in sim.Intent
		if kind == websocket.BinaryMessage {
			err = msgpack.Unmarshal(data, &in)
		} else {
			err = json.Unmarshal(data, &in)
		}
		if err != nil {
			p.logger.Debug("bad intent", "err", err)
			continue
		}
		if in.Quit {
			return errClientQuit
		}
		p.pushIntent(in)
	}
}

// pushIntent replaces the held keys and latches the edge triggers until the
// next frame consumes them.
func (p *player) pushIntent(in sim.Intent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	in.Pause = in.Pause || p.intent.Pause
	in.Restart = in.Restart || p.intent.Restart
	p.intent = in
}

func (p *player) takeIntent() sim.Intent {
	p.mu.Lock()
	defer p.mu.Unlock()
	in := p.intent
	p.intent.Pause = false
	p.intent.Restart = false
	return in
}

func (p *player) close(code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	p.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
