package loop

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/balanceball/internal/draw"
	"github.com/tomz197/balanceball/internal/input"
	"github.com/tomz197/balanceball/internal/render"
	"github.com/tomz197/balanceball/internal/sim"
)

// Options configures a terminal session.
type Options struct {
	TermSizeFunc draw.TermSizeFunc
	Logger       *log.Logger
	Game         sim.Options

	// OnGameOver is called once per finished run with the final score.
	OnGameOver func(score int)

	// Shutdown, when closed, shows a notice and ends the session after a delay.
	Shutdown <-chan struct{}

	// Now and Sleep replace the wall clock in tests.
	Now   func() time.Time
	Sleep func(time.Duration)
}

// Session is one player at one terminal: input, a private game, and rendering.
type Session struct {
	opts     Options
	logger   *log.Logger
	driver   *Driver
	stream   *input.Stream
	out      io.Writer
	canvas   *draw.Canvas
	cw       *draw.ChunkWriter
	renderer *render.Renderer

	started      bool
	running      bool
	lastActivity time.Time
	shutdownAt   time.Time // Zero until a shutdown was announced
}

// NewSession creates a session reading keys from r and drawing to w.
func NewSession(r *bufio.Reader, w io.Writer, opts Options) *Session {
	if opts.TermSizeFunc == nil {
		opts.TermSizeFunc = draw.DefaultTermSizeFunc
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}

	game := sim.New(opts.Game)
	canvasCfg := game.Config().Canvas

	s := &Session{
		opts:     opts,
		logger:   opts.Logger,
		driver:   NewDriver(game, opts.Logger),
		stream:   input.StartStream(r),
		out:      w,
		canvas:   draw.NewCanvas(1, 1, canvasCfg.Width, canvasCfg.Height),
		cw:       draw.NewChunkWriter(w, 0, 0),
		renderer: render.New(w),
		running:  true,
	}
	s.updateScreen()
	return s
}

// Run plays until the player quits, the input ends, the player idles too
// long or a shutdown notice runs out.
func Run(r *bufio.Reader, w io.Writer, opts Options) error {
	return NewSession(r, w, opts).Run()
}

// Run is the Input -> Update -> Draw loop.
func (s *Session) Run() error {
	draw.HideCursor(s.out)
	defer draw.ShowCursor(s.out)
	draw.ClearScreen(s.out)

	target := s.driver.Game().Config().Frame.TargetFrameTime()
	s.lastActivity = s.opts.Now()

	for s.running {
		frameStart := s.opts.Now()

		in := input.ReadInput(s.stream)
		if in.Quit || s.stream.Closed() {
			break
		}

		notice := s.checkTimeouts(frameStart, in)
		if !s.running {
			break
		}

		s.updateScreen()
		s.update(frameStart, in)

		if err := s.drawFrame(notice); err != nil {
			return err
		}

		if elapsed := s.opts.Now().Sub(frameStart); elapsed < target {
			s.opts.Sleep(target - elapsed)
		}
	}

	draw.ClearScreen(s.out)
	return nil
}

// Driver returns the session's frame driver.
func (s *Session) Driver() *Driver {
	return s.driver
}

func (s *Session) update(now time.Time, in sim.Intent) {
	if !s.started {
		if in.Restart {
			s.started = true
			s.stream.Reset()
			s.driver.Reset()
		}
		return
	}

	g := s.driver.Game()
	wasRunning := g.Running
	if in.Restart && (!g.Running || s.driver.Faulted()) {
		s.stream.Reset()
		s.driver.Reset()
	}
	if err := s.driver.Tick(now, in); err != nil {
		return
	}
	if wasRunning && !g.Running {
		s.logger.Info("run finished", "score", g.FinalScore, "reason", g.Reason.Message())
		if s.opts.OnGameOver != nil {
			s.opts.OnGameOver(g.FinalScore)
		}
	}
}

// checkTimeouts tracks idle time and the shutdown countdown. It returns the
// notice to show at the bottom of the screen.
func (s *Session) checkTimeouts(now time.Time, in sim.Intent) string {
	if in != (sim.Intent{}) {
		s.lastActivity = now
	}

	if s.shutdownAt.IsZero() && s.opts.Shutdown != nil {
		select {
		case <-s.opts.Shutdown:
			s.shutdownAt = now.Add(shutdownDisplay)
		default:
		}
	}
	if !s.shutdownAt.IsZero() {
		left := s.shutdownAt.Sub(now)
		if left <= 0 {
			s.running = false
			return ""
		}
		return fmt.Sprintf("Server shutting down, disconnecting in %d s (Q to leave now)", int(left.Seconds())+1)
	}

	idle := now.Sub(s.lastActivity)
	switch {
	case idle >= InactivityDisconnectUser:
		s.running = false
		return ""
	case idle >= InactivityWarnUser:
		left := InactivityDisconnectUser - idle
		return fmt.Sprintf("No input for a while, disconnecting in %d s", int(left.Seconds())+1)
	default:
		return ""
	}
}

// updateScreen fits a 4:3 render area into the terminal and centers it.
func (s *Session) updateScreen() {
	termWidth, termHeight, err := s.opts.TermSizeFunc()
	if err != nil || termWidth <= 0 || termHeight <= 0 {
		return
	}
	maxWidth := min(MaxTermWidth, termHeight*aspectCols/aspectRows)
	maxHeight := min(MaxTermHeight, termWidth*aspectRows/aspectCols)
	width, height, offCol, offRow := draw.ClampTermSize(termWidth, termHeight, maxWidth, maxHeight)

	s.canvas.Resize(width, height)
	s.canvas.SetOffset(offCol, offRow)
	s.cw.SetOffset(offCol, offRow)
}

func (s *Session) drawFrame(notice string) error {
	draw.ClearScreen(s.cw)
	if notice == "" && s.driver.Faulted() {
		notice = faultNotice
	}

	var snap *sim.Snapshot
	if s.started {
		g := s.driver.Game()
		v := g.Snapshot(g.Now())
		snap = &v
	}
	if err := s.renderer.Frame(s.cw, s.canvas, snap, notice); err != nil {
		return err
	}
	return s.cw.Flush()
}
