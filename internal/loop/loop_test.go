package loop

import (
	"bufio"
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/balanceball/internal/sim"
)

var epoch = time.Unix(1_700_000_000, 0)

func newGame(seed int64) (*sim.Game, *sim.ManualClock) {
	clock := sim.NewManualClock(epoch)
	g := sim.New(sim.Options{Clock: clock, Rand: rand.New(rand.NewSource(seed))})
	return g, clock
}

func TestDriverDelta(t *testing.T) {
	driven, _ := newGame(1)
	manual, _ := newGame(1)
	d := NewDriver(driven, nil)

	now := epoch
	for _, gap := range []time.Duration{0, 33 * time.Millisecond, 16 * time.Millisecond, time.Second} {
		now = now.Add(gap)
		if err := d.Tick(now, sim.Intent{TiltRight: true}); err != nil {
			t.Fatal(err)
		}
	}

	manual.Step(1, sim.Intent{TiltRight: true})
	for _, gap := range []time.Duration{33 * time.Millisecond, 16 * time.Millisecond, time.Second} {
		manual.Step(sim.FrameDelta(gap, manual.Config().Frame), sim.Intent{TiltRight: true})
	}

	if driven.Ball.X != manual.Ball.X || driven.Ball.Y != manual.Ball.Y || driven.Platform.Tilt != manual.Platform.Tilt {
		t.Fatalf("driven ball (%v,%v) tilt %v, manual ball (%v,%v) tilt %v",
			driven.Ball.X, driven.Ball.Y, driven.Platform.Tilt,
			manual.Ball.X, manual.Ball.Y, manual.Platform.Tilt)
	}
}

func TestDriverRecoversFault(t *testing.T) {
	var buf bytes.Buffer
	g, _ := newGame(1)
	d := NewDriver(g, log.New(&buf))

	g.Ball.Radius = -1
	now := epoch
	for i := 0; i < 2; i++ {
		now = now.Add(16 * time.Millisecond)
		err := d.Tick(now, sim.Intent{})
		var fe *FrameError
		if !errors.As(err, &fe) {
			t.Fatalf("tick %d: got %v, want *FrameError", i, err)
		}
		if fe.Frame != uint64(i+1) {
			t.Fatalf("fault frame = %d, want %d", fe.Frame, i+1)
		}
	}
	if d.Faults() != 2 {
		t.Fatalf("Faults() = %d, want 2", d.Faults())
	}
	out := buf.String()
	for _, want := range []string{"frame fault", "ball_x", "extra_ball", "capturing"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log missing %q: %s", want, out)
		}
	}

	// The driver keeps going once the state is sane again
	g.Ball.Radius = 18
	if err := d.Tick(now.Add(16*time.Millisecond), sim.Intent{}); err != nil {
		t.Fatalf("tick after recovery: %v", err)
	}
	if g.Frame != 3 {
		t.Fatalf("frame = %d, want 3", g.Frame)
	}
}

func TestDriverRestartsAfterPersistentFault(t *testing.T) {
	g, _ := newGame(1)
	d := NewDriver(g, nil)

	g.Ball.Radius = -1
	now := epoch
	for i := 0; i < 3; i++ {
		now = now.Add(16 * time.Millisecond)
		if err := d.Tick(now, sim.Intent{}); err == nil {
			t.Fatalf("tick %d: want a fault", i)
		}
	}
	if !d.Faulted() || !g.Running {
		t.Fatalf("faulted = %v running = %v, want a running game stuck in a fault", d.Faulted(), g.Running)
	}

	now = now.Add(16 * time.Millisecond)
	if err := d.Tick(now, sim.Intent{Restart: true}); err != nil {
		t.Fatalf("restart tick: %v", err)
	}
	if d.Faulted() {
		t.Fatal("driver still faulted after restart")
	}
	if g.Ball.Radius != g.Config().Ball.Radius(g.Size) || g.Frame != 0 {
		t.Fatalf("radius = %v frame = %d, want a fresh run", g.Ball.Radius, g.Frame)
	}

	now = now.Add(16 * time.Millisecond)
	if err := d.Tick(now, sim.Intent{}); err != nil {
		t.Fatalf("tick after restart: %v", err)
	}
	if g.Frame != 1 {
		t.Fatalf("frame = %d, want 1", g.Frame)
	}
}

func TestDriverIgnoresRestartWhileHealthy(t *testing.T) {
	g, _ := newGame(1)
	d := NewDriver(g, nil)

	for i := 0; i < 3; i++ {
		d.Tick(epoch.Add(time.Duration(i)*16*time.Millisecond), sim.Intent{})
	}
	g.Score = 7
	d.Tick(epoch.Add(48*time.Millisecond), sim.Intent{Restart: true})
	if g.Score != 7 || g.Frame != 4 {
		t.Fatalf("score = %d frame = %d, restart must only apply after a run ends", g.Score, g.Frame)
	}
}

func TestFrameErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	fe := &FrameError{Frame: 4, Cause: cause}
	if !errors.Is(fe, cause) {
		t.Fatal("FrameError must unwrap an error cause")
	}
	if (&FrameError{Cause: "text"}).Unwrap() != nil {
		t.Fatal("non-error cause must unwrap to nil")
	}
}

func TestDriverHeartbeat(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)
	g, _ := newGame(1)
	d := NewDriver(g, logger)

	now := epoch
	for i := 0; i < heartbeatFrames; i++ {
		now = now.Add(time.Second / 60)
		d.Tick(now, sim.Intent{})
	}
	if got := strings.Count(buf.String(), "heartbeat"); got != 1 {
		t.Fatalf("heartbeat lines = %d, want 1:\n%s", got, buf.String())
	}
}

func TestHubShutdown(t *testing.T) {
	h := NewHub()
	id, shutdown := h.Register()
	if h.Len() != 1 {
		t.Fatalf("Len() = %d", h.Len())
	}

	go func() {
		<-shutdown
		h.Unregister(id)
	}()

	done := make(chan struct{})
	go func() {
		h.Shutdown(5 * time.Second)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Shutdown did not return after the session left")
	}

	// Late sessions are told right away
	_, late := h.Register()
	select {
	case <-late:
	default:
		t.Fatal("session registered after shutdown was not notified")
	}
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Sleep(d time.Duration)   { c.now = c.now.Add(d) }
func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestSession(t *testing.T, opts Options) (*Session, *fakeClock, *bytes.Buffer) {
	t.Helper()
	clock := &fakeClock{now: epoch}
	var out bytes.Buffer
	opts.TermSizeFunc = func() (int, int, error) { return 200, 60, nil }
	opts.Now = clock.Now
	opts.Sleep = clock.Sleep
	if opts.Game.Rand == nil {
		opts.Game.Rand = rand.New(rand.NewSource(3))
	}
	s := NewSession(bufio.NewReader(strings.NewReader("")), &out, opts)
	s.lastActivity = clock.now
	return s, clock, &out
}

func TestSessionStartsOnEnter(t *testing.T) {
	s, clock, out := newTestSession(t, Options{})
	g := s.Driver().Game()

	s.update(clock.now, sim.Intent{TiltLeft: true})
	if s.started || g.Frame != 0 {
		t.Fatal("game advanced before start")
	}
	if err := s.drawFrame(""); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Press Enter to start") {
		t.Fatal("start screen not drawn")
	}

	s.update(clock.now, sim.Intent{Restart: true})
	if !s.started {
		t.Fatal("Enter did not start the game")
	}
	clock.advance(16 * time.Millisecond)
	s.update(clock.now, sim.Intent{})
	if g.Frame != 1 {
		t.Fatalf("frame = %d, want 1", g.Frame)
	}
}

func TestSessionReportsGameOverOnce(t *testing.T) {
	var scores []int
	s, clock, _ := newTestSession(t, Options{OnGameOver: func(score int) { scores = append(scores, score) }})
	g := s.Driver().Game()
	s.update(clock.now, sim.Intent{Restart: true})

	g.Score = 21
	g.Ball.X = -500
	for i := 0; i < 3; i++ {
		clock.advance(16 * time.Millisecond)
		s.update(clock.now, sim.Intent{})
	}
	if len(scores) != 1 || scores[0] != 21 {
		t.Fatalf("OnGameOver calls = %v, want [21]", scores)
	}

	s.update(clock.now, sim.Intent{Restart: true})
	if !g.Running || g.Score != 0 {
		t.Fatal("Enter after game over did not restart")
	}
}

func TestSessionFaultNoticeAndRestart(t *testing.T) {
	s, clock, out := newTestSession(t, Options{})
	g := s.Driver().Game()
	s.update(clock.now, sim.Intent{Restart: true})

	g.Ball.Radius = -1
	clock.advance(16 * time.Millisecond)
	s.update(clock.now, sim.Intent{})
	if err := s.drawFrame(""); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), faultNotice) {
		t.Fatal("fault notice not drawn")
	}

	clock.advance(16 * time.Millisecond)
	s.update(clock.now, sim.Intent{Restart: true})
	if s.Driver().Faulted() || g.Ball.Radius <= 0 {
		t.Fatalf("faulted = %v radius = %v, want a restarted run", s.Driver().Faulted(), g.Ball.Radius)
	}

	out.Reset()
	clock.advance(16 * time.Millisecond)
	s.update(clock.now, sim.Intent{})
	if err := s.drawFrame(""); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.String(), faultNotice) {
		t.Fatal("fault notice still drawn after restart")
	}
}

func TestSessionInactivity(t *testing.T) {
	s, clock, _ := newTestSession(t, Options{})

	clock.advance(InactivityWarnUser + time.Second)
	notice := s.checkTimeouts(clock.now, sim.Intent{})
	if !strings.Contains(notice, "disconnecting in 30 s") {
		t.Fatalf("notice = %q", notice)
	}

	if notice := s.checkTimeouts(clock.now, sim.Intent{MoveLeft: true}); notice != "" {
		t.Fatalf("input must reset idle time, got %q", notice)
	}

	clock.advance(InactivityDisconnectUser)
	s.checkTimeouts(clock.now, sim.Intent{})
	if s.running {
		t.Fatal("idle session not disconnected")
	}
}

func TestSessionShutdownNotice(t *testing.T) {
	shutdown := make(chan struct{})
	s, clock, _ := newTestSession(t, Options{Shutdown: shutdown})

	if notice := s.checkTimeouts(clock.now, sim.Intent{}); notice != "" {
		t.Fatalf("unexpected notice %q", notice)
	}
	close(shutdown)
	if notice := s.checkTimeouts(clock.now, sim.Intent{}); !strings.Contains(notice, "shutting down") {
		t.Fatalf("notice = %q", notice)
	}
	clock.advance(shutdownDisplay)
	s.checkTimeouts(clock.now, sim.Intent{})
	if s.running {
		t.Fatal("session still running after the shutdown notice")
	}
}

func TestSessionRenderArea(t *testing.T) {
	s, _, _ := newTestSession(t, Options{})
	if w, h := s.canvas.TerminalWidth(), s.canvas.TerminalHeight(); w != 160 || h != 60 {
		t.Fatalf("render area = %dx%d, want 160x60", w, h)
	}

	s.opts.TermSizeFunc = func() (int, int, error) { return 80, 40, nil }
	s.updateScreen()
	if w, h := s.canvas.TerminalWidth(), s.canvas.TerminalHeight(); w != 80 || h != 30 {
		t.Fatalf("render area = %dx%d, want 80x30", w, h)
	}
}

func TestRunQuits(t *testing.T) {
	var out bytes.Buffer
	clock := &fakeClock{now: epoch}
	err := Run(bufio.NewReader(strings.NewReader("q")), &out, Options{
		TermSizeFunc: func() (int, int, error) { return 80, 30, nil },
		Now:          clock.Now,
		Sleep:        func(time.Duration) { time.Sleep(time.Millisecond) },
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "\033[?25l") || !strings.HasSuffix(out.String(), "\033[?25h") {
		t.Fatalf("unexpected terminal output %q", out.String())
	}
}
