// Package loop drives the simulation: the frame driver that normalizes frame
// time and survives faults, and the terminal session that wires input,
// simulation and rendering together.
package loop

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/balanceball/internal/sim"
)

// FrameError is a fault recovered from a simulation step.
type FrameError struct {
	Frame uint64
	Cause any
	BallX float64
	BallY float64
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d: %v (ball at %.1f,%.1f)", e.Frame, e.Cause, e.BallX, e.BallY)
}

// Unwrap returns the panic value when it is an error.
func (e *FrameError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}

// Driver advances one game per frame. A fault in a step is logged and counted;
// the next Tick runs as usual. While the last step faulted a restart intent
// restarts the run even if the game still reports it as running.
type Driver struct {
	game   *sim.Game
	logger *log.Logger

	last    time.Time
	faults  int
	faulted bool

	beatStart time.Time
	beatCount int
}

// NewDriver creates a driver for g. A nil logger discards output.
func NewDriver(g *sim.Game, logger *log.Logger) *Driver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Driver{game: g, logger: logger}
}

// Game returns the driven game.
func (d *Driver) Game() *sim.Game {
	return d.game
}

// Faults returns how many steps panicked.
func (d *Driver) Faults() int {
	return d.faults
}

// Faulted reports whether the most recent step panicked.
func (d *Driver) Faulted() bool {
	return d.faulted
}

// Reset forgets the previous frame time so the next Tick runs exactly one target frame.
func (d *Driver) Reset() {
	d.last = time.Time{}
}

// Tick steps the game with the dt derived from the wall time since the
// previous Tick. The first Tick after New or Reset uses one target frame.
func (d *Driver) Tick(now time.Time, in sim.Intent) error {
	frame := d.game.Config().Frame
	dt := 1.0
	if !d.last.IsZero() {
		dt = sim.FrameDelta(now.Sub(d.last), frame)
	}
	d.last = now

	var err error
	if d.faulted && in.Restart {
		d.logger.Info("restarting after frame fault", "faults", d.faults, "frame", d.game.Frame)
		err = d.guard(d.game.Restart)
	} else {
		err = d.guard(func() { d.game.Step(dt, in) })
	}
	d.faulted = err != nil
	d.heartbeat(now)
	return err
}

// guard runs fn and turns a panic into a logged *FrameError.
func (d *Driver) guard(fn func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		g := d.game
		fe := &FrameError{Frame: g.Frame, Cause: r, BallX: g.Ball.X, BallY: g.Ball.Y}
		d.faults++
		d.logger.Error("frame fault",
			"err", fe,
			"frame", g.Frame,
			"ball_x", g.Ball.X,
			"ball_y", g.Ball.Y,
			"extra_ball", g.Extra != nil,
			"capturing", g.Capture != nil,
		)
		err = fe
	}()
	fn()
	return nil
}

func (d *Driver) heartbeat(now time.Time) {
	if d.beatStart.IsZero() {
		d.beatStart = now
	}
	d.beatCount++
	if d.beatCount < heartbeatFrames {
		return
	}

	fps := 0.0
	if elapsed := now.Sub(d.beatStart); elapsed > 0 {
		fps = float64(d.beatCount) / elapsed.Seconds()
	}
	g := d.game
	d.logger.Debug("heartbeat",
		"frame", g.Frame,
		"ball_x", fmt.Sprintf("%.1f", g.Ball.X),
		"ball_y", fmt.Sprintf("%.1f", g.Ball.Y),
		"vx", fmt.Sprintf("%.2f", g.Ball.VX),
		"vy", fmt.Sprintf("%.2f", g.Ball.VY),
		"extra_ball", g.Extra != nil,
		"status", g.Status(),
		"fps", fmt.Sprintf("%.1f", fps),
	)
	d.beatStart = now
	d.beatCount = 0
}
