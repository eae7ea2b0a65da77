// Package sim owns the simulation state and advances it one frame at a time.
package sim

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/tomz197/balanceball/internal/effect"
	"github.com/tomz197/balanceball/internal/object"
	"github.com/tomz197/balanceball/internal/sim/config"
)

// Intent is an alias for the per-frame player input.
type Intent = object.Intent

// Status is the run state of a game.
type Status int

const (
	StatusRunning Status = iota
	StatusCapturing
	StatusGameOver
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusCapturing:
		return "capturing"
	case StatusGameOver:
		return "gameOver"
	default:
		return "unknown"
	}
}

// GameOverReason tells why a run ended.
type GameOverReason int

const (
	GameOverNone GameOverReason = iota
	GameOverFell
	GameOverCaptured
)

// Message returns the text shown on the game over screen.
func (r GameOverReason) Message() string {
	switch r {
	case GameOverFell:
		return "The ball fell off the platform!"
	case GameOverCaptured:
		return "The ball was sucked into a black hole!"
	default:
		return ""
	}
}

// Capture is the state of the suck-in animation.
type Capture struct {
	Hole        *object.BlackHole
	Progress    float64 // 0 -> 1
	StartX      float64
	StartY      float64
	StartRadius float64
	Particles   []*object.Particle
}

// Options configures a new game.
type Options struct {
	Config    *config.Config // Default() when nil
	Clock     Clock          // SystemClock when nil
	Rand      *rand.Rand     // Time seeded when nil
	BestScore int
}

// Game is the explicit simulation context. All state is mutated only by Step
// and Restart, on the caller's goroutine.
type Game struct {
	cfg   *config.Config
	clock Clock
	rand  *rand.Rand

	Platform *object.Platform
	Ball     *object.Ball
	Extra    *object.Ball // nil when there is no extra ball
	Holes    []*object.BlackHole
	Orbs     []*object.ScoreOrb
	Tokens   []*object.Token
	Effects  effect.Table
	Size     effect.SizeState

	Score      int
	FinalScore int
	BestScore  int
	Running    bool
	Paused     bool
	Capture    *Capture // nil unless a capture started this run
	Reason     GameOverReason
	Frame      uint64

	holeTimer  float64
	orbTimer   float64
	tokenTimer float64
}

// New creates a game ready to run.
func New(opts Options) *Game {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	g := &Game{
		cfg:       opts.Config,
		clock:     opts.Clock,
		rand:      opts.Rand,
		Platform:  object.NewPlatform(opts.Config),
		BestScore: opts.BestScore,
	}
	g.Ball = object.NewBall(0, 0, 0, opts.Config.Ball.TrailLength)
	g.Restart()
	return g
}

// Config returns the configuration the game runs with.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// Now returns the game clock time.
func (g *Game) Now() time.Time {
	return g.clock.Now()
}

// Status derives the run state.
func (g *Game) Status() Status {
	switch {
	case !g.Running:
		return StatusGameOver
	case g.Capture != nil:
		return StatusCapturing
	default:
		return StatusRunning
	}
}

// Restart resets the run. The platform keeps its horizontal position.
func (g *Game) Restart() {
	g.Running = true
	g.Paused = false
	g.Score = 0
	g.FinalScore = 0
	g.Reason = GameOverNone
	g.Capture = nil
	g.Frame = 0

	g.Holes = g.Holes[:0]
	g.Orbs = g.Orbs[:0]
	g.Tokens = g.Tokens[:0]
	g.Extra = nil
	g.holeTimer, g.orbTimer, g.tokenTimer = 0, 0, 0

	g.Effects.Reset()
	g.Size = effect.SizeNormal

	g.Platform.Tilt = 0
	g.Platform.Quake = 0
	g.applyPlatformWidth()

	b := g.Ball
	b.X = g.Platform.CenterX()
	b.Y = g.cfg.Ball.InitialY
	b.VX, b.VY, b.AX, b.AY = 0, 0, 0, 0
	b.Radius = g.cfg.Ball.Radius(g.Size)
	b.Spin = 0
	b.Trail.Reset()
}

// SpeedMultiplier is the score based black hole speed factor, a capped step function.
func SpeedMultiplier(c config.BlackHole, score int) float64 {
	steps := math.Floor(float64(score) / c.SpeedIncreaseInterval)
	return min(c.MaxSpeedMultiplier, 1+steps*c.SpeedIncreaseAmount)
}

// BallVisible reports whether the primary ball should be drawn.
func (g *Game) BallVisible(now time.Time) bool {
	return g.Effects.Visible(now)
}

// applyPlatformWidth recomputes the width from the chosen platform size and
// the active width effects.
func (g *Game) applyPlatformWidth() {
	width := g.cfg.PlatformWidth() * object.WidthMultiplier(g.cfg, &g.Effects)
	g.Platform.ApplyWidth(width, g.cfg.Canvas.Width)
}

// end latches the final score and stops the run.
func (g *Game) end(reason GameOverReason) {
	g.Running = false
	g.Reason = reason
	g.FinalScore = g.Score
	if g.FinalScore > g.BestScore {
		g.BestScore = g.FinalScore
	}
}

// assert panics on a broken invariant.
func assert(ok bool, format string, args ...any) {
	if !ok {
		panic(fmt.Sprintf("sim: "+format, args...))
	}
}
