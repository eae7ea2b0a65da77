package sim

import (
	"github.com/tomz197/balanceball/internal/object"
	"github.com/tomz197/balanceball/internal/physics"
)

// BallSlot names which ball was lost.
type BallSlot int

const (
	SlotPrimary BallSlot = iota
	SlotExtra
)

// LossCause is how a ball was lost.
type LossCause int

const (
	LossFell LossCause = iota
	LossCaptured
)

// Outcome is the result of resolving a ball loss.
type Outcome int

const (
	OutcomeNone         Outcome = iota // Nothing was lost
	OutcomePromoted                    // Primary lost, extra took its place
	OutcomeExtraDropped                // Extra lost, primary plays on
	OutcomeCapturing                   // Primary captured with no backup, animation started
	OutcomeGameOver                    // Primary fell with no backup
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomePromoted:
		return "promoted"
	case OutcomeExtraDropped:
		return "extraDropped"
	case OutcomeCapturing:
		return "capturing"
	case OutcomeGameOver:
		return "gameOver"
	default:
		return "unknown"
	}
}

// updateBalls integrates every ball and resolves falls.
func (g *Game) updateBalls(ctx object.UpdateContext) Outcome {
	primaryLost := g.Ball.Update(ctx, g.Platform)
	extraLost := g.Extra != nil && g.Extra.Update(ctx, g.Platform)

	switch {
	case primaryLost:
		return g.resolveLoss(SlotPrimary, LossFell, nil)
	case extraLost:
		return g.resolveLoss(SlotExtra, LossFell, nil)
	default:
		return OutcomeNone
	}
}

// resolveLoss decides whether the run continues after a ball is lost.
//
//	extra lost              -> drop it, keep running
//	primary lost, extra set -> promote the extra ball, keep running
//	primary captured        -> start the capture animation
//	primary fell            -> game over
func (g *Game) resolveLoss(slot BallSlot, cause LossCause, hole *object.BlackHole) Outcome {
	if slot == SlotExtra {
		g.dropExtra()
		return OutcomeExtraDropped
	}
	if g.Extra != nil {
		g.promoteExtra()
		return OutcomePromoted
	}

	switch cause {
	case LossCaptured:
		g.startCapture(hole)
		return OutcomeCapturing
	case LossFell:
		g.end(GameOverFell)
		return OutcomeGameOver
	default:
		panic("sim: unknown loss cause")
	}
}

// promoteExtra moves the extra ball into the primary slot. The radius comes
// with it, so it reflects the size state at the time the extra ball spawned
// until the next size power-up.
func (g *Game) promoteExtra() {
	assert(g.Extra != nil, "promote without an extra ball")
	g.Ball.Adopt(g.Extra)
	g.Extra = nil
}

func (g *Game) dropExtra() {
	assert(g.Extra != nil, "drop without an extra ball")
	g.Extra = nil
}

func (g *Game) startCapture(hole *object.BlackHole) {
	assert(hole != nil, "capture without a black hole")
	g.Capture = &Capture{
		Hole:        hole,
		StartX:      g.Ball.X,
		StartY:      g.Ball.Y,
		StartRadius: g.Ball.Radius,
	}
	g.FinalScore = g.Score
}

// updateCapture advances the suck-in animation. Returns true when it is done.
func (g *Game) updateCapture(ctx object.UpdateContext) bool {
	c := g.Capture
	cc := g.cfg.Capture
	b := g.Ball
	dt := ctx.Dt

	c.Progress += cc.ProgressRate * dt

	f := 1 - physics.Decay(cc.LerpBase, dt)
	b.X = physics.Lerp(b.X, c.Hole.X, f)
	b.Y = physics.Lerp(b.Y, c.Hole.Y, f)
	b.Radius = c.StartRadius * (1 - c.Progress*cc.ShrinkFactor)
	b.Spin += cc.SpinRate * dt * (1 + c.Progress*3)

	if g.rand.Float64() < cc.ParticleChance*dt {
		c.Particles = append(c.Particles, object.NewParticle(b.X, b.Y, c.Hole, g.rand))
	}
	c.Particles = object.UpdateAll(c.Particles, ctx)

	if c.Progress < 1 {
		return false
	}
	b.Radius = c.StartRadius
	return true
}
