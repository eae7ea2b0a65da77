package sim

import (
	"time"

	"github.com/tomz197/balanceball/internal/effect"
	"github.com/tomz197/balanceball/internal/object"
	"github.com/tomz197/balanceball/internal/sim/config"
)

// FrameDelta converts the wall time since the previous frame into the dt
// multiplier. Elapsed time is clamped so a stalled host cannot cause a huge step.
func FrameDelta(elapsed time.Duration, f config.Frame) float64 {
	elapsed = min(max(elapsed, 0), f.MaxElapsed)
	return float64(elapsed) / float64(f.TargetFrameTime())
}

// Step advances the game by one frame of dt target frames.
func (g *Game) Step(dt float64, in Intent) {
	g.Frame++

	if in.Pause && g.Running && g.Capture == nil {
		g.Paused = !g.Paused
	}
	if in.Restart && !g.Running {
		g.Restart()
		return
	}
	if !g.Running || g.Paused {
		return
	}

	ctx := g.context(dt)

	if g.Capture != nil {
		g.updateWorld(ctx)
		if g.updateCapture(ctx) {
			g.end(GameOverCaptured)
		}
		return
	}

	g.Platform.Update(ctx, in)
	if g.updateBalls(ctx) == OutcomeGameOver {
		return
	}
	g.applyHoleGravity(ctx)
	g.updateWorld(ctx)

	if hole, slot, ok := g.findCapture(); ok {
		g.resolveLoss(slot, LossCaptured, hole)
	}
}

func (g *Game) context(dt float64) object.UpdateContext {
	return object.UpdateContext{
		Dt:        dt,
		Now:       g.clock.Now(),
		Config:    g.cfg,
		Effects:   &g.Effects,
		Rand:      g.rand,
		HoleSpeed: SpeedMultiplier(g.cfg.BlackHole, g.Score),
	}
}

// updateWorld spawns and moves the falling entities, applies pickups and expires effects.
// Pickups are skipped during a capture since the ball is gone.
func (g *Game) updateWorld(ctx object.UpdateContext) {
	capturing := g.Capture != nil

	if tick(&g.holeTimer, g.cfg.BlackHole.SpawnInterval, ctx.Dt) {
		g.Holes = append(g.Holes, object.NewBlackHole(g.cfg, g.rand))
	}
	g.Holes = object.UpdateAll(g.Holes, ctx)

	if tick(&g.orbTimer, g.cfg.ScoreOrb.SpawnInterval, ctx.Dt) {
		g.Orbs = append(g.Orbs, object.NewScoreOrb(g.cfg, g.rand))
	}
	g.Orbs = object.UpdateAll(g.Orbs, ctx)
	if !capturing {
		g.collectOrbs()
	}

	if tick(&g.tokenTimer, g.cfg.PowerUp.SpawnInterval, ctx.Dt) {
		g.spawnToken()
	}
	g.Tokens = object.UpdateAll(g.Tokens, ctx)
	g.expireEffects(ctx.Now)
	if !capturing {
		g.collectTokens()
	}
}

// tick accumulates fractional frames and reports whether the interval elapsed.
func tick(timer *float64, interval, dt float64) bool {
	*timer += dt
	if *timer < interval {
		return false
	}
	*timer -= interval
	return true
}

// applyHoleGravity pulls every ball toward every hole in range. Shield disables it.
func (g *Game) applyHoleGravity(ctx object.UpdateContext) {
	if g.Effects.Active(effect.Shield) {
		return
	}
	for _, b := range g.balls() {
		for _, h := range g.Holes {
			h.Pull(ctx, b)
		}
	}
}

// collectOrbs scores and removes every orb touched by a ball.
func (g *Game) collectOrbs() {
	balls := g.balls()
	g.Orbs = object.Retain(g.Orbs, func(o *object.ScoreOrb) bool {
		for _, b := range balls {
			if o.Touches(b) {
				g.Score += o.Points
				return false
			}
		}
		return true
	})
}

// findCapture returns the first hole that captures a ball. The primary ball is
// checked before the extra ball for each hole. Shield disables captures.
func (g *Game) findCapture() (*object.BlackHole, BallSlot, bool) {
	if g.Effects.Active(effect.Shield) {
		return nil, 0, false
	}
	c := g.cfg.BlackHole
	for _, h := range g.Holes {
		if h.Captures(c, g.Ball) {
			return h, SlotPrimary, true
		}
		if g.Extra != nil && h.Captures(c, g.Extra) {
			return h, SlotExtra, true
		}
	}
	return nil, 0, false
}

// balls returns the balls in play, primary first.
func (g *Game) balls() []*object.Ball {
	if g.Extra != nil {
		return []*object.Ball{g.Ball, g.Extra}
	}
	return []*object.Ball{g.Ball}
}
