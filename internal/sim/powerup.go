package sim

import (
	"fmt"
	"time"

	"github.com/tomz197/balanceball/internal/effect"
	"github.com/tomz197/balanceball/internal/object"
	"github.com/tomz197/balanceball/internal/physics"
)

// spawnToken drops a token of a uniformly chosen enabled type.
func (g *Game) spawnToken() {
	pool := g.cfg.Settings.Pool(g.Extra != nil, false)
	if len(pool) == 0 {
		return
	}
	typ := pool[g.rand.Intn(len(pool))]
	g.Tokens = append(g.Tokens, object.NewToken(g.cfg, g.rand, typ))
}

// collectTokens activates and removes every token touched by a ball.
// Balls are fixed for the pass, so an extra ball spawned here cannot pick up tokens until next frame.
func (g *Game) collectTokens() {
	balls := g.balls()
	g.Tokens = object.Retain(g.Tokens, func(t *object.Token) bool {
		for _, b := range balls {
			if t.Touches(b) {
				g.Activate(t.Type)
				return false
			}
		}
		return true
	})
}

// Activate applies a power-up or power-down.
func (g *Game) Activate(p effect.PowerUp) {
	switch p {
	case effect.PowerUpShield,
		effect.PowerUpWidePlatform,
		effect.PowerUpMagnet,
		effect.PowerUpTimeFreeze,
		effect.PowerDownNarrowPlatform,
		effect.PowerDownIceMode,
		effect.PowerDownBlinkingEye,
		effect.PowerDownEarthquake:
		k, ok := p.Timed()
		assert(ok, "%v has no timed effect", p)
		g.Effects.Activate(k, g.clock.Now(), g.cfg.PowerUp.Duration)
		if k.ChangesPlatformWidth() {
			g.applyPlatformWidth()
		}
	case effect.PowerUpShrinkBall:
		g.setSize(g.Size.Shrink())
	case effect.PowerUpBigBallz:
		g.setSize(g.Size.Grow())
	case effect.PowerUpExtraBall:
		g.spawnExtraBall()
	case effect.PowerUpRandom:
		pool := g.cfg.Settings.Pool(g.Extra != nil, true)
		if len(pool) == 0 {
			return
		}
		g.Activate(pool[g.rand.Intn(len(pool))])
	default:
		panic(fmt.Sprintf("sim: unknown power-up %d", p))
	}
}

// setSize moves the size state machine and resizes the primary ball.
func (g *Game) setSize(s effect.SizeState) {
	g.Size = s
	g.Ball.Radius = g.cfg.Ball.Radius(s)
	assert(g.Ball.Radius > 0, "ball radius %v", g.Ball.Radius)
}

// spawnExtraBall places a second ball on the platform next to the primary one,
// on the side with more room. No-op when an extra ball already exists.
func (g *Game) spawnExtraBall() {
	if g.Extra != nil {
		return
	}
	c := g.cfg.Ball
	p := g.Platform

	offset := c.ExtraOffset
	if g.Ball.X >= p.CenterX() {
		offset = -offset
	}
	x := physics.Clamp(g.Ball.X+offset, p.X+c.ExtraMargin, p.X+p.Width-c.ExtraMargin)

	g.Extra = object.NewBall(x, c.InitialY, g.Ball.Radius, c.TrailLength)
}

// expireEffects switches off elapsed effects and resizes the platform if needed.
func (g *Game) expireEffects(now time.Time) {
	resize := false
	for _, k := range g.Effects.Expire(now) {
		if k.ChangesPlatformWidth() {
			resize = true
		}
	}
	if resize {
		g.applyPlatformWidth()
	}
}
