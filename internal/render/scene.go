// Package render turns a simulation snapshot into terminal output: the
// playfield on a draw.Canvas and a lipgloss styled HUD on top of it.
package render

import (
	"math"

	"github.com/tomz197/balanceball/internal/draw"
	"github.com/tomz197/balanceball/internal/effect"
	"github.com/tomz197/balanceball/internal/sim"
)

var (
	colorPlatform      = draw.Hex("#00d9ff")
	colorPlatformEdge  = draw.Hex("#ffffff").Scale(0.8)
	colorPlatformMag   = draw.Hex("#ff6b35")
	colorPlatformFrost = draw.Hex("#00ffff")
	colorBall          = draw.Hex("#e94560")
	colorBallSucked    = draw.Hex("#9932ff")
	colorExtraBall     = draw.Hex("#ffdd00")
	colorShield        = draw.Hex("#ffd700")
	colorHoleCore      = draw.RGB(10, 0, 20)
	colorHoleRing      = draw.RGB(150, 50, 255)
	colorHoleFrozen    = draw.Hex("#00ffff")
	colorParticle      = draw.Hex("#cc7bff")
)

// Scene draws the playfield of s onto c. It clears the canvas first.
func Scene(c *draw.Canvas, s sim.Snapshot) {
	c.Clear()
	active := activeEffects(s)

	drawHoles(c, s, active[effect.TimeFreeze])
	for _, o := range s.Orbs {
		drawOrb(c, o)
	}
	for _, t := range s.Tokens {
		drawToken(c, t)
	}
	drawPlatform(c, s.Platform, active)

	if s.Extra != nil {
		drawBall(c, *s.Extra, colorExtraBall, false)
	}
	if s.Capture != nil {
		for _, p := range s.Capture.Particles {
			c.Circle(p.X, p.Y, p.Size, colorParticle.Scale(p.Life), true)
		}
		drawBall(c, s.Ball, colorBallSucked, false)
		return
	}
	if s.Ball.Visible {
		drawBall(c, s.Ball, colorBall, active[effect.Shield])
	}
}

func activeEffects(s sim.Snapshot) [effect.KindCount]bool {
	var active [effect.KindCount]bool
	for _, e := range s.Effects {
		if k, ok := effect.ParseKind(e.Kind); ok {
			active[k] = true
		}
	}
	return active
}

func drawPlatform(c *draw.Canvas, p sim.PlatformView, active [effect.KindCount]bool) {
	col := colorPlatform
	switch {
	case active[effect.Magnet]:
		col = colorPlatformMag
	case active[effect.TimeFreeze]:
		col = colorPlatformFrost
	}

	leftY := p.Y + p.Tilt
	rightY := p.Y - p.Tilt
	right := p.X + p.Width
	for dy := 2.0; dy <= p.Height; dy += 2 {
		c.Line(p.X, leftY+dy, right, rightY+dy, col.Scale(1-dy/(p.Height*2)))
	}
	c.Line(p.X, leftY, right, rightY, colorPlatformEdge)
}

func drawBall(c *draw.Canvas, b sim.BallView, col draw.Color, shield bool) {
	n := len(b.Trail)
	for i, pt := range b.Trail {
		frac := float64(i) / float64(n)
		c.Circle(pt.X, pt.Y, b.Radius*frac*0.8, col.Scale(frac*0.4), true)
	}
	c.Circle(b.X, b.Y, b.Radius, col, true)

	// Spin marker so rotation is visible on a flat colored disc
	mx := b.X + math.Cos(b.Spin)*b.Radius*0.6
	my := b.Y + math.Sin(b.Spin)*b.Radius*0.6
	c.Set(mx, my, col.Scale(0.5))

	if shield {
		c.Circle(b.X, b.Y, b.Radius+6, colorShield, false)
	}
}

func drawHoles(c *draw.Canvas, s sim.Snapshot, frozen bool) {
	ring := colorHoleRing
	if frozen {
		ring = colorHoleFrozen
	}
	for _, h := range s.Holes {
		c.Circle(h.X, h.Y, h.Radius*1.5, ring.Scale(0.35), false)
		c.Circle(h.X, h.Y, h.Radius, colorHoleCore, true)
		c.Circle(h.X, h.Y, h.Radius, ring, false)
		for arm := 0.0; arm < 3; arm++ {
			a := h.Rotation + arm*2*math.Pi/3
			c.Line(h.X, h.Y,
				h.X+math.Cos(a)*h.Radius*0.9, h.Y+math.Sin(a)*h.Radius*0.9,
				ring.Scale(0.6))
		}
	}
}

func drawOrb(c *draw.Canvas, o sim.OrbView) {
	col := draw.Hex(o.Color)
	c.Circle(o.X, o.Y, o.Radius, col, true)
	c.Circle(o.X, o.Y, o.Radius*1.4, col.Scale(0.4), false)
}

func drawToken(c *draw.Canvas, t sim.TokenView) {
	col := draw.RGB(255, 255, 255)
	if p, err := effect.ParsePowerUp(t.Type); err == nil {
		col = draw.Hex(p.Info().Color)
	}
	c.Circle(t.X, t.Y, t.Radius, col.Scale(0.5), true)
	c.Circle(t.X, t.Y, t.Radius, col, false)
	c.Line(t.X, t.Y,
		t.X+math.Cos(t.Rotation)*t.Radius, t.Y+math.Sin(t.Rotation)*t.Radius,
		col)
}
