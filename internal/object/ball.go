package object

import (
	"math"

	"github.com/tomz197/balanceball/internal/effect"
	"github.com/tomz197/balanceball/internal/physics"
	"github.com/tomz197/balanceball/internal/sim/config"
)

// Point is a trail sample.
type Point struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Trail is a fixed-length queue of past ball positions, oldest first.
type Trail struct {
	Points []Point
	Max    int
}

// Push appends a position and evicts the oldest beyond Max.
func (t *Trail) Push(x, y float64) {
	t.Points = append(t.Points, Point{x, y})
	if over := len(t.Points) - t.Max; over > 0 {
		t.Points = append(t.Points[:0], t.Points[over:]...)
	}
}

// Reset empties the trail.
func (t *Trail) Reset() {
	t.Points = t.Points[:0]
}

// Ball is a rolling ball. The primary ball and the extra ball share this type.
type Ball struct {
	X, Y   float64
	VX, VY float64
	AX, AY float64
	Radius float64
	Spin   float64 // Only advanced during the capture animation
	Trail  Trail
}

// NewBall creates a ball at rest.
func NewBall(x, y, radius float64, trailLength int) *Ball {
	return &Ball{
		X:      x,
		Y:      y,
		Radius: radius,
		Trail:  Trail{Max: trailLength},
	}
}

// Update integrates the ball one step against the platform.
// Returns true if the ball left the canvas.
func (b *Ball) Update(ctx UpdateContext, p *Platform) (lost bool) {
	if b.Radius < 0 {
		panic("object: ball radius is negative")
	}
	c := ctx.Config.Physics
	dt := ctx.Dt
	magnet := ctx.Effects.Active(effect.Magnet)

	gravity := c.Gravity
	if magnet {
		gravity *= c.MagnetGravity
	}
	b.AX = -math.Sin(p.Angle()) * gravity
	b.AY = gravity

	surfaceY := p.SurfaceY(b.X)
	penetration := b.Y + b.Radius - surfaceY

	if p.Spans(b.X) && penetration >= 0 && b.VY >= 0 {
		b.Y = surfaceY - b.Radius
		b.VX += b.AX * dt
		b.VX *= physics.Decay(rollFriction(c, ctx.Effects), dt)

		if b.VY > c.BounceThreshold {
			bounce := c.BounceFactor
			if magnet {
				bounce *= c.MagnetBounce
			}
			b.VY = -b.VY * bounce
		} else {
			b.VY = 0
		}
	} else {
		b.VY += b.AY * dt
	}

	b.VX *= physics.Decay(c.AirFriction, dt)
	b.X += b.VX * dt
	b.Y += b.VY * dt

	b.Trail.Push(b.X, b.Y)

	return b.OffScreen(ctx.Config.Canvas)
}

// rollFriction picks the friction tier. Ice takes precedence over magnet.
func rollFriction(c config.Physics, effects *effect.Table) float64 {
	switch {
	case effects.Active(effect.IceMode):
		return c.IceRollFriction
	case effects.Active(effect.Magnet):
		return c.MagnetRollFriction
	default:
		return c.RollFriction
	}
}

// OffScreen reports whether the ball is further than its radius past the bottom or a side edge.
func (b *Ball) OffScreen(c config.Canvas) bool {
	return b.Y > c.Height+b.Radius || b.X < -b.Radius || b.X > c.Width+b.Radius
}

// Adopt takes over the full kinematic state and trail of other.
func (b *Ball) Adopt(other *Ball) {
	b.X, b.Y = other.X, other.Y
	b.VX, b.VY = other.VX, other.VY
	b.Radius = other.Radius
	b.Trail.Points = append(b.Trail.Points[:0], other.Trail.Points...)
}

// PullToward applies black hole gravity from a hole at (hx, hy).
func (b *Ball) PullToward(hx, hy, strength, dt float64) {
	nx, ny, _ := physics.Toward(b.X, b.Y, hx, hy)
	b.VX += nx * strength * dt
	b.VY += ny * strength * dt
}
