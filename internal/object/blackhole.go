package object

import (
	"math"
	"math/rand"

	"github.com/tomz197/balanceball/internal/effect"
	"github.com/tomz197/balanceball/internal/physics"
	"github.com/tomz197/balanceball/internal/sim/config"
)

// BlackHole falls from the top edge and captures balls that get too close.
type BlackHole struct {
	X, Y           float64
	Radius         float64
	Rotation       float64
	SpeedVariation float64
}

// NewBlackHole spawns a hole just above the top edge at a random x.
// The radius is fixed and does not follow the ball size state.
func NewBlackHole(cfg *config.Config, r *rand.Rand) *BlackHole {
	radius := cfg.HoleRadius()
	return &BlackHole{
		X:              spawnX(r, cfg.Canvas.Width, radius),
		Y:              -radius,
		Radius:         radius,
		Rotation:       r.Float64() * math.Pi * 2,
		SpeedVariation: speedVariation(r),
	}
}

// Update moves the hole down unless time is frozen.
func (h *BlackHole) Update(ctx UpdateContext) bool {
	if !ctx.Effects.Active(effect.TimeFreeze) {
		h.Y += ctx.Config.Physics.ScrollSpeed * ctx.HoleSpeed * h.SpeedVariation * ctx.Dt
	}
	h.Rotation += ctx.Config.BlackHole.RotationSpeed * ctx.Dt

	return h.Y > ctx.Config.Canvas.Height+h.Radius
}

// PullStrength returns the gravity well strength at distance d from the hole center.
// Outside the well, or at its exact center, there is no pull.
func PullStrength(c config.BlackHole, d float64, magnet bool) float64 {
	if d <= 0 || d >= c.GravityRadius {
		return 0
	}
	falloff := 1 - d/c.GravityRadius
	strength := c.GravityStrength * falloff * falloff
	if magnet {
		strength *= c.MagnetPull
	}
	return strength
}

// Pull applies the gravity well of the hole to the ball.
func (h *BlackHole) Pull(ctx UpdateContext, b *Ball) {
	d := physics.Distance(b.X, b.Y, h.X, h.Y)
	strength := PullStrength(ctx.Config.BlackHole, d, ctx.Effects.Active(effect.Magnet))
	if strength == 0 {
		return
	}
	b.PullToward(h.X, h.Y, strength, ctx.Dt)
}

// Captures reports whether the ball center is within the capture distance.
func (h *BlackHole) Captures(c config.BlackHole, b *Ball) bool {
	return physics.PointInCircle(b.X, b.Y, h.X, h.Y, h.Radius*c.CaptureScale)
}
