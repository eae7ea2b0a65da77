package object

import (
	"math"
	"math/rand"

	"github.com/tomz197/balanceball/internal/physics"
	"github.com/tomz197/balanceball/internal/sim/config"
)

// ScoreOrb is a falling collectible worth a fixed number of points.
type ScoreOrb struct {
	X, Y            float64
	Radius          float64
	Points          int
	SpeedMultiplier float64
	Color           string
	GlowColor       string
	Rotation        float64
	SpeedVariation  float64
}

// NewScoreOrb spawns an orb of a uniformly chosen archetype above the top edge.
func NewScoreOrb(cfg *config.Config, r *rand.Rand) *ScoreOrb {
	a := cfg.ScoreOrb.Archetypes[r.Intn(len(cfg.ScoreOrb.Archetypes))]
	radius := cfg.Ball.BaseRadius * a.SizeMultiplier
	return &ScoreOrb{
		X:               spawnX(r, cfg.Canvas.Width, radius),
		Y:               -radius,
		Radius:          radius,
		Points:          a.Points,
		SpeedMultiplier: a.SpeedMultiplier,
		Color:           a.Color,
		GlowColor:       a.GlowColor,
		Rotation:        r.Float64() * math.Pi * 2,
		SpeedVariation:  speedVariation(r),
	}
}

// Update moves the orb down. Orbs ignore time freeze.
func (o *ScoreOrb) Update(ctx UpdateContext) bool {
	o.Y += ctx.Config.Physics.ScrollSpeed * o.SpeedMultiplier * o.SpeedVariation * ctx.Dt
	o.Rotation += ctx.Config.ScoreOrb.RotationSpeed * ctx.Dt

	return o.Y > ctx.Config.Canvas.Height+o.Radius
}

// Touches reports whether the ball overlaps the orb.
func (o *ScoreOrb) Touches(b *Ball) bool {
	return physics.CirclesOverlap(b.X, b.Y, b.Radius, o.X, o.Y, o.Radius)
}
