package object

import (
	"math/rand"

	"github.com/tomz197/balanceball/internal/effect"
	"github.com/tomz197/balanceball/internal/physics"
	"github.com/tomz197/balanceball/internal/sim/config"
)

// Token is a falling power-up or power-down.
type Token struct {
	Type           effect.PowerUp
	X, Y           float64
	Radius         float64
	Rotation       float64
	SpeedVariation float64
}

// NewToken spawns a token of the given type above the top edge.
func NewToken(cfg *config.Config, r *rand.Rand, typ effect.PowerUp) *Token {
	radius := cfg.PowerUp.Radius
	return &Token{
		Type:           typ,
		X:              spawnX(r, cfg.Canvas.Width, radius),
		Y:              -radius,
		Radius:         radius,
		SpeedVariation: speedVariation(r),
	}
}

// Update moves the token down. Tokens ignore time freeze.
func (t *Token) Update(ctx UpdateContext) bool {
	t.Y += ctx.Config.Physics.ScrollSpeed * t.SpeedVariation * ctx.Dt
	t.Rotation += ctx.Config.PowerUp.RotationSpeed * ctx.Dt

	return t.Y > ctx.Config.Canvas.Height+t.Radius
}

// Touches reports whether the ball overlaps the token.
func (t *Token) Touches(b *Ball) bool {
	return physics.CirclesOverlap(b.X, b.Y, b.Radius, t.X, t.Y, t.Radius)
}
