package object

import (
	"math"
	"math/rand"

	"github.com/tomz197/balanceball/internal/physics"
)

// Particle is a short-lived speck thrown off a ball being sucked into a hole.
// It flies outward and is pulled back into the hole.
type Particle struct {
	X, Y   float64 // Position
	VX, VY float64 // Velocity
	Life   float64 // 1 at spawn, removed at 0
	Size   float64
	Hole   *BlackHole // Attractor
}

// NewParticle creates a particle at (x, y) moving in a random direction.
func NewParticle(x, y float64, hole *BlackHole, r *rand.Rand) *Particle {
	angle := r.Float64() * 2 * math.Pi
	speed := 2 + r.Float64()*3
	return &Particle{
		X:    x,
		Y:    y,
		VX:   math.Cos(angle) * speed,
		VY:   math.Sin(angle) * speed,
		Life: 1,
		Size: 2 + r.Float64()*4,
		Hole: hole,
	}
}

// Update pulls the particle toward its hole and ages it.
// Returns true once it has decayed or been absorbed.
func (p *Particle) Update(ctx UpdateContext) bool {
	c := ctx.Config.Capture
	dt := ctx.Dt

	nx, ny, dist := physics.Toward(p.X, p.Y, p.Hole.X, p.Hole.Y)
	p.VX += nx * c.ParticlePull * dt
	p.VY += ny * c.ParticlePull * dt

	p.X += p.VX * dt
	p.Y += p.VY * dt
	p.Life -= c.ParticleDecay * dt

	return p.Life <= 0 || dist < p.Hole.Radius*c.AbsorbScale
}
