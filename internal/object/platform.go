package object

import (
	"math"

	"github.com/tomz197/balanceball/internal/effect"
	"github.com/tomz197/balanceball/internal/physics"
	"github.com/tomz197/balanceball/internal/sim/config"
)

// Platform is the tilting bar the ball rolls on. It is modeled as a straight
// line segment from X to X+Width whose ends are raised/lowered by the tilt.
type Platform struct {
	X, Y          float64
	Width, Height float64
	Tilt          float64 // Manual tilt, bounded by ±MaxTilt
	Quake         float64 // Earthquake jitter, replaced every frame
	MaxTilt       float64
	TiltSpeed     float64
	MoveSpeed     float64
	MinX, MaxX    float64
}

// NewPlatform creates a platform at its initial position with base width.
func NewPlatform(cfg *config.Config) *Platform {
	p := &Platform{
		X:         cfg.Platform.InitialX,
		Y:         cfg.Platform.Y,
		Width:     cfg.Platform.BaseWidth,
		Height:    cfg.Platform.Height,
		MaxTilt:   cfg.Platform.MaxTilt,
		TiltSpeed: cfg.Platform.TiltSpeed,
		MoveSpeed: cfg.Platform.MoveSpeed,
		MinX:      cfg.Platform.MinX,
	}
	p.MaxX = cfg.Canvas.Width - p.Width - p.MinX
	return p
}

// Update applies tilt and move intents. While an earthquake is active the tilt
// keys are ignored and a fresh jitter is drawn each frame.
func (p *Platform) Update(ctx UpdateContext, in Intent) {
	dt := ctx.Dt
	quake := ctx.Effects.Active(effect.Earthquake)

	tiltLeft := in.TiltLeft && !quake
	tiltRight := in.TiltRight && !quake
	if tiltLeft {
		p.Tilt = math.Max(p.Tilt-p.TiltSpeed*dt, -p.MaxTilt)
	}
	if tiltRight {
		p.Tilt = math.Min(p.Tilt+p.TiltSpeed*dt, p.MaxTilt)
	}

	if in.MoveLeft {
		p.X = math.Max(p.X-p.MoveSpeed*dt, p.MinX)
	}
	if in.MoveRight {
		p.X = math.Min(p.X+p.MoveSpeed*dt, p.MaxX)
	}

	if !tiltLeft && !tiltRight {
		p.Tilt *= physics.Decay(ctx.Config.Platform.TiltDecay, dt)
	}

	if !quake {
		p.Quake = 0
		return
	}

	c := ctx.Config.Platform
	ms := float64(ctx.Now.UnixMilli())
	intensity := c.QuakeBase + math.Sin(ms*c.QuakeRate)*c.QuakeSwing
	p.Quake = (ctx.Rand.Float64() - 0.5) * intensity

	shift := (ctx.Rand.Float64() - 0.5) * c.QuakeShift * dt
	p.X = physics.Clamp(p.X+shift, p.MinX, p.MaxX)
}

// EffectiveTilt is the manual tilt plus the earthquake jitter.
func (p *Platform) EffectiveTilt() float64 {
	return p.Tilt + p.Quake
}

// Angle returns the platform surface angle in radians.
func (p *Platform) Angle() float64 {
	return math.Atan2(p.EffectiveTilt()*2, p.Width)
}

// CenterX returns the horizontal center of the platform.
func (p *Platform) CenterX() float64 {
	return p.X + p.Width/2
}

// SurfaceY returns the height of the platform surface at x. Positive tilt raises the right end.
func (p *Platform) SurfaceY(x float64) float64 {
	rel := (x - p.CenterX()) / (p.Width / 2)
	return p.Y - p.EffectiveTilt()*rel
}

// Spans reports whether x is over the platform.
func (p *Platform) Spans(x float64) bool {
	return x >= p.X && x <= p.X+p.Width
}

// ApplyWidth resizes the platform around its center and re-clamps it to the bounds.
func (p *Platform) ApplyWidth(width, canvasWidth float64) {
	center := p.CenterX()
	p.Width = width
	p.X = center - width/2
	p.MaxX = canvasWidth - width - p.MinX
	p.X = physics.Clamp(p.X, p.MinX, p.MaxX)
}

// WidthMultiplier returns the product of all active width effects.
func WidthMultiplier(cfg *config.Config, effects *effect.Table) float64 {
	m := 1.0
	if effects.Active(effect.WidePlatform) {
		m *= cfg.Platform.WideMultiplier
	}
	if effects.Active(effect.NarrowPlatform) {
		m *= cfg.Platform.NarrowMultiplier
	}
	return m
}
