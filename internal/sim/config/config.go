// Package config holds the game tunables.
// All values are per target frame (60 FPS) unless they are durations.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/tomz197/balanceball/internal/effect"
)

// Canvas is the logical playfield size.
type Canvas struct {
	Width  float64
	Height float64
}

// Physics holds ball and scroll coefficients.
type Physics struct {
	Gravity            float64
	AirFriction        float64 // Horizontal decay per frame
	BounceFactor       float64
	BounceThreshold    float64 // Below this incoming vy the ball stops instead of bouncing
	RollFriction       float64
	MagnetRollFriction float64
	IceRollFriction    float64
	MagnetGravity      float64 // Gravity scale while magnet is active
	MagnetBounce       float64 // Restitution scale while magnet is active
	ScrollSpeed        float64 // Base fall speed of holes, orbs and tokens
}

// Platform holds platform geometry and control speeds.
type Platform struct {
	InitialX  float64
	Y         float64
	BaseWidth float64
	Height    float64
	MaxTilt   float64
	TiltSpeed float64
	MoveSpeed float64
	MinX      float64
	TiltDecay float64 // Auto-level factor per frame when no tilt key is held

	WideMultiplier   float64
	NarrowMultiplier float64

	ShortSize float64 // Base width scale for PlatformShort
	WideSize  float64 // Base width scale for PlatformWide

	QuakeBase  float64 // Earthquake tilt jitter amplitude = QuakeBase + sin(t*QuakeRate)*QuakeSwing
	QuakeSwing float64
	QuakeRate  float64 // Radians per millisecond
	QuakeShift float64 // Max horizontal jitter per frame
}

// PlatformSize is the player's choice of base platform width.
type PlatformSize int

const (
	PlatformNormal PlatformSize = iota
	PlatformShort
	PlatformWide
)

func (s PlatformSize) String() string {
	switch s {
	case PlatformShort:
		return "short"
	case PlatformWide:
		return "wide"
	default:
		return "normal"
	}
}

// ParsePlatformSize parses "short", "normal" or "wide". Empty means normal.
func ParsePlatformSize(name string) (PlatformSize, error) {
	switch name {
	case "", "normal":
		return PlatformNormal, nil
	case "short":
		return PlatformShort, nil
	case "wide":
		return PlatformWide, nil
	default:
		return PlatformNormal, fmt.Errorf("unknown platform size %q", name)
	}
}

// Ball holds ball size and trail settings.
type Ball struct {
	InitialY    float64
	BaseRadius  float64
	TrailLength int
	SizeShrunk  float64
	SizeNormal  float64
	SizeBig     float64

	ExtraOffset float64 // Horizontal offset of a spawned extra ball from the primary
	ExtraMargin float64 // Distance kept from platform ends when spawning an extra ball
}

// Radius returns the ball radius for a size state.
func (b Ball) Radius(s effect.SizeState) float64 {
	switch s {
	case effect.SizeShrunk:
		return b.BaseRadius * b.SizeShrunk
	case effect.SizeBig:
		return b.BaseRadius * b.SizeBig
	default:
		return b.BaseRadius * b.SizeNormal
	}
}

// BlackHole holds black hole spawning, pull and speed scaling.
type BlackHole struct {
	SpawnInterval   float64 // Frames
	RadiusScale     float64 // Hole radius = ball base radius * RadiusScale
	CaptureScale    float64 // Capture distance = hole radius * CaptureScale
	GravityRadius   float64
	GravityStrength float64
	MagnetPull      float64 // Pull scale while magnet is active
	RotationSpeed   float64

	SpeedIncreaseInterval float64 // Points per speed step
	SpeedIncreaseAmount   float64
	MaxSpeedMultiplier    float64
}

// PowerUp holds falling token settings.
type PowerUp struct {
	SpawnInterval float64 // Frames
	Radius        float64
	Duration      time.Duration
	RotationSpeed float64
}

// OrbArchetype is one of the fixed score orb presets.
type OrbArchetype struct {
	Name            string
	Points          int
	SizeMultiplier  float64
	SpeedMultiplier float64
	Color           string
	GlowColor       string
}

// ScoreOrb holds score orb spawning and the archetype table.
type ScoreOrb struct {
	SpawnInterval float64 // Frames
	RotationSpeed float64
	Archetypes    []OrbArchetype
}

// Capture holds the black hole suck-in animation tuning.
type Capture struct {
	ProgressRate   float64 // Progress per frame
	LerpBase       float64 // Remaining distance fraction per frame
	ShrinkFactor   float64 // Radius = start * (1 - progress*ShrinkFactor)
	SpinRate       float64
	ParticleChance float64 // Spawn probability per frame
	ParticlePull   float64
	ParticleDecay  float64
	AbsorbScale    float64 // Particles closer than hole radius * AbsorbScale vanish
}

// Frame holds delta-time normalization settings.
type Frame struct {
	TargetFPS  float64
	MaxElapsed time.Duration
}

// TargetFrameTime returns the duration of one target frame.
func (f Frame) TargetFrameTime() time.Duration {
	return time.Duration(float64(time.Second) / f.TargetFPS)
}

// Config is the full read-only configuration surface of the simulation.
type Config struct {
	Canvas    Canvas
	Physics   Physics
	Platform  Platform
	Ball      Ball
	BlackHole BlackHole
	PowerUp   PowerUp
	ScoreOrb  ScoreOrb
	Capture   Capture
	Frame     Frame
	Settings  effect.Settings

	PlatformSize PlatformSize
}

// Default returns the stock tuning.
func Default() *Config {
	return &Config{
		Canvas: Canvas{Width: 800, Height: 600},
		Physics: Physics{
			Gravity:            0.4,
			AirFriction:        0.998,
			BounceFactor:       0.3,
			BounceThreshold:    1,
			RollFriction:       0.9995,
			MagnetRollFriction: 0.990,
			IceRollFriction:    0.99999,
			MagnetGravity:      0.7,
			MagnetBounce:       0.1,
			ScrollSpeed:        1.5,
		},
		Platform: Platform{
			InitialX:         225,
			Y:                450,
			BaseWidth:        350,
			Height:           12,
			MaxTilt:          80,
			TiltSpeed:        2.5,
			MoveSpeed:        4,
			MinX:             50,
			TiltDecay:        0.96,
			WideMultiplier:   1.3,
			NarrowMultiplier: 0.7,
			ShortSize:        0.9,
			WideSize:         1.1,
			QuakeBase:        50,
			QuakeSwing:       30,
			QuakeRate:        0.015,
			QuakeShift:       16,
		},
		Ball: Ball{
			InitialY:    400,
			BaseRadius:  18,
			TrailLength: 15,
			SizeShrunk:  0.5,
			SizeNormal:  1.0,
			SizeBig:     1.4,
			ExtraOffset: 50,
			ExtraMargin: 20,
		},
		BlackHole: BlackHole{
			SpawnInterval:         200,
			RadiusScale:           2,
			CaptureScale:          0.5,
			GravityRadius:         150,
			GravityStrength:       0.15,
			MagnetPull:            0.1,
			RotationSpeed:         0.03,
			SpeedIncreaseInterval: 20,
			SpeedIncreaseAmount:   0.05,
			MaxSpeedMultiplier:    1.5,
		},
		PowerUp: PowerUp{
			SpawnInterval: 450,
			Radius:        15,
			Duration:      12 * time.Second,
			RotationSpeed: 0.03,
		},
		ScoreOrb: ScoreOrb{
			SpawnInterval: 150,
			RotationSpeed: 0.02,
			Archetypes: []OrbArchetype{
				{Name: "large", Points: 1, SizeMultiplier: 2.0, SpeedMultiplier: 1.0, Color: "#ffd700", GlowColor: "#ffaa00"},
				{Name: "medium", Points: 3, SizeMultiplier: 1.0, SpeedMultiplier: 1.5, Color: "#50fa7b", GlowColor: "#00ff55"},
				{Name: "small", Points: 5, SizeMultiplier: 0.5, SpeedMultiplier: 2.0, Color: "#bd93f9", GlowColor: "#ff79c6"},
			},
		},
		Capture: Capture{
			ProgressRate:   0.03,
			LerpBase:       0.9,
			ShrinkFactor:   0.9,
			SpinRate:       0.3,
			ParticleChance: 0.5,
			ParticlePull:   0.5,
			ParticleDecay:  0.03,
			AbsorbScale:    0.3,
		},
		Frame: Frame{
			TargetFPS:  60,
			MaxElapsed: 100 * time.Millisecond,
		},
		Settings: effect.DefaultSettings(),
	}
}

// Validate reports every tunable that would break the simulation.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Canvas.Width > 0 && c.Canvas.Height > 0, "canvas size must be positive, got %vx%v", c.Canvas.Width, c.Canvas.Height)
	check(c.Physics.Gravity > 0, "gravity must be positive, got %v", c.Physics.Gravity)
	for name, v := range map[string]float64{
		"air friction":         c.Physics.AirFriction,
		"roll friction":        c.Physics.RollFriction,
		"magnet roll friction": c.Physics.MagnetRollFriction,
		"ice roll friction":    c.Physics.IceRollFriction,
		"tilt decay":           c.Platform.TiltDecay,
		"capture lerp base":    c.Capture.LerpBase,
	} {
		check(v > 0 && v <= 1, "%s must be in (0,1], got %v", name, v)
	}
	check(c.Platform.BaseWidth > 0, "platform width must be positive, got %v", c.Platform.BaseWidth)
	check(c.Platform.MaxTilt >= 0, "max tilt must not be negative, got %v", c.Platform.MaxTilt)
	check(c.Platform.MinX >= 0, "platform min x must not be negative, got %v", c.Platform.MinX)
	check(c.Platform.ShortSize > 0 && c.Platform.WideSize > 0, "platform size scales must be positive")
	check(c.Canvas.Width-c.PlatformWidth()*c.Platform.WideMultiplier-2*c.Platform.MinX >= 0,
		"widest %s platform does not fit on the canvas", c.PlatformSize)
	check(c.Ball.BaseRadius > 0, "ball radius must be positive, got %v", c.Ball.BaseRadius)
	check(c.Ball.TrailLength >= 0, "trail length must not be negative, got %d", c.Ball.TrailLength)
	check(c.Ball.SizeShrunk > 0 && c.Ball.SizeNormal > 0 && c.Ball.SizeBig > 0, "ball size multipliers must be positive")
	check(c.BlackHole.SpawnInterval > 0, "black hole spawn interval must be positive, got %v", c.BlackHole.SpawnInterval)
	check(c.BlackHole.SpeedIncreaseInterval > 0, "speed increase interval must be positive, got %v", c.BlackHole.SpeedIncreaseInterval)
	check(c.BlackHole.MaxSpeedMultiplier >= 1, "max speed multiplier must be at least 1, got %v", c.BlackHole.MaxSpeedMultiplier)
	check(c.PowerUp.SpawnInterval > 0, "power-up spawn interval must be positive, got %v", c.PowerUp.SpawnInterval)
	check(c.PowerUp.Duration > 0, "power-up duration must be positive, got %v", c.PowerUp.Duration)
	check(c.ScoreOrb.SpawnInterval > 0, "score orb spawn interval must be positive, got %v", c.ScoreOrb.SpawnInterval)
	check(len(c.ScoreOrb.Archetypes) > 0, "score orb archetype table is empty")
	check(c.Capture.ProgressRate > 0, "capture progress rate must be positive, got %v", c.Capture.ProgressRate)
	check(c.Frame.TargetFPS > 0, "target fps must be positive, got %v", c.Frame.TargetFPS)
	check(c.Frame.MaxElapsed > 0, "max frame elapsed must be positive, got %v", c.Frame.MaxElapsed)

	return errors.Join(errs...)
}

// PlatformWidth returns the base platform width for the chosen platform size,
// before width effects.
func (c *Config) PlatformWidth() float64 {
	switch c.PlatformSize {
	case PlatformShort:
		return c.Platform.BaseWidth * c.Platform.ShortSize
	case PlatformWide:
		return c.Platform.BaseWidth * c.Platform.WideSize
	default:
		return c.Platform.BaseWidth
	}
}

// HoleRadius returns the fixed black hole radius, independent of ball size state.
func (c *Config) HoleRadius() float64 {
	return c.Ball.BaseRadius * c.BlackHole.RadiusScale
}
