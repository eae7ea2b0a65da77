package sim

import (
	"slices"
	"time"

	"github.com/tomz197/balanceball/internal/effect"
	"github.com/tomz197/balanceball/internal/object"
)

// PlatformView is the render data of the platform.
type PlatformView struct {
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Width  float64 `json:"width" msgpack:"width"`
	Height float64 `json:"height" msgpack:"height"`
	Tilt   float64 `json:"tilt" msgpack:"tilt"` // Effective tilt, earthquake included
	Angle  float64 `json:"angle" msgpack:"angle"`
}

// BallView is the render data of a ball.
type BallView struct {
	X       float64        `json:"x" msgpack:"x"`
	Y       float64        `json:"y" msgpack:"y"`
	VX      float64        `json:"vx" msgpack:"vx"`
	VY      float64        `json:"vy" msgpack:"vy"`
	Radius  float64        `json:"radius" msgpack:"radius"`
	Spin    float64        `json:"spin" msgpack:"spin"`
	Visible bool           `json:"visible" msgpack:"visible"`
	Trail   []object.Point `json:"trail" msgpack:"trail"`
}

// HoleView is the render data of a black hole.
type HoleView struct {
	X        float64 `json:"x" msgpack:"x"`
	Y        float64 `json:"y" msgpack:"y"`
	Radius   float64 `json:"radius" msgpack:"radius"`
	Rotation float64 `json:"rotation" msgpack:"rotation"`
}

// OrbView is the render data of a score orb.
type OrbView struct {
	X        float64 `json:"x" msgpack:"x"`
	Y        float64 `json:"y" msgpack:"y"`
	Radius   float64 `json:"radius" msgpack:"radius"`
	Points   int     `json:"points" msgpack:"points"`
	Color    string  `json:"color" msgpack:"color"`
	Rotation float64 `json:"rotation" msgpack:"rotation"`
}

// TokenView is the render data of a falling power-up.
type TokenView struct {
	Type     string  `json:"type" msgpack:"type"`
	X        float64 `json:"x" msgpack:"x"`
	Y        float64 `json:"y" msgpack:"y"`
	Radius   float64 `json:"radius" msgpack:"radius"`
	Rotation float64 `json:"rotation" msgpack:"rotation"`
}

// EffectView is an active timed effect.
type EffectView struct {
	Kind      string  `json:"kind" msgpack:"kind"`
	Remaining float64 `json:"remaining" msgpack:"remaining"` // Seconds
}

// ParticleView is a capture particle.
type ParticleView struct {
	X    float64 `json:"x" msgpack:"x"`
	Y    float64 `json:"y" msgpack:"y"`
	Life float64 `json:"life" msgpack:"life"`
	Size float64 `json:"size" msgpack:"size"`
}

// CaptureView is the suck-in animation state.
type CaptureView struct {
	Progress  float64        `json:"progress" msgpack:"progress"`
	HoleX     float64        `json:"holeX" msgpack:"holeX"`
	HoleY     float64        `json:"holeY" msgpack:"holeY"`
	Particles []ParticleView `json:"particles" msgpack:"particles"`
}

// Snapshot is a read-only copy of the game for renderers and clients.
type Snapshot struct {
	Frame      uint64       `json:"frame" msgpack:"frame"`
	Status     string       `json:"status" msgpack:"status"`
	Paused     bool         `json:"paused" msgpack:"paused"`
	Score      int          `json:"score" msgpack:"score"`
	FinalScore int          `json:"finalScore" msgpack:"finalScore"`
	BestScore  int          `json:"bestScore" msgpack:"bestScore"`
	Reason     string       `json:"reason,omitempty" msgpack:"reason,omitempty"`
	Size       string       `json:"size" msgpack:"size"`
	Width      float64      `json:"width" msgpack:"width"`
	Height     float64      `json:"height" msgpack:"height"`
	Platform   PlatformView `json:"platform" msgpack:"platform"`
	Ball       BallView     `json:"ball" msgpack:"ball"`
	Extra      *BallView    `json:"extraBall,omitempty" msgpack:"extraBall,omitempty"`
	Holes      []HoleView   `json:"blackHoles" msgpack:"blackHoles"`
	Orbs       []OrbView    `json:"scoreOrbs" msgpack:"scoreOrbs"`
	Tokens     []TokenView  `json:"powerUps" msgpack:"powerUps"`
	Effects    []EffectView `json:"effects" msgpack:"effects"`
	Capture    *CaptureView `json:"capture,omitempty" msgpack:"capture,omitempty"`
}

// Snapshot copies the current state. Remaining effect times are taken at now.
func (g *Game) Snapshot(now time.Time) Snapshot {
	p := g.Platform
	s := Snapshot{
		Frame:      g.Frame,
		Status:     g.Status().String(),
		Paused:     g.Paused,
		Score:      g.Score,
		FinalScore: g.FinalScore,
		BestScore:  g.BestScore,
		Reason:     g.Reason.Message(),
		Size:       g.Size.String(),
		Width:      g.cfg.Canvas.Width,
		Height:     g.cfg.Canvas.Height,
		Platform: PlatformView{
			X:      p.X,
			Y:      p.Y,
			Width:  p.Width,
			Height: p.Height,
			Tilt:   p.EffectiveTilt(),
			Angle:  p.Angle(),
		},
		Ball:    ballView(g.Ball, g.BallVisible(now)),
		Holes:   make([]HoleView, 0, len(g.Holes)),
		Orbs:    make([]OrbView, 0, len(g.Orbs)),
		Tokens:  make([]TokenView, 0, len(g.Tokens)),
		Effects: make([]EffectView, 0, effect.KindCount),
	}

	if g.Extra != nil {
		v := ballView(g.Extra, true)
		s.Extra = &v
	}
	for _, h := range g.Holes {
		s.Holes = append(s.Holes, HoleView{X: h.X, Y: h.Y, Radius: h.Radius, Rotation: h.Rotation})
	}
	for _, o := range g.Orbs {
		s.Orbs = append(s.Orbs, OrbView{X: o.X, Y: o.Y, Radius: o.Radius, Points: o.Points, Color: o.Color, Rotation: o.Rotation})
	}
	for _, t := range g.Tokens {
		s.Tokens = append(s.Tokens, TokenView{Type: t.Type.String(), X: t.X, Y: t.Y, Radius: t.Radius, Rotation: t.Rotation})
	}
	for k := effect.Kind(0); k < effect.KindCount; k++ {
		if !g.Effects.Active(k) {
			continue
		}
		s.Effects = append(s.Effects, EffectView{Kind: k.String(), Remaining: g.Effects.Remaining(k, now).Seconds()})
	}

	if c := g.Capture; c != nil {
		cv := &CaptureView{
			Progress:  c.Progress,
			HoleX:     c.Hole.X,
			HoleY:     c.Hole.Y,
			Particles: make([]ParticleView, 0, len(c.Particles)),
		}
		for _, pt := range c.Particles {
			cv.Particles = append(cv.Particles, ParticleView{X: pt.X, Y: pt.Y, Life: pt.Life, Size: pt.Size})
		}
		s.Capture = cv
	}
	return s
}

func ballView(b *object.Ball, visible bool) BallView {
	return BallView{
		X:       b.X,
		Y:       b.Y,
		VX:      b.VX,
		VY:      b.VY,
		Radius:  b.Radius,
		Spin:    b.Spin,
		Visible: visible,
		Trail:   slices.Clone(b.Trail.Points),
	}
}
