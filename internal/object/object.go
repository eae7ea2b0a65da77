// Package object implements the playfield entities and their per-frame updates.
package object

import (
	"math/rand"
	"time"

	"github.com/tomz197/balanceball/internal/effect"
	"github.com/tomz197/balanceball/internal/input"
	"github.com/tomz197/balanceball/internal/sim/config"
)

// Intent is an alias for the input package's Intent type.
type Intent = input.Intent

// UpdateContext provides all the information an entity needs during update.
type UpdateContext struct {
	Dt      float64   // Delta-time multiplier, 1.0 at the target frame rate
	Now     time.Time // Wall clock, used only for effect timing
	Config  *config.Config
	Effects *effect.Table
	Rand    *rand.Rand

	HoleSpeed float64 // Score based black hole speed multiplier
}

// Object is a falling entity that is updated once per frame.
type Object interface {
	// Update advances the entity. Returns true if it left the playfield.
	Update(ctx UpdateContext) (remove bool)
}

// UpdateAll updates every entity and compacts the slice, keeping the ones that stay.
func UpdateAll[T Object](objs []T, ctx UpdateContext) []T {
	kept := objs[:0] // reuse backing array
	for _, obj := range objs {
		if !obj.Update(ctx) {
			kept = append(kept, obj)
		}
	}
	clear(objs[len(kept):])
	return kept
}

// Retain keeps the entities for which keep returns true.
func Retain[T any](objs []T, keep func(T) bool) []T {
	kept := objs[:0]
	for _, obj := range objs {
		if keep(obj) {
			kept = append(kept, obj)
		}
	}
	clear(objs[len(kept):])
	return kept
}

// speedVariation returns a per-instance speed factor in [0.9, 1.1).
func speedVariation(r *rand.Rand) float64 {
	return 0.9 + r.Float64()*0.2
}

// spawnX returns a random x keeping a body of the given radius inside the canvas.
func spawnX(r *rand.Rand, canvasWidth, radius float64) float64 {
	return radius + r.Float64()*(canvasWidth-radius*2)
}
