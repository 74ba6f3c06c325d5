// Package engine provides geometric hitbox testing for combat resolution.
// This file implements the shapes an attack's configuration table can
// describe (rectangle, cone, circle, projectile) and the containment test
// the combat system runs against every live candidate at the attack's
// action point.
package engine

import "math"

// HitboxShape selects how an attack's params are interpreted.
type HitboxShape int

const (
	// HitboxCircle is a radius centered on the attacker (or, for an AOE
	// pulse, on the action point) - facing-independent.
	HitboxCircle HitboxShape = iota
	// HitboxRectangle is an oriented box extending Length forward from the
	// origin along facing, Width wide.
	HitboxRectangle
	// HitboxCone is a Radius-range wedge centered on facing, spanning
	// +/- Angle/2.
	HitboxCone
	// HitboxProjectile attacks do not test containment here; the combat
	// system spawns a projectile entity at the action point instead and
	// lets ProjectileSystem resolve its own hits as it travels.
	HitboxProjectile
)

// HitboxParams carries the shape-specific dimensions an attack's
// configuration supplies. Unused fields for a given shape are ignored.
type HitboxParams struct {
	Width  float64 // rectangle width
	Length float64 // rectangle length (forward extent)
	Radius float64 // circle radius, or cone range
	Angle  float64 // cone full angle, radians
}

// Contains reports whether the world point (px, py) lies inside the hitbox
// rooted at (originX, originY) and oriented along facing (radians).
func (shape HitboxShape) Contains(params HitboxParams, originX, originY, facing, px, py float64) bool {
	dx := px - originX
	dy := py - originY

	switch shape {
	case HitboxCircle:
		return dx*dx+dy*dy <= params.Radius*params.Radius

	case HitboxRectangle:
		cos, sin := math.Cos(-facing), math.Sin(-facing)
		localX := dx*cos - dy*sin
		localY := dx*sin + dy*cos
		return localX >= 0 && localX <= params.Length &&
			localY >= -params.Width/2 && localY <= params.Width/2

	case HitboxCone:
		dist := math.Sqrt(dx*dx + dy*dy)
		if dist > params.Radius {
			return false
		}
		if dist == 0 {
			return true
		}
		angleToPoint := math.Atan2(dy, dx)
		diff := NormalizeFacing(angleToPoint - facing)
		return math.Abs(diff) <= params.Angle/2

	default:
		return false
	}
}
