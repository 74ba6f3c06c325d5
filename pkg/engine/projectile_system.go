package engine

import (
	"math"
)

// ProjectileSystem manages projectile physics, collision detection, and lifecycle.
type ProjectileSystem struct {
	world *World
	// Quadtree for efficient spatial queries (optional, can be nil for simple collision)
	quadtree *Quadtree
	// Terrain collision checker for wall collision (optional)
	terrainChecker *TerrainCollisionChecker
	// onHit is invoked whenever a projectile damages an entity, so the combat
	// layer can route the hit through lag compensation before it lands.
	onHit func(attackerID, targetID uint64, damage float64, hitX, hitY float64) bool
}

// NewProjectileSystem creates a new projectile system.
func NewProjectileSystem(w *World) *ProjectileSystem {
	return &ProjectileSystem{
		world:          w,
		quadtree:       nil,
		terrainChecker: nil,
	}
}

// SetQuadtree assigns a quadtree for efficient spatial collision detection.
func (s *ProjectileSystem) SetQuadtree(qt *Quadtree) {
	s.quadtree = qt
}

// SetTerrainChecker assigns a terrain collision checker for wall collision detection.
func (s *ProjectileSystem) SetTerrainChecker(checker *TerrainCollisionChecker) {
	s.terrainChecker = checker
}

// SetHitCallback registers a function invoked on every candidate projectile
// hit. It should perform lag-compensated hit validation and return whether
// the hit is accepted; rejected hits do not apply damage but still trigger
// the explosion and consume a pierce charge, exactly as accepted hits do.
func (s *ProjectileSystem) SetHitCallback(fn func(attackerID, targetID uint64, damage, hitX, hitY float64) bool) {
	s.onHit = fn
}

// Update processes all projectiles: movement, aging, collision detection.
func (s *ProjectileSystem) Update(entities []*Entity, deltaTime float64) {
	if s.world == nil {
		return
	}

	projectiles := s.world.GetEntitiesWith("projectile", "position", "velocity")

	for _, entity := range projectiles {
		s.updateProjectile(entity, deltaTime)
	}
}

// updateProjectile handles a single projectile's physics and collision.
func (s *ProjectileSystem) updateProjectile(entity *Entity, deltaTime float64) {
	projComp, ok := entity.GetComponent("projectile")
	if !ok {
		return
	}
	projComponent, ok := projComp.(*ProjectileComponent)
	if !ok {
		return
	}

	posComp, ok := entity.GetComponent("position")
	if !ok {
		return
	}
	posComponent, ok := posComp.(*PositionComponent)
	if !ok {
		return
	}

	velComp, ok := entity.GetComponent("velocity")
	if !ok {
		return
	}
	velComponent, ok := velComp.(*VelocityComponent)
	if !ok {
		return
	}

	projComponent.Age += deltaTime
	if projComponent.IsExpired() {
		s.despawnProjectile(entity)
		return
	}

	oldX, oldY := posComponent.X, posComponent.Y

	posComponent.X += velComponent.VX * deltaTime
	posComponent.Y += velComponent.VY * deltaTime

	if s.checkWallCollision(entity, oldX, oldY) {
		if projComponent.CanBounce() {
			s.handleBounce(velComponent, posComponent, oldX, oldY)
			if projComponent.DecrementBounce() {
				if projComponent.Explosive {
					s.handleExplosion(entity, posComponent)
				}
				s.despawnProjectile(entity)
			}
		} else {
			if projComponent.Explosive {
				s.handleExplosion(entity, posComponent)
			}
			s.despawnProjectile(entity)
		}
		return
	}

	hitEntity := s.checkEntityCollision(entity, posComponent, projComponent)
	if hitEntity != nil {
		s.handleEntityHit(entity, hitEntity, projComponent, posComponent)
	}
}

// checkWallCollision checks if projectile hit a wall.
func (s *ProjectileSystem) checkWallCollision(entity *Entity, oldX, oldY float64) bool {
	if s.terrainChecker == nil {
		return false
	}

	posComp, ok := entity.GetComponent("position")
	if !ok {
		return false
	}
	pos, ok := posComp.(*PositionComponent)
	if !ok {
		return false
	}

	const projectileSize = 4.0
	return s.terrainChecker.CheckCollision(pos.X, pos.Y, projectileSize, projectileSize)
}

// handleBounce reflects projectile velocity off a wall.
func (s *ProjectileSystem) handleBounce(velComp *VelocityComponent, posComp *PositionComponent, oldX, oldY float64) {
	velComp.VX = -velComp.VX
	velComp.VY = -velComp.VY

	posComp.X = oldX
	posComp.Y = oldY
}

// checkEntityCollision checks if projectile hit any entity.
func (s *ProjectileSystem) checkEntityCollision(projEntity *Entity, posComp *PositionComponent, projComp *ProjectileComponent) *Entity {
	entities := s.world.GetEntitiesWith("position", "health")

	for _, entity := range entities {
		if entity.ID == projComp.OwnerID {
			continue
		}
		if entity.ID == projEntity.ID {
			continue
		}

		entityPosComp, ok := entity.GetComponent("position")
		if !ok {
			continue
		}
		entityPos, ok := entityPosComp.(*PositionComponent)
		if !ok {
			continue
		}

		dx := posComp.X - entityPos.X
		dy := posComp.Y - entityPos.Y
		distSq := dx*dx + dy*dy

		const collisionRadius = 16.0
		if distSq <= collisionRadius*collisionRadius {
			return entity
		}
	}

	return nil
}

// handleEntityHit processes damage and pierce logic when a projectile hits an entity.
// If a hit callback is registered, the hit is run through it (lag
// compensation / anti-cheat validation) before damage is applied.
func (s *ProjectileSystem) handleEntityHit(projEntity, hitEntity *Entity, projComp *ProjectileComponent, posComp *PositionComponent) {
	accepted := true
	if s.onHit != nil {
		accepted = s.onHit(projComp.OwnerID, hitEntity.ID, projComp.Damage, posComp.X, posComp.Y)
	}

	if accepted {
		healthComp, ok := hitEntity.GetComponent("health")
		if ok {
			health, ok := healthComp.(*HealthComponent)
			if ok {
				health.TakeDamage(projComp.Damage)
				projComp.HasHit = true
			}
		}
	}

	if projComp.Explosive {
		s.handleExplosion(projEntity, posComp)
	}

	if projComp.DecrementPierce() {
		s.despawnProjectile(projEntity)
	}
}

// handleExplosion applies area damage around the explosion point.
func (s *ProjectileSystem) handleExplosion(projEntity *Entity, posComp *PositionComponent) {
	projComp, ok := projEntity.GetComponent("projectile")
	if !ok {
		return
	}
	proj, ok := projComp.(*ProjectileComponent)
	if !ok || !proj.Explosive {
		return
	}

	entities := s.world.GetEntitiesWith("position", "health")

	for _, entity := range entities {
		if entity.ID == proj.OwnerID {
			continue
		}

		entityPosComp, ok := entity.GetComponent("position")
		if !ok {
			continue
		}
		entityPos, ok := entityPosComp.(*PositionComponent)
		if !ok {
			continue
		}

		dx := entityPos.X - posComp.X
		dy := entityPos.Y - posComp.Y
		dist := math.Sqrt(dx*dx + dy*dy)

		if dist <= proj.ExplosionRadius {
			healthComp, ok := entity.GetComponent("health")
			if ok {
				health, ok := healthComp.(*HealthComponent)
				if ok {
					damageFactor := 1.0 - (dist / proj.ExplosionRadius)
					damage := proj.Damage * damageFactor
					accepted := true
					if s.onHit != nil {
						accepted = s.onHit(proj.OwnerID, entity.ID, damage, entityPos.X, entityPos.Y)
					}
					if accepted {
						health.TakeDamage(damage)
					}
				}
			}
		}
	}
}

// despawnProjectile removes a projectile from the world.
func (s *ProjectileSystem) despawnProjectile(entity *Entity) {
	if s.world != nil {
		s.world.RemoveEntity(entity.ID)
	}
}

// SpawnProjectile creates a new projectile entity in the world.
func (s *ProjectileSystem) SpawnProjectile(x, y, vx, vy float64, projComp *ProjectileComponent) *Entity {
	if s.world == nil {
		return nil
	}

	entity := s.world.CreateEntityOfKind(KindProjectile)

	entity.AddComponent(&PositionComponent{X: x, Y: y})
	entity.AddComponent(&VelocityComponent{VX: vx, VY: vy})
	entity.AddComponent(projComp)

	return entity
}

// GetProjectileCount returns the number of active projectiles.
func (s *ProjectileSystem) GetProjectileCount() int {
	if s.world == nil {
		return 0
	}
	return len(s.world.GetEntitiesWith("projectile"))
}
