// Package engine provides efficient terrain collision checking.
// This file implements terrain collision detection by checking the
// precomputed tile mask directly instead of materializing wall entities.
package engine

import (
	"math"

	"github.com/opd-ai/shardkeep/pkg/world"
)

// TerrainCollisionChecker provides efficient terrain collision detection
// against a world.Map's tile mask.
type TerrainCollisionChecker struct {
	terrain    *world.Map
	tileWidth  int
	tileHeight int
}

// NewTerrainCollisionChecker creates a new terrain collision checker.
func NewTerrainCollisionChecker(tileWidth, tileHeight int) *TerrainCollisionChecker {
	return &TerrainCollisionChecker{
		tileWidth:  tileWidth,
		tileHeight: tileHeight,
	}
}

// SetTerrain sets the terrain data for collision checking.
func (t *TerrainCollisionChecker) SetTerrain(m *world.Map) {
	t.terrain = m
}

// CheckCollision checks if a world position collides with a terrain wall.
func (t *TerrainCollisionChecker) CheckCollision(worldX, worldY, width, height float64) bool {
	if t.terrain == nil {
		return false
	}

	minX := worldX - width/2
	minY := worldY - height/2
	maxX := worldX + width/2
	maxY := worldY + height/2

	return t.CheckCollisionBounds(minX, minY, maxX, maxY)
}

// CheckCollisionBounds checks if a bounding box collides with terrain walls.
// minX, minY are the top-left corner of the bounding box; maxX, maxY are the
// bottom-right corner.
func (t *TerrainCollisionChecker) CheckCollisionBounds(minX, minY, maxX, maxY float64) bool {
	if t.terrain == nil {
		return false
	}

	minTileX := int(math.Floor(minX / float64(t.tileWidth)))
	minTileY := int(math.Floor(minY / float64(t.tileHeight)))
	maxTileX := int(math.Floor(maxX / float64(t.tileWidth)))
	maxTileY := int(math.Floor(maxY / float64(t.tileHeight)))

	for y := minTileY; y <= maxTileY; y++ {
		for x := minTileX; x <= maxTileX; x++ {
			if !t.terrain.IsWalkable(x, y) {
				return true
			}
		}
	}

	return false
}

// CheckEntityCollision checks if an entity collides with terrain walls.
func (t *TerrainCollisionChecker) CheckEntityCollision(entity *Entity) bool {
	if !entity.HasComponent("position") || !entity.HasComponent("collider") {
		return false
	}

	posComp, _ := entity.GetComponent("position")
	colliderComp, _ := entity.GetComponent("collider")

	pos := posComp.(*PositionComponent)
	collider := colliderComp.(*ColliderComponent)

	return t.CheckCollision(pos.X, pos.Y, collider.Width, collider.Height)
}

// ResolveSlide attempts to move an entity from (fromX, fromY) by (dx, dy),
// sliding along whichever axis is unobstructed when the full diagonal step
// would intersect a wall. It returns the resolved position.
func (t *TerrainCollisionChecker) ResolveSlide(fromX, fromY, dx, dy, width, height float64) (float64, float64) {
	targetX, targetY := fromX+dx, fromY+dy

	if !t.CheckCollision(targetX, targetY, width, height) {
		return targetX, targetY
	}

	if !t.CheckCollision(targetX, fromY, width, height) {
		return targetX, fromY
	}

	if !t.CheckCollision(fromX, targetY, width, height) {
		return fromX, targetY
	}

	return fromX, fromY
}
