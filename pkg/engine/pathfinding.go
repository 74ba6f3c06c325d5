// Package engine provides flow-field pathfinding so AI-controlled entities
// move around terrain obstacles instead of in a straight line toward their
// target. A flow field computes, in one BFS pass from a goal cell, a
// direction vector for every cell in the grid: any number of agents sharing
// that goal then get an O(1) lookup instead of running their own search.
package engine

import (
	"math"

	"github.com/opd-ai/shardkeep/pkg/world"
)

// NavigationGrid is a flow field over a terrain map: a precomputed,
// per-cell direction toward a single goal, derived by BFS from the goal
// cell outward over walkable tiles.
type NavigationGrid struct {
	terrain       *world.Map
	tileWidth     float64
	tileHeight    float64
	integration   []float32 // cost to reach the goal from each cell
	flowX         []float32 // unit direction X component per cell
	flowY         []float32 // unit direction Y component per cell
	queue         []int     // reusable BFS queue
	goalCol       int
	goalRow       int
	hasGoal       bool
}

// NewNavigationGrid creates an empty grid over terrain, with tileWidth and
// tileHeight giving the world-unit size of one tile.
func NewNavigationGrid(terrain *world.Map, tileWidth, tileHeight int) *NavigationGrid {
	size := terrain.Width * terrain.Height
	return &NavigationGrid{
		terrain:     terrain,
		tileWidth:   float64(tileWidth),
		tileHeight:  float64(tileHeight),
		integration: make([]float32, size),
		flowX:       make([]float32, size),
		flowY:       make([]float32, size),
		queue:       make([]int, 0, size),
	}
}

var neighborDX = []int{-1, 0, 1, -1, 1, -1, 0, 1}
var neighborDY = []int{-1, -1, -1, 0, 0, 1, 1, 1}
var neighborCost = []float32{1.41421356, 1.0, 1.41421356, 1.0, 1.0, 1.41421356, 1.0, 1.41421356}

// Recompute rebuilds the field toward the tile containing (goalX, goalY) in
// world units. Cost is O(width*height) and should only be called when the
// goal moves to a different tile.
func (g *NavigationGrid) Recompute(goalX, goalY float64) {
	col := int(goalX / g.tileWidth)
	row := int(goalY / g.tileHeight)
	col = clampInt(col, 0, g.terrain.Width-1)
	row = clampInt(row, 0, g.terrain.Height-1)

	g.goalCol, g.goalRow, g.hasGoal = col, row, true

	const maxCost = float32(math.MaxFloat32)
	for i := range g.integration {
		g.integration[i] = maxCost
	}

	if !g.terrain.IsWalkable(col, row) {
		return
	}

	goalIdx := row*g.terrain.Width + col
	g.integration[goalIdx] = 0

	g.queue = g.queue[:0]
	g.queue = append(g.queue, goalIdx)

	width := g.terrain.Width
	height := g.terrain.Height

	head := 0
	for head < len(g.queue) {
		current := g.queue[head]
		head++

		curRow := current / width
		curCol := current % width
		curCost := g.integration[current]

		for i := 0; i < 8; i++ {
			nc := curCol + neighborDX[i]
			nr := curRow + neighborDY[i]
			if nc < 0 || nc >= width || nr < 0 || nr >= height {
				continue
			}
			if !g.terrain.IsWalkable(nc, nr) {
				continue
			}

			nidx := nr*width + nc
			newCost := curCost + neighborCost[i]
			if newCost < g.integration[nidx] {
				g.integration[nidx] = newCost
				g.queue = append(g.queue, nidx)
			}
		}
	}

	for idx := range g.integration {
		if g.integration[idx] == maxCost {
			g.flowX[idx], g.flowY[idx] = 0, 0
			continue
		}

		curRow := idx / width
		curCol := idx % width
		bestDX, bestDY := float32(0), float32(0)
		bestCost := g.integration[idx]

		for i := 0; i < 8; i++ {
			nc := curCol + neighborDX[i]
			nr := curRow + neighborDY[i]
			if nc < 0 || nc >= width || nr < 0 || nr >= height {
				continue
			}
			nidx := nr*width + nc
			if g.integration[nidx] < bestCost {
				bestCost = g.integration[nidx]
				bestDX = float32(neighborDX[i])
				bestDY = float32(neighborDY[i])
			}
		}

		length := float32(math.Sqrt(float64(bestDX*bestDX + bestDY*bestDY)))
		if length > 0 {
			g.flowX[idx] = bestDX / length
			g.flowY[idx] = bestDY / length
		}
	}
}

// GoalTile reports the tile coordinates the field currently flows toward.
func (g *NavigationGrid) GoalTile() (col, row int, ok bool) {
	return g.goalCol, g.goalRow, g.hasGoal
}

// Direction returns the unit direction to move from world position (x, y)
// toward the field's goal, and false if the position is off-grid or the
// goal is unreachable from it (in which case callers should fall back to a
// direct vector toward the goal).
func (g *NavigationGrid) Direction(x, y float64) (dx, dy float64, ok bool) {
	if !g.hasGoal {
		return 0, 0, false
	}

	col := int(x / g.tileWidth)
	row := int(y / g.tileHeight)
	if col < 0 || col >= g.terrain.Width || row < 0 || row >= g.terrain.Height {
		return 0, 0, false
	}

	idx := row*g.terrain.Width + col
	if g.flowX[idx] == 0 && g.flowY[idx] == 0 {
		return 0, 0, false
	}

	return float64(g.flowX[idx]), float64(g.flowY[idx]), true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// navigationCache hands out a NavigationGrid per distinct goal tile, so
// agents chasing the same target (the common case: several monsters
// converging on one player) share a single field instead of each
// recomputing it. Bounded in size so an arena with many simultaneous
// distinct targets can't grow it without limit.
type navigationCache struct {
	terrain    *world.Map
	tileWidth  int
	tileHeight int
	fields     map[int]*NavigationGrid
	maxFields  int
}

func newNavigationCache(terrain *world.Map, tileWidth, tileHeight, maxFields int) *navigationCache {
	if maxFields < 1 {
		maxFields = 1
	}
	return &navigationCache{
		terrain:    terrain,
		tileWidth:  tileWidth,
		tileHeight: tileHeight,
		fields:     make(map[int]*NavigationGrid),
		maxFields:  maxFields,
	}
}

// For returns the grid flowing toward (goalX, goalY), reusing a cached grid
// if one already targets that tile.
func (c *navigationCache) For(goalX, goalY float64) *NavigationGrid {
	col := clampInt(int(goalX/float64(c.tileWidth)), 0, c.terrain.Width-1)
	row := clampInt(int(goalY/float64(c.tileHeight)), 0, c.terrain.Height-1)
	key := row*c.terrain.Width + col

	if field, ok := c.fields[key]; ok {
		return field
	}

	if len(c.fields) >= c.maxFields {
		for k := range c.fields {
			delete(c.fields, k)
			break
		}
	}

	field := NewNavigationGrid(c.terrain, c.tileWidth, c.tileHeight)
	field.Recompute(goalX, goalY)
	c.fields[key] = field
	return field
}
