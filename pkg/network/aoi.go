// Package network provides area-of-interest (AOI) filtering so a client's
// per-tick update batch scales with how much world is actually near it
// instead of with total entity count. This wraps DeltaBroadcaster: the
// delta logic still decides WHAT changed since a client's last tick;
// AOIBroadcaster decides WHICH of those changes (plus any newly-visible
// entities) that client actually needs.
package network

import (
	"sort"
	"time"
)

// DefaultViewDistance is the fallback radius, in world units, used for a
// kind with no dedicated distance below (e.g. an untagged entity).
const DefaultViewDistance = 1200.0

// Per-kind view distances (§4.9): monsters (and projectiles) sync furthest
// out so approaching threats render before they're adjacent; players a bit
// closer in; effects closest in, since they're short-lived.
const (
	PlayerViewDistance  = 800.0
	MonsterSyncDistance = 1000.0
	EffectSyncDistance  = 600.0
)

// viewDistanceFor returns the AOI radius for an entity of the given kind.
func viewDistanceFor(kind EntityKind, fallback float64) float64 {
	switch kind {
	case KindPlayer:
		return PlayerViewDistance
	case KindMonster, KindProjectile:
		return MonsterSyncDistance
	case KindEffect:
		return EffectSyncDistance
	default:
		return fallback
	}
}

// DefaultMaxBatchEntities bounds how many entity updates go out to a single
// client in one tick, closest first, so a player standing in a crowd still
// gets a bounded packet instead of one that grows with local density.
const DefaultMaxBatchEntities = 64

// AOIBroadcaster narrows DeltaBroadcaster output to the entities within
// view of each player and enforces a per-tick batch cap.
type AOIBroadcaster struct {
	delta        *DeltaBroadcaster
	serializer   *ComponentSerializer
	viewDistance float64
	maxBatch     int

	lastVisible map[uint64]map[uint64]struct{} // playerID -> entity IDs visible last tick
}

// NewAOIBroadcaster wraps delta with view-distance culling and batching.
func NewAOIBroadcaster(delta *DeltaBroadcaster, viewDistance float64, maxBatch int) *AOIBroadcaster {
	if viewDistance <= 0 {
		viewDistance = DefaultViewDistance
	}
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatchEntities
	}
	return &AOIBroadcaster{
		delta:        delta,
		serializer:   NewComponentSerializer(),
		viewDistance: viewDistance,
		maxBatch:     maxBatch,
		lastVisible:  make(map[uint64]map[uint64]struct{}),
	}
}

// Prepare returns the StateUpdates playerID should receive this tick: the
// delta-compressed changes for entities that were already in view, a full
// encode for entities that just entered view (even if their components
// didn't change, since this client has never seen them), and a removal
// marker for entities that left view. The result is capped to the closest
// maxBatch entities; anything past the cap is dropped for this tick and
// picked up on a later one once it's close enough, or once it changes
// again and its removal/entry is recomputed.
func (a *AOIBroadcaster) Prepare(playerID, viewerEntityID uint64, current WorldSnapshot) []*StateUpdate {
	viewerX, viewerY, ok := entityPosition(current, viewerEntityID)
	if !ok {
		// No known position for the viewer (e.g. between spawn and first
		// snapshot): fall back to the unfiltered delta so the client isn't
		// starved of updates.
		return a.delta.Prepare(playerID, current)
	}

	type distanced struct {
		entityID uint64
		distSq   float64
	}
	var inView []distanced

	for entityID, entity := range current.Entities {
		dx := entity.Position.X - viewerX
		dy := entity.Position.Y - viewerY
		distSq := dx*dx + dy*dy
		limit := viewDistanceFor(entity.Kind, a.viewDistance)
		if distSq > limit*limit {
			continue
		}
		inView = append(inView, distanced{entityID: entityID, distSq: distSq})
	}

	sort.Slice(inView, func(i, j int) bool { return inView[i].distSq < inView[j].distSq })

	truncated := false
	if len(inView) > a.maxBatch {
		inView = inView[:a.maxBatch]
		truncated = true
	}
	if truncated {
		RecordAOIBatchTruncated()
	}

	kept := make(map[uint64]struct{}, len(inView))
	for _, d := range inView {
		kept[d.entityID] = struct{}{}
	}

	previouslyVisible := a.lastVisible[playerID]

	deltaUpdates := a.delta.Prepare(playerID, current)
	deltaByEntity := make(map[uint64]*StateUpdate, len(deltaUpdates))
	for _, u := range deltaUpdates {
		deltaByEntity[u.EntityID] = u
	}

	timestampMillis := deltaTimestampMillis(current)

	updates := make([]*StateUpdate, 0, len(kept))
	for _, d := range inView {
		entityID := d.entityID
		_, seenBefore := previouslyVisible[entityID]

		if !seenBefore {
			// Entering view: always send full component data regardless of
			// whether the delta considered it unchanged.
			entity := current.Entities[entityID]
			updates = append(updates, &StateUpdate{
				Timestamp:      timestampMillis,
				EntityID:       entityID,
				Priority:       128,
				SequenceNumber: current.Sequence,
				Components:     criticalComponents(a.serializer, entity),
			})
			continue
		}

		if u, changed := deltaByEntity[entityID]; changed {
			updates = append(updates, u)
		}
	}

	for entityID := range previouslyVisible {
		if _, stillVisible := kept[entityID]; stillVisible {
			continue
		}
		updates = append(updates, &StateUpdate{
			Timestamp:      timestampMillis,
			EntityID:       entityID,
			Priority:       255,
			SequenceNumber: current.Sequence,
			Components:     []ComponentData{{Type: reservedEntityRemovedType}},
		})
	}

	a.lastVisible[playerID] = kept

	return updates
}

// Forget drops AOI tracking state for playerID, called on disconnect.
func (a *AOIBroadcaster) Forget(playerID uint64) {
	delete(a.lastVisible, playerID)
	a.delta.Forget(playerID)
}

func entityPosition(snapshot WorldSnapshot, entityID uint64) (x, y float64, ok bool) {
	entity, exists := snapshot.Entities[entityID]
	if !exists {
		return 0, 0, false
	}
	return entity.Position.X, entity.Position.Y, true
}

func deltaTimestampMillis(snapshot WorldSnapshot) uint64 {
	return uint64(snapshot.Timestamp.UnixNano() / int64(time.Millisecond))
}
