// Package network provides per-client delta compression for world state
// broadcasts. This file implements DeltaBroadcaster, which sends a newly
// connected (or rejoining) client a full entity snapshot and every client
// after that only the entities that changed since its last acknowledged
// tick, falling back to a full resync if its baseline has aged out of the
// snapshot history.
package network

import (
	"sync"
	"time"
)

// reservedEntityRemovedType marks a StateUpdate that tells a client to
// despawn an entity rather than apply component data to it.
const reservedEntityRemovedType = "__removed"

// DeltaBroadcaster tracks, per player, the last world-state sequence number
// it has been sent and produces the minimal set of StateUpdates needed to
// bring it current.
type DeltaBroadcaster struct {
	mu         sync.Mutex
	lastSeq    map[uint64]uint32
	manager    *SnapshotManager
	serializer *ComponentSerializer
}

// NewDeltaBroadcaster creates a broadcaster reading history from manager.
// manager must be the same SnapshotManager the simulation loop feeds via
// AddSnapshot, so delta baselines resolve against real history.
func NewDeltaBroadcaster(manager *SnapshotManager) *DeltaBroadcaster {
	return &DeltaBroadcaster{
		lastSeq:    make(map[uint64]uint32),
		manager:    manager,
		serializer: NewComponentSerializer(),
	}
}

// Prepare returns the StateUpdates playerID should receive for the given
// snapshot: the full entity set on first contact (or once its last-known
// sequence is no longer in history), otherwise just the added/changed
// entities and a removal marker for each entity that dropped out of the
// world since its last update.
func (b *DeltaBroadcaster) Prepare(playerID uint64, current WorldSnapshot) []*StateUpdate {
	b.mu.Lock()
	last, seen := b.lastSeq[playerID]
	b.mu.Unlock()

	timestampMillis := uint64(current.Timestamp.UnixNano() / int64(time.Millisecond))

	var updates []*StateUpdate
	if seen {
		if delta := b.manager.CreateDelta(last, current.Sequence); delta != nil {
			updates = make([]*StateUpdate, 0, len(delta.Changed)+len(delta.Removed))
			for entityID, entity := range delta.Changed {
				updates = append(updates, b.encodeEntity(entityID, entity, current.Sequence, timestampMillis))
			}
			for _, entityID := range delta.Removed {
				updates = append(updates, &StateUpdate{
					Timestamp:      timestampMillis,
					EntityID:       entityID,
					Priority:       255,
					SequenceNumber: current.Sequence,
					Components:     []ComponentData{{Type: reservedEntityRemovedType}},
				})
			}
		}
	}

	if updates == nil {
		// First contact, or the requested baseline fell out of the ring
		// buffer: send the complete entity set instead of a delta.
		updates = make([]*StateUpdate, 0, len(current.Entities))
		for entityID, entity := range current.Entities {
			updates = append(updates, b.encodeEntity(entityID, entity, current.Sequence, timestampMillis))
		}
	}

	b.mu.Lock()
	b.lastSeq[playerID] = current.Sequence
	b.mu.Unlock()

	return updates
}

func (b *DeltaBroadcaster) encodeEntity(entityID uint64, entity EntitySnapshot, seq uint32, timestampMillis uint64) *StateUpdate {
	return &StateUpdate{
		Timestamp:      timestampMillis,
		EntityID:       entityID,
		Priority:       128,
		SequenceNumber: seq,
		Components:     criticalComponents(b.serializer, entity),
	}
}

// criticalComponents builds the always-sent component list for an entity:
// position, velocity, facing, and hp unconditionally, plus the player- or
// monster-specific critical fields for its kind (§4.8). Both DeltaBroadcaster
// and AOIBroadcaster's entering-view path use this so a client that hasn't
// seen an entity yet (or has only seen a stale delta) always gets the full
// picture rather than whatever single component happened to change.
func criticalComponents(serializer *ComponentSerializer, entity EntitySnapshot) []ComponentData {
	components := []ComponentData{
		{Type: "position", Data: serializer.SerializePosition(entity.Position.X, entity.Position.Y)},
		{Type: "velocity", Data: serializer.SerializeVelocity(entity.Velocity.VX, entity.Velocity.VY)},
		{Type: "facing", Data: serializer.SerializeFacing(entity.Facing)},
		{Type: "hp", Data: serializer.SerializeHealth(entity.HP, entity.MaxHP)},
	}

	switch entity.Kind {
	case KindPlayer:
		components = append(components, ComponentData{
			Type: "player_critical",
			Data: serializer.SerializePlayerCritical(
				entity.Class, entity.Level, entity.ArmorHP,
				entity.MoveSpeedBonus, entity.AttackRecoveryBonus, entity.AttackCooldownBonus, entity.DamageBonus,
				entity.IsInvulnerable, entity.RollUnlocked,
			),
		})
	case KindMonster:
		components = append(components, ComponentData{
			Type: "monster_critical",
			Data: serializer.SerializeMonsterCritical(entity.MonsterType, entity.State, entity.CurrentAttackType, entity.AttackPhase),
		})
	default:
		components = append(components, ComponentData{Type: "state", Data: []byte(entity.State)})
	}

	return components
}

// Forget drops tracking state for playerID, called on disconnect so a
// later reconnect (which may reuse the player ID) starts from a full sync
// instead of comparing against a stale baseline.
func (b *DeltaBroadcaster) Forget(playerID uint64) {
	b.mu.Lock()
	delete(b.lastSeq, playerID)
	b.mu.Unlock()
}
