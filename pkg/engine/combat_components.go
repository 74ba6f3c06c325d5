// Package engine provides combat-related components.
// This file defines components for health, damage, and combat statistics
// used by the combat system.
package engine

import "github.com/opd-ai/shardkeep/pkg/combat"

// HealthComponent tracks an entity's health and maximum health.
type HealthComponent struct {
	Current float64
	Max     float64
}

// Type returns the component type identifier.
func (h *HealthComponent) Type() string {
	return "health"
}

// IsAlive returns true if the entity has health remaining.
func (h *HealthComponent) IsAlive() bool {
	return h.Current > 0
}

// IsDead returns true if the entity has no health remaining.
func (h *HealthComponent) IsDead() bool {
	return h.Current <= 0
}

// Heal increases health by the given amount, capped at max health.
func (h *HealthComponent) Heal(amount float64) {
	h.Current += amount
	if h.Current > h.Max {
		h.Current = h.Max
	}
}

// TakeDamage reduces health by the given amount, minimum 0.
func (h *HealthComponent) TakeDamage(amount float64) {
	h.Current -= amount
	if h.Current < 0 {
		h.Current = 0
	}
}

// StatsComponent contains combat statistics for an entity.
type StatsComponent struct {
	// Base stats
	Attack       float64
	Defense      float64
	MagicPower   float64
	MagicDefense float64

	// Critical stats
	CritChance float64 // 0.0 to 1.0 (e.g., 0.15 = 15% chance)
	CritDamage float64 // Multiplier (e.g., 2.0 = 200% damage)

	// Evasion chance
	Evasion float64 // 0.0 to 1.0

	// Resistances per damage type
	Resistances map[combat.DamageType]float64
}

// Type returns the component type identifier.
func (s *StatsComponent) Type() string {
	return "stats"
}

// NewStatsComponent creates a new StatsComponent with default values.
func NewStatsComponent() *StatsComponent {
	return &StatsComponent{
		Attack:       10.0,
		Defense:      5.0,
		MagicPower:   10.0,
		MagicDefense: 5.0,
		CritChance:   0.05,
		CritDamage:   2.0,
		Evasion:      0.0,
		Resistances:  make(map[combat.DamageType]float64),
	}
}

// GetResistance returns the resistance value for a damage type.
// Returns 0.0 if no resistance is configured.
func (s *StatsComponent) GetResistance(damageType combat.DamageType) float64 {
	if resistance, ok := s.Resistances[damageType]; ok {
		return resistance
	}
	return 0.0
}

// AttackPhase is the current slot of an attacker's windup/active/recovery
// state machine. Only one attack can occupy an attacker's slot at a time.
type AttackPhase int

const (
	// AttackPhaseReady means the slot is free and a new attack may begin.
	AttackPhaseReady AttackPhase = iota
	// AttackPhaseWindup is the telegraph window before the hit resolves;
	// the attacker's position is locked while this phase is in progress.
	AttackPhaseWindup
	// AttackPhaseActive is the window the hitbox is live; damage resolution
	// happens once, on the tick this phase begins.
	AttackPhaseActive
	// AttackPhaseRecovery is the cooldown tail after the hit resolves,
	// during which the slot cannot accept a new attack.
	AttackPhaseRecovery
)

// String returns a human-readable name for the phase.
func (p AttackPhase) String() string {
	switch p {
	case AttackPhaseReady:
		return "ready"
	case AttackPhaseWindup:
		return "windup"
	case AttackPhaseActive:
		return "active"
	case AttackPhaseRecovery:
		return "recovery"
	default:
		return "unknown"
	}
}

// AttackComponent marks an entity as being able to attack and drives the
// per-attacker windup/active/recovery state machine.
type AttackComponent struct {
	// Damage amount
	Damage float64

	// Damage type
	DamageType combat.DamageType

	// Attack range (for melee/ranged)
	Range float64

	// Attack cooldown in seconds
	Cooldown float64

	// Time until next attack is ready
	CooldownTimer float64

	// Phase is the current slot state.
	Phase AttackPhase

	// WindupDuration, ActiveDuration, RecoveryDuration are the per-phase
	// timings (seconds) an attack steps through once begun.
	WindupDuration   float64
	ActiveDuration   float64
	RecoveryDuration float64

	// PhaseTimer counts down the remaining time in the current phase.
	PhaseTimer float64

	// TargetID is the entity the in-flight attack is aimed at. Retained for
	// single-target callers (AI); melee/cone/circle attacks resolve against
	// every live candidate the hitbox contains, not just this entity.
	TargetID uint64

	// Shape and ShapeParams describe the hitbox this attack constructs at
	// its action point (the tick it enters AttackPhaseActive). Zero value is
	// HitboxCircle with Radius 0, which matches nothing - callers must set
	// these explicitly for melee/cone attacks to hit anything.
	Shape       HitboxShape
	ShapeParams HitboxParams

	// resolved is set once the active phase has applied damage, so a
	// multi-tick active window never double-hits.
	resolved bool
}

// Type returns the component type identifier.
func (a *AttackComponent) Type() string {
	return "attack"
}

// CanAttack returns true if the attack slot is free and the cooldown expired.
func (a *AttackComponent) CanAttack() bool {
	return a.Phase == AttackPhaseReady && a.CooldownTimer <= 0
}

// ResetCooldown resets the cooldown timer.
func (a *AttackComponent) ResetCooldown() {
	a.CooldownTimer = a.Cooldown
}

// UpdateCooldown updates the cooldown timer by the given delta time.
func (a *AttackComponent) UpdateCooldown(deltaTime float64) {
	if a.CooldownTimer > 0 {
		a.CooldownTimer -= deltaTime
		if a.CooldownTimer < 0 {
			a.CooldownTimer = 0
		}
	}
}

// BeginWindup transitions a ready attack slot into the windup phase aimed at
// targetID. It is a no-op if the slot is not ready.
func (a *AttackComponent) BeginWindup(targetID uint64) bool {
	if !a.CanAttack() {
		return false
	}
	a.Phase = AttackPhaseWindup
	a.PhaseTimer = a.WindupDuration
	a.TargetID = targetID
	a.resolved = false
	return true
}

// AdvancePhase steps the attack's phase timer by deltaTime, transitioning
// windup -> active -> recovery -> ready as each phase's timer expires. It
// returns true exactly once, on the tick the active phase begins, signaling
// that damage resolution should run.
func (a *AttackComponent) AdvancePhase(deltaTime float64) bool {
	if a.Phase == AttackPhaseReady {
		return false
	}

	a.PhaseTimer -= deltaTime
	enteredActive := false

	for a.PhaseTimer <= 0 {
		switch a.Phase {
		case AttackPhaseWindup:
			a.Phase = AttackPhaseActive
			a.PhaseTimer += a.ActiveDuration
			enteredActive = true
		case AttackPhaseActive:
			a.Phase = AttackPhaseRecovery
			a.PhaseTimer += a.RecoveryDuration
		case AttackPhaseRecovery:
			a.Phase = AttackPhaseReady
			a.PhaseTimer = 0
			a.ResetCooldown()
			return enteredActive
		default:
			return enteredActive
		}
		if a.ActiveDuration <= 0 && a.Phase == AttackPhaseActive {
			// Zero-length active window still counts as having fired once.
			break
		}
	}

	return enteredActive
}

// IsLocked returns true while the attacker's position should be locked
// (windup and active phases).
func (a *AttackComponent) IsLocked() bool {
	return a.Phase == AttackPhaseWindup || a.Phase == AttackPhaseActive
}

// StatusEffectComponent represents a temporary buff or debuff.
type StatusEffectComponent struct {
	// Effect type (e.g., "poison", "stun", "speed_boost")
	EffectType string

	// Duration remaining in seconds
	Duration float64

	// Effect magnitude (meaning depends on effect type)
	Magnitude float64

	// Tick interval for periodic effects (0 = one-time)
	TickInterval float64

	// Time until next tick
	NextTick float64
}

// Type returns the component type identifier.
func (s *StatusEffectComponent) Type() string {
	return "status_effect"
}

// IsExpired returns true if the effect duration has expired.
func (s *StatusEffectComponent) IsExpired() bool {
	return s.Duration <= 0
}

// Update updates the effect duration and tick timer.
func (s *StatusEffectComponent) Update(deltaTime float64) bool {
	s.Duration -= deltaTime

	if s.TickInterval > 0 {
		s.NextTick -= deltaTime
		if s.NextTick <= 0 {
			s.NextTick = s.TickInterval
			return true // Tick occurred
		}
	}

	return false // No tick
}

// Reset clears the component state so the value can be reused.
func (s *StatusEffectComponent) Reset() {
	s.EffectType = ""
	s.Duration = 0
	s.Magnitude = 0
	s.TickInterval = 0
	s.NextTick = 0
}

// TeamComponent identifies which team an entity belongs to.
type TeamComponent struct {
	// Team ID (e.g., 0 = neutral, 1 = player, 2 = enemy)
	TeamID int
}

// Type returns the component type identifier.
func (t *TeamComponent) Type() string {
	return "team"
}

// IsAlly returns true if the other team is an ally.
func (t *TeamComponent) IsAlly(otherTeam int) bool {
	return t.TeamID == otherTeam
}

// IsEnemy returns true if the other team is an enemy.
func (t *TeamComponent) IsEnemy(otherTeam int) bool {
	return t.TeamID != otherTeam && t.TeamID != 0 && otherTeam != 0
}

// ShieldComponent represents a temporary damage absorption barrier.
type ShieldComponent struct {
	// Amount is the remaining shield health
	Amount float64
	// MaxAmount is the initial shield strength
	MaxAmount float64
	// Duration is the remaining time in seconds
	Duration float64
	// MaxDuration is the initial duration
	MaxDuration float64
}

// Type returns the component type identifier.
func (s *ShieldComponent) Type() string {
	return "shield"
}

// IsActive returns true if the shield still has absorption remaining and hasn't expired.
func (s *ShieldComponent) IsActive() bool {
	return s.Amount > 0 && s.Duration > 0
}

// AbsorbDamage reduces the shield amount and returns actual damage absorbed.
func (s *ShieldComponent) AbsorbDamage(damage float64) float64 {
	if !s.IsActive() {
		return 0
	}

	absorbed := damage
	if absorbed > s.Amount {
		absorbed = s.Amount
	}

	s.Amount -= absorbed
	if s.Amount < 0 {
		s.Amount = 0
	}

	return absorbed
}

// Update reduces the shield duration.
func (s *ShieldComponent) Update(deltaTime float64) {
	if s.Duration > 0 {
		s.Duration -= deltaTime
		if s.Duration < 0 {
			s.Duration = 0
		}
	}
}

// PlayerClass enumerates the playable classes. Balance numbers for each
// class live in an external stats table; this package only needs the tag
// to pick a base move speed and to report it as a critical field.
type PlayerClass string

const (
	ClassBladedancer PlayerClass = "bladedancer"
	ClassGuardian    PlayerClass = "guardian"
	ClassHunter      PlayerClass = "hunter"
	ClassRogue       PlayerClass = "rogue"
)

// BaseMoveSpeed returns the class's unmodified forward move speed in
// world units/second, before the §4.4 directional multiplier and level
// bonus are applied.
func (c PlayerClass) BaseMoveSpeed() float64 {
	switch c {
	case ClassGuardian:
		return 90.0
	case ClassHunter:
		return 110.0
	case ClassRogue:
		return 130.0
	case ClassBladedancer:
		return 120.0
	default:
		return 100.0
	}
}

// PlayerComponent holds the player-specific attributes the wire protocol
// must always report for a player entity (the §4.8 critical-field set),
// plus the account-progression state that drives them.
type PlayerComponent struct {
	Class PlayerClass
	Level int
	XP    int

	// ArmorHP is a secondary health pool consumed before Current health.
	ArmorHP, MaxArmorHP float64

	// Per-level stat bonuses. MoveSpeedBonus stacks additively onto the
	// class base speed before the directional multiplier is applied.
	MoveSpeedBonus        float64
	AttackRecoveryBonus   float64
	AttackCooldownBonus   float64
	DamageBonus           float64
	RollUnlocked          bool
	IsInvulnerable        bool
	LastProcessedInputSeq uint32
}

// Type returns the component type identifier.
func (p *PlayerComponent) Type() string {
	return "player"
}

// NewPlayerComponent creates a level-1 player component for the given class.
func NewPlayerComponent(class PlayerClass) *PlayerComponent {
	return &PlayerComponent{
		Class:      class,
		Level:      1,
		MaxArmorHP: 0,
	}
}

// MonsterComponent holds the monster-specific attributes the wire protocol
// must always report for a monster entity: its opaque type (looked up by
// the client in the external stats table) and the current attack FSM slot
// it's animating, so clients can render the right telegraph even when the
// position delta alone wouldn't reveal it.
type MonsterComponent struct {
	MonsterType string
	HomeX       float64
	HomeY       float64
	AggroRange  float64
	TargetID    uint64
}

// Type returns the component type identifier.
func (m *MonsterComponent) Type() string {
	return "monster"
}

// DeadComponent marks an entity as dead and tracks death-related information.
// When an entity dies, this component is added to prevent further actions
// and track dropped loot items.
//
// Design rationale:
// - Uses component-based approach following ECS architecture pattern
// - TimeOfDeath enables time-based cleanup or respawn mechanics
// - DroppedItems tracks spawned loot for cleanup or reclamation
// - Simple data structure with no behavior (logic in systems)
type DeadComponent struct {
	// TimeOfDeath records when the entity died (game time in seconds)
	TimeOfDeath float64

	// DroppedItems contains entity IDs of items spawned from this entity's inventory
	DroppedItems []uint64
}

// Type returns the component type identifier.
func (d *DeadComponent) Type() string {
	return "dead"
}

// NewDeadComponent creates a new DeadComponent with the given death time.
// DroppedItems slice is initialized empty and filled through AddDroppedItem.
func NewDeadComponent(timeOfDeath float64) *DeadComponent {
	return &DeadComponent{
		TimeOfDeath:  timeOfDeath,
		DroppedItems: make([]uint64, 0),
	}
}

// AddDroppedItem adds an item entity ID to the dropped items list.
// This tracks all items spawned from the entity's inventory upon death.
func (d *DeadComponent) AddDroppedItem(itemEntityID uint64) {
	d.DroppedItems = append(d.DroppedItems, itemEntityID)
}
