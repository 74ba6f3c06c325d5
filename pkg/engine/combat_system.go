// Package engine provides the combat system for damage and status effects.
// This file implements CombatSystem which handles damage calculation, combat
// interactions, and status effect management using the combat package.
package engine

import (
	"math"
	"math/rand"
	"sort"

	"github.com/opd-ai/shardkeep/pkg/combat"
	"github.com/sirupsen/logrus"
)

// CombatSystem handles combat interactions, damage calculation, attack
// phase progression, and status effect management.
type CombatSystem struct {
	rng   *rand.Rand
	world *World

	// validateHit is consulted before active-phase damage lands, so
	// projectile/melee hits can be checked against lag-compensated
	// history instead of current server state.
	validateHit func(attackerID, targetID uint64, hitX, hitY float64) bool

	// Callback for when an entity dies
	onDeathCallback func(entity *Entity)

	// Callback for when damage is dealt
	onDamageCallback func(attacker, target *Entity, damage float64)

	// spawnProjectile is consulted when an attack's Shape is
	// HitboxProjectile: instead of testing containment directly, the combat
	// system hands off to whatever spawns and ticks projectile entities.
	spawnProjectile func(attacker *Entity, originX, originY, facing float64, attack *AttackComponent)

	// Logger for combat events
	logger *logrus.Entry
}

// NewCombatSystem creates a new combat system with a given random seed.
func NewCombatSystem(world *World, seed int64) *CombatSystem {
	return NewCombatSystemWithLogger(world, seed, nil)
}

// NewCombatSystemWithLogger creates a new combat system with a logger.
func NewCombatSystemWithLogger(world *World, seed int64, logger *logrus.Logger) *CombatSystem {
	var logEntry *logrus.Entry
	if logger != nil {
		logEntry = logger.WithFields(logrus.Fields{
			"system": "combat",
			"seed":   seed,
		})
		logEntry.Debug("combat system created")
	}

	return &CombatSystem{
		rng:    rand.New(rand.NewSource(seed)),
		world:  world,
		logger: logEntry,
	}
}

// SetHitValidator registers a lag-compensation hook consulted before an
// attack's active phase applies damage. A nil validator accepts all hits.
func (s *CombatSystem) SetHitValidator(fn func(attackerID, targetID uint64, hitX, hitY float64) bool) {
	s.validateHit = fn
}

// SetProjectileSpawner registers the hook used to realize HitboxProjectile
// attacks. Without one, a projectile-shaped attack resolves as a no-op.
func (s *CombatSystem) SetProjectileSpawner(fn func(attacker *Entity, originX, originY, facing float64, attack *AttackComponent)) {
	s.spawnProjectile = fn
}

// Update implements the System interface. It advances attack-slot phases,
// resolves damage on the tick an attack enters its active phase, and
// processes status effects and death cleanup.
func (s *CombatSystem) Update(entities []*Entity, deltaTime float64) {
	for _, entity := range entities {
		isDead := entity.HasComponent("dead")

		if !isDead {
			if attackComp, ok := entity.GetComponent("attack"); ok {
				attack := attackComp.(*AttackComponent)
				if attack.Phase == AttackPhaseReady {
					attack.UpdateCooldown(deltaTime)
				} else if attack.AdvancePhase(deltaTime) && !attack.resolved {
					s.resolveAttack(entity, attack)
				}
			}
		}

		if statusComp, ok := entity.GetComponent("status_effect"); ok {
			status := statusComp.(*StatusEffectComponent)

			if ticked := status.Update(deltaTime); ticked {
				s.applyStatusEffectTick(entity, status)
			}

			if status.IsExpired() {
				entity.RemoveComponent("status_effect")
			}
		}
	}

	for _, entity := range entities {
		if healthComp, ok := entity.GetComponent("health"); ok {
			health := healthComp.(*HealthComponent)
			if health.IsDead() && !entity.HasComponent("dead") {
				entity.AddComponent(NewDeadComponent(0))

				if s.logger != nil && s.logger.Logger.GetLevel() >= logrus.InfoLevel {
					s.logger.WithFields(logrus.Fields{
						"entityID":      entity.ID,
						"currentHealth": health.Current,
					}).Info("entity death")
				}
				if s.onDeathCallback != nil {
					s.onDeathCallback(entity)
				}
			}
		}
	}
}

// applyStatusEffectTick applies periodic status effect damage/healing.
func (s *CombatSystem) applyStatusEffectTick(entity *Entity, effect *StatusEffectComponent) {
	healthComp, ok := entity.GetComponent("health")
	if !ok {
		return
	}

	health := healthComp.(*HealthComponent)

	switch effect.EffectType {
	case "poison", "burn":
		health.TakeDamage(effect.Magnitude)
	case "regeneration":
		health.Heal(effect.Magnitude)
	}
}

// BeginAttack validates cooldown/state and, if the attack is legal, starts
// the attacker's windup phase. target, when non-nil, seeds TargetID for
// callers (AI) that still want a preferred victim reported; it does not
// limit who the hitbox can hit once it resolves - see resolveAttack. Damage
// is not applied until the attack reaches its active phase on a later
// Update call.
func (s *CombatSystem) BeginAttack(attacker, target *Entity) bool {
	if attacker.HasComponent("dead") {
		return false
	}
	if target != nil && target.HasComponent("dead") {
		return false
	}

	attackComp, ok := attacker.GetComponent("attack")
	if !ok {
		return false
	}
	attack := attackComp.(*AttackComponent)

	if !attack.CanAttack() {
		return false
	}

	if target != nil {
		targetHealth, ok := target.GetComponent("health")
		if !ok || targetHealth.(*HealthComponent).IsDead() {
			return false
		}

		if _, hasPos := attacker.GetComponent("position"); hasPos {
			if _, hasTargetPos := target.GetComponent("position"); hasTargetPos {
				if GetDistance(attacker, target) > attack.Range {
					return false
				}
			}
		}
		return attack.BeginWindup(target.ID)
	}

	return attack.BeginWindup(0)
}

// resolveAttack runs the damage pipeline for an attack that has just entered
// its active phase. The server constructs the attack's hitbox at the
// attacker's current position and facing (the action point) and damages
// every live, non-ally candidate it contains, in ascending entity-id order,
// rather than a single pre-selected target.
func (s *CombatSystem) resolveAttack(attacker *Entity, attack *AttackComponent) {
	attack.resolved = true

	if s.world == nil || attacker.HasComponent("dead") {
		return
	}

	posComp, hasPos := attacker.GetComponent("position")
	if !hasPos {
		return
	}
	pos := posComp.(*PositionComponent)

	if attack.Shape == HitboxProjectile {
		if s.spawnProjectile != nil {
			s.spawnProjectile(attacker, pos.X, pos.Y, pos.Facing, attack)
		}
		return
	}

	var attackerTeamID int
	if teamComp, ok := attacker.GetComponent("team"); ok {
		attackerTeamID = teamComp.(*TeamComponent).TeamID
	}

	var victims []*Entity
	for _, entity := range s.world.GetEntities() {
		if entity.ID == attacker.ID || entity.HasComponent("dead") {
			continue
		}
		healthComp, ok := entity.GetComponent("health")
		if !ok || healthComp.(*HealthComponent).IsDead() {
			continue
		}
		if teamComp, ok := entity.GetComponent("team"); ok {
			if !teamComp.(*TeamComponent).IsEnemy(attackerTeamID) {
				continue
			}
		}
		targetPosComp, ok := entity.GetComponent("position")
		if !ok {
			continue
		}
		targetPos := targetPosComp.(*PositionComponent)
		if !attack.Shape.Contains(attack.ShapeParams, pos.X, pos.Y, pos.Facing, targetPos.X, targetPos.Y) {
			continue
		}
		victims = append(victims, entity)
	}

	sort.Slice(victims, func(i, j int) bool { return victims[i].ID < victims[j].ID })

	for _, target := range victims {
		s.applyDamage(attacker, target, attack)
	}
}

// applyDamage runs the server-computed damage pipeline against a single
// victim the attack's hitbox contained: lag-compensated hit validation,
// evasion/crit rolls, defense/resistance reduction, shield absorption, and
// finally the health deduction plus a brief stun.
func (s *CombatSystem) applyDamage(attacker, target *Entity, attack *AttackComponent) {
	targetHealthComp, ok := target.GetComponent("health")
	if !ok {
		return
	}
	health := targetHealthComp.(*HealthComponent)
	if health.IsDead() {
		return
	}

	if s.validateHit != nil {
		if posComp, ok := attacker.GetComponent("position"); ok {
			pos := posComp.(*PositionComponent)
			if !s.validateHit(attacker.ID, target.ID, pos.X, pos.Y) {
				return
			}
		}
	}

	attackerStatsComp, _ := attacker.GetComponent("stats")
	var attackerStats *StatsComponent
	if attackerStatsComp != nil {
		attackerStats = attackerStatsComp.(*StatsComponent)
	}

	targetStatsComp, _ := target.GetComponent("stats")
	var targetStats *StatsComponent
	if targetStatsComp != nil {
		targetStats = targetStatsComp.(*StatsComponent)
	}

	if targetStats != nil && s.rollChance(targetStats.Evasion) {
		if s.logger != nil && s.logger.Logger.GetLevel() >= logrus.DebugLevel {
			s.logger.WithFields(logrus.Fields{
				"attackerID": attacker.ID,
				"targetID":   target.ID,
				"evasion":    targetStats.Evasion,
			}).Debug("attack evaded")
		}
		return
	}

	baseDamage := attack.Damage
	isCrit := false

	if attackerStats != nil {
		if attack.DamageType == combat.DamageMagical {
			baseDamage += attackerStats.MagicPower
		} else {
			baseDamage += attackerStats.Attack
		}

		if s.rollChance(attackerStats.CritChance) {
			baseDamage *= attackerStats.CritDamage
			isCrit = true
		}
	}

	if playerComp, ok := attacker.GetComponent("player"); ok {
		baseDamage += playerComp.(*PlayerComponent).DamageBonus
	}

	finalDamage := baseDamage
	if targetStats != nil {
		if attack.DamageType == combat.DamageMagical {
			finalDamage -= targetStats.MagicDefense
		} else {
			finalDamage -= targetStats.Defense
		}
		resistance := targetStats.GetResistance(attack.DamageType)
		finalDamage *= 1.0 - resistance
	}

	if finalDamage < 1.0 {
		finalDamage = 1.0
	}

	if shieldComp, hasShield := target.GetComponent("shield"); hasShield {
		shield := shieldComp.(*ShieldComponent)
		if shield.IsActive() {
			absorbed := shield.AbsorbDamage(finalDamage)
			finalDamage -= absorbed
			if finalDamage <= 0 {
				return
			}
		}
	}

	health.TakeDamage(finalDamage)
	target.AddComponent(&StatusEffectComponent{EffectType: "stun", Duration: 0.36})

	if s.logger != nil && s.logger.Logger.GetLevel() >= logrus.InfoLevel {
		s.logger.WithFields(logrus.Fields{
			"attackerID":   attacker.ID,
			"targetID":     target.ID,
			"damage":       finalDamage,
			"baseDamage":   baseDamage,
			"damageType":   attack.DamageType,
			"critical":     isCrit,
			"targetHealth": health.Current,
		}).Info("damage dealt")
	}

	if s.onDamageCallback != nil {
		s.onDamageCallback(attacker, target, finalDamage)
	}
}

// rollChance returns true if a random roll succeeds based on the given chance (0.0 to 1.0).
func (s *CombatSystem) rollChance(chance float64) bool {
	if chance <= 0 {
		return false
	}
	if chance >= 1.0 {
		return true
	}
	return s.rng.Float64() < chance
}

// CanAttackTarget checks if an attacker can attack a target (range and cooldown check).
func (s *CombatSystem) CanAttackTarget(attacker, target *Entity) bool {
	attackComp, ok := attacker.GetComponent("attack")
	if !ok {
		return false
	}
	attack := attackComp.(*AttackComponent)

	if !attack.CanAttack() {
		return false
	}

	targetHealth, ok := target.GetComponent("health")
	if !ok || targetHealth.(*HealthComponent).IsDead() {
		return false
	}

	_, attackerHasPos := attacker.GetComponent("position")
	_, targetHasPos := target.GetComponent("position")
	if attackerHasPos && targetHasPos {
		distance := GetDistance(attacker, target)
		if distance > attack.Range {
			return false
		}
	}

	return true
}

// ApplyStatusEffect applies a status effect to an entity.
func (s *CombatSystem) ApplyStatusEffect(target *Entity, effectType string, duration, magnitude, tickInterval float64) {
	effect := &StatusEffectComponent{
		EffectType:   effectType,
		Duration:     duration,
		Magnitude:    magnitude,
		TickInterval: tickInterval,
		NextTick:     tickInterval,
	}

	target.AddComponent(effect)
}

// Heal heals a target entity by the given amount.
func (s *CombatSystem) Heal(target *Entity, amount float64) {
	healthComp, ok := target.GetComponent("health")
	if !ok {
		return
	}

	health := healthComp.(*HealthComponent)
	health.Heal(amount)
}

// SetDeathCallback sets the callback function for entity deaths.
func (s *CombatSystem) SetDeathCallback(callback func(entity *Entity)) {
	s.onDeathCallback = callback
}

// SetDamageCallback sets the callback function for damage dealt.
func (s *CombatSystem) SetDamageCallback(callback func(attacker, target *Entity, damage float64)) {
	s.onDamageCallback = callback
}

// FindEnemiesInRange finds all enemy entities within the given range of the attacker.
func FindEnemiesInRange(world *World, attacker *Entity, maxRange float64) []*Entity {
	_, ok := attacker.GetComponent("position")
	if !ok {
		return nil
	}

	attackerTeam, _ := attacker.GetComponent("team")
	var attackerTeamID int
	if attackerTeam != nil {
		attackerTeamID = attackerTeam.(*TeamComponent).TeamID
	}

	enemies := make([]*Entity, 0)

	for _, entity := range world.GetEntities() {
		if entity.ID == attacker.ID {
			continue
		}

		if entity.HasComponent("dead") {
			continue
		}

		targetTeam, hasTeam := entity.GetComponent("team")
		if hasTeam {
			team := targetTeam.(*TeamComponent)
			if !team.IsEnemy(attackerTeamID) {
				continue
			}
		}

		healthComp, hasHealth := entity.GetComponent("health")
		if !hasHealth || healthComp.(*HealthComponent).IsDead() {
			continue
		}

		_, hasPos := entity.GetComponent("position")
		if !hasPos {
			continue
		}

		distance := GetDistance(attacker, entity)
		if distance <= maxRange {
			enemies = append(enemies, entity)
		}
	}

	return enemies
}

// FindNearestEnemy finds the closest enemy to the attacker within the given range.
func FindNearestEnemy(world *World, attacker *Entity, maxRange float64) *Entity {
	enemies := FindEnemiesInRange(world, attacker, maxRange)
	if len(enemies) == 0 {
		return nil
	}

	var nearest *Entity
	nearestDistance := math.MaxFloat64

	for _, enemy := range enemies {
		distance := GetDistance(attacker, enemy)
		if distance < nearestDistance {
			nearestDistance = distance
			nearest = enemy
		}
	}

	return nearest
}
