package main

import (
	"encoding/binary"
	"flag"
	"log"
	"math"
	"sync"
	"time"

	"github.com/opd-ai/shardkeep/pkg/combat"
	"github.com/opd-ai/shardkeep/pkg/engine"
	"github.com/opd-ai/shardkeep/pkg/network"
	"github.com/opd-ai/shardkeep/pkg/world"
)

// maxPlayerSpeed is the fastest a player's velocity is ever set to by
// applyInputCommand: the quickest class base speed (rogue, 130) plus the
// richest directional multiplier (1.0, pure forward) plus headroom for
// level move-speed bonuses. Anti-cheat checks actual simulated displacement
// against this independent of what a client claims, so it still catches
// abnormal movement from a bug or exploit elsewhere in the simulation, not
// just a malicious input payload.
const maxPlayerSpeed = 200.0

var (
	port         = flag.String("port", "8080", "Server port")
	maxPlayers   = flag.Int("max-players", 4, "Maximum number of players")
	seed         = flag.Int64("seed", 12345, "World generation seed")
	mapWidth     = flag.Int("map-width", 64, "Map width in tiles")
	mapHeight    = flag.Int("map-height", 64, "Map height in tiles")
	tickRate     = flag.Int("tick-rate", 20, "Network broadcast rate (updates per second)")
	simTickRate  = flag.Int("sim-tick-rate", 60, "Authoritative simulation rate (ticks per second)")
	assumedDelay = flag.Duration("assumed-latency", 100*time.Millisecond, "Fallback latency assumed for lag-compensated hit validation until per-connection RTT tracking lands")
	verbose      = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	log.Printf("Starting shardkeep server")
	log.Printf("Port: %s, Max Players: %d, Sim: %d Hz, Net: %d Hz", *port, *maxPlayers, *simTickRate, *tickRate)
	log.Printf("World Seed: %d, Map: %dx%d", *seed, *mapWidth, *mapHeight)

	if *verbose {
		log.Println("Creating game world...")
	}

	gameWorld := engine.NewWorld()

	terrainMap := buildArena(*mapWidth, *mapHeight, *seed)

	terrainChecker := engine.NewTerrainCollisionChecker(32, 32)
	terrainChecker.SetTerrain(terrainMap)

	movementSystem := &engine.MovementSystem{}
	movementSystem.SetTerrainChecker(terrainChecker)
	collisionSystem := &engine.CollisionSystem{}
	combatSystem := engine.NewCombatSystem(gameWorld, *seed)
	aiSystem := engine.NewAISystem(gameWorld)
	projectileSystem := engine.NewProjectileSystem(gameWorld)
	projectileSystem.SetTerrainChecker(terrainChecker)

	combatSystem.SetProjectileSpawner(func(attacker *engine.Entity, originX, originY, facing float64, attack *engine.AttackComponent) {
		speed := 300.0
		vx := math.Cos(facing) * speed
		vy := math.Sin(facing) * speed
		projectileSystem.SpawnProjectile(originX, originY, vx, vy, &engine.ProjectileComponent{
			Damage:         attack.Damage,
			Speed:          speed,
			LifeTime:       2.0,
			OwnerID:        attacker.ID,
			ProjectileType: "bolt",
		})
	})

	aiSystem.SetCombatSystem(combatSystem)
	aiSystem.SetTerrain(terrainMap, 32, 32)

	gameWorld.AddSystem(movementSystem)
	gameWorld.AddSystem(collisionSystem)
	gameWorld.AddSystem(combatSystem)
	gameWorld.AddSystem(aiSystem)
	gameWorld.AddSystem(projectileSystem)

	if *verbose {
		log.Println("Game systems initialized")
	}

	// Initialize network components
	if *verbose {
		log.Println("Initializing network systems...")
	}

	serverConfig := network.DefaultServerConfig()
	serverConfig.Address = ":" + *port
	serverConfig.MaxPlayers = *maxPlayers
	serverConfig.UpdateRate = *tickRate

	server := network.NewServer(serverConfig)

	combatSystem.SetDeathCallback(func(entity *engine.Entity) {
		server.BroadcastDeath(&network.DeathMessage{
			EntityID:    entity.ID,
			TimeOfDeath: float64(time.Now().UnixNano()) / float64(time.Second),
		})
	})

	// Snapshot history backs both state-sync and lag-compensated hit checks.
	snapshotManager := network.NewSnapshotManager(*simTickRate * 2)
	deltaBroadcaster := network.NewDeltaBroadcaster(snapshotManager)
	aoiBroadcaster := network.NewAOIBroadcaster(deltaBroadcaster, network.DefaultViewDistance, network.DefaultMaxBatchEntities)
	antiCheat := network.NewAntiCheatMonitor(network.DefaultKickThreshold)

	lagCompConfig := network.DefaultLagCompensationConfig()
	// Hit checks rewind at most 250ms into the past.
	lagCompConfig.MaxCompensation = 250 * time.Millisecond
	lagCompensator := network.NewLagCompensator(lagCompConfig)

	combatSystem.SetHitValidator(func(attackerID, targetID uint64, hitX, hitY float64) bool {
		ok, err := lagCompensator.ValidateHit(attackerID, targetID, network.Position{X: hitX, Y: hitY}, *assumedDelay, 48.0)
		if err != nil {
			// No snapshot history yet (server just started): accept the hit
			// rather than starving the first few seconds of combat.
			return true
		}
		return ok
	})

	projectileSystem.SetHitCallback(func(attackerID, targetID uint64, damage, hitX, hitY float64) bool {
		ok, err := lagCompensator.ValidateHit(attackerID, targetID, network.Position{X: hitX, Y: hitY}, *assumedDelay, 48.0)
		if err != nil {
			return true
		}
		return ok
	})

	if *verbose {
		log.Println("Network systems initialized")
		log.Printf("Server config: Address=%s, MaxPlayers=%d, UpdateRate=%d Hz",
			serverConfig.Address, serverConfig.MaxPlayers, serverConfig.UpdateRate)
	}

	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start network server: %v", err)
	}

	log.Printf("Server listening on port %s", *port)

	defer func() {
		if err := server.Stop(); err != nil {
			log.Printf("Error stopping server: %v", err)
		}
	}()

	simTickDuration := time.Second / time.Duration(*simTickRate)
	netTickDuration := time.Second / time.Duration(*tickRate)

	simTicker := time.NewTicker(simTickDuration)
	defer simTicker.Stop()
	netTicker := time.NewTicker(netTickDuration)
	defer netTicker.Stop()

	lastSimUpdate := time.Now()

	log.Printf("Starting authoritative loop: sim=%dHz, net=%dHz", *simTickRate, *tickRate)

	go func() {
		for err := range server.ReceiveError() {
			log.Printf("Network error: %v", err)
		}
	}()

	playerEntities := make(map[uint64]*engine.Entity)
	playerEntitiesMu := &sync.RWMutex{}

	type playerPos struct{ x, y float64 }
	prevPlayerPos := make(map[uint64]playerPos)
	prevPlayerPosMu := &sync.Mutex{}

	go func() {
		for playerID := range server.ReceivePlayerJoin() {
			if *verbose {
				log.Printf("Player %d joined - creating player entity", playerID)
			}

			entity := createPlayerEntity(gameWorld, terrainMap, playerID, *verbose)

			playerEntitiesMu.Lock()
			playerEntities[playerID] = entity
			playerEntitiesMu.Unlock()

			if *verbose {
				log.Printf("Player %d entity created (ID: %d)", playerID, entity.ID)
			}
		}
	}()

	go func() {
		for playerID := range server.ReceivePlayerLeave() {
			if *verbose {
				log.Printf("Player %d left - removing player entity", playerID)
			}

			playerEntitiesMu.Lock()
			if entity, exists := playerEntities[playerID]; exists {
				gameWorld.RemoveEntity(entity.ID)
				delete(playerEntities, playerID)
			}
			playerEntitiesMu.Unlock()

			aoiBroadcaster.Forget(playerID)
			antiCheat.Forget(playerID)

			prevPlayerPosMu.Lock()
			delete(prevPlayerPos, playerID)
			prevPlayerPosMu.Unlock()
		}
	}()

	go func() {
		for cmd := range server.ReceiveInputCommand() {
			if *verbose {
				log.Printf("Received input from player %d: type=%s, seq=%d",
					cmd.PlayerID, cmd.InputType, cmd.SequenceNumber)
			}

			if accept, shouldKick := antiCheat.CheckSequence(cmd.PlayerID, cmd.SequenceNumber); !accept {
				if shouldKick {
					server.DisconnectPlayer(cmd.PlayerID, "out-of-order input sequence")
					antiCheat.Forget(cmd.PlayerID)
				}
				continue
			}

			playerEntitiesMu.RLock()
			entity, exists := playerEntities[cmd.PlayerID]
			playerEntitiesMu.RUnlock()

			if !exists {
				if *verbose {
					log.Printf("Warning: no entity for player %d", cmd.PlayerID)
				}
				continue
			}

			if applyInputCommand(gameWorld, combatSystem, server, terrainMap, entity, cmd, *verbose, antiCheat) {
				server.DisconnectPlayer(cmd.PlayerID, "malformed input frame")
				antiCheat.Forget(cmd.PlayerID)
			}
		}
	}()

	for {
		select {
		case <-simTicker.C:
			now := time.Now()
			deltaTime := now.Sub(lastSimUpdate).Seconds()
			lastSimUpdate = now

			gameWorld.Update(deltaTime)

			if deltaTime > 0 {
				playerEntitiesMu.RLock()
				prevPlayerPosMu.Lock()
				for playerID, entity := range playerEntities {
					posComp, ok := entity.GetComponent("position")
					if !ok {
						continue
					}
					pos := posComp.(*engine.PositionComponent)

					if prev, seen := prevPlayerPos[playerID]; seen {
						dx := pos.X - prev.x
						dy := pos.Y - prev.y
						actualSpeed := math.Sqrt(dx*dx+dy*dy) / deltaTime

						if _, shouldKick := antiCheat.CheckSpeed(playerID, actualSpeed, maxPlayerSpeed); shouldKick {
							server.DisconnectPlayer(playerID, "movement exceeded allowed speed")
							antiCheat.Forget(playerID)
						}
					}
					prevPlayerPos[playerID] = playerPos{x: pos.X, y: pos.Y}
				}
				prevPlayerPosMu.Unlock()
				playerEntitiesMu.RUnlock()
			}

			snapshot := buildWorldSnapshot(gameWorld, now)
			snapshotManager.AddSnapshot(snapshot)
			lagCompensator.RecordSnapshot(snapshot)

		case <-netTicker.C:
			snapshot := buildWorldSnapshot(gameWorld, time.Now())
			snapshot.Sequence = snapshotManager.GetCurrentSequence()

			for _, playerID := range server.GetPlayers() {
				playerEntitiesMu.RLock()
				viewerEntity, hasEntity := playerEntities[playerID]
				playerEntitiesMu.RUnlock()
				if !hasEntity {
					continue
				}

				for _, update := range aoiBroadcaster.Prepare(playerID, viewerEntity.ID, snapshot) {
					if err := server.SendStateUpdate(playerID, update); err != nil && *verbose {
						log.Printf("Failed to send state update to player %d: %v", playerID, err)
					}
				}
			}

			if *verbose {
				playerCount := server.GetPlayerCount()
				log.Printf("Server tick: %d entities, %d players connected",
					len(gameWorld.GetEntities()), playerCount)
			}
		}
	}
}

// buildArena constructs a simple bordered arena: walkable floor surrounded
// by a one-tile wall ring. Real level layouts are out of scope here; the
// map only needs to exercise the tile-mask collision checker.
func buildArena(width, height int, seed int64) *world.Map {
	m := world.NewMap(width, height, seed)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x == 0 || y == 0 || x == width-1 || y == height-1 {
				m.SetTile(x, y, world.Tile{Type: world.TileWall, Walkable: false})
			} else {
				m.SetTile(x, y, world.Tile{Type: world.TileFloor, Walkable: true})
			}
		}
	}
	return m
}

// buildWorldSnapshot creates a network snapshot from the current world state.
func buildWorldSnapshot(gameWorld *engine.World, timestamp time.Time) network.WorldSnapshot {
	snapshot := network.WorldSnapshot{
		Timestamp: timestamp,
		Entities:  make(map[uint64]network.EntitySnapshot),
	}

	for _, entity := range gameWorld.GetEntities() {
		posComp, ok := entity.GetComponent("position")
		if !ok {
			continue
		}
		pos := posComp.(*engine.PositionComponent)

		velX, velY := 0.0, 0.0
		if velComp, ok := entity.GetComponent("velocity"); ok {
			vel := velComp.(*engine.VelocityComponent)
			velX = vel.VX
			velY = vel.VY
		}

		hp, maxHP := 0.0, 0.0
		if healthComp, ok := entity.GetComponent("health"); ok {
			health := healthComp.(*engine.HealthComponent)
			hp, maxHP = health.Current, health.Max
		}

		snap := network.EntitySnapshot{
			EntityID:  entity.ID,
			Timestamp: timestamp,
			Position:  network.Position{X: pos.X, Y: pos.Y},
			Velocity:  network.Velocity{VX: velX, VY: velY},
			Facing:    pos.Facing,
			HP:        hp,
			MaxHP:     maxHP,
		}

		switch entity.Kind {
		case engine.KindPlayer:
			snap.Kind = network.KindPlayer
			if playerComp, ok := entity.GetComponent("player"); ok {
				p := playerComp.(*engine.PlayerComponent)
				snap.Class = string(p.Class)
				snap.Level = p.Level
				snap.ArmorHP = p.ArmorHP
				snap.MoveSpeedBonus = p.MoveSpeedBonus
				snap.AttackRecoveryBonus = p.AttackRecoveryBonus
				snap.AttackCooldownBonus = p.AttackCooldownBonus
				snap.DamageBonus = p.DamageBonus
				snap.IsInvulnerable = p.IsInvulnerable
				snap.RollUnlocked = p.RollUnlocked
			}
		case engine.KindMonster:
			snap.Kind = network.KindMonster
			if monsterComp, ok := entity.GetComponent("monster"); ok {
				snap.MonsterType = monsterComp.(*engine.MonsterComponent).MonsterType
			}
			if aiComp, ok := entity.GetComponent("ai"); ok {
				snap.State = aiComp.(*engine.AIComponent).State.String()
			}
		case engine.KindProjectile:
			snap.Kind = network.KindProjectile
		case engine.KindEffect:
			snap.Kind = network.KindEffect
		}

		if attackComp, ok := entity.GetComponent("attack"); ok {
			attack := attackComp.(*engine.AttackComponent)
			snap.AttackPhase = attack.Phase.String()
			snap.CurrentAttackType = attackShapeLabel(attack.Shape)
		}

		snapshot.Entities[entity.ID] = snap
	}

	return snapshot
}

// attackShapeLabel maps an attack's hitbox shape to the wire-level attack
// type tag clients use to pick a telegraph animation.
func attackShapeLabel(shape engine.HitboxShape) string {
	switch shape {
	case engine.HitboxProjectile:
		return "ranged"
	case engine.HitboxCone:
		return "cone"
	default:
		return "melee"
	}
}

// createPlayerEntity creates a player entity for a connected client.
func createPlayerEntity(gameWorld *engine.World, terrainMap *world.Map, playerID uint64, verbose bool) *engine.Entity {
	entity := gameWorld.CreateEntityOfKind(engine.KindPlayer)

	spawnX, spawnY := spawnPoint(terrainMap)

	entity.AddComponent(&engine.PositionComponent{X: spawnX, Y: spawnY, Facing: 0})
	entity.AddComponent(&engine.VelocityComponent{VX: 0, VY: 0})
	entity.AddComponent(&engine.HealthComponent{Current: 100, Max: 100})
	entity.AddComponent(&engine.TeamComponent{TeamID: 1})
	entity.AddComponent(engine.NewPlayerComponent(engine.ClassBladedancer))

	playerStats := engine.NewStatsComponent()
	playerStats.Attack = 10
	playerStats.Defense = 5
	entity.AddComponent(playerStats)

	entity.AddComponent(&engine.AttackComponent{
		Damage:           15,
		DamageType:       combat.DamagePhysical,
		Range:            50,
		Cooldown:         0.5,
		WindupDuration:   0.15,
		ActiveDuration:   0.05,
		RecoveryDuration: 0.2,
		Shape:            engine.HitboxRectangle,
		ShapeParams:      engine.HitboxParams{Width: 40, Length: 50},
	})

	entity.AddComponent(&engine.ColliderComponent{
		Width:   32,
		Height:  32,
		Solid:   true,
		Layer:   1,
		OffsetX: -16,
		OffsetY: -16,
	})

	if verbose {
		log.Printf("Player entity created: ID=%d, PlayerID=%d, Position=(%.1f, %.1f)",
			entity.ID, playerID, spawnX, spawnY)
	}

	return entity
}

// spawnPoint returns the center of the walkable arena in pixel coordinates
// (32px tiles), falling back to the map's midpoint if it is unwalkable.
func spawnPoint(m *world.Map) (float64, float64) {
	cx, cy := m.Width/2, m.Height/2
	if !m.IsWalkable(cx, cy) {
		cx, cy = 1, 1
	}
	return float64(cx)*32 + 16, float64(cy)*32 + 16
}

// applyInputCommand applies a network input command to a player entity.
// Returns whether the player should be kicked for sending a malformed frame.
func applyInputCommand(gameWorld *engine.World, combatSystem *engine.CombatSystem, server *network.Server, terrainMap *world.Map, entity *engine.Entity, cmd *network.InputCommand, verbose bool, antiCheat *network.AntiCheatMonitor) bool {
	switch cmd.InputType {
	case network.MsgMove:
		velComp, hasVel := entity.GetComponent("velocity")
		posComp, hasPos := entity.GetComponent("position")
		if !hasVel || !hasPos {
			return false
		}
		if len(cmd.Data) < 2 {
			return antiCheat.CheckFrame(cmd.PlayerID)
		}
		velocity := velComp.(*engine.VelocityComponent)
		pos := posComp.(*engine.PositionComponent)

		forward := float64(int8(cmd.Data[0])) / 127.0
		strafe := float64(int8(cmd.Data[1])) / 127.0

		if len(cmd.Data) >= 6 {
			facingBits := binary.LittleEndian.Uint32(cmd.Data[2:6])
			pos.Facing = engine.NormalizeFacing(float64(math.Float32frombits(facingBits)))
		}

		baseSpeed, levelBonus := 100.0, 0.0
		if playerComp, ok := entity.GetComponent("player"); ok {
			p := playerComp.(*engine.PlayerComponent)
			baseSpeed = p.Class.BaseMoveSpeed()
			levelBonus = p.MoveSpeedBonus
		}

		speed := (baseSpeed + levelBonus) * movementMultiplier(forward, strafe)

		vx, vy := rotateIntent(forward, strafe, pos.Facing)
		if mag := math.Hypot(vx, vy); mag > 0 {
			vx, vy = vx/mag, vy/mag
		}
		velocity.VX = vx * speed
		velocity.VY = vy * speed

		if verbose && (forward != 0 || strafe != 0) {
			log.Printf("Player %d moving: velocity=(%.1f, %.1f) facing=%.2f", cmd.PlayerID, velocity.VX, velocity.VY, pos.Facing)
		}

	case network.MsgAttack:
		if combatSystem.BeginAttack(entity, nil) {
			if verbose {
				log.Printf("Player %d attack: windup started", cmd.PlayerID)
			}
		} else if verbose {
			log.Printf("Player %d attack: rejected (on cooldown or dead)", cmd.PlayerID)
		}

	case network.MsgExecuteAbility:
		// Abilities share the attacker's windup/active/recovery machinery;
		// a richer ability table (cooldowns, resource costs per ability ID)
		// is not wired up yet.
		if combatSystem.BeginAttack(entity, nil) {
			if verbose {
				log.Printf("Player %d executed ability", cmd.PlayerID)
			}
		}

	case network.MsgRespawn:
		if !entity.HasComponent("dead") {
			return false
		}
		entity.RemoveComponent("dead")
		if healthComp, ok := entity.GetComponent("health"); ok {
			health := healthComp.(*engine.HealthComponent)
			health.Current = health.Max
		}
		if posComp, ok := entity.GetComponent("position"); ok {
			pos := posComp.(*engine.PositionComponent)
			pos.X, pos.Y = spawnPoint(terrainMap)
		}
		if velComp, ok := entity.GetComponent("velocity"); ok {
			vel := velComp.(*engine.VelocityComponent)
			vel.VX, vel.VY = 0, 0
		}
		server.BroadcastRevival(&network.RevivalMessage{
			EntityID:       entity.ID,
			ReviverID:      entity.ID,
			TimeOfRevival:  float64(time.Now().UnixNano()) / float64(time.Second),
			RestoredHealth: 1.0,
		})
		if verbose {
			log.Printf("Player %d respawned", cmd.PlayerID)
		}

	case network.MsgSetClass:
		if len(cmd.Data) == 0 {
			return antiCheat.CheckFrame(cmd.PlayerID)
		}
		if playerComp, ok := entity.GetComponent("player"); ok {
			playerComp.(*engine.PlayerComponent).Class = engine.PlayerClass(cmd.Data)
		}

	case network.MsgPing:
		// No round-trip latency is measured: server.go's pong handler only
		// extends the read deadline, and hit validation uses the fixed
		// --assumed-latency value.

	case network.MsgCollisionMask, network.MsgCreateProjectile:
		// The server is the sole authority over terrain and projectile
		// spawns; a client sending either is ignored rather than trusted.
		if verbose {
			log.Printf("Ignoring client-authoritative %s from player %d", cmd.InputType, cmd.PlayerID)
		}

	default:
		if verbose {
			log.Printf("Unknown input type from player %d: %s", cmd.PlayerID, cmd.InputType)
		}
	}

	return false
}

// rotateIntent turns a local-frame (forward, strafe) movement intent into a
// world-space direction by rotating it through the entity's facing.
func rotateIntent(forward, strafe, facing float64) (vx, vy float64) {
	cos, sin := math.Cos(facing), math.Sin(facing)
	vx = forward*cos - strafe*sin
	vy = forward*sin + strafe*cos
	return vx, vy
}

// movementMultiplier applies the directional speed table: strafing and
// backpedaling are slower than a forward sprint, and moving both forward
// and lateral at once lands between the two.
func movementMultiplier(forward, strafe float64) float64 {
	switch {
	case forward != 0 && strafe != 0:
		return 0.85
	case forward > 0:
		return 1.0
	case forward < 0:
		return 0.5
	case strafe != 0:
		return 0.7
	default:
		return 0
	}
}
