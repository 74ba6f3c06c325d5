// Package network provides component serialization for networking.
// This file implements serialization and deserialization of ECS components
// for efficient network transmission.
package network

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/opd-ai/shardkeep/pkg/apperr"
)

// ComponentSerializer provides methods for serializing ECS components to/from bytes.
type ComponentSerializer struct{}

// NewComponentSerializer creates a new component serializer.
func NewComponentSerializer() *ComponentSerializer {
	return &ComponentSerializer{}
}

// SerializePosition serializes a position component (X, Y as float64).
func (s *ComponentSerializer) SerializePosition(x, y float64) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:8], math.Float64bits(x))
	binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(y))
	return buf
}

// DeserializePosition deserializes a position component.
func (s *ComponentSerializer) DeserializePosition(data []byte) (x, y float64, err error) {
	if len(data) != 16 {
		return 0, 0, fmt.Errorf("invalid position data length: %d (expected 16): %w", len(data), apperr.ErrProtocol)
	}
	x = math.Float64frombits(binary.LittleEndian.Uint64(data[0:8]))
	y = math.Float64frombits(binary.LittleEndian.Uint64(data[8:16]))
	return x, y, nil
}

// SerializeVelocity serializes a velocity component (VX, VY as float64).
func (s *ComponentSerializer) SerializeVelocity(vx, vy float64) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:8], math.Float64bits(vx))
	binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(vy))
	return buf
}

// DeserializeVelocity deserializes a velocity component.
func (s *ComponentSerializer) DeserializeVelocity(data []byte) (vx, vy float64, err error) {
	if len(data) != 16 {
		return 0, 0, fmt.Errorf("invalid velocity data length: %d (expected 16): %w", len(data), apperr.ErrProtocol)
	}
	vx = math.Float64frombits(binary.LittleEndian.Uint64(data[0:8]))
	vy = math.Float64frombits(binary.LittleEndian.Uint64(data[8:16]))
	return vx, vy, nil
}

// SerializeHealth serializes a health component (Current, Max as float64).
func (s *ComponentSerializer) SerializeHealth(current, max float64) []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:8], math.Float64bits(current))
	binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(max))
	return buf
}

// DeserializeHealth deserializes a health component.
func (s *ComponentSerializer) DeserializeHealth(data []byte) (current, max float64, err error) {
	if len(data) != 16 {
		return 0, 0, fmt.Errorf("invalid health data length: %d (expected 16): %w", len(data), apperr.ErrProtocol)
	}
	current = math.Float64frombits(binary.LittleEndian.Uint64(data[0:8]))
	max = math.Float64frombits(binary.LittleEndian.Uint64(data[8:16]))
	return current, max, nil
}

// SerializeStats serializes basic stats (Attack, Defense, MagicPower as float64).
func (s *ComponentSerializer) SerializeStats(attack, defense, magicPower float64) []byte {
	buf := make([]byte, 24)
	binary.LittleEndian.PutUint64(buf[0:8], math.Float64bits(attack))
	binary.LittleEndian.PutUint64(buf[8:16], math.Float64bits(defense))
	binary.LittleEndian.PutUint64(buf[16:24], math.Float64bits(magicPower))
	return buf
}

// DeserializeStats deserializes basic stats.
func (s *ComponentSerializer) DeserializeStats(data []byte) (attack, defense, magicPower float64, err error) {
	if len(data) != 24 {
		return 0, 0, 0, fmt.Errorf("invalid stats data length: %d (expected 24): %w", len(data), apperr.ErrProtocol)
	}
	attack = math.Float64frombits(binary.LittleEndian.Uint64(data[0:8]))
	defense = math.Float64frombits(binary.LittleEndian.Uint64(data[8:16]))
	magicPower = math.Float64frombits(binary.LittleEndian.Uint64(data[16:24]))
	return attack, defense, magicPower, nil
}

// SerializeTeam serializes a team component (TeamID as uint64).
func (s *ComponentSerializer) SerializeTeam(teamID uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, teamID)
	return buf
}

// DeserializeTeam deserializes a team component.
func (s *ComponentSerializer) DeserializeTeam(data []byte) (teamID uint64, err error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("invalid team data length: %d (expected 8): %w", len(data), apperr.ErrProtocol)
	}
	teamID = binary.LittleEndian.Uint64(data)
	return teamID, nil
}

// SerializeLevel serializes a level component (Level, XP as uint32).
func (s *ComponentSerializer) SerializeLevel(level, xp uint32) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], level)
	binary.LittleEndian.PutUint32(buf[4:8], xp)
	return buf
}

// DeserializeLevel deserializes a level component.
func (s *ComponentSerializer) DeserializeLevel(data []byte) (level, xp uint32, err error) {
	if len(data) != 8 {
		return 0, 0, fmt.Errorf("invalid level data length: %d (expected 8): %w", len(data), apperr.ErrProtocol)
	}
	level = binary.LittleEndian.Uint32(data[0:4])
	xp = binary.LittleEndian.Uint32(data[4:8])
	return level, xp, nil
}

// SerializeInput serializes movement input (DX, DY as int8).
func (s *ComponentSerializer) SerializeInput(dx, dy int8) []byte {
	return []byte{byte(dx), byte(dy)}
}

// DeserializeInput deserializes movement input.
func (s *ComponentSerializer) DeserializeInput(data []byte) (dx, dy int8, err error) {
	if len(data) != 2 {
		return 0, 0, fmt.Errorf("invalid input data length: %d (expected 2): %w", len(data), apperr.ErrProtocol)
	}
	dx = int8(data[0])
	dy = int8(data[1])
	return dx, dy, nil
}

// SerializeAttack serializes attack command (TargetID as uint64).
func (s *ComponentSerializer) SerializeAttack(targetID uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, targetID)
	return buf
}

// DeserializeAttack deserializes attack command.
func (s *ComponentSerializer) DeserializeAttack(data []byte) (targetID uint64, err error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("invalid attack data length: %d (expected 8): %w", len(data), apperr.ErrProtocol)
	}
	targetID = binary.LittleEndian.Uint64(data)
	return targetID, nil
}

// facingQuantum maps the (-pi, pi] radian range onto int16, giving better
// than 0.0001-radian resolution - plenty for animation/aim reconciliation,
// at a quarter the size of a float64.
const facingQuantum = math.MaxInt16 / math.Pi

// SerializeFacing quantizes a radian facing angle to a 2-byte wire value.
func (s *ComponentSerializer) SerializeFacing(facing float64) []byte {
	q := int16(facing * facingQuantum)
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, uint16(q))
	return buf
}

// DeserializeFacing recovers a radian facing angle from its quantized form.
func (s *ComponentSerializer) DeserializeFacing(data []byte) (facing float64, err error) {
	if len(data) != 2 {
		return 0, fmt.Errorf("invalid facing data length: %d (expected 2): %w", len(data), apperr.ErrProtocol)
	}
	q := int16(binary.LittleEndian.Uint16(data))
	return float64(q) / facingQuantum, nil
}

// SerializePlayerCritical packs the always-sent player critical fields
// (§4.8) a client needs to render health, bonuses, and ability gating even
// when nothing else about the player changed this tick.
func (s *ComponentSerializer) SerializePlayerCritical(class string, level int, armorHP, moveSpeedBonus, attackRecoveryBonus, attackCooldownBonus, damageBonus float64, isInvulnerable, rollUnlocked bool) []byte {
	buf := new(bytes.Buffer)
	classBytes := []byte(class)
	binary.Write(buf, binary.LittleEndian, uint16(len(classBytes)))
	buf.Write(classBytes)
	binary.Write(buf, binary.LittleEndian, uint32(level))
	binary.Write(buf, binary.LittleEndian, math.Float64bits(armorHP))
	binary.Write(buf, binary.LittleEndian, math.Float64bits(moveSpeedBonus))
	binary.Write(buf, binary.LittleEndian, math.Float64bits(attackRecoveryBonus))
	binary.Write(buf, binary.LittleEndian, math.Float64bits(attackCooldownBonus))
	binary.Write(buf, binary.LittleEndian, math.Float64bits(damageBonus))
	buf.WriteByte(boolByte(isInvulnerable))
	buf.WriteByte(boolByte(rollUnlocked))
	return buf.Bytes()
}

// DeserializePlayerCritical unpacks a SerializePlayerCritical payload.
func (s *ComponentSerializer) DeserializePlayerCritical(data []byte) (class string, level int, armorHP, moveSpeedBonus, attackRecoveryBonus, attackCooldownBonus, damageBonus float64, isInvulnerable, rollUnlocked bool, err error) {
	r := bytes.NewReader(data)
	var classLen uint16
	if err = binary.Read(r, binary.LittleEndian, &classLen); err != nil {
		return
	}
	classBytes := make([]byte, classLen)
	if _, err = r.Read(classBytes); err != nil {
		return
	}
	class = string(classBytes)

	var levelU32 uint32
	var armorBits, moveBits, recoveryBits, cooldownBits, damageBits uint64
	if err = binary.Read(r, binary.LittleEndian, &levelU32); err != nil {
		return
	}
	if err = binary.Read(r, binary.LittleEndian, &armorBits); err != nil {
		return
	}
	if err = binary.Read(r, binary.LittleEndian, &moveBits); err != nil {
		return
	}
	if err = binary.Read(r, binary.LittleEndian, &recoveryBits); err != nil {
		return
	}
	if err = binary.Read(r, binary.LittleEndian, &cooldownBits); err != nil {
		return
	}
	if err = binary.Read(r, binary.LittleEndian, &damageBits); err != nil {
		return
	}
	invByte, err := r.ReadByte()
	if err != nil {
		return
	}
	rollByte, err := r.ReadByte()
	if err != nil {
		return
	}

	level = int(levelU32)
	armorHP = math.Float64frombits(armorBits)
	moveSpeedBonus = math.Float64frombits(moveBits)
	attackRecoveryBonus = math.Float64frombits(recoveryBits)
	attackCooldownBonus = math.Float64frombits(cooldownBits)
	damageBonus = math.Float64frombits(damageBits)
	isInvulnerable = invByte != 0
	rollUnlocked = rollByte != 0
	return
}

// SerializeMonsterCritical packs the always-sent monster critical fields:
// its opaque type tag and the current attack-FSM slot it's animating.
func (s *ComponentSerializer) SerializeMonsterCritical(monsterType, state, currentAttackType, attackPhase string) []byte {
	buf := new(bytes.Buffer)
	for _, field := range []string{monsterType, state, currentAttackType, attackPhase} {
		b := []byte(field)
		binary.Write(buf, binary.LittleEndian, uint16(len(b)))
		buf.Write(b)
	}
	return buf.Bytes()
}

// DeserializeMonsterCritical unpacks a SerializeMonsterCritical payload.
func (s *ComponentSerializer) DeserializeMonsterCritical(data []byte) (monsterType, state, currentAttackType, attackPhase string, err error) {
	r := bytes.NewReader(data)
	fields := make([]string, 4)
	for i := range fields {
		var l uint16
		if err = binary.Read(r, binary.LittleEndian, &l); err != nil {
			return
		}
		b := make([]byte, l)
		if _, err = r.Read(b); err != nil {
			return
		}
		fields[i] = string(b)
	}
	return fields[0], fields[1], fields[2], fields[3], nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// SerializeItem serializes item usage (ItemID as uint64).
func (s *ComponentSerializer) SerializeItem(itemID uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, itemID)
	return buf
}

// DeserializeItem deserializes item usage.
func (s *ComponentSerializer) DeserializeItem(data []byte) (itemID uint64, err error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("invalid item data length: %d (expected 8): %w", len(data), apperr.ErrProtocol)
	}
	itemID = binary.LittleEndian.Uint64(data)
	return itemID, nil
}
