// Package network provides wire encoding for the death/revival event
// messages broadcast over a StateUpdate's reserved component types, the
// same pattern used for __removed and __kicked.
package network

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/opd-ai/shardkeep/pkg/apperr"
)

// reservedDeathComponentType marks a StateUpdate carrying a DeathMessage.
const reservedDeathComponentType = "__death"

// reservedRevivalComponentType marks a StateUpdate carrying a RevivalMessage.
const reservedRevivalComponentType = "__revival"

// EncodeDeathMessage serializes a DeathMessage for the __death reserved
// component.
func EncodeDeathMessage(msg *DeathMessage) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, msg.EntityID)
	binary.Write(buf, binary.LittleEndian, math.Float64bits(msg.TimeOfDeath))
	binary.Write(buf, binary.LittleEndian, msg.KillerID)
	binary.Write(buf, binary.LittleEndian, uint32(len(msg.DroppedItemIDs)))
	for _, id := range msg.DroppedItemIDs {
		binary.Write(buf, binary.LittleEndian, id)
	}
	binary.Write(buf, binary.LittleEndian, msg.SequenceNumber)
	return buf.Bytes()
}

// DecodeDeathMessage deserializes a DeathMessage from its wire form.
func DecodeDeathMessage(data []byte) (*DeathMessage, error) {
	if len(data) < 24 {
		return nil, fmt.Errorf("data too short for death message: %d bytes: %w", len(data), apperr.ErrProtocol)
	}
	r := bytes.NewReader(data)
	msg := &DeathMessage{}
	var timeBits uint64
	var dropCount uint32
	if err := binary.Read(r, binary.LittleEndian, &msg.EntityID); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &timeBits); err != nil {
		return nil, err
	}
	msg.TimeOfDeath = math.Float64frombits(timeBits)
	if err := binary.Read(r, binary.LittleEndian, &msg.KillerID); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &dropCount); err != nil {
		return nil, err
	}
	msg.DroppedItemIDs = make([]uint64, dropCount)
	for i := range msg.DroppedItemIDs {
		if err := binary.Read(r, binary.LittleEndian, &msg.DroppedItemIDs[i]); err != nil {
			return nil, err
		}
	}
	if err := binary.Read(r, binary.LittleEndian, &msg.SequenceNumber); err != nil {
		return nil, err
	}
	return msg, nil
}

// EncodeRevivalMessage serializes a RevivalMessage for the __revival
// reserved component.
func EncodeRevivalMessage(msg *RevivalMessage) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, msg.EntityID)
	binary.Write(buf, binary.LittleEndian, msg.ReviverID)
	binary.Write(buf, binary.LittleEndian, math.Float64bits(msg.TimeOfRevival))
	binary.Write(buf, binary.LittleEndian, math.Float64bits(msg.RestoredHealth))
	binary.Write(buf, binary.LittleEndian, msg.SequenceNumber)
	return buf.Bytes()
}

// DecodeRevivalMessage deserializes a RevivalMessage from its wire form.
func DecodeRevivalMessage(data []byte) (*RevivalMessage, error) {
	if len(data) != 36 {
		return nil, fmt.Errorf("invalid revival message length: %d (expected 36): %w", len(data), apperr.ErrProtocol)
	}
	r := bytes.NewReader(data)
	msg := &RevivalMessage{}
	var timeBits, healthBits uint64
	if err := binary.Read(r, binary.LittleEndian, &msg.EntityID); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &msg.ReviverID); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &timeBits); err != nil {
		return nil, err
	}
	msg.TimeOfRevival = math.Float64frombits(timeBits)
	if err := binary.Read(r, binary.LittleEndian, &healthBits); err != nil {
		return nil, err
	}
	msg.RestoredHealth = math.Float64frombits(healthBits)
	if err := binary.Read(r, binary.LittleEndian, &msg.SequenceNumber); err != nil {
		return nil, err
	}
	return msg, nil
}

// BroadcastDeath sends a death event to every connected client, bypassing
// AOI limits as required for one-shot events involving the dying entity.
func (s *Server) BroadcastDeath(msg *DeathMessage) {
	s.BroadcastStateUpdate(&StateUpdate{
		EntityID:   msg.EntityID,
		Priority:   255,
		Components: []ComponentData{{Type: reservedDeathComponentType, Data: EncodeDeathMessage(msg)}},
	})
}

// BroadcastRevival sends a revival event to every connected client.
func (s *Server) BroadcastRevival(msg *RevivalMessage) {
	s.BroadcastStateUpdate(&StateUpdate{
		EntityID:   msg.EntityID,
		Priority:   255,
		Components: []ComponentData{{Type: reservedRevivalComponentType, Data: EncodeRevivalMessage(msg)}},
	})
}
