// Package network provides reconnect-token tracking for dropped connections.
// This file implements ConnectionRegistry, which lets a player who loses
// their WebSocket mid-session resume against the same entity instead of
// being treated as a brand new join.
package network

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/opd-ai/shardkeep/pkg/apperr"
)

// ConnectionRegistry issues and redeems single-use reconnect tokens for
// players whose transport connection drops without an explicit leave. Each
// player holds at most one live token at a time; issuing a new one revokes
// the last.
type ConnectionRegistry struct {
	mu        sync.Mutex
	tokenToID map[string]uint64
	idToToken map[uint64]string
}

// NewConnectionRegistry creates an empty registry.
func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		tokenToID: make(map[string]uint64),
		idToToken: make(map[uint64]string),
	}
}

// IssueToken mints a fresh reconnect token for playerID, revoking any token
// previously issued to that player.
func (r *ConnectionRegistry) IssueToken(playerID uint64) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reconnect token: %w: %w", err, apperr.ErrInternal)
	}
	token := hex.EncodeToString(buf)

	r.mu.Lock()
	if old, ok := r.idToToken[playerID]; ok {
		delete(r.tokenToID, old)
	}
	r.tokenToID[token] = playerID
	r.idToToken[playerID] = token
	r.mu.Unlock()

	return token, nil
}

// Redeem consumes a reconnect token and returns the player ID it was issued
// for, if it still exists. Tokens are single-use: a repeated Redeem call
// with the same token fails even if the first call succeeded moments ago.
func (r *ConnectionRegistry) Redeem(token string) (uint64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	playerID, ok := r.tokenToID[token]
	if !ok {
		return 0, false
	}
	delete(r.tokenToID, token)
	if r.idToToken[playerID] == token {
		delete(r.idToToken, playerID)
	}
	return playerID, true
}

// Revoke removes any outstanding token for playerID, called once a player's
// reconnect window has lapsed for good.
func (r *ConnectionRegistry) Revoke(playerID uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token, ok := r.idToToken[playerID]; ok {
		delete(r.tokenToID, token)
		delete(r.idToToken, playerID)
	}
}
