// Package network provides multiplayer server functionality.
// This file implements Server which handles authoritative game state,
// client connections, and state synchronization for multiplayer games
// over WebSocket transport.
package network

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/opd-ai/shardkeep/pkg/apperr"
)

// ReconnectTokenTTL is how long a dropped connection's slot is held open
// for the client to resume before the player entity is torn down.
const ReconnectTokenTTL = 30 * time.Second

// reconnectTokenComponentType marks the reserved StateUpdate sent to a
// client immediately after connecting, carrying the token it should present
// on the "token" query parameter to resume this player slot after a drop.
const reconnectTokenComponentType = "__reconnect_token"

// ServerConfig holds configuration for the network server.
type ServerConfig struct {
	Address      string        // Listen address (host:port)
	MaxPlayers   int           // Maximum number of concurrent players
	ReadTimeout  time.Duration // Timeout for reading from clients
	WriteTimeout time.Duration // Timeout for writing to clients
	UpdateRate   int           // State updates per second
	BufferSize   int           // Size of send/receive buffers per client

	// AllowedOrigins lists CORS/WebSocket origins permitted to connect.
	// Empty means allow any origin, which fits non-browser game clients
	// that never send an Origin header.
	AllowedOrigins []string
}

// DefaultServerConfig returns a server configuration with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Address:      ":8080",
		MaxPlayers:   32,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Second,
		UpdateRate:   20, // 20 updates/second
		BufferSize:   256,
	}
}

// Server handles server-side networking for multiplayer.
type Server struct {
	config   ServerConfig
	protocol Protocol

	httpServer *http.Server
	upgrader   websocket.Upgrader
	running    bool

	// Client management
	clients      map[uint64]*clientConnection
	clientsMu    sync.RWMutex
	nextPlayerID uint64

	registry    *ConnectionRegistry
	rateLimiter *ConnectionRateLimiter

	// Channels for game logic
	inputCommands chan *InputCommand
	playerJoins   chan uint64 // Player connection events
	playerLeaves  chan uint64 // Player disconnection events
	errors        chan error

	// Shutdown
	done chan struct{}
	wg   sync.WaitGroup

	// State tracking
	stateSeq uint32
	stateMu  sync.Mutex
}

// clientConnection represents a connected client.
type clientConnection struct {
	playerID   uint64
	wsConn     *websocket.Conn
	address    string
	connected  bool
	lastActive time.Time

	// closeCh is closed when this connection's transport drops, signaling
	// its send goroutine to stop. A reconnect under the same playerID gets
	// a fresh closeCh and a fresh pair of receive/send goroutines.
	closeCh chan struct{}

	// Channels
	stateUpdates chan *StateUpdate

	// Thread safety
	mu      sync.RWMutex
	writeMu sync.Mutex
}

// NewServer creates a new network server.
func NewServer(config ServerConfig) *Server {
	return &Server{
		config:        config,
		protocol:      NewBinaryProtocol(),
		clients:       make(map[uint64]*clientConnection),
		nextPlayerID:  1,
		registry:      NewConnectionRegistry(),
		rateLimiter:   NewConnectionRateLimiter(DefaultRateLimitConfig()),
		inputCommands: make(chan *InputCommand, config.BufferSize*config.MaxPlayers),
		playerJoins:   make(chan uint64, config.MaxPlayers),
		playerLeaves:  make(chan uint64, config.MaxPlayers),
		errors:        make(chan error, 64),
		done:          make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

// Start begins listening for client connections.
func (s *Server) Start() error {
	s.clientsMu.Lock()
	if s.running {
		s.clientsMu.Unlock()
		return fmt.Errorf("server already running: %w", apperr.ErrStateConflict)
	}
	s.running = true
	s.clientsMu.Unlock()

	s.upgrader.CheckOrigin = s.checkOrigin

	s.httpServer = &http.Server{
		Addr:         s.config.Address,
		Handler:      s.newRouter(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: 0, // WebSocket connections are long-lived
	}

	listenErrCh := make(chan error, 1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case listenErrCh <- err:
			default:
				s.errors <- fmt.Errorf("http server error: %w", err)
			}
		}
	}()

	// Give ListenAndServe a moment to fail fast on a bad bind address.
	select {
	case err := <-listenErrCh:
		s.clientsMu.Lock()
		s.running = false
		s.clientsMu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w: %w", s.config.Address, err, apperr.ErrTransport)
	case <-time.After(50 * time.Millisecond):
	}

	return nil
}

// checkOrigin validates the WebSocket handshake's Origin header against the
// configured allow-list. An empty configured list accepts any origin,
// including connections with no Origin header (typical for native clients).
func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.config.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.config.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	RecordConnectionRejected("origin")
	return false
}

// Stop shuts down the server.
func (s *Server) Stop() error {
	s.clientsMu.Lock()
	if !s.running {
		s.clientsMu.Unlock()
		return nil
	}
	s.running = false
	close(s.done)

	for _, client := range s.clients {
		client.disconnect()
	}
	s.clientsMu.Unlock()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.WriteTimeout+2*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}

	s.rateLimiter.Stop()
	s.wg.Wait()

	return nil
}

// IsRunning returns whether the server is running.
func (s *Server) IsRunning() bool {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return s.running
}

// GetPlayerCount returns the number of connected players.
func (s *Server) GetPlayerCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// GetPlayers returns a list of connected player IDs.
func (s *Server) GetPlayers() []uint64 {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	players := make([]uint64, 0, len(s.clients))
	for playerID := range s.clients {
		players = append(players, playerID)
	}
	return players
}

// BroadcastStateUpdate sends a state update to all connected clients.
func (s *Server) BroadcastStateUpdate(update *StateUpdate) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	s.stateMu.Lock()
	update.SequenceNumber = s.stateSeq
	s.stateSeq++
	s.stateMu.Unlock()

	for _, client := range s.clients {
		client.sendStateUpdate(update)
	}
}

// SendStateUpdate sends a state update to a specific client.
func (s *Server) SendStateUpdate(playerID uint64, update *StateUpdate) error {
	s.clientsMu.RLock()
	client, exists := s.clients[playerID]
	s.clientsMu.RUnlock()

	if !exists {
		return fmt.Errorf("player %d not connected: %w", playerID, apperr.ErrStateConflict)
	}

	s.stateMu.Lock()
	update.SequenceNumber = s.stateSeq
	s.stateSeq++
	s.stateMu.Unlock()

	client.sendStateUpdate(update)
	return nil
}

// reservedKickedComponentType marks the reserved StateUpdate sent to a
// client immediately before the server closes its connection, carrying the
// kick reason so the client can show it instead of treating this as a
// dropped connection to reconnect from.
const reservedKickedComponentType = "__kicked"

// DisconnectPlayer terminates playerID's connection, best-effort notifying
// it of reason first. Returns false if the player was not connected.
func (s *Server) DisconnectPlayer(playerID uint64, reason string) bool {
	s.clientsMu.RLock()
	client, exists := s.clients[playerID]
	s.clientsMu.RUnlock()

	if !exists {
		return false
	}

	client.sendStateUpdate(&StateUpdate{
		EntityID:   playerID,
		Priority:   255,
		Components: []ComponentData{{Type: reservedKickedComponentType, Data: []byte(reason)}},
	})
	client.disconnect()
	return true
}

// ReceiveInputCommand returns a channel for receiving input commands from clients.
func (s *Server) ReceiveInputCommand() <-chan *InputCommand {
	return s.inputCommands
}

// ReceivePlayerJoin returns a channel for receiving player join events.
func (s *Server) ReceivePlayerJoin() <-chan uint64 {
	return s.playerJoins
}

// ReceivePlayerLeave returns a channel for receiving player leave events.
func (s *Server) ReceivePlayerLeave() <-chan uint64 {
	return s.playerLeaves
}

// ReceiveError returns a channel for receiving errors.
func (s *Server) ReceiveError() <-chan error {
	return s.errors
}

// handleWebSocket upgrades an incoming HTTP request to a WebSocket connection
// and either attaches it to a reconnecting player or creates a new one.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.clientsMu.RLock()
	playerCount := len(s.clients)
	s.clientsMu.RUnlock()

	if playerCount >= s.config.MaxPlayers {
		RecordConnectionRejected("capacity")
		http.Error(w, "server full", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.errors <- fmt.Errorf("websocket upgrade error: %w", err)
		return
	}

	client, isNewPlayer := s.attachConnection(conn, r.RemoteAddr, r.URL.Query().Get("token"))

	if isNewPlayer {
		select {
		case s.playerJoins <- client.playerID:
		case <-s.done:
			return
		default:
			s.errors <- fmt.Errorf("player join channel full, dropped event for player %d", client.playerID)
		}
	}

	if token, err := s.registry.IssueToken(client.playerID); err == nil {
		client.sendStateUpdate(&StateUpdate{
			EntityID: client.playerID,
			Components: []ComponentData{
				{Type: reconnectTokenComponentType, Data: []byte(token)},
			},
		})
	}

	closeCh := client.currentCloseCh()

	s.wg.Add(2)
	go s.handleClientReceive(client, conn, closeCh)
	go s.handleClientSend(client, conn, closeCh)

	SetConnectedPlayers(s.GetPlayerCount())
}

// attachConnection binds a freshly upgraded WebSocket to a client, reusing
// an existing player's slot if a valid reconnect token was presented.
// Returns the client and whether this is a brand-new player (vs. a resume).
func (s *Server) attachConnection(conn *websocket.Conn, remoteAddr, token string) (*clientConnection, bool) {
	if token != "" {
		if playerID, ok := s.registry.Redeem(token); ok {
			s.clientsMu.Lock()
			if existing, found := s.clients[playerID]; found {
				existing.mu.Lock()
				existing.wsConn = conn
				existing.address = remoteAddr
				existing.connected = true
				existing.lastActive = time.Now()
				existing.closeCh = make(chan struct{})
				existing.mu.Unlock()
				s.clientsMu.Unlock()
				return existing, false
			}
			s.clientsMu.Unlock()
		}
	}

	s.clientsMu.Lock()
	playerID := s.nextPlayerID
	s.nextPlayerID++

	client := &clientConnection{
		playerID:     playerID,
		wsConn:       conn,
		address:      remoteAddr,
		connected:    true,
		lastActive:   time.Now(),
		closeCh:      make(chan struct{}),
		stateUpdates: make(chan *StateUpdate, s.config.BufferSize),
	}
	s.clients[playerID] = client
	s.clientsMu.Unlock()

	return client, true
}

// handleClientReceive reads input commands from a client's WebSocket.
func (s *Server) handleClientReceive(client *clientConnection, conn *websocket.Conn, closeCh chan struct{}) {
	defer s.wg.Done()
	defer s.scheduleDisconnect(client, closeCh)

	conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		return nil
	})

	for {
		select {
		case <-s.done:
			return
		case <-closeCh:
			return
		default:
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			if s.IsRunning() && client.isConnected() {
				s.errors <- fmt.Errorf("player %d read error: %w", client.playerID, err)
			}
			return
		}

		client.mu.Lock()
		client.lastActive = time.Now()
		client.mu.Unlock()
		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		cmd, err := s.protocol.DecodeInputCommand(data)
		if err != nil {
			RecordInputDropped("decode_error")
			s.errors <- fmt.Errorf("player %d decode error: %w", client.playerID, err)
			continue
		}

		if !s.rateLimiter.Allow(client.playerID) {
			RecordInputDropped("rate_limit")
			continue
		}

		select {
		case s.inputCommands <- cmd:
			RecordInputCommand()
		case <-s.done:
			return
		default:
			RecordInputDropped("queue_full")
		}
	}
}

// handleClientSend writes queued state updates to a client's WebSocket.
func (s *Server) handleClientSend(client *clientConnection, conn *websocket.Conn, closeCh chan struct{}) {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return

		case <-closeCh:
			return

		case update, ok := <-client.stateUpdates:
			if !ok {
				return
			}

			data, err := s.protocol.EncodeStateUpdate(update)
			if err != nil {
				s.errors <- fmt.Errorf("player %d encode error: %w", client.playerID, err)
				continue
			}

			client.writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			err = conn.WriteMessage(websocket.BinaryMessage, data)
			client.writeMu.Unlock()

			if err != nil {
				if s.IsRunning() && client.isConnected() {
					s.errors <- fmt.Errorf("player %d write error: %w", client.playerID, err)
				}
				return
			}
			RecordStateUpdateSent()
		}
	}
}

// scheduleDisconnect marks a client's transport as dropped and gives it
// ReconnectTokenTTL to resume under the same player ID before the player is
// fully removed and downstream game logic is notified of the leave.
func (s *Server) scheduleDisconnect(client *clientConnection, staleCloseCh chan struct{}) {
	client.mu.Lock()
	if client.closeCh != staleCloseCh {
		// Already superseded by a reconnect; nothing to do.
		client.mu.Unlock()
		return
	}
	if !client.connected {
		client.mu.Unlock()
		return
	}
	client.connected = false
	if client.wsConn != nil {
		client.wsConn.Close()
	}
	close(client.closeCh)
	client.mu.Unlock()

	time.AfterFunc(ReconnectTokenTTL, func() {
		s.finalizeDisconnect(client, staleCloseCh)
	})
}

// finalizeDisconnect removes a client that never reconnected within its
// token's TTL, notifying game logic of the leave exactly once.
func (s *Server) finalizeDisconnect(client *clientConnection, staleCloseCh chan struct{}) {
	client.mu.Lock()
	supersededOrAlive := client.closeCh != staleCloseCh || client.connected
	client.mu.Unlock()
	if supersededOrAlive {
		return
	}

	s.clientsMu.Lock()
	current, exists := s.clients[client.playerID]
	if exists && current == client {
		delete(s.clients, client.playerID)
	}
	s.clientsMu.Unlock()

	if !exists || current != client {
		return
	}

	s.rateLimiter.Forget(client.playerID)
	s.registry.Revoke(client.playerID)

	select {
	case s.playerLeaves <- client.playerID:
	case <-s.done:
	default:
		s.errors <- fmt.Errorf("player leave channel full, dropped event for player %d", client.playerID)
	}

	SetConnectedPlayers(s.GetPlayerCount())
}

// clientConnection methods

func (c *clientConnection) currentCloseCh() chan struct{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closeCh
}

func (c *clientConnection) isConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *clientConnection) disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		c.connected = false
		if c.wsConn != nil {
			c.wsConn.Close()
		}
		if c.closeCh != nil {
			select {
			case <-c.closeCh:
			default:
				close(c.closeCh)
			}
		}
	}
}

func (c *clientConnection) sendStateUpdate(update *StateUpdate) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return
	}

	select {
	case c.stateUpdates <- update:
	default:
		// Drop if full (prioritize fresh updates)
	}
}
