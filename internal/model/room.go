package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/kingchess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog/log"
)

var (
	ErrRoomFull  = errors.New("game is full")
	ErrNotSeated = errors.New("player not in game")
	ErrNoAccess  = errors.New("not authorized to join this game")
)

// RoomConnections are the websocket observers of one room, keyed by player id.
type RoomConnections struct {
	connections map[string]*websocket.Conn
	mu          sync.RWMutex
}

func NewRoomConnections() *RoomConnections {
	return &RoomConnections{
		connections: make(map[string]*websocket.Conn),
	}
}

// Room seats two players at one Game and fans its state out to observers.
// All access to the game goes through mu, so a room has at most one mutation
// in flight.
type Room struct {
	ID          string
	mu          sync.Mutex
	game        *Game
	white       string
	black       string
	sound       string
	lastMove    *Move
	connections *RoomConnections
	version     uint64
	sendMu      sync.Mutex // guards every websocket write and sentVersion
	sentVersion uint64
	whiteClock  *Clock
	blackClock  *Clock
}

// RoomState is a snapshot of a room. Version grows with every applied move
// or reset, so clients can order snapshots.
type RoomState struct {
	Version     uint64   `json:"version"`
	Sound       string   `json:"sound"`
	Board       Board    `json:"board"`
	ToMove      Side     `json:"toMove"`
	Status      Status   `json:"status"`
	MoveHistory []string `json:"moveHistory"`
	LastMove    *Move    `json:"lastMove"`
	Players     struct {
		White ClientPlayer `json:"white"`
		Black ClientPlayer `json:"black"`
	} `json:"players"`
}

type MatchFoundEvent struct {
	GameID string `json:"gameId"`
	Color  Side   `json:"color"`
}

func NewRoom(id string, clockTime time.Duration) *Room {
	return &Room{
		ID:          id,
		game:        NewGame(),
		connections: NewRoomConnections(),
		whiteClock:  NewClock(clockTime),
		blackClock:  NewClock(clockTime),
	}
}

// AddPlayer seats playerID on the first free side. A player already seated
// gets their existing side back.
func (r *Room) AddPlayer(playerID string) (Side, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if side := r.seatOf(playerID); side != "" {
		return side, nil
	}
	if r.white == "" {
		r.white = playerID
		return White, nil
	}
	if r.black == "" {
		r.black = playerID
		return Black, nil
	}
	return "", ErrRoomFull
}

func (r *Room) seatOf(playerID string) Side {
	switch {
	case playerID == "":
		return ""
	case r.white == playerID:
		return White
	case r.black == playerID:
		return Black
	}
	return ""
}

func (r *Room) IsPlayerInGame(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.seatOf(playerID) != ""
}

// HasOpenSeat reports whether a side is still free. While it is, anyone may
// watch the room; once both seats are taken only the players may connect.
func (r *Room) HasOpenSeat() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.hasOpenSeat()
}

func (r *Room) hasOpenSeat() bool {
	return r.white == "" || r.black == ""
}

func (r *Room) GetState() RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.snapshot()
}

func (r *Room) snapshot() RoomState {
	state := RoomState{
		Version:     r.version,
		Sound:       r.sound,
		Board:       r.game.Board(),
		ToMove:      r.game.CurrentPlayer(),
		Status:      r.game.Status(),
		MoveHistory: make([]string, 0),
	}
	for _, m := range r.game.History() {
		state.MoveHistory = append(state.MoveHistory, m.String())
	}
	if r.lastMove != nil {
		last := *r.lastMove
		state.LastMove = &last
	}
	state.Players.White = ClientPlayer{ID: r.white, Color: White, TimeLeft: r.whiteClock.Tenths()}
	state.Players.Black = ClientPlayer{ID: r.black, Color: Black, TimeLeft: r.blackClock.Tenths()}
	return state
}

// LegalMoves lists destinations for the piece on from in the current position.
func (r *Room) LegalMoves(from Square) []Square {
	r.mu.Lock()
	defer r.mu.Unlock()

	board := r.game.Board()
	return LegalMoves(&board, from)
}

func (r *Room) MakeMove(playerID string, move Move) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	side := r.seatOf(playerID)
	if side == "" {
		return ErrNotSeated
	}
	if side != r.game.CurrentPlayer() {
		return ErrNotYourTurn
	}

	board := r.game.Board()
	captured := PieceAt(&board, move.To)
	if err := r.game.MakeMove(move); err != nil {
		log.Debug().Str("game", r.ID).Str("player", playerID).Stringer("move", move).Err(err).Msg("move rejected")
		return err
	}
	log.Info().Str("game", r.ID).Str("side", string(side)).Stringer("move", move).Msg("move applied")

	r.sound = "move"
	if captured != nil {
		r.sound = "capture"
	}
	r.lastMove = &move

	r.clockFor(side).Stop()
	if status := r.game.Status(); status.IsOver {
		r.sound = "gameOver"
		log.Info().Str("game", r.ID).Str("winner", string(*status.Winner)).Msg("king captured")
	} else {
		r.clockFor(side.Opponent()).Start()
	}

	r.version++
	go r.broadcastState(r.snapshot())
	return nil
}

// Reset restores the starting position. Only seated players may reset.
func (r *Room) Reset(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seatOf(playerID) == "" {
		return ErrNotSeated
	}
	r.game.Reset()
	r.whiteClock.Reset()
	r.blackClock.Reset()
	r.sound = ""
	r.lastMove = nil
	log.Info().Str("game", r.ID).Str("player", playerID).Msg("game reset")

	r.version++
	go r.broadcastState(r.snapshot())
	return nil
}

func (r *Room) clockFor(side Side) *Clock {
	if side == White {
		return r.whiteClock
	}
	return r.blackClock
}

func (r *Room) RegisterConnection(playerID string, conn *websocket.Conn) error {
	connID := fmt.Sprintf("%p", conn)

	r.mu.Lock()
	isAuthorized := r.seatOf(playerID) != "" || r.hasOpenSeat()
	r.mu.Unlock()

	if !isAuthorized {
		return ErrNoAccess
	}

	r.connections.mu.Lock()
	if _, exists := r.connections.connections[playerID]; exists {
		// keep the healthy connection, reject the new one
		r.connections.mu.Unlock()
		r.sendMu.Lock()
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Connection already exists"),
		)
		r.sendMu.Unlock()
		conn.Close()
		return nil
	}
	r.connections.connections[playerID] = conn
	r.connections.mu.Unlock()
	log.Debug().Str("game", r.ID).Str("player", playerID).Str("conn", connID).Msg("registered connection")

	// The snapshot is taken under sendMu so no older broadcast can reach the
	// new connection after it.
	r.sendMu.Lock()
	defer r.sendMu.Unlock()
	r.mu.Lock()
	state := r.snapshot()
	r.mu.Unlock()
	if state.Version > r.sentVersion {
		r.sentVersion = state.Version
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := r.writeState(playerID, conn, payload); err != nil {
		log.Warn().Err(err).Str("game", r.ID).Str("player", playerID).Msg("failed to send initial state")
	}
	return nil
}

func (r *Room) UnregisterConnection(playerID string, conn *websocket.Conn) {
	r.connections.mu.Lock()
	defer r.connections.mu.Unlock()

	// Only unregister if this is still the current connection
	if current, exists := r.connections.connections[playerID]; exists && current == conn {
		delete(r.connections.connections, playerID)
		log.Debug().Str("game", r.ID).Str("player", playerID).Msg("unregistered connection")
	}
}

// Send writes msg to conn. Every write to a room's connections goes through
// sendMu, since a websocket allows only one writer at a time.
func (r *Room) Send(conn *websocket.Conn, msg ws.Message) error {
	r.sendMu.Lock()
	defer r.sendMu.Unlock()

	return conn.WriteJSON(msg)
}

// broadcastState sends state to every connection. A snapshot older than one
// already sent is dropped, so observers never see the game move backwards.
func (r *Room) broadcastState(state RoomState) {
	payload, err := json.Marshal(state)
	if err != nil {
		log.Error().Err(err).Str("game", r.ID).Msg("failed to marshal state")
		return
	}

	r.sendMu.Lock()
	defer r.sendMu.Unlock()

	if state.Version < r.sentVersion {
		log.Trace().Str("game", r.ID).Uint64("version", state.Version).Msg("dropping stale state")
		return
	}
	r.sentVersion = state.Version

	r.connections.mu.RLock()
	active := make(map[string]*websocket.Conn, len(r.connections.connections))
	for playerID, conn := range r.connections.connections {
		active[playerID] = conn
	}
	r.connections.mu.RUnlock()

	for playerID, conn := range active {
		if err := r.writeState(playerID, conn, payload); err != nil {
			log.Warn().Err(err).Str("game", r.ID).Str("player", playerID).Msg("failed to send state")
		}
	}
}

// writeState must be called with sendMu held. A connection that fails a
// write is dropped from the room.
func (r *Room) writeState(playerID string, conn *websocket.Conn, payload []byte) error {
	err := conn.WriteJSON(ws.Message{
		Type:    ws.MessageTypeGameState,
		Payload: json.RawMessage(payload),
	})
	if err != nil {
		r.connections.mu.Lock()
		if r.connections.connections[playerID] == conn {
			delete(r.connections.connections, playerID)
		}
		r.connections.mu.Unlock()
	}
	return err
}
