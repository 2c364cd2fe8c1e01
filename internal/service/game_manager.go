// service/game_manager.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/benbeisheim/kingchess-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

type GameManager struct {
	games            map[string]*model.Room
	queue            *model.Queue
	matchingChannels map[string]chan string
	clockTime        time.Duration
	mu               sync.RWMutex
}

func NewGameManager(clockTime time.Duration) *GameManager {
	return &GameManager{
		games:            make(map[string]*model.Room),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan string),
		clockTime:        clockTime,
	}
}

func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	log.Debug().Str("player", playerID).Msg("registering matchmaking channel")

	if existingCh, exists := gm.matchingChannels[playerID]; exists {
		// remove first so nothing else writes to it, then close
		delete(gm.matchingChannels, playerID)
		close(existingCh)
	}
	gm.matchingChannels[playerID] = ch
}

// UnregisterMatchmakingChannel forgets ch if it is still the channel
// registered for playerID. A newer socket's channel is left alone.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	// The creator of the channel is responsible for closing it
	if current, exists := gm.matchingChannels[playerID]; exists && current == ch {
		delete(gm.matchingChannels, playerID)
	}
}

// RunMatchmaking pairs queued players every interval until ctx is done.
func (gm *GameManager) RunMatchmaking(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for gm.matchOnce() {
			}
		}
	}
}

// matchOnce seats the two longest-waiting players in a new room. It reports
// whether a pair was found.
func (gm *GameManager) matchOnce() bool {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	player1, player2, ok := gm.queue.NextPair()
	if !ok {
		return false
	}

	gameID := uuid.New().String()
	room := model.NewRoom(gameID, gm.clockTime)
	p1Color, err := room.AddPlayer(player1.ID)
	if err != nil {
		log.Error().Err(err).Msg("error adding player to game")
		return true
	}
	p2Color, err := room.AddPlayer(player2.ID)
	if err != nil {
		log.Error().Err(err).Msg("error adding player to game")
		return true
	}
	gm.games[gameID] = room
	log.Info().Str("game", gameID).Str("white", player1.ID).Str("black", player2.ID).Msg("match found")

	gm.notifyMatch(player1.ID, model.MatchFoundEvent{GameID: gameID, Color: p1Color})
	gm.notifyMatch(player2.ID, model.MatchFoundEvent{GameID: gameID, Color: p2Color})
	return true
}

func (gm *GameManager) notifyMatch(playerID string, event model.MatchFoundEvent) {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		log.Warn().Str("player", playerID).Msg("no matchmaking channel registered")
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal match event")
		return
	}
	select {
	case ch <- string(payload):
		delete(gm.matchingChannels, playerID)
		close(ch)
	default:
		log.Warn().Str("player", playerID).Msg("failed to send match event")
	}
}

func (gm *GameManager) CreateGame(gameID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return ErrGameExists
	}
	gm.games[gameID] = model.NewRoom(gameID, gm.clockTime)
	return nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Room, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	room, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}
	return room, nil
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	return gm.queue.AddPlayer(model.Player{ID: playerID})
}

func (gm *GameManager) LeaveMatchmaking(playerID string) {
	gm.queue.Remove(playerID)
}
