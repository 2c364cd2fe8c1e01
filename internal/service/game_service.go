package service

import (
	"fmt"

	"github.com/benbeisheim/kingchess-backend/internal/model"
	"github.com/benbeisheim/kingchess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

func (gs *GameService) CreateGame() (string, error) {
	gameID := uuid.New().String()

	if err := gs.gameManager.CreateGame(gameID); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}
	log.Info().Str("game", gameID).Msg("game created")
	return gameID, nil
}

func (gs *GameService) JoinGame(gameID string, playerID string) (model.Side, error) {
	room, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return "", err
	}
	return room.AddPlayer(playerID)
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) LeaveMatchmaking(playerID string) {
	gs.gameManager.LeaveMatchmaking(playerID)
}

func (gs *GameService) GetGameState(gameID string) (model.RoomState, error) {
	room, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.RoomState{}, err
	}
	return room.GetState(), nil
}

func (gs *GameService) LegalMoves(gameID string, from model.Square) ([]model.Square, error) {
	room, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return room.LegalMoves(from), nil
}

func (gs *GameService) HandleMove(gameID string, playerID string, move model.Move) (model.RoomState, error) {
	room, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.RoomState{}, err
	}
	if err := room.MakeMove(playerID, move); err != nil {
		return room.GetState(), err
	}
	return room.GetState(), nil
}

func (gs *GameService) ResetGame(gameID string, playerID string) (model.RoomState, error) {
	room, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.RoomState{}, err
	}
	if err := room.Reset(playerID); err != nil {
		return model.RoomState{}, err
	}
	return room.GetState(), nil
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn *websocket.Conn) error {
	room, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	return room.RegisterConnection(playerID, conn)
}

// Send writes msg to a connection of gameID through the room's writer.
func (gs *GameService) Send(gameID string, conn *websocket.Conn, msg ws.Message) error {
	room, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	return room.Send(conn, msg)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn *websocket.Conn) {
	room, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return
	}
	room.UnregisterConnection(playerID, conn)
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID, ch)
}
