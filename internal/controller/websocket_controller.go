package controller

import (
	"encoding/json"
	"fmt"

	"github.com/benbeisheim/kingchess-backend/internal/model"
	"github.com/benbeisheim/kingchess-backend/internal/service"
	"github.com/benbeisheim/kingchess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog/log"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID := c.Locals("playerID").(string)

	if err := wsc.gameService.RegisterConnection(gameID, playerID, c); err != nil {
		log.Warn().Err(err).Str("game", gameID).Str("player", playerID).Msg("failed to register connection")
		c.Close()
		return
	}

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Str("game", gameID).Str("player", playerID).Msg("read error")
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Debug().Err(err).Msg("parse error")
			continue
		}
		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			log.Debug().Err(err).Str("game", gameID).Str("type", string(msg.Type)).Msg("handle error")
			wsc.sendError(gameID, c, err)
		}
	}

	wsc.gameService.UnregisterConnection(gameID, playerID, c)
}

// HandleMatchmaking queues the player and holds the socket open until a match
// is found or the client goes away.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID := c.Locals("playerID").(string)

	ch := make(chan string, 1)
	wsc.gameService.RegisterMatchmakingChannel(playerID, ch)
	if err := wsc.gameService.JoinMatchmaking(playerID); err != nil {
		wsc.gameService.UnregisterMatchmakingChannel(playerID, ch)
		// no reader or notifier has the socket yet, so this is its only writer
		c.WriteJSON(ws.NewError(err))
		c.Close()
		return
	}

	closed := make(chan struct{})
	go func() {
		// reads only detect the client going away
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case event, ok := <-ch:
		if ok {
			c.WriteJSON(ws.Message{Type: ws.MessageTypeMatchFound, Payload: json.RawMessage(event)})
		}
	case <-closed:
		wsc.gameService.LeaveMatchmaking(playerID)
		wsc.gameService.UnregisterMatchmakingChannel(playerID, ch)
	}
	c.Close()
}

func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var nm model.NotationMove
		if err := json.Unmarshal(msg.Payload, &nm); err != nil {
			return err
		}
		move, err := nm.Move()
		if err != nil {
			return err
		}
		_, err = wsc.gameService.HandleMove(gameID, playerID, move)
		return err
	case ws.MessageTypeReset:
		_, err := wsc.gameService.ResetGame(gameID, playerID)
		return err
	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// sendError goes through the room so it cannot interleave with broadcasts.
func (wsc *WebSocketController) sendError(gameID string, c *websocket.Conn, err error) {
	if werr := wsc.gameService.Send(gameID, c, ws.NewError(err)); werr != nil {
		log.Debug().Err(werr).Msg("failed to send error")
	}
}
