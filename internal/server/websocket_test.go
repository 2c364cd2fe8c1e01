package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/benbeisheim/kingchess-backend/internal/config"
	"github.com/benbeisheim/kingchess-backend/internal/model"
	"github.com/benbeisheim/kingchess-backend/internal/service"
	"github.com/benbeisheim/kingchess-backend/internal/ws"
	wsclient "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

// listen serves a fresh app on a loopback port.
func listen(t *testing.T) (*fiber.App, *service.GameManager, string) {
	t.Helper()
	gm := service.NewGameManager(time.Minute)
	app := New(config.Default(), service.NewGameService(gm))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go app.Listener(ln)
	t.Cleanup(func() { _ = app.ShutdownWithTimeout(time.Second) })
	return app, gm, ln.Addr().String()
}

func dial(t *testing.T, addr, path, playerID string) *wsclient.Conn {
	t.Helper()
	header := http.Header{}
	header.Set("Origin", config.DefaultAllowedOrigins)
	header.Set("X-Player-ID", playerID)

	conn, _, err := wsclient.DefaultDialer.Dial("ws://"+addr+path, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readType skips frames until one of type want arrives.
func readType(t *testing.T, conn *wsclient.Conn, want ws.MessageType) ws.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var msg ws.Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == want {
			return msg
		}
	}
}

// readState skips snapshots until one with the given version arrives.
func readState(t *testing.T, conn *wsclient.Conn, version uint64) model.RoomState {
	t.Helper()
	for {
		msg := readType(t, conn, ws.MessageTypeGameState)
		var state model.RoomState
		require.NoError(t, json.Unmarshal(msg.Payload, &state))
		if state.Version == version {
			return state
		}
		require.Less(t, state.Version, version, "state jumped past version %d", version)
	}
}

func readError(t *testing.T, conn *wsclient.Conn) string {
	t.Helper()
	var payload ws.ErrorPayload
	require.NoError(t, json.Unmarshal(readType(t, conn, ws.MessageTypeError).Payload, &payload))
	return payload.Error
}

func send(t *testing.T, conn *wsclient.Conn, msgType ws.MessageType, payload string) {
	t.Helper()
	msg := ws.Message{Type: msgType}
	if payload != "" {
		msg.Payload = json.RawMessage(payload)
	}
	require.NoError(t, conn.WriteJSON(msg))
}

func TestWebsocketGameBroadcastsMoves(t *testing.T) {
	app, _, addr := listen(t)
	gameID := createSeatedGame(t, app)

	alice := dial(t, addr, "/ws/game/"+gameID, "alice")
	initial := readState(t, alice, 0)
	require.Equal(t, "alice", initial.Players.White.ID)
	require.Equal(t, "bob", initial.Players.Black.ID)
	bob := dial(t, addr, "/ws/game/"+gameID, "bob")
	readState(t, bob, 0)

	send(t, alice, ws.MessageTypeMove, `{"from":"e2","to":"e4"}`)
	for _, conn := range []*wsclient.Conn{alice, bob} {
		state := readState(t, conn, 1)
		require.Equal(t, []string{"e2e4"}, state.MoveHistory)
		require.Equal(t, model.Black, state.ToMove)
		require.Equal(t, "move", state.Sound)
	}

	send(t, alice, ws.MessageTypeMove, `{"from":"d2","to":"d4"}`)
	require.Equal(t, model.ErrNotYourTurn.Error(), readError(t, alice))

	send(t, bob, ws.MessageTypeReset, "")
	state := readState(t, alice, 2)
	require.Empty(t, state.MoveHistory)
	require.Equal(t, model.White, state.ToMove)
}

func TestWebsocketUnknownMessageGetsError(t *testing.T) {
	app, _, addr := listen(t)
	gameID := createSeatedGame(t, app)

	bob := dial(t, addr, "/ws/game/"+gameID, "bob")
	readState(t, bob, 0)

	send(t, bob, "bogus", "")
	require.Contains(t, readError(t, bob), "unknown message type: bogus")

	// errors and broadcasts share one writer per room
	for i := 0; i < 20; i++ {
		send(t, bob, ws.MessageTypeReset, "")
		send(t, bob, "bogus", "")
	}
	readState(t, bob, 20)
}

func TestWebsocketSeatsSurviveOtherRequests(t *testing.T) {
	app, _, addr := listen(t)
	gameID := createSeatedGame(t, app)

	for i := 0; i < 3; i++ {
		code, _ := call(t, app, http.MethodPost, "/api/game/create", "zzzzz", "")
		require.Equal(t, http.StatusOK, code)
	}
	code, _ := call(t, app, http.MethodGet, "/api/game/"+gameID, "carol", "")
	require.Equal(t, http.StatusOK, code)

	alice := dial(t, addr, "/ws/game/"+gameID, "alice")
	state := readState(t, alice, 0)
	require.Equal(t, "alice", state.Players.White.ID)
	require.Equal(t, "bob", state.Players.Black.ID)

	send(t, alice, ws.MessageTypeMove, `{"from":"g1","to":"f3"}`)
	require.Equal(t, []string{"g1f3"}, readState(t, alice, 1).MoveHistory)
}

func TestWebsocketMatchmaking(t *testing.T) {
	_, gm, addr := listen(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go gm.RunMatchmaking(ctx, 10*time.Millisecond)

	players := []string{"pawnstorm", "fianchetto"}
	events := make(map[string]model.MatchFoundEvent)
	conns := make(map[string]*wsclient.Conn)
	for _, player := range players {
		conns[player] = dial(t, addr, "/ws/matchmaking", player)
	}
	for _, player := range players {
		var event model.MatchFoundEvent
		require.NoError(t, json.Unmarshal(readType(t, conns[player], ws.MessageTypeMatchFound).Payload, &event))
		events[player] = event
	}

	first, second := events[players[0]], events[players[1]]
	require.NotEmpty(t, first.GameID)
	require.Equal(t, first.GameID, second.GameID)
	require.ElementsMatch(t, []model.Side{model.White, model.Black}, []model.Side{first.Color, second.Color})

	// the queued ids still identify the players once they join the room
	conn := dial(t, addr, "/ws/game/"+first.GameID, players[0])
	state := readState(t, conn, 0)
	seated := map[model.Side]string{
		model.White: state.Players.White.ID,
		model.Black: state.Players.Black.ID,
	}
	require.Equal(t, players[0], seated[first.Color])
	require.Equal(t, players[1], seated[second.Color])
}
