package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func seatedRoom(t *testing.T) *Room {
	t.Helper()
	room := NewRoom("room-1", time.Minute)
	side, err := room.AddPlayer("alice")
	require.NoError(t, err)
	require.Equal(t, White, side)
	side, err = room.AddPlayer("bob")
	require.NoError(t, err)
	require.Equal(t, Black, side)
	return room
}

func TestRoomSeating(t *testing.T) {
	room := NewRoom("room-1", time.Minute)
	require.True(t, room.HasOpenSeat())

	room = seatedRoom(t)
	side, err := room.AddPlayer("alice")
	require.NoError(t, err)
	require.Equal(t, White, side)

	_, err = room.AddPlayer("carol")
	require.ErrorIs(t, err, ErrRoomFull)
	require.True(t, room.IsPlayerInGame("bob"))
	require.False(t, room.IsPlayerInGame("carol"))
	require.False(t, room.HasOpenSeat())
}

func TestRoomMakeMove(t *testing.T) {
	room := seatedRoom(t)

	require.ErrorIs(t, room.MakeMove("carol", mv(6, 4, 4, 4)), ErrNotSeated)
	require.ErrorIs(t, room.MakeMove("bob", mv(1, 4, 3, 4)), ErrNotYourTurn)
	require.Error(t, room.MakeMove("alice", mv(6, 4, 3, 4)))

	require.NoError(t, room.MakeMove("alice", mv(6, 4, 4, 4)))
	state := room.GetState()
	require.Equal(t, Black, state.ToMove)
	require.Equal(t, "move", state.Sound)
	require.Equal(t, []string{"e2e4"}, state.MoveHistory)
	require.Equal(t, mv(6, 4, 4, 4), *state.LastMove)
	require.Equal(t, "alice", state.Players.White.ID)
	require.Equal(t, "bob", state.Players.Black.ID)

	require.NoError(t, room.MakeMove("bob", mv(1, 3, 3, 3)))
	require.NoError(t, room.MakeMove("alice", mv(4, 4, 3, 3)))
	state = room.GetState()
	require.Equal(t, "capture", state.Sound)
	require.Equal(t, []string{"e2e4", "d7d5", "e4d5"}, state.MoveHistory)
}

func TestRoomKingCapture(t *testing.T) {
	room := seatedRoom(t)
	room.game.SetBoard(boardWith(map[Square]Piece{
		sq(7, 4): {Kind: King, Color: White},
		sq(6, 5): {Kind: King, Color: Black},
	}))

	require.NoError(t, room.MakeMove("alice", mv(7, 4, 6, 5)))
	state := room.GetState()
	require.Equal(t, "gameOver", state.Sound)
	require.True(t, state.Status.IsOver)
	require.Equal(t, White, *state.Status.Winner)

	require.ErrorIs(t, room.MakeMove("alice", mv(6, 5, 5, 5)), ErrGameOver)
}

func TestRoomReset(t *testing.T) {
	room := seatedRoom(t)
	require.NoError(t, room.MakeMove("alice", mv(6, 4, 4, 4)))

	require.ErrorIs(t, room.Reset("carol"), ErrNotSeated)
	require.NoError(t, room.Reset("bob"))

	state := room.GetState()
	require.Equal(t, NewBoard(), state.Board)
	require.Equal(t, White, state.ToMove)
	require.Empty(t, state.MoveHistory)
	require.Nil(t, state.LastMove)
}

func TestRoomLegalMoves(t *testing.T) {
	room := seatedRoom(t)
	require.ElementsMatch(t, []Square{sq(5, 5), sq(5, 7)}, room.LegalMoves(sq(7, 6)))
}

func TestRoomStateVersionOrdersBroadcasts(t *testing.T) {
	room := seatedRoom(t)
	require.Equal(t, uint64(0), room.GetState().Version)

	require.NoError(t, room.MakeMove("alice", mv(6, 4, 4, 4)))
	require.NoError(t, room.MakeMove("bob", mv(1, 4, 3, 4)))
	require.ErrorIs(t, room.MakeMove("bob", mv(1, 3, 3, 3)), ErrNotYourTurn)
	require.Equal(t, uint64(2), room.GetState().Version)

	sent := func() uint64 {
		room.sendMu.Lock()
		defer room.sendMu.Unlock()
		return room.sentVersion
	}
	require.Eventually(t, func() bool { return sent() == 2 }, time.Second, 5*time.Millisecond)

	stale := room.GetState()
	stale.Version = 1
	room.broadcastState(stale)
	require.Equal(t, uint64(2), sent())

	require.NoError(t, room.Reset("alice"))
	require.Equal(t, uint64(3), room.GetState().Version)
	require.Eventually(t, func() bool { return sent() == 3 }, time.Second, 5*time.Millisecond)
}
