package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValidSquare(t *testing.T) {
	for row := -2; row < 10; row++ {
		for col := -2; col < 10; col++ {
			want := row >= 0 && row <= 7 && col >= 0 && col <= 7
			require.Equal(t, want, IsValidSquare(Square{Row: row, Col: col}), "(%d,%d)", row, col)
		}
	}
}

func TestPieceAtOffBoardIsNil(t *testing.T) {
	board := NewBoard()
	require.Nil(t, PieceAt(&board, Square{Row: -1, Col: 0}))
	require.Nil(t, PieceAt(&board, Square{Row: 0, Col: 8}))
	require.Nil(t, PieceAt(&board, Square{Row: 4, Col: 4}))
	require.Equal(t, &Piece{Kind: King, Color: White}, PieceAt(&board, Square{Row: 7, Col: 4}))
}

func TestSetPieceAtIgnoresOffBoard(t *testing.T) {
	board := EmptyBoard()
	SetPieceAt(&board, Square{Row: 8, Col: 0}, &Piece{Kind: Rook, Color: White})
	require.Equal(t, EmptyBoard(), board)

	SetPieceAt(&board, Square{Row: 3, Col: 3}, &Piece{Kind: Rook, Color: White})
	require.Equal(t, Rook, board[3][3].Kind)
	SetPieceAt(&board, Square{Row: 3, Col: 3}, nil)
	require.Nil(t, board[3][3])
}

func TestNewBoardStartingPosition(t *testing.T) {
	board := NewBoard()
	order := []PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for col, kind := range order {
		require.Equal(t, &Piece{Kind: kind, Color: Black}, board[0][col])
		require.Equal(t, &Piece{Kind: kind, Color: White}, board[7][col])
		require.Equal(t, &Piece{Kind: Pawn, Color: Black}, board[1][col])
		require.Equal(t, &Piece{Kind: Pawn, Color: White}, board[6][col])
	}
	for row := 2; row < 6; row++ {
		for col := 0; col < BoardSize; col++ {
			require.Nil(t, board[row][col], "(%d,%d)", row, col)
		}
	}
}

func TestCloneSharesNoPieces(t *testing.T) {
	board := NewBoard()
	clone := board.Clone()
	require.Equal(t, board, clone)

	clone[7][4].HasMoved = true
	clone[0][0] = nil
	require.False(t, board[7][4].HasMoved)
	require.NotNil(t, board[0][0])
}

func TestSquareNotation(t *testing.T) {
	sq, err := ParseSquare("e2")
	require.NoError(t, err)
	require.Equal(t, Square{Row: 6, Col: 4}, sq)
	require.Equal(t, "e2", sq.String())
	require.Equal(t, "a8", Square{Row: 0, Col: 0}.String())
	require.Equal(t, "h1", Square{Row: 7, Col: 7}.String())

	for _, bad := range []string{"", "e", "e22", "i1", "a0", "a9", "E2", "2e"} {
		_, err := ParseSquare(bad)
		require.ErrorIs(t, err, ErrBadSquare, bad)
	}
}

func TestPieceJSON(t *testing.T) {
	data, err := json.Marshal(Piece{Kind: Knight, Color: Black, HasMoved: true})
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"knight","color":"black","hasMoved":true}`, string(data))

	var p Piece
	require.NoError(t, json.Unmarshal([]byte(`{"type":"queen","color":"white","hasMoved":false}`), &p))
	require.Equal(t, Piece{Kind: Queen, Color: White}, p)

	require.Error(t, json.Unmarshal([]byte(`{"type":"dragon"}`), &p))
}

func TestSymbol(t *testing.T) {
	require.Equal(t, "K", Piece{Kind: King, Color: White}.Symbol())
	require.Equal(t, "n", Piece{Kind: Knight, Color: Black}.Symbol())
}
