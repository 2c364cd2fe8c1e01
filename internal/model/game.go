package model

import (
	"errors"
	"fmt"
)

var (
	ErrGameOver    = errors.New("game is over")
	ErrNoPiece     = errors.New("no piece at from square")
	ErrNotYourTurn = errors.New("not your turn")
)

type Status struct {
	IsOver bool  `json:"isOver"`
	Winner *Side `json:"winner"`
}

// Game is the authoritative board, turn, move log and status of one match.
// It does no locking: callers must serialize MakeMove, SetBoard and Reset
// on a given instance.
type Game struct {
	board   Board
	toMove  Side
	history []Move
	isOver  bool
	winner  Side
}

func NewGame() *Game {
	g := &Game{}
	g.Reset()
	return g
}

func (g *Game) Reset() {
	g.board = NewBoard()
	g.toMove = White
	g.history = make([]Move, 0)
	g.isOver = false
	g.winner = ""
}

// ApplyMove reports only whether the move was accepted.
func (g *Game) ApplyMove(move Move) bool {
	return g.MakeMove(move) == nil
}

func (g *Game) MakeMove(move Move) error {
	if g.isOver {
		return ErrGameOver
	}
	piece := PieceAt(&g.board, move.From)
	if piece == nil {
		return ErrNoPiece
	}
	if piece.Color != g.toMove {
		return ErrNotYourTurn
	}
	if err := CheckMove(&g.board, *piece, move.From, move.To); err != nil {
		return fmt.Errorf("%s %s: %w", piece.Kind, move, err)
	}

	moved := piece.Moved()
	SetPieceAt(&g.board, move.To, &moved)
	SetPieceAt(&g.board, move.From, nil)
	g.history = append(g.history, move)

	g.checkKings()
	if !g.isOver {
		g.toMove = g.toMove.Opponent()
	}
	return nil
}

// checkKings ends the game when a side has no king left on the board.
func (g *Game) checkKings() {
	switch {
	case !g.board.hasKing(White):
		g.isOver, g.winner = true, Black
	case !g.board.hasKing(Black):
		g.isOver, g.winner = true, White
	}
}

func (g *Game) Board() Board {
	return g.board.Clone()
}

// SetBoard replaces the board with a copy of board. Turn, history and status
// are left alone.
func (g *Game) SetBoard(board Board) {
	g.board = board.Clone()
}

func (g *Game) CurrentPlayer() Side {
	return g.toMove
}

func (g *Game) Status() Status {
	if !g.isOver {
		return Status{}
	}
	winner := g.winner
	return Status{IsOver: true, Winner: &winner}
}

func (g *Game) History() []Move {
	history := make([]Move, len(g.history))
	copy(history, g.history)
	return history
}
