package model

import (
	"errors"
	"fmt"
	"strings"
)

const BoardSize = 8

var ErrBadSquare = errors.New("malformed square")

type PieceKind int

const (
	Pawn PieceKind = iota + 1
	Rook
	Knight
	Bishop
	Queen
	King
)

var pieceKindNames = map[PieceKind]string{
	Pawn:   "pawn",
	Rook:   "rook",
	Knight: "knight",
	Bishop: "bishop",
	Queen:  "queen",
	King:   "king",
}

func (k PieceKind) String() string {
	if name, ok := pieceKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("PieceKind(%d)", int(k))
}

func (k PieceKind) MarshalText() ([]byte, error) {
	name, ok := pieceKindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown piece kind %d", int(k))
	}
	return []byte(name), nil
}

func (k *PieceKind) UnmarshalText(text []byte) error {
	for kind, name := range pieceKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown piece kind %q", text)
}

// Symbol is the single-letter code used by the text board: uppercase for
// white, lowercase for black.
func (p Piece) Symbol() string {
	var s string
	switch p.Kind {
	case Pawn:
		s = "p"
	case Rook:
		s = "r"
	case Knight:
		s = "n"
	case Bishop:
		s = "b"
	case Queen:
		s = "q"
	case King:
		s = "k"
	default:
		return "?"
	}
	if p.Color == White {
		return strings.ToUpper(s)
	}
	return s
}

// Piece is a value. Moving a piece replaces it with Moved() rather than
// mutating the occupant.
type Piece struct {
	Kind     PieceKind `json:"type"`
	Color    Side      `json:"color"`
	HasMoved bool      `json:"hasMoved"`
}

func (p Piece) Moved() Piece {
	p.HasMoved = true
	return p
}

type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func IsValidSquare(sq Square) bool {
	return sq.Row >= 0 && sq.Row < BoardSize && sq.Col >= 0 && sq.Col < BoardSize
}

// String renders the square as file letter + rank digit, e.g. "e2".
func (sq Square) String() string {
	if !IsValidSquare(sq) {
		return fmt.Sprintf("(%d,%d)", sq.Row, sq.Col)
	}
	return fmt.Sprintf("%c%d", sq.Col+'a', BoardSize-sq.Row)
}

func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return Square{}, fmt.Errorf("%w: %q", ErrBadSquare, s)
	}
	sq := Square{Row: BoardSize - int(s[1]-'0'), Col: int(s[0]) - 'a'}
	if s[1] < '1' || s[1] > '8' || !IsValidSquare(sq) {
		return Square{}, fmt.Errorf("%w: %q", ErrBadSquare, s)
	}
	return sq, nil
}

// Board holds at most one piece per square; nil is an empty square.
type Board [BoardSize][BoardSize]*Piece

func PieceAt(board *Board, sq Square) *Piece {
	if !IsValidSquare(sq) {
		return nil
	}
	return board[sq.Row][sq.Col]
}

// SetPieceAt ignores squares off the board.
func SetPieceAt(board *Board, sq Square, piece *Piece) {
	if !IsValidSquare(sq) {
		return
	}
	board[sq.Row][sq.Col] = piece
}

// Clone copies every piece so the result shares no pointers with b.
func (b *Board) Clone() Board {
	var out Board
	for row := range b {
		for col, piece := range b[row] {
			if piece != nil {
				p := *piece
				out[row][col] = &p
			}
		}
	}
	return out
}

func EmptyBoard() Board {
	return Board{}
}

var backRank = [BoardSize]PieceKind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

func NewBoard() Board {
	var board Board
	for col := 0; col < BoardSize; col++ {
		board[0][col] = &Piece{Kind: backRank[col], Color: Black}
		board[1][col] = &Piece{Kind: Pawn, Color: Black}
		board[6][col] = &Piece{Kind: Pawn, Color: White}
		board[7][col] = &Piece{Kind: backRank[col], Color: White}
	}
	return board
}

func (b *Board) hasKing(side Side) bool {
	for row := range b {
		for _, piece := range b[row] {
			if piece != nil && piece.Kind == King && piece.Color == side {
				return true
			}
		}
	}
	return false
}
