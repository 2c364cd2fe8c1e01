package model

import "errors"

var (
	ErrSameSquare          = errors.New("origin and destination are the same square")
	ErrOffBoard            = errors.New("square is off the board")
	ErrSelfCapture         = errors.New("destination holds a piece of the same side")
	ErrIllegalGeometry     = errors.New("piece cannot move that way")
	ErrPathBlocked         = errors.New("path is blocked")
	ErrDestinationOccupied = errors.New("pawn cannot advance into an occupied square")
)

// IsLegalMove reports whether piece may travel from -> to on board.
func IsLegalMove(board *Board, piece Piece, from, to Square) bool {
	return CheckMove(board, piece, from, to) == nil
}

// CheckMove is IsLegalMove with the reason for a rejection.
func CheckMove(board *Board, piece Piece, from, to Square) error {
	if from == to {
		return ErrSameSquare
	}
	if !IsValidSquare(from) || !IsValidSquare(to) {
		return ErrOffBoard
	}
	if target := PieceAt(board, to); target != nil && target.Color == piece.Color {
		return ErrSelfCapture
	}

	dRow, dCol := to.Row-from.Row, to.Col-from.Col
	switch piece.Kind {
	case Pawn:
		return checkPawnMove(board, piece, from, to)
	case Rook:
		if !isStraight(dRow, dCol) {
			return ErrIllegalGeometry
		}
		return checkPath(board, from, to)
	case Knight:
		if !isKnightJump(dRow, dCol) {
			return ErrIllegalGeometry
		}
		return nil
	case Bishop:
		if !isDiagonal(dRow, dCol) {
			return ErrIllegalGeometry
		}
		return checkPath(board, from, to)
	case Queen:
		if !isStraight(dRow, dCol) && !isDiagonal(dRow, dCol) {
			return ErrIllegalGeometry
		}
		return checkPath(board, from, to)
	case King:
		if abs(dRow) > 1 || abs(dCol) > 1 {
			return ErrIllegalGeometry
		}
		return nil
	default:
		return ErrIllegalGeometry
	}
}

func checkPawnMove(board *Board, piece Piece, from, to Square) error {
	dir := piece.Color.forward()
	dRow, dCol := to.Row-from.Row, to.Col-from.Col
	target := PieceAt(board, to)

	switch {
	case dCol == 0 && dRow == dir:
		if target != nil {
			return ErrDestinationOccupied
		}
		return nil
	case dCol == 0 && dRow == 2*dir:
		if piece.HasMoved || from.Row != piece.Color.pawnRank() {
			return ErrIllegalGeometry
		}
		middle := Square{Row: from.Row + dir, Col: from.Col}
		if PieceAt(board, middle) != nil {
			return ErrPathBlocked
		}
		if target != nil {
			return ErrDestinationOccupied
		}
		return nil
	case abs(dCol) == 1 && dRow == dir:
		// self-capture was ruled out by the caller
		if target == nil {
			return ErrIllegalGeometry
		}
		return nil
	}
	return ErrIllegalGeometry
}

// checkPath walks from origin toward destination one unit step at a time,
// excluding the destination. Only valid for straight or diagonal lines.
func checkPath(board *Board, from, to Square) error {
	stepRow, stepCol := sign(to.Row-from.Row), sign(to.Col-from.Col)
	cur := Square{Row: from.Row + stepRow, Col: from.Col + stepCol}
	for cur != to {
		if PieceAt(board, cur) != nil {
			return ErrPathBlocked
		}
		cur = Square{Row: cur.Row + stepRow, Col: cur.Col + stepCol}
	}
	return nil
}

// LegalMoves lists every destination the evaluator accepts for the piece on
// from. Empty when from is empty or off the board.
func LegalMoves(board *Board, from Square) []Square {
	piece := PieceAt(board, from)
	if piece == nil {
		return []Square{}
	}
	moves := []Square{}
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			to := Square{Row: row, Col: col}
			if IsLegalMove(board, *piece, from, to) {
				moves = append(moves, to)
			}
		}
	}
	return moves
}

func isStraight(dRow, dCol int) bool {
	return (dRow == 0) != (dCol == 0)
}

func isDiagonal(dRow, dCol int) bool {
	return dRow != 0 && abs(dRow) == abs(dCol)
}

func isKnightJump(dRow, dCol int) bool {
	r, c := abs(dRow), abs(dCol)
	return (r == 2 && c == 1) || (r == 1 && c == 2)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
