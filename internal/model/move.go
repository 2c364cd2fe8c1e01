package model

import "fmt"

// Move is a coordinate pair. Promotion is accepted on the wire but never
// consulted; promotion is not implemented.
type Move struct {
	From      Square     `json:"from"`
	To        Square     `json:"to"`
	Promotion *PieceKind `json:"promotion,omitempty"`
}

func (m Move) String() string {
	return fmt.Sprintf("%s%s", m.From, m.To)
}

// NotationMove is the wire form used by clients: {"from":"e2","to":"e4"}.
type NotationMove struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (nm NotationMove) Move() (Move, error) {
	from, err := ParseSquare(nm.From)
	if err != nil {
		return Move{}, fmt.Errorf("from: %w", err)
	}
	to, err := ParseSquare(nm.To)
	if err != nil {
		return Move{}, fmt.Errorf("to: %w", err)
	}
	return Move{From: from, To: to}, nil
}
