package model

import (
	"github.com/gofiber/websocket/v2"
)

type Side string

const (
	White Side = "white"
	Black Side = "black"
)

func (s Side) Opponent() Side {
	if s == White {
		return Black
	}
	return White
}

// forward is the row delta of a pawn step for s.
func (s Side) forward() int {
	if s == White {
		return -1
	}
	return 1
}

func (s Side) pawnRank() int {
	if s == White {
		return 6
	}
	return 1
}

type Player struct {
	ID    string
	Color Side
	Conn  *websocket.Conn
}

type ClientPlayer struct {
	ID       string `json:"name"`
	Color    Side   `json:"color"`
	TimeLeft int    `json:"timeLeft"`
}
