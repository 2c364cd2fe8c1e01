// Package console is a line-based front end for a single local game.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/benbeisheim/kingchess-backend/internal/model"
	"github.com/rs/zerolog/log"
)

var ErrMoveFormat = errors.New(`invalid move format, use a form like "e2e4"`)

const files = "  a b c d e f g h"

// Render draws board with rank 8 on top. White pieces are uppercase and
// empty squares are dots.
func Render(board model.Board) string {
	var sb strings.Builder
	sb.WriteString("\n" + files + "\n")
	sb.WriteString("  - - - - - - - -\n")
	for row := 0; row < model.BoardSize; row++ {
		rank := model.BoardSize - row
		fmt.Fprintf(&sb, "%d|", rank)
		for col := 0; col < model.BoardSize; col++ {
			if piece := board[row][col]; piece != nil {
				sb.WriteString(piece.Symbol())
			} else {
				sb.WriteString(".")
			}
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "|%d\n", rank)
	}
	sb.WriteString("  - - - - - - - -\n")
	sb.WriteString(files + "\n")
	return sb.String()
}

// ParseMove reads a coordinate pair such as "e2e4".
func ParseMove(input string) (model.Move, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if len(input) != 4 {
		return model.Move{}, ErrMoveFormat
	}
	move, err := model.NotationMove{From: input[:2], To: input[2:]}.Move()
	if err != nil {
		return model.Move{}, fmt.Errorf("%w: %v", ErrMoveFormat, err)
	}
	return move, nil
}

// Play runs the prompt loop against game until the input ends, the user
// types "exit", a king is captured or ctx is cancelled.
func Play(ctx context.Context, game *model.Game, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Welcome to Console Chess!")
	fmt.Fprintln(out, `Enter moves as coordinate pairs (e.g. "e2e4"). Type "reset" to start over, "exit" to quit.`)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, Render(game.Board()))
		if status := game.Status(); status.IsOver {
			fmt.Fprintf(out, "Game Over! %s wins!\n", strings.ToUpper(string(*status.Winner)))
			return nil
		}
		fmt.Fprintf(out, "Current player: %s\n", strings.ToUpper(string(game.CurrentPlayer())))
		fmt.Fprint(out, "Enter your move: ")

		if err := ctx.Err(); err != nil {
			return err
		}
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		switch line {
		case "exit":
			fmt.Fprintln(out, "Thanks for playing!")
			return nil
		case "reset":
			game.Reset()
			fmt.Fprintln(out, "\nGame reset!")
			continue
		}

		move, err := ParseMove(line)
		if err != nil {
			fmt.Fprintln(out, "Invalid positions. Please use format like \"e2e4\" (a-h, 1-8)")
			continue
		}
		if err := game.MakeMove(move); err != nil {
			log.Debug().Err(err).Stringer("move", move).Msg("move rejected")
			fmt.Fprintln(out, "Invalid move. Try again.")
		}
	}
}
