package game

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pfaffle/MiniChessBot/board"
)

func addText(lines []string, row int, hpad int, text string) {
	lines[row] = lines[row] + strings.Repeat(" ", hpad) + text
}

func (g *State) statusLine() string {
	switch g.playing {
	case Playing:
		return fmt.Sprintf("%s to move", g.onturn)
	case Draw:
		return "Game is over: draw."
	}
	winner, _ := g.Winner()
	return fmt.Sprintf("Game is over: %s wins.", winner)
}

// ToDisplayText turns the current state of the game into a displayable
// string: the board with the turn and the status next to it.
func (g *State) ToDisplayText() string {
	bt := g.board.ToDisplayText()
	bts := strings.Split(bt, "\n")
	hpadding := 4

	log.Debug().Int("turn", g.turn).Str("onturn", g.onturn.String()).Msg("todisplaytext")
	addText(bts, 0, hpadding, fmt.Sprintf("Turn %d of %d", g.turn, g.maxTurns))
	addText(bts, 1, hpadding, g.statusLine())
	addText(bts, 3, hpadding, fmt.Sprintf("White pieces: %d", len(g.board.PiecesOf(board.White))))
	addText(bts, 4, hpadding, fmt.Sprintf("Black pieces: %d", len(g.board.PiecesOf(board.Black))))
	return strings.Join(bts, "\n")
}
