// Package move defines a MiniChess move and its text notation.
package move

import (
	"fmt"
	"regexp"

	"github.com/pfaffle/MiniChessBot/board"
)

// Move is an ordered pair of squares. Promotion is implicit: a pawn reaching
// the last rank always becomes a queen.
type Move struct {
	From board.Square
	To   board.Square
}

// MalformedMoveError is returned when text does not match the move grammar
// <file><rank>-<file><rank>.
type MalformedMoveError struct {
	Text string
}

func (e *MalformedMoveError) Error() string {
	return fmt.Sprintf("malformed move %q: expected a form like a2-a3", e.Text)
}

var reMove *regexp.Regexp

func init() {
	reMove = regexp.MustCompile(`^(?P<from>[a-eA-E][1-6])-(?P<to>[a-eA-E][1-6])$`)
}

// New creates a move between two squares.
func New(from, to board.Square) Move {
	return Move{From: from, To: to}
}

// FromString parses text like "a2-a3".
func FromString(text string) (Move, error) {
	matches := reMove.FindStringSubmatch(text)
	if matches == nil {
		return Move{}, &MalformedMoveError{Text: text}
	}
	from, err := board.SquareFromString(matches[reMove.SubexpIndex("from")])
	if err != nil {
		return Move{}, &MalformedMoveError{Text: text}
	}
	to, err := board.SquareFromString(matches[reMove.SubexpIndex("to")])
	if err != nil {
		return Move{}, &MalformedMoveError{Text: text}
	}
	return Move{From: from, To: to}, nil
}

// String returns the canonical notation, the inverse of FromString.
func (m Move) String() string {
	return m.From.String() + "-" + m.To.String()
}

// Mirror reflects the move across the middle rank, matching board.Mirror.
func (m Move) Mirror() Move {
	return Move{
		From: board.Sq(int(m.From.File), board.NumRanks-1-int(m.From.Rank)),
		To:   board.Sq(int(m.To.File), board.NumRanks-1-int(m.To.Rank)),
	}
}

// Strings is a small helper for logging lists of moves.
func Strings(moves []Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	return out
}
