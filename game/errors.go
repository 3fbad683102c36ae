package game

import (
	"fmt"

	"github.com/pfaffle/MiniChessBot/board"
	"github.com/pfaffle/MiniChessBot/move"
)

// IllegalMoveError is returned for a well-formed move that the side to move
// cannot play in the current position.
type IllegalMoveError struct {
	Move   move.Move
	OnTurn board.Side
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %s for %s", e.Move, e.OnTurn)
}

// GameOverError is returned when a move or search is requested on a game
// that has already ended.
type GameOverError struct {
	Result PlayState
}

func (e *GameOverError) Error() string {
	return "game is over: " + e.Result.String()
}

// TurnOutOfRangeError is returned when building a position whose turn
// counter is below 1 or past the draw ceiling.
type TurnOutOfRangeError struct {
	Turn     int
	MaxTurns int
}

func (e *TurnOutOfRangeError) Error() string {
	return fmt.Sprintf("turn %d out of range 1..%d", e.Turn, e.MaxTurns+1)
}
