package negamax

import (
	"github.com/pfaffle/MiniChessBot/board"
	"github.com/pfaffle/MiniChessBot/move"
)

// TinyMove packs a move into 16 bits for storage in the table:
// bits 0-4 are the source square index, bits 5-9 the destination index and
// bit 15 is set for any stored move so the zero value means "no move".
type TinyMove uint16

const tinyMovePresent = 1 << 15

func moveToTinyMove(m move.Move) TinyMove {
	return TinyMove(m.From.Index() | m.To.Index()<<5 | tinyMovePresent)
}

func squareFromIndex(idx int) board.Square {
	return board.Sq(idx%board.NumFiles, idx/board.NumFiles)
}

// tinyMoveToMove unpacks a stored move. ok is false for the zero value.
func tinyMoveToMove(t TinyMove) (m move.Move, ok bool) {
	if t&tinyMovePresent == 0 {
		return move.Move{}, false
	}
	return move.New(squareFromIndex(int(t&31)), squareFromIndex(int(t>>5&31))), true
}
