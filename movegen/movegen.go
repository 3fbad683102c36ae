// Package movegen enumerates pseudo-legal MiniChess moves. There is no check
// in this variant, so pseudo-legal moves are the legal moves.
package movegen

import (
	"github.com/pfaffle/MiniChessBot/board"
	"github.com/pfaffle/MiniChessBot/move"
)

// CaptureRule says what a ray scan may do when it runs into an enemy piece.
type CaptureRule uint8

const (
	// CaptureAllowed moves to empty squares and captures enemies.
	CaptureAllowed CaptureRule = iota
	// CaptureForbidden only moves to empty squares.
	CaptureForbidden
	// CaptureOnly only captures; empty squares are not destinations.
	CaptureOnly
)

type direction struct{ dx, dy int }

var (
	orthogonals = []direction{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonals   = []direction{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}}
	allDirs     = append(append([]direction{}, orthogonals...), diagonals...)
	knightJumps = []direction{
		{1, 2}, {2, 1}, {2, -1}, {1, -2},
		{-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
	}
)

// Scan walks from sq along (dx, dy) and appends every reachable destination
// to moves. The walk stops when it leaves the board, reaches a friendly
// piece, or reaches an enemy piece (which is a destination only if captures
// are allowed). With oneStep set the walk takes at most one step.
func Scan(b *board.Board, from board.Square, dx, dy int, oneStep bool,
	rule CaptureRule, moves []move.Move) []move.Move {

	mover := b.At(from)
	side := mover.Side()
	to := from
	for {
		to = to.Offset(dx, dy)
		if !to.OnBoard() {
			break
		}
		target := b.At(to)
		if !target.IsEmpty() {
			if target.BelongsTo(side) {
				break
			}
			if rule != CaptureForbidden {
				moves = append(moves, move.New(from, to))
			}
			break
		}
		if rule == CaptureOnly {
			break
		}
		moves = append(moves, move.New(from, to))
		if oneStep {
			break
		}
	}
	return moves
}

func scanAll(b *board.Board, from board.Square, dirs []direction, oneStep bool,
	rule CaptureRule, moves []move.Move) []move.Move {
	for _, d := range dirs {
		moves = Scan(b, from, d.dx, d.dy, oneStep, rule, moves)
	}
	return moves
}

// ValidMoves returns every destination for the piece standing on sq. An
// empty square yields no moves.
func ValidMoves(b *board.Board, sq board.Square) []move.Move {
	return appendValidMoves(b, sq, nil)
}

func appendValidMoves(b *board.Board, sq board.Square, moves []move.Move) []move.Move {
	p := b.At(sq)
	switch p.Kind() {
	case board.WKing:
		moves = scanAll(b, sq, allDirs, true, CaptureAllowed, moves)
	case board.WQueen:
		moves = scanAll(b, sq, allDirs, false, CaptureAllowed, moves)
	case board.WRook:
		moves = scanAll(b, sq, orthogonals, false, CaptureAllowed, moves)
	case board.WBishop:
		moves = scanAll(b, sq, diagonals, false, CaptureAllowed, moves)
		// the variant's bishop may also sidestep one square orthogonally,
		// but never captures that way.
		moves = scanAll(b, sq, orthogonals, true, CaptureForbidden, moves)
	case board.WKnight:
		moves = scanAll(b, sq, knightJumps, true, CaptureAllowed, moves)
	case board.WPawn:
		fwd := 1
		if p.IsBlack() {
			fwd = -1
		}
		moves = Scan(b, sq, 0, fwd, true, CaptureForbidden, moves)
		moves = Scan(b, sq, -1, fwd, true, CaptureOnly, moves)
		moves = Scan(b, sq, 1, fwd, true, CaptureOnly, moves)
	}
	return moves
}

// GenAll returns every move available to side s. It is the only primitive
// the search expands nodes with.
func GenAll(b *board.Board, s board.Side) []move.Move {
	moves := make([]move.Move, 0, 32)
	for f := 0; f < board.NumFiles; f++ {
		for r := 0; r < board.NumRanks; r++ {
			sq := board.Sq(f, r)
			if b.At(sq).BelongsTo(s) {
				moves = appendValidMoves(b, sq, moves)
			}
		}
	}
	return moves
}

// IsPromotion returns true if the move takes a pawn to its last rank.
func IsPromotion(b *board.Board, m move.Move) bool {
	p := b.At(m.From)
	return board.Arrival(p, m.To) != p
}
