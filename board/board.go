// Package board holds the 5x6 MiniChess grid and the value types that live
// on it. A Board is a plain array; copying it copies the position.
package board

import (
	"fmt"
	"strings"
)

// Board is addressed [file][rank]. It is a value type: assigning a Board
// makes an independent copy.
type Board [NumFiles][NumRanks]Piece

// homeSquares are the squares pieces occupy in the starting position. Pawns
// are not listed since they never count as developed.
var homeSquares = map[Piece]Square{
	WRook:   Sq(0, 0),
	WKnight: Sq(1, 0),
	WBishop: Sq(2, 0),
	WQueen:  Sq(3, 0),
	WKing:   Sq(4, 0),
	BKing:   Sq(0, 5),
	BQueen:  Sq(1, 5),
	BBishop: Sq(2, 5),
	BKnight: Sq(3, 5),
	BRook:   Sq(4, 5),
}

// StartingBoard returns the canonical initial position.
func StartingBoard() Board {
	var b Board
	b.Clear()
	for p, sq := range homeSquares {
		b[sq.File][sq.Rank] = p
	}
	for f := 0; f < NumFiles; f++ {
		b[f][1] = WPawn
		b[f][4] = BPawn
	}
	return b
}

// HomeSquare returns the starting square of a non-pawn piece.
func HomeSquare(p Piece) (Square, bool) {
	sq, ok := homeSquares[p]
	return sq, ok
}

// Clear empties every square.
func (b *Board) Clear() {
	for f := 0; f < NumFiles; f++ {
		for r := 0; r < NumRanks; r++ {
			b[f][r] = Empty
		}
	}
}

func mustBeOnBoard(sq Square) {
	if !sq.OnBoard() {
		panic(fmt.Sprintf("square out of range: file %d rank %d", sq.File, sq.Rank))
	}
}

// At returns the piece on a square. Asking for a square off the board is a
// programming error and panics.
func (b *Board) At(sq Square) Piece {
	mustBeOnBoard(sq)
	return b[sq.File][sq.Rank]
}

// Set places a piece on a square. It panics for squares off the board.
func (b *Board) Set(sq Square, p Piece) {
	mustBeOnBoard(sq)
	b[sq.File][sq.Rank] = p
}

// IsDeveloped returns true if the piece on sq has left its home square.
// Pawns and empty squares are never developed.
func (b *Board) IsDeveloped(sq Square) bool {
	p := b.At(sq)
	home, ok := homeSquares[p]
	if !ok {
		return false
	}
	return home != sq
}

// HasKing returns true if side s still has its king on the board.
func (b *Board) HasKing(s Side) bool {
	k := Of(WKing, s)
	for f := 0; f < NumFiles; f++ {
		for r := 0; r < NumRanks; r++ {
			if b[f][r] == k {
				return true
			}
		}
	}
	return false
}

// PiecesOf returns the squares occupied by side s, file-major.
func (b *Board) PiecesOf(s Side) []Square {
	sqs := make([]Square, 0, 2*NumFiles)
	for f := 0; f < NumFiles; f++ {
		for r := 0; r < NumRanks; r++ {
			if b[f][r].BelongsTo(s) {
				sqs = append(sqs, Sq(f, r))
			}
		}
	}
	return sqs
}

// Mirror swaps colours and reflects the board across the middle rank. The
// mirrored position is the same position seen from the other side.
func (b *Board) Mirror() Board {
	var m Board
	for f := 0; f < NumFiles; f++ {
		for r := 0; r < NumRanks; r++ {
			m[f][NumRanks-1-r] = b[f][r].Flip()
		}
	}
	return m
}

// Row returns the five pieces on a rank as a string, a-file first.
func (b *Board) Row(rank int) string {
	var sb strings.Builder
	for f := 0; f < NumFiles; f++ {
		sb.WriteByte(byte(b.At(Sq(f, rank))))
	}
	return sb.String()
}

// ToDisplayText draws the board with coordinates, rank 6 on top.
func (b *Board) ToDisplayText() string {
	var sb strings.Builder
	for r := NumRanks - 1; r >= 0; r-- {
		fmt.Fprintf(&sb, "%d  ", r+1)
		for f := 0; f < NumFiles; f++ {
			sb.WriteByte(byte(b[f][r]))
			if f != NumFiles-1 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a b c d e\n")
	return sb.String()
}

// Arrival returns the piece that ends up on `to` when p moves there. Pawns
// reaching the far rank are promoted to queens immediately.
func Arrival(p Piece, to Square) Piece {
	switch {
	case p == WPawn && int(to.Rank) == NumRanks-1:
		return WQueen
	case p == BPawn && to.Rank == 0:
		return BQueen
	}
	return p
}
