package board

import (
	"fmt"
)

const (
	// NumFiles is the width of the board (files a through e).
	NumFiles = 5
	// NumRanks is the height of the board (ranks 1 through 6).
	NumRanks = 6
	// NumSquares is the number of squares on the board.
	NumSquares = NumFiles * NumRanks
)

// A Square is a coordinate on the board. File 0 is the "a" file and rank 0
// is displayed as rank 1.
type Square struct {
	File int8
	Rank int8
}

// Sq is a small convenience constructor.
func Sq(file, rank int) Square {
	return Square{File: int8(file), Rank: int8(rank)}
}

// OnBoard returns true if the square lies within the 5x6 grid.
func (s Square) OnBoard() bool {
	return s.File >= 0 && s.File < NumFiles && s.Rank >= 0 && s.Rank < NumRanks
}

// Index returns a unique index in [0, NumSquares) for this square.
func (s Square) Index() int {
	return int(s.Rank)*NumFiles + int(s.File)
}

// Offset returns the square dx files and dy ranks away. The result may be
// off the board.
func (s Square) Offset(dx, dy int) Square {
	return Square{File: s.File + int8(dx), Rank: s.Rank + int8(dy)}
}

func (s Square) String() string {
	if !s.OnBoard() {
		return fmt.Sprintf("?(%d,%d)", s.File, s.Rank)
	}
	return string([]byte{'a' + byte(s.File), '1' + byte(s.Rank)})
}

// SquareFromString parses coordinates such as "c3". It is case-insensitive
// on the file letter.
func SquareFromString(coords string) (Square, error) {
	if len(coords) != 2 {
		return Square{}, fmt.Errorf("square %q must be two characters", coords)
	}
	f := coords[0]
	if f >= 'A' && f <= 'E' {
		f += 'a' - 'A'
	}
	r := coords[1]
	if f < 'a' || f > 'e' {
		return Square{}, fmt.Errorf("square %q has a bad file", coords)
	}
	if r < '1' || r > '6' {
		return Square{}, fmt.Errorf("square %q has a bad rank", coords)
	}
	return Square{File: int8(f - 'a'), Rank: int8(r - '1')}, nil
}

// AllSquares enumerates every valid square, file-major, the same order the
// board is addressed in.
func AllSquares() []Square {
	sqs := make([]Square, 0, NumSquares)
	for f := 0; f < NumFiles; f++ {
		for r := 0; r < NumRanks; r++ {
			sqs = append(sqs, Sq(f, r))
		}
	}
	return sqs
}
