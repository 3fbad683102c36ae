package board

// Side is one of the two players.
type Side uint8

const (
	White Side = iota
	Black
)

func (s Side) Other() Side {
	return 1 - s
}

func (s Side) String() string {
	if s == White {
		return "White"
	}
	return "Black"
}

// Letter is the single-character side indicator used in the board text
// format.
func (s Side) Letter() byte {
	if s == White {
		return 'W'
	}
	return 'B'
}

// Piece is the character code of whatever occupies a square. Uppercase
// letters are White, lowercase letters are Black, and '.' is empty.
type Piece byte

const (
	Empty Piece = '.'

	WKing   Piece = 'K'
	WQueen  Piece = 'Q'
	WRook   Piece = 'R'
	WBishop Piece = 'B'
	WKnight Piece = 'N'
	WPawn   Piece = 'P'

	BKing   Piece = 'k'
	BQueen  Piece = 'q'
	BRook   Piece = 'r'
	BBishop Piece = 'b'
	BKnight Piece = 'n'
	BPawn   Piece = 'p'
)

// NumPieceCodes counts the twelve pieces plus the empty marker.
const NumPieceCodes = 13

// ValidPiece returns true if the byte is one of the 13 recognized codes.
func ValidPiece(b byte) bool {
	return PieceIndex(Piece(b)) >= 0
}

// PieceIndex maps every piece code (including Empty) onto [0, NumPieceCodes).
// It returns -1 for anything unrecognized.
func PieceIndex(p Piece) int {
	switch p {
	case WPawn:
		return 0
	case WRook:
		return 1
	case WKnight:
		return 2
	case WBishop:
		return 3
	case WQueen:
		return 4
	case WKing:
		return 5
	case BPawn:
		return 6
	case BRook:
		return 7
	case BKnight:
		return 8
	case BBishop:
		return 9
	case BQueen:
		return 10
	case BKing:
		return 11
	case Empty:
		return 12
	}
	return -1
}

func (p Piece) IsEmpty() bool {
	return p == Empty
}

func (p Piece) IsWhite() bool {
	return p >= 'A' && p <= 'Z'
}

func (p Piece) IsBlack() bool {
	return p >= 'a' && p <= 'z'
}

// BelongsTo returns true if the piece is owned by side s.
func (p Piece) BelongsTo(s Side) bool {
	if s == White {
		return p.IsWhite()
	}
	return p.IsBlack()
}

// Side returns the owner of a non-empty piece.
func (p Piece) Side() Side {
	if p.IsWhite() {
		return White
	}
	return Black
}

// Kind returns the uppercase letter of the piece regardless of colour.
func (p Piece) Kind() Piece {
	if p.IsBlack() {
		return p - ('a' - 'A')
	}
	return p
}

// Of returns the piece of kind k (an uppercase letter) for side s.
func Of(k Piece, s Side) Piece {
	k = k.Kind()
	if s == Black {
		return k + ('a' - 'A')
	}
	return k
}

// Flip swaps the colour of a piece. Empty stays empty.
func (p Piece) Flip() Piece {
	switch {
	case p.IsWhite():
		return p + ('a' - 'A')
	case p.IsBlack():
		return p - ('a' - 'A')
	}
	return p
}

func (p Piece) String() string {
	return string(rune(p))
}
