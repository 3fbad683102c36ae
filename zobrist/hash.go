package zobrist

import (
	"sync"

	"lukechampine.com/frand"

	"github.com/pfaffle/MiniChessBot/board"
	"github.com/pfaffle/MiniChessBot/move"
)

const bignum = 1<<63 - 2

// generate a zobrist hash for a minichess position.
// https://en.wikipedia.org/wiki/Zobrist_hashing
//
// Every square contributes a key for whatever occupies it, including the
// empty marker, so a move always toggles exactly the keys of the squares it
// touches plus the side-to-move key.
type Zobrist struct {
	blackToMove uint64
	posTable    [board.NumSquares][board.NumPieceCodes]uint64
}

func (z *Zobrist) Initialize() {
	z.fill(frand.Uint64n)
}

// InitializeWithSeed fills the tables deterministically. The seed must be
// 32 bytes long.
func (z *Zobrist) InitializeWithSeed(seed []byte) {
	rng := frand.NewCustom(seed, 1024, 12)
	z.fill(rng.Uint64n)
}

func (z *Zobrist) fill(uint64n func(uint64) uint64) {
	for i := 0; i < board.NumSquares; i++ {
		for j := 0; j < board.NumPieceCodes; j++ {
			z.posTable[i][j] = uint64n(bignum) + 1
		}
	}
	z.blackToMove = uint64n(bignum) + 1
}

func (z *Zobrist) key(sq board.Square, p board.Piece) uint64 {
	return z.posTable[sq.Index()][board.PieceIndex(p)]
}

// Hash computes the key of a position from scratch.
func (z *Zobrist) Hash(b *board.Board, onTurn board.Side) uint64 {
	key := uint64(0)
	for f := 0; f < board.NumFiles; f++ {
		for r := 0; r < board.NumRanks; r++ {
			sq := board.Sq(f, r)
			key ^= z.key(sq, b.At(sq))
		}
	}
	if onTurn == board.Black {
		key ^= z.blackToMove
	}
	return key
}

// AddMove returns the key of the position reached by playing m. `before` is
// the board prior to the move. Four terms change:
// - the source square goes from the mover to empty
// - the destination loses its previous occupant (a captured piece or empty)
// - the destination gains the arriving piece (a queen if promoting)
// - the side to move flips
func (z *Zobrist) AddMove(key uint64, before *board.Board, m move.Move) uint64 {
	mover := before.At(m.From)
	captured := before.At(m.To)
	arriving := board.Arrival(mover, m.To)

	key ^= z.key(m.From, mover)
	key ^= z.key(m.From, board.Empty)
	key ^= z.key(m.To, captured)
	key ^= z.key(m.To, arriving)
	key ^= z.blackToMove
	return key
}

var (
	defaultZobrist *Zobrist
	defaultOnce    sync.Once
)

// Default returns a process-wide table. Keys are random per process, so
// hashes must never be persisted.
func Default() *Zobrist {
	defaultOnce.Do(func() {
		defaultZobrist = &Zobrist{}
		defaultZobrist.Initialize()
	})
	return defaultZobrist
}
