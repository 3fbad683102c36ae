package zobrist

import (
	"testing"

	"github.com/matryer/is"
	"lukechampine.com/frand"

	"github.com/pfaffle/MiniChessBot/board"
	"github.com/pfaffle/MiniChessBot/move"
	"github.com/pfaffle/MiniChessBot/movegen"
)

func play(b board.Board, m move.Move) board.Board {
	p := b.At(m.From)
	b.Set(m.From, board.Empty)
	b.Set(m.To, board.Arrival(p, m.To))
	return b
}

func TestIncrementalMatchesFullHash(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize()
	rng := frand.NewCustom(make([]byte, 32), 1024, 12)

	positions := 0
	for game := 0; game < 20; game++ {
		b := board.StartingBoard()
		side := board.White
		key := z.Hash(&b, side)
		for ply := 0; ply < 40; ply++ {
			if !b.HasKing(board.White) || !b.HasKing(board.Black) {
				break
			}
			moves := movegen.GenAll(&b, side)
			if len(moves) == 0 {
				break
			}
			positions++
			// every move from this position must agree, not just the sampled one
			for _, m := range moves {
				after := play(b, m)
				is.Equal(z.AddMove(key, &b, m), z.Hash(&after, side.Other()))
			}
			m := moves[rng.Intn(len(moves))]
			key = z.AddMove(key, &b, m)
			b = play(b, m)
			side = side.Other()
		}
	}
	is.True(positions >= 100)
}

func TestPlayAndSideToMove(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize()
	b := board.StartingBoard()
	is.True(z.Hash(&b, board.White) != z.Hash(&b, board.Black))

	m, err := move.FromString("b1-c3")
	is.NoErr(err)
	h0 := z.Hash(&b, board.White)
	h1 := z.AddMove(h0, &b, m)
	is.True(h0 != h1)

	// moving the knight back restores the original placement but the side
	// to move differs.
	b1 := play(b, m)
	back, err := move.FromString("c3-b1")
	is.NoErr(err)
	h2 := z.AddMove(h1, &b1, back)
	is.Equal(h2, z.Hash(&b, board.Black))
}

func TestSeeded(t *testing.T) {
	is := is.New(t)
	seed := make([]byte, 32)
	seed[0] = 7
	z1, z2 := &Zobrist{}, &Zobrist{}
	z1.InitializeWithSeed(seed)
	z2.InitializeWithSeed(seed)
	b := board.StartingBoard()
	is.Equal(z1.Hash(&b, board.White), z2.Hash(&b, board.White))
	is.True(Default() == Default())
}
