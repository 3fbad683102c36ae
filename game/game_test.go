package game

import (
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"
	"lukechampine.com/frand"

	"github.com/pfaffle/MiniChessBot/board"
	"github.com/pfaffle/MiniChessBot/move"
)

func mustMove(t *testing.T, s string) move.Move {
	t.Helper()
	m, err := move.FromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func playAll(t *testing.T, g *State, moves ...string) *State {
	t.Helper()
	for _, s := range moves {
		var err error
		g, err = g.ApplyMove(mustMove(t, s))
		if err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestNewGame(t *testing.T) {
	is := is.New(t)
	g := NewGame(nil)
	is.Equal(g.Turn(), 1)
	is.Equal(g.PlayerOnTurn(), board.White)
	is.Equal(g.Playing(), Playing)
	is.True(!g.GameOver())
	is.Equal(g.MaxTurns(), DefaultMaxTurns)
	is.Equal(len(g.LegalMoves()), 7)
	b := g.Board()
	is.Equal(g.Hash(), g.Zobrist().Hash(&b, board.White))
	is.Equal(g.PliesUntilDraw(), 80)
}

func TestScenarioRookLift(t *testing.T) {
	is := is.New(t)
	g := playAll(t, NewGame(nil), "a2-a3", "a5-a4")
	is.Equal(g.Turn(), 2)
	is.Equal(g.PlayerOnTurn(), board.White)
	is.True(g.IsLegal(mustMove(t, "a1-a2")))
	is.Equal(g.PliesUntilDraw(), 78)
}

func TestApplyMoveLeavesReceiverAlone(t *testing.T) {
	is := is.New(t)
	g := NewGame(nil)
	before := g.Board()
	hash := g.Hash()

	next, err := g.ApplyMove(mustMove(t, "b1-c3"))
	is.NoErr(err)
	is.Equal(g.Board(), before)
	is.Equal(g.Hash(), hash)
	is.Equal(g.PlayerOnTurn(), board.White)
	is.Equal(g.Turn(), 1)

	is.Equal(next.At(board.Sq(2, 2)), board.WKnight)
	is.Equal(next.At(board.Sq(1, 0)), board.Empty)
	is.Equal(next.PlayerOnTurn(), board.Black)
	is.Equal(next.Turn(), 1)
	is.True(!g.Equals(next))
}

func TestIllegalMove(t *testing.T) {
	is := is.New(t)
	g := NewGame(nil)
	for _, s := range []string{"a2-a4", "a5-a4", "c1-c2", "e1-e2", "b1-b3"} {
		_, err := g.ApplyMove(mustMove(t, s))
		var ime *IllegalMoveError
		is.True(errors.As(err, &ime))
		is.Equal(ime.OnTurn, board.White)
		is.Equal(ime.Move.String(), s)
	}
}

func kingCaptureBoard() board.Board {
	var b board.Board
	b.Clear()
	b.Set(board.Sq(4, 0), board.WKing)
	b.Set(board.Sq(0, 0), board.WRook)
	b.Set(board.Sq(0, 5), board.BKing)
	b.Set(board.Sq(4, 5), board.BRook)
	return b
}

func TestKingCapture(t *testing.T) {
	is := is.New(t)
	g, err := NewFromPosition(nil, kingCaptureBoard(), 10, board.White)
	is.NoErr(err)
	is.Equal(g.Playing(), Playing)

	next, err := g.ApplyMove(mustMove(t, "a1-a6"))
	is.NoErr(err)
	is.True(next.GameOver())
	is.True(next.WhiteWins())
	is.True(!next.BlackWins())
	w, ok := next.Winner()
	is.True(ok)
	is.Equal(w, board.White)
	is.Equal(len(next.LegalMoves()), 0)

	_, err = next.ApplyMove(mustMove(t, "e6-e1"))
	var goe *GameOverError
	is.True(errors.As(err, &goe))
	is.Equal(goe.Result, WhiteWon)
}

func TestKingCaptureUnchecked(t *testing.T) {
	is := is.New(t)
	g, err := NewFromPosition(nil, kingCaptureBoard(), 10, board.Black)
	is.NoErr(err)
	next := g.PlayUnchecked(mustMove(t, "e6-e1"))
	is.True(next.BlackWins())
	is.Equal(next.Turn(), 11)
}

// Black's king is walled in by its own pawns on a1, which can never move.
func stuckBlackBoard() board.Board {
	var b board.Board
	b.Clear()
	b.Set(board.Sq(0, 0), board.BKing)
	b.Set(board.Sq(0, 1), board.BPawn)
	b.Set(board.Sq(1, 0), board.BPawn)
	b.Set(board.Sq(1, 1), board.BPawn)
	b.Set(board.Sq(4, 5), board.WKing)
	b.Set(board.Sq(4, 3), board.WPawn)
	return b
}

func TestNoMovesLoses(t *testing.T) {
	is := is.New(t)
	g, err := NewFromPosition(nil, stuckBlackBoard(), 3, board.Black)
	is.NoErr(err)
	is.True(g.WhiteWins())

	g, err = NewFromPosition(nil, stuckBlackBoard(), 3, board.White)
	is.NoErr(err)
	is.Equal(g.Playing(), Playing)
	next, err := g.ApplyMove(mustMove(t, "e4-e5"))
	is.NoErr(err)
	is.True(next.GameOver())
	is.True(next.WhiteWins())

	// the unchecked path leaves this to the searcher.
	is.Equal(g.PlayUnchecked(mustMove(t, "e4-e5")).Playing(), Playing)
}

func TestDrawAtTurnLimit(t *testing.T) {
	is := is.New(t)
	g := NewGame(&Rules{MaxTurns: 1})
	g = playAll(t, g, "a2-a3")
	is.Equal(g.Playing(), Playing)
	is.Equal(g.PliesUntilDraw(), 1)
	g = playAll(t, g, "a5-a4")
	is.Equal(g.Playing(), Draw)
	is.True(g.GameOver())
	is.True(!g.WhiteWins())
	is.True(!g.BlackWins())
	_, ok := g.Winner()
	is.True(!ok)
	is.Equal(g.Turn(), 2)
	is.Equal(g.PliesUntilDraw(), 0)
}

func TestNewFromPositionTurnRange(t *testing.T) {
	is := is.New(t)
	rules := &Rules{MaxTurns: 40}
	for _, turn := range []int{0, -1, 42} {
		_, err := NewFromPosition(rules, board.StartingBoard(), turn, board.White)
		var te *TurnOutOfRangeError
		is.True(errors.As(err, &te))
	}
	g, err := NewFromPosition(rules, board.StartingBoard(), 41, board.White)
	is.NoErr(err)
	is.Equal(g.Playing(), Draw)

	// a missing king takes precedence over the turn limit.
	b := board.StartingBoard()
	b.Set(board.Sq(0, 5), board.Empty)
	g, err = NewFromPosition(rules, b, 41, board.White)
	is.NoErr(err)
	is.True(g.WhiteWins())
}

func TestHashFollowsPlay(t *testing.T) {
	is := is.New(t)
	rng := frand.NewCustom(make([]byte, 32), 1024, 12)
	for i := 0; i < 10; i++ {
		g := NewGame(nil)
		for !g.GameOver() {
			moves := g.LegalMoves()
			var err error
			g, err = g.ApplyMove(moves[rng.Intn(len(moves))])
			is.NoErr(err)
			b := g.Board()
			is.Equal(g.Hash(), g.Zobrist().Hash(&b, g.PlayerOnTurn()))
		}
		is.True(g.Turn() <= g.MaxTurns()+1)
	}
}

func TestToDisplayText(t *testing.T) {
	is := is.New(t)
	txt := NewGame(nil).ToDisplayText()
	is.True(strings.Contains(txt, "White to move"))
	is.True(strings.Contains(txt, "Turn 1 of 40"))
	is.True(strings.Contains(txt, "k q b n r"))

	g := playAll(t, NewGame(&Rules{MaxTurns: 1}), "a2-a3", "a5-a4")
	is.True(strings.Contains(g.ToDisplayText(), "draw"))
}
