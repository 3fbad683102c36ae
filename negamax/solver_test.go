package negamax

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/pfaffle/MiniChessBot/board"
	"github.com/pfaffle/MiniChessBot/equity"
	"github.com/pfaffle/MiniChessBot/game"
	"github.com/pfaffle/MiniChessBot/move"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func seed(b byte) []byte {
	s := make([]byte, 32)
	s[0] = b
	return s
}

func newSolver() *Solver {
	s := NewSolver(equity.NewStaticEvaluator(equity.DefaultWeights()), nil)
	s.SetRandomSeed(seed(1))
	return s
}

func mustPosition(t *testing.T, b board.Board, turn int, onturn board.Side) *game.State {
	t.Helper()
	st, err := game.NewFromPosition(nil, b, turn, onturn)
	if err != nil {
		t.Fatal(err)
	}
	return st
}

// White's rook can take the king on a6 right away.
func captureInOne() board.Board {
	var b board.Board
	b.Clear()
	b.Set(board.Sq(4, 0), board.WKing)
	b.Set(board.Sq(0, 0), board.WRook)
	b.Set(board.Sq(0, 5), board.BKing)
	b.Set(board.Sq(4, 5), board.BRook)
	return b
}

// The rook on b1 covers b5 and b6 and the queen on d2 covers a5, so
// whichever way Black's lone king steps it gets taken.
func captureInThree() board.Board {
	var b board.Board
	b.Clear()
	b.Set(board.Sq(4, 0), board.WKing)
	b.Set(board.Sq(1, 0), board.WRook)
	b.Set(board.Sq(3, 1), board.WQueen)
	b.Set(board.Sq(0, 5), board.BKing)
	return b
}

func TestCaptureKingInOne(t *testing.T) {
	is := is.New(t)
	s := newSolver()
	st := mustPosition(t, captureInOne(), 5, board.White)
	res, err := s.Solve(context.Background(), st)
	is.NoErr(err)
	is.Equal(res.Move.String(), "a1-a6")
	is.True(res.Value >= equity.DefaultWeights().Win)
	is.Equal(res.Depth, 1)
	is.Equal(res.Stop, StopProven)
	is.Equal(res.PV.GetPVMove(), res.Move)
}

func TestForcedWinInThree(t *testing.T) {
	is := is.New(t)
	for _, useTT := range []bool{true, false} {
		s := newSolver()
		s.SetTranspositionTableOptim(useTT)
		st := mustPosition(t, captureInThree(), 5, board.White)
		res, err := s.Solve(context.Background(), st)
		is.NoErr(err)
		is.Equal(res.Depth, 3)
		is.Equal(res.Stop, StopProven)
		is.True(res.Value >= equity.DefaultWeights().Win)
		is.Equal(res.PV.GetPVMove(), res.Move)

		// whatever the solver picked really does win.
		after, err := st.ApplyMove(res.Move)
		is.NoErr(err)
		for _, reply := range after.LegalMoves() {
			next, err := after.ApplyMove(reply)
			is.NoErr(err)
			wins := false
			for _, m := range next.LegalMoves() {
				if next.PlayUnchecked(m).WhiteWins() {
					wins = true
				}
			}
			is.True(wins)
		}
	}
}

func TestLongerBudgetNeverWorse(t *testing.T) {
	is := is.New(t)
	st := mustPosition(t, captureInThree(), 5, board.White)

	expired, cancel := context.WithCancel(context.Background())
	cancel()
	short, err := newSolver().Solve(expired, st)
	is.NoErr(err)
	is.Equal(short.Depth, 0)
	is.Equal(short.Stop, StopTimedOut)

	s := newSolver()
	s.SetMaxDepth(1)
	shallow, err := s.Solve(context.Background(), st)
	is.NoErr(err)
	is.Equal(shallow.Depth, 1)
	is.Equal(shallow.Stop, StopExhausted)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	long, err := newSolver().Solve(ctx, st)
	is.NoErr(err)

	is.True(shallow.Value >= short.Value)
	is.True(long.Value >= shallow.Value)
}

func TestTimeoutFallsBackOnOrdering(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st := game.NewGame(nil)
	res, err := newSolver().Solve(ctx, st)
	is.NoErr(err)
	is.Equal(res.Depth, 0)
	is.Equal(res.Move, res.RootMoves[0].Move)
	is.Equal(len(res.RootMoves), 7)
	is.True(st.IsLegal(res.Move))
	// the ordering is best first.
	for i := 1; i < len(res.RootMoves); i++ {
		is.True(res.RootMoves[i-1].Value >= res.RootMoves[i].Value)
	}
}

type flatEvaluator struct{}

func (flatEvaluator) Evaluate(*board.Board, board.Side) int { return 0 }
func (flatEvaluator) WinValue() int                         { return 100000 }

func TestTiesAreBrokenRandomly(t *testing.T) {
	is := is.New(t)
	st := game.NewGame(nil)
	picked := map[move.Move]bool{}
	for i := 0; i < 20; i++ {
		s := NewSolver(flatEvaluator{}, nil)
		s.SetRandomSeed(seed(byte(i)))
		s.SetMaxDepth(2)
		res, err := s.Solve(context.Background(), st)
		is.NoErr(err)
		is.Equal(res.Depth, 2)
		is.Equal(res.Value, 0)
		is.Equal(len(res.Ties), 7)
		is.True(st.IsLegal(res.Move))
		picked[res.Move] = true
	}
	is.True(len(picked) > 1)
}

func TestSeededSolveIsReproducible(t *testing.T) {
	is := is.New(t)
	st := game.NewGame(nil)
	var moves []move.Move
	for i := 0; i < 2; i++ {
		s := newSolver()
		s.SetMaxDepth(3)
		res, err := s.Solve(context.Background(), st)
		is.NoErr(err)
		moves = append(moves, res.Move)
	}
	is.Equal(moves[0], moves[1])
}

func TestStopsAtDrawHorizon(t *testing.T) {
	is := is.New(t)
	st := mustPosition(t, board.StartingBoard(), game.DefaultMaxTurns, board.Black)
	is.Equal(st.PliesUntilDraw(), 1)
	res, err := newSolver().Solve(context.Background(), st)
	is.NoErr(err)
	is.Equal(res.Depth, 1)
	is.Equal(res.Stop, StopExhausted)
}

func TestSolveFinishedGame(t *testing.T) {
	is := is.New(t)
	st := mustPosition(t, captureInOne(), 5, board.White)
	over, err := st.ApplyMove(move.New(board.Sq(0, 0), board.Sq(0, 5)))
	is.NoErr(err)
	_, err = newSolver().Solve(context.Background(), over)
	var goe *game.GameOverError
	is.True(errors.As(err, &goe))
}

func TestLogStream(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	s := newSolver()
	s.SetMaxDepth(2)
	s.SetLogStream(&buf)
	_, err := s.Solve(context.Background(), game.NewGame(nil))
	is.NoErr(err)
	is.True(bytes.Contains(buf.Bytes(), []byte("- ply: 1")))
	is.True(bytes.Contains(buf.Bytes(), []byte("- ply: 2")))
	is.True(bytes.Contains(buf.Bytes(), []byte("- play: a2-a3")))
}
