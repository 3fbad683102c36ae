package negamax

import (
	"sort"

	"github.com/pfaffle/MiniChessBot/board"
	"github.com/pfaffle/MiniChessBot/move"
)

// HashMoveOffset lifts the table's best move above any one-ply estimate.
const HashMoveOffset = 1 << 24

type estimatedMove struct {
	m        move.Move
	estimate int
}

// estimate plays m on a scratch copy of b and scores the result for the
// mover.
func (s *Solver) estimate(b *board.Board, mover board.Side, m move.Move) int {
	scratch := *b
	p := scratch.At(m.From)
	scratch.Set(m.From, board.Empty)
	scratch.Set(m.To, board.Arrival(p, m.To))
	return s.eval.Evaluate(&scratch, mover)
}

// assignEstimates orders moves in place by their one-ply value, best first.
// ttMove, if present among the moves, always goes first.
func (s *Solver) assignEstimates(b *board.Board, mover board.Side, moves []move.Move,
	ttMove move.Move, hasTTMove bool) []estimatedMove {

	est := make([]estimatedMove, len(moves))
	for i, m := range moves {
		est[i] = estimatedMove{m: m, estimate: s.estimate(b, mover, m)}
		if hasTTMove && m == ttMove {
			est[i].estimate += HashMoveOffset
		}
	}
	sort.SliceStable(est, func(i, j int) bool {
		return est[i].estimate > est[j].estimate
	})
	for i := range est {
		moves[i] = est[i].m
	}
	return est
}
