// Package equity contains the static evaluation used at the leaves of the
// search.
package equity

import (
	"github.com/samber/lo"

	"github.com/pfaffle/MiniChessBot/board"
	"github.com/pfaffle/MiniChessBot/config"
)

// Evaluator maps a board to a score from the point of view of the side to
// move. Positive is good for that side.
type Evaluator interface {
	Evaluate(b *board.Board, onTurn board.Side) int
	WinValue() int
}

// Weights are the tunable constants of the static evaluation.
type Weights struct {
	Pawn      int
	Knight    int
	Bishop    int
	Rook      int
	Queen     int
	Centre    int
	Developed int
	Advance   int
	Doubled   int
	Chain     int
	Win       int
}

func DefaultWeights() Weights {
	return Weights{
		Pawn:      300,
		Knight:    800,
		Bishop:    800,
		Rook:      1200,
		Queen:     2000,
		Centre:    50,
		Developed: 40,
		Advance:   20,
		Doubled:   60,
		Chain:     30,
		Win:       100000,
	}
}

// WeightsFromConfig reads the eval.* keys.
func WeightsFromConfig(cfg *config.Config) Weights {
	return Weights{
		Pawn:      cfg.GetInt(config.ConfigEvalPawn),
		Knight:    cfg.GetInt(config.ConfigEvalKnight),
		Bishop:    cfg.GetInt(config.ConfigEvalBishop),
		Rook:      cfg.GetInt(config.ConfigEvalRook),
		Queen:     cfg.GetInt(config.ConfigEvalQueen),
		Centre:    cfg.GetInt(config.ConfigEvalCentre),
		Developed: cfg.GetInt(config.ConfigEvalDeveloped),
		Advance:   cfg.GetInt(config.ConfigEvalAdvance),
		Doubled:   cfg.GetInt(config.ConfigEvalDoubled),
		Chain:     cfg.GetInt(config.ConfigEvalChain),
		Win:       cfg.GetInt(config.ConfigEvalWin),
	}
}

func (w Weights) material(p board.Piece) int {
	switch p.Kind() {
	case board.WPawn:
		return w.Pawn
	case board.WKnight:
		return w.Knight
	case board.WBishop:
		return w.Bishop
	case board.WRook:
		return w.Rook
	case board.WQueen:
		return w.Queen
	}
	return 0
}

var centre = []board.Square{board.Sq(1, 2), board.Sq(2, 2), board.Sq(1, 3), board.Sq(2, 3)}

// IsCentre returns true for b3, c3, b4 and c4.
func IsCentre(sq board.Square) bool {
	return lo.Contains(centre, sq)
}

// Breakdown is the evaluation split by term, each White minus Black.
type Breakdown struct {
	Material  int
	Centre    int
	Developed int
	Advance   int
	Doubled   int
	Chain     int
}

func (bd Breakdown) Total() int {
	return bd.Material + bd.Centre + bd.Developed + bd.Advance - bd.Doubled + bd.Chain
}

// StaticEvaluator is the heuristic evaluation: material, centre control,
// development and pawn structure.
type StaticEvaluator struct {
	w Weights
}

func NewStaticEvaluator(w Weights) *StaticEvaluator {
	return &StaticEvaluator{w: w}
}

func (e *StaticEvaluator) Weights() Weights {
	return e.w
}

func (e *StaticEvaluator) WinValue() int {
	return e.w.Win
}

// Evaluate implements Evaluator. A board missing a king is worth WinValue
// to whoever still has theirs.
func (e *StaticEvaluator) Evaluate(b *board.Board, onTurn board.Side) int {
	if !b.HasKing(onTurn) {
		return -e.w.Win
	}
	if !b.HasKing(onTurn.Other()) {
		return e.w.Win
	}
	score := e.Breakdown(b).Total()
	if onTurn == board.Black {
		return -score
	}
	return score
}

// Breakdown computes each term of the evaluation from White's point of view.
func (e *StaticEvaluator) Breakdown(b *board.Board) Breakdown {
	var bd Breakdown
	for _, side := range []board.Side{board.White, board.Black} {
		sign := 1
		if side == board.Black {
			sign = -1
		}
		part := e.sideTerms(b, side)
		bd.Material += sign * part.Material
		bd.Centre += sign * part.Centre
		bd.Developed += sign * part.Developed
		bd.Advance += sign * part.Advance
		bd.Doubled += sign * part.Doubled
		bd.Chain += sign * part.Chain
	}
	return bd
}

func (e *StaticEvaluator) sideTerms(b *board.Board, side board.Side) Breakdown {
	var bd Breakdown
	pieces := b.PiecesOf(side)
	bd.Material = lo.SumBy(pieces, func(sq board.Square) int {
		return e.w.material(b.At(sq))
	})
	bd.Centre = e.w.Centre * lo.CountBy(pieces, IsCentre)
	bd.Developed = e.w.Developed * lo.CountBy(pieces, b.IsDeveloped)

	pawn := board.Of(board.WPawn, side)
	fwd, startRank := 1, 1
	if side == board.Black {
		fwd, startRank = -1, board.NumRanks-2
	}
	for _, sq := range pieces {
		if b.At(sq) != pawn {
			continue
		}
		bd.Advance += e.w.Advance * (int(sq.Rank) - startRank) * fwd
		if pawnAhead(b, sq, fwd, pawn) {
			bd.Doubled += e.w.Doubled
		}
		if defendedByPawn(b, sq, fwd, pawn) {
			bd.Chain += e.w.Chain
		}
	}
	return bd
}

func pawnAhead(b *board.Board, sq board.Square, fwd int, pawn board.Piece) bool {
	for ahead := sq.Offset(0, fwd); ahead.OnBoard(); ahead = ahead.Offset(0, fwd) {
		if b.At(ahead) == pawn {
			return true
		}
	}
	return false
}

func defendedByPawn(b *board.Board, sq board.Square, fwd int, pawn board.Piece) bool {
	for _, dx := range []int{-1, 1} {
		behind := sq.Offset(dx, -fwd)
		if behind.OnBoard() && b.At(behind) == pawn {
			return true
		}
	}
	return false
}
