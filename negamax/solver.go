// Package negamax picks moves with an iterative-deepening negamax search
// with alpha-beta pruning and a transposition table.
package negamax

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"github.com/pfaffle/MiniChessBot/equity"
	"github.com/pfaffle/MiniChessBot/game"
	"github.com/pfaffle/MiniChessBot/move"
	"github.com/pfaffle/MiniChessBot/movegen"
)

// thanks Wikipedia:
/*
function negamax(node, depth, α, β, color) is
    if depth = 0 or node is a terminal node then
        return color × the heuristic value of node

    childNodes := generateMoves(node)
    childNodes := orderMoves(childNodes)
    value := −∞
    foreach child in childNodes do
        value := max(value, −negamax(child, depth − 1, −β, −α, −color))
        α := max(α, value)
        if α ≥ β then
            break (* cut-off *)
    return value
(* Initial call for Player A's root node *)
negamax(rootNode, depth, −∞, +∞, 1)
**/

const HugeNumber = 1 << 30
const DefaultMaxDepth = 32

var (
	ErrNoMoves = errors.New("no legal moves at the root")
)

// Credit: MIT-licensed https://github.com/algerbrex/blunder/blob/main/engine/search.go
type PVLine struct {
	Moves []move.Move
	score int
}

// Clear the principal variation line.
func (pvLine *PVLine) Clear() {
	pvLine.Moves = nil
}

// Update the principal variation line with a new best move,
// and a new line of best play after the best move.
func (pvLine *PVLine) Update(m move.Move, newPVLine PVLine, score int) {
	pvLine.Clear()
	pvLine.Moves = append(pvLine.Moves, m)
	pvLine.Moves = append(pvLine.Moves, newPVLine.Moves...)
	pvLine.score = score
}

// Get the best move from the principal variation line.
func (pvLine *PVLine) GetPVMove() move.Move {
	return pvLine.Moves[0]
}

func (pvLine PVLine) Score() int {
	return pvLine.score
}

// Convert the principal variation line to a string.
func (pvLine PVLine) String() string {
	var s strings.Builder
	fmt.Fprintf(&s, "PV; val %d\n", pvLine.score)
	for i, m := range pvLine.Moves {
		fmt.Fprintf(&s, "%d: %s\n", i+1, m)
	}
	return s.String()
}

func (pvLine PVLine) NLBString() string {
	// no line breaks
	var s strings.Builder
	fmt.Fprintf(&s, "PV; val %d; ", pvLine.score)
	for i, m := range pvLine.Moves {
		fmt.Fprintf(&s, "%d: %s; ", i+1, m)
	}
	return s.String()
}

// StopReason says why deepening ended.
type StopReason uint8

const (
	// StopTimedOut means the budget ran out during a depth; that depth was
	// thrown away.
	StopTimedOut StopReason = iota
	// StopExhausted means the maximum depth (or the draw horizon) was
	// searched completely.
	StopExhausted
	// StopProven means a forced win or loss was found.
	StopProven
)

func (r StopReason) String() string {
	switch r {
	case StopTimedOut:
		return "timed-out"
	case StopExhausted:
		return "exhausted"
	case StopProven:
		return "proven"
	}
	return "unknown"
}

// RootMove is a move at the root with its value at the deepest completed
// depth. Only values tied with the best are exact; the rest are upper
// bounds.
type RootMove struct {
	Move  move.Move
	Value int
	pv    PVLine
}

// Result is what a solve commits to.
type Result struct {
	Move  move.Move
	Value int
	// Depth is the deepest fully searched depth, 0 if not even depth 1
	// finished and Move comes from the one-ply ordering.
	Depth     int
	Ties      []move.Move
	RootMoves []RootMove
	PV        PVLine
	Nodes     uint64
	Elapsed   time.Duration
	Stop      StopReason
}

type Solver struct {
	eval   equity.Evaluator
	ttable *TranspositionTable
	rng    *frand.RNG

	maxDepth                int
	transpositionTableOptim bool
	iterativeDeepeningOptim bool

	// done is the context's done channel for the solve in progress.
	done  <-chan struct{}
	nodes atomic.Uint64

	logStream io.Writer
}

// NewSolver creates a solver. If tt is nil the solver allocates a table of
// DefaultTableSize slots.
func NewSolver(eval equity.Evaluator, tt *TranspositionTable) *Solver {
	if tt == nil {
		tt = NewTranspositionTable(DefaultTableSize)
	}
	return &Solver{
		eval:                    eval,
		ttable:                  tt,
		rng:                     frand.New(),
		maxDepth:                DefaultMaxDepth,
		transpositionTableOptim: true,
		iterativeDeepeningOptim: true,
	}
}

func (s *Solver) SetMaxDepth(d int) {
	s.maxDepth = max(d, 1)
}

func (s *Solver) SetIterativeDeepening(id bool) {
	s.iterativeDeepeningOptim = id
}

func (s *Solver) SetTranspositionTableOptim(tt bool) {
	s.transpositionTableOptim = tt
}

func (s *Solver) SetTranspositionTable(tt *TranspositionTable) {
	s.ttable = tt
}

func (s *Solver) TranspositionTable() *TranspositionTable {
	return s.ttable
}

// SetRandomSeed makes the choice among equally good moves reproducible.
// The seed must be 32 bytes.
func (s *Solver) SetRandomSeed(seed []byte) {
	s.rng = frand.NewCustom(seed, 1024, 12)
}

// SetLogStream makes the solver write each depth's root values to w as
// yaml.
func (s *Solver) SetLogStream(w io.Writer) {
	s.logStream = w
}

func (s *Solver) Evaluator() equity.Evaluator {
	return s.eval
}

func (s *Solver) timedOut() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// terminalValue scores a finished game for the side to move. Wins found
// with more depth left are worth more, so the search prefers quick wins and
// slow losses.
func (s *Solver) terminalValue(st *game.State, depth int) int {
	winner, ok := st.Winner()
	if !ok {
		return 0
	}
	v := s.eval.WinValue() + depth
	if winner == st.PlayerOnTurn() {
		return v
	}
	return -v
}

func (s *Solver) negamax(st *game.State, depth, α, β int, pv *PVLine) int {
	if st.GameOver() {
		return s.terminalValue(st, depth)
	}
	onTurn := st.PlayerOnTurn()
	b := st.Board()
	if depth == 0 || s.timedOut() {
		return s.eval.Evaluate(&b, onTurn)
	}

	alphaOrig := α
	var ttMove move.Move
	var hasTTMove bool
	if s.transpositionTableOptim {
		ttEntry := s.ttable.lookup(st.Hash())
		score, cutoff, newα, newβ := ttEntry.probe(depth, α, β)
		if cutoff {
			return score
		}
		α, β = newα, newβ
		// search hash move first.
		ttMove, hasTTMove = tinyMoveToMove(ttEntry.play)
	}

	children := movegen.GenAll(&b, onTurn)
	if len(children) == 0 {
		// no moves loses.
		return -(s.eval.WinValue() + depth)
	}
	s.assignEstimates(&b, onTurn, children, ttMove, hasTTMove)

	bestValue := -HugeNumber
	var bestMove move.Move
	childPV := PVLine{}
	for _, m := range children {
		child := st.PlayUnchecked(m)
		s.nodes.Add(1)
		value := -s.negamax(child, depth-1, -β, -α, &childPV)
		if value > bestValue {
			bestValue = value
			bestMove = m
			pv.Update(m, childPV, bestValue)
		}
		α = max(α, bestValue)
		if bestValue >= β {
			break // beta cut-off
		}
		childPV.Clear()
	}

	// values computed after the deadline are not trustworthy.
	if s.transpositionTableOptim && !s.timedOut() {
		s.ttable.store(st.Hash(), TableEntry{
			alpha: int32(alphaOrig),
			beta:  int32(β),
			score: int32(bestValue),
			depth: uint8(depth),
			play:  moveToTinyMove(bestMove),
		})
	}
	return bestValue
}

// searchRoot searches every root move to depth plies. Each move is searched
// with the window (best-1, ∞) so that a move equal to the best so far comes
// back with an exact value. ok is false if time ran out.
func (s *Solver) searchRoot(st *game.State, root []RootMove, depth int) (ranked []RootMove, ok bool) {
	ranked = make([]RootMove, len(root))
	best := -HugeNumber
	if s.logStream != nil {
		fmt.Fprintf(s.logStream, "  plays:\n")
	}
	for i, rm := range root {
		if s.timedOut() {
			return nil, false
		}
		child := st.PlayUnchecked(rm.Move)
		s.nodes.Add(1)
		α := -HugeNumber
		if best > -HugeNumber {
			α = best - 1
		}
		childPV := PVLine{}
		value := -s.negamax(child, depth-1, -HugeNumber, -α, &childPV)
		if s.timedOut() {
			return nil, false
		}
		ranked[i] = RootMove{Move: rm.Move, Value: value}
		ranked[i].pv.Update(rm.Move, childPV, value)
		best = max(best, value)
		if s.logStream != nil {
			fmt.Fprintf(s.logStream, "  - play: %v\n    value: %v\n", rm.Move, value)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Value > ranked[j].Value
	})
	return ranked, true
}

func (s *Solver) iterativelyDeepen(st *game.State, moves []move.Move) *Result {
	b := st.Board()
	est := s.assignEstimates(&b, st.PlayerOnTurn(), moves, move.Move{}, false)
	root := lo.Map(est, func(e estimatedMove, _ int) RootMove {
		return RootMove{Move: e.m, Value: e.estimate}
	})
	// if depth 1 doesn't finish, fall back on the one-ply ordering.
	res := &Result{
		Move:      root[0].Move,
		Value:     root[0].Value,
		Ties:      []move.Move{root[0].Move},
		RootMoves: root,
		Stop:      StopTimedOut,
	}

	maxDepth := max(min(s.maxDepth, st.PliesUntilDraw()), 1)
	start := 1
	if !s.iterativeDeepeningOptim {
		start = maxDepth
	}
	for p := start; p <= maxDepth; p++ {
		log.Debug().Int("plies", p).Msg("deepening-iteratively")
		if s.logStream != nil {
			fmt.Fprintf(s.logStream, "- ply: %d\n", p)
		}
		ranked, ok := s.searchRoot(st, root, p)
		if !ok {
			log.Debug().Int("plies", p).Msg("deepening-interrupted")
			res.Stop = StopTimedOut
			return res
		}
		root = ranked
		best := root[0].Value
		tied := lo.Filter(root, func(rm RootMove, _ int) bool {
			return rm.Value == best
		})
		chosen := tied[s.rng.Intn(len(tied))]
		res = &Result{
			Move:      chosen.Move,
			Value:     best,
			Depth:     p,
			Ties:      lo.Map(tied, func(rm RootMove, _ int) move.Move { return rm.Move }),
			RootMoves: root,
			PV:        chosen.pv,
		}
		log.Debug().Int("ply", p).Int("value", best).Int("ties", len(tied)).
			Str("pv", chosen.pv.NLBString()).Msg("best-val")

		if abs(best) >= s.eval.WinValue() {
			res.Stop = StopProven
			return res
		}
	}
	res.Stop = StopExhausted
	return res
}

// Solve searches st until ctx is done or deepening stops on its own, and
// returns the best move of the deepest completed depth. Running out of time
// is not an error.
func (s *Solver) Solve(ctx context.Context, st *game.State) (*Result, error) {
	if st.GameOver() {
		return nil, &game.GameOverError{Result: st.Playing()}
	}
	moves := st.LegalMoves()
	if len(moves) == 0 {
		return nil, ErrNoMoves
	}
	tstart := time.Now()
	s.done = ctx.Done()
	s.nodes.Store(0)
	if s.transpositionTableOptim {
		s.ttable.Reset(s.ttable.Size())
	}

	g := &errgroup.Group{}
	done := make(chan struct{})
	g.Go(func() error {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		var lastNodes uint64
		for {
			select {
			case <-done:
				return nil
			case <-ticker.C:
				nodes := s.nodes.Load()
				log.Debug().Uint64("nps", nodes-lastNodes).Msg("nodes-per-second")
				lastNodes = nodes
			}
		}
	})

	var res *Result
	g.Go(func() error {
		defer close(done)
		res = s.iterativelyDeepen(st, moves)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res.Nodes = s.nodes.Load()
	res.Elapsed = time.Since(tstart)
	stats := s.ttable.Stats()
	log.Info().
		Str("move", res.Move.String()).
		Int("value", res.Value).
		Int("depth", res.Depth).
		Str("stop", res.Stop.String()).
		Uint64("nodes", res.Nodes).
		Uint64("ttable-created", stats.Created).
		Uint64("ttable-lookups", stats.Lookups).
		Uint64("ttable-hits", stats.Hits).
		Uint64("ttable-t2collisions", stats.T2Collisions).
		Float64("time-elapsed-sec", res.Elapsed.Seconds()).
		Msg("solve-returning")
	return res, nil
}
