// Package engine is the public face of the MiniChess engine. The shell, the
// bot and the self-play runner only talk to the game through it.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/pfaffle/MiniChessBot/config"
	"github.com/pfaffle/MiniChessBot/equity"
	"github.com/pfaffle/MiniChessBot/game"
	"github.com/pfaffle/MiniChessBot/move"
	"github.com/pfaffle/MiniChessBot/negamax"
)

// Engine bundles the rules, the evaluator and a solver. An Engine is not
// safe for concurrent searches; give each goroutine its own.
type Engine struct {
	rules      *game.Rules
	evaluator  *equity.StaticEvaluator
	solver     *negamax.Solver
	searchTime time.Duration
}

// New builds an engine from the configuration; cfg may be nil for defaults.
func New(cfg *config.Config) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	eval := equity.NewStaticEvaluator(equity.WeightsFromConfig(cfg))
	tt := &negamax.TranspositionTable{}
	if frac := cfg.GetFloat64(config.ConfigTTMemoryFraction); frac > 0 {
		tt.ResetForMemory(frac)
	} else {
		tt.Reset(cfg.GetInt(config.ConfigTTSize))
	}
	solver := negamax.NewSolver(eval, tt)
	solver.SetMaxDepth(cfg.GetInt(config.ConfigMaxDepth))
	return &Engine{
		rules:      game.NewRules(cfg),
		evaluator:  eval,
		solver:     solver,
		searchTime: cfg.GetDuration(config.ConfigSearchTime),
	}
}

func (e *Engine) Rules() *game.Rules {
	return e.rules
}

func (e *Engine) Solver() *negamax.Solver {
	return e.solver
}

func (e *Engine) Evaluator() *equity.StaticEvaluator {
	return e.evaluator
}

// SearchTime is the configured budget per move.
func (e *Engine) SearchTime() time.Duration {
	return e.searchTime
}

func (e *Engine) SetSearchTime(d time.Duration) {
	e.searchTime = d
}

// NewGame returns the starting position under this engine's rules.
func (e *Engine) NewGame() *game.State {
	return game.NewGame(e.rules)
}

// Evaluate scores st for the side to move.
func (e *Engine) Evaluate(st *game.State) int {
	b := st.Board()
	return e.evaluator.Evaluate(&b, st.PlayerOnTurn())
}

// BestMove searches st for at most budget (the configured search time if
// budget is zero) and returns the best move found.
func (e *Engine) BestMove(ctx context.Context, st *game.State, budget time.Duration) (move.Move, error) {
	res, err := e.Search(ctx, st, budget)
	if err != nil {
		return move.Move{}, err
	}
	return res.Move, nil
}

// Search is BestMove with the full search result.
func (e *Engine) Search(ctx context.Context, st *game.State, budget time.Duration) (*negamax.Result, error) {
	if st.GameOver() {
		return nil, &game.GameOverError{Result: st.Playing()}
	}
	if budget <= 0 {
		budget = e.searchTime
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()
	log.Debug().Dur("budget", budget).Int("turn", st.Turn()).Msg("searching")
	return e.solver.Solve(ctx, st)
}

// NewGame returns the canonical starting position.
func NewGame() *game.State {
	return game.NewGame(nil)
}

// LegalMoves returns every move the side to move can make.
func LegalMoves(st *game.State) []move.Move {
	return st.LegalMoves()
}

// ApplyMove plays m, failing with game.IllegalMoveError or
// game.GameOverError.
func ApplyMove(st *game.State, m move.Move) (*game.State, error) {
	return st.ApplyMove(m)
}

// ParseMove reads a move such as "a2-a3".
func ParseMove(text string) (move.Move, error) {
	return move.FromString(text)
}

func FormatMove(m move.Move) string {
	return m.String()
}

var (
	defaultEngine *Engine
	defaultMu     sync.Mutex
)

// BestMove searches with the default configuration. Concurrent calls are
// serialized.
func BestMove(ctx context.Context, st *game.State, budget time.Duration) (move.Move, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultEngine == nil {
		defaultEngine = New(nil)
	}
	return defaultEngine.BestMove(ctx, st, budget)
}

// RandomMove picks a uniformly random legal move. With good set it picks
// among the moves with the best one-ply evaluation instead.
func RandomMove(st *game.State, rng *frand.RNG, good bool) (move.Move, error) {
	if st.GameOver() {
		return move.Move{}, &game.GameOverError{Result: st.Playing()}
	}
	moves := st.LegalMoves()
	if len(moves) == 0 {
		return move.Move{}, negamax.ErrNoMoves
	}
	if rng == nil {
		rng = frand.New()
	}
	if !good {
		return moves[rng.Intn(len(moves))], nil
	}
	eval := equity.NewStaticEvaluator(equity.DefaultWeights())
	var best []move.Move
	bestVal := -negamax.HugeNumber
	for _, m := range moves {
		after := st.PlayUnchecked(m).Board()
		v := eval.Evaluate(&after, st.PlayerOnTurn())
		switch {
		case v > bestVal:
			bestVal = v
			best = []move.Move{m}
		case v == bestVal:
			best = append(best, m)
		}
	}
	return best[rng.Intn(len(best))], nil
}
