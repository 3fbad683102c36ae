// Package automatic plays the engine against itself, optionally from
// randomised openings, and collects the results.
package automatic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/pfaffle/MiniChessBot/engine"
	"github.com/pfaffle/MiniChessBot/game"
	"github.com/pfaffle/MiniChessBot/move"
	"github.com/pfaffle/MiniChessBot/position"
)

// GameRecord is one finished game. It is also the document written to the
// yaml game log.
type GameRecord struct {
	ID          int      `yaml:"id"`
	RandomPlies int      `yaml:"random_plies"`
	Moves       []string `yaml:"moves"`
	Plies       int      `yaml:"plies"`
	Turn        int      `yaml:"turn"`
	Result      string   `yaml:"result"`
	Fingerprint uint64   `yaml:"fingerprint"`
	Final       string   `yaml:"final"`
}

// Fingerprint identifies a game by its move sequence.
func Fingerprint(moves []string) uint64 {
	return xxhash.Sum64String(strings.Join(moves, " "))
}

// NewRecord builds the record of a game that reached final through moves.
func NewRecord(id int, moves []move.Move, final *game.State) *GameRecord {
	notation := move.Strings(moves)
	return &GameRecord{
		ID:          id,
		Moves:       notation,
		Plies:       len(moves),
		Turn:        final.Turn(),
		Result:      final.Playing().String(),
		Fingerprint: Fingerprint(notation),
		Final:       position.Serialize(final),
	}
}

// GameRunner plays complete games with a single engine. It is not safe for
// concurrent use; each worker owns one.
type GameRunner struct {
	engine      *engine.Engine
	rng         *frand.RNG
	randomPlies int
	budget      time.Duration
}

// NewGameRunner plays randomPlies uniformly random moves at the start of each
// game and then searches every move for budget.
func NewGameRunner(e *engine.Engine, randomPlies int, budget time.Duration) *GameRunner {
	return &GameRunner{engine: e, rng: frand.New(), randomPlies: randomPlies, budget: budget}
}

// SetRandomSeed makes the random openings and the engine's tie-breaks
// reproducible.
func (r *GameRunner) SetRandomSeed(seed []byte) {
	r.rng = frand.NewCustom(seed, 1024, 12)
	r.engine.Solver().SetRandomSeed(seed)
}

func (r *GameRunner) nextMove(ctx context.Context, st *game.State, ply int) (move.Move, error) {
	if ply < r.randomPlies {
		return engine.RandomMove(st, r.rng, false)
	}
	return r.engine.BestMove(ctx, st, r.budget)
}

// PlayGame plays a game from the starting position to its end.
func (r *GameRunner) PlayGame(ctx context.Context, id int) (*GameRecord, error) {
	st := r.engine.NewGame()
	var moves []move.Move
	for !st.GameOver() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, err := r.nextMove(ctx, st, len(moves))
		if err != nil {
			return nil, fmt.Errorf("game %d, ply %d: %w", id, len(moves)+1, err)
		}
		st, err = st.ApplyMove(m)
		if err != nil {
			return nil, fmt.Errorf("game %d, ply %d: %w", id, len(moves)+1, err)
		}
		moves = append(moves, m)
	}
	rec := NewRecord(id, moves, st)
	rec.RandomPlies = min(r.randomPlies, len(moves))
	log.Debug().Int("game", id).Int("plies", rec.Plies).Str("result", rec.Result).Msg("game-over")
	return rec, nil
}
