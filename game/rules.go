package game

import (
	"github.com/pfaffle/MiniChessBot/config"
	"github.com/pfaffle/MiniChessBot/zobrist"
)

const DefaultMaxTurns = 40

// Rules encapsulates what a game needs besides the board: the draw ceiling
// and the zobrist table hashes are computed with.
type Rules struct {
	MaxTurns int
	// Zobrist may be nil, in which case the process-wide table is used.
	Zobrist *zobrist.Zobrist
}

func DefaultRules() *Rules {
	return &Rules{MaxTurns: DefaultMaxTurns}
}

// NewRules reads the draw ceiling from the configuration.
func NewRules(cfg *config.Config) *Rules {
	r := DefaultRules()
	if cfg != nil {
		if mt := cfg.GetInt(config.ConfigMaxTurns); mt > 0 {
			r.MaxTurns = mt
		}
	}
	return r
}

func (r *Rules) zobrist() *zobrist.Zobrist {
	if r.Zobrist != nil {
		return r.Zobrist
	}
	return zobrist.Default()
}
