// Package game encapsulates the rules of MiniChess. A State is immutable:
// every move produces a new State and leaves the old one untouched, so
// states can be shared freely between the search, the shell and the bot.
package game

import (
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/pfaffle/MiniChessBot/board"
	"github.com/pfaffle/MiniChessBot/move"
	"github.com/pfaffle/MiniChessBot/movegen"
	"github.com/pfaffle/MiniChessBot/zobrist"
)

// PlayState is whether the game is still going, and if not, how it ended.
type PlayState uint8

const (
	Playing PlayState = iota
	WhiteWon
	BlackWon
	Draw
)

func (p PlayState) String() string {
	switch p {
	case Playing:
		return "playing"
	case WhiteWon:
		return "white wins"
	case BlackWon:
		return "black wins"
	case Draw:
		return "draw"
	}
	return "unknown"
}

func wonBy(s board.Side) PlayState {
	if s == board.White {
		return WhiteWon
	}
	return BlackWon
}

// State is a full game position: the board, whose turn it is, the turn
// counter and how (if at all) the game has ended.
type State struct {
	board    board.Board
	turn     int
	onturn   board.Side
	playing  PlayState
	maxTurns int
	hash     uint64
	zobrist  *zobrist.Zobrist
}

// NewGame returns the canonical starting position.
func NewGame(rules *Rules) *State {
	if rules == nil {
		rules = DefaultRules()
	}
	st := &State{
		board:    board.StartingBoard(),
		turn:     1,
		onturn:   board.White,
		playing:  Playing,
		maxTurns: rules.MaxTurns,
		zobrist:  rules.zobrist(),
	}
	st.hash = st.zobrist.Hash(&st.board, st.onturn)
	return st
}

// NewFromPosition builds a state from an arbitrary board. The play state is
// derived from the position itself: a missing king, a turn counter past the
// draw ceiling, or a side to move without moves all end the game.
func NewFromPosition(rules *Rules, b board.Board, turn int, onturn board.Side) (*State, error) {
	if rules == nil {
		rules = DefaultRules()
	}
	if turn < 1 || turn > rules.MaxTurns+1 {
		return nil, &TurnOutOfRangeError{Turn: turn, MaxTurns: rules.MaxTurns}
	}
	st := &State{
		board:    b,
		turn:     turn,
		onturn:   onturn,
		playing:  Playing,
		maxTurns: rules.MaxTurns,
		zobrist:  rules.zobrist(),
	}
	st.hash = st.zobrist.Hash(&st.board, st.onturn)
	st.playing = st.deriveTerminal(true)
	return st, nil
}

func (g *State) Board() board.Board {
	return g.board
}

// At is a shortcut for Board().At(sq) without copying the board.
func (g *State) At(sq board.Square) board.Piece {
	return g.board.At(sq)
}

// Turn returns the turn counter. It starts at 1 and goes up each time White
// is about to move.
func (g *State) Turn() int {
	return g.turn
}

func (g *State) PlayerOnTurn() board.Side {
	return g.onturn
}

func (g *State) MaxTurns() int {
	return g.maxTurns
}

func (g *State) Hash() uint64 {
	return g.hash
}

func (g *State) Zobrist() *zobrist.Zobrist {
	return g.zobrist
}

func (g *State) Playing() PlayState {
	return g.playing
}

func (g *State) GameOver() bool {
	return g.playing != Playing
}

func (g *State) WhiteWins() bool {
	return g.playing == WhiteWon
}

func (g *State) BlackWins() bool {
	return g.playing == BlackWon
}

// Winner returns the winning side. ok is false while playing or on a draw.
func (g *State) Winner() (winner board.Side, ok bool) {
	switch g.playing {
	case WhiteWon:
		return board.White, true
	case BlackWon:
		return board.Black, true
	}
	return board.White, false
}

// PliesUntilDraw is how many more single moves can be played before the
// turn limit ends the game.
func (g *State) PliesUntilDraw() int {
	remaining := (g.maxTurns - g.turn + 1) * 2
	if g.onturn == board.Black {
		remaining--
	}
	if remaining < 0 {
		return 0
	}
	return remaining
}

// LegalMoves returns every move for the side to move. It is empty once the
// game is over.
func (g *State) LegalMoves() []move.Move {
	if g.GameOver() {
		return nil
	}
	return movegen.GenAll(&g.board, g.onturn)
}

// IsLegal returns true if m is among the moves available right now.
func (g *State) IsLegal(m move.Move) bool {
	return lo.Contains(g.LegalMoves(), m)
}

// ApplyMove validates m and returns the resulting state.
func (g *State) ApplyMove(m move.Move) (*State, error) {
	if g.GameOver() {
		return nil, &GameOverError{Result: g.playing}
	}
	if !g.IsLegal(m) {
		return nil, &IllegalMoveError{Move: m, OnTurn: g.onturn}
	}
	next := g.play(m)
	if next.playing == Playing {
		next.playing = next.deriveTerminal(true)
	}
	log.Debug().Str("move", m.String()).Int("turn", next.turn).
		Str("result", next.playing.String()).Msg("applied-move")
	return next, nil
}

// PlayUnchecked plays m without checking that it is legal, for callers that
// took m from LegalMoves or movegen.GenAll. It detects king captures and the
// turn limit, but does not look for a side left without moves; searchers
// discover that when they generate no children.
func (g *State) PlayUnchecked(m move.Move) *State {
	return g.play(m)
}

func (g *State) play(m move.Move) *State {
	next := *g
	next.hash = g.zobrist.AddMove(g.hash, &g.board, m)

	mover := next.board.At(m.From)
	captured := next.board.At(m.To)
	next.board.Set(m.From, board.Empty)
	next.board.Set(m.To, board.Arrival(mover, m.To))

	if g.onturn == board.Black {
		next.turn++
	}
	next.onturn = g.onturn.Other()

	switch {
	case captured.Kind() == board.WKing:
		next.playing = wonBy(g.onturn)
	case next.turn > next.maxTurns:
		next.playing = Draw
	}
	return &next
}

// deriveTerminal figures out the play state from scratch. It checks, in
// order: kings, the turn limit, then (if checkMoves) whether the side to
// move has anything to play.
func (g *State) deriveTerminal(checkMoves bool) PlayState {
	whiteKing := g.board.HasKing(board.White)
	blackKing := g.board.HasKing(board.Black)
	switch {
	case !whiteKing && !blackKing:
		// can't happen in play; call it for whoever moved last.
		return wonBy(g.onturn.Other())
	case !whiteKing:
		return BlackWon
	case !blackKing:
		return WhiteWon
	case g.turn > g.maxTurns:
		return Draw
	}
	if checkMoves && len(movegen.GenAll(&g.board, g.onturn)) == 0 {
		return wonBy(g.onturn.Other())
	}
	return Playing
}

// Equals compares everything that defines a position. The zobrist table
// pointer is not compared, only the hash it produced.
func (g *State) Equals(o *State) bool {
	return g.board == o.board &&
		g.turn == o.turn &&
		g.onturn == o.onturn &&
		g.playing == o.playing &&
		g.maxTurns == o.maxTurns &&
		g.hash == o.hash
}
