package automatic

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/pfaffle/MiniChessBot/config"
	"github.com/pfaffle/MiniChessBot/engine"
	"github.com/pfaffle/MiniChessBot/game"
	"github.com/pfaffle/MiniChessBot/position"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	os.Exit(m.Run())
}

// quickConfig keeps games short and searches shallow.
func quickConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigMaxDepth, 1)
	cfg.Set(config.ConfigMaxTurns, 6)
	return cfg
}

func seed(b byte) []byte {
	s := make([]byte, 32)
	s[0] = b
	return s
}

func TestPlayGame(t *testing.T) {
	is := is.New(t)
	cfg := quickConfig()
	r := NewGameRunner(engine.New(cfg), 2, 5*time.Second)
	r.SetRandomSeed(seed(3))
	rec, err := r.PlayGame(context.Background(), 7)
	is.NoErr(err)
	is.Equal(rec.ID, 7)
	is.Equal(rec.RandomPlies, 2)
	is.Equal(rec.Plies, len(rec.Moves))
	is.True(rec.Plies > 0)
	is.True(rec.Result != game.Playing.String())
	is.Equal(rec.Fingerprint, Fingerprint(rec.Moves))

	final, err := position.Parse(rec.Final, game.NewRules(cfg))
	is.NoErr(err)
	is.True(final.GameOver())
	is.Equal(final.Playing().String(), rec.Result)
	is.Equal(final.Turn(), rec.Turn)
}

func TestSeededGamesRepeat(t *testing.T) {
	is := is.New(t)
	var games [][]string
	for i := 0; i < 2; i++ {
		r := NewGameRunner(engine.New(quickConfig()), 4, 5*time.Second)
		r.SetRandomSeed(seed(9))
		rec, err := r.PlayGame(context.Background(), 1)
		is.NoErr(err)
		games = append(games, rec.Moves)
	}
	is.Equal(games[0], games[1])
}

func TestPlayGameCancelled(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewGameRunner(engine.New(quickConfig()), 0, time.Second).PlayGame(ctx, 1)
	is.True(errors.Is(err, context.Canceled))
}

func TestStartCompVComp(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	cfg := quickConfig()
	opts := OptionsFromConfig(cfg)
	opts.Games = 6
	opts.Threads = 3
	opts.RandomPlies = 3
	opts.Budget = 5 * time.Second
	opts.LogFile = filepath.Join(dir, "games.yaml")
	opts.DBFile = filepath.Join(dir, "games.db")
	opts.Seed = seed(1)

	sum, err := StartCompVComp(context.Background(), cfg, opts)
	is.NoErr(err)
	is.Equal(sum.Games, 6)
	is.Equal(sum.WhiteWins+sum.BlackWins+sum.Draws, 6)
	is.True(sum.Distinct() >= 1)
	is.Equal(CVCCounter.Value(), int64(6))
	is.Equal(IsPlaying.Value(), int64(0))

	fromLog, err := AnalyzeLogFile(opts.LogFile)
	is.NoErr(err)
	is.Equal(fromLog.Games, sum.Games)
	is.Equal(fromLog.WhiteWins, sum.WhiteWins)
	is.Equal(fromLog.Draws, sum.Draws)
	is.Equal(fromLog.Distinct(), sum.Distinct())

	db, err := sql.Open("sqlite", opts.DBFile)
	is.NoErr(err)
	defer db.Close()
	var n int
	is.NoErr(db.QueryRow(`SELECT COUNT(*) FROM games`).Scan(&n))
	is.Equal(n, 6)
}

func TestStartCompVCompCancelled(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts := Options{Games: 4, Threads: 2, Budget: time.Second}
	sum, err := StartCompVComp(ctx, quickConfig(), opts)
	is.True(errors.Is(err, context.Canceled))
	is.True(sum.Games < 4)

	_, err = StartCompVComp(context.Background(), quickConfig(), Options{})
	is.True(err != nil)
}

func TestResultStore(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "results.db")

	s, err := OpenResultStore(path, "first")
	is.NoErr(err)
	recs := []*GameRecord{
		{ID: 1, Moves: []string{"a2-a3"}, Result: "white wins", Fingerprint: 1},
		{ID: 2, Moves: []string{"b2-b3"}, Result: "white wins", Fingerprint: 2},
		{ID: 3, Moves: []string{"b2-b3"}, Result: "draw", Fingerprint: 2},
	}
	for _, r := range recs {
		is.NoErr(s.Record(ctx, r))
	}
	// a record id is unique within a run.
	is.True(s.Record(ctx, recs[0]) != nil)

	tally, err := s.Tally(ctx)
	is.NoErr(err)
	is.Equal(tally, map[string]int{"white wins": 2, "draw": 1})
	distinct, err := s.DistinctGames(ctx)
	is.NoErr(err)
	is.Equal(distinct, 2)
	is.NoErr(s.Close())

	// runs share the file without mixing.
	s, err = OpenResultStore(path, "second")
	is.NoErr(err)
	defer s.Close()
	is.NoErr(s.Record(ctx, &GameRecord{ID: 1, Result: "black wins", Fingerprint: ^uint64(0)}))
	tally, err = s.Tally(ctx)
	is.NoErr(err)
	is.Equal(tally, map[string]int{"black wins": 1})
}

func TestSummary(t *testing.T) {
	is := is.New(t)
	sum := NewSummary()
	for i, res := range []game.PlayState{game.WhiteWon, game.WhiteWon, game.BlackWon, game.Draw} {
		sum.Add(&GameRecord{ID: i, Result: res.String(), Plies: 10 + i, Fingerprint: uint64(i % 3)})
	}
	is.Equal(sum.Games, 4)
	is.Equal(sum.WhiteWins, 2)
	is.Equal(sum.BlackWins, 1)
	is.Equal(sum.Draws, 1)
	is.Equal(sum.Distinct(), 3)
	is.Equal(sum.MeanLength(), 11.5)

	mean, low, high := sum.WhiteScore()
	is.Equal(mean, 0.625)
	is.True(low < mean && mean < high)

	out := sum.String()
	is.True(strings.Contains(out, "Games played: 4\n"))
	is.True(strings.Contains(out, "White wins: 2 (50.000%)\n"))
	is.True(strings.Contains(out, "Distinct games: 3\n"))
	is.True(strings.Contains(out, "Game lengths:\n"))

	empty := NewSummary().String()
	is.True(strings.Contains(empty, "Games played: 0\n"))
	is.True(!strings.Contains(empty, "Game lengths"))
}
