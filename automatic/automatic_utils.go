package automatic

// Computer vs computer games for testing the engine and collecting data.

import (
	"context"
	"errors"
	"expvar"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/pfaffle/MiniChessBot/config"
	"github.com/pfaffle/MiniChessBot/engine"
)

var (
	CVCCounter *expvar.Int
	IsPlaying  *expvar.Int
)

func init() {
	CVCCounter = expvar.NewInt("cvcCounter")
	IsPlaying = expvar.NewInt("isPlaying")
}

// Options control a self-play run.
type Options struct {
	Games       int
	Threads     int
	RandomPlies int
	Budget      time.Duration
	// LogFile receives one yaml document per game; empty for none.
	LogFile string
	// DBFile is a sqlite results store; empty for none.
	DBFile string
	// Seed, if set, makes the run reproducible for a given thread count.
	Seed []byte
}

// OptionsFromConfig fills the file locations and search budget from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Games:   1,
		Threads: 1,
		Budget:  cfg.GetDuration(config.ConfigSearchTime),
		LogFile: cfg.GetString(config.ConfigAutoplayLog),
		DBFile:  cfg.GetString(config.ConfigAutoplayDB),
	}
}

func seedFor(seed []byte, worker int) []byte {
	s := make([]byte, 32)
	copy(s, seed)
	s[31] ^= byte(worker)
	s[30] ^= byte(worker >> 8)
	return s
}

// StartCompVComp plays opts.Games games over opts.Threads goroutines, each
// with its own engine, and blocks until they are done or ctx is cancelled.
// On cancellation the summary of the games finished so far is returned
// along with the context's error.
func StartCompVComp(ctx context.Context, cfg *config.Config, opts Options) (*Summary, error) {
	if IsPlaying.Value() > 0 {
		return nil, errors.New("games are already being played, please wait till complete")
	}
	if opts.Games < 1 {
		return nil, errors.New("need at least one game")
	}
	threads := max(1, min(opts.Threads, opts.Games))

	var enc *yaml.Encoder
	if opts.LogFile != "" {
		f, err := os.Create(opts.LogFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		enc = yaml.NewEncoder(f)
		defer enc.Close()
	}
	var store *ResultStore
	if opts.DBFile != "" {
		var err error
		store, err = OpenResultStore(opts.DBFile, time.Now().UTC().Format(time.RFC3339Nano))
		if err != nil {
			return nil, err
		}
		defer store.Close()
	}

	log.Info().Int("games", opts.Games).Int("threads", threads).
		Int("random-plies", opts.RandomPlies).Dur("budget", opts.Budget).Msg("starting-autoplay")
	CVCCounter.Set(0)

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan int, threads)
	results := make(chan *GameRecord, threads)

	g.Go(func() error {
		defer close(jobs)
		for i := 1; i <= opts.Games; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				log.Info().Msg("got stop signal, exiting soon...")
				return nil
			}
		}
		return nil
	})

	var wg sync.WaitGroup
	for t := 0; t < threads; t++ {
		runner := NewGameRunner(engine.New(cfg), opts.RandomPlies, opts.Budget)
		if opts.Seed != nil {
			runner.SetRandomSeed(seedFor(opts.Seed, t))
		}
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			IsPlaying.Add(1)
			defer IsPlaying.Add(-1)
			for id := range jobs {
				rec, err := runner.PlayGame(gctx, id)
				if err != nil {
					return err
				}
				CVCCounter.Add(1)
				select {
				case results <- rec:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	sum := NewSummary()
	g.Go(func() error {
		for rec := range results {
			sum.Add(rec)
			if enc != nil {
				if err := enc.Encode(rec); err != nil {
					return err
				}
			}
			if store != nil {
				if err := store.Record(gctx, rec); err != nil {
					return err
				}
			}
			if sum.Games%100 == 0 {
				log.Info().Int("played", sum.Games).Msg("autoplay-progress")
			}
		}
		return nil
	})

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	log.Info().Int("games", sum.Games).Int("white-wins", sum.WhiteWins).
		Int("black-wins", sum.BlackWins).Int("draws", sum.Draws).
		Int("distinct", sum.Distinct()).Msg("autoplay-done")
	return sum, err
}
