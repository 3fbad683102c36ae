package automatic

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/pfaffle/MiniChessBot/game"
	"github.com/pfaffle/MiniChessBot/stats"
)

const histogramBins = 10

// Summary aggregates finished games.
type Summary struct {
	Games     int
	WhiteWins int
	BlackWins int
	Draws     int

	// White's score: 1 per win, 0.5 per draw.
	whiteScore stats.Statistic
	lengths    []float64
	seen       map[uint64]struct{}
}

func NewSummary() *Summary {
	return &Summary{seen: map[uint64]struct{}{}}
}

func (s *Summary) Add(rec *GameRecord) {
	s.Games++
	switch rec.Result {
	case game.WhiteWon.String():
		s.WhiteWins++
		s.whiteScore.Push(1)
	case game.BlackWon.String():
		s.BlackWins++
		s.whiteScore.Push(0)
	default:
		s.Draws++
		s.whiteScore.Push(0.5)
	}
	s.lengths = append(s.lengths, float64(rec.Plies))
	s.seen[rec.Fingerprint] = struct{}{}
}

// Distinct is the number of different move sequences seen.
func (s *Summary) Distinct() int {
	return len(s.seen)
}

// WhiteScore is White's mean score and its 95% confidence interval.
func (s *Summary) WhiteScore() (mean, low, high float64) {
	low, high = s.whiteScore.Interval(95)
	return s.whiteScore.Mean(), low, high
}

// MeanLength is the mean game length in plies.
func (s *Summary) MeanLength() float64 {
	var st stats.Statistic
	for _, l := range s.lengths {
		st.Push(l)
	}
	return st.Mean()
}

func pct(n, of int) float64 {
	if of == 0 {
		return 0
	}
	return 100 * float64(n) / float64(of)
}

func (s *Summary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Games played: %d\n", s.Games)
	fmt.Fprintf(&sb, "White wins: %d (%.3f%%)\n", s.WhiteWins, pct(s.WhiteWins, s.Games))
	fmt.Fprintf(&sb, "Black wins: %d (%.3f%%)\n", s.BlackWins, pct(s.BlackWins, s.Games))
	fmt.Fprintf(&sb, "Draws: %d (%.3f%%)\n", s.Draws, pct(s.Draws, s.Games))
	mean, low, high := s.WhiteScore()
	fmt.Fprintf(&sb, "White score: %.3f (95%% CI %.3f to %.3f)\n", mean, low, high)
	fmt.Fprintf(&sb, "Distinct games: %d\n", s.Distinct())
	fmt.Fprintf(&sb, "Mean length: %.2f plies\n", s.MeanLength())
	switch {
	case len(s.lengths) == 0:
	case lo.Min(s.lengths) == lo.Max(s.lengths):
		fmt.Fprintf(&sb, "Every game lasted %.0f plies\n", s.lengths[0])
	default:
		sb.WriteString("Game lengths:\n")
		hist := histogram.Hist(histogramBins, s.lengths)
		if err := histogram.Fprint(&sb, hist, histogram.Linear(40)); err != nil {
			fmt.Fprintf(&sb, "(histogram unavailable: %v)\n", err)
		}
	}
	return sb.String()
}

// AnalyzeLogFile summarizes a yaml game log written by a self-play run.
func AnalyzeLogFile(path string) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	sum := NewSummary()
	for {
		var rec GameRecord
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		sum.Add(&rec)
	}
	return sum, nil
}
