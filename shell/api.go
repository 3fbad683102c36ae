package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/pfaffle/MiniChessBot/automatic"
	"github.com/pfaffle/MiniChessBot/config"
	"github.com/pfaffle/MiniChessBot/engine"
	"github.com/pfaffle/MiniChessBot/game"
	"github.com/pfaffle/MiniChessBot/move"
	"github.com/pfaffle/MiniChessBot/position"
)

type Response struct {
	message string
}

type CmdOptions map[string][]string

func (c CmdOptions) String(key string) string {
	v := c[key]
	if len(v) > 0 {
		return v[0]
	}
	return ""
}

func (c CmdOptions) Int(key string) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultI, nil
	}
	return strconv.Atoi(v[0])
}

func (c CmdOptions) Bool(key string) bool {
	v := c[key]
	if len(v) == 0 {
		return false
	}
	return strings.ToLower(v[0]) == "true"
}

// Duration reads a value in seconds ("1.5") or as a Go duration ("1500ms").
func (c CmdOptions) Duration(key string, defaultD time.Duration) (time.Duration, error) {
	v := c[key]
	if len(v) == 0 {
		return defaultD, nil
	}
	if secs, err := strconv.ParseFloat(v[0], 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(v[0])
}

func msg(message string) *Response {
	return &Response{message: message}
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	sc.setGame(sc.engine.NewGame())
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) setGame(st *game.State) {
	sc.game = st
	sc.history = nil
	sc.played = nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	return msg(sc.game.ToDisplayText()), nil
}

func moveTableHeader() string {
	return "  #  Move     Eval"
}

func MoveTableRow(idx int, m move.Move, eval int) string {
	return fmt.Sprintf("%3d  %-7s %6d", idx+1, m.String(), eval)
}

// moves lists the legal moves, best one-ply evaluation first.
func (sc *ShellController) moves(cmd *shellcmd) (*Response, error) {
	legal := engine.LegalMoves(sc.game)
	if len(legal) == 0 {
		return msg("No legal moves; " + sc.game.Playing().String() + "."), nil
	}
	evals := make(map[move.Move]int, len(legal))
	for _, m := range legal {
		b := sc.game.PlayUnchecked(m).Board()
		evals[m] = sc.engine.Evaluator().Evaluate(&b, sc.game.PlayerOnTurn())
	}
	sort.SliceStable(legal, func(i, j int) bool {
		return evals[legal[i]] > evals[legal[j]]
	})
	var sb strings.Builder
	sb.WriteString(moveTableHeader() + "\n")
	for i, m := range legal {
		sb.WriteString(MoveTableRow(i, m, evals[m]) + "\n")
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

func (sc *ShellController) playMove(m move.Move) (*Response, error) {
	next, err := engine.ApplyMove(sc.game, m)
	if err != nil {
		return nil, err
	}
	sc.history = append(sc.history, sc.game)
	sc.played = append(sc.played, m)
	sc.game = next
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: play <move>, e.g. play a2-a3")
	}
	m, err := engine.ParseMove(cmd.args[0])
	if err != nil {
		return nil, err
	}
	return sc.playMove(m)
}

func (sc *ShellController) undo(cmd *shellcmd) (*Response, error) {
	if len(sc.history) == 0 {
		return nil, errors.New("nothing to undo")
	}
	last := len(sc.history) - 1
	sc.game = sc.history[last]
	sc.history = sc.history[:last]
	sc.played = sc.played[:last]
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) best(cmd *shellcmd) (*Response, error) {
	budget, err := cmd.options.Duration("maxtime", sc.engine.SearchTime())
	if err != nil {
		return nil, err
	}
	if logfile := cmd.options.String("logfile"); logfile != "" {
		f, err := os.Create(logfile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		sc.engine.Solver().SetLogStream(f)
		defer sc.engine.Solver().SetLogStream(nil)
	}
	res, err := sc.engine.Search(context.Background(), sc.game, budget)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Best move: %s\n", res.Move)
	fmt.Fprintf(&sb, "Value: %d  Depth: %d  Stopped: %s\n", res.Value, res.Depth, res.Stop)
	fmt.Fprintf(&sb, "Nodes: %d in %s", res.Nodes, res.Elapsed.Round(time.Millisecond))
	if len(res.PV.Moves) > 0 {
		fmt.Fprintf(&sb, "\nPrincipal variation: %s", res.PV.NLBString())
	}
	if len(res.Ties) > 1 {
		fmt.Fprintf(&sb, "\nTied with: %s", strings.Join(move.Strings(res.Ties), " "))
	}
	if cmd.options.Bool("play") {
		resp, err := sc.playMove(res.Move)
		if err != nil {
			return nil, err
		}
		sb.WriteString("\n" + resp.message)
	}
	return msg(sb.String()), nil
}

// auto lets the engine play both sides until the game ends.
func (sc *ShellController) auto(cmd *shellcmd) (*Response, error) {
	budget, err := cmd.options.Duration("maxtime", sc.engine.SearchTime())
	if err != nil {
		return nil, err
	}
	if sc.game.GameOver() {
		return nil, &game.GameOverError{Result: sc.game.Playing()}
	}
	for !sc.game.GameOver() {
		onturn := sc.game.PlayerOnTurn()
		turn := sc.game.Turn()
		m, err := sc.engine.BestMove(context.Background(), sc.game, budget)
		if err != nil {
			return nil, err
		}
		if _, err := sc.playMove(m); err != nil {
			return nil, err
		}
		sc.showMessage(fmt.Sprintf("%d. %s %s", turn, onturn, m))
	}
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) eval(cmd *shellcmd) (*Response, error) {
	b := sc.game.Board()
	bd := sc.engine.Evaluator().Breakdown(&b)
	var sb strings.Builder
	fmt.Fprintf(&sb, "Evaluation for %s: %d\n", sc.game.PlayerOnTurn(), sc.engine.Evaluate(sc.game))
	sb.WriteString("Terms (white minus black):\n")
	fmt.Fprintf(&sb, "  material  %6d\n", bd.Material)
	fmt.Fprintf(&sb, "  centre    %6d\n", bd.Centre)
	fmt.Fprintf(&sb, "  developed %6d\n", bd.Developed)
	fmt.Fprintf(&sb, "  advance   %6d\n", bd.Advance)
	fmt.Fprintf(&sb, "  doubled   %6d\n", -bd.Doubled)
	fmt.Fprintf(&sb, "  chain     %6d", bd.Chain)
	return msg(sb.String()), nil
}

func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: load <file>")
	}
	data, err := os.ReadFile(cmd.args[0])
	if err != nil {
		return nil, err
	}
	st, err := position.Parse(string(data), sc.engine.Rules())
	if err != nil {
		return nil, err
	}
	sc.setGame(st)
	return msg(sc.game.ToDisplayText()), nil
}

func (sc *ShellController) save(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: save <file>")
	}
	if err := os.WriteFile(cmd.args[0], []byte(position.Serialize(sc.game)), 0o644); err != nil {
		return nil, err
	}
	return msg("position written to " + cmd.args[0]), nil
}

// export writes the moves played since the last new or load, with the
// resulting position, as yaml.
func (sc *ShellController) export(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("please provide a filename to save to")
	}
	rec := automatic.NewRecord(0, sc.played, sc.game)
	out, err := yaml.Marshal(rec)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(cmd.args[0], out, 0o644); err != nil {
		return nil, err
	}
	log.Debug().Int("plies", rec.Plies).Str("result", rec.Result).Msg("exported-game")
	return msg("game written to " + cmd.args[0]), nil
}

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	opts := automatic.OptionsFromConfig(sc.config)
	var err error
	if opts.Games, err = cmd.options.IntDefault("games", 100); err != nil {
		return nil, err
	}
	if opts.Threads, err = cmd.options.IntDefault("threads", 1); err != nil {
		return nil, err
	}
	if opts.RandomPlies, err = cmd.options.IntDefault("random", 2); err != nil {
		return nil, err
	}
	if opts.Budget, err = cmd.options.Duration("maxtime", opts.Budget); err != nil {
		return nil, err
	}
	if f := cmd.options.String("logfile"); f != "" {
		opts.LogFile = f
	}
	if f := cmd.options.String("db"); f != "" {
		opts.DBFile = f
	}
	sum, err := automatic.StartCompVComp(context.Background(), sc.config, opts)
	if err != nil {
		return nil, err
	}
	return msg(sum.String()), nil
}

func (sc *ShellController) autoAnalyze(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: autoanalyze <yaml log>")
	}
	sum, err := automatic.AnalyzeLogFile(cmd.args[0])
	if err != nil {
		return nil, err
	}
	return msg(sum.String()), nil
}

var settableKeys = []string{
	config.ConfigSearchTime,
	config.ConfigMaxDepth,
	config.ConfigMaxTurns,
	config.ConfigTTSize,
	config.ConfigAutoplayDB,
	config.ConfigAutoplayLog,
	config.ConfigDebug,
}

// set changes a setting and rebuilds the engine. The current game keeps the
// turn limit it started with.
func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		var sb strings.Builder
		for _, k := range settableKeys {
			fmt.Fprintf(&sb, "%-14s %v\n", k, sc.config.Get(k))
		}
		return msg(strings.TrimRight(sb.String(), "\n")), nil
	}
	key := cmd.args[0]
	if len(cmd.args) == 1 {
		return msg(fmt.Sprintf("%v", sc.config.Get(key))), nil
	}
	value := strings.Join(cmd.args[1:], " ")
	if !strings.HasPrefix(key, "eval.") && !lo.Contains(settableKeys, key) {
		return nil, fmt.Errorf("cannot set %q", key)
	}
	sc.config.Set(key, value)
	if key == config.ConfigDebug {
		if sc.config.GetBool(config.ConfigDebug) {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	}
	sc.engine = engine.New(sc.config)
	return msg("set " + key + " to " + value), nil
}
