package config

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug            = "debug"
	ConfigCPUProfile       = "cpu-profile"
	ConfigSearchTime       = "search-time"
	ConfigMaxDepth         = "max-depth"
	ConfigTTSize           = "tt-size"
	ConfigTTMemoryFraction = "tt-memory-fraction"
	ConfigMaxTurns         = "max-turns"
	ConfigNatsURL          = "nats-url"
	ConfigBotChannel       = "bot-channel"
	ConfigAutoplayDB       = "autoplay-db"
	ConfigAutoplayLog      = "autoplay-log"

	ConfigEvalPawn      = "eval.pawn"
	ConfigEvalKnight    = "eval.knight"
	ConfigEvalBishop    = "eval.bishop"
	ConfigEvalRook      = "eval.rook"
	ConfigEvalQueen     = "eval.queen"
	ConfigEvalCentre    = "eval.centre"
	ConfigEvalDeveloped = "eval.developed"
	ConfigEvalAdvance   = "eval.advance"
	ConfigEvalDoubled   = "eval.doubled"
	ConfigEvalChain     = "eval.chain"
	ConfigEvalWin       = "eval.win"
)

// Config embeds a viper instance; values come from (highest first) command
// line flags, MINICHESS_ environment variables, an optional minichess.yaml
// and finally the defaults below.
type Config struct {
	*viper.Viper
	args []string
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("minichess")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("minichess")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	return v
}

func flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("minichess", pflag.ContinueOnError)
	// Everything after the first positional argument is a shell command and
	// may carry its own options.
	fs.SetInterspersed(false)

	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigCPUProfile, "", "write a cpu profile to this file")
	fs.Duration(ConfigSearchTime, 2*time.Second, "time budget per engine move")
	fs.Int(ConfigMaxDepth, 32, "maximum iterative deepening depth")
	fs.Int(ConfigTTSize, 256, "transposition table slots (rounded up to a power of two)")
	fs.Float64(ConfigTTMemoryFraction, 0, "if positive, size the transposition table to this fraction of system memory")
	fs.Int(ConfigMaxTurns, 40, "turn after which the game is drawn")
	fs.String(ConfigNatsURL, "nats://127.0.0.1:4222", "the NATS server the bot connects to")
	fs.String(ConfigBotChannel, "minichess.bot", "the subject the bot answers requests on")
	fs.String(ConfigAutoplayDB, "", "sqlite file to record self-play results in")
	fs.String(ConfigAutoplayLog, "", "yaml file to log self-play games to")

	fs.Int(ConfigEvalPawn, 300, "pawn value")
	fs.Int(ConfigEvalKnight, 800, "knight value")
	fs.Int(ConfigEvalBishop, 800, "bishop value")
	fs.Int(ConfigEvalRook, 1200, "rook value")
	fs.Int(ConfigEvalQueen, 2000, "queen value")
	fs.Int(ConfigEvalCentre, 50, "bonus for a piece on a centre square")
	fs.Int(ConfigEvalDeveloped, 40, "bonus for a piece off its home square")
	fs.Int(ConfigEvalAdvance, 20, "bonus per rank a pawn has advanced")
	fs.Int(ConfigEvalDoubled, 60, "penalty for a pawn with a friendly pawn ahead")
	fs.Int(ConfigEvalChain, 30, "bonus for a pawn defended by a friendly pawn")
	fs.Int(ConfigEvalWin, 100000, "value of a won position")
	return fs
}

// Load parses args and reads the environment and the optional config file.
// Positional arguments left after the flags are available from Args.
func (c *Config) Load(args []string) error {
	c.Viper = newViper()
	fs := flagSet()
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.args = fs.Args()
	if err := c.BindPFlags(fs); err != nil {
		return err
	}
	if err := c.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}
	return nil
}

// Args returns the positional arguments that followed the flags.
func (c *Config) Args() []string {
	return c.args
}

// DefaultConfig returns the defaults without consulting flags, environment
// or files. Tests and library callers use it.
func DefaultConfig() *Config {
	c := &Config{Viper: viper.New()}
	fs := flagSet()
	fs.VisitAll(func(f *pflag.Flag) {
		c.SetDefault(f.Name, f.DefValue)
	})
	return c
}

// SanitizedSettings returns the settings with credentials removed from the
// NATS url, suitable for logging.
func (c *Config) SanitizedSettings() map[string]any {
	s := c.AllSettings()
	if raw, ok := s[ConfigNatsURL].(string); ok {
		if u, err := url.Parse(raw); err == nil && u.User != nil {
			u.User = url.User("redacted")
			s[ConfigNatsURL] = u.String()
		}
	}
	return s
}
