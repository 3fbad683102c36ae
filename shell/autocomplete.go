package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/pfaffle/MiniChessBot/engine"
)

// ShellCompleter provides context-aware autocomplete for shell commands
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string
	Args    []string
}

var commandMetadata = map[string]CommandMetadata{
	"best": {
		Options: []string{"-maxtime", "-logfile", "-play"},
	},
	"auto": {
		Options: []string{"-maxtime"},
	},
	"autoplay": {
		Options: []string{"-games", "-threads", "-random", "-maxtime", "-logfile", "-db"},
	},
	"help": {
		Args: []string{"best", "autoplay", "script", "set"},
	},
	"set": {
		Args: settableKeys,
	},
}

var commandNames = []string{
	"new", "show", "moves", "play", "undo", "best", "auto", "eval", "load",
	"save", "export", "autoplay", "autoanalyze", "script", "set", "help", "exit",
}

var boolValues = []string{"true", "false"}

// Do implements the readline.AutoComplete interface
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		// unterminated quote; fall back to simple space splitting
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}

		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}

		if lastCompleteField == "-play" {
			completions = boolValues
		}

		// play completes the legal moves.
		if cmdName == "play" && completions == nil && c.sc.game != nil {
			for _, m := range engine.LegalMoves(c.sc.game) {
				completions = append(completions, engine.FormatMove(m))
			}
		}

		if completions == nil {
			if metadata, exists := commandMetadata[cmdName]; exists {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			// Return only the part that needs to be added
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}
