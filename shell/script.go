package shell

import (
	"errors"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"

	"github.com/pfaffle/MiniChessBot/position"
)

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal("minichess_shell")
	ud, ok := shell.(*lua.LUserData)
	if !ok {
		panic("luserdata not right type")
	}
	sc, ok := ud.Value.(*ShellController)
	if !ok {
		panic("shellcontroller not right type")
	}
	return sc
}

// runCommand executes a shell command line from Lua and pushes its output,
// or "ERROR: ..." if it failed.
func runCommand(L *lua.LState, name string) int {
	line := name
	if arg := L.OptString(1, ""); arg != "" {
		line += " " + arg
	}
	sc := getShell(L)
	cmd, err := extractFields(line)
	if err != nil {
		log.Err(err).Msg("error-parsing-" + name)
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 1
	}
	r, err := sc.dispatch(cmd)
	if err != nil {
		log.Err(err).Msg("error-executing-" + name)
		L.Push(lua.LString("ERROR: " + err.Error()))
		return 1
	}
	L.Push(lua.LString(r.message))
	// return number of results pushed to stack.
	return 1
}

func luaCommand(name string) lua.LGFunction {
	return func(L *lua.LState) int {
		return runCommand(L, name)
	}
}

// Position returns the current position in the board text format.
func Position(L *lua.LState) int {
	L.Push(lua.LString(position.Serialize(getShell(L).game)))
	return 1
}

// GameOver returns whether the game is over and, if so, the result.
func GameOver(L *lua.LState) int {
	sc := getShell(L)
	L.Push(lua.LBool(sc.game.GameOver()))
	L.Push(lua.LString(sc.game.Playing().String()))
	return 2
}

// Evaluate returns the static evaluation for the side to move.
func Evaluate(L *lua.LState) int {
	sc := getShell(L)
	L.Push(lua.LNumber(sc.engine.Evaluate(sc.game)))
	return 1
}

var scriptCommands = []string{"new", "play", "undo", "best", "auto", "load", "save", "export", "set", "moves", "eval"}

func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return nil, errors.New("need arguments for script")
	}

	filepath := cmd.args[0]

	L := lua.NewState()
	defer L.Close()

	lsc := L.NewUserData()
	lsc.Value = sc

	L.SetGlobal("minichess_shell", lsc)
	for _, name := range scriptCommands {
		L.SetGlobal("minichess_"+name, L.NewFunction(luaCommand(name)))
	}
	L.SetGlobal("minichess_position", L.NewFunction(Position))
	L.SetGlobal("minichess_gameover", L.NewFunction(GameOver))
	L.SetGlobal("minichess_evaluate", L.NewFunction(Evaluate))

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Msg("there was a error")
		return nil, err
	}
	return msg(""), nil
}
