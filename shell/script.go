package shell

import (
	"errors"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
	luajson "layeh.com/gopher-json"
)

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal("tzfe_shell")
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

// luaCommand exposes a shell command to scripts. The lua function takes the
// rest of the command line as its one argument and returns the command's
// output, or "ERROR: ..." on failure.
func luaCommand(name string, fn func(*ShellController, *shellcmd) (*Response, error)) lua.LGFunction {
	return func(L *lua.LState) int {
		sc := getShell(L)
		cmd, err := extractFields(name + " " + L.OptString(1, ""))
		if err != nil {
			L.Push(lua.LString("ERROR: " + err.Error()))
			return 1
		}
		r, err := fn(sc, cmd)
		if err != nil {
			log.Err(err).Str("command", name).Msg("error-executing-script-command")
			L.Push(lua.LString("ERROR: " + err.Error()))
			return 1
		}
		if r == nil {
			L.Push(lua.LString(""))
		} else {
			L.Push(lua.LString(r.message))
		}
		return 1
	}
}

// State returns the current game as a table: board, score, turn, playing and
// legal (a string of UDLR letters).
func State(L *lua.LState) int {
	sc := getShell(L)
	if sc.game == nil {
		L.Push(lua.LNil)
		return 1
	}
	t := L.NewTable()
	t.RawSetString("board", lua.LString(sc.game.Board().String()))
	t.RawSetString("score", lua.LNumber(sc.game.Score()))
	t.RawSetString("turn", lua.LNumber(sc.game.Turn()))
	t.RawSetString("playing", lua.LBool(sc.game.Playing()))
	t.RawSetString("max_tile", lua.LNumber(int(1)<<sc.game.Board().MaxRank()))
	t.RawSetString("legal", lua.LString(legalLetters(sc.game.LegalMoves())))
	L.Push(t)
	return 1
}

func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if cmd.args == nil {
		return nil, errors.New("need arguments for script")
	}

	filepath := cmd.args[0]

	L := lua.NewState()
	defer L.Close()
	luajson.Preload(L)

	lsc := L.NewUserData()
	lsc.Value = sc

	L.SetGlobal("tzfe_shell", lsc)
	L.SetGlobal("tzfe_new", L.NewFunction(luaCommand("new", (*ShellController).newGame)))
	L.SetGlobal("tzfe_show", L.NewFunction(luaCommand("show", (*ShellController).show)))
	L.SetGlobal("tzfe_board", L.NewFunction(luaCommand("board", (*ShellController).setBoard)))
	L.SetGlobal("tzfe_move", L.NewFunction(luaCommand("move", (*ShellController).move)))
	L.SetGlobal("tzfe_best", L.NewFunction(luaCommand("best", (*ShellController).best)))
	L.SetGlobal("tzfe_scores", L.NewFunction(luaCommand("scores", (*ShellController).scores)))
	L.SetGlobal("tzfe_ai", L.NewFunction(luaCommand("aiplay", (*ShellController).aiplay)))
	L.SetGlobal("tzfe_state", L.NewFunction(State))

	scriptArgs := L.NewTable()
	for _, a := range cmd.args[1:] {
		scriptArgs.Append(lua.LString(a))
	}
	L.SetGlobal("args", scriptArgs)

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Msg("script-error")
		return nil, err
	}
	return nil, nil
}
