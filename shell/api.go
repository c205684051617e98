package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/tzfe/automatic"
	"github.com/domino14/tzfe/board"
	"github.com/domino14/tzfe/config"
	"github.com/domino14/tzfe/game"
	"github.com/domino14/tzfe/move"
)

type Response struct {
	message string
}

type CmdOptions map[string]string

func (c CmdOptions) String(key string) string {
	return c[key]
}

func (c CmdOptions) Int(key string) (int, error) {
	v, ok := c[key]
	if !ok {
		return 0, errors.New(key + " not found in options")
	}
	return strconv.Atoi(v)
}

func (c CmdOptions) IntDefault(key string, defaultI int) (int, error) {
	v, ok := c[key]
	if !ok {
		return defaultI, nil
	}
	return strconv.Atoi(v)
}

func (c CmdOptions) Bool(key string) bool {
	return strings.ToLower(c[key]) == "true"
}

func msg(message string) *Response {
	return &Response{message: message}
}

func (sc *ShellController) gameText() string {
	g := sc.game
	var sb strings.Builder
	sb.WriteString(g.Board().ToDisplayText())
	fmt.Fprintf(&sb, "Move #%d, current score=%.0f", g.Turn()+1, g.Score())
	if !g.Playing() {
		fmt.Fprintf(&sb, "\nGame over. Your score is %.0f. The highest tile you reached was %d.",
			g.Score(), 1<<g.Board().MaxRank())
	}
	return sb.String()
}

func legalLetters(dirs []move.Direction) string {
	return strings.Join(lo.Map(dirs, func(d move.Direction, _ int) string { return d.Letter() }), "")
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	if sc.autoplaying() {
		return nil, errAutoplaying
	}
	rng := game.RandomSource
	if s := cmd.options.String("seed"); s != "" {
		seed, err := automatic.ParseSeed(s)
		if err != nil {
			return nil, err
		}
		rng = game.NewSeededSource(seed)
	}
	sc.game = game.NewGame(sc.solver.Tables(), rng)
	sc.game.Start()
	return msg(sc.gameText()), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	return msg(sc.gameText() + "\nBoard: " + sc.game.Board().String()), nil
}

// setBoard takes either 16 rank digits ("board 1100/0000/0000/0002") or
// 16 tile values ("board values 2 2 0 0 ...").
func (sc *ShellController) setBoard(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: board <ranks> | board values <16 tile values>")
	}
	var b board.Board
	var err error
	if cmd.args[0] == "values" {
		vals := cmd.args[1:]
		if len(vals) != board.NumSquares {
			return nil, fmt.Errorf("need %d tile values, got %d", board.NumSquares, len(vals))
		}
		var grid [board.Dim][board.Dim]int
		for i, v := range vals {
			grid[i/board.Dim][i%board.Dim], err = strconv.Atoi(v)
			if err != nil {
				return nil, err
			}
		}
		b, err = board.FromValues(grid)
	} else {
		b, err = board.Parse(strings.Join(cmd.args, ""))
	}
	if err != nil {
		return nil, err
	}
	if sc.game == nil {
		sc.game = game.NewGame(sc.solver.Tables(), game.RandomSource)
	}
	sc.game.SetBoard(b)
	return msg(sc.gameText()), nil
}

func (sc *ShellController) legal(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	dirs := sc.game.LegalMoves()
	if len(dirs) == 0 {
		return msg("No legal moves."), nil
	}
	return msg("Legal moves: " + legalLetters(dirs)), nil
}

func (sc *ShellController) move(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: move <u|d|l|r>")
	}
	d, err := move.FromString(cmd.args[0])
	if err != nil {
		return nil, err
	}
	if err := sc.game.PlayMove(d); err != nil {
		if errors.Is(err, game.ErrIllegalMove) {
			return nil, fmt.Errorf("%w; legal moves: %s", err, legalLetters(sc.game.LegalMoves()))
		}
		return nil, err
	}
	return msg(sc.gameText()), nil
}

func (sc *ShellController) best(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	d, ok := sc.solver.FindBestMove(sc.game.Board())
	if !ok {
		return msg("No legal moves."), nil
	}
	return msg("Best move: " + d.String()), nil
}

func (sc *ShellController) scores(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	var sb strings.Builder
	for _, st := range sc.solver.ScoreAllMoves(sc.game.Board()) {
		sb.WriteString(st.String())
		sb.WriteString("\n")
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

// aiplay lets the solver play -moves moves, or the rest of the game with
// "ai all".
func (sc *ShellController) aiplay(cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	n, err := cmd.options.IntDefault("moves", 1)
	if err != nil {
		return nil, err
	}
	if len(cmd.args) > 0 && cmd.args[0] == "all" {
		n = 0
	}
	for played := 0; sc.game.Playing() && (n == 0 || played < n); played++ {
		d, ok := sc.solver.FindBestMove(sc.game.Board())
		if !ok {
			break
		}
		if err := sc.game.PlayMove(d); err != nil {
			return nil, err
		}
		log.Debug().Int("turn", sc.game.Turn()).Str("move", d.String()).Msg("ai-move")
	}
	return msg(sc.gameText()), nil
}

func (sc *ShellController) autoplaying() bool {
	if sc.autoplayDone == nil {
		return false
	}
	select {
	case <-sc.autoplayDone:
		return false
	default:
		return true
	}
}

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) > 0 && cmd.args[0] == "stop" {
		if !sc.autoplaying() {
			return nil, errors.New("autoplay is not running")
		}
		sc.autoplayCancel()
		<-sc.autoplayDone
		return msg("autoplay stopped"), nil
	}
	if sc.autoplaying() {
		return nil, errAutoplaying
	}

	cfg := config.DefaultConfig()
	for _, key := range sc.config.AllKeys() {
		cfg.Set(key, sc.config.Get(key))
	}
	for opt, key := range map[string]string{
		"games":   config.ConfigAutoplayGames,
		"threads": config.ConfigAutoplayThreads,
		"log":     config.ConfigAutoplayLogPath,
		"seeds":   config.ConfigSeedsPath,
	} {
		if v, ok := cmd.options[opt]; ok {
			cfg.Set(key, v)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	sc.autoplayCancel = cancel
	sc.autoplayDone = make(chan struct{})
	go func() {
		defer close(sc.autoplayDone)
		summary, err := automatic.PlayGamesFromConfig(ctx, cfg, sc.solver)
		if err != nil {
			sc.showError(err)
			return
		}
		sc.showMessage(summary.String())
	}()
	return msg(fmt.Sprintf("autoplay started: %d games, log at %s",
		cfg.GetInt(config.ConfigAutoplayGames), cfg.GetString(config.ConfigAutoplayLogPath))), nil
}

func (sc *ShellController) setConfig(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) < 2 {
		return nil, errors.New("usage: setconfig <key> <value>")
	}
	if sc.autoplaying() {
		return nil, errAutoplaying
	}
	key := cmd.args[0]
	value := cmd.args[1]

	sc.config.Set(key, value)
	solver, err := automatic.NewSolverFromConfig(sc.config)
	if err != nil {
		return nil, err
	}
	sc.solver = solver

	err = sc.config.Write()
	if err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}
	return msg(fmt.Sprintf("set config %s to %s and saved to file", key, value)), nil
}
