package automatic

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/domino14/tzfe/board"
	"github.com/domino14/tzfe/config"
	"github.com/domino14/tzfe/expectimax"
	"github.com/domino14/tzfe/game"
	"github.com/domino14/tzfe/move"
	"github.com/domino14/tzfe/stats"
)

var (
	GamesPlayed *expvar.Int
	IsPlaying   *expvar.Int
)

var ErrAlreadyPlaying = errors.New("games are already being played, please wait till complete")

var playing sync.Mutex

func init() {
	GamesPlayed = expvar.NewInt("tzfeGamesPlayed")
	IsPlaying = expvar.NewInt("tzfeIsPlaying")
}

// GameRecord is one yaml document in the autoplay log.
type GameRecord struct {
	Game       int         `yaml:"game"`
	UID        string      `yaml:"uid"`
	Seed       Seed        `yaml:"seed"`
	Moves      string      `yaml:"moves"`
	Turns      int         `yaml:"turns"`
	Score      float64     `yaml:"score"`
	MaxRank    int         `yaml:"max_rank"`
	FinalBoard board.Board `yaml:"final_board"`
	Digest     string      `yaml:"digest"`
}

func newGameRecord(idx int, seed [32]byte, h *game.History) *GameRecord {
	return &GameRecord{
		Game:       idx,
		UID:        h.UID,
		Seed:       Seed(seed),
		Moves:      h.MoveString(),
		Turns:      len(h.Turns),
		Score:      h.Score,
		MaxRank:    h.MaxRank,
		FinalBoard: h.FinalBoard,
		Digest:     fmt.Sprintf("%016x", h.Digest()),
	}
}

// Summary aggregates a batch of games.
type Summary struct {
	Batch    string
	Scores   stats.Statistic
	Turns    stats.Statistic
	MaxRanks map[int]int
	Games    []*game.History
}

func summarize(batch string, histories []*game.History) *Summary {
	s := &Summary{Batch: batch, Games: histories}
	for _, h := range histories {
		s.Scores.Push(h.Score)
		s.Turns.Push(float64(len(h.Turns)))
	}
	s.MaxRanks = lo.CountValuesBy(histories, func(h *game.History) int { return h.MaxRank })
	return s
}

func (s *Summary) String() string {
	var sb strings.Builder
	p := message.NewPrinter(language.English)
	lo95, hi95 := s.Scores.ConfidenceInterval(95)
	p.Fprintf(&sb, "Games played: %d\n", s.Scores.Iterations())
	p.Fprintf(&sb, "Mean score: %.2f  Stdev: %.2f  95%% CI: [%.2f, %.2f]\n",
		s.Scores.Mean(), s.Scores.Stdev(), lo95, hi95)
	p.Fprintf(&sb, "Min score: %.0f  Max score: %.0f\n", s.Scores.Min(), s.Scores.Max())
	p.Fprintf(&sb, "Mean moves per game: %.1f\n", s.Turns.Mean())
	freq := s.BestMoveFrequencies()
	sb.WriteString("Moves chosen:")
	for _, d := range move.Directions {
		p.Fprintf(&sb, " %s %d", d, freq[d])
	}
	sb.WriteString("\n")

	ranks := lo.Keys(s.MaxRanks)
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))
	fmt.Fprintf(&sb, "%-10s%8s%12s\n", "Max tile", "Games", "% of games")
	for _, r := range ranks {
		fmt.Fprintf(&sb, "%-10d%8d%12.2f\n", 1<<r, s.MaxRanks[r],
			100*float64(s.MaxRanks[r])/float64(len(s.Games)))
	}
	if len(s.Games) > 1 {
		scores := lo.Map(s.Games, func(h *game.History, _ int) float64 { return h.Score })
		sb.WriteString("Score distribution:\n")
		histogram.Fprint(&sb, histogram.Hist(15, scores), histogram.Linear(40))
	}
	return sb.String()
}

// PlayGames plays numGames games, threads at a time, and writes one yaml
// document per game to logPath. Game i uses seeds[i % len(seeds)]; with no
// seeds every game gets a fresh one. Each game's search is single-threaded,
// so a seed always produces the same game.
func PlayGames(ctx context.Context, solver *expectimax.Solver, seeds [][32]byte,
	numGames, threads int, logPath string) (*Summary, error) {
	return playGames(ctx, solver, seeds, numGames, threads, logPath, nil)
}

// playGames is PlayGames that also saves every game to db when db is not nil.
func playGames(ctx context.Context, solver *expectimax.Solver, seeds [][32]byte,
	numGames, threads int, logPath string, db *ResultsDB) (*Summary, error) {

	if !playing.TryLock() {
		return nil, ErrAlreadyPlaying
	}
	defer playing.Unlock()
	IsPlaying.Set(1)
	defer IsPlaying.Set(0)

	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	if len(seeds) == 0 {
		var err error
		seeds, err = GenerateSeeds(numGames)
		if err != nil {
			return nil, err
		}
	}

	logfile, err := os.Create(logPath)
	if err != nil {
		return nil, err
	}
	batch := uuid.NewString()
	log.Info().Str("batch", batch).Int("games", numGames).Int("threads", threads).
		Str("log", logPath).Msg("starting-autoplay")

	GamesPlayed.Set(0)
	logChan := make(chan *GameRecord, 100)
	writerDone := make(chan error, 1)
	go func() {
		enc := yaml.NewEncoder(logfile)
		var werr error
		for rec := range logChan {
			if werr == nil {
				werr = enc.Encode(rec)
			}
			if werr == nil && db != nil {
				werr = db.Insert(context.WithoutCancel(ctx), batch, rec)
			}
		}
		if err := enc.Close(); werr == nil {
			werr = err
		}
		if err := logfile.Close(); werr == nil {
			werr = err
		}
		log.Debug().Msg("exiting-game-logger")
		writerDone <- werr
	}()

	histories := make([]*game.History, numGames)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	runner := NewGameRunner(logChan, solver)
	for i := range numGames {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			h, err := runner.PlaySeededGame(i, seeds[i%len(seeds)])
			if err != nil {
				return err
			}
			histories[i] = h
			GamesPlayed.Add(1)
			if n := GamesPlayed.Value(); n%100 == 0 {
				log.Info().Int64("played", n).Msg("autoplay-progress")
			}
			return nil
		})
	}
	err = g.Wait()
	close(logChan)
	if werr := <-writerDone; err == nil {
		err = werr
	}

	played := lo.Filter(histories, func(h *game.History, _ int) bool { return h != nil })
	summary := summarize(batch, played)
	log.Info().Int("played", len(played)).
		Float64("mean-score", summary.Scores.Mean()).
		Msg("autoplay-finished")
	if err != nil && !errors.Is(err, context.Canceled) {
		return summary, err
	}
	return summary, nil
}

// PlayGamesFromConfig runs PlayGames with the configured game count, thread
// count, seeds file and log path. A seeds path that does not exist yet is
// filled with freshly generated seeds so the batch can be replayed. If a
// results db is configured, every game is also saved there.
func PlayGamesFromConfig(ctx context.Context, cfg *config.Config, solver *expectimax.Solver) (*Summary, error) {
	numGames := cfg.GetInt(config.ConfigAutoplayGames)
	var seeds [][32]byte
	if path := cfg.GetString(config.ConfigSeedsPath); path != "" {
		var err error
		if _, statErr := os.Stat(path); statErr == nil {
			seeds, err = LoadSeeds(path)
		} else {
			seeds, err = GenerateSeeds(numGames)
			if err == nil {
				err = SaveSeeds(seeds, path)
			}
		}
		if err != nil {
			return nil, err
		}
	}
	var db *ResultsDB
	if path := cfg.GetString(config.ConfigAutoplayDBPath); path != "" {
		var err error
		db, err = OpenResultsDB(ctx, path)
		if err != nil {
			return nil, err
		}
		defer db.Close()
	}
	return playGames(ctx, solver, seeds, numGames,
		cfg.GetInt(config.ConfigAutoplayThreads), cfg.GetString(config.ConfigAutoplayLogPath), db)
}

// BestMoveFrequencies counts how often each direction was chosen across the
// summary's games.
func (s *Summary) BestMoveFrequencies() map[move.Direction]int {
	freq := map[move.Direction]int{}
	for _, h := range s.Games {
		for _, d := range h.Moves() {
			freq[d]++
		}
	}
	return freq
}
