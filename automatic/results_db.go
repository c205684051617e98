package automatic

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

var resultsSchema = []string{
	`CREATE TABLE IF NOT EXISTS games (
		uid TEXT PRIMARY KEY,
		batch TEXT NOT NULL,
		game INTEGER NOT NULL,
		seed TEXT NOT NULL,
		moves TEXT NOT NULL,
		turns INTEGER NOT NULL,
		score REAL NOT NULL,
		max_rank INTEGER NOT NULL,
		final_board TEXT NOT NULL,
		digest TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS games_batch_idx ON games(batch)`,
}

// ResultsDB stores autoplay results in a sqlite file so batches run with
// different settings can be compared later.
type ResultsDB struct {
	db *sql.DB
}

// BatchResult is an aggregate over one autoplay batch.
type BatchResult struct {
	Batch     string
	Games     int
	MeanScore float64
	BestScore float64
	MaxRank   int
}

func OpenResultsDB(ctx context.Context, path string) (*ResultsDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)
	for _, stmt := range resultsSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, err
		}
	}
	log.Debug().Str("path", path).Msg("opened-results-db")
	return &ResultsDB{db: db}, nil
}

func (r *ResultsDB) Close() error {
	return r.db.Close()
}

// Insert saves one game under the given batch id.
func (r *ResultsDB) Insert(ctx context.Context, batch string, rec *GameRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO games (uid, batch, game, seed, moves, turns, score, max_rank, final_board, digest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.UID, batch, rec.Game, rec.Seed.String(), rec.Moves, rec.Turns, rec.Score,
		rec.MaxRank, rec.FinalBoard.String(), rec.Digest)
	return err
}

// Batches returns an aggregate row per batch, oldest first.
func (r *ResultsDB) Batches(ctx context.Context) ([]BatchResult, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT batch, COUNT(*), AVG(score), MAX(score), MAX(max_rank)
		FROM games GROUP BY batch ORDER BY MIN(created_at), batch`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []BatchResult
	for rows.Next() {
		var b BatchResult
		if err := rows.Scan(&b.Batch, &b.Games, &b.MeanScore, &b.BestScore, &b.MaxRank); err != nil {
			return nil, err
		}
		res = append(res, b)
	}
	return res, rows.Err()
}

// Records returns the games of one batch ordered by game index.
func (r *ResultsDB) Records(ctx context.Context, batch string) ([]*GameRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT game, uid, seed, moves, turns, score, max_rank, final_board, digest
		FROM games WHERE batch = ? ORDER BY game`, batch)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var recs []*GameRecord
	for rows.Next() {
		rec := &GameRecord{}
		var seed, fb string
		if err := rows.Scan(&rec.Game, &rec.UID, &seed, &rec.Moves, &rec.Turns,
			&rec.Score, &rec.MaxRank, &fb, &rec.Digest); err != nil {
			return nil, err
		}
		if err := rec.Seed.UnmarshalText([]byte(seed)); err != nil {
			return nil, err
		}
		if err := rec.FinalBoard.UnmarshalText([]byte(fb)); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
