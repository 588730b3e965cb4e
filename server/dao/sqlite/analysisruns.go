package sqlite

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/dekarrin/grammarlab/server/dao"
	"github.com/google/uuid"
)

// AnalysisRunsDB is the SQLite-backed dao.AnalysisRunRepository.
type AnalysisRunsDB struct {
	db *sql.DB
}

func (repo *AnalysisRunsDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS analysis_runs (
		id TEXT NOT NULL PRIMARY KEY,
		grammar_id TEXT NOT NULL REFERENCES grammars(id) ON DELETE CASCADE,
		token_input TEXT NOT NULL,
		accepted INTEGER NOT NULL,
		conflict_count INTEGER NOT NULL,
		table_cache TEXT NOT NULL,
		created INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *AnalysisRunsDB) Create(ctx context.Context, run dao.AnalysisRun) (dao.AnalysisRun, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.AnalysisRun{}, fmt.Errorf("could not generate ID: %w", err)
	}

	now := time.Now()
	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO analysis_runs (id, grammar_id, token_input, accepted, conflict_count, table_cache, created) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		convertToDB_UUID(newUUID),
		convertToDB_UUID(run.GrammarID),
		run.TokenInput,
		boolToDB(run.Accepted),
		run.ConflictCount,
		base64.StdEncoding.EncodeToString(run.TableCache),
		now.Unix(),
	)
	if err != nil {
		return dao.AnalysisRun{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *AnalysisRunsDB) GetByID(ctx context.Context, id uuid.UUID) (dao.AnalysisRun, error) {
	row := repo.db.QueryRowContext(ctx,
		`SELECT id, grammar_id, token_input, accepted, conflict_count, table_cache, created FROM analysis_runs WHERE id = ?;`,
		convertToDB_UUID(id),
	)
	run, err := scanAnalysisRun(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return dao.AnalysisRun{}, dao.ErrNotFound
		}
		return dao.AnalysisRun{}, wrapDBError(err)
	}
	return run, nil
}

func (repo *AnalysisRunsDB) GetAllByGrammar(ctx context.Context, grammarID uuid.UUID) ([]dao.AnalysisRun, error) {
	rows, err := repo.db.QueryContext(ctx,
		`SELECT id, grammar_id, token_input, accepted, conflict_count, table_cache, created FROM analysis_runs WHERE grammar_id = ? ORDER BY created;`,
		convertToDB_UUID(grammarID),
	)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.AnalysisRun
	for rows.Next() {
		run, err := scanAnalysisRun(rows)
		if err != nil {
			return nil, wrapDBError(err)
		}
		all = append(all, run)
	}
	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}
	return all, nil
}

func (repo *AnalysisRunsDB) Close() error {
	return nil
}

func boolToDB(b bool) int {
	if b {
		return 1
	}
	return 0
}

func scanAnalysisRun(row scannable) (dao.AnalysisRun, error) {
	var run dao.AnalysisRun
	var id, grammarID, cacheB64 string
	var accepted int
	var created int64

	err := row.Scan(&id, &grammarID, &run.TokenInput, &accepted, &run.ConflictCount, &cacheB64, &created)
	if err != nil {
		return dao.AnalysisRun{}, err
	}

	run.ID, err = uuid.Parse(id)
	if err != nil {
		return dao.AnalysisRun{}, fmt.Errorf("stored UUID %q is invalid", id)
	}
	run.GrammarID, err = uuid.Parse(grammarID)
	if err != nil {
		return dao.AnalysisRun{}, fmt.Errorf("stored grammar UUID %q is invalid", grammarID)
	}
	run.Accepted = accepted != 0
	run.Created = time.Unix(created, 0)

	if cacheB64 != "" {
		run.TableCache, err = base64.StdEncoding.DecodeString(cacheB64)
		if err != nil {
			return dao.AnalysisRun{}, fmt.Errorf("stored table cache is not valid base64: %w", err)
		}
	}

	return run, nil
}
