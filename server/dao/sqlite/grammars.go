package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dekarrin/grammarlab/server/dao"
	"github.com/google/uuid"
)

// GrammarsDB is the SQLite-backed dao.GrammarRepository.
type GrammarsDB struct {
	db *sql.DB
}

func (repo *GrammarsDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS grammars (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		source TEXT NOT NULL,
		created INTEGER NOT NULL,
		modified INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *GrammarsDB) Create(ctx context.Context, g dao.Grammar) (dao.Grammar, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Grammar{}, fmt.Errorf("could not generate ID: %w", err)
	}

	now := time.Now()
	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO grammars (id, name, source, created, modified) VALUES (?, ?, ?, ?, ?)`,
		convertToDB_UUID(newUUID), g.Name, g.Source, now.Unix(), now.Unix(),
	)
	if err != nil {
		return dao.Grammar{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *GrammarsDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Grammar, error) {
	row := repo.db.QueryRowContext(ctx,
		`SELECT id, name, source, created, modified FROM grammars WHERE id = ?;`,
		convertToDB_UUID(id),
	)
	return scanGrammar(row)
}

func (repo *GrammarsDB) GetAll(ctx context.Context) ([]dao.Grammar, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, name, source, created, modified FROM grammars ORDER BY created;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.Grammar
	for rows.Next() {
		g, err := scanGrammarRow(rows)
		if err != nil {
			return nil, wrapDBError(err)
		}
		all = append(all, g)
	}
	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}
	return all, nil
}

func (repo *GrammarsDB) Update(ctx context.Context, id uuid.UUID, g dao.Grammar) (dao.Grammar, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE grammars SET name=?, source=?, modified=? WHERE id=?;`,
		g.Name, g.Source, time.Now().Unix(), convertToDB_UUID(id),
	)
	if err != nil {
		return dao.Grammar{}, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return dao.Grammar{}, wrapDBError(err)
	}
	if rowsAff < 1 {
		return dao.Grammar{}, dao.ErrNotFound
	}
	return repo.GetByID(ctx, id)
}

func (repo *GrammarsDB) Delete(ctx context.Context, id uuid.UUID) (dao.Grammar, error) {
	g, err := repo.GetByID(ctx, id)
	if err != nil {
		return dao.Grammar{}, err
	}

	_, err = repo.db.ExecContext(ctx, `DELETE FROM grammars WHERE id=?;`, convertToDB_UUID(id))
	if err != nil {
		return dao.Grammar{}, wrapDBError(err)
	}
	return g, nil
}

func (repo *GrammarsDB) Close() error {
	// the underlying *sql.DB is shared with the other repositories in this
	// store and is closed by store.Close, not here.
	return nil
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanGrammar(row scannable) (dao.Grammar, error) {
	g, err := scanGrammarRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return dao.Grammar{}, dao.ErrNotFound
		}
		return dao.Grammar{}, wrapDBError(err)
	}
	return g, nil
}

func scanGrammarRow(row scannable) (dao.Grammar, error) {
	var g dao.Grammar
	var id string
	var created, modified int64

	err := row.Scan(&id, &g.Name, &g.Source, &created, &modified)
	if err != nil {
		return dao.Grammar{}, err
	}

	g.ID, err = uuid.Parse(id)
	if err != nil {
		return dao.Grammar{}, fmt.Errorf("stored UUID %q is invalid", id)
	}
	g.Created = time.Unix(created, 0)
	g.Modified = time.Unix(modified, 0)

	return g, nil
}
