// Package sqlite provides a dao.Store backed by a single SQLite database
// file, following this codebase's one-file-per-repository DAO convention.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dekarrin/grammarlab/server/dao"
	"github.com/google/uuid"
	"modernc.org/sqlite"
)

type store struct {
	dbFilename string
	db         *sql.DB

	grammars *GrammarsDB
	runs     *AnalysisRunsDB
	users    *UsersDB
}

// NewDatastore opens (creating if necessary) the SQLite database file in
// storageDir and initializes every repository's schema.
func NewDatastore(storageDir string) (dao.Store, error) {
	st := &store{dbFilename: "grammarlab.db"}

	fileName := filepath.Join(storageDir, st.dbFilename)

	var err error
	st.db, err = sql.Open("sqlite", fileName)
	if err != nil {
		return nil, wrapDBError(err)
	}

	st.users = &UsersDB{db: st.db}
	if err := st.users.init(); err != nil {
		return nil, err
	}

	st.grammars = &GrammarsDB{db: st.db}
	if err := st.grammars.init(); err != nil {
		return nil, err
	}

	st.runs = &AnalysisRunsDB{db: st.db}
	if err := st.runs.init(); err != nil {
		return nil, err
	}

	return st, nil
}

func (s *store) Grammars() dao.GrammarRepository {
	return s.grammars
}

func (s *store) AnalysisRuns() dao.AnalysisRunRepository {
	return s.runs
}

func (s *store) Users() dao.UserRepository {
	return s.users
}

func (s *store) Close() error {
	return s.db.Close()
}

// convertToDB_UUID converts a uuid.UUID to storage DB format on disk.
func convertToDB_UUID(u uuid.UUID) string {
	return u.String()
}

func wrapDBError(err error) error {
	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == 19 {
			return dao.ErrConstraintViolation
		}
		return fmt.Errorf("%s", sqlite.ErrorCodeString[sqliteErr.Code()])
	} else if errors.Is(err, sql.ErrNoRows) {
		return dao.ErrNotFound
	}
	return err
}
