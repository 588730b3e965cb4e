package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dekarrin/grammarlab/server/dao"
	"github.com/google/uuid"
)

// UsersDB is the SQLite-backed dao.UserRepository. Accounts here exist
// solely to gate POST /api/v1/grammars; there is no broader user profile.
type UsersDB struct {
	db *sql.DB
}

func (repo *UsersDB) init() error {
	_, err := repo.db.Exec(`CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role TEXT NOT NULL,
		created INTEGER NOT NULL,
		modified INTEGER NOT NULL,
		last_logout_time INTEGER NOT NULL
	);`)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *UsersDB) Create(ctx context.Context, user dao.User) (dao.User, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.User{}, fmt.Errorf("could not generate ID: %w", err)
	}

	now := time.Now()
	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password, role, created, modified, last_logout_time) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		convertToDB_UUID(newUUID), user.Username, user.Password, user.Role.String(),
		now.Unix(), now.Unix(), now.Unix(),
	)
	if err != nil {
		return dao.User{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *UsersDB) GetByID(ctx context.Context, id uuid.UUID) (dao.User, error) {
	row := repo.db.QueryRowContext(ctx,
		`SELECT id, username, password, role, created, modified, last_logout_time FROM users WHERE id = ?;`,
		convertToDB_UUID(id),
	)
	return scanUser(row)
}

func (repo *UsersDB) GetByUsername(ctx context.Context, username string) (dao.User, error) {
	row := repo.db.QueryRowContext(ctx,
		`SELECT id, username, password, role, created, modified, last_logout_time FROM users WHERE username = ?;`,
		username,
	)
	return scanUser(row)
}

func (repo *UsersDB) GetAll(ctx context.Context) ([]dao.User, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, username, password, role, created, modified, last_logout_time FROM users ORDER BY created;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, wrapDBError(err)
		}
		all = append(all, u)
	}
	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}
	return all, nil
}

func (repo *UsersDB) Update(ctx context.Context, id uuid.UUID, user dao.User) (dao.User, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE users SET username=?, password=?, role=?, modified=?, last_logout_time=? WHERE id=?;`,
		user.Username, user.Password, user.Role.String(), time.Now().Unix(), user.LastLogoutTime.Unix(), convertToDB_UUID(id),
	)
	if err != nil {
		return dao.User{}, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return dao.User{}, wrapDBError(err)
	}
	if rowsAff < 1 {
		return dao.User{}, dao.ErrNotFound
	}
	return repo.GetByID(ctx, id)
}

func (repo *UsersDB) Delete(ctx context.Context, id uuid.UUID) (dao.User, error) {
	u, err := repo.GetByID(ctx, id)
	if err != nil {
		return dao.User{}, err
	}
	_, err = repo.db.ExecContext(ctx, `DELETE FROM users WHERE id=?;`, convertToDB_UUID(id))
	if err != nil {
		return dao.User{}, wrapDBError(err)
	}
	return u, nil
}

func (repo *UsersDB) Close() error {
	return nil
}

func scanUser(row scannable) (dao.User, error) {
	u, err := scanUserRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return dao.User{}, dao.ErrNotFound
		}
		return dao.User{}, wrapDBError(err)
	}
	return u, nil
}

func scanUserRow(row scannable) (dao.User, error) {
	var u dao.User
	var id, role string
	var created, modified, lastLogout int64

	err := row.Scan(&id, &u.Username, &u.Password, &role, &created, &modified, &lastLogout)
	if err != nil {
		return dao.User{}, err
	}

	u.ID, err = uuid.Parse(id)
	if err != nil {
		return dao.User{}, fmt.Errorf("stored UUID %q is invalid", id)
	}
	u.Role, err = dao.ParseRole(role)
	if err != nil {
		return dao.User{}, fmt.Errorf("stored role %q is invalid: %w", role, err)
	}
	u.Created = time.Unix(created, 0)
	u.Modified = time.Unix(modified, 0)
	u.LastLogoutTime = time.Unix(lastLogout, 0)

	return u, nil
}
