// Package dao provides data access objects for grammarlab's persistence
// layer: named grammars, the analysis runs performed against them, and the
// accounts allowed to create new grammars.
package dao

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrConstraintViolation = errors.New("a uniqueness constraint was violated")
	ErrNotFound            = errors.New("the requested resource was not found")
	ErrDecodingFailure     = errors.New("field could not be decoded from DB storage format to model format")
)

// Store holds all the repositories.
type Store interface {
	Grammars() GrammarRepository
	AnalysisRuns() AnalysisRunRepository
	Users() UserRepository
	Close() error
}

// Grammar is a named, persisted grammar text, as submitted to
// POST /api/v1/grammars.
type Grammar struct {
	ID       uuid.UUID
	Name     string
	Source   string
	Created  time.Time
	Modified time.Time
}

// GrammarRepository stores and retrieves named grammars.
type GrammarRepository interface {
	Create(ctx context.Context, g Grammar) (Grammar, error)
	GetByID(ctx context.Context, id uuid.UUID) (Grammar, error)
	GetAll(ctx context.Context) ([]Grammar, error)
	Update(ctx context.Context, id uuid.UUID, g Grammar) (Grammar, error)
	Delete(ctx context.Context, id uuid.UUID) (Grammar, error)
	Close() error
}

// AnalysisRun is one shift-reduce driver run against a stored grammar: the
// token input given, whether it was accepted, how many ACTION conflicts the
// grammar's table construction produced, and a REZI-encoded cache blob of
// the grammar's canonical collection and ACTION/GOTO tables so that
// re-analyzing the same grammar doesn't repeat table construction.
type AnalysisRun struct {
	ID            uuid.UUID
	GrammarID     uuid.UUID
	TokenInput    string
	Accepted      bool
	ConflictCount int
	TableCache    []byte
	Created       time.Time
}

// AnalysisRunRepository stores and retrieves analysis runs.
type AnalysisRunRepository interface {
	Create(ctx context.Context, run AnalysisRun) (AnalysisRun, error)
	GetByID(ctx context.Context, id uuid.UUID) (AnalysisRun, error)
	GetAllByGrammar(ctx context.Context, grammarID uuid.UUID) ([]AnalysisRun, error)
	Close() error
}

// Role distinguishes what an account is permitted to do. grammarlab only
// has one mutating concern (creating a named grammar), so this is simpler
// than a full role hierarchy, but it's kept as a type rather than a bool so
// it reads the same way at call sites as the richer Role types elsewhere in
// this codebase family.
type Role int

const (
	Normal Role = iota
	Admin  Role = 100
)

func (r Role) String() string {
	switch r {
	case Normal:
		return "normal"
	case Admin:
		return "admin"
	default:
		return fmt.Sprintf("Role(%d)", r)
	}
}

func ParseRole(s string) (Role, error) {
	switch strings.ToLower(s) {
	case "normal":
		return Normal, nil
	case "admin":
		return Admin, nil
	default:
		return Normal, fmt.Errorf("must be one of 'normal' or 'admin'")
	}
}

// User is an account permitted to create stored grammars. Password is the
// bcrypt hash, not the plaintext credential.
type User struct {
	ID             uuid.UUID
	Username       string
	Password       string
	Role           Role
	Created        time.Time
	Modified       time.Time
	LastLogoutTime time.Time
}

// UserRepository stores and retrieves accounts.
type UserRepository interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	GetAll(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id uuid.UUID, user User) (User, error)
	Delete(ctx context.Context, id uuid.UUID) (User, error)
	Close() error
}
