package service

import (
	"context"
	"errors"

	"github.com/dekarrin/grammarlab/internal/analyzerr"
	"github.com/dekarrin/grammarlab/internal/grammar"
	"github.com/dekarrin/grammarlab/internal/present"
	"github.com/dekarrin/grammarlab/internal/table"
	"github.com/dekarrin/grammarlab/server/dao"
	"github.com/dekarrin/grammarlab/server/serr"
	"github.com/google/uuid"
)

// CreateGrammar parses and persists a named grammar. Only the grammar
// notation itself is validated here; a grammar whose table construction
// produces ACTION conflicts is still storable, since those conflicts are
// useful output of a later analysis run, not a reason to reject the
// grammar.
//
// The returned error, if non-nil, will match serr.ErrAlreadyExists if name
// is taken, or serr.ErrBadArgument if source fails to parse.
func (svc Service) CreateGrammar(ctx context.Context, name, source string) (dao.Grammar, error) {
	if name == "" {
		return dao.Grammar{}, serr.New("name cannot be blank", serr.ErrBadArgument)
	}

	if _, err := grammar.ParseText(source); err != nil {
		return dao.Grammar{}, serr.New("grammar is malformed: "+err.Error(), err, serr.ErrBadArgument)
	}

	stored := dao.Grammar{Name: name, Source: source}
	created, err := svc.DB.Grammars().Create(ctx, stored)
	if err != nil {
		if errors.Is(err, dao.ErrConstraintViolation) {
			return dao.Grammar{}, serr.New("a grammar named '"+name+"' already exists", serr.ErrAlreadyExists)
		}
		return dao.Grammar{}, serr.WrapDB("could not create grammar", err)
	}

	return created, nil
}

// GetGrammar returns the stored grammar with the given ID.
func (svc Service) GetGrammar(ctx context.Context, id string) (dao.Grammar, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.Grammar{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	g, err := svc.DB.Grammars().GetByID(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Grammar{}, serr.ErrNotFound
		}
		return dao.Grammar{}, serr.WrapDB("could not get grammar", err)
	}
	return g, nil
}

// ListGrammars returns every stored grammar.
func (svc Service) ListGrammars(ctx context.Context) ([]dao.Grammar, error) {
	all, err := svc.DB.Grammars().GetAll(ctx)
	if err != nil {
		return nil, serr.WrapDB("could not list grammars", err)
	}
	return all, nil
}

// loadGrammar fetches a stored grammar by ID and re-parses its source. The
// core's grammar.Grammar is never itself persisted, only its source text -
// re-parsing is cheap and keeps the stored row as the single source of
// truth.
func (svc Service) loadGrammar(ctx context.Context, id uuid.UUID) (dao.Grammar, grammar.Grammar, error) {
	stored, err := svc.DB.Grammars().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Grammar{}, grammar.Grammar{}, serr.ErrNotFound
		}
		return dao.Grammar{}, grammar.Grammar{}, serr.WrapDB("could not get grammar", err)
	}

	g, err := grammar.ParseText(stored.Source)
	if err != nil {
		// should not happen for anything CreateGrammar accepted, but a
		// grammar row could in principle have been written by some other
		// path, so this is reported rather than panicked on.
		return dao.Grammar{}, grammar.Grammar{}, serr.New("stored grammar is malformed: "+err.Error(), err)
	}

	return stored, g, nil
}

// FirstFollow computes the FIRST/FOLLOW sets for the stored grammar with the
// given ID.
func (svc Service) FirstFollow(ctx context.Context, id uuid.UUID) ([]present.FirstFollowRow, error) {
	_, g, err := svc.loadGrammar(ctx, id)
	if err != nil {
		return nil, err
	}

	first := g.First()
	follow := g.Follow(first)
	return present.FirstFollow(g, first, follow), nil
}

// Tables builds and returns the ACTION/GOTO table for the stored grammar
// with the given ID, along with the item-set listing of its canonical
// collection. A non-nil *analyzerr.GrammarAmbiguityError is returned
// alongside a usable table when the grammar has ACTION conflicts; it is not
// a failure of this call, so callers should still use tbl if it is non-nil.
//
// If a prior analysis run against this grammar already cached a built
// table, that cache is decoded and reused instead of rebuilding the
// canonical collection from scratch.
func (svc Service) Tables(ctx context.Context, id uuid.UUID) (*table.Table, []present.StateListing, error) {
	_, g, err := svc.loadGrammar(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	tbl, err := svc.cachedTable(ctx, id, g)
	if err != nil {
		var buildErr error
		tbl, buildErr = table.Build(g)
		listings := present.ItemSets(tbl)
		return tbl, listings, buildErr
	}

	listings := present.ItemSets(tbl)
	return tbl, listings, analyzerr.NewGrammarAmbiguity(tbl.Conflicts)
}

// cachedTable looks for the most recently recorded analysis run against
// grammarID with a usable table cache and, if found, decodes and
// reconstructs its *table.Table rather than rebuilding one from g. Returns
// an error if no analysis run has been recorded yet, or if the most recent
// cache fails to decode.
func (svc Service) cachedTable(ctx context.Context, grammarID uuid.UUID, g grammar.Grammar) (*table.Table, error) {
	runs, err := svc.DB.AnalysisRuns().GetAllByGrammar(ctx, grammarID)
	if err != nil {
		return nil, serr.WrapDB("could not check for a cached table", err)
	}

	var latest *dao.AnalysisRun
	for i := range runs {
		if len(runs[i].TableCache) == 0 {
			continue
		}
		if latest == nil || runs[i].Created.After(latest.Created) {
			latest = &runs[i]
		}
	}
	if latest == nil {
		return nil, errEmptyCache
	}

	return decodeTable(g, latest.TableCache)
}
