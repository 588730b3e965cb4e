package service

import (
	"context"
	"errors"
	"strings"

	"github.com/dekarrin/grammarlab/internal/driver"
	"github.com/dekarrin/grammarlab/internal/present"
	"github.com/dekarrin/grammarlab/internal/table"
	"github.com/dekarrin/grammarlab/server/dao"
	"github.com/dekarrin/grammarlab/server/serr"
	"github.com/google/uuid"
)

// Analyze runs the shift-reduce driver for the stored grammar against
// tokenInput (a whitespace-separated token sequence) and persists the result
// as a new analysis run. The returned driver.Result carries the full trace
// and, on acceptance, the parse tree for immediate use by the caller; the
// persisted run itself keeps only the summary (accepted, conflict count) and
// a REZI-encoded table cache, not the trace or tree, since both are cheap to
// reproduce on demand and neither belongs in a retained grammar.
//
// If an earlier analysis run against the same grammar already cached a
// built table, that cache is decoded and reused here instead of rebuilding
// the canonical collection - only the first analysis of a given grammar
// pays for table construction.
func (svc Service) Analyze(ctx context.Context, grammarID uuid.UUID, tokenInput string) (dao.AnalysisRun, driver.Result, error) {
	stored, g, err := svc.loadGrammar(ctx, grammarID)
	if err != nil {
		return dao.AnalysisRun{}, driver.Result{}, err
	}

	tbl, err := svc.cachedTable(ctx, grammarID, g)
	if err != nil {
		tbl, _ = table.Build(g)
	}

	tokens := strings.Fields(tokenInput)
	result := driver.Run(g, tbl, tokens)

	run := dao.AnalysisRun{
		GrammarID:     stored.ID,
		TokenInput:    tokenInput,
		Accepted:      result.Accepted(),
		ConflictCount: len(tbl.Conflicts),
		TableCache:    encodeCache(tbl),
	}

	created, err := svc.DB.AnalysisRuns().Create(ctx, run)
	if err != nil {
		return dao.AnalysisRun{}, driver.Result{}, serr.WrapDB("could not persist analysis run", err)
	}

	return created, result, nil
}

// GetAnalysisRun returns the stored analysis run with the given ID.
func (svc Service) GetAnalysisRun(ctx context.Context, id uuid.UUID) (dao.AnalysisRun, error) {
	run, err := svc.DB.AnalysisRuns().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.AnalysisRun{}, serr.ErrNotFound
		}
		return dao.AnalysisRun{}, serr.WrapDB("could not get analysis run", err)
	}
	return run, nil
}

// ListAnalysisRuns returns every analysis run recorded against the given
// grammar.
func (svc Service) ListAnalysisRuns(ctx context.Context, grammarID uuid.UUID) ([]dao.AnalysisRun, error) {
	runs, err := svc.DB.AnalysisRuns().GetAllByGrammar(ctx, grammarID)
	if err != nil {
		return nil, serr.WrapDB("could not list analysis runs", err)
	}
	return runs, nil
}

// RunDOT re-derives the parse tree for a stored analysis run and renders it
// as Graphviz DOT. The tree itself is never persisted, so this re-runs the
// driver against the run's stored token input and its own cached table -
// the core's determinism guarantees this reproduces exactly the tree
// Analyze saw at creation time. Returns an empty string with no error if
// the run was a rejection, since there is no tree to render.
func (svc Service) RunDOT(ctx context.Context, runID uuid.UUID) (string, error) {
	run, err := svc.GetAnalysisRun(ctx, runID)
	if err != nil {
		return "", err
	}

	_, g, err := svc.loadGrammar(ctx, run.GrammarID)
	if err != nil {
		return "", err
	}

	tbl, err := decodeTable(g, run.TableCache)
	if err != nil {
		tbl, _ = table.Build(g)
	}
	tokens := strings.Fields(run.TokenInput)
	result := driver.Run(g, tbl, tokens)

	if !result.Accepted() {
		return "", nil
	}

	return present.DOT(result.Tree), nil
}
