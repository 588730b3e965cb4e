package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dekarrin/grammarlab/server/dao"
	"github.com/dekarrin/grammarlab/server/serr"
	"github.com/stretchr/testify/assert"
)

const sampleGrammar = "" +
	"S -> A B\n" +
	"A -> a | ε\n" +
	"B -> b\n"

func newTestService() Service {
	return Service{DB: newMemStore()}
}

func TestCreateUser_Duplicate(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.CreateUser(ctx, "alice", "hunter2", dao.Normal)
	assert.NoError(err)

	_, err = svc.CreateUser(ctx, "alice", "hunter2", dao.Normal)
	assert.True(errors.Is(err, serr.ErrAlreadyExists))
}

func TestLogin_BadCredentials(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.CreateUser(ctx, "alice", "hunter2", dao.Normal)
	assert.NoError(err)

	_, err = svc.Login(ctx, "alice", "wrongpass")
	assert.True(errors.Is(err, serr.ErrBadCredentials))

	_, err = svc.Login(ctx, "nobody", "whatever")
	assert.True(errors.Is(err, serr.ErrBadCredentials))
}

func TestLogin_Success(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := newTestService()

	created, err := svc.CreateUser(ctx, "alice", "hunter2", dao.Normal)
	assert.NoError(err)

	loggedIn, err := svc.Login(ctx, "alice", "hunter2")
	assert.NoError(err)
	assert.Equal(created.ID, loggedIn.ID)
}

func TestLogout_InvalidatesPriorTokens(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := newTestService()

	created, err := svc.CreateUser(ctx, "alice", "hunter2", dao.Normal)
	assert.NoError(err)

	before := created.LastLogoutTime
	updated, err := svc.Logout(ctx, created.ID)
	assert.NoError(err)
	assert.True(updated.LastLogoutTime.After(before))
}

func TestCreateGrammar_RejectsMalformed(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.CreateGrammar(ctx, "bad", "this has no arrow")
	assert.True(errors.Is(err, serr.ErrBadArgument))
}

func TestCreateGrammar_RejectsDuplicateName(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.CreateGrammar(ctx, "g1", sampleGrammar)
	assert.NoError(err)

	_, err = svc.CreateGrammar(ctx, "g1", sampleGrammar)
	assert.True(errors.Is(err, serr.ErrAlreadyExists))
}

func TestFirstFollow_ComputesForStoredGrammar(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := newTestService()

	g, err := svc.CreateGrammar(ctx, "g1", sampleGrammar)
	assert.NoError(err)

	rows, err := svc.FirstFollow(ctx, g.ID)
	assert.NoError(err)
	assert.NotEmpty(rows)
}

func TestTables_BuildsForStoredGrammar(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := newTestService()

	g, err := svc.CreateGrammar(ctx, "g1", sampleGrammar)
	assert.NoError(err)

	tbl, listings, err := svc.Tables(ctx, g.ID)
	assert.NoError(err)
	assert.NotNil(tbl)
	assert.NotEmpty(listings)
}

func TestAnalyze_PersistsRunAndAccepts(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := newTestService()

	g, err := svc.CreateGrammar(ctx, "g1", sampleGrammar)
	assert.NoError(err)

	run, result, err := svc.Analyze(ctx, g.ID, "a b")
	assert.NoError(err)
	assert.True(run.Accepted)
	assert.True(result.Accepted())
	assert.NotEmpty(run.TableCache)

	stored, err := svc.GetAnalysisRun(ctx, run.ID)
	assert.NoError(err)
	assert.Equal(run.ID, stored.ID)
}

func TestAnalyze_RejectsBadInput(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := newTestService()

	g, err := svc.CreateGrammar(ctx, "g1", sampleGrammar)
	assert.NoError(err)

	run, result, err := svc.Analyze(ctx, g.ID, "b a")
	assert.NoError(err)
	assert.False(run.Accepted)
	assert.False(result.Accepted())
}

func TestRunDOT_RendersAcceptedTree(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := newTestService()

	g, err := svc.CreateGrammar(ctx, "g1", sampleGrammar)
	assert.NoError(err)

	run, _, err := svc.Analyze(ctx, g.ID, "a b")
	assert.NoError(err)

	dot, err := svc.RunDOT(ctx, run.ID)
	assert.NoError(err)
	assert.Contains(dot, "digraph G {")
}

func TestRunDOT_EmptyForRejectedRun(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := newTestService()

	g, err := svc.CreateGrammar(ctx, "g1", sampleGrammar)
	assert.NoError(err)

	run, _, err := svc.Analyze(ctx, g.ID, "b a")
	assert.NoError(err)

	dot, err := svc.RunDOT(ctx, run.ID)
	assert.NoError(err)
	assert.Empty(dot)
}

func TestDecodeCache_RoundTrips(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := newTestService()

	g, err := svc.CreateGrammar(ctx, "g1", sampleGrammar)
	assert.NoError(err)

	run, _, err := svc.Analyze(ctx, g.ID, "a b")
	assert.NoError(err)

	decoded, err := decodeCache(run.TableCache)
	assert.NoError(err)
	assert.NotEmpty(decoded.StateKeys)
	assert.NotEmpty(decoded.States)
	assert.NotEmpty(decoded.Actions)
}

func TestAnalyze_SecondRunReusesCachedTable(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := newTestService()

	g, err := svc.CreateGrammar(ctx, "g1", sampleGrammar)
	assert.NoError(err)

	first, _, err := svc.Analyze(ctx, g.ID, "a b")
	assert.NoError(err)
	assert.NotEmpty(first.TableCache)

	// the second run against the same grammar should decode and reuse the
	// first run's cached table rather than rebuilding it - both runs must
	// still agree on the outcome and on the table shape either way.
	second, result, err := svc.Analyze(ctx, g.ID, "a b")
	assert.NoError(err)
	assert.True(result.Accepted())
	assert.Equal(first.ConflictCount, second.ConflictCount)

	_, parsed, err := svc.loadGrammar(ctx, g.ID)
	assert.NoError(err)

	cached, err := svc.cachedTable(ctx, g.ID, parsed)
	assert.NoError(err)
	assert.NotNil(cached)
}
