package api

import (
	"net/http"

	"github.com/dekarrin/grammarlab/internal/analyzerr"
	"github.com/dekarrin/grammarlab/internal/driver"
	"github.com/dekarrin/grammarlab/internal/present"
	"github.com/dekarrin/grammarlab/server/result"
)

func (api API) epFirstFollow(req *http.Request) result.Result {
	id, err := requireIDParam(req)
	if err != nil {
		return result.NotFound()
	}

	rows, err := api.Backend.FirstFollow(req.Context(), id)
	if err != nil {
		return errToResult(err)
	}

	return result.OK(rows, "computed FIRST/FOLLOW for grammar %s", id)
}

// ConflictResponse is how a recorded ACTION-table conflict is rendered over
// the API.
type ConflictResponse struct {
	State     int    `json:"state"`
	Terminal  string `json:"terminal"`
	Existing  string `json:"existing"`
	Attempted string `json:"attempted"`
}

// TablesResponse is the body returned by GET /api/v1/grammars/{id}/tables.
type TablesResponse struct {
	Action    []present.ActionRow      `json:"action"`
	Goto      []present.GotoRow        `json:"goto"`
	States    []present.StateListing   `json:"states"`
	Conflicts []ConflictResponse       `json:"conflicts"`
}

func (api API) epTables(req *http.Request) result.Result {
	id, err := requireIDParam(req)
	if err != nil {
		return result.NotFound()
	}

	tbl, listings, err := api.Backend.Tables(req.Context(), id)
	if err != nil && tbl == nil {
		return errToResult(err)
	}

	var conflicts []ConflictResponse
	var ambiguity *analyzerr.GrammarAmbiguityError
	if err != nil {
		if asAmbiguity(err, &ambiguity) {
			for _, c := range ambiguity.Conflicts {
				conflicts = append(conflicts, ConflictResponse{
					State:     c.State,
					Terminal:  c.Terminal,
					Existing:  c.Existing,
					Attempted: c.Attempted,
				})
			}
		}
	}

	resp := TablesResponse{
		Action:    present.ActionTable(tbl),
		Goto:      present.GotoTable(tbl),
		States:    listings,
		Conflicts: conflicts,
	}

	return result.OK(resp, "built tables for grammar %s (%d conflict(s))", id, len(conflicts))
}

func asAmbiguity(err error, target **analyzerr.GrammarAmbiguityError) bool {
	if amb, ok := err.(*analyzerr.GrammarAmbiguityError); ok {
		*target = amb
		return true
	}
	return false
}

// AnalyzeRequest is the body of POST /api/v1/grammars/{id}/analyze.
type AnalyzeRequest struct {
	Input string `json:"input"`
}

// AnalyzeResponse is the body returned by a successful analysis run.
type AnalyzeResponse struct {
	RunID    string          `json:"run_id"`
	Accepted bool            `json:"accepted"`
	Trace    []driver.Frame  `json:"trace"`
	Tree     *driver.Tree    `json:"tree"`
}

func (api API) epAnalyze(req *http.Request) result.Result {
	id, err := requireIDParam(req)
	if err != nil {
		return result.NotFound()
	}

	var body AnalyzeRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	run, driverResult, err := api.Backend.Analyze(req.Context(), id, body.Input)
	if err != nil {
		return errToResult(err)
	}

	resp := AnalyzeResponse{
		RunID:    run.ID.String(),
		Accepted: driverResult.Accepted(),
		Trace:    driverResult.Trace,
		Tree:     driverResult.Tree,
	}
	return result.Created(resp, "ran analysis %s against grammar %s (accepted=%t)", run.ID, id, run.Accepted)
}

// DOTResponse is the body returned by GET /api/v1/runs/{id}/dot. DOT is
// empty if the run was a rejection - there is no parse tree to export.
type DOTResponse struct {
	DOT string `json:"dot"`
}

func (api API) epRunDOT(req *http.Request) result.Result {
	id, err := requireIDParam(req)
	if err != nil {
		return result.NotFound()
	}

	dot, err := api.Backend.RunDOT(req.Context(), id)
	if err != nil {
		return errToResult(err)
	}

	return result.OK(DOTResponse{DOT: dot}, "rendered DOT for run %s", id)
}
