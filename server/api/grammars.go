package api

import (
	"net/http"
	"time"

	"github.com/dekarrin/grammarlab/server/dao"
	"github.com/dekarrin/grammarlab/server/result"
)

// GrammarRequest is the body of POST /api/v1/grammars.
type GrammarRequest struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// GrammarResponse is how a stored grammar is rendered over the API.
type GrammarResponse struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Source   string    `json:"source"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

func grammarToResponse(g dao.Grammar) GrammarResponse {
	return GrammarResponse{
		ID:       g.ID.String(),
		Name:     g.Name,
		Source:   g.Source,
		Created:  g.Created,
		Modified: g.Modified,
	}
}

func (api API) epCreateGrammar(req *http.Request) result.Result {
	var body GrammarRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	g, err := api.Backend.CreateGrammar(req.Context(), body.Name, body.Source)
	if err != nil {
		return errToResult(err)
	}

	return result.Created(grammarToResponse(g), "grammar '%s' created", g.Name)
}

func (api API) epGetGrammar(req *http.Request) result.Result {
	id, err := requireIDParam(req)
	if err != nil {
		return result.NotFound()
	}

	g, err := api.Backend.GetGrammar(req.Context(), id.String())
	if err != nil {
		return errToResult(err)
	}

	return result.OK(grammarToResponse(g), "fetched grammar '%s'", g.Name)
}

func (api API) epListGrammars(req *http.Request) result.Result {
	all, err := api.Backend.ListGrammars(req.Context())
	if err != nil {
		return errToResult(err)
	}

	resp := make([]GrammarResponse, len(all))
	for i, g := range all {
		resp[i] = grammarToResponse(g)
	}
	return result.OK(resp, "listed %d grammar(s)", len(resp))
}
