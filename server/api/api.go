// Package api provides HTTP API endpoints for the grammarlab server.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/dekarrin/grammarlab/server/auth"
	"github.com/dekarrin/grammarlab/server/dao"
	"github.com/dekarrin/grammarlab/server/result"
	"github.com/dekarrin/grammarlab/server/serr"
	"github.com/dekarrin/grammarlab/server/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	// PathPrefix is the prefix of all paths in the API. Routers should mount
	// a sub-router that routes all requests to the API at this path.
	PathPrefix = "/api/v1"
)

// API holds parameters for endpoints needed to run and a service layer that
// performs most of the actual logic. To use API, call Router to obtain a
// chi.Router mountable on a parent router or http.Server.
//
// This is exclusively an API for serving external requests. For direct
// programmatic access into the backend from Go code, see [service.Service].
type API struct {
	// Backend is the service that the API calls to perform the requested
	// actions.
	Backend service.Service

	// UnauthDelay is the amount of time that a request will pause before
	// responding with an HTTP-401, HTTP-403, or HTTP-500, to deprioritize
	// such requests from processing and I/O.
	UnauthDelay time.Duration

	// Secret is the secret used to sign JWT tokens.
	Secret []byte
}

// Router builds a chi.Router serving every endpoint under PathPrefix.
func (api API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(auth.DontPanic())

	r.Post("/login", api.Endpoint(api.epLogin))

	authed := r.With(auth.RequireAuth(api.Backend.DB.Users(), api.Secret, api.UnauthDelay))
	authed.Post("/grammars", api.Endpoint(api.epCreateGrammar))

	r.Get("/grammars", api.Endpoint(api.epListGrammars))
	r.Get("/grammars/{id}", api.Endpoint(api.epGetGrammar))
	r.Get("/grammars/{id}/first-follow", api.Endpoint(api.epFirstFollow))
	r.Get("/grammars/{id}/tables", api.Endpoint(api.epTables))
	r.Post("/grammars/{id}/analyze", api.Endpoint(api.epAnalyze))
	r.Get("/runs/{id}/dot", api.Endpoint(api.epRunDOT))

	return r
}

// EndpointFunc is a handler that produces a result.Result rather than
// writing to an http.ResponseWriter directly, so the wait-before-responding
// and logging policy in Endpoint applies uniformly to every route.
type EndpointFunc func(req *http.Request) result.Result

// Endpoint adapts an EndpointFunc into an http.HandlerFunc, applying the
// panic-to-500 guard, structured logging, and the unauthorized-response
// delay this codebase's other servers use to deprioritize bad-auth and
// forbidden requests.
func (api API) Endpoint(ep EndpointFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		defer panicTo500(w, req)
		r := ep(req)

		if r.Status == 0 {
			logHTTPResponse("ERROR", req, http.StatusInternalServerError, "endpoint result was never populated")
			http.Error(w, "An internal server error occurred", http.StatusInternalServerError)
			return
		}

		if err := r.PrepareMarshaledResponse(); err != nil {
			newResp := result.Err(http.StatusInternalServerError, "An internal server error occurred", "could not marshal JSON response: "+err.Error())
			logHTTPResponse("ERROR", req, newResp.Status, newResp.InternalMsg)
			newResp.WriteResponse(w)
			return
		}

		if r.IsErr {
			logHTTPResponse("ERROR", req, r.Status, r.InternalMsg)
		} else {
			logHTTPResponse("INFO", req, r.Status, r.InternalMsg)
		}

		if r.Status == http.StatusUnauthorized || r.Status == http.StatusForbidden || r.Status == http.StatusInternalServerError {
			time.Sleep(api.UnauthDelay)
		}

		r.WriteResponse(w)
	}
}

func requireIDParam(r *http.Request) (uuid.UUID, error) {
	return getURLParam(r, "id", uuid.Parse)
}

func getURLParam[E any](r *http.Request, key string, parse func(string) (E, error)) (val E, err error) {
	valStr := chi.URLParam(r, key)
	if valStr == "" {
		return val, fmt.Errorf("parameter does not exist")
	}
	return parse(valStr)
}

// parseJSON decodes req's JSON body into v, which must be a pointer. The
// request body is restored afterward so other middleware can still read it.
func parseJSON(req *http.Request, v interface{}) error {
	contentType := req.Header.Get("Content-Type")
	if strings.ToLower(contentType) != "application/json" {
		return fmt.Errorf("request content-type is not application/json")
	}

	bodyData, err := io.ReadAll(req.Body)
	if err != nil {
		return fmt.Errorf("could not read request body: %w", err)
	}
	defer func() {
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewBuffer(bodyData))
	}()

	if err := json.Unmarshal(bodyData, v); err != nil {
		return serr.New("malformed JSON in request", err, serr.ErrBodyUnmarshal)
	}
	return nil
}

func panicTo500(w http.ResponseWriter, req *http.Request) (panicVal interface{}) {
	if panicErr := recover(); panicErr != nil {
		r := result.TextErr(
			http.StatusInternalServerError,
			"An internal server error occurred",
			fmt.Sprintf("panic: %v\nSTACK TRACE: %s", panicErr, string(debug.Stack())),
		)
		logHTTPResponse("ERROR", req, r.Status, r.InternalMsg)
		r.WriteResponse(w)
		return true
	}
	return false
}

func logHTTPResponse(level string, req *http.Request, respStatus int, msg string) {
	if len(level) > 5 {
		level = level[0:5]
	}
	for len(level) < 5 {
		level += " "
	}

	remoteAddrParts := strings.SplitN(req.RemoteAddr, ":", 2)
	remoteIP := remoteAddrParts[0]

	log.Printf("%s %s %s %s: HTTP-%d %s", level, remoteIP, req.Method, req.URL.Path, respStatus, msg)
}

func errToResult(err error) result.Result {
	switch {
	case err == nil:
		return result.Result{}
	case isErr(err, serr.ErrNotFound):
		return result.NotFound()
	case isErr(err, serr.ErrAlreadyExists):
		return result.Conflict(err.Error(), err.Error())
	case isErr(err, serr.ErrBadArgument), isErr(err, serr.ErrBodyUnmarshal):
		return result.BadRequest(err.Error(), err.Error())
	case isErr(err, serr.ErrBadCredentials):
		return result.Unauthorized("", err.Error())
	case isErr(err, serr.ErrPermissions):
		return result.Forbidden(err.Error())
	default:
		return result.InternalServerError(err.Error())
	}
}

func isErr(err, target error) bool {
	type iser interface{ Is(error) bool }
	if ie, ok := err.(iser); ok && ie.Is(target) {
		return true
	}
	return err == target
}

// AuthUser returns the logged-in user stored in req's context by the auth
// middleware. It panics if none is present, which can only happen if this
// is called from a handler not mounted behind auth.RequireAuth.
func AuthUser(req *http.Request) dao.User {
	return req.Context().Value(auth.CtxUser).(dao.User)
}
