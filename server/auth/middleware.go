package auth

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/dekarrin/grammarlab/server/dao"
	"github.com/dekarrin/grammarlab/server/result"
)

type mwFunc http.HandlerFunc

func (sf mwFunc) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	sf(w, req)
}

// Middleware takes a handler and returns a new handler wrapping it with some
// additional functionality.
type Middleware func(next http.Handler) http.Handler

// ContextKey is a key in the context of a request populated by a Handler.
type ContextKey int64

const (
	CtxLoggedIn ContextKey = iota
	CtxUser
)

// Handler extracts the bearer token from a request (if present), validates
// it, and stores the logged-in dao.User (or the zero value, if none) and a
// logged-in flag in the request context before calling the next handler.
//
// If required is true and no valid token is present, the chain is stopped
// and an HTTP-401 is written instead of calling next.
type Handler struct {
	db            dao.UserRepository
	secret        []byte
	required      bool
	unauthedDelay time.Duration
	next          http.Handler
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var loggedIn bool
	var user dao.User

	tok, err := Get(req)
	if err != nil {
		if h.required {
			r := result.Unauthorized("", err.Error())
			time.Sleep(h.unauthedDelay)
			r.WriteResponse(w)
			return
		}
	} else {
		lookupUser, err := Validate(req.Context(), tok, h.secret, h.db)
		if err != nil {
			if h.required {
				r := result.Unauthorized("", err.Error())
				time.Sleep(h.unauthedDelay)
				r.WriteResponse(w)
				return
			}
		} else {
			user = lookupUser
			loggedIn = true
		}
	}

	ctx := req.Context()
	ctx = context.WithValue(ctx, CtxLoggedIn, loggedIn)
	ctx = context.WithValue(ctx, CtxUser, user)
	req = req.WithContext(ctx)
	h.next.ServeHTTP(w, req)
}

// RequireAuth returns Middleware that rejects any request without a valid
// bearer token with an HTTP-401.
func RequireAuth(db dao.UserRepository, secret []byte, unauthDelay time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return &Handler{db: db, secret: secret, unauthedDelay: unauthDelay, required: true, next: next}
	}
}

// OptionalAuth returns Middleware that records the logged-in user if a valid
// bearer token is present, but never rejects the request on its own.
func OptionalAuth(db dao.UserRepository, secret []byte, unauthDelay time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return &Handler{db: db, secret: secret, unauthedDelay: unauthDelay, required: false, next: next}
	}
}

// DontPanic returns Middleware that recovers from a panic in next, writing
// an HTTP-500 and logging the stack trace instead of crashing the server.
func DontPanic() Middleware {
	return func(next http.Handler) http.Handler {
		return mwFunc(func(w http.ResponseWriter, req *http.Request) {
			defer panicTo500(w, req)
			next.ServeHTTP(w, req)
		})
	}
}

func panicTo500(w http.ResponseWriter, req *http.Request) (panicVal interface{}) {
	if panicErr := recover(); panicErr != nil {
		r := result.TextErr(
			http.StatusInternalServerError,
			"An internal server error occurred",
			fmt.Sprintf("panic: %v\nSTACK TRACE: %s", panicErr, string(debug.Stack())),
		)
		r.WriteResponse(w)
		return true
	}
	return false
}
