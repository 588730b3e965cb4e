package api

import (
	"net/http"

	"github.com/dekarrin/grammarlab/server/auth"
	"github.com/dekarrin/grammarlab/server/result"
)

// LoginRequest is the body of POST /api/v1/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the body returned by a successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

func (api API) epLogin(req *http.Request) result.Result {
	var loginData LoginRequest
	if err := parseJSON(req, &loginData); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	if loginData.Username == "" {
		return result.BadRequest("username: property is empty or missing from request", "empty username")
	}
	if loginData.Password == "" {
		return result.BadRequest("password: property is empty or missing from request", "empty password")
	}

	user, err := api.Backend.Login(req.Context(), loginData.Username, loginData.Password)
	if err != nil {
		return errToResult(err)
	}

	tok, err := auth.Generate(api.Secret, user)
	if err != nil {
		return result.InternalServerError("could not generate JWT: " + err.Error())
	}

	resp := LoginResponse{Token: tok, UserID: user.ID.String()}
	return result.Created(resp, "user '"+user.Username+"' successfully logged in")
}
