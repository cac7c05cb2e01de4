package api

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/hobbyhub/hobbyhub/internal/client/session"
	"github.com/hobbyhub/hobbyhub/internal/common/apperrors"
)

// ErrValidation marks a locally rejected form. Validation failures are
// synchronous and never reach the network layer.
var ErrValidation = apperrors.New("validation failed").SetStatusCode(http.StatusBadRequest)

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoginRequest is the credential form for /user/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// SignupRequest is the registration form for /user/signup.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Nickname string `json:"nickname" validate:"required,min=2,max=20"`
}

// Login authenticates with email and password. A 401 here is a credential
// failure surfaced unchanged; the HTTP client never attempts a token refresh
// for the login path.
func (c *Client) Login(ctx context.Context, req LoginRequest) (session.LoginResult, error) {
	var res session.LoginResult
	if err := validate.Struct(req); err != nil {
		return res, ErrValidation.Err(err)
	}
	if err := c.postJSON(ctx, http.MethodPost, "/user/login", req, &res); err != nil {
		return res, err
	}
	return res, nil
}

// Signup registers a new account. On success the server logs the account in
// and returns the same token payload as login.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (session.LoginResult, error) {
	var res session.LoginResult
	if err := validate.Struct(req); err != nil {
		return res, ErrValidation.Err(err)
	}
	if err := c.postJSON(ctx, http.MethodPost, "/user/signup", req, &res); err != nil {
		return res, err
	}
	return res, nil
}
