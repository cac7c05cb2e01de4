package apperrors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorDerivation(t *testing.T) {
	ErrAuth := New("authentication error")
	assert.Equal(t, "authentication error", ErrAuth.Error())
	assert.ErrorIs(t, ErrAuth, ErrAuth)

	ErrExpired := ErrAuth.New("session expired")
	assert.Equal(t, "session expired", ErrExpired.Error())
	assert.ErrorIs(t, ErrExpired, ErrAuth)

	transport := fmt.Errorf("connection reset")
	wrapped := ErrExpired.Err(transport)
	assert.Equal(t, "session expired", wrapped.Error())
	assert.ErrorIs(t, wrapped, ErrAuth)
	assert.ErrorIs(t, wrapped, ErrExpired)
	assert.ErrorIs(t, wrapped, transport)

	relabeled := ErrExpired.MsgErr("token refresh failed", transport)
	assert.Equal(t, "token refresh failed", relabeled.Error())
	assert.ErrorIs(t, relabeled, ErrAuth)
	assert.ErrorIs(t, relabeled, transport)
}

func TestErrorAll(t *testing.T) {
	base := New("refresh failed")
	wrapped := base.Err(fmt.Errorf("status 401"), fmt.Errorf("token rejected"))
	assert.Equal(t, "refresh failed; status 401; token rejected", wrapped.ErrorAll())
	assert.Len(t, wrapped.UnwrapAll(), 3)

	assert.Equal(t, "refresh failed", base.ErrorAll())
}

func TestStatusCode(t *testing.T) {
	ErrCredential := New("invalid credentials").SetStatusCode(http.StatusUnauthorized)
	assert.Equal(t, http.StatusUnauthorized, ErrCredential.StatusCode())

	// derived errors inherit the code
	derived := ErrCredential.New("wrong password")
	assert.Equal(t, http.StatusUnauthorized, derived.StatusCode())
	assert.ErrorIs(t, derived, ErrCredential)

	// the original is not mutated by SetStatusCode on a derived copy
	derived.SetStatusCode(http.StatusForbidden)
	assert.Equal(t, http.StatusUnauthorized, derived.StatusCode())
}
