package v1handler_test

import (
	"context"
	"errors"
	"net/http"
	"phishguard/internal/api/handler/v1handler"
	"testing"

	"phishguard/pkg/serrors"

	"github.com/stretchr/testify/require"
)

func newHandler() *v1handler.Handler {
	return v1handler.New(v1handler.Deps{}, v1handler.Options{})
}

func TestNewError_InternalOnPlainError(t *testing.T) {
	res := newHandler().NewError(context.Background(), errors.New("boom: api key abc"))
	require.NotNil(t, res)
	require.Equal(t, http.StatusInternalServerError, res.StatusCode)
	require.Equal(t, serrors.ErrInternal.Error(), res.Response.Code)
	require.Equal(t, "internal error", res.Response.Message)
}

func TestNewError_KindSentinelDirect_NotFound(t *testing.T) {
	res := newHandler().NewError(context.Background(), serrors.ErrNotFound)
	require.Equal(t, http.StatusNotFound, res.StatusCode)
	require.Equal(t, serrors.ErrNotFound.Error(), res.Response.Code)
	require.Equal(t, "resource not found", res.Response.Message)
}

func TestNewError_SemanticWithMessage_BadRequest(t *testing.T) {
	err := serrors.With(serrors.ErrBadRequest, "url is required")
	res := newHandler().NewError(context.Background(), err)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.Equal(t, serrors.ErrBadRequest.Error(), res.Response.Code)
	require.Equal(t, "url is required", res.Response.Message)
}

func TestNewError_SemanticWrap_Unauthorized(t *testing.T) {
	err := serrors.Wrap(serrors.ErrUnauthorized, errors.New("bad token"), "invalid token")
	res := newHandler().NewError(context.Background(), err)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	require.Equal(t, serrors.ErrUnauthorized.Error(), res.Response.Code)
	// the cause stays out of the response
	require.Equal(t, "invalid token", res.Response.Message)
}

func TestNewError_RateLimited(t *testing.T) {
	res := newHandler().NewError(context.Background(), serrors.KindOnly(serrors.ErrRateLimited))
	require.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	require.Equal(t, "too many requests", res.Response.Message)
}

func TestNewError_UnmappedKindsAreInternal(t *testing.T) {
	for _, k := range []serrors.Kind{serrors.ErrInternal, serrors.ErrTimeout, serrors.ErrMisconfigured} {
		res := newHandler().NewError(context.Background(), serrors.With(k, "secret detail"))
		require.Equal(t, http.StatusInternalServerError, res.StatusCode, k.Error())
		require.Equal(t, serrors.ErrInternal.Error(), res.Response.Code)
		require.Equal(t, "internal error", res.Response.Message)
	}
}
