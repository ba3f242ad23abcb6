package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallWithTimeoutTimesOut(t *testing.T) {
	done := make(chan struct{})
	defer func() {
		close(done)
	}()

	logger, hook := test.NewNullLogger()
	err := callWithTimeout(context.Background(), logger, 1*time.Nanosecond, func(ctx context.Context) error {
		<-done
		return errors.New("should not return")
	})

	require.Error(t, err)
	require.ErrorIs(t, err, errTimeout)

	time.Sleep(2 * time.Second)
	require.Len(t, hook.Entries, 1)
	require.Equal(t, errMisbehavingHandler, hook.LastEntry().Message)
}

func TestCallWithTimeoutExitsWhenHandlerFinishes(t *testing.T) {
	done := make(chan struct{})
	defer func() {
		<-done
	}()

	callError := errors.New("this should be the result")
	err := callWithTimeout(context.Background(), nil, 1*time.Minute, func(ctx context.Context) error {
		defer close(done)
		return callError
	})

	require.Error(t, err)
	require.ErrorIs(t, err, callError)
}

func TestCallWithoutTimeout(t *testing.T) {
	called := false
	err := callWithTimeout(context.Background(), nil, 0, func(ctx context.Context) error {
		called = true
		_, hasDeadline := ctx.Deadline()
		assert.False(t, hasDeadline)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestQueryParams(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?spent=true&limit=7&bad=maybe&neg=-1", nil)
	ctx := e.NewContext(req, httptest.NewRecorder())

	spent, err := queryBool(ctx, "spent")
	require.NoError(t, err)
	require.NotNil(t, spent)
	assert.True(t, *spent)

	missing, err := queryBool(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.False(t, boolOrDefault(missing))

	_, err = queryBool(ctx, "bad")
	assert.EqualError(t, err, "unable to parse boolean bad: 'maybe'")

	limit, err := queryUint(ctx, "limit")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), uintOrDefault(limit, 100))
	assert.Equal(t, uint64(100), uintOrDefault(nil, 100))

	_, err = queryUint(ctx, "neg")
	assert.Error(t, err)
}
