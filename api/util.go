package api

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// errTimeout is returned when callWithTimeout has a normal timeout.
var errTimeout = errors.New("timeout during call")

func isTimeoutError(err error) bool {
	return errors.Is(err, errTimeout)
}

// errMisbehavingHandler is written to the log when a handler does not return.
var errMisbehavingHandler = "Misbehaving handler did not exit after 1 second."

// misbehavingHandlerDetector warns if ch is not closed within a second.
func misbehavingHandlerDetector(log *log.Logger, ch chan struct{}) {
	if log == nil {
		return
	}

	select {
	case <-ch:
		return
	case <-time.After(1 * time.Second):
		log.Warnf(errMisbehavingHandler)
	}
}

// callWithTimeout runs handler with a context cancelled after timeout. No
// timeout if timeout = 0. A handler that outlives its context is logged, not
// waited for.
func callWithTimeout(ctx context.Context, log *log.Logger, timeout time.Duration, handler func(ctx context.Context) error) error {
	if timeout == 0 {
		return handler(ctx)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan struct{})
	var err error
	go func(routineCtx context.Context) {
		err = handler(routineCtx)
		close(done)
	}(timeoutCtx)

	select {
	case <-done:
		// The handler may have returned because the deadline passed.
		if timeoutCtx.Err() == context.DeadlineExceeded {
			return errTimeout
		}
		return err
	case <-timeoutCtx.Done():
		go misbehavingHandlerDetector(log, done)
		if timeoutCtx.Err() == context.DeadlineExceeded {
			return errTimeout
		}
		return timeoutCtx.Err()
	}
}

// queryBool parses an optional boolean query parameter.
func queryBool(ctx echo.Context, name string) (*bool, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("%s %s: '%s'", errBadBool, name, raw)
	}
	return &v, nil
}

// queryUint parses an optional unsigned integer query parameter.
func queryUint(ctx echo.Context, name string) (*uint64, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s %s: '%s'", errBadUint, name, raw)
	}
	return &v, nil
}

func boolOrDefault(b *bool) bool {
	return b != nil && *b
}

func uintOrDefault(x *uint64, def uint64) uint64 {
	if x == nil {
		return def
	}
	return *x
}
