package middlewares

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware rejects requests without one of the accepted tokens.
type AuthMiddleware struct {
	header string
	tokens map[string]struct{}
}

// MakeAuth constructs the auth middleware function. The token is read from
// the given header.
func MakeAuth(header string, tokens []string) echo.MiddlewareFunc {
	auth := AuthMiddleware{
		header: header,
		tokens: make(map[string]struct{}, len(tokens)),
	}
	for _, token := range tokens {
		auth.tokens[token] = struct{}{}
	}
	return auth.handler
}

func (auth *AuthMiddleware) handler(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if _, ok := auth.tokens[ctx.Request().Header.Get(auth.header)]; ok {
			return next(ctx)
		}
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid API token")
	}
}
